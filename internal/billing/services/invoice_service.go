package services

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/carebridge/hms-backend/internal/billing/models"
	"github.com/carebridge/hms-backend/internal/common/apperr"
	"github.com/carebridge/hms-backend/pkg/storage/mariadb"
)

// maxGenerateAttempts bounds internal retries when invoice generation loses a
// lock conflict against a concurrent generation.
const maxGenerateAttempts = 3

// InvoiceService performs the atomic claim-and-total operation over the charge
// ledger. The central guarantee is at-most-once billing: a charge is never
// linked to two invoices.
type InvoiceService struct {
	DB *sql.DB
}

func NewInvoiceService(db *sql.DB) *InvoiceService {
	return &InvoiceService{DB: db}
}

// GenerateInvoice collects the patient's unbilled charges with a creation date
// inside [start, end] into a new draft invoice. The select locks the charge
// rows, so two concurrent generations over overlapping ranges serialize: the
// loser either sees no remaining charges (ErrNoUnbilledCharges) or hits a lock
// conflict and is retried up to maxGenerateAttempts times.
func (s *InvoiceService) GenerateInvoice(ctx context.Context, orgID, patientID uuid.UUID, start, end time.Time) (*models.Invoice, error) {
	if end.Before(start) {
		return nil, apperr.InvalidArgument("end_date must not be before start_date")
	}

	var exists int
	err := s.DB.QueryRowContext(ctx,
		"SELECT 1 FROM patients WHERE id = ? AND organization_id = ?",
		patientID, orgID,
	).Scan(&exists)
	if err == sql.ErrNoRows {
		return nil, apperr.NotFound("Patient not found in your organization")
	} else if err != nil {
		return nil, err
	}

	var lastErr error
	for attempt := 1; attempt <= maxGenerateAttempts; attempt++ {
		invoice, err := s.generateOnce(ctx, orgID, patientID, start, end)
		if err == nil {
			return invoice, nil
		}
		if !mariadb.IsLockConflict(err) {
			return nil, err
		}
		lastErr = err
		log.Warn().
			Int("attempt", attempt).
			Str("patient_id", patientID.String()).
			Msg("invoice generation lost a lock conflict, retrying")
	}
	log.Error().Err(lastErr).Str("patient_id", patientID.String()).
		Msg("invoice generation exhausted retries")
	return nil, apperr.ErrTransactionConflict
}

func (s *InvoiceService) generateOnce(ctx context.Context, orgID, patientID uuid.UUID, start, end time.Time) (*models.Invoice, error) {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	// Lock the candidate charges so no concurrent generation can claim them
	// between this select and the update below.
	rows, err := tx.QueryContext(ctx, `
		SELECT id, total_price FROM charges
		WHERE patient_id = ? AND invoice_id IS NULL
		  AND DATE(created_at) BETWEEN ? AND ?
		FOR UPDATE`,
		patientID, start.Format("2006-01-02"), end.Format("2006-01-02"),
	)
	if err != nil {
		return nil, err
	}

	var chargeIDs []uuid.UUID
	total := decimal.Zero
	for rows.Next() {
		var id uuid.UUID
		var totalPrice decimal.Decimal
		if err := rows.Scan(&id, &totalPrice); err != nil {
			rows.Close()
			return nil, err
		}
		chargeIDs = append(chargeIDs, id)
		total = total.Add(totalPrice)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	rows.Close()

	if len(chargeIDs) == 0 {
		return nil, apperr.ErrNoUnbilledCharges
	}

	invoice := &models.Invoice{
		ID:             uuid.New(),
		PatientID:      patientID,
		OrganizationID: orgID,
		StartDate:      start.Format("2006-01-02"),
		EndDate:        end.Format("2006-01-02"),
		TotalAmount:    total,
		Status:         models.InvoiceDraft,
		CreatedAt:      time.Now(),
	}
	_, err = tx.ExecContext(ctx, `
		INSERT INTO invoices
			(id, patient_id, organization_id, start_date, end_date, total_amount, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		invoice.ID, invoice.PatientID, invoice.OrganizationID,
		invoice.StartDate, invoice.EndDate, invoice.TotalAmount,
		invoice.Status, invoice.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	// Conditional claim: only still-unbilled rows are linked. The affected
	// count must match the locked set or the whole generation is aborted.
	args := make([]interface{}, 0, len(chargeIDs)+1)
	args = append(args, invoice.ID)
	for _, id := range chargeIDs {
		args = append(args, id)
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(chargeIDs)), ", ")
	res, err := tx.ExecContext(ctx,
		"UPDATE charges SET invoice_id = ? WHERE id IN ("+placeholders+") AND invoice_id IS NULL",
		args...,
	)
	if err != nil {
		return nil, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if affected != int64(len(chargeIDs)) {
		return nil, apperr.ErrTransactionConflict
	}

	if err = tx.Commit(); err != nil {
		return nil, err
	}
	return invoice, nil
}

// GetInvoice returns one invoice scoped to the caller's organization.
func (s *InvoiceService) GetInvoice(ctx context.Context, orgID, invoiceID uuid.UUID) (*models.Invoice, error) {
	var inv models.Invoice
	var startDate, endDate time.Time
	err := s.DB.QueryRowContext(ctx, `
		SELECT id, patient_id, organization_id, start_date, end_date, total_amount, status, created_at
		FROM invoices WHERE id = ? AND organization_id = ?`,
		invoiceID, orgID,
	).Scan(&inv.ID, &inv.PatientID, &inv.OrganizationID, &startDate,
		&endDate, &inv.TotalAmount, &inv.Status, &inv.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, apperr.NotFound("Invoice not found in your organization")
	} else if err != nil {
		return nil, err
	}
	inv.StartDate = startDate.Format("2006-01-02")
	inv.EndDate = endDate.Format("2006-01-02")
	return &inv, nil
}

// ListInvoices returns the organization's invoices, most recent first.
func (s *InvoiceService) ListInvoices(ctx context.Context, orgID uuid.UUID) ([]models.Invoice, error) {
	rows, err := s.DB.QueryContext(ctx, `
		SELECT id, patient_id, organization_id, start_date, end_date, total_amount, status, created_at
		FROM invoices WHERE organization_id = ?
		ORDER BY created_at DESC`,
		orgID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []models.Invoice
	for rows.Next() {
		var inv models.Invoice
		var startDate, endDate time.Time
		if err := rows.Scan(&inv.ID, &inv.PatientID, &inv.OrganizationID,
			&startDate, &endDate, &inv.TotalAmount, &inv.Status, &inv.CreatedAt); err != nil {
			return nil, err
		}
		inv.StartDate = startDate.Format("2006-01-02")
		inv.EndDate = endDate.Format("2006-01-02")
		result = append(result, inv)
	}
	return result, rows.Err()
}
