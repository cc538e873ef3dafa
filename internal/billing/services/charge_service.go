package services

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/carebridge/hms-backend/internal/billing/models"
	"github.com/carebridge/hms-backend/internal/common/apperr"
)

// ChargeService owns the charge lifecycle: creation with price snapshot,
// quantity mutation with atomic total recomputation, cancellation, and the
// unbilled queries the invoice generator builds on.
type ChargeService struct {
	DB *sql.DB
}

func NewChargeService(db *sql.DB) *ChargeService {
	return &ChargeService{DB: db}
}

// CreateCharge records one billable event for a patient. The price is copied
// from the service's current price inside the same transaction unless
// explicitPrice is given (e.g. bed fees use the bed's daily charge). The
// stored total is always price * quantity.
func (s *ChargeService) CreateCharge(ctx context.Context, orgID, patientID, serviceID uuid.UUID, quantity int, explicitPrice *decimal.Decimal) (*models.Charge, error) {
	if quantity <= 0 {
		return nil, apperr.InvalidArgument("quantity must be a positive integer")
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	var exists int
	err = tx.QueryRowContext(ctx,
		"SELECT 1 FROM patients WHERE id = ? AND organization_id = ?",
		patientID, orgID,
	).Scan(&exists)
	if err == sql.ErrNoRows {
		return nil, apperr.NotFound("Patient not found in your organization")
	} else if err != nil {
		return nil, err
	}

	var servicePrice decimal.Decimal
	err = tx.QueryRowContext(ctx,
		"SELECT price FROM services WHERE id = ? AND organization_id = ?",
		serviceID, orgID,
	).Scan(&servicePrice)
	if err == sql.ErrNoRows {
		return nil, apperr.NotFound("Service not found in your organization")
	} else if err != nil {
		return nil, err
	}

	price := servicePrice
	if explicitPrice != nil {
		price = *explicitPrice
	}

	charge := &models.Charge{
		ID:            uuid.New(),
		PatientID:     patientID,
		ServiceID:     serviceID,
		Quantity:      quantity,
		PriceAtCharge: price,
		TotalPrice:    models.ComputeTotal(price, quantity),
		Status:        models.ChargePending,
		CreatedAt:     time.Now(),
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO charges
			(id, patient_id, service_id, invoice_id, quantity, price_at_charge, total_price, status, created_at)
		VALUES (?, ?, ?, NULL, ?, ?, ?, ?, ?)`,
		charge.ID, charge.PatientID, charge.ServiceID,
		charge.Quantity, charge.PriceAtCharge, charge.TotalPrice,
		charge.Status, charge.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err = tx.Commit(); err != nil {
		return nil, err
	}
	return charge, nil
}

// UpdateChargeQuantity is the only permitted mutation of a stored charge.
// Price and total are never written separately: the total is recomputed from
// the immutable price_at_charge in the same statement.
func (s *ChargeService) UpdateChargeQuantity(ctx context.Context, orgID, chargeID uuid.UUID, quantity int) error {
	if quantity <= 0 {
		return apperr.InvalidArgument("quantity must be a positive integer")
	}

	res, err := s.DB.ExecContext(ctx, `
		UPDATE charges c
		JOIN patients p ON c.patient_id = p.id
		SET c.quantity = ?, c.total_price = c.price_at_charge * ?
		WHERE c.id = ? AND p.organization_id = ?`,
		quantity, quantity, chargeID, orgID,
	)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return apperr.NotFound("Charge not found in your organization")
	}
	return nil
}

// CancelCharge marks a pending charge cancelled. Charges are never deleted.
func (s *ChargeService) CancelCharge(ctx context.Context, orgID, chargeID uuid.UUID) error {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var status models.ChargeStatus
	err = tx.QueryRowContext(ctx, `
		SELECT c.status FROM charges c
		JOIN patients p ON c.patient_id = p.id
		WHERE c.id = ? AND p.organization_id = ?
		FOR UPDATE`,
		chargeID, orgID,
	).Scan(&status)
	if err == sql.ErrNoRows {
		return apperr.NotFound("Charge not found in your organization")
	} else if err != nil {
		return err
	}
	if status != models.ChargePending {
		return apperr.Conflict("Only pending charges can be cancelled")
	}

	if _, err = tx.ExecContext(ctx,
		"UPDATE charges SET status = ? WHERE id = ?",
		models.ChargeCancelled, chargeID,
	); err != nil {
		return err
	}
	return tx.Commit()
}

// ListUnbilled returns the patient's charges with no invoice link created
// within [from, to]. The comparison is calendar-day granular on both ends.
func (s *ChargeService) ListUnbilled(ctx context.Context, orgID, patientID uuid.UUID, from, to time.Time) ([]models.Charge, error) {
	rows, err := s.DB.QueryContext(ctx, `
		SELECT c.id, c.patient_id, c.service_id, c.invoice_id, c.quantity,
		       c.price_at_charge, c.total_price, c.status, c.created_at
		FROM charges c
		JOIN patients p ON c.patient_id = p.id
		WHERE c.patient_id = ? AND p.organization_id = ?
		  AND c.invoice_id IS NULL
		  AND DATE(c.created_at) BETWEEN ? AND ?
		ORDER BY c.created_at DESC`,
		patientID, orgID, from.Format("2006-01-02"), to.Format("2006-01-02"),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanCharges(rows)
}

// ListChargesByPatient returns all of a patient's charges, most recent first.
func (s *ChargeService) ListChargesByPatient(ctx context.Context, orgID, patientID uuid.UUID) ([]models.Charge, error) {
	rows, err := s.DB.QueryContext(ctx, `
		SELECT c.id, c.patient_id, c.service_id, c.invoice_id, c.quantity,
		       c.price_at_charge, c.total_price, c.status, c.created_at
		FROM charges c
		JOIN patients p ON c.patient_id = p.id
		WHERE c.patient_id = ? AND p.organization_id = ?
		ORDER BY c.created_at DESC`,
		patientID, orgID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanCharges(rows)
}

func scanCharges(rows *sql.Rows) ([]models.Charge, error) {
	var result []models.Charge
	for rows.Next() {
		var c models.Charge
		var invoiceID uuid.NullUUID
		if err := rows.Scan(&c.ID, &c.PatientID, &c.ServiceID, &invoiceID,
			&c.Quantity, &c.PriceAtCharge, &c.TotalPrice, &c.Status, &c.CreatedAt); err != nil {
			return nil, err
		}
		if invoiceID.Valid {
			id := invoiceID.UUID
			c.InvoiceID = &id
		}
		result = append(result, c)
	}
	return result, rows.Err()
}
