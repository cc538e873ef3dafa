package services

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	bmodels "github.com/carebridge/hms-backend/internal/billing/models"
	"github.com/carebridge/hms-backend/internal/clinical/models"
	"github.com/carebridge/hms-backend/internal/common/apperr"
	opmodels "github.com/carebridge/hms-backend/internal/operations/models"
)

// AdmissionService drives the bed occupancy state machine together with the
// admission lifecycle. Every multi-write path runs inside one transaction: a
// bed is never left OCCUPIED without an ADMITTED admission and never AVAILABLE
// while one still references it.
type AdmissionService struct {
	DB *sql.DB
}

func NewAdmissionService(db *sql.DB) *AdmissionService {
	return &AdmissionService{DB: db}
}

// AdmitPatient moves an available bed to OCCUPIED and creates the admission in
// one transaction. The bed status is re-read under a row lock inside the
// transaction, so of two requests racing for the same bed only the first
// committer wins; the other sees the lock-guarded status and gets
// ErrBedUnavailable.
func (s *AdmissionService) AdmitPatient(ctx context.Context, orgID, patientID, bedID uuid.UUID, notes string) (*models.Admission, error) {
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

	var status opmodels.BedStatus
	err = tx.QueryRowContext(ctx, `
		SELECT b.status FROM beds b
		JOIN branches br ON b.branch_id = br.id
		WHERE b.id = ? AND br.organization_id = ?
		FOR UPDATE`,
		bedID, orgID,
	).Scan(&status)
	if err == sql.ErrNoRows {
		return nil, apperr.NotFound("Bed not found in your organization")
	} else if err != nil {
		return nil, err
	}
	if status != opmodels.BedAvailable {
		return nil, apperr.ErrBedUnavailable
	}

	if _, err = tx.ExecContext(ctx,
		"UPDATE beds SET status = ? WHERE id = ?",
		opmodels.BedOccupied, bedID,
	); err != nil {
		return nil, err
	}

	admission := &models.Admission{
		ID:         uuid.New(),
		PatientID:  patientID,
		BedID:      bedID,
		AdmittedAt: time.Now(),
		Status:     models.AdmissionAdmitted,
		Notes:      notes,
	}
	if _, err = tx.ExecContext(ctx, `
		INSERT INTO admissions (id, patient_id, bed_id, admitted_at, discharged_at, status, notes)
		VALUES (?, ?, ?, ?, NULL, ?, ?)`,
		admission.ID, admission.PatientID, admission.BedID,
		admission.AdmittedAt, admission.Status, admission.Notes,
	); err != nil {
		return nil, err
	}

	if err = tx.Commit(); err != nil {
		return nil, err
	}
	return admission, nil
}

// DischargePatient closes the admission and returns the bed to AVAILABLE in
// one transaction.
func (s *AdmissionService) DischargePatient(ctx context.Context, orgID, admissionID uuid.UUID) (*models.Admission, error) {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	var adm models.Admission
	err = tx.QueryRowContext(ctx, `
		SELECT a.id, a.patient_id, a.bed_id, a.admitted_at, a.status, a.notes
		FROM admissions a
		JOIN patients p ON a.patient_id = p.id
		WHERE a.id = ? AND p.organization_id = ?
		FOR UPDATE`,
		admissionID, orgID,
	).Scan(&adm.ID, &adm.PatientID, &adm.BedID, &adm.AdmittedAt, &adm.Status, &adm.Notes)
	if err == sql.ErrNoRows {
		return nil, apperr.NotFound("Admission not found in your organization")
	} else if err != nil {
		return nil, err
	}
	if adm.Status != models.AdmissionAdmitted {
		return nil, apperr.Conflict("This patient has already been discharged")
	}

	now := time.Now()
	if _, err = tx.ExecContext(ctx,
		"UPDATE admissions SET status = ?, discharged_at = ? WHERE id = ?",
		models.AdmissionDischarged, now, admissionID,
	); err != nil {
		return nil, err
	}
	if _, err = tx.ExecContext(ctx,
		"UPDATE beds SET status = ? WHERE id = ?",
		opmodels.BedAvailable, adm.BedID,
	); err != nil {
		return nil, err
	}

	if err = tx.Commit(); err != nil {
		return nil, err
	}
	adm.Status = models.AdmissionDischarged
	adm.DischargedAt = &now
	return &adm, nil
}

// LogActivity records one clinical interaction during an admission and, when a
// billable service is given, the matching charge. Both rows are written in one
// transaction so neither can exist without the other.
func (s *AdmissionService) LogActivity(ctx context.Context, orgID, admissionID uuid.UUID, serviceID *uuid.UUID, notes string, performerID uuid.UUID) (*models.DailyRound, error) {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	var patientID uuid.UUID
	err = tx.QueryRowContext(ctx, `
		SELECT a.patient_id FROM admissions a
		JOIN patients p ON a.patient_id = p.id
		WHERE a.id = ? AND p.organization_id = ?`,
		admissionID, orgID,
	).Scan(&patientID)
	if err == sql.ErrNoRows {
		return nil, apperr.NotFound("Admission not found")
	} else if err != nil {
		return nil, err
	}

	round := &models.DailyRound{
		ID:          uuid.New(),
		AdmissionID: admissionID,
		ServiceID:   serviceID,
		PerformedBy: performerID,
		Notes:       notes,
		RoundTime:   time.Now(),
	}

	if serviceID != nil {
		chargeID, err := s.createRoundCharge(ctx, tx, orgID, patientID, *serviceID, round.RoundTime)
		if err != nil {
			return nil, err
		}
		round.ChargeID = &chargeID
	}

	if _, err = tx.ExecContext(ctx, `
		INSERT INTO daily_rounds (id, admission_id, service_id, performed_by, charge_id, notes, round_time)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		round.ID, round.AdmissionID, round.ServiceID, round.PerformedBy,
		round.ChargeID, round.Notes, round.RoundTime,
	); err != nil {
		return nil, err
	}

	if err = tx.Commit(); err != nil {
		return nil, err
	}
	return round, nil
}

// createRoundCharge inserts the round's charge inside the caller's
// transaction, copying the service's current price.
func (s *AdmissionService) createRoundCharge(ctx context.Context, tx *sql.Tx, orgID, patientID, serviceID uuid.UUID, at time.Time) (uuid.UUID, error) {
	var price decimal.Decimal
	err := tx.QueryRowContext(ctx,
		"SELECT price FROM services WHERE id = ? AND organization_id = ?",
		serviceID, orgID,
	).Scan(&price)
	if err == sql.ErrNoRows {
		return uuid.Nil, apperr.NotFound("Service not found in your organization")
	} else if err != nil {
		return uuid.Nil, err
	}

	chargeID := uuid.New()
	_, err = tx.ExecContext(ctx, `
		INSERT INTO charges
			(id, patient_id, service_id, invoice_id, quantity, price_at_charge, total_price, status, created_at)
		VALUES (?, ?, ?, NULL, 1, ?, ?, ?, ?)`,
		chargeID, patientID, serviceID, price, price, bmodels.ChargePending, at,
	)
	if err != nil {
		return uuid.Nil, err
	}
	return chargeID, nil
}

// GetAdmissionDetail returns the consolidated view of one admission.
func (s *AdmissionService) GetAdmissionDetail(ctx context.Context, orgID, admissionID uuid.UUID) (*models.AdmissionDetail, error) {
	var detail models.AdmissionDetail
	var adm models.Admission
	var dischargedAt sql.NullTime
	err := s.DB.QueryRowContext(ctx, `
		SELECT a.id, a.patient_id, a.bed_id, a.admitted_at, a.discharged_at, a.status, a.notes,
		       CONCAT(p.first_name, ' ', p.last_name), b.number, br.name
		FROM admissions a
		JOIN patients p ON a.patient_id = p.id
		JOIN beds b ON a.bed_id = b.id
		JOIN branches br ON b.branch_id = br.id
		WHERE a.id = ? AND p.organization_id = ?`,
		admissionID, orgID,
	).Scan(&adm.ID, &adm.PatientID, &adm.BedID, &adm.AdmittedAt, &dischargedAt,
		&adm.Status, &adm.Notes, &detail.PatientName, &detail.BedNumber, &detail.BranchName)
	if err == sql.ErrNoRows {
		return nil, apperr.NotFound("Admission not found")
	} else if err != nil {
		return nil, err
	}
	if dischargedAt.Valid {
		t := dischargedAt.Time
		adm.DischargedAt = &t
	}
	detail.Admission = adm

	rows, err := s.DB.QueryContext(ctx, `
		SELECT id, admission_id, service_id, performed_by, charge_id, notes, round_time
		FROM daily_rounds WHERE admission_id = ?
		ORDER BY round_time DESC`,
		admissionID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var r models.DailyRound
		var serviceID, chargeID uuid.NullUUID
		if err := rows.Scan(&r.ID, &r.AdmissionID, &serviceID, &r.PerformedBy,
			&chargeID, &r.Notes, &r.RoundTime); err != nil {
			return nil, err
		}
		if serviceID.Valid {
			id := serviceID.UUID
			r.ServiceID = &id
		}
		if chargeID.Valid {
			id := chargeID.UUID
			r.ChargeID = &id
		}
		detail.DailyRounds = append(detail.DailyRounds, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &detail, nil
}

// ListAdmissions returns the organization's admissions, most recent first.
func (s *AdmissionService) ListAdmissions(ctx context.Context, orgID uuid.UUID) ([]models.Admission, error) {
	rows, err := s.DB.QueryContext(ctx, `
		SELECT a.id, a.patient_id, a.bed_id, a.admitted_at, a.discharged_at, a.status, a.notes
		FROM admissions a
		JOIN patients p ON a.patient_id = p.id
		WHERE p.organization_id = ?
		ORDER BY a.admitted_at DESC`,
		orgID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []models.Admission
	for rows.Next() {
		var adm models.Admission
		var dischargedAt sql.NullTime
		if err := rows.Scan(&adm.ID, &adm.PatientID, &adm.BedID, &adm.AdmittedAt,
			&dischargedAt, &adm.Status, &adm.Notes); err != nil {
			return nil, err
		}
		if dischargedAt.Valid {
			t := dischargedAt.Time
			adm.DischargedAt = &t
		}
		result = append(result, adm)
	}
	return result, rows.Err()
}
