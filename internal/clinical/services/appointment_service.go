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
)

type AppointmentService struct {
	DB *sql.DB
}

func NewAppointmentService(db *sql.DB) *AppointmentService {
	return &AppointmentService{DB: db}
}

// CreateAppointment schedules an appointment at a branch of the caller's
// organization.
func (s *AppointmentService) CreateAppointment(ctx context.Context, orgID, patientID, doctorID, branchID uuid.UUID, start, end time.Time, notes string) (*models.Appointment, error) {
	if !end.After(start) {
		return nil, apperr.InvalidArgument("end_time must be after start_time")
	}

	var exists int
	err := s.DB.QueryRowContext(ctx,
		"SELECT 1 FROM branches WHERE id = ? AND organization_id = ?",
		branchID, orgID,
	).Scan(&exists)
	if err == sql.ErrNoRows {
		return nil, apperr.NotFound("Branch not found in your organization")
	} else if err != nil {
		return nil, err
	}
	err = s.DB.QueryRowContext(ctx,
		"SELECT 1 FROM patients WHERE id = ? AND organization_id = ?",
		patientID, orgID,
	).Scan(&exists)
	if err == sql.ErrNoRows {
		return nil, apperr.NotFound("Patient not found in your organization")
	} else if err != nil {
		return nil, err
	}

	appt := &models.Appointment{
		ID:        uuid.New(),
		PatientID: patientID,
		DoctorID:  doctorID,
		BranchID:  branchID,
		StartTime: start,
		EndTime:   end,
		Status:    models.AppointmentScheduled,
		Notes:     notes,
		CreatedAt: time.Now(),
	}
	_, err = s.DB.ExecContext(ctx, `
		INSERT INTO appointments (id, patient_id, doctor_id, branch_id, start_time, end_time, status, notes, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		appt.ID, appt.PatientID, appt.DoctorID, appt.BranchID,
		appt.StartTime, appt.EndTime, appt.Status, appt.Notes, appt.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return appt, nil
}

// ListAppointments returns the organization's appointments, most recent first.
func (s *AppointmentService) ListAppointments(ctx context.Context, orgID uuid.UUID) ([]models.Appointment, error) {
	rows, err := s.DB.QueryContext(ctx, `
		SELECT a.id, a.patient_id, a.doctor_id, a.branch_id, a.start_time, a.end_time, a.status, a.notes, a.created_at
		FROM appointments a
		JOIN branches b ON a.branch_id = b.id
		WHERE b.organization_id = ?
		ORDER BY a.start_time DESC`,
		orgID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []models.Appointment
	for rows.Next() {
		var appt models.Appointment
		if err := rows.Scan(&appt.ID, &appt.PatientID, &appt.DoctorID, &appt.BranchID,
			&appt.StartTime, &appt.EndTime, &appt.Status, &appt.Notes, &appt.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, appt)
	}
	return result, rows.Err()
}

// CompleteAppointment marks the appointment COMPLETED and creates the
// consultation charge in the same transaction. The organization must have
// exactly one active consultation service; with zero or several the operation
// refuses to guess which one to bill.
func (s *AppointmentService) CompleteAppointment(ctx context.Context, orgID, appointmentID uuid.UUID) (*models.Appointment, error) {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	var appt models.Appointment
	err = tx.QueryRowContext(ctx, `
		SELECT a.id, a.patient_id, a.doctor_id, a.branch_id, a.start_time, a.end_time, a.status, a.notes, a.created_at
		FROM appointments a
		JOIN branches b ON a.branch_id = b.id
		WHERE a.id = ? AND b.organization_id = ?
		FOR UPDATE`,
		appointmentID, orgID,
	).Scan(&appt.ID, &appt.PatientID, &appt.DoctorID, &appt.BranchID,
		&appt.StartTime, &appt.EndTime, &appt.Status, &appt.Notes, &appt.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, apperr.NotFound("Appointment not found in your organization")
	} else if err != nil {
		return nil, err
	}
	if appt.Status == models.AppointmentCompleted {
		return nil, apperr.ErrAlreadyCompleted
	}

	serviceID, price, err := s.consultationService(ctx, tx, orgID)
	if err != nil {
		return nil, err
	}

	if _, err = tx.ExecContext(ctx,
		"UPDATE appointments SET status = ? WHERE id = ?",
		models.AppointmentCompleted, appointmentID,
	); err != nil {
		return nil, err
	}

	if _, err = tx.ExecContext(ctx, `
		INSERT INTO charges
			(id, patient_id, service_id, invoice_id, quantity, price_at_charge, total_price, status, created_at)
		VALUES (?, ?, ?, NULL, 1, ?, ?, ?, ?)`,
		uuid.New(), appt.PatientID, serviceID, price, price, bmodels.ChargePending, time.Now(),
	); err != nil {
		return nil, err
	}

	if err = tx.Commit(); err != nil {
		return nil, err
	}
	appt.Status = models.AppointmentCompleted
	return &appt, nil
}

// consultationService finds the organization's single active consultation
// service.
func (s *AppointmentService) consultationService(ctx context.Context, tx *sql.Tx, orgID uuid.UUID) (uuid.UUID, decimal.Decimal, error) {
	rows, err := tx.QueryContext(ctx, `
		SELECT id, price FROM services
		WHERE organization_id = ? AND category = ? AND is_active = TRUE`,
		orgID, bmodels.CategoryConsultation,
	)
	if err != nil {
		return uuid.Nil, decimal.Zero, err
	}
	defer rows.Close()

	var ids []uuid.UUID
	var prices []decimal.Decimal
	for rows.Next() {
		var id uuid.UUID
		var price decimal.Decimal
		if err := rows.Scan(&id, &price); err != nil {
			return uuid.Nil, decimal.Zero, err
		}
		ids = append(ids, id)
		prices = append(prices, price)
	}
	if err := rows.Err(); err != nil {
		return uuid.Nil, decimal.Zero, err
	}

	switch len(ids) {
	case 0:
		return uuid.Nil, decimal.Zero, apperr.ErrConsultationNotConfigured
	case 1:
		return ids[0], prices[0], nil
	default:
		return uuid.Nil, decimal.Zero, apperr.ErrConsultationAmbiguous
	}
}
