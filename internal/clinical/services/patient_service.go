package services

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/carebridge/hms-backend/internal/clinical/models"
	"github.com/carebridge/hms-backend/internal/common/apperr"
)

type PatientService struct {
	DB *sql.DB
}

func NewPatientService(db *sql.DB) *PatientService {
	return &PatientService{DB: db}
}

// RegisterPatient creates a patient in the caller's organization.
func (s *PatientService) RegisterPatient(ctx context.Context, orgID uuid.UUID, firstName, lastName string, dateOfBirth time.Time) (*models.Patient, error) {
	if firstName == "" || lastName == "" {
		return nil, apperr.InvalidArgument("first_name and last_name are required")
	}

	now := time.Now()
	p := &models.Patient{
		ID:             uuid.New(),
		OrganizationID: orgID,
		FirstName:      firstName,
		LastName:       lastName,
		DateOfBirth:    dateOfBirth.Format("2006-01-02"),
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	_, err := s.DB.ExecContext(ctx, `
		INSERT INTO patients (id, organization_id, external_user_id, first_name, last_name, date_of_birth, created_at, updated_at)
		VALUES (?, ?, NULL, ?, ?, ?, ?, ?)`,
		p.ID, p.OrganizationID, p.FirstName, p.LastName, p.DateOfBirth, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// GetPatient returns one patient scoped to the caller's organization.
func (s *PatientService) GetPatient(ctx context.Context, orgID, patientID uuid.UUID) (*models.Patient, error) {
	var p models.Patient
	var externalUserID uuid.NullUUID
	var dob time.Time
	err := s.DB.QueryRowContext(ctx, `
		SELECT id, organization_id, external_user_id, first_name, last_name, date_of_birth, created_at, updated_at
		FROM patients WHERE id = ? AND organization_id = ?`,
		patientID, orgID,
	).Scan(&p.ID, &p.OrganizationID, &externalUserID, &p.FirstName, &p.LastName,
		&dob, &p.CreatedAt, &p.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, apperr.NotFound("Patient not found in your organization")
	} else if err != nil {
		return nil, err
	}
	if externalUserID.Valid {
		id := externalUserID.UUID
		p.ExternalUserID = &id
	}
	p.DateOfBirth = dob.Format("2006-01-02")
	return &p, nil
}

// ListPatients returns the organization's patients ordered by name.
func (s *PatientService) ListPatients(ctx context.Context, orgID uuid.UUID) ([]models.Patient, error) {
	rows, err := s.DB.QueryContext(ctx, `
		SELECT id, organization_id, external_user_id, first_name, last_name, date_of_birth, created_at, updated_at
		FROM patients WHERE organization_id = ?
		ORDER BY last_name, first_name`,
		orgID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []models.Patient
	for rows.Next() {
		var p models.Patient
		var externalUserID uuid.NullUUID
		var dob time.Time
		if err := rows.Scan(&p.ID, &p.OrganizationID, &externalUserID, &p.FirstName,
			&p.LastName, &dob, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		if externalUserID.Valid {
			id := externalUserID.UUID
			p.ExternalUserID = &id
		}
		p.DateOfBirth = dob.Format("2006-01-02")
		result = append(result, p)
	}
	return result, rows.Err()
}
