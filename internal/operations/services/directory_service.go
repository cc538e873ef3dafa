package services

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/carebridge/hms-backend/internal/common/apperr"
	"github.com/carebridge/hms-backend/internal/operations/models"
)

// DirectoryService exposes read-only organization and branch data that the
// rest of the system references.
type DirectoryService struct {
	DB *sql.DB
}

func NewDirectoryService(db *sql.DB) *DirectoryService {
	return &DirectoryService{DB: db}
}

func (s *DirectoryService) GetOrganization(ctx context.Context, orgID uuid.UUID) (*models.Organization, error) {
	var org models.Organization
	err := s.DB.QueryRowContext(ctx,
		"SELECT id, name, type, created_at, updated_at FROM organizations WHERE id = ?",
		orgID,
	).Scan(&org.ID, &org.Name, &org.Type, &org.CreatedAt, &org.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, apperr.NotFound("Organization not found")
	} else if err != nil {
		return nil, err
	}
	return &org, nil
}

func (s *DirectoryService) ListBranches(ctx context.Context, orgID uuid.UUID) ([]models.Branch, error) {
	rows, err := s.DB.QueryContext(ctx, `
		SELECT id, organization_id, name, address_line_1, city, locality, state, created_at
		FROM branches WHERE organization_id = ?
		ORDER BY name`,
		orgID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []models.Branch
	for rows.Next() {
		var b models.Branch
		if err := rows.Scan(&b.ID, &b.OrganizationID, &b.Name, &b.AddressLine1,
			&b.City, &b.Locality, &b.State, &b.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, b)
	}
	return result, rows.Err()
}
