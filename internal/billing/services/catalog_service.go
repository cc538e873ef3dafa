package services

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/carebridge/hms-backend/internal/billing/models"
	"github.com/carebridge/hms-backend/internal/common/apperr"
	"github.com/carebridge/hms-backend/pkg/storage/mariadb"
)

// CatalogService manages the organization's catalog of billable services.
// Changing a service's price never touches existing charges: their
// price_at_charge is a snapshot taken at charge creation.
type CatalogService struct {
	DB *sql.DB
}

func NewCatalogService(db *sql.DB) *CatalogService {
	return &CatalogService{DB: db}
}

func (s *CatalogService) CreateService(ctx context.Context, orgID uuid.UUID, name, description string, category models.ServiceCategory, price decimal.Decimal) (*models.Service, error) {
	if name == "" {
		return nil, apperr.InvalidArgument("name is required")
	}
	if !models.ValidServiceCategory(category) {
		return nil, apperr.InvalidArgument("unknown service category")
	}
	if price.IsNegative() {
		return nil, apperr.InvalidArgument("price must not be negative")
	}

	svc := &models.Service{
		ID:             uuid.New(),
		OrganizationID: orgID,
		Name:           name,
		Description:    description,
		Category:       category,
		Price:          price,
		IsActive:       true,
		CreatedAt:      time.Now(),
	}
	_, err := s.DB.ExecContext(ctx, `
		INSERT INTO services (id, organization_id, name, description, category, price, is_active, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		svc.ID, svc.OrganizationID, svc.Name, svc.Description,
		svc.Category, svc.Price, svc.IsActive, svc.CreatedAt,
	)
	if mariadb.IsDuplicateEntry(err) {
		return nil, apperr.Conflict("A service with this name already exists in your organization")
	}
	if err != nil {
		return nil, err
	}
	return svc, nil
}

func (s *CatalogService) ListServices(ctx context.Context, orgID uuid.UUID) ([]models.Service, error) {
	rows, err := s.DB.QueryContext(ctx, `
		SELECT id, organization_id, name, description, category, price, is_active, created_at
		FROM services WHERE organization_id = ?
		ORDER BY category, name`,
		orgID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []models.Service
	for rows.Next() {
		var svc models.Service
		if err := rows.Scan(&svc.ID, &svc.OrganizationID, &svc.Name, &svc.Description,
			&svc.Category, &svc.Price, &svc.IsActive, &svc.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, svc)
	}
	return result, rows.Err()
}

func (s *CatalogService) GetService(ctx context.Context, orgID, serviceID uuid.UUID) (*models.Service, error) {
	var svc models.Service
	err := s.DB.QueryRowContext(ctx, `
		SELECT id, organization_id, name, description, category, price, is_active, created_at
		FROM services WHERE id = ? AND organization_id = ?`,
		serviceID, orgID,
	).Scan(&svc.ID, &svc.OrganizationID, &svc.Name, &svc.Description,
		&svc.Category, &svc.Price, &svc.IsActive, &svc.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, apperr.NotFound("Service not found in your organization")
	} else if err != nil {
		return nil, err
	}
	return &svc, nil
}

// UpdateService applies partial updates. Category is deliberately immutable:
// the consultation lookup in appointment completion depends on it.
func (s *CatalogService) UpdateService(ctx context.Context, orgID, serviceID uuid.UUID, req models.UpdateServiceRequest) (*models.Service, error) {
	svc, err := s.GetService(ctx, orgID, serviceID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		if *req.Name == "" {
			return nil, apperr.InvalidArgument("name must not be empty")
		}
		svc.Name = *req.Name
	}
	if req.Description != nil {
		svc.Description = *req.Description
	}
	if req.Price != nil {
		price, err := decimal.NewFromString(*req.Price)
		if err != nil || price.IsNegative() {
			return nil, apperr.InvalidArgument("price must be a non-negative decimal")
		}
		svc.Price = price
	}
	if req.IsActive != nil {
		svc.IsActive = *req.IsActive
	}

	_, err = s.DB.ExecContext(ctx, `
		UPDATE services SET name = ?, description = ?, price = ?, is_active = ?
		WHERE id = ? AND organization_id = ?`,
		svc.Name, svc.Description, svc.Price, svc.IsActive, serviceID, orgID,
	)
	if mariadb.IsDuplicateEntry(err) {
		return nil, apperr.Conflict("A service with this name already exists in your organization")
	}
	if err != nil {
		return nil, err
	}
	return svc, nil
}

// DeleteService removes a catalog entry. Deletion is blocked while any charge
// references the service; billing history must stay resolvable.
func (s *CatalogService) DeleteService(ctx context.Context, orgID, serviceID uuid.UUID) error {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var exists int
	err = tx.QueryRowContext(ctx,
		"SELECT 1 FROM services WHERE id = ? AND organization_id = ? FOR UPDATE",
		serviceID, orgID,
	).Scan(&exists)
	if err == sql.ErrNoRows {
		return apperr.NotFound("Service not found in your organization")
	} else if err != nil {
		return err
	}

	var referenced int
	err = tx.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM charges WHERE service_id = ?",
		serviceID,
	).Scan(&referenced)
	if err != nil {
		return err
	}
	if referenced > 0 {
		return apperr.Conflict("This service is referenced by existing charges and cannot be deleted")
	}

	if _, err = tx.ExecContext(ctx,
		"DELETE FROM services WHERE id = ?", serviceID,
	); err != nil {
		return err
	}
	return tx.Commit()
}
