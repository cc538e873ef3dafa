package services

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/carebridge/hms-backend/internal/common/apperr"
	"github.com/carebridge/hms-backend/internal/inventory/models"
	"github.com/carebridge/hms-backend/pkg/storage/mariadb"
)

// StockService is the read-mostly inventory boundary: the medication catalog,
// per-branch stock levels, and the real-time availability check doctors use.
type StockService struct {
	DB *sql.DB
}

func NewStockService(db *sql.DB) *StockService {
	return &StockService{DB: db}
}

// CheckStock looks up the stock of a medication at a branch by a
// case-insensitive name fragment. Exactly one match is required: zero reads as
// out of stock, several mean the search term is too broad.
func (s *StockService) CheckStock(ctx context.Context, orgID, branchID uuid.UUID, medicationName string) (*models.StockCheckResult, error) {
	if medicationName == "" {
		return nil, apperr.InvalidArgument("medication_name is required")
	}

	rows, err := s.DB.QueryContext(ctx, `
		SELECT m.id, m.name, s.quantity, b.id, b.name
		FROM medication_stocks s
		JOIN medications m ON s.medication_id = m.id
		JOIN branches b ON s.branch_id = b.id
		WHERE s.branch_id = ? AND b.organization_id = ?
		  AND LOWER(m.name) LIKE CONCAT('%', LOWER(?), '%')`,
		branchID, orgID, medicationName,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var matches []models.StockCheckResult
	for rows.Next() {
		var r models.StockCheckResult
		if err := rows.Scan(&r.MedicationID, &r.MedicationName, &r.Quantity,
			&r.BranchID, &r.BranchName); err != nil {
			return nil, err
		}
		matches = append(matches, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	switch len(matches) {
	case 0:
		return nil, apperr.NotFound("Out of Stock or Medication Not Found")
	case 1:
		result := matches[0]
		result.Status = "In Stock"
		return &result, nil
	default:
		return nil, apperr.InvalidArgument("Search term is not specific enough")
	}
}

// CreateMedication adds a catalog entry, unique per (organization, name).
func (s *StockService) CreateMedication(ctx context.Context, orgID uuid.UUID, name, description string) (*models.Medication, error) {
	if name == "" {
		return nil, apperr.InvalidArgument("name is required")
	}
	med := &models.Medication{
		ID:             uuid.New(),
		OrganizationID: orgID,
		Name:           name,
		Description:    description,
	}
	_, err := s.DB.ExecContext(ctx, `
		INSERT INTO medications (id, organization_id, name, description)
		VALUES (?, ?, ?, ?)`,
		med.ID, med.OrganizationID, med.Name, med.Description,
	)
	if mariadb.IsDuplicateEntry(err) {
		return nil, apperr.Conflict("A medication with this name already exists in your organization")
	}
	if err != nil {
		return nil, err
	}
	return med, nil
}

// ListMedications returns the organization's medication catalog.
func (s *StockService) ListMedications(ctx context.Context, orgID uuid.UUID) ([]models.Medication, error) {
	rows, err := s.DB.QueryContext(ctx, `
		SELECT id, organization_id, name, description
		FROM medications WHERE organization_id = ?
		ORDER BY name`,
		orgID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []models.Medication
	for rows.Next() {
		var m models.Medication
		if err := rows.Scan(&m.ID, &m.OrganizationID, &m.Name, &m.Description); err != nil {
			return nil, err
		}
		result = append(result, m)
	}
	return result, rows.Err()
}

// UpsertStock sets the stock level of a medication at a branch. One stock row
// exists per (medication, branch).
func (s *StockService) UpsertStock(ctx context.Context, orgID, medicationID, branchID uuid.UUID, quantity, reorderLevel int) (*models.MedicationStock, error) {
	if quantity < 0 || reorderLevel < 0 {
		return nil, apperr.InvalidArgument("quantity and reorder_level must not be negative")
	}

	var exists int
	err := s.DB.QueryRowContext(ctx,
		"SELECT 1 FROM medications WHERE id = ? AND organization_id = ?",
		medicationID, orgID,
	).Scan(&exists)
	if err == sql.ErrNoRows {
		return nil, apperr.NotFound("Medication not found in your organization")
	} else if err != nil {
		return nil, err
	}
	err = s.DB.QueryRowContext(ctx,
		"SELECT 1 FROM branches WHERE id = ? AND organization_id = ?",
		branchID, orgID,
	).Scan(&exists)
	if err == sql.ErrNoRows {
		return nil, apperr.NotFound("Branch not found in your organization")
	} else if err != nil {
		return nil, err
	}

	stock := &models.MedicationStock{
		ID:           uuid.New(),
		MedicationID: medicationID,
		BranchID:     branchID,
		Quantity:     quantity,
		ReorderLevel: reorderLevel,
		LastUpdated:  time.Now(),
	}
	_, err = s.DB.ExecContext(ctx, `
		INSERT INTO medication_stocks (id, medication_id, branch_id, quantity, reorder_level, last_updated)
		VALUES (?, ?, ?, ?, ?, ?)
		ON DUPLICATE KEY UPDATE quantity = VALUES(quantity), reorder_level = VALUES(reorder_level), last_updated = VALUES(last_updated)`,
		stock.ID, stock.MedicationID, stock.BranchID, stock.Quantity, stock.ReorderLevel, stock.LastUpdated,
	)
	if err != nil {
		return nil, err
	}
	return stock, nil
}
