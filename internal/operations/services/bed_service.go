package services

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/carebridge/hms-backend/internal/common/apperr"
	"github.com/carebridge/hms-backend/internal/operations/models"
	"github.com/carebridge/hms-backend/pkg/storage/mariadb"
)

// BedService owns the administrative side of the bed state machine:
// AVAILABLE <-> MAINTENANCE. The AVAILABLE -> OCCUPIED transition belongs
// exclusively to admission creation.
type BedService struct {
	DB *sql.DB
}

func NewBedService(db *sql.DB) *BedService {
	return &BedService{DB: db}
}

func (s *BedService) CreateBed(ctx context.Context, orgID, branchID uuid.UUID, building string, floorNumber int, blockNumber, number string, category models.BedCategory, dailyCharge decimal.Decimal) (*models.Bed, error) {
	if number == "" {
		return nil, apperr.InvalidArgument("number is required")
	}
	if !models.ValidBedCategory(category) {
		return nil, apperr.InvalidArgument("unknown bed category")
	}
	if dailyCharge.IsNegative() {
		return nil, apperr.InvalidArgument("daily_charge must not be negative")
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

	bed := &models.Bed{
		ID:          uuid.New(),
		BranchID:    branchID,
		Building:    building,
		FloorNumber: floorNumber,
		BlockNumber: blockNumber,
		Number:      number,
		Category:    category,
		Status:      models.BedAvailable,
		DailyCharge: dailyCharge,
	}
	_, err = s.DB.ExecContext(ctx, `
		INSERT INTO beds (id, branch_id, building, floor_number, block_number, number, category, status, daily_charge)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		bed.ID, bed.BranchID, bed.Building, bed.FloorNumber, bed.BlockNumber,
		bed.Number, bed.Category, bed.Status, bed.DailyCharge,
	)
	if mariadb.IsDuplicateEntry(err) {
		return nil, apperr.Conflict("A bed already exists at this location in the branch")
	}
	if err != nil {
		return nil, err
	}
	return bed, nil
}

// ListBeds returns the beds of one branch, or of the whole organization when
// branchID is nil.
func (s *BedService) ListBeds(ctx context.Context, orgID uuid.UUID, branchID *uuid.UUID) ([]models.Bed, error) {
	query := `
		SELECT b.id, b.branch_id, b.building, b.floor_number, b.block_number, b.number, b.category, b.status, b.daily_charge
		FROM beds b
		JOIN branches br ON b.branch_id = br.id
		WHERE br.organization_id = ?`
	args := []interface{}{orgID}
	if branchID != nil {
		query += " AND b.branch_id = ?"
		args = append(args, *branchID)
	}
	query += " ORDER BY b.building, b.floor_number, b.block_number, b.number"

	rows, err := s.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []models.Bed
	for rows.Next() {
		var b models.Bed
		if err := rows.Scan(&b.ID, &b.BranchID, &b.Building, &b.FloorNumber,
			&b.BlockNumber, &b.Number, &b.Category, &b.Status, &b.DailyCharge); err != nil {
			return nil, err
		}
		result = append(result, b)
	}
	return result, rows.Err()
}

// SetMaintenance takes an available bed out of service. An occupied bed cannot
// enter maintenance while a patient is admitted to it.
func (s *BedService) SetMaintenance(ctx context.Context, orgID, bedID uuid.UUID) error {
	return s.transition(ctx, orgID, bedID, models.BedAvailable, models.BedMaintenance,
		"Only an available bed can be moved to maintenance")
}

// ReturnToService brings a maintenance bed back to available.
func (s *BedService) ReturnToService(ctx context.Context, orgID, bedID uuid.UUID) error {
	return s.transition(ctx, orgID, bedID, models.BedMaintenance, models.BedAvailable,
		"Only a bed under maintenance can be returned to service")
}

func (s *BedService) transition(ctx context.Context, orgID, bedID uuid.UUID, from, to models.BedStatus, conflictReason string) error {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var status models.BedStatus
	err = tx.QueryRowContext(ctx, `
		SELECT b.status FROM beds b
		JOIN branches br ON b.branch_id = br.id
		WHERE b.id = ? AND br.organization_id = ?
		FOR UPDATE`,
		bedID, orgID,
	).Scan(&status)
	if err == sql.ErrNoRows {
		return apperr.NotFound("Bed not found in your organization")
	} else if err != nil {
		return err
	}
	if status != from {
		return apperr.Conflict(conflictReason)
	}

	if _, err = tx.ExecContext(ctx,
		"UPDATE beds SET status = ? WHERE id = ?", to, bedID,
	); err != nil {
		return err
	}
	return tx.Commit()
}
