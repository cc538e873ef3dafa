package models

import (
	"time"

	"github.com/google/uuid"
)

// Medication is a master catalog entry, unique per (organization, name).
type Medication struct {
	ID             uuid.UUID `json:"id"`
	OrganizationID uuid.UUID `json:"organization_id"`
	Name           string    `json:"name"`
	Description    string    `json:"description"`
}

// MedicationStock tracks the stock level of one medication at one branch.
type MedicationStock struct {
	ID           uuid.UUID `json:"id"`
	MedicationID uuid.UUID `json:"medication_id"`
	BranchID     uuid.UUID `json:"branch_id"`
	Quantity     int       `json:"quantity"`
	ReorderLevel int       `json:"reorder_level"`
	LastUpdated  time.Time `json:"last_updated"`
}

// StockCheckResult is the payload for the real-time availability lookup.
type StockCheckResult struct {
	Status         string    `json:"status"`
	MedicationID   uuid.UUID `json:"medication_id"`
	MedicationName string    `json:"medication_name"`
	BranchID       uuid.UUID `json:"branch_id"`
	BranchName     string    `json:"branch_name"`
	Quantity       int       `json:"quantity"`
}

type CreateMedicationRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type UpsertStockRequest struct {
	MedicationID string `json:"medication_id"`
	BranchID     string `json:"branch_id"`
	Quantity     int    `json:"quantity"`
	ReorderLevel int    `json:"reorder_level"`
}
