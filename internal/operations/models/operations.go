package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type OrganizationType string

const (
	OrganizationClinic   OrganizationType = "CLINIC"
	OrganizationHospital OrganizationType = "HOSPITAL"
)

type Organization struct {
	ID        uuid.UUID        `json:"id"`
	Name      string           `json:"name"`
	Type      OrganizationType `json:"type"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`
}

type Branch struct {
	ID             uuid.UUID `json:"id"`
	OrganizationID uuid.UUID `json:"organization_id"`
	Name           string    `json:"name"`
	AddressLine1   string    `json:"address_line_1"`
	City           string    `json:"city"`
	Locality       string    `json:"locality"`
	State          string    `json:"state"`
	CreatedAt      time.Time `json:"created_at"`
}

type BedStatus string

const (
	BedAvailable   BedStatus = "AVAILABLE"
	BedOccupied    BedStatus = "OCCUPIED"
	BedMaintenance BedStatus = "MAINTENANCE"
)

type BedCategory string

const (
	BedGeneralWard BedCategory = "GENERAL_WARD"
	BedSemiPrivate BedCategory = "SEMI_PRIVATE"
	BedPrivateRoom BedCategory = "PRIVATE_ROOM"
	BedICU         BedCategory = "ICU"
)

// ValidBedCategory reports whether c is one of the known bed categories.
func ValidBedCategory(c BedCategory) bool {
	switch c {
	case BedGeneralWard, BedSemiPrivate, BedPrivateRoom, BedICU:
		return true
	}
	return false
}

// Label returns the display name of a bed category, e.g. "General Ward".
// The daily bed charge job looks up services named "<label> Charge".
func (c BedCategory) Label() string {
	switch c {
	case BedGeneralWard:
		return "General Ward"
	case BedSemiPrivate:
		return "Semi-Private Room"
	case BedPrivateRoom:
		return "Private Room"
	case BedICU:
		return "Intensive Care Unit"
	}
	return string(c)
}

// Bed is a physical resource in a branch. Status transitions are guarded by
// BedService and AdmissionService; only admission creation moves a bed from
// AVAILABLE to OCCUPIED.
type Bed struct {
	ID          uuid.UUID       `json:"id"`
	BranchID    uuid.UUID       `json:"branch_id"`
	Building    string          `json:"building"`
	FloorNumber int             `json:"floor_number"`
	BlockNumber string          `json:"block_number"`
	Number      string          `json:"number"`
	Category    BedCategory     `json:"category"`
	Status      BedStatus       `json:"status"`
	DailyCharge decimal.Decimal `json:"daily_charge"`
}

type StaffRole string

const (
	RoleAdmin        StaffRole = "ADMIN"
	RoleDoctor       StaffRole = "DOCTOR"
	RoleReceptionist StaffRole = "RECEPTIONIST"
)

// Staff is an authenticated principal. Password hash never leaves the service
// layer.
type Staff struct {
	ID             uuid.UUID `json:"id"`
	OrganizationID uuid.UUID `json:"organization_id"`
	Username       string    `json:"username"`
	PasswordHash   string    `json:"-"`
	FullName       string    `json:"full_name"`
	Role           StaffRole `json:"role"`
}

type CreateBedRequest struct {
	BranchID    string `json:"branch_id"`
	Building    string `json:"building"`
	FloorNumber int    `json:"floor_number"`
	BlockNumber string `json:"block_number"`
	Number      string `json:"number"`
	Category    string `json:"category"`
	DailyCharge string `json:"daily_charge"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}
