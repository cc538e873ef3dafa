package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type ServiceCategory string

const (
	CategoryConsultation ServiceCategory = "CONSULTATION"
	CategoryProcedure    ServiceCategory = "PROCEDURE"
	CategoryLabTest      ServiceCategory = "LAB_TEST"
	CategoryMedication   ServiceCategory = "MEDICATION"
	CategoryOther        ServiceCategory = "OTHER"
)

// ValidServiceCategory reports whether c is one of the known categories.
func ValidServiceCategory(c ServiceCategory) bool {
	switch c {
	case CategoryConsultation, CategoryProcedure, CategoryLabTest, CategoryMedication, CategoryOther:
		return true
	}
	return false
}

// Service is a billable catalog entry. (organization, name) is unique.
type Service struct {
	ID             uuid.UUID       `json:"id"`
	OrganizationID uuid.UUID       `json:"organization_id"`
	Name           string          `json:"name"`
	Description    string          `json:"description"`
	Category       ServiceCategory `json:"category"`
	Price          decimal.Decimal `json:"price"`
	IsActive       bool            `json:"is_active"`
	CreatedAt      time.Time       `json:"created_at"`
}

type ChargeStatus string

const (
	ChargePending   ChargeStatus = "PENDING"
	ChargePaid      ChargeStatus = "PAID"
	ChargeCancelled ChargeStatus = "CANCELLED"
)

// Charge is one billable event. PriceAtCharge is captured from the service's
// price at creation time and never rewritten; TotalPrice is recomputed on every
// persisted write so that TotalPrice == PriceAtCharge * Quantity always holds.
type Charge struct {
	ID            uuid.UUID       `json:"id"`
	PatientID     uuid.UUID       `json:"patient_id"`
	ServiceID     uuid.UUID       `json:"service_id"`
	InvoiceID     *uuid.UUID      `json:"invoice_id"`
	Quantity      int             `json:"quantity"`
	PriceAtCharge decimal.Decimal `json:"price_at_charge"`
	TotalPrice    decimal.Decimal `json:"total_price"`
	Status        ChargeStatus    `json:"status"`
	CreatedAt     time.Time       `json:"created_at"`
}

// ComputeTotal returns price * quantity with exact decimal arithmetic.
func ComputeTotal(price decimal.Decimal, quantity int) decimal.Decimal {
	return price.Mul(decimal.NewFromInt(int64(quantity)))
}

type InvoiceStatus string

const (
	InvoiceDraft     InvoiceStatus = "DRAFT"
	InvoiceFinalized InvoiceStatus = "FINALIZED"
	InvoicePaid      InvoiceStatus = "PAID"
)

// Invoice aggregates previously-unbilled charges for one patient over a date
// range. TotalAmount is a snapshot computed at generation time.
type Invoice struct {
	ID             uuid.UUID       `json:"id"`
	PatientID      uuid.UUID       `json:"patient_id"`
	OrganizationID uuid.UUID       `json:"organization_id"`
	StartDate      string          `json:"start_date"`
	EndDate        string          `json:"end_date"`
	TotalAmount    decimal.Decimal `json:"total_amount"`
	Status         InvoiceStatus   `json:"status"`
	CreatedAt      time.Time       `json:"created_at"`
}

type GenerateInvoiceRequest struct {
	PatientID string `json:"patient_id"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

type CreateServiceRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Price       string `json:"price"`
}

type UpdateServiceRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Price       *string `json:"price"`
	IsActive    *bool   `json:"is_active"`
}

type CreateChargeRequest struct {
	PatientID string `json:"patient_id"`
	ServiceID string `json:"service_id"`
	Quantity  *int   `json:"quantity"`
	// Price overrides the service's current price when set, e.g. for
	// bed fees taken from the bed's daily charge.
	Price *string `json:"price"`
}

type UpdateChargeQuantityRequest struct {
	Quantity int `json:"quantity"`
}
