package controllers

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/carebridge/hms-backend/internal/billing/models"
	"github.com/carebridge/hms-backend/internal/billing/services"
	"github.com/carebridge/hms-backend/internal/common/httpx"
	"github.com/carebridge/hms-backend/internal/common/middlewares"
)

type ChargeController struct {
	Service *services.ChargeService
}

func NewChargeController(service *services.ChargeService) *ChargeController {
	return &ChargeController{Service: service}
}

// CreateCharge records a billable event via the direct billing API.
func (cc *ChargeController) CreateCharge(c echo.Context) error {
	var req models.CreateChargeRequest
	if err := c.Bind(&req); err != nil {
		return httpx.BadRequest(c, "Invalid request payload: "+err.Error())
	}
	if req.PatientID == "" || req.ServiceID == "" {
		return httpx.BadRequest(c, "patient_id and service_id are required")
	}
	patientID, err := uuid.Parse(req.PatientID)
	if err != nil {
		return httpx.BadRequest(c, "Invalid patient_id")
	}
	serviceID, err := uuid.Parse(req.ServiceID)
	if err != nil {
		return httpx.BadRequest(c, "Invalid service_id")
	}

	quantity := 1
	if req.Quantity != nil {
		quantity = *req.Quantity
	}

	var explicitPrice *decimal.Decimal
	if req.Price != nil {
		price, err := decimal.NewFromString(*req.Price)
		if err != nil {
			return httpx.BadRequest(c, "Invalid price. Use a decimal string like \"100.00\"")
		}
		explicitPrice = &price
	}

	orgID, _, err := middlewares.Principal(c)
	if err != nil {
		return httpx.Error(c, err)
	}

	charge, err := cc.Service.CreateCharge(c.Request().Context(), orgID, patientID, serviceID, quantity, explicitPrice)
	if err != nil {
		return httpx.Error(c, err)
	}
	return httpx.OK(c, http.StatusCreated, "Charge created successfully", charge)
}

// ListCharges returns a patient's charges, or only the unbilled ones in a
// date range when start_date and end_date are given.
func (cc *ChargeController) ListCharges(c echo.Context) error {
	patientParam := c.QueryParam("patient_id")
	if patientParam == "" {
		return httpx.BadRequest(c, "patient_id is required")
	}
	patientID, err := uuid.Parse(patientParam)
	if err != nil {
		return httpx.BadRequest(c, "Invalid patient_id")
	}
	orgID, _, err := middlewares.Principal(c)
	if err != nil {
		return httpx.Error(c, err)
	}

	startParam := c.QueryParam("start_date")
	endParam := c.QueryParam("end_date")
	if startParam != "" || endParam != "" {
		start, err := parseDate(startParam)
		if err != nil {
			return httpx.BadRequest(c, "Invalid start_date. Use the YYYY-MM-DD format")
		}
		end, err := parseDate(endParam)
		if err != nil {
			return httpx.BadRequest(c, "Invalid end_date. Use the YYYY-MM-DD format")
		}
		charges, err := cc.Service.ListUnbilled(c.Request().Context(), orgID, patientID, start, end)
		if err != nil {
			return httpx.Error(c, err)
		}
		return httpx.OK(c, http.StatusOK, "Unbilled charges retrieved successfully", charges)
	}

	charges, err := cc.Service.ListChargesByPatient(c.Request().Context(), orgID, patientID)
	if err != nil {
		return httpx.Error(c, err)
	}
	return httpx.OK(c, http.StatusOK, "Charges retrieved successfully", charges)
}

// UpdateChargeQuantity changes a charge's quantity; the stored total is
// recomputed in the same statement.
func (cc *ChargeController) UpdateChargeQuantity(c echo.Context) error {
	chargeID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return httpx.BadRequest(c, "Invalid charge id")
	}
	var req models.UpdateChargeQuantityRequest
	if err := c.Bind(&req); err != nil {
		return httpx.BadRequest(c, "Invalid request payload: "+err.Error())
	}
	orgID, _, err := middlewares.Principal(c)
	if err != nil {
		return httpx.Error(c, err)
	}

	if err := cc.Service.UpdateChargeQuantity(c.Request().Context(), orgID, chargeID, req.Quantity); err != nil {
		return httpx.Error(c, err)
	}
	return httpx.OK(c, http.StatusOK, "Charge updated successfully", nil)
}

// CancelCharge marks a pending charge cancelled.
func (cc *ChargeController) CancelCharge(c echo.Context) error {
	chargeID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return httpx.BadRequest(c, "Invalid charge id")
	}
	orgID, _, err := middlewares.Principal(c)
	if err != nil {
		return httpx.Error(c, err)
	}

	if err := cc.Service.CancelCharge(c.Request().Context(), orgID, chargeID); err != nil {
		return httpx.Error(c, err)
	}
	return httpx.OK(c, http.StatusOK, "Charge cancelled successfully", nil)
}

func parseDate(s string) (time.Time, error) {
	return time.Parse("2006-01-02", s)
}
