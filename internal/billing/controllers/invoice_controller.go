package controllers

import (
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/carebridge/hms-backend/internal/billing/models"
	"github.com/carebridge/hms-backend/internal/billing/services"
	"github.com/carebridge/hms-backend/internal/common/apperr"
	"github.com/carebridge/hms-backend/internal/common/httpx"
	"github.com/carebridge/hms-backend/internal/common/middlewares"
	"github.com/carebridge/hms-backend/ws"
)

type InvoiceController struct {
	Service *services.InvoiceService
	Hub     *ws.Hub
}

func NewInvoiceController(service *services.InvoiceService, hub *ws.Hub) *InvoiceController {
	return &InvoiceController{Service: service, Hub: hub}
}

// GenerateInvoice collects a patient's unbilled charges in a date range into a
// new draft invoice. Finding nothing to bill is a normal outcome and returns
// 200 with an informational message.
func (ic *InvoiceController) GenerateInvoice(c echo.Context) error {
	var req models.GenerateInvoiceRequest
	if err := c.Bind(&req); err != nil {
		return httpx.BadRequest(c, "Invalid request payload: "+err.Error())
	}
	if req.PatientID == "" || req.StartDate == "" || req.EndDate == "" {
		return httpx.BadRequest(c, "patient_id, start_date, and end_date are required")
	}
	patientID, err := uuid.Parse(req.PatientID)
	if err != nil {
		return httpx.BadRequest(c, "Invalid patient_id")
	}
	start, err := time.Parse("2006-01-02", req.StartDate)
	if err != nil {
		return httpx.BadRequest(c, "Invalid start_date. Use the YYYY-MM-DD format")
	}
	end, err := time.Parse("2006-01-02", req.EndDate)
	if err != nil {
		return httpx.BadRequest(c, "Invalid end_date. Use the YYYY-MM-DD format")
	}

	orgID, _, err := middlewares.Principal(c)
	if err != nil {
		return httpx.Error(c, err)
	}

	invoice, err := ic.Service.GenerateInvoice(c.Request().Context(), orgID, patientID, start, end)
	if errors.Is(err, apperr.ErrNoUnbilledCharges) {
		return httpx.OK(c, http.StatusOK, "No unbilled charges found for this period.", nil)
	}
	if err != nil {
		return httpx.Error(c, err)
	}

	ic.Hub.Publish("invoice.generated", invoice)
	return httpx.OK(c, http.StatusCreated, "Invoice generated successfully", invoice)
}

// GetInvoice returns one invoice.
func (ic *InvoiceController) GetInvoice(c echo.Context) error {
	invoiceID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return httpx.BadRequest(c, "Invalid invoice id")
	}
	orgID, _, err := middlewares.Principal(c)
	if err != nil {
		return httpx.Error(c, err)
	}

	invoice, err := ic.Service.GetInvoice(c.Request().Context(), orgID, invoiceID)
	if err != nil {
		return httpx.Error(c, err)
	}
	return httpx.OK(c, http.StatusOK, "Invoice retrieved successfully", invoice)
}

// ListInvoices returns the organization's invoices.
func (ic *InvoiceController) ListInvoices(c echo.Context) error {
	orgID, _, err := middlewares.Principal(c)
	if err != nil {
		return httpx.Error(c, err)
	}

	invoices, err := ic.Service.ListInvoices(c.Request().Context(), orgID)
	if err != nil {
		return httpx.Error(c, err)
	}
	return httpx.OK(c, http.StatusOK, "Invoices retrieved successfully", invoices)
}
