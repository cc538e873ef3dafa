package controllers

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/carebridge/hms-backend/internal/common/httpx"
	"github.com/carebridge/hms-backend/internal/common/middlewares"
	"github.com/carebridge/hms-backend/internal/inventory/models"
	"github.com/carebridge/hms-backend/internal/inventory/services"
)

type InventoryController struct {
	Service *services.StockService
}

func NewInventoryController(service *services.StockService) *InventoryController {
	return &InventoryController{Service: service}
}

// CheckStock answers a free-text availability question for one branch.
func (ic *InventoryController) CheckStock(c echo.Context) error {
	branchParam := c.QueryParam("branch_id")
	name := c.QueryParam("medication")
	if branchParam == "" || name == "" {
		return httpx.BadRequest(c, "branch_id and medication are required")
	}
	branchID, err := uuid.Parse(branchParam)
	if err != nil {
		return httpx.BadRequest(c, "Invalid branch_id")
	}
	orgID, _, err := middlewares.Principal(c)
	if err != nil {
		return httpx.Error(c, err)
	}

	result, err := ic.Service.CheckStock(c.Request().Context(), orgID, branchID, name)
	if err != nil {
		return httpx.Error(c, err)
	}
	return httpx.OK(c, http.StatusOK, "Stock checked successfully", result)
}

// CreateMedication registers a medication in the caller's organization.
func (ic *InventoryController) CreateMedication(c echo.Context) error {
	var req models.CreateMedicationRequest
	if err := c.Bind(&req); err != nil {
		return httpx.BadRequest(c, "Invalid request payload: "+err.Error())
	}
	if req.Name == "" {
		return httpx.BadRequest(c, "name is required")
	}
	orgID, _, err := middlewares.Principal(c)
	if err != nil {
		return httpx.Error(c, err)
	}

	medication, err := ic.Service.CreateMedication(c.Request().Context(), orgID, req.Name, req.Description)
	if err != nil {
		return httpx.Error(c, err)
	}
	return httpx.OK(c, http.StatusCreated, "Medication created successfully", medication)
}

// ListMedications returns every medication in the caller's organization.
func (ic *InventoryController) ListMedications(c echo.Context) error {
	orgID, _, err := middlewares.Principal(c)
	if err != nil {
		return httpx.Error(c, err)
	}

	medications, err := ic.Service.ListMedications(c.Request().Context(), orgID)
	if err != nil {
		return httpx.Error(c, err)
	}
	return httpx.OK(c, http.StatusOK, "Medications retrieved successfully", medications)
}

// UpsertStock sets a branch's stock level for a medication.
func (ic *InventoryController) UpsertStock(c echo.Context) error {
	var req models.UpsertStockRequest
	if err := c.Bind(&req); err != nil {
		return httpx.BadRequest(c, "Invalid request payload: "+err.Error())
	}
	if req.MedicationID == "" || req.BranchID == "" {
		return httpx.BadRequest(c, "medication_id and branch_id are required")
	}
	medicationID, err := uuid.Parse(req.MedicationID)
	if err != nil {
		return httpx.BadRequest(c, "Invalid medication_id")
	}
	branchID, err := uuid.Parse(req.BranchID)
	if err != nil {
		return httpx.BadRequest(c, "Invalid branch_id")
	}
	orgID, _, err := middlewares.Principal(c)
	if err != nil {
		return httpx.Error(c, err)
	}

	stock, err := ic.Service.UpsertStock(c.Request().Context(), orgID, medicationID, branchID, req.Quantity, req.ReorderLevel)
	if err != nil {
		return httpx.Error(c, err)
	}
	return httpx.OK(c, http.StatusOK, "Stock updated successfully", stock)
}
