package controllers

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/carebridge/hms-backend/internal/common/httpx"
	"github.com/carebridge/hms-backend/internal/common/middlewares"
	"github.com/carebridge/hms-backend/internal/operations/models"
	"github.com/carebridge/hms-backend/internal/operations/services"
)

type BedController struct {
	Service *services.BedService
}

func NewBedController(service *services.BedService) *BedController {
	return &BedController{Service: service}
}

// CreateBed registers a bed under a branch.
func (bc *BedController) CreateBed(c echo.Context) error {
	var req models.CreateBedRequest
	if err := c.Bind(&req); err != nil {
		return httpx.BadRequest(c, "Invalid request payload: "+err.Error())
	}
	if req.BranchID == "" || req.Number == "" || req.Category == "" {
		return httpx.BadRequest(c, "branch_id, number and category are required")
	}
	branchID, err := uuid.Parse(req.BranchID)
	if err != nil {
		return httpx.BadRequest(c, "Invalid branch_id")
	}
	dailyCharge, err := decimal.NewFromString(req.DailyCharge)
	if err != nil {
		return httpx.BadRequest(c, "Invalid daily_charge. Use a decimal string like \"250.00\"")
	}

	orgID, _, err := middlewares.Principal(c)
	if err != nil {
		return httpx.Error(c, err)
	}

	bed, err := bc.Service.CreateBed(c.Request().Context(), orgID, branchID, req.Building, req.FloorNumber, req.BlockNumber, req.Number, models.BedCategory(req.Category), dailyCharge)
	if err != nil {
		return httpx.Error(c, err)
	}
	return httpx.OK(c, http.StatusCreated, "Bed created successfully", bed)
}

// ListBeds returns beds in the caller's organization, optionally filtered
// by branch.
func (bc *BedController) ListBeds(c echo.Context) error {
	orgID, _, err := middlewares.Principal(c)
	if err != nil {
		return httpx.Error(c, err)
	}

	var branchID *uuid.UUID
	if branchParam := c.QueryParam("branch_id"); branchParam != "" {
		id, err := uuid.Parse(branchParam)
		if err != nil {
			return httpx.BadRequest(c, "Invalid branch_id")
		}
		branchID = &id
	}

	beds, err := bc.Service.ListBeds(c.Request().Context(), orgID, branchID)
	if err != nil {
		return httpx.Error(c, err)
	}
	return httpx.OK(c, http.StatusOK, "Beds retrieved successfully", beds)
}

// SetMaintenance takes an available bed out of service.
func (bc *BedController) SetMaintenance(c echo.Context) error {
	return bc.changeStatus(c, bc.Service.SetMaintenance, "Bed moved to maintenance")
}

// ReturnToService makes a maintenance bed available again.
func (bc *BedController) ReturnToService(c echo.Context) error {
	return bc.changeStatus(c, bc.Service.ReturnToService, "Bed returned to service")
}

func (bc *BedController) changeStatus(c echo.Context, transition func(ctx context.Context, orgID, bedID uuid.UUID) error, message string) error {
	bedID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return httpx.BadRequest(c, "Invalid bed id")
	}
	orgID, _, err := middlewares.Principal(c)
	if err != nil {
		return httpx.Error(c, err)
	}

	if err := transition(c.Request().Context(), orgID, bedID); err != nil {
		return httpx.Error(c, err)
	}
	return httpx.OK(c, http.StatusOK, message, nil)
}
