package controllers

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/carebridge/hms-backend/internal/billing/models"
	"github.com/carebridge/hms-backend/internal/billing/services"
	"github.com/carebridge/hms-backend/internal/common/httpx"
	"github.com/carebridge/hms-backend/internal/common/middlewares"
)

// CatalogController manages the organization's billable service catalog.
// Routes are admin-gated in the route registration.
type CatalogController struct {
	Service *services.CatalogService
}

func NewCatalogController(service *services.CatalogService) *CatalogController {
	return &CatalogController{Service: service}
}

func (cc *CatalogController) CreateService(c echo.Context) error {
	var req models.CreateServiceRequest
	if err := c.Bind(&req); err != nil {
		return httpx.BadRequest(c, "Invalid request payload: "+err.Error())
	}
	if req.Name == "" || req.Category == "" || req.Price == "" {
		return httpx.BadRequest(c, "name, category, and price are required")
	}
	price, err := decimal.NewFromString(req.Price)
	if err != nil {
		return httpx.BadRequest(c, "Invalid price. Use a decimal string like \"100.00\"")
	}
	orgID, _, err := middlewares.Principal(c)
	if err != nil {
		return httpx.Error(c, err)
	}

	svc, err := cc.Service.CreateService(c.Request().Context(), orgID, req.Name,
		req.Description, models.ServiceCategory(req.Category), price)
	if err != nil {
		return httpx.Error(c, err)
	}
	return httpx.OK(c, http.StatusCreated, "Service created successfully", svc)
}

func (cc *CatalogController) ListServices(c echo.Context) error {
	orgID, _, err := middlewares.Principal(c)
	if err != nil {
		return httpx.Error(c, err)
	}
	result, err := cc.Service.ListServices(c.Request().Context(), orgID)
	if err != nil {
		return httpx.Error(c, err)
	}
	return httpx.OK(c, http.StatusOK, "Services retrieved successfully", result)
}

func (cc *CatalogController) UpdateService(c echo.Context) error {
	serviceID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return httpx.BadRequest(c, "Invalid service id")
	}
	var req models.UpdateServiceRequest
	if err := c.Bind(&req); err != nil {
		return httpx.BadRequest(c, "Invalid request payload: "+err.Error())
	}
	orgID, _, err := middlewares.Principal(c)
	if err != nil {
		return httpx.Error(c, err)
	}

	svc, err := cc.Service.UpdateService(c.Request().Context(), orgID, serviceID, req)
	if err != nil {
		return httpx.Error(c, err)
	}
	return httpx.OK(c, http.StatusOK, "Service updated successfully", svc)
}

func (cc *CatalogController) DeleteService(c echo.Context) error {
	serviceID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return httpx.BadRequest(c, "Invalid service id")
	}
	orgID, _, err := middlewares.Principal(c)
	if err != nil {
		return httpx.Error(c, err)
	}

	if err := cc.Service.DeleteService(c.Request().Context(), orgID, serviceID); err != nil {
		return httpx.Error(c, err)
	}
	return httpx.OK(c, http.StatusOK, "Service deleted successfully", nil)
}
