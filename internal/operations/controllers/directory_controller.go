package controllers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/carebridge/hms-backend/internal/common/httpx"
	"github.com/carebridge/hms-backend/internal/common/middlewares"
	"github.com/carebridge/hms-backend/internal/operations/services"
)

type DirectoryController struct {
	Service *services.DirectoryService
}

func NewDirectoryController(service *services.DirectoryService) *DirectoryController {
	return &DirectoryController{Service: service}
}

// GetOrganization returns the caller's organization record.
func (dc *DirectoryController) GetOrganization(c echo.Context) error {
	orgID, _, err := middlewares.Principal(c)
	if err != nil {
		return httpx.Error(c, err)
	}

	org, err := dc.Service.GetOrganization(c.Request().Context(), orgID)
	if err != nil {
		return httpx.Error(c, err)
	}
	return httpx.OK(c, http.StatusOK, "Organization retrieved successfully", org)
}

// ListBranches returns the caller's organization branches.
func (dc *DirectoryController) ListBranches(c echo.Context) error {
	orgID, _, err := middlewares.Principal(c)
	if err != nil {
		return httpx.Error(c, err)
	}

	branches, err := dc.Service.ListBranches(c.Request().Context(), orgID)
	if err != nil {
		return httpx.Error(c, err)
	}
	return httpx.OK(c, http.StatusOK, "Branches retrieved successfully", branches)
}
