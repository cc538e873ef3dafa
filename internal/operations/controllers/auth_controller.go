package controllers

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/carebridge/hms-backend/internal/common/httpx"
	"github.com/carebridge/hms-backend/internal/operations/models"
	"github.com/carebridge/hms-backend/internal/operations/services"
	"github.com/carebridge/hms-backend/pkg/utils"
)

type AuthController struct {
	Service *services.AuthService
}

func NewAuthController(service *services.AuthService) *AuthController {
	return &AuthController{Service: service}
}

// Login verifies staff credentials and issues a JWT scoped to the staff
// member's organization and role.
func (ac *AuthController) Login(c echo.Context) error {
	var req models.LoginRequest
	if err := c.Bind(&req); err != nil {
		return httpx.BadRequest(c, "Invalid request payload: "+err.Error())
	}
	if req.Username == "" || req.Password == "" {
		return httpx.BadRequest(c, "username and password are required")
	}

	staff, err := ac.Service.Authenticate(c.Request().Context(), req.Username, req.Password)
	if err != nil {
		return httpx.Error(c, err)
	}

	token, err := utils.GenerateJWTToken(staff.ID, staff.OrganizationID, string(staff.Role), staff.Username, time.Now().Add(12*time.Hour))
	if err != nil {
		return httpx.Error(c, err)
	}

	return httpx.OK(c, http.StatusOK, "Login successful", echo.Map{
		"token": token,
		"user": echo.Map{
			"id":              staff.ID,
			"organization_id": staff.OrganizationID,
			"username":        staff.Username,
			"full_name":       staff.FullName,
			"role":            staff.Role,
		},
	})
}
