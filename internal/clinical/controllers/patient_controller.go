package controllers

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/carebridge/hms-backend/internal/clinical/models"
	"github.com/carebridge/hms-backend/internal/clinical/services"
	"github.com/carebridge/hms-backend/internal/common/httpx"
	"github.com/carebridge/hms-backend/internal/common/middlewares"
)

type PatientController struct {
	Service *services.PatientService
}

func NewPatientController(service *services.PatientService) *PatientController {
	return &PatientController{Service: service}
}

// RegisterPatient creates a patient record in the caller's organization.
func (pc *PatientController) RegisterPatient(c echo.Context) error {
	var req models.CreatePatientRequest
	if err := c.Bind(&req); err != nil {
		return httpx.BadRequest(c, "Invalid request payload: "+err.Error())
	}
	if req.FirstName == "" || req.LastName == "" {
		return httpx.BadRequest(c, "first_name and last_name are required")
	}
	dob, err := time.Parse("2006-01-02", req.DateOfBirth)
	if err != nil {
		return httpx.BadRequest(c, "Invalid date_of_birth. Use the YYYY-MM-DD format")
	}

	orgID, _, err := middlewares.Principal(c)
	if err != nil {
		return httpx.Error(c, err)
	}

	patient, err := pc.Service.RegisterPatient(c.Request().Context(), orgID, req.FirstName, req.LastName, dob)
	if err != nil {
		return httpx.Error(c, err)
	}
	return httpx.OK(c, http.StatusCreated, "Patient registered successfully", patient)
}

// GetPatient returns a single patient by id.
func (pc *PatientController) GetPatient(c echo.Context) error {
	patientID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return httpx.BadRequest(c, "Invalid patient id")
	}
	orgID, _, err := middlewares.Principal(c)
	if err != nil {
		return httpx.Error(c, err)
	}

	patient, err := pc.Service.GetPatient(c.Request().Context(), orgID, patientID)
	if err != nil {
		return httpx.Error(c, err)
	}
	return httpx.OK(c, http.StatusOK, "Patient retrieved successfully", patient)
}

// ListPatients returns every patient in the caller's organization.
func (pc *PatientController) ListPatients(c echo.Context) error {
	orgID, _, err := middlewares.Principal(c)
	if err != nil {
		return httpx.Error(c, err)
	}

	patients, err := pc.Service.ListPatients(c.Request().Context(), orgID)
	if err != nil {
		return httpx.Error(c, err)
	}
	return httpx.OK(c, http.StatusOK, "Patients retrieved successfully", patients)
}
