package controllers

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/carebridge/hms-backend/internal/clinical/models"
	"github.com/carebridge/hms-backend/internal/clinical/services"
	"github.com/carebridge/hms-backend/internal/common/httpx"
	"github.com/carebridge/hms-backend/internal/common/middlewares"
	"github.com/carebridge/hms-backend/ws"
)

type AdmissionController struct {
	Service *services.AdmissionService
	Hub     *ws.Hub
}

func NewAdmissionController(service *services.AdmissionService, hub *ws.Hub) *AdmissionController {
	return &AdmissionController{Service: service, Hub: hub}
}

// AdmitPatient assigns a patient to a bed and opens an admission.
func (ac *AdmissionController) AdmitPatient(c echo.Context) error {
	var req models.AdmitPatientRequest
	if err := c.Bind(&req); err != nil {
		return httpx.BadRequest(c, "Invalid request payload: "+err.Error())
	}
	if req.PatientID == "" || req.BedID == "" {
		return httpx.BadRequest(c, "patient_id and bed_id are required")
	}
	patientID, err := uuid.Parse(req.PatientID)
	if err != nil {
		return httpx.BadRequest(c, "Invalid patient_id")
	}
	bedID, err := uuid.Parse(req.BedID)
	if err != nil {
		return httpx.BadRequest(c, "Invalid bed_id")
	}
	orgID, _, err := middlewares.Principal(c)
	if err != nil {
		return httpx.Error(c, err)
	}

	admission, err := ac.Service.AdmitPatient(c.Request().Context(), orgID, patientID, bedID, req.Notes)
	if err != nil {
		return httpx.Error(c, err)
	}

	ac.Hub.Publish("admission.opened", admission)
	return httpx.OK(c, http.StatusCreated, "Patient admitted successfully", admission)
}

// DischargePatient closes an admission and frees its bed.
func (ac *AdmissionController) DischargePatient(c echo.Context) error {
	admissionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return httpx.BadRequest(c, "Invalid admission id")
	}
	orgID, _, err := middlewares.Principal(c)
	if err != nil {
		return httpx.Error(c, err)
	}

	admission, err := ac.Service.DischargePatient(c.Request().Context(), orgID, admissionID)
	if err != nil {
		return httpx.Error(c, err)
	}

	ac.Hub.Publish("admission.discharged", admission)
	return httpx.OK(c, http.StatusOK, "Patient discharged successfully", admission)
}

// LogActivity records a daily round against an admission. When the round
// names a billable service the matching charge is created in the same
// transaction.
func (ac *AdmissionController) LogActivity(c echo.Context) error {
	admissionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return httpx.BadRequest(c, "Invalid admission id")
	}
	var req models.LogActivityRequest
	if err := c.Bind(&req); err != nil {
		return httpx.BadRequest(c, "Invalid request payload: "+err.Error())
	}

	var serviceID *uuid.UUID
	if req.ServiceProvided != "" {
		id, err := uuid.Parse(req.ServiceProvided)
		if err != nil {
			return httpx.BadRequest(c, "Invalid service_provided")
		}
		serviceID = &id
	}

	orgID, userID, err := middlewares.Principal(c)
	if err != nil {
		return httpx.Error(c, err)
	}

	round, err := ac.Service.LogActivity(c.Request().Context(), orgID, admissionID, serviceID, req.Notes, userID)
	if err != nil {
		return httpx.Error(c, err)
	}
	return httpx.OK(c, http.StatusCreated, "Activity logged successfully", round)
}

// GetAdmissionDetail returns an admission together with its rounds.
func (ac *AdmissionController) GetAdmissionDetail(c echo.Context) error {
	admissionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return httpx.BadRequest(c, "Invalid admission id")
	}
	orgID, _, err := middlewares.Principal(c)
	if err != nil {
		return httpx.Error(c, err)
	}

	detail, err := ac.Service.GetAdmissionDetail(c.Request().Context(), orgID, admissionID)
	if err != nil {
		return httpx.Error(c, err)
	}
	return httpx.OK(c, http.StatusOK, "Admission detail retrieved successfully", detail)
}

// ListAdmissions returns every admission in the caller's organization.
func (ac *AdmissionController) ListAdmissions(c echo.Context) error {
	orgID, _, err := middlewares.Principal(c)
	if err != nil {
		return httpx.Error(c, err)
	}

	admissions, err := ac.Service.ListAdmissions(c.Request().Context(), orgID)
	if err != nil {
		return httpx.Error(c, err)
	}
	return httpx.OK(c, http.StatusOK, "Admissions retrieved successfully", admissions)
}
