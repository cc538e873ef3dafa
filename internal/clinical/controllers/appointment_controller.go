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
	"github.com/carebridge/hms-backend/ws"
)

type AppointmentController struct {
	Service *services.AppointmentService
	Hub     *ws.Hub
}

func NewAppointmentController(service *services.AppointmentService, hub *ws.Hub) *AppointmentController {
	return &AppointmentController{Service: service, Hub: hub}
}

// CreateAppointment schedules a consultation slot.
func (ac *AppointmentController) CreateAppointment(c echo.Context) error {
	var req models.CreateAppointmentRequest
	if err := c.Bind(&req); err != nil {
		return httpx.BadRequest(c, "Invalid request payload: "+err.Error())
	}
	if req.PatientID == "" || req.DoctorID == "" || req.BranchID == "" {
		return httpx.BadRequest(c, "patient_id, doctor_id and branch_id are required")
	}
	patientID, err := uuid.Parse(req.PatientID)
	if err != nil {
		return httpx.BadRequest(c, "Invalid patient_id")
	}
	doctorID, err := uuid.Parse(req.DoctorID)
	if err != nil {
		return httpx.BadRequest(c, "Invalid doctor_id")
	}
	branchID, err := uuid.Parse(req.BranchID)
	if err != nil {
		return httpx.BadRequest(c, "Invalid branch_id")
	}
	start, err := time.Parse(time.RFC3339, req.StartTime)
	if err != nil {
		return httpx.BadRequest(c, "Invalid start_time. Use the RFC 3339 format")
	}
	end, err := time.Parse(time.RFC3339, req.EndTime)
	if err != nil {
		return httpx.BadRequest(c, "Invalid end_time. Use the RFC 3339 format")
	}

	orgID, _, err := middlewares.Principal(c)
	if err != nil {
		return httpx.Error(c, err)
	}

	appointment, err := ac.Service.CreateAppointment(c.Request().Context(), orgID, patientID, doctorID, branchID, start, end, req.Notes)
	if err != nil {
		return httpx.Error(c, err)
	}
	return httpx.OK(c, http.StatusCreated, "Appointment created successfully", appointment)
}

// ListAppointments returns every appointment in the caller's organization.
func (ac *AppointmentController) ListAppointments(c echo.Context) error {
	orgID, _, err := middlewares.Principal(c)
	if err != nil {
		return httpx.Error(c, err)
	}

	appointments, err := ac.Service.ListAppointments(c.Request().Context(), orgID)
	if err != nil {
		return httpx.Error(c, err)
	}
	return httpx.OK(c, http.StatusOK, "Appointments retrieved successfully", appointments)
}

// CompleteAppointment marks an appointment completed and bills the
// consultation fee in the same transaction.
func (ac *AppointmentController) CompleteAppointment(c echo.Context) error {
	appointmentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return httpx.BadRequest(c, "Invalid appointment id")
	}
	orgID, _, err := middlewares.Principal(c)
	if err != nil {
		return httpx.Error(c, err)
	}

	appointment, err := ac.Service.CompleteAppointment(c.Request().Context(), orgID, appointmentID)
	if err != nil {
		return httpx.Error(c, err)
	}

	ac.Hub.Publish("appointment.completed", appointment)
	return httpx.OK(c, http.StatusOK, "Appointment completed successfully", appointment)
}
