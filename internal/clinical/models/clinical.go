package models

import (
	"time"

	"github.com/google/uuid"
)

type Patient struct {
	ID             uuid.UUID  `json:"id"`
	OrganizationID uuid.UUID  `json:"organization_id"`
	ExternalUserID *uuid.UUID `json:"external_user_id,omitempty"`
	FirstName      string     `json:"first_name"`
	LastName       string     `json:"last_name"`
	DateOfBirth    string     `json:"date_of_birth"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

type AppointmentStatus string

const (
	AppointmentScheduled AppointmentStatus = "SCHEDULED"
	AppointmentCompleted AppointmentStatus = "COMPLETED"
	AppointmentCancelled AppointmentStatus = "CANCELLED"
)

type Appointment struct {
	ID        uuid.UUID         `json:"id"`
	PatientID uuid.UUID         `json:"patient_id"`
	DoctorID  uuid.UUID         `json:"doctor_id"`
	BranchID  uuid.UUID         `json:"branch_id"`
	StartTime time.Time         `json:"start_time"`
	EndTime   time.Time         `json:"end_time"`
	Status    AppointmentStatus `json:"status"`
	Notes     string            `json:"notes"`
	CreatedAt time.Time         `json:"created_at"`
}

type AdmissionStatus string

const (
	AdmissionAdmitted   AdmissionStatus = "ADMITTED"
	AdmissionDischarged AdmissionStatus = "DISCHARGED"
)

// Admission is one patient's occupancy of one bed. At most one ADMITTED
// admission may reference a bed at a time; the invariant is enforced together
// with the bed's status inside a single transaction, never by cleanup jobs.
type Admission struct {
	ID           uuid.UUID       `json:"id"`
	PatientID    uuid.UUID       `json:"patient_id"`
	BedID        uuid.UUID       `json:"bed_id"`
	AdmittedAt   time.Time       `json:"admitted_at"`
	DischargedAt *time.Time      `json:"discharged_at,omitempty"`
	Status       AdmissionStatus `json:"status"`
	Notes        string          `json:"notes"`
}

// DailyRound records a single clinical interaction during an admission.
// When a billable service is provided the round is paired one-to-one with the
// charge created in the same transaction.
type DailyRound struct {
	ID          uuid.UUID  `json:"id"`
	AdmissionID uuid.UUID  `json:"admission_id"`
	ServiceID   *uuid.UUID `json:"service_provided,omitempty"`
	PerformedBy uuid.UUID  `json:"performed_by"`
	ChargeID    *uuid.UUID `json:"charge_id,omitempty"`
	Notes       string     `json:"notes"`
	RoundTime   time.Time  `json:"round_time"`
}

// AdmissionDetail is the consolidated view of one admission.
type AdmissionDetail struct {
	Admission   Admission    `json:"admission"`
	PatientName string       `json:"patient_name"`
	BedNumber   string       `json:"bed_number"`
	BranchName  string       `json:"branch_name"`
	DailyRounds []DailyRound `json:"daily_rounds"`
}

type CreatePatientRequest struct {
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	DateOfBirth string `json:"date_of_birth"`
}

type CreateAppointmentRequest struct {
	PatientID string `json:"patient_id"`
	DoctorID  string `json:"doctor_id"`
	BranchID  string `json:"branch_id"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
	Notes     string `json:"notes"`
}

type AdmitPatientRequest struct {
	PatientID string `json:"patient_id"`
	BedID     string `json:"bed_id"`
	Notes     string `json:"notes"`
}

type LogActivityRequest struct {
	ServiceProvided string `json:"service_provided"`
	Notes           string `json:"notes"`
}
