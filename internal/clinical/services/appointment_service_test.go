package services

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carebridge/hms-backend/internal/clinical/models"
)

func newAppointmentServiceTest(t *testing.T) (*AppointmentService, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewAppointmentService(db), mock
}

func appointmentRow(id uuid.UUID, status string) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows([]string{
		"id", "patient_id", "doctor_id", "branch_id", "start_time", "end_time", "status", "notes", "created_at",
	}).AddRow(id.String(), uuid.New().String(), uuid.New().String(), uuid.New().String(),
		now, now.Add(30*time.Minute), status, "", now)
}

func TestCompleteAppointmentBillsConsultation(t *testing.T) {
	svc, mock := newAppointmentServiceTest(t)
	orgID, appointmentID := uuid.New(), uuid.New()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("FROM appointments a")).
		WithArgs(appointmentID, orgID).
		WillReturnRows(appointmentRow(appointmentID, "SCHEDULED"))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, price FROM services")).
		WithArgs(orgID, "CONSULTATION").
		WillReturnRows(sqlmock.NewRows([]string{"id", "price"}).
			AddRow(uuid.New().String(), "120.00"))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE appointments SET status = ?")).
		WithArgs("COMPLETED", appointmentID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO charges")).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	appt, err := svc.CompleteAppointment(context.Background(), orgID, appointmentID)
	require.NoError(t, err)
	assert.Equal(t, models.AppointmentCompleted, appt.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCompleteAppointmentAlreadyCompleted(t *testing.T) {
	svc, mock := newAppointmentServiceTest(t)
	orgID, appointmentID := uuid.New(), uuid.New()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("FROM appointments a")).
		WillReturnRows(appointmentRow(appointmentID, "COMPLETED"))
	mock.ExpectRollback()

	_, err := svc.CompleteAppointment(context.Background(), orgID, appointmentID)
	assert.ErrorContains(t, err, "already been completed")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCompleteAppointmentConsultationNotConfigured(t *testing.T) {
	svc, mock := newAppointmentServiceTest(t)
	orgID, appointmentID := uuid.New(), uuid.New()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("FROM appointments a")).
		WillReturnRows(appointmentRow(appointmentID, "SCHEDULED"))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, price FROM services")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "price"}))
	mock.ExpectRollback()

	_, err := svc.CompleteAppointment(context.Background(), orgID, appointmentID)
	assert.ErrorContains(t, err, "has not been configured")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCompleteAppointmentConsultationAmbiguous(t *testing.T) {
	svc, mock := newAppointmentServiceTest(t)
	orgID, appointmentID := uuid.New(), uuid.New()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("FROM appointments a")).
		WillReturnRows(appointmentRow(appointmentID, "SCHEDULED"))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, price FROM services")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "price"}).
			AddRow(uuid.New().String(), "120.00").
			AddRow(uuid.New().String(), "180.00"))
	mock.ExpectRollback()

	_, err := svc.CompleteAppointment(context.Background(), orgID, appointmentID)
	assert.ErrorContains(t, err, "Multiple 'Consultation' services")
	assert.NoError(t, mock.ExpectationsWereMet())
}
