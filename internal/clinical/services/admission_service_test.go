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
	"github.com/carebridge/hms-backend/internal/common/apperr"
)

func newAdmissionServiceTest(t *testing.T) (*AdmissionService, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewAdmissionService(db), mock
}

func TestAdmitPatientOccupiesBed(t *testing.T) {
	svc, mock := newAdmissionServiceTest(t)
	orgID, patientID, bedID := uuid.New(), uuid.New(), uuid.New()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM patients")).
		WithArgs(patientID, orgID).
		WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT b.status FROM beds b")).
		WithArgs(bedID, orgID).
		WillReturnRows(sqlmock.NewRows([]string{"status"}).AddRow("AVAILABLE"))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE beds SET status = ?")).
		WithArgs("OCCUPIED", bedID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO admissions")).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	adm, err := svc.AdmitPatient(context.Background(), orgID, patientID, bedID, "post-op observation")
	require.NoError(t, err)
	assert.Equal(t, models.AdmissionAdmitted, adm.Status)
	assert.Equal(t, bedID, adm.BedID)
	assert.Nil(t, adm.DischargedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAdmitPatientBedNotAvailable(t *testing.T) {
	svc, mock := newAdmissionServiceTest(t)
	orgID, patientID, bedID := uuid.New(), uuid.New(), uuid.New()

	for _, status := range []string{"OCCUPIED", "MAINTENANCE"} {
		mock.ExpectBegin()
		mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM patients")).
			WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))
		mock.ExpectQuery(regexp.QuoteMeta("SELECT b.status FROM beds b")).
			WillReturnRows(sqlmock.NewRows([]string{"status"}).AddRow(status))
		mock.ExpectRollback()

		_, err := svc.AdmitPatient(context.Background(), orgID, patientID, bedID, "")
		assert.ErrorContains(t, err, "This bed is not available", status)
		assert.True(t, apperr.IsConflict(err), status)
	}
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDischargePatientFreesBed(t *testing.T) {
	svc, mock := newAdmissionServiceTest(t)
	orgID, admissionID, bedID := uuid.New(), uuid.New(), uuid.New()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("FROM admissions a")).
		WithArgs(admissionID, orgID).
		WillReturnRows(sqlmock.NewRows([]string{"id", "patient_id", "bed_id", "admitted_at", "status", "notes"}).
			AddRow(admissionID.String(), uuid.New().String(), bedID.String(), time.Now(), "ADMITTED", ""))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE admissions SET status = ?, discharged_at = ?")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE beds SET status = ?")).
		WithArgs("AVAILABLE", bedID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	adm, err := svc.DischargePatient(context.Background(), orgID, admissionID)
	require.NoError(t, err)
	assert.Equal(t, models.AdmissionDischarged, adm.Status)
	require.NotNil(t, adm.DischargedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDischargePatientAlreadyDischarged(t *testing.T) {
	svc, mock := newAdmissionServiceTest(t)
	orgID, admissionID := uuid.New(), uuid.New()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("FROM admissions a")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "patient_id", "bed_id", "admitted_at", "status", "notes"}).
			AddRow(admissionID.String(), uuid.New().String(), uuid.New().String(), time.Now(), "DISCHARGED", ""))
	mock.ExpectRollback()

	_, err := svc.DischargePatient(context.Background(), orgID, admissionID)
	assert.ErrorContains(t, err, "already been discharged")
	assert.True(t, apperr.IsConflict(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLogActivityWithServiceWritesChargeAndRound(t *testing.T) {
	svc, mock := newAdmissionServiceTest(t)
	orgID, admissionID, patientID, serviceID := uuid.New(), uuid.New(), uuid.New(), uuid.New()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT a.patient_id FROM admissions a")).
		WithArgs(admissionID, orgID).
		WillReturnRows(sqlmock.NewRows([]string{"patient_id"}).AddRow(patientID.String()))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT price FROM services")).
		WithArgs(serviceID, orgID).
		WillReturnRows(sqlmock.NewRows([]string{"price"}).AddRow("75.00"))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO charges")).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO daily_rounds")).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	round, err := svc.LogActivity(context.Background(), orgID, admissionID, &serviceID, "dressing change", uuid.New())
	require.NoError(t, err)
	require.NotNil(t, round.ChargeID)
	assert.Equal(t, admissionID, round.AdmissionID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLogActivityWithoutServiceSkipsBilling(t *testing.T) {
	svc, mock := newAdmissionServiceTest(t)
	orgID, admissionID := uuid.New(), uuid.New()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT a.patient_id FROM admissions a")).
		WillReturnRows(sqlmock.NewRows([]string{"patient_id"}).AddRow(uuid.New().String()))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO daily_rounds")).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	round, err := svc.LogActivity(context.Background(), orgID, admissionID, nil, "routine check", uuid.New())
	require.NoError(t, err)
	assert.Nil(t, round.ChargeID)
	assert.Nil(t, round.ServiceID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLogActivityUnknownAdmission(t *testing.T) {
	svc, mock := newAdmissionServiceTest(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT a.patient_id FROM admissions a")).
		WillReturnRows(sqlmock.NewRows([]string{"patient_id"}))
	mock.ExpectRollback()

	_, err := svc.LogActivity(context.Background(), uuid.New(), uuid.New(), nil, "", uuid.New())
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
