package services

import (
	"context"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBedChargeJobTest(t *testing.T) (*BedChargeJob, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewBedChargeJob(db, NewChargeService(db)), mock
}

func TestBedChargeJobChargesActiveAdmissions(t *testing.T) {
	job, mock := newBedChargeJobTest(t)
	orgID, patientID, serviceID := uuid.New(), uuid.New(), uuid.New()

	mock.ExpectQuery(regexp.QuoteMeta("WHERE a.status = 'ADMITTED'")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "patient_id", "organization_id", "category", "daily_charge"}).
			AddRow(uuid.New().String(), patientID.String(), orgID.String(), "GENERAL_WARD", "250.00"))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id FROM services")).
		WithArgs(orgID, "General Ward Charge").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(serviceID.String()))

	// The charge itself runs through ChargeService with the bed's daily rate.
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM patients")).
		WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT price FROM services")).
		WillReturnRows(sqlmock.NewRows([]string{"price"}).AddRow("0.00"))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO charges")).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	job.Run(context.Background())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBedChargeJobSkipsMissingFeeService(t *testing.T) {
	job, mock := newBedChargeJobTest(t)
	orgID := uuid.New()

	mock.ExpectQuery(regexp.QuoteMeta("WHERE a.status = 'ADMITTED'")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "patient_id", "organization_id", "category", "daily_charge"}).
			AddRow(uuid.New().String(), uuid.New().String(), orgID.String(), "ICU", "900.00"))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id FROM services")).
		WithArgs(orgID, "Intensive Care Unit Charge").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	// No charge is attempted; the admission is logged and skipped.
	job.Run(context.Background())
	assert.NoError(t, mock.ExpectationsWereMet())
}
