package services

import (
	"context"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carebridge/hms-backend/internal/common/apperr"
	"github.com/carebridge/hms-backend/internal/operations/models"
)

func newBedServiceTest(t *testing.T) (*BedService, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewBedService(db), mock
}

func expectBedStatus(mock sqlmock.Sqlmock, status string) {
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT b.status FROM beds b")).
		WillReturnRows(sqlmock.NewRows([]string{"status"}).AddRow(status))
}

func TestSetMaintenanceFromAvailable(t *testing.T) {
	svc, mock := newBedServiceTest(t)
	bedID := uuid.New()

	expectBedStatus(mock, "AVAILABLE")
	mock.ExpectExec(regexp.QuoteMeta("UPDATE beds SET status = ?")).
		WithArgs("MAINTENANCE", bedID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, svc.SetMaintenance(context.Background(), uuid.New(), bedID))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSetMaintenanceRejectsOccupiedBed(t *testing.T) {
	svc, mock := newBedServiceTest(t)

	expectBedStatus(mock, "OCCUPIED")
	mock.ExpectRollback()

	err := svc.SetMaintenance(context.Background(), uuid.New(), uuid.New())
	assert.True(t, apperr.IsConflict(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReturnToServiceRequiresMaintenance(t *testing.T) {
	svc, mock := newBedServiceTest(t)

	expectBedStatus(mock, "AVAILABLE")
	mock.ExpectRollback()

	err := svc.ReturnToService(context.Background(), uuid.New(), uuid.New())
	assert.True(t, apperr.IsConflict(err))
}

func TestCreateBedRejectsUnknownCategory(t *testing.T) {
	svc, _ := newBedServiceTest(t)

	_, err := svc.CreateBed(context.Background(), uuid.New(), uuid.New(),
		"Main", 2, "B", "204", models.BedCategory("PENTHOUSE"), decimal.RequireFromString("100.00"))
	assert.ErrorIs(t, err, apperr.ErrInvalidArgument)
}

func TestBedCategoryLabels(t *testing.T) {
	assert.Equal(t, "General Ward", models.BedGeneralWard.Label())
	assert.Equal(t, "Intensive Care Unit", models.BedICU.Label())
}
