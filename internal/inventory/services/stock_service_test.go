package services

import (
	"context"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carebridge/hms-backend/internal/common/apperr"
)

func newStockServiceTest(t *testing.T) (*StockService, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewStockService(db), mock
}

func stockColumns() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "name", "quantity", "branch_id", "branch_name"})
}

func TestCheckStockSingleMatch(t *testing.T) {
	svc, mock := newStockServiceTest(t)
	orgID, branchID := uuid.New(), uuid.New()

	mock.ExpectQuery(regexp.QuoteMeta("LIKE CONCAT('%', LOWER(?), '%')")).
		WithArgs(branchID, orgID, "amoxi").
		WillReturnRows(stockColumns().
			AddRow(uuid.New().String(), "Amoxicillin 500mg", 42, branchID.String(), "Main Branch"))

	result, err := svc.CheckStock(context.Background(), orgID, branchID, "amoxi")
	require.NoError(t, err)
	assert.Equal(t, "In Stock", result.Status)
	assert.Equal(t, "Amoxicillin 500mg", result.MedicationName)
	assert.Equal(t, 42, result.Quantity)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCheckStockNoMatch(t *testing.T) {
	svc, mock := newStockServiceTest(t)

	mock.ExpectQuery(regexp.QuoteMeta("LIKE CONCAT")).
		WillReturnRows(stockColumns())

	_, err := svc.CheckStock(context.Background(), uuid.New(), uuid.New(), "nonexistent")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	assert.ErrorContains(t, err, "Out of Stock or Medication Not Found")
}

func TestCheckStockAmbiguousTerm(t *testing.T) {
	svc, mock := newStockServiceTest(t)
	branchID := uuid.New()

	mock.ExpectQuery(regexp.QuoteMeta("LIKE CONCAT")).
		WillReturnRows(stockColumns().
			AddRow(uuid.New().String(), "Paracetamol 500mg", 10, branchID.String(), "Main Branch").
			AddRow(uuid.New().String(), "Paracetamol 1g", 4, branchID.String(), "Main Branch"))

	_, err := svc.CheckStock(context.Background(), uuid.New(), branchID, "para")
	assert.ErrorIs(t, err, apperr.ErrInvalidArgument)
	assert.ErrorContains(t, err, "not specific enough")
}

func TestCheckStockRequiresName(t *testing.T) {
	svc, _ := newStockServiceTest(t)

	_, err := svc.CheckStock(context.Background(), uuid.New(), uuid.New(), "")
	assert.ErrorIs(t, err, apperr.ErrInvalidArgument)
}
