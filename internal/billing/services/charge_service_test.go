package services

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carebridge/hms-backend/internal/billing/models"
	"github.com/carebridge/hms-backend/internal/common/apperr"
)

func newChargeServiceTest(t *testing.T) (*ChargeService, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewChargeService(db), mock
}

func TestCreateChargeSnapshotsCatalogPrice(t *testing.T) {
	svc, mock := newChargeServiceTest(t)
	orgID, patientID, serviceID := uuid.New(), uuid.New(), uuid.New()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM patients WHERE id = ? AND organization_id = ?")).
		WithArgs(patientID, orgID).
		WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT price FROM services WHERE id = ? AND organization_id = ?")).
		WithArgs(serviceID, orgID).
		WillReturnRows(sqlmock.NewRows([]string{"price"}).AddRow("150.00"))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO charges")).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	charge, err := svc.CreateCharge(context.Background(), orgID, patientID, serviceID, 3, nil)
	require.NoError(t, err)
	assert.True(t, charge.PriceAtCharge.Equal(decimal.RequireFromString("150.00")))
	assert.True(t, charge.TotalPrice.Equal(decimal.RequireFromString("450.00")))
	assert.Equal(t, models.ChargePending, charge.Status)
	assert.Nil(t, charge.InvoiceID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateChargeUsesExplicitPrice(t *testing.T) {
	svc, mock := newChargeServiceTest(t)
	orgID, patientID, serviceID := uuid.New(), uuid.New(), uuid.New()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM patients")).
		WithArgs(patientID, orgID).
		WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT price FROM services")).
		WithArgs(serviceID, orgID).
		WillReturnRows(sqlmock.NewRows([]string{"price"}).AddRow("999.99"))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO charges")).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	bedRate := decimal.RequireFromString("250.00")
	charge, err := svc.CreateCharge(context.Background(), orgID, patientID, serviceID, 1, &bedRate)
	require.NoError(t, err)
	assert.True(t, charge.PriceAtCharge.Equal(bedRate))
	assert.True(t, charge.TotalPrice.Equal(bedRate))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateChargeRejectsNonPositiveQuantity(t *testing.T) {
	svc, _ := newChargeServiceTest(t)

	for _, qty := range []int{0, -1} {
		_, err := svc.CreateCharge(context.Background(), uuid.New(), uuid.New(), uuid.New(), qty, nil)
		assert.ErrorIs(t, err, apperr.ErrInvalidArgument)
	}
}

func TestCreateChargeUnknownPatient(t *testing.T) {
	svc, mock := newChargeServiceTest(t)
	orgID, patientID := uuid.New(), uuid.New()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM patients")).
		WithArgs(patientID, orgID).
		WillReturnRows(sqlmock.NewRows([]string{"1"}))
	mock.ExpectRollback()

	_, err := svc.CreateCharge(context.Background(), orgID, patientID, uuid.New(), 1, nil)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateChargeQuantityRecomputesTotalInOneStatement(t *testing.T) {
	svc, mock := newChargeServiceTest(t)
	orgID, chargeID := uuid.New(), uuid.New()

	mock.ExpectExec(regexp.QuoteMeta("SET c.quantity = ?, c.total_price = c.price_at_charge * ?")).
		WithArgs(5, 5, chargeID, orgID).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := svc.UpdateChargeQuantity(context.Background(), orgID, chargeID, 5)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateChargeQuantityNotFound(t *testing.T) {
	svc, mock := newChargeServiceTest(t)

	mock.ExpectExec(regexp.QuoteMeta("SET c.quantity = ?")).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := svc.UpdateChargeQuantity(context.Background(), uuid.New(), uuid.New(), 2)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestCancelChargeOnlyWhenPending(t *testing.T) {
	svc, mock := newChargeServiceTest(t)
	orgID, chargeID := uuid.New(), uuid.New()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT c.status FROM charges c")).
		WithArgs(chargeID, orgID).
		WillReturnRows(sqlmock.NewRows([]string{"status"}).AddRow("PAID"))
	mock.ExpectRollback()

	err := svc.CancelCharge(context.Background(), orgID, chargeID)
	assert.True(t, apperr.IsConflict(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListUnbilledFiltersByDayRange(t *testing.T) {
	svc, mock := newChargeServiceTest(t)
	orgID, patientID := uuid.New(), uuid.New()
	from := mustDate(t, "2026-03-01")
	to := mustDate(t, "2026-03-31")

	rows := sqlmock.NewRows([]string{
		"id", "patient_id", "service_id", "invoice_id", "quantity",
		"price_at_charge", "total_price", "status", "created_at",
	}).AddRow(uuid.New().String(), patientID.String(), uuid.New().String(), nil, 2,
		"100.00", "200.00", "PENDING", mustDate(t, "2026-03-15"))

	mock.ExpectQuery(regexp.QuoteMeta("DATE(c.created_at) BETWEEN ? AND ?")).
		WithArgs(patientID, orgID, "2026-03-01", "2026-03-31").
		WillReturnRows(rows)

	charges, err := svc.ListUnbilled(context.Background(), orgID, patientID, from, to)
	require.NoError(t, err)
	require.Len(t, charges, 1)
	assert.Nil(t, charges[0].InvoiceID)
	assert.True(t, charges[0].TotalPrice.Equal(decimal.RequireFromString("200.00")))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func mustDate(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := time.Parse("2006-01-02", s)
	require.NoError(t, err)
	return d
}
