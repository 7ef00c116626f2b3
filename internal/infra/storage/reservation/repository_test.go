package reservation

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SPA-BookingService/internal/domain"
	"github.com/m04kA/SPA-BookingService/pkg/dbmetrics"
	"github.com/m04kA/SPA-BookingService/pkg/types"
)

var testDate = time.Date(2025, 10, 15, 0, 0, 0, 0, time.UTC)

func newReservationRepoMock(t *testing.T) (*Repository, *sql.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewRepository(db), db, mock
}

func reservationRows() *sqlmock.Rows {
	return sqlmock.NewRows(reservationColumns)
}

func addReservationRow(rows *sqlmock.Rows, id int64, start, end string, status domain.ReservationStatus) *sqlmock.Rows {
	now := time.Now()
	return rows.AddRow(
		id, int64(100), int64(3), int64(7), testDate, start+":00", end+":00", string(status),
		[]byte("1500.00"), nil, "Anna", "Massage", 30, nil, nil, now, now,
	)
}

// inTx открывает транзакцию sqlmock и кладёт её в контекст
func inTx(t *testing.T, db *sql.DB) context.Context {
	tx, err := db.Begin()
	require.NoError(t, err)
	return dbmetrics.WithTx(context.Background(), dbmetrics.SqlTxWrapper{Tx: tx})
}

func TestRepository_Create(t *testing.T) {
	repo, _, mock := newReservationRepoMock(t)
	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO reservations")).
		WithArgs(int64(100), int64(3), int64(7), "2025-10-15", "10:00", "10:30", "pending",
			1500.0, nil, "Anna", "Massage", 30).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(int64(42), now, now))

	created, err := repo.Create(context.Background(), &domain.Reservation{
		UserID:          100,
		EmployeeID:      3,
		ServiceID:       7,
		Date:            testDate,
		StartTime:       types.MustTimeString("10:00"),
		EndTime:         types.MustTimeString("10:30"),
		Status:          domain.StatusPending,
		Price:           1500,
		EmployeeName:    "Anna",
		ServiceName:     "Massage",
		DurationMinutes: 30,
	})

	require.NoError(t, err)
	assert.Equal(t, int64(42), created.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_Create_ExclusionViolation(t *testing.T) {
	repo, _, mock := newReservationRepoMock(t)

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO reservations")).
		WillReturnError(&pq.Error{Code: "23P01", Constraint: "reservations_no_overlap"})

	_, err := repo.Create(context.Background(), &domain.Reservation{
		Date:      testDate,
		StartTime: types.MustTimeString("10:00"),
		EndTime:   types.MustTimeString("10:30"),
		Status:    domain.StatusPending,
	})

	assert.ErrorIs(t, err, ErrOverlap)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_GetByID(t *testing.T) {
	repo, _, mock := newReservationRepoMock(t)

	mock.ExpectQuery(regexp.QuoteMeta("FROM reservations WHERE id = $1")).
		WithArgs(int64(42)).
		WillReturnRows(addReservationRow(reservationRows(), 42, "10:00", "10:30", domain.StatusConfirmed))

	got, err := repo.GetByID(context.Background(), 42)

	require.NoError(t, err)
	assert.Equal(t, "10:00", got.StartTime.String())
	assert.Equal(t, "10:30", got.EndTime.String())
	assert.Equal(t, domain.StatusConfirmed, got.Status)
	assert.Equal(t, 1500.0, got.Price)
	assert.Nil(t, got.Notes)
	assert.Nil(t, got.CancelledAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_GetByID_NotFound(t *testing.T) {
	repo, _, mock := newReservationRepoMock(t)

	mock.ExpectQuery(regexp.QuoteMeta("FROM reservations WHERE id = $1")).
		WithArgs(int64(404)).
		WillReturnRows(reservationRows())

	_, err := repo.GetByID(context.Background(), 404)

	assert.ErrorIs(t, err, ErrReservationNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_GetActiveByEmployeeAndDate_LocksInsideTransaction(t *testing.T) {
	repo, db, mock := newReservationRepoMock(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(
		"FROM reservations WHERE employee_id = $1 AND reservation_date = $2 AND status IN ($3,$4) ORDER BY start_time ASC FOR UPDATE")).
		WithArgs(int64(3), "2025-10-15", "pending", "confirmed").
		WillReturnRows(addReservationRow(reservationRows(), 1, "10:00", "10:30", domain.StatusPending))

	got, err := repo.GetActiveByEmployeeAndDate(inTx(t, db), 3, testDate)

	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, int64(1), got[0].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_GetActiveByEmployeeAndDate_NoLockOutsideTransaction(t *testing.T) {
	repo, _, mock := newReservationRepoMock(t)

	mock.ExpectQuery(`ORDER BY start_time ASC$`).
		WillReturnRows(reservationRows())

	got, err := repo.GetActiveByEmployeeAndDate(context.Background(), 3, testDate)

	require.NoError(t, err)
	assert.Empty(t, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_LockEmployeeDay(t *testing.T) {
	repo, db, mock := newReservationRepoMock(t)

	assert.ErrorIs(t, repo.LockEmployeeDay(context.Background(), 3, testDate), ErrNotInTransaction)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("SELECT pg_advisory_xact_lock(hashtext($1))")).
		WithArgs("employee-day:3:2025-10-15").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.LockEmployeeDay(inTx(t, db), 3, testDate))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_UpdateStatus(t *testing.T) {
	repo, _, mock := newReservationRepoMock(t)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE reservations SET status = $1, updated_at = NOW() WHERE id = $2 AND status = $3")).
		WithArgs("confirmed", int64(42), "pending").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.UpdateStatus(context.Background(), 42, domain.StatusPending, domain.StatusConfirmed))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_UpdateStatus_ConcurrentChange(t *testing.T) {
	repo, _, mock := newReservationRepoMock(t)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE reservations")).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.UpdateStatus(context.Background(), 42, domain.StatusPending, domain.StatusConfirmed)

	assert.ErrorIs(t, err, ErrStatusChanged)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_Cancel(t *testing.T) {
	repo, _, mock := newReservationRepoMock(t)
	reason := "client is ill"

	mock.ExpectExec(regexp.QuoteMeta("UPDATE reservations SET status = $1, cancellation_reason = $2")).
		WithArgs("cancelled", &reason, int64(42), "confirmed").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Cancel(context.Background(), 42, domain.StatusConfirmed, &reason))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_Reschedule_Overlap(t *testing.T) {
	repo, _, mock := newReservationRepoMock(t)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE reservations SET reservation_date = $1, start_time = $2, end_time = $3")).
		WillReturnError(&pq.Error{Code: "23P01"})

	err := repo.Reschedule(context.Background(), 42, domain.Interval{
		Date:  testDate,
		Start: types.MustTimeString("11:00"),
		End:   types.MustTimeString("11:30"),
	})

	assert.ErrorIs(t, err, ErrOverlap)
	assert.NoError(t, mock.ExpectationsWereMet())
}
