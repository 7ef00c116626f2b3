package reservation

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/lib/pq"

	"github.com/m04kA/SPA-BookingService/internal/domain"
	"github.com/m04kA/SPA-BookingService/pkg/dbmetrics"
	"github.com/m04kA/SPA-BookingService/pkg/psqlbuilder"
	"github.com/m04kA/SPA-BookingService/pkg/types"
)

const tableName = "reservations"

// Коды ошибок Postgres, означающие пересечение интервалов
const (
	pqExclusionViolation = "23P01"
	pqUniqueViolation    = "23505"
)

var reservationColumns = []string{
	"id",
	"user_id",
	"employee_id",
	"service_id",
	"reservation_date",
	"start_time",
	"end_time",
	"status",
	"price",
	"notes",
	"employee_name",
	"service_name",
	"duration_minutes",
	"cancellation_reason",
	"cancelled_at",
	"created_at",
	"updated_at",
}

// Repository репозиторий для работы с бронированиями
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория бронирований
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Create создает новое бронирование.
// Если в контексте есть транзакция, запрос выполняется в ней.
// Нарушение exclusion-ограничения возвращается как ErrOverlap.
func (r *Repository) Create(ctx context.Context, reservation *domain.Reservation) (*domain.Reservation, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert(tableName).
		Columns(
			"user_id",
			"employee_id",
			"service_id",
			"reservation_date",
			"start_time",
			"end_time",
			"status",
			"price",
			"notes",
			"employee_name",
			"service_name",
			"duration_minutes",
		).
		Values(
			reservation.UserID,
			reservation.EmployeeID,
			reservation.ServiceID,
			reservation.Date.Format(domain.DateFormat),
			reservation.StartTime,
			reservation.EndTime,
			reservation.Status,
			reservation.Price,
			reservation.Notes,
			reservation.EmployeeName,
			reservation.ServiceName,
			reservation.DurationMinutes,
		).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %w", ErrBuildQuery, err)
	}

	var createdAt, updatedAt sql.NullTime
	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&reservation.ID,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		if isOverlapViolation(err) {
			return nil, ErrOverlap
		}
		return nil, fmt.Errorf("%w: Create - execute insert: %w", ErrExecQuery, err)
	}

	reservation.CreatedAt = createdAt.Time
	reservation.UpdatedAt = updatedAt.Time

	return reservation, nil
}

// GetByID получает бронирование по ID
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.Reservation, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(reservationColumns...).
		From(tableName).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %w", ErrBuildQuery, err)
	}

	reservation, err := scanReservation(executor.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrReservationNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - scan reservation: %w", ErrScanRow, err)
	}

	return reservation, nil
}

// GetByUserID получает историю бронирований пользователя
// Опционально фильтрует по статусу
func (r *Repository) GetByUserID(ctx context.Context, userID int64, status *domain.ReservationStatus) ([]*domain.Reservation, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(reservationColumns...).
		From(tableName).
		Where(squirrel.Eq{"user_id": userID}).
		OrderBy("reservation_date DESC", "start_time DESC")

	if status != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"status": string(*status)})
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByUserID - build select query: %w", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetByUserID - execute query: %w", ErrExecQuery, err)
	}
	defer rows.Close()

	return scanReservations(rows)
}

// GetByEmployeeWithFilter получает бронирования мастера с фильтрацией
// по периоду, статусу и включению неактивных бронирований
func (r *Repository) GetByEmployeeWithFilter(ctx context.Context, filter domain.ReservationsFilter) ([]*domain.Reservation, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(reservationColumns...).
		From(tableName).
		Where(squirrel.Eq{"employee_id": filter.EmployeeID}).
		OrderBy("reservation_date ASC", "start_time ASC")

	if filter.StartDate != nil {
		selectBuilder = selectBuilder.Where(squirrel.GtOrEq{"reservation_date": filter.StartDate.Format(domain.DateFormat)})
	}
	if filter.EndDate != nil {
		selectBuilder = selectBuilder.Where(squirrel.LtOrEq{"reservation_date": filter.EndDate.Format(domain.DateFormat)})
	}

	switch {
	case filter.Status != nil:
		selectBuilder = selectBuilder.Where(squirrel.Eq{"status": string(*filter.Status)})
	case !filter.IncludeInactive:
		selectBuilder = selectBuilder.Where(squirrel.Eq{"status": statusStrings(domain.ActiveStatuses)})
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByEmployeeWithFilter - build select query: %w", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetByEmployeeWithFilter - execute query: %w", ErrExecQuery, err)
	}
	defer rows.Close()

	return scanReservations(rows)
}

// GetActiveByEmployeeAndDate возвращает активные (pending, confirmed) бронирования мастера на дату.
// Внутри транзакции строки блокируются (FOR UPDATE).
func (r *Repository) GetActiveByEmployeeAndDate(ctx context.Context, employeeID int64, date time.Time) ([]*domain.Reservation, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(reservationColumns...).
		From(tableName).
		Where(squirrel.Eq{
			"employee_id":      employeeID,
			"reservation_date": date.Format(domain.DateFormat),
			"status":           statusStrings(domain.ActiveStatuses),
		}).
		OrderBy("start_time ASC")

	if dbmetrics.IsInTransaction(ctx) {
		selectBuilder = selectBuilder.Suffix("FOR UPDATE")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetActiveByEmployeeAndDate - build select query: %w", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetActiveByEmployeeAndDate - execute query: %w", ErrExecQuery, err)
	}
	defer rows.Close()

	return scanReservations(rows)
}

// LockEmployeeDay берёт транзакционную advisory-блокировку на пару (мастер, дата).
// Все изменения занятости одного мастера в один день сериализуются на ней,
// независимо от числа экземпляров сервиса. Снимается при commit/rollback.
func (r *Repository) LockEmployeeDay(ctx context.Context, employeeID int64, date time.Time) error {
	if !dbmetrics.IsInTransaction(ctx) {
		return ErrNotInTransaction
	}
	executor := dbmetrics.GetExecutor(ctx, r.db)

	if _, err := executor.ExecContext(ctx, "SELECT pg_advisory_xact_lock(hashtext($1))", EmployeeDayLockKey(employeeID, date)); err != nil {
		return fmt.Errorf("%w: LockEmployeeDay - acquire lock: %w", ErrExecQuery, err)
	}
	return nil
}

// EmployeeDayLockKey ключ advisory-блокировки
func EmployeeDayLockKey(employeeID int64, date time.Time) string {
	return fmt.Sprintf("employee-day:%d:%s", employeeID, date.Format(domain.DateFormat))
}

// UpdateStatus переводит бронирование из статуса from в статус to.
// Если статус уже изменился, возвращает ErrStatusChanged.
func (r *Repository) UpdateStatus(ctx context.Context, id int64, from, to domain.ReservationStatus) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update(tableName).
		Set("status", string(to)).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id, "status": string(from)}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: UpdateStatus - build update query: %w", ErrBuildQuery, err)
	}

	return r.execSingleRow(ctx, executor, "UpdateStatus", query, args)
}

// Cancel отменяет бронирование, находящееся в статусе from, и сохраняет причину
func (r *Repository) Cancel(ctx context.Context, id int64, from domain.ReservationStatus, reason *string) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update(tableName).
		Set("status", string(domain.StatusCancelled)).
		Set("cancellation_reason", reason).
		Set("cancelled_at", squirrel.Expr("NOW()")).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id, "status": string(from)}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: Cancel - build update query: %w", ErrBuildQuery, err)
	}

	return r.execSingleRow(ctx, executor, "Cancel", query, args)
}

// Reschedule переносит активное бронирование на новый интервал
func (r *Repository) Reschedule(ctx context.Context, id int64, interval domain.Interval) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update(tableName).
		Set("reservation_date", interval.Date.Format(domain.DateFormat)).
		Set("start_time", interval.Start).
		Set("end_time", interval.End).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id, "status": statusStrings(domain.ActiveStatuses)}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: Reschedule - build update query: %w", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		if isOverlapViolation(err) {
			return ErrOverlap
		}
		return fmt.Errorf("%w: Reschedule - execute update: %w", ErrExecQuery, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: Reschedule - rows affected: %w", ErrExecQuery, err)
	}
	if affected == 0 {
		return ErrStatusChanged
	}

	return nil
}

func (r *Repository) execSingleRow(ctx context.Context, executor DBExecutor, method, query string, args []interface{}) error {
	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: %s - execute update: %w", ErrExecQuery, method, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: %s - rows affected: %w", ErrExecQuery, method, err)
	}
	if affected == 0 {
		return ErrStatusChanged
	}

	return nil
}

func scanReservation(row rowScanner) (*domain.Reservation, error) {
	var (
		reservation          domain.Reservation
		status               string
		createdAt, updatedAt sql.NullTime
		cancelledAt          sql.NullTime
		startTime, endTime   types.TimeString
	)

	err := row.Scan(
		&reservation.ID,
		&reservation.UserID,
		&reservation.EmployeeID,
		&reservation.ServiceID,
		&reservation.Date,
		&startTime,
		&endTime,
		&status,
		&reservation.Price,
		&reservation.Notes,
		&reservation.EmployeeName,
		&reservation.ServiceName,
		&reservation.DurationMinutes,
		&reservation.CancellationReason,
		&cancelledAt,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	reservation.StartTime = startTime
	reservation.EndTime = endTime
	reservation.Status = domain.ReservationStatus(status)
	reservation.Date = domain.DateOnly(reservation.Date)
	if cancelledAt.Valid {
		reservation.CancelledAt = &cancelledAt.Time
	}
	reservation.CreatedAt = createdAt.Time
	reservation.UpdatedAt = updatedAt.Time

	return &reservation, nil
}

func scanReservations(rows *sql.Rows) ([]*domain.Reservation, error) {
	reservations := make([]*domain.Reservation, 0)
	for rows.Next() {
		reservation, err := scanReservation(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: scanReservations - scan row: %w", ErrScanRow, err)
		}
		reservations = append(reservations, reservation)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: scanReservations - rows iteration: %w", ErrScanRow, err)
	}

	return reservations, nil
}

func statusStrings(statuses []domain.ReservationStatus) []string {
	result := make([]string, len(statuses))
	for i, s := range statuses {
		result[i] = string(s)
	}
	return result
}

func isOverlapViolation(err error) bool {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return false
	}
	return pqErr.Code == pqExclusionViolation || pqErr.Code == pqUniqueViolation
}
