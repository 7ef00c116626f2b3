package override

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"

	"github.com/m04kA/SPA-BookingService/internal/domain"
	"github.com/m04kA/SPA-BookingService/pkg/dbmetrics"
	"github.com/m04kA/SPA-BookingService/pkg/psqlbuilder"
)

const tableName = "availability_overrides"

var overrideColumns = []string{
	"id",
	"employee_id",
	"override_date",
	"start_time",
	"end_time",
	"is_available",
	"reason",
	"created_at",
}

// Repository репозиторий переопределений доступности мастеров
type Repository struct {
	db dbmetrics.DBExecutor
}

// NewRepository создает новый экземпляр репозитория
func NewRepository(db dbmetrics.DBExecutor) *Repository {
	return &Repository{db: db}
}

// Create сохраняет переопределение
func (r *Repository) Create(ctx context.Context, o *domain.AvailabilityOverride) (*domain.AvailabilityOverride, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert(tableName).
		Columns("employee_id", "override_date", "start_time", "end_time", "is_available", "reason").
		Values(
			o.EmployeeID,
			o.Interval.Date.Format(domain.DateFormat),
			o.Interval.Start,
			o.Interval.End,
			o.Available,
			o.Reason,
		).
		Suffix("RETURNING id, created_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %w", ErrBuildQuery, err)
	}

	var createdAt sql.NullTime
	if err := executor.QueryRowContext(ctx, query, args...).Scan(&o.ID, &createdAt); err != nil {
		return nil, fmt.Errorf("%w: Create - execute insert: %w", ErrExecQuery, err)
	}
	o.CreatedAt = createdAt.Time

	return o, nil
}

// GetByID получает переопределение по ID
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.AvailabilityOverride, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(overrideColumns...).
		From(tableName).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %w", ErrBuildQuery, err)
	}

	o, err := scanOverride(executor.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrOverrideNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - scan override: %w", ErrScanRow, err)
	}

	return o, nil
}

// GetByEmployeeAndDate возвращает все переопределения мастера на дату.
// Пустой результат - не ошибка.
func (r *Repository) GetByEmployeeAndDate(ctx context.Context, employeeID int64, date time.Time) ([]*domain.AvailabilityOverride, error) {
	return r.list(ctx, "GetByEmployeeAndDate", squirrel.Eq{
		"employee_id":   employeeID,
		"override_date": date.Format(domain.DateFormat),
	})
}

// GetByFilter возвращает переопределения мастера за период
func (r *Repository) GetByFilter(ctx context.Context, filter domain.OverridesFilter) ([]*domain.AvailabilityOverride, error) {
	conditions := squirrel.And{squirrel.Eq{"employee_id": filter.EmployeeID}}
	if filter.From != nil {
		conditions = append(conditions, squirrel.GtOrEq{"override_date": filter.From.Format(domain.DateFormat)})
	}
	if filter.To != nil {
		conditions = append(conditions, squirrel.LtOrEq{"override_date": filter.To.Format(domain.DateFormat)})
	}
	return r.list(ctx, "GetByFilter", conditions)
}

// Delete удаляет переопределение
func (r *Repository) Delete(ctx context.Context, id int64) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Delete(tableName).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: Delete - build delete query: %w", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: Delete - execute delete: %w", ErrExecQuery, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: Delete - rows affected: %w", ErrExecQuery, err)
	}
	if affected == 0 {
		return ErrOverrideNotFound
	}

	return nil
}

func (r *Repository) list(ctx context.Context, method string, where squirrel.Sqlizer) ([]*domain.AvailabilityOverride, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(overrideColumns...).
		From(tableName).
		Where(where).
		OrderBy("override_date ASC", "start_time ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: %s - build select query: %w", ErrBuildQuery, method, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: %s - execute query: %w", ErrExecQuery, method, err)
	}
	defer rows.Close()

	overrides := make([]*domain.AvailabilityOverride, 0)
	for rows.Next() {
		o, err := scanOverride(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: %s - scan row: %w", ErrScanRow, method, err)
		}
		overrides = append(overrides, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %s - rows iteration: %w", ErrScanRow, method, err)
	}

	return overrides, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanOverride(row rowScanner) (*domain.AvailabilityOverride, error) {
	var (
		o         domain.AvailabilityOverride
		createdAt sql.NullTime
	)

	err := row.Scan(
		&o.ID,
		&o.EmployeeID,
		&o.Interval.Date,
		&o.Interval.Start,
		&o.Interval.End,
		&o.Available,
		&o.Reason,
		&createdAt,
	)
	if err != nil {
		return nil, err
	}

	o.Interval.Date = domain.DateOnly(o.Interval.Date)
	o.CreatedAt = createdAt.Time

	return &o, nil
}
