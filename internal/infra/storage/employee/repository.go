package employee

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
)

var (
	// ErrEmployeeNotFound возвращается, когда мастер не найден
	ErrEmployeeNotFound = errors.New("employee.repository: employee not found")

	ErrBuildQuery = errors.New("employee.repository: failed to build query")
	ErrScanRow    = errors.New("employee.repository: failed to scan row")
)

// Repository справочник мастеров (только чтение)
type Repository struct {
	db dbmetrics.DBExecutor
}

func NewRepository(db dbmetrics.DBExecutor) *Repository {
	return &Repository{db: db}
}

// GetByID возвращает мастера вместе с его недельным расписанием
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.Employee, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(
		"id",
		"name",
		"is_active",
		"daily_start",
		"daily_end",
		"work_days",
		"created_at",
		"updated_at",
	).
		From("employees").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %w", ErrBuildQuery, err)
	}

	var (
		e                    domain.Employee
		workDays             pq.Int64Array
		createdAt, updatedAt sql.NullTime
	)

	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&e.ID,
		&e.Name,
		&e.IsActive,
		&e.Schedule.DailyStart,
		&e.Schedule.DailyEnd,
		&workDays,
		&createdAt,
		&updatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrEmployeeNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - scan employee: %w", ErrScanRow, err)
	}

	e.Schedule.EmployeeID = e.ID
	e.Schedule.WorkDays = make([]time.Weekday, 0, len(workDays))
	for _, day := range workDays {
		e.Schedule.WorkDays = append(e.Schedule.WorkDays, time.Weekday(day))
	}
	e.CreatedAt = createdAt.Time
	e.UpdatedAt = updatedAt.Time

	return &e, nil
}
