package overrides

import (
	"context"
	"time"

	"github.com/m04kA/SPA-BookingService/internal/domain"
)

// OverrideRepository интерфейс репозитория переопределений расписания
type OverrideRepository interface {
	Create(ctx context.Context, o *domain.AvailabilityOverride) (*domain.AvailabilityOverride, error)
	GetByID(ctx context.Context, id int64) (*domain.AvailabilityOverride, error)
	GetByEmployeeAndDate(ctx context.Context, employeeID int64, date time.Time) ([]*domain.AvailabilityOverride, error)
	GetByFilter(ctx context.Context, filter domain.OverridesFilter) ([]*domain.AvailabilityOverride, error)
	Delete(ctx context.Context, id int64) error
}

// DayLocker блокировка дня мастера, общая с бронированиями
type DayLocker interface {
	LockEmployeeDay(ctx context.Context, employeeID int64, date time.Time) error
}

// EmployeeRepository интерфейс справочника мастеров
type EmployeeRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Employee, error)
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}

// SlotCache кэш свободных слотов
type SlotCache interface {
	Invalidate(ctx context.Context, employeeID int64, date time.Time) error
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
