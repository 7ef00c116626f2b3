package create_booking

import (
	"context"
	"time"

	"github.com/m04kA/SPA-BookingService/internal/domain"
)

// ReservationRepository интерфейс репозитория бронирований
type ReservationRepository interface {
	Create(ctx context.Context, reservation *domain.Reservation) (*domain.Reservation, error)
	GetActiveByEmployeeAndDate(ctx context.Context, employeeID int64, date time.Time) ([]*domain.Reservation, error)
	LockEmployeeDay(ctx context.Context, employeeID int64, date time.Time) error
}

// OverrideRepository интерфейс репозитория переопределений расписания
type OverrideRepository interface {
	GetByEmployeeAndDate(ctx context.Context, employeeID int64, date time.Time) ([]*domain.AvailabilityOverride, error)
}

// EmployeeRepository интерфейс справочника мастеров
type EmployeeRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Employee, error)
}

// ServiceCatalog интерфейс каталога услуг
type ServiceCatalog interface {
	GetByID(ctx context.Context, id int64) (*domain.Service, error)
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}

// SlotCache инвалидация кэша слотов после коммита
type SlotCache interface {
	Invalidate(ctx context.Context, employeeID int64, date time.Time) error
}

// NotificationSink получатель событий о бронированиях
type NotificationSink interface {
	Publish(ctx context.Context, event domain.ReservationEvent) error
}

// Metrics счётчики исходов бронирования
type Metrics interface {
	RecordReservation(outcome string)
}

// TimeProvider интерфейс для получения текущего времени (для тестирования)
type TimeProvider interface {
	Now() time.Time
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// RealTimeProvider реальный провайдер времени для production
type RealTimeProvider struct{}

// Now возвращает текущее время
func (p *RealTimeProvider) Now() time.Time {
	return time.Now()
}
