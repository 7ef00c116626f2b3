package get_available_slots

import (
	"context"
	"time"

	"github.com/m04kA/SPA-BookingService/internal/domain"
)

// EmployeeRepository интерфейс справочника мастеров
type EmployeeRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Employee, error)
}

// OverrideRepository интерфейс репозитория переопределений расписания
type OverrideRepository interface {
	GetByEmployeeAndDate(ctx context.Context, employeeID int64, date time.Time) ([]*domain.AvailabilityOverride, error)
}

// ReservationRepository интерфейс репозитория бронирований
type ReservationRepository interface {
	// GetActiveByEmployeeAndDate получает активные бронирования мастера на дату
	GetActiveByEmployeeAndDate(ctx context.Context, employeeID int64, date time.Time) ([]*domain.Reservation, error)
}

// SlotCache кэш свободных слотов
type SlotCache interface {
	Get(ctx context.Context, employeeID int64, date time.Time, slotLength int) ([]domain.Interval, error)
	// Generation возвращает поколение ключа; Set с устаревшим поколением не пишет
	Generation(ctx context.Context, employeeID int64, date time.Time) (int64, error)
	Set(ctx context.Context, employeeID int64, date time.Time, slotLength int, gen int64, slots []domain.Interval) error
}

// Metrics счётчики попаданий в кэш
type Metrics interface {
	RecordSlotCache(result string)
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
