package reservations

import (
	"context"
	"time"

	"github.com/m04kA/SPA-BookingService/internal/domain"
)

// ReservationRepository интерфейс репозитория бронирований
type ReservationRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Reservation, error)
	GetByUserID(ctx context.Context, userID int64, status *domain.ReservationStatus) ([]*domain.Reservation, error)
	GetByEmployeeWithFilter(ctx context.Context, filter domain.ReservationsFilter) ([]*domain.Reservation, error)
	UpdateStatus(ctx context.Context, id int64, from, to domain.ReservationStatus) error
	Cancel(ctx context.Context, id int64, from domain.ReservationStatus, reason *string) error
}

// SlotCache кэш свободных слотов
type SlotCache interface {
	Invalidate(ctx context.Context, employeeID int64, date time.Time) error
}

// NotificationSink получатель событий о бронированиях
type NotificationSink interface {
	Publish(ctx context.Context, event domain.ReservationEvent) error
}

// Metrics счётчики исходов операций с бронированиями
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

// RealTimeProvider реальная реализация TimeProvider
type RealTimeProvider struct{}

func (p *RealTimeProvider) Now() time.Time {
	return time.Now()
}
