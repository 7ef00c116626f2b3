package reschedule_booking

import (
	"context"

	"github.com/m04kA/SPA-BookingService/internal/domain"
	rescheduleBooking "github.com/m04kA/SPA-BookingService/internal/usecase/reschedule_booking"
)

type RescheduleBookingUseCase interface {
	Execute(ctx context.Context, req *rescheduleBooking.Request) (*domain.Reservation, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
