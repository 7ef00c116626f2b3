package cancel_reservation

import (
	"context"

	"github.com/m04kA/SPA-BookingService/internal/domain"
	"github.com/m04kA/SPA-BookingService/internal/service/reservations/models"
)

type ReservationService interface {
	Cancel(ctx context.Context, id int64, actor domain.Actor, req *models.CancelReservationRequest) (*models.ReservationResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
