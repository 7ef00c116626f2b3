package get_employee_reservations

import (
	"context"

	"github.com/m04kA/SPA-BookingService/internal/domain"
	"github.com/m04kA/SPA-BookingService/internal/service/reservations/models"
)

type ReservationService interface {
	ListByEmployee(ctx context.Context, actor domain.Actor, req *models.GetEmployeeReservationsRequest) (*models.ReservationListResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
