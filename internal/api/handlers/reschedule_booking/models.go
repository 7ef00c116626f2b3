package reschedule_booking

import (
	"fmt"
	"time"

	"github.com/m04kA/SPA-BookingService/internal/domain"
	rescheduleBooking "github.com/m04kA/SPA-BookingService/internal/usecase/reschedule_booking"
	"github.com/m04kA/SPA-BookingService/pkg/types"
)

// RescheduleRequest HTTP request model
type RescheduleRequest struct {
	Date      string `json:"date" validate:"required"`      // "2025-10-16"
	StartTime string `json:"startTime" validate:"required"` // "14:00"
}

// ToUseCaseRequest конвертирует HTTP запрос в модель use case
func (r *RescheduleRequest) ToUseCaseRequest(reservationID int64, actor domain.Actor) (*rescheduleBooking.Request, error) {
	date, err := time.Parse(domain.DateFormat, r.Date)
	if err != nil {
		return nil, fmt.Errorf("date: %w", err)
	}

	startTime, err := types.NewTimeStringFromString(r.StartTime)
	if err != nil {
		return nil, fmt.Errorf("startTime: %w", err)
	}

	return &rescheduleBooking.Request{
		ReservationID: reservationID,
		Actor:         actor,
		Date:          date,
		StartTime:     startTime,
	}, nil
}
