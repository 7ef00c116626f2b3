package create_booking

import (
	"fmt"
	"time"

	"github.com/m04kA/SPA-BookingService/internal/domain"
	createBooking "github.com/m04kA/SPA-BookingService/internal/usecase/create_booking"
	"github.com/m04kA/SPA-BookingService/pkg/types"
)

// CreateReservationRequest HTTP request model
// Клиент берётся из заголовка X-User-ID, а не из тела
type CreateReservationRequest struct {
	EmployeeID int64   `json:"employeeId" validate:"required,gt=0"`
	ServiceID  int64   `json:"serviceId" validate:"required,gt=0"`
	Date       string  `json:"date" validate:"required"`      // "2025-10-15"
	StartTime  string  `json:"startTime" validate:"required"` // "10:00"
	Notes      *string `json:"notes,omitempty" validate:"omitempty,max=500"`
}

// ToUseCaseRequest конвертирует HTTP запрос в модель use case
func (r *CreateReservationRequest) ToUseCaseRequest(userID int64) (*createBooking.Request, error) {
	date, err := time.Parse(domain.DateFormat, r.Date)
	if err != nil {
		return nil, fmt.Errorf("date: %w", err)
	}

	startTime, err := types.NewTimeStringFromString(r.StartTime)
	if err != nil {
		return nil, fmt.Errorf("startTime: %w", err)
	}

	return &createBooking.Request{
		UserID:     userID,
		EmployeeID: r.EmployeeID,
		ServiceID:  r.ServiceID,
		Date:       date,
		StartTime:  startTime,
		Notes:      r.Notes,
	}, nil
}
