package create_override

import (
	"fmt"
	"time"

	"github.com/m04kA/SPA-BookingService/internal/domain"
	"github.com/m04kA/SPA-BookingService/internal/service/overrides/models"
	"github.com/m04kA/SPA-BookingService/pkg/types"
)

// CreateOverrideRequest HTTP request model
type CreateOverrideRequest struct {
	Date      string  `json:"date" validate:"required"`      // "2025-10-16"
	StartTime string  `json:"startTime" validate:"required"` // "12:00"
	EndTime   string  `json:"endTime" validate:"required"`   // "13:00"
	Available *bool   `json:"available" validate:"required"`
	Reason    *string `json:"reason,omitempty" validate:"omitempty,max=255"`
}

// ToServiceRequest конвертирует HTTP запрос в модель сервиса
func (r *CreateOverrideRequest) ToServiceRequest(employeeID int64) (*models.CreateOverrideRequest, error) {
	date, err := time.Parse(domain.DateFormat, r.Date)
	if err != nil {
		return nil, fmt.Errorf("date: %w", err)
	}

	start, err := types.NewTimeStringFromString(r.StartTime)
	if err != nil {
		return nil, fmt.Errorf("startTime: %w", err)
	}

	end, err := types.NewTimeStringFromString(r.EndTime)
	if err != nil {
		return nil, fmt.Errorf("endTime: %w", err)
	}

	return &models.CreateOverrideRequest{
		EmployeeID: employeeID,
		Date:       date,
		StartTime:  start,
		EndTime:    end,
		Available:  *r.Available,
		Reason:     r.Reason,
	}, nil
}
