package models

import (
	"time"

	"github.com/m04kA/SPA-BookingService/internal/domain"
	"github.com/m04kA/SPA-BookingService/pkg/types"
)

// Request модели

// CreateOverrideRequest запрос на создание переопределения
// Available=false закрывает интервал, Available=true открывает дополнительный
type CreateOverrideRequest struct {
	EmployeeID int64            `json:"employeeId"`
	Date       time.Time        `json:"date"`
	StartTime  types.TimeString `json:"startTime"`
	EndTime    types.TimeString `json:"endTime"`
	Available  bool             `json:"available"`
	Reason     *string          `json:"reason,omitempty"`
}

// ListOverridesRequest запрос на получение переопределений мастера за период
type ListOverridesRequest struct {
	EmployeeID int64      `json:"employeeId"`
	From       *time.Time `json:"from,omitempty"`
	To         *time.Time `json:"to,omitempty"`
}

// Response модели

// OverrideResponse ответ с данными переопределения
type OverrideResponse struct {
	ID         int64     `json:"id"`
	EmployeeID int64     `json:"employeeId"`
	Date       string    `json:"date"`
	StartTime  string    `json:"startTime"`
	EndTime    string    `json:"endTime"`
	Available  bool      `json:"available"`
	Reason     *string   `json:"reason,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}

// OverrideListResponse ответ со списком переопределений
type OverrideListResponse struct {
	Overrides []OverrideResponse `json:"overrides"`
}

// FromDomainOverride конвертирует domain модель в DTO
func FromDomainOverride(o *domain.AvailabilityOverride) *OverrideResponse {
	if o == nil {
		return nil
	}
	return &OverrideResponse{
		ID:         o.ID,
		EmployeeID: o.EmployeeID,
		Date:       o.Interval.Date.Format(domain.DateFormat),
		StartTime:  o.Interval.Start.String(),
		EndTime:    o.Interval.End.String(),
		Available:  o.Available,
		Reason:     o.Reason,
		CreatedAt:  o.CreatedAt,
	}
}

// FromDomainOverrideList конвертирует список domain моделей в DTO
func FromDomainOverrideList(overrides []*domain.AvailabilityOverride) *OverrideListResponse {
	resp := &OverrideListResponse{
		Overrides: make([]OverrideResponse, 0, len(overrides)),
	}
	for _, o := range overrides {
		if item := FromDomainOverride(o); item != nil {
			resp.Overrides = append(resp.Overrides, *item)
		}
	}
	return resp
}
