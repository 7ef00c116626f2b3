package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/m04kA/SPA-BookingService/pkg/types"
)

// ReservationStatus represents the status of a reservation
type ReservationStatus string

const (
	StatusPending   ReservationStatus = "pending"
	StatusConfirmed ReservationStatus = "confirmed"
	StatusCompleted ReservationStatus = "completed"
	StatusCancelled ReservationStatus = "cancelled"
)

// allowedTransitions Pending -> Confirmed -> Completed; Pending|Confirmed -> Cancelled
var allowedTransitions = map[ReservationStatus][]ReservationStatus{
	StatusPending:   {StatusConfirmed, StatusCancelled},
	StatusConfirmed: {StatusCompleted, StatusCancelled},
}

// ParseReservationStatus converts an API string into a status
func ParseReservationStatus(s string) (ReservationStatus, error) {
	status := ReservationStatus(strings.ToLower(strings.TrimSpace(s)))
	switch status {
	case StatusPending, StatusConfirmed, StatusCompleted, StatusCancelled:
		return status, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidStatus, s)
	}
}

// IsActive returns true if a reservation in this status occupies time
func (s ReservationStatus) IsActive() bool {
	return s == StatusPending || s == StatusConfirmed
}

// CanTransitionTo reports whether the state machine allows s -> next
func (s ReservationStatus) CanTransitionTo(next ReservationStatus) bool {
	for _, allowed := range allowedTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Reservation represents a booked appointment with an employee
type Reservation struct {
	ID         int64
	UserID     int64
	EmployeeID int64
	ServiceID  int64
	Date       time.Time
	StartTime  types.TimeString
	EndTime    types.TimeString
	Status     ReservationStatus
	Price      float64
	Notes      *string

	// Denormalized data for display and history
	EmployeeName    string
	ServiceName     string
	DurationMinutes int

	CancellationReason *string
	CancelledAt        *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Interval returns the time occupied by the reservation
func (r *Reservation) Interval() Interval {
	return Interval{Date: DateOnly(r.Date), Start: r.StartTime, End: r.EndTime}
}

// IsActive returns true if the reservation occupies time
func (r *Reservation) IsActive() bool {
	return r.Status.IsActive()
}

// CanBeCancelled returns true if the reservation can be cancelled
func (r *Reservation) CanBeCancelled() bool {
	return r.Status.CanTransitionTo(StatusCancelled)
}

// CanBeRescheduled returns true if the reservation can be moved to another interval
func (r *Reservation) CanBeRescheduled() bool {
	return r.Status.IsActive()
}

// ReservationIntervals extracts intervals of active reservations, skipping excludeID
func ReservationIntervals(reservations []*Reservation, excludeID int64) []Interval {
	intervals := make([]Interval, 0, len(reservations))
	for _, r := range reservations {
		if r.ID == excludeID || !r.IsActive() {
			continue
		}
		intervals = append(intervals, r.Interval())
	}
	return intervals
}

// ReservationsFilter фильтр для получения бронирований мастера
type ReservationsFilter struct {
	EmployeeID      int64              // Обязательный параметр
	StartDate       *time.Time         // Начало периода (опционально)
	EndDate         *time.Time         // Конец периода (опционально)
	Status          *ReservationStatus // Фильтр по статусу (опционально)
	IncludeInactive bool               // Включать ли завершённые и отменённые
}
