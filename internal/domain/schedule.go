package domain

import (
	"fmt"
	"time"

	"github.com/m04kA/SPA-BookingService/pkg/types"
)

// WorkSchedule is an employee's recurring weekly working hours.
// Owned by the employee directory; the engine only reads it.
type WorkSchedule struct {
	EmployeeID int64
	DailyStart types.TimeString
	DailyEnd   types.TimeString
	WorkDays   []time.Weekday
}

// Validate checks DailyStart < DailyEnd and that every work day is a real weekday.
func (s WorkSchedule) Validate() error {
	if !s.DailyStart.IsBefore(s.DailyEnd) {
		return fmt.Errorf("%w: daily start %s must be before daily end %s", ErrInvalidSchedule, s.DailyStart, s.DailyEnd)
	}
	for _, day := range s.WorkDays {
		if day < time.Sunday || day > time.Saturday {
			return fmt.Errorf("%w: unknown weekday %d", ErrInvalidSchedule, day)
		}
	}
	return nil
}

// WorksOn reports whether the schedule includes the weekday of date.
func (s WorkSchedule) WorksOn(date time.Time) bool {
	weekday := date.Weekday()
	for _, day := range s.WorkDays {
		if day == weekday {
			return true
		}
	}
	return false
}

// Resolve returns the base working interval for date, or false when the
// employee does not work that day.
func (s WorkSchedule) Resolve(date time.Time) (Interval, bool) {
	if !s.WorksOn(date) || !s.DailyStart.IsBefore(s.DailyEnd) {
		return Interval{}, false
	}
	return Interval{Date: DateOnly(date), Start: s.DailyStart, End: s.DailyEnd}, true
}

// Employee is a row of the employee directory.
type Employee struct {
	ID        int64
	Name      string
	IsActive  bool
	Schedule  WorkSchedule
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Service is a bookable item of the service catalog.
type Service struct {
	ID              int64
	Name            string
	DurationMinutes int
	Price           float64
	IsActive        bool
}
