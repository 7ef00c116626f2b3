package domain

import (
	"fmt"
	"time"

	"github.com/m04kA/SPA-BookingService/pkg/types"
)

var (
	ErrDateInPast          = fmt.Errorf("%w: booking date is in the past", ErrInvalidArgument)
	ErrDateTooFarInFuture  = fmt.Errorf("%w: booking date is too far in the future", ErrInvalidArgument)
	ErrTooLateToBook       = fmt.Errorf("%w: too late to book this interval", ErrInvalidArgument)
	ErrPastEndOfDay        = fmt.Errorf("%w: reservation must end by 24:00", ErrInvalidArgument)
	ErrEmployeeUnavailable = fmt.Errorf("%w: employee unavailable in that interval", ErrConflict)
	ErrIntervalTaken       = fmt.Errorf("%w: interval overlaps an active reservation", ErrConflict)
)

// BookingRules ограничения по времени бронирования из конфигурации
type BookingRules struct {
	MinNoticeMinutes   int
	AdvanceBookingDays int // 0 = без ограничений
}

// CheckTime проверяет дату и время начала относительно now
func (r BookingRules) CheckTime(date time.Time, start types.TimeString, now time.Time) error {
	day := DateOnly(date)
	today := DateOnly(now)

	if day.Before(today) {
		return ErrDateInPast
	}

	if r.AdvanceBookingDays > 0 && day.After(today.AddDate(0, 0, r.AdvanceBookingDays)) {
		return fmt.Errorf("%w: can only book %d days in advance", ErrDateTooFarInFuture, r.AdvanceBookingDays)
	}

	if day.Equal(today) {
		minStart, err := types.NewTimeString(now).AddMinutes(r.MinNoticeMinutes)
		if err != nil || start.IsBefore(minStart) {
			return fmt.Errorf("%w: must book at least %d minutes in advance", ErrTooLateToBook, r.MinNoticeMinutes)
		}
	}

	return nil
}

// BookingInterval вычисляет интервал бронирования для услуги длительностью duration минут
func BookingInterval(date time.Time, start types.TimeString, duration int) (Interval, error) {
	end, err := start.AddMinutes(duration)
	if err != nil {
		return Interval{}, ErrPastEndOfDay
	}
	return NewInterval(DateOnly(date), start, end)
}

// CheckAvailability проверяет, что interval целиком лежит в рабочем времени мастера
// и не пересекается с активными бронированиями (кроме excludeID).
func CheckAvailability(
	schedule WorkSchedule,
	interval Interval,
	overrides []*AvailabilityOverride,
	reservations []*Reservation,
	excludeID int64,
) error {
	working := WorkingIntervals(schedule, interval.Date, overrides)
	if !AnyContains(working, interval) {
		return ErrEmployeeUnavailable
	}

	if AnyOverlaps(interval, ReservationIntervals(reservations, excludeID)) {
		return ErrIntervalTaken
	}

	return nil
}
