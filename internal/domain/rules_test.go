package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SPA-BookingService/pkg/types"
)

func TestBookingRules_CheckTime(t *testing.T) {
	rules := BookingRules{MinNoticeMinutes: 60, AdvanceBookingDays: 14}
	now := testDate.Add(10 * time.Hour)

	tests := []struct {
		name    string
		date    time.Time
		start   string
		wantErr error
	}{
		{"tomorrow", testDate.AddDate(0, 0, 1), "09:00", nil},
		{"today after notice", testDate, "11:00", nil},
		{"today inside notice", testDate, "10:30", ErrTooLateToBook},
		{"yesterday", testDate.AddDate(0, 0, -1), "12:00", ErrDateInPast},
		{"last allowed day", testDate.AddDate(0, 0, 14), "09:00", nil},
		{"beyond advance window", testDate.AddDate(0, 0, 15), "09:00", ErrDateTooFarInFuture},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := rules.CheckTime(tt.date, types.MustTimeString(tt.start), now)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
			assert.ErrorIs(t, err, ErrInvalidArgument)
		})
	}
}

func TestBookingRules_CheckTime_NoticePastMidnight(t *testing.T) {
	rules := BookingRules{MinNoticeMinutes: 120}
	now := testDate.Add(23 * time.Hour)

	err := rules.CheckTime(testDate, types.MustTimeString("23:30"), now)

	assert.ErrorIs(t, err, ErrTooLateToBook)
}

func TestBookingInterval(t *testing.T) {
	got, err := BookingInterval(testDate, types.MustTimeString("10:00"), 90)
	require.NoError(t, err)
	assert.Equal(t, iv("10:00", "11:30"), got)

	_, err = BookingInterval(testDate, types.MustTimeString("23:30"), 60)
	assert.ErrorIs(t, err, ErrPastEndOfDay)
}

func TestCheckAvailability(t *testing.T) {
	schedule := weekdaySchedule()
	taken := &Reservation{ID: 5, Date: testDate, StartTime: types.MustTimeString("10:00"), EndTime: types.MustTimeString("11:00"), Status: StatusConfirmed}
	lunch := &AvailabilityOverride{EmployeeID: schedule.EmployeeID, Interval: iv("12:00", "13:00"), Available: false}
	evening := &AvailabilityOverride{EmployeeID: schedule.EmployeeID, Interval: iv("17:00", "19:00"), Available: true}
	overrides := []*AvailabilityOverride{lunch, evening}
	reservations := []*Reservation{taken}

	tests := []struct {
		name      string
		interval  Interval
		excludeID int64
		wantErr   error
	}{
		{"free", iv("09:00", "10:00"), 0, nil},
		{"touching reservation", iv("11:00", "12:00"), 0, nil},
		{"overlaps reservation", iv("10:30", "11:30"), 0, ErrIntervalTaken},
		{"overlap with itself excluded", iv("10:30", "11:30"), 5, nil},
		{"inside block", iv("12:00", "12:30"), 0, ErrEmployeeUnavailable},
		{"straddles block", iv("11:30", "12:30"), 0, ErrEmployeeUnavailable},
		{"extended evening", iv("17:30", "18:30"), 0, nil},
		{"before shift", iv("08:30", "09:30"), 0, ErrEmployeeUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckAvailability(schedule, tt.interval, overrides, reservations, tt.excludeID)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
			assert.ErrorIs(t, err, ErrConflict)
		})
	}
}

func TestCheckAvailability_NonWorkingDay(t *testing.T) {
	saturday := testDate.AddDate(0, 0, 3)
	interval := Interval{Date: saturday, Start: types.MustTimeString("10:00"), End: types.MustTimeString("11:00")}

	err := CheckAvailability(weekdaySchedule(), interval, nil, nil, 0)

	assert.ErrorIs(t, err, ErrEmployeeUnavailable)
}
