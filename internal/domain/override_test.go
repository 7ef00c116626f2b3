package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAvailabilityOverride_ConflictsWith(t *testing.T) {
	block := &AvailabilityOverride{EmployeeID: 1, Interval: iv("12:00", "13:00"), Available: false}
	open := &AvailabilityOverride{EmployeeID: 1, Interval: iv("12:30", "14:00"), Available: true}
	anotherBlock := &AvailabilityOverride{EmployeeID: 1, Interval: iv("12:30", "12:45"), Available: false}
	adjacentOpen := &AvailabilityOverride{EmployeeID: 1, Interval: iv("13:00", "14:00"), Available: true}
	otherEmployee := &AvailabilityOverride{EmployeeID: 2, Interval: iv("12:00", "13:00"), Available: true}

	assert.True(t, block.ConflictsWith(open))
	assert.False(t, block.ConflictsWith(anotherBlock))
	assert.False(t, block.ConflictsWith(adjacentOpen))
	assert.False(t, block.ConflictsWith(otherEmployee))
}

func TestWorkingIntervals(t *testing.T) {
	schedule := weekdaySchedule()

	t.Run("open override extends the day, block wins over both", func(t *testing.T) {
		overrides := []*AvailabilityOverride{
			{Interval: iv("17:00", "19:00"), Available: true},
			{Interval: iv("12:00", "13:00"), Available: false},
			{Interval: iv("18:00", "18:30"), Available: false},
		}

		got := WorkingIntervals(schedule, testDate, overrides)

		assert.Equal(t, []Interval{
			iv("09:00", "12:00"),
			iv("13:00", "18:00"),
			iv("18:30", "19:00"),
		}, got)
	})

	t.Run("non-working day", func(t *testing.T) {
		sunday := time.Date(2025, 10, 19, 0, 0, 0, 0, time.UTC)
		assert.Empty(t, WorkingIntervals(schedule, sunday, nil))
	})
}
