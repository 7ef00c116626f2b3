package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/m04kA/SPA-BookingService/pkg/types"
)

func weekdaySchedule() WorkSchedule {
	return WorkSchedule{
		EmployeeID: 1,
		DailyStart: types.MustTimeString("09:00"),
		DailyEnd:   types.MustTimeString("17:00"),
		WorkDays:   []time.Weekday{time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday},
	}
}

func TestWorkSchedule_Resolve(t *testing.T) {
	s := weekdaySchedule()

	base, ok := s.Resolve(testDate)
	assert.True(t, ok)
	assert.Equal(t, iv("09:00", "17:00"), base)

	saturday := time.Date(2025, 10, 18, 0, 0, 0, 0, time.UTC)
	_, ok = s.Resolve(saturday)
	assert.False(t, ok)
}

func TestWorkSchedule_Validate(t *testing.T) {
	assert.NoError(t, weekdaySchedule().Validate())

	inverted := weekdaySchedule()
	inverted.DailyStart, inverted.DailyEnd = inverted.DailyEnd, inverted.DailyStart
	assert.ErrorIs(t, inverted.Validate(), ErrInvalidSchedule)

	badDay := weekdaySchedule()
	badDay.WorkDays = append(badDay.WorkDays, time.Weekday(9))
	assert.ErrorIs(t, badDay.Validate(), ErrInvalidArgument)
}
