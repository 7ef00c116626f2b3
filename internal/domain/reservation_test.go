package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SPA-BookingService/pkg/types"
)

func TestReservationStatus_CanTransitionTo(t *testing.T) {
	tests := []struct {
		from, to ReservationStatus
		want     bool
	}{
		{StatusPending, StatusConfirmed, true},
		{StatusPending, StatusCancelled, true},
		{StatusConfirmed, StatusCompleted, true},
		{StatusConfirmed, StatusCancelled, true},
		{StatusPending, StatusCompleted, false},
		{StatusConfirmed, StatusPending, false},
		{StatusCompleted, StatusCancelled, false},
		{StatusCancelled, StatusPending, false},
		{StatusCancelled, StatusConfirmed, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.from.CanTransitionTo(tt.to))
		})
	}
}

func TestReservationStatus_IsActive(t *testing.T) {
	assert.True(t, StatusPending.IsActive())
	assert.True(t, StatusConfirmed.IsActive())
	assert.False(t, StatusCompleted.IsActive())
	assert.False(t, StatusCancelled.IsActive())
}

func TestParseReservationStatus(t *testing.T) {
	got, err := ParseReservationStatus(" Confirmed ")
	require.NoError(t, err)
	assert.Equal(t, StatusConfirmed, got)

	_, err = ParseReservationStatus("no_show")
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestReservationIntervals(t *testing.T) {
	reservations := []*Reservation{
		{ID: 1, Date: testDate, StartTime: types.MustTimeString("10:00"), EndTime: types.MustTimeString("10:30"), Status: StatusPending},
		{ID: 2, Date: testDate, StartTime: types.MustTimeString("11:00"), EndTime: types.MustTimeString("12:00"), Status: StatusCancelled},
		{ID: 3, Date: testDate, StartTime: types.MustTimeString("14:00"), EndTime: types.MustTimeString("14:30"), Status: StatusConfirmed},
	}

	assert.Equal(t, []Interval{iv("10:00", "10:30"), iv("14:00", "14:30")}, ReservationIntervals(reservations, 0))
	assert.Equal(t, []Interval{iv("10:00", "10:30")}, ReservationIntervals(reservations, 3))
}

func TestActor_CanAccess(t *testing.T) {
	r := &Reservation{UserID: 10}

	assert.True(t, Actor{UserID: 10, Role: RoleClient}.CanAccess(r))
	assert.False(t, Actor{UserID: 11, Role: RoleClient}.CanAccess(r))
	assert.True(t, Actor{UserID: 11, Role: RoleAdmin}.CanAccess(r))
	assert.Equal(t, RoleClient, ParseRole("superuser"))
}
