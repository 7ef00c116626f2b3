package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SPA-BookingService/pkg/types"
)

var testDate = time.Date(2025, 10, 15, 0, 0, 0, 0, time.UTC) // среда

func iv(start, end string) Interval {
	return Interval{Date: testDate, Start: types.MustTimeString(start), End: types.MustTimeString(end)}
}

func TestNewInterval(t *testing.T) {
	_, err := NewInterval(testDate, types.MustTimeString("10:00"), types.MustTimeString("10:00"))
	assert.ErrorIs(t, err, ErrInvalidInterval)
	assert.ErrorIs(t, err, ErrInvalidArgument)

	got, err := NewInterval(testDate.Add(13*time.Hour), types.MustTimeString("10:00"), types.MustTimeString("11:00"))
	require.NoError(t, err)
	assert.Equal(t, testDate, got.Date)
	assert.Equal(t, 60, got.Minutes())
}

func TestInterval_Overlaps(t *testing.T) {
	tests := []struct {
		name string
		a, b Interval
		want bool
	}{
		{name: "identical", a: iv("10:00", "10:30"), b: iv("10:00", "10:30"), want: true},
		{name: "partial", a: iv("10:00", "11:00"), b: iv("10:30", "11:30"), want: true},
		{name: "nested", a: iv("09:00", "17:00"), b: iv("12:00", "13:00"), want: true},
		{name: "touching before", a: iv("10:00", "10:30"), b: iv("10:30", "11:00"), want: false},
		{name: "touching after", a: iv("10:30", "11:00"), b: iv("10:00", "10:30"), want: false},
		{name: "disjoint", a: iv("08:00", "09:00"), b: iv("12:00", "13:00"), want: false},
		{
			name: "other date",
			a:    iv("10:00", "11:00"),
			b:    Interval{Date: testDate.AddDate(0, 0, 1), Start: types.MustTimeString("10:00"), End: types.MustTimeString("11:00")},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.a.Overlaps(tt.b))
			assert.Equal(t, tt.want, tt.b.Overlaps(tt.a))
		})
	}
}

func TestInterval_Contains(t *testing.T) {
	outer := iv("09:00", "17:00")

	assert.True(t, outer.Contains(iv("09:00", "09:30")))
	assert.True(t, outer.Contains(iv("16:30", "17:00")))
	assert.True(t, outer.Contains(outer))
	assert.False(t, outer.Contains(iv("16:30", "17:30")))
	assert.False(t, outer.Contains(iv("08:30", "09:30")))
}

func TestMerge(t *testing.T) {
	got := Merge([]Interval{
		iv("12:00", "13:00"),
		iv("09:00", "10:00"),
		iv("10:00", "10:30"), // смежный - склеивается
		iv("12:30", "14:00"),
	})

	assert.Equal(t, []Interval{iv("09:00", "10:30"), iv("12:00", "14:00")}, got)
	assert.Empty(t, Merge(nil))
}

func TestSubtract(t *testing.T) {
	base := iv("09:00", "17:00")

	tests := []struct {
		name     string
		occupied []Interval
		want     []Interval
	}{
		{name: "nothing occupied", occupied: nil, want: []Interval{base}},
		{
			name:     "block in the middle",
			occupied: []Interval{iv("12:00", "13:00")},
			want:     []Interval{iv("09:00", "12:00"), iv("13:00", "17:00")},
		},
		{
			name:     "unsorted overlapping occupied are merged",
			occupied: []Interval{iv("14:00", "15:00"), iv("10:00", "11:00"), iv("10:30", "11:30")},
			want:     []Interval{iv("09:00", "10:00"), iv("11:30", "14:00"), iv("15:00", "17:00")},
		},
		{
			name:     "occupied sticks out of base",
			occupied: []Interval{iv("08:00", "09:30"), iv("16:30", "18:00")},
			want:     []Interval{iv("09:30", "16:30")},
		},
		{name: "fully covered", occupied: []Interval{iv("08:00", "18:00")}, want: []Interval{}},
		{
			name:     "outside base is ignored",
			occupied: []Interval{iv("06:00", "08:00"), iv("18:00", "19:00")},
			want:     []Interval{base},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Subtract(base, tt.occupied))
		})
	}
}

func TestSubtractAll(t *testing.T) {
	got := SubtractAll(
		[]Interval{iv("18:00", "20:00"), iv("09:00", "17:00")},
		[]Interval{iv("16:00", "19:00")},
	)

	assert.Equal(t, []Interval{iv("09:00", "16:00"), iv("19:00", "20:00")}, got)
}
