package domain

import (
	"fmt"
	"sort"
	"time"

	"github.com/m04kA/SPA-BookingService/pkg/types"
)

// Interval is a half-open time range [Start, End) within one calendar date.
// Cross-midnight intervals are not representable.
type Interval struct {
	Date  time.Time
	Start types.TimeString
	End   types.TimeString
}

// NewInterval builds an interval and checks that Start < End.
func NewInterval(date time.Time, start, end types.TimeString) (Interval, error) {
	if !start.IsBefore(end) {
		return Interval{}, fmt.Errorf("%w: %s-%s", ErrInvalidInterval, start, end)
	}
	return Interval{Date: DateOnly(date), Start: start, End: end}, nil
}

// Minutes returns the length of the interval.
func (i Interval) Minutes() int {
	return i.End.Sub(i.Start)
}

// Overlaps reports whether two intervals on the same date share any instant.
// Touching intervals (10:00-10:30 and 10:30-11:00) do not overlap.
func (i Interval) Overlaps(other Interval) bool {
	if !SameDate(i.Date, other.Date) {
		return false
	}
	return i.Start.IsBefore(other.End) && other.Start.IsBefore(i.End)
}

// Contains reports whether inner lies entirely within i.
func (i Interval) Contains(inner Interval) bool {
	if !SameDate(i.Date, inner.Date) {
		return false
	}
	return !inner.Start.IsBefore(i.Start) && !inner.End.IsAfter(i.End)
}

func (i Interval) String() string {
	return fmt.Sprintf("%s %s-%s", i.Date.Format(DateFormat), i.Start, i.End)
}

// Merge sorts intervals by start and coalesces overlapping or adjacent ones.
// Intervals of different dates are never merged together.
func Merge(intervals []Interval) []Interval {
	if len(intervals) == 0 {
		return []Interval{}
	}

	sorted := make([]Interval, len(intervals))
	copy(sorted, intervals)
	sortIntervals(sorted)

	merged := []Interval{sorted[0]}
	for _, cur := range sorted[1:] {
		last := &merged[len(merged)-1]
		if SameDate(last.Date, cur.Date) && !cur.Start.IsAfter(last.End) {
			if cur.End.IsAfter(last.End) {
				last.End = cur.End
			}
			continue
		}
		merged = append(merged, cur)
	}

	return merged
}

// Subtract returns the free parts of base after removing everything covered by
// occupied. Occupied intervals are merged first; the result is sorted by start.
func Subtract(base Interval, occupied []Interval) []Interval {
	free := make([]Interval, 0, 1)
	cursor := base.Start

	for _, occ := range Merge(occupied) {
		if !occ.Overlaps(base) {
			continue
		}
		if cursor.IsBefore(occ.Start) {
			free = append(free, Interval{Date: base.Date, Start: cursor, End: occ.Start})
		}
		if occ.End.IsAfter(cursor) {
			cursor = occ.End
		}
	}

	if cursor.IsBefore(base.End) {
		free = append(free, Interval{Date: base.Date, Start: cursor, End: base.End})
	}

	return free
}

// SubtractAll applies Subtract to every interval of bases (merged first).
func SubtractAll(bases []Interval, occupied []Interval) []Interval {
	result := make([]Interval, 0, len(bases))
	for _, base := range Merge(bases) {
		result = append(result, Subtract(base, occupied)...)
	}
	return result
}

// AnyOverlaps reports whether candidate overlaps at least one of intervals.
func AnyOverlaps(candidate Interval, intervals []Interval) bool {
	for _, other := range intervals {
		if candidate.Overlaps(other) {
			return true
		}
	}
	return false
}

// AnyContains reports whether at least one of intervals fully contains candidate.
func AnyContains(intervals []Interval, candidate Interval) bool {
	for _, outer := range intervals {
		if outer.Contains(candidate) {
			return true
		}
	}
	return false
}

// DateOnly truncates t to midnight in UTC, keeping its calendar date.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// SameDate compares calendar dates ignoring time of day.
func SameDate(a, b time.Time) bool {
	y1, m1, d1 := a.Date()
	y2, m2, d2 := b.Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}

func sortIntervals(intervals []Interval) {
	sort.Slice(intervals, func(i, j int) bool {
		a, b := intervals[i], intervals[j]
		if !SameDate(a.Date, b.Date) {
			return a.Date.Before(b.Date)
		}
		if !a.Start.Equal(b.Start) {
			return a.Start.IsBefore(b.Start)
		}
		return a.End.IsBefore(b.End)
	})
}
