package domain

import "time"

// AvailabilityOverride is an administrative exception to the weekly schedule:
// either an explicit block (Available=false) or an extra open interval
// (Available=true). Overrides never expire on their own.
type AvailabilityOverride struct {
	ID         int64
	EmployeeID int64
	Interval   Interval
	Available  bool
	Reason     *string
	CreatedAt  time.Time
}

// IsBlock returns true for closing overrides
func (o *AvailabilityOverride) IsBlock() bool {
	return !o.Available
}

// ConflictsWith reports whether two overrides of opposite polarity overlap.
// Same-polarity overlaps are allowed and simply union together.
func (o *AvailabilityOverride) ConflictsWith(other *AvailabilityOverride) bool {
	return o.EmployeeID == other.EmployeeID &&
		o.Available != other.Available &&
		o.Interval.Overlaps(other.Interval)
}

// PartitionOverrides splits overrides into open intervals and blocks.
func PartitionOverrides(overrides []*AvailabilityOverride) (open []Interval, blocks []Interval) {
	open = make([]Interval, 0)
	blocks = make([]Interval, 0)
	for _, o := range overrides {
		if o.Available {
			open = append(open, o.Interval)
		} else {
			blocks = append(blocks, o.Interval)
		}
	}
	return open, blocks
}

// WorkingIntervals combines the schedule with overrides for one date:
// base ∪ open overrides, minus blocks. Blocks win over both.
// A non-working day yields nothing, even if open overrides exist.
func WorkingIntervals(schedule WorkSchedule, date time.Time, overrides []*AvailabilityOverride) []Interval {
	base, ok := schedule.Resolve(date)
	if !ok {
		return []Interval{}
	}

	open, blocks := PartitionOverrides(overrides)
	return SubtractAll(append([]Interval{base}, open...), blocks)
}

// OverridesFilter фильтр выборки переопределений
type OverridesFilter struct {
	EmployeeID int64
	From       *time.Time
	To         *time.Time
}
