package core

import "time"

// TimePoint is an ordinal position on the chart timeline.
// The engine never interprets the ordinal beyond its total order;
// a TimeBehavior defines how raw times map onto it.
type TimePoint struct {
	Ordinal       int64
	IsBusinessDay bool
}

// Compare returns -1, 0 or +1 following the timeline order.
func (t TimePoint) Compare(o TimePoint) int {
	switch {
	case t.Ordinal < o.Ordinal:
		return -1
	case t.Ordinal > o.Ordinal:
		return 1
	default:
		return 0
	}
}

// Before reports whether t precedes o on the timeline.
func (t TimePoint) Before(o TimePoint) bool { return t.Ordinal < o.Ordinal }

// After reports whether t follows o on the timeline.
func (t TimePoint) After(o TimePoint) bool { return t.Ordinal > o.Ordinal }

// Equal reports whether t and o are the same timeline position.
func (t TimePoint) Equal(o TimePoint) bool { return t.Ordinal == o.Ordinal }

// TimeBehavior converts between the embedding application's raw time
// representation and chart TimePoints, and formats points for display.
// It is selected once per chart, so series with heterogeneous raw time
// types still share one consistent timeline.
type TimeBehavior interface {
	ToTimePoint(t time.Time) TimePoint
	ToTime(p TimePoint) time.Time
	Format(p TimePoint) string
}

// UnixBehavior maps times to Unix seconds. This is the default behavior.
type UnixBehavior struct {
	Layout string
}

// NewUnixBehavior creates a Unix-seconds time behavior with the given
// display layout (time.RFC3339 when empty).
func NewUnixBehavior(layout string) UnixBehavior {
	if layout == "" {
		layout = time.RFC3339
	}
	return UnixBehavior{Layout: layout}
}

func (b UnixBehavior) ToTimePoint(t time.Time) TimePoint {
	return TimePoint{Ordinal: t.Unix()}
}

func (b UnixBehavior) ToTime(p TimePoint) time.Time {
	return time.Unix(p.Ordinal, 0).UTC()
}

func (b UnixBehavior) Format(p TimePoint) string {
	return b.ToTime(p).Format(b.Layout)
}

// BusinessDayBehavior maps times to whole calendar days, marking every
// point as a business day. Weekend gaps collapse in the logical index,
// so daily series render without holes.
type BusinessDayBehavior struct {
	Layout string
}

// NewBusinessDayBehavior creates a calendar-day time behavior with the
// given display layout ("2006-01-02" when empty).
func NewBusinessDayBehavior(layout string) BusinessDayBehavior {
	if layout == "" {
		layout = "2006-01-02"
	}
	return BusinessDayBehavior{Layout: layout}
}

func (b BusinessDayBehavior) ToTimePoint(t time.Time) TimePoint {
	day := t.UTC().Truncate(24 * time.Hour)
	return TimePoint{Ordinal: day.Unix(), IsBusinessDay: true}
}

func (b BusinessDayBehavior) ToTime(p TimePoint) time.Time {
	return time.Unix(p.Ordinal, 0).UTC()
}

func (b BusinessDayBehavior) Format(p TimePoint) string {
	return b.ToTime(p).Format(b.Layout)
}
