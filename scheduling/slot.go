package scheduling

import "time"

// TimeSlot is a bookable interval computed on demand. Slots are never
// persisted; the resolver derives them from rules, exceptions and
// existing bookings.
type TimeSlot struct {
	StartTime     time.Time `json:"start_time"`
	EndTime       time.Time `json:"end_time"`
	BuilderID     uint      `json:"builder_id"`
	SessionTypeID uint      `json:"session_type_id,omitempty"`
	IsBooked      bool      `json:"is_booked"`
}

// Interval is a half-open [Start, End) time range.
type Interval struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

func (iv Interval) IsEmpty() bool {
	return !iv.End.After(iv.Start)
}

// Overlaps reports whether two intervals share any time.
func (iv Interval) Overlaps(other Interval) bool {
	return iv.Start.Before(other.End) && other.Start.Before(iv.End)
}

// Clip returns the part of iv that falls inside bounds.
func (iv Interval) Clip(bounds Interval) Interval {
	out := iv
	if out.Start.Before(bounds.Start) {
		out.Start = bounds.Start
	}
	if out.End.After(bounds.End) {
		out.End = bounds.End
	}
	return out
}
