package model

import (
	"fmt"
	"time"
)

// TimeWindow represents an absolute interval during which a delivery may
// begin or a driver is available. Intervals are half-open: [Start, End).
type TimeWindow struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Validate checks that the window is well formed.
func (w TimeWindow) Validate() error {
	if !w.End.After(w.Start) {
		return fmt.Errorf("window end %v not after start %v", w.End, w.Start)
	}
	return nil
}

// Duration returns the window length.
func (w TimeWindow) Duration() time.Duration {
	return w.End.Sub(w.Start)
}

// Contains reports whether [start, end) lies entirely within the window.
func (w TimeWindow) Contains(start, end time.Time) bool {
	return !start.Before(w.Start) && !end.After(w.End)
}

// Overlaps reports whether two half-open windows intersect.
func (w TimeWindow) Overlaps(other TimeWindow) bool {
	return w.Start.Before(other.End) && other.Start.Before(w.End)
}

// TimeSlot is a bookable portion of a window with a reservation capacity.
type TimeSlot struct {
	Start    time.Time `json:"start"`
	End      time.Time `json:"end"`
	Capacity int       `json:"capacity"`
	Reserved int       `json:"reserved"`
}

// Duration returns the slot length.
func (s TimeSlot) Duration() time.Duration {
	return s.End.Sub(s.Start)
}

// Available reports whether the slot can take another reservation.
func (s TimeSlot) Available() bool {
	return s.Reserved < s.Capacity
}

// Reserve increments the reservation count. It fails once the slot is full,
// preserving the reserved <= capacity invariant.
func (s *TimeSlot) Reserve() error {
	if !s.Available() {
		return fmt.Errorf("slot %v already at capacity %d", s.Start, s.Capacity)
	}
	s.Reserved++
	return nil
}

// Overlaps reports whether two half-open slots intersect.
func (s TimeSlot) Overlaps(other TimeSlot) bool {
	return s.Start.Before(other.End) && other.Start.Before(s.End)
}
