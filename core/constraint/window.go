package constraint

import (
	"fmt"
	"time"

	"github.com/gasotec/dispatch/core/model"
	"github.com/gasotec/dispatch/core/schedule"
)

// TimeWindow requires every entry to lie within one of its client's windows.
type TimeWindow struct {
	base
	windows map[string][]model.TimeWindow
}

// NewTimeWindow builds the constraint from client id to allowed windows.
func NewTimeWindow(windows map[string][]model.TimeWindow, weight float64) *TimeWindow {
	return &TimeWindow{base: base{name: "time_window", hard: true, weight: weight}, windows: windows}
}

func (c *TimeWindow) Check(entries []model.ScheduleEntry) (bool, string) {
	for _, e := range entries {
		ws, known := c.windows[e.ClientID]
		if !known {
			continue
		}
		fits := false
		for _, w := range ws {
			if w.Contains(e.Slot.Start, e.EndTime()) {
				fits = true
				break
			}
		}
		if !fits {
			return false, fmt.Sprintf("delivery %s at %s is outside client %s windows",
				e.DeliveryID, e.Slot.Start.Format(time.Kitchen), e.ClientID)
		}
	}
	return true, ""
}

func (c *TimeWindow) Cost(entries []model.ScheduleEntry) float64 {
	return hardCost(c, entries)
}

// DriverWindow requires every entry to fall inside one of the assigned
// driver's availability periods.
type DriverWindow struct {
	base
	drivers map[string]model.DriverAvailability
}

// NewDriverWindow builds the constraint from the supplied driver records.
func NewDriverWindow(drivers []model.DriverAvailability, weight float64) *DriverWindow {
	m := make(map[string]model.DriverAvailability, len(drivers))
	for _, d := range drivers {
		m[d.DriverID] = d
	}
	return &DriverWindow{base: base{name: "driver_availability", hard: true, weight: weight}, drivers: m}
}

func (c *DriverWindow) Check(entries []model.ScheduleEntry) (bool, string) {
	for _, e := range entries {
		d, known := c.drivers[e.DriverID]
		if !known {
			return false, fmt.Sprintf("delivery %s assigned to unknown driver %s", e.DeliveryID, e.DriverID)
		}
		if !d.AvailableDuring(e.Slot.Start, e.EndTime()) {
			return false, fmt.Sprintf("driver %s unavailable for delivery %s at %s",
				e.DriverID, e.DeliveryID, e.Slot.Start.Format(time.Kitchen))
		}
	}
	return true, ""
}

func (c *DriverWindow) Cost(entries []model.ScheduleEntry) float64 {
	return hardCost(c, entries)
}

// WorkingHours caps the span from a driver's first start to last end.
// Included only when overtime is disallowed.
type WorkingHours struct {
	base
	maxSpan time.Duration
}

// DefaultWorkingHours is the nominal daily span.
const DefaultWorkingHours = 8 * time.Hour

// NewWorkingHours builds the constraint; a non-positive span uses the
// default 8 hours.
func NewWorkingHours(maxSpan time.Duration, weight float64) *WorkingHours {
	if maxSpan <= 0 {
		maxSpan = DefaultWorkingHours
	}
	return &WorkingHours{base: base{name: "working_hours", hard: true, weight: weight}, maxSpan: maxSpan}
}

func (c *WorkingHours) Check(entries []model.ScheduleEntry) (bool, string) {
	for driver, g := range schedule.ByDriver(entries) {
		if len(g) == 0 {
			continue
		}
		span := g[len(g)-1].EndTime().Sub(g[0].Slot.Start)
		if span > c.maxSpan {
			return false, fmt.Sprintf("driver %s works %v, limit is %v", driver, span.Round(time.Minute), c.maxSpan)
		}
	}
	return true, ""
}

func (c *WorkingHours) Cost(entries []model.ScheduleEntry) float64 {
	return hardCost(c, entries)
}
