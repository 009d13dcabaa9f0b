package model

import "time"

// EntryStatus tracks the lifecycle of a scheduled delivery.
type EntryStatus string

const (
	StatusScheduled  EntryStatus = "scheduled"
	StatusConfirmed  EntryStatus = "confirmed"
	StatusInProgress EntryStatus = "in_progress"
	StatusCompleted  EntryStatus = "completed"
	StatusCancelled  EntryStatus = "cancelled"
)

// ScheduleEntry assigns one delivery to a driver, vehicle and time slot.
type ScheduleEntry struct {
	DeliveryID      string        `json:"delivery_id"`
	ClientID        string        `json:"client_id"`
	DriverID        string        `json:"driver_id"`
	VehicleID       string        `json:"vehicle_id,omitempty"`
	Slot            TimeSlot      `json:"slot"`
	ServiceDuration time.Duration `json:"service_duration"`
	Priority        int           `json:"priority"`
	Status          EntryStatus   `json:"status"`
	Location        *Location     `json:"location,omitempty"`
	Notes           string        `json:"notes,omitempty"`
}

// NewScheduleEntry builds an entry whose slot end matches the service end.
// The slot end is kept in sync with EndTime so both agree everywhere.
func NewScheduleEntry(req DeliveryRequest, driverID, vehicleID string, start time.Time) ScheduleEntry {
	loc := req.Location
	return ScheduleEntry{
		DeliveryID:      req.DeliveryID,
		ClientID:        req.ClientID,
		DriverID:        driverID,
		VehicleID:       vehicleID,
		Slot:            TimeSlot{Start: start, End: start.Add(req.ServiceDuration), Capacity: 1, Reserved: 1},
		ServiceDuration: req.ServiceDuration,
		Priority:        req.Priority,
		Status:          StatusScheduled,
		Location:        &loc,
	}
}

// EndTime is the authoritative end of the entry: slot start plus service
// duration. Conflict detection, constraints and route building all use it.
func (e ScheduleEntry) EndTime() time.Time {
	return e.Slot.Start.Add(e.ServiceDuration)
}

// Shift moves the entry start, keeping the slot end in sync.
func (e *ScheduleEntry) Shift(start time.Time) {
	e.Slot.Start = start
	e.Slot.End = start.Add(e.ServiceDuration)
}

// ConflictsWith reports whether both entries belong to the same driver and
// their service intervals intersect.
func (e ScheduleEntry) ConflictsWith(other ScheduleEntry) bool {
	if e.DriverID != other.DriverID {
		return false
	}
	return e.Slot.Start.Before(other.EndTime()) && other.Slot.Start.Before(e.EndTime())
}

// CloneSchedule returns a deep copy of the entries. Nested locations are
// copied as well so mutating the clone never touches the original.
func CloneSchedule(entries []ScheduleEntry) []ScheduleEntry {
	out := make([]ScheduleEntry, len(entries))
	copy(out, entries)
	for i := range out {
		if out[i].Location != nil {
			loc := *out[i].Location
			out[i].Location = &loc
		}
	}
	return out
}
