package model

import (
	"sort"
	"strings"
)

// ConflictType identifies the feasibility rule a conflict violates.
type ConflictType string

const (
	ConflictTimeOverlap        ConflictType = "time_overlap"
	ConflictTravelTime         ConflictType = "travel_time_insufficient"
	ConflictTimeWindow         ConflictType = "time_window_violation"
	ConflictCapacityExceeded   ConflictType = "capacity_exceeded"
	ConflictDriverUnavailable  ConflictType = "driver_unavailable"
	ConflictVehicleUnavailable ConflictType = "vehicle_unavailable"
)

// SchedulingConflict describes a detected violation between entries.
// Severity ranges from 1 (cosmetic) to 5 (blocking).
type SchedulingConflict struct {
	ID          string          `json:"id"`
	Type        ConflictType    `json:"type"`
	Entries     []ScheduleEntry `json:"entries"`
	Description string          `json:"description"`
	Severity    int             `json:"severity"`
	Suggestions []string        `json:"suggestions,omitempty"`
}

// Key identifies the conflict by type and involved deliveries. Two
// detections of the same violation share a key regardless of order.
func (c SchedulingConflict) Key() string {
	ids := make([]string, len(c.Entries))
	for i, e := range c.Entries {
		ids[i] = e.DeliveryID
	}
	sort.Strings(ids)
	return string(c.Type) + ":" + strings.Join(ids, ",")
}
