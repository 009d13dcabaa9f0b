// Package resolve implements the best-effort local repair pass applied to a
// schedule after its conflicts have been detected. Repairs are bounded and
// never guaranteed: whatever cannot be fixed is reported back unresolved.
package resolve

import (
	"sort"
	"time"

	"github.com/gasotec/dispatch/core/geo"
	"github.com/gasotec/dispatch/core/logger"
	"github.com/gasotec/dispatch/core/model"
	"github.com/gasotec/dispatch/core/schedule"
)

const (
	// overlapPad separates two previously overlapping entries.
	overlapPad = 5 * time.Minute
	// travelPad is the extra slack added when making room for travel.
	travelPad = 10 * time.Minute
	// windowScanStep is the granularity used when searching a client window
	// for a free slot.
	windowScanStep = 15 * time.Minute
)

// Resolver repairs conflicts one by one, most severe first.
type Resolver struct {
	// VehicleEntryLimit approximates vehicle headroom by entry count when
	// repairing capacity conflicts.
	VehicleEntryLimit int
	SpeedKmh          float64

	log logger.Logger
}

// New returns a resolver using the given travel speed estimate.
func New(speedKmh float64, log logger.Logger) *Resolver {
	return &Resolver{VehicleEntryLimit: 10, SpeedKmh: speedKmh, log: log}
}

// Resolve attempts to repair the given conflicts on a copy of the schedule.
// It returns the repaired schedule and the conflicts still present
// afterwards.
func (r *Resolver) Resolve(entries []model.ScheduleEntry, conflicts []model.SchedulingConflict,
	requests []model.DeliveryRequest, drivers []model.DriverAvailability,
	vehicles []model.VehicleInfo) ([]model.ScheduleEntry, []model.SchedulingConflict) {

	working := model.CloneSchedule(entries)
	reqByID := make(map[string]model.DeliveryRequest, len(requests))
	for _, req := range requests {
		reqByID[req.DeliveryID] = req
	}

	ordered := append([]model.SchedulingConflict(nil), conflicts...)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].Severity > ordered[j].Severity })

	var unresolved []model.SchedulingConflict
	for _, c := range ordered {
		fixed := r.repair(working, c, reqByID, drivers, vehicles)
		if fixed && !r.persists(working, c) {
			continue
		}
		if r.log != nil {
			r.log.Warnf("conflict %s could not be resolved", c.Key())
		}
		unresolved = append(unresolved, c)
	}

	remaining := schedule.Detect(working, r.SpeedKmh)
	seen := make(map[string]bool, len(remaining))
	for _, c := range remaining {
		seen[c.Key()] = true
	}
	for _, c := range unresolved {
		// Conflicts the detector cannot re-derive (window, capacity,
		// availability) are carried over explicitly.
		if !seen[c.Key()] {
			remaining = append(remaining, c)
			seen[c.Key()] = true
		}
	}
	return working, remaining
}

// persists reports whether the same conflict (type and entry set) is still
// detected on the repaired schedule.
func (r *Resolver) persists(entries []model.ScheduleEntry, c model.SchedulingConflict) bool {
	for _, got := range schedule.Detect(entries, r.SpeedKmh) {
		if got.Key() == c.Key() {
			return true
		}
	}
	return false
}

// repair dispatches on the conflict kind. It mutates entries in place and
// reports whether a candidate fix was applied.
func (r *Resolver) repair(entries []model.ScheduleEntry, c model.SchedulingConflict,
	reqByID map[string]model.DeliveryRequest, drivers []model.DriverAvailability,
	vehicles []model.VehicleInfo) bool {
	switch c.Type {
	case model.ConflictTimeOverlap:
		return r.fixOverlap(entries, c, reqByID, drivers)
	case model.ConflictTravelTime:
		return r.fixTravel(entries, c, reqByID)
	case model.ConflictTimeWindow:
		return r.fixWindow(entries, c, reqByID)
	case model.ConflictCapacityExceeded:
		return r.fixCapacity(entries, c, vehicles)
	case model.ConflictDriverUnavailable:
		return r.fixDriver(entries, c, drivers)
	default:
		return false
	}
}

// pair returns the indices of the earlier and later conflicting entries in
// the working schedule, resolved by delivery id.
func pair(entries []model.ScheduleEntry, c model.SchedulingConflict) (int, int, bool) {
	if len(c.Entries) < 2 {
		return 0, 0, false
	}
	a := indexOf(entries, c.Entries[0].DeliveryID)
	b := indexOf(entries, c.Entries[1].DeliveryID)
	if a < 0 || b < 0 {
		return 0, 0, false
	}
	if entries[b].Slot.Start.Before(entries[a].Slot.Start) {
		a, b = b, a
	}
	return a, b, true
}

func indexOf(entries []model.ScheduleEntry, deliveryID string) int {
	for i := range entries {
		if entries[i].DeliveryID == deliveryID {
			return i
		}
	}
	return -1
}

// withinWindow reports whether the service interval starting at start fits
// one of the request's windows.
func withinWindow(req model.DeliveryRequest, start time.Time) bool {
	end := start.Add(req.ServiceDuration)
	for _, w := range req.Windows {
		if w.Contains(start, end) {
			return true
		}
	}
	return false
}

// fixOverlap pushes the later entry just past the earlier one; when that
// leaves its client window, it falls back to reassigning the entry to a
// less loaded, available driver.
func (r *Resolver) fixOverlap(entries []model.ScheduleEntry, c model.SchedulingConflict,
	reqByID map[string]model.DeliveryRequest, drivers []model.DriverAvailability) bool {
	ei, li, ok := pair(entries, c)
	if !ok {
		return false
	}
	req, known := reqByID[entries[li].DeliveryID]
	newStart := entries[ei].EndTime().Add(overlapPad)
	if known && withinWindow(req, newStart) {
		entries[li].Shift(newStart)
		return true
	}
	return r.reassignDriver(entries, li, drivers)
}

// fixTravel delays the later entry until the travel estimate plus slack
// fits, if its window allows.
func (r *Resolver) fixTravel(entries []model.ScheduleEntry, c model.SchedulingConflict,
	reqByID map[string]model.DeliveryRequest) bool {
	ei, li, ok := pair(entries, c)
	if !ok {
		return false
	}
	if entries[ei].Location == nil || entries[li].Location == nil {
		return false
	}
	travel := geo.TravelTime(*entries[ei].Location, *entries[li].Location, r.SpeedKmh)
	newStart := entries[ei].EndTime().Add(travel + travelPad)
	req, known := reqByID[entries[li].DeliveryID]
	if !known || !withinWindow(req, newStart) {
		return false
	}
	entries[li].Shift(newStart)
	return true
}

// fixWindow scans the request's windows in 15 minute steps for a start that
// conflicts with none of the driver's other entries.
func (r *Resolver) fixWindow(entries []model.ScheduleEntry, c model.SchedulingConflict,
	reqByID map[string]model.DeliveryRequest) bool {
	if len(c.Entries) == 0 {
		return false
	}
	i := indexOf(entries, c.Entries[0].DeliveryID)
	if i < 0 {
		return false
	}
	req, known := reqByID[entries[i].DeliveryID]
	if !known {
		return false
	}
	for _, w := range req.Windows {
		for start := w.Start; !start.Add(req.ServiceDuration).After(w.End); start = start.Add(windowScanStep) {
			if r.freeForDriver(entries, i, start, start.Add(req.ServiceDuration)) {
				entries[i].Shift(start)
				return true
			}
		}
	}
	return false
}

// freeForDriver reports whether [start, end) is clear of the driver's other
// entries.
func (r *Resolver) freeForDriver(entries []model.ScheduleEntry, self int, start, end time.Time) bool {
	for j := range entries {
		if j == self || entries[j].DriverID != entries[self].DriverID {
			continue
		}
		if entries[j].Slot.Start.Before(end) && start.Before(entries[j].EndTime()) {
			return false
		}
	}
	return true
}

// fixCapacity moves the offending entry to another vehicle with headroom,
// approximated by the per-vehicle entry count threshold.
func (r *Resolver) fixCapacity(entries []model.ScheduleEntry, c model.SchedulingConflict,
	vehicles []model.VehicleInfo) bool {
	if len(c.Entries) == 0 {
		return false
	}
	i := indexOf(entries, c.Entries[len(c.Entries)-1].DeliveryID)
	if i < 0 {
		return false
	}
	counts := make(map[string]int)
	for _, e := range entries {
		counts[e.VehicleID]++
	}
	for _, v := range vehicles {
		if v.VehicleID == entries[i].VehicleID {
			continue
		}
		if counts[v.VehicleID] < r.VehicleEntryLimit {
			entries[i].VehicleID = v.VehicleID
			return true
		}
	}
	return false
}

// fixDriver reassigns the entry to any driver whose availability covers its
// interval.
func (r *Resolver) fixDriver(entries []model.ScheduleEntry, c model.SchedulingConflict,
	drivers []model.DriverAvailability) bool {
	if len(c.Entries) == 0 {
		return false
	}
	i := indexOf(entries, c.Entries[0].DeliveryID)
	if i < 0 {
		return false
	}
	return r.reassignDriver(entries, i, drivers)
}

// reassignDriver moves entry i to the least loaded driver that is available
// for its interval and has no clashing entry.
func (r *Resolver) reassignDriver(entries []model.ScheduleEntry, i int, drivers []model.DriverAvailability) bool {
	loads := make(map[string]int)
	for _, e := range entries {
		loads[e.DriverID]++
	}
	start, end := entries[i].Slot.Start, entries[i].EndTime()

	bestIdx := -1
	for j, d := range drivers {
		if d.DriverID == entries[i].DriverID || !d.AvailableDuring(start, end) {
			continue
		}
		clash := false
		for k := range entries {
			if k == i || entries[k].DriverID != d.DriverID {
				continue
			}
			if entries[k].Slot.Start.Before(end) && start.Before(entries[k].EndTime()) {
				clash = true
				break
			}
		}
		if clash {
			continue
		}
		if bestIdx < 0 || loads[d.DriverID] < loads[drivers[bestIdx].DriverID] {
			bestIdx = j
		}
	}
	if bestIdx < 0 {
		return false
	}
	entries[i].DriverID = drivers[bestIdx].DriverID
	entries[i].VehicleID = drivers[bestIdx].VehicleID
	return true
}
