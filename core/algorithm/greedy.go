package algorithm

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/gasotec/dispatch/core/constraint"
	"github.com/gasotec/dispatch/core/geo"
	"github.com/gasotec/dispatch/core/model"
)

// conflictStep is the pad applied when pushing a candidate start past a
// blocking entry.
const conflictStep = 10 * time.Minute

// Greedy is the deterministic baseline: requests in priority order, first
// driver and window slot that fits wins.
type Greedy struct{}

// NewGreedy returns the greedy strategy.
func NewGreedy() *Greedy { return &Greedy{} }

func (g *Greedy) Name() string { return "greedy" }

// Schedule assigns requests one by one. Requests are ordered by priority
// descending, then earliest window start. Unplaceable requests are reported
// as unscheduled, never dropped silently.
func (g *Greedy) Schedule(ctx context.Context, requests []model.DeliveryRequest, drivers []model.DriverAvailability,
	params model.SchedulingParameters, constraints []constraint.Constraint) model.SchedulingResult {
	started := time.Now()
	params.SetDefaults()

	ordered := append([]model.DeliveryRequest(nil), requests...)
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].Priority != ordered[j].Priority {
			return ordered[i].Priority > ordered[j].Priority
		}
		return ordered[i].EarliestStart().Before(ordered[j].EarliestStart())
	})

	byDriver := make(map[string][]model.ScheduleEntry)
	var unscheduled []string
	for _, req := range ordered {
		placed := false
		for _, d := range candidateDrivers(req, drivers) {
			if limit := d.MaxDeliveries; limit > 0 && len(byDriver[d.DriverID]) >= limit {
				continue
			}
			if entry, ok := place(req, d, byDriver[d.DriverID]); ok {
				byDriver[d.DriverID] = append(byDriver[d.DriverID], entry)
				placed = true
				break
			}
		}
		if !placed {
			unscheduled = append(unscheduled, req.DeliveryID)
		}
	}

	var entries []model.ScheduleEntry
	for _, d := range drivers {
		entries = append(entries, orderRoute(byDriver[d.DriverID], d.Location)...)
	}

	res := model.SchedulingResult{
		Schedule:    entries,
		Unscheduled: unscheduled,
		Algorithm:   g.Name(),
		Success:     len(unscheduled) == 0,
	}
	if !res.Success {
		res.Error = fmt.Sprintf("%d of %d requests could not be placed", len(unscheduled), len(requests))
	}
	finalize(&res, params, started)
	return res
}

// candidateDrivers returns drivers in input order with the preferred driver,
// if any, tried first.
func candidateDrivers(req model.DeliveryRequest, drivers []model.DriverAvailability) []model.DriverAvailability {
	if req.PreferredDriver == "" {
		return drivers
	}
	out := make([]model.DriverAvailability, 0, len(drivers))
	for _, d := range drivers {
		if d.DriverID == req.PreferredDriver {
			out = append(out, d)
			break
		}
	}
	for _, d := range drivers {
		if d.DriverID != req.PreferredDriver {
			out = append(out, d)
		}
	}
	return out
}

// place tries every window of the request against the driver's current
// entries. Within a window the candidate start advances past each blocking
// entry and each availability gap until the service fits or the window is
// exhausted.
func place(req model.DeliveryRequest, d model.DriverAvailability, existing []model.ScheduleEntry) (model.ScheduleEntry, bool) {
	for _, w := range req.Windows {
		start := w.Start
		for attempts := 0; attempts <= len(existing)+len(d.Periods); attempts++ {
			end := start.Add(req.ServiceDuration)
			if end.After(w.End) {
				break
			}
			if blocker, blocked := firstBlocker(existing, start, end); blocked {
				start = blocker.EndTime().Add(conflictStep)
				continue
			}
			if !d.AvailableDuring(start, end) {
				next, ok := nextPeriodStart(d, start)
				if !ok {
					break
				}
				start = next
				continue
			}
			return model.NewScheduleEntry(req, d.DriverID, d.VehicleID, start), true
		}
	}
	return model.ScheduleEntry{}, false
}

// nextPeriodStart returns the earliest availability period start strictly
// after the given time.
func nextPeriodStart(d model.DriverAvailability, after time.Time) (time.Time, bool) {
	var next time.Time
	found := false
	for _, p := range d.Periods {
		if !p.Start.After(after) {
			continue
		}
		if !found || p.Start.Before(next) {
			next = p.Start
			found = true
		}
	}
	return next, found
}

// firstBlocker returns the earliest-ending entry overlapping [start, end).
func firstBlocker(existing []model.ScheduleEntry, start, end time.Time) (model.ScheduleEntry, bool) {
	var blocker model.ScheduleEntry
	found := false
	for _, e := range existing {
		if e.Slot.Start.Before(end) && start.Before(e.EndTime()) {
			if !found || e.EndTime().Before(blocker.EndTime()) {
				blocker = e
				found = true
			}
		}
	}
	return blocker, found
}

// orderRoute reorders a driver's entries nearest-neighbor by location to
// approximate a short route; without full location data it falls back to
// start-time order. Entry times are left untouched.
func orderRoute(entries []model.ScheduleEntry, from model.Location) []model.ScheduleEntry {
	if len(entries) < 2 {
		return entries
	}
	for _, e := range entries {
		if e.Location == nil {
			sorted := append([]model.ScheduleEntry(nil), entries...)
			sort.Slice(sorted, func(i, j int) bool { return sorted[i].Slot.Start.Before(sorted[j].Slot.Start) })
			return sorted
		}
	}

	remaining := append([]model.ScheduleEntry(nil), entries...)
	out := make([]model.ScheduleEntry, 0, len(entries))
	pos := from
	for len(remaining) > 0 {
		best, bestDist := 0, geo.Haversine(pos, *remaining[0].Location)
		for i := 1; i < len(remaining); i++ {
			if d := geo.Haversine(pos, *remaining[i].Location); d < bestDist {
				best, bestDist = i, d
			}
		}
		pos = *remaining[best].Location
		out = append(out, remaining[best])
		remaining = append(remaining[:best], remaining[best+1:]...)
	}
	return out
}

var _ Algorithm = (*Greedy)(nil)
