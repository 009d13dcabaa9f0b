package engine

import (
	"sort"

	"github.com/gasotec/dispatch/core/geo"
	"github.com/gasotec/dispatch/core/model"
	"github.com/gasotec/dispatch/core/schedule"
)

// buildRoutes derives one ordered route per driver used in the schedule,
// alternating travel legs and on-site service with running totals.
func buildRoutes(entries []model.ScheduleEntry, drivers []model.DriverAvailability, speedKmh float64) []model.DeliveryRoute {
	start := make(map[string]model.Location, len(drivers))
	for _, d := range drivers {
		start[d.DriverID] = d.Location
	}

	grouped := schedule.ByDriver(entries)
	ids := make([]string, 0, len(grouped))
	for id := range grouped {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	routes := make([]model.DeliveryRoute, 0, len(ids))
	for _, id := range ids {
		route := model.DeliveryRoute{DriverID: id}
		pos := start[id]
		for _, e := range grouped[id] {
			if e.Location != nil {
				dist := geo.Haversine(pos, *e.Location)
				travel := geo.TravelTime(pos, *e.Location, speedKmh)
				route.TotalDistance += dist
				route.TotalDuration += travel
				route.Segments = append(route.Segments, model.RouteSegment{
					Kind:          model.SegmentTravel,
					From:          pos,
					To:            *e.Location,
					DistanceKm:    dist,
					Duration:      travel,
					TotalDistance: route.TotalDistance,
					TotalDuration: route.TotalDuration,
				})
				pos = *e.Location
			}
			route.TotalDuration += e.ServiceDuration
			route.Segments = append(route.Segments, model.RouteSegment{
				Kind:          model.SegmentDelivery,
				DeliveryID:    e.DeliveryID,
				From:          pos,
				To:            pos,
				Duration:      e.ServiceDuration,
				TotalDistance: route.TotalDistance,
				TotalDuration: route.TotalDuration,
			})
		}
		routes = append(routes, route)
	}
	return routes
}

// computeStats derives the run KPIs. Time window compliance is the share of
// placed entries whose service interval lies inside one of the request's
// windows.
func computeStats(res model.SchedulingResult, requests []model.DeliveryRequest) *model.SchedulingStats {
	stats := &model.SchedulingStats{
		Scheduled:     len(res.Schedule),
		Unscheduled:   len(res.Unscheduled),
		ConflictCount: len(res.Conflicts),
		ComputeTime:   res.ComputeTime,
	}

	used := make(map[string]bool)
	for _, e := range res.Schedule {
		used[e.DriverID] = true
	}
	stats.DriversUsed = len(used)
	if stats.DriversUsed > 0 {
		stats.AvgDeliveriesPerUsed = float64(stats.Scheduled) / float64(stats.DriversUsed)
	}

	byID := make(map[string]model.DeliveryRequest, len(requests))
	for _, r := range requests {
		byID[r.DeliveryID] = r
	}
	known, compliant := 0, 0
	for _, e := range res.Schedule {
		r, ok := byID[e.DeliveryID]
		if !ok {
			continue
		}
		known++
		for _, w := range r.Windows {
			if w.Contains(e.Slot.Start, e.EndTime()) {
				compliant++
				break
			}
		}
	}
	if known > 0 {
		stats.TimeWindowCompliance = float64(compliant) / float64(known)
	} else {
		stats.TimeWindowCompliance = 1
	}
	return stats
}
