package schedule

import (
	"sort"

	"github.com/gasotec/dispatch/core/geo"
	"github.com/gasotec/dispatch/core/model"
)

// nominalDay is the working time assumed per active driver when computing
// utilization.
const nominalDayMinutes = 8 * 60

// Metric keys produced by Metrics.
const (
	MetricTotalDeliveries = "total_deliveries"
	MetricDriversUsed     = "drivers_used"
	MetricServiceMinutes  = "total_service_minutes"
	MetricTravelMinutes   = "total_travel_minutes"
	MetricDistanceKm      = "total_distance_km"
	MetricUtilization     = "utilization"
)

// Metrics computes the aggregate numbers for a schedule. Travel figures sum
// the estimates between consecutive entries of each driver.
func Metrics(entries []model.ScheduleEntry, speedKmh float64) map[string]float64 {
	m := map[string]float64{
		MetricTotalDeliveries: float64(len(entries)),
		MetricDriversUsed:     0,
		MetricServiceMinutes:  0,
		MetricTravelMinutes:   0,
		MetricDistanceKm:      0,
		MetricUtilization:     0,
	}

	var serviceMin, travelMin, distance float64
	grouped := ByDriver(entries)
	ids := make([]string, 0, len(grouped))
	for id := range grouped {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		g := grouped[id]
		for i, e := range g {
			serviceMin += e.ServiceDuration.Minutes()
			if i == 0 {
				continue
			}
			prev := g[i-1]
			if prev.Location == nil || e.Location == nil {
				continue
			}
			distance += geo.Haversine(*prev.Location, *e.Location)
			travelMin += geo.TravelTime(*prev.Location, *e.Location, speedKmh).Minutes()
		}
	}

	m[MetricDriversUsed] = float64(len(grouped))
	m[MetricServiceMinutes] = serviceMin
	m[MetricTravelMinutes] = travelMin
	m[MetricDistanceKm] = distance
	if len(grouped) > 0 {
		m[MetricUtilization] = (serviceMin + travelMin) / float64(len(grouped)*nominalDayMinutes)
	}
	return m
}
