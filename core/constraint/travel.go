package constraint

import (
	"fmt"
	"time"

	"github.com/gasotec/dispatch/core/geo"
	"github.com/gasotec/dispatch/core/model"
	"github.com/gasotec/dispatch/core/schedule"
)

// TravelTime requires enough gap between consecutive deliveries of a driver
// to cover the estimated drive plus a safety buffer.
type TravelTime struct {
	base
	speedKmh float64
	buffer   time.Duration
}

// NewTravelTime builds the constraint. A non-positive buffer uses the
// estimator's own 5 minute pad.
func NewTravelTime(speedKmh float64, buffer time.Duration, weight float64) *TravelTime {
	if buffer <= 0 {
		buffer = geo.TravelBuffer
	}
	return &TravelTime{base: base{name: "travel_time", hard: true, weight: weight}, speedKmh: speedKmh, buffer: buffer}
}

// requiredGap is the drive estimate with the constraint's buffer substituted
// for the estimator's fixed pad.
func (c *TravelTime) requiredGap(a, b model.Location) time.Duration {
	return geo.TravelTime(a, b, c.speedKmh) - geo.TravelBuffer + c.buffer
}

func (c *TravelTime) Check(entries []model.ScheduleEntry) (bool, string) {
	for driver, g := range schedule.ByDriver(entries) {
		for i := 1; i < len(g); i++ {
			prev, next := g[i-1], g[i]
			if prev.Location == nil || next.Location == nil {
				continue
			}
			gap := next.Slot.Start.Sub(prev.EndTime())
			if need := c.requiredGap(*prev.Location, *next.Location); gap < need {
				return false, fmt.Sprintf("driver %s: %v gap before delivery %s, needs %v",
					driver, gap.Round(time.Minute), next.DeliveryID, need.Round(time.Minute))
			}
		}
	}
	return true, ""
}

func (c *TravelTime) Cost(entries []model.ScheduleEntry) float64 {
	return hardCost(c, entries)
}

// Clustering is the soft constraint penalising long hops between consecutive
// deliveries of one driver.
type Clustering struct {
	base
	thresholdKm float64
}

// DefaultClusterThresholdKm is the hop length above which the penalty grows.
const DefaultClusterThresholdKm = 15.0

// NewClustering builds the soft constraint; a non-positive threshold uses
// the 15 km default.
func NewClustering(thresholdKm, weight float64) *Clustering {
	if thresholdKm <= 0 {
		thresholdKm = DefaultClusterThresholdKm
	}
	return &Clustering{base: base{name: "geographic_clustering", hard: false, weight: weight}, thresholdKm: thresholdKm}
}

// excess sums the distance beyond the threshold over all consecutive hops.
func (c *Clustering) excess(entries []model.ScheduleEntry) float64 {
	var total float64
	for _, g := range schedule.ByDriver(entries) {
		for i := 1; i < len(g); i++ {
			if g[i-1].Location == nil || g[i].Location == nil {
				continue
			}
			if d := geo.Haversine(*g[i-1].Location, *g[i].Location); d > c.thresholdKm {
				total += d - c.thresholdKm
			}
		}
	}
	return total
}

func (c *Clustering) Check(entries []model.ScheduleEntry) (bool, string) {
	if ex := c.excess(entries); ex > 0 {
		return false, fmt.Sprintf("%.1f km of hops beyond the %.0f km cluster threshold", ex, c.thresholdKm)
	}
	return true, ""
}

// Cost scales with the normalized excess distance and stays below the
// weight, so a soft violation never outweighs a hard one.
func (c *Clustering) Cost(entries []model.ScheduleEntry) float64 {
	ex := c.excess(entries)
	if ex <= 0 {
		return 0
	}
	return c.weight * ex / (ex + c.thresholdKm)
}
