// Package geo provides the distance and duration estimators every other
// scheduling component shares. Conflict detection depends on the exact
// haversine formula and constants below, so they must not change.
package geo

import (
	"math"
	"time"

	"github.com/gasotec/dispatch/core/model"
)

const (
	// earthRadiusKm is the mean Earth radius used by the haversine formula.
	earthRadiusKm = 6371.0

	// TravelBuffer is the fixed pad added to every travel estimate.
	TravelBuffer = 5 * time.Minute

	// setupTime is the fixed on-site preparation pad per delivery.
	setupTime = 5 * time.Minute

	// maxServiceTime caps the per-delivery service estimate.
	maxServiceTime = 60 * time.Minute

	// DefaultSpeedKmh is used when the caller supplies no average speed.
	DefaultSpeedKmh = 40.0
)

// minutes of handling per cylinder, by size class.
var cylinderHandling = map[model.CylinderType]float64{
	model.CylinderSmall:      2,
	model.CylinderMedium:     3,
	model.CylinderLarge:      5,
	model.CylinderIndustrial: 8,
}

// site multiplier by location type.
var locationFactor = map[model.LocationType]float64{
	model.LocationResidential: 1.0,
	model.LocationCommercial:  1.2,
	model.LocationIndustrial:  1.5,
}

// Haversine returns the great-circle distance between two locations in km.
func Haversine(a, b model.Location) float64 {
	latA := a.Lat * math.Pi / 180
	latB := b.Lat * math.Pi / 180
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLng := (b.Lng - a.Lng) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(latA)*math.Cos(latB)*math.Sin(dLng/2)*math.Sin(dLng/2)
	return earthRadiusKm * 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}

// TravelTime estimates driving duration between two locations at the given
// average speed in km/h, plus the fixed buffer.
func TravelTime(a, b model.Location, speedKmh float64) time.Duration {
	if speedKmh <= 0 {
		speedKmh = DefaultSpeedKmh
	}
	minutes := Haversine(a, b) / speedKmh * 60
	return time.Duration(minutes*float64(time.Minute)) + TravelBuffer
}

// ServiceTime estimates the on-site duration for a delivery: per-cylinder
// handling scaled by quantity and site type, plus setup, capped at one hour.
func ServiceTime(cyl model.CylinderType, quantity int, site model.LocationType) time.Duration {
	handling, ok := cylinderHandling[cyl]
	if !ok {
		handling = cylinderHandling[model.CylinderMedium]
	}
	factor, ok := locationFactor[site]
	if !ok {
		factor = 1.0
	}
	if quantity < 1 {
		quantity = 1
	}
	est := time.Duration(handling*float64(quantity)*factor*float64(time.Minute)) + setupTime
	if est > maxServiceTime {
		return maxServiceTime
	}
	return est
}
