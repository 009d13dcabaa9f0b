package model

import (
	"fmt"
	"time"
)

// LocationType describes the kind of delivery site. It drives the service
// time multiplier.
type LocationType string

const (
	LocationResidential LocationType = "residential"
	LocationCommercial  LocationType = "commercial"
	LocationIndustrial  LocationType = "industrial"
)

// Location is a geocoded delivery or depot position.
type Location struct {
	Lat  float64      `json:"lat"`
	Lng  float64      `json:"lng"`
	Type LocationType `json:"type,omitempty"`
}

// CylinderType identifies a gas cylinder size class.
type CylinderType string

const (
	CylinderSmall      CylinderType = "small"
	CylinderMedium     CylinderType = "medium"
	CylinderLarge      CylinderType = "large"
	CylinderIndustrial CylinderType = "industrial"
)

// DeliveryRequest is one delivery to be scheduled on the target date.
// Windows must already be resolved to absolute times by the caller.
type DeliveryRequest struct {
	DeliveryID      string        `json:"delivery_id"`
	ClientID        string        `json:"client_id"`
	Location        Location      `json:"location"`
	Windows         []TimeWindow  `json:"windows"`
	ServiceDuration time.Duration `json:"service_duration"`
	CylinderType    CylinderType  `json:"cylinder_type"`
	Quantity        int           `json:"quantity"`
	Priority        int           `json:"priority"`
	Requirements    []string      `json:"requirements,omitempty"`
	PreferredDriver string        `json:"preferred_driver,omitempty"`
}

// Validate checks that the request is sound.
func (r DeliveryRequest) Validate() error {
	if r.DeliveryID == "" {
		return fmt.Errorf("delivery id is required")
	}
	if len(r.Windows) == 0 {
		return fmt.Errorf("delivery %s has no time windows", r.DeliveryID)
	}
	for _, w := range r.Windows {
		if err := w.Validate(); err != nil {
			return fmt.Errorf("delivery %s: %w", r.DeliveryID, err)
		}
	}
	if r.Quantity <= 0 {
		return fmt.Errorf("delivery %s quantity must be positive", r.DeliveryID)
	}
	return nil
}

// EarliestStart returns the smallest window start, used for ordering.
func (r DeliveryRequest) EarliestStart() time.Time {
	earliest := r.Windows[0].Start
	for _, w := range r.Windows[1:] {
		if w.Start.Before(earliest) {
			earliest = w.Start
		}
	}
	return earliest
}

// DriverAvailability describes one driver for the target date.
type DriverAvailability struct {
	DriverID        string               `json:"driver_id"`
	EmployeeID      string               `json:"employee_id,omitempty"`
	Name            string               `json:"name,omitempty"`
	Periods         []TimeWindow         `json:"periods"`
	Location        Location             `json:"location"`
	MaxDeliveries   int                  `json:"max_deliveries,omitempty"`
	Skills          []string             `json:"skills,omitempty"`
	VehicleID       string               `json:"vehicle_id,omitempty"`
	VehicleCapacity map[CylinderType]int `json:"vehicle_capacity,omitempty"`
}

// Validate checks that the driver record is sound.
func (d DriverAvailability) Validate() error {
	if d.DriverID == "" {
		return fmt.Errorf("driver id is required")
	}
	for _, p := range d.Periods {
		if err := p.Validate(); err != nil {
			return fmt.Errorf("driver %s: %w", d.DriverID, err)
		}
	}
	return nil
}

// AvailableDuring reports whether [start, end) lies within one of the
// driver's availability periods.
func (d DriverAvailability) AvailableDuring(start, end time.Time) bool {
	for _, p := range d.Periods {
		if p.Contains(start, end) {
			return true
		}
	}
	return false
}

// VehicleInfo describes a vehicle and its per-cylinder-type capacity.
type VehicleInfo struct {
	VehicleID      string               `json:"vehicle_id"`
	Plate          string               `json:"plate,omitempty"`
	Capacity       map[CylinderType]int `json:"capacity"`
	FuelEfficiency float64              `json:"fuel_efficiency,omitempty"`
	MaxDistanceKm  float64              `json:"max_distance_km,omitempty"`
	Location       Location             `json:"location"`
}

// CapacityFor returns the declared capacity for the cylinder type.
func (v VehicleInfo) CapacityFor(t CylinderType) int {
	return v.Capacity[t]
}
