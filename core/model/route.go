package model

import "time"

// SegmentKind distinguishes travel legs from on-site service.
type SegmentKind string

const (
	SegmentTravel   SegmentKind = "travel"
	SegmentDelivery SegmentKind = "delivery"
)

// RouteSegment is one leg of a driver's route with running totals.
type RouteSegment struct {
	Kind          SegmentKind   `json:"kind"`
	DeliveryID    string        `json:"delivery_id,omitempty"`
	From          Location      `json:"from"`
	To            Location      `json:"to"`
	DistanceKm    float64       `json:"distance_km"`
	Duration      time.Duration `json:"duration"`
	TotalDistance float64       `json:"total_distance_km"`
	TotalDuration time.Duration `json:"total_duration"`
}

// DeliveryRoute is the ordered route derived for one driver.
type DeliveryRoute struct {
	DriverID      string         `json:"driver_id"`
	Segments      []RouteSegment `json:"segments"`
	TotalDistance float64        `json:"total_distance_km"`
	TotalDuration time.Duration  `json:"total_duration"`
}
