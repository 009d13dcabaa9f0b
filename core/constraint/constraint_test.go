package constraint

import (
	"strings"
	"testing"
	"time"

	"github.com/gasotec/dispatch/core/model"
)

func at(h, m int) time.Time {
	return time.Date(2025, 6, 2, h, m, 0, 0, time.UTC)
}

func entry(id, client, driver, vehicle string, start time.Time, service time.Duration) model.ScheduleEntry {
	return model.ScheduleEntry{
		DeliveryID:      id,
		ClientID:        client,
		DriverID:        driver,
		VehicleID:       vehicle,
		Slot:            model.TimeSlot{Start: start, End: start.Add(service), Capacity: 1, Reserved: 1},
		ServiceDuration: service,
		Status:          model.StatusScheduled,
	}
}

func TestTimeWindowConstraint(t *testing.T) {
	c := NewTimeWindow(map[string][]model.TimeWindow{
		"c1": {{Start: at(8, 0), End: at(12, 0)}},
	}, 10)

	inside := []model.ScheduleEntry{entry("d1", "c1", "drv1", "", at(9, 0), time.Hour)}
	if ok, _ := c.Check(inside); !ok {
		t.Fatalf("entry inside the window must pass")
	}
	if got := c.Cost(inside); got != 0 {
		t.Fatalf("satisfied constraint cost = %v, want 0", got)
	}

	outside := []model.ScheduleEntry{entry("d1", "c1", "drv1", "", at(13, 0), time.Hour)}
	ok, reason := c.Check(outside)
	if ok {
		t.Fatalf("entry outside the window must fail")
	}
	if !strings.Contains(reason, "d1") {
		t.Fatalf("reason should cite the delivery: %q", reason)
	}
	if got := c.Cost(outside); got != 10 {
		t.Fatalf("violated hard constraint cost = %v, want full weight 10", got)
	}
}

func TestDriverWindowConstraint(t *testing.T) {
	drivers := []model.DriverAvailability{{
		DriverID: "drv1",
		Periods:  []model.TimeWindow{{Start: at(8, 0), End: at(16, 0)}},
	}}
	c := NewDriverWindow(drivers, 10)

	if ok, _ := c.Check([]model.ScheduleEntry{entry("d1", "c1", "drv1", "", at(9, 0), time.Hour)}); !ok {
		t.Fatalf("available driver must pass")
	}
	if ok, _ := c.Check([]model.ScheduleEntry{entry("d1", "c1", "drv1", "", at(15, 30), time.Hour)}); ok {
		t.Fatalf("entry ending past availability must fail")
	}
	if ok, reason := c.Check([]model.ScheduleEntry{entry("d1", "c1", "ghost", "", at(9, 0), time.Hour)}); ok || !strings.Contains(reason, "ghost") {
		t.Fatalf("unknown driver must fail citing the id, got ok=%v reason=%q", ok, reason)
	}
}

func TestCapacityConstraint(t *testing.T) {
	vehicles := []model.VehicleInfo{{
		VehicleID: "veh1",
		Capacity:  map[model.CylinderType]int{model.CylinderSmall: 3},
	}}
	requests := []model.DeliveryRequest{
		{DeliveryID: "d1", CylinderType: model.CylinderSmall, Quantity: 2},
		{DeliveryID: "d2", CylinderType: model.CylinderSmall, Quantity: 2},
	}
	c := NewCapacity(vehicles, requests, 10)

	one := []model.ScheduleEntry{entry("d1", "c1", "drv1", "veh1", at(8, 0), time.Hour)}
	if ok, _ := c.Check(one); !ok {
		t.Fatalf("load within capacity must pass")
	}

	both := append(one, entry("d2", "c2", "drv1", "veh1", at(10, 0), time.Hour))
	ok, reason := c.Check(both)
	if ok {
		t.Fatalf("4 small cylinders on a 3-capacity vehicle must fail")
	}
	if !strings.Contains(reason, "veh1") {
		t.Fatalf("reason should cite the vehicle: %q", reason)
	}
	if got := c.Cost(both); got != 10 {
		t.Fatalf("violated capacity cost = %v, want 10", got)
	}
}

func TestMaxDeliveriesConstraint(t *testing.T) {
	drivers := []model.DriverAvailability{{DriverID: "drv1", MaxDeliveries: 1}}
	c := NewMaxDeliveries(drivers, 10)

	two := []model.ScheduleEntry{
		entry("d1", "c1", "drv1", "", at(8, 0), time.Hour),
		entry("d2", "c2", "drv1", "", at(10, 0), time.Hour),
	}
	ok, reason := c.Check(two)
	if ok {
		t.Fatalf("two deliveries with max_deliveries=1 must fail")
	}
	if !strings.Contains(reason, "drv1") || !strings.Contains(reason, "2") || !strings.Contains(reason, "1") {
		t.Fatalf("reason must cite driver and both counts: %q", reason)
	}
	if c.LimitFor("other") != DefaultMaxDeliveries {
		t.Fatalf("drivers without a cap use the default limit")
	}
}

func TestWorkingHoursConstraint(t *testing.T) {
	c := NewWorkingHours(0, 10)
	okDay := []model.ScheduleEntry{
		entry("d1", "c1", "drv1", "", at(8, 0), time.Hour),
		entry("d2", "c2", "drv1", "", at(15, 0), time.Hour),
	}
	if ok, _ := c.Check(okDay); !ok {
		t.Fatalf("8h span must pass")
	}
	longDay := []model.ScheduleEntry{
		entry("d1", "c1", "drv1", "", at(8, 0), time.Hour),
		entry("d2", "c2", "drv1", "", at(16, 0), time.Hour),
	}
	if ok, _ := c.Check(longDay); ok {
		t.Fatalf("9h span must fail the 8h default")
	}
}

func TestTravelTimeConstraint(t *testing.T) {
	near := model.Location{Lat: 48.8566, Lng: 2.3522}
	far := model.Location{Lat: 48.95, Lng: 2.55}
	c := NewTravelTime(40, 0, 10)

	tight := []model.ScheduleEntry{
		entry("d1", "c1", "drv1", "", at(8, 0), 30*time.Minute),
		entry("d2", "c2", "drv1", "", at(8, 35), 30*time.Minute),
	}
	tight[0].Location = &near
	tight[1].Location = &far
	if ok, _ := c.Check(tight); ok {
		t.Fatalf("5 minute gap for an 18 km hop must fail")
	}

	relaxed := []model.ScheduleEntry{
		entry("d1", "c1", "drv1", "", at(8, 0), 30*time.Minute),
		entry("d2", "c2", "drv1", "", at(10, 0), 30*time.Minute),
	}
	relaxed[0].Location = &near
	relaxed[1].Location = &far
	if ok, reason := c.Check(relaxed); !ok {
		t.Fatalf("90 minute gap must pass: %s", reason)
	}
}

func TestClusteringConstraint(t *testing.T) {
	paris := model.Location{Lat: 48.8566, Lng: 2.3522}
	nearby := model.Location{Lat: 48.86, Lng: 2.36}
	distant := model.Location{Lat: 49.25, Lng: 2.9} // ~60 km away

	c := NewClustering(0, 5)

	clustered := []model.ScheduleEntry{
		entry("d1", "c1", "drv1", "", at(8, 0), 30*time.Minute),
		entry("d2", "c2", "drv1", "", at(10, 0), 30*time.Minute),
	}
	clustered[0].Location = &paris
	clustered[1].Location = &nearby
	if got := c.Cost(clustered); got != 0 {
		t.Fatalf("short hops must cost 0, got %v", got)
	}

	spread := []model.ScheduleEntry{
		entry("d1", "c1", "drv1", "", at(8, 0), 30*time.Minute),
		entry("d2", "c2", "drv1", "", at(12, 0), 30*time.Minute),
	}
	spread[0].Location = &paris
	spread[1].Location = &distant
	cost := c.Cost(spread)
	if cost <= 0 || cost >= c.Weight() {
		t.Fatalf("soft penalty must be in (0, weight), got %v", cost)
	}
	if ok, _ := c.Check(spread); ok {
		t.Fatalf("excess distance must fail the check")
	}
}

func TestTotalCostSums(t *testing.T) {
	drivers := []model.DriverAvailability{{DriverID: "drv1", MaxDeliveries: 1}}
	cs := []Constraint{
		NewMaxDeliveries(drivers, 10),
		NewWorkingHours(0, 7),
	}
	entries := []model.ScheduleEntry{
		entry("d1", "c1", "drv1", "", at(8, 0), time.Hour),
		entry("d2", "c2", "drv1", "", at(18, 0), time.Hour),
	}
	// Both violated: 2 > 1 deliveries and an 11h span.
	if got := TotalCost(cs, entries); got != 17 {
		t.Fatalf("total cost = %v, want 17", got)
	}
	results := CheckAll(cs, entries)
	if len(results) != 2 || results[0].OK || results[1].OK {
		t.Fatalf("unexpected check results: %+v", results)
	}
}
