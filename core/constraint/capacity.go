package constraint

import (
	"fmt"

	"github.com/gasotec/dispatch/core/model"
	"github.com/gasotec/dispatch/core/schedule"
)

// Capacity limits the summed cylinder quantities per vehicle and type.
type Capacity struct {
	base
	vehicles map[string]model.VehicleInfo
	requests map[string]model.DeliveryRequest
}

// NewCapacity builds the constraint from vehicle declarations and the
// requests carrying each delivery's cylinder type and quantity.
func NewCapacity(vehicles []model.VehicleInfo, requests []model.DeliveryRequest, weight float64) *Capacity {
	vm := make(map[string]model.VehicleInfo, len(vehicles))
	for _, v := range vehicles {
		vm[v.VehicleID] = v
	}
	rm := make(map[string]model.DeliveryRequest, len(requests))
	for _, r := range requests {
		rm[r.DeliveryID] = r
	}
	return &Capacity{base: base{name: "vehicle_capacity", hard: true, weight: weight}, vehicles: vm, requests: rm}
}

func (c *Capacity) Check(entries []model.ScheduleEntry) (bool, string) {
	type key struct {
		vehicle string
		cyl     model.CylinderType
	}
	loads := make(map[key]int)
	for _, e := range entries {
		if e.VehicleID == "" {
			continue
		}
		req, known := c.requests[e.DeliveryID]
		if !known {
			continue
		}
		loads[key{e.VehicleID, req.CylinderType}] += req.Quantity
	}
	for k, qty := range loads {
		v, known := c.vehicles[k.vehicle]
		if !known {
			return false, fmt.Sprintf("entries reference unknown vehicle %s", k.vehicle)
		}
		if cap := v.CapacityFor(k.cyl); qty > cap {
			return false, fmt.Sprintf("vehicle %s carries %d %s cylinders, capacity is %d", k.vehicle, qty, k.cyl, cap)
		}
	}
	return true, ""
}

func (c *Capacity) Cost(entries []model.ScheduleEntry) float64 {
	return hardCost(c, entries)
}

// MaxDeliveries caps the number of deliveries per driver.
type MaxDeliveries struct {
	base
	limits       map[string]int
	defaultLimit int
}

// DefaultMaxDeliveries applies to drivers without an explicit cap.
const DefaultMaxDeliveries = 20

// NewMaxDeliveries builds the constraint from the drivers' declared caps.
func NewMaxDeliveries(drivers []model.DriverAvailability, weight float64) *MaxDeliveries {
	limits := make(map[string]int, len(drivers))
	for _, d := range drivers {
		if d.MaxDeliveries > 0 {
			limits[d.DriverID] = d.MaxDeliveries
		}
	}
	return &MaxDeliveries{
		base:         base{name: "max_deliveries", hard: true, weight: weight},
		limits:       limits,
		defaultLimit: DefaultMaxDeliveries,
	}
}

// LimitFor returns the cap applied to the given driver.
func (c *MaxDeliveries) LimitFor(driverID string) int {
	if l, ok := c.limits[driverID]; ok {
		return l
	}
	return c.defaultLimit
}

func (c *MaxDeliveries) Check(entries []model.ScheduleEntry) (bool, string) {
	for driver, g := range schedule.ByDriver(entries) {
		if limit := c.LimitFor(driver); len(g) > limit {
			return false, fmt.Sprintf("driver %s has %d deliveries, limit is %d", driver, len(g), limit)
		}
	}
	return true, ""
}

func (c *MaxDeliveries) Cost(entries []model.ScheduleEntry) float64 {
	return hardCost(c, entries)
}
