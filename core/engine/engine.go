// Package engine orchestrates a scheduling run: it validates the inputs,
// assembles the constraint set, picks the algorithm, runs the conflict
// repair pass and derives routes and statistics from the outcome.
package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gasotec/dispatch/core/algorithm"
	"github.com/gasotec/dispatch/core/constraint"
	"github.com/gasotec/dispatch/core/events"
	"github.com/gasotec/dispatch/core/logger"
	"github.com/gasotec/dispatch/core/model"
	"github.com/gasotec/dispatch/core/resolve"
	"github.com/gasotec/dispatch/core/schedule"
)

// ErrInvalidInput wraps every input validation failure so callers can test
// for the class with errors.Is.
var ErrInvalidInput = errors.New("invalid scheduling input")

// DefaultAlgorithm is used when no algorithm is named or the name is
// unknown.
const DefaultAlgorithm = "greedy"

// Engine runs scheduling end to end. Zero-value fields are filled by New.
type Engine struct {
	log        logger.Logger
	bus        events.EventBus
	algorithms map[string]algorithm.Algorithm
}

// Option customises a new Engine.
type Option func(*Engine)

// WithBus routes run notifications to the given bus.
func WithBus(bus events.EventBus) Option {
	return func(e *Engine) { e.bus = bus }
}

// WithAlgorithm registers an extra strategy under its Name.
func WithAlgorithm(a algorithm.Algorithm) Option {
	return func(e *Engine) { e.algorithms[a.Name()] = a }
}

// New builds an engine with the stock strategies registered.
func New(log logger.Logger, opts ...Option) *Engine {
	e := &Engine{
		log:        log,
		bus:        events.NopBus{},
		algorithms: make(map[string]algorithm.Algorithm),
	}
	for _, a := range []algorithm.Algorithm{
		algorithm.NewGreedy(),
		algorithm.NewGenetic(),
		algorithm.NewSimulatedAnnealing(),
	} {
		e.algorithms[a.Name()] = a
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// ScheduleDeliveries performs one full scheduling run. Infeasibility is
// reported inside the result; the error return covers malformed input only.
func (e *Engine) ScheduleDeliveries(ctx context.Context, requests []model.DeliveryRequest,
	drivers []model.DriverAvailability, vehicles []model.VehicleInfo,
	algorithmName string, params model.SchedulingParameters) (model.SchedulingResult, error) {

	if err := validateInputs(requests, drivers, vehicles); err != nil {
		return model.SchedulingResult{}, err
	}
	params.SetDefaults()
	if err := params.Validate(); err != nil {
		return model.SchedulingResult{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	algo := e.pick(algorithmName)
	cs := buildConstraints(requests, drivers, vehicles, params)

	e.bus.Publish(events.RunStarted{
		Date:      params.Date,
		Algorithm: algo.Name(),
		Requests:  len(requests),
		Drivers:   len(drivers),
	})
	if e.log != nil {
		e.log.Infof("scheduling %d deliveries across %d drivers with %s", len(requests), len(drivers), algo.Name())
	}

	started := time.Now()
	res := algo.Schedule(ctx, requests, drivers, params, cs)

	if len(res.Conflicts) > 0 {
		before := len(res.Conflicts)
		r := resolve.New(params.TravelSpeedKmh, e.log)
		res.Schedule, res.Conflicts = r.Resolve(res.Schedule, res.Conflicts, requests, drivers, vehicles)
		res.Metrics = schedule.Metrics(res.Schedule, params.TravelSpeedKmh)
		res.Score = algorithm.Evaluate(res.Schedule, params)
		e.bus.Publish(events.ConflictsResolved{Before: before, Remaining: len(res.Conflicts)})
	}

	res.Routes = buildRoutes(res.Schedule, drivers, params.TravelSpeedKmh)
	res.Stats = computeStats(res, requests)

	e.observe(res, time.Since(started))
	e.bus.Publish(events.RunCompleted{
		Algorithm:   res.Algorithm,
		Scheduled:   len(res.Schedule),
		Unscheduled: len(res.Unscheduled),
		Conflicts:   len(res.Conflicts),
		Score:       res.Score,
		ComputeTime: res.ComputeTime,
		Success:     res.Success,
	})
	return res, nil
}

// Validate checks an existing schedule against the constraint set built for
// the given inputs, without running any algorithm.
func (e *Engine) Validate(entries []model.ScheduleEntry, requests []model.DeliveryRequest,
	drivers []model.DriverAvailability, vehicles []model.VehicleInfo,
	params model.SchedulingParameters) []constraint.CheckResult {
	params.SetDefaults()
	return constraint.CheckAll(buildConstraints(requests, drivers, vehicles, params), entries)
}

// DetectConflicts scans an external schedule and publishes each finding.
func (e *Engine) DetectConflicts(entries []model.ScheduleEntry, speedKmh float64) []model.SchedulingConflict {
	conflicts := schedule.Detect(entries, speedKmh)
	for _, c := range conflicts {
		e.bus.Publish(events.ConflictDetected{Conflict: c})
	}
	return conflicts
}

// ComputeMetrics aggregates schedule metrics for an external schedule.
func (e *Engine) ComputeMetrics(entries []model.ScheduleEntry, speedKmh float64) map[string]float64 {
	return schedule.Metrics(entries, speedKmh)
}

// pick resolves the algorithm name, falling back to the default strategy
// when the name is unknown.
func (e *Engine) pick(name string) algorithm.Algorithm {
	if name == "" {
		return e.algorithms[DefaultAlgorithm]
	}
	if a, ok := e.algorithms[name]; ok {
		return a
	}
	if e.log != nil {
		e.log.Warnf("unknown algorithm %q, falling back to %s", name, DefaultAlgorithm)
	}
	e.bus.Publish(events.AlgorithmFallback{Requested: name, Used: DefaultAlgorithm})
	return e.algorithms[DefaultAlgorithm]
}

// buildConstraints assembles the constraint set for one run. Capacity only
// applies when vehicles are declared; working hours only when overtime is
// not allowed.
func buildConstraints(requests []model.DeliveryRequest, drivers []model.DriverAvailability,
	vehicles []model.VehicleInfo, params model.SchedulingParameters) []constraint.Constraint {
	windows := make(map[string][]model.TimeWindow, len(requests))
	for _, r := range requests {
		windows[r.ClientID] = append(windows[r.ClientID], r.Windows...)
	}

	cs := []constraint.Constraint{
		constraint.NewTimeWindow(windows, 10),
		constraint.NewDriverWindow(drivers, 10),
		constraint.NewTravelTime(params.TravelSpeedKmh, params.ServiceBuffer, 8),
		constraint.NewMaxDeliveries(drivers, 8),
	}
	if !params.AllowOvertime {
		cs = append(cs, constraint.NewWorkingHours(constraint.DefaultWorkingHours, 6))
	}
	if len(vehicles) > 0 {
		cs = append(cs, constraint.NewCapacity(vehicles, requests, 8))
	}
	cs = append(cs, constraint.NewClustering(constraint.DefaultClusterThresholdKm, 2))
	return cs
}

// validateInputs rejects malformed requests, drivers and vehicles before
// any work happens.
func validateInputs(requests []model.DeliveryRequest, drivers []model.DriverAvailability,
	vehicles []model.VehicleInfo) error {
	if len(drivers) == 0 {
		return fmt.Errorf("%w: at least one driver is required", ErrInvalidInput)
	}

	driverIDs := make(map[string]bool, len(drivers))
	for _, d := range drivers {
		if err := d.Validate(); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		if driverIDs[d.DriverID] {
			return fmt.Errorf("%w: duplicate driver id %s", ErrInvalidInput, d.DriverID)
		}
		driverIDs[d.DriverID] = true
	}

	vehicleIDs := make(map[string]bool, len(vehicles))
	for _, v := range vehicles {
		if v.VehicleID == "" {
			return fmt.Errorf("%w: vehicle id is required", ErrInvalidInput)
		}
		if vehicleIDs[v.VehicleID] {
			return fmt.Errorf("%w: duplicate vehicle id %s", ErrInvalidInput, v.VehicleID)
		}
		vehicleIDs[v.VehicleID] = true
	}

	deliveryIDs := make(map[string]bool, len(requests))
	for _, r := range requests {
		if err := r.Validate(); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		if deliveryIDs[r.DeliveryID] {
			return fmt.Errorf("%w: duplicate delivery id %s", ErrInvalidInput, r.DeliveryID)
		}
		deliveryIDs[r.DeliveryID] = true
		if r.PreferredDriver != "" && !driverIDs[r.PreferredDriver] {
			return fmt.Errorf("%w: delivery %s prefers unknown driver %s", ErrInvalidInput, r.DeliveryID, r.PreferredDriver)
		}
	}

	if len(vehicles) > 0 {
		for _, d := range drivers {
			if d.VehicleID != "" && !vehicleIDs[d.VehicleID] {
				return fmt.Errorf("%w: driver %s references unknown vehicle %s", ErrInvalidInput, d.DriverID, d.VehicleID)
			}
		}
	}
	return nil
}

// observe records the run on the prometheus collectors.
func (e *Engine) observe(res model.SchedulingResult, elapsed time.Duration) {
	outcome := "success"
	if !res.Success {
		outcome = "partial"
	}
	schedulingRuns.WithLabelValues(res.Algorithm, outcome).Inc()
	runDuration.WithLabelValues(res.Algorithm).Observe(elapsed.Seconds())
	conflictsRemaining.Set(float64(len(res.Conflicts)))
	if len(res.Unscheduled) > 0 {
		unscheduledTotal.Add(float64(len(res.Unscheduled)))
	}
}
