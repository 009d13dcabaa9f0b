package algorithm

import (
	"context"
	"testing"
	"time"

	"github.com/gasotec/dispatch/core/constraint"
	"github.com/gasotec/dispatch/core/model"
)

func gaInputs() ([]model.DeliveryRequest, []model.DriverAvailability, model.SchedulingParameters) {
	requests := []model.DeliveryRequest{
		request("d1", 2, 30*time.Minute, model.TimeWindow{Start: at(8, 0), End: at(12, 0)}),
		request("d2", 1, 45*time.Minute, model.TimeWindow{Start: at(9, 0), End: at(13, 0)}),
		request("d3", 3, 20*time.Minute, model.TimeWindow{Start: at(14, 0), End: at(17, 0)}),
		request("d4", 1, 30*time.Minute, model.TimeWindow{Start: at(10, 0), End: at(16, 0)}),
	}
	drivers := []model.DriverAvailability{
		driver("drv1", at(8, 0), at(18, 0)),
		driver("drv2", at(8, 0), at(18, 0)),
	}
	params := model.DefaultParameters(at(0, 0))
	params.MaxIterations = 20
	params.Seed = 42
	return requests, drivers, params
}

func gaConstraints(requests []model.DeliveryRequest, drivers []model.DriverAvailability) []constraint.Constraint {
	windows := make(map[string][]model.TimeWindow)
	for _, r := range requests {
		windows[r.ClientID] = r.Windows
	}
	return []constraint.Constraint{
		constraint.NewTimeWindow(windows, 10),
		constraint.NewDriverWindow(drivers, 10),
		constraint.NewMaxDeliveries(drivers, 10),
	}
}

func TestGeneticSchedulesEveryRequest(t *testing.T) {
	requests, drivers, params := gaInputs()
	res := NewGenetic().Schedule(context.Background(), requests, drivers, params, gaConstraints(requests, drivers))
	if len(res.Schedule) != len(requests) {
		t.Fatalf("genetic must encode every request, got %d of %d", len(res.Schedule), len(requests))
	}
	seen := make(map[string]bool)
	for _, e := range res.Schedule {
		seen[e.DeliveryID] = true
	}
	for _, r := range requests {
		if !seen[r.DeliveryID] {
			t.Fatalf("request %s missing from schedule", r.DeliveryID)
		}
	}
	if res.Metrics["generations"] != 20 {
		t.Fatalf("expected 20 generations, got %v", res.Metrics["generations"])
	}
}

func TestGeneticDeterministicWithSeed(t *testing.T) {
	requests, drivers, params := gaInputs()
	cs := gaConstraints(requests, drivers)

	a := NewGenetic().Schedule(context.Background(), requests, drivers, params, cs)
	b := NewGenetic().Schedule(context.Background(), requests, drivers, params, cs)
	if len(a.Schedule) != len(b.Schedule) {
		t.Fatalf("seeded runs differ in size")
	}
	for i := range a.Schedule {
		x, y := a.Schedule[i], b.Schedule[i]
		if x.DeliveryID != y.DeliveryID || x.DriverID != y.DriverID || !x.Slot.Start.Equal(y.Slot.Start) {
			t.Fatalf("seeded runs diverge at entry %d: %+v vs %+v", i, x, y)
		}
	}
	if a.Score != b.Score {
		t.Fatalf("seeded runs diverge in score: %v vs %v", a.Score, b.Score)
	}
}

func TestGeneticDifferentSeedsMayDiverge(t *testing.T) {
	requests, drivers, params := gaInputs()
	cs := gaConstraints(requests, drivers)

	a := NewGenetic().Schedule(context.Background(), requests, drivers, params, cs)
	params.Seed = 43
	b := NewGenetic().Schedule(context.Background(), requests, drivers, params, cs)
	// Both must still be complete schedules regardless of the seed.
	if len(a.Schedule) != len(requests) || len(b.Schedule) != len(requests) {
		t.Fatalf("both seeds must produce full schedules")
	}
}

func TestGeneticEmptyInputs(t *testing.T) {
	_, drivers, params := gaInputs()
	res := NewGenetic().Schedule(context.Background(), nil, drivers, params, nil)
	if len(res.Schedule) != 0 || !res.Success {
		t.Fatalf("empty request set must yield an empty successful result")
	}
}

func TestGeneticHonorsCancellation(t *testing.T) {
	requests, drivers, params := gaInputs()
	params.MaxIterations = 1_000_000
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	start := time.Now()
	res := NewGenetic().Schedule(ctx, requests, drivers, params, nil)
	if time.Since(start) > 5*time.Second {
		t.Fatalf("canceled run took too long")
	}
	if len(res.Schedule) != len(requests) {
		t.Fatalf("canceled run must still return its best schedule")
	}
}
