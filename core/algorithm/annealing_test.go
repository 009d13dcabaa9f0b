package algorithm

import (
	"context"
	"testing"
	"time"

	"github.com/gasotec/dispatch/core/model"
)

func TestAnnealingNeverWorseThanGreedySeed(t *testing.T) {
	requests, drivers, params := gaInputs()
	cs := gaConstraints(requests, drivers)

	greedy := NewGreedy().Schedule(context.Background(), requests, drivers, params, cs)
	annealed := NewSimulatedAnnealing().Schedule(context.Background(), requests, drivers, params, cs)

	greedyFit := Fitness(greedy.Schedule, params, cs)
	annealedFit := Fitness(annealed.Schedule, params, cs)
	if annealedFit < greedyFit {
		t.Fatalf("annealing best (%v) fell below its greedy seed (%v)", annealedFit, greedyFit)
	}
}

func TestAnnealingDeterministicWithSeed(t *testing.T) {
	requests, drivers, params := gaInputs()
	cs := gaConstraints(requests, drivers)

	a := NewSimulatedAnnealing().Schedule(context.Background(), requests, drivers, params, cs)
	b := NewSimulatedAnnealing().Schedule(context.Background(), requests, drivers, params, cs)
	if len(a.Schedule) != len(b.Schedule) {
		t.Fatalf("seeded runs differ in size")
	}
	for i := range a.Schedule {
		x, y := a.Schedule[i], b.Schedule[i]
		if x.DeliveryID != y.DeliveryID || x.DriverID != y.DriverID || !x.Slot.Start.Equal(y.Slot.Start) {
			t.Fatalf("seeded runs diverge at entry %d", i)
		}
	}
}

func TestAnnealingCarriesUnscheduledFromSeed(t *testing.T) {
	// A single impossible request: window shorter than the service time.
	requests := []model.DeliveryRequest{
		request("impossible", 1, 2*time.Hour, model.TimeWindow{Start: at(10, 0), End: at(11, 0)}),
	}
	drivers := []model.DriverAvailability{driver("drv1", at(8, 0), at(18, 0))}
	params := model.DefaultParameters(at(0, 0))
	params.Seed = 7

	res := NewSimulatedAnnealing().Schedule(context.Background(), requests, drivers, params, nil)
	if res.Success {
		t.Fatalf("unplaceable request must not report success")
	}
	if len(res.Unscheduled) != 1 || res.Unscheduled[0] != "impossible" {
		t.Fatalf("unscheduled list lost: %v", res.Unscheduled)
	}
}

func TestAnnealingIterationsReported(t *testing.T) {
	requests, drivers, params := gaInputs()
	res := NewSimulatedAnnealing().Schedule(context.Background(), requests, drivers, params, nil)
	if res.Metrics["iterations"] <= 0 {
		t.Fatalf("expected iteration count in metrics, got %v", res.Metrics["iterations"])
	}
}

func TestEvaluateStableAcrossCalls(t *testing.T) {
	// The per-driver count and distance accumulations run in sorted driver
	// order, so the same schedule must score bit-identically every time.
	var entries []model.ScheduleEntry
	for i := 0; i < 15; i++ {
		loc := model.Location{Lat: 48.7 + 0.03*float64(i), Lng: 2.2 + 0.04*float64(i%7)}
		entries = append(entries, model.ScheduleEntry{
			DeliveryID:      "d" + string(rune('a'+i)),
			DriverID:        "drv" + string(rune('a'+i%4)),
			Slot:            model.TimeSlot{Start: at(8+i%9, 0), End: at(8+i%9, 30)},
			ServiceDuration: 30 * time.Minute,
			Location:        &loc,
		})
	}
	params := model.DefaultParameters(at(0, 0))

	first := Evaluate(entries, params)
	for i := 0; i < 30; i++ {
		if got := Evaluate(entries, params); got != first {
			t.Fatalf("score drifted between calls: %v vs %v", got, first)
		}
	}
}

func TestEvaluateWeightsRespected(t *testing.T) {
	entries := []model.ScheduleEntry{
		{DeliveryID: "d1", DriverID: "drv1", Slot: model.TimeSlot{Start: at(8, 0), End: at(9, 0)}, ServiceDuration: time.Hour},
	}
	distOnly := model.SchedulingParameters{
		Date:                at(0, 0),
		Objectives:          []model.Objective{{Name: model.ObjectiveDistance, Weight: 1}},
		TimeComplianceScore: 0.8,
		TravelSpeedKmh:      40,
	}
	// Zero distance: the inverse-distance term is 1000/(0+1) = 1000.
	if got := Evaluate(entries, distOnly); got != 1000 {
		t.Fatalf("distance-only score = %v, want 1000", got)
	}

	balanceOnly := distOnly
	balanceOnly.Objectives = []model.Objective{{Name: model.ObjectiveWorkloadBalance, Weight: 1}}
	// One driver: stddev is zero, balance term is 1.
	if got := Evaluate(entries, balanceOnly); got != 1 {
		t.Fatalf("balance-only score = %v, want 1", got)
	}
}
