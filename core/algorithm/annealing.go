package algorithm

import (
	"context"
	"math"
	"math/rand"
	"time"

	"github.com/gasotec/dispatch/core/constraint"
	"github.com/gasotec/dispatch/core/model"
)

// SimulatedAnnealing refines the greedy schedule with random local moves,
// accepting regressions with a probability that shrinks as the temperature
// cools.
type SimulatedAnnealing struct {
	InitialTemp float64
	MinTemp     float64
	CoolingRate float64
	ShiftStep   time.Duration
}

// NewSimulatedAnnealing returns the annealing strategy with stock cooling.
func NewSimulatedAnnealing() *SimulatedAnnealing {
	return &SimulatedAnnealing{
		InitialTemp: 100,
		MinTemp:     0.1,
		CoolingRate: 0.95,
		ShiftStep:   30 * time.Minute,
	}
}

func (s *SimulatedAnnealing) Name() string { return "simulated_annealing" }

func (s *SimulatedAnnealing) Schedule(ctx context.Context, requests []model.DeliveryRequest, drivers []model.DriverAvailability,
	params model.SchedulingParameters, constraints []constraint.Constraint) model.SchedulingResult {
	started := time.Now()
	params.SetDefaults()

	seedRes := NewGreedy().Schedule(ctx, requests, drivers, params, constraints)

	rng := newRand(params.Seed)
	b := newBudget(ctx, params.TimeLimit)

	current := model.CloneSchedule(seedRes.Schedule)
	currentScore := Fitness(current, params, constraints)
	best := model.CloneSchedule(current)
	bestScore := currentScore

	iterations := 0
	temp := s.InitialTemp
	for temp > s.MinTemp && !b.exhausted() {
		iterations++
		neighbor := s.neighbor(current, rng, drivers)
		score := Fitness(neighbor, params, constraints)
		delta := score - currentScore
		if delta > 0 || rng.Float64() < math.Exp(delta/temp) {
			current = neighbor
			currentScore = score
			if score > bestScore {
				best = model.CloneSchedule(neighbor)
				bestScore = score
			}
		}
		temp *= s.CoolingRate
	}

	res := model.SchedulingResult{
		Schedule:    best,
		Unscheduled: seedRes.Unscheduled,
		Algorithm:   s.Name(),
		Success:     seedRes.Success,
		Error:       seedRes.Error,
	}
	finalize(&res, params, started)
	res.Metrics["iterations"] = float64(iterations)
	return res
}

// neighbor deep-copies the schedule and applies one random move, so a
// rejected candidate can never corrupt the current solution.
func (s *SimulatedAnnealing) neighbor(entries []model.ScheduleEntry, rng *rand.Rand, drivers []model.DriverAvailability) []model.ScheduleEntry {
	out := model.CloneSchedule(entries)
	if len(out) == 0 {
		return out
	}
	switch rng.Intn(3) {
	case 0: // swap two entries' time slots
		if len(out) < 2 {
			return out
		}
		i, j := rng.Intn(len(out)), rng.Intn(len(out))
		for j == i {
			j = rng.Intn(len(out))
		}
		si, sj := out[i].Slot.Start, out[j].Slot.Start
		out[i].Shift(sj)
		out[j].Shift(si)
	case 1: // move one entry to a different driver
		if len(drivers) < 2 {
			return out
		}
		i := rng.Intn(len(out))
		next := drivers[rng.Intn(len(drivers))]
		for next.DriverID == out[i].DriverID {
			next = drivers[rng.Intn(len(drivers))]
		}
		out[i].DriverID = next.DriverID
		out[i].VehicleID = next.VehicleID
	case 2: // shift one entry's start
		i := rng.Intn(len(out))
		if rng.Intn(2) == 0 {
			out[i].Shift(out[i].Slot.Start.Add(-s.ShiftStep))
		} else {
			out[i].Shift(out[i].Slot.Start.Add(s.ShiftStep))
		}
	}
	return out
}

var _ Algorithm = (*SimulatedAnnealing)(nil)
