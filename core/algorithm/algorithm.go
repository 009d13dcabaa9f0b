// Package algorithm implements the scheduling strategies. All strategies
// share one multi-objective scorer and the same contract: consume requests,
// drivers, parameters and constraints, produce a SchedulingResult. Budget
// exhaustion is a soft condition; the best schedule found is returned.
package algorithm

import (
	"context"
	"math/rand"
	"sort"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/gasotec/dispatch/core/constraint"
	"github.com/gasotec/dispatch/core/model"
	"github.com/gasotec/dispatch/core/schedule"
)

// Algorithm produces a schedule for one invocation. Implementations are
// reentrant; concurrent runs must not share a single instance's rng.
type Algorithm interface {
	Name() string
	Schedule(ctx context.Context, requests []model.DeliveryRequest, drivers []model.DriverAvailability,
		params model.SchedulingParameters, constraints []constraint.Constraint) model.SchedulingResult
}

// Evaluate is the shared multi-objective score: inverse total distance,
// utilization, the time-compliance term and workload balance, each weighted
// by its normalized objective weight. Higher is better.
func Evaluate(entries []model.ScheduleEntry, params model.SchedulingParameters) float64 {
	m := schedule.Metrics(entries, params.TravelSpeedKmh)
	weights := params.NormalizedWeights()

	distScore := 1000 / (m[schedule.MetricDistanceKm] + 1)

	grouped := schedule.ByDriver(entries)
	ids := make([]string, 0, len(grouped))
	for id := range grouped {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	counts := make([]float64, 0, len(ids))
	for _, id := range ids {
		counts = append(counts, float64(len(grouped[id])))
	}
	var spread float64
	if len(counts) > 1 {
		spread = stat.StdDev(counts, nil)
	}
	balance := 1 / (1 + spread)

	score := distScore * weights[model.ObjectiveDistance]
	score += m[schedule.MetricUtilization] * weights[model.ObjectiveUtilization]
	score += params.TimeComplianceScore * weights[model.ObjectiveTimeCompliance]
	score += balance * weights[model.ObjectiveWorkloadBalance]
	return score
}

// Fitness is the evaluation the search algorithms optimise: the shared
// score minus the summed constraint costs.
func Fitness(entries []model.ScheduleEntry, params model.SchedulingParameters, cs []constraint.Constraint) float64 {
	return Evaluate(entries, params) - constraint.TotalCost(cs, entries)
}

// newRand builds the run-local generator. A zero seed falls back to the
// wall clock so unseeded runs still differ.
func newRand(seed int64) *rand.Rand {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return rand.New(rand.NewSource(seed))
}

// budget tracks the cooperative stop conditions every iterative algorithm
// polls at iteration boundaries.
type budget struct {
	ctx      context.Context
	deadline time.Time
}

func newBudget(ctx context.Context, limit time.Duration) budget {
	b := budget{ctx: ctx}
	if limit > 0 {
		b.deadline = time.Now().Add(limit)
	}
	return b
}

// exhausted reports whether the run should stop now.
func (b budget) exhausted() bool {
	select {
	case <-b.ctx.Done():
		return true
	default:
	}
	return !b.deadline.IsZero() && !time.Now().Before(b.deadline)
}

// finalize fills the result fields every algorithm reports identically.
func finalize(res *model.SchedulingResult, params model.SchedulingParameters, started time.Time) {
	res.Conflicts = schedule.Detect(res.Schedule, params.TravelSpeedKmh)
	res.Metrics = schedule.Metrics(res.Schedule, params.TravelSpeedKmh)
	res.Score = Evaluate(res.Schedule, params)
	res.Parameters = params
	res.ComputeTime = time.Since(started)
}
