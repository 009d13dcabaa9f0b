package algorithm

import (
	"context"
	"math/rand"
	"sort"
	"time"

	"github.com/gasotec/dispatch/core/constraint"
	"github.com/gasotec/dispatch/core/model"
)

// Genetic evolves full-schedule chromosomes: one (driver, start) gene per
// request plus a visiting order per driver.
type Genetic struct {
	PopulationSize int
	EliteFraction  float64
	TournamentSize int
	CrossoverRate  float64
	MutationRate   float64
	ShiftStep      time.Duration
}

// NewGenetic returns the genetic strategy with stock operator rates.
func NewGenetic() *Genetic {
	return &Genetic{
		PopulationSize: 50,
		EliteFraction:  0.1,
		TournamentSize: 5,
		CrossoverRate:  0.8,
		MutationRate:   0.1,
		ShiftStep:      30 * time.Minute,
	}
}

func (g *Genetic) Name() string { return "genetic" }

type gene struct {
	driver string
	start  time.Time
}

type chromosome struct {
	genes   map[string]gene     // by delivery id
	order   map[string][]string // driver id -> visiting order
	fitness float64
}

func (g *Genetic) Schedule(ctx context.Context, requests []model.DeliveryRequest, drivers []model.DriverAvailability,
	params model.SchedulingParameters, constraints []constraint.Constraint) model.SchedulingResult {
	started := time.Now()
	params.SetDefaults()

	res := model.SchedulingResult{Algorithm: g.Name(), Success: true}
	if len(requests) == 0 || len(drivers) == 0 {
		finalize(&res, params, started)
		return res
	}

	rng := newRand(params.Seed)
	b := newBudget(ctx, params.TimeLimit)

	pop := make([]chromosome, g.PopulationSize)
	for i := range pop {
		pop[i] = g.randomChromosome(rng, requests, drivers)
		pop[i].fitness = g.fitness(pop[i], requests, drivers, params, constraints)
	}

	best := pop[0]
	generations := 0
	for gen := 0; gen < params.MaxIterations && !b.exhausted(); gen++ {
		generations++
		sort.SliceStable(pop, func(i, j int) bool { return pop[i].fitness > pop[j].fitness })
		if pop[0].fitness > best.fitness {
			best = pop[0].clone()
		}

		elite := int(float64(len(pop)) * g.EliteFraction)
		if elite < 1 {
			elite = 1
		}
		next := make([]chromosome, 0, len(pop))
		for i := 0; i < elite; i++ {
			next = append(next, pop[i].clone())
		}
		for len(next) < len(pop) {
			parentA := g.tournament(pop, rng)
			var child chromosome
			if rng.Float64() < g.CrossoverRate {
				parentB := g.tournament(pop, rng)
				child = g.crossover(parentA, parentB, requests, drivers)
			} else {
				child = parentA.clone()
			}
			if rng.Float64() < g.MutationRate {
				g.mutate(&child, rng, requests, drivers)
			}
			child.fitness = g.fitness(child, requests, drivers, params, constraints)
			next = append(next, child)
		}
		pop = next
	}
	sort.SliceStable(pop, func(i, j int) bool { return pop[i].fitness > pop[j].fitness })
	if pop[0].fitness > best.fitness {
		best = pop[0]
	}

	res.Schedule = g.build(best, requests, drivers)
	finalize(&res, params, started)
	res.Metrics["generations"] = float64(generations)
	return res
}

// randomChromosome assigns each request a random driver and a random start
// within a randomly chosen window, then shuffles each driver's order.
func (g *Genetic) randomChromosome(rng *rand.Rand, requests []model.DeliveryRequest, drivers []model.DriverAvailability) chromosome {
	c := chromosome{genes: make(map[string]gene, len(requests)), order: make(map[string][]string)}
	for _, req := range requests {
		d := drivers[rng.Intn(len(drivers))]
		w := req.Windows[rng.Intn(len(req.Windows))]
		c.genes[req.DeliveryID] = gene{driver: d.DriverID, start: randomStart(rng, w, req.ServiceDuration)}
		c.order[d.DriverID] = append(c.order[d.DriverID], req.DeliveryID)
	}
	for _, d := range drivers {
		ids := c.order[d.DriverID]
		rng.Shuffle(len(ids), func(i, j int) { ids[i], ids[j] = ids[j], ids[i] })
	}
	return c
}

// randomStart picks a minute-aligned start so the service still ends inside
// the window when it fits at all.
func randomStart(rng *rand.Rand, w model.TimeWindow, service time.Duration) time.Time {
	span := w.Duration() - service
	if span <= 0 {
		return w.Start
	}
	steps := int64(span / time.Minute)
	if steps <= 0 {
		return w.Start
	}
	return w.Start.Add(time.Duration(rng.Int63n(steps+1)) * time.Minute)
}

func (g *Genetic) fitness(c chromosome, requests []model.DeliveryRequest, drivers []model.DriverAvailability,
	params model.SchedulingParameters, cs []constraint.Constraint) float64 {
	return Fitness(g.build(c, requests, drivers), params, cs)
}

// build derives the schedule a chromosome encodes, honoring the per-driver
// visiting order.
func (g *Genetic) build(c chromosome, requests []model.DeliveryRequest, drivers []model.DriverAvailability) []model.ScheduleEntry {
	reqByID := make(map[string]model.DeliveryRequest, len(requests))
	for _, r := range requests {
		reqByID[r.DeliveryID] = r
	}
	vehicleOf := make(map[string]string, len(drivers))
	for _, d := range drivers {
		vehicleOf[d.DriverID] = d.VehicleID
	}

	entries := make([]model.ScheduleEntry, 0, len(requests))
	for _, d := range drivers {
		for _, id := range c.order[d.DriverID] {
			gn := c.genes[id]
			entries = append(entries, model.NewScheduleEntry(reqByID[id], gn.driver, vehicleOf[gn.driver], gn.start))
		}
	}
	return entries
}

// tournament samples TournamentSize chromosomes and returns the fittest.
func (g *Genetic) tournament(pop []chromosome, rng *rand.Rand) chromosome {
	best := pop[rng.Intn(len(pop))]
	for i := 1; i < g.TournamentSize; i++ {
		if c := pop[rng.Intn(len(pop))]; c.fitness > best.fitness {
			best = c
		}
	}
	return best
}

// crossover splits the request list at the midpoint: gene assignments come
// from parent a for the first half and parent b for the rest, then the
// per-driver order lists are rebuilt by start time.
func (g *Genetic) crossover(a, b chromosome, requests []model.DeliveryRequest, drivers []model.DriverAvailability) chromosome {
	child := chromosome{genes: make(map[string]gene, len(requests)), order: make(map[string][]string)}
	mid := len(requests) / 2
	for i, req := range requests {
		if i < mid {
			child.genes[req.DeliveryID] = a.genes[req.DeliveryID]
		} else {
			child.genes[req.DeliveryID] = b.genes[req.DeliveryID]
		}
	}
	for _, req := range requests {
		gn := child.genes[req.DeliveryID]
		child.order[gn.driver] = append(child.order[gn.driver], req.DeliveryID)
	}
	for _, d := range drivers {
		ids := child.order[d.DriverID]
		sort.SliceStable(ids, func(i, j int) bool {
			return child.genes[ids[i]].start.Before(child.genes[ids[j]].start)
		})
	}
	return child
}

// mutate applies one of three moves: reassign a request to another driver,
// reshuffle one driver's order, or shift one request's start.
func (g *Genetic) mutate(c *chromosome, rng *rand.Rand, requests []model.DeliveryRequest, drivers []model.DriverAvailability) {
	req := requests[rng.Intn(len(requests))]
	switch rng.Intn(3) {
	case 0:
		if len(drivers) < 2 {
			return
		}
		gn := c.genes[req.DeliveryID]
		next := drivers[rng.Intn(len(drivers))]
		for next.DriverID == gn.driver {
			next = drivers[rng.Intn(len(drivers))]
		}
		c.removeFromOrder(gn.driver, req.DeliveryID)
		gn.driver = next.DriverID
		c.genes[req.DeliveryID] = gn
		c.order[next.DriverID] = append(c.order[next.DriverID], req.DeliveryID)
	case 1:
		d := drivers[rng.Intn(len(drivers))]
		ids := c.order[d.DriverID]
		rng.Shuffle(len(ids), func(i, j int) { ids[i], ids[j] = ids[j], ids[i] })
	case 2:
		gn := c.genes[req.DeliveryID]
		if rng.Intn(2) == 0 {
			gn.start = gn.start.Add(-g.ShiftStep)
		} else {
			gn.start = gn.start.Add(g.ShiftStep)
		}
		c.genes[req.DeliveryID] = gn
	}
}

func (c *chromosome) removeFromOrder(driver, deliveryID string) {
	ids := c.order[driver]
	for i, id := range ids {
		if id == deliveryID {
			c.order[driver] = append(ids[:i], ids[i+1:]...)
			return
		}
	}
}

func (c chromosome) clone() chromosome {
	out := chromosome{
		genes:   make(map[string]gene, len(c.genes)),
		order:   make(map[string][]string, len(c.order)),
		fitness: c.fitness,
	}
	for k, v := range c.genes {
		out.genes[k] = v
	}
	for k, ids := range c.order {
		out.order[k] = append([]string(nil), ids...)
	}
	return out
}

var _ Algorithm = (*Genetic)(nil)
