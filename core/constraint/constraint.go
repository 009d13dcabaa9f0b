// Package constraint defines the pluggable feasibility rules the scheduling
// algorithms and the engine evaluate. Hard constraints gate validity; soft
// constraints contribute weighted penalties.
package constraint

import "github.com/gasotec/dispatch/core/model"

// Constraint is one independent, stateless feasibility rule. Construction
// captures whatever data the rule needs (client windows, vehicle capacity).
type Constraint interface {
	Name() string
	// Hard reports whether a violation invalidates the schedule.
	Hard() bool
	Weight() float64
	// Check evaluates the schedule and explains the first violation found.
	Check(entries []model.ScheduleEntry) (bool, string)
	// Cost is 0 when satisfied; a violated hard constraint costs its full
	// weight, soft constraints scale with the magnitude of the violation.
	Cost(entries []model.ScheduleEntry) float64
}

// base carries the identity shared by the built-in constraints.
type base struct {
	name   string
	hard   bool
	weight float64
}

func (b base) Name() string    { return b.name }
func (b base) Hard() bool      { return b.hard }
func (b base) Weight() float64 { return b.weight }

// hardCost is the all-or-nothing cost used by hard constraints.
func hardCost(c Constraint, entries []model.ScheduleEntry) float64 {
	if ok, _ := c.Check(entries); ok {
		return 0
	}
	return c.Weight()
}

// CheckResult is the outcome of one constraint check, used for validation
// reports.
type CheckResult struct {
	Name   string  `json:"name"`
	Hard   bool    `json:"hard"`
	Weight float64 `json:"weight"`
	OK     bool    `json:"ok"`
	Reason string  `json:"reason,omitempty"`
}

// CheckAll runs every constraint against the schedule.
func CheckAll(cs []Constraint, entries []model.ScheduleEntry) []CheckResult {
	out := make([]CheckResult, 0, len(cs))
	for _, c := range cs {
		ok, reason := c.Check(entries)
		out = append(out, CheckResult{Name: c.Name(), Hard: c.Hard(), Weight: c.Weight(), OK: ok, Reason: reason})
	}
	return out
}

// TotalCost sums the cost of every constraint over the schedule.
func TotalCost(cs []Constraint, entries []model.ScheduleEntry) float64 {
	var total float64
	for _, c := range cs {
		total += c.Cost(entries)
	}
	return total
}
