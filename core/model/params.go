package model

import (
	"fmt"
	"time"
)

// Objective names recognised by the shared scorer.
const (
	ObjectiveDistance        = "distance"
	ObjectiveUtilization     = "utilization"
	ObjectiveTimeCompliance  = "time_compliance"
	ObjectiveWorkloadBalance = "workload_balance"
)

// Objective is a named optimisation goal with a relative weight.
type Objective struct {
	Name   string  `json:"name"`
	Weight float64 `json:"weight"`
}

// SchedulingParameters carries the per-run tunables every algorithm reads.
type SchedulingParameters struct {
	Date                time.Time     `json:"date"`
	Objectives          []Objective   `json:"objectives,omitempty"`
	MaxIterations       int           `json:"max_iterations,omitempty"`
	TimeLimit           time.Duration `json:"time_limit,omitempty"`
	AllowOvertime       bool          `json:"allow_overtime"`
	TravelSpeedKmh      float64       `json:"travel_speed_kmh,omitempty"`
	ServiceBuffer       time.Duration `json:"service_buffer,omitempty"`
	TimeComplianceScore float64       `json:"time_compliance_score,omitempty"`
	Seed                int64         `json:"seed,omitempty"`
}

// DefaultParameters returns parameters with uniform objective weights and
// the stock tunables for the given date.
func DefaultParameters(date time.Time) SchedulingParameters {
	return SchedulingParameters{
		Date: date,
		Objectives: []Objective{
			{Name: ObjectiveDistance, Weight: 0.25},
			{Name: ObjectiveUtilization, Weight: 0.25},
			{Name: ObjectiveTimeCompliance, Weight: 0.25},
			{Name: ObjectiveWorkloadBalance, Weight: 0.25},
		},
		MaxIterations:       100,
		TimeLimit:           30 * time.Second,
		TravelSpeedKmh:      40,
		ServiceBuffer:       5 * time.Minute,
		TimeComplianceScore: 0.8,
	}
}

// SetDefaults fills zero-value tunables with their stock values.
func (p *SchedulingParameters) SetDefaults() {
	def := DefaultParameters(p.Date)
	if len(p.Objectives) == 0 {
		p.Objectives = def.Objectives
	}
	if p.MaxIterations <= 0 {
		p.MaxIterations = def.MaxIterations
	}
	if p.TimeLimit <= 0 {
		p.TimeLimit = def.TimeLimit
	}
	if p.TravelSpeedKmh <= 0 {
		p.TravelSpeedKmh = def.TravelSpeedKmh
	}
	if p.ServiceBuffer <= 0 {
		p.ServiceBuffer = def.ServiceBuffer
	}
	if p.TimeComplianceScore <= 0 {
		p.TimeComplianceScore = def.TimeComplianceScore
	}
}

// Validate checks the parameters are usable.
func (p SchedulingParameters) Validate() error {
	if p.Date.IsZero() {
		return fmt.Errorf("target date is required")
	}
	for _, o := range p.Objectives {
		if o.Weight < 0 {
			return fmt.Errorf("objective %s has negative weight", o.Name)
		}
	}
	return nil
}

// NormalizedWeights returns objective weights scaled to sum to one. Unknown
// objective names are kept so callers can score custom terms.
func (p SchedulingParameters) NormalizedWeights() map[string]float64 {
	out := make(map[string]float64, len(p.Objectives))
	var sum float64
	for _, o := range p.Objectives {
		sum += o.Weight
	}
	if sum <= 0 {
		return out
	}
	for _, o := range p.Objectives {
		out[o.Name] = o.Weight / sum
	}
	return out
}
