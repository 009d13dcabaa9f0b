package config

import (
	"fmt"
	"time"

	"github.com/gasotec/dispatch/core/algorithm"
	"github.com/gasotec/dispatch/core/model"
)

// EngineConfig carries the run-level scheduler tunables.
type EngineConfig struct {
	// DefaultAlgorithm is used when a run names none: "greedy", "genetic"
	// or "simulated_annealing".
	DefaultAlgorithm string `json:"default_algorithm"`
	// TravelSpeedKmh feeds every travel time estimate.
	TravelSpeedKmh float64 `json:"travel_speed_kmh"`
	// ServiceBufferMinutes pads travel gaps between consecutive stops.
	ServiceBufferMinutes int `json:"service_buffer_minutes"`
	// MaxIterations bounds the iterative algorithms.
	MaxIterations int `json:"max_iterations"`
	// TimeLimitSeconds bounds the wall clock of one run.
	TimeLimitSeconds int  `json:"time_limit_seconds"`
	AllowOvertime    bool `json:"allow_overtime"`
	// TimeComplianceScore is the constant compliance term of the scorer.
	TimeComplianceScore float64 `json:"time_compliance_score"`
	// Seed makes runs reproducible when non-zero.
	Seed int64 `json:"seed"`
}

// SetDefaults applies sane defaults.
func (c *EngineConfig) SetDefaults() {
	if c.DefaultAlgorithm == "" {
		c.DefaultAlgorithm = "greedy"
	}
	if c.TravelSpeedKmh <= 0 {
		c.TravelSpeedKmh = 40
	}
	if c.ServiceBufferMinutes <= 0 {
		c.ServiceBufferMinutes = 5
	}
	if c.MaxIterations <= 0 {
		c.MaxIterations = 100
	}
	if c.TimeLimitSeconds <= 0 {
		c.TimeLimitSeconds = 30
	}
	if c.TimeComplianceScore <= 0 {
		c.TimeComplianceScore = 0.8
	}
}

// Validate checks mandatory fields.
func (c EngineConfig) Validate() error {
	switch c.DefaultAlgorithm {
	case "greedy", "genetic", "simulated_annealing":
	default:
		return fmt.Errorf("unknown algorithm %s", c.DefaultAlgorithm)
	}
	if c.TimeComplianceScore > 1 {
		return fmt.Errorf("time_compliance_score must be at most 1")
	}
	return nil
}

// Parameters builds the scheduling parameters for a target date.
func (c EngineConfig) Parameters(date time.Time) model.SchedulingParameters {
	p := model.DefaultParameters(date)
	p.TravelSpeedKmh = c.TravelSpeedKmh
	p.ServiceBuffer = time.Duration(c.ServiceBufferMinutes) * time.Minute
	p.MaxIterations = c.MaxIterations
	p.TimeLimit = time.Duration(c.TimeLimitSeconds) * time.Second
	p.AllowOvertime = c.AllowOvertime
	p.TimeComplianceScore = c.TimeComplianceScore
	p.Seed = c.Seed
	return p
}

// GeneticConfig tunes the genetic strategy.
type GeneticConfig struct {
	PopulationSize int     `json:"population_size"`
	EliteFraction  float64 `json:"elite_fraction"`
	TournamentSize int     `json:"tournament_size"`
	CrossoverRate  float64 `json:"crossover_rate"`
	MutationRate   float64 `json:"mutation_rate"`
	ShiftMinutes   int     `json:"shift_minutes"`
}

// SetDefaults applies sane defaults.
func (c *GeneticConfig) SetDefaults() {
	def := algorithm.NewGenetic()
	if c.PopulationSize <= 0 {
		c.PopulationSize = def.PopulationSize
	}
	if c.EliteFraction <= 0 {
		c.EliteFraction = def.EliteFraction
	}
	if c.TournamentSize <= 0 {
		c.TournamentSize = def.TournamentSize
	}
	if c.CrossoverRate <= 0 {
		c.CrossoverRate = def.CrossoverRate
	}
	if c.MutationRate <= 0 {
		c.MutationRate = def.MutationRate
	}
	if c.ShiftMinutes <= 0 {
		c.ShiftMinutes = int(def.ShiftStep / time.Minute)
	}
}

// Validate checks the rates are probabilities.
func (c GeneticConfig) Validate() error {
	if c.EliteFraction >= 1 {
		return fmt.Errorf("elite_fraction must be below 1")
	}
	if c.CrossoverRate > 1 || c.MutationRate > 1 {
		return fmt.Errorf("crossover_rate and mutation_rate must be at most 1")
	}
	if c.TournamentSize > c.PopulationSize {
		return fmt.Errorf("tournament_size cannot exceed population_size")
	}
	return nil
}

// Build returns a genetic strategy with these tunables.
func (c GeneticConfig) Build() *algorithm.Genetic {
	g := algorithm.NewGenetic()
	g.PopulationSize = c.PopulationSize
	g.EliteFraction = c.EliteFraction
	g.TournamentSize = c.TournamentSize
	g.CrossoverRate = c.CrossoverRate
	g.MutationRate = c.MutationRate
	g.ShiftStep = time.Duration(c.ShiftMinutes) * time.Minute
	return g
}

// AnnealingConfig tunes the simulated annealing strategy.
type AnnealingConfig struct {
	InitialTemp  float64 `json:"initial_temp"`
	MinTemp      float64 `json:"min_temp"`
	CoolingRate  float64 `json:"cooling_rate"`
	ShiftMinutes int     `json:"shift_minutes"`
}

// SetDefaults applies sane defaults.
func (c *AnnealingConfig) SetDefaults() {
	def := algorithm.NewSimulatedAnnealing()
	if c.InitialTemp <= 0 {
		c.InitialTemp = def.InitialTemp
	}
	if c.MinTemp <= 0 {
		c.MinTemp = def.MinTemp
	}
	if c.CoolingRate <= 0 {
		c.CoolingRate = def.CoolingRate
	}
	if c.ShiftMinutes <= 0 {
		c.ShiftMinutes = int(def.ShiftStep / time.Minute)
	}
}

// Validate checks the cooling schedule terminates.
func (c AnnealingConfig) Validate() error {
	if c.CoolingRate >= 1 {
		return fmt.Errorf("cooling_rate must be below 1")
	}
	if c.MinTemp >= c.InitialTemp {
		return fmt.Errorf("min_temp must be below initial_temp")
	}
	return nil
}

// Build returns an annealing strategy with these tunables.
func (c AnnealingConfig) Build() *algorithm.SimulatedAnnealing {
	s := algorithm.NewSimulatedAnnealing()
	s.InitialTemp = c.InitialTemp
	s.MinTemp = c.MinTemp
	s.CoolingRate = c.CoolingRate
	s.ShiftStep = time.Duration(c.ShiftMinutes) * time.Minute
	return s
}
