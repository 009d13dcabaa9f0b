package model

import "time"

// SchedulingResult is the outcome of one scheduling run. Infeasibility and
// exhausted budgets are reported here, never as errors.
type SchedulingResult struct {
	Schedule    []ScheduleEntry      `json:"schedule"`
	Unscheduled []string             `json:"unscheduled,omitempty"`
	Metrics     map[string]float64   `json:"metrics,omitempty"`
	Conflicts   []SchedulingConflict `json:"conflicts,omitempty"`
	Score       float64              `json:"score"`
	ComputeTime time.Duration        `json:"compute_time"`
	Algorithm   string               `json:"algorithm"`
	Parameters  SchedulingParameters `json:"parameters"`
	Success     bool                 `json:"success"`
	Error       string               `json:"error,omitempty"`
	Routes      []DeliveryRoute      `json:"routes,omitempty"`
	Stats       *SchedulingStats     `json:"stats,omitempty"`
}

// SchedulingStats aggregates the KPIs of a finished run.
type SchedulingStats struct {
	Scheduled            int           `json:"scheduled"`
	Unscheduled          int           `json:"unscheduled"`
	DriversUsed          int           `json:"drivers_used"`
	AvgDeliveriesPerUsed float64       `json:"avg_deliveries_per_driver"`
	TimeWindowCompliance float64       `json:"time_window_compliance"`
	ConflictCount        int           `json:"conflict_count"`
	ComputeTime          time.Duration `json:"compute_time"`
}
