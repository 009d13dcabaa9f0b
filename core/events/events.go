// Package events defines the notifications emitted while a scheduling run
// progresses, and the in-process bus they travel on.
package events

import (
	"time"

	"github.com/gasotec/dispatch/core/model"
)

// RunStarted is published when the engine accepts a scheduling request.
type RunStarted struct {
	Date      time.Time
	Algorithm string
	Requests  int
	Drivers   int
}

// AlgorithmFallback is published when an unknown algorithm name falls back
// to the default strategy.
type AlgorithmFallback struct {
	Requested string
	Used      string
}

// ConflictsResolved is published after the repair pass, whether or not it
// cleared everything.
type ConflictsResolved struct {
	Before    int
	Remaining int
}

// RunCompleted closes a scheduling run.
type RunCompleted struct {
	Algorithm   string
	Scheduled   int
	Unscheduled int
	Conflicts   int
	Score       float64
	ComputeTime time.Duration
	Success     bool
}

// ConflictDetected carries one conflict found outside a full run, e.g. when
// validating an externally edited schedule.
type ConflictDetected struct {
	Conflict model.SchedulingConflict
}
