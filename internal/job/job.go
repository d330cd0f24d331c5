// Package job implements the hierarchical job state machine from spec.md
// section 4.6: the priority-aging board, assignment, the per-tick state
// machine, handler and effect registries, parent/child propagation, and the
// multi-format definition loader. Grounded throughout on
// original_source/engine/core/src/systems/job/**.
package job

import (
	"github.com/ashfall-games/simcore/internal/ecs"
)

// State is one node of the job state machine (spec.md section 4.6).
type State string

const (
	StatePending     State = "pending"
	StateGoingToSite State = "going_to_site"
	StateAtSite      State = "at_site"
	StateInProgress  State = "in_progress"
	StateFetching    State = "fetching"
	StateDelivering  State = "delivering"
	StateComplete    State = "complete"
	StateCancelled   State = "cancelled"
	StateFailed      State = "failed"
)

// Terminal reports whether state has no further transitions.
func (s State) Terminal() bool {
	return s == StateComplete || s == StateCancelled || s == StateFailed
}

// ResourceAmount is a (kind, amount) pair used for requirements, reservations,
// and delivered totals.
type ResourceAmount struct {
	Kind   string  `json:"kind"`
	Amount float64 `json:"amount"`
}

// Job is the state-machine document described by spec.md section 3: at
// minimum id, job_type, state, priority, requirements, children,
// dependencies. Host code (e.g. a scripting bridge) that needs a raw JSON
// view can marshal/unmarshal Job directly since every field round-trips.
type Job struct {
	ID           ecs.EntityID  `json:"id"`
	JobType      string        `json:"job_type"`
	State        State         `json:"state"`
	Priority     float64       `json:"priority"`
	AgeBonus     float64       `json:"age_bonus"`
	Requirements []ResourceAmount `json:"requirements,omitempty"`
	Delivered    []ResourceAmount `json:"delivered,omitempty"`

	AssignedTo   *ecs.EntityID `json:"assigned_to,omitempty"`
	Children     []*Job        `json:"children,omitempty"`
	Dependencies []string      `json:"dependencies,omitempty"`

	Progress      float64  `json:"progress,omitempty"`
	Duration      float64  `json:"duration,omitempty"`
	TargetCell    *ecs.CellKey `json:"target_cell,omitempty"`
	NeedsDelivery bool     `json:"needs_delivery,omitempty"`
	FailureReason string   `json:"failure_reason,omitempty"`

	ReservedResources []ResourceAmount `json:"reserved_resources,omitempty"`
	ReservedStockpile *ecs.EntityID    `json:"reserved_stockpile,omitempty"`

	Effects             []Effect                `json:"effects,omitempty"`
	ConditionalChildren []ConditionalChildSpec   `json:"conditional_children,omitempty"`

	CreatedAtTick uint64 `json:"created_at_tick"`
	LastSeenTick  uint64 `json:"last_seen_tick"`
}

// EffectivePriority is priority plus accumulated age bonus, capped by the
// board's configured ceiling.
func (j *Job) EffectivePriority(cap float64) float64 {
	ep := j.Priority + j.AgeBonus
	if ep > cap {
		return cap
	}
	return ep
}

// IsOpen reports whether the job is still eligible for board assignment
// (not complete, not cancelled, not failed).
func (j *Job) IsOpen() bool {
	return !j.State.Terminal()
}

// ReleaseReservations clears reserved_resources and reserved_stockpile.
// Called on entry into complete/cancelled/failed, per spec.md section 5
// ("Reservations are released on complete/cancelled/failed").
func (j *Job) ReleaseReservations() {
	j.ReservedResources = nil
	j.ReservedStockpile = nil
}
