// Package engine orchestrates the host-driven tick sequence from spec.md
// section 2 (time advance, board update, assignment, job processing,
// event-bus swap, registered systems), wiring together internal/ecs,
// internal/job, internal/eventbus, and internal/system without an import
// cycle (those packages depend on internal/ecs, so the orchestrator lives
// one level above all of them, the way engine/core/tests/helpers/test_tick.rs
// wires JobBoard/JobSystem/World together from outside any one of them).
package engine

import (
	"github.com/ashfall-games/simcore/internal/ecs"
	"github.com/ashfall-games/simcore/internal/job"
	"github.com/ashfall-games/simcore/internal/system"
)

// Runner holds every per-tick dependency the host assembles once and
// reuses across ticks: the world, the job board and its supporting
// registries, the host-supplied agent/skill/pathing predicates job.Process
// needs, and the named system registry run last each tick.
type Runner struct {
	World    *ecs.World
	Board    *job.Board
	Handlers *job.HandlerRegistry
	Effects  *job.EffectRegistry
	Systems  *system.Registry

	// IdleAgents lists agents eligible to claim a new job this tick. Agent
	// bookkeeping (skills, position, carried resources) is a host concern,
	// same as CanSatisfy/AgentCell/AgentIsCarrying below.
	IdleAgents      func() []job.AgentState
	CanSatisfy      job.CanSatisfy
	AgentCell       func(agent ecs.EntityID) (ecs.CellKey, bool)
	AgentIsCarrying func(agent ecs.EntityID, j *job.Job) bool
}

// RunTick executes one pass of spec.md section 2's seven-step sequence:
// time advance, board aging, assignment, per-job state advancement,
// effect application (inside job.Process), event-bus buffer swap, and
// registered systems, in that order. Returns the assignments claimed this
// tick, for a caller that wants to log or react to them.
func (r *Runner) RunTick(tick uint64) []job.Assignment {
	r.World.Tick()
	r.Board.Update(tick)

	var assignments []job.Assignment
	if r.IdleAgents != nil && r.CanSatisfy != nil {
		assignments = r.Board.Assign(r.IdleAgents(), r.CanSatisfy)
	}

	ctx := job.ProcessContext{
		World:           r.World,
		Handlers:        r.Handlers,
		Effects:         r.Effects,
		AgentCell:       r.AgentCell,
		AgentIsCarrying: r.AgentIsCarrying,
	}
	for _, j := range r.Board.OpenJobsByPriority() {
		agentID := ecs.EntityID(0)
		if j.AssignedTo != nil {
			agentID = *j.AssignedTo
		}
		job.Process(ctx, agentID, j)
	}

	r.World.Buses.UpdateAll()

	if r.Systems != nil {
		for _, name := range r.Systems.ListSystems() {
			_ = r.Systems.RunSystem(name, r.World)
		}
	}

	return assignments
}
