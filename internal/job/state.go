package job

import (
	"github.com/ashfall-games/simcore/internal/ecs"
)

// ProcessContext carries the per-tick dependencies Process needs: the
// world a handler may mutate, the handler/effect registries, and the two
// host-supplied predicates the job system itself does not implement
// (agent location and carried-resource lookups), per spec.md section 9's
// note that pathfinding and skills live outside the core.
type ProcessContext struct {
	World           *ecs.World
	Handlers        *HandlerRegistry
	Effects         *EffectRegistry
	AgentCell       func(agent ecs.EntityID) (ecs.CellKey, bool)
	AgentIsCarrying func(agent ecs.EntityID, j *Job) bool
}

// Process advances a job by at most one state transition, per spec.md
// section 4.6's transition table. Complete and failed jobs are returned
// unchanged. A cancelled job still walks its children once, forcing them
// into Cancelled too (one level of propagation per tick, since a deeper
// descendant only observes its own parent as Cancelled on a later tick),
// then returns without running the state switch. On entry to any terminal
// state, reservations are released.
func Process(ctx ProcessContext, agentID ecs.EntityID, j *Job) *Job {
	if j == nil {
		return j
	}
	if j.State == StateComplete || j.State == StateFailed {
		return j
	}

	cancelled := j.State == StateCancelled
	children, allChildrenComplete := ProcessChildren(j.Children, cancelled, func(child *Job) *Job {
		return Process(ctx, agentID, child)
	})
	j.Children = children

	if cancelled {
		j.ReleaseReservations()
		return j
	}

	switch j.State {
	case StatePending:
		processPending(j)
	case StateGoingToSite:
		processGoingToSite(ctx, agentID, j)
	case StateAtSite:
		j.State = StateInProgress
	case StateInProgress:
		j = processInProgress(ctx, agentID, j, allChildrenComplete)
	case StateFetching:
		processFetching(ctx, agentID, j)
	case StateDelivering:
		processDelivering(j)
	}

	if j.State.Terminal() {
		j.ReleaseReservations()
	}
	return j
}

func processPending(j *Job) {
	met := AreRequirementsMet(j.Requirements, j.Delivered)
	switch {
	case met && j.TargetCell != nil:
		j.State = StateGoingToSite
	case !met:
		j.State = StateFetching
	}
}

func processGoingToSite(ctx ProcessContext, agentID ecs.EntityID, j *Job) {
	if ctx.AgentCell == nil || j.TargetCell == nil {
		return
	}
	cell, ok := ctx.AgentCell(agentID)
	if ok && cell.Equal(*j.TargetCell) {
		j.State = StateAtSite
	}
}

func processInProgress(ctx ProcessContext, agentID ecs.EntityID, j *Job, allChildrenComplete bool) *Job {
	if ctx.Handlers != nil {
		if handler, ok := ctx.Handlers.Get(j.JobType); ok {
			result, err := handler(ctx.World, agentID, j.ID, j)
			if err != nil {
				j.State = StateFailed
				j.FailureReason = err.Error()
				return j
			}
			j = result
			if j.State != StateInProgress {
				return j // handler overrode the state (e.g. delivering, failed)
			}
		}
	}

	childrenDone := len(j.Children) == 0 || allChildrenComplete
	switch {
	case j.Progress >= j.Duration && childrenDone:
		if ctx.Effects != nil && ctx.World != nil {
			ctx.Effects.ProcessEffects(ctx.World, j.ID, j.Effects)
		}
		if ctx.World != nil {
			for _, spec := range j.ConditionalChildren {
				spawn, err := ShouldSpawnConditionalChild(ctx.World, j.ID, spec)
				if err == nil && spawn {
					childID := ctx.World.SpawnEntity()
					j.Children = append(j.Children, &Job{ID: childID, JobType: spec.JobType, State: StatePending})
				}
			}
		}
		j.State = StateComplete
	case j.NeedsDelivery:
		j.State = StateDelivering
	}
	return j
}

func processFetching(ctx ProcessContext, agentID ecs.EntityID, j *Job) {
	if ctx.AgentIsCarrying != nil && ctx.AgentIsCarrying(agentID, j) {
		j.State = StateDelivering
	}
}

func processDelivering(j *Job) {
	if AreRequirementsMet(j.Requirements, j.Delivered) {
		j.State = StatePending
	}
}
