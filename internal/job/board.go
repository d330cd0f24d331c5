package job

import (
	"sort"
	"sync"

	"github.com/ashfall-games/simcore/internal/ecs"
)

// Board is the ordered priority queue over open jobs, grounded on
// original_source's systems/job/board/{job_board,priority_aging}.rs
// (filtered from the pack; behavior follows spec.md section 4.6 exactly).
type Board struct {
	mu          sync.Mutex
	jobs        map[ecs.EntityID]*Job
	agingRate   float64
	priorityCap float64
}

// NewBoard creates an empty board with the given aging rate and priority
// cap (spec.md section 9 leaves these as an open question; SPEC_FULL.md
// resolves them to config.JobsConfig's AgingRate/PriorityCap).
func NewBoard(agingRate, priorityCap float64) *Board {
	return &Board{
		jobs:        make(map[ecs.EntityID]*Job),
		agingRate:   agingRate,
		priorityCap: priorityCap,
	}
}

// Add inserts j into the board under its own ID, stamping CreatedAtTick and
// LastSeenTick if this is the job's first appearance on the board.
func (b *Board) Add(j *Job, tick uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, exists := b.jobs[j.ID]; !exists {
		j.CreatedAtTick = tick
		j.LastSeenTick = tick
	}
	b.jobs[j.ID] = j
}

// Remove drops a job from the board by id.
func (b *Board) Remove(id ecs.EntityID) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.jobs, id)
}

// Get returns the board's job for id, if present.
func (b *Board) Get(id ecs.EntityID) (*Job, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	j, ok := b.jobs[id]
	return j, ok
}

// Update ages every queued job by aging_rate*(tick-last_seen), bounded by
// the priority cap, then drops jobs that have reached a terminal state.
func (b *Board) Update(tick uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for id, j := range b.jobs {
		if j.State.Terminal() {
			delete(b.jobs, id)
			continue
		}
		elapsed := tick - j.LastSeenTick
		j.AgeBonus += b.agingRate * float64(elapsed)
		if j.Priority+j.AgeBonus > b.priorityCap {
			j.AgeBonus = b.priorityCap - j.Priority
		}
		j.LastSeenTick = tick
	}
}

// OpenJobsByPriority returns every open job, ordered by descending
// effective priority, tie-broken by ascending entity id.
func (b *Board) OpenJobsByPriority() []*Job {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]*Job, 0, len(b.jobs))
	for _, j := range b.jobs {
		if j.IsOpen() {
			out = append(out, j)
		}
	}
	sort.Slice(out, func(i, k int) bool {
		pi, pk := out[i].EffectivePriority(b.priorityCap), out[k].EffectivePriority(b.priorityCap)
		if pi != pk {
			return pi > pk
		}
		return out[i].ID < out[k].ID
	})
	return out
}

// Len returns the number of jobs currently tracked by the board.
func (b *Board) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.jobs)
}

// AgentState is the minimal agent view the board's assignment logic needs:
// identity and current cell. Skills and reachability (pathfinding) are
// host concerns, supplied through CanSatisfy.
type AgentState struct {
	ID   ecs.EntityID
	Cell ecs.CellKey
}

// CanSatisfy reports whether agent can satisfy job's requirements (skills)
// and reach its site (pathfinding). The board does not implement either
// concern itself; the host (an AI/pathfinding system) supplies this.
type CanSatisfy func(agent AgentState, j *Job) bool

// Assignment records a job claimed by an agent during one Assign call.
type Assignment struct {
	AgentID ecs.EntityID
	JobID   ecs.EntityID
}

// Assign claims, for each idle agent in order, the highest effective-
// priority open unassigned job it can satisfy. Claiming writes
// AssignedTo = agent.ID only; the agent's current cell is not recorded on
// the job. Grounded on spec.md section 4.6's assign_jobs
// description (tie-break: smaller entity id first).
func (b *Board) Assign(idleAgents []AgentState, canSatisfy CanSatisfy) []Assignment {
	open := b.OpenJobsByPriority()
	claimed := make(map[ecs.EntityID]bool, len(open))

	var assignments []Assignment
	for _, agent := range idleAgents {
		for _, j := range open {
			if j.AssignedTo != nil || claimed[j.ID] {
				continue
			}
			if !canSatisfy(agent, j) {
				continue
			}
			agentID := agent.ID
			j.AssignedTo = &agentID
			claimed[j.ID] = true
			assignments = append(assignments, Assignment{AgentID: agent.ID, JobID: j.ID})
			break
		}
	}
	return assignments
}
