// Package schedule drives cron-triggered recurring job producers onto a
// job board. Grounded on the teacher's automation service's recurring-
// trigger concept (services/automation/service/schedule.go), here backed
// directly by robfig/cron/v3 rather than a hand-rolled parser.
package schedule

import (
	"sync"

	"github.com/robfig/cron/v3"

	"github.com/ashfall-games/simcore/internal/job"
)

// Producer is a recurring job template: Schedule is a standard five-field
// cron expression, or a descriptor such as "@every 1h" or "@hourly". Build
// constructs a fresh Job each time the schedule fires; a nil result is
// skipped (used when a producer wants to suppress a firing, e.g. a
// resource cap already met).
type Producer struct {
	Name     string
	Schedule string
	Build    func() *job.Job
}

// TickSource supplies the current simulation tick, used to stamp jobs the
// scheduler enqueues onto the board. This decouples cron's wall-clock
// firing from simulation time.
type TickSource func() uint64

// Scheduler fires registered Producers on their cron schedule and enqueues
// the jobs they build onto a job.Board.
type Scheduler struct {
	mu      sync.Mutex
	cron    *cron.Cron
	board   *job.Board
	ticks   TickSource
	entries map[string]cron.EntryID
}

// NewScheduler creates a scheduler that enqueues produced jobs onto board,
// stamping each with the tick ticks() reports at fire time.
func NewScheduler(board *job.Board, ticks TickSource) *Scheduler {
	return &Scheduler{
		cron: cron.New(cron.WithParser(cron.NewParser(
			cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
		))),
		board:   board,
		ticks:   ticks,
		entries: make(map[string]cron.EntryID),
	}
}

// Register adds p to the scheduler, replacing any existing producer
// registered under the same name.
func (s *Scheduler) Register(p Producer) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if id, exists := s.entries[p.Name]; exists {
		s.cron.Remove(id)
		delete(s.entries, p.Name)
	}

	id, err := s.cron.AddFunc(p.Schedule, func() {
		j := p.Build()
		if j == nil {
			return
		}
		s.board.Add(j, s.ticks())
	})
	if err != nil {
		return err
	}
	s.entries[p.Name] = id
	return nil
}

// Unregister removes a producer by name. A missing name is a no-op.
func (s *Scheduler) Unregister(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if id, exists := s.entries[name]; exists {
		s.cron.Remove(id)
		delete(s.entries, name)
	}
}

// Start begins firing registered producers in cron's background goroutine.
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop halts the scheduler and blocks until any in-flight firing completes.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}

// Len reports the number of currently registered producers.
func (s *Scheduler) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}
