package schedule

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/ashfall-games/simcore/internal/ecs"
	"github.com/ashfall-games/simcore/internal/job"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSchedulerFiresProducerOnSchedule(t *testing.T) {
	board := job.NewBoard(0, 100)
	var tick uint64
	s := NewScheduler(board, func() uint64 { return atomic.LoadUint64(&tick) })

	var nextID uint32
	require.NoError(t, s.Register(Producer{
		Name:     "patrol",
		Schedule: "@every 1s",
		Build: func() *job.Job {
			nextID++
			return &job.Job{ID: ecs.EntityID(nextID), JobType: "patrol", State: job.StatePending}
		},
	}))

	s.Start()
	defer s.Stop()
	// cron rounds @every up to whole seconds and fires on second boundaries.
	time.Sleep(1500 * time.Millisecond)

	assert.GreaterOrEqual(t, board.Len(), 1)
}

func TestSchedulerRegisterReplacesExistingProducerByName(t *testing.T) {
	board := job.NewBoard(0, 100)
	s := NewScheduler(board, func() uint64 { return 0 })

	require.NoError(t, s.Register(Producer{Name: "patrol", Schedule: "@every 1h", Build: func() *job.Job { return nil }}))
	require.NoError(t, s.Register(Producer{Name: "patrol", Schedule: "@every 2h", Build: func() *job.Job { return nil }}))

	assert.Equal(t, 1, s.Len())
}

func TestSchedulerUnregisterRemovesProducer(t *testing.T) {
	board := job.NewBoard(0, 100)
	s := NewScheduler(board, func() uint64 { return 0 })

	require.NoError(t, s.Register(Producer{Name: "patrol", Schedule: "@every 1h", Build: func() *job.Job { return nil }}))
	s.Unregister("patrol")
	assert.Equal(t, 0, s.Len())

	s.Unregister("not-registered")
	assert.Equal(t, 0, s.Len())
}

func TestSchedulerSkipsNilBuiltJobs(t *testing.T) {
	board := job.NewBoard(0, 100)
	s := NewScheduler(board, func() uint64 { return 0 })

	require.NoError(t, s.Register(Producer{
		Name:     "suppressed",
		Schedule: "@every 1s",
		Build:    func() *job.Job { return nil },
	}))
	s.Start()
	defer s.Stop()
	time.Sleep(1500 * time.Millisecond)

	assert.Equal(t, 0, board.Len())
}

func TestSchedulerRejectsInvalidSchedule(t *testing.T) {
	board := job.NewBoard(0, 100)
	s := NewScheduler(board, func() uint64 { return 0 })
	err := s.Register(Producer{Name: "bad", Schedule: "not a cron expression", Build: func() *job.Job { return nil }})
	assert.Error(t, err)
}
