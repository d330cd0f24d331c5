package main

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ashfall-games/simcore/internal/config"
	"github.com/ashfall-games/simcore/internal/ecs"
	"github.com/ashfall-games/simcore/internal/engine"
	"github.com/ashfall-games/simcore/internal/job"
	"github.com/ashfall-games/simcore/internal/system"
	"github.com/stretchr/testify/assert"
)

func TestRunTickLoopAdvancesTimeOfDayAndStopsOnCancel(t *testing.T) {
	world := ecs.NewWorld(ecs.NewComponentRegistry(), config.ModeColony)
	board := job.NewBoard(1, 20)
	board.Add(&job.Job{ID: ecs.EntityID(1), JobType: "haul_wood", State: job.StatePending, Priority: 1}, 0)
	runner := &engine.Runner{
		World:    world,
		Board:    board,
		Handlers: job.NewHandlerRegistry(),
		Effects:  job.NewEffectRegistry(),
		Systems:  system.NewRegistry(),
	}

	ctx, cancel := context.WithCancel(context.Background())
	var tick atomic.Uint64
	done := make(chan struct{})
	go func() {
		runTickLoop(ctx, runner, &tick, 2*time.Millisecond)
		close(done)
	}()

	time.Sleep(30 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("runTickLoop did not stop after cancel")
	}

	assert.Greater(t, world.GetTimeOfDay(), 0)
}
