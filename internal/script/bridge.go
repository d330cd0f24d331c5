// Package script implements the thin scripting bridge surface from spec.md
// sections 4.8/9: a JS sandbox exposing exactly the capability set plugins
// get (spawnEntity, setComponent, getComponent, subscribe, invokeWorldgen,
// scheduleJob) and nothing else. Grounded on the teacher's own goja usage
// in system/tee/script_engine.go: a fresh goja.Runtime per Run call for
// isolation, console-style log capture, entry-point-function invocation,
// and JSON round-tripping of results.
package script

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/ashfall-games/simcore/internal/ecs"
	"github.com/ashfall-games/simcore/internal/eventbus"
	"github.com/ashfall-games/simcore/internal/job"
	"github.com/ashfall-games/simcore/internal/worldgen"
	"github.com/dop251/goja"
)

// TickSource reports the board's current tick, for jobs scheduleJob adds.
type TickSource func() uint64

// Bridge binds a world, job board, and worldgen registry to a goja runtime
// surface. One Bridge may run many scripts; each Run gets its own
// goja.Runtime, matching the teacher's per-execution isolation.
type Bridge struct {
	world    *ecs.World
	board    *job.Board
	worldgen *worldgen.Registry
	ticks    TickSource
}

// NewBridge creates a Bridge over world, board, and worldgen registry.
func NewBridge(world *ecs.World, board *job.Board, registry *worldgen.Registry, ticks TickSource) *Bridge {
	return &Bridge{world: world, board: board, worldgen: registry, ticks: ticks}
}

// Result is what Run returns: the entry point's JSON-shaped return value
// plus any console.log lines captured during execution.
type Result struct {
	Output interface{}
	Logs   []string
}

// Run compiles script, runs it, then calls entryPoint with input (JSON-
// decodable) and returns its result. Every capability (spawnEntity,
// setComponent, getComponent, subscribe, invokeWorldgen, scheduleJob) is
// installed as a global function before the script body executes.
func (b *Bridge) Run(script, entryPoint string, input interface{}) (*Result, error) {
	vm := goja.New()

	var logsMu sync.Mutex
	var logs []string
	console := vm.NewObject()
	_ = console.Set("log", func(call goja.FunctionCall) goja.Value {
		args := make([]string, len(call.Arguments))
		for i, arg := range call.Arguments {
			args[i] = arg.String()
		}
		logsMu.Lock()
		logs = append(logs, fmt.Sprint(args))
		logsMu.Unlock()
		return goja.Undefined()
	})
	_ = vm.Set("console", console)

	if err := b.installCapabilities(vm); err != nil {
		return nil, err
	}

	_ = vm.Set("input", vm.ToValue(input))

	if _, err := vm.RunString(script); err != nil {
		return nil, fmt.Errorf("script: run: %w", err)
	}

	entry, ok := goja.AssertFunction(vm.Get(entryPoint))
	if !ok {
		return nil, fmt.Errorf("script: entry point %q is not a function", entryPoint)
	}

	resultVal, err := entry(goja.Undefined(), vm.Get("input"))
	if err != nil {
		return nil, fmt.Errorf("script: call %s: %w", entryPoint, err)
	}

	output, err := exportJSON(resultVal)
	if err != nil {
		return nil, fmt.Errorf("script: export result: %w", err)
	}

	return &Result{Output: output, Logs: logs}, nil
}

// Validate compiles script without running it.
func (b *Bridge) Validate(script string) error {
	if _, err := goja.Compile("script.js", script, false); err != nil {
		return fmt.Errorf("script: invalid: %w", err)
	}
	return nil
}

func exportJSON(v goja.Value) (interface{}, error) {
	if v == nil || goja.IsUndefined(v) || goja.IsNull(v) {
		return nil, nil
	}
	exported := v.Export()
	data, err := json.Marshal(exported)
	if err != nil {
		return nil, err
	}
	var out interface{}
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (b *Bridge) installCapabilities(vm *goja.Runtime) error {
	if err := vm.Set("spawnEntity", func() uint32 {
		return uint32(b.world.SpawnEntity())
	}); err != nil {
		return err
	}

	if err := vm.Set("setComponent", func(entity uint32, name string, value interface{}) bool {
		return b.world.SetComponent(ecs.EntityID(entity), name, value) == nil
	}); err != nil {
		return err
	}

	if err := vm.Set("getComponent", func(entity uint32, name string) interface{} {
		value, ok := b.world.GetComponent(ecs.EntityID(entity), name)
		if !ok {
			return goja.Undefined()
		}
		return value
	}); err != nil {
		return err
	}

	if err := vm.Set("subscribe", func(busName string, callback func(goja.FunctionCall) goja.Value) {
		bus := eventbus.GetOrCreateBus[map[string]interface{}](b.world.Buses, busName)
		bus.Subscribe(func(payload map[string]interface{}) {
			// Subscriber exceptions are caught and logged, never allowed to
			// abort the sender (spec.md section 4.6, error propagation policy).
			defer func() { _ = recover() }()
			callback(goja.FunctionCall{Arguments: []goja.Value{vm.ToValue(payload)}})
		})
	}); err != nil {
		return err
	}

	if err := vm.Set("invokeWorldgen", func(name string, params interface{}) interface{} {
		data, err := json.Marshal(params)
		if err != nil {
			panic(vm.ToValue(err.Error()))
		}
		mapJSON, err := b.worldgen.Invoke(name, data)
		if err != nil {
			panic(vm.ToValue(err.Error()))
		}
		var out interface{}
		if err := json.Unmarshal(mapJSON, &out); err != nil {
			panic(vm.ToValue(err.Error()))
		}
		return out
	}); err != nil {
		return err
	}

	if err := vm.Set("scheduleJob", func(jobType string, priority float64) uint32 {
		if b.board == nil {
			return 0
		}
		id := b.world.SpawnEntity()
		tick := uint64(0)
		if b.ticks != nil {
			tick = b.ticks()
		}
		b.board.Add(&job.Job{ID: id, JobType: jobType, State: job.StatePending, Priority: priority}, tick)
		return uint32(id)
	}); err != nil {
		return err
	}

	return nil
}
