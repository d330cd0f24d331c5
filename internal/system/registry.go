// Package system implements the named system registry from spec.md section
// 4.5, grounded on original_source's engine/core/src/ecs/system.rs.
package system

import (
	"sort"
	"sync"

	"github.com/ashfall-games/simcore/internal/ecs"
	"github.com/ashfall-games/simcore/internal/engineerr"
)

// System runs one step of simulation logic against the world.
type System interface {
	Name() string
	Run(world *ecs.World)
}

// Registry stores systems by name. RunSystem temporarily removes a system
// before invoking it and reinserts it afterward, breaking aliasing between
// the registry and the running system the way the Rust take/reinsert
// pattern does for the borrow checker — in Go this instead guards against a
// system's Run method reentrantly looking itself up mid-run.
type Registry struct {
	mu      sync.Mutex
	systems map[string]System
}

// NewRegistry creates an empty system registry.
func NewRegistry() *Registry {
	return &Registry{systems: make(map[string]System)}
}

// Register inserts or replaces a system under its own Name().
func (r *Registry) Register(s System) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.systems[s.Name()] = s
}

// take removes and returns the named system, for exclusive use during Run.
func (r *Registry) take(name string) (System, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.systems[name]
	if ok {
		delete(r.systems, name)
	}
	return s, ok
}

func (r *Registry) reinsert(name string, s System) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.systems[name] = s
}

// RunSystem removes name from the registry, runs it against world, and
// reinserts it. Missing name is an error.
func (r *Registry) RunSystem(name string, world *ecs.World) error {
	s, ok := r.take(name)
	if !ok {
		return engineerr.SystemNotFound(name)
	}
	defer r.reinsert(name, s)
	s.Run(world)
	return nil
}

// ListSystems returns every registered system name, sorted.
func (r *Registry) ListSystems() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.systems))
	for name := range r.systems {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
