package job

import (
	"sync"

	"github.com/ashfall-games/simcore/internal/ecs"
)

// Effect is a declarative world mutation associated with job completion
// (spec.md section 4.6, "Effect" in the glossary), shaped exactly like
// original_source's systems/job/job_type.rs JobEffect: an action name plus
// optional from/to fields (e.g. ModifyTerrain{from:"rock", to:"tunnel"}).
type Effect struct {
	Action string `json:"action"`
	From   string `json:"from,omitempty"`
	To     string `json:"to,omitempty"`
}

// EffectHandler applies one effect to entity within world.
type EffectHandler func(world *ecs.World, entity ecs.EntityID, effect Effect)

// EffectRegistry maps action names to EffectHandlers, grounded on
// original_source's systems/job/effect_processor_registry.rs. Unlike
// HandlerRegistry, action names are matched exactly (no normalization) —
// the original registry never normalizes effect action keys.
type EffectRegistry struct {
	mu       sync.RWMutex
	handlers map[string]EffectHandler
}

// NewEffectRegistry creates an empty effect registry.
func NewEffectRegistry() *EffectRegistry {
	return &EffectRegistry{handlers: make(map[string]EffectHandler)}
}

// Register installs handler under action, replacing any existing handler
// for that action.
func (r *EffectRegistry) Register(action string, handler EffectHandler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[action] = handler
}

// ProcessEffects applies every effect in effects to entity within world,
// skipping effects whose action has no registered handler.
func (r *EffectRegistry) ProcessEffects(world *ecs.World, entity ecs.EntityID, effects []Effect) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, effect := range effects {
		if handler, ok := r.handlers[effect.Action]; ok {
			handler(world, entity, effect)
		}
	}
}
