package job

import (
	"testing"

	"github.com/ashfall-games/simcore/internal/ecs"
	"github.com/stretchr/testify/assert"
)

func TestEffectRegistryDispatchesByExactAction(t *testing.T) {
	r := NewEffectRegistry()
	var applied []Effect
	r.Register("ModifyTerrain", func(world *ecs.World, entity ecs.EntityID, effect Effect) {
		applied = append(applied, effect)
	})

	r.ProcessEffects(nil, 1, []Effect{
		{Action: "ModifyTerrain", From: "rock", To: "tunnel"},
		{Action: "Unregistered"},
	})

	assert.Len(t, applied, 1)
	assert.Equal(t, "rock", applied[0].From)
	assert.Equal(t, "tunnel", applied[0].To)
}

func TestEffectRegistryDoesNotNormalizeAction(t *testing.T) {
	r := NewEffectRegistry()
	called := false
	r.Register("modifyterrain", func(world *ecs.World, entity ecs.EntityID, effect Effect) { called = true })

	r.ProcessEffects(nil, 1, []Effect{{Action: "ModifyTerrain"}})
	assert.False(t, called, "effect action keys must match exactly, not case-insensitively")
}
