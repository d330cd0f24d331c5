package job

import (
	"testing"

	"github.com/ashfall-games/simcore/internal/config"
	"github.com/ashfall-games/simcore/internal/ecs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newConditionTestWorld(t *testing.T) (*ecs.World, ecs.EntityID) {
	t.Helper()
	registry := ecs.NewComponentRegistry()
	require.NoError(t, registry.RegisterExternalSchema(ecs.ComponentSchema{
		Name:    "Health",
		Version: "1",
		Modes:   []config.Mode{config.ModeColony},
		Schema:  map[string]interface{}{"type": "object"},
	}))
	world := ecs.NewWorld(registry, config.ModeColony)
	id := world.SpawnEntity()
	require.NoError(t, world.SetComponent(id, "Health", map[string]interface{}{"current": 3.0, "max": 10.0}))
	return world, id
}

func TestEntitySnapshotCollectsRequestedComponents(t *testing.T) {
	world, id := newConditionTestWorld(t)
	snapshot, raw, err := EntitySnapshot(world, id, []string{"Health"})
	require.NoError(t, err)
	assert.Contains(t, snapshot, "Health")
	assert.Contains(t, string(raw), "current")
}

func TestEntitySnapshotOmitsMissingComponents(t *testing.T) {
	world, id := newConditionTestWorld(t)
	snapshot, _, err := EntitySnapshot(world, id, []string{"Nonexistent"})
	require.NoError(t, err)
	assert.NotContains(t, snapshot, "Nonexistent")
}

func TestGjsonFieldReadsDottedPath(t *testing.T) {
	world, id := newConditionTestWorld(t)
	_, raw, err := EntitySnapshot(world, id, []string{"Health"})
	require.NoError(t, err)
	assert.Equal(t, 3.0, GjsonField(raw, "Health.current"))
}

func TestResolveComponentPathRunsJSONPath(t *testing.T) {
	world, id := newConditionTestWorld(t)
	_, raw, err := EntitySnapshot(world, id, []string{"Health"})
	require.NoError(t, err)
	value, err := ResolveComponentPath(raw, "$.Health.max")
	require.NoError(t, err)
	assert.Equal(t, 10.0, value)
}

func TestEvaluateConditionEvaluatesBooleanExpression(t *testing.T) {
	world, id := newConditionTestWorld(t)
	snapshot, _, err := EntitySnapshot(world, id, []string{"Health"})
	require.NoError(t, err)

	ok, err := EvaluateCondition("Health.current < Health.max", snapshot)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = EvaluateCondition("Health.current > Health.max", snapshot)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestEvaluateConditionRejectsNonBooleanResult(t *testing.T) {
	world, id := newConditionTestWorld(t)
	snapshot, _, err := EntitySnapshot(world, id, []string{"Health"})
	require.NoError(t, err)

	_, err = EvaluateCondition("Health.current", snapshot)
	assert.Error(t, err)
}

func TestShouldSpawnConditionalChildEvaluatesAgainstWorldState(t *testing.T) {
	world, id := newConditionTestWorld(t)
	spec := ConditionalChildSpec{
		JobType:    "emergency_heal",
		Condition:  "Health.current < 5",
		Components: []string{"Health"},
	}
	spawn, err := ShouldSpawnConditionalChild(world, id, spec)
	require.NoError(t, err)
	assert.True(t, spawn)
}

func TestProcessSpawnsConditionalChildOnCompletion(t *testing.T) {
	world, id := newConditionTestWorld(t)
	j := &Job{
		ID: id, State: StateInProgress, Progress: 1, Duration: 1,
		ConditionalChildren: []ConditionalChildSpec{
			{JobType: "emergency_heal", Condition: "Health.current < 5", Components: []string{"Health"}},
		},
	}
	out := Process(ProcessContext{World: world}, 0, j)
	require.Equal(t, StateComplete, out.State)
	require.Len(t, out.Children, 1)
	assert.Equal(t, "emergency_heal", out.Children[0].JobType)
	assert.Equal(t, StatePending, out.Children[0].State)
}
