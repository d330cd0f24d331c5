package job

import (
	"encoding/json"
	"fmt"

	"github.com/PaesslerAG/gval"
	"github.com/PaesslerAG/jsonpath"
	"github.com/ashfall-games/simcore/internal/ecs"
	"github.com/tidwall/gjson"
)

// ConditionalChildSpec pairs a job type to conditionally spawn with a
// boolean expression evaluated over a snapshot of the parent's entity
// components, grounded on should_spawn_conditional_child (re-exported by
// original_source's systems/job/system/mod.rs; its defining orchestrator.rs
// was filtered from the retrieval pack, so the expression language below is
// this implementation's resolution of that hook, not a port of it).
type ConditionalChildSpec struct {
	JobType    string   `json:"job_type"`
	Condition  string   `json:"condition"`
	Components []string `json:"components"`
}

// EntitySnapshot renders the named components of entity as a single
// document, keyed by component name, and its JSON encoding for path-based
// lookups.
func EntitySnapshot(world *ecs.World, entity ecs.EntityID, componentNames []string) (map[string]interface{}, []byte, error) {
	snapshot := make(map[string]interface{}, len(componentNames))
	for _, name := range componentNames {
		if v, ok := world.GetComponent(entity, name); ok {
			snapshot[name] = v
		}
	}
	raw, err := json.Marshal(snapshot)
	if err != nil {
		return nil, nil, err
	}
	return snapshot, raw, nil
}

// ResolveComponentPath runs a JSONPath expression (e.g. "$.Stockpile.wood")
// against a snapshot produced by EntitySnapshot.
func ResolveComponentPath(raw []byte, path string) (interface{}, error) {
	var doc interface{}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}
	return jsonpath.Get(path, doc)
}

// GjsonField runs a gjson dotted-path lookup (e.g. "Stockpile.wood")
// against a snapshot produced by EntitySnapshot, returning nil if absent.
func GjsonField(raw []byte, path string) interface{} {
	return gjson.GetBytes(raw, path).Value()
}

// EvaluateCondition runs a gval boolean expression against snapshot's
// top-level component names as variables, e.g. "Stockpile.wood >= 5".
func EvaluateCondition(expr string, snapshot map[string]interface{}) (bool, error) {
	value, err := gval.Full().Evaluate(expr, snapshot)
	if err != nil {
		return false, fmt.Errorf("evaluate condition %q: %w", expr, err)
	}
	result, ok := value.(bool)
	if !ok {
		return false, fmt.Errorf("condition %q did not evaluate to a boolean", expr)
	}
	return result, nil
}

// ShouldSpawnConditionalChild snapshots spec.Components off entity and
// reports whether spec.Condition evaluates true over that snapshot.
func ShouldSpawnConditionalChild(world *ecs.World, entity ecs.EntityID, spec ConditionalChildSpec) (bool, error) {
	snapshot, _, err := EntitySnapshot(world, entity, spec.Components)
	if err != nil {
		return false, err
	}
	return EvaluateCondition(spec.Condition, snapshot)
}
