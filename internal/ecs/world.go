// Package ecs implements the entity-component store, component registry,
// and cell-key spatial identifier from spec.md sections 3 and 4.2-4.4.
// Grounded on original_source's engine/core/src/ecs/world/*.rs (component,
// mode, save_load, job_handlers) for the World type's field layout and
// exact semantics.
package ecs

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"sync"

	"github.com/ashfall-games/simcore/internal/config"
	"github.com/ashfall-games/simcore/internal/engineerr"
	"github.com/ashfall-games/simcore/internal/eventbus"
)

// EntityID is a 32-bit identifier, monotonically allocated and never reused
// while alive (spec.md section 3).
type EntityID uint32

// StockpileResources maps resource kind to amount; every amount must stay
// non-negative (spec.md section 3, "Stockpile").
type StockpileResources map[string]float64

// RegionAssignment is the component World's region queries are derived
// from: {cell, region_id}.
type RegionAssignment struct {
	Cell     CellKey `json:"cell"`
	RegionID string  `json:"region_id"`
}

const (
	stockpileComponent         = "Stockpile"
	regionAssignmentComponent = "RegionAssignment"
)

// World is the entity-component store: live entity set, per-component data
// columns, current mode, time-of-day clock, and the event-bus registry it
// owns per the system overview table.
type World struct {
	mu sync.RWMutex

	registry    *ComponentRegistry
	currentMode config.Mode

	live       map[EntityID]bool
	nextEntity EntityID

	// components maps component name -> entity -> decoded JSON value
	// (map[string]interface{}, []interface{}, string, float64, bool, or nil).
	components map[string]map[EntityID]interface{}

	timeOfDayMinutes int // minutes since midnight, wraps at 1440
	turn             uint64

	gameMap *Map

	Buses *eventbus.Registry
}

// NewWorld creates an empty world bound to registry, starting in mode.
func NewWorld(registry *ComponentRegistry, mode config.Mode) *World {
	return &World{
		registry:    registry,
		currentMode: mode,
		live:        make(map[EntityID]bool),
		components:  make(map[string]map[EntityID]interface{}),
		Buses:       eventbus.NewRegistry(),
	}
}

// Mode returns the world's current mode.
func (w *World) Mode() config.Mode {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.currentMode
}

// SpawnEntity allocates a fresh id and inserts it into the live set with no
// components.
func (w *World) SpawnEntity() EntityID {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.nextEntity++
	id := w.nextEntity
	w.live[id] = true
	return id
}

// DespawnEntity removes id from the live set and from every component
// column.
func (w *World) DespawnEntity(id EntityID) {
	w.mu.Lock()
	defer w.mu.Unlock()
	delete(w.live, id)
	for _, column := range w.components {
		delete(column, id)
	}
}

// IsLive reports whether id is currently a live entity.
func (w *World) IsLive(id EntityID) bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.live[id]
}

// SetComponent upserts value for (id, name). Fails if name is unregistered,
// the world's current mode is not in the component's schema modes, or value
// fails schema validation.
func (w *World) SetComponent(id EntityID, name string, value interface{}) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.registry.isRegistered(name) {
		return engineerr.UnregisteredComponent(name)
	}
	if !w.registry.allowsMode(name, w.currentMode) {
		return engineerr.ModeDisallowed(name, string(w.currentMode))
	}
	if violations := w.registry.validate(name, value); len(violations) > 0 {
		return engineerr.SchemaValidationFailed(name, violations)
	}

	column, ok := w.components[name]
	if !ok {
		column = make(map[EntityID]interface{})
		w.components[name] = column
	}
	column[id] = value
	return nil
}

// GetComponent reads the current value of (id, name).
func (w *World) GetComponent(id EntityID, name string) (interface{}, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	column, ok := w.components[name]
	if !ok {
		return nil, false
	}
	v, ok := column[id]
	return v, ok
}

// GetEntitiesWithComponent returns every entity carrying name, ordered by
// ascending id.
func (w *World) GetEntitiesWithComponent(name string) []EntityID {
	w.mu.RLock()
	defer w.mu.RUnlock()
	column := w.components[name]
	out := make([]EntityID, 0, len(column))
	for id := range column {
		out = append(out, id)
	}
	sortEntityIDs(out)
	return out
}

// GetEntitiesWithComponents returns the intersection of entities carrying
// every one of names, ordered by ascending id.
func (w *World) GetEntitiesWithComponents(names []string) []EntityID {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if len(names) == 0 {
		return nil
	}
	var out []EntityID
	first := w.components[names[0]]
	for id := range first {
		hasAll := true
		for _, name := range names[1:] {
			if _, ok := w.components[name][id]; !ok {
				hasAll = false
				break
			}
		}
		if hasAll {
			out = append(out, id)
		}
	}
	sortEntityIDs(out)
	return out
}

func sortEntityIDs(ids []EntityID) {
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
}

// SetMode updates the current mode and drops every component column whose
// schema does not list mode. Mode-switch is destructive by design.
func (w *World) SetMode(mode config.Mode) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.currentMode = mode
	allowed := make(map[string]bool)
	for _, name := range w.registry.ComponentsForMode(mode) {
		allowed[name] = true
	}
	for name := range w.components {
		if !allowed[name] {
			delete(w.components, name)
		}
	}
}

// UnregisterComponentAndCleanup removes a component's schema and drops its
// data column.
func (w *World) UnregisterComponentAndCleanup(name string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.registry.Unregister(name)
	delete(w.components, name)
}

// ModifyStockpileResource reads entity id's Stockpile component, applies
// delta to kind, and writes it back. Fails if the result would be negative.
func (w *World) ModifyStockpileResource(id EntityID, kind string, delta float64) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	column := w.components[stockpileComponent]
	var resources map[string]interface{}
	if column != nil {
		if raw, ok := column[id]; ok {
			if m, ok := raw.(map[string]interface{}); ok {
				if res, ok := m["resources"].(map[string]interface{}); ok {
					resources = res
				}
			}
		}
	}
	if resources == nil {
		resources = make(map[string]interface{})
	}

	current, _ := toFloat(resources[kind])
	next := current + delta
	if next < 0 {
		return fmt.Errorf("stockpile %d: %s would go negative (%v + %v = %v)", id, kind, current, delta, next)
	}
	resources[kind] = next

	if column == nil {
		column = make(map[EntityID]interface{})
		w.components[stockpileComponent] = column
	}
	column[id] = map[string]interface{}{"resources": resources}
	return nil
}

func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}

// EntitiesInRegion returns every entity whose RegionAssignment names
// regionID, ordered by ascending id.
func (w *World) EntitiesInRegion(regionID string) []EntityID {
	w.mu.RLock()
	defer w.mu.RUnlock()
	var out []EntityID
	for id, raw := range w.components[regionAssignmentComponent] {
		if assignment, ok := decodeRegionAssignment(raw); ok && assignment.RegionID == regionID {
			out = append(out, id)
		}
	}
	sortEntityIDs(out)
	return out
}

// CellsInRegion returns the distinct cells assigned to regionID.
func (w *World) CellsInRegion(regionID string) []CellKey {
	w.mu.RLock()
	defer w.mu.RUnlock()
	seen := make(map[string]CellKey)
	for _, raw := range w.components[regionAssignmentComponent] {
		assignment, ok := decodeRegionAssignment(raw)
		if !ok || assignment.RegionID != regionID {
			continue
		}
		seen[assignment.Cell.String()] = assignment.Cell
	}
	out := make([]CellKey, 0, len(seen))
	for _, c := range seen {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].String() < out[j].String() })
	return out
}

// ApplyGeneratedMap parses a worldgen plugin's output document, installs
// its topology as the world's map, and spawns any entities the document
// declares, setting their Position component (spec.md section 4.7).
// Grounded on worldgen_integration.rs's apply_generated_map call.
func (w *World) ApplyGeneratedMap(data []byte) error {
	var gm GeneratedMap
	if err := json.Unmarshal(data, &gm); err != nil {
		return fmt.Errorf("apply generated map: %w", err)
	}
	m, err := BuildMap(gm)
	if err != nil {
		return err
	}
	w.mu.Lock()
	w.gameMap = m
	w.mu.Unlock()

	for _, ge := range gm.Entities {
		id := w.SpawnEntity()
		position, err := decodeGeneric(ge.Position)
		if err != nil {
			return fmt.Errorf("apply generated map: entity %d: %w", id, err)
		}
		if err := w.SetComponent(id, "Position", position); err != nil {
			return fmt.Errorf("apply generated map: entity %d: %w", id, err)
		}
		for name, value := range ge.Components {
			if err := w.SetComponent(id, name, value); err != nil {
				return fmt.Errorf("apply generated map: entity %d: %w", id, err)
			}
		}
	}
	return nil
}

// decodeGeneric round-trips v through JSON so component columns hold the
// same decoded-JSON representation (map[string]interface{}, []interface{},
// string, float64, bool, nil) regardless of the Go type that produced it.
func decodeGeneric(v interface{}) (interface{}, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out interface{}
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetMap returns the world's currently installed map, if any.
func (w *World) GetMap() (*Map, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.gameMap, w.gameMap != nil
}

func decodeRegionAssignment(raw interface{}) (RegionAssignment, bool) {
	data, err := json.Marshal(raw)
	if err != nil {
		return RegionAssignment{}, false
	}
	var assignment RegionAssignment
	if err := json.Unmarshal(data, &assignment); err != nil {
		return RegionAssignment{}, false
	}
	return assignment, true
}

// Tick advances the time-of-day clock by one minute, wrapping at 1440, and
// increments the turn counter persisted alongside it.
func (w *World) Tick() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.timeOfDayMinutes = (w.timeOfDayMinutes + 1) % 1440
	w.turn++
}

// GetTimeOfDay returns minutes since midnight, in [0, 1440).
func (w *World) GetTimeOfDay() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.timeOfDayMinutes
}

// GetTurn returns the number of Tick() calls this world has processed.
func (w *World) GetTurn() uint64 {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.turn
}

// timeOfDay is the persisted {hour, minute} shape spec.md sections 3 and 6.7
// describe, distinct from the in-memory minutes-since-midnight
// representation Tick()/GetTimeOfDay() use internally.
type timeOfDay struct {
	Hour   int `json:"hour"`
	Minute int `json:"minute"`
}

// snapshot is the serializable shape of a World: entities, components,
// time-of-day, mode, event-bus tails, and turn, per spec.md section 6.7.
// The registry is injected post-load, not serialized, per
// original_source's save_load.rs. ComponentVersions records the registry
// version each component was validated under at save time, so LoadFromFile
// can tell which components predate the registry's current schema.
type snapshot struct {
	NextEntity        EntityID                             `json:"next_entity"`
	Live              []EntityID                           `json:"live"`
	Components        map[string]map[EntityID]interface{}  `json:"components"`
	ComponentVersions map[string]string                    `json:"component_versions"`
	TimeOfDay         timeOfDay                            `json:"time_of_day"`
	CurrentMode       config.Mode                          `json:"current_mode"`
	EventBusTails     map[string]eventbus.RawTail           `json:"event_bus_tails"`
	Turn              uint64                               `json:"turn"`
}

// SaveToFile writes a JSON snapshot of entities, components, time-of-day,
// event-bus tails, and turn to path.
func (w *World) SaveToFile(path string) error {
	w.mu.RLock()
	snap := snapshot{
		NextEntity:  w.nextEntity,
		Components:  w.components,
		CurrentMode: w.currentMode,
		TimeOfDay: timeOfDay{
			Hour:   w.timeOfDayMinutes / 60,
			Minute: w.timeOfDayMinutes % 60,
		},
		Turn: w.turn,
	}
	snap.ComponentVersions = make(map[string]string, len(w.components))
	for name := range w.components {
		if decl, ok := w.registry.GetSchemaByName(name); ok {
			snap.ComponentVersions[name] = decl.Version
		}
	}
	for id := range w.live {
		snap.Live = append(snap.Live, id)
	}
	w.mu.RUnlock()
	sortEntityIDs(snap.Live)

	tails, err := w.Buses.Tails()
	if err != nil {
		return fmt.Errorf("save world: %w", err)
	}
	snap.EventBusTails = tails

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// LoadFromFile reads a JSON snapshot from path and rebinds it to registry,
// which is injected rather than deserialized. Every loaded component is
// revalidated against registry's current schema; a component whose stored
// version predates the registry's declared version is migrated first, using
// the matching MigrateFunc from migrations (keyed by component name) if the
// caller supplied one. A stale component with no migration registered is
// revalidated as-is, matching original_source's save_load.rs (a bare
// deserialize with no automatic migration) for the case nothing was asked
// to change it.
func LoadFromFile(path string, registry *ComponentRegistry, migrations ...map[string]MigrateFunc) (*World, error) {
	var migrate map[string]MigrateFunc
	if len(migrations) > 0 {
		migrate = migrations[0]
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var snap snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, err
	}

	w := &World{
		registry:         registry,
		currentMode:      snap.CurrentMode,
		live:             make(map[EntityID]bool, len(snap.Live)),
		components:       snap.Components,
		nextEntity:       snap.NextEntity,
		timeOfDayMinutes: snap.TimeOfDay.Hour*60 + snap.TimeOfDay.Minute,
		turn:             snap.Turn,
		Buses:            eventbus.NewRegistry(),
	}
	if w.components == nil {
		w.components = make(map[string]map[EntityID]interface{})
	}
	for _, id := range snap.Live {
		w.live[id] = true
	}

	if err := w.reviveComponents(snap.ComponentVersions, migrate); err != nil {
		return nil, fmt.Errorf("load world: %w", err)
	}

	if snap.EventBusTails != nil {
		if err := w.Buses.RestoreTails(snap.EventBusTails); err != nil {
			return nil, fmt.Errorf("load world: %w", err)
		}
	}
	return w, nil
}

// reviveComponents migrates every component column whose stored version
// predates registry's current declared version (when migrate supplies a
// MigrateFunc for that name), then revalidates every stored value against
// the current schema. An unregistered component is dropped rather than
// rejected, matching SetMode's "unknown components don't survive" handling.
func (w *World) reviveComponents(storedVersions map[string]string, migrate map[string]MigrateFunc) error {
	for name, column := range w.components {
		decl, ok := w.registry.GetSchemaByName(name)
		if !ok {
			delete(w.components, name)
			continue
		}

		if stored := storedVersions[name]; stored != "" && stored != decl.Version {
			if fn, ok := migrate[name]; ok {
				for id, old := range column {
					migrated, err := fn(old)
					if err != nil {
						return fmt.Errorf("migrate component %s entity %d: %w", name, id, err)
					}
					column[id] = migrated
				}
			}
		}

		for id, value := range column {
			if violations := w.registry.validate(name, value); len(violations) > 0 {
				return engineerr.SchemaValidationFailed(fmt.Sprintf("%s (entity %d)", name, id), violations)
			}
		}
	}
	return nil
}
