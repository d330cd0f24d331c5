package ecs

import (
	"fmt"
	"sync"

	"github.com/ashfall-games/simcore/internal/config"
	"github.com/ashfall-games/simcore/internal/ecs/schema"
	"github.com/ashfall-games/simcore/internal/engineerr"
)

// ComponentSchema is the external declaration of one component's shape,
// allowed modes, and version, per spec.md section 4.1.
type ComponentSchema struct {
	Name    string
	Schema  map[string]interface{}
	Modes   []config.Mode
	Version string
}

// MigrateFunc rewrites a legacy component value into the current shape.
type MigrateFunc func(old interface{}) (interface{}, error)

type registeredSchema struct {
	decl     ComponentSchema
	compiled *schema.Schema
}

// ComponentRegistry is the catalog of schemas, modes, versions, and
// migrations (spec.md section 4.1). Safe for concurrent use: schema reads
// take a short read lock, hot-swap is serialized under a write lock.
type ComponentRegistry struct {
	mu      sync.RWMutex
	schemas map[string]*registeredSchema
}

// NewComponentRegistry creates an empty registry.
func NewComponentRegistry() *ComponentRegistry {
	return &ComponentRegistry{schemas: make(map[string]*registeredSchema)}
}

// RegisterExternalSchema inserts or replaces a component's schema. Replacing
// an existing schema triggers no data migration (use
// UpdateExternalSchemaWithMigration for that).
func (r *ComponentRegistry) RegisterExternalSchema(decl ComponentSchema) error {
	compiled, err := schema.Compile(decl.Schema)
	if err != nil {
		return engineerr.InvalidSchema(decl.Name, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.schemas[decl.Name] = &registeredSchema{decl: decl, compiled: compiled}
	return nil
}

// GetSchemaByName returns the registered schema declaration, if any.
func (r *ComponentRegistry) GetSchemaByName(name string) (ComponentSchema, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rs, ok := r.schemas[name]
	if !ok {
		return ComponentSchema{}, false
	}
	return rs.decl, true
}

// ComponentsForMode returns every component name allowed in the given mode.
func (r *ComponentRegistry) ComponentsForMode(mode config.Mode) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []string
	for name, rs := range r.schemas {
		for _, m := range rs.decl.Modes {
			if m == mode {
				out = append(out, name)
				break
			}
		}
	}
	return out
}

// AllModes returns the union of modes declared across every registered
// component schema.
func (r *ComponentRegistry) AllModes() []config.Mode {
	r.mu.RLock()
	defer r.mu.RUnlock()
	seen := make(map[config.Mode]bool)
	var out []config.Mode
	for _, rs := range r.schemas {
		for _, m := range rs.decl.Modes {
			if !seen[m] {
				seen[m] = true
				out = append(out, m)
			}
		}
	}
	return out
}

// allowsMode reports whether the named component's schema lists the mode.
// Returns false (disallowed) when the component is unregistered.
func (r *ComponentRegistry) allowsMode(name string, mode config.Mode) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rs, ok := r.schemas[name]
	if !ok {
		return false
	}
	for _, m := range rs.decl.Modes {
		if m == mode {
			return true
		}
	}
	return false
}

// validate runs the compiled schema against a decoded JSON value, returning
// every violation found. A component with no registered schema validates
// trivially (no violations) — the caller is responsible for rejecting
// unregistered components before calling validate.
func (r *ComponentRegistry) validate(name string, value interface{}) []string {
	r.mu.RLock()
	rs, ok := r.schemas[name]
	r.mu.RUnlock()
	if !ok || rs.compiled == nil {
		return nil
	}
	return rs.compiled.Validate(value)
}

// isRegistered reports whether a component name has a registered schema.
func (r *ComponentRegistry) isRegistered(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.schemas[name]
	return ok
}

// UpdateExternalSchemaWithMigration replaces a component's schema and
// rewrites every stored value for that component through migrate. Atomic:
// either every record migrates successfully and the schema swaps, or
// nothing changes. data is the caller-owned column (entity id -> legacy
// value) to migrate in place; the registry writes the migrated values back
// into the same map on success.
func (r *ComponentRegistry) UpdateExternalSchemaWithMigration(
	decl ComponentSchema,
	data map[EntityID]interface{},
	migrate MigrateFunc,
) error {
	compiled, err := schema.Compile(decl.Schema)
	if err != nil {
		return engineerr.InvalidSchema(decl.Name, err)
	}

	migrated := make(map[EntityID]interface{}, len(data))
	for id, old := range data {
		newVal, err := migrate(old)
		if err != nil {
			return fmt.Errorf("migrate entity %d: %w", id, err)
		}
		migrated[id] = newVal
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.schemas[decl.Name] = &registeredSchema{decl: decl, compiled: compiled}
	for id, v := range migrated {
		data[id] = v
	}
	return nil
}

// Unregister removes a component's schema from the registry entirely. The
// caller (World.UnregisterComponentAndCleanup) is responsible for dropping
// the corresponding data column.
func (r *ComponentRegistry) Unregister(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.schemas, name)
}
