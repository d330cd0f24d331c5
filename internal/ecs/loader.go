package ecs

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ashfall-games/simcore/internal/config"
)

// schemaDocument is the on-disk shape of a component schema file (spec.md
// section 6.2): a JSON Schema body plus the two extra top-level keys
// (title, modes) a standalone validator checks for before the body is
// even compiled.
type schemaDocument struct {
	Title string        `json:"title"`
	Modes []config.Mode `json:"modes"`
}

// LoadComponentSchemasFromDir scans dir for .json files and parses each as
// a component schema declaration, rejecting a file if title is missing,
// modes is missing/empty or names a value outside config.KnownModes, or
// the schema or one of its properties has minimum > maximum.
// Grounded on job.LoadTypeDefinitionsFromDir's scan-and-parse shape.
func LoadComponentSchemasFromDir(dir string) ([]ComponentSchema, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var decls []ComponentSchema
	for _, entry := range entries {
		if entry.IsDir() || strings.ToLower(filepath.Ext(entry.Name())) != ".json" {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}

		var doc schemaDocument
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("ecs: parse schema %s: %w", path, err)
		}
		if strings.TrimSpace(doc.Title) == "" {
			return nil, fmt.Errorf("ecs: schema %s: title is required", path)
		}
		if len(doc.Modes) == 0 {
			return nil, fmt.Errorf("ecs: schema %s: modes is required", path)
		}
		for _, mode := range doc.Modes {
			if !config.KnownModes[mode] {
				return nil, fmt.Errorf("ecs: schema %s: unknown mode %q", path, mode)
			}
		}

		var body map[string]interface{}
		if err := json.Unmarshal(data, &body); err != nil {
			return nil, fmt.Errorf("ecs: parse schema %s: %w", path, err)
		}
		delete(body, "title")
		delete(body, "modes")

		if violatesMinMax(body) {
			return nil, fmt.Errorf("ecs: schema %s: minimum > maximum", path)
		}
		if properties, ok := body["properties"].(map[string]interface{}); ok {
			for _, prop := range properties {
				propMap, ok := prop.(map[string]interface{})
				if ok && violatesMinMax(propMap) {
					return nil, fmt.Errorf("ecs: schema %s: a property has minimum > maximum", path)
				}
			}
		}

		decls = append(decls, ComponentSchema{
			Name:   doc.Title,
			Schema: body,
			Modes:  doc.Modes,
		})
	}
	return decls, nil
}

func violatesMinMax(m map[string]interface{}) bool {
	minimum, hasMin := m["minimum"].(float64)
	maximum, hasMax := m["maximum"].(float64)
	return hasMin && hasMax && minimum > maximum
}
