package job

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// TypeDefinition is a loaded job type declaration, shaped per spec.md
// section 6.3: name, requirements (as bare kind strings, e.g.
// "Tool:Pickaxe"), duration, and effects. Grounded on original_source's
// systems/job/job_type.rs JobType.
type TypeDefinition struct {
	Name         string   `json:"name" yaml:"name" toml:"name"`
	Requirements []string `json:"requirements,omitempty" yaml:"requirements,omitempty" toml:"requirements,omitempty"`
	Duration     float64  `json:"duration,omitempty" yaml:"duration,omitempty" toml:"duration,omitempty"`
	Effects      []Effect `json:"effects,omitempty" yaml:"effects,omitempty" toml:"effects,omitempty"`
}

// LoadTypeDefinitionsFromDir scans dir and parses every .json, .yaml/.yml,
// and .toml file as a TypeDefinition. Unknown extensions are ignored; a
// missing directory yields an empty, non-error result. Grounded on
// original_source's systems/job/loader.rs
// load_job_types_from_dir.
func LoadTypeDefinitionsFromDir(dir string) ([]TypeDefinition, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var defs []TypeDefinition
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		ext := strings.ToLower(filepath.Ext(entry.Name()))

		var def TypeDefinition
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}

		switch ext {
		case ".json":
			err = json.Unmarshal(data, &def)
		case ".yaml", ".yml":
			err = yaml.Unmarshal(data, &def)
		case ".toml":
			err = toml.Unmarshal(data, &def)
		default:
			continue
		}
		if err != nil {
			return nil, err
		}
		defs = append(defs, def)
	}
	return defs, nil
}

// Recipe is the crafting/production document from spec.md section 6.4.
type Recipe struct {
	Name     string           `json:"name"`
	Inputs   []ResourceAmount `json:"inputs"`
	Outputs  []ResourceAmount `json:"outputs"`
	Duration int64            `json:"duration"`
}

// LoadRecipesFromDir scans dir for .json files and parses each as a
// Recipe. Unrecognized extensions are ignored.
func LoadRecipesFromDir(dir string) ([]Recipe, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var recipes []Recipe
	for _, entry := range entries {
		if entry.IsDir() || strings.ToLower(filepath.Ext(entry.Name())) != ".json" {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, err
		}
		var r Recipe
		if err := json.Unmarshal(data, &r); err != nil {
			return nil, err
		}
		recipes = append(recipes, r)
	}
	return recipes, nil
}
