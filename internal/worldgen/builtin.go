package worldgen

import (
	"encoding/json"
	"fmt"
	"math/rand"

	"github.com/ashfall-games/simcore/internal/ecs"
)

// SquareParams are the params basic_square_worldgen accepts, per
// worldgen_integration.rs's invoke("basic_square_worldgen", {width, height,
// z_levels, seed}).
type SquareParams struct {
	Width   int   `json:"width"`
	Height  int   `json:"height"`
	ZLevels int   `json:"z_levels"`
	Seed    int64 `json:"seed"`
}

var squareBiomes = []string{"plains", "forest", "hills", "water"}

// BasicSquareWorldgen builds a flat width x height x z_levels square grid,
// four-directionally connected within each z level, with a deterministic
// (seed-derived) biome tag per cell. No third-party biome/noise library
// appears anywhere in the retrieval pack, so this falls back to a seeded
// math/rand source rather than a hand-rolled alternative.
func BasicSquareWorldgen(params json.RawMessage) (json.RawMessage, error) {
	var p SquareParams
	if err := json.Unmarshal(params, &p); err != nil {
		return nil, fmt.Errorf("worldgen: basic_square_worldgen: %w", err)
	}
	if p.Width <= 0 || p.Height <= 0 {
		return nil, fmt.Errorf("worldgen: basic_square_worldgen: width and height must be positive")
	}
	if p.ZLevels <= 0 {
		p.ZLevels = 1
	}

	rng := rand.New(rand.NewSource(p.Seed))
	gm := ecs.GeneratedMap{Topology: "square"}

	for z := 0; z < p.ZLevels; z++ {
		for y := 0; y < p.Height; y++ {
			for x := 0; x < p.Width; x++ {
				key := ecs.SquareCell(x, y, z)
				var neighbors []ecs.CellKey
				if x > 0 {
					neighbors = append(neighbors, ecs.SquareCell(x-1, y, z))
				}
				if x < p.Width-1 {
					neighbors = append(neighbors, ecs.SquareCell(x+1, y, z))
				}
				if y > 0 {
					neighbors = append(neighbors, ecs.SquareCell(x, y-1, z))
				}
				if y < p.Height-1 {
					neighbors = append(neighbors, ecs.SquareCell(x, y+1, z))
				}
				biome := squareBiomes[rng.Intn(len(squareBiomes))]
				gm.Cells = append(gm.Cells, ecs.GeneratedCell{
					Key:       key,
					Neighbors: neighbors,
					Metadata:  map[string]interface{}{"biome": biome},
				})
			}
		}
	}

	return json.Marshal(gm)
}

// RegisterBuiltins installs every built-in generator into r, mirroring
// original_source's register_builtin_worldgen_plugins.
func RegisterBuiltins(r *Registry) {
	r.Register("basic_square_worldgen", BasicSquareWorldgen)
}
