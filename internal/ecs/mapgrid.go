package ecs

import (
	"fmt"
	"sync"
)

// Topology is the spatial neighbor/containment contract a Map delegates to,
// grounded on original_source's engine/core/src/map/topology.rs MapTopology
// trait. Concrete implementations: SquareGridMap, HexGridMap, RegionMap.
type Topology interface {
	Neighbors(cell CellKey) []CellKey
	Contains(cell CellKey) bool
	AllCells() []CellKey
	TopologyType() string
	SetCellMetadata(cell CellKey, data map[string]interface{})
	GetCellMetadata(cell CellKey) (map[string]interface{}, bool)
}

type gridCell struct {
	key       CellKey
	neighbors map[string]CellKey
	metadata  map[string]interface{}
}

func newGrid() map[string]*gridCell {
	return make(map[string]*gridCell)
}

func ensureCell(cells map[string]*gridCell, key CellKey) *gridCell {
	if c, ok := cells[key.String()]; ok {
		return c
	}
	c := &gridCell{key: key, neighbors: make(map[string]CellKey)}
	cells[key.String()] = c
	return c
}

func neighborsOf(cells map[string]*gridCell, cell CellKey) []CellKey {
	c, ok := cells[cell.String()]
	if !ok {
		return nil
	}
	out := make([]CellKey, 0, len(c.neighbors))
	for _, n := range c.neighbors {
		out = append(out, n)
	}
	return out
}

func allCellsOf(cells map[string]*gridCell) []CellKey {
	out := make([]CellKey, 0, len(cells))
	for _, c := range cells {
		out = append(out, c.key)
	}
	return out
}

func metadataOf(cells map[string]*gridCell, cell CellKey) (map[string]interface{}, bool) {
	c, ok := cells[cell.String()]
	if !ok || c.metadata == nil {
		return nil, false
	}
	return c.metadata, true
}

// SquareGridMap is an axis-aligned 3D grid topology (x, y, z).
type SquareGridMap struct {
	mu    sync.RWMutex
	cells map[string]*gridCell
}

// NewSquareGridMap creates an empty square grid.
func NewSquareGridMap() *SquareGridMap {
	return &SquareGridMap{cells: newGrid()}
}

// AddCell registers a cell at (x, y, z).
func (g *SquareGridMap) AddCell(x, y, z int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	ensureCell(g.cells, SquareCell(x, y, z))
}

// AddNeighbor links from->to as a directed neighbor edge.
func (g *SquareGridMap) AddNeighbor(from, to CellKey) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if c, ok := g.cells[from.String()]; ok {
		c.neighbors[to.String()] = to
	}
}

// Neighbors implements Topology.
func (g *SquareGridMap) Neighbors(cell CellKey) []CellKey {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return neighborsOf(g.cells, cell)
}

// Contains implements Topology.
func (g *SquareGridMap) Contains(cell CellKey) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	_, ok := g.cells[cell.String()]
	return ok
}

// AllCells implements Topology.
func (g *SquareGridMap) AllCells() []CellKey {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return allCellsOf(g.cells)
}

// TopologyType implements Topology.
func (g *SquareGridMap) TopologyType() string { return "square" }

// SetCellMetadata implements Topology.
func (g *SquareGridMap) SetCellMetadata(cell CellKey, data map[string]interface{}) {
	g.mu.Lock()
	defer g.mu.Unlock()
	ensureCell(g.cells, cell).metadata = data
}

// GetCellMetadata implements Topology.
func (g *SquareGridMap) GetCellMetadata(cell CellKey) (map[string]interface{}, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return metadataOf(g.cells, cell)
}

// HexGridMap is an axial hex-grid topology (q, r, z).
type HexGridMap struct {
	mu    sync.RWMutex
	cells map[string]*gridCell
}

// NewHexGridMap creates an empty hex grid.
func NewHexGridMap() *HexGridMap {
	return &HexGridMap{cells: newGrid()}
}

// AddCell registers a cell at axial coordinates (q, r, z).
func (g *HexGridMap) AddCell(q, r, z int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	ensureCell(g.cells, HexCell(q, r, z))
}

// AddNeighbor links from->to as a directed neighbor edge.
func (g *HexGridMap) AddNeighbor(from, to CellKey) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if c, ok := g.cells[from.String()]; ok {
		c.neighbors[to.String()] = to
	}
}

// Neighbors implements Topology.
func (g *HexGridMap) Neighbors(cell CellKey) []CellKey {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return neighborsOf(g.cells, cell)
}

// Contains implements Topology.
func (g *HexGridMap) Contains(cell CellKey) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	_, ok := g.cells[cell.String()]
	return ok
}

// AllCells implements Topology.
func (g *HexGridMap) AllCells() []CellKey {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return allCellsOf(g.cells)
}

// TopologyType implements Topology.
func (g *HexGridMap) TopologyType() string { return "hex" }

// SetCellMetadata implements Topology.
func (g *HexGridMap) SetCellMetadata(cell CellKey, data map[string]interface{}) {
	g.mu.Lock()
	defer g.mu.Unlock()
	ensureCell(g.cells, cell).metadata = data
}

// GetCellMetadata implements Topology.
func (g *HexGridMap) GetCellMetadata(cell CellKey) (map[string]interface{}, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return metadataOf(g.cells, cell)
}

// RegionMap is a named-region adjacency topology (provinces, zones), keyed
// by string id rather than coordinates.
type RegionMap struct {
	mu    sync.RWMutex
	cells map[string]*gridCell
}

// NewRegionMap creates an empty region map.
func NewRegionMap() *RegionMap {
	return &RegionMap{cells: newGrid()}
}

// AddCell registers a region by id.
func (g *RegionMap) AddCell(id string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	ensureCell(g.cells, RegionCell(id))
}

// AddNeighbor links regions fromID->toID as a directed adjacency edge.
func (g *RegionMap) AddNeighbor(fromID, toID string) {
	from, to := RegionCell(fromID), RegionCell(toID)
	g.mu.Lock()
	defer g.mu.Unlock()
	if c, ok := g.cells[from.String()]; ok {
		c.neighbors[to.String()] = to
	}
}

// Neighbors implements Topology.
func (g *RegionMap) Neighbors(cell CellKey) []CellKey {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return neighborsOf(g.cells, cell)
}

// Contains implements Topology.
func (g *RegionMap) Contains(cell CellKey) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	_, ok := g.cells[cell.String()]
	return ok
}

// AllCells implements Topology.
func (g *RegionMap) AllCells() []CellKey {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return allCellsOf(g.cells)
}

// TopologyType implements Topology.
func (g *RegionMap) TopologyType() string { return "region" }

// SetCellMetadata implements Topology.
func (g *RegionMap) SetCellMetadata(cell CellKey, data map[string]interface{}) {
	g.mu.Lock()
	defer g.mu.Unlock()
	ensureCell(g.cells, cell).metadata = data
}

// GetCellMetadata implements Topology.
func (g *RegionMap) GetCellMetadata(cell CellKey) (map[string]interface{}, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return metadataOf(g.cells, cell)
}

// Map wraps a Topology, the composition point original_source's Map::new
// uses (Box<dyn MapTopology>).
type Map struct {
	topology Topology
}

// NewMap wraps topology.
func NewMap(topology Topology) *Map {
	return &Map{topology: topology}
}

// Neighbors delegates to the wrapped topology.
func (m *Map) Neighbors(cell CellKey) []CellKey { return m.topology.Neighbors(cell) }

// Contains delegates to the wrapped topology.
func (m *Map) Contains(cell CellKey) bool { return m.topology.Contains(cell) }

// AllCells delegates to the wrapped topology.
func (m *Map) AllCells() []CellKey { return m.topology.AllCells() }

// TopologyType delegates to the wrapped topology.
func (m *Map) TopologyType() string { return m.topology.TopologyType() }

// SetCellMetadata delegates to the wrapped topology.
func (m *Map) SetCellMetadata(cell CellKey, data map[string]interface{}) {
	m.topology.SetCellMetadata(cell, data)
}

// GetCellMetadata delegates to the wrapped topology.
func (m *Map) GetCellMetadata(cell CellKey) (map[string]interface{}, bool) {
	return m.topology.GetCellMetadata(cell)
}

// GeneratedCell is one cell of a worldgen plugin's output document.
type GeneratedCell struct {
	Key       CellKey                `json:"key"`
	Neighbors []CellKey              `json:"neighbors,omitempty"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

// GeneratedEntity is an entity a worldgen plugin asks the world to spawn
// at Position, with additional components to set once spawned.
type GeneratedEntity struct {
	Position   CellKey                `json:"position"`
	Components map[string]interface{} `json:"components,omitempty"`
}

// GeneratedMap is the wire format a worldgen plugin returns and
// World.ApplyGeneratedMap consumes, grounded on
// worldgen_integration.rs's invoke-then-apply_generated_map flow and
// spec.md section 4.7's three-step contract (parse topology, install
// cells, optionally spawn declared entities and set their Position).
type GeneratedMap struct {
	Topology string            `json:"topology"`
	Cells    []GeneratedCell   `json:"cells"`
	Entities []GeneratedEntity `json:"entities,omitempty"`
}

// NewTopology constructs an empty Topology implementation by name.
func NewTopology(kind string) (Topology, error) {
	switch kind {
	case "square":
		return NewSquareGridMap(), nil
	case "hex":
		return NewHexGridMap(), nil
	case "region":
		return NewRegionMap(), nil
	default:
		return nil, fmt.Errorf("ecs: unknown topology %q", kind)
	}
}

func addCellTo(topology Topology, key CellKey) {
	switch t := topology.(type) {
	case *SquareGridMap:
		t.AddCell(key.X, key.Y, key.Z)
	case *HexGridMap:
		t.AddCell(key.X, key.Y, key.Z)
	case *RegionMap:
		t.AddCell(key.ID)
	}
}

func addNeighborTo(topology Topology, from, to CellKey) {
	switch t := topology.(type) {
	case *SquareGridMap:
		t.AddNeighbor(from, to)
	case *HexGridMap:
		t.AddNeighbor(from, to)
	case *RegionMap:
		t.AddNeighbor(from.ID, to.ID)
	}
}

// BuildMap realizes a GeneratedMap document into a concrete Map.
func BuildMap(gm GeneratedMap) (*Map, error) {
	topology, err := NewTopology(gm.Topology)
	if err != nil {
		return nil, err
	}
	for _, cell := range gm.Cells {
		addCellTo(topology, cell.Key)
		if cell.Metadata != nil {
			topology.SetCellMetadata(cell.Key, cell.Metadata)
		}
	}
	for _, cell := range gm.Cells {
		for _, n := range cell.Neighbors {
			addNeighborTo(topology, cell.Key, n)
		}
	}
	return NewMap(topology), nil
}
