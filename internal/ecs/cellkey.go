package ecs

import (
	"encoding/json"
	"fmt"
)

// CellKeyTag identifies which topology variant a CellKey carries, grounded
// on original_source's map/topology.rs cell-key contract.
type CellKeyTag string

const (
	CellKeyTagSquare   CellKeyTag = "square"
	CellKeyTagHex      CellKeyTag = "hex"
	CellKeyTagRegion   CellKeyTag = "region"
	CellKeyTagProvince CellKeyTag = "province"
)

// CellKey is a stable, hashable spatial identifier. Equality is by tag and
// fields; String() is the canonical hash key used for map lookups.
type CellKey struct {
	Tag CellKeyTag

	// Square / Hex fields.
	X, Y, Z int

	// Region / Province fields.
	ID string
}

// SquareCell builds a Square-tagged cell key.
func SquareCell(x, y, z int) CellKey {
	return CellKey{Tag: CellKeyTagSquare, X: x, Y: y, Z: z}
}

// HexCell builds a Hex-tagged cell key (axial q/r stored in X/Y).
func HexCell(q, r, z int) CellKey {
	return CellKey{Tag: CellKeyTagHex, X: q, Y: r, Z: z}
}

// RegionCell builds a Region-tagged cell key.
func RegionCell(id string) CellKey {
	return CellKey{Tag: CellKeyTagRegion, ID: id}
}

// ProvinceCell builds a Province-tagged cell key.
func ProvinceCell(id string) CellKey {
	return CellKey{Tag: CellKeyTagProvince, ID: id}
}

// String returns the canonical hash key for this cell.
func (c CellKey) String() string {
	switch c.Tag {
	case CellKeyTagSquare:
		return fmt.Sprintf("square:%d,%d,%d", c.X, c.Y, c.Z)
	case CellKeyTagHex:
		return fmt.Sprintf("hex:%d,%d,%d", c.X, c.Y, c.Z)
	case CellKeyTagRegion:
		return fmt.Sprintf("region:%s", c.ID)
	case CellKeyTagProvince:
		return fmt.Sprintf("province:%s", c.ID)
	default:
		return fmt.Sprintf("unknown:%v", c)
	}
}

// Equal reports equality by tag and fields.
func (c CellKey) Equal(other CellKey) bool {
	return c == other
}

type cellKeyJSON struct {
	Tag string `json:"tag"`
	X   int    `json:"x,omitempty"`
	Y   int    `json:"y,omitempty"`
	Z   int    `json:"z,omitempty"`
	ID  string `json:"id,omitempty"`
}

// MarshalJSON round-trips the tagged variant.
func (c CellKey) MarshalJSON() ([]byte, error) {
	return json.Marshal(cellKeyJSON{
		Tag: string(c.Tag),
		X:   c.X,
		Y:   c.Y,
		Z:   c.Z,
		ID:  c.ID,
	})
}

// UnmarshalJSON round-trips the tagged variant.
func (c *CellKey) UnmarshalJSON(data []byte) error {
	var raw cellKeyJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	c.Tag = CellKeyTag(raw.Tag)
	c.X = raw.X
	c.Y = raw.Y
	c.Z = raw.Z
	c.ID = raw.ID
	return nil
}
