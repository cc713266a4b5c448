package cellgraph

import "github.com/lawnchairsociety/stairgen/internal/grid"

// CellType tags what a cell is used for in the layout
type CellType int

const (
	CellUnknown         CellType = iota // Not classified by the layout generator
	CellRoom                            // Room - stairs only on door crossings
	CellCorridor                        // Corridor segment
	CellCorridorPadding                 // 1x1 filler inserted around stairs
)

// String returns the string representation of a CellType
func (t CellType) String() string {
	switch t {
	case CellRoom:
		return "room"
	case CellCorridor:
		return "corridor"
	case CellCorridorPadding:
		return "corridor_padding"
	default:
		return "unknown"
	}
}

// ParseCellType converts a string to a CellType. Unrecognized names map to CellUnknown.
func ParseCellType(s string) CellType {
	switch s {
	case "room":
		return CellRoom
	case "corridor":
		return CellCorridor
	case "corridor_padding":
		return CellCorridorPadding
	default:
		return CellUnknown
	}
}

// Cell is a rectangular room or corridor segment. Bounds.Location.Y is the
// floor height of the whole cell.
type Cell struct {
	ID            int
	Bounds        grid.Rect
	Type          CellType
	UserDefined   bool  // Placed by hand, height must not change
	HeightClamped bool  // Height is an anchor for propagation
	Adjacent      []int // Neighbor ids in cell order
}

// Height returns the floor height of the cell
func (c *Cell) Height() int {
	return c.Bounds.Location.Y
}

// IsRoom returns true if the cell is a room
func (c *Cell) IsRoom() bool {
	return c.Type == CellRoom
}

// FixedHeight returns true if the height of the cell may never be changed.
func (c *Cell) FixedHeight() bool {
	return c.UserDefined || c.HeightClamped
}

// GridCellInfo describes what occupies a single tile
type GridCellInfo struct {
	CellType     CellType
	ContainsDoor bool
	CellID       int
}
