package cellgraph

import "github.com/lawnchairsociety/stairgen/internal/grid"

// Door is a passage between two orthogonally adjacent tiles belonging to two cells.
type Door struct {
	CellA, CellB int
	From, To     grid.Tile
}

type cellPair struct {
	lo, hi int
}

func pairOf(a, b int) cellPair {
	if a > b {
		a, b = b, a
	}
	return cellPair{lo: a, hi: b}
}

type tilePair struct {
	a, b grid.Tile
}

func tilePairOf(a, b grid.Tile) tilePair {
	if b.X < a.X || (b.X == a.X && b.Z < a.Z) {
		a, b = b, a
	}
	return tilePair{a: a, b: b}
}

// DoorManager answers door queries for the stair passes. Doors are placed by
// the layout generator; this type only records them.
type DoorManager struct {
	doors   []Door
	byTiles map[tilePair]Door
	byCells map[cellPair]bool
	tiles   map[grid.Tile]bool
}

// NewDoorManager creates a door manager holding the given doors
func NewDoorManager(doors []Door) *DoorManager {
	m := &DoorManager{
		byTiles: make(map[tilePair]Door),
		byCells: make(map[cellPair]bool),
		tiles:   make(map[grid.Tile]bool),
	}
	for _, d := range doors {
		m.Add(d)
	}
	return m
}

// Add records a door. Adding the same tile pair twice keeps the first door.
func (m *DoorManager) Add(d Door) {
	key := tilePairOf(d.From, d.To)
	if _, exists := m.byTiles[key]; exists {
		return
	}
	m.doors = append(m.doors, d)
	m.byTiles[key] = d
	m.byCells[pairOf(d.CellA, d.CellB)] = true
	m.tiles[d.From] = true
	m.tiles[d.To] = true
}

// ContainsDoorBetween returns true if any door joins the two cells
func (m *DoorManager) ContainsDoorBetween(cellA, cellB int) bool {
	return m.byCells[pairOf(cellA, cellB)]
}

// ContainsDoor returns true if a door crosses exactly between the two tiles.
func (m *DoorManager) ContainsDoor(x1, z1, x2, z2 int) bool {
	_, ok := m.byTiles[tilePairOf(grid.Tile{X: x1, Z: z1}, grid.Tile{X: x2, Z: z2})]
	return ok
}

// TouchesTile returns true if a door starts or ends on the tile
func (m *DoorManager) TouchesTile(t grid.Tile) bool {
	return m.tiles[t]
}

// Doors returns all doors in insertion order
func (m *DoorManager) Doors() []Door {
	doors := make([]Door, len(m.doors))
	copy(doors, m.doors)
	return doors
}
