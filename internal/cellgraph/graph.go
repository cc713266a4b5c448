// Package cellgraph is the in-memory cell graph that the height and stair
// passes work on: cells with their adjacency, doors, a per-tile spatial
// lookup and the stairs placed so far.
//
// Cells are addressed by id everywhere. Padding insertion appends cells and
// requires the lookups to be rebuilt, so callers must not hold on to *Cell
// values across a rebuild.
package cellgraph

import (
	"errors"
	"fmt"

	"github.com/zyedidia/generic/mapset"

	"github.com/lawnchairsociety/stairgen/internal/grid"
)

var (
	ErrDuplicateCell = errors.New("cellgraph: duplicate cell id")
	ErrInvalidSize   = errors.New("cellgraph: cell size must be positive")
)

// Graph holds the cells of one dungeon layout.
type Graph struct {
	cells   []*Cell
	byID    map[int]*Cell
	spatial map[grid.Tile]GridCellInfo
	doors   *DoorManager
	nextID  int

	stairs     map[int][]StairInfo
	stairTiles map[grid.Tile]StairInfo
	stairPairs mapset.Set[cellPair]
}

// New builds a graph from the given cells and doors. Cell order is kept and
// used as the canonical iteration order.
func New(cells []Cell, doors []Door) (*Graph, error) {
	g := &Graph{
		cells: make([]*Cell, 0, len(cells)),
		doors: NewDoorManager(doors),
	}
	g.resetStairs()

	seen := make(map[int]bool, len(cells))
	for i := range cells {
		c := cells[i]
		if seen[c.ID] {
			return nil, fmt.Errorf("%w: %d", ErrDuplicateCell, c.ID)
		}
		if c.Bounds.Width() <= 0 || c.Bounds.Length() <= 0 {
			return nil, fmt.Errorf("%w: cell %d is %dx%d", ErrInvalidSize, c.ID, c.Bounds.Width(), c.Bounds.Length())
		}
		seen[c.ID] = true
		c.Adjacent = nil
		g.cells = append(g.cells, &c)
		if c.ID >= g.nextID {
			g.nextID = c.ID + 1
		}
	}

	g.RebuildCellLookup()
	g.RebuildSpatialLookup()
	g.RebuildAdjacency()
	return g, nil
}

// Cells returns the cells in canonical order
func (g *Graph) Cells() []*Cell {
	cells := make([]*Cell, len(g.cells))
	copy(cells, g.cells)
	return cells
}

// CellCount returns the number of cells
func (g *Graph) CellCount() int {
	return len(g.cells)
}

// Cell returns a cell by id, or nil
func (g *Graph) Cell(id int) *Cell {
	return g.byID[id]
}

// Doors returns the door manager
func (g *Graph) Doors() *DoorManager {
	return g.doors
}

// Lookup returns what occupies the tile at (x, z).
func (g *Graph) Lookup(x, z int) (GridCellInfo, bool) {
	info, ok := g.spatial[grid.Tile{X: x, Z: z}]
	return info, ok
}

// Occupied returns true if any cell covers the tile
func (g *Graph) Occupied(t grid.Tile) bool {
	_, ok := g.spatial[t]
	return ok
}

// SetHeight moves a cell to a new floor height
func (g *Graph) SetHeight(id, y int) {
	if c := g.byID[id]; c != nil {
		c.Bounds.Location.Y = y
	}
}

// AddCorridorPadding appends a 1x1 padding cell at (x, y, z) if the tile is
// free in the current spatial lookup. The caller must rebuild the lookups
// and adjacency before querying the graph again.
func (g *Graph) AddCorridorPadding(x, y, z int) (int, bool) {
	if g.Occupied(grid.Tile{X: x, Z: z}) {
		return 0, false
	}
	id := g.nextID
	g.nextID++
	g.cells = append(g.cells, &Cell{
		ID:     id,
		Bounds: grid.NewRect(x, y, z, 1, 1),
		Type:   CellCorridorPadding,
	})
	return id, true
}

// RebuildCellLookup refreshes the id -> cell index
func (g *Graph) RebuildCellLookup() {
	g.byID = make(map[int]*Cell, len(g.cells))
	for _, c := range g.cells {
		g.byID[c.ID] = c
	}
}

// RebuildSpatialLookup refreshes the tile -> cell index. When cells overlap
// the first cell in canonical order owns the tile.
func (g *Graph) RebuildSpatialLookup() {
	g.spatial = make(map[grid.Tile]GridCellInfo)
	for _, c := range g.cells {
		for _, t := range c.Bounds.Tiles() {
			if _, taken := g.spatial[t]; taken {
				continue
			}
			g.spatial[t] = GridCellInfo{
				CellType:     c.Type,
				ContainsDoor: g.doors.TouchesTile(t),
				CellID:       c.ID,
			}
		}
	}
}

// RebuildAdjacency recomputes neighbor lists. Two cells are adjacent when
// their footprints share an edge segment; touching corners do not count.
func (g *Graph) RebuildAdjacency() {
	for _, c := range g.cells {
		c.Adjacent = nil
	}
	for i, a := range g.cells {
		for _, b := range g.cells[i+1:] {
			if grid.SharesEdge(a.Bounds, b.Bounds) {
				a.Adjacent = append(a.Adjacent, b.ID)
				b.Adjacent = append(b.Adjacent, a.ID)
			}
		}
	}
}

// ContainsAdjacencyPath returns true if b can be reached from a within
// tolerance hops (at least one) without climbing a height change that no
// stair bridges. With ignorePadding, padding cells are never used as
// intermediate hops.
func (g *Graph) ContainsAdjacencyPath(a, b, tolerance int, ignorePadding bool) bool {
	if a == b {
		return g.byID[a] != nil
	}
	if g.byID[a] == nil || g.byID[b] == nil {
		return false
	}
	maxDepth := max(tolerance, 1)

	type hop struct {
		id, depth int
	}
	visited := mapset.New[int]()
	visited.Put(a)
	queue := []hop{{id: a, depth: 0}}

	for qi := 0; qi < len(queue); qi++ {
		cur := queue[qi]
		if cur.depth >= maxDepth {
			continue
		}
		c := g.byID[cur.id]
		for _, nid := range c.Adjacent {
			if visited.Has(nid) {
				continue
			}
			n := g.byID[nid]
			if n == nil || !g.walkable(c, n) {
				continue
			}
			if nid == b {
				return true
			}
			if ignorePadding && n.Type == CellCorridorPadding {
				continue
			}
			visited.Put(nid)
			queue = append(queue, hop{id: nid, depth: cur.depth + 1})
		}
	}
	return false
}

func (g *Graph) walkable(a, b *Cell) bool {
	return a.Height() == b.Height() || g.stairPairs.Has(pairOf(a.ID, b.ID))
}
