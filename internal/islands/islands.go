// Package islands groups cells into same-height islands and records where
// neighboring islands touch.
package islands

import (
	"fmt"
	"sort"

	"github.com/zyedidia/generic/mapset"

	"github.com/lawnchairsociety/stairgen/internal/cellgraph"
	"github.com/lawnchairsociety/stairgen/internal/grid"
)

// Graph is the read side of the cell graph used to build islands
type Graph interface {
	Cells() []*cellgraph.Cell
	Cell(id int) *cellgraph.Cell
}

// BoundaryEdge is one adjacency between an owning cell inside the island and
// a remote cell in the neighboring island.
type BoundaryEdge struct {
	OwnerCell  int
	RemoteCell int
}

// Boundary lists every edge between an island and one neighbor
type Boundary struct {
	Edges []BoundaryEdge
}

// Island is a connected set of cells standing at one height.
type Island struct {
	Index   int
	Height  int
	Clamped bool
	Cells   []int

	tiles    mapset.Set[grid.Tile]
	tileList []grid.Tile

	// Boundaries is keyed by the index of the neighboring island.
	Boundaries map[int]*Boundary
}

// Tiles returns the occupied tiles ordered by Z then X.
func (i *Island) Tiles() []grid.Tile {
	return i.tileList
}

// TileCount returns the number of occupied tiles
func (i *Island) TileCount() int {
	return len(i.tileList)
}

// HasTile returns true if a member cell covers the tile
func (i *Island) HasTile(t grid.Tile) bool {
	return i.tiles.Has(t)
}

// Neighbors returns the indices of the neighboring islands in ascending order.
func (i *Island) Neighbors() []int {
	out := make([]int, 0, len(i.Boundaries))
	for idx := range i.Boundaries {
		out = append(out, idx)
	}
	sort.Ints(out)
	return out
}

// Set is the result of one island build.
type Set struct {
	islands []*Island
	byCell  map[int]int
}

// Len returns the number of islands
func (s *Set) Len() int {
	return len(s.islands)
}

// Island returns the island at index. An index outside the set means the
// caller is working from a stale build and panics.
func (s *Set) Island(index int) *Island {
	if index < 0 || index >= len(s.islands) {
		panic(fmt.Sprintf("islands: index %d out of range [0,%d)", index, len(s.islands)))
	}
	return s.islands[index]
}

// All returns the islands in build order
func (s *Set) All() []*Island {
	return s.islands
}

// IndexOf returns the island holding a cell.
func (s *Set) IndexOf(cellID int) (int, bool) {
	idx, ok := s.byCell[cellID]
	return idx, ok
}

// IsSingleTileDeadEnd returns true for an island made of one tile with a
// single neighboring island.
func (s *Set) IsSingleTileDeadEnd(index int) bool {
	is := s.Island(index)
	return is.TileCount() == 1 && len(is.Boundaries) == 1
}

// Build flood fills the graph into islands. Cells are visited in cell order
// and each unvisited cell starts a new island. Rooms always form an island
// of their own. Height-clamped cells join the island that reaches them but
// do not spread it further.
func Build(g Graph) *Set {
	cells := g.Cells()
	s := &Set{byCell: make(map[int]int, len(cells))}
	visited := mapset.New[int]()

	for _, c := range cells {
		if visited.Has(c.ID) {
			continue
		}
		visited.Put(c.ID)

		is := &Island{
			Index:      len(s.islands),
			Height:     c.Height(),
			tiles:      mapset.New[grid.Tile](),
			Boundaries: make(map[int]*Boundary),
		}
		s.islands = append(s.islands, is)

		queue := []int{c.ID}
		for qi := 0; qi < len(queue); qi++ {
			cell := g.Cell(queue[qi])
			if cell == nil {
				continue
			}
			is.add(cell)
			s.byCell[cell.ID] = is.Index

			if cell.IsRoom() || cell.HeightClamped {
				continue
			}
			for _, nid := range cell.Adjacent {
				if visited.Has(nid) {
					continue
				}
				n := g.Cell(nid)
				if n == nil || n.IsRoom() || n.Height() != is.Height {
					continue
				}
				visited.Put(nid)
				queue = append(queue, nid)
			}
		}
		is.sortTiles()
	}

	s.buildBoundaries(g)
	return s
}

func (i *Island) add(c *cellgraph.Cell) {
	i.Cells = append(i.Cells, c.ID)
	if c.HeightClamped {
		i.Clamped = true
	}
	for _, t := range c.Bounds.Tiles() {
		if !i.tiles.Has(t) {
			i.tiles.Put(t)
			i.tileList = append(i.tileList, t)
		}
	}
}

func (i *Island) sortTiles() {
	sort.Slice(i.tileList, func(a, b int) bool {
		ta, tb := i.tileList[a], i.tileList[b]
		if ta.Z != tb.Z {
			return ta.Z < tb.Z
		}
		return ta.X < tb.X
	})
}

// buildBoundaries records, per island, every adjacency that leaves it.
// Edges follow member cell order and then neighbor order.
func (s *Set) buildBoundaries(g Graph) {
	for _, is := range s.islands {
		for _, id := range is.Cells {
			cell := g.Cell(id)
			if cell == nil {
				continue
			}
			for _, nid := range cell.Adjacent {
				other, ok := s.byCell[nid]
				if !ok || other == is.Index {
					continue
				}
				b := is.Boundaries[other]
				if b == nil {
					b = &Boundary{}
					is.Boundaries[other] = b
				}
				b.Edges = append(b.Edges, BoundaryEdge{OwnerCell: id, RemoteCell: nid})
			}
		}
	}
}
