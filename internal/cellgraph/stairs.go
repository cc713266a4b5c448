package cellgraph

import (
	"sort"

	"github.com/zyedidia/generic/mapset"

	"github.com/lawnchairsociety/stairgen/internal/grid"
)

// StairInfo is a placed staircase. The stair stands on IPosition inside the
// owner cell and climbs towards ConnectedToCell.
type StairInfo struct {
	OwnerCell       int
	ConnectedToCell int
	Position        grid.Vector3
	IPosition       grid.IntVector
	Rotation        grid.Orientation
}

func (g *Graph) resetStairs() {
	g.stairs = make(map[int][]StairInfo)
	g.stairTiles = make(map[grid.Tile]StairInfo)
	g.stairPairs = mapset.New[cellPair]()
}

// AddStair records a stair. A tile holds at most one stair; adding a second
// one on an occupied tile is refused.
func (g *Graph) AddStair(s StairInfo) bool {
	t := s.IPosition.Tile()
	if _, taken := g.stairTiles[t]; taken {
		return false
	}
	g.stairTiles[t] = s
	g.stairs[s.OwnerCell] = append(g.stairs[s.OwnerCell], s)
	g.stairPairs.Put(pairOf(s.OwnerCell, s.ConnectedToCell))
	return true
}

// Stairs returns the stairs owned by a cell
func (g *Graph) Stairs(cellID int) []StairInfo {
	return g.stairs[cellID]
}

// AllStairs returns every stair, ordered by owner cell then position.
func (g *Graph) AllStairs() []StairInfo {
	all := make([]StairInfo, 0, len(g.stairTiles))
	for _, list := range g.stairs {
		all = append(all, list...)
	}
	sort.Slice(all, func(i, j int) bool {
		a, b := all[i], all[j]
		if a.OwnerCell != b.OwnerCell {
			return a.OwnerCell < b.OwnerCell
		}
		if a.IPosition.Z != b.IPosition.Z {
			return a.IPosition.Z < b.IPosition.Z
		}
		return a.IPosition.X < b.IPosition.X
	})
	return all
}

// StairCount returns the number of placed stairs
func (g *Graph) StairCount() int {
	return len(g.stairTiles)
}

// ClearStairs removes every stair
func (g *Graph) ClearStairs() {
	g.resetStairs()
}

// ContainsStairAt returns true if a stair stands on the tile
func (g *Graph) ContainsStairAt(x, z int) bool {
	_, ok := g.stairTiles[grid.Tile{X: x, Z: z}]
	return ok
}

// StairAt returns the stair standing on the tile
func (g *Graph) StairAt(x, z int) (StairInfo, bool) {
	s, ok := g.stairTiles[grid.Tile{X: x, Z: z}]
	return s, ok
}

// ContainsStairBetween returns true if a stair joins the two cells, in either direction.
func (g *Graph) ContainsStairBetween(a, b int) bool {
	return g.stairPairs.Has(pairOf(a, b))
}
