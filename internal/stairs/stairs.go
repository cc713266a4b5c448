// Package stairs places staircases between adjacent cells of different
// height. Two strategies are available: ConnectLegacy scores positions along
// each cell edge over decreasing weight thresholds, and ConnectIslands works
// on same-height islands and lowers heights where no valid stair exists.
//
// A stair always stands in the lower (owner) cell on the tile touching the
// higher (remote) cell and climbs towards it. The tile behind the stair, on
// the owner side, is its entry tile.
package stairs

import (
	"github.com/lawnchairsociety/stairgen/internal/cellgraph"
	"github.com/lawnchairsociety/stairgen/internal/config"
	"github.com/lawnchairsociety/stairgen/internal/grid"
)

// Dungeon is the cell graph as seen by the stair strategies. Cells are
// always resolved by id since padding insertion rebuilds the graph.
type Dungeon interface {
	Cells() []*cellgraph.Cell
	Cell(id int) *cellgraph.Cell
	Doors() *cellgraph.DoorManager
	Lookup(x, z int) (cellgraph.GridCellInfo, bool)
	SetHeight(id, y int)

	ContainsAdjacencyPath(a, b, tolerance int, ignorePadding bool) bool

	AddStair(s cellgraph.StairInfo) bool
	ClearStairs()
	ContainsStairAt(x, z int) bool
	StairAt(x, z int) (cellgraph.StairInfo, bool)
	ContainsStairBetween(a, b int) bool

	AddCorridorPadding(x, y, z int) (int, bool)
	RebuildCellLookup()
	RebuildSpatialLookup()
	RebuildAdjacency()
}

// placement is the tile layout around a stair candidate. Stair is in the
// owner cell, Remote in the cell it climbs to and Entry behind the stair.
// Sides flank the stair and Diagonals flank the entry tile, pairwise.
type placement struct {
	Stair     grid.Tile
	Remote    grid.Tile
	Entry     grid.Tile
	Rotation  grid.Orientation
	Sides     [2]grid.Tile
	Diagonals [2]grid.Tile
}

func newPlacement(p grid.TilePair) placement {
	o := p.Orientation()
	step := o.Step()
	left, right := o.Perpendicular()

	pl := placement{
		Stair:    p.From,
		Remote:   p.To,
		Entry:    p.From.Sub(step),
		Rotation: o,
	}
	pl.Sides = [2]grid.Tile{pl.Stair.Add(left.Step()), pl.Stair.Add(right.Step())}
	pl.Diagonals = [2]grid.Tile{pl.Entry.Add(left.Step()), pl.Entry.Add(right.Step())}
	return pl
}

// doorCrossing returns true if a door joins the stair tile and the remote tile.
func (pl placement) doorCrossing(g Dungeon) bool {
	return g.Doors().ContainsDoor(pl.Stair.X, pl.Stair.Z, pl.Remote.X, pl.Remote.Z)
}

// ownedBy returns true if the tile belongs to the cell in the spatial lookup.
func ownedBy(g Dungeon, t grid.Tile, cellID int) bool {
	info, ok := g.Lookup(t.X, t.Z)
	return ok && info.CellID == cellID
}

func occupied(g Dungeon, t grid.Tile) bool {
	_, ok := g.Lookup(t.X, t.Z)
	return ok
}

func cellSize(cfg *config.GenerationConfig) grid.Vector3 {
	return grid.Vector3{X: cfg.GridCellSize.X, Y: cfg.GridCellSize.Y, Z: cfg.GridCellSize.Z}
}

// stairInfo builds the record for a stair standing at pl in owner.
func stairInfo(pl placement, owner, remote *cellgraph.Cell, size grid.Vector3) cellgraph.StairInfo {
	pos := pl.Stair.At(owner.Height())
	return cellgraph.StairInfo{
		OwnerCell:       owner.ID,
		ConnectedToCell: remote.ID,
		Position:        grid.WorldPosition(pos, size),
		IPosition:       pos,
		Rotation:        pl.Rotation,
	}
}

// lowerFirst orders two cells so the lower one comes first. Ties keep the
// given order.
func lowerFirst(a, b *cellgraph.Cell) (*cellgraph.Cell, *cellgraph.Cell) {
	if b.Height() < a.Height() {
		return b, a
	}
	return a, b
}

type edgeKey struct {
	lo, hi int
}

func keyOf(a, b int) edgeKey {
	if a > b {
		a, b = b, a
	}
	return edgeKey{lo: a, hi: b}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
