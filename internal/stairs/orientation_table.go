package stairs

import (
	"github.com/lawnchairsociety/stairgen/internal/grid"
)

// orientationTable records, per tile, the stair orientations that would
// conflict with stairs already accepted.
type orientationTable map[grid.Tile]grid.OrientationMask

func (t orientationTable) allows(tile grid.Tile, o grid.Orientation) bool {
	return !t[tile].Has(o)
}

// fits returns true if no tile the placement uses forbids its rotation.
func (t orientationTable) fits(pl placement) bool {
	return t.allows(pl.Stair, pl.Rotation) &&
		t.allows(pl.Remote, pl.Rotation) &&
		t.allows(pl.Entry, pl.Rotation)
}

// register blocks every orientation on the stair tile and the orientations
// that would cross the stair on the four tiles around it.
func (t orientationTable) register(pl placement) {
	t[pl.Stair] = grid.AllOrientationsMask
	left, right := pl.Rotation.Perpendicular()
	for _, o := range grid.AllOrientations() {
		n := pl.Stair.Add(o.Step())
		t[n] = t[n].With(left).With(right)
	}
}
