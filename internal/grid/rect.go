package grid

// Rect is an axis-aligned cell footprint. Location.Y holds the floor height;
// Size.X is the width along X and Size.Z the length along Z.
type Rect struct {
	Location IntVector
	Size     IntVector
}

// NewRect creates a rectangle at (x, y, z) spanning width x length tiles.
func NewRect(x, y, z, width, length int) Rect {
	return Rect{
		Location: IntVector{X: x, Y: y, Z: z},
		Size:     IntVector{X: width, Y: 1, Z: length},
	}
}

func (r Rect) X() int      { return r.Location.X }
func (r Rect) Z() int      { return r.Location.Z }
func (r Rect) Height() int { return r.Location.Y }
func (r Rect) Width() int  { return r.Size.X }
func (r Rect) Length() int { return r.Size.Z }

// Contains returns true if the tile lies inside the footprint.
func (r Rect) Contains(t Tile) bool {
	return t.X >= r.Location.X && t.X < r.Location.X+r.Size.X &&
		t.Z >= r.Location.Z && t.Z < r.Location.Z+r.Size.Z
}

// Tiles returns every tile of the footprint, ordered by Z then X.
func (r Rect) Tiles() []Tile {
	if r.Size.X <= 0 || r.Size.Z <= 0 {
		return nil
	}
	tiles := make([]Tile, 0, r.Size.X*r.Size.Z)
	for z := r.Location.Z; z < r.Location.Z+r.Size.Z; z++ {
		for x := r.Location.X; x < r.Location.X+r.Size.X; x++ {
			tiles = append(tiles, Tile{X: x, Z: z})
		}
	}
	return tiles
}

// TilePair is one step across a shared edge. From lies in the first
// rectangle, To in the second.
type TilePair struct {
	From, To Tile
}

// Orientation returns the cardinal direction from From to To.
func (p TilePair) Orientation() Orientation {
	o, ok := OrientationBetween(p.From, p.To)
	if !ok {
		panic("grid: tile pair is not an orthogonal step: " + p.From.String() + "->" + p.To.String())
	}
	return o
}

// SharedBoundary returns the tile pairs along which a and b touch, walking
// the intersection line in increasing X (boundary along X) or Z (boundary
// along Z). Rectangles that only meet at a corner share no boundary.
func SharedBoundary(a, b Rect) []TilePair {
	ax0, ax1 := a.Location.X, a.Location.X+a.Size.X
	az0, az1 := a.Location.Z, a.Location.Z+a.Size.Z
	bx0, bx1 := b.Location.X, b.Location.X+b.Size.X
	bz0, bz1 := b.Location.Z, b.Location.Z+b.Size.Z

	var pairs []TilePair

	// Boundary runs along X: the rectangles are stacked on Z.
	if lo, hi := max(ax0, bx0), min(ax1, bx1); hi > lo {
		switch {
		case az1 == bz0:
			for x := lo; x < hi; x++ {
				pairs = append(pairs, TilePair{From: Tile{x, az1 - 1}, To: Tile{x, bz0}})
			}
		case az0 == bz1:
			for x := lo; x < hi; x++ {
				pairs = append(pairs, TilePair{From: Tile{x, az0}, To: Tile{x, bz1 - 1}})
			}
		}
	}

	// Boundary runs along Z: the rectangles sit side by side on X.
	if lo, hi := max(az0, bz0), min(az1, bz1); hi > lo {
		switch {
		case ax1 == bx0:
			for z := lo; z < hi; z++ {
				pairs = append(pairs, TilePair{From: Tile{ax1 - 1, z}, To: Tile{bx0, z}})
			}
		case ax0 == bx1:
			for z := lo; z < hi; z++ {
				pairs = append(pairs, TilePair{From: Tile{ax0, z}, To: Tile{bx1 - 1, z}})
			}
		}
	}

	return pairs
}

// SharesEdge returns true if a and b touch along an edge of at least one tile.
func SharesEdge(a, b Rect) bool {
	ax0, ax1 := a.Location.X, a.Location.X+a.Size.X
	az0, az1 := a.Location.Z, a.Location.Z+a.Size.Z
	bx0, bx1 := b.Location.X, b.Location.X+b.Size.X
	bz0, bz1 := b.Location.Z, b.Location.Z+b.Size.Z

	if min(ax1, bx1) > max(ax0, bx0) && (az1 == bz0 || az0 == bz1) {
		return true
	}
	return min(az1, bz1) > max(az0, bz0) && (ax1 == bx0 || ax0 == bx1)
}
