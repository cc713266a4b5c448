// Package grid provides the integer geometry shared by the height and stair
// passes: grid vectors, cell rectangles, shared boundaries and the four
// cardinal stair orientations.
package grid

import "fmt"

// IntVector is a position on the dungeon grid. Y is the floor height.
type IntVector struct {
	X, Y, Z int
}

// Tile returns the XZ projection of the vector.
func (v IntVector) Tile() Tile {
	return Tile{X: v.X, Z: v.Z}
}

// String returns the vector as "(x,y,z)"
func (v IntVector) String() string {
	return fmt.Sprintf("(%d,%d,%d)", v.X, v.Y, v.Z)
}

// Vector3 is a world-space position.
type Vector3 struct {
	X, Y, Z float64
}

// Tile is a coordinate on the XZ floor plane.
type Tile struct {
	X, Z int
}

// Add returns t + o
func (t Tile) Add(o Tile) Tile {
	return Tile{X: t.X + o.X, Z: t.Z + o.Z}
}

// Sub returns t - o
func (t Tile) Sub(o Tile) Tile {
	return Tile{X: t.X - o.X, Z: t.Z - o.Z}
}

// At lifts the tile to a grid position at height y.
func (t Tile) At(y int) IntVector {
	return IntVector{X: t.X, Y: y, Z: t.Z}
}

// String returns the tile as "(x,z)"
func (t Tile) String() string {
	return fmt.Sprintf("(%d,%d)", t.X, t.Z)
}

// WorldPosition converts a grid position to world space, centered on the tile.
func WorldPosition(p IntVector, cellSize Vector3) Vector3 {
	return Vector3{
		X: (float64(p.X) + 0.5) * cellSize.X,
		Y: float64(p.Y) * cellSize.Y,
		Z: (float64(p.Z) + 0.5) * cellSize.Z,
	}
}
