package grid

import "fmt"

// Orientation is a stair rotation around the vertical axis, in 90 degree steps.
// A stair with orientation o climbs towards o.Step().
type Orientation int

const (
	North Orientation = iota // +Z, 0 degrees
	East                     // +X, 90 degrees
	South                    // -Z, 180 degrees
	West                     // -X, 270 degrees
)

// AllOrientations returns the four cardinal orientations in rotation order.
func AllOrientations() []Orientation {
	return []Orientation{North, East, South, West}
}

// Valid returns true for the four cardinal orientations.
func (o Orientation) Valid() bool {
	return o >= North && o <= West
}

func (o Orientation) mustBeValid() {
	if !o.Valid() {
		panic(fmt.Sprintf("grid: invalid orientation %d", int(o)))
	}
}

// String returns the string representation of an Orientation
func (o Orientation) String() string {
	switch o {
	case North:
		return "north"
	case East:
		return "east"
	case South:
		return "south"
	case West:
		return "west"
	default:
		return "unknown"
	}
}

// Degrees returns the rotation angle around the vertical axis.
func (o Orientation) Degrees() int {
	o.mustBeValid()
	return int(o) * 90
}

// Opposite returns the reversed orientation.
func (o Orientation) Opposite() Orientation {
	o.mustBeValid()
	return (o + 2) % 4
}

// Perpendicular returns the two orientations at right angles to o.
func (o Orientation) Perpendicular() (Orientation, Orientation) {
	o.mustBeValid()
	return (o + 1) % 4, (o + 3) % 4
}

// Step returns the unit tile offset pointing along o.
func (o Orientation) Step() Tile {
	switch o {
	case North:
		return Tile{X: 0, Z: 1}
	case East:
		return Tile{X: 1, Z: 0}
	case South:
		return Tile{X: 0, Z: -1}
	case West:
		return Tile{X: -1, Z: 0}
	}
	panic(fmt.Sprintf("grid: invalid orientation %d", int(o)))
}

// OrientationBetween returns the orientation of the unit step from -> to.
func OrientationBetween(from, to Tile) (Orientation, bool) {
	switch to.Sub(from) {
	case Tile{X: 0, Z: 1}:
		return North, true
	case Tile{X: 1, Z: 0}:
		return East, true
	case Tile{X: 0, Z: -1}:
		return South, true
	case Tile{X: -1, Z: 0}:
		return West, true
	}
	return North, false
}

// OrientationMask is a set of orientations, one bit per orientation.
type OrientationMask uint8

// AllOrientationsMask contains every orientation.
const AllOrientationsMask OrientationMask = 0b1111

// MaskOf builds a mask from the given orientations.
func MaskOf(orientations ...Orientation) OrientationMask {
	var m OrientationMask
	for _, o := range orientations {
		m = m.With(o)
	}
	return m
}

// Has returns true if o is in the mask.
func (m OrientationMask) Has(o Orientation) bool {
	o.mustBeValid()
	return m&(1<<uint(o)) != 0
}

// With returns the mask with o added.
func (m OrientationMask) With(o Orientation) OrientationMask {
	o.mustBeValid()
	return m | 1<<uint(o)
}
