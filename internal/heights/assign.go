// Package heights assigns floor heights to the cells of a layout and repairs
// adjacent cells whose heights are too far apart for a single stair.
package heights

import (
	"math/rand"

	"github.com/zyedidia/generic/mapset"

	"github.com/lawnchairsociety/stairgen/internal/cellgraph"
)

// Graph is the read side of the cell graph used by the height passes
type Graph interface {
	Cells() []*cellgraph.Cell
	Cell(id int) *cellgraph.Cell
}

// Node is the working height of one cell during assignment and repair.
type Node struct {
	CellID       int
	Height       int
	MarkIncrease bool
	MarkDecrease bool
}

type queued struct {
	id     int
	height int
}

type assigner struct {
	graph       Graph
	rng         *rand.Rand
	probability float64
	nodes       map[int]*Node
	visited     mapset.Set[int]
}

// Assign computes a height for every cell with a breadth-first walk. Clamped
// cells are walked first so their heights become the baseline of everything
// they reach; the remaining cells are then walked in cell order. Eligible
// cells draw one float from rng and step one level down or up with
// probability variationProbability/2 each.
//
// An empty graph yields an empty result.
func Assign(g Graph, rng *rand.Rand, variationProbability float64) map[int]*Node {
	cells := g.Cells()
	a := &assigner{
		graph:       g,
		rng:         rng,
		probability: variationProbability,
		nodes:       make(map[int]*Node, len(cells)),
		visited:     mapset.New[int](),
	}
	if len(cells) == 0 {
		return a.nodes
	}

	var anchors []queued
	for _, c := range cells {
		if c.HeightClamped {
			a.visited.Put(c.ID)
			anchors = append(anchors, queued{id: c.ID, height: c.Height()})
		}
	}
	a.walk(anchors)

	for _, c := range cells {
		if a.visited.Has(c.ID) {
			continue
		}
		a.visited.Put(c.ID)
		a.walk([]queued{{id: c.ID, height: c.Height()}})
	}

	return a.nodes
}

func (a *assigner) walk(queue []queued) {
	for qi := 0; qi < len(queue); qi++ {
		item := queue[qi]
		cell := a.graph.Cell(item.id)
		if cell == nil {
			continue
		}

		height := a.heightFor(cell, item.height)
		a.nodes[cell.ID] = &Node{CellID: cell.ID, Height: height}

		for _, nid := range cell.Adjacent {
			if a.visited.Has(nid) {
				continue
			}
			a.visited.Put(nid)
			queue = append(queue, queued{id: nid, height: height})
		}
	}
}

func (a *assigner) heightFor(cell *cellgraph.Cell, inherited int) int {
	if cell.FixedHeight() {
		return cell.Height()
	}
	if !canVary(cell) {
		return inherited
	}

	r := a.rng.Float64()
	switch {
	case r < a.probability/2:
		return inherited - 1
	case r < a.probability:
		return inherited + 1
	}
	return inherited
}

// canVary returns true for cells large enough to sit on their own level.
func canVary(cell *cellgraph.Cell) bool {
	if cell.Type == cellgraph.CellRoom || cell.Type == cellgraph.CellCorridorPadding {
		return false
	}
	return cell.Bounds.Width() > 1 && cell.Bounds.Length() > 1
}
