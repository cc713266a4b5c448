package heights

import (
	"github.com/zyedidia/generic/mapset"
)

// Edge is an ordered pair of cell ids
type Edge struct {
	From, To int
}

// Repair runs one repair sweep over the nodes and returns true if any height
// changed, meaning another sweep is needed.
//
// The sweep is a depth-first walk from the first cell. A visited cell is
// compared against its neighbors in order; on the first neighbor whose
// height differs by more than maxAllowed (more than zero for an edge listed
// in zeroTolerance) the cell is marked to move one level towards it and the
// remaining neighbors are not checked. Marks are applied after the walk.
// Cells with a fixed height never move. Cells not reachable from the first
// cell are not examined.
func Repair(g Graph, nodes map[int]*Node, maxAllowed int, zeroTolerance map[Edge]bool) bool {
	cells := g.Cells()
	if len(cells) == 0 {
		return false
	}

	visited := mapset.New[int]()
	stack := []int{cells[0].ID}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if visited.Has(id) {
			continue
		}
		visited.Put(id)

		cell := g.Cell(id)
		node := nodes[id]
		if cell == nil || node == nil {
			continue
		}

		for _, nid := range cell.Adjacent {
			other := nodes[nid]
			if other == nil {
				continue
			}
			limit := maxAllowed
			if zeroTolerance[Edge{From: id, To: nid}] {
				limit = 0
			}
			if abs(node.Height-other.Height) > limit {
				if node.Height > other.Height {
					node.MarkDecrease = true
				} else {
					node.MarkIncrease = true
				}
				break
			}
		}

		for i := len(cell.Adjacent) - 1; i >= 0; i-- {
			if nid := cell.Adjacent[i]; !visited.Has(nid) {
				stack = append(stack, nid)
			}
		}
	}

	changed := false
	for _, c := range cells {
		node := nodes[c.ID]
		if node == nil {
			continue
		}
		if !c.FixedHeight() {
			switch {
			case node.MarkDecrease:
				node.Height--
				changed = true
			case node.MarkIncrease:
				node.Height++
				changed = true
			}
		}
		node.MarkDecrease = false
		node.MarkIncrease = false
	}
	return changed
}

// Fix repeats Repair until no height changes or maxIterations sweeps ran.
// It returns the number of sweeps and whether the heights settled.
func Fix(g Graph, nodes map[int]*Node, maxAllowed int, zeroTolerance map[Edge]bool, maxIterations int) (int, bool) {
	for i := 0; i < maxIterations; i++ {
		if !Repair(g, nodes, maxAllowed, zeroTolerance) {
			return i + 1, true
		}
	}
	return maxIterations, false
}

// Setter writes heights back to the cell graph
type Setter interface {
	SetHeight(id, y int)
}

// Commit writes node heights back to their cells.
func Commit(g Setter, nodes map[int]*Node) {
	for id, node := range nodes {
		g.SetHeight(id, node.Height)
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
