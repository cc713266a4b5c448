package stairs

import (
	"sort"

	"github.com/zyedidia/generic/mapset"

	"github.com/lawnchairsociety/stairgen/internal/cellgraph"
	"github.com/lawnchairsociety/stairgen/internal/config"
	"github.com/lawnchairsociety/stairgen/internal/grid"
	"github.com/lawnchairsociety/stairgen/internal/logger"
)

// Weight thresholds of the legacy passes, strictest first.
var legacyThresholds = []int{100, 50, 0, -50}

const (
	roomDoorWeight       = 100
	sideOccupiedWeight   = 10
	doorAlignWeight      = 100
	doorBlockWeight      = -100
	flankStairWeight     = -60
	crossingStairWeight  = -100
	mirrorAlignWeight    = 50
	mirrorMisalignWeight = -50
	entryStepWeight      = -10
)

type scored struct {
	placement
	weight int
}

type legacyPass struct {
	g         Dungeon
	cfg       *config.GenerationConfig
	threshold int

	edges   mapset.Set[edgeKey]
	visited mapset.Set[int]
	// decided holds cells that received a stair in this pass; their other
	// edges wait for the next pass.
	decided mapset.Set[int]
	placed  int
	padded  int
}

// ConnectLegacy places stairs by walking every cell edge, once per weight
// threshold. An edge gets a stair when its cells differ in height by no more
// than the configured maximum and either no stair-free path already joins
// them within the connection tolerance or a door crosses the edge. The best
// scoring position along the shared boundary is taken if it reaches the
// pass threshold; otherwise the edge is retried in the next pass. A cell
// receives at most one stair per pass.
//
// It returns the number of stairs placed.
func ConnectLegacy(g Dungeon, cfg *config.GenerationConfig) int {
	total, padded := 0, 0
	for _, threshold := range legacyThresholds {
		p := newLegacyPass(g, cfg, threshold)
		p.run()
		logger.Debug("legacy stair pass done", "threshold", threshold, "placed", p.placed, "padding", p.padded)
		total += p.placed
		padded += p.padded
	}
	logger.Info("legacy stair placement done", "stairs", total, "padding", padded)
	return total
}

func newLegacyPass(g Dungeon, cfg *config.GenerationConfig, threshold int) *legacyPass {
	return &legacyPass{
		g:         g,
		cfg:       cfg,
		threshold: threshold,
		edges:     mapset.New[edgeKey](),
		visited:   mapset.New[int](),
		decided:   mapset.New[int](),
	}
}

func (p *legacyPass) run() {
	for _, start := range p.g.Cells() {
		if p.visited.Has(start.ID) {
			continue
		}
		stack := []int{start.ID}
		for len(stack) > 0 {
			id := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if p.visited.Has(id) {
				continue
			}
			p.visited.Put(id)

			cell := p.g.Cell(id)
			if cell == nil {
				continue
			}
			neighbors := cell.Adjacent
			for _, nid := range neighbors {
				p.visitEdge(id, nid)
			}
			for i := len(neighbors) - 1; i >= 0; i-- {
				if !p.visited.Has(neighbors[i]) {
					stack = append(stack, neighbors[i])
				}
			}
		}
	}
}

func (p *legacyPass) visitEdge(a, b int) {
	key := keyOf(a, b)
	if p.edges.Has(key) {
		return
	}
	p.edges.Put(key)
	if p.decided.Has(a) || p.decided.Has(b) {
		return
	}

	ca, cb := p.g.Cell(a), p.g.Cell(b)
	if ca == nil || cb == nil {
		return
	}
	delta := abs(ca.Height() - cb.Height())
	if delta == 0 || delta > p.cfg.MaxAllowedStairHeight {
		return
	}
	if p.g.ContainsStairBetween(a, b) {
		return
	}
	needed := !p.g.ContainsAdjacencyPath(a, b, p.cfg.StairConnectionTolerance, true) ||
		p.g.Doors().ContainsDoorBetween(a, b)
	if !needed {
		return
	}

	owner, remote := lowerFirst(ca, cb)
	candidates := p.candidates(owner, remote)
	if len(candidates) == 0 {
		return
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].weight > candidates[j].weight
	})
	best := candidates[0]
	if best.weight < p.threshold {
		return
	}
	if p.accept(best, owner, remote) {
		p.decided.Put(a)
		p.decided.Put(b)
	}
}

func (p *legacyPass) candidates(owner, remote *cellgraph.Cell) []scored {
	room := owner.IsRoom() || remote.IsRoom()
	var out []scored
	for _, pair := range grid.SharedBoundary(owner.Bounds, remote.Bounds) {
		pl := newPlacement(pair)
		if p.g.ContainsStairAt(pl.Stair.X, pl.Stair.Z) {
			continue
		}
		if room {
			info, ok := p.g.Lookup(pl.Stair.X, pl.Stair.Z)
			if !ok || !info.ContainsDoor || !pl.doorCrossing(p.g) {
				continue
			}
			out = append(out, scored{placement: pl, weight: roomDoorWeight})
			continue
		}
		out = append(out, scored{placement: pl, weight: p.weigh(pl, owner)})
	}
	return out
}

// weigh scores a corridor to corridor stair position.
func (p *legacyPass) weigh(pl placement, owner *cellgraph.Cell) int {
	g := p.g
	doors := g.Doors()
	weight := 0

	for _, side := range pl.Sides {
		if occupied(g, side) {
			weight += sideOccupiedWeight
		}
	}

	if pl.doorCrossing(g) || doors.ContainsDoor(pl.Entry.X, pl.Entry.Z, pl.Stair.X, pl.Stair.Z) {
		weight += doorAlignWeight
	}
	for _, side := range pl.Sides {
		if doors.ContainsDoor(pl.Stair.X, pl.Stair.Z, side.X, side.Z) {
			weight += doorBlockWeight
		}
		if g.ContainsStairAt(side.X, side.Z) {
			weight += flankStairWeight
		}
	}

	for _, t := range []grid.Tile{pl.Entry, pl.Diagonals[0], pl.Diagonals[1]} {
		if s, ok := g.StairAt(t.X, t.Z); ok && s.Rotation != pl.Rotation && s.Rotation != pl.Rotation.Opposite() {
			weight += crossingStairWeight
			break
		}
	}

	if s, ok := g.StairAt(pl.Remote.X, pl.Remote.Z); ok {
		if s.Rotation == pl.Rotation {
			weight += mirrorAlignWeight
		} else {
			weight += mirrorMisalignWeight
		}
	}

	if info, ok := g.Lookup(pl.Entry.X, pl.Entry.Z); ok {
		entry := g.Cell(info.CellID)
		if entry != nil && entry.Height() != owner.Height() && !g.ContainsStairAt(pl.Entry.X, pl.Entry.Z) {
			weight += entryStepWeight
		}
	}

	return weight
}

// accept pads the entry tile if needed and records the stair. It returns
// false if the stair could not be stored.
func (p *legacyPass) accept(best scored, owner, remote *cellgraph.Cell) bool {
	g := p.g
	ownerID, remoteID, height := owner.ID, remote.ID, owner.Height()

	if id, ok := g.AddCorridorPadding(best.Entry.X, height, best.Entry.Z); ok {
		g.RebuildCellLookup()
		g.RebuildSpatialLookup()
		g.RebuildAdjacency()
		p.padded++
		logger.Debug("inserted corridor padding", "cell", id, "tile", best.Entry.String(), "height", height)
	}

	owner, remote = g.Cell(ownerID), g.Cell(remoteID)
	if owner == nil || remote == nil {
		return false
	}
	info := stairInfo(best.placement, owner, remote, cellSize(p.cfg))
	if !g.AddStair(info) {
		return false
	}
	p.placed++
	logger.Debug("placed stair",
		"owner", ownerID,
		"remote", remoteID,
		"tile", info.IPosition.String(),
		"rotation", info.Rotation.String(),
		"weight", best.weight,
		"threshold", p.threshold,
	)
	return true
}
