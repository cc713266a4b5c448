package stairs

import (
	"sort"

	"github.com/zyedidia/generic/mapset"

	"github.com/lawnchairsociety/stairgen/internal/cellgraph"
	"github.com/lawnchairsociety/stairgen/internal/config"
	"github.com/lawnchairsociety/stairgen/internal/grid"
	"github.com/lawnchairsociety/stairgen/internal/islands"
	"github.com/lawnchairsociety/stairgen/internal/logger"
)

const (
	doorCrossingRank = 100
	sideOwnerRank    = 10
)

// Report describes the outcome of ConnectIslands.
type Report struct {
	Iterations int
	Converged  bool
	Stairs     int

	// Unresolved holds the boundary edges that got no stair in the last
	// iteration. After convergence each of them is joined by another path.
	Unresolved []islands.BoundaryEdge
}

type ranked struct {
	placement
	owner, remote int
	rank          int
}

// ConnectIslands places one stair on every boundary between an island and a
// higher neighbor. Boundaries without a valid stair position are repaired by
// lowering the higher cell, or by raising every movable cell when the higher
// cell cannot move, and the whole placement is redone. The loop stops once
// an iteration needs no repair or after cfg.IslandIterations iterations.
func ConnectIslands(g Dungeon, cfg *config.GenerationConfig) Report {
	var report Report
	for iter := 1; iter <= cfg.IslandIterations; iter++ {
		report.Iterations = iter

		set := islands.Build(g)
		g.ClearStairs()
		table := orientationTable{}

		report.Stairs = 0
		report.Unresolved = nil
		for _, is := range set.All() {
			for _, nidx := range is.Neighbors() {
				if set.Island(nidx).Height <= is.Height {
					continue
				}
				best, ok := bestCandidate(g, cfg, set, is, nidx, table)
				if !ok {
					report.Unresolved = append(report.Unresolved, is.Boundaries[nidx].Edges...)
					continue
				}
				info := stairInfo(best.placement, g.Cell(best.owner), g.Cell(best.remote), cellSize(cfg))
				if g.AddStair(info) {
					table.register(best.placement)
					report.Stairs++
				}
			}
		}

		// The last iteration keeps the heights the stairs were placed on.
		last := iter == cfg.IslandIterations
		if last && needsRepair(g, cfg, report.Unresolved) {
			break
		}
		if last || !repair(g, cfg, report.Unresolved) {
			report.Converged = true
			logger.Info("island stair placement converged", "iterations", iter, "stairs", report.Stairs, "islands", set.Len())
			return report
		}
		logger.Debug("island stair placement repaired heights", "iteration", iter, "queued", len(report.Unresolved))
	}

	logger.Warning("island stair placement hit the iteration cap",
		"iterations", report.Iterations,
		"stairs", report.Stairs,
		"unresolved", len(report.Unresolved),
	)
	return report
}

// bestCandidate ranks every valid stair position on the boundary between
// island is and its higher neighbor at index remoteIdx.
func bestCandidate(g Dungeon, cfg *config.GenerationConfig, set *islands.Set, is *islands.Island, remoteIdx int, table orientationTable) (ranked, bool) {
	if cfg.AvoidSingleCellDeadEnds && set.IsSingleTileDeadEnd(remoteIdx) {
		return ranked{}, false
	}

	var candidates []ranked
	for _, edge := range is.Boundaries[remoteIdx].Edges {
		owner, remote := g.Cell(edge.OwnerCell), g.Cell(edge.RemoteCell)
		if owner == nil || remote == nil {
			continue
		}
		if remote.Height()-owner.Height() > cfg.MaxAllowedStairHeight {
			continue
		}
		room := owner.IsRoom() || remote.IsRoom()
		if room && cfg.AvoidStairsInRooms && owner.IsRoom() {
			continue
		}

		for _, pair := range grid.SharedBoundary(owner.Bounds, remote.Bounds) {
			pl := newPlacement(pair)
			if !ownedBy(g, pl.Stair, owner.ID) || !ownedBy(g, pl.Remote, remote.ID) {
				continue
			}
			if g.ContainsStairAt(pl.Stair.X, pl.Stair.Z) {
				continue
			}
			door := pl.doorCrossing(g)
			if room && !door {
				continue
			}
			if !fitsIsland(pl, is) || !table.fits(pl) {
				continue
			}

			rank := 0
			if door {
				rank += doorCrossingRank
			}
			for _, side := range pl.Sides {
				if ownedBy(g, side, owner.ID) {
					rank += sideOwnerRank
				}
			}
			candidates = append(candidates, ranked{placement: pl, owner: owner.ID, remote: remote.ID, rank: rank})
		}
	}
	if len(candidates) == 0 {
		return ranked{}, false
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].rank > candidates[j].rank
	})
	return candidates[0], true
}

// fitsIsland checks the walkable pattern around a stair: the entry tile must
// be part of the owner island, and a side tile may only be part of it when
// the diagonal tile next to the entry is too.
func fitsIsland(pl placement, is *islands.Island) bool {
	if !is.HasTile(pl.Entry) {
		return false
	}
	for i, side := range pl.Sides {
		if is.HasTile(side) && !is.HasTile(pl.Diagonals[i]) {
			return false
		}
	}
	return true
}

// needsRepair returns true if a queued edge still lacks a path.
func needsRepair(g Dungeon, cfg *config.GenerationConfig, queued []islands.BoundaryEdge) bool {
	for _, edge := range queued {
		if g.Cell(edge.OwnerCell) == nil || g.Cell(edge.RemoteCell) == nil {
			continue
		}
		if !g.ContainsAdjacencyPath(edge.OwnerCell, edge.RemoteCell, cfg.StairConnectionTolerance, true) {
			return true
		}
	}
	return false
}

// repair adjusts heights for queued edges that still lack a path. Each cell
// is lowered at most once. It returns true if any height changed.
func repair(g Dungeon, cfg *config.GenerationConfig, queued []islands.BoundaryEdge) bool {
	lowered := mapset.New[int]()
	raiseAll := false
	changed := false

	for _, edge := range queued {
		a, b := g.Cell(edge.OwnerCell), g.Cell(edge.RemoteCell)
		if a == nil || b == nil {
			continue
		}
		if g.ContainsAdjacencyPath(a.ID, b.ID, cfg.StairConnectionTolerance, true) {
			continue
		}
		_, higher := lowerFirst(a, b)
		if higher.FixedHeight() {
			raiseAll = true
			continue
		}
		if lowered.Has(higher.ID) {
			continue
		}
		lowered.Put(higher.ID)
		g.SetHeight(higher.ID, higher.Height()-1)
		changed = true
	}

	if raiseAll {
		for _, c := range g.Cells() {
			if !c.FixedHeight() {
				g.SetHeight(c.ID, c.Height()+1)
				changed = true
			}
		}
	}
	return changed
}

var _ Dungeon = (*cellgraph.Graph)(nil)
