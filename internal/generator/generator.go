// Package generator runs one full vertical connectivity pass over a cell
// graph: height assignment, height repair and stair placement.
package generator

import (
	"errors"
	"fmt"
	"math/rand"

	"github.com/lawnchairsociety/stairgen/internal/cellgraph"
	"github.com/lawnchairsociety/stairgen/internal/config"
	"github.com/lawnchairsociety/stairgen/internal/heights"
	"github.com/lawnchairsociety/stairgen/internal/logger"
	"github.com/lawnchairsociety/stairgen/internal/stairs"
)

var ErrNilGraph = errors.New("generator: nil graph")

// Result summarizes a generation run. Hitting an iteration cap is not an
// error; it shows up as Converged == false.
type Result struct {
	Seed     int64
	Strategy config.Strategy

	RepairIterations int
	HeightsSettled   bool

	// IslandIterations is zero for the legacy strategy.
	IslandIterations int
	Unresolved       int

	Stairs       int
	PaddingCells int
	Converged    bool
}

// Generate assigns heights and places stairs on g using a random stream
// seeded with seed. The same graph, seed and config always produce the same
// heights and stairs. Heights are written back to the cells, stairs are
// stored on the graph and padding cells may be added.
func Generate(g stairs.Dungeon, seed int64, cfg *config.GenerationConfig) (Result, error) {
	if g == nil {
		return Result{}, ErrNilGraph
	}
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return Result{}, fmt.Errorf("generator: %w", err)
	}

	result := Result{Seed: seed, Strategy: cfg.Strategy}
	cellsBefore := len(g.Cells())

	rng := rand.New(rand.NewSource(seed))
	nodes := heights.Assign(g, rng, cfg.HeightVariationProbability)
	result.RepairIterations, result.HeightsSettled = heights.Fix(g, nodes, cfg.MaxAllowedStairHeight, flushPadding(g), cfg.HeightRepairIterations)
	heights.Commit(g, nodes)
	if !result.HeightsSettled {
		logger.Warning("height repair hit the iteration cap", "seed", seed, "iterations", result.RepairIterations)
	}

	switch cfg.Strategy {
	case config.StrategyLegacy:
		result.Stairs = stairs.ConnectLegacy(g, cfg)
		result.Converged = result.HeightsSettled
	default:
		report := stairs.ConnectIslands(g, cfg)
		result.IslandIterations = report.Iterations
		result.Unresolved = len(report.Unresolved)
		result.Stairs = report.Stairs
		result.Converged = result.HeightsSettled && report.Converged
	}
	result.PaddingCells = len(g.Cells()) - cellsBefore

	logger.Info("generation done",
		"seed", seed,
		"strategy", cfg.Strategy.String(),
		"stairs", result.Stairs,
		"padding", result.PaddingCells,
		"converged", result.Converged,
	)
	return result, nil
}

// flushPadding returns the edges between padding cells and the neighbors
// they already sit level with. Repair keeps those pairs level.
func flushPadding(g stairs.Dungeon) map[heights.Edge]bool {
	edges := make(map[heights.Edge]bool)
	for _, c := range g.Cells() {
		if c.Type != cellgraph.CellCorridorPadding {
			continue
		}
		for _, nid := range c.Adjacent {
			n := g.Cell(nid)
			if n == nil || n.Height() != c.Height() {
				continue
			}
			edges[heights.Edge{From: c.ID, To: nid}] = true
			edges[heights.Edge{From: nid, To: c.ID}] = true
		}
	}
	return edges
}
