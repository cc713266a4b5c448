package stairs

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lawnchairsociety/stairgen/internal/cellgraph"
	"github.com/lawnchairsociety/stairgen/internal/config"
	"github.com/lawnchairsociety/stairgen/internal/grid"
)

func cell(id, x, y, z, w, l int, ct cellgraph.CellType) cellgraph.Cell {
	return cellgraph.Cell{ID: id, Bounds: grid.NewRect(x, y, z, w, l), Type: ct}
}

func door(a, b, x1, z1, x2, z2 int) cellgraph.Door {
	return cellgraph.Door{CellA: a, CellB: b, From: grid.Tile{X: x1, Z: z1}, To: grid.Tile{X: x2, Z: z2}}
}

func newGraph(t *testing.T, cells []cellgraph.Cell, doors ...cellgraph.Door) *cellgraph.Graph {
	t.Helper()
	g, err := cellgraph.New(cells, doors)
	require.NoError(t, err)
	return g
}

// twoCorridors stacks two 4x2 corridors on Z:
//
//	z0..1  [ 1 ]  height a
//	z2..3  [ 2 ]  height b
func twoCorridors(t *testing.T, a, b int, doors ...cellgraph.Door) *cellgraph.Graph {
	return newGraph(t, []cellgraph.Cell{
		cell(1, 0, a, 0, 4, 2, cellgraph.CellCorridor),
		cell(2, 0, b, 2, 4, 2, cellgraph.CellCorridor),
	}, doors...)
}

// gridLayout is a 4x4 block of 3x3 corridors with random heights.
func gridLayout(t *testing.T, seed int64) *cellgraph.Graph {
	t.Helper()
	rng := rand.New(rand.NewSource(seed))
	cells := make([]cellgraph.Cell, 0, 16)
	for i := 0; i < 16; i++ {
		cells = append(cells, cell(i+1, (i%4)*3, rng.Intn(3), (i/4)*3, 3, 3, cellgraph.CellCorridor))
	}
	return newGraph(t, cells)
}

func heightsOf(g *cellgraph.Graph) map[int]int {
	out := make(map[int]int)
	for _, c := range g.Cells() {
		out[c.ID] = c.Height()
	}
	return out
}

func assertUniqueStairTiles(t *testing.T, g *cellgraph.Graph) {
	t.Helper()
	seen := make(map[grid.IntVector]bool)
	for _, s := range g.AllStairs() {
		assert.False(t, seen[s.IPosition], "duplicate stair at %s", s.IPosition)
		seen[s.IPosition] = true
	}
}

func TestNewPlacement(t *testing.T) {
	pl := newPlacement(grid.TilePair{From: grid.Tile{X: 3, Z: 1}, To: grid.Tile{X: 3, Z: 2}})

	assert.Equal(t, grid.North, pl.Rotation)
	assert.Equal(t, grid.Tile{X: 3, Z: 0}, pl.Entry)
	assert.ElementsMatch(t, []grid.Tile{{X: 4, Z: 1}, {X: 2, Z: 1}}, pl.Sides[:])
	assert.ElementsMatch(t, []grid.Tile{{X: 4, Z: 0}, {X: 2, Z: 0}}, pl.Diagonals[:])

	// Each side and its diagonal partner sit on the same column.
	for i := range pl.Sides {
		assert.Equal(t, pl.Sides[i].X, pl.Diagonals[i].X)
	}
}

func TestOrientationTable(t *testing.T) {
	table := orientationTable{}
	first := newPlacement(grid.TilePair{From: grid.Tile{X: 5, Z: 5}, To: grid.Tile{X: 5, Z: 6}})
	require.True(t, table.fits(first))
	table.register(first)

	sameTile := newPlacement(grid.TilePair{From: grid.Tile{X: 5, Z: 5}, To: grid.Tile{X: 6, Z: 5}})
	assert.False(t, table.fits(sameTile))

	parallel := newPlacement(grid.TilePair{From: grid.Tile{X: 6, Z: 5}, To: grid.Tile{X: 6, Z: 6}})
	assert.True(t, table.fits(parallel), "side by side stairs may share a direction")

	crossing := newPlacement(grid.TilePair{From: grid.Tile{X: 6, Z: 5}, To: grid.Tile{X: 7, Z: 5}})
	assert.False(t, table.fits(crossing), "perpendicular stair next to an accepted one")

	intoStair := newPlacement(grid.TilePair{From: grid.Tile{X: 5, Z: 4}, To: grid.Tile{X: 5, Z: 5}})
	assert.False(t, table.fits(intoStair), "remote tile is an accepted stair")

	fromStair := newPlacement(grid.TilePair{From: grid.Tile{X: 5, Z: 6}, To: grid.Tile{X: 5, Z: 7}})
	assert.False(t, table.fits(fromStair), "entry tile is an accepted stair")

	far := newPlacement(grid.TilePair{From: grid.Tile{X: 9, Z: 9}, To: grid.Tile{X: 10, Z: 9}})
	assert.True(t, table.fits(far))
}

func TestLegacyFlatGraph(t *testing.T) {
	g := twoCorridors(t, 0, 0)

	assert.Zero(t, ConnectLegacy(g, config.DefaultConfig()))
	assert.Zero(t, g.StairCount())
	assert.Equal(t, map[int]int{1: 0, 2: 0}, heightsOf(g))
}

func TestLegacySingleStepWithDoor(t *testing.T) {
	g := twoCorridors(t, 0, 1, door(1, 2, 1, 1, 1, 2))

	require.Equal(t, 1, ConnectLegacy(g, config.DefaultConfig()))

	stairs := g.AllStairs()
	require.Len(t, stairs, 1)
	s := stairs[0]
	assert.Equal(t, 1, s.OwnerCell)
	assert.Equal(t, 2, s.ConnectedToCell)
	assert.Equal(t, grid.IntVector{X: 1, Y: 0, Z: 1}, s.IPosition)
	assert.Equal(t, grid.North, s.Rotation)
	assert.Equal(t, grid.Vector3{X: 6, Y: 0, Z: 6}, s.Position)
	assert.Equal(t, 2, g.CellCount(), "entry tile already walkable")
}

func TestLegacySingleStepWithoutDoor(t *testing.T) {
	g := twoCorridors(t, 1, 0)

	require.Equal(t, 1, ConnectLegacy(g, config.DefaultConfig()))

	s := g.AllStairs()[0]
	assert.Equal(t, 2, s.OwnerCell, "the lower cell owns the stair")
	assert.Equal(t, grid.South, s.Rotation)
	assert.Equal(t, grid.IntVector{X: 1, Y: 0, Z: 2}, s.IPosition)
}

func TestLegacySkipsTooHighSteps(t *testing.T) {
	g := twoCorridors(t, 0, 2, door(1, 2, 1, 1, 1, 2))

	assert.Zero(t, ConnectLegacy(g, config.DefaultConfig()))
}

func TestLegacyPadsFreeEntryTile(t *testing.T) {
	g := newGraph(t, []cellgraph.Cell{
		cell(1, 0, 0, 1, 4, 1, cellgraph.CellCorridor),
		cell(2, 0, 1, 2, 4, 1, cellgraph.CellCorridor),
	}, door(1, 2, 1, 1, 1, 2))

	require.Equal(t, 1, ConnectLegacy(g, config.DefaultConfig()))

	require.Equal(t, 3, g.CellCount())
	pad := g.Cell(3)
	require.NotNil(t, pad)
	assert.Equal(t, cellgraph.CellCorridorPadding, pad.Type)
	assert.Equal(t, grid.NewRect(1, 0, 0, 1, 1), pad.Bounds)
	assert.Contains(t, g.Cell(1).Adjacent, 3)

	s := g.AllStairs()[0]
	assert.Equal(t, grid.IntVector{X: 1, Y: 0, Z: 1}, s.IPosition)
}

func TestLegacyRoomNeedsDoor(t *testing.T) {
	cells := []cellgraph.Cell{
		cell(1, 0, 0, 0, 4, 2, cellgraph.CellRoom),
		cell(2, 0, 1, 2, 4, 2, cellgraph.CellCorridor),
	}

	g := newGraph(t, cells)
	assert.Zero(t, ConnectLegacy(g, config.DefaultConfig()))

	g = newGraph(t, cells, door(1, 2, 2, 1, 2, 2))
	require.Equal(t, 1, ConnectLegacy(g, config.DefaultConfig()))
	assert.Equal(t, grid.IntVector{X: 2, Y: 0, Z: 1}, g.AllStairs()[0].IPosition)
}

func TestLegacyNeverDuplicatesPairs(t *testing.T) {
	g := twoCorridors(t, 0, 1, door(1, 2, 1, 1, 1, 2))

	require.Equal(t, 1, ConnectLegacy(g, config.DefaultConfig()))
	assert.Zero(t, ConnectLegacy(g, config.DefaultConfig()))
	assert.Equal(t, 1, g.StairCount())
}

// cornerCell joins two higher corridors that only touch each other at a
// corner:
//
//	z4..5  [ 2 ]
//	z0..3  [ 1 ][3]
func cornerCell(t *testing.T) *cellgraph.Graph {
	return newGraph(t, []cellgraph.Cell{
		cell(1, 0, 0, 0, 4, 4, cellgraph.CellCorridor),
		cell(2, 0, 1, 4, 4, 2, cellgraph.CellCorridor),
		cell(3, 4, 1, 0, 2, 4, cellgraph.CellCorridor),
	})
}

func TestLegacyPassOneStairPerCell(t *testing.T) {
	g := cornerCell(t)
	p := newLegacyPass(g, config.DefaultConfig(), 0)
	p.run()

	assert.Equal(t, 1, p.placed)
	require.Equal(t, 1, g.StairCount())
	assert.Equal(t, 1, g.AllStairs()[0].OwnerCell)

	g = cornerCell(t)
	require.Equal(t, 2, ConnectLegacy(g, config.DefaultConfig()))
	assert.True(t, g.ContainsStairBetween(1, 2))
	assert.True(t, g.ContainsStairBetween(1, 3))
	assertUniqueStairTiles(t, g)
}

func TestLegacyWeights(t *testing.T) {
	stairAt := func(owner, remote, x, z int, o grid.Orientation) cellgraph.StairInfo {
		return cellgraph.StairInfo{OwnerCell: owner, ConnectedToCell: remote, IPosition: grid.IntVector{X: x, Z: z}, Rotation: o}
	}
	// Stair (1,1) climbing north to (1,2); entry (1,0), sides (2,1) and (0,1),
	// diagonals (2,0) and (0,0). Both sides lie in cell 1.
	pl := newPlacement(grid.TilePair{From: grid.Tile{X: 1, Z: 1}, To: grid.Tile{X: 1, Z: 2}})

	tests := []struct {
		name   string
		doors  []cellgraph.Door
		stairs []cellgraph.StairInfo
		want   int
	}{
		{name: "occupied sides", want: 20},
		{name: "door across the stair", doors: []cellgraph.Door{door(1, 2, 1, 1, 1, 2)}, want: 120},
		{name: "door into the entry", doors: []cellgraph.Door{door(1, 1, 1, 0, 1, 1)}, want: 120},
		{name: "door to a side", doors: []cellgraph.Door{door(1, 1, 1, 1, 2, 1)}, want: -80},
		{name: "stair on a side", stairs: []cellgraph.StairInfo{stairAt(1, 2, 2, 1, grid.North)}, want: -40},
		{name: "crossing stair on a diagonal", stairs: []cellgraph.StairInfo{stairAt(1, 2, 2, 0, grid.East)}, want: -80},
		{name: "parallel stair on a diagonal", stairs: []cellgraph.StairInfo{stairAt(1, 2, 2, 0, grid.North)}, want: 20},
		{name: "crossing stairs counted once", stairs: []cellgraph.StairInfo{
			stairAt(1, 2, 2, 0, grid.East),
			stairAt(1, 2, 0, 0, grid.West),
		}, want: -80},
		{name: "aligned stair on the remote tile", stairs: []cellgraph.StairInfo{stairAt(2, 1, 1, 2, grid.North)}, want: 70},
		{name: "misaligned stair on the remote tile", stairs: []cellgraph.StairInfo{stairAt(2, 1, 1, 2, grid.South)}, want: -30},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := twoCorridors(t, 0, 1)
			for _, d := range tt.doors {
				g.Doors().Add(d)
			}
			for _, s := range tt.stairs {
				require.True(t, g.AddStair(s))
			}
			p := &legacyPass{g: g, cfg: config.DefaultConfig()}
			assert.Equal(t, tt.want, p.weigh(pl, g.Cell(1)))
		})
	}
}

func TestLegacyWeightEntryStep(t *testing.T) {
	// The entry tile (1,0) belongs to cell 3, two above the owner.
	layout := []cellgraph.Cell{
		cell(1, 0, 0, 1, 4, 1, cellgraph.CellCorridor),
		cell(2, 0, 1, 2, 4, 2, cellgraph.CellCorridor),
		cell(3, 0, 2, 0, 4, 1, cellgraph.CellCorridor),
	}
	pl := newPlacement(grid.TilePair{From: grid.Tile{X: 1, Z: 1}, To: grid.Tile{X: 1, Z: 2}})

	g := newGraph(t, layout)
	p := &legacyPass{g: g, cfg: config.DefaultConfig()}
	assert.Equal(t, 10, p.weigh(pl, g.Cell(1)))

	g = newGraph(t, layout)
	require.True(t, g.AddStair(cellgraph.StairInfo{
		OwnerCell:       3,
		ConnectedToCell: 1,
		IPosition:       grid.IntVector{X: 1, Y: 2, Z: 0},
		Rotation:        grid.North,
	}))
	p = &legacyPass{g: g, cfg: config.DefaultConfig()}
	assert.Equal(t, 20, p.weigh(pl, g.Cell(1)), "a stair on the entry tile removes the step")
}

func TestLegacyGridLayout(t *testing.T) {
	for seed := int64(1); seed <= 10; seed++ {
		g := gridLayout(t, seed)
		ConnectLegacy(g, config.DefaultConfig())
		assertUniqueStairTiles(t, g)

		for _, s := range g.AllStairs() {
			owner, remote := g.Cell(s.OwnerCell), g.Cell(s.ConnectedToCell)
			assert.Equal(t, 1, remote.Height()-owner.Height(), "seed %d", seed)
			assert.True(t, owner.Bounds.Contains(s.IPosition.Tile()), "seed %d", seed)
		}
	}
}

func TestLegacyDeterministic(t *testing.T) {
	run := func() []cellgraph.StairInfo {
		g := gridLayout(t, 42)
		ConnectLegacy(g, config.DefaultConfig())
		return g.AllStairs()
	}
	assert.Equal(t, run(), run())
}

func TestIslandsFlatGraph(t *testing.T) {
	g := twoCorridors(t, 0, 0)

	report := ConnectIslands(g, config.DefaultConfig())
	assert.True(t, report.Converged)
	assert.Equal(t, 1, report.Iterations)
	assert.Zero(t, report.Stairs)
	assert.Zero(t, g.StairCount())
	assert.Equal(t, map[int]int{1: 0, 2: 0}, heightsOf(g))
}

func TestIslandsSingleStep(t *testing.T) {
	g := twoCorridors(t, 0, 1, door(1, 2, 1, 1, 1, 2))

	report := ConnectIslands(g, config.DefaultConfig())
	require.True(t, report.Converged)
	assert.Equal(t, 1, report.Iterations)
	assert.Equal(t, 1, report.Stairs)

	stairs := g.AllStairs()
	require.Len(t, stairs, 1)
	assert.Equal(t, 1, stairs[0].OwnerCell)
	assert.Equal(t, 2, stairs[0].ConnectedToCell)
	assert.Equal(t, grid.IntVector{X: 1, Y: 0, Z: 1}, stairs[0].IPosition)
	assert.Equal(t, grid.North, stairs[0].Rotation)
}

func TestIslandsDeadEndAvoidance(t *testing.T) {
	layout := []cellgraph.Cell{
		cell(1, 0, 0, 0, 4, 2, cellgraph.CellCorridor),
		cell(2, 4, 1, 0, 1, 1, cellgraph.CellCorridor),
	}

	g := newGraph(t, layout)
	report := ConnectIslands(g, config.DefaultConfig())
	assert.True(t, report.Converged)
	assert.Equal(t, 2, report.Iterations)
	assert.Zero(t, g.StairCount())
	assert.Equal(t, 0, g.Cell(2).Height(), "dead end lowered instead")

	cfg := config.DefaultConfig()
	cfg.AvoidSingleCellDeadEnds = false
	g = newGraph(t, layout)
	report = ConnectIslands(g, cfg)
	require.True(t, report.Converged)
	require.Equal(t, 1, g.StairCount())
	s := g.AllStairs()[0]
	assert.Equal(t, grid.IntVector{X: 3, Y: 0, Z: 0}, s.IPosition)
	assert.Equal(t, grid.East, s.Rotation)
	assert.Equal(t, 1, g.Cell(2).Height())
}

func TestIslandsClampedChain(t *testing.T) {
	layout := func() []cellgraph.Cell {
		cells := []cellgraph.Cell{
			cell(1, 0, 0, 0, 2, 2, cellgraph.CellCorridor),
			cell(2, 2, 3, 0, 2, 2, cellgraph.CellCorridor),
			cell(3, 4, 0, 0, 2, 2, cellgraph.CellCorridor),
		}
		cells[1].HeightClamped = true
		return cells
	}

	g := newGraph(t, layout())
	report := ConnectIslands(g, config.DefaultConfig())

	require.True(t, report.Converged)
	assert.Equal(t, 3, report.Iterations)
	assert.Equal(t, map[int]int{1: 2, 2: 3, 3: 2}, heightsOf(g))
	require.Equal(t, 2, g.StairCount())
	assert.True(t, g.ContainsStairBetween(1, 2))
	assert.True(t, g.ContainsStairBetween(3, 2))
	assert.Equal(t, grid.West, g.Stairs(3)[0].Rotation)

	cfg := config.DefaultConfig()
	cfg.IslandIterations = 1
	g = newGraph(t, layout())
	report = ConnectIslands(g, cfg)
	assert.False(t, report.Converged)
	assert.Equal(t, 1, report.Iterations)
	assert.Len(t, report.Unresolved, 2)
	assert.Equal(t, 3, g.Cell(2).Height())
}

func TestIslandsCapKeepsPlacedStairs(t *testing.T) {
	cells := []cellgraph.Cell{
		cell(1, 0, 0, 0, 2, 2, cellgraph.CellCorridor),
		cell(2, 2, 3, 0, 2, 2, cellgraph.CellCorridor),
		cell(3, 4, 0, 0, 2, 2, cellgraph.CellCorridor),
		cell(4, 6, 1, 0, 2, 2, cellgraph.CellCorridor),
	}
	cells[1].HeightClamped = true

	cfg := config.DefaultConfig()
	cfg.IslandIterations = 1
	g := newGraph(t, cells)
	report := ConnectIslands(g, cfg)

	assert.False(t, report.Converged)
	assert.Equal(t, map[int]int{1: 0, 2: 3, 3: 0, 4: 1}, heightsOf(g))
	require.True(t, g.ContainsStairBetween(3, 4))
	for _, s := range g.AllStairs() {
		owner, remote := g.Cell(s.OwnerCell), g.Cell(s.ConnectedToCell)
		assert.Equal(t, owner.Height(), s.IPosition.Y, "stair %s", s.IPosition)
		assert.Equal(t, 1, remote.Height()-owner.Height(), "stair %s", s.IPosition)
	}
}

func TestIslandsRoomOwner(t *testing.T) {
	layout := []cellgraph.Cell{
		cell(1, 0, 0, 0, 4, 2, cellgraph.CellRoom),
		cell(2, 0, 1, 2, 4, 2, cellgraph.CellCorridor),
	}
	d := door(1, 2, 1, 1, 1, 2)

	g := newGraph(t, layout, d)
	report := ConnectIslands(g, config.DefaultConfig())
	assert.True(t, report.Converged)
	assert.Zero(t, g.StairCount())
	assert.Equal(t, 0, g.Cell(2).Height())

	cfg := config.DefaultConfig()
	cfg.AvoidStairsInRooms = false
	g = newGraph(t, layout, d)
	report = ConnectIslands(g, cfg)
	assert.True(t, report.Converged)
	require.Equal(t, 1, g.StairCount())
	assert.Equal(t, grid.IntVector{X: 1, Y: 0, Z: 1}, g.AllStairs()[0].IPosition)
}

func TestIslandsGridLayoutProperties(t *testing.T) {
	cfg := config.DefaultConfig()
	for seed := int64(1); seed <= 10; seed++ {
		g := gridLayout(t, seed)
		report := ConnectIslands(g, cfg)
		assertUniqueStairTiles(t, g)

		unresolved := make(map[edgeKey]bool)
		for _, e := range report.Unresolved {
			unresolved[keyOf(e.OwnerCell, e.RemoteCell)] = true
		}
		for _, c := range g.Cells() {
			for _, nid := range c.Adjacent {
				n := g.Cell(nid)
				if abs(c.Height()-n.Height()) > cfg.MaxAllowedStairHeight {
					assert.True(t, unresolved[keyOf(c.ID, nid)], "seed %d: %d-%d", seed, c.ID, nid)
				}
			}
		}
	}
}

func TestIslandsDeterministic(t *testing.T) {
	run := func() ([]cellgraph.StairInfo, map[int]int, Report) {
		g := gridLayout(t, 7)
		report := ConnectIslands(g, config.DefaultConfig())
		return g.AllStairs(), heightsOf(g), report
	}
	s1, h1, r1 := run()
	s2, h2, r2 := run()
	assert.Equal(t, s1, s2)
	assert.Equal(t, h1, h2)
	assert.Equal(t, r1, r2)
}
