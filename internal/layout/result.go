package layout

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/lawnchairsociety/stairgen/internal/cellgraph"
	"github.com/lawnchairsociety/stairgen/internal/generator"
)

// ResultFile is the YAML form of a generation run
type ResultFile struct {
	Layout           string      `yaml:"layout"`
	Seed             int64       `yaml:"seed"`
	Strategy         string      `yaml:"strategy"`
	Converged        bool        `yaml:"converged"`
	RepairIterations int         `yaml:"repair_iterations"`
	IslandIterations int         `yaml:"island_iterations,omitempty"`
	PaddingCells     int         `yaml:"padding_cells"`
	Fingerprint      string      `yaml:"fingerprint"`
	Cells            []CellYAML  `yaml:"cells"`
	Stairs           []StairYAML `yaml:"stairs"`
}

// StairYAML is a placed stair. Tile is [x, y, z] on the grid, Position the
// world position and Rotation the angle in degrees.
type StairYAML struct {
	Owner     int        `yaml:"owner"`
	Connected int        `yaml:"connected"`
	Tile      [3]int     `yaml:"tile,flow"`
	Position  [3]float64 `yaml:"position,flow"`
	Rotation  int        `yaml:"rotation"`
}

// NewResult collects the final heights and stairs of g.
func NewResult(name string, g Source, res generator.Result) *ResultFile {
	cells := g.Cells()
	sort.SliceStable(cells, func(i, j int) bool { return cells[i].ID < cells[j].ID })

	out := &ResultFile{
		Layout:           name,
		Seed:             res.Seed,
		Strategy:         res.Strategy.String(),
		Converged:        res.Converged,
		RepairIterations: res.RepairIterations,
		IslandIterations: res.IslandIterations,
		PaddingCells:     res.PaddingCells,
		Fingerprint:      Fingerprint(g),
		Cells:            make([]CellYAML, 0, len(cells)),
	}
	for _, c := range cells {
		out.Cells = append(out.Cells, cellYAML(c))
	}
	for _, s := range g.AllStairs() {
		out.Stairs = append(out.Stairs, stairYAML(s))
	}
	return out
}

func stairYAML(s cellgraph.StairInfo) StairYAML {
	return StairYAML{
		Owner:     s.OwnerCell,
		Connected: s.ConnectedToCell,
		Tile:      [3]int{s.IPosition.X, s.IPosition.Y, s.IPosition.Z},
		Position:  [3]float64{s.Position.X, s.Position.Y, s.Position.Z},
		Rotation:  s.Rotation.Degrees(),
	}
}

// WriteResult writes the generation result for g to path
func WriteResult(path, name string, g Source, res generator.Result) error {
	result := NewResult(name, g, res)

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("layout: failed to create file: %w", err)
	}
	defer f.Close()

	fmt.Fprintf(f, "# Stairs for layout %q\n", name)
	fmt.Fprintf(f, "# Generated with seed: %d (%s strategy)\n", res.Seed, result.Strategy)
	fmt.Fprintf(f, "# Cells: %d, stairs: %d\n\n", len(result.Cells), len(result.Stairs))

	encoder := yaml.NewEncoder(f)
	encoder.SetIndent(2)
	if err := encoder.Encode(result); err != nil {
		return fmt.Errorf("layout: failed to encode YAML: %w", err)
	}
	if err := encoder.Close(); err != nil {
		return fmt.Errorf("layout: failed to encode YAML: %w", err)
	}
	return nil
}

// ReadResult loads a result file written by WriteResult
func ReadResult(path string) (*ResultFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("layout: failed to read %s: %w", path, err)
	}
	var r ResultFile
	if err := yaml.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("layout: failed to parse %s: %w", path, err)
	}
	return &r, nil
}
