// Package layout reads dungeon layouts from YAML and writes generation
// results back out.
package layout

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/lawnchairsociety/stairgen/internal/cellgraph"
	"github.com/lawnchairsociety/stairgen/internal/grid"
)

var ErrInvalidDoor = errors.New("layout: door tiles must be orthogonal neighbors")

// File is a layout as stored on disk
type File struct {
	Name  string     `yaml:"name"`
	Cells []CellYAML `yaml:"cells"`
	Doors []DoorYAML `yaml:"doors,omitempty"`
}

// CellYAML is one cell of a layout
type CellYAML struct {
	ID            int    `yaml:"id"`
	Type          string `yaml:"type"`
	X             int    `yaml:"x"`
	Y             int    `yaml:"y"`
	Z             int    `yaml:"z"`
	Width         int    `yaml:"width"`
	Length        int    `yaml:"length"`
	UserDefined   bool   `yaml:"user_defined,omitempty"`
	HeightClamped bool   `yaml:"height_clamped,omitempty"`
}

// DoorYAML joins two tiles of two cells. Tiles are [x, z].
type DoorYAML struct {
	CellA int    `yaml:"cell_a"`
	CellB int    `yaml:"cell_b"`
	From  [2]int `yaml:"from,flow"`
	To    [2]int `yaml:"to,flow"`
}

// Load reads a layout file
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("layout: failed to read %s: %w", path, err)
	}
	f, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return f, nil
}

// Parse decodes a layout from YAML
func Parse(data []byte) (*File, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("layout: failed to parse YAML: %w", err)
	}
	return &f, nil
}

// Graph builds the cell graph described by the file. Unknown cell types
// become CellUnknown.
func (f *File) Graph() (*cellgraph.Graph, error) {
	cells := make([]cellgraph.Cell, 0, len(f.Cells))
	for _, c := range f.Cells {
		cells = append(cells, cellgraph.Cell{
			ID:            c.ID,
			Bounds:        grid.NewRect(c.X, c.Y, c.Z, c.Width, c.Length),
			Type:          cellgraph.ParseCellType(c.Type),
			UserDefined:   c.UserDefined,
			HeightClamped: c.HeightClamped,
		})
	}

	doors := make([]cellgraph.Door, 0, len(f.Doors))
	for i, d := range f.Doors {
		door := cellgraph.Door{
			CellA: d.CellA,
			CellB: d.CellB,
			From:  grid.Tile{X: d.From[0], Z: d.From[1]},
			To:    grid.Tile{X: d.To[0], Z: d.To[1]},
		}
		if _, ok := grid.OrientationBetween(door.From, door.To); !ok {
			return nil, fmt.Errorf("%w: door %d %s-%s", ErrInvalidDoor, i, door.From, door.To)
		}
		doors = append(doors, door)
	}

	g, err := cellgraph.New(cells, doors)
	if err != nil {
		return nil, fmt.Errorf("layout: %w", err)
	}
	return g, nil
}

// LoadGraph reads a layout file and builds its graph.
func LoadGraph(path string) (*File, *cellgraph.Graph, error) {
	f, err := Load(path)
	if err != nil {
		return nil, nil, err
	}
	g, err := f.Graph()
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", path, err)
	}
	return f, g, nil
}

func cellYAML(c *cellgraph.Cell) CellYAML {
	return CellYAML{
		ID:            c.ID,
		Type:          c.Type.String(),
		X:             c.Bounds.X(),
		Y:             c.Bounds.Height(),
		Z:             c.Bounds.Z(),
		Width:         c.Bounds.Width(),
		Length:        c.Bounds.Length(),
		UserDefined:   c.UserDefined,
		HeightClamped: c.HeightClamped,
	}
}
