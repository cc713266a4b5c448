package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

var (
	ErrUnknownStrategy = errors.New("config: unknown stair strategy")
	ErrInvalidValue    = errors.New("config: invalid value")
)

// Strategy selects the stair placement algorithm.
type Strategy int

const (
	// StrategyIsland places stairs between same-height islands and repairs
	// heights when a boundary cannot be bridged.
	StrategyIsland Strategy = iota
	// StrategyLegacy walks cell edges and scores stair positions over
	// decreasing weight thresholds.
	StrategyLegacy
)

// String returns the YAML name of the strategy
func (s Strategy) String() string {
	switch s {
	case StrategyIsland:
		return "island"
	case StrategyLegacy:
		return "legacy"
	default:
		return "unknown"
	}
}

// ParseStrategy converts a strategy name into a Strategy.
func ParseStrategy(name string) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "island", "island_based", "v2":
		return StrategyIsland, nil
	case "legacy", "v1":
		return StrategyLegacy, nil
	}
	return StrategyIsland, fmt.Errorf("%w: %q", ErrUnknownStrategy, name)
}

// MarshalYAML writes the strategy by name
func (s Strategy) MarshalYAML() (interface{}, error) {
	return s.String(), nil
}

// UnmarshalYAML reads the strategy by name
func (s *Strategy) UnmarshalYAML(value *yaml.Node) error {
	var name string
	if err := value.Decode(&name); err != nil {
		return err
	}
	parsed, err := ParseStrategy(name)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// CellSize is the world size of one grid unit.
type CellSize struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
	Z float64 `yaml:"z"`
}

// GenerationConfig holds the settings of one height and stair generation run.
type GenerationConfig struct {
	// MaxAllowedStairHeight is the largest height difference a single stair
	// can bridge, and the largest difference height repair leaves in place.
	MaxAllowedStairHeight int `yaml:"max_allowed_stair_height"`

	// HeightVariationProbability is the chance that an eligible cell steps
	// one level up or down from the cell that discovered it.
	HeightVariationProbability float64 `yaml:"height_variation_probability"`

	// StairConnectionTolerance is the hop radius used to decide whether two
	// cells are already connected well enough to skip a stair.
	StairConnectionTolerance int `yaml:"stair_connection_tolerance"`

	Strategy Strategy `yaml:"strategy"`

	// AvoidStairsInRooms forbids island strategy stairs whose owner cell is a room.
	AvoidStairsInRooms bool `yaml:"avoid_stairs_in_rooms"`

	// AvoidSingleCellDeadEnds forbids island strategy stairs leading into a
	// one-tile island with a single neighbor.
	AvoidSingleCellDeadEnds bool `yaml:"avoid_single_cell_dead_ends"`

	HeightRepairIterations int `yaml:"height_repair_iterations"`
	IslandIterations       int `yaml:"island_iterations"`

	GridCellSize CellSize `yaml:"grid_cell_size"`
}

// GenerationFile wraps the config for YAML parsing
type GenerationFile struct {
	Generation GenerationConfig `yaml:"generation"`
}

// DefaultConfig returns a GenerationConfig with the standard settings.
func DefaultConfig() *GenerationConfig {
	return &GenerationConfig{
		MaxAllowedStairHeight:      1,
		HeightVariationProbability: 0.2,
		StairConnectionTolerance:   6,
		Strategy:                   StrategyIsland,
		AvoidStairsInRooms:         true,
		AvoidSingleCellDeadEnds:    true,
		HeightRepairIterations:     50,
		IslandIterations:           100,
		GridCellSize:               CellSize{X: 4, Y: 2, Z: 4},
	}
}

// LoadConfig loads the generation config from a YAML file.
// A missing file yields the defaults; a file that can't be parsed or fails
// validation returns the defaults and an error.
func LoadConfig(path string) (*GenerationConfig, error) {
	file := GenerationFile{Generation: *DefaultConfig()}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil // Use defaults if file doesn't exist
		}
		return DefaultConfig(), err
	}

	if err := yaml.Unmarshal(data, &file); err != nil {
		return DefaultConfig(), fmt.Errorf("config: parse %s: %w", path, err)
	}

	cfg := file.Generation
	if err := cfg.Validate(); err != nil {
		return DefaultConfig(), err
	}
	return &cfg, nil
}

// Validate checks that every setting is in range.
func (c *GenerationConfig) Validate() error {
	if c.MaxAllowedStairHeight < 0 {
		return fmt.Errorf("%w: max_allowed_stair_height must be >= 0, got %d", ErrInvalidValue, c.MaxAllowedStairHeight)
	}
	if c.HeightVariationProbability < 0 || c.HeightVariationProbability > 1 {
		return fmt.Errorf("%w: height_variation_probability must be in [0,1], got %g", ErrInvalidValue, c.HeightVariationProbability)
	}
	if c.StairConnectionTolerance < 0 {
		return fmt.Errorf("%w: stair_connection_tolerance must be >= 0, got %d", ErrInvalidValue, c.StairConnectionTolerance)
	}
	if c.Strategy != StrategyIsland && c.Strategy != StrategyLegacy {
		return fmt.Errorf("%w: %d", ErrUnknownStrategy, c.Strategy)
	}
	if c.HeightRepairIterations < 1 {
		return fmt.Errorf("%w: height_repair_iterations must be >= 1, got %d", ErrInvalidValue, c.HeightRepairIterations)
	}
	if c.IslandIterations < 1 {
		return fmt.Errorf("%w: island_iterations must be >= 1, got %d", ErrInvalidValue, c.IslandIterations)
	}
	if c.GridCellSize.X <= 0 || c.GridCellSize.Y <= 0 || c.GridCellSize.Z <= 0 {
		return fmt.Errorf("%w: grid_cell_size must be positive", ErrInvalidValue)
	}
	return nil
}
