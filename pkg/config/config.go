// Package config provides configuration loading and management for iftseg.
// Values come from a YAML file, then IFTSEG_* environment variables, and are
// validated before use.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/go-playground/validator/v10"
	"github.com/ilyakaznacheev/cleanenv"
	"gopkg.in/yaml.v3"

	"iftseg/pkg/edge"
)

// ErrInvalidConfig wraps validation failures
var ErrInvalidConfig = errors.New("invalid config")

// Environment names accepted by Config.Env
const (
	EnvLocal = "local"
	EnvDev   = "dev"
	EnvProd  = "prod"
)

// EdgeParams mirrors edge.Params with file and environment bindings
type EdgeParams struct {
	Radius         float64 `yaml:"radius"         validate:"gt=0"`
	Alpha          float64 `yaml:"alpha"          validate:"gte=-1,lte=1"`
	Beta           float64 `yaml:"beta"           validate:"gte=0,lte=10"`
	Weight         float64 `yaml:"weight"         validate:"gte=1,lte=10"`
	Delta          float64 `yaml:"delta"          validate:"gt=0"`
	GradientRadius float64 `yaml:"gradientRadius" validate:"gt=0"`
}

// Params converts to the algorithm parameters
func (p EdgeParams) Params() edge.Params {
	return edge.Params{
		Radius:         p.Radius,
		Alpha:          p.Alpha,
		Beta:           p.Beta,
		Weight:         p.Weight,
		Delta:          p.Delta,
		GradientRadius: p.GradientRadius,
	}
}

func fromParams(p edge.Params) EdgeParams {
	return EdgeParams{
		Radius:         p.Radius,
		Alpha:          p.Alpha,
		Beta:           p.Beta,
		Weight:         p.Weight,
		Delta:          p.Delta,
		GradientRadius: p.GradientRadius,
	}
}

// Config represents the application configuration
type Config struct {
	// Env selects the log handler: text for local, JSON otherwise
	Env string `yaml:"env" env:"IFTSEG_ENV" validate:"oneof=local dev prod"`

	// Processing parameters
	Processing struct {
		// NumCores bounds how many runs execute concurrently
		NumCores int `yaml:"numCores" env:"IFTSEG_NUM_CORES" validate:"gte=1"`

		// SliceGap is the physical distance between consecutive slices in mm
		SliceGap float64 `yaml:"sliceGap" env:"IFTSEG_SLICE_GAP" validate:"gt=0"`

		// Algorithm is livewire, riverbed or both
		Algorithm string `yaml:"algorithm" env:"IFTSEG_ALGORITHM" validate:"oneof=livewire riverbed both"`

		// SnapRadius closes a traced contour when an anchor lands this close to the first one
		SnapRadius float64 `yaml:"snapRadius" env:"IFTSEG_SNAP_RADIUS" validate:"gte=0"`
	} `yaml:"processing"`

	LiveWire EdgeParams `yaml:"livewire"`
	RiverBed EdgeParams `yaml:"riverbed"`

	// Output parameters
	Output struct {
		// Dir receives rendered images and raw cost dumps
		Dir string `yaml:"dir" env:"IFTSEG_OUTPUT_DIR" validate:"required"`

		// SaveCostMap writes the cost map next to the path overlay
		SaveCostMap bool `yaml:"saveCostMap" env:"IFTSEG_SAVE_COST_MAP"`

		// SaveRaw writes the cost map as little-endian float64
		SaveRaw bool `yaml:"saveRaw" env:"IFTSEG_SAVE_RAW"`

		// Verbose enables debug logging
		Verbose bool `yaml:"verbose" env:"IFTSEG_VERBOSE"`
	} `yaml:"output"`
}

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	cfg := &Config{}
	cfg.Env = EnvLocal

	cfg.Processing.NumCores = runtime.NumCPU()
	cfg.Processing.SliceGap = 1.0
	cfg.Processing.Algorithm = "both"
	cfg.Processing.SnapRadius = 3

	cfg.LiveWire = fromParams(edge.DefaultLiveWireParams())
	cfg.RiverBed = fromParams(edge.DefaultRiverBedParams())

	cfg.Output.Dir = "output"
	cfg.Output.SaveCostMap = true
	cfg.Output.SaveRaw = false
	cfg.Output.Verbose = false

	return cfg
}

// Algorithms returns the algorithms selected by Processing.Algorithm
func (c *Config) Algorithms() []edge.Algorithm {
	switch c.Processing.Algorithm {
	case string(edge.LiveWireAlgorithm):
		return []edge.Algorithm{edge.LiveWireAlgorithm}
	case string(edge.RiverBedAlgorithm):
		return []edge.Algorithm{edge.RiverBedAlgorithm}
	}
	return []edge.Algorithm{edge.LiveWireAlgorithm, edge.RiverBedAlgorithm}
}

// Params returns the configured parameters for alg
func (c *Config) Params(alg edge.Algorithm) (edge.Params, error) {
	switch alg {
	case edge.LiveWireAlgorithm:
		return c.LiveWire.Params(), nil
	case edge.RiverBedAlgorithm:
		return c.RiverBed.Params(), nil
	}
	return edge.Params{}, fmt.Errorf("%w: %q", edge.ErrUnknownAlgorithm, alg)
}

// Validate checks every field constraint
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return nil
}

// LoadConfig loads configuration from a YAML file and applies environment
// overrides. If the file doesn't exist, the defaults are used.
func LoadConfig(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	if configPath != "" {
		data, err := os.ReadFile(configPath)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("error reading config file: %w", err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("error parsing config file: %w", err)
			}
		}
	}

	if err := cleanenv.ReadEnv(cfg); err != nil {
		return nil, fmt.Errorf("error reading environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// SaveConfig saves the configuration to a YAML file
func SaveConfig(cfg *Config, configPath string) error {
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("error creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("error marshaling config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("error writing config file: %w", err)
	}
	return nil
}

// CreateDefaultConfigFile creates a default configuration file at the specified path
func CreateDefaultConfigFile(configPath string) error {
	return SaveConfig(DefaultConfig(), configPath)
}

// Usage describes the recognised environment variables
func Usage() string {
	desc, err := cleanenv.GetDescription(DefaultConfig(), nil)
	if err != nil {
		return ""
	}
	return desc
}
