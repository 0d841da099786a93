// Package config provides configuration loading and access for the steering
// evaluator.
package config

import (
	_ "embed"
	"fmt"
	"log/slog"
	"math"
	"os"

	"gonum.org/v1/gonum/spatial/r3"
	"gopkg.in/yaml.v3"

	"github.com/pthm-cable/steer/localspace"
	"github.com/pthm-cable/steer/proximity"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all evaluator configuration parameters.
type Config struct {
	Steering   SteeringConfig   `yaml:"steering"`
	Proximity  ProximityConfig  `yaml:"proximity"`
	Simulation SimulationConfig `yaml:"simulation"`
	Telemetry  TelemetryConfig  `yaml:"telemetry"`
	Logging    LoggingConfig    `yaml:"logging"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// SteeringConfig holds the tunables shared by every agent's behaviors.
type SteeringConfig struct {
	Handedness               string  `yaml:"handedness"`                  // "right" or "left"
	MinTimeToCollision       float64 `yaml:"min_time_to_collision"`       // Look-ahead for obstacle and neighbor avoidance
	PursuitMaxPredictionTime float64 `yaml:"pursuit_max_prediction_time"` // 0 = unbounded
	EvasionMaxPredictionTime float64 `yaml:"evasion_max_prediction_time"`
	PathPredictionTime       float64 `yaml:"path_prediction_time"`
	WanderRate               float64 `yaml:"wander_rate"`              // Random walk step per second
	SeparationMinDistance    float64 `yaml:"separation_min_distance"`  // 0 = no floor on separation weighting
	NeighborRadius           float64 `yaml:"neighbor_radius"`          // Proximity query radius
	MinSeparationDistance    float64 `yaml:"min_separation_distance"`  // Extra clearance for close neighbor avoidance
	CombineMaxForce          bool    `yaml:"combine_max_force"`        // Clip the combined force to the agent's MaxForce

	Separation FlockConfig `yaml:"separation"`
	Alignment  FlockConfig `yaml:"alignment"`
	Cohesion   FlockConfig `yaml:"cohesion"`
}

// FlockConfig bounds the neighborhood of one flocking behavior.
type FlockConfig struct {
	MaxDistance float64 `yaml:"max_distance"`
	MaxAngleDeg float64 `yaml:"max_angle_deg"` // Half-angle of the forward cone
}

// ProximityConfig selects and sizes the neighbor database.
type ProximityConfig struct {
	Kind       string     `yaml:"kind"` // "grid" or "brute"
	CellSize   float64    `yaml:"cell_size"`
	Origin     [3]float64 `yaml:"origin,flow"`
	Size       [3]float64 `yaml:"size,flow"` // Points outside the box fall into the overflow bin
	MaxResults int        `yaml:"max_results"`
}

// SimulationConfig holds frame stepping parameters.
type SimulationConfig struct {
	ElapsedTime float64 `yaml:"elapsed_time"` // Seconds per frame when the scene gives none
	Seed        int64   `yaml:"seed"`         // 0 = time based
}

// TelemetryConfig holds output parameters.
type TelemetryConfig struct {
	OutputDir   string `yaml:"output_dir"`
	PerBehavior bool   `yaml:"per_behavior"` // Emit one row per behavior as well as the combined row
}

// LoggingConfig holds logging parameters.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	Handedness               localspace.Handedness
	SeparationCosMaxAngle    float64
	AlignmentCosMaxAngle     float64
	CohesionCosMaxAngle      float64
	PursuitMaxPredictionTime float64 // +Inf when unbounded
	GridOrigin               r3.Vec
	GridSize                 r3.Vec
	LogLevel                 slog.Level
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if path is empty.
// Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Default returns the embedded defaults.
func Default() *Config {
	cfg, err := Load("")
	if err != nil {
		panic(fmt.Sprintf("config: embedded defaults: %v", err))
	}
	return cfg
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Unmarshal into same struct - only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	cfg.computeDerived()
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Steering.Handedness {
	case "", "right", "left":
	default:
		return fmt.Errorf("steering.handedness: unknown value %q", c.Steering.Handedness)
	}
	switch c.Proximity.Kind {
	case "grid", "brute":
	default:
		return fmt.Errorf("proximity.kind: unknown value %q", c.Proximity.Kind)
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Logging.Level)); err != nil {
		return fmt.Errorf("logging.level: %w", err)
	}
	if c.Steering.MinTimeToCollision < 0 || c.Steering.PursuitMaxPredictionTime < 0 ||
		c.Steering.EvasionMaxPredictionTime < 0 || c.Steering.PathPredictionTime < 0 {
		return fmt.Errorf("steering: prediction times must not be negative")
	}

	// Flocking only sees what the neighbor query returns.
	for _, f := range []struct {
		name string
		cfg  FlockConfig
	}{
		{"separation", c.Steering.Separation},
		{"alignment", c.Steering.Alignment},
		{"cohesion", c.Steering.Cohesion},
	} {
		if f.cfg.MaxDistance > c.Steering.NeighborRadius {
			return fmt.Errorf("steering.%s.max_distance %g exceeds steering.neighbor_radius %g",
				f.name, f.cfg.MaxDistance, c.Steering.NeighborRadius)
		}
	}

	if c.Proximity.Kind == "grid" {
		if c.Proximity.CellSize < 0 {
			return fmt.Errorf("proximity.cell_size must not be negative")
		}
		s := c.Proximity.Size
		size := r3.Vec{X: s[0], Y: s[1], Z: s[2]}
		if n := proximity.GridCells(size, c.Proximity.CellSize); n > proximity.MaxGridCells {
			return fmt.Errorf("proximity: %.0f grid cells exceed the limit of %d; raise cell_size or shrink size",
				n, proximity.MaxGridCells)
		}
	}
	return nil
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() {
	c.Derived.Handedness = localspace.ParseHandedness(c.Steering.Handedness)

	cosDeg := func(deg float64) float64 { return math.Cos(deg * math.Pi / 180) }
	c.Derived.SeparationCosMaxAngle = cosDeg(c.Steering.Separation.MaxAngleDeg)
	c.Derived.AlignmentCosMaxAngle = cosDeg(c.Steering.Alignment.MaxAngleDeg)
	c.Derived.CohesionCosMaxAngle = cosDeg(c.Steering.Cohesion.MaxAngleDeg)

	c.Derived.PursuitMaxPredictionTime = c.Steering.PursuitMaxPredictionTime
	if c.Derived.PursuitMaxPredictionTime == 0 {
		c.Derived.PursuitMaxPredictionTime = math.Inf(1)
	}

	o, s := c.Proximity.Origin, c.Proximity.Size
	c.Derived.GridOrigin = r3.Vec{X: o[0], Y: o[1], Z: o[2]}
	c.Derived.GridSize = r3.Vec{X: s[0], Y: s[1], Z: s[2]}

	// validate has already accepted the level
	_ = c.Derived.LogLevel.UnmarshalText([]byte(c.Logging.Level))
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
