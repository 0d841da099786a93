// Package scene loads evaluation scenes: the obstacles and paths of a world,
// the agents in it with their behavior assignments, and a sequence of
// recorded frames giving each agent's state at that moment.
package scene

import (
	"errors"
	"fmt"
	"os"

	"gonum.org/v1/gonum/spatial/r3"
	"gopkg.in/yaml.v3"

	"github.com/pthm-cable/steer/obstacle"
	"github.com/pthm-cable/steer/pathway"
	"github.com/pthm-cable/steer/vehicle"
)

var (
	// ErrUnknownBehavior is returned for a behavior kind with no evaluator.
	ErrUnknownBehavior = errors.New("unknown behavior")
	// ErrUnknownPath is returned when a behavior names an undeclared path.
	ErrUnknownPath = errors.New("unknown path")
	// ErrUnknownAgent is returned when a frame or behavior names an
	// undeclared agent.
	ErrUnknownAgent = errors.New("unknown agent")
)

// Kind names a steering behavior.
type Kind string

const (
	Seek           Kind = "seek"
	Flee           Kind = "flee"
	Seek2          Kind = "seek2"
	Flee2          Kind = "flee2"
	Pursuit        Kind = "pursuit"
	Evasion        Kind = "evasion"
	Wander         Kind = "wander"
	Separation     Kind = "separation"
	Alignment      Kind = "alignment"
	Cohesion       Kind = "cohesion"
	AvoidObstacles Kind = "avoid_obstacles"
	AvoidNeighbors Kind = "avoid_neighbors"
	AvoidClose     Kind = "avoid_close_neighbors"
	FollowPath     Kind = "follow_path"
	StayOnPath     Kind = "stay_on_path"
	TargetSpeed    Kind = "target_speed"
)

// Kinds lists every behavior kind a scene may assign.
var Kinds = []Kind{
	Seek, Flee, Seek2, Flee2, Pursuit, Evasion, Wander,
	Separation, Alignment, Cohesion,
	AvoidObstacles, AvoidNeighbors, AvoidClose, FollowPath, StayOnPath, TargetSpeed,
}

// Vec3 is a vector written as a YAML sequence: [x, y, z].
type Vec3 [3]float64

// R3 converts to a gonum vector.
func (v Vec3) R3() r3.Vec {
	return r3.Vec{X: v[0], Y: v[1], Z: v[2]}
}

// IsZero reports whether all components are zero.
func (v Vec3) IsZero() bool {
	return v == Vec3{}
}

// ObstacleSpec is a spherical obstacle.
type ObstacleSpec struct {
	Name   string  `yaml:"name"`
	Center Vec3    `yaml:"center,flow"`
	Radius float64 `yaml:"radius"`
}

// PathSpec is a polyline pathway.
type PathSpec struct {
	Name   string  `yaml:"name"`
	Points []Vec3  `yaml:"points,flow"`
	Radius float64 `yaml:"radius"`
	Cyclic bool    `yaml:"cyclic"`
}

// BehaviorSpec assigns one weighted behavior to an agent. Which of the
// optional fields apply depends on Kind.
type BehaviorSpec struct {
	Kind      Kind    `yaml:"kind"`
	Weight    float64 `yaml:"weight"`    // 0 means 1
	Target    Vec3    `yaml:"target"`    // seek, flee, seek2, flee2
	Agent     string  `yaml:"agent"`     // pursuit, evasion
	Path      string  `yaml:"path"`      // follow_path, stay_on_path
	Direction int     `yaml:"direction"` // follow_path: +1 or -1, 0 means +1
	Speed     float64 `yaml:"speed"`     // target_speed
}

// EffectiveWeight returns Weight, defaulting to 1.
func (b BehaviorSpec) EffectiveWeight() float64 {
	if b.Weight == 0 {
		return 1
	}
	return b.Weight
}

// EffectiveDirection returns the path direction as ±1.
func (b BehaviorSpec) EffectiveDirection() int {
	if b.Direction < 0 {
		return -1
	}
	return 1
}

// AgentSpec declares an agent: its kinematic limits and behaviors. Zero
// kinematic values take the vehicle defaults.
type AgentSpec struct {
	Name      string         `yaml:"name"`
	Mass      float64        `yaml:"mass"`
	Radius    float64        `yaml:"radius"`
	MaxForce  float64        `yaml:"max_force"`
	MaxSpeed  float64        `yaml:"max_speed"`
	Behaviors []BehaviorSpec `yaml:"behaviors"`
}

// Configure resets a to defaults and applies the declared kinematics.
func (s AgentSpec) Configure(a *vehicle.Agent) {
	a.Reset()
	if s.Mass > 0 {
		a.Mass = s.Mass
	}
	if s.Radius > 0 {
		a.Radius = s.Radius
	}
	if s.MaxForce > 0 {
		a.MaxForce = s.MaxForce
	}
	if s.MaxSpeed > 0 {
		a.MaxSpeed = s.MaxSpeed
	}
}

// AgentState is one agent's recorded state in a frame. A zero Forward
// keeps the agent's previous orientation; a zero Up keeps its previous up.
type AgentState struct {
	Name     string  `yaml:"name"`
	Position Vec3    `yaml:"position,flow"`
	Forward  Vec3    `yaml:"forward,flow"`
	Up       Vec3    `yaml:"up,flow"`
	Speed    float64 `yaml:"speed"`
}

// Apply writes the recorded state into a.
func (s AgentState) Apply(a *vehicle.Agent) {
	a.Position = s.Position.R3()
	a.Speed = s.Speed
	if s.Forward.IsZero() {
		return
	}
	if s.Up.IsZero() {
		a.RegenerateOrthonormalBasis(s.Forward.R3())
		return
	}
	a.RegenerateOrthonormalBasisWithUp(s.Forward.R3(), s.Up.R3())
}

// Frame is a snapshot of every agent present at one moment. Agents absent
// from a frame have left the scene.
type Frame struct {
	ElapsedTime float64      `yaml:"elapsed_time"` // 0 means the scene default
	Agents      []AgentState `yaml:"agents"`
}

// Scene is a parsed and validated evaluation scene.
type Scene struct {
	Name          string         `yaml:"name"`
	ElapsedTime   float64        `yaml:"elapsed_time"` // Seconds per frame; 0 means the config default
	ObstacleSpecs []ObstacleSpec `yaml:"obstacles"`
	Paths         []PathSpec     `yaml:"paths"`
	Agents        []AgentSpec    `yaml:"agents"`
	Frames        []Frame        `yaml:"frames"`

	obstacles []obstacle.Obstacle
	paths     map[string]*pathway.Polyline
	agents    map[string]int
}

// Load reads and validates a scene file.
func Load(path string) (*Scene, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading scene file: %w", err)
	}
	s, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("scene %s: %w", path, err)
	}
	return s, nil
}

// Parse decodes and validates a scene.
func Parse(data []byte) (*Scene, error) {
	s := &Scene{}
	if err := yaml.Unmarshal(data, s); err != nil {
		return nil, fmt.Errorf("parsing scene: %w", err)
	}
	if err := s.build(); err != nil {
		return nil, err
	}
	return s, nil
}

// build validates cross references and constructs the geometry.
func (s *Scene) build() error {
	s.obstacles = make([]obstacle.Obstacle, 0, len(s.ObstacleSpecs))
	for i, o := range s.ObstacleSpecs {
		if o.Radius <= 0 {
			return fmt.Errorf("obstacle %d (%s): radius must be positive", i, o.Name)
		}
		s.obstacles = append(s.obstacles, obstacle.NewSphere(o.Center.R3(), o.Radius))
	}

	s.paths = make(map[string]*pathway.Polyline, len(s.Paths))
	for _, p := range s.Paths {
		if _, dup := s.paths[p.Name]; dup {
			return fmt.Errorf("path %q declared twice", p.Name)
		}
		points := make([]r3.Vec, len(p.Points))
		for i, pt := range p.Points {
			points[i] = pt.R3()
		}
		line, err := pathway.NewPolyline(points, p.Radius, p.Cyclic)
		if err != nil {
			return fmt.Errorf("path %q: %w", p.Name, err)
		}
		s.paths[p.Name] = line
	}

	s.agents = make(map[string]int, len(s.Agents))
	for i, a := range s.Agents {
		if a.Name == "" {
			return fmt.Errorf("agent %d has no name", i)
		}
		if _, dup := s.agents[a.Name]; dup {
			return fmt.Errorf("agent %q declared twice", a.Name)
		}
		s.agents[a.Name] = i
	}

	for _, a := range s.Agents {
		for j, b := range a.Behaviors {
			if err := s.checkBehavior(b); err != nil {
				return fmt.Errorf("agent %q behavior %d: %w", a.Name, j, err)
			}
		}
	}

	for i, f := range s.Frames {
		seen := make(map[string]bool, len(f.Agents))
		for _, st := range f.Agents {
			if _, ok := s.agents[st.Name]; !ok {
				return fmt.Errorf("frame %d: %w %q", i, ErrUnknownAgent, st.Name)
			}
			if seen[st.Name] {
				return fmt.Errorf("frame %d: agent %q appears twice", i, st.Name)
			}
			seen[st.Name] = true
		}
	}
	return nil
}

func (s *Scene) checkBehavior(b BehaviorSpec) error {
	switch b.Kind {
	case Pursuit, Evasion:
		if _, ok := s.agents[b.Agent]; !ok {
			return fmt.Errorf("%s: %w %q", b.Kind, ErrUnknownAgent, b.Agent)
		}
	case FollowPath, StayOnPath:
		if _, ok := s.paths[b.Path]; !ok {
			return fmt.Errorf("%s: %w %q", b.Kind, ErrUnknownPath, b.Path)
		}
	case Seek, Flee, Seek2, Flee2, Wander, Separation, Alignment, Cohesion,
		AvoidObstacles, AvoidNeighbors, AvoidClose, TargetSpeed:
	default:
		return fmt.Errorf("%w %q", ErrUnknownBehavior, b.Kind)
	}
	return nil
}

// Obstacles returns the scene's obstacles in declaration order.
func (s *Scene) Obstacles() []obstacle.Obstacle {
	return s.obstacles
}

// Path returns the named pathway.
func (s *Scene) Path(name string) (*pathway.Polyline, bool) {
	p, ok := s.paths[name]
	return p, ok
}

// Agent returns the named agent declaration.
func (s *Scene) Agent(name string) (AgentSpec, bool) {
	i, ok := s.agents[name]
	if !ok {
		return AgentSpec{}, false
	}
	return s.Agents[i], true
}

// FrameElapsedTime returns the time step for frame i, falling back to the
// scene default and then to fallback.
func (s *Scene) FrameElapsedTime(i int, fallback float64) float64 {
	if dt := s.Frames[i].ElapsedTime; dt > 0 {
		return dt
	}
	if s.ElapsedTime > 0 {
		return s.ElapsedTime
	}
	return fallback
}
