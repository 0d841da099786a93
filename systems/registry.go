package systems

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/steer/config"
	"github.com/pthm-cable/steer/geom"
	"github.com/pthm-cable/steer/obstacle"
	"github.com/pthm-cable/steer/scene"
	"github.com/pthm-cable/steer/steer"
	"github.com/pthm-cable/steer/vehicle"
)

// Context is everything a behavior may read while evaluating one agent.
type Context struct {
	Lib         *steer.Library
	Cfg         *config.Config
	Scene       *scene.Scene
	Agent       *vehicle.Agent
	Neighbors   []*vehicle.Agent // includes Agent itself
	Obstacles   []obstacle.Obstacle
	Wanderer    *steer.Wanderer // set for wander entries only
	ElapsedTime float64

	// Lookup resolves an agent present in the current frame by name.
	Lookup func(name string) (*vehicle.Agent, bool)
}

// Evaluator computes one behavior's unweighted steering force.
type Evaluator func(c *Context, b scene.BehaviorSpec) r3.Vec

// BehaviorInfo describes a steering behavior and how to evaluate it.
type BehaviorInfo struct {
	Kind        scene.Kind
	Name        string // Display name
	Description string // What this behavior does
	Category    string // Grouping (e.g., "seek", "group", "avoid")
	Evaluate    Evaluator
}

// Catalog maps behavior kinds to evaluators. The host owns it and passes it
// to the steering system; there is no global registry.
type Catalog struct {
	behaviors []BehaviorInfo
	byKind    map[scene.Kind]BehaviorInfo
}

// NewCatalog creates a catalog with every built-in behavior.
func NewCatalog() *Catalog {
	c := &Catalog{
		byKind: make(map[scene.Kind]BehaviorInfo),
	}
	c.registerDefaults()
	return c
}

// registerDefaults adds the built-in behaviors.
// Update this when adding a scene.Kind.
func (c *Catalog) registerDefaults() {
	// Seeking and fleeing a point
	c.Register(BehaviorInfo{Kind: scene.Seek, Name: "Seek", Description: "Steers toward a fixed target", Category: "target",
		Evaluate: func(x *Context, b scene.BehaviorSpec) r3.Vec { return x.Lib.Seek(x.Agent, b.Target.R3()) }})
	c.Register(BehaviorInfo{Kind: scene.Flee, Name: "Flee", Description: "Steers away from a fixed target", Category: "target",
		Evaluate: func(x *Context, b scene.BehaviorSpec) r3.Vec { return x.Lib.Flee(x.Agent, b.Target.R3()) }})
	c.Register(BehaviorInfo{Kind: scene.Seek2, Name: "Seek (max speed)", Description: "Steers toward a target at max speed", Category: "target",
		Evaluate: func(x *Context, b scene.BehaviorSpec) r3.Vec { return x.Lib.Seek2(x.Agent, b.Target.R3()) }})
	c.Register(BehaviorInfo{Kind: scene.Flee2, Name: "Flee (max speed)", Description: "Steers away from a target at max speed", Category: "target",
		Evaluate: func(x *Context, b scene.BehaviorSpec) r3.Vec { return x.Lib.Flee2(x.Agent, b.Target.R3()) }})
	c.Register(BehaviorInfo{Kind: scene.TargetSpeed, Name: "Target Speed", Description: "Accelerates or brakes toward a speed", Category: "target",
		Evaluate: func(x *Context, b scene.BehaviorSpec) r3.Vec { return x.Lib.TargetSpeed(x.Agent, b.Speed) }})

	// Moving targets
	c.Register(BehaviorInfo{Kind: scene.Pursuit, Name: "Pursuit", Description: "Intercepts another agent's predicted position", Category: "chase",
		Evaluate: evaluatePursuit})
	c.Register(BehaviorInfo{Kind: scene.Evasion, Name: "Evasion", Description: "Flees another agent's predicted position", Category: "chase",
		Evaluate: evaluateEvasion})
	c.Register(BehaviorInfo{Kind: scene.Wander, Name: "Wander", Description: "Drifts along a bounded random walk", Category: "chase",
		Evaluate: evaluateWander})

	// Group behaviors
	c.Register(BehaviorInfo{Kind: scene.Separation, Name: "Separation", Description: "Keeps distance from nearby agents", Category: "group",
		Evaluate: func(x *Context, _ scene.BehaviorSpec) r3.Vec {
			s := x.Cfg.Steering.Separation
			return x.Lib.Separation(x.Agent, s.MaxDistance, x.Cfg.Derived.SeparationCosMaxAngle, x.Neighbors)
		}})
	c.Register(BehaviorInfo{Kind: scene.Alignment, Name: "Alignment", Description: "Matches the heading of nearby agents", Category: "group",
		Evaluate: func(x *Context, _ scene.BehaviorSpec) r3.Vec {
			s := x.Cfg.Steering.Alignment
			return x.Lib.Alignment(x.Agent, s.MaxDistance, x.Cfg.Derived.AlignmentCosMaxAngle, x.Neighbors)
		}})
	c.Register(BehaviorInfo{Kind: scene.Cohesion, Name: "Cohesion", Description: "Moves toward the center of nearby agents", Category: "group",
		Evaluate: func(x *Context, _ scene.BehaviorSpec) r3.Vec {
			s := x.Cfg.Steering.Cohesion
			return x.Lib.Cohesion(x.Agent, s.MaxDistance, x.Cfg.Derived.CohesionCosMaxAngle, x.Neighbors)
		}})

	// Collision avoidance
	c.Register(BehaviorInfo{Kind: scene.AvoidObstacles, Name: "Avoid Obstacles", Description: "Turns away from obstacles ahead", Category: "avoid",
		Evaluate: func(x *Context, _ scene.BehaviorSpec) r3.Vec {
			return x.Lib.AvoidObstacles(x.Agent, x.Cfg.Steering.MinTimeToCollision, x.Obstacles)
		}})
	c.Register(BehaviorInfo{Kind: scene.AvoidNeighbors, Name: "Avoid Neighbors", Description: "Sidesteps predicted collisions with agents", Category: "avoid",
		Evaluate: func(x *Context, _ scene.BehaviorSpec) r3.Vec {
			return x.Lib.AvoidNeighbors(x.Agent, x.Cfg.Steering.MinTimeToCollision, x.Neighbors)
		}})
	c.Register(BehaviorInfo{Kind: scene.AvoidClose, Name: "Avoid Close Neighbors", Description: "Pushes apart from touching agents", Category: "avoid",
		Evaluate: func(x *Context, _ scene.BehaviorSpec) r3.Vec {
			return x.Lib.AvoidCloseNeighbors(x.Agent, x.Cfg.Steering.MinSeparationDistance, x.Neighbors)
		}})

	// Paths
	c.Register(BehaviorInfo{Kind: scene.FollowPath, Name: "Follow Path", Description: "Travels along a path in one direction", Category: "path",
		Evaluate: func(x *Context, b scene.BehaviorSpec) r3.Vec {
			path, ok := x.Scene.Path(b.Path)
			if !ok {
				return geom.Zero
			}
			return x.Lib.FollowPath(x.Agent, b.EffectiveDirection(), x.Cfg.Steering.PathPredictionTime, path)
		}})
	c.Register(BehaviorInfo{Kind: scene.StayOnPath, Name: "Stay On Path", Description: "Returns to a path's tube when drifting out", Category: "path",
		Evaluate: func(x *Context, b scene.BehaviorSpec) r3.Vec {
			path, ok := x.Scene.Path(b.Path)
			if !ok {
				return geom.Zero
			}
			return x.Lib.StayOnPath(x.Agent, x.Cfg.Steering.PathPredictionTime, path)
		}})
}

func evaluatePursuit(x *Context, b scene.BehaviorSpec) r3.Vec {
	quarry, ok := x.Lookup(b.Agent)
	if !ok || quarry == x.Agent {
		return geom.Zero
	}
	return x.Lib.Pursuit(x.Agent, quarry, x.Cfg.Derived.PursuitMaxPredictionTime)
}

func evaluateEvasion(x *Context, b scene.BehaviorSpec) r3.Vec {
	menace, ok := x.Lookup(b.Agent)
	if !ok || menace == x.Agent {
		return geom.Zero
	}
	return x.Lib.Evasion(x.Agent, menace, x.Cfg.Steering.EvasionMaxPredictionTime)
}

func evaluateWander(x *Context, _ scene.BehaviorSpec) r3.Vec {
	if x.Wanderer == nil {
		return geom.Zero
	}
	return x.Wanderer.Steer(x.Agent, x.ElapsedTime)
}

// Register adds a behavior to the catalog, replacing any earlier entry of
// the same kind.
func (c *Catalog) Register(info BehaviorInfo) {
	if _, exists := c.byKind[info.Kind]; !exists {
		c.behaviors = append(c.behaviors, info)
	} else {
		for i := range c.behaviors {
			if c.behaviors[i].Kind == info.Kind {
				c.behaviors[i] = info
			}
		}
	}
	c.byKind[info.Kind] = info
}

// Get returns behavior info by kind.
func (c *Catalog) Get(kind scene.Kind) (BehaviorInfo, bool) {
	info, ok := c.byKind[kind]
	return info, ok
}

// GetName returns the display name for a kind.
// Falls back to the kind itself if not found.
func (c *Catalog) GetName(kind scene.Kind) string {
	if info, ok := c.byKind[kind]; ok {
		return info.Name
	}
	return string(kind)
}

// Evaluate runs the evaluator registered for b.Kind.
func (c *Catalog) Evaluate(x *Context, b scene.BehaviorSpec) (r3.Vec, error) {
	info, ok := c.byKind[b.Kind]
	if !ok {
		return geom.Zero, fmt.Errorf("%w %q", scene.ErrUnknownBehavior, b.Kind)
	}
	return info.Evaluate(x, b), nil
}

// All returns all registered behaviors.
func (c *Catalog) All() []BehaviorInfo {
	return c.behaviors
}

// ByCategory returns behaviors filtered by category.
func (c *Catalog) ByCategory(category string) []BehaviorInfo {
	var result []BehaviorInfo
	for _, info := range c.behaviors {
		if info.Category == category {
			result = append(result, info)
		}
	}
	return result
}

// Categories returns all unique categories.
func (c *Catalog) Categories() []string {
	seen := make(map[string]bool)
	var cats []string
	for _, info := range c.behaviors {
		if !seen[info.Category] {
			seen[info.Category] = true
			cats = append(cats, info.Category)
		}
	}
	return cats
}

// Kinds returns all kinds in registration order.
func (c *Catalog) Kinds() []scene.Kind {
	kinds := make([]scene.Kind, len(c.behaviors))
	for i, info := range c.behaviors {
		kinds[i] = info.Kind
	}
	return kinds
}
