// Package components defines ECS components for the steering evaluator.
package components

import (
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/steer/scene"
	"github.com/pthm-cable/steer/steer"
)

// Assignment is the agent's weighted behavior list. Wanderers parallels
// Behaviors and is non-nil only at wander entries, which carry random walk
// state from frame to frame.
type Assignment struct {
	Behaviors []scene.BehaviorSpec
	Wanderers []*steer.Wanderer
}

// Contribution is one behavior's unweighted output.
type Contribution struct {
	Kind   scene.Kind
	Weight float64
	Force  r3.Vec
}

// Steering is the result of the last evaluation: the combined force and
// what each behavior contributed to it.
type Steering struct {
	Force         r3.Vec
	Contributions []Contribution
}
