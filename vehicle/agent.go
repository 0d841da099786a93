// Package vehicle defines the agent state the steering kernel reads: a local
// frame plus the kinematic limits of the body it describes.
package vehicle

import (
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/steer/geom"
	"github.com/pthm-cable/steer/localspace"
)

// Default kinematics applied by Reset.
const (
	DefaultMass     = 1.0
	DefaultRadius   = 0.5
	DefaultMaxForce = 0.1
	DefaultMaxSpeed = 1.0
)

// Agent is a moving body: its frame (position and orientation) and its
// kinematic attributes. The steering kernel only reads agents; the host
// integrates forces and writes new state.
type Agent struct {
	localspace.Frame

	Mass     float64 // defaults to 1 so acceleration equals force
	Radius   float64 // bounding sphere
	Speed    float64 // current speed along Forward
	MaxForce float64
	MaxSpeed float64
}

// New returns an agent with an identity frame and default kinematics.
func New(h localspace.Handedness) *Agent {
	a := &Agent{}
	a.Frame.Handedness = h
	a.Reset()
	return a
}

// Reset restores the identity frame and default kinematics.
func (a *Agent) Reset() {
	a.Frame.Reset()
	a.Mass = DefaultMass
	a.Radius = DefaultRadius
	a.Speed = 0
	a.MaxForce = DefaultMaxForce
	a.MaxSpeed = DefaultMaxSpeed
}

// Velocity is Forward scaled by Speed.
func (a *Agent) Velocity() r3.Vec {
	return r3.Scale(a.Speed, a.Forward)
}

// PredictFuturePosition extrapolates the position dt seconds ahead at
// constant velocity.
func (a *Agent) PredictFuturePosition(dt float64) r3.Vec {
	return r3.Add(a.Position, r3.Scale(dt, a.Velocity()))
}

// SetVelocity orients the agent along v and sets its speed to |v|. A zero
// velocity stops the agent without changing its heading.
func (a *Agent) SetVelocity(v r3.Vec) {
	a.Speed = r3.Norm(v)
	if a.Speed == 0 {
		return
	}
	a.RegenerateOrthonormalBasis(v)
}

// Distance returns the center-to-center distance to other.
func (a *Agent) Distance(other *Agent) float64 {
	return geom.Distance(a.Position, other.Position)
}
