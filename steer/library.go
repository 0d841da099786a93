// Package steer is the steering behavior library. Every behavior reads an
// agent (and its targets, neighbors, obstacles or path) and returns the
// steering force it wants for the current step. Behaviors never modify the
// agents they are given; the host combines and integrates the forces.
package steer

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/steer/vehicle"
)

// CosHalfRightAngle (cos 45°) is the threshold the directional tests and the
// pursuit and neighbor avoidance classifiers bucket their dot products by.
const CosHalfRightAngle = 0.707

// Annotator observes steering decisions, e.g. to draw them. Calls happen
// synchronously inside the behavior that made the decision.
type Annotator interface {
	// AvoidObstacle is called when obstacle avoidance steers; the argument
	// is the length of the corridor that was checked.
	AvoidObstacle(a *vehicle.Agent, minDistanceToCollision float64)
	// PathFollowing is called when path following or staying steers.
	PathFollowing(a *vehicle.Agent, future, onPath, target r3.Vec, outside float64)
	// AvoidCloseNeighbor is called when an interpenetrating neighbor forces
	// a hard sideways push.
	AvoidCloseNeighbor(a, other *vehicle.Agent, additionalDistance float64)
	// AvoidNeighbor is called when a predicted collision is being avoided.
	AvoidNeighbor(a, threat *vehicle.Agent, steer float64, ourFuture, threatFuture r3.Vec)
	// PursuitLine is called with the predicted intercept point of a pursuit.
	PursuitLine(a *vehicle.Agent, target r3.Vec, c PursuitCase)
}

// NopAnnotator ignores all annotations.
type NopAnnotator struct{}

func (NopAnnotator) AvoidObstacle(*vehicle.Agent, float64) {}

func (NopAnnotator) PathFollowing(*vehicle.Agent, r3.Vec, r3.Vec, r3.Vec, float64) {}

func (NopAnnotator) AvoidCloseNeighbor(*vehicle.Agent, *vehicle.Agent, float64) {}

func (NopAnnotator) AvoidNeighbor(*vehicle.Agent, *vehicle.Agent, float64, r3.Vec, r3.Vec) {}

func (NopAnnotator) PursuitLine(*vehicle.Agent, r3.Vec, PursuitCase) {}

// Library holds the options shared by all behaviors. The zero value is ready
// to use and reproduces the classic behaviors exactly.
type Library struct {
	// Annotator receives steering annotations; nil means none.
	Annotator Annotator

	// SeparationMinDistance floors the distance used in separation's
	// inverse-square weighting. Zero applies no floor.
	SeparationMinDistance float64
}

func (l *Library) annotator() Annotator {
	if l.Annotator == nil {
		return NopAnnotator{}
	}
	return l.Annotator
}

// predictionTime clamps an estimated look-ahead to limit. Estimates that are
// undefined (0/0) count as zero; unbounded ones fall back to zero as well,
// aiming at the target's current position.
func predictionTime(estimate, limit float64) float64 {
	if math.IsNaN(estimate) {
		return 0
	}
	if estimate > limit {
		estimate = limit
	}
	if math.IsInf(estimate, 0) || math.IsNaN(estimate) {
		return 0
	}
	return estimate
}
