package steer

import (
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/steer/geom"
	"github.com/pthm-cable/steer/obstacle"
	"github.com/pthm-cable/steer/vehicle"
)

// AvoidObstacle steers around a single obstacle, looking
// minTimeToCollision seconds ahead.
func (l *Library) AvoidObstacle(a *vehicle.Agent, minTimeToCollision float64, o obstacle.Obstacle) r3.Vec {
	avoidance := o.SteerToAvoid(a, minTimeToCollision)
	if !geom.IsZero(avoidance) {
		l.annotator().AvoidObstacle(a, minTimeToCollision*a.Speed)
	}
	return avoidance
}

// AvoidObstacles steers away from the nearest obstacle the agent's forward
// path will hit within minTimeToCollision seconds. The push is lateral, away
// from the obstacle's center, plus a forward component so the agent keeps
// moving. An agent headed at an obstacle's dead center turns toward its
// side.
func (l *Library) AvoidObstacles(a *vehicle.Agent, minTimeToCollision float64, obstacles []obstacle.Obstacle) r3.Vec {
	minDistanceToCollision := minTimeToCollision * a.Speed

	nearest := obstacle.Nearest(a, obstacles)
	if !nearest.Hit || nearest.Distance >= minDistanceToCollision {
		return geom.Zero
	}
	l.annotator().AvoidObstacle(a, minDistanceToCollision)

	offset := r3.Sub(a.Position, nearest.Center)
	lateral := geom.NormalizeOr(geom.PerpendicularComponent(offset, a.Forward), a.Side)
	return r3.Add(r3.Scale(a.MaxForce, lateral), r3.Scale(a.MaxForce*0.75, a.Forward))
}

// AvoidCloseNeighbors returns a hard sideways push away from the first
// neighbor closer than minSeparationDistance plus both radii, or zero.
func (l *Library) AvoidCloseNeighbors(a *vehicle.Agent, minSeparationDistance float64, others []*vehicle.Agent) r3.Vec {
	for _, other := range others {
		if other == a {
			continue
		}
		minCenterToCenter := minSeparationDistance + a.Radius + other.Radius
		offset := r3.Sub(other.Position, a.Position)
		if r3.Norm(offset) < minCenterToCenter {
			l.annotator().AvoidCloseNeighbor(a, other, minSeparationDistance)
			return geom.PerpendicularComponent(r3.Scale(-1, offset), a.Forward)
		}
	}
	return geom.Zero
}

// AvoidNeighbors steers sideways away from the neighbor that will come
// nearest soonest, if that approach is closer than twice the agent's radius
// and happens within minTimeToCollision seconds. Interpenetrating neighbors
// take priority through AvoidCloseNeighbors. The result is ±Side, or zero.
func (l *Library) AvoidNeighbors(a *vehicle.Agent, minTimeToCollision float64, others []*vehicle.Agent) r3.Vec {
	if separation := l.AvoidCloseNeighbors(a, 0, others); !geom.IsZero(separation) {
		return separation
	}

	var (
		threat       *vehicle.Agent
		ourFuture    r3.Vec
		threatFuture r3.Vec
	)
	minTime := minTimeToCollision
	dangerThreshold := a.Radius * 2
	for _, other := range others {
		if other == a {
			continue
		}
		t := PredictNearestApproachTime(a, other)
		if t < 0 || t >= minTime {
			continue
		}
		ours, theirs, distance := ComputeNearestApproachPositions(a, other, t)
		if distance < dangerThreshold {
			minTime = t
			threat = other
			ourFuture = ours
			threatFuture = theirs
		}
	}
	if threat == nil {
		return geom.Zero
	}

	steer := 0.0
	awayFrom := func(offset r3.Vec) float64 {
		if r3.Dot(offset, a.Side) > 0 {
			return -1
		}
		return 1
	}
	parallelness := r3.Dot(a.Forward, threat.Forward)
	switch {
	case parallelness < -CosHalfRightAngle:
		// Head on: dodge where the threat will be.
		steer = awayFrom(r3.Sub(threatFuture, a.Position))
	case parallelness > CosHalfRightAngle:
		// Same direction: dodge where the threat is now.
		steer = awayFrom(r3.Sub(threat.Position, a.Position))
	default:
		// Crossing: only the slower agent gives way, steering against the
		// threat's motion. Equal speeds both give way.
		if a.Speed <= threat.Speed {
			steer = awayFrom(threat.Velocity())
		}
	}

	l.annotator().AvoidNeighbor(a, threat, steer, ourFuture, threatFuture)
	return r3.Scale(steer, a.Side)
}

// PredictNearestApproachTime returns the time at which two agents moving at
// constant velocity are nearest. It is negative when they are separating and
// zero when their relative velocity is zero.
func PredictNearestApproachTime(a, other *vehicle.Agent) float64 {
	relVelocity := r3.Sub(other.Velocity(), a.Velocity())
	relSpeed := r3.Norm(relVelocity)
	if relSpeed == 0 {
		return 0
	}
	relTangent := r3.Scale(1/relSpeed, relVelocity)
	relPosition := r3.Sub(a.Position, other.Position)
	return r3.Dot(relTangent, relPosition) / relSpeed
}

// ComputeNearestApproachPositions extrapolates both agents t seconds ahead
// and returns the two positions and the distance between them.
func ComputeNearestApproachPositions(a, other *vehicle.Agent, t float64) (ours, theirs r3.Vec, distance float64) {
	ours = a.PredictFuturePosition(t)
	theirs = other.PredictFuturePosition(t)
	return ours, theirs, geom.Distance(ours, theirs)
}
