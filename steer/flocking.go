package steer

import (
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/steer/geom"
	"github.com/pthm-cable/steer/vehicle"
)

// InBoidNeighborhood reports whether other counts as a flocking neighbor of
// a. Anything within minDistance counts; anything beyond maxDistance does
// not; in between, other must lie within the cone whose half-angle cosine is
// cosMaxAngle. An agent is never its own neighbor.
func InBoidNeighborhood(a, other *vehicle.Agent, minDistance, maxDistance, cosMaxAngle float64) bool {
	if other == a {
		return false
	}
	offset := r3.Sub(other.Position, a.Position)
	distanceSquared := r3.Norm2(offset)

	if distanceSquared <= minDistance*minDistance {
		return true
	}
	if distanceSquared > maxDistance*maxDistance {
		return false
	}
	forwardness := r3.Dot(a.Forward, geom.Normalize(offset))
	return forwardness > cosMaxAngle
}

// neighborhoodMinDistance is the radius around an agent inside which any
// other agent is a neighbor regardless of direction.
func neighborhoodMinDistance(a *vehicle.Agent) float64 {
	return a.Radius * 3
}

// Separation steers away from neighbors, weighting each by the inverse
// square of its distance. The result is a unit vector, or zero with no
// neighbors.
func (l *Library) Separation(a *vehicle.Agent, maxDistance, cosMaxAngle float64, neighbors []*vehicle.Agent) r3.Vec {
	floorSquared := l.SeparationMinDistance * l.SeparationMinDistance
	minDistance := neighborhoodMinDistance(a)

	var steering r3.Vec
	for _, other := range neighbors {
		if !InBoidNeighborhood(a, other, minDistance, maxDistance, cosMaxAngle) {
			continue
		}
		offset := r3.Sub(other.Position, a.Position)
		distanceSquared := max(r3.Norm2(offset), floorSquared)
		if distanceSquared == 0 {
			// Coincident: no direction to push in.
			continue
		}
		steering = r3.Add(steering, r3.Scale(-1/distanceSquared, offset))
	}
	return geom.Normalize(steering)
}

// Alignment steers toward the average heading of neighbors.
func (l *Library) Alignment(a *vehicle.Agent, maxDistance, cosMaxAngle float64, neighbors []*vehicle.Agent) r3.Vec {
	minDistance := neighborhoodMinDistance(a)

	var sum r3.Vec
	n := 0
	for _, other := range neighbors {
		if InBoidNeighborhood(a, other, minDistance, maxDistance, cosMaxAngle) {
			sum = r3.Add(sum, other.Forward)
			n++
		}
	}
	if n == 0 {
		return geom.Zero
	}
	return geom.Normalize(r3.Sub(r3.Scale(1/float64(n), sum), a.Forward))
}

// Cohesion steers toward the average position of neighbors.
func (l *Library) Cohesion(a *vehicle.Agent, maxDistance, cosMaxAngle float64, neighbors []*vehicle.Agent) r3.Vec {
	minDistance := neighborhoodMinDistance(a)

	var sum r3.Vec
	n := 0
	for _, other := range neighbors {
		if InBoidNeighborhood(a, other, minDistance, maxDistance, cosMaxAngle) {
			sum = r3.Add(sum, other.Position)
			n++
		}
	}
	if n == 0 {
		return geom.Zero
	}
	return geom.Normalize(r3.Sub(r3.Scale(1/float64(n), sum), a.Position))
}
