package obstacle

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/steer/geom"
	"github.com/pthm-cable/steer/vehicle"
)

// Sphere is a spherical obstacle.
type Sphere struct {
	Center r3.Vec
	Radius float64
}

// NewSphere returns a sphere obstacle.
func NewSphere(center r3.Vec, radius float64) *Sphere {
	return &Sphere{Center: center, Radius: radius}
}

// SteerToAvoid checks the sphere against a cylinder of likely future
// positions: the agent's radius swept minTimeToCollision seconds along its
// forward axis. When they overlap it returns the lateral offset pointing from
// the sphere's center toward the agent's axis.
func (s *Sphere) SteerToAvoid(a *vehicle.Agent, minTimeToCollision float64) r3.Vec {
	minDistanceToCollision := minTimeToCollision * a.Speed
	minDistanceToCenter := minDistanceToCollision + s.Radius
	totalRadius := s.Radius + a.Radius

	localOffset := r3.Sub(s.Center, a.Position)
	forwardComponent := r3.Dot(localOffset, a.Forward)
	offForward := r3.Sub(localOffset, r3.Scale(forwardComponent, a.Forward))

	inCylinder := r3.Norm(offForward) < totalRadius
	nearby := forwardComponent < minDistanceToCenter
	inFront := forwardComponent > 0
	if !(inCylinder && nearby && inFront) {
		return geom.Zero
	}
	if geom.IsZero(offForward) {
		// Dead ahead: no lateral direction to prefer, veer to the side.
		return r3.Scale(totalRadius, a.Side)
	}
	return r3.Scale(-1, offForward)
}

// Intersect solves the line/sphere intersection in the agent's local frame,
// with the sphere grown by the agent's radius. The nearer root in front of
// the agent wins; a sphere entirely behind the agent is not hit.
func (s *Sphere) Intersect(a *vehicle.Agent) Intersection {
	result := Intersection{Center: s.Center, Obstacle: s}

	lc := a.LocalizePosition(s.Center)
	r := s.Radius + a.Radius
	b := -2 * lc.Z
	c := lc.X*lc.X + lc.Y*lc.Y + lc.Z*lc.Z - r*r
	d := b*b - 4*c
	if d < 0 {
		return result
	}

	sq := math.Sqrt(d)
	p := (-b + sq) / 2
	q := (-b - sq) / 2
	if p < 0 && q < 0 {
		return result
	}

	result.Hit = true
	switch {
	case p > 0 && q > 0:
		result.Distance = math.Min(p, q)
	case p > 0:
		result.Distance = p
	default:
		result.Distance = q
	}
	return result
}
