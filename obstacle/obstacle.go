// Package obstacle defines obstacles agents steer around and the spherical
// obstacle, the one shape currently implemented.
package obstacle

import (
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/steer/vehicle"
)

// Obstacle is anything an agent can collide with. Each shape provides its
// own intersection test against the agent's forward travel corridor.
type Obstacle interface {
	// SteerToAvoid returns a lateral steering vector away from the obstacle
	// when it lies in the agent's corridor within minTimeToCollision seconds
	// of travel, and the zero vector otherwise.
	SteerToAvoid(a *vehicle.Agent, minTimeToCollision float64) r3.Vec

	// Intersect finds where the agent's forward corridor (the agent's
	// radius swept along its forward axis) first meets the obstacle.
	Intersect(a *vehicle.Agent) Intersection
}

// Intersection is the result of a corridor test against one obstacle.
type Intersection struct {
	Hit      bool
	Distance float64 // along the agent's forward axis, valid when Hit
	Center   r3.Vec  // reference point avoidance steers away from
	Obstacle Obstacle
}

// Nearest returns the closest hit among obstacles, or a zero Intersection
// (Hit false) when none is hit. Ties go to the earlier obstacle.
func Nearest(a *vehicle.Agent, obstacles []Obstacle) Intersection {
	var nearest Intersection
	for _, o := range obstacles {
		next := o.Intersect(a)
		if !next.Hit {
			continue
		}
		if !nearest.Hit || next.Distance < nearest.Distance {
			nearest = next
		}
	}
	return nearest
}
