package steer

import (
	"math/rand"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/steer/geom"
	"github.com/pthm-cable/steer/vehicle"
)

// DefaultWanderRate scales the per-second step of the wander random walk.
const DefaultWanderRate = 12.0

// Wanderer carries the random walk state of one wandering agent. Each
// agent needs its own Wanderer.
type Wanderer struct {
	Side float64 // lateral walk value in [-1, 1]
	Up   float64 // vertical walk value in [-1, 1]
	Rate float64

	rng *rand.Rand
}

// NewWanderer returns a wanderer drawing from rng. A nil rng gets a
// source seeded from the global generator.
func NewWanderer(rng *rand.Rand) *Wanderer {
	if rng == nil {
		rng = rand.New(rand.NewSource(rand.Int63()))
	}
	return &Wanderer{Rate: DefaultWanderRate, rng: rng}
}

// Reset zeroes the walk.
func (w *Wanderer) Reset() {
	w.Side = 0
	w.Up = 0
}

// Steer advances the walk by dt seconds and returns a force in the agent's
// side/up plane. Rate*dt bounds each step.
func (w *Wanderer) Steer(a *vehicle.Agent, dt float64) r3.Vec {
	step := w.Rate * dt
	w.Side = geom.ScalarRandomWalk(w.rng, w.Side, step, -1, 1)
	w.Up = geom.ScalarRandomWalk(w.rng, w.Up, step, -1, 1)
	return r3.Add(r3.Scale(w.Side, a.Side), r3.Scale(w.Up, a.Up))
}
