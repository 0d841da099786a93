package steer

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/steer/geom"
	"github.com/pthm-cable/steer/vehicle"
)

// Bearing buckets where a quarry lies relative to the pursuer's heading.
type Bearing int

const (
	Behind Bearing = -1
	Aside  Bearing = 0
	Ahead  Bearing = 1
)

func (b Bearing) String() string {
	switch b {
	case Behind:
		return "behind"
	case Ahead:
		return "ahead"
	}
	return "aside"
}

// Heading buckets how the quarry's heading compares to the pursuer's.
type Heading int

const (
	AntiParallel  Heading = -1
	Perpendicular Heading = 0
	Parallel      Heading = 1
)

func (h Heading) String() string {
	switch h {
	case AntiParallel:
		return "anti-parallel"
	case Parallel:
		return "parallel"
	}
	return "perpendicular"
}

// PursuitCase is one cell of the pursuit prediction table.
type PursuitCase struct {
	Bearing Bearing
	Heading Heading
}

func (c PursuitCase) String() string {
	return c.Bearing.String() + "/" + c.Heading.String()
}

// ClassifyPursuit buckets forwardness (cosine from the pursuer's heading to
// the quarry) and parallelness (cosine between the two headings) at ±0.707.
func ClassifyPursuit(forwardness, parallelness float64) PursuitCase {
	return PursuitCase{
		Bearing: Bearing(geom.IntervalComparison(forwardness, -CosHalfRightAngle, CosHalfRightAngle)),
		Heading: Heading(geom.IntervalComparison(parallelness, -CosHalfRightAngle, CosHalfRightAngle)),
	}
}

// TimeFactor scales the direct travel time into a prediction time.
func (c PursuitCase) TimeFactor() float64 {
	switch c.Bearing {
	case Ahead:
		switch c.Heading {
		case Parallel:
			return 4
		case Perpendicular:
			return 1.8
		default:
			return 0.85
		}
	case Aside:
		switch c.Heading {
		case Parallel:
			return 1
		case Perpendicular:
			return 0.8
		default:
			return 4
		}
	default:
		switch c.Heading {
		case Parallel:
			return 0.5
		default:
			return 2
		}
	}
}

// Pursuit seeks the position the quarry is predicted to reach. The
// prediction time is the direct travel time at the pursuer's speed, scaled
// by the case's TimeFactor and capped at maxPredictionTime.
func (l *Library) Pursuit(a, quarry *vehicle.Agent, maxPredictionTime float64) r3.Vec {
	offset := r3.Sub(quarry.Position, a.Position)
	distance := r3.Norm(offset)

	c := ClassifyPursuit(
		r3.Dot(a.Forward, geom.Normalize(offset)),
		r3.Dot(a.Forward, quarry.Forward),
	)

	directTravelTime := distance / a.Speed
	t := predictionTime(directTravelTime*c.TimeFactor(), maxPredictionTime)
	target := quarry.PredictFuturePosition(t)

	l.annotator().PursuitLine(a, target, c)
	return l.Seek(a, target)
}

// PursuitUncapped is Pursuit without a cap on the prediction time.
func (l *Library) PursuitUncapped(a, quarry *vehicle.Agent) r3.Vec {
	return l.Pursuit(a, quarry, math.Inf(1))
}

// Evasion flees the position the menace is predicted to reach, estimating
// the time as distance over the menace's speed, capped at
// maxPredictionTime.
func (l *Library) Evasion(a, menace *vehicle.Agent, maxPredictionTime float64) r3.Vec {
	distance := a.Distance(menace)
	t := predictionTime(distance/menace.Speed, maxPredictionTime)
	return l.Flee(a, menace.PredictFuturePosition(t))
}
