package steer

import (
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/steer/geom"
	"github.com/pthm-cable/steer/pathway"
	"github.com/pthm-cable/steer/vehicle"
)

// FollowPath steers the agent along path in the given direction (+1 with
// the point order, -1 against it). No force is needed while the agent's
// predicted position stays inside the tube and it is moving the right way;
// otherwise it seeks the point predictionTime seconds of travel further
// along the path.
func (l *Library) FollowPath(a *vehicle.Agent, direction int, predictionTime float64, path pathway.Pathway) r3.Vec {
	pathDistanceOffset := float64(direction) * predictionTime * a.Speed
	future := a.PredictFuturePosition(predictionTime)

	nowPathDistance := path.MapPointToPathDistance(a.Position)
	futurePathDistance := path.MapPointToPathDistance(future)
	var rightway bool
	if pathDistanceOffset > 0 {
		rightway = nowPathDistance < futurePathDistance
	} else {
		rightway = nowPathDistance > futurePathDistance
	}

	proj := path.MapPointToPath(future)
	if proj.Inside() && rightway {
		return geom.Zero
	}

	target := path.MapPathDistanceToPoint(nowPathDistance + pathDistanceOffset)
	l.annotator().PathFollowing(a, future, proj.Point, target, proj.Outside)
	return l.Seek(a, target)
}

// StayOnPath steers back toward the path centerline when the agent's
// predicted position leaves the tube.
func (l *Library) StayOnPath(a *vehicle.Agent, predictionTime float64, path pathway.Pathway) r3.Vec {
	future := a.PredictFuturePosition(predictionTime)
	proj := path.MapPointToPath(future)
	if proj.Inside() {
		return geom.Zero
	}
	l.annotator().PathFollowing(a, future, proj.Point, proj.Point, proj.Outside)
	return l.Seek(a, proj.Point)
}
