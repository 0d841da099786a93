package telemetry

import (
	"log/slog"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/steer/steer"
	"github.com/pthm-cable/steer/vehicle"
)

// AnnotationCounter is a steer.Annotator that counts steering decisions
// per frame and traces each one at debug level.
type AnnotationCounter struct {
	logger *slog.Logger

	ObstacleAvoidances int
	NeighborAvoidances int
	CloseNeighbors     int
	PathCorrections    int
	Pursuits           int
}

var _ steer.Annotator = (*AnnotationCounter)(nil)

// NewAnnotationCounter creates a counter. A nil logger uses slog.Default().
func NewAnnotationCounter(logger *slog.Logger) *AnnotationCounter {
	if logger == nil {
		logger = slog.Default()
	}
	return &AnnotationCounter{logger: logger}
}

// Reset zeroes the counters at the start of a frame.
func (c *AnnotationCounter) Reset() {
	c.ObstacleAvoidances = 0
	c.NeighborAvoidances = 0
	c.CloseNeighbors = 0
	c.PathCorrections = 0
	c.Pursuits = 0
}

// Total returns the number of annotations since the last Reset.
func (c *AnnotationCounter) Total() int {
	return c.ObstacleAvoidances + c.NeighborAvoidances + c.CloseNeighbors + c.PathCorrections + c.Pursuits
}

func (c *AnnotationCounter) AvoidObstacle(a *vehicle.Agent, minDistanceToCollision float64) {
	c.ObstacleAvoidances++
	c.logger.Debug("avoid obstacle", "position", a.Position, "corridor", minDistanceToCollision)
}

func (c *AnnotationCounter) PathFollowing(a *vehicle.Agent, future, onPath, target r3.Vec, outside float64) {
	c.PathCorrections++
	c.logger.Debug("path correction", "future", future, "on_path", onPath, "target", target, "outside", outside)
}

func (c *AnnotationCounter) AvoidCloseNeighbor(a, other *vehicle.Agent, additionalDistance float64) {
	c.CloseNeighbors++
	c.logger.Debug("avoid close neighbor", "position", a.Position, "other", other.Position, "additional", additionalDistance)
}

func (c *AnnotationCounter) AvoidNeighbor(a, threat *vehicle.Agent, steer float64, ourFuture, threatFuture r3.Vec) {
	c.NeighborAvoidances++
	c.logger.Debug("avoid neighbor", "position", a.Position, "threat", threat.Position, "steer", steer,
		"our_future", ourFuture, "threat_future", threatFuture)
}

func (c *AnnotationCounter) PursuitLine(a *vehicle.Agent, target r3.Vec, pc steer.PursuitCase) {
	c.Pursuits++
	c.logger.Debug("pursuit", "position", a.Position, "target", target, "case", pc.String())
}
