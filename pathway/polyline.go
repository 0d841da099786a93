// Package pathway implements polyline pathways: a sequence of waypoints with
// a radius that defines a tube around the line segments.
package pathway

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/steer/geom"
)

var (
	// ErrTooFewPoints is returned when a pathway has fewer than two points.
	ErrTooFewPoints = errors.New("pathway needs at least two points")
	// ErrDegenerateSegment is returned when two consecutive points coincide.
	ErrDegenerateSegment = errors.New("pathway segment has zero length")
)

// Projection is the result of mapping a point onto a pathway.
type Projection struct {
	Point   r3.Vec  // nearest point on the path centerline
	Tangent r3.Vec  // unit tangent of the segment containing Point
	Outside float64 // distance beyond the tube surface; negative when inside
}

// Inside reports whether the projected point lies within the tube.
func (p Projection) Inside() bool {
	return p.Outside < 0
}

// Pathway is the query surface path following needs.
type Pathway interface {
	MapPointToPath(point r3.Vec) Projection
	MapPointToPathDistance(point r3.Vec) float64
	MapPathDistanceToPoint(pathDistance float64) r3.Vec
}

var _ Pathway = (*Polyline)(nil)

// Polyline is a pathway made of straight segments between points. When
// cyclic, an extra segment joins the last point back to the first. A
// Polyline is immutable after Initialize and safe for concurrent queries.
type Polyline struct {
	points   []r3.Vec // includes the closing point when cyclic
	tangents []r3.Vec // tangents[i] is the unit direction of segment i-1 -> i
	lengths  []float64
	radius   float64
	cyclic   bool
	total    float64
}

// NewPolyline validates the points and builds a pathway from them.
func NewPolyline(points []r3.Vec, radius float64, cyclic bool) (*Polyline, error) {
	if len(points) < 2 {
		return nil, fmt.Errorf("%w: got %d", ErrTooFewPoints, len(points))
	}
	for i := 1; i < len(points); i++ {
		if points[i] == points[i-1] {
			return nil, fmt.Errorf("%w: points %d and %d", ErrDegenerateSegment, i-1, i)
		}
	}
	if cyclic && points[0] == points[len(points)-1] {
		return nil, fmt.Errorf("%w: closing segment", ErrDegenerateSegment)
	}
	p := &Polyline{}
	p.Initialize(points, radius, cyclic)
	return p, nil
}

// Initialize rebuilds the pathway from points. It never fails: fewer than
// two points give an empty path of length zero, and zero-length segments get
// a zero tangent.
func (p *Polyline) Initialize(points []r3.Vec, radius float64, cyclic bool) {
	p.radius = radius
	p.cyclic = cyclic
	p.total = 0

	n := len(points)
	if cyclic && n > 1 {
		n++
	}
	p.points = make([]r3.Vec, n)
	p.tangents = make([]r3.Vec, n)
	p.lengths = make([]float64, n)

	for i := 0; i < n; i++ {
		j := i
		if cyclic && i == n-1 && n > 1 {
			j = 0
		}
		p.points[i] = points[j]
		if i == 0 {
			continue
		}
		seg := r3.Sub(p.points[i], p.points[i-1])
		p.lengths[i] = r3.Norm(seg)
		p.tangents[i] = geom.Normalize(seg)
		p.total += p.lengths[i]
	}
}

// Radius returns the tube radius.
func (p *Polyline) Radius() float64 { return p.radius }

// Cyclic reports whether the path closes on itself.
func (p *Polyline) Cyclic() bool { return p.cyclic }

// TotalLength returns the sum of all segment lengths.
func (p *Polyline) TotalLength() float64 { return p.total }

// PointCount returns the number of stored points, including the closing
// point of a cyclic path.
func (p *Polyline) PointCount() int { return len(p.points) }

// Point returns the i-th stored point.
func (p *Polyline) Point(i int) r3.Vec { return p.points[i] }

// SegmentCount returns the number of segments.
func (p *Polyline) SegmentCount() int {
	if len(p.points) < 2 {
		return 0
	}
	return len(p.points) - 1
}

// segmentHit is the nearest point on one segment to a query point.
type segmentHit struct {
	distance   float64 // query point to nearest point
	projection float64 // distance along the segment to the nearest point
	point      r3.Vec
}

// nearestOnSegment projects point onto segment i (points[i-1] -> points[i]),
// clamping to the segment ends.
func (p *Polyline) nearestOnSegment(point r3.Vec, i int) segmentHit {
	ep0, ep1 := p.points[i-1], p.points[i]
	length := p.lengths[i]

	proj := r3.Dot(p.tangents[i], r3.Sub(point, ep0))
	if proj < 0 {
		return segmentHit{distance: geom.Distance(point, ep0), projection: 0, point: ep0}
	}
	if proj > length {
		return segmentHit{distance: geom.Distance(point, ep1), projection: length, point: ep1}
	}
	on := r3.Add(ep0, r3.Scale(proj, p.tangents[i]))
	return segmentHit{distance: geom.Distance(point, on), projection: proj, point: on}
}

// MapPointToPath returns the point on the path nearest to point, the path
// tangent there, and how far point lies outside the tube. Ties go to the
// earliest segment.
func (p *Polyline) MapPointToPath(point r3.Vec) Projection {
	switch len(p.points) {
	case 0:
		return Projection{Point: point, Outside: -p.radius}
	case 1:
		return Projection{Point: p.points[0], Outside: geom.Distance(point, p.points[0]) - p.radius}
	}

	minDistance := math.MaxFloat64
	var best Projection
	for i := 1; i < len(p.points); i++ {
		hit := p.nearestOnSegment(point, i)
		if hit.distance < minDistance {
			minDistance = hit.distance
			best.Point = hit.point
			best.Tangent = p.tangents[i]
		}
	}
	best.Outside = geom.Distance(best.Point, point) - p.radius
	return best
}

// MapPointToPathDistance converts point to a distance along the path,
// measured at its nearest point on the path.
func (p *Polyline) MapPointToPathDistance(point r3.Vec) float64 {
	minDistance := math.MaxFloat64
	segmentLengthTotal := 0.0
	pathDistance := 0.0
	for i := 1; i < len(p.points); i++ {
		hit := p.nearestOnSegment(point, i)
		if hit.distance < minDistance {
			minDistance = hit.distance
			pathDistance = segmentLengthTotal + hit.projection
		}
		segmentLengthTotal += p.lengths[i]
	}
	return pathDistance
}

// MapPathDistanceToPoint converts a distance along the path to a point. A
// cyclic path wraps the distance; an open path clamps it to its ends.
func (p *Polyline) MapPathDistanceToPoint(pathDistance float64) r3.Vec {
	switch len(p.points) {
	case 0:
		return geom.Zero
	case 1:
		return p.points[0]
	}
	last := p.points[len(p.points)-1]

	remaining := pathDistance
	if p.cyclic {
		if p.total == 0 {
			return p.points[0]
		}
		remaining = math.Mod(pathDistance, p.total)
		if remaining < 0 {
			remaining += p.total
		}
	} else {
		if pathDistance < 0 {
			return p.points[0]
		}
		if pathDistance >= p.total {
			return last
		}
	}

	for i := 1; i < len(p.points); i++ {
		length := p.lengths[i]
		if length < remaining {
			remaining -= length
			continue
		}
		if length == 0 {
			return p.points[i]
		}
		return geom.Interpolate(remaining/length, p.points[i-1], p.points[i])
	}
	return last
}
