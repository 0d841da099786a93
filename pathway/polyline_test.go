package pathway

import (
	"errors"
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/steer/geom"
)

func near(a, b r3.Vec, eps float64) bool {
	return math.Abs(a.X-b.X) <= eps && math.Abs(a.Y-b.Y) <= eps && math.Abs(a.Z-b.Z) <= eps
}

func mustPolyline(t *testing.T, points []r3.Vec, radius float64, cyclic bool) *Polyline {
	t.Helper()
	p, err := NewPolyline(points, radius, cyclic)
	if err != nil {
		t.Fatalf("NewPolyline: %v", err)
	}
	return p
}

func square(t *testing.T, cyclic bool) *Polyline {
	return mustPolyline(t, []r3.Vec{
		geom.V(0, 0, 0), geom.V(10, 0, 0), geom.V(10, 0, 10), geom.V(0, 0, 10),
	}, 1, cyclic)
}

func TestTotalLength(t *testing.T) {
	tests := []struct {
		name   string
		cyclic bool
		want   float64
	}{
		{"open square", false, 30},
		{"closed square", true, 40},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			p := square(t, tc.cyclic)
			if math.Abs(p.TotalLength()-tc.want) > 1e-12 {
				t.Errorf("expected length %f, got %f", tc.want, p.TotalLength())
			}

			sum := 0.0
			for i := 1; i < p.PointCount(); i++ {
				sum += geom.Distance(p.Point(i), p.Point(i-1))
			}
			if math.Abs(sum-p.TotalLength()) > 1e-12 {
				t.Errorf("segment sum %f != total %f", sum, p.TotalLength())
			}
		})
	}
}

func TestCyclicClosingPoint(t *testing.T) {
	p := square(t, true)
	if p.PointCount() != 5 || p.SegmentCount() != 4 {
		t.Fatalf("expected 5 points and 4 segments, got %d and %d", p.PointCount(), p.SegmentCount())
	}
	if p.Point(4) != p.Point(0) {
		t.Errorf("closing point should equal first point")
	}
}

func TestMapPointToPathStraight(t *testing.T) {
	p := mustPolyline(t, []r3.Vec{geom.V(0, 0, 0), geom.V(10, 0, 0)}, 1, false)

	proj := p.MapPointToPath(geom.V(5, 0, 2))
	if !near(proj.Point, geom.V(5, 0, 0), 1e-12) {
		t.Errorf("expected on-path point (5,0,0), got %v", proj.Point)
	}
	if !near(proj.Tangent, geom.UnitX, 1e-12) {
		t.Errorf("expected tangent +X, got %v", proj.Tangent)
	}
	if math.Abs(proj.Outside-1) > 1e-12 {
		t.Errorf("expected outside 1, got %f", proj.Outside)
	}
	if proj.Inside() {
		t.Error("point should be outside the tube")
	}

	d := p.MapPointToPathDistance(geom.V(5, 0, 2))
	if math.Abs(d-5) > 1e-12 {
		t.Errorf("expected path distance 5, got %f", d)
	}
}

func TestMapPointToPathClampsToEnds(t *testing.T) {
	p := mustPolyline(t, []r3.Vec{geom.V(0, 0, 0), geom.V(10, 0, 0)}, 1, false)

	before := p.MapPointToPath(geom.V(-3, 0, 4))
	if !near(before.Point, geom.V(0, 0, 0), 1e-12) {
		t.Errorf("expected clamp to first point, got %v", before.Point)
	}
	if math.Abs(before.Outside-4) > 1e-12 {
		t.Errorf("expected outside 4, got %f", before.Outside)
	}
	if d := p.MapPointToPathDistance(geom.V(-3, 0, 4)); d != 0 {
		t.Errorf("expected distance 0 before start, got %f", d)
	}

	after := p.MapPointToPath(geom.V(14, 0, 0))
	if !near(after.Point, geom.V(10, 0, 0), 1e-12) {
		t.Errorf("expected clamp to last point, got %v", after.Point)
	}
	if d := p.MapPointToPathDistance(geom.V(14, 0, 0)); math.Abs(d-10) > 1e-12 {
		t.Errorf("expected distance 10 past end, got %f", d)
	}
}

func TestMapPointToPathInside(t *testing.T) {
	p := square(t, false)
	proj := p.MapPointToPath(geom.V(10.5, 0, 5))
	if !proj.Inside() {
		t.Errorf("expected inside, outside=%f", proj.Outside)
	}
	if !near(proj.Tangent, geom.UnitZ, 1e-12) {
		t.Errorf("expected tangent +Z on second segment, got %v", proj.Tangent)
	}
	if d := p.MapPointToPathDistance(geom.V(10.5, 0, 5)); math.Abs(d-15) > 1e-12 {
		t.Errorf("expected distance 15, got %f", d)
	}
}

func TestMapPointToPathTieGoesToFirstSegment(t *testing.T) {
	// The corner (10,0,0) is equidistant from both segments' clamped ends.
	p := square(t, false)
	proj := p.MapPointToPath(geom.V(12, 0, -2))
	if !near(proj.Tangent, geom.UnitX, 1e-12) {
		t.Errorf("expected first segment's tangent, got %v", proj.Tangent)
	}
}

func TestMapPathDistanceToPoint(t *testing.T) {
	p := square(t, false)
	tests := []struct {
		d    float64
		want r3.Vec
	}{
		{-5, geom.V(0, 0, 0)},
		{0, geom.V(0, 0, 0)},
		{4, geom.V(4, 0, 0)},
		{10, geom.V(10, 0, 0)},
		{12.5, geom.V(10, 0, 2.5)},
		{25, geom.V(5, 0, 10)},
		{30, geom.V(0, 0, 10)},
		{99, geom.V(0, 0, 10)},
	}
	for _, tc := range tests {
		got := p.MapPathDistanceToPoint(tc.d)
		if !near(got, tc.want, 1e-12) {
			t.Errorf("distance %f: expected %v, got %v", tc.d, tc.want, got)
		}
	}
}

func TestCyclicWrap(t *testing.T) {
	p := square(t, true)
	L := p.TotalLength()
	for _, d := range []float64{0, 3, 10, 17.25, 33, 39.5} {
		a := p.MapPathDistanceToPoint(d)
		b := p.MapPathDistanceToPoint(L + d)
		c := p.MapPathDistanceToPoint(d - L)
		if !near(a, b, 1e-9) {
			t.Errorf("d=%f: %v != %v after +L", d, a, b)
		}
		if !near(a, c, 1e-9) {
			t.Errorf("d=%f: %v != %v after -L", d, a, c)
		}
	}
	// The closing segment runs from (0,0,10) back to the origin.
	if got := p.MapPathDistanceToPoint(35); !near(got, geom.V(0, 0, 5), 1e-12) {
		t.Errorf("expected closing segment midpoint, got %v", got)
	}
}

func TestDistanceRoundTrip(t *testing.T) {
	p := square(t, false)
	for d := 0.0; d <= p.TotalLength(); d += 1.25 {
		got := p.MapPointToPathDistance(p.MapPathDistanceToPoint(d))
		if math.Abs(got-d) > 1e-9 {
			t.Errorf("round trip %f -> %f", d, got)
		}
	}
}

func TestNewPolylineValidation(t *testing.T) {
	if _, err := NewPolyline([]r3.Vec{geom.V(1, 2, 3)}, 1, false); !errors.Is(err, ErrTooFewPoints) {
		t.Errorf("expected ErrTooFewPoints, got %v", err)
	}
	if _, err := NewPolyline([]r3.Vec{geom.V(0, 0, 0), geom.V(0, 0, 0)}, 1, false); !errors.Is(err, ErrDegenerateSegment) {
		t.Errorf("expected ErrDegenerateSegment, got %v", err)
	}
	if _, err := NewPolyline([]r3.Vec{geom.V(0, 0, 0), geom.V(1, 0, 0), geom.V(0, 0, 0)}, 1, true); !errors.Is(err, ErrDegenerateSegment) {
		t.Errorf("expected ErrDegenerateSegment for closing segment, got %v", err)
	}
}

func TestEmptyAndDegeneratePaths(t *testing.T) {
	var empty Polyline
	empty.Initialize(nil, 2, true)
	if empty.TotalLength() != 0 || empty.SegmentCount() != 0 {
		t.Errorf("expected empty path, got length %f", empty.TotalLength())
	}
	if got := empty.MapPathDistanceToPoint(5); got != geom.Zero {
		t.Errorf("expected zero point, got %v", got)
	}
	if proj := empty.MapPointToPath(geom.V(1, 1, 1)); !proj.Inside() {
		t.Errorf("empty path should report inside, got %f", proj.Outside)
	}
	if d := empty.MapPointToPathDistance(geom.V(1, 1, 1)); d != 0 {
		t.Errorf("expected distance 0, got %f", d)
	}

	var dup Polyline
	dup.Initialize([]r3.Vec{geom.V(0, 0, 0), geom.V(0, 0, 0), geom.V(4, 0, 0)}, 1, false)
	if dup.TotalLength() != 4 {
		t.Errorf("expected length 4, got %f", dup.TotalLength())
	}
	got := dup.MapPathDistanceToPoint(0)
	if !geom.IsFinite(got) || got != geom.V(0, 0, 0) {
		t.Errorf("expected finite start point, got %v", got)
	}
	if got := dup.MapPathDistanceToPoint(2); !near(got, geom.V(2, 0, 0), 1e-12) {
		t.Errorf("expected (2,0,0), got %v", got)
	}
}
