package geom

import (
	"math"
	"math/rand"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"
)

func vecNear(a, b r3.Vec, eps float64) bool {
	return math.Abs(a.X-b.X) <= eps && math.Abs(a.Y-b.Y) <= eps && math.Abs(a.Z-b.Z) <= eps
}

func TestNormalizeZeroVector(t *testing.T) {
	got := Normalize(Zero)
	if !IsZero(got) {
		t.Errorf("expected zero vector, got %v", got)
	}
	if !IsFinite(got) {
		t.Errorf("expected finite result, got %v", got)
	}
}

func TestNormalize(t *testing.T) {
	got := Normalize(V(3, 0, 4))
	if !vecNear(got, V(0.6, 0, 0.8), 1e-12) {
		t.Errorf("expected (0.6,0,0.8), got %v", got)
	}
	if math.Abs(r3.Norm(got)-1) > 1e-12 {
		t.Errorf("expected unit length, got %f", r3.Norm(got))
	}
}

func TestNormalizeOr(t *testing.T) {
	if got := NormalizeOr(Zero, UnitZ); got != UnitZ {
		t.Errorf("expected fallback, got %v", got)
	}
	if got := NormalizeOr(V(0, 2, 0), UnitZ); !vecNear(got, UnitY, 1e-12) {
		t.Errorf("expected +Y, got %v", got)
	}
}

func TestPerpendicularComponent(t *testing.T) {
	v := V(3, 4, 5)
	perp := PerpendicularComponent(v, UnitZ)
	par := ParallelComponent(v, UnitZ)

	if !vecNear(perp, V(3, 4, 0), 1e-12) {
		t.Errorf("perpendicular: got %v", perp)
	}
	if !vecNear(par, V(0, 0, 5), 1e-12) {
		t.Errorf("parallel: got %v", par)
	}
	if !vecNear(r3.Add(perp, par), v, 1e-12) {
		t.Errorf("components should sum to original")
	}
}

func TestTruncateLength(t *testing.T) {
	tests := []struct {
		name string
		v    r3.Vec
		max  float64
		want r3.Vec
	}{
		{"shorter is unchanged", V(1, 0, 0), 2, V(1, 0, 0)},
		{"longer is clipped", V(0, 0, 10), 2, V(0, 0, 2)},
		{"diagonal", V(3, 4, 0), 1, V(0.6, 0.8, 0)},
		{"zero", Zero, 1, Zero},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := TruncateLength(tc.v, tc.max)
			if !vecNear(got, tc.want, 1e-12) {
				t.Errorf("got %v, want %v", got, tc.want)
			}
		})
	}
}

func TestInterpolate(t *testing.T) {
	got := Interpolate(0.25, V(0, 0, 0), V(4, 8, -4))
	if !vecNear(got, V(1, 2, -1), 1e-12) {
		t.Errorf("got %v", got)
	}
}

func TestIntervalComparison(t *testing.T) {
	if IntervalComparison(-0.8, -0.707, 0.707) != -1 {
		t.Error("expected -1 below interval")
	}
	if IntervalComparison(0.8, -0.707, 0.707) != 1 {
		t.Error("expected +1 above interval")
	}
	if IntervalComparison(0.707, -0.707, 0.707) != 0 {
		t.Error("expected 0 on the boundary")
	}
}

func TestScalarRandomWalkStaysBounded(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	x := 0.0
	for i := 0; i < 10000; i++ {
		prev := x
		x = ScalarRandomWalk(rng, x, 0.5, -1, 1)
		if x < -1 || x > 1 {
			t.Fatalf("step %d left bounds: %f", i, x)
		}
		if math.Abs(x-prev) > 0.5+1e-12 {
			t.Fatalf("step %d too large: %f -> %f", i, prev, x)
		}
	}
}
