// Package geom provides the small vector vocabulary shared by the steering
// packages, built on gonum's r3 vectors.
package geom

import (
	"math"
	"math/rand"

	"gonum.org/v1/gonum/spatial/r3"
)

// Zero is the zero vector.
var Zero = r3.Vec{}

// Canonical axes.
var (
	UnitX = r3.Vec{X: 1}
	UnitY = r3.Vec{Y: 1}
	UnitZ = r3.Vec{Z: 1}
)

// V is shorthand for constructing a vector.
func V(x, y, z float64) r3.Vec {
	return r3.Vec{X: x, Y: y, Z: z}
}

// IsZero reports whether v is exactly the zero vector.
func IsZero(v r3.Vec) bool {
	return v.X == 0 && v.Y == 0 && v.Z == 0
}

// IsFinite reports whether no component of v is NaN or infinite.
func IsFinite(v r3.Vec) bool {
	return !math.IsNaN(v.X) && !math.IsNaN(v.Y) && !math.IsNaN(v.Z) &&
		!math.IsInf(v.X, 0) && !math.IsInf(v.Y, 0) && !math.IsInf(v.Z, 0)
}

// Normalize returns v scaled to unit length. The zero vector (and any vector
// too short to normalize) yields the zero vector rather than NaN.
func Normalize(v r3.Vec) r3.Vec {
	n := r3.Norm(v)
	if n == 0 || math.IsInf(1/n, 0) {
		return Zero
	}
	return r3.Scale(1/n, v)
}

// NormalizeOr is Normalize with an explicit fallback for degenerate input.
func NormalizeOr(v, fallback r3.Vec) r3.Vec {
	u := Normalize(v)
	if IsZero(u) {
		return fallback
	}
	return u
}

// Distance returns the euclidean distance between a and b.
func Distance(a, b r3.Vec) float64 {
	return r3.Norm(r3.Sub(a, b))
}

// ParallelComponent returns the component of v parallel to the unit vector.
func ParallelComponent(v, unitBasis r3.Vec) r3.Vec {
	return r3.Scale(r3.Dot(v, unitBasis), unitBasis)
}

// PerpendicularComponent returns the component of v perpendicular to the
// unit vector.
func PerpendicularComponent(v, unitBasis r3.Vec) r3.Vec {
	return r3.Sub(v, ParallelComponent(v, unitBasis))
}

// TruncateLength clamps the length of v to maxLength, keeping its direction.
func TruncateLength(v r3.Vec, maxLength float64) r3.Vec {
	n2 := r3.Norm2(v)
	if n2 <= maxLength*maxLength {
		return v
	}
	return r3.Scale(maxLength/math.Sqrt(n2), v)
}

// Interpolate returns the point a fraction alpha of the way from a to b.
func Interpolate(alpha float64, a, b r3.Vec) r3.Vec {
	return r3.Add(a, r3.Scale(alpha, r3.Sub(b, a)))
}

// Clip clamps x to [lo, hi].
func Clip(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}

// IntervalComparison buckets x against [lo, hi]: -1 below, +1 above, 0 inside.
func IntervalComparison(x, lo, hi float64) int {
	if x < lo {
		return -1
	}
	if x > hi {
		return +1
	}
	return 0
}

// ScalarRandomWalk takes one bounded random step of at most maxStep from
// initial and clamps the result to [lo, hi].
func ScalarRandomWalk(rng *rand.Rand, initial, maxStep, lo, hi float64) float64 {
	next := initial + (rng.Float64()*2-1)*maxStep
	return Clip(next, lo, hi)
}
