// Package localspace provides the orthonormal reference frame each agent
// carries, and the transforms between that frame and world space.
package localspace

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/steer/geom"
)

// Handedness selects the sign convention of the frame's cross products.
type Handedness uint8

const (
	RightHanded Handedness = iota // side = forward × up
	LeftHanded                    // side = up × forward
)

// String returns "right" or "left".
func (h Handedness) String() string {
	if h == LeftHanded {
		return "left"
	}
	return "right"
}

// ParseHandedness maps "left" to LeftHanded and anything else to RightHanded.
func ParseHandedness(s string) Handedness {
	if s == "left" {
		return LeftHanded
	}
	return RightHanded
}

// Frame is a local coordinate system: three unit basis vectors and an
// origin. Side, Up and Forward are the rows of a 3x4 transform.
type Frame struct {
	Side       r3.Vec
	Up         r3.Vec
	Forward    r3.Vec
	Position   r3.Vec
	Handedness Handedness
}

// NewFrame returns an identity frame with the given handedness.
func NewFrame(h Handedness) Frame {
	f := Frame{Handedness: h}
	f.Reset()
	return f
}

// NewFrameFromUpForward builds a frame from up and forward, deriving side.
func NewFrameFromUpForward(h Handedness, up, forward, position r3.Vec) Frame {
	f := Frame{Up: up, Forward: forward, Position: position, Handedness: h}
	f.SetUnitSideFromForwardAndUp()
	return f
}

// Reset sets the frame to identity: forward +Z, up +Y, origin at zero, and
// side derived from forward (-X when right handed, +X when left handed).
func (f *Frame) Reset() {
	f.Forward = geom.UnitZ
	f.Side = f.LocalRotateForwardToSide(f.Forward)
	f.Up = geom.UnitY
	f.Position = geom.Zero
}

// LocalizeDirection transforms a world direction into this frame.
func (f *Frame) LocalizeDirection(globalDirection r3.Vec) r3.Vec {
	return r3.Vec{
		X: r3.Dot(globalDirection, f.Side),
		Y: r3.Dot(globalDirection, f.Up),
		Z: r3.Dot(globalDirection, f.Forward),
	}
}

// LocalizePosition transforms a world point into this frame.
func (f *Frame) LocalizePosition(globalPosition r3.Vec) r3.Vec {
	return f.LocalizeDirection(r3.Sub(globalPosition, f.Position))
}

// GlobalizeDirection transforms a local direction into world space.
func (f *Frame) GlobalizeDirection(localDirection r3.Vec) r3.Vec {
	return r3.Add(
		r3.Add(r3.Scale(localDirection.X, f.Side), r3.Scale(localDirection.Y, f.Up)),
		r3.Scale(localDirection.Z, f.Forward),
	)
}

// GlobalizePosition transforms a local point into world space.
func (f *Frame) GlobalizePosition(localPosition r3.Vec) r3.Vec {
	return r3.Add(f.Position, f.GlobalizeDirection(localPosition))
}

// SetUnitSideFromForwardAndUp derives side as the normalized cross product
// of forward and up. When forward and up are parallel the cross product
// vanishes; the previous side (made perpendicular to forward) is kept, and
// failing that any axis perpendicular to forward.
func (f *Frame) SetUnitSideFromForwardAndUp() {
	var side r3.Vec
	if f.Handedness == LeftHanded {
		side = r3.Cross(f.Up, f.Forward)
	} else {
		side = r3.Cross(f.Forward, f.Up)
	}
	side = geom.Normalize(side)
	if geom.IsZero(side) {
		side = geom.Normalize(geom.PerpendicularComponent(f.Side, geom.Normalize(f.Forward)))
	}
	if geom.IsZero(side) {
		side = anyPerpendicular(f.Forward)
	}
	f.Side = side
}

// RegenerateOrthonormalBasisUF sets a new forward, which must have unit
// length, then derives side from the new forward and old up, and up from the
// new side and forward.
func (f *Frame) RegenerateOrthonormalBasisUF(newUnitForward r3.Vec) {
	f.Forward = newUnitForward
	f.SetUnitSideFromForwardAndUp()
	if f.Handedness == LeftHanded {
		f.Up = r3.Cross(f.Forward, f.Side)
	} else {
		f.Up = r3.Cross(f.Side, f.Forward)
	}
	f.Up = geom.Normalize(f.Up)
}

// RegenerateOrthonormalBasis is RegenerateOrthonormalBasisUF for a forward
// of arbitrary length. A zero forward leaves the frame unchanged.
func (f *Frame) RegenerateOrthonormalBasis(newForward r3.Vec) {
	unit := geom.Normalize(newForward)
	if geom.IsZero(unit) {
		return
	}
	f.RegenerateOrthonormalBasisUF(unit)
}

// RegenerateOrthonormalBasisWithUp supplies both a new forward and an up
// hint. A zero forward leaves the frame unchanged; a zero up hint keeps the
// current up.
func (f *Frame) RegenerateOrthonormalBasisWithUp(newForward, newUp r3.Vec) {
	if geom.IsZero(geom.Normalize(newForward)) {
		return
	}
	if !geom.IsZero(newUp) {
		f.Up = newUp
	}
	f.RegenerateOrthonormalBasis(newForward)
}

// LocalRotateForwardToSide rotates a local vector 90 degrees about the up
// axis, taking +Z to the side axis.
func (f *Frame) LocalRotateForwardToSide(v r3.Vec) r3.Vec {
	x := v.Z
	if f.Handedness == RightHanded {
		x = -v.Z
	}
	return r3.Vec{X: x, Y: v.Y, Z: v.X}
}

// GlobalRotateForwardToSide is LocalRotateForwardToSide for a world vector.
func (f *Frame) GlobalRotateForwardToSide(globalForward r3.Vec) r3.Vec {
	local := f.LocalizeDirection(globalForward)
	return f.GlobalizeDirection(f.LocalRotateForwardToSide(local))
}

// IsOrthonormal reports whether all basis vectors have unit length and are
// pairwise orthogonal within eps.
func (f *Frame) IsOrthonormal(eps float64) bool {
	unit := func(v r3.Vec) bool { return math.Abs(r3.Norm(v)-1) <= eps }
	ortho := func(a, b r3.Vec) bool { return math.Abs(r3.Dot(a, b)) <= eps }
	return unit(f.Side) && unit(f.Up) && unit(f.Forward) &&
		ortho(f.Side, f.Up) && ortho(f.Side, f.Forward) && ortho(f.Up, f.Forward)
}

// anyPerpendicular returns a unit vector perpendicular to v, picking the
// world axis least aligned with it.
func anyPerpendicular(v r3.Vec) r3.Vec {
	axis := geom.UnitX
	ax, ay, az := math.Abs(v.X), math.Abs(v.Y), math.Abs(v.Z)
	if ay <= ax && ay <= az {
		axis = geom.UnitY
	} else if az <= ax && az <= ay {
		axis = geom.UnitZ
	}
	return geom.NormalizeOr(r3.Cross(v, axis), geom.UnitX)
}
