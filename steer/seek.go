package steer

import (
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/steer/geom"
	"github.com/pthm-cable/steer/vehicle"
)

// Seek steers toward target: desired velocity is the offset to the target.
func (l *Library) Seek(a *vehicle.Agent, target r3.Vec) r3.Vec {
	desired := r3.Sub(target, a.Position)
	return r3.Sub(desired, a.Velocity())
}

// Flee steers away from target.
func (l *Library) Flee(a *vehicle.Agent, target r3.Vec) r3.Vec {
	desired := r3.Sub(a.Position, target)
	return r3.Sub(desired, a.Velocity())
}

// Seek2 is the bounded-speed form of Seek: the desired velocity points at
// the target at MaxSpeed.
func (l *Library) Seek2(a *vehicle.Agent, target r3.Vec) r3.Vec {
	desired := r3.Scale(a.MaxSpeed, geom.Normalize(r3.Sub(target, a.Position)))
	return r3.Sub(desired, a.Velocity())
}

// Flee2 is the bounded-speed form of Flee.
func (l *Library) Flee2(a *vehicle.Agent, target r3.Vec) r3.Vec {
	desired := r3.Scale(a.MaxSpeed, geom.Normalize(r3.Sub(a.Position, target)))
	return r3.Sub(desired, a.Velocity())
}

// TargetSpeed steers along the forward axis toward targetSpeed, with the
// correction clipped to MaxForce.
func (l *Library) TargetSpeed(a *vehicle.Agent, targetSpeed float64) r3.Vec {
	mf := a.MaxForce
	return r3.Scale(geom.Clip(targetSpeed-a.Speed, -mf, mf), a.Forward)
}

// forwardness is the cosine between the agent's heading and the direction
// to target; zero when target is at the agent's position.
func forwardness(a *vehicle.Agent, target r3.Vec) float64 {
	return r3.Dot(a.Forward, geom.Normalize(r3.Sub(target, a.Position)))
}

// IsAhead reports whether target lies within 45° of the agent's heading.
func IsAhead(a *vehicle.Agent, target r3.Vec) bool {
	return IsAheadCos(a, target, CosHalfRightAngle)
}

// IsAside reports whether target lies between 45° and 135° off the heading.
func IsAside(a *vehicle.Agent, target r3.Vec) bool {
	return IsAsideCos(a, target, CosHalfRightAngle)
}

// IsBehind reports whether target lies more than 135° off the heading.
func IsBehind(a *vehicle.Agent, target r3.Vec) bool {
	return IsBehindCos(a, target, -CosHalfRightAngle)
}

// IsAheadCos reports whether the cosine to target exceeds cosThreshold.
func IsAheadCos(a *vehicle.Agent, target r3.Vec, cosThreshold float64) bool {
	return forwardness(a, target) > cosThreshold
}

// IsAsideCos reports whether the cosine to target is strictly between
// -cosThreshold and cosThreshold.
func IsAsideCos(a *vehicle.Agent, target r3.Vec, cosThreshold float64) bool {
	dp := forwardness(a, target)
	return dp < cosThreshold && dp > -cosThreshold
}

// IsBehindCos reports whether the cosine to target is below cosThreshold.
func IsBehindCos(a *vehicle.Agent, target r3.Vec, cosThreshold float64) bool {
	return forwardness(a, target) < cosThreshold
}
