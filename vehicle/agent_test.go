package vehicle

import (
	"math"
	"testing"

	"github.com/pthm-cable/steer/geom"
	"github.com/pthm-cable/steer/localspace"
)

func TestNewDefaults(t *testing.T) {
	a := New(localspace.RightHanded)
	if a.Mass != DefaultMass || a.Radius != DefaultRadius || a.MaxForce != DefaultMaxForce || a.MaxSpeed != DefaultMaxSpeed {
		t.Errorf("unexpected defaults: %+v", a)
	}
	if a.Speed != 0 {
		t.Errorf("expected zero speed, got %f", a.Speed)
	}
	if !a.IsOrthonormal(1e-12) {
		t.Error("expected orthonormal frame")
	}
}

func TestVelocityAndPrediction(t *testing.T) {
	a := New(localspace.RightHanded)
	a.Position = geom.V(1, 2, 3)
	a.Speed = 2

	v := a.Velocity()
	if v != geom.V(0, 0, 2) {
		t.Errorf("expected velocity (0,0,2), got %v", v)
	}

	p := a.PredictFuturePosition(1.5)
	if p != geom.V(1, 2, 6) {
		t.Errorf("expected (1,2,6), got %v", p)
	}
}

func TestSetVelocity(t *testing.T) {
	a := New(localspace.RightHanded)
	a.SetVelocity(geom.V(3, 0, 4))

	if math.Abs(a.Speed-5) > 1e-12 {
		t.Errorf("expected speed 5, got %f", a.Speed)
	}
	if math.Abs(a.Forward.X-0.6) > 1e-12 || math.Abs(a.Forward.Z-0.8) > 1e-12 {
		t.Errorf("expected forward (0.6,0,0.8), got %v", a.Forward)
	}

	heading := a.Forward
	a.SetVelocity(geom.Zero)
	if a.Speed != 0 || a.Forward != heading {
		t.Errorf("zero velocity should stop without turning: speed=%f forward=%v", a.Speed, a.Forward)
	}
}

func TestResetRestoresState(t *testing.T) {
	a := New(localspace.LeftHanded)
	a.SetVelocity(geom.V(1, 1, 1))
	a.Position = geom.V(5, 5, 5)
	a.Radius = 3

	a.Reset()
	if a.Position != geom.Zero || a.Forward != geom.UnitZ || a.Radius != DefaultRadius {
		t.Errorf("reset did not restore state: %+v", a)
	}
	if a.Handedness != localspace.LeftHanded {
		t.Error("reset should keep handedness")
	}
}
