package body

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

func TestSetMassThresholds(t *testing.T) {
	tests := []struct {
		name string
		mass float64
		want float64
	}{
		{"zero mass is immovable", 0, 0},
		{"negative mass is immovable", -1, 0},
		{"at infinite threshold is immovable", InfiniteMass, 0},
		{"above infinite threshold is immovable", InfiniteMass * 10, 0},
		{"finite mass", 2.0, 0.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rb := &RigidBody{}
			rb.SetMass(tt.mass)
			if !floatEqual(rb.InverseMass, tt.want, 1e-12) {
				t.Errorf("SetMass(%v).InverseMass = %v, want %v", tt.mass, rb.InverseMass, tt.want)
			}
		})
	}
}

func TestSetInertiaBodySingularYieldsZeroInverse(t *testing.T) {
	rb := &RigidBody{}
	rb.SetInertiaBody(mgl64.Mat3{}) // singular (determinant 0)
	if rb.InertiaBodyInv != (mgl64.Mat3{}) {
		t.Errorf("SetInertiaBody(singular).InertiaBodyInv = %v, want zero matrix", rb.InertiaBodyInv)
	}
}

func TestIntegrateSkipsImmovableAndInactiveBodies(t *testing.T) {
	immovable := NewRigidBody(Identity(), mgl64.Vec3{}, mgl64.Vec3{}, 0, mgl64.Mat3{1, 0, 0, 0, 1, 0, 0, 0, 1})
	immovable.Force = mgl64.Vec3{0, -10, 0}
	immovable.Integrate(0.1)
	if immovable.T.Position != (mgl64.Vec3{}) {
		t.Errorf("immovable body moved: %v", immovable.T.Position)
	}

	inactive := NewRigidBody(Identity(), mgl64.Vec3{1, 0, 0}, mgl64.Vec3{}, 1, mgl64.Mat3{1, 0, 0, 0, 1, 0, 0, 0, 1})
	inactive.Active = false
	inactive.Integrate(0.1)
	if inactive.T.Position != (mgl64.Vec3{}) {
		t.Errorf("inactive body moved: %v", inactive.T.Position)
	}
}

func TestIntegrateFreeFallMatchesKinematics(t *testing.T) {
	rb := NewRigidBody(Identity(), mgl64.Vec3{}, mgl64.Vec3{}, 1, mgl64.Mat3{1, 0, 0, 0, 1, 0, 0, 0, 1})
	rb.CanDeactivate = false

	gravity := mgl64.Vec3{0, -9.81, 0}
	h := 0.01
	for i := 0; i < 100; i++ {
		rb.AddExternalForce(gravity.Mul(rb.Mass()))
		rb.Integrate(h)
		rb.ClearAccumulators()
	}

	wantY := 0 - 0.5*9.81*1.0*1.0
	if !floatEqual(rb.T.Position.Y(), wantY, 0.05) {
		t.Errorf("after 100 steps of free fall Y = %v, want ~%v", rb.T.Position.Y(), wantY)
	}
}

func TestIntegrateKeepsOrientationUnitNorm(t *testing.T) {
	rb := NewRigidBody(Identity(), mgl64.Vec3{}, mgl64.Vec3{1, 2, 3}, 1, mgl64.Mat3{1, 0, 0, 0, 1, 0, 0, 0, 1})
	for i := 0; i < 50; i++ {
		rb.Integrate(0.01)
	}
	n := rb.T.Rotation.Dot(rb.T.Rotation)
	if !floatEqual(math.Sqrt(n), 1.0, 1e-9) {
		t.Errorf("|Q| = %v, want 1", math.Sqrt(n))
	}
}

func TestDeactivateZeroesMotionState(t *testing.T) {
	rb := NewRigidBody(Identity(), mgl64.Vec3{1, 2, 3}, mgl64.Vec3{1, 1, 1}, 1, mgl64.Mat3{1, 0, 0, 0, 1, 0, 0, 0, 1})
	rb.Deactivate()
	if rb.Active {
		t.Error("Deactivate() left Active true")
	}
	if rb.Momentum != (mgl64.Vec3{}) || rb.AngularMomentum != (mgl64.Vec3{}) {
		t.Errorf("Deactivate() left nonzero momenta: P=%v L=%v", rb.Momentum, rb.AngularMomentum)
	}
	if rb.Velocity != (mgl64.Vec3{}) || rb.AngularVelocity != (mgl64.Vec3{}) {
		t.Errorf("Deactivate() left nonzero velocities: V=%v Omega=%v", rb.Velocity, rb.AngularVelocity)
	}
}

func TestDeactivatedBodyStaysPutAcrossSteps(t *testing.T) {
	rb := NewRigidBody(Identity(), mgl64.Vec3{}, mgl64.Vec3{}, 1, mgl64.Mat3{1, 0, 0, 0, 1, 0, 0, 0, 1})
	rb.Deactivate()
	before := rb.T.Position
	beforeQ := rb.T.Rotation
	for i := 0; i < 10; i++ {
		rb.Integrate(0.01)
	}
	if rb.T.Position != before || rb.T.Rotation != beforeQ {
		t.Errorf("deactivated body moved: pos %v->%v rot %v->%v", before, rb.T.Position, beforeQ, rb.T.Rotation)
	}
}

func TestAddForceActivatesBody(t *testing.T) {
	rb := NewRigidBody(Identity(), mgl64.Vec3{}, mgl64.Vec3{}, 1, mgl64.Mat3{1, 0, 0, 0, 1, 0, 0, 0, 1})
	rb.Deactivate()
	rb.AddForce(mgl64.Vec3{1, 0, 0})
	if !rb.Active {
		t.Error("AddForce() did not activate the body")
	}
}

func TestAddExternalForceDoesNotActivate(t *testing.T) {
	rb := NewRigidBody(Identity(), mgl64.Vec3{}, mgl64.Vec3{}, 1, mgl64.Mat3{1, 0, 0, 0, 1, 0, 0, 0, 1})
	rb.Deactivate()
	rb.AddExternalForce(mgl64.Vec3{0, -9.81, 0})
	if rb.Active {
		t.Error("AddExternalForce() activated the body")
	}
}

func TestAddForceAtPointAccumulatesTorque(t *testing.T) {
	rb := NewRigidBody(Identity(), mgl64.Vec3{}, mgl64.Vec3{}, 1, mgl64.Mat3{1, 0, 0, 0, 1, 0, 0, 0, 1})
	rb.AddForceAtPoint(mgl64.Vec3{0, 0, 1}, mgl64.Vec3{1, 0, 0})
	want := mgl64.Vec3{1, 0, 0}.Cross(mgl64.Vec3{0, 0, 1})
	if !vec3Equal(rb.Torque, want, 1e-12) {
		t.Errorf("Torque = %v, want %v", rb.Torque, want)
	}
}
