package worb

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/mkocic/worb/body"
)

// TestFreeFall is scenario S1.
func TestFreeFall(t *testing.T) {
	w := NewWorld(8, 32)
	w.SetGravity(mgl64.Vec3{0, -9.81, 0})
	rb := w.AddSphere(1, 1, body.Shoemake(mgl64.QuatIdent(), mgl64.Vec3{0, 10, 0}), mgl64.Vec3{}, mgl64.Vec3{})
	w.Initialize()

	for i := 0; i < 100; i++ {
		w.Step(0.01)
	}

	want := 10 - 0.5*9.81*1*1
	if !floatEqual(rb.T.Position.Y(), want, 0.01) {
		t.Errorf("X.y after 100 steps = %v, want ~%v", rb.T.Position.Y(), want)
	}
}

// TestGroundBounce is scenario S2.
func TestGroundBounce(t *testing.T) {
	w := NewWorld(8, 32)
	w.SetGravity(mgl64.Vec3{0, -9.81, 0})
	w.SetRestitution(1)
	w.SetFriction(0)
	rb := w.AddSphere(1, 1, body.Shoemake(mgl64.QuatIdent(), mgl64.Vec3{0, 10, 0}), mgl64.Vec3{}, mgl64.Vec3{})
	w.AddHalfSpace(mgl64.Vec3{0, 1, 0}, 0)
	w.Initialize()

	maxHeightAfterBounce := 0.0
	bounced := false
	prevVy := rb.Velocity.Y()
	for i := 0; i < 200; i++ {
		w.Step(0.01)
		if !bounced && prevVy < 0 && rb.Velocity.Y() > 0 {
			bounced = true
		}
		if bounced && rb.T.Position.Y() > maxHeightAfterBounce {
			maxHeightAfterBounce = rb.T.Position.Y()
		}
		prevVy = rb.Velocity.Y()

		for i := 0; i < w.ContactCount(); i++ {
			c, _ := w.Contact(i)
			if c.Penetration > 0.01 {
				t.Errorf("step %d: contact penetration %v exceeds tolerance", w.StepCount, c.Penetration)
			}
		}
	}

	if !bounced {
		t.Fatal("sphere never rebounded off the ground")
	}
	if maxHeightAfterBounce < 9.9 {
		t.Errorf("max height after rebound = %v, want >= 9.9", maxHeightAfterBounce)
	}
}

// TestRestingStack is scenario S4: both cubes settle and go inactive.
func TestRestingStack(t *testing.T) {
	w := NewWorld(8, 64)
	w.SetGravity(mgl64.Vec3{0, -9.81, 0})
	w.SetRestitution(0)
	w.SetFriction(0.5)
	half := mgl64.Vec3{0.5, 0.5, 0.5}
	lower := w.AddCuboid(half, 1, body.Shoemake(mgl64.QuatIdent(), mgl64.Vec3{0, 0.5, 0}), mgl64.Vec3{}, mgl64.Vec3{})
	upper := w.AddCuboid(half, 1, body.Shoemake(mgl64.QuatIdent(), mgl64.Vec3{0, 1.5, 0}), mgl64.Vec3{}, mgl64.Vec3{})
	w.AddHalfSpace(mgl64.Vec3{0, 1, 0}, 0)
	w.Initialize()

	for i := 0; i < 500; i++ {
		w.Step(0.01)
	}

	if lower.Active {
		t.Error("lower cube still active after settling")
	}
	if upper.Active {
		t.Error("upper cube still active after settling")
	}
	if lower.Velocity.Len() > 1e-3 {
		t.Errorf("lower cube |V| = %v, want < 1e-3", lower.Velocity.Len())
	}
	if upper.Velocity.Len() > 1e-3 {
		t.Errorf("upper cube |V| = %v, want < 1e-3", upper.Velocity.Len())
	}
}

// TestOrientationStaysUnitNorm is spec.md §8 invariant #1.
func TestOrientationStaysUnitNorm(t *testing.T) {
	w := NewWorld(4, 16)
	w.SetGravity(mgl64.Vec3{0, -9.81, 0})
	rb := w.AddCuboid(mgl64.Vec3{0.5, 0.5, 0.5}, 1, body.Identity(), mgl64.Vec3{}, mgl64.Vec3{1, 2, 3})
	w.Initialize()

	for i := 0; i < 50; i++ {
		w.Step(0.01)
		n := rb.T.Rotation.Dot(rb.T.Rotation)
		if !floatEqual(n, 1, 1e-9) {
			t.Fatalf("step %d: |Q|^2 = %v, want 1", i, n)
		}
	}
}

// TestEnergyAndMomentumConservedWithoutGravityOrContacts is spec.md
// §8 invariant #2.
func TestEnergyAndMomentumConservedWithoutGravityOrContacts(t *testing.T) {
	w := NewWorld(4, 16)
	rb := w.AddSphere(1, 2, body.Shoemake(mgl64.QuatIdent(), mgl64.Vec3{0, 0, 0}), mgl64.Vec3{3, 0, 0}, mgl64.Vec3{0, 1, 0})
	w.Initialize()

	initialKE := rb.KineticEnergy
	initialP := rb.Momentum.Len()
	initialL := rb.TotalAngularMomentum.Len()

	for i := 0; i < 100; i++ {
		w.Step(0.001)
	}

	if !floatEqual(rb.KineticEnergy, initialKE, 0.05*initialKE+1e-9) {
		t.Errorf("KE drifted from %v to %v", initialKE, rb.KineticEnergy)
	}
	if !floatEqual(rb.Momentum.Len(), initialP, 0.05*initialP+1e-9) {
		t.Errorf("|P| drifted from %v to %v", initialP, rb.Momentum.Len())
	}
	if !floatEqual(rb.TotalAngularMomentum.Len(), initialL, 0.05*initialL+1e-9) {
		t.Errorf("|L| drifted from %v to %v", initialL, rb.TotalAngularMomentum.Len())
	}
}

// TestDeactivatedBodyIsIdempotentAcrossSteps is spec.md §8 invariant #5.
func TestDeactivatedBodyIsIdempotentAcrossSteps(t *testing.T) {
	w := NewWorld(4, 16)
	rb := w.AddSphere(1, 1, body.Shoemake(mgl64.QuatIdent(), mgl64.Vec3{0, 5, 0}), mgl64.Vec3{}, mgl64.Vec3{})
	rb.Deactivate()
	w.Initialize()

	before := rb.T.Position
	beforeQ := rb.T.Rotation
	for i := 0; i < 20; i++ {
		w.Step(0.01)
	}
	if rb.T.Position != before {
		t.Errorf("Position changed from %v to %v across steps while deactivated", before, rb.T.Position)
	}
	if rb.T.Rotation != beforeQ {
		t.Errorf("Rotation changed from %v to %v across steps while deactivated", beforeQ, rb.T.Rotation)
	}
}

// TestContactRegistryNeverExceedsCapacity is spec.md §8 invariant #6.
func TestContactRegistryNeverExceedsCapacity(t *testing.T) {
	w := NewWorld(16, 2)
	w.SetGravity(mgl64.Vec3{0, -9.81, 0})
	for i := 0; i < 6; i++ {
		w.AddSphere(1, 1, body.Shoemake(mgl64.QuatIdent(), mgl64.Vec3{float64(i) * 1.5, 0.5, 0}), mgl64.Vec3{}, mgl64.Vec3{})
	}
	w.AddHalfSpace(mgl64.Vec3{0, 1, 0}, 0)
	w.Initialize()

	for i := 0; i < 50; i++ {
		w.Step(0.01)
		if w.ContactCount() > w.MaxCollisions {
			t.Fatalf("step %d: contact count %d exceeds capacity %d", i, w.ContactCount(), w.MaxCollisions)
		}
	}
}

func TestAddGeometryPastCapacityInvokesSeverSink(t *testing.T) {
	w := NewWorld(1, 8)
	var gotMsg string
	w.ReportSevere = func(id int, msg string) {
		gotMsg = msg
	}

	first := w.AddSphere(1, 1, body.Identity(), mgl64.Vec3{}, mgl64.Vec3{})
	if first == nil {
		t.Fatal("first AddSphere within capacity returned nil")
	}
	second := w.AddSphere(1, 1, body.Identity(), mgl64.Vec3{}, mgl64.Vec3{})
	if second != nil {
		t.Fatal("AddSphere past capacity returned a non-nil body")
	}
	if gotMsg == "" {
		t.Error("ReportSevere was not invoked on capacity overflow")
	}
}

func TestContactPastCountInvokesSevereSink(t *testing.T) {
	w := NewWorld(4, 4)
	var invoked bool
	w.ReportSevere = func(id int, msg string) { invoked = true }
	w.Initialize()

	if _, ok := w.Contact(0); ok {
		t.Error("Contact(0) on an empty registry returned ok=true")
	}
	if !invoked {
		t.Error("ReportSevere was not invoked for an out-of-range contact index")
	}
}
