package body

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Damping rate defaults from spec.md §4.1: kappa_lin=0 (a sentinel
// meaning "leave the linear component untouched"), kappa_ang=0.998.
const (
	DefaultLinearDamping  = 0.0
	DefaultAngularDamping = 0.998

	// activationReseed is the fraction of mass used to re-seed the
	// average kinetic energy on activation, so a just-woken body is
	// not immediately re-deactivated.
	activationReseed = 0.6
	// deactivationThresholdFactor scales mass into the average
	// kinetic energy threshold below which a body may deactivate.
	deactivationThresholdFactor = 0.3
	avgKEClampFactor            = 10.0
)

// RigidBody is the L1 state model: momentum-based state (position,
// orientation, linear and angular momentum), accumulated force and
// torque, and the derived quantities recomputed after every
// integration step.
type RigidBody struct {
	T Transform // world transform, consistent with (Q, X) after NormalizeAndRefresh

	InverseMass    float64    // M^-1; 0 denotes infinite mass / immovable
	InertiaBodyInv mgl64.Mat3 // I_b^-1, body frame

	Momentum        mgl64.Vec3 // P
	AngularMomentum mgl64.Vec3 // L

	Force  mgl64.Vec3 // F, accumulated
	Torque mgl64.Vec3 // tau, accumulated
	Energy float64    // U, accumulated potential energy

	// Derived, recomputed every integration step.
	InverseInertiaWorld  mgl64.Mat3 // I_w^-1 = T . I_b^-1 . T^T
	Velocity             mgl64.Vec3 // V = M^-1 . P
	AngularVelocity      mgl64.Vec3 // Omega = I_w^-1 . L
	TotalAngularMomentum mgl64.Vec3 // X x P + L
	KineticEnergy        float64    // 1/2 (V.P + Omega.L)
	avgKineticEnergy     float64    // low-pass filtered average of KineticEnergy

	LinearDamping  float64
	AngularDamping float64

	Active         bool
	CanDeactivate  bool
	DampingEnabled bool
}

// NewRigidBody creates a body with finite mass and initial state;
// derived quantities (momenta, world inertia) are computed from the
// given velocities, per spec.md §3's lifecycle description.
func NewRigidBody(transform Transform, velocity, angularVelocity mgl64.Vec3, mass float64, inertiaBody mgl64.Mat3) *RigidBody {
	rb := &RigidBody{
		T:              transform,
		LinearDamping:  DefaultLinearDamping,
		AngularDamping: DefaultAngularDamping,
		Active:         true,
		CanDeactivate:  true,
	}
	rb.T.NormalizeAndRefresh()
	rb.SetMass(mass)
	// Seed the average kinetic energy as on activation, so a new body is
	// not deactivated on its first step.
	rb.Activate()
	rb.SetInertiaBody(inertiaBody)
	rb.Momentum = velocity.Mul(invOrInf(rb.InverseMass))
	if rb.InverseMass == 0 {
		rb.Momentum = mgl64.Vec3{}
	}
	rb.InverseInertiaWorld = rb.T.Similarity(rb.InertiaBodyInv)
	rb.AngularMomentum = invMat3(rb.InverseInertiaWorld).Mul3x1(angularVelocity)
	rb.refreshDerived()
	return rb
}

// invOrInf returns 1/invMass, or +Inf if invMass is 0 (immovable).
func invOrInf(invMass float64) float64 {
	if invMass == 0 {
		return math.Inf(1)
	}
	return 1.0 / invMass
}

// invMat3 inverts a 3x3 matrix, returning the zero matrix for a
// singular input (determinant 0), per spec.md §7's misuse handling.
func invMat3(m mgl64.Mat3) mgl64.Mat3 {
	if math.Abs(m.Det()) < 1e-12 {
		return mgl64.Mat3{}
	}
	return m.Inv()
}

// Mass returns the body's mass, or +Inf when immovable (InverseMass == 0).
func (rb *RigidBody) Mass() float64 {
	return invOrInf(rb.InverseMass)
}

// SetMass sets the inverse mass from a mass scalar. mass <= 0 and
// mass >= body.InfiniteMass both collapse to InverseMass == 0 (an
// immovable body): the former because 1/mass is undefined at zero,
// the latter because 1/mass is already negligible at that scale. A NaN
// mass is treated the same way.
func (rb *RigidBody) SetMass(mass float64) {
	if IsNaN(mass) || mass <= 0 || mass >= InfiniteMass {
		rb.InverseMass = 0
		return
	}
	rb.InverseMass = 1.0 / mass
}

// SetInertiaBody sets the body-frame inertia tensor and its inverse.
// A singular tensor (determinant 0) yields a zero inverse, per
// spec.md §7.
func (rb *RigidBody) SetInertiaBody(inertia mgl64.Mat3) {
	rb.InertiaBodyInv = invMat3(inertia)
}

// RefreshDerived recomputes every quantity derived from (T, P, L):
// world inverse inertia, velocities, total angular momentum and
// kinetic energy. Exported so contact resolution can call it after
// mutating Momentum/AngularMomentum (impulse transfer) or T (position
// projection) directly.
func (rb *RigidBody) RefreshDerived() {
	rb.refreshDerived()
}

// refreshDerived recomputes every quantity derived from (T, P, L)
// without touching T itself — used after force/impulse application
// and at the end of Integrate.
func (rb *RigidBody) refreshDerived() {
	rb.InverseInertiaWorld = rb.T.Similarity(rb.InertiaBodyInv)
	rb.Velocity = rb.Momentum.Mul(rb.InverseMass)
	rb.AngularVelocity = rb.InverseInertiaWorld.Mul3x1(rb.AngularMomentum)
	rb.TotalAngularMomentum = rb.T.Position.Cross(rb.Momentum).Add(rb.AngularMomentum)
	rb.KineticEnergy = 0.5 * (rb.Velocity.Dot(rb.Momentum) + rb.AngularVelocity.Dot(rb.AngularMomentum))
}

// Integrate advances the body by h using semi-implicit (symplectic)
// Euler, per spec.md §4.1. Immovable (InverseMass == 0) and inactive
// bodies are left untouched.
func (rb *RigidBody) Integrate(h float64) {
	if rb.InverseMass == 0 || !rb.Active {
		return
	}

	// 1-2: integrate momenta from accumulated force/torque.
	rb.Momentum = rb.Momentum.Add(rb.Force.Mul(h))
	rb.AngularMomentum = rb.AngularMomentum.Add(rb.Torque.Mul(h))

	// 3: damping. kappa_lin == 0 is a sentinel meaning "untouched".
	if rb.DampingEnabled {
		if rb.LinearDamping != 0 {
			rb.Momentum = rb.Momentum.Mul(math.Pow(rb.LinearDamping, h))
		}
		rb.AngularMomentum = rb.AngularMomentum.Mul(math.Pow(rb.AngularDamping, h))
	}

	// 4: velocities from the (pre-update) world inertia.
	rb.Velocity = rb.Momentum.Mul(rb.InverseMass)
	rb.AngularVelocity = rb.InverseInertiaWorld.Mul3x1(rb.AngularMomentum)

	// 5: Qdot = 1/2 * Omega * Q (Hamilton product, Omega embedded as
	// a pure-imaginary quaternion).
	omegaQuat := SpatialVector(rb.AngularVelocity)
	qDot := omegaQuat.Mul(rb.T.Rotation).Scale(0.5)

	// 6-7: integrate position and orientation.
	rb.T.Position = rb.T.Position.Add(rb.Velocity.Mul(h))
	rb.T.Rotation = rb.T.Rotation.Add(qDot.Scale(h))

	// 8: normalize Q, rebuild T, recompute derived quantities.
	rb.T.NormalizeAndRefresh()
	rb.refreshDerived()

	// 9: activation bookkeeping.
	if rb.CanDeactivate {
		alpha := math.Pow(0.5, h)
		threshold := deactivationThresholdFactor * rb.Mass()
		rb.avgKineticEnergy = alpha*rb.avgKineticEnergy + (1-alpha)*rb.KineticEnergy
		if max := avgKEClampFactor * threshold; rb.avgKineticEnergy > max {
			rb.avgKineticEnergy = max
		}
		if rb.avgKineticEnergy < threshold {
			rb.Deactivate()
		}
	}
}

// Activate wakes the body and re-seeds its average kinetic energy so
// it is not immediately re-deactivated.
func (rb *RigidBody) Activate() {
	rb.Active = true
	rb.avgKineticEnergy = activationReseed * rb.Mass()
}

// Deactivate puts the body to sleep, zeroing its momenta, velocities,
// total angular momentum and kinetic energy, per spec.md §4.1.
func (rb *RigidBody) Deactivate() {
	rb.Active = false
	rb.Momentum = mgl64.Vec3{}
	rb.AngularMomentum = mgl64.Vec3{}
	rb.Velocity = mgl64.Vec3{}
	rb.AngularVelocity = mgl64.Vec3{}
	rb.Force = mgl64.Vec3{}
	rb.Torque = mgl64.Vec3{}
	rb.TotalAngularMomentum = mgl64.Vec3{}
	rb.KineticEnergy = 0
	rb.avgKineticEnergy = 0
}

// AddExternalForce accumulates a force (e.g. gravity) that does not
// wake an inactive body. It also accumulates the potential energy a
// constant force field implies over the step (U -= F . X), read back
// by the world's total-energy aggregate before accumulators are
// cleared at the end of the step.
func (rb *RigidBody) AddExternalForce(force mgl64.Vec3) {
	rb.Force = rb.Force.Add(force)
	rb.Energy -= force.Dot(rb.T.Position)
}

// AddForce accumulates a force at the center of mass and activates
// the body.
func (rb *RigidBody) AddForce(force mgl64.Vec3) {
	if rb.InverseMass == 0 {
		return
	}
	rb.Activate()
	rb.Force = rb.Force.Add(force)
	rb.Energy -= force.Dot(rb.T.Position)
}

// AddForceAtPoint accumulates a force applied at world point p,
// contributing (p - X) x F to the accumulated torque, and activates
// the body.
func (rb *RigidBody) AddForceAtPoint(force mgl64.Vec3, p mgl64.Vec3) {
	if rb.InverseMass == 0 {
		return
	}
	rb.Activate()
	rb.Force = rb.Force.Add(force)
	rb.Torque = rb.Torque.Add(p.Sub(rb.T.Position).Cross(force))
}

// AddForceAtBodyPoint is AddForceAtPoint with the point given in body
// (local) space; it is first mapped to world space through T.
func (rb *RigidBody) AddForceAtBodyPoint(force mgl64.Vec3, bodyPoint mgl64.Vec3) {
	rb.AddForceAtPoint(force, rb.T.Apply(bodyPoint))
}

// SetState overwrites position, orientation, linear and angular
// velocity directly (spec.md §6's "set initial (X, Q, V, Omega)" body
// mutator), re-deriving momenta and every quantity that depends on
// them.
func (rb *RigidBody) SetState(position mgl64.Vec3, rotation mgl64.Quat, velocity, angularVelocity mgl64.Vec3) {
	rb.T.Position = position
	rb.T.Rotation = rotation
	rb.T.NormalizeAndRefresh()
	rb.Momentum = velocity.Mul(invOrInf(rb.InverseMass))
	if rb.InverseMass == 0 {
		rb.Momentum = mgl64.Vec3{}
	}
	rb.InverseInertiaWorld = rb.T.Similarity(rb.InertiaBodyInv)
	rb.AngularMomentum = invMat3(rb.InverseInertiaWorld).Mul3x1(angularVelocity)
	rb.refreshDerived()
}

// ClearAccumulators resets force, torque and accumulated potential
// energy to zero; called by the world at the end of every step.
func (rb *RigidBody) ClearAccumulators() {
	rb.Force = mgl64.Vec3{}
	rb.Torque = mgl64.Vec3{}
	rb.Energy = 0
}
