// Package contact implements the per-contact derived quantities and
// the two sequential resolvers (impulse transfer, position
// projection) that run over the world's contact registry each step.
package contact

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/mkocic/worb/body"
)

// restitutionGuard is the low-velocity restitution cutoff below which
// epsilon is clamped to zero, preventing jitter from bodies resting
// in near-zero relative velocity contact.
const restitutionGuard = 0.25

// Contact holds one detected interpenetration and the quantities
// derived from it each step.
type Contact struct {
	BodyA *body.RigidBody // never nil after UpdateDerived
	BodyB *body.RigidBody // nil iff contact with static scenery

	Position    mgl64.Vec3
	Normal      mgl64.Vec3 // unit, points from B toward A
	Penetration float64    // >= 0 while unresolved
	Restitution float64
	Friction    float64

	// Derived by UpdateDerived; consumed by the resolvers.
	Basis          mgl64.Mat3 // contact-to-world: col0=N, col1/2 tangents
	RA             mgl64.Vec3 // contact point minus A's center
	RB             mgl64.Vec3 // contact point minus B's center (zero if scenery)
	Vc             mgl64.Vec3 // contact-frame relative velocity, x=normal
	ForceVelNormal float64    // normal component of force-induced velocity this step
	DeltaVn        float64    // desired bouncing velocity
}

// New creates a contact from a detector's raw findings, swapping A/B
// so that A is always the body-owning side when only one of the pair
// owns a body.
func New(a, b *body.RigidBody, position, normal mgl64.Vec3, penetration, restitution, friction float64) Contact {
	c := Contact{
		BodyA:       a,
		BodyB:       b,
		Position:    position,
		Normal:      normal,
		Penetration: penetration,
		Restitution: restitution,
		Friction:    friction,
	}
	if c.BodyA == nil {
		c.BodyA, c.BodyB = c.BodyB, c.BodyA
		c.Normal = c.Normal.Mul(-1)
	}
	return c
}

// tangentBasis builds the orthonormal contact-to-world basis with N̂
// as its first column, picking the larger of N.x, N.y to avoid a
// near-degenerate cross product.
func tangentBasis(n mgl64.Vec3) mgl64.Mat3 {
	var uy, uz mgl64.Vec3
	if math.Abs(n.X()) > math.Abs(n.Y()) {
		invLen := 1.0 / math.Sqrt(n.X()*n.X()+n.Z()*n.Z())
		uy = mgl64.Vec3{n.Z() * invLen, 0, -n.X() * invLen}
		uz = uy.Cross(n).Normalize()
	} else {
		invLen := 1.0 / math.Sqrt(n.Y()*n.Y()+n.Z()*n.Z())
		uy = mgl64.Vec3{0, -n.Z() * invLen, n.Y() * invLen}
		uz = n.Cross(uy).Normalize()
	}
	return mgl64.Mat3{
		n.X(), n.Y(), n.Z(),
		uy.X(), uy.Y(), uy.Z(),
		uz.X(), uz.Y(), uz.Z(),
	}
}

// UpdateDerived recomputes every per-step derived quantity: the
// contact basis, relative positions, contact-frame velocity and the
// desired bouncing velocity Δv_n.
func (c *Contact) UpdateDerived(h float64) {
	if c.BodyA == nil {
		c.BodyA, c.BodyB = c.BodyB, c.BodyA
		c.Normal = c.Normal.Mul(-1)
	}

	c.Basis = tangentBasis(c.Normal)
	basisT := c.Basis.Transpose()

	c.RA = c.Position.Sub(c.BodyA.T.Position)
	relVel := c.BodyA.Velocity.Add(c.BodyA.AngularVelocity.Cross(c.RA))
	forceVel := c.BodyA.Force.Mul(c.BodyA.InverseMass * h)

	if c.BodyB != nil {
		c.RB = c.Position.Sub(c.BodyB.T.Position)
		pointVelB := c.BodyB.Velocity.Add(c.BodyB.AngularVelocity.Cross(c.RB))
		relVel = relVel.Sub(pointVelB)
		forceVel = forceVel.Sub(c.BodyB.Force.Mul(c.BodyB.InverseMass * h))
	} else {
		c.RB = mgl64.Vec3{}
	}

	contactVel := basisT.Mul3x1(relVel)
	contactForceVel := basisT.Mul3x1(forceVel)
	c.ForceVelNormal = contactForceVel.X()

	// Only the tangential part of the force-induced velocity is added
	// to Vc; the normal component is zeroed before adding.
	c.Vc = contactVel.Add(mgl64.Vec3{0, contactForceVel.Y(), contactForceVel.Z()})

	c.recomputeDeltaVn()
}

// recomputeDeltaVn recomputes Δv_n from the current Vc and
// ForceVelNormal, applying the low-velocity restitution guard.
func (c *Contact) recomputeDeltaVn() {
	eps := c.Restitution
	if math.Abs(c.Vc.X()-c.ForceVelNormal) < restitutionGuard {
		eps = 0
	}
	c.DeltaVn = -(1+eps)*c.Vc.X() + eps*c.ForceVelNormal
}

// applyVelocityJolt folds a linear/angular velocity jolt delivered to
// one of this contact's bodies (by an impulse resolved at another
// contact sharing that body) into Vc and Δv_n, without touching the
// geometry-derived parts of the contact.
func (c *Contact) applyVelocityJolt(b *body.RigidBody, linJolt, angJolt mgl64.Vec3) {
	var r mgl64.Vec3
	var sign float64
	switch b {
	case c.BodyA:
		r, sign = c.RA, 1
	case c.BodyB:
		r, sign = c.RB, -1
	default:
		return
	}
	delta := linJolt.Add(angJolt.Cross(r))
	contactDelta := c.Basis.Transpose().Mul3x1(delta).Mul(sign)
	c.Vc = c.Vc.Add(contactDelta)
	c.recomputeDeltaVn()
}

// IsScenery reports whether this contact is with static scenery
// (body_B is nil after normalization).
func (c *Contact) IsScenery() bool {
	return c.BodyB == nil
}

// effectiveInverseMass returns the scalar inverse effective mass of
// rb along world direction n at contact offset r:
// M⁻¹ + ((I_w⁻¹·(r×n))×r)·n. Returns 0 for a nil (scenery) body.
func effectiveInverseMass(rb *body.RigidBody, r, n mgl64.Vec3) float64 {
	if rb == nil {
		return 0
	}
	t := rb.InverseInertiaWorld.Mul3x1(r.Cross(n))
	return rb.InverseMass + t.Cross(r).Dot(n)
}
