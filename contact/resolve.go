package contact

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/mkocic/worb/body"
)

// DefaultEps is the default closing-velocity / penetration threshold
// below which a contact is considered resolved.
const DefaultEps = 0.01

func addMat3(a, b mgl64.Mat3) mgl64.Mat3 {
	var r mgl64.Mat3
	for i := range r {
		r[i] = a[i] + b[i]
	}
	return r
}

func subMat3(a, b mgl64.Mat3) mgl64.Mat3 {
	var r mgl64.Mat3
	for i := range r {
		r[i] = a[i] - b[i]
	}
	return r
}

func scaledIdentity3(s float64) mgl64.Mat3 {
	return mgl64.Mat3{s, 0, 0, 0, s, 0, 0, 0, s}
}

// Resolve runs the sequential, largest-closing-velocity-first impulse
// transfer over contacts, up to 8*len(contacts) iterations or until no
// contact's Δv_n exceeds eps.
func Resolve(contacts []*Contact, eps float64) {
	maxIterations := 8 * len(contacts)
	for iter := 0; iter < maxIterations; iter++ {
		idx := -1
		best := eps
		for i, c := range contacts {
			if c.DeltaVn > best {
				best = c.DeltaVn
				idx = i
			}
		}
		if idx == -1 {
			return
		}
		resolveOne(contacts, idx)
	}
}

func resolveOne(contacts []*Contact, idx int) {
	c := contacts[idx]
	a, b := c.BodyA, c.BodyB

	if b != nil && a.Active != b.Active {
		if a.Active {
			b.Activate()
		} else {
			a.Activate()
		}
	}

	n := c.Normal
	mrInv := effectiveInverseMass(a, c.RA, n) + effectiveInverseMass(b, c.RB, n)

	var jContact mgl64.Vec3
	switch {
	case c.Friction == 0:
		jContact = frictionlessImpulse(c, mrInv)
	default:
		jContact = frictionImpulse(c, a, b, mrInv)
	}

	applyImpulse(contacts, idx, jContact)
}

func frictionlessImpulse(c *Contact, mrInv float64) mgl64.Vec3 {
	if mrInv < 1e-12 {
		return mgl64.Vec3{}
	}
	return mgl64.Vec3{c.DeltaVn / mrInv, 0, 0}
}

func frictionImpulse(c *Contact, a, b *body.RigidBody, mrInv float64) mgl64.Vec3 {
	var angular mgl64.Mat3
	if a != nil {
		skewA := body.Skew(c.RA)
		angular = subMat3(angular, skewA.Mul3(a.InverseInertiaWorld).Mul3(skewA))
	}
	if b != nil {
		skewB := body.Skew(c.RB)
		angular = subMat3(angular, skewB.Mul3(b.InverseInertiaWorld).Mul3(skewB))
	}
	k := addMat3(scaledIdentity3(mrInv), c.Basis.Transpose().Mul3(angular).Mul3(c.Basis))

	target := mgl64.Vec3{c.DeltaVn, -c.Vc.Y(), -c.Vc.Z()}

	var j mgl64.Vec3
	if math.Abs(k.Det()) < 1e-12 {
		j = frictionlessImpulse(c, mrInv)
	} else {
		j = k.Inv().Mul3x1(target)
	}

	tangentMag := math.Hypot(j.Y(), j.Z())
	if tangentMag > c.Friction*j.X() {
		var tHatY, tHatZ float64
		if tangentMag > 1e-12 {
			tHatY, tHatZ = j.Y()/tangentMag, j.Z()/tangentMag
		}
		dirContact := mgl64.Vec3{1, c.Friction * tHatY, c.Friction * tHatZ}
		dirWorld := c.Basis.Mul3x1(dirContact)
		mdInv := effectiveInverseMass(a, c.RA, dirWorld) + effectiveInverseMass(b, c.RB, dirWorld)
		var jx float64
		if mdInv > 1e-12 {
			jx = c.DeltaVn / mdInv
		}
		j = mgl64.Vec3{jx, c.Friction * jx * tHatY, c.Friction * jx * tHatZ}
	}
	return j
}

// applyImpulse rotates the resolved contact-frame impulse into world
// frame, updates both bodies' momenta, and propagates the resulting
// velocity jolt to every contact (including this one) sharing either
// body.
func applyImpulse(contacts []*Contact, idx int, jContact mgl64.Vec3) {
	c := contacts[idx]
	a, b := c.BodyA, c.BodyB

	J := c.Basis.Mul3x1(jContact)
	torqueA := c.RA.Cross(J)

	a.Momentum = a.Momentum.Add(J)
	a.AngularMomentum = a.AngularMomentum.Add(torqueA)
	linJoltA := J.Mul(a.InverseMass)
	angJoltA := a.InverseInertiaWorld.Mul3x1(torqueA)
	a.RefreshDerived()

	var linJoltB, angJoltB mgl64.Vec3
	if b != nil {
		torqueB := c.RB.Cross(J.Mul(-1))
		b.Momentum = b.Momentum.Sub(J)
		b.AngularMomentum = b.AngularMomentum.Add(torqueB)
		linJoltB = J.Mul(-b.InverseMass)
		angJoltB = b.InverseInertiaWorld.Mul3x1(torqueB)
		b.RefreshDerived()
	}

	for _, other := range contacts {
		other.applyVelocityJolt(a, linJoltA, angJoltA)
		if b != nil {
			other.applyVelocityJolt(b, linJoltB, angJoltB)
		}
	}
}
