package contact

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/mkocic/worb/body"
)

// angularProjectionClamp bounds the angular correction at each
// projection step, expressed as a fraction of the lever arm
// perpendicular to the contact normal, to prevent large spurious
// rotations from a single deep-penetration contact.
const angularProjectionClamp = 0.3

// angularK returns the angular-only term of the effective inverse
// mass along world direction n at contact offset r:
// ((I_w⁻¹·(r×n))×r)·n. Returns 0 for a nil (scenery) body.
func angularK(rb *body.RigidBody, r, n mgl64.Vec3) float64 {
	if rb == nil {
		return 0
	}
	t := rb.InverseInertiaWorld.Mul3x1(r.Cross(n))
	return t.Cross(r).Dot(n)
}

// Project runs the sequential, largest-penetration-first position
// projection over contacts, up to 8*len(contacts) iterations or until
// no contact's penetration exceeds eps. relaxation in (0,1] scales
// down each correction to damp oscillation across iterations.
func Project(contacts []*Contact, eps, relaxation float64) {
	maxIterations := 8 * len(contacts)
	for iter := 0; iter < maxIterations; iter++ {
		idx := -1
		best := eps
		for i, c := range contacts {
			if c.Penetration > best {
				best = c.Penetration
				idx = i
			}
		}
		if idx == -1 {
			return
		}
		projectOne(contacts, idx, relaxation)
	}
}

func projectOne(contacts []*Contact, idx int, relaxation float64) {
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
	kA := angularK(a, c.RA, n)
	kB := angularK(b, c.RB, n)
	mt := a.InverseMass + kA
	if b != nil {
		mt += b.InverseMass + kB
	}
	if mt < 1e-12 {
		return
	}

	factor := 1.0
	if relaxation > 0 && relaxation <= 1 {
		factor = 1 - relaxation
	}
	penetration := c.Penetration * factor

	// A moves away from B along +N̂; B moves away from A along -N̂,
	// each proportional to its share of the total inverse mass.
	linJoltA, angJoltA := projectBody(a, n, c.RA, kA, penetration, mt)
	var linJoltB, angJoltB mgl64.Vec3
	if b != nil {
		linJoltB, angJoltB = projectBody(b, n, c.RB, kB, -penetration, mt)
	}

	for _, other := range contacts {
		other.applyPenetrationJolt(a, linJoltA, angJoltA)
		if b != nil {
			other.applyPenetrationJolt(b, linJoltB, angJoltB)
		}
	}
}

// projectBody applies one body's share of a position-projection
// correction (signedPenetration carries the separating direction) and
// returns the linear/angular world-space jolts for propagation to
// other contacts sharing this body.
func projectBody(rb *body.RigidBody, n, r mgl64.Vec3, k, signedPenetration, mt float64) (mgl64.Vec3, mgl64.Vec3) {
	deltaX := signedPenetration * rb.InverseMass / mt
	deltaQ := signedPenetration * k / mt

	perp := r.Sub(n.Mul(r.Dot(n)))
	clamp := angularProjectionClamp * perp.Len()
	if deltaQ > clamp {
		deltaX += deltaQ - clamp
		deltaQ = clamp
	} else if deltaQ < -clamp {
		deltaX += deltaQ + clamp
		deltaQ = -clamp
	}

	linJolt := n.Mul(deltaX)
	rb.T.Position = rb.T.Position.Add(linJolt)

	var angJolt mgl64.Vec3
	if math.Abs(k) > 1e-12 && deltaQ != 0 {
		angJolt = rb.InverseInertiaWorld.Mul3x1(r.Cross(n)).Mul(deltaQ / k)
		spin := body.SpatialVector(angJolt).Mul(rb.T.Rotation).Scale(0.5)
		rb.T.Rotation = rb.T.Rotation.Add(spin)
	}

	rb.T.NormalizeAndRefresh()
	rb.RefreshDerived()

	return linJolt, angJolt
}

// applyPenetrationJolt adjusts this contact's penetration by the
// projected displacement (X̂+Ω̂×r)·N̂ of a body it shares with the
// contact that was just resolved, with sign matching which side (A or
// B) of this contact the body is on.
func (c *Contact) applyPenetrationJolt(b *body.RigidBody, linJolt, angJolt mgl64.Vec3) {
	var r mgl64.Vec3
	var sign float64
	switch b {
	case c.BodyA:
		r, sign = c.RA, -1
	case c.BodyB:
		r, sign = c.RB, 1
	default:
		return
	}
	displacement := linJolt.Add(angJolt.Cross(r)).Dot(c.Normal)
	c.Penetration += sign * displacement
}
