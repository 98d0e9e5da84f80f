package worb

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/mkocic/worb/body"
)

// crossAxisEpsilon is the squared-norm threshold below which a SAT
// candidate axis is treated as degenerate (nearly parallel source
// axes) and skipped.
const crossAxisEpsilon = 1e-4

// parallelFaceEpsilon is the threshold below which a cuboid axis is
// considered parallel to a half-space normal.
const parallelFaceEpsilon = 1e-4

type rawContact struct {
	Position    mgl64.Vec3
	Normal      mgl64.Vec3
	Penetration float64
}

func clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}

func signOrPositive(x float64) float64 {
	if x < 0 {
		return -1
	}
	return 1
}

// toLocal projects a world point into a geometry's own axis-aligned
// frame (origin at g.Position(), basis g.Axis(0..2)).
func toLocal(g *body.Geometry, p mgl64.Vec3) mgl64.Vec3 {
	d := p.Sub(g.Position())
	return mgl64.Vec3{d.Dot(g.Axis(0)), d.Dot(g.Axis(1)), d.Dot(g.Axis(2))}
}

func toWorld(g *body.Geometry, local mgl64.Vec3) mgl64.Vec3 {
	return g.Position().
		Add(g.Axis(0).Mul(local.X())).
		Add(g.Axis(1).Mul(local.Y())).
		Add(g.Axis(2).Mul(local.Z()))
}

// detectPair dispatches on the unordered pair of geometry kinds and
// returns the raw contacts found, in the flat exhaustive table from
// the geometry model (pairs not listed are no-ops).
func detectPair(a, b *body.Geometry) []rawContact {
	switch {
	case a.Kind == body.Sphere && b.Kind == body.Sphere:
		return sphereSphere(a, b)
	case a.Kind == body.Cuboid && b.Kind == body.Cuboid:
		return cuboidCuboid(a, b)
	case a.Kind == body.Sphere && b.Kind == body.Cuboid:
		return flipped(cuboidSphere(b, a))
	case a.Kind == body.Cuboid && b.Kind == body.Sphere:
		return cuboidSphere(a, b)
	case a.Kind == body.Sphere && b.Kind == body.HalfSpace:
		return sphereHalfSpace(a, b)
	case a.Kind == body.HalfSpace && b.Kind == body.Sphere:
		return flipped(sphereHalfSpace(b, a))
	case a.Kind == body.Sphere && b.Kind == body.TruePlane:
		return sphereTruePlane(a, b)
	case a.Kind == body.TruePlane && b.Kind == body.Sphere:
		return flipped(sphereTruePlane(b, a))
	case a.Kind == body.Cuboid && b.Kind == body.HalfSpace:
		return cuboidHalfSpace(a, b)
	case a.Kind == body.HalfSpace && b.Kind == body.Cuboid:
		return flipped(cuboidHalfSpace(b, a))
	default:
		return nil
	}
}

func flipped(contacts []rawContact) []rawContact {
	for i := range contacts {
		contacts[i].Normal = contacts[i].Normal.Mul(-1)
	}
	return contacts
}

// sphereHalfSpace implements §4.2.1.
func sphereHalfSpace(sphere, half *body.Geometry) []rawContact {
	d := half.Normal.Dot(sphere.Position()) - sphere.Radius - half.Offset
	if d >= 0 {
		return nil
	}
	pos := sphere.Position().Sub(half.Normal.Mul(d + sphere.Radius))
	return []rawContact{{Position: pos, Normal: half.Normal, Penetration: -d}}
}

// sphereTruePlane implements §4.2.2.
func sphereTruePlane(sphere, plane *body.Geometry) []rawContact {
	d := plane.Normal.Dot(sphere.Position()) - plane.Offset
	if d*d > sphere.Radius*sphere.Radius {
		return nil
	}
	normal := plane.Normal
	if d < 0 {
		normal = normal.Mul(-1)
	}
	pos := sphere.Position().Sub(plane.Normal.Mul(d))
	return []rawContact{{Position: pos, Normal: normal, Penetration: sphere.Radius - math.Abs(d)}}
}

// sphereSphere implements §4.2.3.
func sphereSphere(a, b *body.Geometry) []rawContact {
	dx := a.Position().Sub(b.Position())
	rho := dx.Len()
	if rho >= a.Radius+b.Radius {
		return nil
	}
	var normal mgl64.Vec3
	if rho > 1e-12 {
		normal = dx.Mul(1 / rho)
	} else {
		normal = mgl64.Vec3{0, 1, 0}
	}
	pos := b.Position().Add(dx.Mul(0.5))
	return []rawContact{{Position: pos, Normal: normal, Penetration: a.Radius + b.Radius - rho}}
}

// cuboidSphere implements §4.2.4.
func cuboidSphere(cuboid, sphere *body.Geometry) []rawContact {
	local := toLocal(cuboid, sphere.Position())
	h := cuboid.HalfExtents
	if math.Abs(local.X()) > h.X()+sphere.Radius ||
		math.Abs(local.Y()) > h.Y()+sphere.Radius ||
		math.Abs(local.Z()) > h.Z()+sphere.Radius {
		return nil
	}

	closestLocal := mgl64.Vec3{
		clamp(local.X(), -h.X(), h.X()),
		clamp(local.Y(), -h.Y(), h.Y()),
		clamp(local.Z(), -h.Z(), h.Z()),
	}
	if closestLocal.Sub(local).LenSqr() > sphere.Radius*sphere.Radius {
		return nil
	}

	closestWorld := toWorld(cuboid, closestLocal)
	diff := closestWorld.Sub(sphere.Position())
	dist := diff.Len()
	var normal mgl64.Vec3
	if dist > 1e-9 {
		normal = diff.Mul(1 / dist)
	} else {
		normal = cuboid.Axis(1)
	}
	return []rawContact{{Position: closestWorld, Normal: normal, Penetration: sphere.Radius - dist}}
}

// cuboidHalfSpace implements §4.2.5.
func cuboidHalfSpace(cuboid, half *body.Geometry) []rawContact {
	n := half.Normal
	h := cuboid.HalfExtents
	axes := [3]mgl64.Vec3{cuboid.Axis(0), cuboid.Axis(1), cuboid.Axis(2)}
	extents := [3]float64{h.X(), h.Y(), h.Z()}

	proj := 0.0
	parallelCount := 0
	for i := 0; i < 3; i++ {
		comp := axes[i].Dot(n)
		proj += extents[i] * math.Abs(comp)
		if math.Abs(comp) < parallelFaceEpsilon {
			parallelCount++
		}
	}
	centerDist := n.Dot(cuboid.Position()) - half.Offset
	if centerDist-proj >= 0 {
		return nil
	}

	verts := cuboid.Vertices()

	if parallelCount > 0 {
		worst := 0
		worstSigned := n.Dot(verts[0])
		for i := 1; i < 8; i++ {
			if s := n.Dot(verts[i]); s < worstSigned {
				worstSigned = s
				worst = i
			}
		}
		pen := half.Offset - worstSigned
		if pen < 0 {
			return nil
		}
		pos := verts[worst].Add(n.Mul(0.5 * pen))
		return []rawContact{{Position: pos, Normal: n, Penetration: pen}}
	}

	var contacts []rawContact
	for _, v := range verts {
		pen := half.Offset - (n.Dot(v))
		if pen < 0 {
			continue
		}
		pos := v.Add(n.Mul(0.5 * pen))
		contacts = append(contacts, rawContact{Position: pos, Normal: n, Penetration: pen})
	}
	return contacts
}

type satAxisKind int

const (
	satAxisA satAxisKind = iota
	satAxisB
	satAxisCross
)

// cuboidCuboid implements §4.2.6, the Separating Axis Theorem test
// over the 15 candidate axes followed by vertex/edge contact
// synthesis on the axis of minimum positive penetration.
func cuboidCuboid(a, b *body.Geometry) []rawContact {
	axesA := [3]mgl64.Vec3{a.Axis(0), a.Axis(1), a.Axis(2)}
	axesB := [3]mgl64.Vec3{b.Axis(0), b.Axis(1), b.Axis(2)}
	hA := [3]float64{a.HalfExtents.X(), a.HalfExtents.Y(), a.HalfExtents.Z()}
	hB := [3]float64{b.HalfExtents.X(), b.HalfExtents.Y(), b.HalfExtents.Z()}
	deltaX := a.Position().Sub(b.Position())

	bestPen := math.Inf(1)
	var bestAxis mgl64.Vec3
	bestKind := satAxisA
	bestI, bestJ := 0, 0
	found := false

	test := func(axis mgl64.Vec3, kind satAxisKind, i, j int) bool {
		projA := 0.0
		for k := 0; k < 3; k++ {
			projA += hA[k] * math.Abs(axis.Dot(axesA[k]))
		}
		projB := 0.0
		for k := 0; k < 3; k++ {
			projB += hB[k] * math.Abs(axis.Dot(axesB[k]))
		}
		dist := math.Abs(deltaX.Dot(axis))
		pen := projA + projB - dist
		if pen < 0 {
			return false
		}
		if pen < bestPen {
			bestPen = pen
			bestAxis = axis
			bestKind = kind
			bestI, bestJ = i, j
			found = true
		}
		return true
	}

	for i := 0; i < 3; i++ {
		if !test(axesA[i], satAxisA, i, 0) {
			return nil
		}
	}
	for j := 0; j < 3; j++ {
		if !test(axesB[j], satAxisB, 0, j) {
			return nil
		}
	}
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			axis := axesA[i].Cross(axesB[j])
			if axis.LenSqr() < crossAxisEpsilon {
				continue
			}
			axis = axis.Normalize()
			if !test(axis, satAxisCross, i, j) {
				return nil
			}
		}
	}

	if !found {
		return nil
	}

	normal := bestAxis
	if normal.Dot(deltaX) < 0 {
		normal = normal.Mul(-1)
	}

	switch bestKind {
	case satAxisA:
		return []rawContact{synthesizeVertexContact(b, axesB, hB, normal, bestPen)}
	case satAxisB:
		// Symmetric to the satAxisA branch with A and B swapped and ΔX
		// negated: the vertex is picked against the negated normal, but
		// the reported contact normal stays in the shared convention
		// established above.
		vertex := synthesizeVertexContact(a, axesA, hA, normal.Mul(-1), bestPen)
		vertex.Normal = normal
		return []rawContact{vertex}
	default:
		return []rawContact{synthesizeEdgeContact(a, axesA, hA, bestI, b, axesB, hB, bestJ, normal, bestPen)}
	}
}

// synthesizeVertexContact picks the vertex of geometry g furthest along
// normal (same sign as the normal's component on each axis; a zero
// component takes the positive half-extent) and registers the contact
// there, per the A-axis/B-axis win branches.
func synthesizeVertexContact(g *body.Geometry, axes [3]mgl64.Vec3, h [3]float64, normal mgl64.Vec3, pen float64) rawContact {
	pos := g.Position()
	for k := 0; k < 3; k++ {
		sign := signOrPositive(normal.Dot(axes[k]))
		pos = pos.Add(axes[k].Mul(sign * h[k]))
	}
	return rawContact{Position: pos, Normal: normal, Penetration: pen}
}

// synthesizeEdgeContact implements the cross-product-axis win branch:
// it builds the two candidate edges (one per body), finds their
// closest approach, and falls back to an edge endpoint if the closest
// point lies outside either segment.
func synthesizeEdgeContact(a *body.Geometry, axesA [3]mgl64.Vec3, hA [3]float64, winI int,
	b *body.Geometry, axesB [3]mgl64.Vec3, hB [3]float64, winJ int,
	normal mgl64.Vec3, pen float64) rawContact {

	centerA := a.Position()
	for k := 0; k < 3; k++ {
		if k == winI {
			continue
		}
		comp := axesA[k].Dot(normal)
		if math.Abs(comp) < parallelFaceEpsilon {
			continue
		}
		centerA = centerA.Add(axesA[k].Mul(signOrPositive(comp) * hA[k]))
	}
	centerB := b.Position()
	for k := 0; k < 3; k++ {
		if k == winJ {
			continue
		}
		comp := axesB[k].Dot(normal)
		if math.Abs(comp) < parallelFaceEpsilon {
			continue
		}
		centerB = centerB.Add(axesB[k].Mul(signOrPositive(comp) * hB[k]))
	}

	dirA, dirB := axesA[winI], axesB[winJ]
	s, t, _, _ := closestSegmentParams(centerA, dirA, hA[winI], centerB, dirB, hB[winJ])

	pA := centerA.Add(dirA.Mul(s))
	pB := centerB.Add(dirB.Mul(t))
	pos := pA.Add(pB).Mul(0.5)

	return rawContact{Position: pos, Normal: normal, Penetration: pen}
}

// closestSegmentParams finds the closest-approach parameters s, t
// (each clamped to the segment's half-extent) between the two lines
// c1+s*d1 and c2+t*d2, following the standard closest-point-between-
// segments construction; clampedA/clampedB report whether s/t were
// cut off by the half-extent bound.
func closestSegmentParams(c1, d1 mgl64.Vec3, h1 float64, c2, d2 mgl64.Vec3, h2 float64) (s, t float64, clampedA, clampedB bool) {
	r := c1.Sub(c2)
	a := d1.Dot(d1)
	e := d2.Dot(d2)
	f := d2.Dot(r)
	bCoef := d1.Dot(d2)
	c := d1.Dot(r)

	denom := a*e - bCoef*bCoef
	if math.Abs(denom) > 1e-12 {
		s = clamp((bCoef*f-c*e)/denom, -h1, h1)
	} else {
		s = 0
	}
	if e > 1e-12 {
		t = (bCoef*s + f) / e
	} else {
		t = 0
	}

	tClamped := clamp(t, -h2, h2)
	if tClamped != t {
		t = tClamped
		clampedB = true
		if a > 1e-12 {
			sNew := clamp((bCoef*t-c)/a, -h1, h1)
			if sNew != s {
				clampedA = true
			}
			s = sNew
		}
	}
	if s <= -h1+1e-9 || s >= h1-1e-9 {
		clampedA = true
	}
	return s, t, clampedA, clampedB
}
