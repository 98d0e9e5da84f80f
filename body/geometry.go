package body

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Kind discriminates the tagged Geometry variants. Collision
// detection dispatches on the unordered pair of Kinds with a flat,
// exhaustive table (see the root package's collision.go) rather than
// through virtual dispatch, per spec.md §9's re-architecture note.
type Kind int

const (
	Sphere Kind = iota
	Cuboid
	HalfSpace
	TruePlane
)

func (k Kind) String() string {
	switch k {
	case Sphere:
		return "sphere"
	case Cuboid:
		return "cuboid"
	case HalfSpace:
		return "half-space"
	case TruePlane:
		return "true-plane"
	default:
		return "unknown"
	}
}

// Geometry is a tagged record: only the fields relevant to Kind are
// meaningful. Body is the owning rigid body; nil iff the geometry is
// immovable static scenery (spec.md §3).
type Geometry struct {
	Kind Kind

	Radius      float64    // Sphere
	HalfExtents mgl64.Vec3 // Cuboid: half-width, half-height, half-depth

	Normal mgl64.Vec3 // HalfSpace, TruePlane: unit normal
	Offset float64    // HalfSpace, TruePlane: signed offset d

	Body *RigidBody
}

// NewSphere creates a sphere geometry of radius r, owned by body (nil
// for static scenery).
func NewSphere(radius float64, body *RigidBody) Geometry {
	return Geometry{Kind: Sphere, Radius: radius, Body: body}
}

// NewCuboid creates a cuboid geometry with the given half-extents,
// owned by body (nil for static scenery).
func NewCuboid(halfExtents mgl64.Vec3, body *RigidBody) Geometry {
	return Geometry{Kind: Cuboid, HalfExtents: halfExtents, Body: body}
}

// NewHalfSpace creates one-sided static scenery {p : n.p <= d}.
func NewHalfSpace(normal mgl64.Vec3, offset float64) Geometry {
	return Geometry{Kind: HalfSpace, Normal: normal.Normalize(), Offset: offset}
}

// NewTruePlane creates two-sided static scenery at {p : n.p == d}.
func NewTruePlane(normal mgl64.Vec3, offset float64) Geometry {
	return Geometry{Kind: TruePlane, Normal: normal.Normalize(), Offset: offset}
}

// Position returns column 3 of the owning body's transform, or the
// zero vector for static scenery.
func (g *Geometry) Position() mgl64.Vec3 {
	if g.Body == nil {
		return mgl64.Vec3{}
	}
	return g.Body.T.Position
}

// Axis returns basis axis i (0,1,2) of the owning body's transform,
// or the corresponding world basis axis for static scenery.
func (g *Geometry) Axis(i int) mgl64.Vec3 {
	if g.Body == nil {
		switch i {
		case 0:
			return AxisX
		case 1:
			return AxisY
		case 2:
			return AxisZ
		default:
			return mgl64.Vec3{}
		}
	}
	return g.Body.T.Axis(i)
}

// ComputeMass returns the mass implied by density for Sphere and
// Cuboid variants; HalfSpace and TruePlane are always static and
// report infinite mass.
func (g *Geometry) ComputeMass(density float64) float64 {
	switch g.Kind {
	case Sphere:
		volume := (4.0 / 3.0) * math.Pi * g.Radius * g.Radius * g.Radius
		return density * volume
	case Cuboid:
		volume := 8.0 * g.HalfExtents.X() * g.HalfExtents.Y() * g.HalfExtents.Z()
		return density * volume
	default:
		return math.Inf(1)
	}
}

// ComputeInertia returns the body-frame principal moment of inertia
// for the given mass: Ixx=Iyy=Izz = 2/5 m r^2 for a sphere, the
// standard diagonal (m/12)(h_j^2+h_k^2) for a cuboid, and the zero
// tensor for scenery variants.
func (g *Geometry) ComputeInertia(mass float64) mgl64.Mat3 {
	switch g.Kind {
	case Sphere:
		i := (2.0 / 5.0) * mass * g.Radius * g.Radius
		return mgl64.Mat3{i, 0, 0, 0, i, 0, 0, 0, i}
	case Cuboid:
		x, y, z := g.HalfExtents.X()*2, g.HalfExtents.Y()*2, g.HalfExtents.Z()*2
		factor := mass / 12.0
		return mgl64.Mat3{
			factor * (y*y + z*z), 0, 0,
			0, factor * (x*x + z*z), 0,
			0, 0, factor * (x*x + y*y),
		}
	default:
		return mgl64.Mat3{}
	}
}

// Vertices returns the 8 corners of a Cuboid geometry in world
// space. Only meaningful for Kind == Cuboid.
func (g *Geometry) Vertices() [8]mgl64.Vec3 {
	center := g.Position()
	ax, ay, az := g.Axis(0), g.Axis(1), g.Axis(2)
	hx, hy, hz := g.HalfExtents.X(), g.HalfExtents.Y(), g.HalfExtents.Z()

	var verts [8]mgl64.Vec3
	idx := 0
	for _, sx := range []float64{-1, 1} {
		for _, sy := range []float64{-1, 1} {
			for _, sz := range []float64{-1, 1} {
				offset := ax.Mul(sx * hx).Add(ay.Mul(sy * hy)).Add(az.Mul(sz * hz))
				verts[idx] = center.Add(offset)
				idx++
			}
		}
	}
	return verts
}
