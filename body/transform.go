// Package body implements the rigid-body state model: quaternion and
// transform math (L0), the rigid body itself with its semi-implicit
// Euler integrator and activation logic (L1), and the tagged geometry
// variants used by collision detection (L2).
package body

import "github.com/go-gl/mathgl/mgl64"

// Transform is a 4x4 column-major rigid transform: columns 0-2 are the
// local basis axes expressed in world frame, column 3 is the world
// position. It is built from an orientation quaternion and a
// translation vector via the Shoemake construction and is rebuilt
// after every integration step so it always stays consistent with
// (Rotation, Position).
type Transform struct {
	Position mgl64.Vec3
	Rotation mgl64.Quat

	matrix    mgl64.Mat4
	hasMatrix bool
}

// Identity returns the identity transform.
func Identity() Transform {
	t := Transform{Rotation: mgl64.QuatIdent()}
	t.Refresh()
	return t
}

// Shoemake builds a transform from an orientation quaternion and a
// translation vector, matching Ken Shoemake's quaternion-to-matrix
// construction (see Quaternion.h / QTensor.h in the original source).
func Shoemake(q mgl64.Quat, position mgl64.Vec3) Transform {
	t := Transform{Position: position, Rotation: q}
	t.Refresh()
	return t
}

// Refresh rebuilds the cached 4x4 matrix from the current (Rotation,
// Position). Call after mutating either field directly;
// NormalizeAndRefresh does this after integration, where Rotation may
// have drifted off the unit sphere.
func (t *Transform) Refresh() {
	if t.Rotation.Dot(t.Rotation) == 0 {
		t.Rotation = mgl64.QuatIdent()
	}
	m := t.Rotation.Mat4()
	m.SetCol(3, mgl64.Vec4{t.Position.X(), t.Position.Y(), t.Position.Z(), 1})
	t.matrix = m
	t.hasMatrix = true
}

// NormalizeAndRefresh normalizes Rotation to a unit quaternion (a
// zero-norm quaternion defaults to identity, per spec.md's misuse
// handling) and rebuilds the cached matrix.
func (t *Transform) NormalizeAndRefresh() {
	if n := t.Rotation.Dot(t.Rotation); n > 0 {
		t.Rotation = t.Rotation.Normalize()
	} else {
		t.Rotation = mgl64.QuatIdent()
	}
	t.Refresh()
}

// Matrix returns the cached column-major 4x4 transform.
func (t *Transform) Matrix() mgl64.Mat4 {
	if !t.hasMatrix {
		t.Refresh()
	}
	return t.matrix
}

// Column returns column i (0..3) of the transform: columns 0-2 are
// the local basis axes in world frame, column 3 is the homogeneous
// position (w=1).
func (t *Transform) Column(i int) mgl64.Vec4 {
	m := t.Matrix()
	return mgl64.Vec4{m[i*4], m[i*4+1], m[i*4+2], m[i*4+3]}
}

// Axis returns basis axis i (0=x,1=y,2=z) as a spatial vector in
// world frame.
func (t *Transform) Axis(i int) mgl64.Vec3 {
	c := t.Column(i)
	return mgl64.Vec3{c[0], c[1], c[2]}
}

// Determinant returns the determinant of the upper-left 3x3 rotation
// block (always 1 for a valid rigid transform; exposed for the L0
// round-trip invariant and for detecting a corrupted orientation).
func (t *Transform) Determinant() float64 {
	return t.Matrix().Mat3().Det()
}

// Apply transforms a local-space vector into world space: R*v + position.
func (t *Transform) Apply(v mgl64.Vec3) mgl64.Vec3 {
	return t.Rotation.Rotate(v).Add(t.Position)
}

// ApplyInverse is the inverse of Apply: world space to local space.
func (t *Transform) ApplyInverse(v mgl64.Vec3) mgl64.Vec3 {
	return t.Rotation.Inverse().Rotate(v.Sub(t.Position))
}

// Inverse returns the rigid inverse transform (R^T, -R^T*position).
func (t *Transform) Inverse() Transform {
	invRot := t.Rotation.Inverse()
	inv := Transform{
		Position: invRot.Rotate(t.Position.Mul(-1)),
		Rotation: invRot,
	}
	inv.Refresh()
	return inv
}

// Similarity computes the similarity transform T*X*T^T restricted to
// the rotation block, i.e. R*X*R^T. This is how a body-frame inertia
// tensor (or any rank-2 tensor referenced to the body's axes) is
// carried into world frame.
func (t *Transform) Similarity(x mgl64.Mat3) mgl64.Mat3 {
	r := t.Rotation.Mat4().Mat3()
	return r.Mul3(x).Mul3(r.Transpose())
}

// SimilarityInverse computes T^T*X*T restricted to the rotation
// block, i.e. R^T*X*R — the inverse of Similarity.
func (t *Transform) SimilarityInverse(x mgl64.Mat3) mgl64.Mat3 {
	r := t.Rotation.Mat4().Mat3()
	return r.Transpose().Mul3(x).Mul3(r)
}

// Skew returns the skew-symmetric cross-product matrix [v]_x such
// that [v]_x * u == v.Cross(u) for any u.
func Skew(v mgl64.Vec3) mgl64.Mat3 {
	return mgl64.Mat3{
		0, v.Z(), -v.Y(),
		-v.Z(), 0, v.X(),
		v.Y(), -v.X(), 0,
	}
}

// LeftMultiply returns the 4x4 matrix L(q) such that L(q)*p (p as a
// column 4-vector (w,x,y,z)) equals the Hamilton product q*p. Exposed
// per spec.md's L0 data model ("left/right quaternion multiplier
// matrices"); it gives the same result as the direct Hamilton product
// q.Mul(p), which RigidBody's orientation update uses.
func LeftMultiply(q mgl64.Quat) mgl64.Mat4 {
	w, x, y, z := q.W, q.V.X(), q.V.Y(), q.V.Z()
	return mgl64.Mat4{
		w, x, y, z,
		-x, w, z, -y,
		-y, -z, w, x,
		-z, y, -x, w,
	}
}

// RightMultiply returns the 4x4 matrix R(q) such that R(q)*p equals
// the Hamilton product p*q.
func RightMultiply(q mgl64.Quat) mgl64.Mat4 {
	w, x, y, z := q.W, q.V.X(), q.V.Y(), q.V.Z()
	return mgl64.Mat4{
		w, x, y, z,
		-x, w, -z, y,
		-y, z, w, -x,
		-z, -y, x, w,
	}
}

// ApplyQuatMultiplier applies a 4x4 quaternion-multiplier matrix (as
// returned by LeftMultiply/RightMultiply) to a quaternion represented
// as a column vector (w,x,y,z), returning the resulting quaternion.
func ApplyQuatMultiplier(m mgl64.Mat4, q mgl64.Quat) mgl64.Quat {
	col := mgl64.Vec4{q.W, q.V.X(), q.V.Y(), q.V.Z()}
	r := m.Mul4x1(col)
	return mgl64.Quat{W: r[0], V: mgl64.Vec3{r[1], r[2], r[3]}}
}
