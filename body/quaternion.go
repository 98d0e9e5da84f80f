package body

import "github.com/go-gl/mathgl/mgl64"

// SpatialVector wraps a 3-vector as a pure-imaginary quaternion
// (w=0), matching spec.md's "spatial vector" data model so that
// positions and other 3-vectors can be pushed through the same
// Hamilton-product machinery as orientations when needed.
func SpatialVector(v mgl64.Vec3) mgl64.Quat {
	return mgl64.Quat{W: 0, V: v}
}

// ImaginaryDot is the dot product of the imaginary (vector) parts of
// two quaternions only, ignoring their scalar parts.
func ImaginaryDot(a, b mgl64.Quat) float64 {
	return a.V.Dot(b.V)
}

// ImaginaryCross is the cross product of the imaginary parts of two
// quaternions, returned as a pure-imaginary quaternion.
func ImaginaryCross(a, b mgl64.Quat) mgl64.Quat {
	return SpatialVector(a.V.Cross(b.V))
}

// ImaginaryNorm is the Euclidean length of a quaternion's imaginary
// part — the length of the 3-vector it represents when used as a
// spatial vector.
func ImaginaryNorm(a mgl64.Quat) float64 {
	return a.V.Len()
}

// ComponentProduct multiplies two quaternions component-wise (w*w',
// x*x', y*y', z*z'), distinct from the Hamilton product.
func ComponentProduct(a, b mgl64.Quat) mgl64.Quat {
	return mgl64.Quat{
		W: a.W * b.W,
		V: mgl64.Vec3{a.V.X() * b.V.X(), a.V.Y() * b.V.Y(), a.V.Z() * b.V.Z()},
	}
}

// NormalizeToLength rescales a quaternion's imaginary part to the
// given length, leaving the scalar part untouched. Used for spatial
// vectors (w=0) where "normalize" means "rescale the 3-vector", not
// "make the 4-vector unit length".
func NormalizeToLength(a mgl64.Quat, length float64) mgl64.Quat {
	n := a.V.Len()
	if n < 1e-12 {
		return mgl64.Quat{W: a.W, V: mgl64.Vec3{}}
	}
	return mgl64.Quat{W: a.W, V: a.V.Mul(length / n)}
}
