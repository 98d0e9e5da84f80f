package body

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Axis unit vectors and standard gravity, exported as plain package
// values rather than a namespaced constants class (Constants.h's
// Const::X/Y/Z/g_n in the original source) since Go has no notion of
// a class of constants.
var (
	AxisX = mgl64.Vec3{1, 0, 0}
	AxisY = mgl64.Vec3{0, 1, 0}
	AxisZ = mgl64.Vec3{0, 0, 1}

	// StandardGravity is standard acceleration due to free fall,
	// given along the Y axis as the vertical axis.
	StandardGravity = mgl64.Vec3{0, -9.80665, 0}
)

// Mass threshold from spec.md §3: SetMass with a mass at or above
// InfiniteMass, like a mass of zero or less, sets InverseMass to 0,
// which makes the body immovable.
const (
	InfiniteMass = 1e30
)

// IsNaN reports whether x is not-a-number.
func IsNaN(x float64) bool {
	return math.IsNaN(x)
}

// IsInf reports +1/-1 if x is positive/negative infinity, 0 otherwise.
func IsInf(x float64) int {
	switch {
	case math.IsInf(x, 1):
		return 1
	case math.IsInf(x, -1):
		return -1
	default:
		return 0
	}
}
