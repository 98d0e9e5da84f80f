package body

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

// TestApplyApplyInverseRoundTrip is spec.md §8 invariant #7.
func TestApplyApplyInverseRoundTrip(t *testing.T) {
	q := mgl64.QuatRotate(0.7, mgl64.Vec3{1, 2, 3}.Normalize())
	tr := Shoemake(q, mgl64.Vec3{4, -5, 6})

	v := mgl64.Vec3{1.5, -2.25, 3.75}
	got := tr.ApplyInverse(tr.Apply(v))
	if !vec3Equal(got, v, 1e-12) {
		t.Errorf("ApplyInverse(Apply(v)) = %v, want %v", got, v)
	}
}

func TestIdentityTransformIsNoOp(t *testing.T) {
	tr := Identity()
	v := mgl64.Vec3{1, 2, 3}
	if got := tr.Apply(v); !vec3Equal(got, v, 1e-12) {
		t.Errorf("Identity().Apply(v) = %v, want %v", got, v)
	}
	if d := tr.Determinant(); !floatEqual(d, 1, 1e-9) {
		t.Errorf("Identity().Determinant() = %v, want 1", d)
	}
}

func TestNormalizeAndRefreshDefaultsZeroQuatToIdentity(t *testing.T) {
	tr := Transform{Position: mgl64.Vec3{1, 2, 3}}
	tr.NormalizeAndRefresh()
	if tr.Rotation != mgl64.QuatIdent() {
		t.Errorf("Rotation = %v, want identity after normalizing a zero quaternion", tr.Rotation)
	}
}

func TestSkewMatchesCrossProduct(t *testing.T) {
	v := mgl64.Vec3{1, 2, 3}
	u := mgl64.Vec3{4, -1, 2}
	want := v.Cross(u)
	got := Skew(v).Mul3x1(u)
	if !vec3Equal(got, want, 1e-12) {
		t.Errorf("Skew(v)*u = %v, want v x u = %v", got, want)
	}
}

func TestSimilarityAndInverseAreInverses(t *testing.T) {
	q := mgl64.QuatRotate(1.1, mgl64.Vec3{0, 1, 0})
	tr := Shoemake(q, mgl64.Vec3{})
	x := mgl64.Mat3{2, 0, 0, 0, 3, 0, 0, 0, 5}

	world := tr.Similarity(x)
	back := tr.SimilarityInverse(world)
	for i := range x {
		if !floatEqual(back[i], x[i], 1e-9) {
			t.Errorf("SimilarityInverse(Similarity(x))[%d] = %v, want %v", i, back[i], x[i])
			break
		}
	}
}
