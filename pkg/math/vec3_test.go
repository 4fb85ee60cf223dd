package math

import "testing"

func TestVec3(t *testing.T) {
	x, y := Vec3{1, 0, 0}, Vec3{0, 1, 0}

	if got := x.Cross(y); got != (Vec3{0, 0, 1}) {
		t.Errorf("X x Y = %v, want +Z", got)
	}
	if got := x.Add(y).Sub(x); got != y {
		t.Errorf("Add/Sub = %v, want %v", got, y)
	}
	if got := (Vec3{3, 4, 0}).Normalize(); abs(got.Length()-1) > 1e-6 {
		t.Errorf("Normalize length = %v", got.Length())
	}
	if got := (Vec3{}).Normalize(); got != (Vec3{}) {
		t.Errorf("Normalize(0) = %v, want zero", got)
	}
}

func TestHomogeneous(t *testing.T) {
	dir := Vec3{0, -1, 0}
	if got := dir.Neg().Homogeneous(0); got != [4]float32{0, 1, 0, 0} {
		t.Errorf("direction = %v", got)
	}
	if got := (Vec3{1, 2, 3}).Homogeneous(1); got != [4]float32{1, 2, 3, 1} {
		t.Errorf("point = %v", got)
	}
}
