package math

import (
	"math"
	"testing"
)

func TestVec3Cross(t *testing.T) {
	got := Vec3{1, 0, 0}.Cross(Vec3{0, 1, 0})
	want := Vec3{0, 0, 1}
	if got != want {
		t.Errorf("Vec3.Cross() = %v, want %v", got, want)
	}
}

func TestVec3Normalize(t *testing.T) {
	if got := (Vec3{}).Normalize(); got != (Vec3{}) {
		t.Errorf("zero Normalize() = %v, want zero", got)
	}
	l := Vec3{3, 4, 12}.Normalize().Length()
	if l < 0.999 || l > 1.001 {
		t.Errorf("Normalize().Length() = %v, want ~1", l)
	}
}

func TestSphericalRoundTrip(t *testing.T) {
	tests := []Vec3{
		{0, 0, 3},
		{0, -15, -9},
		{1, 2, 3},
		{-4, 0.5, 0},
	}
	for _, v := range tests {
		s := SphericalFromVec3(v)
		if got := s.Vec3(); !got.ApproxEqual(v, 1e-4) {
			t.Errorf("spherical round trip of %v = %v", v, got)
		}
	}
}

func TestSphericalAxes(t *testing.T) {
	s := SphericalFromVec3(Vec3{0, 0, 2})
	if s.Radius != 2 || s.Theta != 0 || abs(s.Phi-float32(math.Pi/2)) > 1e-6 {
		t.Errorf("SphericalFromVec3(+Z) = %+v", s)
	}
}

func TestClamp(t *testing.T) {
	tests := []struct {
		x, want float32
	}{
		{-1, 0}, {0.5, 0.5}, {3, 1},
	}
	for _, tt := range tests {
		if got := Clamp(tt.x, 0, 1); got != tt.want {
			t.Errorf("Clamp(%v) = %v, want %v", tt.x, got, tt.want)
		}
	}
}
