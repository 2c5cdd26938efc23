package lighting

import (
	gomath "math"
	"testing"

	"github.com/Faultbox/iqhfm-eval/pkg/math"
)

func TestDefaultRig(t *testing.T) {
	rig := DefaultRig()
	if rig.Ambient.Intensity != 0.6 {
		t.Errorf("ambient = %v, want 0.6", rig.Ambient.Intensity)
	}
	if rig.Key.Intensity != 0.8 || rig.Fill.Intensity != 0.3 {
		t.Errorf("key/fill = %v/%v, want 0.8/0.3", rig.Key.Intensity, rig.Fill.Intensity)
	}
	k := float32(1 / gomath.Sqrt(3))
	want := math.V3(k, k, k)
	if got := math.FromArray(rig.Key.Direction); !got.ApproxEqual(want, 1e-5) {
		t.Errorf("key direction = %v, want %v", got, want)
	}
}

func TestIrradiance(t *testing.T) {
	rig := DefaultRig()
	key := math.FromArray(rig.Key.Direction)

	tests := []struct {
		name    string
		normal  math.Vec3
		viewDir math.Vec3
		want    float32
	}{
		{"facing key", key, key, 0.6 + 0.8},
		{"facing away from both", math.V3(0, -1, 0), math.V3(0, -1, 0), 0.6},
		{"back face flipped toward key", key.Scale(-1), key, 0.6 + 0.8},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := rig.Irradiance(tt.normal, tt.viewDir)
			for i, c := range got {
				if gomath.Abs(float64(c-tt.want)) > 1e-5 {
					t.Errorf("channel %d = %v, want %v", i, c, tt.want)
				}
			}
		})
	}
}
