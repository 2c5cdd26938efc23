package model

import gomath "math"

// cross computes the cross product of two 3D vectors.
func cross(a, b [3]float32) [3]float32 {
	return [3]float32{
		a[1]*b[2] - a[2]*b[1],
		a[2]*b[0] - a[0]*b[2],
		a[0]*b[1] - a[1]*b[0],
	}
}

// normalize3 returns a unit vector in the same direction as v.
// Degenerate input yields +Y.
func normalize3(v [3]float32) [3]float32 {
	length := sqrtf(v[0]*v[0] + v[1]*v[1] + v[2]*v[2])
	if length < 1e-12 {
		return [3]float32{0, 1, 0}
	}
	return [3]float32{v[0] / length, v[1] / length, v[2] / length}
}

func vertexAt(buf []float32, i uint32) [3]float32 {
	return [3]float32{buf[i*3], buf[i*3+1], buf[i*3+2]}
}

func sqrtf(x float32) float32 {
	return float32(gomath.Sqrt(float64(x)))
}
