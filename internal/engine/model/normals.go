package model

// ComputeNormals returns area-weighted per-vertex normals for an indexed
// triangle list. Vertices not referenced by any face get +Y.
func ComputeNormals(positions []float32, indices []uint32) []float32 {
	count := len(positions) / 3
	if count == 0 || len(indices) < 3 {
		return nil
	}

	acc := make([][3]float32, count)
	for i := 0; i+2 < len(indices); i += 3 {
		a, b, c := indices[i], indices[i+1], indices[i+2]
		if int(a) >= count || int(b) >= count || int(c) >= count {
			continue
		}
		p0 := vertexAt(positions, a)
		p1 := vertexAt(positions, b)
		p2 := vertexAt(positions, c)

		e1 := [3]float32{p1[0] - p0[0], p1[1] - p0[1], p1[2] - p0[2]}
		e2 := [3]float32{p2[0] - p0[0], p2[1] - p0[1], p2[2] - p0[2]}
		// Unnormalized cross product weights by triangle area.
		n := cross(e1, e2)

		for _, v := range [3]uint32{a, b, c} {
			acc[v][0] += n[0]
			acc[v][1] += n[1]
			acc[v][2] += n[2]
		}
	}

	out := make([]float32, 0, count*3)
	for _, n := range acc {
		u := normalize3(n)
		out = append(out, u[0], u[1], u[2])
	}
	return out
}
