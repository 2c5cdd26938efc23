// Wavefront OBJ geometry and MTL material loading.
package formats

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sort"

	gobj "github.com/flywave/go-obj"
)

// OBJ format errors.
var (
	ErrEmptyOBJ      = errors.New("OBJ has no faces")
	ErrNoMTLMaterial = errors.New("MTL defines no materials")
	ErrOBJIndex      = errors.New("OBJ face index out of range")
)

// OBJ is indexed triangle geometry built from an OBJ file.
// Corners sharing the same position/texcoord/normal triple share a vertex.
type OBJ struct {
	Positions   []float32 // xyz per vertex
	Normals     []float32 // per vertex, nil when the file has no vn
	TexCoords   []float32 // uv per vertex, nil when the file has no vt
	Indices     []uint32
	MaterialLib string   // mtllib reference, if any
	Materials   []string // material names used by faces
}

// VertexCount returns the number of vertices.
func (o *OBJ) VertexCount() int {
	return len(o.Positions) / 3
}

// LoadOBJ reads and parses an OBJ file from disk.
func LoadOBJ(path string) (*OBJ, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ParseOBJ(f)
}

type objCornerKey struct {
	v, vt, vn int
}

// ParseOBJ parses OBJ text. Polygons are fan-triangulated.
func ParseOBJ(r io.Reader) (*OBJ, error) {
	reader := &gobj.ObjReader{}
	if err := reader.Read(r); err != nil {
		return nil, fmt.Errorf("reading obj: %w", err)
	}

	hasTex := len(reader.VT) > 0
	hasNormals := len(reader.VN) > 0

	out := &OBJ{MaterialLib: reader.MTL}
	if hasTex {
		out.TexCoords = []float32{}
	}
	if hasNormals {
		out.Normals = []float32{}
	}

	seen := map[objCornerKey]uint32{}
	used := map[string]bool{}

	// The reader's corner type is unexported, so corners are passed as
	// their three indices.
	corner := func(vi, ti, ni int) (uint32, error) {
		if vi < 0 || vi >= len(reader.V) {
			return 0, fmt.Errorf("%w: vertex index %d", ErrOBJIndex, vi)
		}
		key := objCornerKey{vi, -1, -1}
		if hasTex && ti >= 0 && ti < len(reader.VT) {
			key.vt = ti
		}
		if hasNormals && ni >= 0 && ni < len(reader.VN) {
			key.vn = ni
		}
		if idx, ok := seen[key]; ok {
			return idx, nil
		}

		idx := uint32(out.VertexCount())
		p := reader.V[key.v]
		out.Positions = append(out.Positions, p[0], p[1], p[2])
		if hasTex {
			var u, v float32
			if key.vt >= 0 {
				t := reader.VT[key.vt]
				u, v = t[0], t[1]
			}
			out.TexCoords = append(out.TexCoords, u, v)
		}
		if hasNormals {
			var nx, ny, nz float32
			if key.vn >= 0 {
				n := reader.VN[key.vn]
				nx, ny, nz = n[0], n[1], n[2]
			}
			out.Normals = append(out.Normals, nx, ny, nz)
		}
		seen[key] = idx
		return idx, nil
	}

	for fi, face := range reader.F {
		if len(face.Corners) < 3 {
			continue
		}
		if face.Material != "" && !used[face.Material] {
			used[face.Material] = true
			out.Materials = append(out.Materials, face.Material)
		}

		at := func(i int) (uint32, error) {
			c := face.Corners[i]
			return corner(c.VertexIndex, c.TexcoordIndex, c.NormalIndex)
		}
		first, err := at(0)
		if err != nil {
			return nil, fmt.Errorf("face %d: %w", fi, err)
		}
		for i := 1; i+1 < len(face.Corners); i++ {
			b, err := at(i)
			if err != nil {
				return nil, fmt.Errorf("face %d: %w", fi, err)
			}
			c, err := at(i + 1)
			if err != nil {
				return nil, fmt.Errorf("face %d: %w", fi, err)
			}
			out.Indices = append(out.Indices, first, b, c)
		}
	}

	if len(out.Indices) == 0 {
		return nil, ErrEmptyOBJ
	}
	return out, nil
}

// MTLMaterial is the subset of an MTL material the viewer renders.
type MTLMaterial struct {
	Name           string
	Diffuse        [3]float32
	DiffuseTexture string
	Opacity        float32
}

// LoadMTL reads a material library. Materials are returned sorted by name.
func LoadMTL(path string) ([]MTLMaterial, error) {
	mats, err := gobj.ReadMaterials(path)
	if err != nil {
		return nil, fmt.Errorf("reading mtl: %w", err)
	}
	if len(mats) == 0 {
		return nil, ErrNoMTLMaterial
	}

	out := make([]MTLMaterial, 0, len(mats))
	for name, m := range mats {
		if m == nil {
			continue
		}
		mat := MTLMaterial{
			Name:           name,
			Diffuse:        [3]float32{1, 1, 1},
			DiffuseTexture: m.DiffuseTexture,
			Opacity:        float32(m.Opacity),
		}
		if len(m.Diffuse) >= 3 {
			mat.Diffuse = [3]float32{m.Diffuse[0], m.Diffuse[1], m.Diffuse[2]}
		}
		if mat.Opacity <= 0 || mat.Opacity > 1 {
			mat.Opacity = 1
		}
		out = append(out, mat)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// Textured returns the first material that references a diffuse texture.
func Textured(mats []MTLMaterial) (MTLMaterial, bool) {
	for _, m := range mats {
		if m.DiffuseTexture != "" {
			return m, true
		}
	}
	return MTLMaterial{}, false
}
