package viewer

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Faultbox/iqhfm-eval/internal/assets"
)

// Extents 2 x 4 x 1.
const texturedOBJ = `v 0 0 0
v 2 0 0
v 0 4 0
v 0 0 1
vt 0 0
vt 1 0
vt 0 1
vt 1 1
f 1/1 2/2 3/3
f 1/1 2/2 4/4
f 1/1 3/3 4/4
f 2/2 3/3 4/4
`

const plainOBJ = `v 0 0 0
v 2 0 0
v 0 4 0
v 0 0 1
f 1 2 3
f 1 2 4
f 1 3 4
f 2 3 4
`

const coloredPLY = `ply
format ascii 1.0
element vertex 4
property float x
property float y
property float z
property uchar red
property uchar green
property uchar blue
element face 1
property list uchar int vertex_indices
end_header
0 0 0 255 0 0
1 0 0 0 255 0
1 1 0 0 0 255
0 1 0 51 102 204
4 0 1 2 3
`

const cloudPLY = `ply
format ascii 1.0
element vertex 3
property float x
property float y
property float z
end_header
0 0 0
4 0 0
0 2 0
`

const skinMTL = "newmtl skin\nKd 1 1 1\nmap_Kd skin.png\n"

func writeFile(t *testing.T, path string, data string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}
}

func writePNG(t *testing.T, path string) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	img.SetRGBA(0, 0, color.RGBA{R: 255, G: 219, B: 172, A: 255})
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	writeFile(t, path, buf.String())
}

// writeCase writes every file of a case. Views listed in skip are left out.
func writeCase(t *testing.T, dir, caseID string, skip ...ViewerType) {
	t.Helper()
	skipped := map[ViewerType]bool{}
	for _, v := range skip {
		skipped[v] = true
	}
	if !skipped[CBCT] {
		writeFile(t, filepath.Join(dir, caseID+"_cbct.obj"), plainOBJ)
	}
	if !skipped[FaceScan] {
		writeFile(t, filepath.Join(dir, caseID+"_3dmd.obj"), texturedOBJ)
	}
	if !skipped[Reconstruction] {
		writeFile(t, filepath.Join(dir, caseID+"_iqhfm.ply"), coloredPLY)
	}
}

func writeMaterial(t *testing.T, dir string) {
	t.Helper()
	writeFile(t, filepath.Join(dir, assets.DefaultMaterialFile), skinMTL)
	writePNG(t, filepath.Join(dir, "skin.png"))
}

func newTestLoader(dir string) *Loader {
	return NewLoader(assets.NewManager(dir, ""), DefaultProfiles())
}

func newTestRegistry(t *testing.T, dir string, cases ...string) (*Registry, [Count]*NullSurface) {
	t.Helper()
	var nulls [Count]*NullSurface
	var surfaces [Count]Surface
	for i := range surfaces {
		nulls[i] = NewNullSurface(480, 600)
		surfaces[i] = nulls[i]
	}
	r := NewRegistry(newTestLoader(dir), surfaces, DefaultSessionConfig(), cases)
	t.Cleanup(r.Close)
	return r, nulls
}

// waitLoaded drains r until the current case is loaded.
func waitLoaded(t *testing.T, r *Registry) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for !r.CaseLoaded() {
		if time.Now().After(deadline) {
			t.Fatal("timed out waiting for case to load")
		}
		r.Drain()
		time.Sleep(time.Millisecond)
	}
}

func abs32(x float32) float32 {
	if x < 0 {
		return -x
	}
	return x
}
