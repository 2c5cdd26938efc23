package viewer

import (
	"context"
	"fmt"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/Faultbox/iqhfm-eval/internal/assets"
	"github.com/Faultbox/iqhfm-eval/internal/engine/model"
	"github.com/Faultbox/iqhfm-eval/internal/logger"
	"github.com/Faultbox/iqhfm-eval/pkg/formats"
)

// Tier is the fallback level that produced a load result.
type Tier int

const (
	TierDirect      Tier = iota // point/triangle cloud decoded as is
	TierMaterial                // mesh with the shared material bound
	TierGeometry                // mesh without material
	TierPlaceholder             // procedural stand-in
)

// String returns the tier name.
func (t Tier) String() string {
	switch t {
	case TierDirect:
		return "direct"
	case TierMaterial:
		return "material"
	case TierGeometry:
		return "geometry"
	case TierPlaceholder:
		return "placeholder"
	default:
		return "unknown"
	}
}

// LoadRequest describes one view's asset for one case. It is built once per
// case load and never mutated.
type LoadRequest struct {
	CaseID        string
	Viewer        ViewerType
	Path          string
	Format        model.Format
	WantsMaterial bool
	Generation    uint64
}

// Result is the outcome of a load. Asset is never nil.
type Result struct {
	Request   LoadRequest
	Asset     *model.Asset
	Tier      Tier
	Transform model.Transform
	Failures  []error
}

// Placeholder reports whether the result fell back to a stand-in.
func (r Result) Placeholder() bool {
	return r.Tier == TierPlaceholder
}

// Loader runs the fallback cascade for load requests. It is safe for
// concurrent use; each request runs on its own goroutine.
type Loader struct {
	assets   *assets.Manager
	profiles [Count]CameraProfile
}

// NewLoader creates a loader reading from m.
func NewLoader(m *assets.Manager, profiles [Count]CameraProfile) *Loader {
	return &Loader{assets: m, profiles: profiles}
}

// Request builds the request for one view of a case.
func (l *Loader) Request(caseID string, v ViewerType, generation uint64) LoadRequest {
	return LoadRequest{
		CaseID:        caseID,
		Viewer:        v,
		Path:          l.assets.Path(caseID, v.Tag(), v.Ext()),
		Format:        v.Format(),
		WantsMaterial: v.WantsMaterial(),
		Generation:    generation,
	}
}

// Load resolves req to an asset. It never fails: decode and material errors
// escalate down the cascade and end at the placeholder, with every failure
// kept in Result.Failures. Successful geometry is bounds-normalized.
func (l *Loader) Load(ctx context.Context, req LoadRequest, progress assets.ProgressFunc) Result {
	log := logger.Viewer(req.Viewer.Tag()).With(zap.String("case", req.CaseID))
	profile := l.profiles[req.Viewer]
	res := Result{Request: req}

	fail := func(tier Tier, err error) {
		err = fmt.Errorf("%s tier: %w", tier, err)
		res.Failures = append(res.Failures, err)
		log.Warn("load tier failed", zap.Stringer("tier", tier), zap.Error(err))
	}

	var asset *model.Asset
	switch req.Format {
	case model.FormatCloud:
		a, err := l.loadCloud(ctx, req, profile, progress, log)
		if err != nil {
			fail(TierDirect, err)
			break
		}
		asset, res.Tier = a, TierDirect

	default:
		var mat *assets.Material
		if req.WantsMaterial {
			m, err := l.assets.LoadMaterial(ctx)
			if err != nil {
				fail(TierMaterial, err)
			} else {
				mat = m
			}
		}

		obj, err := l.decodeOBJ(ctx, req.Path, progress)
		if err != nil {
			tier := TierGeometry
			if mat != nil {
				tier = TierMaterial
			}
			fail(tier, err)
			break
		}

		if mat != nil {
			a, err := texturedAsset(req, obj, mat)
			if err == nil {
				asset, res.Tier = a, TierMaterial
				break
			}
			fail(TierMaterial, err)
		}
		asset, res.Tier = geometryAsset(req, obj, profile), TierGeometry
	}

	if asset == nil {
		res.Asset = model.NewPlaceholder(profile.Placeholder, profile.Tint)
		res.Asset.Name = "placeholder:" + req.Viewer.Tag()
		res.Tier = TierPlaceholder
		log.Info("using placeholder", zap.Int("failures", len(res.Failures)))
		return res
	}

	res.Asset, res.Transform = model.Normalize(asset, profile.Canonical)
	log.Info("model loaded",
		zap.String("file", asset.Name),
		zap.Stringer("tier", res.Tier),
		zap.Int("vertices", asset.VertexCount()),
		zap.Stringer("shading", res.Asset.Material.Shading),
		zap.Float32("scale", res.Transform.Scale),
	)
	return res
}

func (l *Loader) decodeOBJ(ctx context.Context, path string, progress assets.ProgressFunc) (*formats.OBJ, error) {
	rc, err := l.assets.Open(ctx, path, progress)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	obj, err := formats.ParseOBJ(rc)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", filepath.Base(path), err)
	}
	return obj, nil
}

// geometryAsset builds an untextured mesh shaded with the view tint.
func geometryAsset(req LoadRequest, obj *formats.OBJ, profile CameraProfile) *model.Asset {
	a := &model.Asset{
		Name:      filepath.Base(req.Path),
		Format:    model.FormatMesh,
		Primitive: model.Triangles,
		Positions: obj.Positions,
		Normals:   obj.Normals,
		Indices:   obj.Indices,
	}
	if len(a.Normals) != len(a.Positions) {
		a.Normals = model.ComputeNormals(a.Positions, a.Indices)
	}
	a.Material = model.ColorPolicy(nil, profile.Tint)
	return a
}

// texturedAsset builds a mesh with mat bound. It fails with
// ErrMaterialUnresolved when the mesh has no texture coordinates or the
// material carries no decoded texture.
func texturedAsset(req LoadRequest, obj *formats.OBJ, mat *assets.Material) (*model.Asset, error) {
	if len(obj.TexCoords) == 0 {
		return nil, fmt.Errorf("%w: %s has no texture coordinates", assets.ErrMaterialUnresolved, filepath.Base(req.Path))
	}
	if mat.Texture == nil {
		return nil, fmt.Errorf("%w: material %s has no texture", assets.ErrMaterialUnresolved, mat.Name)
	}

	a := geometryAsset(req, obj, CameraProfile{})
	a.TexCoords = obj.TexCoords
	a.Material = model.Material{
		Shading:     model.ShadingTexture,
		Tint:        model.Color(mat.Diffuse),
		Opacity:     mat.Opacity,
		DoubleSided: true,
		Texture:     mat.Texture,
		TextureName: mat.TextureName,
	}
	return a, nil
}

func (l *Loader) loadCloud(ctx context.Context, req LoadRequest, profile CameraProfile, progress assets.ProgressFunc, log *zap.Logger) (*model.Asset, error) {
	rc, err := l.assets.Open(ctx, req.Path, progress)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	ply, err := formats.ParsePLY(rc)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", filepath.Base(req.Path), err)
	}

	a := &model.Asset{
		Name:      filepath.Base(req.Path),
		Format:    model.FormatCloud,
		Primitive: model.Points,
		Positions: ply.Positions,
		Normals:   ply.Normals,
	}
	if ply.HasFaces() {
		a.Primitive = model.Triangles
		a.Indices = ply.Indices
		if len(a.Normals) != len(a.Positions) {
			a.Normals = model.ComputeNormals(a.Positions, a.Indices)
		}
	}

	colors, err := model.NormalizeColors(ply.Colors, ply.Red, ply.Green, ply.Blue)
	if err != nil {
		// Geometry is still usable; shade it with the view tint.
		log.Warn("ignoring vertex colors", zap.Error(err))
		colors = nil
	}
	a.Colors = colors
	a.Material = model.ColorPolicy(colors, profile.Tint)
	return a, nil
}
