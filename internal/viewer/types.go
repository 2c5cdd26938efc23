// Package viewer runs the three synchronized model views of an evaluation
// case: asset loading with fallbacks, normalization, camera placement,
// per-view loading state and the render loop that ties them together.
package viewer

import (
	"fmt"

	"github.com/Faultbox/iqhfm-eval/internal/engine/model"
)

// ViewerType identifies one of the three views. The set is closed.
type ViewerType int

const (
	CBCT ViewerType = iota
	FaceScan
	Reconstruction

	// Count is the number of views.
	Count = 3
)

// Types returns every view in display order.
func Types() [Count]ViewerType {
	return [Count]ViewerType{CBCT, FaceScan, Reconstruction}
}

// String returns the file tag of the view.
func (v ViewerType) String() string {
	return v.Tag()
}

// Tag is the file-name tag: {case}_{tag}{ext}.
func (v ViewerType) Tag() string {
	switch v {
	case CBCT:
		return "cbct"
	case FaceScan:
		return "3dmd"
	case Reconstruction:
		return "iqhfm"
	default:
		return fmt.Sprintf("viewer(%d)", int(v))
	}
}

// Ext is the model file extension.
func (v ViewerType) Ext() string {
	if v == Reconstruction {
		return ".ply"
	}
	return ".obj"
}

// Format is the geometry source format.
func (v ViewerType) Format() model.Format {
	if v == Reconstruction {
		return model.FormatCloud
	}
	return model.FormatMesh
}

// WantsMaterial reports whether the view loads the shared material.
func (v ViewerType) WantsMaterial() bool {
	return v == FaceScan
}

// Title is the human-readable view name.
func (v ViewerType) Title() string {
	switch v {
	case CBCT:
		return "CBCT"
	case FaceScan:
		return "3dMD"
	case Reconstruction:
		return "IQ-HFM"
	default:
		return v.Tag()
	}
}

// Valid reports whether v is one of the three views.
func (v ViewerType) Valid() bool {
	return v >= CBCT && v <= Reconstruction
}

// ParseViewerType resolves a tag back to its view.
func ParseViewerType(tag string) (ViewerType, bool) {
	for _, v := range Types() {
		if v.Tag() == tag {
			return v, true
		}
	}
	return 0, false
}
