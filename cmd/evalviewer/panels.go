package main

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/AllenDang/cimgui-go/imgui"

	"github.com/Faultbox/iqhfm-eval/internal/engine/renderer"
	"github.com/Faultbox/iqhfm-eval/internal/viewer"
)

const (
	menuHeight      = 34
	statusBarHeight = 28
)

var (
	colorReady       = imgui.NewVec4(0.2, 0.6, 0.3, 1)
	colorPlaceholder = imgui.NewVec4(0.8, 0.5, 0.1, 1)
	colorLoading     = imgui.NewVec4(0.3, 0.4, 0.8, 1)
)

func stateColor(s viewer.LoadingState) imgui.Vec4 {
	switch s {
	case viewer.StateReady:
		return colorReady
	case viewer.StatePlaceholder:
		return colorPlaceholder
	default:
		return colorLoading
	}
}

// renderLayout draws the case bar, the three view panels and the status bar.
func (ws *Workstation) renderLayout() {
	viewport := imgui.MainViewport()
	workPos := viewport.WorkPos()
	workSize := viewport.WorkSize()

	flags := imgui.WindowFlagsNoMove | imgui.WindowFlagsNoResize | imgui.WindowFlagsNoCollapse
	barFlags := flags | imgui.WindowFlagsNoTitleBar | imgui.WindowFlagsNoScrollbar

	imgui.SetNextWindowPos(workPos)
	imgui.SetNextWindowSize(imgui.NewVec2(workSize.X, menuHeight))
	if imgui.BeginV("##CaseBar", nil, barFlags) {
		ws.renderCaseBar()
	}
	imgui.End()

	contentHeight := workSize.Y - menuHeight - statusBarHeight
	panelWidth := workSize.X / viewer.Count
	for i, s := range ws.app.Registry().Sessions() {
		imgui.SetNextWindowPos(imgui.NewVec2(workPos.X+float32(i)*panelWidth, workPos.Y+menuHeight))
		imgui.SetNextWindowSize(imgui.NewVec2(panelWidth, contentHeight))
		if imgui.BeginV(s.Viewer().Title()+"##view", nil, flags|imgui.WindowFlagsNoScrollbar) {
			ws.renderView(i, s)
		}
		imgui.End()
	}

	imgui.SetNextWindowPos(imgui.NewVec2(workPos.X, workPos.Y+menuHeight+contentHeight))
	imgui.SetNextWindowSize(imgui.NewVec2(workSize.X, statusBarHeight))
	if imgui.BeginV("##StatusBar", nil, barFlags) {
		ws.renderStatusBar()
	}
	imgui.End()

	if ws.notice != "" && time.Since(ws.noticeTime) < 3*time.Second {
		noticeFlags := imgui.WindowFlagsNoTitleBar | imgui.WindowFlagsNoResize |
			imgui.WindowFlagsNoMove | imgui.WindowFlagsNoScrollbar |
			imgui.WindowFlagsAlwaysAutoResize | imgui.WindowFlagsNoFocusOnAppearing
		imgui.SetNextWindowPos(imgui.NewVec2(workPos.X+10, workPos.Y+menuHeight+30))
		imgui.SetNextWindowBgAlpha(0.85)
		if imgui.BeginV("##Notice", nil, noticeFlags) {
			imgui.Text(ws.notice)
		}
		imgui.End()
	}
}

func (ws *Workstation) renderCaseBar() {
	reg := ws.app.Registry()

	if imgui.Button("< Prev") {
		ws.report(reg.Prev())
	}
	imgui.SameLine()

	imgui.SetNextItemWidth(160)
	preview := reg.CaseID()
	if preview == "" {
		preview = "(no case)"
	}
	if imgui.BeginCombo("##case", preview) {
		for i, id := range reg.Cases() {
			label := fmt.Sprintf("%d. %s", i+1, id)
			if imgui.SelectableBoolV(label, i == reg.Index(), 0, imgui.NewVec2(0, 0)) {
				ws.report(reg.LoadCase(i))
			}
		}
		imgui.EndCombo()
	}
	imgui.SameLine()

	if imgui.Button("Next >") {
		ws.report(reg.Next())
	}
	imgui.SameLine()
	imgui.TextDisabled(fmt.Sprintf("Case %d of %d", reg.Index()+1, len(reg.Cases())))

	imgui.SameLine()
	if imgui.Button("Open models folder...") {
		ws.openFolderDialog()
	}
	imgui.SameLine()
	if imgui.Button("Snapshot (F12)") {
		ws.snapshot()
	}
	imgui.SameLine()
	if imgui.Button("Reset views") {
		for _, s := range reg.Sessions() {
			s.ResetView()
		}
	}
}

// renderView shows one session's surface and routes mouse input to its
// orbit controller.
func (ws *Workstation) renderView(i int, s *viewer.Session) {
	avail := imgui.ContentRegionAvail()
	w, h := int(avail.X), int(avail.Y)
	if sw, sh := s.Surface().Size(); w > 0 && h > 0 && (sw != w || sh != h) {
		s.Resize(w, h)
	}

	surface, ok := s.Surface().(*renderer.Surface)
	if !ok {
		return
	}

	origin := imgui.CursorPos()
	texRef := imgui.NewTextureRefTextureID(imgui.TextureID(surface.ColorTexture()))
	imgui.ImageWithBgV(
		*texRef,
		avail,
		imgui.NewVec2(0, 1), // GL origin is bottom-left
		imgui.NewVec2(1, 0),
		imgui.NewVec4(0.97, 0.98, 0.99, 1),
		imgui.NewVec4(1, 1, 1, 1),
	)

	ctrl := s.Controller()
	mouse := imgui.MousePos()
	if imgui.IsItemHovered() {
		dx := mouse.X - ws.lastMouse[i].X
		dy := mouse.Y - ws.lastMouse[i].Y
		switch {
		case imgui.IsMouseDragging(imgui.MouseButtonLeft):
			ctrl.Rotate(dx, dy, h)
		case imgui.IsMouseDragging(imgui.MouseButtonRight), imgui.IsMouseDragging(imgui.MouseButtonMiddle):
			ctrl.Pan(dx, dy, h)
		}
		if wheel := imgui.CurrentIO().MouseWheel(); wheel != 0 {
			ctrl.Dolly(wheel)
		}
	}
	ws.lastMouse[i] = mouse

	tr := s.Tracker()
	if tr.Visible() {
		imgui.SetCursorPos(imgui.NewVec2(origin.X+12, origin.Y+12))
		imgui.TextColored(colorLoading, tr.Label())
		imgui.SetCursorPos(imgui.NewVec2(origin.X+12, origin.Y+34))
		imgui.ProgressBarV(float32(tr.Progress())/100, imgui.NewVec2(avail.X*0.5, 0), fmt.Sprintf("%d%%", tr.Progress()))
	} else if s.State() == viewer.StatePlaceholder {
		imgui.SetCursorPos(imgui.NewVec2(origin.X+12, origin.Y+12))
		imgui.TextColored(colorPlaceholder, "Model unavailable")
	}
}

func (ws *Workstation) renderStatusBar() {
	reg := ws.app.Registry()
	for _, s := range reg.Sessions() {
		imgui.TextColored(stateColor(s.State()), fmt.Sprintf("%s: %s", s.Viewer().Title(), s.State()))
		if imgui.IsItemHovered() {
			res := s.Result()
			tip := fmt.Sprintf("tier %s", res.Tier)
			if s.Asset() != nil {
				tip += fmt.Sprintf(", %d vertices, %s", s.Asset().VertexCount(), s.Asset().Material.Shading)
			}
			for _, err := range res.Failures {
				tip += "\n" + err.Error()
			}
			imgui.SetTooltip(tip)
		}
		imgui.SameLine()
		imgui.TextDisabled("|")
		imgui.SameLine()
	}

	fps := float64(0)
	if ft := ws.app.Loop().FrameTime(); ft > 0 {
		fps = float64(time.Second) / float64(ft)
	}
	imgui.TextDisabled(fmt.Sprintf("%s  |  %.0f FPS", filepath.Base(ws.app.Assets().Root()), fps))
}
