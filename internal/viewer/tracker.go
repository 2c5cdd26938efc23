package viewer

// LoadingLabel returns the overlay text shown while a view loads.
func LoadingLabel(v ViewerType) string {
	switch v {
	case CBCT:
		return "Loading CBCT model..."
	case FaceScan:
		return "Loading 3dMD scan..."
	case Reconstruction:
		return "Loading IQ-HFM model..."
	default:
		return "Loading..."
	}
}

// Tracker is the loading overlay of one view. There is at most one overlay;
// raising again replaces a stale one.
type Tracker struct {
	label    string
	visible  bool
	progress int
}

// NewTracker creates the tracker for a view.
func NewTracker(v ViewerType) *Tracker {
	return &Tracker{label: LoadingLabel(v)}
}

// Raise shows the overlay with progress reset to zero.
func (t *Tracker) Raise() {
	t.Clear()
	t.visible = true
	t.progress = 0
}

// Clear hides the overlay. It reports false when there was nothing to clear,
// so a second Clear for the same load is a no-op.
func (t *Tracker) Clear() bool {
	if !t.visible {
		return false
	}
	t.visible = false
	t.progress = 100
	return true
}

// SetProgress records byte progress as a percentage. Unknown totals keep
// the current value.
func (t *Tracker) SetProgress(loaded, total int64) {
	if !t.visible || total <= 0 {
		return
	}
	p := int(loaded * 100 / total)
	if p < 0 {
		p = 0
	}
	if p > 100 {
		p = 100
	}
	t.progress = p
}

// Visible reports whether the overlay is shown.
func (t *Tracker) Visible() bool { return t.visible }

// Label returns the overlay text.
func (t *Tracker) Label() string { return t.label }

// Progress returns the last recorded percentage.
func (t *Tracker) Progress() int { return t.progress }
