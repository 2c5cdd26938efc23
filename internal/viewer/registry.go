package viewer

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/Faultbox/iqhfm-eval/internal/engine/debug"
	"github.com/Faultbox/iqhfm-eval/internal/logger"
)

// ErrSnapshotsDisabled is returned by Snapshot when no writer is set.
var ErrSnapshotsDisabled = errors.New("snapshots disabled")

const (
	resultBuffer   = 16
	progressBuffer = 64
	commandBuffer  = 32
)

// Registry owns the three sessions and the case assignment. Its methods,
// except Submit, must be called from the loop goroutine.
type Registry struct {
	loader    *Loader
	sessions  [Count]*Session
	cases     []string
	index     int
	announced bool
	requests  int

	results  chan Result
	progress chan progressMsg
	commands chan Command

	listeners []Listener
	snapshots *debug.SnapshotWriter

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewRegistry creates sessions over the given surfaces, one per view.
func NewRegistry(loader *Loader, surfaces [Count]Surface, cfg SessionConfig, cases []string) *Registry {
	ctx, cancel := context.WithCancel(context.Background())
	r := &Registry{
		loader:   loader,
		cases:    cases,
		index:    -1,
		results:  make(chan Result, resultBuffer),
		progress: make(chan progressMsg, progressBuffer),
		commands: make(chan Command, commandBuffer),
		ctx:      ctx,
		cancel:   cancel,
	}
	for _, v := range Types() {
		r.sessions[v] = NewSession(v, loader.profiles[v], surfaces[v], cfg)
	}
	return r
}

// Subscribe adds an event listener.
func (r *Registry) Subscribe(l Listener) {
	r.listeners = append(r.listeners, l)
}

// SetSnapshotWriter enables Snapshot.
func (r *Registry) SetSnapshotWriter(w *debug.SnapshotWriter) {
	r.snapshots = w
}

func (r *Registry) emit(e Event) {
	for _, l := range r.listeners {
		l(e)
	}
}

// Session returns the session for a view.
func (r *Registry) Session(v ViewerType) *Session {
	return r.sessions[v]
}

// Sessions returns all sessions indexed by view.
func (r *Registry) Sessions() [Count]*Session {
	return r.sessions
}

// Cases returns the case assignment.
func (r *Registry) Cases() []string {
	return r.cases
}

// Index returns the current assignment index, -1 before the first load.
func (r *Registry) Index() int {
	return r.index
}

// CaseID returns the current case, empty before the first load.
func (r *Registry) CaseID() string {
	if r.index < 0 || r.index >= len(r.cases) {
		return ""
	}
	return r.cases[r.index]
}

// Requests returns the number of load requests issued so far.
func (r *Registry) Requests() int {
	return r.requests
}

// CaseLoaded reports whether every session reached a terminal state for
// the current case.
func (r *Registry) CaseLoaded() bool {
	if r.index < 0 {
		return false
	}
	for _, s := range r.sessions {
		if !s.State().Terminal() {
			return false
		}
	}
	return true
}

// LoadCase switches all sessions to the case at index. Each session drops
// its model before its request is issued; loads run on worker goroutines.
func (r *Registry) LoadCase(index int) error {
	if index < 0 || index >= len(r.cases) {
		return fmt.Errorf("%w: %d of %d", ErrCaseIndex, index, len(r.cases))
	}
	r.index = index
	r.announced = false
	caseID := r.cases[index]
	logger.Info("loading case", zap.String("case", caseID), zap.Int("index", index))

	for _, s := range r.sessions {
		ctx, gen := s.Begin(r.ctx, caseID)
		req := r.loader.Request(caseID, s.Viewer(), gen)
		r.emit(Event{Type: EventLoading, Case: caseID, Index: index, Viewer: s.Viewer().Tag(), State: StateLoading.String()})
		r.spawn(ctx, req)
	}
	return nil
}

func (r *Registry) spawn(ctx context.Context, req LoadRequest) {
	r.requests++
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		report := func(loaded, total int64) {
			select {
			case r.progress <- progressMsg{viewer: req.Viewer, generation: req.Generation, loaded: loaded, total: total}:
			default:
			}
		}
		res := r.loader.Load(ctx, req, report)
		select {
		case r.results <- res:
		case <-r.ctx.Done():
		}
	}()
}

// Next loads the following case, wrapping around.
func (r *Registry) Next() error {
	if len(r.cases) == 0 {
		return ErrCaseIndex
	}
	return r.LoadCase((r.index + 1) % len(r.cases))
}

// Prev loads the preceding case, wrapping around.
func (r *Registry) Prev() error {
	if len(r.cases) == 0 {
		return ErrCaseIndex
	}
	i := r.index - 1
	if i < 0 {
		i = len(r.cases) - 1
	}
	return r.LoadCase(i)
}

// OnResize lays the three views out side by side in a width x height area.
func (r *Registry) OnResize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	for i, s := range r.sessions {
		s.Resize(ViewWidth(width, i), height)
	}
}

// ViewWidth is the width of view i when width is split into Count columns.
// The last view takes the remainder.
func ViewWidth(width, i int) int {
	w := width / Count
	if i == Count-1 {
		return width - w*(Count-1)
	}
	return w
}

// Submit queues a command for the loop goroutine. Safe for concurrent use.
func (r *Registry) Submit(cmd Command) error {
	select {
	case r.commands <- cmd:
		return nil
	default:
		return ErrQueueFull
	}
}

// Execute runs a command immediately.
func (r *Registry) Execute(cmd Command) error {
	switch cmd.Type {
	case CommandLoadCase:
		return r.LoadCase(cmd.Index)
	case CommandNext:
		return r.Next()
	case CommandPrev:
		return r.Prev()
	case CommandResize:
		r.OnResize(cmd.Width, cmd.Height)
		return nil
	case CommandSnapshot:
		_, err := r.Snapshot()
		return err
	default:
		return fmt.Errorf("%w: %q", ErrUnknownCommand, cmd.Type)
	}
}

// Drain consumes pending commands, progress and results without blocking.
func (r *Registry) Drain() {
	for {
		select {
		case cmd := <-r.commands:
			if err := r.Execute(cmd); err != nil {
				logger.Warn("command failed", zap.String("command", string(cmd.Type)), zap.Error(err))
			}
		case p := <-r.progress:
			s := r.sessions[p.viewer]
			before := s.Tracker().Progress()
			s.Progress(p.generation, p.loaded, p.total)
			if pct := s.Tracker().Progress(); pct != before && s.Tracker().Visible() {
				logger.Viewer(p.viewer.Tag()).Debug("loading", zap.Int64("loaded", p.loaded), zap.Int64("total", p.total))
				r.emit(Event{Type: EventLoading, Case: s.CaseID(), Index: r.index, Viewer: p.viewer.Tag(), State: s.State().String(), Progress: pct})
			}
		case res := <-r.results:
			r.complete(res)
		default:
			return
		}
	}
}

func (r *Registry) complete(res Result) {
	s := r.sessions[res.Request.Viewer]
	applied, err := s.Complete(res)
	if err != nil {
		logger.Error("completing load", zap.String("viewer", res.Request.Viewer.Tag()), zap.Error(err))
	}
	if !applied {
		return
	}
	r.emit(Event{Type: EventLoading, Case: s.CaseID(), Index: r.index, Viewer: s.Viewer().Tag(), State: s.State().String(), Progress: 100})

	if r.announced || !r.CaseLoaded() {
		return
	}
	r.announced = true
	ev := Event{Type: EventCaseLoaded, Case: r.CaseID(), Index: r.index, Viewers: map[string]ViewerStatus{}}
	for _, s := range r.sessions {
		res := s.Result()
		ev.Viewers[s.Viewer().Tag()] = ViewerStatus{
			State:    s.State().String(),
			Tier:     res.Tier.String(),
			Asset:    res.Asset.Name,
			Failures: len(res.Failures),
		}
	}
	logger.Info("case loaded", zap.String("case", ev.Case), zap.Int("index", ev.Index))
	r.emit(ev)
}

// Update advances every orbit controller.
func (r *Registry) Update() {
	for _, s := range r.sessions {
		s.Update()
	}
}

// Draw redraws every session.
func (r *Registry) Draw() {
	for _, s := range r.sessions {
		s.Draw()
	}
}

// Snapshot writes the last frame of each view and returns the written
// paths. Views that fail are skipped; the first error is returned.
func (r *Registry) Snapshot() ([]string, error) {
	if r.snapshots == nil {
		return nil, ErrSnapshotsDisabled
	}
	caseID := r.CaseID()
	if caseID == "" {
		caseID = "none"
	}

	var files []string
	var firstErr error
	for _, s := range r.sessions {
		img, err := s.Snapshot()
		if err == nil {
			var path string
			path, err = r.snapshots.Write(caseID, s.Viewer().Tag(), img)
			if err == nil {
				files = append(files, path)
				continue
			}
		}
		logger.Viewer(s.Viewer().Tag()).Warn("snapshot failed", zap.Error(err))
		if firstErr == nil {
			firstErr = err
		}
	}

	ev := Event{Type: EventSnapshot, Case: caseID, Index: r.index, Files: files}
	if firstErr != nil {
		ev.Error = firstErr.Error()
	}
	r.emit(ev)
	return files, firstErr
}

// Close stops workers and frees every session.
func (r *Registry) Close() {
	r.cancel()
	r.wg.Wait()
	for _, s := range r.sessions {
		s.Close()
	}
}
