// Package assets locates per-case model files and the shared material on
// disk, streams them with progress, and caches decoded textures.
package assets

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
)

// Asset errors.
var (
	ErrNotFound           = errors.New("asset not found")
	ErrMaterialUnresolved = errors.New("material unresolved")
)

// DefaultMaterialFile is the material library shared by all face scans.
const DefaultMaterialFile = "aligned_model.mtl"

// ProgressFunc receives byte counts while a file is read.
// total is -1 when the size is unknown.
type ProgressFunc func(loaded, total int64)

// Manager resolves asset paths under a models directory.
type Manager struct {
	root         string
	materialFile string
	cache        *Cache
	mu           sync.RWMutex
}

// NewManager creates a manager for the models directory root.
func NewManager(root, materialFile string) *Manager {
	if materialFile == "" {
		materialFile = DefaultMaterialFile
	}
	return &Manager{
		root:         root,
		materialFile: materialFile,
		cache:        NewCache(),
	}
}

// Root returns the models directory.
func (m *Manager) Root() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.root
}

// SetRoot switches to another models directory and drops cached textures.
func (m *Manager) SetRoot(root string) {
	m.mu.Lock()
	m.root = root
	m.mu.Unlock()
	m.cache.Clear()
}

// Cache returns the texture cache.
func (m *Manager) Cache() *Cache {
	return m.cache
}

// Path returns the file path of a case asset: {root}/{caseID}_{tag}{ext}.
func (m *Manager) Path(caseID, tag, ext string) string {
	return filepath.Join(m.Root(), fmt.Sprintf("%s_%s%s", caseID, tag, ext))
}

// MaterialPath returns the shared material library path.
func (m *Manager) MaterialPath() string {
	return filepath.Join(m.Root(), m.materialFile)
}

// Exists reports whether path names a regular file.
func (m *Manager) Exists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

// Open opens path for streaming. Reads fail with the context's error once
// ctx is done, and report progress when progress is non-nil.
func (m *Manager) Open(ctx context.Context, path string, progress ProgressFunc) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, filepath.Base(path))
		}
		return nil, err
	}

	total := int64(-1)
	if info, err := f.Stat(); err == nil {
		if info.IsDir() {
			f.Close()
			return nil, fmt.Errorf("%w: %s is a directory", ErrNotFound, filepath.Base(path))
		}
		total = info.Size()
	}

	var r io.Reader = &ctxReader{ctx: ctx, r: f}
	if progress != nil {
		progress(0, total)
		r = &progressReader{r: r, total: total, report: progress, lastPercent: -1}
	}
	return &readCloser{Reader: r, Closer: f}, nil
}

type readCloser struct {
	io.Reader
	io.Closer
}
