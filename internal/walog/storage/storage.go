package storage

import (
	"io"
	"math/rand/v2"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors/oserror"
	"github.com/cockroachdb/pebble/vfs"

	"github.com/julianstephens/walog/internal/logger"
)

// Target is an append-only log destination.
type Target interface {
	io.Writer
	io.Closer
}

// Syncer is the strict durability primitive: data is on stable storage when Sync returns.
type Syncer interface {
	Sync() error
}

// Flusher is the weak durability primitive: data has left the process.
type Flusher interface {
	Flush() error
}

// CreateOptions carries the placement hints for a new target.
type CreateOptions struct {
	// Replication is the requested replica count; 0 means the volume default.
	Replication int
	// BlockSize is the expected size of the log.
	BlockSize int64
	// Preallocate reserves BlockSize bytes at create time.
	Preallocate bool
	// Syncable false creates a target that only offers Flush.
	Syncable bool
}

// VolumeManager creates and opens log targets across one or more roots.
type VolumeManager interface {
	Choose(roots []string) string
	Create(path string, opts CreateOptions) (Target, error)
	Open(path string) (io.ReadCloser, error)
	DefaultReplication(path string) int
}

// FSVolumeManager places targets on a pebble vfs.FS.
type FSVolumeManager struct {
	fs vfs.FS
	lg logger.Logger
}

var _ VolumeManager = (*FSVolumeManager)(nil)

func NewFS(fs vfs.FS, lg logger.Logger) *FSVolumeManager {
	return &FSVolumeManager{fs: fs, lg: logger.Named(lg, "storage")}
}

// NewDisk returns a manager over the local filesystem.
func NewDisk(lg logger.Logger) *FSVolumeManager { return NewFS(vfs.Default, lg) }

// NewMem returns a manager over a fresh in-memory filesystem.
func NewMem(lg logger.Logger) *FSVolumeManager { return NewFS(vfs.NewMem(), lg) }

// Choose picks a root uniformly at random.
func (m *FSVolumeManager) Choose(roots []string) string {
	switch len(roots) {
	case 0:
		return ""
	case 1:
		return roots[0]
	}
	return roots[rand.IntN(len(roots))] //nolint:gosec
}

// DefaultReplication is 1: a local filesystem keeps a single copy.
func (m *FSVolumeManager) DefaultReplication(string) int { return 1 }

func (m *FSVolumeManager) Create(path string, opts CreateOptions) (Target, error) {
	if err := m.fs.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, wrapStorageErr("create", ErrCreate, path, err)
	}
	f, err := m.fs.Create(path)
	if err != nil {
		return nil, wrapStorageErr("create", ErrCreate, path, err)
	}
	if opts.Preallocate && opts.BlockSize > 0 {
		if err := f.Preallocate(0, opts.BlockSize); err != nil {
			_ = f.Close()
			return nil, wrapStorageErr("preallocate", ErrCreate, path, err)
		}
	}
	if opts.Replication > 1 {
		m.lg.Debug("replication hint ignored on local volume", "path", path, "replication", opts.Replication)
	}
	if !opts.Syncable {
		return &flushOnlyTarget{f: f}, nil
	}
	return f, nil
}

func (m *FSVolumeManager) Open(path string) (io.ReadCloser, error) {
	f, err := m.fs.Open(path)
	if err != nil {
		return nil, wrapStorageErr("open", ErrOpen, path, err)
	}
	return f, nil
}

// List returns the log files found under dir.
func (m *FSVolumeManager) List(dir string) ([]string, error) {
	names, err := m.fs.List(dir)
	if err != nil {
		if oserror.IsNotExist(err) {
			return nil, nil
		}
		return nil, wrapStorageErr("list", ErrOpen, dir, err)
	}
	return names, nil
}

// flushOnlyTarget hides Sync so the writer falls back to the weak primitive.
type flushOnlyTarget struct {
	f vfs.File
}

func (t *flushOnlyTarget) Write(p []byte) (int, error) { return t.f.Write(p) }
func (t *flushOnlyTarget) Close() error                { return t.f.Close() }

// Flush hands buffered data to the operating system. Writes are unbuffered on
// a local file, so this only forwards to files that buffer themselves.
func (t *flushOnlyTarget) Flush() error {
	if fl, ok := t.f.(Flusher); ok {
		return fl.Flush()
	}
	return nil
}

// LoggerDir is the directory name a server address is stored under.
func LoggerDir(address string) string {
	return strings.ReplaceAll(address, ":", "+")
}

// LogPath is root/<logger dir>/name.
func LogPath(root, address, name string) string {
	return filepath.Join(root, LoggerDir(address), name)
}

// AddressFromPath recovers the server address from a log path.
func AddressFromPath(path string) string {
	return strings.ReplaceAll(filepath.Base(filepath.Dir(path)), "+", ":")
}
