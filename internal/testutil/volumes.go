package testutil

import (
	"bytes"
	"io"
	"sync"

	"github.com/julianstephens/walog/internal/walog/storage"
)

// CreateCall records the arguments of one VolumeManager.Create call.
type CreateCall struct {
	Path string
	Opts storage.CreateOptions
}

// Volumes is an in-memory storage.VolumeManager. Syncable creates return a
// *RecordingTarget, non-syncable ones a *FlushOnlyTarget; NewTarget overrides both.
type Volumes struct {
	// NewTarget, when set, builds the target for each Create.
	NewTarget func(path string, opts storage.CreateOptions) storage.Target

	mu          sync.Mutex
	calls       []CreateCall
	targets     map[string]storage.Target
	createErr   error
	replication int
}

func NewVolumes() *Volumes {
	return &Volumes{targets: make(map[string]storage.Target), replication: 3}
}

// SetCreateError makes every Create fail with err.
func (v *Volumes) SetCreateError(err error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.createErr = err
}

// Choose always picks the first root.
func (v *Volumes) Choose(roots []string) string {
	if len(roots) == 0 {
		return ""
	}
	return roots[0]
}

func (v *Volumes) DefaultReplication(string) int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.replication
}

func (v *Volumes) Create(path string, opts storage.CreateOptions) (storage.Target, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.calls = append(v.calls, CreateCall{Path: path, Opts: opts})
	if v.createErr != nil {
		return nil, v.createErr
	}

	var t storage.Target
	switch {
	case v.NewTarget != nil:
		t = v.NewTarget(path, opts)
	case opts.Syncable:
		t = NewRecordingTarget()
	default:
		t = NewFlushOnlyTarget()
	}
	v.targets[path] = t
	return t, nil
}

// Open returns the bytes written so far to the target created at path.
func (v *Volumes) Open(path string) (io.ReadCloser, error) {
	v.mu.Lock()
	t, ok := v.targets[path]
	v.mu.Unlock()
	if !ok {
		return nil, NewError("no target at " + path)
	}
	b, ok := t.(interface{ Bytes() []byte })
	if !ok {
		return nil, NewError("target at " + path + " cannot be read back")
	}
	return io.NopCloser(bytes.NewReader(b.Bytes())), nil
}

// Target returns the target created at path, or nil.
func (v *Volumes) Target(path string) storage.Target {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.targets[path]
}

// Calls returns every Create call in order.
func (v *Volumes) Calls() []CreateCall {
	v.mu.Lock()
	defer v.mu.Unlock()
	return append([]CreateCall(nil), v.calls...)
}

var _ storage.VolumeManager = (*Volumes)(nil)
