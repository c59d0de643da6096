package testutil

import (
	"bytes"
	"sync"
)

// RecordingTarget is an in-memory storage target that records every call.
// It offers Write, Sync and Close.
type RecordingTarget struct {
	mu     sync.Mutex
	buf    bytes.Buffer
	calls  []string
	writes int
	syncs  int
	closed bool

	failWriteAt int // -1 means no failure
	writeErr    error
	syncErr     error
	closeErr    error
	onSync      func()
}

// NewRecordingTarget creates an empty target with no failures configured.
func NewRecordingTarget() *RecordingTarget {
	return &RecordingTarget{failWriteAt: -1}
}

// SetFailOnWrite makes the write with the given zero-based index, and every
// later one, fail with err.
func (t *RecordingTarget) SetFailOnWrite(index int, err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.failWriteAt, t.writeErr = index, err
}

// SetSyncError makes every Sync fail with err until reset with nil.
func (t *RecordingTarget) SetSyncError(err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.syncErr = err
}

// SetCloseError makes Close fail with err.
func (t *RecordingTarget) SetCloseError(err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.closeErr = err
}

// SetOnSync installs a hook that runs at the start of every Sync, outside the
// target's lock. Tests use it to hold the engine inside a sync.
func (t *RecordingTarget) SetOnSync(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onSync = fn
}

func (t *RecordingTarget) Write(p []byte) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	idx := t.writes
	t.writes++
	t.calls = append(t.calls, "Write")
	if t.failWriteAt >= 0 && idx >= t.failWriteAt {
		return 0, t.writeErr
	}
	return t.buf.Write(p)
}

func (t *RecordingTarget) Sync() error {
	t.mu.Lock()
	hook := t.onSync
	t.mu.Unlock()

	if hook != nil {
		hook()
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	t.syncs++
	t.calls = append(t.calls, "Sync")
	return t.syncErr
}

func (t *RecordingTarget) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.closed = true
	t.calls = append(t.calls, "Close")
	return t.closeErr
}

// Bytes returns a copy of everything written so far.
func (t *RecordingTarget) Bytes() []byte {
	t.mu.Lock()
	defer t.mu.Unlock()
	return bytes.Clone(t.buf.Bytes())
}

// Syncs is the number of Sync calls, including failed ones.
func (t *RecordingTarget) Syncs() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.syncs
}

func (t *RecordingTarget) Closed() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.closed
}

// Calls returns the recorded method names in call order.
func (t *RecordingTarget) Calls() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]string(nil), t.calls...)
}

// FlushOnlyTarget wraps a RecordingTarget without Sync, so the writer can
// only negotiate the weak durability primitive.
type FlushOnlyTarget struct {
	Recorder *RecordingTarget

	mu      sync.Mutex
	flushes int
}

func NewFlushOnlyTarget() *FlushOnlyTarget {
	return &FlushOnlyTarget{Recorder: NewRecordingTarget()}
}

func (t *FlushOnlyTarget) Write(p []byte) (int, error) { return t.Recorder.Write(p) }
func (t *FlushOnlyTarget) Close() error                { return t.Recorder.Close() }

func (t *FlushOnlyTarget) Flush() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.flushes++
	return nil
}

func (t *FlushOnlyTarget) Flushes() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.flushes
}

func (t *FlushOnlyTarget) Bytes() []byte { return t.Recorder.Bytes() }

// WriteOnlyTarget offers neither Sync nor Flush.
type WriteOnlyTarget struct {
	bytes.Buffer
	closed bool
}

func (t *WriteOnlyTarget) Close() error {
	t.closed = true
	return nil
}

func (t *WriteOnlyTarget) Closed() bool { return t.closed }
