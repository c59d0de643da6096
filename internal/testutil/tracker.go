package testutil

import (
	"sync"
	"time"

	"github.com/julianstephens/walog/internal/walog/catalog"
)

// Tracker records catalog registrations in memory.
type Tracker struct {
	mu          sync.Mutex
	registered  []catalog.Entry
	closed      []string
	registerErr error
}

func NewTracker() *Tracker { return &Tracker{} }

// SetRegisterError makes Register fail with err.
func (tr *Tracker) SetRegisterError(err error) {
	tr.mu.Lock()
	defer tr.mu.Unlock()
	tr.registerErr = err
}

func (tr *Tracker) Register(e catalog.Entry) error {
	tr.mu.Lock()
	defer tr.mu.Unlock()
	if tr.registerErr != nil {
		return tr.registerErr
	}
	tr.registered = append(tr.registered, e)
	return nil
}

func (tr *Tracker) MarkClosed(name string, _ time.Time) error {
	tr.mu.Lock()
	defer tr.mu.Unlock()
	tr.closed = append(tr.closed, name)
	return nil
}

func (tr *Tracker) Registered() []catalog.Entry {
	tr.mu.Lock()
	defer tr.mu.Unlock()
	return append([]catalog.Entry(nil), tr.registered...)
}

func (tr *Tracker) Closed() []string {
	tr.mu.Lock()
	defer tr.mu.Unlock()
	return append([]string(nil), tr.closed...)
}
