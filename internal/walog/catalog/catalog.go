// Package catalog records which write-ahead logs a server has created and
// whether each one is still open. Entries live in a small pebble store so a
// restarting server can find the logs it must replay.
package catalog

import (
	"bytes"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/cockroachdb/pebble"
	"github.com/cockroachdb/pebble/vfs"
	"github.com/julianstephens/go-utils/jsonutil"

	"github.com/julianstephens/walog/internal/logger"
)

// State is the lifecycle state of a cataloged log.
type State string

const (
	StateOpen   State = "open"
	StateClosed State = "closed"
)

var keyPrefix = []byte("log/")

// Entry describes one log file.
type Entry struct {
	Name        string     `json:"name"`
	Path        string     `json:"path"`
	Address     string     `json:"address"`
	State       State      `json:"state"`
	OpenedAt    time.Time  `json:"opened_at"`
	ClosedAt    *time.Time `json:"closed_at,omitempty"`
	Compression string     `json:"compression,omitempty"`
	Crypto      string     `json:"crypto"`
	Sync        string     `json:"sync"`
}

// Catalog is a pebble-backed index of log entries. It is safe for concurrent use.
type Catalog struct {
	mu     sync.Mutex
	db     *pebble.DB
	lg     logger.Logger
	closed bool
}

// Open opens (creating if needed) the catalog stored in dir on fs.
// A nil fs means the local filesystem.
func Open(dir string, fs vfs.FS, lg logger.Logger) (*Catalog, error) {
	if fs == nil {
		fs = vfs.Default
	}
	lg = logger.Named(lg, "catalog")

	db, err := pebble.Open(dir, &pebble.Options{FS: fs, Logger: pebbleLogger{lg: lg}})
	if err != nil {
		return nil, &CatalogError{Kind: CatalogErrorKindOpen, Err: err}
	}
	lg.Debug("catalog opened", "dir", dir)
	return &Catalog{db: db, lg: lg}, nil
}

// Register stores e as a newly opened log. Registering an existing name fails.
func (c *Catalog) Register(e Entry) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return &CatalogError{Kind: CatalogErrorKindClosed, Name: e.Name}
	}
	if e.Name == "" {
		return &CatalogError{Kind: CatalogErrorKindInvalid, Err: fmt.Errorf("entry has no name")}
	}
	if _, err := c.get(e.Name); err == nil {
		return &CatalogError{Kind: CatalogErrorKindExists, Name: e.Name}
	}

	if e.State == "" {
		e.State = StateOpen
	}
	if e.OpenedAt.IsZero() {
		e.OpenedAt = time.Now().UTC()
	}
	return c.put(e)
}

// MarkClosed records that the named log was closed at the given time.
func (c *Catalog) MarkClosed(name string, at time.Time) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return &CatalogError{Kind: CatalogErrorKindClosed, Name: name}
	}
	e, err := c.get(name)
	if err != nil {
		return err
	}
	at = at.UTC()
	e.State = StateClosed
	e.ClosedAt = &at
	return c.put(e)
}

// Remove deletes the named entry. Removing a missing entry is not an error.
func (c *Catalog) Remove(name string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return &CatalogError{Kind: CatalogErrorKindClosed, Name: name}
	}
	if err := c.db.Delete(key(name), pebble.Sync); err != nil {
		return &CatalogError{Kind: CatalogErrorKindWrite, Name: name, Err: err}
	}
	return nil
}

// Get returns the named entry.
func (c *Catalog) Get(name string) (Entry, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return Entry{}, &CatalogError{Kind: CatalogErrorKindClosed, Name: name}
	}
	return c.get(name)
}

// List returns every entry ordered by name.
func (c *Catalog) List() ([]Entry, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil, &CatalogError{Kind: CatalogErrorKindClosed}
	}

	it, err := c.db.NewIter(&pebble.IterOptions{
		LowerBound: keyPrefix,
		UpperBound: prefixEnd(keyPrefix),
	})
	if err != nil {
		return nil, &CatalogError{Kind: CatalogErrorKindRead, Err: err}
	}

	var out []Entry
	for valid := it.First(); valid; valid = it.Next() {
		var e Entry
		if err := jsonutil.UnmarshalStrict(it.Value(), &e); err != nil {
			_ = it.Close()
			return nil, &CatalogError{
				Kind: CatalogErrorKindDecode,
				Name: string(bytes.TrimPrefix(it.Key(), keyPrefix)),
				Err:  err,
			}
		}
		out = append(out, e)
	}
	if err := it.Close(); err != nil {
		return nil, &CatalogError{Kind: CatalogErrorKindRead, Err: err}
	}
	return out, nil
}

// OpenLogs returns the entries still in the open state.
func (c *Catalog) OpenLogs() ([]Entry, error) {
	all, err := c.List()
	if err != nil {
		return nil, err
	}
	open := all[:0]
	for _, e := range all {
		if e.State == StateOpen {
			open = append(open, e)
		}
	}
	return open, nil
}

// Close releases the underlying store. Calling Close more than once is a no-op.
func (c *Catalog) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}
	c.closed = true
	if err := c.db.Close(); err != nil {
		return &CatalogError{Kind: CatalogErrorKindClose, Err: err}
	}
	return nil
}

func (c *Catalog) get(name string) (Entry, error) {
	val, closer, err := c.db.Get(key(name))
	if err != nil {
		if err == pebble.ErrNotFound {
			return Entry{}, &CatalogError{Kind: CatalogErrorKindNotFound, Name: name}
		}
		return Entry{}, &CatalogError{Kind: CatalogErrorKindRead, Name: name, Err: err}
	}
	defer func() { _ = closer.Close() }()

	var e Entry
	if err := jsonutil.UnmarshalStrict(val, &e); err != nil {
		return Entry{}, &CatalogError{Kind: CatalogErrorKindDecode, Name: name, Err: err}
	}
	return e, nil
}

func (c *Catalog) put(e Entry) error {
	data, err := jsonutil.Marshal(e)
	if err != nil {
		return &CatalogError{Kind: CatalogErrorKindEncode, Name: e.Name, Err: err}
	}
	if err := c.db.Set(key(e.Name), data, pebble.Sync); err != nil {
		return &CatalogError{Kind: CatalogErrorKindWrite, Name: e.Name, Err: err}
	}
	return nil
}

func key(name string) []byte {
	return append(append([]byte(nil), keyPrefix...), name...)
}

// prefixEnd returns the smallest key greater than every key with prefix p.
func prefixEnd(p []byte) []byte {
	end := append([]byte(nil), p...)
	for i := len(end) - 1; i >= 0; i-- {
		end[i]++
		if end[i] != 0 {
			return end[:i+1]
		}
	}
	return nil
}

// pebbleLogger routes pebble's internal messages through the walog logger.
type pebbleLogger struct {
	lg logger.Logger
}

func (p pebbleLogger) Infof(format string, args ...interface{}) {
	p.lg.Debug(fmt.Sprintf(format, args...))
}

func (p pebbleLogger) Fatalf(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	p.lg.Error("pebble fatal", fmt.Errorf("%s", msg))
	os.Exit(1)
}
