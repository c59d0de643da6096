// Package wal implements the tablet-server write-ahead log: a single
// append-only file per Log, written by one group-commit goroutine that turns
// any number of concurrent appends into one flush and one sync per batch.
package wal

import (
	"bufio"
	"context"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/julianstephens/walog/internal/logger"
	"github.com/julianstephens/walog/internal/walog/catalog"
	"github.com/julianstephens/walog/internal/walog/compress"
	"github.com/julianstephens/walog/internal/walog/crypto"
	"github.com/julianstephens/walog/internal/walog/header"
	"github.com/julianstephens/walog/internal/walog/record"
	"github.com/julianstephens/walog/internal/walog/storage"
)

const writeBufferSize = 64 << 10 // 64KiB

type state uint8

const (
	stateUnopened state = iota
	stateOpening
	stateOpen
	stateClosing
	stateClosed
)

func (s state) String() string {
	switch s {
	case stateUnopened:
		return "unopened"
	case stateOpening:
		return "opening"
	case stateOpen:
		return "open"
	case stateClosing:
		return "closing"
	case stateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// Log is one write-ahead log file.
type Log struct {
	opts   Options
	lg     logger.Logger
	codec  compress.Codec
	module crypto.Module

	// mu orders the closed check and the enqueue against Close. It is never
	// held across storage calls.
	mu    sync.Mutex
	state state
	queue *workQueue

	// opening is closed when the Open in progress finishes.
	opening chan struct{}

	name    string
	path    string
	address string

	// owned by the engine goroutine once Open returns
	target     storage.Target
	counter    *countingWriter
	bw         *bufio.Writer
	out        io.Writer
	durability storage.Durability

	engineDone chan struct{}
	closed     chan struct{}
	closeErr   error
}

// New prepares a Log from opts. Nothing touches storage until Open.
func New(opts Options) (*Log, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}

	codec, err := opts.Config.Codec()
	if err != nil {
		return nil, wrapLogErr("options", ErrInvalidOptions, "", err)
	}
	module := opts.Crypto
	if module == nil {
		module, _, err = opts.Config.Crypto()
		if err != nil {
			return nil, wrapLogErr("options", ErrInvalidOptions, "", err)
		}
	}

	return &Log{
		opts:       opts,
		lg:         logger.Named(opts.Logger, "wal"),
		codec:      codec,
		module:     module,
		queue:      newWorkQueue(),
		engineDone: make(chan struct{}),
		closed:     make(chan struct{}),
	}, nil
}

// Open creates a uniquely named log file for the server at address, writes
// the header and a synced Open record, then starts the commit engine. On
// failure the partially created file is closed, no goroutine is started and
// the log may be opened again.
func (l *Log) Open(ctx context.Context, address string) error {
	l.mu.Lock()
	switch l.state {
	case stateUnopened:
	case stateOpening, stateOpen:
		path := l.path
		l.mu.Unlock()
		return wrapLogErr("open", ErrAlreadyOpen, path, nil)
	default:
		path := l.path
		l.mu.Unlock()
		return wrapLogErr("open", ErrLogClosed, path, nil)
	}
	if err := ctx.Err(); err != nil {
		l.mu.Unlock()
		return wrapLogErr("open", ErrCreateFailed, "", err)
	}
	l.state = stateOpening
	done := make(chan struct{})
	l.opening = done
	l.mu.Unlock()

	err := l.open(ctx, address)

	l.mu.Lock()
	if err != nil {
		l.state = stateUnopened
	} else {
		l.state = stateOpen
	}
	l.opening = nil
	l.mu.Unlock()
	close(done)

	if err != nil {
		return err
	}
	go l.run()
	return nil
}

func (l *Log) open(ctx context.Context, address string) error {
	cfg := l.opts.Config
	name := uuid.NewString()
	path := storage.LogPath(l.opts.Volumes.Choose(cfg.Dirs), address, name)

	replication := cfg.Replication
	if replication == 0 {
		replication = l.opts.Volumes.DefaultReplication(path)
	}
	createOpts := storage.CreateOptions{
		Replication: replication,
		BlockSize:   cfg.EffectiveBlockSize(),
		Preallocate: cfg.Preallocate,
		Syncable:    cfg.Sync,
	}
	l.lg.Debug("creating log", "path", path, "replication", replication, "block_size", createOpts.BlockSize, "preallocate", cfg.Preallocate, "sync", cfg.Sync)

	target, err := l.opts.Volumes.Create(path, createOpts)
	if err != nil {
		l.lg.Error("failed to create log", err, "path", path)
		return wrapLogErr("create", ErrCreateFailed, path, err)
	}

	durability, err := l.setup(ctx, target, name, path, address)
	if err != nil {
		if cerr := target.Close(); cerr != nil {
			l.lg.Warn("failed to close partially opened log", "path", path, "error", cerr)
		}
		l.lg.Error("failed to open log", err, "path", path)
		return err
	}

	l.lg.Info("log opened",
		"path", path,
		"sync", durability.Kind.String(),
		"crypto", l.module.Identity(),
		"compression", codecName(l.codec),
	)
	return nil
}

func (l *Log) setup(ctx context.Context, target storage.Target, name, path, address string) (storage.Durability, error) {
	durability, err := storage.NegotiateSync(target)
	if err != nil {
		return storage.Durability{}, wrapLogErr("open", ErrSyncCapability, path, err)
	}

	counter := &countingWriter{w: target}
	bw := bufio.NewWriterSize(counter, writeBufferSize)
	out, err := header.Write(bw, l.module, l.codec)
	if err != nil {
		return storage.Durability{}, wrapLogErr("header", ErrHeaderWrite, path, err)
	}

	buf, err := l.encode(&record.OpenEvent{SessionID: name, Filename: name})
	if err != nil {
		return storage.Durability{}, wrapLogErr("open", ErrOpenRecord, path, err)
	}
	if _, err := out.Write(buf); err != nil {
		return storage.Durability{}, wrapLogErr("open", ErrOpenRecord, path, err)
	}
	if err := bw.Flush(); err != nil {
		return storage.Durability{}, wrapLogErr("flush", ErrOpenRecord, path, err)
	}
	if err := durability.Sync(); err != nil {
		return storage.Durability{}, wrapLogErr("sync", ErrOpenRecord, path, err)
	}

	if err := ctx.Err(); err != nil {
		return storage.Durability{}, wrapLogErr("open", ErrCreateFailed, path, err)
	}

	if l.opts.Tracker != nil {
		entry := catalog.Entry{
			Name:        name,
			Path:        path,
			Address:     address,
			State:       catalog.StateOpen,
			OpenedAt:    time.Now().UTC(),
			Compression: codecName(l.codec),
			Crypto:      l.module.Identity(),
			Sync:        durability.Kind.String(),
		}
		if err := l.opts.Tracker.Register(entry); err != nil {
			return storage.Durability{}, wrapLogErr("register", ErrRegisterFailed, path, err)
		}
	}

	l.mu.Lock()
	l.name, l.path, l.address = name, path, address
	l.target, l.counter, l.bw, l.out = target, counter, bw, out
	l.durability = durability
	l.mu.Unlock()
	return durability, nil
}

// DefineTablet records that tid identifies extent from seq onward.
func (l *Log) DefineTablet(seq uint64, tid uint32, extent record.Extent) (*Operation, error) {
	return l.enqueue(&record.DefineTabletEvent{Seq: seq, TabletID: tid, Extent: extent})
}

// Log records a single mutation for one tablet.
func (l *Log) Log(seq uint64, tid uint32, m record.Mutation) (*Operation, error) {
	return l.LogManyTablets([]record.TabletMutations{{TabletID: tid, Seq: seq, Mutations: []record.Mutation{m}}})
}

// LogManyTablets records the mutations of several tablets as one work item.
// Records are written in the order given.
func (l *Log) LogManyTablets(batch []record.TabletMutations) (*Operation, error) {
	events := make([]record.Event, 0, len(batch))
	for _, tm := range batch {
		events = append(events, &record.ManyMutationsEvent{Seq: tm.Seq, TabletID: tm.TabletID, Mutations: tm.Mutations})
	}
	return l.enqueue(events...)
}

func (l *Log) MinorCompactionStarted(seq uint64, tid uint32, fileName string) (*Operation, error) {
	return l.enqueue(&record.CompactionStartEvent{Seq: seq, TabletID: tid, FileName: fileName})
}

func (l *Log) MinorCompactionFinished(seq uint64, tid uint32) (*Operation, error) {
	return l.enqueue(&record.CompactionFinishEvent{Seq: seq, TabletID: tid})
}

// enqueue serializes events on the calling goroutine and hands the result to
// the engine. An encode failure is not returned here; it is delivered by Await.
func (l *Log) enqueue(events ...record.Event) (*Operation, error) {
	it := &item{op: newOperation()}
	it.buf, it.err = l.encode(events...)

	l.mu.Lock()
	switch l.state {
	case stateOpen:
	case stateUnopened, stateOpening:
		l.mu.Unlock()
		return nil, wrapLogErr("append", ErrNotOpen, "", nil)
	default:
		path := l.path
		l.mu.Unlock()
		l.opts.Metrics.ObserveClosedRejection()
		return nil, wrapLogErr("append", ErrLogClosed, path, nil)
	}
	if it.err != nil {
		it.err = wrapLogErr("encode", ErrEncodeFailed, l.path, it.err)
	}
	l.queue.push(it)
	l.mu.Unlock()

	for _, ev := range events {
		l.opts.Metrics.ObserveAppend(ev.Type().String())
	}
	return it.op, nil
}

func (l *Log) encode(events ...record.Event) ([]byte, error) {
	var (
		buf []byte
		err error
	)
	for _, ev := range events {
		if buf, err = record.AppendEvent(buf, ev); err != nil {
			return nil, err
		}
	}
	if l.codec == nil {
		return buf, nil
	}
	return compress.AppendFrame(nil, l.codec, buf)
}

// Close stops accepting appends, waits for every enqueued item to be
// committed, then closes the file. Calling Close again waits for the first
// call and returns its result. Closing a log that is still opening waits for
// Open to finish first.
func (l *Log) Close() error {
	l.mu.Lock()
	for l.state == stateOpening {
		opening := l.opening
		l.mu.Unlock()
		<-opening
		l.mu.Lock()
	}
	switch l.state {
	case stateUnopened:
		l.state = stateClosed
		close(l.closed)
		l.mu.Unlock()
		return nil
	case stateClosing, stateClosed:
		l.mu.Unlock()
		<-l.closed
		return l.closeErr
	}
	l.state = stateClosing
	l.queue.push(closedMarker)
	l.mu.Unlock()

	<-l.engineDone

	var err error
	if cerr := l.target.Close(); cerr != nil {
		l.lg.Error("failed to close log", cerr, "path", l.path)
		err = wrapLogErr("close", ErrCloseFailed, l.path, cerr)
	}
	if l.opts.Tracker != nil {
		if terr := l.opts.Tracker.MarkClosed(l.name, time.Now()); terr != nil {
			l.lg.Warn("failed to mark log closed in catalog", "path", l.path, "error", terr)
			if err == nil {
				err = wrapLogErr("close", ErrCloseFailed, l.path, terr)
			}
		}
	}

	l.mu.Lock()
	l.state = stateClosed
	l.closeErr = err
	l.mu.Unlock()
	close(l.closed)

	l.lg.Info("log closed", "path", l.path, "bytes", l.counter.Load())
	return err
}

// FileName is the unique name of the log file.
func (l *Log) FileName() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.name
}

// Path is the full path of the log file.
func (l *Log) Path() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.path
}

// Logger returns the server address the log belongs to, recovered from its path.
func (l *Log) Logger() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.path == "" {
		return ""
	}
	return storage.AddressFromPath(l.path)
}

// Durability reports the sync primitive negotiated at Open.
func (l *Log) Durability() storage.SyncKind {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.durability.Kind
}

// Offset is the number of bytes handed to the storage target so far.
func (l *Log) Offset() int64 {
	l.mu.Lock()
	c := l.counter
	l.mu.Unlock()
	if c == nil {
		return 0
	}
	return c.Load()
}

// Pending is the number of work items waiting for the engine.
func (l *Log) Pending() int {
	return l.queue.len()
}

// Equal reports whether both logs refer to the same file.
func (l *Log) Equal(other *Log) bool {
	if l == nil || other == nil {
		return l == other
	}
	return l.FileName() == other.FileName()
}

func (l *Log) String() string {
	name, path := l.FileName(), l.Path()
	if path == "" {
		return name
	}
	return storage.AddressFromPath(path) + "/" + name
}

func codecName(c compress.Codec) string {
	if c == nil {
		return ""
	}
	return c.Name()
}
