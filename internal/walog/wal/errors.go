package wal

import (
	"errors"
	"fmt"

	"github.com/julianstephens/walog/internal/walog/errorutil"
)

var (
	// Lifecycle
	ErrLogClosed   = errors.New("wal: log closed")
	ErrNotOpen     = errors.New("wal: log not open")
	ErrAlreadyOpen = errors.New("wal: log already open")

	// Setup failures, returned from Open
	ErrInvalidOptions = errors.New("wal: invalid options")
	ErrCreateFailed   = errors.New("wal: create log failed")
	ErrSyncCapability = errors.New("wal: target offers no durability primitive")
	ErrHeaderWrite    = errors.New("wal: write header failed")
	ErrOpenRecord     = errors.New("wal: write open record failed")
	ErrRegisterFailed = errors.New("wal: register log failed")

	// Per-item and per-batch failures, delivered through Await
	ErrEncodeFailed = errors.New("wal: encode failed")
	ErrWriteFailed  = errors.New("wal: write failed")
	ErrFlushFailed  = errors.New("wal: flush failed")
	ErrSyncFailed   = errors.New("wal: sync failed")

	ErrCloseFailed = errors.New("wal: close failed")
)

// LogError wraps log-level failures with context.
type LogError struct {
	Err error

	// Path is the log file, when one has been chosen.
	Path string

	// Op is a short label for where the error occurred:
	// "open", "create", "header", "append", "write", "flush", "sync", "close".
	Op string

	Cause error
}

func (e *LogError) Error() string {
	msg := e.Err.Error()
	if e.Op != "" {
		msg = fmt.Sprintf("%s: %s", e.Op, msg)
	}
	if e.Path != "" {
		msg += " (" + e.Path + ")"
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap exposes both the sentinel and the cause to errors.Is and errors.As.
func (e *LogError) Unwrap() []error {
	if e.Cause == nil {
		return []error{e.Err}
	}
	return []error{e.Err, e.Cause}
}

// CauseErr returns the underlying cause.
func (e *LogError) CauseErr() error { return e.Cause }

func wrapLogErr(op string, sentinel error, path string, cause error) error {
	return &LogError{Err: sentinel, Path: path, Op: op, Cause: cause}
}

type OperationErrorKind uint8

const (
	// KindIO marks a write, flush or sync failure of the batch the item was in.
	KindIO OperationErrorKind = iota + 1
	// KindClosed marks an item rejected because the log was closed.
	KindClosed
	// KindOther covers everything else, e.g. an item that could not be encoded.
	KindOther
)

func (k OperationErrorKind) String() string {
	switch k {
	case KindIO:
		return "io"
	case KindClosed:
		return "closed"
	case KindOther:
		return "other"
	default:
		return "unknown"
	}
}

// OperationError is what Await reports for a failed operation.
type OperationError struct {
	Kind OperationErrorKind
	Err  error
}

func (e *OperationError) Error() string {
	return fmt.Sprintf("wal operation failed (%v): %v", e.Kind, e.Err)
}

func (e *OperationError) Unwrap() error { return e.Err }

func classify(err error) *OperationError {
	if err == nil {
		return nil
	}
	var oe *OperationError
	if errors.As(err, &oe) {
		return oe
	}
	switch {
	case errors.Is(err, ErrLogClosed):
		return &OperationError{Kind: KindClosed, Err: err}
	case errors.Is(err, ErrWriteFailed), errors.Is(err, ErrFlushFailed), errors.Is(err, ErrSyncFailed):
		return &OperationError{Kind: KindIO, Err: err}
	default:
		return &OperationError{Kind: KindOther, Err: err}
	}
}

// ReadError reports a failure reading a log back, positioned by coordinates.
type ReadError struct {
	Coordinates *errorutil.Coordinates
	Err         error
}

func (e *ReadError) Error() string {
	if c := e.Coordinates.FormatCoordinates(); c != "" {
		return fmt.Sprintf("wal: read failed at %s: %v", c, e.Err)
	}
	return fmt.Sprintf("wal: read failed: %v", e.Err)
}

func (e *ReadError) Unwrap() error { return e.Err }

var (
	errNilConfig  = errors.New("nil config")
	errNilVolumes = errors.New("nil volume manager")
)
