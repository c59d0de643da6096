package storage

import "errors"

var (
	ErrCreate       = errors.New("storage: create failed")
	ErrOpen         = errors.New("storage: open failed")
	ErrNoDurability = errors.New("storage: target offers neither sync nor flush")
)

type StorageError struct {
	Op    string
	Err   error
	Cause error
	Path  string
}

func (e *StorageError) Error() string {
	msg := e.Op + " error"
	if e.Path != "" {
		msg += " on " + e.Path
	}
	msg += ": " + e.Err.Error()
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *StorageError) Unwrap() error { return e.Err }

func (e *StorageError) CauseErr() error { return e.Cause }

func wrapStorageErr(op string, err error, path string, cause error) error {
	return &StorageError{Op: op, Err: err, Cause: cause, Path: path}
}
