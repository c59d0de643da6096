package logger

import (
	"errors"
	"fmt"
)

var (
	ErrLogCreate = errors.New("logger: cannot create output")
	ErrLogClose  = errors.New("logger: cannot close output")
)

// LoggerError records which logger operation failed and on what path.
type LoggerError struct {
	Op    string
	Path  string
	Err   error
	Cause error
}

func (e *LoggerError) Error() string {
	where := e.Op
	if e.Path != "" {
		where += " " + e.Path
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v: %v", where, e.Err, e.Cause)
	}
	return fmt.Sprintf("%s: %v", where, e.Err)
}

func (e *LoggerError) Unwrap() error { return e.Err }

func (e *LoggerError) CauseErr() error { return e.Cause }

func wrapLoggerErr(op string, sentinel, cause error, path string) error {
	return &LoggerError{Op: op, Path: path, Err: sentinel, Cause: cause}
}
