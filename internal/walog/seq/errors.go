package seq

import (
	"errors"
	"fmt"
)

var (
	// Returned when a sequence number is 0 or otherwise forbidden.
	ErrInvalidSeq = errors.New("seq: invalid sequence number")

	// Returned when SetNext attempts to move the allocator backwards.
	ErrSeqRegression = errors.New("seq: sequence number regression")

	// Returned when a reservation would overflow uint64.
	ErrSeqOverflow = errors.New("seq: sequence number overflow")

	// Returned when a reservation asks for zero numbers.
	ErrInvalidCount = errors.New("seq: invalid reservation count")

	// Returned by ValidateRun when a run is not consecutive.
	ErrSeqGap = errors.New("seq: sequence gap")
)

type SeqError struct {
	Err   error
	Have  uint64
	Want  uint64
	Cause error
}

func (e *SeqError) Error() string {
	return fmt.Sprintf("%s (have=%d want=%d)", e.Err.Error(), e.Have, e.Want)
}
func (e *SeqError) Unwrap() error   { return e.Err }
func (e *SeqError) CauseErr() error { return e.Cause }
