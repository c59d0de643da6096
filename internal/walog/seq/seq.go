// Package seq hands out tablet-server sequence numbers for log events.
package seq

import (
	"math"
	"sync"

	"github.com/julianstephens/go-utils/validator"
)

// Allocator hands out monotonically increasing sequence numbers during a
// single process lifetime. 0 is reserved as "unset".
type Allocator interface {
	// Next reserves and returns the next sequence number.
	Next() (uint64, error)

	// NextN reserves n consecutive numbers and returns the first.
	NextN(n uint64) (uint64, error)

	// Peek returns the number Next would hand out without reserving it.
	Peek() uint64

	// SetNext moves the allocator forward, e.g. after replaying existing logs.
	SetNext(next uint64) error
}

// CounterAllocator is the default in-memory implementation.
type CounterAllocator struct {
	mu   sync.Mutex
	next uint64
}

// NewCounterAllocator constructs an allocator starting at next.
// For a fresh server pass 1; after replay pass the highest seen + 1.
func NewCounterAllocator(next uint64) (*CounterAllocator, error) {
	if next < 1 {
		return nil, &SeqError{Err: ErrInvalidSeq, Have: next, Want: 1}
	}
	return &CounterAllocator{next: next}, nil
}

func (a *CounterAllocator) Next() (uint64, error) {
	return a.NextN(1)
}

func (a *CounterAllocator) NextN(n uint64) (uint64, error) {
	if n == 0 {
		return 0, &SeqError{Err: ErrInvalidCount, Have: 0, Want: 1}
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if a.next > math.MaxUint64-n {
		return 0, &SeqError{Err: ErrSeqOverflow, Have: a.next, Want: n}
	}
	first := a.next
	a.next += n
	return first, nil
}

func (a *CounterAllocator) Peek() uint64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.next
}

func (a *CounterAllocator) SetNext(next uint64) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if next < 1 {
		return &SeqError{Err: ErrInvalidSeq, Have: next, Want: 1}
	}
	if next < a.next {
		return &SeqError{Err: ErrSeqRegression, Have: next, Want: a.next}
	}

	a.next = next
	return nil
}

// ValidateRun checks that seqs is a non-zero, gap-free ascending run.
// An empty run is valid.
func ValidateRun(seqs []uint64) error {
	v := validator.Numbers[uint64]()

	for i, s := range seqs {
		if err := v.ValidateNonZero(s); err != nil {
			return &SeqError{Err: ErrInvalidSeq, Have: s, Want: 1, Cause: err}
		}
		if i == 0 {
			continue
		}
		if err := v.ValidateConsecutive(seqs[i-1], s); err != nil {
			return &SeqError{Err: ErrSeqGap, Have: s, Want: seqs[i-1] + 1, Cause: err}
		}
	}
	return nil
}
