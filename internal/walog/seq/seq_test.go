package seq_test

import (
	"errors"
	"math"
	"sync"
	"testing"

	tst "github.com/julianstephens/go-utils/tests"

	"github.com/julianstephens/walog/internal/walog/seq"
)

func TestNewCounterAllocator(t *testing.T) {
	testCases := []struct {
		name    string
		initial uint64
		wantErr error
	}{
		{name: "one", initial: 1},
		{name: "large", initial: 9999999999},
		{name: "zero", initial: 0, wantErr: seq.ErrInvalidSeq},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			a, err := seq.NewCounterAllocator(tc.initial)
			if tc.wantErr != nil {
				tst.AssertTrue(t, errors.Is(err, tc.wantErr), "expected sentinel error")
				var se *seq.SeqError
				tst.AssertTrue(t, errors.As(err, &se), "expected *SeqError")
				return
			}
			tst.RequireNoError(t, err)

			got, err := a.Next()
			tst.RequireNoError(t, err)
			tst.AssertTrue(t, got == tc.initial, "first Next should return the initial value")
			tst.AssertTrue(t, a.Peek() == tc.initial+1, "Peek should advance after Next")
		})
	}
}

func TestCounterAllocator_NextN(t *testing.T) {
	a, err := seq.NewCounterAllocator(10)
	tst.RequireNoError(t, err)

	first, err := a.NextN(5)
	tst.RequireNoError(t, err)
	tst.AssertTrue(t, first == 10, "reservation should start at 10")
	tst.AssertTrue(t, a.Peek() == 15, "reservation should advance by 5")

	_, err = a.NextN(0)
	tst.AssertTrue(t, errors.Is(err, seq.ErrInvalidCount), "zero count should be rejected")
	tst.AssertTrue(t, a.Peek() == 15, "failed reservation must not advance")
}

func TestCounterAllocator_Overflow(t *testing.T) {
	a, err := seq.NewCounterAllocator(math.MaxUint64 - 1)
	tst.RequireNoError(t, err)

	_, err = a.NextN(2)
	tst.AssertTrue(t, errors.Is(err, seq.ErrSeqOverflow), "expected overflow")
	tst.AssertTrue(t, a.Peek() == math.MaxUint64-1, "failed reservation must not advance")
}

func TestCounterAllocator_SetNext(t *testing.T) {
	a, err := seq.NewCounterAllocator(5)
	tst.RequireNoError(t, err)

	tst.RequireNoError(t, a.SetNext(5))
	tst.RequireNoError(t, a.SetNext(100))
	tst.AssertTrue(t, a.Peek() == 100, "SetNext should move forward")

	err = a.SetNext(50)
	tst.AssertTrue(t, errors.Is(err, seq.ErrSeqRegression), "expected regression error")

	err = a.SetNext(0)
	tst.AssertTrue(t, errors.Is(err, seq.ErrInvalidSeq), "expected invalid seq error")
	tst.AssertTrue(t, a.Peek() == 100, "rejected SetNext must not change state")
}

func TestCounterAllocator_Concurrent(t *testing.T) {
	a, err := seq.NewCounterAllocator(1)
	tst.RequireNoError(t, err)

	const workers, perWorker = 8, 250
	seen := make([]uint64, 0, workers*perWorker)
	var (
		mu sync.Mutex
		wg sync.WaitGroup
	)
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			local := make([]uint64, 0, perWorker)
			for range perWorker {
				n, err := a.Next()
				if err != nil {
					t.Errorf("Next: %v", err)
					return
				}
				local = append(local, n)
			}
			mu.Lock()
			seen = append(seen, local...)
			mu.Unlock()
		}()
	}
	wg.Wait()

	// every number handed out exactly once
	mark := make([]bool, workers*perWorker+1)
	for _, n := range seen {
		tst.AssertFalse(t, mark[n], "duplicate sequence number")
		mark[n] = true
	}
	tst.AssertTrue(t, len(seen) == workers*perWorker, "missing sequence numbers")
	tst.AssertTrue(t, a.Peek() == workers*perWorker+1, "final Peek mismatch")
}

func TestValidateRun(t *testing.T) {
	tst.RequireNoError(t, seq.ValidateRun(nil))
	tst.RequireNoError(t, seq.ValidateRun([]uint64{7, 8, 9}))

	err := seq.ValidateRun([]uint64{1, 2, 4})
	tst.AssertTrue(t, errors.Is(err, seq.ErrSeqGap), "expected gap error")
	var se *seq.SeqError
	if !errors.As(err, &se) {
		t.Fatalf("expected *SeqError, got %T", err)
	}
	tst.AssertTrue(t, se.Have == 4 && se.Want == 3, "gap coordinates")

	err = seq.ValidateRun([]uint64{0, 1})
	tst.AssertTrue(t, errors.Is(err, seq.ErrInvalidSeq), "expected invalid seq error")
}
