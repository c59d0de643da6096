// Package loadtest drives a write-ahead log with concurrent writers the way a
// busy tablet server would, and reports how long writers waited for durability.
package loadtest

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"slices"
	"sync"
	"time"

	"github.com/julianstephens/walog/internal/logger"
	"github.com/julianstephens/walog/internal/walog/record"
	"github.com/julianstephens/walog/internal/walog/seq"
	"github.com/julianstephens/walog/internal/walog/wal"
)

var ErrInvalidOptions = errors.New("loadtest: invalid options")

// Appender is the part of *wal.Log the generator uses.
type Appender interface {
	DefineTablet(seq uint64, tid uint32, extent record.Extent) (*wal.Operation, error)
	LogManyTablets(batch []record.TabletMutations) (*wal.Operation, error)
}

var _ Appender = (*wal.Log)(nil)

type Options struct {
	// Writers is the number of concurrent writer goroutines.
	Writers int
	// Batches is the number of LogManyTablets calls each writer makes.
	Batches int
	// Tablets is the number of tablets touched by every call.
	Tablets int
	// Mutations is the number of mutations per tablet per call.
	Mutations int
	// ValueSize is the size of each mutation value in bytes.
	ValueSize int
}

func DefaultOptions() Options {
	return Options{Writers: 4, Batches: 100, Tablets: 4, Mutations: 10, ValueSize: 64}
}

func (o Options) validate() error {
	if o.Writers < 1 || o.Batches < 1 || o.Tablets < 1 || o.Mutations < 1 || o.ValueSize < 0 {
		return fmt.Errorf("%w: %+v", ErrInvalidOptions, o)
	}
	return nil
}

type Report struct {
	Calls     int
	Records   int
	Mutations int
	Elapsed   time.Duration
	MeanWait  time.Duration
	P99Wait   time.Duration
	MaxWait   time.Duration
	FirstSeq  uint64
	NextSeq   uint64
}

// Run defines opts.Tablets tablets, then runs the writers until every call
// has been awaited or ctx is canceled. The first failed append or await stops
// the run and is returned.
func Run(ctx context.Context, log Appender, alloc seq.Allocator, opts Options, lg logger.Logger) (Report, error) {
	if err := opts.validate(); err != nil {
		return Report{}, err
	}
	lg = logger.Named(lg, "loadtest")

	report := Report{FirstSeq: alloc.Peek()}
	start := time.Now()

	for tid := 1; tid <= opts.Tablets; tid++ {
		s, err := alloc.Next()
		if err != nil {
			return report, err
		}
		op, err := log.DefineTablet(s, uint32(tid), extent(tid, opts.Tablets)) //nolint:gosec
		if err != nil {
			return report, err
		}
		if err := op.Await(); err != nil {
			return report, err
		}
	}

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		waits    = make([]time.Duration, 0, opts.Writers*opts.Batches)
		firstErr error
	)
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	for w := range opts.Writers {
		wg.Add(1)
		go func(writer int) {
			defer wg.Done()
			local, err := runWriter(runCtx, log, alloc, opts, writer)

			mu.Lock()
			defer mu.Unlock()
			waits = append(waits, local...)
			if err != nil && firstErr == nil {
				firstErr = err
				cancel()
				lg.Warn("writer failed", "writer", writer, "error", err)
			}
		}(w)
	}
	wg.Wait()

	report.Elapsed = time.Since(start)
	report.NextSeq = alloc.Peek()
	report.Calls = len(waits)
	report.Records = report.Calls * opts.Tablets
	report.Mutations = report.Records * opts.Mutations
	summarize(&report, waits)

	lg.Info("load test finished",
		"calls", report.Calls,
		"elapsed", report.Elapsed,
		"mean_wait", report.MeanWait,
		"max_wait", report.MaxWait,
	)
	if firstErr != nil {
		return report, firstErr
	}
	return report, ctx.Err()
}

func runWriter(ctx context.Context, log Appender, alloc seq.Allocator, opts Options, writer int) ([]time.Duration, error) {
	waits := make([]time.Duration, 0, opts.Batches)
	value := make([]byte, opts.ValueSize)
	for i := range value {
		value[i] = byte('a' + (writer+i)%26)
	}

	for b := range opts.Batches {
		if ctx.Err() != nil {
			return waits, nil
		}
		first, err := alloc.NextN(uint64(opts.Tablets)) //nolint:gosec
		if err != nil {
			return waits, err
		}

		batch := make([]record.TabletMutations, 0, opts.Tablets)
		for t := range opts.Tablets {
			muts := make([]record.Mutation, 0, opts.Mutations)
			for range opts.Mutations {
				muts = append(muts, record.Mutation{
					Row: fmt.Appendf(nil, "row_%d_%d_%08d", writer, b, rand.IntN(1e8)), //nolint:gosec
					Updates: []record.ColumnUpdate{{
						Family:       []byte("cf"),
						Qualifier:    []byte("cq"),
						Timestamp:    time.Now().UnixMilli(),
						HasTimestamp: true,
						Value:        value,
					}},
				})
			}
			batch = append(batch, record.TabletMutations{
				TabletID:  uint32(t + 1),     //nolint:gosec
				Seq:       first + uint64(t), //nolint:gosec
				Mutations: muts,
			})
		}

		start := time.Now()
		op, err := log.LogManyTablets(batch)
		if err != nil {
			return waits, err
		}
		if err := op.Await(); err != nil {
			return waits, err
		}
		waits = append(waits, time.Since(start))
	}
	return waits, nil
}

// extent splits the row space evenly: tablet i of n ends at row "i", the last is open.
func extent(i, n int) record.Extent {
	e := record.Extent{TableID: "loadtest"}
	if i < n {
		e.EndRow = fmt.Appendf(nil, "%04d", i)
	}
	if i > 1 {
		e.PrevEndRow = fmt.Appendf(nil, "%04d", i-1)
	}
	return e
}

func summarize(r *Report, waits []time.Duration) {
	if len(waits) == 0 {
		return
	}
	slices.Sort(waits)
	var total time.Duration
	for _, w := range waits {
		total += w
	}
	r.MeanWait = total / time.Duration(len(waits))
	r.MaxWait = waits[len(waits)-1]
	r.P99Wait = waits[(len(waits)*99)/100]
}
