package wal

import (
	"io"
	"sync"
	"sync/atomic"
	"time"
)

// item is one append call: its serialized (and possibly compress-framed)
// records, or the error that kept it from being serialized.
type item struct {
	buf []byte
	err error
	op  *Operation
}

// closedMarker is queued by Close; the engine stops after the batch holding it.
var closedMarker = &item{}

// workQueue is an unbounded FIFO drained in whole batches by the engine.
type workQueue struct {
	mu    sync.Mutex
	cond  *sync.Cond
	items []*item
}

func newWorkQueue() *workQueue {
	q := &workQueue{}
	q.cond = sync.NewCond(&q.mu)
	return q
}

func (q *workQueue) push(it *item) {
	q.mu.Lock()
	q.items = append(q.items, it)
	q.mu.Unlock()
	q.cond.Signal()
}

// takeAll blocks until at least one item is queued, then removes and returns all of them.
func (q *workQueue) takeAll() []*item {
	q.mu.Lock()
	defer q.mu.Unlock()
	for len(q.items) == 0 {
		q.cond.Wait()
	}
	batch := q.items
	q.items = nil
	return batch
}

func (q *workQueue) len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// run is the commit engine. Exactly one runs per open Log.
func (l *Log) run() {
	defer close(l.engineDone)
	for {
		if stop := l.commit(l.queue.takeAll()); stop {
			return
		}
	}
}

// commit writes every item of batch, then flushes and syncs once. Every item
// is released in enqueue order with the batch error, unless it already
// carries its own.
func (l *Log) commit(batch []*item) (stop bool) {
	start := time.Now()

	var (
		err   error
		count int
	)
	for _, it := range batch {
		if it == closedMarker {
			stop = true
			continue
		}
		count++
		if it.err != nil || err != nil {
			continue
		}
		if _, werr := l.out.Write(it.buf); werr != nil {
			err = wrapLogErr("write", ErrWriteFailed, l.path, werr)
		}
	}

	if count > 0 {
		if err == nil {
			if ferr := l.bw.Flush(); ferr != nil {
				err = wrapLogErr("flush", ErrFlushFailed, l.path, ferr)
			} else if serr := l.durability.Sync(); serr != nil {
				err = wrapLogErr("sync", ErrSyncFailed, l.path, serr)
			}
		}
		l.opts.Metrics.ObserveBatch(count, time.Since(start), err)
		if err != nil {
			l.lg.Warn("batch commit failed", "path", l.path, "items", count, "error", err)
		} else {
			l.lg.Debug("batch committed", "items", count, "elapsed", time.Since(start))
		}
	}

	for _, it := range batch {
		if it == closedMarker {
			continue
		}
		if it.err != nil {
			it.op.release(it.err)
			continue
		}
		it.op.release(err)
	}
	return stop
}

// countingWriter counts bytes accepted by the storage target.
type countingWriter struct {
	w io.Writer
	atomic.Int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.Add(int64(n))
	return n, err
}
