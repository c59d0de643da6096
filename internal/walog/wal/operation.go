package wal

// Operation is the handle returned by every append. It completes once the
// batch holding it has been written and synced, or has failed.
type Operation struct {
	done chan struct{}
	err  error
}

func newOperation() *Operation {
	return &Operation{done: make(chan struct{})}
}

func (o *Operation) release(err error) {
	o.err = err
	close(o.done)
}

// Await blocks until the operation is durable. A failure is reported as an
// *OperationError classified as io, closed or other.
func (o *Operation) Await() error {
	<-o.done
	if oe := classify(o.err); oe != nil {
		return oe
	}
	return nil
}

// Done is closed once the operation has completed.
func (o *Operation) Done() <-chan struct{} { return o.done }
