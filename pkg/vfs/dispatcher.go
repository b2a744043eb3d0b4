package vfs

import "sync"

// dispatcherQueueCapacity is the initial bounded work-queue capacity for
// a Dispatcher.
const dispatcherQueueCapacity = 16

// Dispatcher is a dedicated background worker that decouples event
// production (which may run with internal locks held) from subscriber
// callback execution. A producer enqueues zero-argument work items via
// Enqueue, which returns immediately unless the bounded queue is
// currently full, in which case it blocks until a slot frees -- this is
// the dispatcher's only suspension point from the producer's
// perspective. The single worker goroutine delivers items strictly
// FIFO; there is no ordering guarantee across independent Dispatcher
// instances.
type Dispatcher struct {
	work chan func()
	done chan struct{}
	wg   sync.WaitGroup

	closeOnce sync.Once
}

// NewDispatcher starts a Dispatcher with its worker goroutine running.
func NewDispatcher() *Dispatcher {
	d := &Dispatcher{
		work: make(chan func(), dispatcherQueueCapacity),
		done: make(chan struct{}),
	}
	d.wg.Add(1)
	go d.run()
	return d
}

// run is the single background worker loop.
func (d *Dispatcher) run() {
	defer d.wg.Done()
	for {
		select {
		case item, ok := <-d.work:
			if !ok {
				return
			}
			select {
			case <-d.done:
				// Closed while items were queued: discard the rest.
				return
			default:
			}
			item()
		case <-d.done:
			return
		}
	}
}

// Enqueue schedules item for execution on the dispatcher's worker
// goroutine. It returns immediately if the queue has capacity, or
// blocks until either capacity frees or the dispatcher is closed (in
// which case the item is silently discarded).
func (d *Dispatcher) Enqueue(item func()) {
	select {
	case d.work <- item:
	case <-d.done:
		// Dispatcher is shutting down; discard silently per the
		// shutdown policy (items not yet drained are discarded).
	}
}

// Close cancels the worker and joins it. Any items still queued but not
// yet drained are discarded. Close is idempotent and safe to call more
// than once.
func (d *Dispatcher) Close() error {
	d.closeOnce.Do(func() {
		close(d.done)
	})
	d.wg.Wait()
	return nil
}
