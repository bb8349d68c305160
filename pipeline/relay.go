package pipeline

import (
	"context"
	"sync"
)

// Backend consumes slots. The controller is the only implementation outside tests.
type Backend interface {
	HandleSlot(Slot) error
}

// Serve feeds slots to b in arrival order until the queue is closed and drained, or b
// returns an error.
func Serve(slots *Queue[Slot], b Backend) error {
	for {
		s, ok := slots.Recv()
		if !ok {
			return nil
		}
		if err := b.HandleSlot(s); err != nil {
			return err
		}
	}
}

// Dispatcher runs functions on the presentation thread, in the order they were handed
// over.
type Dispatcher interface {
	Dispatch(func()) error
}

// Presenter applies a signal to whatever is drawn. It is only ever called from the
// presentation thread.
type Presenter interface {
	Present(Signal)
}

// PresenterFunc adapts a function to Presenter.
type PresenterFunc func(Signal)

func (f PresenterFunc) Present(s Signal) { f(s) }

// Relay forwards every signal to p through d, one task per signal, until the queue is
// closed and drained or d fails.
func Relay(signals *Queue[Signal], d Dispatcher, p Presenter) error {
	for {
		s, ok := signals.Recv()
		if !ok {
			return nil
		}
		task := func() { p.Present(s) }
		if b, ok := s.(barrier); ok {
			task = b.fn
		}
		if err := d.Dispatch(task); err != nil {
			return err
		}
	}
}

// ServiceQueue is a Dispatcher for a presentation thread that has no task queue of its
// own. Functions queued with Dispatch are run by whichever goroutine calls Service or
// Run, which must be the presentation goroutine.
type ServiceQueue struct {
	service chan func()
	done    chan struct{}
	once    sync.Once
}

// NewServiceQueue returns a ServiceQueue. Dispatch blocks once buffered functions are
// waiting.
func NewServiceQueue(buffered int) *ServiceQueue {
	return &ServiceQueue{
		service: make(chan func(), buffered),
		done:    make(chan struct{}),
	}
}

// Dispatch queues f. It fails with ErrDisconnected after Stop.
func (sq *ServiceQueue) Dispatch(f func()) error {
	select {
	case <-sq.done:
		return ErrDisconnected
	default:
	}
	select {
	case sq.service <- f:
		return nil
	case <-sq.done:
		return ErrDisconnected
	}
}

// Service runs every function waiting without blocking and reports how many ran.
func (sq *ServiceQueue) Service() int {
	n := 0
	for {
		select {
		case f := <-sq.service:
			f()
			n++
		default:
			return n
		}
	}
}

// Run services functions as they arrive until ctx is done or Stop is called.
func (sq *ServiceQueue) Run(ctx context.Context) error {
	for {
		select {
		case f := <-sq.service:
			f()
		case <-sq.done:
			sq.Service()
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Stop makes further Dispatch calls fail and ends Run after draining.
func (sq *ServiceQueue) Stop() {
	sq.once.Do(func() { close(sq.done) })
}
