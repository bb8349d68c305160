package pipeline

import (
	"errors"
	"sync"
)

// Session wires a backend to a presentation thread: a worker goroutine drains the slots
// queue into the backend and a relay goroutine drains the signals queue into the
// dispatcher.
//
// The backend is expected to emit onto Signals(); NewSession hands the queue out before
// the backend is built so the two can be constructed in either order.
type Session struct {
	slots   *Queue[Slot]
	signals *Queue[Signal]

	wg       sync.WaitGroup
	done     chan struct{}
	mu       sync.Mutex
	serveErr error
	relayErr error
}

// NewSession returns a session with fresh queues. Nothing runs until Start.
func NewSession() *Session {
	return &Session{
		slots:   NewQueue[Slot](),
		signals: NewQueue[Signal](),
		done:    make(chan struct{}),
	}
}

// Signals returns the queue the backend emits onto.
func (s *Session) Signals() *Queue[Signal] { return s.signals }

// Emit sends sig on the signals queue. It lets a Session act as a controller sink.
func (s *Session) Emit(sig Signal) error { return s.signals.Send(sig) }

// Start launches the worker and relay goroutines.
func (s *Session) Start(b Backend, d Dispatcher, p Presenter) {
	s.wg.Add(2)
	go func() {
		defer s.wg.Done()
		err := s.serve(b)
		s.mu.Lock()
		s.serveErr = err
		s.mu.Unlock()
		// no more signals can be produced once the worker has stopped
		s.signals.Close()
	}()
	go func() {
		defer s.wg.Done()
		err := Relay(s.signals, d, p)
		s.mu.Lock()
		s.relayErr = err
		s.mu.Unlock()
		if err != nil {
			s.signals.Close()
			s.slots.Close()
		}
	}()
	go func() {
		s.wg.Wait()
		close(s.done)
	}()
}

// Done is closed once both goroutines have finished.
func (s *Session) Done() <-chan struct{} { return s.done }

// barrier travels down both queues so that fn runs on the presentation thread after
// everything queued before it.
type barrier struct {
	fn func()
}

func (barrier) slot()   {}
func (barrier) signal() {}

// serve is Serve with barriers passed straight through to the signals queue.
func (s *Session) serve(b Backend) error {
	for {
		slot, ok := s.slots.Recv()
		if !ok {
			return nil
		}
		if bar, ok := slot.(barrier); ok {
			if err := s.signals.Send(bar); err != nil {
				return err
			}
			continue
		}
		if err := b.HandleSlot(slot); err != nil {
			return err
		}
	}
}

// Sync runs fn on the presentation thread once every slot sent before it has been
// handled and the resulting signals presented.
func (s *Session) Sync(fn func()) error {
	return s.slots.Send(barrier{fn: fn})
}

// Send queues a slot for the worker.
func (s *Session) Send(slot Slot) error {
	return s.slots.Send(slot)
}

// Close stops accepting slots. Slots already queued are still handled and their signals
// still relayed.
func (s *Session) Close() {
	s.slots.Close()
}

// Wait blocks until both goroutines have finished and returns their errors.
func (s *Session) Wait() error {
	s.wg.Wait()
	s.mu.Lock()
	defer s.mu.Unlock()
	return errors.Join(s.serveErr, s.relayErr)
}
