package task

import "sync"

// EventKind discriminates the events on the run's broadcast stream.
type EventKind string

const (
	EventRunStarted      EventKind = "run_started"
	EventJobStateChanged EventKind = "job_state_changed"
	EventJobProgress     EventKind = "job_progress"
	EventRunCompleted    EventKind = "run_completed"
)

// Event is one entry on the stream. JobID, From, To and Fraction are set
// for job events; Summary only for EventRunCompleted.
type Event struct {
	Kind     EventKind
	JobID    string
	From, To State
	Fraction float64
	Summary  *Summary
}

// progressBacklog caps queued-but-undelivered progress events per
// subscriber. Beyond it the oldest queued progress event is dropped.
// State-change and run events are never dropped, so a slow subscriber
// still observes every lifecycle transition.
const progressBacklog = 64

// hub broadcasts events to any number of subscribers without ever blocking
// the publisher: each subscriber owns a queue drained by its own goroutine.
type hub struct {
	mu     sync.Mutex
	subs   []*subscriber
	closed bool
}

type subscriber struct {
	mu       sync.Mutex
	cond     *sync.Cond
	queue    []Event
	progress int // number of progress events currently queued
	closed   bool
	out      chan Event
}

func newHub() *hub { return &hub{} }

// subscribe registers a new consumer. Every event published after the call
// is delivered in order. The returned channel is closed when the run
// completes (or immediately, if it already has).
func (h *hub) subscribe() <-chan Event {
	s := &subscriber{out: make(chan Event)}
	s.cond = sync.NewCond(&s.mu)

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		close(s.out)
		return s.out
	}
	h.subs = append(h.subs, s)
	h.mu.Unlock()

	go s.drain()
	return s.out
}

// publish fans e out to all subscribers. Never blocks.
func (h *hub) publish(e Event) {
	h.mu.Lock()
	subs := h.subs
	h.mu.Unlock()
	for _, s := range subs {
		s.enqueue(e)
	}
}

// close ends every subscriber's stream once its queue drains.
func (h *hub) close() {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return
	}
	h.closed = true
	subs := h.subs
	h.subs = nil
	h.mu.Unlock()

	for _, s := range subs {
		s.mu.Lock()
		s.closed = true
		s.cond.Signal()
		s.mu.Unlock()
	}
}

func (s *subscriber) enqueue(e Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	if e.Kind == EventJobProgress {
		if s.progress >= progressBacklog {
			s.dropOldestProgress()
		}
		s.progress++
	}
	s.queue = append(s.queue, e)
	s.cond.Signal()
}

// dropOldestProgress removes the first queued progress event. Must be
// called with s.mu held.
func (s *subscriber) dropOldestProgress() {
	for i, e := range s.queue {
		if e.Kind == EventJobProgress {
			s.queue = append(s.queue[:i], s.queue[i+1:]...)
			s.progress--
			return
		}
	}
}

// drain delivers queued events to the subscriber's channel in order,
// closing it once the hub is closed and the queue is empty.
func (s *subscriber) drain() {
	for {
		s.mu.Lock()
		for len(s.queue) == 0 && !s.closed {
			s.cond.Wait()
		}
		if len(s.queue) == 0 && s.closed {
			s.mu.Unlock()
			close(s.out)
			return
		}
		e := s.queue[0]
		s.queue = s.queue[1:]
		if e.Kind == EventJobProgress {
			s.progress--
		}
		s.mu.Unlock()

		s.out <- e
	}
}
