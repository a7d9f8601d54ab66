package task

import "sync"

// scheduler holds the FIFO queue of dispatch-ready jobs and the global
// pause gate. Workers block in next until a job is available and the gate
// is open. The scheduler knows nothing about job states; the manager
// keeps queue membership and state in step.
type scheduler struct {
	mu      sync.Mutex
	cond    *sync.Cond
	queue   []*Job
	gated   bool // global pause: stop handing out work, keep the pool alive
	stopped bool
}

func newScheduler() *scheduler {
	s := &scheduler{}
	s.cond = sync.NewCond(&s.mu)
	return s
}

// enqueue appends j to the ready queue (insertion order is dispatch order).
func (s *scheduler) enqueue(j *Job) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return
	}
	s.queue = append(s.queue, j)
	s.cond.Signal()
}

// remove takes j out of the ready queue, reporting whether it was present.
// A false return means the job is past dequeue and a worker already holds it.
func (s *scheduler) remove(j *Job) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, q := range s.queue {
		if q == j {
			s.queue = append(s.queue[:i], s.queue[i+1:]...)
			return true
		}
	}
	return false
}

// next blocks until a job is ready for dispatch, returning false when the
// scheduler has been stopped.
func (s *scheduler) next() (*Job, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for {
		if s.stopped {
			return nil, false
		}
		if !s.gated && len(s.queue) > 0 {
			j := s.queue[0]
			s.queue = s.queue[1:]
			return j, true
		}
		s.cond.Wait()
	}
}

// setGated opens or closes the global dispatch gate. Closing it never
// tears down the pool; workers simply stop receiving new jobs.
func (s *scheduler) setGated(gated bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gated = gated
	if !gated {
		s.cond.Broadcast()
	}
}

// stop wakes all workers to exit. Used once the run is finished.
func (s *scheduler) stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopped = true
	s.cond.Broadcast()
}
