package task

import (
	"testing"
	"time"
)

func TestSchedulerFIFO(t *testing.T) {
	s := newScheduler()
	a, b, c := &Job{id: "a"}, &Job{id: "b"}, &Job{id: "c"}
	s.enqueue(a)
	s.enqueue(b)
	s.enqueue(c)

	for _, want := range []*Job{a, b, c} {
		j, ok := s.next()
		if !ok || j != want {
			t.Fatalf("next() = %v, %v, want job %s", j, ok, want.id)
		}
	}
}

func TestSchedulerRemove(t *testing.T) {
	s := newScheduler()
	a, b := &Job{id: "a"}, &Job{id: "b"}
	s.enqueue(a)
	s.enqueue(b)

	if !s.remove(b) {
		t.Fatal("remove of queued job reported false")
	}
	if s.remove(b) {
		t.Fatal("second remove reported true")
	}

	j, ok := s.next()
	if !ok || j != a {
		t.Fatalf("next() after remove = %v, %v, want a", j, ok)
	}
}

func TestSchedulerGate(t *testing.T) {
	s := newScheduler()
	s.enqueue(&Job{id: "a"})
	s.setGated(true)

	got := make(chan *Job, 1)
	go func() {
		j, ok := s.next()
		if ok {
			got <- j
		}
	}()

	select {
	case j := <-got:
		t.Fatalf("gated scheduler dispatched job %s", j.id)
	case <-time.After(50 * time.Millisecond):
	}

	s.setGated(false)
	select {
	case <-got:
	case <-time.After(time.Second):
		t.Fatal("job not dispatched after gate opened")
	}
}

func TestSchedulerStopWakesWorkers(t *testing.T) {
	s := newScheduler()

	exited := make(chan struct{})
	go func() {
		defer close(exited)
		if _, ok := s.next(); ok {
			t.Error("next() returned a job from a stopped scheduler")
		}
	}()

	time.Sleep(10 * time.Millisecond)
	s.stop()

	select {
	case <-exited:
	case <-time.After(time.Second):
		t.Fatal("worker not woken by stop")
	}

	// Enqueue after stop is a no-op.
	s.enqueue(&Job{id: "late"})
	if _, ok := s.next(); ok {
		t.Fatal("stopped scheduler dispatched a late job")
	}
}
