// Package task is the conversion engine's core: the job model and state
// machine, the bounded worker-pool scheduler, and the Manager façade that
// owns one run's job set, drives jobs through a Runner, and broadcasts
// progress and state changes to subscribers.
package task

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/rs/zerolog"
)

// RunConfig is the engine-level slice of the run configuration: everything
// else (transcode options, overwrite, merge policy) is snapshotted into the
// jobs before the set reaches the manager.
type RunConfig struct {
	Workers int // Concurrent conversions; must be >= 1.
}

// Manager owns one run: the job set, the scheduler, and the event stream.
// All control operations are non-blocking with respect to each other and
// never wait on an unrelated job's subprocess. Create one Manager per run;
// a Manager cannot be restarted.
type Manager struct {
	log    zerolog.Logger
	runner Runner

	hub   *hub
	sched *scheduler

	mu       sync.Mutex
	set      *JobSet
	started  bool
	finished bool
	terminal int
	summary  Summary
	done     chan struct{}

	ctx    context.Context
	cancel context.CancelFunc
}

// NewManager creates a Manager that executes jobs with runner.
func NewManager(runner Runner, log zerolog.Logger) *Manager {
	return &Manager{
		log:    log,
		runner: runner,
		hub:    newHub(),
		sched:  newScheduler(),
		done:   make(chan struct{}),
	}
}

// Start validates cfg, claims set as this run's job set, and begins
// dispatching. It returns as soon as the workers are launched. Jobs whose
// output path already exists (with overwrite disabled) are failed here,
// before any subprocess runs, without disturbing their siblings.
func (m *Manager) Start(set *JobSet, cfg RunConfig) error {
	if cfg.Workers < 1 {
		return fmt.Errorf("%w: workers must be >= 1, got %d", ErrInvalidConfiguration, cfg.Workers)
	}

	m.mu.Lock()
	if m.started {
		m.mu.Unlock()
		return ErrAlreadyStarted
	}
	m.started = true
	m.set = set
	m.mu.Unlock()

	m.ctx, m.cancel = context.WithCancel(context.Background())
	m.hub.publish(Event{Kind: EventRunStarted})
	m.log.Info().Int("jobs", set.Len()).Int("workers", cfg.Workers).Msg("run started")

	for _, j := range set.Jobs() {
		if !j.opts.Overwrite {
			if _, err := os.Stat(j.output); err == nil {
				m.failAtStart(j, fmt.Errorf("%w: %s", ErrOutputCollision, j.output))
				continue
			}
		}
		m.sched.enqueue(j)
	}

	// An empty set (or one failed entirely by collisions) finishes here.
	m.mu.Lock()
	m.maybeFinishLocked()
	m.mu.Unlock()

	for i := 0; i < cfg.Workers; i++ {
		go m.worker()
	}
	return nil
}

// Subscribe returns a stream carrying every event published after the
// call, in order. The channel closes once the run is complete.
func (m *Manager) Subscribe() <-chan Event {
	return m.hub.subscribe()
}

// Wait blocks until every job is terminal (or ctx expires) and returns the
// run summary.
func (m *Manager) Wait(ctx context.Context) (Summary, error) {
	select {
	case <-m.done:
		m.mu.Lock()
		defer m.mu.Unlock()
		return m.summary, nil
	case <-ctx.Done():
		return Summary{}, ctx.Err()
	}
}

// Jobs returns point-in-time snapshots in insertion order.
func (m *Manager) Jobs() []Status {
	m.mu.Lock()
	set := m.set
	m.mu.Unlock()
	if set == nil {
		return nil
	}
	jobs := set.Jobs()
	out := make([]Status, len(jobs))
	for i, j := range jobs {
		out[i] = j.Status()
	}
	return out
}

// Job returns a point-in-time snapshot of one job.
func (m *Manager) Job(id string) (Status, error) {
	j, err := m.lookup(id)
	if err != nil {
		return Status{}, err
	}
	return j.Status(), nil
}

// Pause requests the job to stop running. A Running job is signaled and
// reaches Paused asynchronously (observe the event stream); a Pending job
// leaves the ready set immediately.
func (m *Manager) Pause(id string) error {
	j, err := m.lookup(id)
	if err != nil {
		return err
	}
	return m.pauseJob(j)
}

// PauseAll closes the dispatch gate (no new jobs start; the pool stays up)
// and signals every running job to pause. Pending jobs stay queued behind
// the gate.
func (m *Manager) PauseAll() {
	m.sched.setGated(true)
	for _, j := range m.allJobs() {
		j.mu.Lock()
		if j.state == StateRunning && !j.pauseReq {
			j.pauseReq = true
			close(j.pauseCh)
		}
		j.mu.Unlock()
	}
}

// Resume returns a Paused job to Pending, eligible for redispatch. Its
// subprocess restarts from the beginning, so progress resets to zero.
func (m *Manager) Resume(id string) error {
	j, err := m.lookup(id)
	if err != nil {
		return err
	}
	return m.resumeJob(j)
}

// ResumeAll reopens the dispatch gate and requeues every paused job.
func (m *Manager) ResumeAll() {
	for _, j := range m.allJobs() {
		_ = m.resumeJob(j) // Non-paused jobs are skipped.
	}
	m.sched.setGated(false)
}

// Cancel terminates the job. Pending and Paused jobs transition
// synchronously; a Running job is signaled and reaches Cancelled once its
// subprocess has been stopped and partial output removed.
func (m *Manager) Cancel(id string) error {
	j, err := m.lookup(id)
	if err != nil {
		return err
	}
	return m.cancelJob(j, false)
}

// CancelAll cancels every job that is not already terminal.
func (m *Manager) CancelAll() {
	for _, j := range m.allJobs() {
		_ = m.cancelJob(j, true)
	}
}

// Retry re-enqueues a Failed job: attempt incremented, progress and error
// cleared. Any other state is rejected with ErrInvalidState; after the run
// has finished the job set is closed and retries are rejected outright.
func (m *Manager) Retry(id string) error {
	j, err := m.lookup(id)
	if err != nil {
		return err
	}

	m.mu.Lock()
	if m.finished {
		m.mu.Unlock()
		return ErrRunFinished
	}
	j.mu.Lock()
	if j.state != StateFailed {
		st := j.state
		j.mu.Unlock()
		m.mu.Unlock()
		return fmt.Errorf("%w: retry requires state %s, job is %s", ErrInvalidState, StateFailed, st)
	}
	_ = j.transition(StatePending)
	j.attempt++
	j.progress = 0
	j.lastErr = nil
	j.mu.Unlock()
	m.terminal-- // The failed job is live again.
	m.mu.Unlock()

	m.publishState(j, StateFailed, StatePending)
	m.sched.enqueue(j)
	return nil
}

// --- internals ---

func (m *Manager) pauseJob(j *Job) error {
	j.mu.Lock()
	switch j.state {
	case StateRunning:
		if !j.pauseReq {
			j.pauseReq = true
			close(j.pauseCh)
		}
		j.mu.Unlock()
		return nil
	case StatePending:
		j.pauseReq = true
		j.mu.Unlock()
		if m.sched.remove(j) {
			m.completeQueuedTransition(j, StatePaused)
		}
		// Not in the queue: a worker holds it and will honor the flag
		// before launching the subprocess.
		return nil
	default:
		st := j.state
		j.mu.Unlock()
		return fmt.Errorf("%w: cannot pause job in state %s", ErrInvalidState, st)
	}
}

func (m *Manager) resumeJob(j *Job) error {
	j.mu.Lock()
	if j.state != StatePaused {
		st := j.state
		j.mu.Unlock()
		return fmt.Errorf("%w: cannot resume job in state %s", ErrInvalidState, st)
	}
	_ = j.transition(StatePending)
	j.progress = 0
	j.mu.Unlock()

	m.publishState(j, StatePaused, StatePending)
	m.sched.enqueue(j)
	return nil
}

// cancelJob cancels one job. With lenient set (the ALL path), jobs in
// ineligible states are skipped instead of erroring.
func (m *Manager) cancelJob(j *Job, lenient bool) error {
	j.mu.Lock()
	switch j.state {
	case StateRunning:
		if !j.cancelReq {
			j.cancelReq = true
			close(j.cancelCh)
		}
		j.mu.Unlock()
		return nil
	case StatePending:
		j.cancelReq = true
		j.mu.Unlock()
		if m.sched.remove(j) {
			m.completeQueuedTransition(j, StateCancelled)
		}
		return nil
	case StatePaused:
		_ = j.transition(StateCancelled)
		j.mu.Unlock()
		m.publishState(j, StatePaused, StateCancelled)
		return nil
	default:
		st := j.state
		j.mu.Unlock()
		if lenient {
			return nil
		}
		return fmt.Errorf("%w: cannot cancel job in state %s", ErrInvalidState, st)
	}
}

func (m *Manager) worker() {
	for {
		j, ok := m.sched.next()
		if !ok {
			return
		}
		m.runJob(j)
	}
}

// runJob drives one dispatched job through the runner and applies the
// outcome. The worker is occupied for the subprocess's lifetime; pausing
// or cancelling this job frees the slot for the next ready job.
func (m *Manager) runJob(j *Job) {
	if !m.beginRun(j) {
		return
	}

	j.mu.Lock()
	spec := RunSpec{
		JobID:   j.id,
		Inputs:  j.inputs,
		Output:  j.output,
		Options: j.opts,
		Pause:   j.pauseCh,
		Cancel:  j.cancelCh,
		Progress: func(f float64) {
			if stored, changed := j.setProgress(f); changed {
				m.hub.publish(Event{Kind: EventJobProgress, JobID: j.id, Fraction: stored})
			}
		},
	}
	j.mu.Unlock()

	res := m.runner.Run(m.ctx, spec)
	m.finishRun(j, res)
}

// beginRun moves a dequeued job to Running with fresh control channels.
// Pause/cancel requests that arrived while the job sat in the queue are
// honored here, before any subprocess starts.
func (m *Manager) beginRun(j *Job) bool {
	j.mu.Lock()
	if j.state != StatePending {
		j.mu.Unlock()
		return false
	}
	if j.cancelReq {
		j.pauseReq, j.cancelReq = false, false
		_ = j.transition(StateCancelled)
		j.mu.Unlock()
		m.publishState(j, StatePending, StateCancelled)
		return false
	}
	if j.pauseReq {
		j.pauseReq = false
		_ = j.transition(StatePaused)
		j.mu.Unlock()
		m.publishState(j, StatePending, StatePaused)
		return false
	}
	_ = j.transition(StateRunning)
	j.pauseCh = make(chan struct{})
	j.cancelCh = make(chan struct{})
	j.mu.Unlock()
	m.publishState(j, StatePending, StateRunning)
	return true
}

// finishRun applies the runner's outcome to the job. A pause outcome with
// a cancel request already latched collapses straight to Cancelled.
func (m *Manager) finishRun(j *Job, res RunResult) {
	j.mu.Lock()
	from := j.state
	var to State
	switch res.Outcome {
	case OutcomeSucceeded:
		to = StateSucceeded
		j.progress = 1
		j.lastErr = nil
	case OutcomeFailed:
		to = StateFailed
		j.lastErr = res.Err
	case OutcomePaused:
		if j.cancelReq {
			to = StateCancelled
		} else {
			to = StatePaused
		}
	case OutcomeCancelled:
		to = StateCancelled
	}
	j.pauseReq, j.cancelReq = false, false
	_ = j.transition(to)
	j.mu.Unlock()

	if to == StateSucceeded {
		m.hub.publish(Event{Kind: EventJobProgress, JobID: j.id, Fraction: 1})
	}
	if to == StateFailed && res.Err != nil {
		m.log.Warn().Str("job", j.id).Err(res.Err).Msg("job failed")
	}
	m.publishState(j, from, to)
}

// failAtStart marks a job Failed before it could ever run (output
// collision check in Start).
func (m *Manager) failAtStart(j *Job, err error) {
	j.mu.Lock()
	_ = j.transition(StateFailed)
	j.lastErr = err
	j.mu.Unlock()
	m.publishState(j, StatePending, StateFailed)
}

// completeQueuedTransition finishes a pause/cancel of a job that was
// removed from the ready queue before dispatch.
func (m *Manager) completeQueuedTransition(j *Job, to State) {
	j.mu.Lock()
	if j.state != StatePending {
		j.mu.Unlock()
		return
	}
	j.pauseReq, j.cancelReq = false, false
	_ = j.transition(to)
	j.mu.Unlock()
	m.publishState(j, StatePending, to)
}

// publishState emits the state-change event, logs it, and accounts for
// terminal states. Callers must not hold j.mu or m.mu.
func (m *Manager) publishState(j *Job, from, to State) {
	m.hub.publish(Event{Kind: EventJobStateChanged, JobID: j.id, From: from, To: to})
	m.log.Debug().Str("job", j.id).Str("from", string(from)).Str("to", string(to)).Msg("state change")
	if to.Terminal() {
		m.mu.Lock()
		m.terminal++
		m.maybeFinishLocked()
		m.mu.Unlock()
	}
}

// maybeFinishLocked latches run completion once every job is terminal:
// summary built, RunCompleted published, streams closed, pool stopped.
// Must be called with m.mu held.
func (m *Manager) maybeFinishLocked() {
	if m.finished || !m.started || m.terminal < m.set.Len() {
		return
	}
	m.finished = true
	m.summary = summarize(m.set)
	summary := m.summary

	m.hub.publish(Event{Kind: EventRunCompleted, Summary: &summary})
	m.hub.close()
	m.sched.stop()
	if m.cancel != nil {
		m.cancel()
	}
	close(m.done)
	m.log.Info().
		Int("succeeded", summary.Succeeded).
		Int("failed", summary.Failed).
		Int("cancelled", summary.Cancelled).
		Msg("run completed")
}

func (m *Manager) lookup(id string) (*Job, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.set == nil {
		return nil, ErrUnknownJob
	}
	j, ok := m.set.job(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownJob, id)
	}
	return j, nil
}

func (m *Manager) allJobs() []*Job {
	m.mu.Lock()
	set := m.set
	m.mu.Unlock()
	if set == nil {
		return nil
	}
	return set.Jobs()
}
