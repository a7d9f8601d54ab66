package task

import (
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// Options is the immutable per-job snapshot of transcode configuration.
// It is captured when the job set is built; later configuration changes
// never affect existing jobs.
type Options struct {
	FFmpegPath   string
	VideoCodec   string
	CRF          int
	Preset       string
	IncludeAudio bool
	AudioCodec   string
	AudioBitrate string
	Threads      int
	Overwrite    bool
}

// JobSpec describes one unit of work to build a job from: an ordered input
// list (length > 1 only for merge jobs, pre-ordered by the planner) and the
// output path the job will exclusively own.
type JobSpec struct {
	Inputs []string
	Output string
}

// Job is one schedulable unit of conversion work. Identity and inputs are
// fixed at creation; run state is guarded by the job's own lock so one
// job's transitions never block on another's.
type Job struct {
	id     string
	inputs []string
	output string
	opts   Options

	mu       sync.Mutex
	state    State
	progress float64
	attempt  int
	lastErr  error

	// Control handles for the in-flight subprocess; replaced on every
	// dispatch. Closed to signal; the flags make signaling idempotent and
	// let a request issued between dequeue and launch take effect.
	pauseCh   chan struct{}
	cancelCh  chan struct{}
	pauseReq  bool
	cancelReq bool
}

// ID returns the job's stable, unique identifier.
func (j *Job) ID() string { return j.id }

// Inputs returns the ordered source paths. Callers must not mutate.
func (j *Job) Inputs() []string { return j.inputs }

// Output returns the destination path exclusively owned by this job.
func (j *Job) Output() string { return j.output }

// Options returns the job's configuration snapshot.
func (j *Job) Options() Options { return j.opts }

// Status is a point-in-time snapshot of a job's run state.
type Status struct {
	ID       string
	Inputs   []string
	Output   string
	State    State
	Progress float64
	Attempt  int
	Err      error
}

// Status returns a consistent snapshot of the job's mutable state.
func (j *Job) Status() Status {
	j.mu.Lock()
	defer j.mu.Unlock()
	return Status{
		ID:       j.id,
		Inputs:   j.inputs,
		Output:   j.output,
		State:    j.state,
		Progress: j.progress,
		Attempt:  j.attempt,
		Err:      j.lastErr,
	}
}

// transition moves the job along one state-machine edge, returning
// ErrInvalidState (and leaving the job unchanged) for any edge not in the
// table. Must be called with j.mu held.
func (j *Job) transition(to State) error {
	if !canTransition(j.state, to) {
		return fmt.Errorf("%w: %s → %s", ErrInvalidState, j.state, to)
	}
	j.state = to
	return nil
}

// setProgress raises the job's progress fraction, clamped to [0,1], and
// returns the stored value. Reports false when f would move progress
// backwards; progress only resets through retry or resume, never while
// running.
func (j *Job) setProgress(f float64) (float64, bool) {
	if f < 0 {
		f = 0
	}
	if f > 1 {
		f = 1
	}
	j.mu.Lock()
	defer j.mu.Unlock()
	if f <= j.progress {
		return j.progress, false
	}
	j.progress = f
	return f, true
}

// JobSet is the full, fixed collection of jobs for one run. Membership is
// immutable after creation; retries reuse the existing job. Iteration
// follows insertion order for deterministic reporting.
type JobSet struct {
	jobs  map[string]*Job
	order []string
}

// NewJobSet builds jobs from specs, all in Pending, with ids assigned in
// insertion order.
func NewJobSet(specs []JobSpec, opts Options) *JobSet {
	set := &JobSet{jobs: make(map[string]*Job, len(specs))}
	for _, spec := range specs {
		j := &Job{
			id:     newID(),
			inputs: spec.Inputs,
			output: spec.Output,
			opts:   opts,
			state:  StatePending,
		}
		set.jobs[j.id] = j
		set.order = append(set.order, j.id)
	}
	return set
}

// Len returns the number of jobs in the set.
func (s *JobSet) Len() int { return len(s.order) }

// Jobs returns the jobs in insertion order.
func (s *JobSet) Jobs() []*Job {
	out := make([]*Job, len(s.order))
	for i, id := range s.order {
		out[i] = s.jobs[id]
	}
	return out
}

// job looks up a job by id.
func (s *JobSet) job(id string) (*Job, bool) {
	j, ok := s.jobs[id]
	return j, ok
}

// ULIDs sort by creation time, so job ids follow insertion order. The
// monotonic reader keeps ids ordered even within one millisecond.
var (
	entropyMu sync.Mutex
	entropy   = ulid.Monotonic(rand.New(rand.NewSource(time.Now().UnixNano())), 0)
)

func newID() string {
	entropyMu.Lock()
	defer entropyMu.Unlock()
	return ulid.MustNew(ulid.Now(), entropy).String()
}
