package task

import "context"

// Outcome is the result of driving one job's subprocess to rest.
type Outcome int

const (
	OutcomeSucceeded Outcome = iota // Exit code 0.
	OutcomeFailed                   // Launch failure or non-zero exit.
	OutcomePaused                   // Stopped on a pause request.
	OutcomeCancelled                // Terminated on a cancel request.
)

// RunSpec carries everything a Runner needs to convert one job: the work
// description, the job's control channels (closed to signal), and the
// progress callback. Progress may be called from the runner's goroutines
// at any rate; fractions are clamped and kept monotonic by the caller.
type RunSpec struct {
	JobID    string
	Inputs   []string
	Output   string
	Options  Options
	Pause    <-chan struct{}
	Cancel   <-chan struct{}
	Progress func(fraction float64)
}

// RunResult pairs an outcome with the failure detail for OutcomeFailed.
type RunResult struct {
	Outcome Outcome
	Err     error
}

// Runner executes one job's conversion to completion or until interrupted.
// Run blocks for the subprocess's lifetime, the engine's only blocking
// operation, and must honor Pause (graceful stop, partial output
// removed) and Cancel (graceful-then-forceful stop, partial output
// removed). The ffmpeg adapter is the production implementation; tests use
// in-process fakes.
type Runner interface {
	Run(ctx context.Context, spec RunSpec) RunResult
}
