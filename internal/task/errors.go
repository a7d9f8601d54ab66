package task

import "errors"

// Control-plane errors. Per-job conversion failures are never surfaced
// this way; they live on the job (state Failed plus its error) and in the
// run summary, so one job's failure cannot disturb its siblings.
var (
	// ErrInvalidConfiguration is returned by Start for an unusable run
	// configuration (e.g. a concurrency limit below 1).
	ErrInvalidConfiguration = errors.New("invalid run configuration")

	// ErrInvalidState is returned by a control operation that does not
	// match the targeted job's current state. The job is left unchanged.
	ErrInvalidState = errors.New("operation invalid for job state")

	// ErrUnknownJob is returned for a job id outside the run's job set.
	ErrUnknownJob = errors.New("unknown job id")

	// ErrRunFinished is returned by control operations issued after every
	// job reached a terminal state.
	ErrRunFinished = errors.New("run already finished")

	// ErrAlreadyStarted is returned by a second Start on the same manager.
	ErrAlreadyStarted = errors.New("run already started")

	// ErrOutputCollision marks a job whose output path existed at start
	// time while overwrite was disabled. Recorded as the job's failure
	// reason; sibling jobs proceed normally.
	ErrOutputCollision = errors.New("output path already exists")
)
