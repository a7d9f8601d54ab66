package ffmpeg

import (
	"bufio"
	"context"
	"errors"
	"os"
	"os/exec"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/backmassage/rawconv/internal/logging"
	"github.com/backmassage/rawconv/internal/probe"
	"github.com/backmassage/rawconv/internal/task"
)

// stopGrace is how long a signaled subprocess gets to finalize the output
// container before it is killed outright.
const stopGrace = 3 * time.Second

// Adapter runs conversions through the external ffmpeg binary. It
// implements [task.Runner]: one Run per dispatched job, blocking for the
// subprocess's lifetime, honoring the job's pause and cancel signals with
// a graceful interrupt before a hard kill.
type Adapter struct {
	log    zerolog.Logger
	prober *probe.Prober
	grace  time.Duration
}

// NewAdapter creates an Adapter probing input durations with prober.
func NewAdapter(prober *probe.Prober, log zerolog.Logger) *Adapter {
	return &Adapter{log: log, prober: prober, grace: stopGrace}
}

// Run converts one job. On success the output file is complete; on any
// other outcome the partial output (and a merge job's concat list) has
// been removed, so the job can run again from scratch later.
func (a *Adapter) Run(ctx context.Context, spec task.RunSpec) task.RunResult {
	log := a.log.With().Str("job", spec.JobID).Logger()

	total := a.totalDuration(ctx, log, spec.Inputs)

	var listPath string
	if len(spec.Inputs) > 1 {
		var err error
		listPath, err = WriteConcatList(spec.Inputs, spec.Output)
		if err != nil {
			return task.RunResult{Outcome: task.OutcomeFailed, Err: err}
		}
		defer os.Remove(listPath)
	}

	args := Build(spec.Options, spec.Inputs, spec.Output, listPath)
	log.Debug().Strs("args", args[1:]).Msg("starting ffmpeg")

	cmd := exec.Command(args[0], args[1:]...)
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return task.RunResult{Outcome: task.OutcomeFailed, Err: err}
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return task.RunResult{Outcome: task.OutcomeFailed, Err: err}
	}

	if err := cmd.Start(); err != nil {
		return task.RunResult{Outcome: task.OutcomeFailed, Err: &LaunchError{Binary: args[0], Err: err}}
	}

	go logging.PipeLines(stdout, log, zerolog.DebugLevel, map[string]string{"stream": "stdout"})

	// Consume stderr for progress and diagnostics. Wait must not be
	// called until the pipe has been drained.
	var (
		lines   []string
		linesMu sync.Mutex
	)
	drained := make(chan struct{})
	go func() {
		defer close(drained)
		sc := bufio.NewScanner(stderr)
		sc.Split(scanStatusLines)
		for sc.Scan() {
			line := sc.Text()
			if pos, ok := ParseTime(line); ok {
				if spec.Progress != nil && total > 0 {
					spec.Progress(Fraction(pos, total.Seconds()))
				}
				continue
			}
			linesMu.Lock()
			if len(lines) < 512 {
				lines = append(lines, line)
			}
			linesMu.Unlock()
		}
	}()

	done := make(chan error, 1)
	go func() {
		<-drained
		done <- cmd.Wait()
	}()

	select {
	case err := <-done:
		if err == nil {
			log.Debug().Msg("conversion finished")
			return task.RunResult{Outcome: task.OutcomeSucceeded}
		}
		a.removePartial(log, spec.Output)
		return task.RunResult{Outcome: task.OutcomeFailed, Err: exitError(err, lines)}

	case <-spec.Pause:
		log.Debug().Msg("pause requested, stopping ffmpeg")
		a.stop(cmd, done)
		a.removePartial(log, spec.Output)
		return task.RunResult{Outcome: task.OutcomePaused}

	case <-spec.Cancel:
		log.Debug().Msg("cancel requested, stopping ffmpeg")
		a.stop(cmd, done)
		a.removePartial(log, spec.Output)
		return task.RunResult{Outcome: task.OutcomeCancelled}

	case <-ctx.Done():
		a.stop(cmd, done)
		a.removePartial(log, spec.Output)
		return task.RunResult{Outcome: task.OutcomeCancelled}
	}
}

// totalDuration sums the probed durations of all inputs. Unknown or
// unprobeable inputs contribute zero; a zero total disables fractional
// progress for the job.
func (a *Adapter) totalDuration(ctx context.Context, log zerolog.Logger, inputs []string) time.Duration {
	var total time.Duration
	for _, in := range inputs {
		d, err := a.prober.Duration(ctx, in)
		if err != nil {
			log.Debug().Str("input", in).Err(err).Msg("duration probe failed")
			continue
		}
		total += d
	}
	return total
}

// stop interrupts the subprocess, waits up to the grace period for it to
// exit on its own, then kills it. Always reaps the process.
func (a *Adapter) stop(cmd *exec.Cmd, done <-chan error) {
	_ = cmd.Process.Signal(os.Interrupt)
	select {
	case <-done:
		return
	case <-time.After(a.grace):
	}
	_ = cmd.Process.Kill()
	<-done
}

// removePartial deletes an interrupted or failed job's output so a later
// attempt starts clean (and the overwrite guard does not trip on our own
// debris).
func (a *Adapter) removePartial(log zerolog.Logger, output string) {
	err := os.Remove(output)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Warn().Str("output", output).Err(err).Msg("could not remove partial output")
	}
}

// exitError converts cmd.Wait's error into an ExitError carrying the
// diagnostic stderr tail.
func exitError(err error, lines []string) error {
	var ee *exec.ExitError
	if errors.As(err, &ee) {
		return &ExitError{Code: ee.ExitCode(), Tail: diagnosticTail(lines)}
	}
	return err
}
