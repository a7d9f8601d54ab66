package display

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/backmassage/rawconv/internal/task"
	"github.com/backmassage/rawconv/internal/term"
)

const barWidth = 24

// Console renders a run's event stream as line-oriented console output.
// On a TTY, progress updates redraw in place with carriage returns; on a
// pipe only state changes and the final summary are printed.
type Console struct {
	w      io.Writer
	tty    bool
	labels map[string]string
	inline bool // an in-place progress line is currently displayed
}

// NewConsole creates a view for the given jobs, writing to w. Jobs are
// labeled by their output file name.
func NewConsole(w io.Writer, jobs []task.Status, tty bool) *Console {
	labels := make(map[string]string, len(jobs))
	for _, j := range jobs {
		labels[j.ID] = filepath.Base(j.Output)
	}
	return &Console{w: w, tty: tty, labels: labels}
}

// Run consumes events until the stream closes. Call it from its own
// goroutine; it returns once the run-completed event has been rendered.
func (c *Console) Run(events <-chan task.Event) {
	for e := range events {
		switch e.Kind {
		case task.EventRunStarted:
			fmt.Fprintf(c.w, "Converting %d file(s)\n", len(c.labels))
		case task.EventJobStateChanged:
			c.stateChange(e)
		case task.EventJobProgress:
			c.progress(e)
		case task.EventRunCompleted:
			c.summary(e.Summary)
		}
	}
}

func (c *Console) stateChange(e task.Event) {
	c.clearInline()
	label := c.labels[e.JobID]
	switch e.To {
	case task.StateRunning:
		fmt.Fprintf(c.w, "%s>%s %s\n", term.Cyan, term.NC, label)
	case task.StateSucceeded:
		fmt.Fprintf(c.w, "%s+%s %s\n", term.Green, term.NC, label)
	case task.StateFailed:
		fmt.Fprintf(c.w, "%sx%s %s\n", term.Red, term.NC, label)
	case task.StatePaused:
		fmt.Fprintf(c.w, "%s=%s %s paused\n", term.Yellow, term.NC, label)
	case task.StateCancelled:
		fmt.Fprintf(c.w, "%s-%s %s cancelled\n", term.Yellow, term.NC, label)
	case task.StatePending:
		if e.From == task.StatePaused || e.From == task.StateFailed {
			fmt.Fprintf(c.w, "%s>%s %s requeued\n", term.Dim, term.NC, label)
		}
	}
}

func (c *Console) progress(e task.Event) {
	if !c.tty {
		return
	}
	fmt.Fprintf(c.w, "\r  %s %s %s ",
		c.labels[e.JobID],
		ProgressBar(e.Fraction, barWidth),
		FormatPercent(e.Fraction))
	c.inline = true
}

func (c *Console) clearInline() {
	if c.inline {
		fmt.Fprint(c.w, "\n")
		c.inline = false
	}
}

func (c *Console) summary(s *task.Summary) {
	c.clearInline()
	if s == nil {
		return
	}
	fmt.Fprintf(c.w, "\nDone: %s%d converted%s", term.Green, s.Succeeded, term.NC)
	if s.Failed > 0 {
		fmt.Fprintf(c.w, ", %s%d failed%s", term.Red, s.Failed, term.NC)
	}
	if s.Cancelled > 0 {
		fmt.Fprintf(c.w, ", %s%d cancelled%s", term.Yellow, s.Cancelled, term.NC)
	}
	fmt.Fprintln(c.w)
	for _, f := range s.Failures {
		fmt.Fprintf(c.w, "  %s: %v\n", c.labels[f.JobID], f.Err)
	}
}
