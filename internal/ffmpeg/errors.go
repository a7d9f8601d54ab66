package ffmpeg

import (
	"fmt"
	"strings"
)

// stderrTailLines caps how much captured diagnostic output an ExitError
// carries. ffmpeg prints the decisive message last, so the tail is the
// useful part.
const stderrTailLines = 12

// Stderr lines that are pure status redraws, not diagnostics.
func isStatusLine(line string) bool {
	return strings.HasPrefix(line, "frame=") ||
		strings.HasPrefix(line, "size=") ||
		strings.HasPrefix(line, "video:") ||
		strings.Contains(line, "bitrate=") && strings.Contains(line, "time=")
}

// LaunchError reports that the ffmpeg subprocess could not be started at
// all, typically a missing or non-executable binary.
type LaunchError struct {
	Binary string
	Err    error
}

func (e *LaunchError) Error() string {
	return fmt.Sprintf("launch %s: %v", e.Binary, e.Err)
}

func (e *LaunchError) Unwrap() error { return e.Err }

// ExitError reports a conversion that started but exited non-zero,
// carrying the exit code and the diagnostic tail of stderr.
type ExitError struct {
	Code int
	Tail []string
}

func (e *ExitError) Error() string {
	if len(e.Tail) == 0 {
		return fmt.Sprintf("ffmpeg exited with code %d", e.Code)
	}
	return fmt.Sprintf("ffmpeg exited with code %d: %s", e.Code, e.Tail[len(e.Tail)-1])
}

// diagnosticTail filters status redraws out of the captured stderr lines
// and keeps the last stderrTailLines of what remains.
func diagnosticTail(lines []string) []string {
	var diag []string
	for _, l := range lines {
		l = strings.TrimSpace(l)
		if l == "" || isStatusLine(l) {
			continue
		}
		diag = append(diag, l)
	}
	if len(diag) > stderrTailLines {
		diag = diag[len(diag)-stderrTailLines:]
	}
	return diag
}
