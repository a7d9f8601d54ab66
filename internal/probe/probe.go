// Package probe wraps ffprobe to learn the duration of capture inputs.
// Raw .v264 streams often carry no container metadata, so a zero duration
// is a normal outcome and callers must treat it as "unknown" (indeterminate
// progress), not as an error.
package probe

import (
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strconv"
	"time"
)

// Prober runs ffprobe. The zero value is not usable; construct with [New].
type Prober struct {
	binary string
}

// New creates a Prober using the given ffprobe binary ("ffprobe" for a
// PATH lookup).
func New(binary string) *Prober {
	return &Prober{binary: binary}
}

// Duration returns the total duration of path. A result of 0 with nil
// error means ffprobe ran but could not determine a duration.
func (p *Prober) Duration(ctx context.Context, path string) (time.Duration, error) {
	cmd := exec.CommandContext(ctx, p.binary,
		"-v", "quiet",
		"-print_format", "json",
		"-show_format",
		path,
	)
	out, err := cmd.Output()
	if err != nil {
		return 0, fmt.Errorf("ffprobe %q: %w", path, err)
	}
	return ParseDuration(out)
}

// ParseDuration extracts the format-level duration from raw ffprobe JSON.
// Exported for testing without a real ffprobe binary.
func ParseDuration(data []byte) (time.Duration, error) {
	var raw struct {
		Format struct {
			Duration string `json:"duration"`
		} `json:"format"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return 0, fmt.Errorf("parse ffprobe JSON: %w", err)
	}
	if raw.Format.Duration == "" {
		return 0, nil
	}
	secs, err := strconv.ParseFloat(raw.Format.Duration, 64)
	if err != nil || secs < 0 {
		return 0, nil
	}
	return time.Duration(secs * float64(time.Second)), nil
}
