package display

import (
	"strings"
	"testing"
	"time"
)

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		bytes int64
		want  string
	}{
		{0, "0 B"},
		{512, "512 B"},
		{1024, "1.0 KiB"},
		{1536, "1.5 KiB"},
		{1048576, "1.0 MiB"},
		{5 * 1024 * 1024 * 1024, "5.0 GiB"},
	}
	for _, tt := range tests {
		if got := FormatBytes(tt.bytes); got != tt.want {
			t.Errorf("FormatBytes(%d) = %q, want %q", tt.bytes, got, tt.want)
		}
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{45 * time.Second, "0:45"},
		{90 * time.Second, "1:30"},
		{time.Hour + 5*time.Minute + 3*time.Second, "1:05:03"},
	}
	for _, tt := range tests {
		if got := FormatDuration(tt.d); got != tt.want {
			t.Errorf("FormatDuration(%v) = %q, want %q", tt.d, got, tt.want)
		}
	}
}

func TestProgressBar(t *testing.T) {
	if got := ProgressBar(0.5, 10); got != "[#####.....]" {
		t.Errorf("ProgressBar(0.5, 10) = %q", got)
	}
	if got := ProgressBar(-1, 10); strings.Contains(got, "#") {
		t.Errorf("ProgressBar(-1, 10) = %q, want empty bar", got)
	}
	if got := ProgressBar(2, 10); strings.Contains(got, ".") {
		t.Errorf("ProgressBar(2, 10) = %q, want full bar", got)
	}
}

func TestFormatPercent(t *testing.T) {
	if got := FormatPercent(0.42); got != " 42%" {
		t.Errorf("FormatPercent(0.42) = %q", got)
	}
	if got := FormatPercent(1.7); got != "100%" {
		t.Errorf("FormatPercent(1.7) = %q", got)
	}
}
