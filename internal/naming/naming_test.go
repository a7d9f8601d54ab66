package naming

import (
	"path/filepath"
	"testing"
)

func TestExtractTimestamp(t *testing.T) {
	cases := []struct {
		name   string
		path   string
		want   int64
		wantOK bool
	}{
		{"camera capture", "0-102042.v264", 102042, true},
		{"segment style", "seg_0003.v264", 3, true},
		{"with directory", "/captures/cam1/1-235959.v264", 235959, true},
		{"trailing letters", "rec142_final.v264", 142, true},
		{"no digits", "snapshot.v264", 0, false},
		{"digits at stem end", "capture264.v264", 264, true},
		{"digits only in extension", "capture.v264", 0, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := ExtractTimestamp(tc.path)
			if ok != tc.wantOK || got != tc.want {
				t.Errorf("ExtractTimestamp(%q) = (%d, %v), want (%d, %v)",
					tc.path, got, ok, tc.want, tc.wantOK)
			}
		})
	}
}

func TestOutputPath(t *testing.T) {
	got := OutputPath("/captures/cam1/0-102042.v264", "/out")
	if got != filepath.Join("/out", "0-102042.mp4") {
		t.Errorf("OutputPath: got %q", got)
	}
}

func TestMergedOutputPath(t *testing.T) {
	inputs := []string{"seg_0003.v264", "seg_0001.v264", "seg_0002.v264"}
	got := MergedOutputPath(inputs, "cam1", "/out")
	if got != filepath.Join("/out", "merged_1-3.mp4") {
		t.Errorf("timestamp span name: got %q", got)
	}

	got = MergedOutputPath([]string{"a.v264", "b.v264"}, "cam1/day2", "/out")
	if got != filepath.Join("/out", "merged_cam1_day2.mp4") {
		t.Errorf("group key fallback: got %q", got)
	}

	got = MergedOutputPath([]string{"a.v264"}, "", "/out")
	if got != filepath.Join("/out", "merged_group.mp4") {
		t.Errorf("empty key fallback: got %q", got)
	}
}

func TestCollisionResolver(t *testing.T) {
	cr := NewCollisionResolver()

	first := cr.Resolve("cam1/0-1200.v264", "/out/0-1200.mp4")
	if first != "/out/0-1200.mp4" {
		t.Errorf("first claim: got %q", first)
	}

	// Same input asking again keeps its claim.
	again := cr.Resolve("cam1/0-1200.v264", "/out/0-1200.mp4")
	if again != first {
		t.Errorf("re-claim by owner: got %q, want %q", again, first)
	}

	second := cr.Resolve("cam2/0-1200.v264", "/out/0-1200.mp4")
	if second != filepath.Join("/out", "0-1200_dup1.mp4") {
		t.Errorf("second claimant: got %q", second)
	}

	third := cr.Resolve("cam3/0-1200.v264", "/out/0-1200.mp4")
	if third != filepath.Join("/out", "0-1200_dup2.mp4") {
		t.Errorf("third claimant: got %q", third)
	}
}
