package ffmpeg

import (
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/backmassage/rawconv/internal/task"
)

func baseOptions() task.Options {
	return task.Options{
		FFmpegPath: "/usr/bin/ffmpeg",
		VideoCodec: "libx264",
		CRF:        18,
		Preset:     "fast",
	}
}

func TestBuildSingleInput(t *testing.T) {
	args := Build(baseOptions(), []string{"/cap/a.v264"}, "/out/a.mp4", "")

	if args[0] != "/usr/bin/ffmpeg" {
		t.Errorf("binary = %q", args[0])
	}
	if args[len(args)-1] != "/out/a.mp4" {
		t.Errorf("output = %q, want last", args[len(args)-1])
	}

	wantPairs := [][2]string{
		{"-i", "/cap/a.v264"},
		{"-analyzeduration", "20M"},
		{"-probesize", "20M"},
		{"-fflags", "+genpts+igndts"},
		{"-err_detect", "ignore_err"},
		{"-c:v", "libx264"},
		{"-preset", "fast"},
		{"-crf", "18"},
		{"-tune", "zerolatency"},
		{"-pix_fmt", "yuv420p"},
		{"-movflags", "faststart"},
	}
	for _, p := range wantPairs {
		if !hasPair(args, p[0], p[1]) {
			t.Errorf("args missing %s %s\nargs: %v", p[0], p[1], args)
		}
	}

	// Audio disabled by default, no overwrite by default.
	if !slices.Contains(args, "-an") {
		t.Error("args missing -an")
	}
	if !slices.Contains(args, "-n") || slices.Contains(args, "-y") {
		t.Error("want -n without -y when overwrite disabled")
	}
	if slices.Contains(args, "-threads") {
		t.Error("unexpected -threads with Threads=0")
	}
}

func TestBuildAudioAndOverwrite(t *testing.T) {
	opts := baseOptions()
	opts.IncludeAudio = true
	opts.AudioCodec = "aac"
	opts.AudioBitrate = "128k"
	opts.Overwrite = true
	opts.Threads = 4

	args := Build(opts, []string{"/cap/a.v264"}, "/out/a.mp4", "")

	for _, p := range [][2]string{{"-c:a", "aac"}, {"-b:a", "128k"}, {"-threads", "4"}} {
		if !hasPair(args, p[0], p[1]) {
			t.Errorf("args missing %s %s", p[0], p[1])
		}
	}
	if slices.Contains(args, "-an") {
		t.Error("-an present with audio enabled")
	}
	if !slices.Contains(args, "-y") || slices.Contains(args, "-n") {
		t.Error("want -y without -n when overwrite enabled")
	}
}

func TestBuildMergeUsesConcat(t *testing.T) {
	inputs := []string{"/cap/seg_01.v264", "/cap/seg_02.v264"}
	args := Build(baseOptions(), inputs, "/out/merged.mp4", "/out/merged.mp4.concat.txt")

	for _, p := range [][2]string{
		{"-f", "concat"},
		{"-safe", "0"},
		{"-i", "/out/merged.mp4.concat.txt"},
	} {
		if !hasPair(args, p[0], p[1]) {
			t.Errorf("args missing %s %s\nargs: %v", p[0], p[1], args)
		}
	}
	for _, in := range inputs {
		if slices.Contains(args, in) {
			t.Errorf("input %s passed directly in concat mode", in)
		}
	}
}

func TestBuildDefaultBinary(t *testing.T) {
	opts := baseOptions()
	opts.FFmpegPath = ""
	args := Build(opts, []string{"a.v264"}, "a.mp4", "")
	if args[0] != "ffmpeg" {
		t.Errorf("binary = %q, want PATH lookup", args[0])
	}
}

func TestWriteConcatList(t *testing.T) {
	dir := t.TempDir()
	output := filepath.Join(dir, "merged.mp4")
	inputs := []string{
		filepath.Join(dir, "seg_01.v264"),
		filepath.Join(dir, "it's.v264"), // quote in path
	}

	list, err := WriteConcatList(inputs, output)
	if err != nil {
		t.Fatalf("WriteConcatList: %v", err)
	}
	if list != output+".concat.txt" {
		t.Errorf("list path = %q", list)
	}

	data, err := os.ReadFile(list)
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 2 {
		t.Fatalf("list has %d lines: %q", len(lines), data)
	}
	if lines[0] != "file '"+inputs[0]+"'" {
		t.Errorf("line 0 = %q", lines[0])
	}
	if !strings.Contains(lines[1], `'\''`) {
		t.Errorf("embedded quote not escaped: %q", lines[1])
	}
}

func hasPair(args []string, flag, value string) bool {
	for i := 0; i < len(args)-1; i++ {
		if args[i] == flag && args[i+1] == value {
			return true
		}
	}
	return false
}
