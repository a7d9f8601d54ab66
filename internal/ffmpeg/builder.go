package ffmpeg

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/backmassage/rawconv/internal/task"
)

// Build constructs the complete ffmpeg argument slice for a job. Single
// input files are read directly; a merge job reads its pre-ordered inputs
// through a concat list file (written by WriteConcatList beforehand and
// passed as listPath).
func Build(opts task.Options, inputs []string, output, listPath string) []string {
	args := make([]string, 0, 48)

	binary := opts.FFmpegPath
	if binary == "" {
		binary = "ffmpeg"
	}
	args = append(args, binary, "-hide_banner", "-nostdin")

	// The capture hardware emits elementary streams with unreliable or
	// absent timestamps. Generous probing plus genpts/igndts lets ffmpeg
	// reconstruct a playable timeline instead of bailing out.
	args = append(args,
		"-analyzeduration", "20M",
		"-probesize", "20M",
		"-fflags", "+genpts+igndts",
		"-err_detect", "ignore_err",
	)

	// --- Input ---
	if len(inputs) > 1 {
		args = append(args, "-f", "concat", "-safe", "0", "-i", listPath)
	} else {
		args = append(args, "-i", inputs[0])
	}

	// --- Video codec ---
	args = append(args,
		"-c:v", opts.VideoCodec,
		"-preset", opts.Preset,
		"-crf", strconv.Itoa(opts.CRF),
		"-tune", "zerolatency",
		"-x264opts", "keyint=25:min-keyint=25:no-scenecut",
	)

	// --- Audio ---
	if opts.IncludeAudio {
		args = append(args, "-c:a", opts.AudioCodec, "-b:a", opts.AudioBitrate)
	} else {
		args = append(args, "-an")
	}

	// --- Container ---
	args = append(args,
		"-profile:v", "main",
		"-level", "4.0",
		"-pix_fmt", "yuv420p",
		"-movflags", "faststart",
		"-strict", "experimental",
	)

	if opts.Threads > 0 {
		args = append(args, "-threads", strconv.Itoa(opts.Threads))
	}

	if opts.Overwrite {
		args = append(args, "-y")
	} else {
		args = append(args, "-n")
	}

	args = append(args, output)
	return args
}

// WriteConcatList writes the concat demuxer list file for a merge job,
// next to the output so the same volume's cleanup covers it. Paths are
// made absolute because the demuxer resolves relative entries against the
// list file's directory.
func WriteConcatList(inputs []string, output string) (string, error) {
	var b strings.Builder
	for _, in := range inputs {
		abs, err := filepath.Abs(in)
		if err != nil {
			return "", fmt.Errorf("resolve concat entry %s: %w", in, err)
		}
		fmt.Fprintf(&b, "file %s\n", quoteConcatPath(abs))
	}

	list := output + ".concat.txt"
	if err := os.WriteFile(list, []byte(b.String()), 0o644); err != nil {
		return "", fmt.Errorf("write concat list: %w", err)
	}
	return list, nil
}

// quoteConcatPath escapes a path for a concat list entry. The demuxer's
// quoting rule: single quotes around the whole path, embedded quotes
// closed, escaped, reopened.
func quoteConcatPath(path string) string {
	return "'" + strings.ReplaceAll(path, "'", `'\''`) + "'"
}
