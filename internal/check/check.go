// Package check provides system diagnostics (--check mode) and pre-run
// dependency validation for the configured ffmpeg and ffprobe binaries.
package check

import (
	"errors"
	"os/exec"
	"strings"

	"github.com/rs/zerolog"

	"github.com/backmassage/rawconv/internal/config"
)

// Sentinel errors returned by CheckDeps when a required tool or encoder is missing.
var (
	ErrFfmpegNotFound  = errors.New("ffmpeg binary not found")
	ErrFfprobeNotFound = errors.New("ffprobe binary not found")
	ErrX264Unavailable = errors.New("libx264 test encode failed")
	ErrAACUnavailable  = errors.New("aac test encode failed")
)

// CheckDeps is the pre-run validation: it verifies that the configured
// ffmpeg and ffprobe binaries resolve and that the encoders the run needs
// actually work, via short test encodes. Returns a sentinel error on the
// first failure.
func CheckDeps(cfg *config.Config) error {
	if _, err := exec.LookPath(cfg.FFmpegPath); err != nil {
		return ErrFfmpegNotFound
	}
	if _, err := exec.LookPath(cfg.FFprobePath); err != nil {
		return ErrFfprobeNotFound
	}
	if !runSilent(cfg.FFmpegPath, videoTestArgs(cfg.VideoCodec)...) {
		return ErrX264Unavailable
	}
	if cfg.IncludeAudio && !runSilent(cfg.FFmpegPath, audioTestArgs(cfg.AudioCodec)...) {
		return ErrAACUnavailable
	}
	return nil
}

// RunCheck runs the interactive --check flow: reports the availability and
// version of ffmpeg and ffprobe and the result of the test encodes. This
// is informational only and does not stop on failure.
func RunCheck(cfg *config.Config, log zerolog.Logger) {
	log.Info().Msg("=== System Check ===")

	checkTool(log, "ffmpeg", cfg.FFmpegPath)
	checkTool(log, "ffprobe", cfg.FFprobePath)

	log.Info().Str("codec", cfg.VideoCodec).Msg("testing video encoder")
	if runSilent(cfg.FFmpegPath, videoTestArgs(cfg.VideoCodec)...) {
		log.Info().Str("codec", cfg.VideoCodec).Msg("video encoder works")
	} else {
		log.Error().Str("codec", cfg.VideoCodec).Msg("video test encode failed")
	}

	log.Info().Str("codec", cfg.AudioCodec).Msg("testing audio encoder")
	if runSilent(cfg.FFmpegPath, audioTestArgs(cfg.AudioCodec)...) {
		log.Info().Str("codec", cfg.AudioCodec).Msg("audio encoder works")
	} else {
		log.Error().Str("codec", cfg.AudioCodec).Msg("audio test encode failed")
	}
}

// checkTool verifies a binary resolves and logs its version string.
func checkTool(log zerolog.Logger, name, path string) {
	if _, err := exec.LookPath(path); err != nil {
		log.Error().Str("path", path).Msgf("%s not found", name)
		return
	}
	out, err := exec.Command(path, "-version").Output()
	if err != nil {
		log.Warn().Str("path", path).Err(err).Msgf("%s found but -version failed", name)
		return
	}
	firstLine := strings.TrimSpace(string(out))
	if idx := strings.Index(firstLine, "\n"); idx > 0 {
		firstLine = firstLine[:idx]
	}
	log.Info().Msg(firstLine)
}

// videoTestArgs returns the arguments for a minimal test encode with the
// configured video codec.
func videoTestArgs(codec string) []string {
	return []string{
		"-hide_banner", "-nostdin", "-loglevel", "error",
		"-f", "lavfi", "-i", "color=black:s=256x256:d=0.1",
		"-c:v", codec,
		"-f", "null", "-",
	}
}

// audioTestArgs returns the arguments for a minimal test encode with the
// configured audio codec.
func audioTestArgs(codec string) []string {
	return []string{
		"-hide_banner", "-nostdin", "-loglevel", "error",
		"-f", "lavfi", "-i", "sine=frequency=1000:duration=0.1",
		"-c:a", codec,
		"-f", "null", "-",
	}
}

// runSilent runs a command and returns true if it exits with status 0.
// Both stdout and stderr are discarded.
func runSilent(name string, args ...string) bool {
	return exec.Command(name, args...).Run() == nil
}
