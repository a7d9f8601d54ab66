// Package config holds runtime configuration: defaults, the optional YAML
// settings file, CLI flag parsing, and validation.
package config

import (
	"fmt"
	"path/filepath"
	"strings"
)

// ColorMode controls ANSI color in console output.
type ColorMode string

const (
	ColorAuto   ColorMode = "auto"   // Color when stdout is a TTY (default).
	ColorAlways ColorMode = "always" // Force color.
	ColorNever  ColorMode = "never"  // Plain output.
)

// LogFormat selects the log output rendering.
type LogFormat string

const (
	LogConsole LogFormat = "console" // Human-readable console output (default).
	LogJSON    LogFormat = "json"    // One JSON object per line.
)

// Config holds all runtime settings. It is populated by [DefaultConfig],
// optionally overlaid from a YAML settings file by [LoadFile], and finally
// mutated by [ParseFlags] before being passed (by pointer) to packages that
// need it. Fields are grouped by concern.
type Config struct {
	// Paths (set from positional args).
	SourceDir string `yaml:"source_dir"`
	OutputDir string `yaml:"output_dir"` // Relative paths resolve against SourceDir.

	// External tools.
	FFmpegPath  string `yaml:"ffmpeg_path"`  // Default: "ffmpeg" (PATH lookup).
	FFprobePath string `yaml:"ffprobe_path"` // Default: "ffprobe".

	// Input selection.
	Extension string `yaml:"extension"` // Capture file extension. Default: ".v264".

	// Transcode options (snapshotted into each job at creation).
	VideoCodec   string `yaml:"video_codec"`   // Default: "libx264".
	CRF          int    `yaml:"crf"`           // Default: 18. Valid: 0–51.
	Preset       string `yaml:"preset"`        // Default: "fast".
	IncludeAudio bool   `yaml:"include_audio"` // Default: false (capture streams carry no audio).
	AudioCodec   string `yaml:"audio_codec"`   // Default: "aac".
	AudioBitrate string `yaml:"audio_bitrate"` // Default: "128k".
	Threads      int    `yaml:"threads"`       // ffmpeg thread hint. 0 = ffmpeg default.

	// Run behavior.
	Workers       int  `yaml:"workers"`        // Concurrent conversions. Default: 4.
	Overwrite     bool `yaml:"overwrite"`      // Replace existing outputs. Default: false.
	MergeSegments bool `yaml:"merge_segments"` // Concatenate per-directory segment groups.

	// Output.
	Color ColorMode `yaml:"color"` // auto|always|never. Default: "auto".

	// Logging.
	LogLevel       string    `yaml:"log_level"`        // debug|info|warn|error. Default: "info".
	LogFormat      LogFormat `yaml:"log_format"`       // Default: "console".
	LogFile        string    `yaml:"log_file"`         // Optional rotating log file path.
	LogFileMaxMB   int       `yaml:"log_file_max_mb"`  // Rotate threshold. Default: 50.
	LogFileBackups int       `yaml:"log_file_backups"` // Old files kept. Default: 3.
	LogFileMaxAge  int       `yaml:"log_file_max_age"` // Days kept. Default: 7.

	// Utility modes (flags only, not persisted).
	CheckOnly bool `yaml:"-"`
	Verbose   bool `yaml:"-"`
}

// DefaultConfig returns a Config with the stock conversion settings for
// raw camera captures.
func DefaultConfig() Config {
	return Config{
		OutputDir:      "converted",
		FFmpegPath:     "ffmpeg",
		FFprobePath:    "ffprobe",
		Extension:      ".v264",
		VideoCodec:     "libx264",
		CRF:            18,
		Preset:         "fast",
		IncludeAudio:   false,
		AudioCodec:     "aac",
		AudioBitrate:   "128k",
		Threads:        0,
		Workers:        4,
		Overwrite:      false,
		MergeSegments:  false,
		Color:          ColorAuto,
		LogLevel:       "info",
		LogFormat:      LogConsole,
		LogFileMaxMB:   50,
		LogFileBackups: 3,
		LogFileMaxAge:  7,
	}
}

// Validate checks field ranges and cross-field consistency. Returns the
// first problem found.
func (c *Config) Validate() error {
	if c.SourceDir == "" {
		return fmt.Errorf("source directory is required")
	}
	if c.Workers < 1 {
		return fmt.Errorf("workers must be >= 1, got %d", c.Workers)
	}
	if c.CRF < 0 || c.CRF > 51 {
		return fmt.Errorf("crf must be between 0 and 51, got %d", c.CRF)
	}
	if c.Threads < 0 {
		return fmt.Errorf("threads must be >= 0, got %d", c.Threads)
	}
	if !strings.HasPrefix(c.Extension, ".") {
		return fmt.Errorf("extension must start with '.', got %q", c.Extension)
	}
	if c.VideoCodec == "" {
		return fmt.Errorf("video_codec must not be empty")
	}
	if c.IncludeAudio && c.AudioCodec == "" {
		return fmt.Errorf("audio_codec must not be empty when include_audio is set")
	}
	switch c.Color {
	case ColorAuto, ColorAlways, ColorNever:
	default:
		return fmt.Errorf("color must be auto|always|never, got %q", c.Color)
	}
	switch c.LogFormat {
	case LogConsole, LogJSON:
	default:
		return fmt.Errorf("log_format must be %q or %q, got %q", LogConsole, LogJSON, c.LogFormat)
	}
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log_level must be debug|info|warn|error, got %q", c.LogLevel)
	}
	return nil
}

// ResolvedOutputDir returns the effective output directory: OutputDir
// itself when absolute, otherwise joined under SourceDir so the default
// "converted" lands next to the captures.
func (c *Config) ResolvedOutputDir() string {
	if filepath.IsAbs(c.OutputDir) {
		return filepath.Clean(c.OutputDir)
	}
	return filepath.Join(c.SourceDir, c.OutputDir)
}
