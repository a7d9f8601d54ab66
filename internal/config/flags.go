package config

// This file implements CLI flag parsing and help text. Flags are applied on
// top of DefaultConfig and any loaded settings file, so defaults hold unless
// the user passes the flag.

import (
	"flag"
	"fmt"
	"os"
)

// ParseFlags parses args (os.Args[1:] in production) into cfg. The settings
// file, when given via --settings, is loaded before the remaining flags are
// applied so that explicit flags win. On --help or --version it prints and
// exits. Positional arguments: SOURCE_DIR [OUTPUT_DIR].
func ParseFlags(cfg *Config, args []string, version string) error {
	fs := flag.NewFlagSet("rawconv", flag.ContinueOnError)
	fs.Usage = func() { printUsage(fs) }

	// --settings is parsed in a throwaway pass first so file values do not
	// clobber flags given on the command line.
	settingsPath := peekSettingsPath(args)
	if settingsPath != "" {
		if err := LoadFile(cfg, settingsPath, false); err != nil {
			return err
		}
	}

	var showVersion, showHelp bool
	fs.String("settings", "", "YAML settings file (loaded before other flags)")
	fs.StringVar(&cfg.FFmpegPath, "ffmpeg", cfg.FFmpegPath, "Path to the ffmpeg binary")
	fs.StringVar(&cfg.FFprobePath, "ffprobe", cfg.FFprobePath, "Path to the ffprobe binary")
	fs.StringVar(&cfg.Extension, "ext", cfg.Extension, "Capture file extension to convert")
	fs.IntVar(&cfg.CRF, "crf", cfg.CRF, "H.264 quality (0-51, lower is better)")
	fs.StringVar(&cfg.Preset, "preset", cfg.Preset, "x264 encoder preset")
	fs.BoolVar(&cfg.IncludeAudio, "audio", cfg.IncludeAudio, "Transcode audio instead of dropping it")
	fs.IntVar(&cfg.Threads, "threads", cfg.Threads, "ffmpeg thread hint (0 = auto)")
	fs.IntVar(&cfg.Workers, "workers", cfg.Workers, "Concurrent conversions")
	fs.BoolVar(&cfg.Overwrite, "overwrite", cfg.Overwrite, "Replace existing output files")
	fs.BoolVar(&cfg.MergeSegments, "merge", cfg.MergeSegments, "Concatenate each directory's segments into one recording")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level: debug|info|warn|error")
	colorMode := fs.String("color", string(cfg.Color), "Console color: auto|always|never")
	fs.StringVar(&cfg.LogFile, "log-file", cfg.LogFile, "Also log to this file (rotated)")
	fs.BoolVar(&cfg.Verbose, "verbose", cfg.Verbose, "Debug logging (same as --log-level debug)")
	fs.BoolVar(&cfg.CheckOnly, "check", cfg.CheckOnly, "Run tool diagnostics and exit")
	fs.BoolVar(&showVersion, "version", false, "Print version and exit")
	fs.BoolVar(&showHelp, "help", false, "Print usage and exit")
	jsonLogs := fs.Bool("log-json", cfg.LogFormat == LogJSON, "Emit JSON logs instead of console output")

	if err := fs.Parse(args); err != nil {
		return err
	}

	if showHelp {
		printUsage(fs)
		os.Exit(0)
	}
	if showVersion {
		fmt.Fprintln(os.Stdout, "rawconv v"+version)
		os.Exit(0)
	}

	if *jsonLogs {
		cfg.LogFormat = LogJSON
	}
	cfg.Color = ColorMode(*colorMode)
	if cfg.Verbose {
		cfg.LogLevel = "debug"
	}

	return parsePositionalArgs(fs, cfg)
}

// peekSettingsPath scans args for --settings/-settings without disturbing
// the real FlagSet.
func peekSettingsPath(args []string) string {
	peek := flag.NewFlagSet("rawconv-peek", flag.ContinueOnError)
	peek.SetOutput(nopWriter{})
	peek.Usage = func() {}
	path := peek.String("settings", "", "")
	registerIgnoredFlags(peek)
	_ = peek.Parse(args)
	return *path
}

// registerIgnoredFlags mirrors every real flag so the peek pass does not
// error out on them. Values are discarded.
func registerIgnoredFlags(fs *flag.FlagSet) {
	for _, name := range []string{"ffmpeg", "ffprobe", "ext", "preset", "log-level", "log-file", "color"} {
		fs.String(name, "", "")
	}
	for _, name := range []string{"crf", "threads", "workers"} {
		fs.Int(name, 0, "")
	}
	for _, name := range []string{"audio", "overwrite", "merge", "verbose", "check", "version", "help", "log-json"} {
		fs.Bool(name, false, "")
	}
}

type nopWriter struct{}

func (nopWriter) Write(p []byte) (int, error) { return len(p), nil }

// parsePositionalArgs consumes SOURCE_DIR and the optional OUTPUT_DIR.
// In --check mode the source directory may be omitted.
func parsePositionalArgs(fs *flag.FlagSet, cfg *Config) error {
	rest := fs.Args()
	switch len(rest) {
	case 0:
		if cfg.CheckOnly || cfg.SourceDir != "" {
			return nil
		}
		return fmt.Errorf("missing SOURCE_DIR argument (see --help)")
	case 1:
		cfg.SourceDir = rest[0]
	case 2:
		cfg.SourceDir = rest[0]
		cfg.OutputDir = rest[1]
	default:
		return fmt.Errorf("too many positional arguments: %v", rest[2:])
	}
	return nil
}

func printUsage(fs *flag.FlagSet) {
	fmt.Fprint(os.Stderr, `Usage: rawconv [options] SOURCE_DIR [OUTPUT_DIR]

Converts raw .v264 camera capture files under SOURCE_DIR into standard MP4
files, optionally merging each directory's segments into one recording.
OUTPUT_DIR defaults to "converted" inside SOURCE_DIR.

Options:
`)
	fs.PrintDefaults()
}
