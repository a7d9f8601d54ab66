package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultConfigValidates(t *testing.T) {
	cfg := DefaultConfig()
	cfg.SourceDir = "/captures"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate, got: %v", err)
	}
}

func TestValidateRejections(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"missing source", func(c *Config) { c.SourceDir = "" }, "source directory"},
		{"zero workers", func(c *Config) { c.Workers = 0 }, "workers"},
		{"negative workers", func(c *Config) { c.Workers = -2 }, "workers"},
		{"crf too high", func(c *Config) { c.CRF = 52 }, "crf"},
		{"crf negative", func(c *Config) { c.CRF = -1 }, "crf"},
		{"bad extension", func(c *Config) { c.Extension = "v264" }, "extension"},
		{"empty video codec", func(c *Config) { c.VideoCodec = "" }, "video_codec"},
		{"audio without codec", func(c *Config) { c.IncludeAudio = true; c.AudioCodec = "" }, "audio_codec"},
		{"bad color mode", func(c *Config) { c.Color = "sometimes" }, "color"},
		{"bad log format", func(c *Config) { c.LogFormat = "xml" }, "log_format"},
		{"bad log level", func(c *Config) { c.LogLevel = "loud" }, "log_level"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.SourceDir = "/captures"
			tc.mutate(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatalf("expected validation error containing %q, got nil", tc.want)
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Errorf("error %q does not mention %q", err, tc.want)
			}
		})
	}
}

func TestResolvedOutputDir(t *testing.T) {
	cfg := DefaultConfig()
	cfg.SourceDir = "/captures"

	if got := cfg.ResolvedOutputDir(); got != filepath.Join("/captures", "converted") {
		t.Errorf("relative output dir: got %q", got)
	}

	cfg.OutputDir = "/mnt/out"
	if got := cfg.ResolvedOutputDir(); got != "/mnt/out" {
		t.Errorf("absolute output dir: got %q", got)
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "settings.yaml")
	data := "crf: 23\nworkers: 2\nmerge_segments: true\naudio_bitrate: 192k\n"
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg := DefaultConfig()
	if err := LoadFile(&cfg, path, false); err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if cfg.CRF != 23 || cfg.Workers != 2 || !cfg.MergeSegments || cfg.AudioBitrate != "192k" {
		t.Errorf("settings not applied: %+v", cfg)
	}
	// Untouched keys keep their defaults.
	if cfg.Preset != "fast" || cfg.Extension != ".v264" {
		t.Errorf("defaults clobbered: %+v", cfg)
	}
}

func TestLoadFileUnknownKey(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "settings.yaml")
	if err := os.WriteFile(path, []byte("crv: 23\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg := DefaultConfig()
	if err := LoadFile(&cfg, path, false); err == nil {
		t.Fatal("expected error for unknown settings key")
	}
}

func TestLoadFileMissingOptional(t *testing.T) {
	cfg := DefaultConfig()
	if err := LoadFile(&cfg, filepath.Join(t.TempDir(), "absent.yaml"), true); err != nil {
		t.Fatalf("optional missing file should not error: %v", err)
	}
	if err := LoadFile(&cfg, filepath.Join(t.TempDir(), "absent.yaml"), false); err == nil {
		t.Fatal("required missing file should error")
	}
}

func TestParseFlags(t *testing.T) {
	cfg := DefaultConfig()
	err := ParseFlags(&cfg, []string{"-crf", "20", "-workers", "8", "-merge", "/captures", "/out"}, "test")
	if err != nil {
		t.Fatalf("ParseFlags: %v", err)
	}
	if cfg.CRF != 20 || cfg.Workers != 8 || !cfg.MergeSegments {
		t.Errorf("flags not applied: %+v", cfg)
	}
	if cfg.SourceDir != "/captures" || cfg.OutputDir != "/out" {
		t.Errorf("positional args not applied: %+v", cfg)
	}
}

func TestParseFlagsSettingsFileThenFlags(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "settings.yaml")
	if err := os.WriteFile(path, []byte("crf: 30\nworkers: 2\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg := DefaultConfig()
	err := ParseFlags(&cfg, []string{"--settings", path, "-crf", "20", "/captures"}, "test")
	if err != nil {
		t.Fatalf("ParseFlags: %v", err)
	}
	// Explicit flag wins over the settings file; file wins over defaults.
	if cfg.CRF != 20 {
		t.Errorf("flag should override settings file, got crf=%d", cfg.CRF)
	}
	if cfg.Workers != 2 {
		t.Errorf("settings file should override default, got workers=%d", cfg.Workers)
	}
}

func TestParseFlagsMissingSource(t *testing.T) {
	cfg := DefaultConfig()
	if err := ParseFlags(&cfg, nil, "test"); err == nil {
		t.Fatal("expected error for missing SOURCE_DIR")
	}

	cfg = DefaultConfig()
	if err := ParseFlags(&cfg, []string{"-check"}, "test"); err != nil {
		t.Fatalf("--check should not require SOURCE_DIR: %v", err)
	}
}
