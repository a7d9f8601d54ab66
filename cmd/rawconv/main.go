// Command rawconv is the CLI entrypoint for the raw capture converter.
//
// It parses flags, validates configuration and paths, and either runs
// system diagnostics (--check) or scans the source tree, plans the
// conversion jobs, and drives them through the task engine.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/backmassage/rawconv/internal/check"
	"github.com/backmassage/rawconv/internal/config"
	"github.com/backmassage/rawconv/internal/display"
	"github.com/backmassage/rawconv/internal/ffmpeg"
	"github.com/backmassage/rawconv/internal/logging"
	"github.com/backmassage/rawconv/internal/planner"
	"github.com/backmassage/rawconv/internal/probe"
	"github.com/backmassage/rawconv/internal/scan"
	"github.com/backmassage/rawconv/internal/task"
	"github.com/backmassage/rawconv/internal/term"
)

// version is injected at build time via -ldflags.
var version = "1.0.0-dev"

func main() {
	os.Exit(run())
}

func run() int {
	// Phase 1: Bootstrap. The logger doesn't exist yet, so errors go
	// directly to stderr via fmt. An optional .env file can supply
	// environment defaults (RAWCONV_SETTINGS and friends) for service
	// deployments.
	_ = godotenv.Load()

	cfg := config.DefaultConfig()
	if err := config.ParseFlags(&cfg, os.Args[1:], version); err != nil {
		fmt.Fprintf(os.Stderr, "rawconv: %v\n", err)
		return 1
	}

	term.Configure(cfg.Color)
	log := logging.Setup(&cfg)

	display.PrintBanner()

	if cfg.CheckOnly {
		check.RunCheck(&cfg, log)
		return 0
	}

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "rawconv: %v\n", err)
		return 1
	}

	// Phase 2: Paths. The source must exist; the output directory is
	// created if needed.
	if fi, err := os.Stat(cfg.SourceDir); err != nil || !fi.IsDir() {
		log.Error().Str("dir", cfg.SourceDir).Msg("source directory not found")
		return 1
	}
	outputDir := cfg.ResolvedOutputDir()
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		log.Error().Str("dir", outputDir).Err(err).Msg("cannot create output directory")
		return 1
	}

	log.Info().Str("version", version).Msg("rawconv starting")
	log.Info().Str("in", cfg.SourceDir).Str("out", outputDir).Msg("paths resolved")

	// Fail fast if ffmpeg/ffprobe or the needed encoders are unavailable.
	if err := check.CheckDeps(&cfg); err != nil {
		log.Error().Err(err).Msg("dependency check failed")
		return 1
	}

	// Phase 3: Scan and plan.
	plans, err := buildPlans(&cfg, outputDir, log)
	if err != nil {
		log.Error().Err(err).Msg("scan failed")
		return 1
	}
	if len(plans) == 0 {
		log.Info().Str("ext", cfg.Extension).Msg("no capture files found")
		return 0
	}

	specs := make([]task.JobSpec, len(plans))
	for i, p := range plans {
		specs[i] = task.JobSpec{Inputs: p.Inputs, Output: p.Output}
	}
	set := task.NewJobSet(specs, task.Options{
		FFmpegPath:   cfg.FFmpegPath,
		VideoCodec:   cfg.VideoCodec,
		CRF:          cfg.CRF,
		Preset:       cfg.Preset,
		IncludeAudio: cfg.IncludeAudio,
		AudioCodec:   cfg.AudioCodec,
		AudioBitrate: cfg.AudioBitrate,
		Threads:      cfg.Threads,
		Overwrite:    cfg.Overwrite,
	})

	// Phase 4: Run. The console view consumes the event stream; SIGINT
	// and SIGTERM cancel the remaining jobs, which stops each subprocess
	// gracefully and removes partial output.
	adapter := ffmpeg.NewAdapter(probe.New(cfg.FFprobePath), log)
	manager := task.NewManager(adapter, log)

	statuses := make([]task.Status, 0, set.Len())
	for _, j := range set.Jobs() {
		statuses = append(statuses, j.Status())
	}
	console := display.NewConsole(os.Stdout, statuses, term.IsTerminal(os.Stdout))
	events := manager.Subscribe()
	consoleDone := make(chan struct{})
	go func() {
		defer close(consoleDone)
		console.Run(events)
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Warn().Msg("interrupt received, cancelling remaining jobs")
		manager.CancelAll()
	}()

	if err := manager.Start(set, task.RunConfig{Workers: cfg.Workers}); err != nil {
		log.Error().Err(err).Msg("could not start run")
		return 1
	}

	summary, err := manager.Wait(context.Background())
	if err != nil {
		log.Error().Err(err).Msg("run aborted")
		return 1
	}
	<-consoleDone

	if summary.Failed > 0 {
		return 1
	}
	return 0
}

// buildPlans scans the source tree and produces one conversion plan per
// output: one per capture file, or one per directory group when merging.
func buildPlans(cfg *config.Config, outputDir string, log zerolog.Logger) ([]planner.Plan, error) {
	pl := planner.New(outputDir)

	if cfg.MergeSegments {
		groups, err := scan.Groups(cfg.SourceDir, cfg.Extension)
		if err != nil {
			return nil, err
		}
		plans := make([]planner.Plan, 0, len(groups))
		for _, g := range groups {
			p := pl.Merge(g.Key, g.Files)
			for _, w := range p.Warnings {
				log.Warn().Str("group", g.Key).Msg(w)
			}
			plans = append(plans, p)
		}
		return plans, nil
	}

	files, err := scan.Files(cfg.SourceDir, cfg.Extension)
	if err != nil {
		return nil, err
	}
	plans := make([]planner.Plan, 0, len(files))
	for _, f := range files {
		plans = append(plans, pl.Single(f))
	}
	return plans, nil
}
