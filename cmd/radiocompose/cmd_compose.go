/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/shirou/gopsutil/v3/host"
	"github.com/spf13/cobra"

	"github.com/friendsincode/radiocompose/internal/audio"
	"github.com/friendsincode/radiocompose/internal/capacity"
	"github.com/friendsincode/radiocompose/internal/catalog"
	"github.com/friendsincode/radiocompose/internal/composer"
	"github.com/friendsincode/radiocompose/internal/config"
	"github.com/friendsincode/radiocompose/internal/eventbus"
	"github.com/friendsincode/radiocompose/internal/events"
	"github.com/friendsincode/radiocompose/internal/progress"
	"github.com/friendsincode/radiocompose/internal/queue"
	"github.com/friendsincode/radiocompose/internal/scheduler"
	"github.com/friendsincode/radiocompose/internal/status"
	"github.com/friendsincode/radiocompose/internal/storage"
	"github.com/friendsincode/radiocompose/internal/telemetry"
	"github.com/friendsincode/radiocompose/internal/version"
)

var composeAssumeYes bool

var composeCmd = &cobra.Command{
	Use:   "compose PATH",
	Short: "Compose a full card of programs into PATH",
	Long: `Compose banks x files programs into PATH, laid out as PATH/<bank>/<file>.wav.

Existing files are never overwritten: a program whose name is taken is stored
under the next free numbered name instead.

Examples:
  # Fill a mounted card with the default 16 banks of 12 half-hour programs
  radiocompose compose /media/card

  # A small reproducible run with a live status endpoint
  radiocompose compose ./out -b 2 -f 2 -m 5 --seed 42 --status-bind 127.0.0.1:8090
`,
	Args: cobra.ExactArgs(1),
	RunE: runCompose,
}

func init() {
	rootCmd.AddCommand(composeCmd)
	addGridFlags(composeCmd.Flags())
	addComposeFlags(composeCmd.Flags())
	composeCmd.Flags().BoolVarP(&composeAssumeYes, "yes", "y", false, "Continue without asking when free space looks insufficient")
}

func runCompose(cmd *cobra.Command, args []string) error {
	root := args[0]
	info, err := os.Stat(root)
	if err != nil {
		return fmt.Errorf("output path: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("output path %s is not a directory", root)
	}

	if err := loadConfig(cmd); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Debug {
		logHostInfo(ctx)
	}

	if err := confirmCapacity(cmd.InOrStdin(), cmd.OutOrStdout(), root); err != nil {
		return err
	}

	tracerProvider, err := telemetry.InitTracer(ctx, telemetry.TracerConfig{
		ServiceName:    "radiocompose",
		ServiceVersion: version.Version,
		OTLPEndpoint:   cfg.OTLPEndpoint,
		Enabled:        cfg.TracingEnabled,
		SampleRate:     cfg.TracingSampleRate,
	}, logger)
	if err != nil {
		return fmt.Errorf("initialize tracer: %w", err)
	}
	defer func() {
		if err := tracerProvider.Shutdown(context.Background()); err != nil {
			logger.Error().Err(err).Msg("failed to shutdown tracer provider")
		}
	}()

	engine, err := audio.NewSoxEngine(cfg.SoxPath, logger)
	if err != nil {
		return err
	}

	httpFetcher := catalog.NewHTTPFetcher(cfg.HTTPTimeout, version.UserAgent(), logger)
	pages, closePages, err := newPageFetcher(ctx, httpFetcher)
	if err != nil {
		return err
	}
	defer closePages()

	cat, err := catalog.New(cfg.Catalog, pages, logger)
	if err != nil {
		return err
	}

	sections, closeQueue, err := newSectionQueue(ctx)
	if err != nil {
		return err
	}
	defer closeQueue()

	store, err := newStore(ctx, root)
	if err != nil {
		return err
	}

	bus := events.NewBus()
	if cfg.NATSURL != "" {
		natsCfg := eventbus.DefaultNATSConfig()
		natsCfg.URL = cfg.NATSURL
		natsCfg.Token = cfg.NATSToken
		forwarder, err := eventbus.ConnectNATS(natsCfg, logger)
		if err != nil {
			return err
		}
		defer func() {
			if err := forwarder.Close(); err != nil {
				logger.Warn().Err(err).Msg("close nats forwarder")
			}
		}()
		forwarder.Attach(bus)
	}

	tracker := progress.NewTracker()
	tracker.Attach(bus)

	if cfg.StatusBind != "" {
		statusSrv := status.New(cfg.StatusBind, bus, tracker, logger)
		if err := statusSrv.Start(); err != nil {
			return err
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := statusSrv.Shutdown(shutdownCtx); err != nil {
				logger.Warn().Err(err).Msg("graceful shutdown failed")
			}
		}()
	}

	seed := cfg.RunSeed()
	logger.Info().Uint64("seed", seed).Str("catalog", cfg.Catalog).Str("root", root).Msg("radiocompose starting")

	comp := composer.NewComposer(cat, httpFetcher, engine, store, composer.Config{
		Root:      root,
		TempDir:   cfg.TempDir,
		Fanout:    cfg.Diversity,
		MaxSkips:  cfg.MaxSkips,
		Crossfade: cfg.Crossfade,
		Strict:    cfg.Strict(),
	}, logger)

	sched := scheduler.New(cat, sections, comp, bus, scheduler.Config{
		Workers:  cfg.Workers,
		FailFast: cfg.Strict(),
		Seed:     seed,
	}, logger)

	var bar *progress.Bar
	if !cfg.Debug {
		bar = progress.NewBar(cmd.OutOrStdout(), tracker)
		bar.Start(ctx)
	}

	report, err := sched.Run(ctx, scheduler.Grid{Banks: cfg.Banks, Files: cfg.Files, Minutes: cfg.Minutes})
	if bar != nil {
		bar.Stop()
	}
	if err != nil {
		return err
	}

	if cfg.MetricsFile != "" {
		if err := telemetry.WriteTextfile(cfg.MetricsFile); err != nil {
			logger.Warn().Err(err).Msg("write metrics file")
		}
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%d stored, %d skipped, %d failed, %d cancelled in %s\n",
		report.Stored, report.Skipped, report.Failed, report.Cancelled, report.Duration.Round(time.Second))

	if err := report.Err(); err != nil {
		return fmt.Errorf("composition incomplete: %w", err)
	}
	if ctx.Err() != nil {
		return &exitError{code: 130, msg: "interrupted"}
	}
	return nil
}

// confirmCapacity prints the space a run needs and asks before continuing
// when the target looks too small.
func confirmCapacity(in io.Reader, out io.Writer, root string) error {
	required := capacity.Required(cfg.Banks, cfg.Files, cfg.Minutes, audio.DeviceFormat)
	value, unit := capacity.Pretty(required)
	fmt.Fprintf(out, "Space required on SD card is %.3f %s\n", value, unit)

	_, err := capacity.Check(root, required)
	if err == nil {
		return nil
	}
	var warning *capacity.Warning
	if !errors.As(err, &warning) {
		logger.Warn().Err(err).Msg("could not determine free space")
		return nil
	}
	logger.Warn().Err(warning).Msg("insufficient free space")
	if composeAssumeYes {
		return nil
	}

	fmt.Fprintf(out, "There is not enough free disk space on %s. Do you want to continue? (y/N) ", root)
	answer, _ := bufio.NewReader(in).ReadString('\n')
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return nil
	}
	return &exitError{code: 2, msg: "aborted"}
}

// newPageFetcher returns the configured page fetcher and its cleanup.
func newPageFetcher(ctx context.Context, httpFetcher *catalog.HTTPFetcher) (catalog.PageFetcher, func(), error) {
	if cfg.Fetcher != config.FetcherBrowser {
		return httpFetcher, func() {}, nil
	}
	browser, err := catalog.NewBrowserFetcher(ctx, cfg.BrowserHeadless, logger)
	if err != nil {
		return nil, nil, err
	}
	return browser, func() {
		if err := browser.Close(); err != nil {
			logger.Warn().Err(err).Msg("close browser")
		}
	}, nil
}

// newSectionQueue returns the shared section queue: a Redis list when an
// address is configured, process memory otherwise.
func newSectionQueue(ctx context.Context) (queue.Loader, func(), error) {
	if cfg.RedisAddr == "" {
		return queue.NewMemory(), func() {}, nil
	}
	q, err := queue.NewRedis(ctx, queue.RedisConfig{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
		Key:      cfg.RedisKey,
		TTL:      queue.DefaultRedisTTL,
	}, logger)
	if err != nil {
		return nil, nil, err
	}
	return q, func() {
		if err := q.Close(); err != nil {
			logger.Warn().Err(err).Msg("close redis queue")
		}
	}, nil
}

// newStore returns the program store, mirrored to S3 when a bucket is set.
func newStore(ctx context.Context, root string) (composer.Store, error) {
	local := storage.NewSafeStore(logger)
	if cfg.S3Bucket == "" {
		return local, nil
	}
	remote, err := storage.NewS3Store(ctx, storage.S3Config{
		Bucket:          cfg.S3Bucket,
		Prefix:          cfg.S3Prefix,
		Region:          cfg.S3Region,
		Endpoint:        cfg.S3Endpoint,
		AccessKeyID:     cfg.S3AccessKeyID,
		SecretAccessKey: cfg.S3SecretAccessKey,
		UsePathStyle:    cfg.S3UsePathStyle,
	}, logger)
	if err != nil {
		return nil, err
	}
	return storage.NewMirroredStore(local, remote, root, cfg.Strict(), logger), nil
}

func logHostInfo(ctx context.Context) {
	info, err := host.InfoWithContext(ctx)
	if err != nil {
		logger.Debug().Err(err).Msg("host info unavailable")
		return
	}
	logger.Debug().
		Str("hostname", info.Hostname).
		Str("os", info.OS).
		Str("platform", info.Platform).
		Str("platform_version", info.PlatformVersion).
		Str("kernel", info.KernelVersion).
		Str("arch", info.KernelArch).
		Msg("host")
}
