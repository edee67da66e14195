// Package internal provides the main application initialization and runtime logic.
package internal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/starford/vaultprep/internal/apperr"
	"github.com/starford/vaultprep/internal/ledger"
	"github.com/starford/vaultprep/internal/models"
	"github.com/starford/vaultprep/internal/output"
	"github.com/starford/vaultprep/internal/pipeline"
	"github.com/starford/vaultprep/internal/publish"
	"github.com/starford/vaultprep/internal/storage"
	"github.com/starford/vaultprep/internal/watch"
)

// NewLogger builds the structured logger for the configured format and level.
func NewLogger(w io.Writer, format string, level slog.Level) *slog.Logger {
	opts := &slog.HandlerOptions{Level: level}
	if format == LogFormatJSON {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func newApplication(opts []Option) (*application, *slog.Logger, *output.Printer, error) {
	app := &application{out: os.Stdout, errOut: os.Stderr}
	for _, opt := range opts {
		opt(app)
	}
	if app.config == nil {
		return nil, nil, nil, fmt.Errorf("config is required")
	}
	if app.root == "" {
		app.root = app.config.Content.Root
	}

	cfg := app.config
	logger := NewLogger(app.errOut, cfg.App.LogFormat, cfg.App.LogLevel)
	slog.SetDefault(logger)

	color := output.ResolveColorMode(cfg.App.Color, output.IsTTY(app.out))
	printer := output.NewPrinter(app.out, app.json, color)
	return app, logger, printer, nil
}

// Run processes the content tree once and prints the run report.
func Run(ctx context.Context, opts ...Option) error {
	app, logger, printer, err := newApplication(opts)
	if err != nil {
		return err
	}
	cfg := app.config

	logger.Debug("Configuration loaded",
		slog.String("content_root", app.root),
		slog.String("ledger_path", cfg.Ledger.Path),
		slog.String("log_level", cfg.App.LogLevel.String()))

	store, err := storage.NewFS(app.root)
	if err != nil {
		return err
	}

	rec, err := ledger.New(cfg.Ledger.Path)
	if err != nil {
		return fmt.Errorf("init ledger: %w", err)
	}
	defer rec.Close()

	report, err := process(ctx, store, cfg, rec, logger)
	if err != nil {
		return err
	}
	return printer.Report(report)
}

// process runs the pipeline once and records the report.
func process(ctx context.Context, store storage.Provider, cfg *Config, rec ledger.Recorder, logger *slog.Logger) (*models.RunReport, error) {
	started := time.Now()
	report, err := pipeline.Run(ctx, store, pipeline.Options{Prepare: cfg.Prepare.Options()}, logger)
	if err != nil {
		return nil, fmt.Errorf("pipeline: %w", err)
	}
	if id, err := rec.Record(report, started, time.Now()); err != nil {
		logger.Warn("ledger: record failed", slog.String("error", err.Error()))
	} else if id != "" {
		logger.Debug("ledger: run recorded", slog.String("run_id", id))
	}
	return report, nil
}

// Watch processes the content tree, then re-runs on every change until a
// shutdown signal arrives or ctx is cancelled.
func Watch(ctx context.Context, opts ...Option) error {
	app, logger, printer, err := newApplication(opts)
	if err != nil {
		return err
	}
	cfg := app.config

	store, err := storage.NewFS(app.root)
	if err != nil {
		return err
	}
	rec, err := ledger.New(cfg.Ledger.Path)
	if err != nil {
		return fmt.Errorf("init ledger: %w", err)
	}
	defer rec.Close()

	runOnce := func(ctx context.Context) error {
		report, err := process(ctx, store, cfg, rec, logger)
		if err != nil {
			return err
		}
		if report.Changed() || len(report.Missing) > 0 {
			return printer.Report(report)
		}
		return nil
	}
	if err := runOnce(ctx); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		defer cancel()
		return watch.Watch(gCtx, store.Root(), cfg.Watch.Debounce, runOnce, logger)
	})

	// Handle shutdown signals.
	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(quit)

		select {
		case sig := <-quit:
			logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
			cancel()
		case <-gCtx.Done():
			logger.Info("Context cancelled, stopping watcher")
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("Watcher error", slog.String("error", err.Error()))
		return err
	}
	logger.Info("Watcher stopped")
	return nil
}

// Publish copies the configured vault's selected notes into the site.
func Publish(_ context.Context, opts ...Option) error {
	app, logger, printer, err := newApplication(opts)
	if err != nil {
		return err
	}
	cfg := app.config.Publish
	if cfg.Vault == "" {
		return fmt.Errorf("publish: vault is not configured")
	}
	vault, err := storage.NewFS(cfg.Vault)
	if err != nil {
		return err
	}
	res, err := publish.Publish(vault, cfg.Options(), logger)
	if err != nil {
		return err
	}
	return printer.Published(res)
}

// History lists recent recorded runs.
func History(_ context.Context, opts ...Option) error {
	app, _, printer, err := newApplication(opts)
	if err != nil {
		return err
	}
	rec, err := openLedger(app.config)
	if err != nil {
		return err
	}
	defer rec.Close()

	runs, err := rec.Runs(app.limit)
	if err != nil {
		return err
	}
	return printer.Runs(runs)
}

// Report shows the duplicate and missing assets of the latest recorded run.
func Report(_ context.Context, opts ...Option) error {
	app, _, printer, err := newApplication(opts)
	if err != nil {
		return err
	}
	rec, err := openLedger(app.config)
	if err != nil {
		return err
	}
	defer rec.Close()

	run, dups, missing, err := rec.LatestIssues()
	if errors.Is(err, apperr.ErrNotFound) {
		return fmt.Errorf("no runs recorded in %s", app.config.Ledger.Path)
	}
	if err != nil {
		return err
	}
	return printer.LatestIssues(run, dups, missing)
}

func openLedger(cfg *Config) (ledger.Recorder, error) {
	if cfg.Ledger.Path == "" {
		return nil, fmt.Errorf("ledger: path is not configured")
	}
	rec, err := ledger.New(cfg.Ledger.Path)
	if err != nil {
		return nil, fmt.Errorf("init ledger: %w", err)
	}
	return rec, nil
}
