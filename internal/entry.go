// Package internal provides the importer's initialization and run logic.
package internal

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/mtakada173/kibela-to-kibela/internal/importer"
	"github.com/mtakada173/kibela-to-kibela/internal/kibela"
	"github.com/mtakada173/kibela-to-kibela/internal/resolve"
	"github.com/mtakada173/kibela-to-kibela/internal/txlog"
)

// Run executes one import run with the given options.
func Run(ctx context.Context, opts ...Option) error {
	app := &application{}

	for _, opt := range opts {
		opt(app)
	}

	if app.config == nil {
		return fmt.Errorf("config is required")
	}
	cfg := app.config

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if len(app.archives) == 0 {
		return fmt.Errorf("at least one export archive is required")
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	slog.SetDefault(logger)

	apply := cfg.Import.Apply
	if apply {
		logger.Info("apply mode: the destination team will be modified")
	} else {
		logger.Info("dry-run mode: no changes will be made, pass --apply to write")
	}
	if cfg.Import.PrivateGroups {
		logger.Info("missing groups will be created as private")
	} else {
		logger.Info("missing groups will be created as public")
	}
	logger.Info("importing archives",
		slog.String("exported_from", fmt.Sprintf("https://%s.kibe.la", cfg.Import.ExportedFrom)),
		slog.Int("archives", len(app.archives)))

	var (
		client   *kibela.Client
		resolver *resolve.Resolver
	)
	if apply {
		client = kibela.NewClient(cfg.Kibela.EndpointURL(), cfg.Kibela.Token, cfg.Kibela.UserAgent)
		if err := client.Ping(ctx); err != nil {
			return fmt.Errorf("destination unreachable: %w", err)
		}
		resolver = resolve.New(client, logger, cfg.Import.PrivateGroups, cfg.Kibela.PageSize)
	}

	runID := uuid.NewString()
	log, err := txlog.Open(runID)
	if err != nil {
		return err
	}
	defer func() {
		// Dry-run and empty logs leave no artifact behind.
		if cerr := log.Close(apply); cerr != nil {
			logger.Error("transaction log cleanup failed", slog.String("error", cerr.Error()))
		}
	}()

	exec := importer.NewExecutor(client, resolver, apply)
	pipe := importer.NewPipeline(exec, log, logger, apply)

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var stats importer.Stats
	g, gCtx := errgroup.WithContext(runCtx)

	g.Go(func() error {
		defer cancel()
		s, err := pipe.Run(gCtx, app.archives)
		stats = s
		return err
	})

	// An interrupt cancels the pipeline between entries; the deferred log
	// teardown still runs, so a partial apply run keeps its audit log.
	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(quit)

		select {
		case sig := <-quit:
			logger.Info("received shutdown signal", slog.String("signal", sig.String()))
			return fmt.Errorf("interrupted by %s", sig)
		case <-gCtx.Done():
			return nil
		}
	})

	runErr := g.Wait()

	logger.Info("import finished",
		slog.Int64("data_mib", stats.DataBytes/(1<<20)),
		slog.Int("succeeded", stats.Succeeded),
		slog.Int("failed", stats.Failed))
	if apply && log.Records() > 0 {
		logger.Info("transaction log written", slog.String("logfile", log.Path()))
	}

	return runErr
}
