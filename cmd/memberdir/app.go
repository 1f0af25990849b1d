package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/c360studio/semstreams/natsclient"

	"github.com/c360studio/memberdir/config"
	"github.com/c360studio/memberdir/ingest"
	"github.com/c360studio/memberdir/metric"
	"github.com/c360studio/memberdir/section"
	"github.com/c360studio/memberdir/storage"
	"github.com/c360studio/memberdir/visibility"
)

// App wires configuration, storage, the section registry, and the ingest
// pipeline into a single handle the CLI commands operate on.
type App struct {
	Config   *config.Config
	Logger   *slog.Logger
	Registry *section.Registry
	Pipeline *ingest.Pipeline
	Resolver *visibility.Resolver
	Metrics  *metric.Registry

	natsClient *natsclient.Client
}

func NewApp(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	app := &App{
		Config:  cfg,
		Logger:  logger,
		Metrics: metric.NewRegistry(),
	}

	store, err := app.buildStore(ctx)
	if err != nil {
		return nil, err
	}

	app.Registry = section.NewRegistry(logger)
	app.Resolver = visibility.NewResolver(cfg.Visibility.Fallback)

	backups := ingest.NewBackupManager(cfg.Backup.Dir, cfg.Backup.SoftLimit, logger)
	app.Pipeline = ingest.NewPipeline(app.Registry, store, backups, logger,
		ingest.WithMetrics(app.Metrics.Metrics))

	if err := app.Pipeline.Restore(ctx); err != nil {
		app.Close(ctx)
		return nil, fmt.Errorf("restore snapshot: %w", err)
	}

	return app, nil
}

func (a *App) buildStore(ctx context.Context) (storage.SnapshotStore, error) {
	if a.Config.Storage.Backend != "nats" {
		return storage.NewFileStore(a.Config.Storage.Path), nil
	}

	client, err := a.connectToNATS(ctx)
	if err != nil {
		return nil, err
	}
	a.natsClient = client

	js, err := client.JetStream()
	if err != nil {
		return nil, fmt.Errorf("get JetStream context: %w", err)
	}

	return storage.NewKVStore(ctx, js)
}

func (a *App) connectToNATS(ctx context.Context) (*natsclient.Client, error) {
	natsURLs := "nats://localhost:4222"

	// Environment variable override takes precedence
	if envURL := os.Getenv("NATS_URL"); envURL != "" {
		natsURLs = envURL
	} else if envURL := os.Getenv("MEMBERDIR_NATS_URL"); envURL != "" {
		natsURLs = envURL
	} else if len(a.Config.NATS.URLs) > 0 {
		natsURLs = strings.Join(a.Config.NATS.URLs, ",")
	}

	a.Logger.Info("Connecting to NATS", "url", natsURLs)

	client, err := natsclient.NewClient(natsURLs,
		natsclient.WithName(appName),
		natsclient.WithMaxReconnects(-1),
		natsclient.WithReconnectWait(time.Second),
		natsclient.WithCircuitBreakerThreshold(20),
		natsclient.WithHealthInterval(30*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("create NATS client: %w", err)
	}

	if err := client.Connect(ctx); err != nil {
		return nil, fmt.Errorf("NATS connection failed: %w", err)
	}

	connCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := client.WaitForConnection(connCtx); err != nil {
		return nil, fmt.Errorf("NATS connection failed: %w", err)
	}

	a.Logger.Info("Connected to NATS", "url", natsURLs)
	return client, nil
}

func (a *App) Close(ctx context.Context) {
	if a.natsClient != nil {
		closeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := a.natsClient.Close(closeCtx); err != nil {
			a.Logger.Warn("Error closing NATS client", "error", err)
		}
	}
}

// SyncDocuments discovers section documents under the configured directory
// and runs them through the pipeline.
func (a *App) SyncDocuments(ctx context.Context) (*ingest.Result, error) {
	docs, unreadable, err := ingest.Discover(a.Config.Documents.Dir, a.Config.Documents.Patterns)
	if err != nil {
		return nil, fmt.Errorf("discover documents: %w", err)
	}

	result, err := a.Pipeline.Sync(ctx, docs)
	if err != nil {
		return nil, err
	}
	for id, reason := range unreadable {
		result.Skipped[id] = reason
	}
	return result, nil
}

// Serve exposes the metrics endpoint and, when watching is enabled,
// re-syncs whenever section documents change on disk.
func (a *App) Serve(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	addr := a.Config.Metrics.Addr
	if addr == "" {
		addr = ":9090"
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", a.Metrics.Handler())

	server := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.Logger.Info("Serving metrics", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()
	defer func() {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	if !a.Config.Watch.Enabled {
		select {
		case err := <-errCh:
			return err
		case <-ctx.Done():
			return nil
		}
	}

	watcher, err := ingest.NewWatcher(a.Config.Documents.Dir, a.Config.Watch.DebounceDelay,
		a.Config.Watch.FileExtensions, a.Logger)
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	if err := watcher.Start(ctx); err != nil {
		return fmt.Errorf("start watcher: %w", err)
	}
	defer func() { _ = watcher.Stop() }()

	a.Logger.Info("Watching for section document changes", "dir", a.Config.Documents.Dir)

	for {
		select {
		case err := <-errCh:
			return err
		case <-ctx.Done():
			return nil
		case paths, ok := <-watcher.Changes():
			if !ok {
				return nil
			}
			a.Logger.Info("Documents changed, re-syncing", "count", len(paths))
			result, err := a.SyncDocuments(ctx)
			if err != nil {
				a.Logger.Error("Sync failed", "error", err)
				continue
			}
			a.Logger.Info("Sync complete",
				slog.String("batch_id", result.BatchID),
				slog.Int("loaded", len(result.Loaded)),
				slog.Int("skipped", len(result.Skipped)))
		}
	}
}
