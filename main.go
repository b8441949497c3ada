package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/cors"

	"airbnb-explorer/config"
	"airbnb-explorer/handlers"
	"airbnb-explorer/models"
	"airbnb-explorer/services"
	"airbnb-explorer/storage"
	"airbnb-explorer/utils"
)

const (
	shutdownTimeout = 10 * time.Second
	snapshotTimeout = 2 * time.Minute

	// sourceQuietPeriod is how long a source must stay unwritten before a reload.
	sourceQuietPeriod = 500 * time.Millisecond
)

func main() {
	cfg := config.Load()
	logger := utils.NewLogger(utils.ParseLevel(cfg.LogLevel))

	logger.Info("=== Airbnb Listing Explorer starting ===")
	logger.Info("Sources — listings: %s | reviews: %s | boundaries: %s",
		cfg.ListingsPath, cfg.ReviewsPath, cfg.GeoJSONPath)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	repo := services.NewRepository(services.Sources{
		ListingsPath:   cfg.ListingsPath,
		ReviewsPath:    cfg.ReviewsPath,
		BoundariesPath: cfg.GeoJSONPath,
	}, services.DefaultReaders(), services.NewCleaner(logger), logger, cfg.LoadConcurrency)

	ds, boundaries, err := repo.Reload(ctx)
	if err != nil {
		logger.Error("Initial load failed: %v", err)
		os.Exit(1)
	}
	logger.Info("Dataset ready: %d of %d listings kept, %d reviews, %d neighbourhoods",
		len(ds.Listings), ds.RawCount, len(ds.Reviews), len(boundaries))
	exportCleaned(cfg.CleanedCSVPath, ds, logger)

	if cfg.WatchSources {
		go watchSources(ctx, repo, cfg.CleanedCSVPath, logger)
	}

	if cfg.SnapshotEnabled {
		job, closeStore := startSnapshots(ctx, cfg, repo, logger)
		if job != nil {
			defer closeStore()
			defer job.Stop()
		}
	}

	mux := handlers.Routes(handlers.NewApp(repo, logger))
	c := cors.New(cors.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "Content-Length", "Accept-Encoding"},
	})
	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           c.Handler(mux),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Warn("Shutdown: %v", err)
		}
	}()

	logger.Info("Server listening on %s", srv.Addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server failed: %v", err)
		os.Exit(1)
	}
	logger.Info("=== Airbnb Listing Explorer stopped ===")
}

// watchSources reloads the repository whenever one of its files is rewritten.
func watchSources(ctx context.Context, repo *services.Repository, cleanedPath string, logger *utils.Logger) {
	src := repo.Sources()
	monitor, err := storage.NewSourceMonitor(src.ListingsPath, src.ReviewsPath, src.BoundariesPath)
	if err != nil {
		logger.Error("Source watching disabled: %v", err)
		return
	}
	defer monitor.Close()

	logger.Info("Watching source files for changes")
	err = monitor.WatchCoalesced(ctx, sourceQuietPeriod, func(paths []string) {
		logger.Info("Sources changed: %s, reloading", strings.Join(paths, ", "))
		ds, _, err := repo.Reload(ctx)
		if err != nil {
			// The next request retries the load.
			logger.Error("Reload after change failed: %v", err)
			return
		}
		exportCleaned(cleanedPath, ds, logger)
	})
	if err != nil {
		logger.Error("Source watcher stopped: %v", err)
	}
}

// startSnapshots connects to PostgreSQL and schedules the snapshot job.
// It returns a nil job when snapshots cannot run; the server keeps serving.
func startSnapshots(ctx context.Context, cfg *config.Config, repo *services.Repository, logger *utils.Logger) (*services.SnapshotJob, func()) {
	retry := &utils.RetryConfig{MaxAttempts: cfg.MaxRetries, BaseDelay: time.Second, Logger: logger}
	pg, err := storage.NewPostgresWriter(ctx, cfg.DSN(), retry)
	if err != nil {
		logger.Error("Snapshots disabled, PostgreSQL unavailable: %v", err)
		logger.Error("Make sure Docker is running: docker compose up -d")
		return nil, nil
	}

	if id, at, err := pg.LatestSnapshot(ctx); err == nil && id != "" {
		logger.Info("Latest snapshot %s taken %s", id, at.Format(time.RFC3339))
	}

	job := services.NewSnapshotJob(repo, services.NewEngine(), pg, logger, snapshotTimeout)
	if err := job.Start(cfg.SnapshotSchedule); err != nil {
		logger.Error("Snapshots disabled: %v", err)
		_ = pg.Close()
		return nil, nil
	}
	return job, func() {
		if err := pg.Close(); err != nil {
			logger.Warn("Close PostgreSQL: %v", err)
		}
	}
}

func exportCleaned(path string, ds *models.Dataset, logger *utils.Logger) {
	if path == "" {
		return
	}
	w, err := storage.NewCSVFileWriter(path)
	if err != nil {
		logger.Error("Cleaned CSV export failed: %v", err)
		return
	}
	defer w.Close()
	if err := w.Export(ds.Listings); err != nil {
		logger.Error("Cleaned CSV export failed: %v", err)
		return
	}
	logger.Info("Cleaned listings saved to %s", path)
}
