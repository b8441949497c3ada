package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron"

	"airbnb-explorer/models"
	"airbnb-explorer/storage"
	"airbnb-explorer/utils"
)

// DatasetLoader is the part of Repository a SnapshotJob needs.
type DatasetLoader interface {
	Load(ctx context.Context) (*models.Dataset, error)
}

// SnapshotJob periodically persists the current dataset and its
// neighbourhood averages through a SnapshotWriter.
type SnapshotJob struct {
	loader  DatasetLoader
	engine  *Engine
	writer  storage.SnapshotWriter
	logger  *utils.Logger
	timeout time.Duration

	mu   sync.Mutex
	cron *cron.Cron
}

// NewSnapshotJob creates a SnapshotJob. Each run is bounded by timeout.
func NewSnapshotJob(loader DatasetLoader, engine *Engine, writer storage.SnapshotWriter, logger *utils.Logger, timeout time.Duration) *SnapshotJob {
	return &SnapshotJob{
		loader:  loader,
		engine:  engine,
		writer:  writer,
		logger:  logger,
		timeout: timeout,
	}
}

// Run takes one snapshot and returns its id.
func (j *SnapshotJob) Run(ctx context.Context) (string, error) {
	ds, err := j.loader.Load(ctx)
	if err != nil {
		return "", fmt.Errorf("snapshot: load: %w", err)
	}
	stats := j.engine.AverageByNeighbourhood(ds.Listings)
	id, err := j.writer.WriteSnapshot(ctx, ds.Listings, stats)
	if err != nil {
		return "", fmt.Errorf("snapshot: write: %w", err)
	}
	j.logger.Info("[snapshot] Stored snapshot %s (%d listings, %d neighbourhoods)", id, len(ds.Listings), len(stats))
	return id, nil
}

// Start schedules Run on the given cron spec, e.g. "@every 1h" or "0 0 * * * *".
func (j *SnapshotJob) Start(spec string) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.cron != nil {
		return fmt.Errorf("snapshot: already started")
	}

	c := cron.New()
	err := c.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
		defer cancel()
		if _, err := j.Run(ctx); err != nil {
			j.logger.Error("[snapshot] Scheduled run failed: %v", err)
		}
	})
	if err != nil {
		return fmt.Errorf("snapshot: schedule %q: %w", spec, err)
	}
	c.Start()
	j.cron = c
	j.logger.Info("[snapshot] Scheduled snapshots %s", spec)
	return nil
}

// Stop halts the schedule. A run already in progress is not interrupted.
func (j *SnapshotJob) Stop() {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.cron != nil {
		j.cron.Stop()
		j.cron = nil
	}
}
