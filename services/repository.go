package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"

	"airbnb-explorer/models"
	"airbnb-explorer/storage"
	"airbnb-explorer/utils"
)

// Sources names the files a Repository loads.
type Sources struct {
	ListingsPath   string
	ReviewsPath    string
	BoundariesPath string
}

// Readers bundles the decoders a Repository uses for each source.
type Readers struct {
	Listings   storage.ListingSource
	Reviews    storage.ReviewSource
	Boundaries storage.BoundarySource
}

// DefaultReaders returns the CSV and GeoJSON readers.
func DefaultReaders() Readers {
	csv := storage.NewCSVReader()
	return Readers{Listings: csv, Reviews: csv, Boundaries: storage.NewGeoJSONReader()}
}

type cacheEntry[T any] struct {
	key   string
	value T
	ok    bool
}

// Repository loads and caches the cleaned dataset and the boundaries.
// A cached value is reused until one of its source files changes path,
// modification time or size, or until Invalidate is called.
type Repository struct {
	sources Sources
	readers Readers
	cleaner *Cleaner
	logger  *utils.Logger
	workers int

	mu         sync.Mutex
	dataset    cacheEntry[*models.Dataset]
	boundaries cacheEntry[[]*models.NeighbourhoodBoundary]
}

// NewRepository creates a Repository. workers bounds the number of tables read concurrently.
func NewRepository(sources Sources, readers Readers, cleaner *Cleaner, logger *utils.Logger, workers int) *Repository {
	return &Repository{
		sources: sources,
		readers: readers,
		cleaner: cleaner,
		logger:  logger,
		workers: workers,
	}
}

// Sources returns the files the repository reads.
func (r *Repository) Sources() Sources {
	return r.sources
}

// Load returns the cleaned listings and the reviews, reading and cleaning
// them only when the cache is empty or stale.
func (r *Repository) Load(ctx context.Context) (*models.Dataset, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	key, err := sourceKey(r.sources.ListingsPath, r.sources.ReviewsPath)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.dataset.ok && r.dataset.key == key {
		return r.dataset.value, nil
	}

	ds, err := r.loadDataset(ctx)
	if err != nil {
		return nil, err
	}
	r.dataset = cacheEntry[*models.Dataset]{key: key, value: ds, ok: true}
	return ds, nil
}

func (r *Repository) loadDataset(ctx context.Context) (*models.Dataset, error) {
	var (
		raw     []*models.RawListing
		reviews []*models.Review
	)

	pool := utils.NewWorkerPool(r.workers)
	pool.Submit(func() error {
		rows, err := r.readers.Listings.ReadListings(r.sources.ListingsPath)
		if err != nil {
			return classify(r.sources.ListingsPath, err)
		}
		raw = rows
		return nil
	})
	pool.Submit(func() error {
		rows, err := r.readers.Reviews.ReadReviews(r.sources.ReviewsPath)
		if err != nil {
			return classify(r.sources.ReviewsPath, err)
		}
		reviews = rows
		return nil
	})
	if err := pool.Wait(); err != nil {
		r.logger.Error("[repository] Load failed: %v", err)
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	cleaned, err := r.cleaner.Clean(raw)
	if err != nil {
		r.logger.Error("[repository] Cleaning %s failed: %v", r.sources.ListingsPath, err)
		return nil, err
	}

	r.logger.Info("[repository] Loaded %d listings and %d reviews", len(cleaned.Listings), len(reviews))
	return &models.Dataset{
		Listings:  cleaned.Listings,
		Reviews:   reviews,
		RawCount:  cleaned.RawCount,
		PriceLow:  cleaned.PriceLow,
		PriceHigh: cleaned.PriceHigh,
	}, nil
}

// Boundaries returns the neighbourhood polygons, cached the same way as Load.
func (r *Repository) Boundaries(ctx context.Context) ([]*models.NeighbourhoodBoundary, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	key, err := sourceKey(r.sources.BoundariesPath)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.boundaries.ok && r.boundaries.key == key {
		return r.boundaries.value, nil
	}

	b, err := r.readers.Boundaries.ReadBoundaries(r.sources.BoundariesPath)
	if err != nil {
		err = classify(r.sources.BoundariesPath, err)
		r.logger.Error("[repository] Boundary load failed: %v", err)
		return nil, err
	}
	r.logger.Info("[repository] Loaded %d neighbourhood boundaries", len(b))
	r.boundaries = cacheEntry[[]*models.NeighbourhoodBoundary]{key: key, value: b, ok: true}
	return b, nil
}

// Invalidate drops every cached value.
func (r *Repository) Invalidate() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.dataset = cacheEntry[*models.Dataset]{}
	r.boundaries = cacheEntry[[]*models.NeighbourhoodBoundary]{}
	r.logger.Debug("[repository] Cache invalidated")
}

// Reload invalidates the cache and loads every source again.
func (r *Repository) Reload(ctx context.Context) (*models.Dataset, []*models.NeighbourhoodBoundary, error) {
	r.Invalidate()
	ds, err := r.Load(ctx)
	if err != nil {
		return nil, nil, err
	}
	b, err := r.Boundaries(ctx)
	if err != nil {
		return nil, nil, err
	}
	return ds, b, nil
}

// sourceKey identifies the current version of the given files.
func sourceKey(paths ...string) (string, error) {
	key := ""
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return "", fmt.Errorf("%w: %s: %w", ErrMissingSource, p, err)
		}
		if info.IsDir() {
			return "", fmt.Errorf("%w: %s is a directory", ErrMissingSource, p)
		}
		key += fmt.Sprintf("%s|%d|%d;", p, info.ModTime().UnixNano(), info.Size())
	}
	return key, nil
}

// classify maps a reader error onto the repository's error taxonomy.
func classify(path string, err error) error {
	if errors.Is(err, storage.ErrUnparseable) {
		return &RecordError{Row: 0, Reason: err.Error()}
	}
	return fmt.Errorf("%w: %s: %w", ErrMissingSource, path, err)
}
