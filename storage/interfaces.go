package storage

import (
	"context"
	"errors"

	"airbnb-explorer/models"
)

// ErrUnparseable marks a source file that was read but could not be decoded.
var ErrUnparseable = errors.New("unparseable source")

// ListingSource reads the raw listings table.
type ListingSource interface {
	ReadListings(path string) ([]*models.RawListing, error)
}

// ReviewSource reads the reviews table.
type ReviewSource interface {
	ReadReviews(path string) ([]*models.Review, error)
}

// BoundarySource reads neighbourhood polygons.
type BoundarySource interface {
	ReadBoundaries(path string) ([]*models.NeighbourhoodBoundary, error)
}

// ListingExporter writes a listing view to a download format.
type ListingExporter interface {
	Export(listings []*models.Listing) error
}

// SnapshotWriter persists a cleaned dataset together with its neighbourhood averages.
type SnapshotWriter interface {
	WriteSnapshot(ctx context.Context, listings []*models.Listing, stats map[string]models.AggregateStats) (string, error)
	Close() error
}
