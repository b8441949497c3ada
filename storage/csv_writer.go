package storage

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"airbnb-explorer/models"
)

// exportHeader is the column order of every listing download.
var exportHeader = []string{
	"id", "name", "room_type", "neighbourhood", "price", "bedrooms", "beds",
	"accommodates", "availability_365", "availability", "number_of_reviews",
	"review_scores_rating", "last_review", "latitude", "longitude", "color", "listing_url",
}

func exportRow(l *models.Listing) []string {
	return []string{
		l.ID,
		l.Name,
		l.RoomType,
		l.Neighbourhood,
		strconv.FormatFloat(l.Price, 'f', 2, 64),
		strconv.Itoa(l.Bedrooms),
		strconv.Itoa(l.Beds),
		strconv.Itoa(l.Accommodates),
		strconv.Itoa(l.Availability365),
		string(l.AvailabilityTier),
		strconv.Itoa(l.NumberOfReviews),
		strconv.FormatFloat(l.ReviewScoresRating, 'f', -1, 64),
		l.LastReview,
		strconv.FormatFloat(l.Latitude, 'f', -1, 64),
		strconv.FormatFloat(l.Longitude, 'f', -1, 64),
		l.Color,
		l.ListingURL,
	}
}

// CSVWriter writes cleaned listings as CSV to any io.Writer.
type CSVWriter struct {
	writer *csv.Writer
	closer io.Closer
}

// NewCSVWriter wraps w. Close does not close w.
func NewCSVWriter(w io.Writer) *CSVWriter {
	return &CSVWriter{writer: csv.NewWriter(w)}
}

// NewCSVFileWriter creates (or truncates) the CSV file at the given path.
// Intermediate directories are created automatically.
func NewCSVFileWriter(path string) (*CSVWriter, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("csv: create output dir: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("csv: create file %q: %w", path, err)
	}
	return &CSVWriter{writer: csv.NewWriter(f), closer: f}, nil
}

// Export writes the header row followed by one row per listing.
func (c *CSVWriter) Export(listings []*models.Listing) error {
	if err := c.writer.Write(exportHeader); err != nil {
		return fmt.Errorf("csv: write header: %w", err)
	}
	for _, l := range listings {
		if err := c.writer.Write(exportRow(l)); err != nil {
			return fmt.Errorf("csv: write row: %w", err)
		}
	}
	c.writer.Flush()
	return c.writer.Error()
}

// Close flushes and closes the underlying file, if the writer owns one.
func (c *CSVWriter) Close() error {
	c.writer.Flush()
	if c.closer == nil {
		return c.writer.Error()
	}
	return c.closer.Close()
}
