package storage

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"

	"airbnb-explorer/models"
)

// CSVReader loads the listings and reviews tables into memory.
// Every column is read as text; typing is the cleaner's job.
type CSVReader struct{}

// NewCSVReader creates a CSVReader.
func NewCSVReader() *CSVReader {
	return &CSVReader{}
}

// ReadListings returns one RawListing per data row of the file at path.
func (c *CSVReader) ReadListings(path string) ([]*models.RawListing, error) {
	header, rows, err := readTable(path)
	if err != nil {
		return nil, err
	}

	out := make([]*models.RawListing, 0, len(rows))
	for i, row := range rows {
		out = append(out, &models.RawListing{Row: i + 1, Fields: zip(header, row)})
	}
	return out, nil
}

// ReadReviews returns the reviews table unmodified.
func (c *CSVReader) ReadReviews(path string) ([]*models.Review, error) {
	header, rows, err := readTable(path)
	if err != nil {
		return nil, err
	}

	out := make([]*models.Review, 0, len(rows))
	for _, row := range rows {
		fields := zip(header, row)
		out = append(out, &models.Review{
			ListingID: fields["listing_id"],
			Date:      fields["date"],
			Fields:    fields,
		})
	}
	return out, nil
}

// readTable returns the header and the data rows. A file holding only a
// header row is an empty table; a file without a header is unparseable.
func readTable(path string) ([]string, [][]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("csv: open %q: %w", path, err)
	}

	probe := csv.NewReader(bytes.NewReader(data))
	header, err := probe.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil, fmt.Errorf("csv: %q has no header row: %w", path, ErrUnparseable)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("csv: parse %q: %w: %w", path, ErrUnparseable, err)
	}
	// gota refuses a frame without rows.
	if _, err := probe.Read(); errors.Is(err, io.EOF) {
		return header, [][]string{}, nil
	}

	df := dataframe.ReadCSV(bytes.NewReader(data),
		dataframe.HasHeader(true),
		dataframe.DetectTypes(false),
		dataframe.DefaultType(series.String),
	)
	if df.Err != nil {
		return nil, nil, fmt.Errorf("csv: parse %q: %w: %w", path, ErrUnparseable, df.Err)
	}

	records := df.Records()
	if len(records) == 0 {
		return nil, nil, fmt.Errorf("csv: %q has no header row: %w", path, ErrUnparseable)
	}
	return records[0], records[1:], nil
}

func zip(header, row []string) map[string]string {
	fields := make(map[string]string, len(header))
	for i, name := range header {
		if i < len(row) {
			fields[name] = row[i]
		}
	}
	return fields
}
