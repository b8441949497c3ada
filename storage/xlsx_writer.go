package storage

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"airbnb-explorer/models"
)

// ExportSheet is the worksheet name of listing workbooks.
const ExportSheet = "Listings"

// XLSXWriter writes cleaned listings as a single-sheet workbook.
type XLSXWriter struct {
	w io.Writer
}

// NewXLSXWriter creates an XLSXWriter targeting w.
func NewXLSXWriter(w io.Writer) *XLSXWriter {
	return &XLSXWriter{w: w}
}

// Export renders the workbook and writes it to the target in one go.
func (x *XLSXWriter) Export(listings []*models.Listing) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", ExportSheet); err != nil {
		return fmt.Errorf("xlsx: rename sheet: %w", err)
	}

	header := make([]interface{}, len(exportHeader))
	for i, name := range exportHeader {
		header[i] = name
	}
	if err := f.SetSheetRow(ExportSheet, "A1", &header); err != nil {
		return fmt.Errorf("xlsx: write header: %w", err)
	}

	for i, l := range listings {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("xlsx: cell name: %w", err)
		}
		row := []interface{}{
			l.ID, l.Name, l.RoomType, l.Neighbourhood, l.Price, l.Bedrooms, l.Beds,
			l.Accommodates, l.Availability365, string(l.AvailabilityTier), l.NumberOfReviews,
			l.ReviewScoresRating, l.LastReview, l.Latitude, l.Longitude, l.Color, l.ListingURL,
		}
		if err := f.SetSheetRow(ExportSheet, cell, &row); err != nil {
			return fmt.Errorf("xlsx: write row %d: %w", i+1, err)
		}
	}

	if err := f.Write(x.w); err != nil {
		return fmt.Errorf("xlsx: write workbook: %w", err)
	}
	return nil
}
