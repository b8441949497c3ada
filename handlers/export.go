package handlers

import (
	"bytes"
	"fmt"
	"net/http"

	"airbnb-explorer/storage"
)

const (
	csvFilename  = "listings.csv"
	xlsxFilename = "listings.xlsx"
	xlsxMIME     = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// ExportCSVHandler downloads the filtered view as CSV.
func ExportCSVHandler(app *App) http.HandlerFunc {
	return exportHandler(app, "text/csv; charset=utf-8", csvFilename, func(buf *bytes.Buffer) storage.ListingExporter {
		return storage.NewCSVWriter(buf)
	})
}

// ExportXLSXHandler downloads the filtered view as an Excel workbook.
func ExportXLSXHandler(app *App) http.HandlerFunc {
	return exportHandler(app, xlsxMIME, xlsxFilename, func(buf *bytes.Buffer) storage.ListingExporter {
		return storage.NewXLSXWriter(buf)
	})
}

// exportHandler renders into a buffer first so a failed export can still
// answer with an error status.
func exportHandler(app *App, contentType, filename string, newExporter func(*bytes.Buffer) storage.ListingExporter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		params, err := ParseFilterParams(r.URL.Query())
		if err != nil {
			badRequest(w, err)
			return
		}
		ds, ok := app.dataset(w, r)
		if !ok {
			return
		}

		filtered := app.Engine.Filter(ds.Listings, params)
		var buf bytes.Buffer
		if err := newExporter(&buf).Export(filtered); err != nil {
			app.Logger.Error("[http] export %s failed: %v", filename, err)
			http.Error(w, "Export failed", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", contentType)
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
		if _, err := w.Write(buf.Bytes()); err != nil {
			app.Logger.Warn("[http] write %s: %v", filename, err)
		}
	}
}
