package handlers

import (
	"fmt"
	"net/http"

	"airbnb-explorer/models"
)

// NeighbourhoodAverageHandler returns per-neighbourhood means, ranked by price.
func NeighbourhoodAverageHandler(app *App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ds, ok := app.dataset(w, r)
		if !ok {
			return
		}

		stats := app.Engine.AverageByNeighbourhood(ds.Listings)
		app.writeJSON(w, "application/json", map[string]interface{}{
			"ranking": app.Insights.RankNeighbourhoodsByPrice(stats),
			"stats":   stats,
		})
	}
}

// AvailabilityHandler counts listings per availability tier. Both tiers are always present.
func AvailabilityHandler(app *App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ds, ok := app.dataset(w, r)
		if !ok {
			return
		}

		counts := app.Engine.CountByAvailabilityTier(ds.Listings)
		app.writeJSON(w, "application/json", map[models.AvailabilityTier]int{
			models.AvailabilityHigh: counts[models.AvailabilityHigh],
			models.AvailabilityLow:  counts[models.AvailabilityLow],
		})
	}
}

// RoomTypesHandler counts listings per room type.
func RoomTypesHandler(app *App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ds, ok := app.dataset(w, r)
		if !ok {
			return
		}
		app.writeJSON(w, "application/json", app.Insights.CountByRoomType(ds.Listings))
	}
}

// HistogramHandler buckets the cleaned prices into equal-width bins.
func HistogramHandler(app *App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		bins, err := intParam(r.URL.Query(), "bins", DefaultHistogramBins)
		if err != nil {
			badRequest(w, err)
			return
		}
		if bins < 1 || bins > MaxHistogramBins {
			badRequest(w, fmt.Errorf("bins must be between 1 and %d, got %d", MaxHistogramBins, bins))
			return
		}
		ds, ok := app.dataset(w, r)
		if !ok {
			return
		}
		app.writeJSON(w, "application/json", app.Insights.PriceHistogram(ds.Listings, bins))
	}
}

// OptionsHandler returns the values the filter controls offer.
func OptionsHandler(app *App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ds, ok := app.dataset(w, r)
		if !ok {
			return
		}
		app.writeJSON(w, "application/json", app.Insights.Options(ds.Listings))
	}
}
