package handlers

import (
	"net/http"

	"airbnb-explorer/services"
)

// ListingsHandler returns the first rows of the cleaned table.
func ListingsHandler(app *App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, err := intParam(r.URL.Query(), "limit", DefaultPreviewRows)
		if err != nil {
			badRequest(w, err)
			return
		}
		ds, ok := app.dataset(w, r)
		if !ok {
			return
		}

		rows := services.Head(ds.Listings, limit)
		app.writeJSON(w, "application/json", map[string]interface{}{
			"total":     len(ds.Listings),
			"raw_count": ds.RawCount,
			"listings":  rows,
		})
	}
}

// FilterHandler returns the listings matching the filter controls.
func FilterHandler(app *App) http.HandlerFunc {
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
		app.writeJSON(w, "application/json", map[string]interface{}{
			"count":    len(filtered),
			"listings": filtered,
		})
	}
}

type estimateResponse struct {
	RoomType      string `json:"room_type"`
	Neighbourhood string `json:"neighbourhood"`
	Bedrooms      int    `json:"bedrooms"`
	Found         bool   `json:"found"`
	Estimate      *int   `json:"estimate"`
	Message       string `json:"message"`
}

// EstimateHandler estimates the nightly price of a room type, neighbourhood and bedroom count.
func EstimateHandler(app *App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		params, err := ParseEstimateParams(r.URL.Query())
		if err != nil {
			badRequest(w, err)
			return
		}
		ds, ok := app.dataset(w, r)
		if !ok {
			return
		}

		est, found := app.Engine.EstimatePrice(ds.Listings, params.RoomType, params.Neighbourhood, params.Bedrooms)
		resp := estimateResponse{
			RoomType:      params.RoomType,
			Neighbourhood: scopeLabel(params.Neighbourhood),
			Bedrooms:      params.Bedrooms,
			Found:         found,
			Message:       services.FormatEstimate(est, found),
		}
		if found {
			resp.Estimate = &est
		}
		app.Logger.Debug("[http] estimate %s in %s with %d bedrooms: %s", params.RoomType, params.Neighbourhood, params.Bedrooms, resp.Message)
		app.writeJSON(w, "application/json", resp)
	}
}

// ReloadHandler drops the cache and loads every source again.
func ReloadHandler(app *App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ds, boundaries, err := app.Store.Reload(r.Context())
		if err != nil {
			app.Logger.Error("[http] reload failed: %v", err)
			http.Error(w, "Reload failed: "+err.Error(), http.StatusServiceUnavailable)
			return
		}
		app.Logger.Info("[http] Reloaded %d listings and %d boundaries", len(ds.Listings), len(boundaries))
		app.writeJSON(w, "application/json", map[string]int{
			"listings":   len(ds.Listings),
			"reviews":    len(ds.Reviews),
			"boundaries": len(boundaries),
		})
	}
}

func scopeLabel(s services.NeighbourhoodScope) string {
	if s.IsAll() {
		return allNeighbourhoods
	}
	return s.Name()
}
