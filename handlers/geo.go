package handlers

import (
	"fmt"
	"net/http"

	"airbnb-explorer/storage"
)

// BoundariesHandler returns the neighbourhood polygons as GeoJSON, each
// feature carrying the averages of its listings.
func BoundariesHandler(app *App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ds, ok := app.dataset(w, r)
		if !ok {
			return
		}
		boundaries, ok := app.boundaries(w, r)
		if !ok {
			return
		}

		views := app.Insights.JoinBoundaries(boundaries, app.Engine.AverageByNeighbourhood(ds.Listings))
		app.writeJSON(w, "application/geo+json", storage.BoundaryFeatures(views))
	}
}

type locateResponse struct {
	Found         bool   `json:"found"`
	Neighbourhood string `json:"neighbourhood,omitempty"`
	Group         string `json:"neighbourhood_group,omitempty"`
}

// LocateHandler names the neighbourhood containing a coordinate.
func LocateHandler(app *App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()
		lat, err := requiredFloat(query, "lat")
		if err != nil {
			badRequest(w, err)
			return
		}
		lon, err := requiredFloat(query, "lon")
		if err != nil {
			badRequest(w, err)
			return
		}
		if lat < -90 || lat > 90 || lon < -180 || lon > 180 {
			badRequest(w, fmt.Errorf("coordinate (%g, %g) is out of range", lat, lon))
			return
		}
		boundaries, ok := app.boundaries(w, r)
		if !ok {
			return
		}

		resp := locateResponse{}
		if b := app.Insights.Locate(boundaries, lon, lat); b != nil {
			resp = locateResponse{Found: true, Neighbourhood: b.Name, Group: b.Group}
		}
		app.writeJSON(w, "application/json", resp)
	}
}
