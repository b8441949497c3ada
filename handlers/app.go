package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"airbnb-explorer/models"
	"airbnb-explorer/services"
	"airbnb-explorer/utils"
)

// Store is the data access the handlers need. *services.Repository satisfies it.
type Store interface {
	Load(ctx context.Context) (*models.Dataset, error)
	Boundaries(ctx context.Context) ([]*models.NeighbourhoodBoundary, error)
	Reload(ctx context.Context) (*models.Dataset, []*models.NeighbourhoodBoundary, error)
}

// App carries the dependencies shared by every handler.
type App struct {
	Store    Store
	Engine   *services.Engine
	Insights *services.InsightService
	Logger   *utils.Logger
}

// NewApp wires an App around a Store.
func NewApp(store Store, logger *utils.Logger) *App {
	return &App{
		Store:    store,
		Engine:   services.NewEngine(),
		Insights: services.NewInsightService(logger),
		Logger:   logger,
	}
}

// Routes registers every API endpoint on a new mux.
func Routes(app *App) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/listings", ListingsHandler(app))
	mux.HandleFunc("GET /api/listings/filter", FilterHandler(app))
	mux.HandleFunc("GET /api/estimate", EstimateHandler(app))
	mux.HandleFunc("GET /api/neighbourhoods/average", NeighbourhoodAverageHandler(app))
	mux.HandleFunc("GET /api/availability", AvailabilityHandler(app))
	mux.HandleFunc("GET /api/room-types", RoomTypesHandler(app))
	mux.HandleFunc("GET /api/histogram", HistogramHandler(app))
	mux.HandleFunc("GET /api/options", OptionsHandler(app))
	mux.HandleFunc("GET /api/boundaries", BoundariesHandler(app))
	mux.HandleFunc("GET /api/locate", LocateHandler(app))
	mux.HandleFunc("GET /api/export.csv", ExportCSVHandler(app))
	mux.HandleFunc("GET /api/export.xlsx", ExportXLSXHandler(app))
	mux.HandleFunc("POST /api/reload", ReloadHandler(app))

	return mux
}

// dataset loads the current dataset or writes a 503.
func (app *App) dataset(w http.ResponseWriter, r *http.Request) (*models.Dataset, bool) {
	ds, err := app.Store.Load(r.Context())
	if err != nil {
		app.Logger.Error("[http] %s %s: load failed: %v", r.Method, r.URL.Path, err)
		http.Error(w, "Listing data is unavailable", http.StatusServiceUnavailable)
		return nil, false
	}
	return ds, true
}

func (app *App) boundaries(w http.ResponseWriter, r *http.Request) ([]*models.NeighbourhoodBoundary, bool) {
	b, err := app.Store.Boundaries(r.Context())
	if err != nil {
		app.Logger.Error("[http] %s %s: boundary load failed: %v", r.Method, r.URL.Path, err)
		http.Error(w, "Neighbourhood boundaries are unavailable", http.StatusServiceUnavailable)
		return nil, false
	}
	return b, true
}

func (app *App) writeJSON(w http.ResponseWriter, contentType string, v any) {
	w.Header().Set("Content-Type", contentType)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		app.Logger.Warn("[http] encode response: %v", err)
	}
}

func badRequest(w http.ResponseWriter, err error) {
	http.Error(w, err.Error(), http.StatusBadRequest)
}
