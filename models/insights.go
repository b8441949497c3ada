package models

// DashboardOptions seeds the filter controls of the front end.
type DashboardOptions struct {
	RoomTypes        []string   `json:"room_types"`
	DefaultRoomTypes []string   `json:"default_room_types"`
	Neighbourhoods   []string   `json:"neighbourhoods"`
	PriceMin         float64    `json:"price_min"`
	PriceMax         float64    `json:"price_max"`
	DefaultPrice     [2]float64 `json:"default_price"`
	Midpoint         [2]float64 `json:"midpoint"` // [lon, lat]
}

// HistogramBin counts listings with price in [Low, High). The last bin is closed.
type HistogramBin struct {
	Low   float64 `json:"low"`
	High  float64 `json:"high"`
	Count int     `json:"count"`
}

// NeighbourhoodPrice is one row of the per-neighbourhood price ranking.
type NeighbourhoodPrice struct {
	Neighbourhood string  `json:"neighbourhood"`
	Price         float64 `json:"price"`
	Count         int     `json:"count"`
}
