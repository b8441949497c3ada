package models

// RawListing holds one unprocessed row of the listings table, keyed by column name.
// Cells are exactly as they appear in the source file.
type RawListing struct {
	Row    int
	Fields map[string]string
}

// Get returns the cell for column, or "" when the column is absent.
func (r *RawListing) Get(column string) string {
	return r.Fields[column]
}

// AvailabilityTier is the High/Low label derived from yearly availability.
type AvailabilityTier string

const (
	AvailabilityHigh AvailabilityTier = "High"
	AvailabilityLow  AvailabilityTier = "Low"
)

// Room types seen in Airbnb exports. The set is open; unknown values pass through.
const (
	RoomPrivate    = "Private room"
	RoomEntireHome = "Entire home/apt"
	RoomShared     = "Shared room"
	RoomHotel      = "Hotel room"
)

// RGBA is a display colour with a fixed alpha channel.
type RGBA [4]uint8

// Listing is the cleaned, enriched record the engine queries.
// A Listing is never modified after the repository builds it.
type Listing struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	ListingURL string `json:"listing_url"`
	PictureURL string `json:"picture_url"`

	Price         float64 `json:"price"`
	RoomType      string  `json:"room_type"`
	Neighbourhood string  `json:"neighbourhood"`

	Bedrooms        int `json:"bedrooms"`
	Beds            int `json:"beds"`
	Accommodates    int `json:"accommodates"`
	Availability365 int `json:"availability_365"`

	AvailabilityTier AvailabilityTier `json:"availability"`

	NumberOfReviews    int     `json:"number_of_reviews"`
	ReviewScoresRating float64 `json:"review_scores_rating"`
	LastReview         string  `json:"last_review"`
	Latitude           float64 `json:"latitude"`
	Longitude          float64 `json:"longitude"`

	Color string `json:"color"`
	RGBA  RGBA   `json:"rgba"`
}

// Review is a pass-through row of the reviews table.
type Review struct {
	ListingID string            `json:"listing_id"`
	Date      string            `json:"date"`
	Fields    map[string]string `json:"fields"`
}

// Dataset is the cleaned output of one repository load.
type Dataset struct {
	Listings []*Listing
	Reviews  []*Review

	// RawCount is the number of listing rows before outlier removal.
	RawCount int
	// PriceLow and PriceHigh are the 1st and 99th percentile of the raw prices.
	PriceLow  float64
	PriceHigh float64
}

// AggregateStats holds per-group means of every numeric listing field.
type AggregateStats struct {
	Count              int     `json:"count"`
	Price              float64 `json:"price"`
	Bedrooms           float64 `json:"bedrooms"`
	Beds               float64 `json:"beds"`
	Accommodates       float64 `json:"accommodates"`
	Availability365    float64 `json:"availability_365"`
	NumberOfReviews    float64 `json:"number_of_reviews"`
	ReviewScoresRating float64 `json:"review_scores_rating"`
	Latitude           float64 `json:"latitude"`
	Longitude          float64 `json:"longitude"`
}
