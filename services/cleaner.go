package services

import (
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"airbnb-explorer/models"
	"airbnb-explorer/utils"
)

var (
	// priceRegexp matches "$" followed by digits, optional thousands commas and an optional fraction.
	priceRegexp = regexp.MustCompile(`^\$(\d[\d,]*)(\.\d+)?$`)
)

const (
	// ColorAlpha is the alpha channel of every listing colour.
	ColorAlpha = 140
	// HighAvailabilityDays is the exclusive lower bound of the High tier.
	HighAvailabilityDays = 60

	lowerPercentile = 0.01
	upperPercentile = 0.99
)

var roomTypeColors = map[string]string{
	models.RoomPrivate:    "blue",
	models.RoomEntireHome: "green",
	models.RoomShared:     "orange",
	models.RoomHotel:      "red",
}

var colorRGB = map[string][3]uint8{
	"green":  {0, 128, 0},
	"blue":   {0, 0, 255},
	"orange": {255, 165, 0},
	"gray":   {128, 128, 128},
	"red":    {165, 0, 0},
}

// Column names of the listings table.
const (
	colID                 = "id"
	colName               = "name"
	colListingURL         = "listing_url"
	colPictureURL         = "picture_url"
	colPrice              = "price"
	colRoomType           = "room_type"
	colNeighbourhood      = "neighbourhood"
	colNeighbourhoodClean = "neighbourhood_cleansed"
	colBedrooms           = "bedrooms"
	colBeds               = "beds"
	colAccommodates       = "accommodates"
	colAvailability365    = "availability_365"
	colNumberOfReviews    = "number_of_reviews"
	colReviewScores       = "review_scores_rating"
	colLastReview         = "last_review"
	colLatitude           = "latitude"
	colLongitude          = "longitude"
)

// Cleaned is the result of one cleaning pass.
type Cleaned struct {
	Listings  []*models.Listing
	RawCount  int
	PriceLow  float64
	PriceHigh float64
}

// Cleaner transforms RawListings into clean, enriched Listings.
type Cleaner struct {
	logger *utils.Logger
}

// NewCleaner creates a Cleaner with the given logger.
func NewCleaner(logger *utils.Logger) *Cleaner {
	return &Cleaner{logger: logger}
}

// Clean parses every price, drops rows outside the [p1, p99] band of the raw
// price distribution and fills the remaining fields. A single unparseable
// price fails the whole batch.
func (c *Cleaner) Clean(raw []*models.RawListing) (*Cleaned, error) {
	prices := make([]float64, len(raw))
	for i, r := range raw {
		if _, ok := r.Fields[colPrice]; !ok {
			return nil, &RecordError{Row: 0, Column: colPrice, Reason: "price column not found"}
		}
		p, err := ParsePrice(r.Get(colPrice))
		if err != nil {
			return nil, &RecordError{Row: r.Row, Column: colPrice, Value: r.Get(colPrice), Reason: err.Error()}
		}
		prices[i] = p
	}

	out := &Cleaned{RawCount: len(raw)}
	if len(raw) == 0 {
		c.logger.Warn("[cleaner] No listing rows to clean")
		return out, nil
	}

	sorted := append([]float64(nil), prices...)
	sort.Float64s(sorted)
	out.PriceLow = Percentile(sorted, lowerPercentile)
	out.PriceHigh = Percentile(sorted, upperPercentile)

	out.Listings = make([]*models.Listing, 0, len(raw))
	for i, r := range raw {
		if prices[i] < out.PriceLow || prices[i] > out.PriceHigh {
			continue
		}
		out.Listings = append(out.Listings, c.enrich(r, prices[i]))
	}

	c.logger.Info("[cleaner] Cleaned %d → %d listings (price band $%.2f–$%.2f, dropped %d)",
		len(raw), len(out.Listings), out.PriceLow, out.PriceHigh, len(raw)-len(out.Listings))
	return out, nil
}

func (c *Cleaner) enrich(r *models.RawListing, price float64) *models.Listing {
	neighbourhood := r.Get(colNeighbourhood)
	if _, ok := r.Fields[colNeighbourhoodClean]; ok {
		neighbourhood = r.Get(colNeighbourhoodClean)
	}

	l := &models.Listing{
		ID:         text(r.Get(colID)),
		Name:       text(r.Get(colName)),
		ListingURL: text(r.Get(colListingURL)),
		PictureURL: text(r.Get(colPictureURL)),

		Price:         price,
		RoomType:      text(r.Get(colRoomType)),
		Neighbourhood: text(neighbourhood),

		Bedrooms:        c.integer(r, colBedrooms),
		Beds:            c.integer(r, colBeds),
		Accommodates:    c.integer(r, colAccommodates),
		Availability365: clamp(c.integer(r, colAvailability365), 0, 365),

		NumberOfReviews:    c.integer(r, colNumberOfReviews),
		ReviewScoresRating: c.decimal(r, colReviewScores),
		LastReview:         text(r.Get(colLastReview)),
		Latitude:           c.decimal(r, colLatitude),
		Longitude:          c.decimal(r, colLongitude),
	}
	if l.LastReview == "" {
		l.LastReview = "0"
	}

	l.AvailabilityTier = AvailabilityTierOf(l.Availability365)
	l.Color, l.RGBA = DisplayColor(l.RoomType)
	return l
}

// decimal parses a numeric cell; missing or unparseable cells become 0.
func (c *Cleaner) decimal(r *models.RawListing, column string) float64 {
	s := text(r.Get(column))
	if s == "" {
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		c.logger.Debug("[cleaner] Row %d: %s=%q is not numeric, using 0", r.Row, column, s)
		return 0
	}
	return v
}

// integer accepts "3" as well as "3.0", the form pandas writes for integer
// columns that contain gaps.
func (c *Cleaner) integer(r *models.RawListing, column string) int {
	v := c.decimal(r, column)
	if v < 0 {
		return 0
	}
	return int(v)
}

// ParsePrice converts "$1,234.50" into 1234.50.
func ParsePrice(raw string) (float64, error) {
	s := strings.TrimSpace(raw)
	m := priceRegexp.FindStringSubmatch(s)
	if m == nil {
		return 0, &priceError{raw: raw}
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(m[1], ",", "")+m[2], 64)
	if err != nil {
		return 0, &priceError{raw: raw}
	}
	return v, nil
}

type priceError struct{ raw string }

func (e *priceError) Error() string {
	return "not a currency amount: " + strconv.Quote(e.raw)
}

func (e *priceError) Is(target error) bool {
	return target == ErrMalformedRecord
}

// Percentile returns the p-quantile of sorted values using linear
// interpolation between closest ranks (h = (n-1)p), the numpy/pandas default.
func Percentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return math.NaN()
	}
	if p <= 0 {
		return sorted[0]
	}
	if p >= 1 {
		return sorted[n-1]
	}
	h := float64(n-1) * p
	lo := int(math.Floor(h))
	if lo+1 >= n {
		return sorted[n-1]
	}
	return sorted[lo] + (h-float64(lo))*(sorted[lo+1]-sorted[lo])
}

// AvailabilityTierOf labels a listing High when it is free more than 60 days a year.
func AvailabilityTierOf(availability365 int) models.AvailabilityTier {
	if availability365 > HighAvailabilityDays {
		return models.AvailabilityHigh
	}
	return models.AvailabilityLow
}

// DisplayColor maps a room type to its colour name and RGBA. Unknown room types are gray.
func DisplayColor(roomType string) (string, models.RGBA) {
	name, ok := roomTypeColors[roomType]
	if !ok {
		name = "gray"
	}
	rgb := colorRGB[name]
	return name, models.RGBA{rgb[0], rgb[1], rgb[2], ColorAlpha}
}

// text trims a cell and blanks the markers pandas and gota use for missing values.
func text(s string) string {
	s = strings.TrimSpace(s)
	switch s {
	case "NA", "NaN", "nan", "<nil>":
		return ""
	}
	return s
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
