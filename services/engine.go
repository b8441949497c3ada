package services

import (
	"fmt"

	"gonum.org/v1/gonum/stat"

	"airbnb-explorer/models"
)

// NeighbourhoodScope restricts a query to one neighbourhood or lifts the restriction.
type NeighbourhoodScope struct {
	name string
	all  bool
}

// AllNeighbourhoods matches every listing regardless of neighbourhood.
var AllNeighbourhoods = NeighbourhoodScope{all: true}

// InNeighbourhood matches listings whose neighbourhood equals name exactly.
func InNeighbourhood(name string) NeighbourhoodScope {
	return NeighbourhoodScope{name: name}
}

// IsAll reports whether the scope is unrestricted.
func (s NeighbourhoodScope) IsAll() bool { return s.all }

// Name returns the selected neighbourhood, or "" for AllNeighbourhoods.
func (s NeighbourhoodScope) Name() string { return s.name }

// Matches reports whether the listing falls inside the scope.
func (s NeighbourhoodScope) Matches(l *models.Listing) bool {
	return s.all || l.Neighbourhood == s.name
}

func (s NeighbourhoodScope) String() string {
	if s.all {
		return "all neighbourhoods"
	}
	return s.name
}

// FilterParams is the state of the filter controls. Price bounds are inclusive.
type FilterParams struct {
	RoomTypes     []string
	MinPrice      float64
	MaxPrice      float64
	Neighbourhood NeighbourhoodScope
}

// Engine answers filter and aggregate queries over a cleaned collection.
// It holds no state; every method is safe for concurrent use and returns
// freshly allocated results.
type Engine struct{}

// NewEngine creates an Engine.
func NewEngine() *Engine {
	return &Engine{}
}

// Filter keeps listings whose room type is in p.RoomTypes, whose price lies in
// [p.MinPrice, p.MaxPrice] and that fall inside p.Neighbourhood.
func (e *Engine) Filter(listings []*models.Listing, p FilterParams) []*models.Listing {
	out := make([]*models.Listing, 0)
	if len(p.RoomTypes) == 0 {
		return out
	}
	rooms := make(map[string]struct{}, len(p.RoomTypes))
	for _, rt := range p.RoomTypes {
		rooms[rt] = struct{}{}
	}

	for _, l := range listings {
		if _, ok := rooms[l.RoomType]; !ok {
			continue
		}
		if l.Price < p.MinPrice || l.Price > p.MaxPrice {
			continue
		}
		if !p.Neighbourhood.Matches(l) {
			continue
		}
		out = append(out, l)
	}
	return out
}

// EstimatePrice returns the mean nightly price of listings matching roomType,
// scope and bedrooms exactly, truncated toward zero. ok is false only when
// nothing matches; a mean below $1 is reported as (0, true).
func (e *Engine) EstimatePrice(listings []*models.Listing, roomType string, scope NeighbourhoodScope, bedrooms int) (estimate int, ok bool) {
	var prices []float64
	for _, l := range listings {
		if l.RoomType == roomType && l.Bedrooms == bedrooms && scope.Matches(l) {
			prices = append(prices, l.Price)
		}
	}
	if len(prices) == 0 {
		return 0, false
	}
	return int(stat.Mean(prices, nil)), true
}

// FormatEstimate renders an EstimatePrice result for display.
func FormatEstimate(estimate int, ok bool) string {
	if !ok {
		return "Sorry, there is not enough data to estimate a price for this selection."
	}
	return fmt.Sprintf("$%d per night", estimate)
}

// AverageByNeighbourhood groups listings by neighbourhood and averages every numeric field.
func (e *Engine) AverageByNeighbourhood(listings []*models.Listing) map[string]models.AggregateStats {
	groups := make(map[string][]*models.Listing)
	for _, l := range listings {
		groups[l.Neighbourhood] = append(groups[l.Neighbourhood], l)
	}

	out := make(map[string]models.AggregateStats, len(groups))
	for name, group := range groups {
		out[name] = aggregate(group)
	}
	return out
}

// CountByAvailabilityTier counts listings per availability tier.
func (e *Engine) CountByAvailabilityTier(listings []*models.Listing) map[models.AvailabilityTier]int {
	out := make(map[models.AvailabilityTier]int)
	for _, l := range listings {
		out[l.AvailabilityTier]++
	}
	return out
}

func aggregate(group []*models.Listing) models.AggregateStats {
	n := len(group)
	cols := make([][]float64, 9)
	for i := range cols {
		cols[i] = make([]float64, n)
	}
	for i, l := range group {
		cols[0][i] = l.Price
		cols[1][i] = float64(l.Bedrooms)
		cols[2][i] = float64(l.Beds)
		cols[3][i] = float64(l.Accommodates)
		cols[4][i] = float64(l.Availability365)
		cols[5][i] = float64(l.NumberOfReviews)
		cols[6][i] = l.ReviewScoresRating
		cols[7][i] = l.Latitude
		cols[8][i] = l.Longitude
	}
	return models.AggregateStats{
		Count:              n,
		Price:              stat.Mean(cols[0], nil),
		Bedrooms:           stat.Mean(cols[1], nil),
		Beds:               stat.Mean(cols[2], nil),
		Accommodates:       stat.Mean(cols[3], nil),
		Availability365:    stat.Mean(cols[4], nil),
		NumberOfReviews:    stat.Mean(cols[5], nil),
		ReviewScoresRating: stat.Mean(cols[6], nil),
		Latitude:           stat.Mean(cols[7], nil),
		Longitude:          stat.Mean(cols[8], nil),
	}
}
