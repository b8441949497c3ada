package services

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"airbnb-explorer/models"
	"airbnb-explorer/utils"
)

const (
	defaultPriceLow  = 50.0
	defaultPriceHigh = 500.0
	defaultRoomTypes = 2
)

// InsightService derives the chart and control inputs of the dashboard.
type InsightService struct {
	logger *utils.Logger
}

func NewInsightService(logger *utils.Logger) *InsightService {
	return &InsightService{logger: logger}
}

// Options lists the values the filter controls offer for a collection.
func (s *InsightService) Options(listings []*models.Listing) models.DashboardOptions {
	opts := models.DashboardOptions{
		RoomTypes:      []string{},
		Neighbourhoods: []string{},
	}
	if len(listings) == 0 {
		return opts
	}

	seenRoom := make(map[string]struct{})
	seenHood := make(map[string]struct{})
	lons := make([]float64, len(listings))
	lats := make([]float64, len(listings))
	opts.PriceMin, opts.PriceMax = listings[0].Price, listings[0].Price

	for i, l := range listings {
		if _, ok := seenRoom[l.RoomType]; !ok {
			seenRoom[l.RoomType] = struct{}{}
			opts.RoomTypes = append(opts.RoomTypes, l.RoomType)
		}
		if _, ok := seenHood[l.Neighbourhood]; !ok {
			seenHood[l.Neighbourhood] = struct{}{}
			opts.Neighbourhoods = append(opts.Neighbourhoods, l.Neighbourhood)
		}
		opts.PriceMin = math.Min(opts.PriceMin, l.Price)
		opts.PriceMax = math.Max(opts.PriceMax, l.Price)
		lons[i], lats[i] = l.Longitude, l.Latitude
	}

	n := defaultRoomTypes
	if len(opts.RoomTypes) < n {
		n = len(opts.RoomTypes)
	}
	opts.DefaultRoomTypes = append([]string(nil), opts.RoomTypes[:n]...)
	opts.DefaultPrice = [2]float64{
		math.Max(opts.PriceMin, defaultPriceLow),
		math.Min(opts.PriceMax, defaultPriceHigh),
	}
	if opts.DefaultPrice[0] > opts.DefaultPrice[1] {
		opts.DefaultPrice = [2]float64{opts.PriceMin, opts.PriceMax}
	}
	opts.Midpoint = [2]float64{stat.Mean(lons, nil), stat.Mean(lats, nil)}
	return opts
}

// RankNeighbourhoodsByPrice orders neighbourhoods by mean price, most expensive first.
func (s *InsightService) RankNeighbourhoodsByPrice(stats map[string]models.AggregateStats) []models.NeighbourhoodPrice {
	out := make([]models.NeighbourhoodPrice, 0, len(stats))
	for name, st := range stats {
		out = append(out, models.NeighbourhoodPrice{Neighbourhood: name, Price: st.Price, Count: st.Count})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Price != out[j].Price {
			return out[i].Price > out[j].Price
		}
		return out[i].Neighbourhood < out[j].Neighbourhood
	})
	return out
}

// CountByRoomType counts listings per room type.
func (s *InsightService) CountByRoomType(listings []*models.Listing) map[string]int {
	out := make(map[string]int)
	for _, l := range listings {
		out[l.RoomType]++
	}
	return out
}

// PriceHistogram splits [min, max] price into equal-width bins.
func (s *InsightService) PriceHistogram(listings []*models.Listing, bins int) []models.HistogramBin {
	if bins < 1 {
		s.logger.Debug("[insights] Histogram requested with %d bins", bins)
		return []models.HistogramBin{}
	}
	if len(listings) == 0 {
		return []models.HistogramBin{}
	}
	lo, hi := listings[0].Price, listings[0].Price
	for _, l := range listings {
		lo = math.Min(lo, l.Price)
		hi = math.Max(hi, l.Price)
	}
	if hi == lo {
		return []models.HistogramBin{{Low: lo, High: hi, Count: len(listings)}}
	}

	width := (hi - lo) / float64(bins)
	out := make([]models.HistogramBin, bins)
	for i := range out {
		out[i].Low = lo + float64(i)*width
		out[i].High = lo + float64(i+1)*width
	}
	out[bins-1].High = hi

	for _, l := range listings {
		idx := int((l.Price - lo) / width)
		if idx >= bins {
			idx = bins - 1
		}
		out[idx].Count++
	}
	return out
}

// JoinBoundaries left-joins every boundary with the stats of its neighbourhood.
func (s *InsightService) JoinBoundaries(boundaries []*models.NeighbourhoodBoundary, stats map[string]models.AggregateStats) []models.NeighbourhoodView {
	out := make([]models.NeighbourhoodView, 0, len(boundaries))
	for _, b := range boundaries {
		view := models.NeighbourhoodView{Boundary: b}
		if st, ok := stats[b.Name]; ok {
			view.Stats = &st
		}
		out = append(out, view)
	}
	return out
}

// Locate returns the first boundary containing (lon, lat), or nil.
func (s *InsightService) Locate(boundaries []*models.NeighbourhoodBoundary, lon, lat float64) *models.NeighbourhoodBoundary {
	for _, b := range boundaries {
		if b.Contains(lon, lat) {
			return b
		}
	}
	return nil
}

// Head returns at most the first n listings.
func Head(listings []*models.Listing, n int) []*models.Listing {
	if n < 0 || n > len(listings) {
		n = len(listings)
	}
	out := make([]*models.Listing, n)
	copy(out, listings)
	return out
}
