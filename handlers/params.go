package handlers

import (
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"

	"airbnb-explorer/services"
)

const (
	DefaultPreviewRows   = 10
	DefaultHistogramBins = 20
	MaxHistogramBins     = 500

	// allNeighbourhoods is the query value that lifts the neighbourhood restriction.
	allNeighbourhoods = "all"
)

// ParseScope reads the neighbourhood restriction. An absent value or "all" means every neighbourhood.
func ParseScope(query url.Values) services.NeighbourhoodScope {
	name := strings.TrimSpace(query.Get("neighbourhood"))
	if name == "" || strings.EqualFold(name, allNeighbourhoods) {
		return services.AllNeighbourhoods
	}
	return services.InNeighbourhood(name)
}

// ParseFilterParams extracts the filter controls from the URL query.
// room_type may repeat or hold a comma-separated list; an absent room_type
// selects no room types. Absent price bounds are unbounded.
func ParseFilterParams(query url.Values) (services.FilterParams, error) {
	p := services.FilterParams{
		RoomTypes:     roomTypes(query),
		MinPrice:      0,
		MaxPrice:      math.MaxFloat64,
		Neighbourhood: ParseScope(query),
	}

	var err error
	if p.MinPrice, err = floatParam(query, "min_price", p.MinPrice); err != nil {
		return p, err
	}
	if p.MaxPrice, err = floatParam(query, "max_price", p.MaxPrice); err != nil {
		return p, err
	}
	return p, nil
}

// EstimateParams is the input of the price estimator.
type EstimateParams struct {
	RoomType      string
	Neighbourhood services.NeighbourhoodScope
	Bedrooms      int
}

// ParseEstimateParams requires room_type and a non-negative bedrooms count.
func ParseEstimateParams(query url.Values) (EstimateParams, error) {
	p := EstimateParams{
		RoomType:      strings.TrimSpace(query.Get("room_type")),
		Neighbourhood: ParseScope(query),
	}
	if p.RoomType == "" {
		return p, fmt.Errorf("room_type is required")
	}
	raw := strings.TrimSpace(query.Get("bedrooms"))
	if raw == "" {
		return p, fmt.Errorf("bedrooms is required")
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return p, fmt.Errorf("bedrooms must be a non-negative integer, got %q", raw)
	}
	p.Bedrooms = n
	return p, nil
}

func roomTypes(query url.Values) []string {
	var out []string
	for _, v := range query["room_type"] {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

func floatParam(query url.Values, name string, def float64) (float64, error) {
	raw := strings.TrimSpace(query.Get(name))
	if raw == "" {
		return def, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) {
		return def, fmt.Errorf("%s must be a number, got %q", name, raw)
	}
	return v, nil
}

func intParam(query url.Values, name string, def int) (int, error) {
	raw := strings.TrimSpace(query.Get(name))
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return def, fmt.Errorf("%s must be an integer, got %q", name, raw)
	}
	return v, nil
}

func requiredFloat(query url.Values, name string) (float64, error) {
	if strings.TrimSpace(query.Get(name)) == "" {
		return 0, fmt.Errorf("%s is required", name)
	}
	return floatParam(query, name, 0)
}
