package models

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// NeighbourhoodBoundary is a named polygon from the boundaries file.
type NeighbourhoodBoundary struct {
	Name     string
	Group    string
	Geometry orb.Geometry
}

// Contains reports whether the point (lon, lat) falls inside the boundary.
func (b *NeighbourhoodBoundary) Contains(lon, lat float64) bool {
	p := orb.Point{lon, lat}
	switch g := b.Geometry.(type) {
	case orb.Polygon:
		return planar.PolygonContains(g, p)
	case orb.MultiPolygon:
		return planar.MultiPolygonContains(g, p)
	}
	return false
}

// NeighbourhoodView is a boundary left-joined with the stats of its listings.
// Stats is nil when no listing falls in the neighbourhood.
type NeighbourhoodView struct {
	Boundary *NeighbourhoodBoundary
	Stats    *AggregateStats
}
