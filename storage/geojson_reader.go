package storage

import (
	"fmt"
	"os"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"airbnb-explorer/models"
)

const (
	neighbourhoodProperty = "neighbourhood"
	groupProperty         = "neighbourhood_group"
)

// GeoJSONReader loads neighbourhood boundaries from a FeatureCollection.
type GeoJSONReader struct{}

// NewGeoJSONReader creates a GeoJSONReader.
func NewGeoJSONReader() *GeoJSONReader {
	return &GeoJSONReader{}
}

// ReadBoundaries returns one boundary per polygon feature carrying a
// "neighbourhood" property. Other features are skipped.
func (g *GeoJSONReader) ReadBoundaries(path string) ([]*models.NeighbourhoodBoundary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("geojson: read %q: %w", path, err)
	}

	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, fmt.Errorf("geojson: parse %q: %w: %w", path, ErrUnparseable, err)
	}

	out := make([]*models.NeighbourhoodBoundary, 0, len(fc.Features))
	for _, f := range fc.Features {
		name := f.Properties.MustString(neighbourhoodProperty, "")
		if name == "" {
			continue
		}
		switch f.Geometry.(type) {
		case orb.Polygon, orb.MultiPolygon:
		default:
			continue
		}
		out = append(out, &models.NeighbourhoodBoundary{
			Name:     name,
			Group:    f.Properties.MustString(groupProperty, ""),
			Geometry: f.Geometry,
		})
	}
	return out, nil
}

// BoundaryFeatures renders joined views as a FeatureCollection whose
// properties carry the neighbourhood stats; neighbourhoods without listings
// get null stat properties.
func BoundaryFeatures(views []models.NeighbourhoodView) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for _, v := range views {
		f := geojson.NewFeature(v.Boundary.Geometry)
		f.Properties[neighbourhoodProperty] = v.Boundary.Name
		if v.Boundary.Group != "" {
			f.Properties[groupProperty] = v.Boundary.Group
		}
		if v.Stats != nil {
			f.Properties["count"] = v.Stats.Count
			f.Properties["price"] = v.Stats.Price
			f.Properties["availability_365"] = v.Stats.Availability365
			f.Properties["review_scores_rating"] = v.Stats.ReviewScoresRating
		} else {
			f.Properties["count"] = nil
			f.Properties["price"] = nil
			f.Properties["availability_365"] = nil
			f.Properties["review_scores_rating"] = nil
		}
		fc.Append(f)
	}
	return fc
}
