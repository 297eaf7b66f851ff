// Package geo resolves station coordinates to neighborhood and borough names.
package geo

import (
	"fmt"
	"os"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/paulmach/orb/planar"
)

// DefaultPath is where the NYC Neighborhood Tabulation Areas file is expected.
const DefaultPath = "./nyc_geo_data/2010 Neighborhood Tabulation Areas (NTAs).geojson"

// Default property keys in the NTA feature collection.
const (
	DefaultNeighborhoodKey = "ntaname"
	DefaultBoroughKey      = "boro_name"
)

type feature struct {
	geometry   orb.Geometry
	bound      orb.Bound
	properties geojson.Properties
}

// Boundaries is a parsed feature collection searched in file order.
type Boundaries struct {
	NeighborhoodKey string
	BoroughKey      string

	features []feature
}

// LoadBoundaries reads and parses a GeoJSON feature collection.
func LoadBoundaries(path string) (*Boundaries, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read boundaries: %w", err)
	}
	return ParseBoundaries(data)
}

// ParseBoundaries parses a GeoJSON feature collection.
func ParseBoundaries(data []byte) (*Boundaries, error) {
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, fmt.Errorf("parse boundaries: %w", err)
	}

	b := &Boundaries{
		NeighborhoodKey: DefaultNeighborhoodKey,
		BoroughKey:      DefaultBoroughKey,
		features:        make([]feature, 0, len(fc.Features)),
	}
	for _, f := range fc.Features {
		if f.Geometry == nil {
			continue
		}
		b.features = append(b.features, feature{
			geometry:   f.Geometry,
			bound:      f.Geometry.Bound(),
			properties: f.Properties,
		})
	}
	return b, nil
}

// Len returns the number of features with a geometry.
func (b *Boundaries) Len() int {
	return len(b.features)
}

// Lookup returns the key property of the first feature whose polygon contains
// the point. Only Polygon and MultiPolygon geometries can match.
func (b *Boundaries) Lookup(lat, lon float64, key string) (string, bool) {
	pt := orb.Point{lon, lat}
	for _, f := range b.features {
		if !f.bound.Contains(pt) || !contains(f.geometry, pt) {
			continue
		}
		return f.properties.MustString(key, ""), true
	}
	return "", false
}

// Neighborhood looks up the neighborhood name for a coordinate.
func (b *Boundaries) Neighborhood(lat, lon float64) (string, bool) {
	return b.Lookup(lat, lon, b.NeighborhoodKey)
}

// Borough looks up the borough name for a coordinate.
func (b *Boundaries) Borough(lat, lon float64) (string, bool) {
	return b.Lookup(lat, lon, b.BoroughKey)
}

func contains(g orb.Geometry, pt orb.Point) bool {
	switch g := g.(type) {
	case orb.Polygon:
		return planar.PolygonContains(g, pt)
	case orb.MultiPolygon:
		return planar.MultiPolygonContains(g, pt)
	default:
		return false
	}
}
