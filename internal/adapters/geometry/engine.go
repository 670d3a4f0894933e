package geometry

import (
	"errors"
	"fmt"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/paulmach/orb/planar"
	"github.com/paulmach/orb/project"

	"github.com/Kkzzkk0611/WSsupportApp-202601/internal/core/domain"
)

// ErrUnsupportedWKID is returned for spatial references other than WGS84 and
// Web Mercator.
var ErrUnsupportedWKID = errors.New("unsupported spatial reference")

// DefaultRing is the survey area as lon/lat pairs.
var DefaultRing = []domain.GeoPoint{
	{Lon: 139.611, Lat: 35.5265},
	{Lon: 139.611, Lat: 35.555},
	{Lon: 139.648, Lat: 35.555},
	{Lon: 139.648, Lat: 35.5265},
	{Lon: 139.611, Lat: 35.5265},
}

// Engine implements ports.GeometryEngine with planar predicates.
type Engine struct{}

// NewEngine creates a geometry engine.
func NewEngine() *Engine {
	return &Engine{}
}

// Contains reports whether p lies inside the area ring. Points on the
// boundary count as inside.
func (e *Engine) Contains(area *domain.AllowedArea, p domain.MapPoint) (bool, error) {
	if area == nil {
		return false, errors.New("geometry: nil area")
	}
	if area.SpatialReference != p.SpatialReference {
		return false, fmt.Errorf("area wkid %d, point wkid %d: %w",
			area.SpatialReference.WKID, p.SpatialReference.WKID, domain.ErrSpatialReferenceMismatch)
	}

	ring := make(orb.Ring, len(area.Ring))
	for i, v := range area.Ring {
		ring[i] = orb.Point{v.X, v.Y}
	}
	return planar.RingContains(ring, orb.Point{p.X, p.Y}), nil
}

// Project converts a WGS84 coordinate into sr.
func (e *Engine) Project(p domain.GeoPoint, sr domain.SpatialReference) (domain.MapPoint, error) {
	pt := orb.Point{p.Lon, p.Lat}
	switch sr.WKID {
	case domain.WKIDWGS84:
	case domain.WKIDWebMercator:
		pt = project.Point(pt, project.WGS84.ToMercator)
	default:
		return domain.MapPoint{}, fmt.Errorf("project to wkid %d: %w", sr.WKID, ErrUnsupportedWKID)
	}
	return domain.MapPoint{X: pt.X(), Y: pt.Y(), SpatialReference: sr}, nil
}

// Unproject converts a map point back to WGS84.
func (e *Engine) Unproject(p domain.MapPoint) (domain.GeoPoint, error) {
	pt := orb.Point{p.X, p.Y}
	switch p.SpatialReference.WKID {
	case domain.WKIDWGS84:
	case domain.WKIDWebMercator:
		pt = project.Point(pt, project.Mercator.ToWGS84)
	default:
		return domain.GeoPoint{}, fmt.Errorf("unproject wkid %d: %w", p.SpatialReference.WKID, ErrUnsupportedWKID)
	}
	return domain.GeoPoint{Lat: pt.Lat(), Lon: pt.Lon()}, nil
}

// Area builds an allowed area in sr from a lon/lat ring, closing it if needed.
func (e *Engine) Area(ring []domain.GeoPoint, sr domain.SpatialReference) (*domain.AllowedArea, error) {
	if len(ring) < 3 {
		return nil, fmt.Errorf("geometry: ring needs at least 3 points, got %d", len(ring))
	}
	if ring[0] != ring[len(ring)-1] {
		ring = append(ring[:len(ring):len(ring)], ring[0])
	}

	area := &domain.AllowedArea{SpatialReference: sr, Ring: make([]domain.MapPoint, 0, len(ring))}
	for _, g := range ring {
		mp, err := e.Project(g, sr)
		if err != nil {
			return nil, err
		}
		area.Ring = append(area.Ring, mp)
	}
	return area, nil
}

// ParseRing reads the outer ring of the first polygon in a GeoJSON document.
// Feature, FeatureCollection and bare geometry documents are accepted.
func ParseRing(data []byte) ([]domain.GeoPoint, error) {
	var geom orb.Geometry

	if fc, err := geojson.UnmarshalFeatureCollection(data); err == nil && len(fc.Features) > 0 {
		geom = fc.Features[0].Geometry
	} else if f, err := geojson.UnmarshalFeature(data); err == nil && f.Geometry != nil {
		geom = f.Geometry
	} else if g, err := geojson.UnmarshalGeometry(data); err == nil {
		geom = g.Geometry()
	} else {
		return nil, fmt.Errorf("geometry: parse geojson: %w", err)
	}

	var ring orb.Ring
	switch g := geom.(type) {
	case orb.Polygon:
		if len(g) > 0 {
			ring = g[0]
		}
	case orb.MultiPolygon:
		if len(g) > 0 && len(g[0]) > 0 {
			ring = g[0][0]
		}
	case orb.Ring:
		ring = g
	default:
		return nil, fmt.Errorf("geometry: expected a polygon, got %T", geom)
	}
	if len(ring) < 3 {
		return nil, errors.New("geometry: polygon has no outer ring")
	}

	out := make([]domain.GeoPoint, len(ring))
	for i, p := range ring {
		out[i] = domain.GeoPoint{Lat: p.Lat(), Lon: p.Lon()}
	}
	return out, nil
}
