package geospatial

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"

	"github.com/Kkzzkk0611/WSsupportApp-202601/internal/core/domain"
)

// Distance is the great-circle distance in meters between two points.
func Distance(a, b domain.GeoPoint) float64 {
	return geo.DistanceHaversine(toOrb(a), toOrb(b))
}

// BoundingBox returns a box around p reaching radiusMeters in every direction.
func BoundingBox(p domain.GeoPoint, radiusMeters float64) domain.Bounds {
	b := geo.NewBoundAroundPoint(toOrb(p), radiusMeters)
	return domain.Bounds{
		MinLat: b.Min.Lat(),
		MinLon: b.Min.Lon(),
		MaxLat: b.Max.Lat(),
		MaxLon: b.Max.Lon(),
	}
}

// Contains reports whether p is inside b, edges included.
func Contains(b domain.Bounds, p domain.GeoPoint) bool {
	return p.Lat >= b.MinLat && p.Lat <= b.MaxLat && p.Lon >= b.MinLon && p.Lon <= b.MaxLon
}

func toOrb(p domain.GeoPoint) orb.Point {
	return orb.Point{p.Lon, p.Lat}
}
