package domain

// Spatial reference well-known IDs understood by the geometry engine.
const (
	WKIDWGS84       = 4326
	WKIDWebMercator = 3857
)

// SpatialReference identifies the coordinate system of a map point or polygon.
type SpatialReference struct {
	WKID int `json:"wkid"`
}

// IsGeographic reports whether coordinates are longitude/latitude degrees.
func (sr SpatialReference) IsGeographic() bool {
	return sr.WKID == WKIDWGS84
}

// GeoPoint represents a geographic coordinate (WGS 84).
type GeoPoint struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// MapPoint is a point expressed in the camera host's spatial reference.
type MapPoint struct {
	X                float64          `json:"x"`
	Y                float64          `json:"y"`
	SpatialReference SpatialReference `json:"spatial_reference"`
}

// Bounds represents a geographic bounding box.
type Bounds struct {
	MinLat float64 `json:"min_lat"`
	MinLon float64 `json:"min_lon"`
	MaxLat float64 `json:"max_lat"`
	MaxLon float64 `json:"max_lon"`
}

// AllowedArea is the immutable operating envelope for the camera center.
// Ring holds the closed polygon ring in SpatialReference coordinates.
type AllowedArea struct {
	Ring             []MapPoint       `json:"ring"`
	SpatialReference SpatialReference `json:"spatial_reference"`
}
