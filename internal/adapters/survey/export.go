// Package survey reads artwork records from the survey layer's GeoJSON export.
package survey

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/Kkzzkk0611/WSsupportApp-202601/internal/core/domain"
)

// Property names used by the survey form. Plain names are accepted as well so
// hand-written fixtures stay readable.
var (
	idKeys      = []string{"objectid", "OBJECTID", "id"}
	titleKeys   = []string{"Message", "message", "title"}
	authorKeys  = []string{"field_25", "author"}
	hazardKeys  = []string{"field_24", "hazard_type"}
	marblingKey = []string{"Mabling", "marbling"}
	collageKeys = []string{"collage"}
	imageKeys   = []string{"image_url", "imageUrl"}
	createdKeys = []string{"CreationDate", "created_at"}
)

// ParseFeatureCollection converts point features to artworks. Features that
// are not points or have no ID are skipped and reported in skipped.
func ParseFeatureCollection(data []byte) (artworks []domain.Artwork, skipped int, err error) {
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, 0, fmt.Errorf("survey: parse feature collection: %w", err)
	}

	for _, f := range fc.Features {
		a, ok := artworkFromFeature(f)
		if !ok {
			skipped++
			continue
		}
		artworks = append(artworks, a)
	}
	return artworks, skipped, nil
}

func artworkFromFeature(f *geojson.Feature) (domain.Artwork, bool) {
	pt, ok := f.Geometry.(orb.Point)
	if !ok {
		return domain.Artwork{}, false
	}

	id := lookup(f.Properties, idKeys)
	if id == "" && f.ID != nil {
		id = stringify(f.ID)
	}
	if id == "" {
		return domain.Artwork{}, false
	}

	a := domain.Artwork{
		ID:         id,
		Title:      lookup(f.Properties, titleKeys),
		Author:     lookup(f.Properties, authorKeys),
		HazardType: lookup(f.Properties, hazardKeys),
		Marbling:   lookup(f.Properties, marblingKey),
		Collage:    lookup(f.Properties, collageKeys),
		ImageURL:   lookup(f.Properties, imageKeys),
		Location:   domain.GeoPoint{Lat: pt.Lat(), Lon: pt.Lon()},
	}
	for _, k := range createdKeys {
		if v, ok := f.Properties[k]; ok {
			a.CreatedAt = parseTime(v)
			break
		}
	}
	return a, true
}

func lookup(props geojson.Properties, keys []string) string {
	for _, k := range keys {
		if v, ok := props[k]; ok && v != nil {
			if s := strings.TrimSpace(stringify(v)); s != "" {
				return s
			}
		}
	}
	return ""
}

func stringify(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		return strconv.Itoa(t)
	default:
		return fmt.Sprint(t)
	}
}

// parseTime accepts epoch milliseconds (the survey layer's date format) or
// RFC 3339 strings. Unparseable values yield the zero time.
func parseTime(v any) time.Time {
	switch t := v.(type) {
	case float64:
		return time.UnixMilli(int64(t)).UTC()
	case string:
		if ts, err := time.Parse(time.RFC3339, t); err == nil {
			return ts
		}
	}
	return time.Time{}
}
