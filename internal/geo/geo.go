// Package geo exposes stops as map data and finds the closest one.
package geo

import (
	"encoding/json"
	"math"

	"foodtruck-order-service/internal/domain"

	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"
)

const earthRadiusKm = 6371.0

// FeatureCollection returns one point feature per stop that has
// coordinates. Stops without coordinates are skipped.
func FeatureCollection(stops []domain.Stop) *geojson.FeatureCollection {
	fc := &geojson.FeatureCollection{Features: make([]*geojson.Feature, 0, len(stops))}
	for _, s := range stops {
		if !s.HasCoordinates() {
			continue
		}
		props := map[string]interface{}{
			"name":    s.Name,
			"address": s.Address,
			"weekday": s.Weekday,
			"active":  s.Active,
		}
		if s.OpensAt != "" && s.ClosesAt != "" {
			props["opensAt"] = s.OpensAt
			props["closesAt"] = s.ClosesAt
		}
		fc.Features = append(fc.Features, &geojson.Feature{
			ID:         s.ID,
			Geometry:   geom.NewPointFlat(geom.XY, []float64{*s.Longitude, *s.Latitude}),
			Properties: props,
		})
	}
	return fc
}

func MarshalStops(stops []domain.Stop) ([]byte, error) {
	return json.Marshal(FeatureCollection(stops))
}

type Nearby struct {
	Stop       domain.Stop `json:"stop"`
	DistanceKm float64     `json:"distanceKm"`
}

// Nearest returns the closest active stop with coordinates.
func Nearest(stops []domain.Stop, lat, lng float64) (Nearby, bool) {
	from := geom.NewPointFlat(geom.XY, []float64{lng, lat})
	var (
		best  Nearby
		found bool
	)
	for _, s := range stops {
		if !s.Active || !s.HasCoordinates() {
			continue
		}
		d := Distance(from, geom.NewPointFlat(geom.XY, []float64{*s.Longitude, *s.Latitude}))
		if !found || d < best.DistanceKm {
			best = Nearby{Stop: s, DistanceKm: d}
			found = true
		}
	}
	if found {
		best.DistanceKm = math.Round(best.DistanceKm*100) / 100
	}
	return best, found
}

// Distance is the great-circle distance in kilometres between two
// lon/lat points.
func Distance(a, b *geom.Point) float64 {
	lat1, lat2 := radians(a.Y()), radians(b.Y())
	dLat := lat2 - lat1
	dLng := radians(b.X() - a.X())

	h := math.Sin(dLat/2)*math.Sin(dLat/2) + math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	return 2 * earthRadiusKm * math.Asin(math.Min(1, math.Sqrt(h)))
}

func ValidCoordinate(lat, lng float64) bool {
	return lat >= -90 && lat <= 90 && lng >= -180 && lng <= 180
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}
