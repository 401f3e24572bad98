package geo

import (
	"encoding/json"
	"testing"

	"foodtruck-order-service/internal/domain"

	"github.com/twpayne/go-geom"
)

func coords(lat, lng float64) (*float64, *float64) {
	return &lat, &lng
}

func stop(id string, active bool, lat, lng float64) domain.Stop {
	s := domain.Stop{ID: id, Name: "Stop " + id, Weekday: "Mardi", Active: active}
	s.Latitude, s.Longitude = coords(lat, lng)
	return s
}

func TestDistanceParisLyon(t *testing.T) {
	paris := geom.NewPointFlat(geom.XY, []float64{2.3522, 48.8566})
	lyon := geom.NewPointFlat(geom.XY, []float64{4.8357, 45.7640})
	if d := Distance(paris, lyon); d < 388 || d > 396 {
		t.Fatalf("expected about 392 km, got %.1f", d)
	}
	if d := Distance(paris, paris); d != 0 {
		t.Fatalf("expected zero distance, got %f", d)
	}
}

func TestNearestSkipsInactiveAndUnplaced(t *testing.T) {
	unplaced := domain.Stop{ID: "u", Active: true}
	stops := []domain.Stop{
		stop("far", true, 45.7640, 4.8357),
		stop("closed", false, 48.8570, 2.3525),
		unplaced,
		stop("near", true, 48.8049, 2.1204),
	}

	got, ok := Nearest(stops, 48.8566, 2.3522)
	if !ok {
		t.Fatalf("expected a stop")
	}
	if got.Stop.ID != "near" {
		t.Fatalf("expected near, got %s", got.Stop.ID)
	}
	if got.DistanceKm <= 0 || got.DistanceKm > 30 {
		t.Fatalf("unexpected distance %f", got.DistanceKm)
	}

	if _, ok := Nearest([]domain.Stop{unplaced}, 0, 0); ok {
		t.Fatalf("expected no result without coordinates")
	}
}

func TestFeatureCollection(t *testing.T) {
	placed := stop("a", true, 48.85, 2.35)
	placed.OpensAt, placed.ClosesAt = "18:00", "22:00"
	raw, err := MarshalStops([]domain.Stop{placed, {ID: "b"}})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var decoded struct {
		Type     string `json:"type"`
		Features []struct {
			ID       string `json:"id"`
			Geometry struct {
				Type        string    `json:"type"`
				Coordinates []float64 `json:"coordinates"`
			} `json:"geometry"`
			Properties map[string]any `json:"properties"`
		} `json:"features"`
	}
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if decoded.Type != "FeatureCollection" || len(decoded.Features) != 1 {
		t.Fatalf("unexpected collection %s", raw)
	}
	f := decoded.Features[0]
	if f.ID != "a" || f.Geometry.Type != "Point" {
		t.Fatalf("unexpected feature %s", raw)
	}
	if f.Geometry.Coordinates[0] != 2.35 || f.Geometry.Coordinates[1] != 48.85 {
		t.Fatalf("expected lon/lat order, got %v", f.Geometry.Coordinates)
	}
	if f.Properties["opensAt"] != "18:00" || f.Properties["weekday"] != "Mardi" {
		t.Fatalf("unexpected properties %#v", f.Properties)
	}
}

func TestValidCoordinate(t *testing.T) {
	if !ValidCoordinate(48.8, 2.3) || ValidCoordinate(91, 0) || ValidCoordinate(0, -181) {
		t.Fatalf("unexpected coordinate validation")
	}
}
