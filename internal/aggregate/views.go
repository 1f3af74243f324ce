package aggregate

import (
	"encoding/json"

	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"

	"github.com/mr1hm/go-field-mesh/internal/models"
)

// Recent returns up to n of the last items, newest first.
func Recent[T any](items []T, n int) []T {
	if n <= 0 || len(items) == 0 {
		return []T{}
	}
	start := max(len(items)-n, 0)
	out := make([]T, 0, len(items)-start)
	for i := len(items) - 1; i >= start; i-- {
		out = append(out, items[i])
	}
	return out
}

// MapMarkers builds a GeoJSON FeatureCollection of every disaster survey
// that carries a GPS fix. Coordinates are [lng, lat].
func MapMarkers(disasters []models.DisasterSurvey) *geojson.FeatureCollection {
	fc := &geojson.FeatureCollection{Features: []*geojson.Feature{}}
	for _, s := range disasters {
		if s.GPS == nil {
			continue
		}
		fc.Features = append(fc.Features, &geojson.Feature{
			ID:       s.SurveyID,
			Geometry: geom.NewPointFlat(geom.XY, []float64{s.GPS.Lng, s.GPS.Lat}),
			Properties: map[string]any{
				"digiPin":        s.DigiPin,
				"disasterType":   s.DisasterType,
				"locationStatus": s.LocationStatus,
				"peopleAffected": s.PeopleAffected,
				"trustScore":     s.TrustScore,
				"trustStatus":    s.TrustStatus,
			},
		})
	}
	return fc
}

func MarshalMapMarkers(disasters []models.DisasterSurvey) ([]byte, error) {
	return json.Marshal(MapMarkers(disasters))
}
