package export

import (
	"encoding/json"
	"io"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"

	"github.com/sells-group/visitor-leads/internal/model"
)

// VisitorMap builds a FeatureCollection with one point per located lead.
// Leads without coordinates are skipped.
func VisitorMap(leads []model.Lead) *geojson.FeatureCollection {
	fc := &geojson.FeatureCollection{Features: []*geojson.Feature{}}
	for _, l := range leads {
		if !l.Visitor.HasLocation() {
			continue
		}
		s := l.Result.Score
		fc.Features = append(fc.Features, &geojson.Feature{
			ID:       l.ID,
			Geometry: geom.NewPointFlat(geom.XY, []float64{l.Visitor.Longitude, l.Visitor.Latitude}),
			Properties: map[string]any{
				"ip":           l.IP,
				"organization": l.Result.Organization,
				"company":      l.Result.Company.Name,
				"category":     l.Result.Category,
				"location":     l.Visitor.Location(),
				"priority":     s.Priority,
				"score":        s.Score,
				"contacts":     s.Stats.Total,
			},
		})
	}
	return fc
}

// WriteGeoJSON encodes VisitorMap(leads) to w.
func WriteGeoJSON(w io.Writer, leads []model.Lead) error {
	b, err := json.Marshal(VisitorMap(leads))
	if err != nil {
		return eris.Wrap(err, "export: encode geojson")
	}
	if _, err := w.Write(b); err != nil {
		return eris.Wrap(err, "export: write geojson")
	}
	return nil
}
