package polygons

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"
)

// EncodeGeoJSON writes the table as a FeatureCollection, one polygon feature
// per site with the key as feature id.
func EncodeGeoJSON(w io.Writer, t Table) error {
	fc := geojson.FeatureCollection{}
	for _, k := range t.Keys() {
		ring := t[k]
		coords := make([]geom.Coord, len(ring))
		for i, p := range ring {
			coords[i] = geom.Coord{p.Lon, p.Lat}
		}
		polygon, err := geom.NewPolygon(geom.XY).SetCoords([][]geom.Coord{coords})
		if err != nil {
			return fmt.Errorf("error building polygon for %s: %w", k, err)
		}
		fc.Features = append(fc.Features, &geojson.Feature{
			ID:         k,
			Geometry:   polygon,
			Properties: map[string]interface{}{"site": k},
		})
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "    ")
	return enc.Encode(&fc)
}

// EncodeJSON writes the table as a JSON object mapping key to [[lon, lat], ...].
func EncodeJSON(w io.Writer, t Table) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "    ")
	return enc.Encode(t)
}
