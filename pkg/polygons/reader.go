package polygons

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-shapefile"
)

const shapefileExt = ".shp"

// keyLength is the number of leading file name characters used as the site key.
const keyLength = 3

// Reprojector converts a projected coordinate to longitude/latitude.
type Reprojector interface {
	Reproject(easting, northing float64, from, to int) (float64, float64, error)
}

type config struct {
	policy DuplicatePolicy
	logger zerolog.Logger
}

type Option func(*config)

func WithDuplicatePolicy(p DuplicatePolicy) Option {
	return func(c *config) {
		c.policy = p
	}
}

func WithLogger(l zerolog.Logger) Option {
	return func(c *config) {
		c.logger = l
	}
}

// Reader extracts area-of-interest polygons from a directory of shapefiles.
type Reader struct {
	reproj   Reprojector
	from, to int
	policy   DuplicatePolicy
	logger   zerolog.Logger
}

func NewReader(reproj Reprojector, fromEPSG, toEPSG int, opt ...Option) *Reader {
	c := config{policy: KeepLast, logger: zerolog.Nop()}
	for _, f := range opt {
		f(&c)
	}
	return &Reader{
		reproj: reproj,
		from:   fromEPSG,
		to:     toEPSG,
		policy: c.policy,
		logger: c.logger,
	}
}

// SiteKey derives the table key from a shapefile name.
func SiteKey(filename string) string {
	r := []rune(filepath.Base(filename))
	if len(r) > keyLength {
		r = r[:keyLength]
	}
	return string(r)
}

// ReadDir reads every shapefile in dir, in lexical order, and returns the
// reprojected exterior ring of each polygon keyed by site. A directory with
// no shapefiles yields an empty table.
func (r *Reader) ReadDir(dir string) (Table, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("error reading directory %s: %w", dir, err)
	}
	table := make(Table)
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), shapefileExt) {
			continue
		}
		filename := filepath.Join(dir, e.Name())
		rings, err := r.ReadFile(filename)
		if err != nil {
			return nil, err
		}
		key := SiteKey(e.Name())
		for _, ring := range rings {
			stored, replaced, err := table.put(key, ring, r.policy)
			if err != nil {
				return nil, fmt.Errorf("error adding polygon from %s: %w", filename, err)
			}
			if replaced {
				r.logger.Warn().Str("key", key).Str("file", filename).Msg("Polygon replaces an earlier polygon with the same key")
			}
			r.logger.Debug().Str("key", stored).Int("vertices", len(ring)).Msg("Added polygon")
		}
	}
	r.logger.Info().Str("dir", dir).Int("polygons", len(table)).Msg("Read site polygons")
	return table, nil
}

// ReadFile returns the reprojected exterior ring of every polygon record in
// a single shapefile, in record order. Records of any other geometry type
// are skipped.
func (r *Reader) ReadFile(filename string) ([]Ring, error) {
	sf, err := shapefile.Read(strings.TrimSuffix(filename, shapefileExt), nil)
	if err != nil {
		return nil, fmt.Errorf("error reading shapefile %s: %w", filename, err)
	}
	var rings []Ring
	for i := 0; i < sf.NumRecords(); i++ {
		_, g := sf.Record(i)
		exterior, ok := exteriorRing(g)
		if !ok {
			r.logger.Debug().Str("file", filename).Int("record", i).Str("type", fmt.Sprintf("%T", g)).Msg("Skipping non-polygon record")
			continue
		}
		ring, err := r.reprojectRing(exterior)
		if err != nil {
			return nil, fmt.Errorf("error reprojecting record %d of %s: %w", i, filename, err)
		}
		rings = append(rings, ring)
	}
	return rings, nil
}

func (r *Reader) reprojectRing(lr *geom.LinearRing) (Ring, error) {
	coords := lr.Coords()
	ring := make(Ring, len(coords))
	for i, c := range coords {
		lon, lat, err := r.reproj.Reproject(c.X(), c.Y(), r.from, r.to)
		if err != nil {
			return nil, err
		}
		ring[i] = LonLat{Lon: lon, Lat: lat}
	}
	return ring, nil
}

// exteriorRing accepts simple polygons. A multipolygon with one member is
// how some readers surface a single-part shapefile polygon, so it counts.
func exteriorRing(g geom.T) (*geom.LinearRing, bool) {
	switch g := g.(type) {
	case *geom.Polygon:
		if g == nil || g.NumLinearRings() == 0 {
			return nil, false
		}
		return g.LinearRing(0), true
	case *geom.MultiPolygon:
		if g == nil || g.NumPolygons() != 1 {
			return nil, false
		}
		return exteriorRing(g.Polygon(0))
	default:
		return nil, false
	}
}
