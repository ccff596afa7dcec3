package polygons

import (
	"fmt"
	"sort"

	"github.com/dhconnelly/rtreego"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/xy"
)

// Half-width (in degrees) of the query rectangle around a point
const pointTolerance = 1e-9

type site struct {
	key    string
	flat   []float64
	bounds *rtreego.Rect
}

func (s *site) Bounds() *rtreego.Rect {
	return s.bounds
}

func (s *site) Contains(lon, lat float64) bool {
	return xy.IsPointInRing(geom.XY, geom.Coord{lon, lat}, s.flat)
}

// SiteIndex answers "which sites contain this position" over a polygon table.
type SiteIndex struct {
	rt *rtreego.Rtree
}

func NewSiteIndex(t Table) (*SiteIndex, error) {
	objs := make([]rtreego.Spatial, 0, len(t))
	for _, k := range t.Keys() {
		s, err := newSite(k, t[k])
		if err != nil {
			return nil, err
		}
		objs = append(objs, s)
	}
	return &SiteIndex{rt: rtreego.NewTree(2, 25, 50, objs...)}, nil
}

func newSite(key string, ring Ring) (*site, error) {
	if len(ring) < 3 {
		return nil, fmt.Errorf("site %s: ring has %d vertices", key, len(ring))
	}
	xmin, ymin := ring[0].Lon, ring[0].Lat
	xmax, ymax := xmin, ymin
	flat := make([]float64, 0, 2*len(ring))
	for _, p := range ring {
		xmin, xmax = min(xmin, p.Lon), max(xmax, p.Lon)
		ymin, ymax = min(ymin, p.Lat), max(ymax, p.Lat)
		flat = append(flat, p.Lon, p.Lat)
	}
	r, err := rtreego.NewRect(rtreego.Point{xmin, ymin}, []float64{xmax - xmin, ymax - ymin})
	if err != nil {
		return nil, fmt.Errorf("site %s: %w", key, err)
	}
	return &site{key: key, flat: flat, bounds: r}, nil
}

// Len returns the number of indexed sites.
func (i *SiteIndex) Len() int {
	return i.rt.Size()
}

// Locate returns the keys, sorted, of every site whose ring contains the point.
// Points on a boundary count as inside.
func (i *SiteIndex) Locate(lon, lat float64) []string {
	var keys []string
	for _, obj := range i.rt.SearchIntersect(rtreego.Point{lon, lat}.ToRect(pointTolerance)) {
		s := obj.(*site)
		if s.Contains(lon, lat) {
			keys = append(keys, s.key)
		}
	}
	sort.Strings(keys)
	return keys
}
