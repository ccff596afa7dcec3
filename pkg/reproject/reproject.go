package reproject

import (
	"errors"
	"fmt"
	"sort"
)

const (
	EPSGWGS84          = 4326
	EPSGETRS89         = 4258
	EPSGBritishNatGrid = 27700
	EPSGVermontNAD83   = 32145
)

// Transformer converts projected (x, y) coordinates to longitude/latitude
// and back. Coordinates are always taken and returned in (x, y) order,
// whatever axis order the authority defines for the CRS.
type Transformer interface {
	Transform(x, y float64) (lon, lat float64, err error)
	Inverse(lon, lat float64) (x, y float64, err error)
	Close() error
}

type pair struct {
	from, to int
}

// Registry hands out one Transformer per (from, to) pair, constructing it
// on first use.
type Registry struct {
	transformers map[pair]Transformer
	newPROJ      func(from, to int) (Transformer, error)
}

func NewRegistry() *Registry {
	return &Registry{
		transformers: make(map[pair]Transformer),
		newPROJ:      NewPROJTransformer,
	}
}

func (r *Registry) Get(from, to int) (Transformer, error) {
	k := pair{from, to}
	if t, ok := r.transformers[k]; ok {
		return t, nil
	}
	var (
		t   Transformer
		err error
	)
	if from == EPSGBritishNatGrid && (to == EPSGWGS84 || to == EPSGETRS89) {
		t, err = NewOSGBTransformer()
	} else {
		t, err = r.newPROJ(from, to)
	}
	if err != nil {
		return nil, fmt.Errorf("error constructing transformer EPSG:%d -> EPSG:%d: %w", from, to, err)
	}
	r.transformers[k] = t
	return t, nil
}

// Reproject maps (easting, northing) in the from CRS to (lon, lat) in the to CRS.
func (r *Registry) Reproject(easting, northing float64, from, to int) (float64, float64, error) {
	t, err := r.Get(from, to)
	if err != nil {
		return 0, 0, err
	}
	return t.Transform(easting, northing)
}

// Close releases every cached transformer.
func (r *Registry) Close() error {
	keys := make([]pair, 0, len(r.transformers))
	for k := range r.transformers {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].from != keys[j].from {
			return keys[i].from < keys[j].from
		}
		return keys[i].to < keys[j].to
	})
	var errs []error
	for _, k := range keys {
		if err := r.transformers[k].Close(); err != nil {
			errs = append(errs, err)
		}
		delete(r.transformers, k)
	}
	return errors.Join(errs...)
}
