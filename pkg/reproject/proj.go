package reproject

import (
	"fmt"

	"github.com/twpayne/go-proj/v10"
)

type projTransformer struct {
	pj *proj.PJ
}

// NewPROJTransformer builds a PROJ pipeline between two EPSG codes. The
// pipeline is normalised for visualisation so input and output are
// always in (x, y) / (lon, lat) order.
func NewPROJTransformer(from, to int) (Transformer, error) {
	pj, err := proj.NewCRSToCRS(fmt.Sprintf("EPSG:%d", from), fmt.Sprintf("EPSG:%d", to), nil)
	if err != nil {
		return nil, err
	}
	normalised, err := pj.NormalizeForVisualization()
	pj.Destroy()
	if err != nil {
		return nil, err
	}
	return &projTransformer{pj: normalised}, nil
}

func (t *projTransformer) Transform(x, y float64) (float64, float64, error) {
	c, err := t.pj.Forward(proj.NewCoord(x, y, 0, 0))
	if err != nil {
		return 0, 0, fmt.Errorf("error transforming (%f, %f): %w", x, y, err)
	}
	return c[0], c[1], nil
}

func (t *projTransformer) Inverse(lon, lat float64) (float64, float64, error) {
	c, err := t.pj.Inverse(proj.NewCoord(lon, lat, 0, 0))
	if err != nil {
		return 0, 0, fmt.Errorf("error inverse transforming (%f, %f): %w", lon, lat, err)
	}
	return c[0], c[1], nil
}

func (t *projTransformer) Close() error {
	t.pj.Destroy()
	return nil
}
