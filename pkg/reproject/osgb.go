package reproject

import (
	"fmt"

	"github.com/fofanov/go-osgb"
)

// osgbTransformer converts British National Grid eastings/northings to
// ETRS89 using OSTN15. ETRS89 is treated as WGS84, the two agree to within
// a metre over Great Britain.
type osgbTransformer struct {
	trans osgb.CoordinateTransformer
}

func NewOSGBTransformer() (Transformer, error) {
	trans, err := osgb.NewOSTN15Transformer()
	if err != nil {
		return nil, err
	}
	return &osgbTransformer{trans: trans}, nil
}

func (t *osgbTransformer) Transform(easting, northing float64) (float64, float64, error) {
	ngCoord := osgb.NewOSGB36Coord(easting, northing, 0)
	gpsCoord, err := t.trans.FromNationalGrid(ngCoord)
	if err != nil {
		return 0, 0, fmt.Errorf("error converting %v from National Grid: %w", ngCoord, err)
	}
	return gpsCoord.Lon, gpsCoord.Lat, nil
}

func (t *osgbTransformer) Inverse(lon, lat float64) (float64, float64, error) {
	gpsCoord := osgb.NewETRS89Coord(lon, lat, 0)
	ngCoord, err := t.trans.ToNationalGrid(gpsCoord)
	if err != nil {
		return 0, 0, fmt.Errorf("error converting %v to National Grid: %w", gpsCoord, err)
	}
	return ngCoord.Easting, ngCoord.Northing, nil
}

func (t *osgbTransformer) Close() error {
	return nil
}
