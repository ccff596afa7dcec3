package nmealog

import (
	"encoding/xml"
	"io"
	"os"
	"time"

	"github.com/twpayne/go-gpx"
)

const gpxCreator = "survey-prep"

// GPX fix types by GGA quality indicator. Quality 1 does not say whether the
// fix is 2D or 3D, so it is left unset.
var gpxFixTypes = map[int]string{
	0: "none",
	2: "dgps",
	3: "pps",
}

// EncodeGPX writes the fixes as a single-segment track. When date is
// non-zero each point is timestamped with the fix time on that date.
func EncodeGPX(w io.Writer, name string, fixes []Fix, date time.Time) error {
	seg := &gpx.TrkSegType{}
	for _, f := range fixes {
		pt := &gpx.WptType{
			Lat: f.Lat,
			Lon: f.Lon,
			Ele: f.AltitudeM,
			Fix: gpxFixTypes[f.Quality],
		}
		if !date.IsZero() {
			if ts, err := f.Timestamp(date); err == nil {
				pt.Time = ts
			}
		}
		seg.TrkPt = append(seg.TrkPt, pt)
	}
	g := &gpx.GPX{
		Version: "1.1",
		Creator: gpxCreator,
		Trk: []*gpx.TrkType{{
			Name:   name,
			TrkSeg: []*gpx.TrkSegType{seg},
		}},
	}
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	return g.WriteIndent(w, "", "  ")
}

func WriteGPX(filename, name string, fixes []Fix, date time.Time) error {
	wc, err := os.OpenFile(filename, os.O_CREATE|os.O_TRUNC|os.O_RDWR, 0644)
	if err != nil {
		return err
	}
	if err := EncodeGPX(wc, name, fixes, date); err != nil {
		wc.Close()
		return err
	}
	return wc.Close()
}
