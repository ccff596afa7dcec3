package nmealog

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twpayne/go-gpx"
)

func TestEncodeGPX(t *testing.T) {
	fixes := []Fix{
		{UTCTime: "120000", Lat: 44.1, Lon: -72.3, Quality: 2, AltitudeM: 100},
		{UTCTime: "120001.5", Lat: 44.2, Lon: -72.4, Quality: 1, AltitudeM: 101},
	}
	date := time.Date(2023, 11, 1, 0, 0, 0, 0, time.UTC)

	var buf bytes.Buffer
	require.NoError(t, EncodeGPX(&buf, "BRK survey", fixes, date))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("<?xml")))

	g, err := gpx.Read(&buf)
	require.NoError(t, err)
	require.Len(t, g.Trk, 1)
	assert.Equal(t, "BRK survey", g.Trk[0].Name)
	require.Len(t, g.Trk[0].TrkSeg, 1)
	pts := g.Trk[0].TrkSeg[0].TrkPt
	require.Len(t, pts, 2)
	assert.InDelta(t, 44.1, pts[0].Lat, 1e-9)
	assert.InDelta(t, -72.3, pts[0].Lon, 1e-9)
	assert.InDelta(t, 100, pts[0].Ele, 1e-9)
	assert.Equal(t, "dgps", pts[0].Fix)
	assert.True(t, time.Date(2023, 11, 1, 12, 0, 0, 0, time.UTC).Equal(pts[0].Time))
	assert.True(t, time.Date(2023, 11, 1, 12, 0, 1, 500000000, time.UTC).Equal(pts[1].Time))
}
