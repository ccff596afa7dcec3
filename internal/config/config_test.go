package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempConfig(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cfg.yaml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestLoad_EmptyPathGivesDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.Equal(t, 32145, cfg.Polygons.FromEPSG)
	assert.Equal(t, 4326, cfg.Polygons.ToEPSG)
	assert.Equal(t, "keep-last", cfg.Polygons.Duplicates)
	assert.Equal(t, "data.zip", cfg.GPS.Archive)
	assert.Equal(t, "data", cfg.GPS.DataDir)
	assert.Equal(t, "$GPGGA", cfg.GPS.Sentence)
	assert.Equal(t, "gps_data.csv", cfg.GPS.Output)
	assert.Equal(t, "legacy", cfg.GPS.Conversion)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
}

func TestLoad_OverridesAndDefaults(t *testing.T) {
	path := writeTempConfig(t, `
log:
  format: json
polygons:
  dir: shapes
  from_epsg: 27700
gps:
  sentence: $GNGGA
  conversion: geodetic
  survey_date: 2023-11-01
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, "shapes", cfg.Polygons.Dir)
	assert.Equal(t, 27700, cfg.Polygons.FromEPSG)
	assert.Equal(t, 4326, cfg.Polygons.ToEPSG)
	assert.Equal(t, "$GNGGA", cfg.GPS.Sentence)
	assert.Equal(t, "geodetic", cfg.GPS.Conversion)
	assert.Equal(t, "data.zip", cfg.GPS.Archive)

	date, err := cfg.GPS.Date()
	require.NoError(t, err)
	assert.Equal(t, time.Date(2023, 11, 1, 0, 0, 0, 0, time.UTC), date)
}

func TestLoad_Validation(t *testing.T) {
	cases := []struct {
		name     string
		contents string
		want     string
	}{
		{"log format", "log: {format: xml}\n", "log.format must be console or json"},
		{"duplicates", "polygons: {duplicates: first}\n", `polygons.duplicates is invalid: invalid duplicate policy "first" (want keep-last, reject or suffix)`},
		{"conversion", "gps: {conversion: minutes}\n", `gps.conversion is invalid: invalid conversion "minutes" (want legacy or geodetic)`},
		{"survey date", "gps: {survey_date: 01/11/2023}\n", "gps.survey_date must be YYYY-MM-DD"},
		{"epsg", "polygons: {from_epsg: -1}\n", "polygons epsg codes must be positive"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Load(writeTempConfig(t, tc.contents))
			assert.EqualError(t, err, tc.want)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestGPSConfig_Path(t *testing.T) {
	g := GPSConfig{WorkDir: filepath.Join("survey", "run1")}
	assert.Equal(t, filepath.Join("survey", "run1", "gps_data.csv"), g.Path("gps_data.csv"))
	abs := filepath.Join(t.TempDir(), "out.csv")
	assert.Equal(t, abs, g.Path(abs))
	assert.Equal(t, "gps_data.csv", GPSConfig{WorkDir: "."}.Path("gps_data.csv"))
}
