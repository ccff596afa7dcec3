package nmealog

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/adrianmo/go-nmea"
)

// Conversion selects how NMEA ddmm.mmmm positions become decimal degrees.
type Conversion string

const (
	// Legacy divides the raw value by 100 and forces longitude negative.
	// This is what existing gps_data.csv consumers were built against. It
	// is not a true degrees-minutes conversion: 4807.038 becomes 48.07038
	// rather than 48.1173, and hemisphere letters are ignored.
	Legacy Conversion = "legacy"
	// Geodetic computes degrees + minutes/60 and signs by hemisphere.
	Geodetic Conversion = "geodetic"
)

var ErrInvalidValue = errors.New("invalid value")

func ParseConversion(s string) (Conversion, error) {
	switch c := Conversion(s); c {
	case Legacy, Geodetic:
		return c, nil
	case "":
		return Legacy, nil
	default:
		return "", fmt.Errorf("invalid conversion %q (want legacy or geodetic)", s)
	}
}

// Fix is a normalised GPS fix, one row of gps_data.csv.
type Fix struct {
	UTCTime   string
	Lat       float64
	Lon       float64
	Quality   int
	AltitudeM float64
}

// Timestamp places the fix's HHMMSS.ss time of day on the given UTC date.
func (f Fix) Timestamp(date time.Time) (time.Time, error) {
	t, err := time.Parse("150405", f.UTCTime)
	if err != nil {
		return time.Time{}, err
	}
	y, m, d := date.Date()
	return time.Date(y, m, d, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.UTC), nil
}

// Normalize converts every field of raw to its numeric form. Any field that
// does not parse makes the whole row invalid.
func (c Conversion) Normalize(raw RawFix) (Fix, error) {
	if _, err := parseNumber("UTC_time", raw.Time); err != nil {
		return Fix{}, err
	}
	quality, err := strconv.Atoi(strings.TrimSpace(raw.Quality))
	if err != nil {
		return Fix{}, fmt.Errorf("%w: position_fix %q", ErrInvalidValue, raw.Quality)
	}
	alt, err := parseNumber("altitude_m", raw.Altitude)
	if err != nil {
		return Fix{}, err
	}
	fix := Fix{UTCTime: strings.TrimSpace(raw.Time), Quality: quality, AltitudeM: alt}

	switch c {
	case Geodetic:
		if fix.Lat, err = parseGeodetic("Lat", raw.Lat, raw.LatHemi); err != nil {
			return Fix{}, err
		}
		if fix.Lon, err = parseGeodetic("Lon", raw.Lon, raw.LonHemi); err != nil {
			return Fix{}, err
		}
	default:
		lat, err := parseNumber("Lat", raw.Lat)
		if err != nil {
			return Fix{}, err
		}
		lon, err := parseNumber("Lon", raw.Lon)
		if err != nil {
			return Fix{}, err
		}
		fix.Lat = lat / 100
		fix.Lon = -(lon / 100)
	}
	return fix, nil
}

func parseNumber(column, s string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(v) {
		return 0, fmt.Errorf("%w: %s %q", ErrInvalidValue, column, s)
	}
	return v, nil
}

func parseGeodetic(column, value, hemi string) (float64, error) {
	v, err := nmea.ParseGPS(strings.TrimSpace(value) + " " + strings.ToUpper(strings.TrimSpace(hemi)))
	if err != nil {
		return 0, fmt.Errorf("%w: %s %q %q: %v", ErrInvalidValue, column, value, hemi, err)
	}
	return v, nil
}
