package polygons

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
)

// LonLat is a single vertex in geographic coordinates. It marshals to a
// GeoJSON-style [lon, lat] pair.
type LonLat struct {
	Lon float64
	Lat float64
}

func (p LonLat) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]float64{p.Lon, p.Lat})
}

func (p *LonLat) UnmarshalJSON(data []byte) error {
	var xs [2]float64
	if err := json.Unmarshal(data, &xs); err != nil {
		return err
	}
	p.Lon, p.Lat = xs[0], xs[1]
	return nil
}

// Ring is the exterior boundary of a polygon, vertex order preserved. Rings
// read from shapefiles are closed: the first and last vertex coincide.
type Ring []LonLat

// Table maps a site key to the exterior ring of that site's polygon.
type Table map[string]Ring

func (t Table) Keys() []string {
	keys := make([]string, 0, len(t))
	for k := range t {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// DuplicatePolicy decides what happens when a second polygon arrives for a
// key already in the table.
type DuplicatePolicy string

const (
	// KeepLast overwrites the earlier polygon.
	KeepLast DuplicatePolicy = "keep-last"
	// Reject fails the read with ErrDuplicateKey.
	Reject DuplicatePolicy = "reject"
	// Suffix stores later polygons under key_2, key_3, ...
	Suffix DuplicatePolicy = "suffix"
)

var ErrDuplicateKey = errors.New("duplicate site key")

func ParseDuplicatePolicy(s string) (DuplicatePolicy, error) {
	switch p := DuplicatePolicy(s); p {
	case KeepLast, Reject, Suffix:
		return p, nil
	case "":
		return KeepLast, nil
	default:
		return "", fmt.Errorf("invalid duplicate policy %q (want keep-last, reject or suffix)", s)
	}
}

// put stores ring under key according to policy and returns the key it was
// actually stored under. replaced reports whether an earlier entry was lost.
func (t Table) put(key string, ring Ring, policy DuplicatePolicy) (stored string, replaced bool, err error) {
	if _, exists := t[key]; !exists {
		t[key] = ring
		return key, false, nil
	}
	switch policy {
	case Reject:
		return "", false, fmt.Errorf("%w: %s", ErrDuplicateKey, key)
	case Suffix:
		for n := 2; ; n++ {
			k := key + "_" + strconv.Itoa(n)
			if _, exists := t[k]; !exists {
				t[k] = ring
				return k, false, nil
			}
		}
	default:
		t[key] = ring
		return key, true, nil
	}
}
