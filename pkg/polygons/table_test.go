package polygons

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDuplicatePolicy(t *testing.T) {
	for _, tc := range []struct {
		in   string
		want DuplicatePolicy
	}{
		{"", KeepLast},
		{"keep-last", KeepLast},
		{"reject", Reject},
		{"suffix", Suffix},
	} {
		got, err := ParseDuplicatePolicy(tc.in)
		require.NoError(t, err, tc.in)
		assert.Equal(t, tc.want, got)
	}
	_, err := ParseDuplicatePolicy("first")
	assert.EqualError(t, err, `invalid duplicate policy "first" (want keep-last, reject or suffix)`)
}

func TestTable_SuffixSkipsTakenKeys(t *testing.T) {
	table := Table{"ABC": Ring{{0, 0}}, "ABC_2": Ring{{1, 1}}}
	stored, replaced, err := table.put("ABC", Ring{{2, 2}}, Suffix)
	require.NoError(t, err)
	assert.False(t, replaced)
	assert.Equal(t, "ABC_3", stored)
}

func TestEncodeJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, EncodeJSON(&buf, Table{"BRK": Ring{{-72.5, 44.1}, {-72.4, 44.2}}}))

	var decoded map[string][][2]float64
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, map[string][][2]float64{"BRK": {{-72.5, 44.1}, {-72.4, 44.2}}}, decoded)

	var back map[string]Ring
	require.NoError(t, json.Unmarshal(buf.Bytes(), &back))
	assert.Equal(t, LonLat{-72.4, 44.2}, back["BRK"][1])
}

func TestEncodeGeoJSON(t *testing.T) {
	table := Table{
		"BBB": Ring{{0, 0}, {0, 1}, {1, 1}, {1, 0}, {0, 0}},
		"AAA": Ring{{2, 2}, {2, 3}, {3, 3}, {3, 2}, {2, 2}},
	}
	var buf bytes.Buffer
	require.NoError(t, EncodeGeoJSON(&buf, table))

	var fc struct {
		Type     string `json:"type"`
		Features []struct {
			ID       string `json:"id"`
			Geometry struct {
				Type        string         `json:"type"`
				Coordinates [][][2]float64 `json:"coordinates"`
			} `json:"geometry"`
		} `json:"features"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &fc))
	assert.Equal(t, "FeatureCollection", fc.Type)
	require.Len(t, fc.Features, 2)
	assert.Equal(t, "AAA", fc.Features[0].ID)
	assert.Equal(t, "Polygon", fc.Features[0].Geometry.Type)
	assert.Equal(t, [2]float64{2, 2}, fc.Features[0].Geometry.Coordinates[0][0])
	assert.Len(t, fc.Features[1].Geometry.Coordinates[0], 5)
}
