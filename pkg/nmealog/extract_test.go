package nmealog

import (
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleGGA = "$GPGGA,123519,4807.038,N,01131.000,E,1,08,0.9,545.4,M,46.9,M,,"

func withChecksum(payload string) string {
	ck := byte(0)
	for i := 0; i < len(payload); i++ {
		ck ^= payload[i]
	}
	return fmt.Sprintf("$%s*%02X", payload, ck)
}

func TestExtractor_SampleSentence(t *testing.T) {
	fixes, malformed, err := NewExtractor("", false).Extract(strings.NewReader(sampleGGA+"\r\n"), "sample")
	require.NoError(t, err)
	assert.Empty(t, malformed)
	require.Len(t, fixes, 1)
	assert.Equal(t, RawFix{
		Time:     "123519",
		Lat:      "4807.038",
		LatHemi:  "N",
		Lon:      "01131.000",
		LonHemi:  "E",
		Quality:  "1",
		Altitude: "545.4",
	}, fixes[0])
}

func TestExtractor_IgnoresOtherSentences(t *testing.T) {
	log := strings.Join([]string{
		"$GPRMC,123519,A,4807.038,N,01131.000,E,022.4,084.4,230394,003.1,W",
		"$GNGGA,123519,4807.038,N,01131.000,E,1,08,0.9,545.4,M,46.9,M,,",
		"$GPGGAX,123519,4807.038,N,01131.000,E,1,08,0.9,545.4,M,46.9,M,,",
		" ",
		"ADCP ensemble 17",
		"",
	}, "\n")
	fixes, malformed, err := NewExtractor("$GPGGA", false).Extract(strings.NewReader(log), "other")
	require.NoError(t, err)
	assert.Empty(t, fixes)
	assert.Empty(t, malformed)
}

func TestExtractor_CustomSentence(t *testing.T) {
	fixes, _, err := NewExtractor("$GNGGA", false).Extract(
		strings.NewReader("$GNGGA,123519,4807.038,N,01131.000,E,1,08,0.9,545.4,M,46.9,M,,\n"+sampleGGA), "gn")
	require.NoError(t, err)
	assert.Len(t, fixes, 1)
}

func TestExtractor_ShortSentence(t *testing.T) {
	log := sampleGGA + "\n$GPGGA,123520,4807.038,N\n" + sampleGGA + "\n"
	fixes, malformed, err := NewExtractor("", false).Extract(strings.NewReader(log), "short.txt")
	require.NoError(t, err)
	assert.Len(t, fixes, 2)
	require.Len(t, malformed, 1)
	assert.Equal(t, "short.txt", malformed[0].File)
	assert.Equal(t, 2, malformed[0].Line)
	assert.ErrorIs(t, malformed[0], ErrShortSentence)
	assert.Equal(t, "short.txt:2: sentence has too few fields: got 4, want at least 10", malformed[0].Error())
}

func TestExtractor_Checksum(t *testing.T) {
	good := withChecksum(strings.TrimPrefix(sampleGGA, "$"))
	bad := good[:len(good)-2] + "00"
	log := strings.Join([]string{good, bad, sampleGGA}, "\n")

	fixes, malformed, err := NewExtractor("", true).Extract(strings.NewReader(log), "ck")
	require.NoError(t, err)
	assert.Len(t, fixes, 2)
	require.Len(t, malformed, 1)
	assert.Equal(t, 2, malformed[0].Line)
	assert.ErrorIs(t, malformed[0], ErrChecksum)

	fixes, malformed, err = NewExtractor("", false).Extract(strings.NewReader(log), "ck")
	require.NoError(t, err)
	assert.Len(t, fixes, 3)
	assert.Empty(t, malformed)
}

func TestExtractor_MissingFile(t *testing.T) {
	_, _, err := NewExtractor("", false).ExtractFile(filepath.Join(t.TempDir(), "missing.txt"))
	require.Error(t, err)
}
