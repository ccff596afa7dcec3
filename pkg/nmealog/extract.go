package nmealog

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/adrianmo/go-nmea"
)

const DefaultSentence = "$GPGGA"

// GGA field positions
const (
	ggaTime     = 1
	ggaLat      = 2
	ggaLatHemi  = 3
	ggaLon      = 4
	ggaLonHemi  = 5
	ggaQuality  = 6
	ggaAltitude = 9

	ggaMinFields = ggaAltitude + 1
)

const maxLineLength = 1024 * 1024

var (
	ErrShortSentence = errors.New("sentence has too few fields")
	ErrChecksum      = errors.New("checksum mismatch")
)

// ParseError reports a matching sentence that could not be split into a fix.
type ParseError struct {
	File string
	Line int
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s:%d: %v", e.File, e.Line, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// RawFix holds the GGA fields of one sentence as they appeared in the log.
type RawFix struct {
	Time     string
	Lat      string
	LatHemi  string
	Lon      string
	LonHemi  string
	Quality  string
	Altitude string
}

// Extractor selects fix sentences from NMEA logs.
type Extractor struct {
	sentence       string
	verifyChecksum bool
}

// NewExtractor matches lines whose first comma-separated field equals
// sentence. With verifyChecksum set, lines carrying a *hh suffix must have a
// correct checksum; lines without one are accepted either way.
func NewExtractor(sentence string, verifyChecksum bool) *Extractor {
	if sentence == "" {
		sentence = DefaultSentence
	}
	return &Extractor{sentence: sentence, verifyChecksum: verifyChecksum}
}

func (x *Extractor) ExtractFile(filename string) ([]RawFix, []*ParseError, error) {
	r, err := os.Open(filename)
	if err != nil {
		return nil, nil, fmt.Errorf("error opening %s for reading: %w", filename, err)
	}
	defer r.Close()
	return x.Extract(r, filename)
}

// Extract reads r line by line. Malformed matching lines are returned
// separately from the fixes; err is reserved for read failures.
func (x *Extractor) Extract(r io.Reader, name string) (fixes []RawFix, malformed []*ParseError, err error) {
	s := bufio.NewScanner(r)
	s.Buffer(make([]byte, 0, 64*1024), maxLineLength)
	lineNo := 0
	for s.Scan() {
		lineNo++
		line := strings.TrimSpace(s.Text())
		fields := strings.Split(line, ",")
		if fields[0] != x.sentence {
			continue
		}
		if x.verifyChecksum {
			if err := verifyChecksum(line); err != nil {
				malformed = append(malformed, &ParseError{File: name, Line: lineNo, Err: err})
				continue
			}
		}
		if len(fields) < ggaMinFields {
			malformed = append(malformed, &ParseError{
				File: name,
				Line: lineNo,
				Err:  fmt.Errorf("%w: got %d, want at least %d", ErrShortSentence, len(fields), ggaMinFields),
			})
			continue
		}
		fixes = append(fixes, RawFix{
			Time:     fields[ggaTime],
			Lat:      fields[ggaLat],
			LatHemi:  fields[ggaLatHemi],
			Lon:      fields[ggaLon],
			LonHemi:  fields[ggaLonHemi],
			Quality:  fields[ggaQuality],
			Altitude: fields[ggaAltitude],
		})
	}
	if err := s.Err(); err != nil {
		return nil, nil, fmt.Errorf("error reading %s: %w", name, err)
	}
	return fixes, malformed, nil
}

func verifyChecksum(line string) error {
	star := strings.LastIndexByte(line, '*')
	if star == -1 {
		return nil
	}
	want := strings.ToUpper(strings.TrimSpace(line[star+1:]))
	got := nmea.Checksum(strings.TrimLeft(line[:star], "$!"))
	if want != got {
		return fmt.Errorf("%w: sentence says %s, computed %s", ErrChecksum, want, got)
	}
	return nil
}
