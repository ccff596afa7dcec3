package nmealog

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strconv"
)

const DefaultOutput = "gps_data.csv"

var Header = []string{"UTC_time", "Lat", "Lon", "position_fix", "altitude_m"}

// WriteCSV replaces filename with the fixes, header first.
func WriteCSV(filename string, fixes []Fix) error {
	tempFile := filename + ".tmp"
	f, err := os.Create(tempFile)
	if err != nil {
		return fmt.Errorf("error creating output file %s: %w", tempFile, err)
	}
	if err := EncodeCSV(f, fixes); err != nil {
		f.Close()
		os.Remove(tempFile)
		return fmt.Errorf("error writing %s: %w", filename, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tempFile)
		return fmt.Errorf("error closing file %s: %w", tempFile, err)
	}
	return os.Rename(tempFile, filename)
}

func EncodeCSV(w io.Writer, fixes []Fix) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return err
	}
	for _, f := range fixes {
		if err := cw.Write(Row(f)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// Row formats a fix as the columns named by Header.
func Row(f Fix) []string {
	row := make([]string, 5)
	row[0] = f.UTCTime
	row[1] = strconv.FormatFloat(f.Lat, 'f', -1, 64)
	row[2] = strconv.FormatFloat(f.Lon, 'f', -1, 64)
	row[3] = strconv.Itoa(f.Quality)
	row[4] = strconv.FormatFloat(f.AltitudeM, 'f', -1, 64)
	return row
}

var ErrHeader = errors.New("unexpected header")

// Scanner reads back a file written by WriteCSV.
type Scanner struct {
	csvReader *csv.Reader
	nextFix   Fix
	err       error
}

func NewScanner(r io.Reader) (*Scanner, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(Header)
	header, err := cr.Read()
	if err != nil {
		return nil, err
	}
	if !slices.Equal(header, Header) {
		return nil, fmt.Errorf("%w: %v", ErrHeader, header)
	}
	return &Scanner{csvReader: cr}, nil
}

func (s *Scanner) Scan() bool {
	rawRecord, err := s.csvReader.Read()
	if err != nil {
		if !errors.Is(err, io.EOF) {
			s.err = err
		}
		return false
	}
	s.nextFix, err = parseRow(rawRecord)
	if err != nil {
		line, _ := s.csvReader.FieldPos(0)
		s.err = fmt.Errorf("line %d: %w", line, err)
		return false
	}
	return true
}

func (s *Scanner) Err() error {
	return s.err
}

func (s *Scanner) Fix() Fix {
	return s.nextFix
}

func parseRow(xs []string) (Fix, error) {
	fix := Fix{UTCTime: xs[0]}
	var err error
	if fix.Lat, err = parseNumber(Header[1], xs[1]); err != nil {
		return Fix{}, err
	}
	if fix.Lon, err = parseNumber(Header[2], xs[2]); err != nil {
		return Fix{}, err
	}
	if fix.Quality, err = strconv.Atoi(xs[3]); err != nil {
		return Fix{}, fmt.Errorf("%w: %s %q", ErrInvalidValue, Header[3], xs[3])
	}
	if fix.AltitudeM, err = parseNumber(Header[4], xs[4]); err != nil {
		return Fix{}, err
	}
	return fix, nil
}

// ReadCSV reads every fix from filename.
func ReadCSV(filename string) ([]Fix, error) {
	r, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("error opening %s for reading: %w", filename, err)
	}
	defer r.Close()
	s, err := NewScanner(r)
	if err != nil {
		return nil, fmt.Errorf("error reading %s: %w", filename, err)
	}
	var fixes []Fix
	for s.Scan() {
		fixes = append(fixes, s.Fix())
	}
	if err := s.Err(); err != nil {
		return nil, fmt.Errorf("error parsing %s: %w", filename, err)
	}
	return fixes, nil
}
