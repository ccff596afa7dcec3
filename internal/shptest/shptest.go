// Package shptest writes small ESRI shapefiles for tests.
package shptest

import (
	"bytes"
	"encoding/binary"
	"math"
	"os"
	"path/filepath"
	"testing"
)

// Shape types understood by Write.
const (
	Point    int32 = 1
	PolyLine int32 = 3
	Polygon  int32 = 5
	PolygonZ int32 = 15
)

// Shape is one record: a list of parts, each a list of (x, y) vertices.
// Point records use a single one-vertex part.
type Shape [][][2]float64

// Elevation is the Z value given to every vertex of a PolygonZ record.
const Elevation = 123.5

func bbox(shapes []Shape) [4]float64 {
	b := [4]float64{math.Inf(1), math.Inf(1), math.Inf(-1), math.Inf(-1)}
	for _, s := range shapes {
		for _, part := range s {
			for _, p := range part {
				b[0], b[1] = math.Min(b[0], p[0]), math.Min(b[1], p[1])
				b[2], b[3] = math.Max(b[2], p[0]), math.Max(b[3], p[1])
			}
		}
	}
	return b
}

func encodeContent(shapeType int32, s Shape) []byte {
	var buf bytes.Buffer
	le := func(v interface{}) { binary.Write(&buf, binary.LittleEndian, v) }
	le(shapeType)
	if shapeType == Point {
		le(s[0][0][0])
		le(s[0][0][1])
		return buf.Bytes()
	}
	le(bbox([]Shape{s}))
	npoints := 0
	for _, part := range s {
		npoints += len(part)
	}
	le(int32(len(s)))
	le(int32(npoints))
	offset := int32(0)
	for _, part := range s {
		le(offset)
		offset += int32(len(part))
	}
	for _, part := range s {
		for _, p := range part {
			le(p)
		}
	}
	if shapeType == PolygonZ {
		// Z range and values, then M range and values.
		le([2]float64{Elevation, Elevation})
		for i := 0; i < npoints; i++ {
			le(Elevation)
		}
		le([2]float64{0, 0})
		le(make([]float64, npoints))
	}
	return buf.Bytes()
}

func fileHeader(shapeType int32, lengthWords int32, b [4]float64) []byte {
	var buf bytes.Buffer
	binary.Write(&buf, binary.BigEndian, int32(9994))
	binary.Write(&buf, binary.BigEndian, [5]int32{})
	binary.Write(&buf, binary.BigEndian, lengthWords)
	binary.Write(&buf, binary.LittleEndian, int32(1000))
	binary.Write(&buf, binary.LittleEndian, shapeType)
	binary.Write(&buf, binary.LittleEndian, b)
	binary.Write(&buf, binary.LittleEndian, [4]float64{})
	return buf.Bytes()
}

// Write writes basename.shp, .shx and .dbf to dir and returns the .shp path.
func Write(t testing.TB, dir, basename string, shapeType int32, shapes []Shape) string {
	t.Helper()
	var records, index bytes.Buffer
	offsetWords := int32(50)
	for i, s := range shapes {
		content := encodeContent(shapeType, s)
		contentWords := int32(len(content) / 2)
		binary.Write(&records, binary.BigEndian, int32(i+1))
		binary.Write(&records, binary.BigEndian, contentWords)
		records.Write(content)
		binary.Write(&index, binary.BigEndian, offsetWords)
		binary.Write(&index, binary.BigEndian, contentWords)
		offsetWords += 4 + contentWords
	}
	b := bbox(shapes)
	if len(shapes) == 0 {
		b = [4]float64{}
	}
	shp := append(fileHeader(shapeType, int32(50+records.Len()/2), b), records.Bytes()...)
	shx := append(fileHeader(shapeType, int32(50+index.Len()/2), b), index.Bytes()...)

	base := filepath.Join(dir, basename)
	for ext, data := range map[string][]byte{".shp": shp, ".shx": shx, ".dbf": encodeDBF(len(shapes))} {
		if err := os.WriteFile(base+ext, data, 0o644); err != nil {
			t.Fatalf("WriteFile() error: %v", err)
		}
	}
	return base + ".shp"
}

// encodeDBF writes a dBASE III table with a single 10-character NAME field.
func encodeDBF(n int) []byte {
	const fieldLen = 10
	var buf bytes.Buffer
	buf.Write([]byte{0x03, 124, 6, 7})
	binary.Write(&buf, binary.LittleEndian, uint32(n))
	binary.Write(&buf, binary.LittleEndian, uint16(32+32+1))
	binary.Write(&buf, binary.LittleEndian, uint16(1+fieldLen))
	buf.Write(make([]byte, 20))

	name := make([]byte, 11)
	copy(name, "NAME")
	buf.Write(name)
	buf.WriteByte('C')
	buf.Write(make([]byte, 4))
	buf.WriteByte(fieldLen)
	buf.WriteByte(0)
	buf.Write(make([]byte, 14))
	buf.WriteByte(0x0d)

	for i := 0; i < n; i++ {
		buf.WriteByte(' ')
		buf.WriteString("aoi       ")
	}
	buf.WriteByte(0x1a)
	return buf.Bytes()
}

// Square returns a closed, clockwise ring with its lower-left corner at (x, y).
func Square(x, y, size float64) [][2]float64 {
	return [][2]float64{
		{x, y},
		{x, y + size},
		{x + size, y + size},
		{x + size, y},
		{x, y},
	}
}

// Reverse returns ring with its vertex order reversed. A reversed Square is
// anticlockwise, which shapefiles use for holes.
func Reverse(ring [][2]float64) [][2]float64 {
	out := make([][2]float64, len(ring))
	for i, p := range ring {
		out[len(ring)-1-i] = p
	}
	return out
}
