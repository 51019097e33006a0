// Package elevation reads SRTM-style binary elevation tiles and interpolates
// elevations across them.
package elevation

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	"hexcarve/pkg/geometry"
)

// NoData is the sentinel elevation meaning "unknown".
const NoData = -32768

// DefaultGridSize is the grid dimension of 1-arc-second SRTM tiles.
const DefaultGridSize = 3601

// ErrFormat is returned when a tile's byte length does not describe a square
// int16 grid.
var ErrFormat = errors.New("elevation: tile byte length is not a square int16 grid")

// ErrNotFound is returned by loaders when no tile exists for an id.
var ErrNotFound = errors.New("elevation: tile not found")

// TileID identifies a 1°×1° tile by the integer degrees of its southwest
// corner.
type TileID struct {
	Lat int
	Lng int
}

// TileIDFor returns the id of the tile containing the given coordinate.
func TileIDFor(lat, lng float64) TileID {
	return TileID{Lat: int(math.Floor(lat)), Lng: int(math.Floor(lng))}
}

// Name returns the conventional tile name: hemisphere letter plus zero-padded
// degree magnitude for both axes, e.g. N47E008 or S01W072.
func (id TileID) Name() string {
	latHemi, lat := "N", id.Lat
	if lat < 0 {
		latHemi, lat = "S", -lat
	}
	lngHemi, lng := "E", id.Lng
	if lng < 0 {
		lngHemi, lng = "W", -lng
	}
	return fmt.Sprintf("%s%02d%s%03d", latHemi, lat, lngHemi, lng)
}

func (id TileID) String() string { return id.Name() }

// Tile is one square elevation raster, immutable once decoded. Rows run
// north to south: row 0 is the tile's northern edge.
type Tile struct {
	ID      TileID
	N       int
	samples []int16
}

// DecodeTile validates and decodes a tile body: N×N big-endian signed 16-bit
// samples, no header. A byte length that is not a square int16 grid is an
// ErrFormat; no partial decode is attempted.
func DecodeTile(id TileID, data []byte) (*Tile, error) {
	if len(data) == 0 || len(data)%2 != 0 {
		return nil, fmt.Errorf("%w: %d bytes", ErrFormat, len(data))
	}
	count := len(data) / 2
	n := int(math.Sqrt(float64(count)))
	if n < 2 || n*n != count {
		return nil, fmt.Errorf("%w: %d bytes", ErrFormat, len(data))
	}
	samples := make([]int16, count)
	for i := range samples {
		samples[i] = int16(binary.BigEndian.Uint16(data[i*2:]))
	}
	return &Tile{ID: id, N: n, samples: samples}, nil
}

// At returns the raw sample at the given row and column. Row 0 is the
// northern edge.
func (t *Tile) At(row, col int) int16 {
	return t.samples[row*t.N+col]
}

// SampleBilinear interpolates the elevation at the given coordinate, which
// must lie within the tile's 1°×1° cell. The fractional position is mapped to
// continuous pixel coordinates with row = (1−latOffset)×(N−1). If some of the
// four surrounding samples are no-data, the remaining valid ones are
// averaged; if all four are no-data, NoData is returned. The result is
// rounded to the nearest integer.
func (t *Tile) SampleBilinear(lat, lng float64) int {
	latOff := lat - float64(t.ID.Lat)
	lngOff := lng - float64(t.ID.Lng)

	row := (1 - latOff) * float64(t.N-1)
	col := lngOff * float64(t.N-1)

	r0 := int(math.Floor(row))
	c0 := int(math.Floor(col))
	if r0 < 0 || c0 < 0 || r0 > t.N-1 || c0 > t.N-1 {
		return NoData
	}
	r1 := r0 + 1
	if r1 > t.N-1 {
		r1 = t.N - 1
	}
	c1 := c0 + 1
	if c1 > t.N-1 {
		c1 = t.N - 1
	}

	v00 := t.At(r0, c0)
	v01 := t.At(r0, c1)
	v10 := t.At(r1, c0)
	v11 := t.At(r1, c1)

	if v00 == NoData || v01 == NoData || v10 == NoData || v11 == NoData {
		sum, count := 0, 0
		for _, v := range [4]int16{v00, v01, v10, v11} {
			if v != NoData {
				sum += int(v)
				count++
			}
		}
		if count == 0 {
			return NoData
		}
		return int(math.Round(float64(sum) / float64(count)))
	}

	fr := row - float64(r0)
	fc := col - float64(c0)
	top := float64(v00)*(1-fc) + float64(v01)*fc
	bottom := float64(v10)*(1-fc) + float64(v11)*fc
	return int(math.Round(top*(1-fr) + bottom*fr))
}

// RequiredTiles enumerates every integer-degree cell whose [lat,lat+1)×
// [lng,lng+1) cell overlaps the bounding box, in south-to-north,
// west-to-east order.
func RequiredTiles(b geometry.BBox) []TileID {
	minLat := int(math.Floor(b.MinLat))
	maxLat := int(math.Floor(b.MaxLat))
	minLng := int(math.Floor(b.MinLng))
	maxLng := int(math.Floor(b.MaxLng))
	ids := make([]TileID, 0, (maxLat-minLat+1)*(maxLng-minLng+1))
	for lat := minLat; lat <= maxLat; lat++ {
		for lng := minLng; lng <= maxLng; lng++ {
			ids = append(ids, TileID{Lat: lat, Lng: lng})
		}
	}
	return ids
}

// TileSet is a read-only collection of loaded tiles keyed by id. Missing
// tiles degrade to NoData samples.
type TileSet map[TileID]*Tile

// Sample interpolates the elevation at the given coordinate from whichever
// tile contains it, or NoData if that tile is absent.
func (ts TileSet) Sample(lat, lng float64) int {
	t, ok := ts[TileIDFor(lat, lng)]
	if !ok {
		return NoData
	}
	return t.SampleBilinear(lat, lng)
}
