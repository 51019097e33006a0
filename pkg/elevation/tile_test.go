package elevation_test

import (
	"encoding/binary"
	"errors"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"

	"hexcarve/pkg/elevation"
	"hexcarve/pkg/geometry"
)

// makeTile builds an n×n tile from row-major values (row 0 = north).
func makeTile(t *testing.T, id elevation.TileID, n int, values []int16) *elevation.Tile {
	t.Helper()
	data := make([]byte, n*n*2)
	for i, v := range values {
		binary.BigEndian.PutUint16(data[i*2:], uint16(v))
	}
	tile, err := elevation.DecodeTile(id, data)
	if err != nil {
		t.Fatalf("DecodeTile: %v", err)
	}
	return tile
}

// flatTile builds an n×n tile filled with a single value.
func flatTile(t *testing.T, id elevation.TileID, n int, value int16) *elevation.Tile {
	t.Helper()
	values := make([]int16, n*n)
	for i := range values {
		values[i] = value
	}
	return makeTile(t, id, n, values)
}

func TestTileIDName(t *testing.T) {
	tests := []struct {
		lat, lng float64
		want     string
	}{
		{47.37, 8.54, "N47E008"},
		{-0.5, -71.2, "S01W072"},
		{0.1, 0.1, "N00E000"},
		{-33.9, 151.2, "S34E151"},
		{35.6, -106.3, "N35W107"},
	}
	for _, tc := range tests {
		got := elevation.TileIDFor(tc.lat, tc.lng).Name()
		if got != tc.want {
			t.Errorf("TileIDFor(%g, %g).Name() = %q, want %q", tc.lat, tc.lng, got, tc.want)
		}
	}
}

func TestDecodeTileFormat(t *testing.T) {
	id := elevation.TileID{Lat: 47, Lng: 8}
	bad := [][]byte{
		nil,
		make([]byte, 3),      // odd
		make([]byte, 6*2),    // not a square
		make([]byte, 1*1*2),  // 1×1 grid is not interpolatable
		make([]byte, 10*10*2+2),
	}
	for _, data := range bad {
		if _, err := elevation.DecodeTile(id, data); !errors.Is(err, elevation.ErrFormat) {
			t.Errorf("DecodeTile(%d bytes) error = %v, want ErrFormat", len(data), err)
		}
	}
	tile, err := elevation.DecodeTile(id, make([]byte, 3*3*2))
	if err != nil {
		t.Fatalf("DecodeTile(valid): %v", err)
	}
	if tile.N != 3 {
		t.Errorf("N = %d, want 3", tile.N)
	}
}

func TestRequiredTiles(t *testing.T) {
	tests := []struct {
		name string
		bbox geometry.BBox
		want []elevation.TileID
	}{
		{
			name: "single cell",
			bbox: geometry.BBox{MinLat: 47.2, MinLng: 8.1, MaxLat: 47.8, MaxLng: 8.9},
			want: []elevation.TileID{{Lat: 47, Lng: 8}},
		},
		{
			name: "2x2 crossing integer degrees",
			bbox: geometry.BBox{MinLat: 46.9, MinLng: 7.9, MaxLat: 47.1, MaxLng: 8.1},
			want: []elevation.TileID{
				{Lat: 46, Lng: 7}, {Lat: 46, Lng: 8},
				{Lat: 47, Lng: 7}, {Lat: 47, Lng: 8},
			},
		},
		{
			name: "crossing the equator and prime meridian",
			bbox: geometry.BBox{MinLat: -0.5, MinLng: -0.5, MaxLat: 0.5, MaxLng: 0.5},
			want: []elevation.TileID{
				{Lat: -1, Lng: -1}, {Lat: -1, Lng: 0},
				{Lat: 0, Lng: -1}, {Lat: 0, Lng: 0},
			},
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := elevation.RequiredTiles(tc.bbox)
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Errorf("RequiredTiles mismatch: %s", diff)
			}
			// Closed-form cardinality check.
			wantCount := (int(math.Floor(tc.bbox.MaxLat)) - int(math.Floor(tc.bbox.MinLat)) + 1) *
				(int(math.Floor(tc.bbox.MaxLng)) - int(math.Floor(tc.bbox.MinLng)) + 1)
			if len(got) != wantCount {
				t.Errorf("len = %d, want %d", len(got), wantCount)
			}
		})
	}
}

func TestSampleBilinearGridVertex(t *testing.T) {
	// 3×3 tile over N47E008: grid vertices every 0.5 degrees.
	tile := makeTile(t, elevation.TileID{Lat: 47, Lng: 8}, 3, []int16{
		10, 20, 30, // lat 48
		40, 50, 60, // lat 47.5
		70, 80, 90, // lat 47
	})
	tests := []struct {
		lat, lng float64
		want     int
	}{
		{48, 8, 10},
		{48, 9, 30},
		{47.5, 8.5, 50},
		{47, 8, 70},
		{47, 9, 90},
	}
	for _, tc := range tests {
		if got := tile.SampleBilinear(tc.lat, tc.lng); got != tc.want {
			t.Errorf("SampleBilinear(%g, %g) = %d, want %d (raw vertex)", tc.lat, tc.lng, got, tc.want)
		}
	}
	// Midpoint of the top edge interpolates its two neighbors.
	if got := tile.SampleBilinear(48, 8.25); got != 15 {
		t.Errorf("SampleBilinear(48, 8.25) = %d, want 15", got)
	}
}

func TestSampleBilinearNoData(t *testing.T) {
	tile := makeTile(t, elevation.TileID{Lat: 0, Lng: 0}, 2, []int16{
		elevation.NoData, 100,
		200, elevation.NoData,
	})
	// Two valid neighbors average regardless of position within the cell.
	if got := tile.SampleBilinear(0.5, 0.5); got != 150 {
		t.Errorf("partial no-data sample = %d, want 150", got)
	}

	dead := flatTile(t, elevation.TileID{Lat: 0, Lng: 0}, 2, elevation.NoData)
	if got := dead.SampleBilinear(0.5, 0.5); got != elevation.NoData {
		t.Errorf("all no-data sample = %d, want NoData", got)
	}
}

func TestSampleBilinearCornerSpike(t *testing.T) {
	// Full-size tile: all zero except 1000 at grid cell (0,0), the
	// northwest corner.
	n := elevation.DefaultGridSize
	data := make([]byte, n*n*2)
	binary.BigEndian.PutUint16(data, uint16(1000))
	tile, err := elevation.DecodeTile(elevation.TileID{Lat: 47, Lng: 8}, data)
	if err != nil {
		t.Fatalf("DecodeTile: %v", err)
	}

	if got := tile.SampleBilinear(48, 8); got != 1000 {
		t.Errorf("at the corner vertex = %d, want 1000", got)
	}
	near := tile.SampleBilinear(48-0.1/3600, 8+0.1/3600)
	nearer := tile.SampleBilinear(48-0.01/3600, 8+0.01/3600)
	if near <= 0 || near >= 1000 {
		t.Errorf("near corner = %d, want between 0 and 1000", near)
	}
	if nearer <= near {
		t.Errorf("closer sample %d should exceed farther sample %d", nearer, near)
	}
	if got := tile.SampleBilinear(47.5, 8.5); got != 0 {
		t.Errorf("tile center = %d, want 0", got)
	}
}

func TestTileSetSample(t *testing.T) {
	ts := elevation.TileSet{
		{Lat: 47, Lng: 8}: flatTile(t, elevation.TileID{Lat: 47, Lng: 8}, 3, 500),
	}
	if got := ts.Sample(47.5, 8.5); got != 500 {
		t.Errorf("Sample inside loaded tile = %d, want 500", got)
	}
	if got := ts.Sample(46.5, 8.5); got != elevation.NoData {
		t.Errorf("Sample in missing tile = %d, want NoData", got)
	}
}

func TestStatistics(t *testing.T) {
	ts := elevation.TileSet{
		{Lat: 47, Lng: 8}: makeTile(t, elevation.TileID{Lat: 47, Lng: 8}, 3, []int16{
			100, 100, 100,
			200, 200, 200,
			300, 300, 300,
		}),
	}
	// Stay inside the loaded tile; grid rows land on lat 47, 47.25, 47.5,
	// which sample 300, 250, and 200.
	b := geometry.BBox{MinLat: 47, MinLng: 8, MaxLat: 47.5, MaxLng: 8.5}
	s := elevation.Statistics(ts, b, 3)
	if s.Samples != 9 {
		t.Fatalf("Samples = %d, want 9", s.Samples)
	}
	if s.Min != 200 || s.Max != 300 {
		t.Errorf("Min/Max = %d/%d, want 200/300", s.Min, s.Max)
	}
	if math.Abs(s.Avg-250) > 1e-9 {
		t.Errorf("Avg = %g, want 250", s.Avg)
	}

	empty := elevation.Statistics(elevation.TileSet{}, b, 3)
	if diff := cmp.Diff(elevation.Stats{}, empty); diff != "" {
		t.Errorf("all-no-data stats should be zeros: %s", diff)
	}
}
