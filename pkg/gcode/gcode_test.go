package gcode_test

import (
	"encoding/binary"
	"math"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hexcarve/pkg/cfg"
	"hexcarve/pkg/elevation"
	"hexcarve/pkg/gcode"
	"hexcarve/pkg/geometry"
	"hexcarve/pkg/toolpath"
)

// gridSource is a HeightSource over explicit rows (top row first). Pixels
// listed in clear are fully transparent.
type gridSource struct {
	values [][]float64
	clear  map[[2]int]bool
}

func (g gridSource) Size() (int, int) { return len(g.values[0]), len(g.values) }

func (g gridSource) At(x, y int) (float64, float64) {
	if g.clear[[2]int{x, y}] {
		return 0, 0
	}
	return g.values[y][x], 1
}

func TestSampleHeights(t *testing.T) {
	src := gridSource{values: [][]float64{
		{0, 1},
		{0, 1},
	}}
	got := gcode.SampleHeights(toolpath.Path{
		{X: 0.5, Y: 0.5},
		{X: 0.25, Y: 0},
		{X: 1, Y: 1},
	}, src)

	assert.InDelta(t, 0.5, got[0].Height, 1e-12)
	assert.InDelta(t, 0.25, got[1].Height, 1e-12)
	assert.InDelta(t, 1.0, got[2].Height, 1e-12)
}

func TestSampleHeightsOutOfBounds(t *testing.T) {
	src := gridSource{values: [][]float64{
		{0, 1},
		{0, 1},
	}}
	got := gcode.SampleHeights(toolpath.Path{
		{X: -0.1, Y: 0},
		{X: 0, Y: 1.5},
	}, src)
	assert.False(t, got[0].ValidHeight())
	assert.False(t, got[1].ValidHeight())
}

func TestSampleHeightsTransparentNeighbor(t *testing.T) {
	src := gridSource{
		values: [][]float64{
			{0, 1},
			{0, 1},
		},
		clear: map[[2]int]bool{{1, 0}: true},
	}
	got := gcode.SampleHeights(toolpath.Path{
		{X: 0.5, Y: 0.5}, // interpolates across the transparent pixel
		{X: 0, Y: 1},     // does not touch it
	}, src)
	assert.False(t, got[0].ValidHeight())
	assert.True(t, got[1].ValidHeight())
}

func carveConfig() cfg.Carve {
	return cfg.Carve{
		SafeZ:              10,
		FeedRate:           1000,
		CutZScale:          -10,
		PhysicalSize:       100,
		CarvingDepthOffset: 1,
		JumpThreshold:      0.15,
		Preamble:           []string{"(start)"},
		Postamble:          []string{"(end)"},
	}
}

func TestGenerateZSequence(t *testing.T) {
	path := toolpath.Path{
		{X: 0, Y: 0, Height: 0.2},
		{X: 1, Y: 0, Height: 0.3},
		{X: 2, Y: 0, Height: 0.4},
	}
	prog := gcode.Generate([]toolpath.Path{path}, 3, 3, carveConfig())

	// 3x3 source over 100mm: pixel units are 50mm, centered, Y up.
	want := []string{
		"(start)",
		"(path 1: 3 points)",
		"G0 X-50.000 Y50.000 Z10.000",
		"G1 X-50.000 Y50.000 Z-3.000 F1000.0",
		"G1 X0.000 Y50.000 Z-4.000 F1000.0",
		"G1 X50.000 Y50.000 Z-5.000 F1000.0",
		"G0 X50.000 Y50.000 Z10.000",
		"(end)",
	}
	if diff := cmp.Diff(want, prog.Lines); diff != "" {
		t.Errorf("program mismatch: %s", diff)
	}
	assert.InDelta(t, math.Hypot(50, 50), prog.Travel, 1e-9)
}

func TestGenerateSkipsInvalidEndpoint(t *testing.T) {
	paths := []toolpath.Path{
		{{X: 0, Y: 0, Height: math.NaN()}, {X: 1, Y: 0, Height: 0.5}},
	}
	prog := gcode.Generate(paths, 3, 3, carveConfig())
	want := []string{"(start)", "(end)"}
	if diff := cmp.Diff(want, prog.Lines); diff != "" {
		t.Errorf("invalid endpoint should skip the whole path: %s", diff)
	}
	assert.Zero(t, prog.Travel)
}

func TestGenerateSkipsInvalidInterior(t *testing.T) {
	// Both endpoints are valid, but every point neighbors the invalid one,
	// so nothing survives the jump threshold.
	paths := []toolpath.Path{
		{{X: 0, Y: 0, Height: 0.5}, {X: 1, Y: 0, Height: math.NaN()}, {X: 2, Y: 0, Height: 0.5}},
	}
	prog := gcode.Generate(paths, 3, 3, carveConfig())
	want := []string{"(start)", "(end)"}
	if diff := cmp.Diff(want, prog.Lines); diff != "" {
		t.Errorf("unsampleable interior should emit nothing: %s", diff)
	}
}

func TestGenerateJumpSplitsRuns(t *testing.T) {
	paths := []toolpath.Path{{
		{X: 0, Y: 0, Height: 0.10},
		{X: 1, Y: 0, Height: 0.12},
		{X: 2, Y: 0, Height: 0.80},
		{X: 3, Y: 0, Height: 0.82},
		{X: 4, Y: 0, Height: 0.84},
	}}
	prog := gcode.Generate(paths, 5, 5, carveConfig())

	rapids, cuts := 0, 0
	for _, line := range prog.Lines {
		switch {
		case strings.HasPrefix(line, "G0"):
			rapids++
		case strings.HasPrefix(line, "G1"):
			cuts++
		}
	}
	// The 0.12 -> 0.80 discontinuity drops both of its endpoints, leaving
	// a one-point run and a two-point run, each with its own approach and
	// retract.
	assert.Equal(t, 4, rapids)
	assert.Equal(t, 3, cuts)
}

func tileFromRows(t *testing.T, id elevation.TileID, rows [][]int16) *elevation.Tile {
	t.Helper()
	var buf []byte
	for _, row := range rows {
		for _, v := range row {
			buf = binary.BigEndian.AppendUint16(buf, uint16(v))
		}
	}
	tile, err := elevation.DecodeTile(id, buf)
	require.NoError(t, err)
	return tile
}

func TestReliefSource(t *testing.T) {
	id := elevation.TileID{Lat: 10, Lng: 20}
	tiles := elevation.TileSet{
		id: tileFromRows(t, id, [][]int16{
			{100, 200},
			{300, 400},
		}),
	}
	ring := geometry.Ring{
		{Lat: 10, Lng: 20},
		{Lat: 10, Lng: 21},
		{Lat: 11, Lng: 20},
	}
	stats := elevation.Stats{Min: 100, Max: 400}
	src := gcode.NewReliefSource(tiles, ring, stats, 5, 5)

	w, h := src.Size()
	require.Equal(t, 5, w)
	require.Equal(t, 5, h)

	// Pixel (1,3) is lat 10.25 lng 20.25, inside the triangle. Bilinear
	// elevation there is 275, which normalizes to 175/300.
	v, a := src.At(1, 3)
	assert.Equal(t, 1.0, a)
	assert.InDelta(t, 175.0/300.0, v, 1e-9)

	// Pixel (3,1) is lat 10.75 lng 20.75, outside the triangle.
	_, a = src.At(3, 1)
	assert.Zero(t, a)
}

func TestReliefSourceFlatRegion(t *testing.T) {
	id := elevation.TileID{Lat: 10, Lng: 20}
	tiles := elevation.TileSet{
		id: tileFromRows(t, id, [][]int16{
			{500, 500},
			{500, 500},
		}),
	}
	ring := geometry.Ring{
		{Lat: 10, Lng: 20},
		{Lat: 10, Lng: 21},
		{Lat: 11, Lng: 20},
	}
	src := gcode.NewReliefSource(tiles, ring, elevation.Stats{Min: 500, Max: 500}, 5, 5)

	v, a := src.At(1, 3)
	assert.Equal(t, 1.0, a)
	assert.Equal(t, 0.5, v)
}

func TestReliefSourceMissingTile(t *testing.T) {
	ring := geometry.Ring{
		{Lat: 10, Lng: 20},
		{Lat: 10, Lng: 21},
		{Lat: 11, Lng: 20},
	}
	src := gcode.NewReliefSource(elevation.TileSet{}, ring, elevation.Stats{}, 5, 5)
	_, a := src.At(1, 3)
	assert.Zero(t, a)
}
