package gcode

import (
	"hexcarve/pkg/elevation"
	"hexcarve/pkg/geometry"
)

// ReliefSource is a HeightSource backed directly by loaded elevation tiles.
// Each pixel maps to a coordinate inside the region's bounding box; samples
// are normalized to 0..1 against the region's elevation statistics. Pixels
// outside the region ring or without elevation data are transparent.
type ReliefSource struct {
	tiles  elevation.TileSet
	ring   geometry.Ring
	bbox   geometry.BBox
	stats  elevation.Stats
	width  int
	height int
}

// NewReliefSource builds a relief raster over the ring's bounding box.
func NewReliefSource(ts elevation.TileSet, ring geometry.Ring, stats elevation.Stats, width, height int) *ReliefSource {
	return &ReliefSource{
		tiles:  ts,
		ring:   ring,
		bbox:   ring.BoundingBox(),
		stats:  stats,
		width:  width,
		height: height,
	}
}

func (r *ReliefSource) Size() (int, int) { return r.width, r.height }

// At samples the normalized elevation at a pixel. Row 0 is the region's
// northern edge. A zero elevation span normalizes to the midpoint 0.5.
func (r *ReliefSource) At(x, y int) (float64, float64) {
	p := r.pixelCenter(x, y)
	if !geometry.PointInRing(p, r.ring) {
		return 0, 0
	}
	e := r.tiles.Sample(p.Lat, p.Lng)
	if e == elevation.NoData {
		return 0, 0
	}
	span := r.stats.Max - r.stats.Min
	if span == 0 {
		return 0.5, 1
	}
	v := float64(e-r.stats.Min) / float64(span)
	if v < 0 {
		v = 0
	} else if v > 1 {
		v = 1
	}
	return v, 1
}

func (r *ReliefSource) pixelCenter(x, y int) geometry.Point {
	lng := (r.bbox.MinLng + r.bbox.MaxLng) / 2
	if r.width > 1 {
		lng = r.bbox.MinLng + float64(x)/float64(r.width-1)*(r.bbox.MaxLng-r.bbox.MinLng)
	}
	lat := (r.bbox.MinLat + r.bbox.MaxLat) / 2
	if r.height > 1 {
		lat = r.bbox.MaxLat - float64(y)/float64(r.height-1)*(r.bbox.MaxLat-r.bbox.MinLat)
	}
	return geometry.Point{Lat: lat, Lng: lng}
}
