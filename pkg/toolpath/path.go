// Package toolpath stitches clipped line fragments into maximal polylines,
// orders them to minimize non-cutting travel, and prepares them for height
// sampling.
package toolpath

import (
	"math"

	"hexcarve/pkg/geometry"
)

// Point is a toolpath vertex in height-source pixel coordinates. Height is
// the normalized surface height (0..1) filled in during compilation; NaN
// marks a point whose height could not be sampled.
type Point struct {
	X      float64
	Y      float64
	Height float64
}

// ValidHeight reports whether the point carries a usable height.
func (p Point) ValidHeight() bool {
	return !math.IsNaN(p.Height)
}

// Invalid returns p with its height marked unusable.
func (p Point) Invalid() Point {
	p.Height = math.NaN()
	return p
}

// Path is an ordered point sequence the tool will follow.
type Path []Point

// Reverse returns a reversed copy of the path.
func (p Path) Reverse() Path {
	out := make(Path, len(p))
	for i, pt := range p {
		out[len(p)-1-i] = pt
	}
	return out
}

// Start and End return the path's endpoints; both assume len(p) > 0.
func (p Path) Start() Point { return p[0] }
func (p Path) End() Point   { return p[len(p)-1] }

// distance is Euclidean over all three components. Height defaults to zero
// before sampling, so joins performed pre-compilation reduce to plain 2D
// pixel distance; once heights are present they deliberately participate in
// the same norm (a single tolerance, not split per unit).
func distance(a, b Point) float64 {
	dx := a.X - b.X
	dy := a.Y - b.Y
	dh := a.Height - b.Height
	return math.Sqrt(dx*dx + dy*dy + dh*dh)
}

// Projection maps geographic coordinates into height-source pixel space.
// Column 0 is the west edge and row 0 is the north edge, matching the
// inverted-row convention of the height source.
type Projection struct {
	bbox   geometry.BBox
	width  int
	height int
}

// NewProjection builds a projection of the bounding box onto a width×height
// pixel grid.
func NewProjection(b geometry.BBox, width, height int) Projection {
	return Projection{bbox: b, width: width, height: height}
}

// ToPixel projects one geographic point. A zero-span axis maps to the grid
// midline rather than dividing by zero.
func (pr Projection) ToPixel(p geometry.Point) Point {
	lngSpan := pr.bbox.MaxLng - pr.bbox.MinLng
	latSpan := pr.bbox.MaxLat - pr.bbox.MinLat

	x := float64(pr.width-1) / 2
	if lngSpan != 0 {
		x = (p.Lng - pr.bbox.MinLng) / lngSpan * float64(pr.width-1)
	}
	y := float64(pr.height-1) / 2
	if latSpan != 0 {
		y = (pr.bbox.MaxLat - p.Lat) / latSpan * float64(pr.height-1)
	}
	return Point{X: x, Y: y}
}

// Project converts a geographic polyline into a Path.
func (pr Projection) Project(line geometry.Polyline) Path {
	path := make(Path, len(line))
	for i, p := range line {
		path[i] = pr.ToPixel(p)
	}
	return path
}
