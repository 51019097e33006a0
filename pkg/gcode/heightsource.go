// Package gcode compiles toolpaths into CNC motion programs: it samples
// per-point heights from a raster height source and emits G0/G1 lines under
// the configured safety constraints.
package gcode

import (
	"hexcarve/pkg/toolpath"
)

// HeightSource is an image-like accessor the compiler samples heights from.
// Row 0 is the top of the raster. Values are normalized to 0..1; alpha below
// 1 marks a pixel as unusable (transparent or no-data).
type HeightSource interface {
	Size() (width, height int)
	At(x, y int) (value, alpha float64)
}

// SampleHeights fills in the height of every path point by bilinear
// interpolation over the source. A point becomes invalid when it falls
// outside the source bounds or when any of its four interpolation neighbors
// is not fully opaque.
func SampleHeights(p toolpath.Path, src HeightSource) toolpath.Path {
	w, h := src.Size()
	out := make(toolpath.Path, len(p))
	for i, pt := range p {
		out[i] = samplePoint(pt, src, w, h)
	}
	return out
}

func samplePoint(pt toolpath.Point, src HeightSource, w, h int) toolpath.Point {
	if pt.X < 0 || pt.Y < 0 || pt.X > float64(w-1) || pt.Y > float64(h-1) {
		return pt.Invalid()
	}
	x0 := int(pt.X)
	y0 := int(pt.Y)
	x1 := x0 + 1
	if x1 > w-1 {
		x1 = w - 1
	}
	y1 := y0 + 1
	if y1 > h-1 {
		y1 = h - 1
	}

	v00, a00 := src.At(x0, y0)
	v01, a01 := src.At(x1, y0)
	v10, a10 := src.At(x0, y1)
	v11, a11 := src.At(x1, y1)
	if a00 < 1 || a01 < 1 || a10 < 1 || a11 < 1 {
		return pt.Invalid()
	}

	fx := pt.X - float64(x0)
	fy := pt.Y - float64(y0)
	top := v00*(1-fx) + v01*fx
	bottom := v10*(1-fx) + v11*fx
	pt.Height = top*(1-fy) + bottom*fy
	return pt
}
