package gcode

import (
	"fmt"
	"math"
	"strings"

	"hexcarve/pkg/cfg"
	"hexcarve/pkg/toolpath"
)

// Program is the compiled motion program plus travel bookkeeping.
type Program struct {
	Lines []string
	// Travel is the total XY distance of rapid moves between cuts, in mm.
	Travel float64
}

// Text renders the program as newline-terminated ASCII.
func (p *Program) Text() string {
	return strings.Join(p.Lines, "\n") + "\n"
}

// Generate compiles ordered, height-sampled paths into a motion program.
// srcW and srcH are the pixel dimensions of the height source the paths were
// sampled from; they fix the pixel-to-millimeter mapping.
//
// Per path: rapid approach at safe height, a linear plunge-and-cut pass over
// the cuttable points, then a rapid retract. A path whose first or last
// point has no height is skipped outright. Interior points are skipped when
// the height delta to either neighbor exceeds the jump threshold; a gap
// splits the path into separately approached runs so the tool never cuts
// across a raster discontinuity.
func Generate(paths []toolpath.Path, srcW, srcH int, c cfg.Carve) *Program {
	prog := &Program{}
	prog.Lines = append(prog.Lines, c.Preamble...)

	m := newMapper(srcW, srcH, c.PhysicalSize)
	lastX, lastY := 0.0, 0.0

	for i, path := range paths {
		if len(path) < 2 || !path.Start().ValidHeight() || !path.End().ValidHeight() {
			continue
		}
		runs := cutRuns(path, c.JumpThreshold)
		if len(runs) == 0 {
			continue
		}
		prog.Lines = append(prog.Lines, fmt.Sprintf("(path %d: %d points)", i+1, len(path)))
		for _, run := range runs {
			x, y := m.toPhysical(run[0])
			prog.Travel += math.Hypot(x-lastX, y-lastY)
			prog.Lines = append(prog.Lines, fmt.Sprintf("G0 X%.3f Y%.3f Z%.3f", x, y, c.SafeZ))
			for _, pt := range run {
				x, y = m.toPhysical(pt)
				z := pt.Height*c.CutZScale - c.CarvingDepthOffset
				prog.Lines = append(prog.Lines, fmt.Sprintf("G1 X%.3f Y%.3f Z%.3f F%.1f", x, y, z, c.FeedRate))
			}
			prog.Lines = append(prog.Lines, fmt.Sprintf("G0 X%.3f Y%.3f Z%.3f", x, y, c.SafeZ))
			lastX, lastY = x, y
		}
	}

	prog.Lines = append(prog.Lines, c.Postamble...)
	return prog
}

// cutRuns splits a path into maximal runs of cuttable points. A point is
// cuttable when it has a valid height and its height delta to every existing
// neighbor stays within the threshold; an invalid neighbor counts as an
// infinite delta.
func cutRuns(p toolpath.Path, jumpThreshold float64) []toolpath.Path {
	var runs []toolpath.Path
	var run toolpath.Path
	for i := range p {
		if cuttable(p, i, jumpThreshold) {
			run = append(run, p[i])
			continue
		}
		if len(run) > 0 {
			runs = append(runs, run)
			run = nil
		}
	}
	if len(run) > 0 {
		runs = append(runs, run)
	}
	return runs
}

func cuttable(p toolpath.Path, i int, threshold float64) bool {
	if !p[i].ValidHeight() {
		return false
	}
	if i > 0 && heightDelta(p[i], p[i-1]) > threshold {
		return false
	}
	if i < len(p)-1 && heightDelta(p[i], p[i+1]) > threshold {
		return false
	}
	return true
}

func heightDelta(a, b toolpath.Point) float64 {
	if !a.ValidHeight() || !b.ValidHeight() {
		return math.Inf(1)
	}
	return math.Abs(a.Height - b.Height)
}

// mapper converts height-source pixel coordinates to physical millimeters,
// centered on the origin. Pixel row 0 (the raster's top) maps to the
// positive Y edge of the stock.
type mapper struct {
	scale float64
	half  float64
}

func newMapper(w, h int, physicalSize float64) mapper {
	longest := w
	if h > longest {
		longest = h
	}
	// A degenerate raster collapses every point onto the origin.
	if longest < 2 {
		return mapper{}
	}
	return mapper{scale: physicalSize / float64(longest-1), half: physicalSize / 2}
}

func (m mapper) toPhysical(p toolpath.Point) (x, y float64) {
	return p.X*m.scale - m.half, m.half - p.Y*m.scale
}
