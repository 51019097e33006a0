// Package clip trims vector line features to a convex region boundary.
package clip

import (
	"hexcarve/pkg/geometry"
)

// Feature is a polyline with a category tag, as delivered by the road
// pipeline. It may lie partly or wholly outside the region.
type Feature struct {
	Category string
	Line     geometry.Polyline
}

// LineToRegion clips a polyline to the inside of the ring and returns the
// resulting segments, each guaranteed to lie within the region and to have
// at least two points.
//
// The walk classifies each consecutive vertex pair as inside/outside and uses
// the first reported boundary intersection per crossing edge. That is only
// correct for convex rings (a hexagon), where each crossing edge meets the
// boundary exactly once; do not reuse this for concave regions.
func LineToRegion(line geometry.Polyline, ring geometry.Ring) ([]geometry.Polyline, error) {
	if err := ring.Validate(); err != nil {
		return nil, err
	}
	if len(line) == 0 {
		return nil, nil
	}

	var segments []geometry.Polyline
	var current geometry.Polyline

	flush := func() {
		if len(current) >= 2 {
			segments = append(segments, current)
		}
		current = nil
	}

	prev := line[0]
	prevInside := geometry.PointInRing(prev, ring)
	if prevInside {
		current = geometry.Polyline{prev}
	}

	for _, next := range line[1:] {
		nextInside := geometry.PointInRing(next, ring)
		switch {
		case prevInside && nextInside:
			current = append(current, next)
		case prevInside && !nextInside:
			if ix, ok := geometry.RingIntersection(prev, next, ring); ok {
				current = append(current, ix)
			}
			flush()
		case !prevInside && nextInside:
			current = nil
			if ix, ok := geometry.RingIntersection(prev, next, ring); ok {
				current = geometry.Polyline{ix}
			}
			current = append(current, next)
		default:
			// both outside: drop the edge
		}
		prev, prevInside = next, nextInside
	}
	flush()
	return segments, nil
}

// HasAnyPointInside is a coarse pre-filter: it reports whether any vertex of
// the feature lies inside the ring. A feature crossing the region between
// two exterior vertices will be missed; use LineToRegion when exactness
// matters.
func HasAnyPointInside(f Feature, ring geometry.Ring) bool {
	for _, p := range f.Line {
		if geometry.PointInRing(p, ring) {
			return true
		}
	}
	return false
}
