package toolpath

import "math"

// OrderPaths arranges paths to minimize non-cutting travel with a
// nearest-neighbor heuristic: the initial path is the one whose first point
// lies closest to the origin; afterwards the unplaced path with the nearest
// endpoint to the current position is appended, reversed when its end is the
// nearer point. Approximate ordering only, not an exact tour. No path is
// added, dropped, or modified beyond reversal.
func OrderPaths(paths []Path) []Path {
	var pool []Path
	for _, p := range paths {
		if len(p) > 0 {
			pool = append(pool, p)
		}
	}
	if len(pool) == 0 {
		return nil
	}

	first := 0
	best := math.Inf(1)
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for i, p := range pool {
		s := p.Start()
		if d := math.Hypot(s.X, s.Y); d < best {
			best = d
			first = i
		}
		for _, pt := range p {
			minX = math.Min(minX, pt.X)
			minY = math.Min(minY, pt.Y)
			maxX = math.Max(maxX, pt.X)
			maxY = math.Max(maxY, pt.Y)
		}
	}

	tree := newPathTree(minX, minY, maxX, maxY)
	for i, p := range pool {
		if i == first {
			continue
		}
		tree.addPath(&pathItem{path: p})
	}

	ordered := []Path{pool[first]}
	cursor := pool[first].End()

	for placed := 1; placed < len(pool); placed++ {
		nearestList := tree.findNearest(cursor.X, cursor.Y, 1)
		if len(nearestList) == 0 {
			break
		}
		nearest := nearestList[0]
		tree.removePath(nearest)

		next := nearest.path
		s, e := next.Start(), next.End()
		if math.Hypot(e.X-cursor.X, e.Y-cursor.Y) < math.Hypot(s.X-cursor.X, s.Y-cursor.Y) {
			next = next.Reverse()
		}
		ordered = append(ordered, next)
		cursor = next.End()
	}
	return ordered
}
