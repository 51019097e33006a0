package toolpath

// JoinAdjacentSegments merges segments whose endpoints coincide within
// tolerance into maximal polylines. One accumulating line is consumed from
// the work list at a time and grown until no further segment matches either
// of its ends, then the next line starts from the remaining pool. Greedy and
// order-dependent, not a minimal stitching, but idempotent: every segment
// left in the pool when a line retires was checked against both of its final
// endpoints, so a second run finds nothing new to merge.
//
// Endpoint distance is Euclidean over (X, Y, Height); see distance.
func JoinAdjacentSegments(segments []Path, tolerance float64) []Path {
	var pool []Path
	for _, s := range segments {
		if len(s) >= 2 {
			pool = append(pool, s)
		}
	}

	var joined []Path
	for len(pool) > 0 {
		current := pool[0]
		pool = pool[1:]
		for {
			merged := false
			for i, s := range pool {
				if next, ok := merge(current, s, tolerance); ok {
					current = next
					pool[i] = pool[len(pool)-1]
					pool = pool[:len(pool)-1]
					merged = true
					break
				}
			}
			if !merged {
				break
			}
		}
		joined = append(joined, current)
	}
	return joined
}

// merge tries the four endpoint pairings of line against seg. On a match the
// shared point is de-duplicated: the joint keeps line's copy.
func merge(line, seg Path, tolerance float64) (Path, bool) {
	switch {
	case distance(line.End(), seg.Start()) <= tolerance:
		return append(line, seg[1:]...), true
	case distance(line.End(), seg.End()) <= tolerance:
		return append(line, seg.Reverse()[1:]...), true
	case distance(line.Start(), seg.End()) <= tolerance:
		return append(seg[:len(seg)-1:len(seg)-1], line...), true
	case distance(line.Start(), seg.Start()) <= tolerance:
		rev := seg.Reverse()
		return append(rev[:len(rev)-1], line...), true
	}
	return Path{}, false
}
