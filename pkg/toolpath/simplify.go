package toolpath

import "math"

// Simplify reduces a path with the Douglas-Peucker algorithm, dropping
// vertices that deviate less than epsilon (in XY pixel units) from the chord
// between the retained neighbors. Heights of retained points are untouched;
// run this before sampling so dropped vertices never carry heights at all.
func Simplify(p Path, epsilon float64) Path {
	if len(p) < 3 || epsilon <= 0 {
		return p
	}

	chordA, chordB := p[0], p[len(p)-1]
	dmax := 0.0
	index := 0
	for i := 1; i < len(p)-1; i++ {
		if d := chordDistance(chordA, chordB, p[i]); d > dmax {
			index = i
			dmax = d
		}
	}
	if dmax < epsilon {
		return Path{chordA, chordB}
	}

	left := Simplify(p[:index+1], epsilon)
	right := Simplify(p[index:], epsilon)
	return append(append(Path{}, left...), right[1:]...)
}

// SimplifyAll simplifies each path independently.
func SimplifyAll(paths []Path, epsilon float64) []Path {
	if epsilon <= 0 {
		return paths
	}
	out := make([]Path, len(paths))
	for i, p := range paths {
		out[i] = Simplify(p, epsilon)
	}
	return out
}

// chordDistance is the XY distance from p to segment a-b, falling back to
// the nearest endpoint when the perpendicular foot lies outside the segment.
func chordDistance(a, b, p Point) float64 {
	abx, aby := b.X-a.X, b.Y-a.Y
	apx, apy := p.X-a.X, p.Y-a.Y
	ab2 := abx*abx + aby*aby
	if ab2 == 0 {
		return math.Hypot(apx, apy)
	}
	t := (apx*abx + apy*aby) / ab2
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}
	return math.Hypot(p.X-(a.X+abx*t), p.Y-(a.Y+aby*t))
}
