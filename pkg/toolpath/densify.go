package toolpath

import "math"

// Densify inserts linearly interpolated points wherever consecutive spacing
// exceeds maxSpacing, so the height sampler sees the surface between distant
// vertices. Every original vertex appears in the result, in order. A
// non-positive maxSpacing returns the input unchanged.
func Densify(paths []Path, maxSpacing float64) []Path {
	if maxSpacing <= 0 {
		return paths
	}
	out := make([]Path, len(paths))
	for i, p := range paths {
		out[i] = densifyPath(p, maxSpacing)
	}
	return out
}

func densifyPath(p Path, maxSpacing float64) Path {
	if len(p) < 2 {
		return p
	}
	dense := Path{p[0]}
	for i := 1; i < len(p); i++ {
		a, b := p[i-1], p[i]
		d := math.Hypot(b.X-a.X, b.Y-a.Y)
		if d > maxSpacing {
			steps := int(math.Ceil(d / maxSpacing))
			for s := 1; s < steps; s++ {
				f := float64(s) / float64(steps)
				dense = append(dense, Point{
					X:      a.X + (b.X-a.X)*f,
					Y:      a.Y + (b.Y-a.Y)*f,
					Height: a.Height + (b.Height-a.Height)*f,
				})
			}
		}
		dense = append(dense, b)
	}
	return dense
}
