package geometry

import (
	"errors"
	"math"
)

// EarthRadiusKm is the mean Earth radius used by Haversine.
const EarthRadiusKm = 6371.0

// ErrDegenerateRing is returned when a ring has fewer than three vertices.
var ErrDegenerateRing = errors.New("geometry: ring needs at least 3 vertices")

// Point is a geographic coordinate in degrees.
type Point struct {
	Lat float64
	Lng float64
}

// Polyline is an ordered sequence of geographic points.
type Polyline []Point

// Ring is a closed polygon boundary. The edge from the last vertex back to
// the first is implied; the vertex order is whatever the upstream indexer
// produced and is not re-validated here.
type Ring []Point

// BBox is an axis-aligned bounding box in degrees.
type BBox struct {
	MinLat float64
	MinLng float64
	MaxLat float64
	MaxLng float64
}

// Validate rejects rings that cannot form a polygon.
func (r Ring) Validate() error {
	if len(r) < 3 {
		return ErrDegenerateRing
	}
	return nil
}

// BoundingBox returns the axis-aligned bounds of the ring.
func (r Ring) BoundingBox() BBox {
	if len(r) == 0 {
		return BBox{}
	}
	b := BBox{
		MinLat: r[0].Lat, MaxLat: r[0].Lat,
		MinLng: r[0].Lng, MaxLng: r[0].Lng,
	}
	for _, p := range r[1:] {
		b.MinLat = math.Min(b.MinLat, p.Lat)
		b.MaxLat = math.Max(b.MaxLat, p.Lat)
		b.MinLng = math.Min(b.MinLng, p.Lng)
		b.MaxLng = math.Max(b.MaxLng, p.Lng)
	}
	return b
}

// Area returns the absolute shoelace area of the ring, in squared degrees.
func (r Ring) Area() float64 {
	if len(r) < 3 {
		return 0
	}
	sum := 0.0
	for i, p := range r {
		q := r[(i+1)%len(r)]
		sum += p.Lng*q.Lat - q.Lng*p.Lat
	}
	return math.Abs(sum) / 2
}

// VertexAverage returns the mean of the ring's vertices. For a regular
// hexagon this coincides with the centroid; in general it is only an
// approximation of the true area centroid.
func (r Ring) VertexAverage() Point {
	if len(r) == 0 {
		return Point{}
	}
	var lat, lng float64
	for _, p := range r {
		lat += p.Lat
		lng += p.Lng
	}
	n := float64(len(r))
	return Point{Lat: lat / n, Lng: lng / n}
}

// PointInRing reports whether p lies inside the ring, using an even-odd
// ray-casting test over consecutive edges including the wrap edge.
// Behavior for a point exactly on an edge is unspecified: it depends on
// which side the floating-point crossing comparison lands.
func PointInRing(p Point, r Ring) bool {
	if len(r) < 3 {
		return false
	}
	inside := false
	j := len(r) - 1
	for i := 0; i < len(r); i++ {
		a, b := r[i], r[j]
		if (a.Lat > p.Lat) != (b.Lat > p.Lat) {
			cross := (b.Lng-a.Lng)*(p.Lat-a.Lat)/(b.Lat-a.Lat) + a.Lng
			if p.Lng < cross {
				inside = !inside
			}
		}
		j = i
	}
	return inside
}

// Haversine returns the great-circle distance between two points in
// kilometres.
func Haversine(lat1, lng1, lat2, lng2 float64) float64 {
	rad := math.Pi / 180
	dLat := (lat2 - lat1) * rad
	dLng := (lng2 - lng1) * rad
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1*rad)*math.Cos(lat2*rad)*math.Sin(dLng/2)*math.Sin(dLng/2)
	return EarthRadiusKm * 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}

// SampleGrid returns resolution×resolution evenly spaced points covering the
// box, including its edges. resolution must be at least 2; 1 would divide by
// zero.
func SampleGrid(b BBox, resolution int) []Point {
	points := make([]Point, 0, resolution*resolution)
	latStep := (b.MaxLat - b.MinLat) / float64(resolution-1)
	lngStep := (b.MaxLng - b.MinLng) / float64(resolution-1)
	for i := 0; i < resolution; i++ {
		for j := 0; j < resolution; j++ {
			points = append(points, Point{
				Lat: b.MinLat + latStep*float64(i),
				Lng: b.MinLng + lngStep*float64(j),
			})
		}
	}
	return points
}

// RegionSampleGrid samples the ring's bounding box and keeps only the points
// inside the ring.
func RegionSampleGrid(r Ring, resolution int) []Point {
	var points []Point
	for _, p := range SampleGrid(r.BoundingBox(), resolution) {
		if PointInRing(p, r) {
			points = append(points, p)
		}
	}
	return points
}

// SegmentIntersection returns the intersection of segments a1-a2 and b1-b2,
// if the segments actually cross. Collinear overlaps report no intersection.
func SegmentIntersection(a1, a2, b1, b2 Point) (Point, bool) {
	// Treat (lng, lat) as a plane; standard parametric crossing test.
	d1x, d1y := a2.Lng-a1.Lng, a2.Lat-a1.Lat
	d2x, d2y := b2.Lng-b1.Lng, b2.Lat-b1.Lat
	den := d1x*d2y - d1y*d2x
	if den == 0 {
		return Point{}, false
	}
	t := ((b1.Lng-a1.Lng)*d2y - (b1.Lat-a1.Lat)*d2x) / den
	u := ((b1.Lng-a1.Lng)*d1y - (b1.Lat-a1.Lat)*d1x) / den
	if t < 0 || t > 1 || u < 0 || u > 1 {
		return Point{}, false
	}
	return Point{Lat: a1.Lat + t*d1y, Lng: a1.Lng + t*d1x}, true
}

// RingIntersection returns the first intersection of segment a-b with the
// ring's edges, scanning edges in ring order. Using only the first hit is
// sound for convex rings, where a segment with one endpoint inside crosses
// the boundary exactly once.
func RingIntersection(a, b Point, r Ring) (Point, bool) {
	for i := range r {
		e1 := r[i]
		e2 := r[(i+1)%len(r)]
		if p, ok := SegmentIntersection(a, b, e1, e2); ok {
			return p, true
		}
	}
	return Point{}, false
}
