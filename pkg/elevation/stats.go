package elevation

import (
	"hexcarve/pkg/geometry"
)

// DefaultStatsResolution is the per-axis sample count used by Statistics when
// the caller passes a resolution below 2.
const DefaultStatsResolution = 50

// Stats summarizes the valid elevation samples of a region. All fields are
// zero when every sample was no-data.
type Stats struct {
	Min     int
	Max     int
	Avg     float64
	Samples int
}

// Statistics evaluates a fixed-resolution grid over the bounding box and
// aggregates the valid samples, ignoring no-data points.
func Statistics(ts TileSet, b geometry.BBox, resolution int) Stats {
	if resolution < 2 {
		resolution = DefaultStatsResolution
	}
	var s Stats
	sum := 0
	for _, p := range geometry.SampleGrid(b, resolution) {
		e := ts.Sample(p.Lat, p.Lng)
		if e == NoData {
			continue
		}
		if s.Samples == 0 || e < s.Min {
			s.Min = e
		}
		if s.Samples == 0 || e > s.Max {
			s.Max = e
		}
		sum += e
		s.Samples++
	}
	if s.Samples > 0 {
		s.Avg = float64(sum) / float64(s.Samples)
	}
	return s
}

// RegionStatistics is Statistics restricted to samples inside the ring.
func RegionStatistics(ts TileSet, r geometry.Ring, resolution int) (Stats, error) {
	if err := r.Validate(); err != nil {
		return Stats{}, err
	}
	if resolution < 2 {
		resolution = DefaultStatsResolution
	}
	var s Stats
	sum := 0
	for _, p := range geometry.RegionSampleGrid(r, resolution) {
		e := ts.Sample(p.Lat, p.Lng)
		if e == NoData {
			continue
		}
		if s.Samples == 0 || e < s.Min {
			s.Min = e
		}
		if s.Samples == 0 || e > s.Max {
			s.Max = e
		}
		sum += e
		s.Samples++
	}
	if s.Samples > 0 {
		s.Avg = float64(sum) / float64(s.Samples)
	}
	return s, nil
}
