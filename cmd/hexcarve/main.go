// Command hexcarve turns an elevation tile directory, a region boundary, and
// a set of vector line features into a CNC carving program.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/prometheus/client_golang/prometheus"

	"hexcarve/internal/logging"
	"hexcarve/pkg/cfg"
	"hexcarve/pkg/clip"
	"hexcarve/pkg/elevation"
	"hexcarve/pkg/gcode"
	"hexcarve/pkg/geometry"
	"hexcarve/pkg/toolpath"
)

func main() {
	configPath := flag.String("config", "", "JSON config file; defaults are used when empty")
	boundaryPath := flag.String("boundary", "", "region boundary JSON (ring of lat/lng vertices)")
	featuresPath := flag.String("features", "", "vector feature JSON (categorized polylines)")
	hgtDir := flag.String("hgt", ".", "directory of .hgt elevation tiles")
	outPath := flag.String("out", "", "output G-code file; stdout when empty")
	flag.Parse()

	log := logging.NewFromEnv()
	if *boundaryPath == "" || *featuresPath == "" {
		fmt.Fprintf(os.Stderr, "usage: %s -boundary region.json -features roads.json [-hgt dir] [-config cfg.json] [-out file]\n", os.Args[0])
		os.Exit(2)
	}
	if err := run(log, *configPath, *boundaryPath, *featuresPath, *hgtDir, *outPath); err != nil {
		log.Error("generation failed", "error", err)
		os.Exit(1)
	}
}

func run(log logging.Logger, configPath, boundaryPath, featuresPath, hgtDir, outPath string) error {
	conf := cfg.Default()
	if configPath != "" {
		var err error
		if conf, err = cfg.Load(configPath); err != nil {
			return err
		}
	}

	ring, err := readBoundary(boundaryPath)
	if err != nil {
		return err
	}
	if err := ring.Validate(); err != nil {
		return err
	}
	features, err := readFeatures(featuresPath)
	if err != nil {
		return err
	}

	bbox := ring.BoundingBox()
	store := elevation.NewStore(elevation.DirLoader{Dir: hgtDir}, log, prometheus.NewRegistry())
	tiles, err := store.LoadAll(bbox)
	if err != nil {
		return err
	}
	stats, err := elevation.RegionStatistics(tiles, ring, conf.Sampling.StatsResolution)
	if err != nil {
		return err
	}
	log.Info("region elevation",
		"min", stats.Min, "max", stats.Max, "avg", stats.Avg, "samples", stats.Samples)

	width, height := conf.Sampling.ReliefWidth, conf.Sampling.ReliefHeight
	relief := gcode.NewReliefSource(tiles, ring, stats, width, height)
	projection := toolpath.NewProjection(bbox, width, height)

	keep := categoryFilter(conf.Categories)
	var fragments []toolpath.Path
	for _, f := range features {
		if !keep(f.Category) {
			continue
		}
		segments, err := clip.LineToRegion(f.Line, ring)
		if err != nil {
			return fmt.Errorf("clipping %s feature: %w", f.Category, err)
		}
		for _, seg := range segments {
			fragments = append(fragments, projection.Project(seg))
		}
	}
	log.Info("features clipped", "features", len(features), "fragments", len(fragments))

	paths := toolpath.JoinAdjacentSegments(fragments, conf.Assembly.JoinTolerance)
	paths = toolpath.OrderPaths(paths)
	paths = toolpath.SimplifyAll(paths, conf.Assembly.SimplifyTolerance)
	paths = toolpath.Densify(paths, conf.Assembly.MaxSpacing)
	for i, p := range paths {
		paths[i] = gcode.SampleHeights(p, relief)
	}

	prog := gcode.Generate(paths, width, height, conf.Carve)
	log.Info("program emitted",
		"paths", len(paths), "lines", len(prog.Lines), "travel_mm", prog.Travel)

	if outPath == "" {
		_, err = os.Stdout.WriteString(prog.Text())
		return err
	}
	return os.WriteFile(outPath, []byte(prog.Text()), 0o644)
}

func categoryFilter(allowed []string) func(string) bool {
	if len(allowed) == 0 {
		return func(string) bool { return true }
	}
	set := map[string]bool{}
	for _, c := range allowed {
		set[c] = true
	}
	return func(c string) bool { return set[c] }
}

type boundaryFile struct {
	Ring []struct {
		Lat float64 `json:"lat"`
		Lng float64 `json:"lng"`
	} `json:"ring"`
}

func readBoundary(path string) (geometry.Ring, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read boundary: %w", err)
	}
	var b boundaryFile
	if err := json.Unmarshal(data, &b); err != nil {
		return nil, fmt.Errorf("parse boundary %s: %w", path, err)
	}
	ring := make(geometry.Ring, len(b.Ring))
	for i, v := range b.Ring {
		ring[i] = geometry.Point{Lat: v.Lat, Lng: v.Lng}
	}
	return ring, nil
}

type featureFile []struct {
	Category string       `json:"category"`
	Points   [][2]float64 `json:"points"` // lng, lat pairs
}

func readFeatures(path string) ([]clip.Feature, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read features: %w", err)
	}
	var ff featureFile
	if err := json.Unmarshal(data, &ff); err != nil {
		return nil, fmt.Errorf("parse features %s: %w", path, err)
	}
	features := make([]clip.Feature, len(ff))
	for i, f := range ff {
		line := make(geometry.Polyline, len(f.Points))
		for j, p := range f.Points {
			line[j] = geometry.Point{Lat: p[1], Lng: p[0]}
		}
		features[i] = clip.Feature{Category: f.Category, Line: line}
	}
	return features, nil
}
