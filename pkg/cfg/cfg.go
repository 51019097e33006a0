// Package cfg holds the knobs for carving, path assembly, and sampling.
// Every field has a documented default; Load layers a JSON file over the
// defaults so a config file only needs the fields it changes.
package cfg

import (
	"encoding/json"
	"fmt"
	"os"
)

// Carve controls motion generation. All lengths are millimeters.
type Carve struct {
	// SafeZ is the retract height for rapid moves between paths.
	SafeZ float64 `json:"safeZ"`
	// FeedRate is the cutting feed in mm/min, attached to G1 moves.
	FeedRate float64 `json:"feedRate"`
	// CutZScale maps a normalized height (0..1) to a Z depth. Negative
	// values cut deeper where the source is higher.
	CutZScale float64 `json:"cutZScale"`
	// PhysicalSize is the span of the longer source axis on the stock.
	// Output coordinates are centered, so X and Y run from
	// -PhysicalSize/2 to +PhysicalSize/2.
	PhysicalSize float64 `json:"physicalSize"`
	// CarvingDepthOffset is subtracted from every cut Z, pushing the
	// whole relief below the stock surface.
	CarvingDepthOffset float64 `json:"carvingDepthOffset"`
	// JumpThreshold is the largest height delta between neighboring
	// points that is still cut through. Larger deltas are treated as
	// raster discontinuities and the point is skipped.
	JumpThreshold float64 `json:"jumpThreshold"`
	// Preamble and Postamble are emitted verbatim around the program
	// body. Defaults start the spindle with a dwell and stop it at the
	// end.
	Preamble  []string `json:"preamble"`
	Postamble []string `json:"postamble"`
}

// Assembly controls stitching of clipped fragments into toolpaths.
// Tolerances are in pixel units of the projected source raster.
type Assembly struct {
	// JoinTolerance is the endpoint distance under which two fragments
	// are merged into one polyline.
	JoinTolerance float64 `json:"joinTolerance"`
	// SimplifyTolerance is the Douglas-Peucker epsilon. Zero disables
	// simplification.
	SimplifyTolerance float64 `json:"simplifyTolerance"`
	// MaxSpacing is the largest gap between consecutive points after
	// densification, so height sampling tracks the surface.
	MaxSpacing float64 `json:"maxSpacing"`
}

// Sampling controls elevation sampling of the region.
type Sampling struct {
	// StatsResolution is the per-axis grid size used for region
	// elevation statistics.
	StatsResolution int `json:"statsResolution"`
	// ReliefWidth and ReliefHeight are the pixel dimensions of the
	// height raster built over the region.
	ReliefWidth  int `json:"reliefWidth"`
	ReliefHeight int `json:"reliefHeight"`
}

// Config is the full tool configuration.
type Config struct {
	Carve    Carve    `json:"carve"`
	Assembly Assembly `json:"assembly"`
	Sampling Sampling `json:"sampling"`
	// Categories is the allow-list of feature categories to carve.
	// Empty means keep everything.
	Categories []string `json:"categories"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Carve: Carve{
			SafeZ:              10,
			FeedRate:           3000,
			CutZScale:          -20,
			PhysicalSize:       150,
			CarvingDepthOffset: 1,
			JumpThreshold:      0.15,
			Preamble:           []string{"G17 G90 M3 S24000", "G4 P5000"},
			Postamble:          []string{"M5", "M30"},
		},
		Assembly: Assembly{
			JoinTolerance:     0.5,
			SimplifyTolerance: 0,
			MaxSpacing:        2,
		},
		Sampling: Sampling{
			StatsResolution: 50,
			ReliefWidth:     800,
			ReliefHeight:    800,
		},
	}
}

// Load reads a JSON config file over the defaults. Fields absent from the
// file keep their default values.
func Load(path string) (Config, error) {
	c := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return c, fmt.Errorf("read config: %w", err)
	}
	if err := json.Unmarshal(data, &c); err != nil {
		return c, fmt.Errorf("parse config %s: %w", path, err)
	}
	return c, nil
}
