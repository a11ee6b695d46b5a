package monitor

import (
	"fmt"
	"image/color"
	"os"
	"path/filepath"
	"sync"
	"time"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/banshee-data/explorer/internal/grid"
)

// MapPlotter records coverage over the course of a run and exports PNG
// heatmaps of the final grids. Sample() is cheap enough to call once per
// loop tick; GeneratePlots() produces the output files after the run.
type MapPlotter struct {
	mu        sync.Mutex
	enabled   bool
	outputDir string

	// samples holds the coverage time series, one entry per Sample() call
	samples   []coverageSample
	startTime time.Time
}

type coverageSample struct {
	Elapsed  time.Duration
	Coverage grid.CoverageStats
}

// NewMapPlotter creates a plotter that is disabled until Start is called.
func NewMapPlotter() *MapPlotter {
	return &MapPlotter{}
}

// Start initializes the plotter for a new run.
// outputDir should be a timestamped directory (e.g., "plots/20260829_104500")
func (mp *MapPlotter) Start(outputDir string) error {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output dir: %w", err)
	}

	mp.outputDir = outputDir
	mp.enabled = true
	mp.startTime = time.Time{}
	mp.samples = nil
	return nil
}

// Stop disables sampling. Call GeneratePlots() to produce output files.
func (mp *MapPlotter) Stop() {
	mp.mu.Lock()
	defer mp.mu.Unlock()
	mp.enabled = false
}

// IsEnabled returns true if the plotter is currently recording.
func (mp *MapPlotter) IsEnabled() bool {
	mp.mu.Lock()
	defer mp.mu.Unlock()
	return mp.enabled
}

// Sample captures the current coverage stats for the time series.
func (mp *MapPlotter) Sample(mapGrid, costmap *grid.Grid) {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	if !mp.enabled || mapGrid == nil {
		return
	}

	now := time.Now()
	if mp.startTime.IsZero() {
		mp.startTime = now
	}
	mp.samples = append(mp.samples, coverageSample{
		Elapsed:  now.Sub(mp.startTime),
		Coverage: grid.ComputeCoverage(mapGrid, costmap),
	})
}

// SampleCount returns the number of coverage samples collected.
func (mp *MapPlotter) SampleCount() int {
	mp.mu.Lock()
	defer mp.mu.Unlock()
	return len(mp.samples)
}

// OutputDir returns the current output directory for plots.
func (mp *MapPlotter) OutputDir() string {
	mp.mu.Lock()
	defer mp.mu.Unlock()
	return mp.outputDir
}

// GeneratePlots writes the coverage time series and grid heatmaps as PNG
// files. Returns the number of plots generated and any error.
func (mp *MapPlotter) GeneratePlots(mapGrid, costmap *grid.Grid) (int, error) {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	if mp.outputDir == "" {
		return 0, fmt.Errorf("no output directory configured")
	}

	count := 0
	if len(mp.samples) > 0 {
		if err := mp.generateCoveragePlot(); err != nil {
			return count, fmt.Errorf("coverage plot: %w", err)
		}
		count++
	}
	if mapGrid != nil {
		file := filepath.Join(mp.outputDir, "map.png")
		if err := saveGridHeatmap(mapGrid, "Occupancy Grid", file); err != nil {
			return count, fmt.Errorf("map heatmap: %w", err)
		}
		count++
	}
	if costmap != nil {
		file := filepath.Join(mp.outputDir, "costmap.png")
		if err := saveGridHeatmap(costmap, "Costmap", file); err != nil {
			return count, fmt.Errorf("costmap heatmap: %w", err)
		}
		count++
	}
	return count, nil
}

// generateCoveragePlot creates a line plot of known-cell fraction over time.
func (mp *MapPlotter) generateCoveragePlot() error {
	p := plot.New()
	p.Title.Text = "Exploration Coverage"
	p.X.Label.Text = "Elapsed (s)"
	p.Y.Label.Text = "Explored Fraction"
	p.Y.Min = 0
	p.Y.Max = 1

	pts := make(plotter.XYs, 0, len(mp.samples))
	for _, s := range mp.samples {
		pts = append(pts, plotter.XY{X: s.Elapsed.Seconds(), Y: s.Coverage.ExploredFraction})
	}

	line, err := plotter.NewLine(pts)
	if err != nil {
		return err
	}
	line.Color = color.RGBA{R: 31, G: 158, B: 137, A: 255}
	line.Width = vg.Points(1.5)
	p.Add(line)
	p.Legend.Add("explored", line)
	p.Legend.Top = true
	p.Legend.Left = true

	file := filepath.Join(mp.outputDir, "coverage.png")
	if err := p.Save(10*vg.Inch, 5*vg.Inch, file); err != nil {
		return fmt.Errorf("save coverage plot: %w", err)
	}
	return nil
}

// gridXYZ adapts a grid to the plotter heatmap interface. Unknown cells
// map to -1 so they render at the bottom of the palette.
type gridXYZ struct {
	g *grid.Grid
}

func (d gridXYZ) Dims() (c, r int)   { return d.g.Width, d.g.Height }
func (d gridXYZ) Z(c, r int) float64 { return float64(d.g.At(r, c)) }
func (d gridXYZ) X(c int) float64    { return d.g.WorldX(c) }
func (d gridXYZ) Y(r int) float64    { return d.g.WorldY(r) }

// saveGridHeatmap renders a grid as a PNG heatmap in world coordinates.
func saveGridHeatmap(g *grid.Grid, title, file string) error {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "X (m)"
	p.Y.Label.Text = "Y (m)"

	pal := palette.Heat(64, 1)
	hm := plotter.NewHeatMap(gridXYZ{g: g}, pal)
	hm.Min = -1
	hm.Max = 100
	p.Add(hm)

	if err := p.Save(8*vg.Inch, 8*vg.Inch, file); err != nil {
		return fmt.Errorf("save heatmap: %w", err)
	}
	return nil
}

// FormatTimestamp generates a timestamp string for directory naming.
func FormatTimestamp(t time.Time) string {
	return t.Format("20060102_150405")
}

// MakePlotOutputDir creates a timestamped output directory path for plots.
func MakePlotOutputDir(baseDir string) string {
	return filepath.Join(baseDir, FormatTimestamp(time.Now()))
}
