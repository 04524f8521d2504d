// Package monitor renders tracked-field sample buffers to PNG time-series
// plots for offline diagnostics. This is a debugging aid, not a rendering
// surface: it snapshots buffers and writes files after a run.
package monitor

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/banshee-data/fieldscope/internal/sample"
	"github.com/banshee-data/fieldscope/internal/track"
)

// SeriesPlotter writes one PNG per tracked field into an output directory.
type SeriesPlotter struct {
	mu        sync.Mutex
	outputDir string
}

// NewSeriesPlotter creates a plotter writing into outputDir, creating it if
// needed.
func NewSeriesPlotter(outputDir string) (*SeriesPlotter, error) {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, fmt.Errorf("monitor: creating output dir: %w", err)
	}
	return &SeriesPlotter{outputDir: outputDir}, nil
}

// WriteSourcePlots snapshots every tracked field of src and writes its
// time series. Returns the number of plots written.
func (sp *SeriesPlotter) WriteSourcePlots(src *track.Source) (int, error) {
	sp.mu.Lock()
	defer sp.mu.Unlock()

	written := 0
	for _, f := range src.Fields() {
		samples := f.Data.Snapshot()
		if len(samples) == 0 {
			continue
		}
		if err := sp.writeSeries(f.ID, samples); err != nil {
			return written, fmt.Errorf("monitor: %s: %w", f.ID, err)
		}
		written++
	}
	return written, nil
}

func (sp *SeriesPlotter) writeSeries(id string, samples []sample.Sample) error {
	p := plot.New()
	p.Title.Text = id
	p.X.Label.Text = "Time (s)"
	p.Y.Label.Text = "Value"

	pts := make(plotter.XYs, 0, len(samples))
	t0 := samples[0].Time
	for _, s := range samples {
		pts = append(pts, plotter.XY{X: s.Time - t0, Y: s.Value})
	}

	line, err := plotter.NewLine(pts)
	if err != nil {
		return err
	}
	line.Width = vg.Points(1)
	p.Add(line)

	file := filepath.Join(sp.outputDir, plotFileName(id))
	return p.Save(14*vg.Inch, 6*vg.Inch, file)
}

// plotFileName flattens a source id into a safe file name.
func plotFileName(id string) string {
	safe := strings.NewReplacer("/", "_", " ", "_").Replace(id)
	return safe + ".png"
}
