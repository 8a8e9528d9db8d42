// Package report persists aggregated usage tables and renders them as charts.
package report

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/jgoulah/powerchart/internal/aggregate"
	"github.com/jgoulah/powerchart/internal/config"
	"github.com/jgoulah/powerchart/internal/logging"
	"github.com/jgoulah/powerchart/internal/usageerr"
	"github.com/jgoulah/powerchart/internal/viewer"
	"gonum.org/v1/plot/vg"
)

// Stem returns the base file name without its extension
func Stem(fileName string) string {
	base := filepath.Base(fileName)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// Paths returns the output CSV and image paths for an input file:
// <output_dir>/<stem>/<file name> and <output_dir>/<stem>/<stem>.<image format>
func Paths(cfg *config.Config, fileName string) (csvPath, imagePath string) {
	stem := Stem(fileName)
	dir := filepath.Join(cfg.OutputDir, stem)
	return filepath.Join(dir, filepath.Base(fileName)), filepath.Join(dir, stem+"."+cfg.GetImageFormat())
}

// Reporter writes the aggregated CSV and chart, then shows the chart
type Reporter struct {
	cfg    *config.Config
	viewer viewer.Viewer
	out    io.Writer
	log    *slog.Logger
}

// New creates a reporter. Progress lines go to out.
func New(cfg *config.Config, v viewer.Viewer, out io.Writer, log *slog.Logger) *Reporter {
	if v == nil {
		v = viewer.Nop{}
	}
	if out == nil {
		out = io.Discard
	}
	if log == nil {
		log = logging.Discard()
	}
	return &Reporter{cfg: cfg, viewer: v, out: out, log: logging.Component(log, "report")}
}

// PersistAndRender writes the table as CSV, renders and saves the chart, then
// blocks until the viewer is dismissed. The output directory is created if needed.
func (r *Reporter) PersistAndRender(ctx context.Context, table *aggregate.Table, csvPath, imagePath, xlabel string, decimals int) error {
	dir := filepath.Dir(csvPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating output directory %s: %w: %v", dir, usageerr.ErrIO, err)
	}

	if err := SaveCSV(csvPath, table); err != nil {
		return err
	}
	r.reportWritten(csvPath)

	if err := os.MkdirAll(filepath.Dir(imagePath), 0755); err != nil {
		return fmt.Errorf("creating output directory %s: %w: %v", filepath.Dir(imagePath), usageerr.ErrIO, err)
	}

	w, h := r.cfg.GetChartSize()
	opts := ChartOptions{
		XLabel:   xlabel,
		Decimals: decimals,
		Width:    vg.Length(w) * vg.Inch,
		Height:   vg.Length(h) * vg.Inch,
	}
	if err := SaveChart(imagePath, table, opts); err != nil {
		return fmt.Errorf("writing %s: %w: %v", imagePath, usageerr.ErrIO, err)
	}
	r.reportWritten(imagePath)

	r.log.Debug("showing chart", "path", imagePath)
	if err := r.viewer.Show(ctx, imagePath); err != nil {
		return fmt.Errorf("showing chart: %w", err)
	}

	return nil
}

func (r *Reporter) reportWritten(path string) {
	info, err := os.Stat(path)
	if err != nil {
		r.log.Warn("stat written file", "path", path, "error", err)
		return
	}
	fmt.Fprintf(r.out, "✓ Wrote %s (%s)\n", path, humanize.Bytes(uint64(info.Size())))
}
