// Package runner resolves which files to report on and drives
// loader -> aggregate -> report for each of them in order.
package runner

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jgoulah/powerchart/internal/aggregate"
	"github.com/jgoulah/powerchart/internal/config"
	"github.com/jgoulah/powerchart/internal/loader"
	"github.com/jgoulah/powerchart/internal/logging"
	"github.com/jgoulah/powerchart/internal/report"
	"github.com/jgoulah/powerchart/pkg/models"
)

// Job is one input file and the granularity to aggregate it at
type Job struct {
	FileName    string
	Granularity models.Granularity
}

// Selection is the granularity chosen on the command line, if any
type Selection struct {
	Day   bool
	Month bool
	Year  bool
}

// Any reports whether a granularity flag was given
func (s Selection) Any() bool {
	return s.Day || s.Month || s.Year
}

// Granularity returns the selected granularity, Day when nothing was selected
func (s Selection) Granularity() models.Granularity {
	switch {
	case s.Year:
		return models.Year
	case s.Month:
		return models.Month
	default:
		return models.Day
	}
}

// Resolve turns command line arguments into jobs. Without file arguments the
// configured file name is used at the configured grouping, unless a flag
// selects one. With file arguments every file gets the selected granularity,
// Day if none was selected.
func Resolve(args []string, sel Selection, cfg *config.Config) []Job {
	if len(args) == 0 {
		g := cfg.Granularity()
		if sel.Any() {
			g = sel.Granularity()
		}
		return []Job{{FileName: cfg.FileName, Granularity: g}}
	}

	g := sel.Granularity()
	jobs := make([]Job, 0, len(args))
	for _, name := range args {
		jobs = append(jobs, Job{FileName: name, Granularity: g})
	}
	return jobs
}

// Publisher receives each aggregated table after it has been reported
type Publisher interface {
	PublishTable(stem, runID string, table *aggregate.Table) (int, error)
}

// Runner processes jobs strictly one after another
type Runner struct {
	cfg       *config.Config
	reporter  *report.Reporter
	publisher Publisher
	out       io.Writer
	log       *slog.Logger
	runID     string
}

// New creates a runner. publisher may be nil.
func New(cfg *config.Config, reporter *report.Reporter, publisher Publisher, out io.Writer, log *slog.Logger) *Runner {
	if out == nil {
		out = io.Discard
	}
	if log == nil {
		log = logging.Discard()
	}
	runID := uuid.NewString()
	return &Runner{
		cfg:       cfg,
		reporter:  reporter,
		publisher: publisher,
		out:       out,
		log:       logging.Component(log, "runner").With("run_id", runID),
		runID:     runID,
	}
}

// RunID identifies this invocation in logs and published messages
func (r *Runner) RunID() string {
	return r.runID
}

// Run processes every job in order. The first failure aborts the run.
func (r *Runner) Run(ctx context.Context, jobs []Job) error {
	fmt.Fprintf(r.out, "=== Report started at %s ===\n", time.Now().Format("2006-01-02 15:04:05 MST"))

	for i, job := range jobs {
		if err := ctx.Err(); err != nil {
			return err
		}

		fmt.Fprintf(r.out, "[%d/%d] %s by %s\n", i+1, len(jobs), job.FileName, job.Granularity)
		if err := r.runJob(ctx, job); err != nil {
			return fmt.Errorf("processing %s: %w", job.FileName, err)
		}
	}

	fmt.Fprintf(r.out, "✓ Processed %d file(s)\n", len(jobs))
	return nil
}

func (r *Runner) runJob(ctx context.Context, job Job) error {
	log := r.log.With("file", job.FileName, "granularity", job.Granularity.String())

	table, err := Build(r.cfg, job)
	if err != nil {
		return err
	}
	log.Debug("aggregated", "buckets", len(table.Buckets), "flows", table.Flows)

	csvPath, imagePath := report.Paths(r.cfg, job.FileName)
	if err := r.reporter.PersistAndRender(ctx, table, csvPath, imagePath, job.Granularity.String(), r.cfg.GetLabelDecimals()); err != nil {
		return err
	}

	if r.publisher != nil {
		n, err := r.publisher.PublishTable(report.Stem(job.FileName), r.runID, table)
		if err != nil {
			return fmt.Errorf("publishing: %w", err)
		}
		fmt.Fprintf(r.out, "✓ Published %d bucket(s)\n", n)
	}

	log.Info("report complete", "csv", csvPath, "image", imagePath)
	return nil
}

// Build loads and aggregates one job without writing anything
func Build(cfg *config.Config, job Job) (*aggregate.Table, error) {
	readings, err := loader.Load(cfg, job.FileName)
	if err != nil {
		return nil, err
	}

	table, err := aggregate.Aggregate(readings, job.Granularity)
	if err != nil {
		return nil, fmt.Errorf("aggregating: %w", err)
	}

	return table, nil
}
