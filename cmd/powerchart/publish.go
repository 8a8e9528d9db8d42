package main

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jgoulah/powerchart/internal/publisher"
	"github.com/jgoulah/powerchart/internal/report"
	"github.com/jgoulah/powerchart/internal/runner"
	"github.com/spf13/cobra"
)

var publishSel runner.Selection

var publishCmd = &cobra.Command{
	Use:   "publish [-d | -m | -y] [file...]",
	Short: "Publish aggregated usage to MQTT",
	Long:  `Aggregates usage exports and publishes one retained MQTT message per bucket to <topic_prefix>/<stem>/<granularity>/<bucket>.`,
	RunE:  runPublish,
}

func init() {
	addGranularityFlags(publishCmd, &publishSel)
	rootCmd.AddCommand(publishCmd)
}

func runPublish(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "=== Publish started at %s ===\n", time.Now().Format("2006-01-02 15:04:05 MST"))

	// Load config
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	// Create publisher
	pub, err := publisher.New(cfg.MQTT)
	if err != nil {
		return fmt.Errorf("creating publisher: %w", err)
	}
	defer pub.Close()

	runID := uuid.NewString()
	totalPublished := 0
	for _, job := range runner.Resolve(args, publishSel, cfg) {
		table, err := runner.Build(cfg, job)
		if err != nil {
			return fmt.Errorf("processing %s: %w", job.FileName, err)
		}

		if table.Empty() {
			fmt.Fprintf(out, "No data found in %s\n", job.FileName)
			continue
		}

		fmt.Fprintf(out, "Publishing %d %s buckets for %s...\n", len(table.Buckets), job.Granularity, job.FileName)
		n, err := pub.PublishTable(report.Stem(job.FileName), runID, table)
		totalPublished += n
		if err != nil {
			return fmt.Errorf("publishing %s: %w", job.FileName, err)
		}
		fmt.Fprintf(out, "✓ Published %d/%d buckets for %s\n", n, len(table.Buckets), job.FileName)
	}

	fmt.Fprintf(out, "\nTotal buckets published: %d\n", totalPublished)
	return nil
}
