package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/jgoulah/powerchart/internal/aggregate"
	"github.com/jgoulah/powerchart/internal/report"
	"github.com/jgoulah/powerchart/internal/runner"
	"github.com/spf13/cobra"
)

var summarySel runner.Selection

var summaryCmd = &cobra.Command{
	Use:   "summary [-d | -m | -y] [file...]",
	Short: "Print aggregated usage",
	Long:  `Aggregates usage exports and prints the table to the terminal without writing any files.`,
	RunE:  runSummary,
}

func init() {
	addGranularityFlags(summaryCmd, &summarySel)
	rootCmd.AddCommand(summaryCmd)
}

func runSummary(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	for _, job := range runner.Resolve(args, summarySel, cfg) {
		table, err := runner.Build(cfg, job)
		if err != nil {
			return fmt.Errorf("processing %s: %w", job.FileName, err)
		}
		printTable(cmd.OutOrStdout(), report.Stem(job.FileName), table, cfg.GetLabelDecimals())
	}

	return nil
}

// printTable writes the table as aligned columns with a totals row
func printTable(w io.Writer, name string, table *aggregate.Table, decimals int) {
	fmt.Fprintf(w, "\n%s Usage by %s:\n", name, table.Granularity)

	if table.Empty() {
		fmt.Fprintf(w, "No data found for %s\n", name)
		return
	}

	rule := strings.Repeat("-", 12+14*len(table.Flows))
	fmt.Fprintln(w, rule)
	fmt.Fprintf(w, "%-12s", report.IndexColumn)
	for _, flow := range table.Flows {
		fmt.Fprintf(w, "  %12s", flow)
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, rule)

	for _, b := range table.Buckets {
		fmt.Fprintf(w, "%-12s", b.Label)
		for _, flow := range table.Flows {
			cell := "-"
			if v, ok := b.Value(flow); ok {
				cell = humanize.CommafWithDigits(v.InexactFloat64(), decimals)
			}
			fmt.Fprintf(w, "  %12s", cell)
		}
		fmt.Fprintln(w)
	}

	fmt.Fprintln(w, rule)
	fmt.Fprintf(w, "%-12s", "Total")
	for _, flow := range table.Flows {
		fmt.Fprintf(w, "  %12s", humanize.CommafWithDigits(table.Total(flow).InexactFloat64(), decimals))
	}
	fmt.Fprintf(w, "\n(%d buckets, kWh)\n", len(table.Buckets))
}
