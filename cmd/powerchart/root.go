package main

import (
	"fmt"
	"log/slog"

	"github.com/jgoulah/powerchart/internal/config"
	"github.com/jgoulah/powerchart/internal/logging"
	"github.com/jgoulah/powerchart/internal/publisher"
	"github.com/jgoulah/powerchart/internal/report"
	"github.com/jgoulah/powerchart/internal/runner"
	"github.com/jgoulah/powerchart/internal/viewer"
	"github.com/spf13/cobra"
)

var (
	cfgFile   string
	noShow    bool
	verbose   bool
	reportSel runner.Selection
)

var rootCmd = &cobra.Command{
	Use:   "powerchart [-d | -m | -y] [file...]",
	Short: "Aggregate utility usage exports and chart them",
	Long: `PowerChart reads utility usage exports (Startdate, powerFlow, Usage) from the
input directory, sums usage per day, month or year and power flow, writes the
aggregated table to <output_dir>/<stem>/<file> and renders a bar chart next to it.

Without file arguments the file name and grouping from the config are used.
Unknown grouping flags fall back to day.

The chart opens in a Chrome window by default (display: chrome); when Chrome
cannot be started it is opened with the system viewer instead. Use --no-show
or display: none to only write the files.`,
	Args:          cobra.ArbitraryArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runReport,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&noShow, "no-show", false, "Save the chart without displaying it")
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "Debug logging")
	addGranularityFlags(rootCmd, &reportSel)
}

// addGranularityFlags registers the mutually exclusive -d/-m/-y flags
func addGranularityFlags(cmd *cobra.Command, sel *runner.Selection) {
	cmd.Flags().BoolVarP(&sel.Day, "day", "d", false, "Group usage by day (default)")
	cmd.Flags().BoolVarP(&sel.Month, "month", "m", false, "Group usage by month")
	cmd.Flags().BoolVarP(&sel.Year, "year", "y", false, "Group usage by year")
	cmd.MarkFlagsMutuallyExclusive("day", "month", "year")
}

// getConfigPath returns the config file path
func getConfigPath() string {
	if cfgFile != "" {
		return cfgFile
	}
	return config.DefaultConfigPath()
}

// loadConfig loads the configuration file and applies global flag overrides
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(getConfigPath())
	if err != nil {
		return nil, err
	}
	if noShow {
		cfg.Display = config.DisplayNone
	}
	return cfg, nil
}

// newLogger builds the diagnostic logger
func newLogger() *slog.Logger {
	logCfg := logging.DefaultConfig()
	if verbose {
		logCfg.Level = slog.LevelDebug
	}
	return logging.New(logCfg)
}

func runReport(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	log := newLogger()
	out := cmd.OutOrStdout()

	v := viewer.New(cfg.GetDisplay(), cmd.InOrStdin(), out)
	rep := report.New(cfg, v, out, log)

	// Publishing is optional; a nil publisher skips it
	var pub runner.Publisher
	if cfg.MQTT.Enabled {
		p, err := publisher.New(cfg.MQTT)
		if err != nil {
			return fmt.Errorf("creating publisher: %w", err)
		}
		defer p.Close()
		pub = p
	}

	r := runner.New(cfg, rep, pub, out, log)
	return r.Run(cmd.Context(), runner.Resolve(args, reportSel, cfg))
}
