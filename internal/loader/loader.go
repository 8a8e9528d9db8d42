// Package loader reads utility usage exports into readings.
package loader

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/jgoulah/powerchart/internal/config"
	"github.com/jgoulah/powerchart/internal/usageerr"
	"github.com/jgoulah/powerchart/pkg/models"
	"github.com/shopspring/decimal"
)

// Required column names, matched exactly
const (
	ColStartdate = "Startdate"
	ColPowerFlow = "powerFlow"
	ColUsage     = "Usage"
)

// InputPath resolves a file name against the configured input directory
func InputPath(cfg *config.Config, fileName string) string {
	return filepath.Join(cfg.InputDir, fileName)
}

// Load reads and parses the named export from the input directory
func Load(cfg *config.Config, fileName string) ([]models.Reading, error) {
	path := InputPath(cfg, fileName)

	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("opening %s: %w", path, usageerr.ErrFileNotFound)
		}
		return nil, fmt.Errorf("opening %s: %w: %v", path, usageerr.ErrIO, err)
	}
	defer file.Close()

	readings, err := Parse(file)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	return readings, nil
}

// Parse reads a CSV export with a header row naming Startdate, powerFlow and Usage.
// Other columns are ignored. Rows with an empty Usage cell are skipped.
func Parse(r io.Reader) ([]models.Reading, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	// Read header to find column indices
	header, err := reader.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("empty file, no header row: %w", usageerr.ErrParse)
	}
	if err != nil {
		return nil, fmt.Errorf("reading CSV header: %w: %v", usageerr.ErrParse, err)
	}

	dateCol, flowCol, usageCol := -1, -1, -1
	for i, col := range header {
		switch strings.TrimSpace(strings.TrimPrefix(col, "\ufeff")) {
		case ColStartdate:
			dateCol = i
		case ColPowerFlow:
			flowCol = i
		case ColUsage:
			usageCol = i
		}
	}

	var missing []string
	if dateCol == -1 {
		missing = append(missing, ColStartdate)
	}
	if flowCol == -1 {
		missing = append(missing, ColPowerFlow)
	}
	if usageCol == -1 {
		missing = append(missing, ColUsage)
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("missing required columns %s: %w", strings.Join(missing, ", "), usageerr.ErrParse)
	}

	// Parse data rows
	results := []models.Reading{}
	for row := 2; ; row++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading CSV row %d: %w: %v", row, usageerr.ErrParse, err)
		}

		usageStr := strings.TrimSpace(record[usageCol])
		if usageStr == "" {
			continue
		}

		usage, err := decimal.NewFromString(strings.ReplaceAll(usageStr, ",", ""))
		if err != nil {
			return nil, fmt.Errorf("row %d: invalid Usage %q: %w", row, usageStr, usageerr.ErrParse)
		}

		results = append(results, models.Reading{
			Startdate: strings.TrimSpace(record[dateCol]),
			Flow:      strings.TrimSpace(record[flowCol]),
			Usage:     usage,
		})
	}

	return results, nil
}
