package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"

	"github.com/jgoulah/powerchart/internal/aggregate"
	"github.com/jgoulah/powerchart/internal/usageerr"
)

// IndexColumn heads the bucket label column of the output CSV
const IndexColumn = "Startdate"

// WriteCSV writes the table with the bucket label first and one column per flow.
// Cells absent from the table are left empty.
func WriteCSV(w io.Writer, table *aggregate.Table) error {
	writer := csv.NewWriter(w)

	header := append([]string{IndexColumn}, table.Flows...)
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("writing CSV header: %w", err)
	}

	for _, b := range table.Buckets {
		record := make([]string, 0, len(table.Flows)+1)
		record = append(record, b.Label)
		for _, flow := range table.Flows {
			if v, ok := b.Value(flow); ok {
				record = append(record, v.String())
			} else {
				record = append(record, "")
			}
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("writing CSV row %s: %w", b.Label, err)
		}
	}

	writer.Flush()
	return writer.Error()
}

// SaveCSV writes the table to path, replacing any existing file
func SaveCSV(path string, table *aggregate.Table) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w: %v", path, usageerr.ErrIO, err)
	}

	if err := WriteCSV(file, table); err != nil {
		file.Close()
		return fmt.Errorf("writing %s: %w: %v", path, usageerr.ErrIO, err)
	}

	if err := file.Close(); err != nil {
		return fmt.Errorf("closing %s: %w: %v", path, usageerr.ErrIO, err)
	}

	return nil
}
