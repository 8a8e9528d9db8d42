package runner

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/jgoulah/powerchart/internal/aggregate"
	"github.com/jgoulah/powerchart/internal/config"
	"github.com/jgoulah/powerchart/internal/report"
	"github.com/jgoulah/powerchart/internal/usageerr"
	"github.com/jgoulah/powerchart/internal/viewer"
	"github.com/jgoulah/powerchart/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const export = `Startdate,powerFlow,Usage
2023-01-01,Received,10
2023-01-01,Delivered,3
2023-02-15,Received,7
`

type published struct {
	stem  string
	runID string
	table *aggregate.Table
}

type fakePublisher struct {
	calls []published
}

func (f *fakePublisher) PublishTable(stem, runID string, table *aggregate.Table) (int, error) {
	f.calls = append(f.calls, published{stem: stem, runID: runID, table: table})
	return len(table.Buckets), nil
}

func testConfig(t *testing.T, files map[string]string) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.InputDir = t.TempDir()
	cfg.OutputDir = t.TempDir()
	cfg.ChartWidth, cfg.ChartHeight = 4, 3
	cfg.Display = config.DisplayNone

	for name, body := range files {
		require.NoError(t, os.WriteFile(filepath.Join(cfg.InputDir, name), []byte(body), 0644))
	}
	return cfg
}

func TestResolveWithoutArgsUsesConfig(t *testing.T) {
	cfg := config.Default()

	jobs := Resolve(nil, Selection{}, cfg)
	assert.Equal(t, []Job{{FileName: "input.csv", Granularity: models.Day}}, jobs)

	// A flag without files picks the grouping for the configured file
	jobs = Resolve(nil, Selection{Month: true}, cfg)
	assert.Equal(t, []Job{{FileName: "input.csv", Granularity: models.Month}}, jobs)

	cfg.FileName = "march.csv"
	cfg.DateGrouping = "Y"
	jobs = Resolve([]string{}, Selection{}, cfg)
	assert.Equal(t, []Job{{FileName: "march.csv", Granularity: models.Year}}, jobs)
}

func TestResolveArgsOverrideConfig(t *testing.T) {
	cfg := config.Default()
	cfg.DateGrouping = "Y"

	tests := []struct {
		name string
		sel  Selection
		want models.Granularity
	}{
		{"no flag", Selection{}, models.Day},
		{"day", Selection{Day: true}, models.Day},
		{"month", Selection{Month: true}, models.Month},
		{"year", Selection{Year: true}, models.Year},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			jobs := Resolve([]string{"a.csv", "b.csv"}, tt.sel, cfg)
			assert.Equal(t, []Job{
				{FileName: "a.csv", Granularity: tt.want},
				{FileName: "b.csv", Granularity: tt.want},
			}, jobs)
		})
	}
}

func TestRunWritesOutputsPerFile(t *testing.T) {
	cfg := testConfig(t, map[string]string{"jan.csv": export, "feb.csv": export})
	pub := &fakePublisher{}
	var out bytes.Buffer

	r := New(cfg, report.New(cfg, viewer.Nop{}, &out, nil), pub, &out, nil)
	jobs := Resolve([]string{"jan.csv", "feb.csv"}, Selection{Month: true}, cfg)

	require.NoError(t, r.Run(context.Background(), jobs))

	for _, stem := range []string{"jan", "feb"} {
		assert.FileExists(t, filepath.Join(cfg.OutputDir, stem, stem+".csv"))
		assert.FileExists(t, filepath.Join(cfg.OutputDir, stem, stem+".png"))
	}

	data, err := os.ReadFile(filepath.Join(cfg.OutputDir, "jan", "jan.csv"))
	require.NoError(t, err)
	assert.Equal(t, "Startdate,Delivered,Received\n2023-01,3,10\n2023-02,0,7\n", string(data))

	require.Len(t, pub.calls, 2)
	assert.Equal(t, "jan", pub.calls[0].stem)
	assert.Equal(t, r.RunID(), pub.calls[0].runID)
	assert.Contains(t, out.String(), "✓ Processed 2 file(s)")
}

func TestRunDefaultConfigProcessesInputAtDay(t *testing.T) {
	cfg := testConfig(t, map[string]string{"input.csv": export})
	r := New(cfg, report.New(cfg, viewer.Nop{}, nil, nil), nil, nil, nil)

	require.NoError(t, r.Run(context.Background(), Resolve(nil, Selection{}, cfg)))

	data, err := os.ReadFile(filepath.Join(cfg.OutputDir, "input", "input.csv"))
	require.NoError(t, err)
	assert.Equal(t, "Startdate,Delivered,Received\n2023-01-01,3,10\n2023-02-15,,7\n", string(data))
}

func TestRunEmptyInput(t *testing.T) {
	cfg := testConfig(t, map[string]string{"empty.csv": "Startdate,powerFlow,Usage\n"})
	r := New(cfg, report.New(cfg, viewer.Nop{}, nil, nil), nil, nil, nil)

	require.NoError(t, r.Run(context.Background(), []Job{{FileName: "empty.csv", Granularity: models.Month}}))

	data, err := os.ReadFile(filepath.Join(cfg.OutputDir, "empty", "empty.csv"))
	require.NoError(t, err)
	assert.Equal(t, "Startdate\n", string(data))
	assert.FileExists(t, filepath.Join(cfg.OutputDir, "empty", "empty.png"))
}

func TestRunAbortsOnFirstFailure(t *testing.T) {
	cfg := testConfig(t, map[string]string{
		"bad.csv":  "Startdate,powerFlow,Usage\nyesterday,Received,1\n",
		"good.csv": export,
	})
	r := New(cfg, report.New(cfg, viewer.Nop{}, nil, nil), nil, nil, nil)

	err := r.Run(context.Background(), []Job{
		{FileName: "missing.csv"},
		{FileName: "good.csv"},
	})
	assert.ErrorIs(t, err, usageerr.ErrFileNotFound)
	assert.NoDirExists(t, filepath.Join(cfg.OutputDir, "good"))

	err = r.Run(context.Background(), []Job{{FileName: "bad.csv"}, {FileName: "good.csv"}})
	assert.ErrorIs(t, err, usageerr.ErrDateParse)
	assert.NoDirExists(t, filepath.Join(cfg.OutputDir, "good"))
}

func TestBuild(t *testing.T) {
	cfg := testConfig(t, map[string]string{"input.csv": export})

	table, err := Build(cfg, Job{FileName: "input.csv", Granularity: models.Year})
	require.NoError(t, err)
	require.Len(t, table.Buckets, 1)
	assert.Equal(t, "2023", table.Buckets[0].Label)
	assert.Equal(t, "17", table.Total("Received").String())
}
