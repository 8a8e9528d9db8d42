package viewer

import (
	"bytes"
	"context"
	"errors"
	"io"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jgoulah/powerchart/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSelectsMode(t *testing.T) {
	assert.IsType(t, Nop{}, New(config.DisplayNone, nil, nil))
	assert.IsType(t, &System{}, New(config.DisplaySystem, nil, nil))
	assert.IsType(t, &Chrome{}, New(config.DisplayChrome, nil, nil))
	assert.IsType(t, &Chrome{}, New("", nil, nil))
}

func TestNopShow(t *testing.T) {
	assert.NoError(t, Nop{}.Show(context.Background(), "chart.png"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, Nop{}.Show(ctx, "chart.png"), context.Canceled)
}

func TestSystemShowWaitsForEnter(t *testing.T) {
	var opened string
	var out bytes.Buffer
	v := &System{
		In:  strings.NewReader("\n"),
		Out: &out,
		Open: func(path string) error {
			opened = path
			return nil
		},
	}

	require.NoError(t, v.Show(context.Background(), "chart.png"))

	abs, err := filepath.Abs("chart.png")
	require.NoError(t, err)
	assert.Equal(t, abs, opened)
	assert.Contains(t, out.String(), "press Enter")
}

func TestSystemShowEOFIsDismissal(t *testing.T) {
	v := &System{In: strings.NewReader(""), Out: io.Discard, Open: func(string) error { return nil }}
	assert.NoError(t, v.Show(context.Background(), "chart.png"))
}

func TestSystemShowOpenFailure(t *testing.T) {
	boom := errors.New("no viewer")
	v := &System{In: strings.NewReader("\n"), Out: io.Discard, Open: func(string) error { return boom }}

	err := v.Show(context.Background(), "chart.png")
	assert.ErrorIs(t, err, boom)
}

func TestSystemShowCancelled(t *testing.T) {
	pr, pw := io.Pipe()
	defer pw.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	v := &System{In: pr, Out: io.Discard, Open: func(string) error { return nil }}
	assert.ErrorIs(t, v.Show(ctx, "chart.png"), context.Canceled)
}

type recordingViewer struct {
	shown []string
}

func (r *recordingViewer) Show(ctx context.Context, path string) error {
	r.shown = append(r.shown, path)
	return nil
}

func TestChromeFallsBackWhenBrowserMissing(t *testing.T) {
	fallback := &recordingViewer{}
	var out bytes.Buffer
	v := &Chrome{
		ExecPath: filepath.Join(t.TempDir(), "no-such-chrome"),
		Fallback: fallback,
		Out:      &out,
	}

	require.NoError(t, v.Show(context.Background(), "chart.png"))
	assert.Equal(t, []string{"chart.png"}, fallback.shown)
	assert.Contains(t, out.String(), "using the system viewer")
}

func TestChromeWithoutFallbackFails(t *testing.T) {
	v := &Chrome{ExecPath: filepath.Join(t.TempDir(), "no-such-chrome")}

	err := v.Show(context.Background(), "chart.png")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "opening chart window")
}

func TestNewChromeFallsBackToSystem(t *testing.T) {
	v, ok := New(config.DisplayChrome, nil, nil).(*Chrome)
	require.True(t, ok)
	assert.IsType(t, &System{}, v.Fallback)
}

func TestFileURL(t *testing.T) {
	u, err := FileURL("out/chart.png")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(u, "file://"))
	assert.True(t, strings.HasSuffix(u, "/out/chart.png"))
}
