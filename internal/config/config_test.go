package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/jgoulah/powerchart/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)

	assert.Equal(t, Default(), cfg)
	assert.Equal(t, "input.csv", cfg.FileName)
	assert.Equal(t, models.Day, cfg.Granularity())
	assert.Equal(t, 1, cfg.GetLabelDecimals())
}

func TestLoadOverlaysDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("date_grouping: Y\nlabel_decimals: 3\ndisplay: none\n"), 0600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, models.Year, cfg.Granularity())
	assert.Equal(t, 3, cfg.GetLabelDecimals())
	assert.Equal(t, DisplayNone, cfg.GetDisplay())
	// Untouched keys keep their defaults
	assert.Equal(t, "./input/", cfg.InputDir)
	assert.Equal(t, "input.csv", cfg.FileName)
}

func TestLoadMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("label_decimals: [oops"), 0600))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := Default()
	cfg.DateGrouping = "M"
	cfg.MQTT = MQTTConfig{Enabled: true, Broker: "localhost:1883"}

	require.NoError(t, Save(path, cfg))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestGetters(t *testing.T) {
	cfg := &Config{LabelDecimals: -2, ImageFormat: ".SVG", Display: "System"}

	assert.Equal(t, 0, cfg.GetLabelDecimals())
	assert.Equal(t, "svg", cfg.GetImageFormat())
	assert.Equal(t, DisplaySystem, cfg.GetDisplay())

	w, h := cfg.GetChartSize()
	assert.Equal(t, 10.0, w)
	assert.Equal(t, 6.0, h)

	cfg.ImageFormat = "bmp"
	assert.Equal(t, "png", cfg.GetImageFormat())

	assert.Equal(t, "power_usage", cfg.MQTT.GetTopicPrefix())
	assert.Equal(t, "powerchart", cfg.MQTT.GetClientID())
	assert.Equal(t, "home/energy", MQTTConfig{TopicPrefix: "home/energy/"}.GetTopicPrefix())
}
