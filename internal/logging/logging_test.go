package logging

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComponentLogger(t *testing.T) {
	var buf bytes.Buffer
	log := Component(New(Config{Level: slog.LevelInfo, Output: &buf}), "loader")

	log.Debug("hidden")
	log.Info("loaded", "rows", 3)

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "app=powerchart")
	assert.Contains(t, out, "component=loader")
	assert.Contains(t, out, "rows=3")
}

func TestDebugLevel(t *testing.T) {
	var buf bytes.Buffer
	New(Config{Level: slog.LevelDebug, Output: &buf}).Debug("shown")
	assert.Contains(t, buf.String(), "shown")
}
