package config

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, 2*time.Hour, cfg.SessionIdleTimeout)
	assert.Equal(t, 5, cfg.SessionCodeLength)
	assert.Equal(t, ChartConfig{Width: 800, Height: 400}, cfg.Chart)
	assert.Equal(t, LogConfig{Level: "info", Format: "text"}, cfg.Log)
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("BQ_ADDR", "127.0.0.1:9000")
	t.Setenv("BQ_SESSION_IDLE_TIMEOUT", "30m")
	t.Setenv("BQ_CHART_WIDTH", "1024")
	t.Setenv("BQ_LOG_FORMAT", "json")
	t.Setenv("BQ_LOG_LEVEL", "debug")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:9000", cfg.Addr)
	assert.Equal(t, 30*time.Minute, cfg.SessionIdleTimeout)
	assert.Equal(t, 1024, cfg.Chart.Width)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoad_Invalid(t *testing.T) {
	tests := map[string]string{
		"BQ_SESSION_IDLE_TIMEOUT": "soon",
		"BQ_SESSION_CODE_LENGTH":  "2",
		"BQ_LOG_FORMAT":           "xml",
		"BQ_LOG_LEVEL":            "loud",
		"BQ_CHART_HEIGHT":         "10",
	}
	for key, val := range tests {
		t.Run(key, func(t *testing.T) {
			t.Setenv(key, val)
			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger, err := LogConfig{Level: "warn", Format: "json"}.NewLogger(&buf)
	require.NoError(t, err)

	logger.Info("hidden")
	logger.Warn("shown", "session", "ABCDE")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"session":"ABCDE"`)
}

func TestLoadChart(t *testing.T) {
	t.Setenv("BQ_SESSION_CODE_LENGTH", "2")
	t.Setenv("BQ_LOG_FORMAT", "xml")
	t.Setenv("BQ_CHART_WIDTH", "640")

	c, err := LoadChart()
	require.NoError(t, err, "server settings do not affect chart loading")
	assert.Equal(t, ChartConfig{Width: 640, Height: 400}, c)

	t.Setenv("BQ_CHART_HEIGHT", "10")
	_, err = LoadChart()
	assert.Error(t, err)
}
