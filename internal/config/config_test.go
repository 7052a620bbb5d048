package config

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Omkesh-Jadhav/chaturVima-sub001/internal/layout"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, layout.A4, cfg.PageSize())
	assert.Equal(t, 500*time.Millisecond, cfg.Capture.SettleDelay)
	assert.Equal(t, 2.0, cfg.Capture.Scale)
	assert.Equal(t, "data-chart", cfg.Capture.Attribute)
	assert.Equal(t, 30*time.Second, cfg.Capture.Timeout)
	assert.Equal(t, int64(1440), cfg.Capture.ViewportWidth)
	assert.Equal(t, int64(900), cfg.Capture.ViewportHeight)
	assert.Equal(t, ":8090", cfg.Server.Addr)
	assert.Equal(t, "./data/reports.db", cfg.Archive.Path)
	assert.Empty(t, cfg.Tracing.Endpoint)
	assert.Equal(t, int64(8192), cfg.Drafting.MaxTokens)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Len(t, cfg.CaptureOptions(), 2)
}

func TestLoadFileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
page:
  width: 216
  height: 279
  margin: 18
capture:
  settle_delay: 1s
  draw_from_model: true
server:
  addr: ":9000"
log:
  level: debug
`), 0o644))
	t.Setenv("REPORT_SERVER_ADDR", ":9100")
	t.Setenv("REPORT_TRACING_ENDPOINT", "localhost:4318")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, layout.PageSize{Width: 216, Height: 279, Margin: 18}, cfg.PageSize())
	assert.Equal(t, time.Second, cfg.Capture.SettleDelay)
	assert.True(t, cfg.Capture.DrawFromModel)
	assert.Equal(t, ":9100", cfg.Server.Addr)
	assert.Equal(t, "localhost:4318", cfg.Tracing.Endpoint)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "data-chart", cfg.ChromeOptions().Attribute)
}

func TestLoadRejectsBadValues(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)

	t.Setenv("REPORT_PAGE_MARGIN", "200")
	_, err = Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "margin")
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(LogConfig{Level: "warn"}, &buf)
	logger.Info().Msg("hidden")
	logger.Warn().Msg("shown")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"message":"shown"`)

	assert.Equal(t, zerolog.InfoLevel, NewLogger(LogConfig{Level: "loud"}, &buf).GetLevel())
	assert.Equal(t, zerolog.InfoLevel, NewLogger(LogConfig{}, &buf).GetLevel())

	buf.Reset()
	pretty := NewLogger(LogConfig{Level: "info", Pretty: true}, &buf)
	pretty.Info().Msg("console")
	assert.Contains(t, buf.String(), "console")
	assert.NotContains(t, buf.String(), `"message"`)
}
