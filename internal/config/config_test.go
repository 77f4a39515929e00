package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "cfg.yaml")
	if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return p
}

func TestLoadFrom_Valid(t *testing.T) {
	p := writeConfig(t, `server:
  port: ":9000"
rate_limiter:
  user_limit: 20
  interval: 1h
pdf:
  engine: "Chrome"
  default_paper: "letter"
  paper_sizes:
    LETTER:
      width: 8.5
      height: 11
pack:
  strict_validation: true
  checklist_reflects_documents: true
metrics:
  enabled: false
`)
	cfg := LoadFrom(p)

	assert.Equal(t, ":9000", cfg.Server.Port)
	assert.Equal(t, 20, cfg.RateLimiter.UserLimit)
	assert.Equal(t, time.Hour, cfg.RateLimiter.Interval)
	assert.Equal(t, EngineChrome, cfg.PDF.Engine)
	assert.Equal(t, PaperSize{Width: 8.5, Height: 11}, cfg.Paper())
	assert.True(t, cfg.Strict())
	assert.True(t, cfg.Pack.ChecklistReflectsDocuments)
	assert.False(t, cfg.MetricsEnabled())
}

func TestLoadFrom_Defaults(t *testing.T) {
	cfg := LoadFrom(writeConfig(t, "{}\n"))

	assert.Equal(t, ":8080", cfg.Server.Port)
	assert.Equal(t, 1<<20, cfg.Server.BodyLimit)
	assert.Equal(t, 5*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, "info", cfg.Logger.Level)
	assert.Equal(t, EngineFPDF, cfg.PDF.Engine)
	assert.Equal(t, "A4", cfg.PDF.DefaultPaper)
	assert.Equal(t, 0.75, cfg.PDF.Margin)
	assert.Equal(t, 30, cfg.PDF.TimeoutSecs)
	assert.Equal(t, "/metrics", cfg.Metrics.Path)
	assert.False(t, cfg.Strict())
	assert.Equal(t, 0, cfg.RateLimiter.UserLimit)
	assert.True(t, cfg.MetricsEnabled())
}

func TestLoadFrom_EnvironmentOverrides(t *testing.T) {
	p := writeConfig(t, `server:
  port: ":9000"
`)
	t.Setenv("TENANCYPACK_SERVER_PORT", ":9100")
	t.Setenv("TENANCYPACK_PACK_STRICT_VALIDATION", "true")
	t.Setenv("TENANCYPACK_RATE_USER_LIMIT", "7")
	t.Setenv("CHROME_BIN", "/usr/bin/chromium")

	cfg := LoadFrom(p)

	assert.Equal(t, ":9100", cfg.Server.Port)
	assert.True(t, cfg.Strict())
	assert.Equal(t, 7, cfg.RateLimiter.UserLimit)
	assert.Equal(t, "/usr/bin/chromium", cfg.PDF.ChromePath)
}

func TestLoadFrom_PanicsOnInvalidValues(t *testing.T) {
	tests := []struct {
		name string
		yml  string
	}{
		{name: "negative user limit", yml: "rate_limiter:\n  user_limit: -1\n"},
		{name: "negative interval", yml: "rate_limiter:\n  interval: -1s\n"},
		{name: "unknown engine", yml: "pdf:\n  engine: wkhtml\n"},
		{name: "default paper missing", yml: "pdf:\n  default_paper: A3\n"},
		{name: "zero paper width", yml: "pdf:\n  paper_sizes:\n    A4:\n      width: 0\n      height: 11\n"},
		{name: "margin too large", yml: "pdf:\n  margin: 3\n"},
		{name: "negative timeout", yml: "pdf:\n  timeout_secs: -5\n"},
		{name: "broken yaml", yml: "server: [\n"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			p := writeConfig(t, tc.yml)
			defer func() {
				if recover() == nil {
					t.Fatalf("expected panic")
				}
			}()
			_ = LoadFrom(p)
		})
	}
}

func TestLoadFrom_MissingFilePanics(t *testing.T) {
	require.Panics(t, func() { LoadFrom(filepath.Join(t.TempDir(), "absent.yaml")) })
}

func TestLoad_UsesConfigPathEnv(t *testing.T) {
	p := writeConfig(t, `pdf:
  timeout_secs: 12
`)
	t.Setenv("CONFIG_PATH", p)
	cfg := Load()
	if cfg.PDF.TimeoutSecs != 12 {
		t.Fatalf("expected CONFIG_PATH to be used, got timeout %d", cfg.PDF.TimeoutSecs)
	}
}

func TestLoadFrom_ShippedConfig(t *testing.T) {
	cfg := LoadFrom(filepath.Join("..", "..", "config", "config.yaml"))

	assert.False(t, cfg.Strict(), "shipped config must accept any payload the form can send")
	assert.Equal(t, 0, cfg.RateLimiter.UserLimit)
	assert.Equal(t, EngineFPDF, cfg.PDF.Engine)
	assert.False(t, cfg.Pack.ChecklistReflectsDocuments)
}
