package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/aretw0/gmboard/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "gmboard.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, ProviderGemini, cfg.Provider)
	assert.Equal(t, "STEP", cfg.StepKeyword)
	assert.Equal(t, []string{"05_", "steps", "etapes"}, cfg.StepMarkers)
	assert.Equal(t, domain.DefaultClocks(), cfg.Clocks)
	assert.Equal(t, slog.LevelInfo, cfg.Level())
}

func TestLoad_YAML(t *testing.T) {
	path := writeFile(t, `
dir: ./scenario
provider: openai
model: local-model
base_url: http://localhost:11434/v1
timeout: 30s
temperature: 0.1
step_keyword: ÉTAPE
step_markers: [etapes, steps]
clocks:
  - {id: doom, name: DOOM, current: 1, max: 3}
latch_ttl: 2m
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "./scenario", cfg.Dir)
	assert.Equal(t, ProviderOpenAI, cfg.Provider)
	assert.Equal(t, "local-model", cfg.Model)
	assert.Equal(t, 30*time.Second, cfg.Timeout)
	assert.InDelta(t, 0.1, cfg.Temperature, 1e-6)
	assert.Equal(t, "ÉTAPE", cfg.StepKeyword)
	assert.Equal(t, []string{"etapes", "steps"}, cfg.StepMarkers)
	assert.Equal(t, []domain.Clock{{ID: "doom", Name: "DOOM", Current: 1, Max: 3}}, cfg.Clocks)
	assert.Equal(t, 2*time.Minute, cfg.LatchTTL)
	assert.Equal(t, 8080, cfg.Port, "unset keys keep defaults")
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeFile(t, "provider: openai\nport: 9000\n")
	t.Setenv("GMBOARD_PROVIDER", "scripted")
	t.Setenv("GMBOARD_STEP_MARKERS", "acts,scenes")
	t.Setenv("GMBOARD_DEBUG", "true")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ProviderScripted, cfg.Provider)
	assert.Equal(t, 9000, cfg.Port)
	assert.Equal(t, []string{"acts", "scenes"}, cfg.StepMarkers)
	assert.Equal(t, slog.LevelDebug, cfg.Level())
}

func TestLoad_APIKeyFallback(t *testing.T) {
	t.Setenv("GMBOARD_API_KEY", "")
	t.Setenv("GEMINI_API_KEY", "from-gemini")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "from-gemini", cfg.APIKey)

	t.Setenv("GMBOARD_API_KEY", "explicit")
	cfg, err = Load("")
	require.NoError(t, err)
	assert.Equal(t, "explicit", cfg.APIKey)
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = Load(writeFile(t, "port: [not, a, number]"))
	assert.Error(t, err)

	t.Setenv("GMBOARD_TIMEOUT", "soon")
	_, err = Load("")
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"provider", func(c *Config) { c.Provider = "oracle" }},
		{"timeout", func(c *Config) { c.Timeout = -time.Second }},
		{"retries", func(c *Config) { c.MaxRetries = -1 }},
		{"doc chars", func(c *Config) { c.MaxDocumentChars = 0 }},
		{"keyword", func(c *Config) { c.StepKeyword = "  " }},
		{"port", func(c *Config) { c.Port = 70000 }},
		{"latch ttl", func(c *Config) { c.LatchTTL = 0 }},
		{"latch ttl under budget", func(c *Config) { c.LatchTTL = 2 * time.Minute }},
		{"latch ttl at budget", func(c *Config) { c.LatchTTL = c.GenerationBudget() }},
		{"clock", func(c *Config) { c.Clocks = []domain.Clock{{ID: "x", Current: 3, Max: 1}} }},
		{"log level", func(c *Config) { c.LogLevel = "chatty" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)
		})
	}
}

func TestGenerationBudget(t *testing.T) {
	tests := []struct {
		name    string
		timeout time.Duration
		retries int
		want    time.Duration
	}{
		{"defaults", 90 * time.Second, 2, 273 * time.Second},
		{"no retries", 30 * time.Second, 0, 30 * time.Second},
		{"zero timeout", 0, 1, 181 * time.Second},
		{"three retries", 10 * time.Second, 3, 47 * time.Second},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			cfg.Timeout = tt.timeout
			cfg.MaxRetries = tt.retries
			assert.Equal(t, tt.want, cfg.GenerationBudget())
		})
	}

	cfg := Default()
	assert.Greater(t, cfg.LatchTTL, cfg.GenerationBudget())
	require.NoError(t, cfg.Validate())
}
