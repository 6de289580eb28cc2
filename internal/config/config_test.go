package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.InDelta(t, 50.0, cfg.Analytics.MinTotalQuotes, 1e-9)
	assert.InDelta(t, 10.0, cfg.Analytics.MinSubmissions, 1e-9)
	assert.Equal(t, 2, cfg.Analytics.MinWeeksActive)
	assert.Equal(t, []float64{0, 20, 30, 40, 100}, cfg.Analytics.QualityTierEdges)
	assert.Equal(t, []float64{0, 20, 35, 100}, cfg.Analytics.RiskProfileEdges)
	assert.Equal(t, 4, cfg.Analytics.MediumRiskScore)
	assert.Equal(t, 6, cfg.Analytics.HighRiskScore)

	require.NoError(t, cfg.Validate())
}

func TestLoadWithoutFileUsesDefaults(t *testing.T) {
	// Run from a directory with no config.yaml candidates.
	chdir(t, t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default().Server.Port, cfg.Server.Port)
}

func TestLoadYAMLOverrides(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(file, []byte(`
server:
  port: 9191
analytics:
  min_total_quotes: 75
  medium_risk_score: 3
  high_risk_score: 5
logging:
  level: debug
`), 0o644))

	cfg, err := Load(file)
	require.NoError(t, err)

	assert.Equal(t, 9191, cfg.Server.Port)
	assert.InDelta(t, 75.0, cfg.Analytics.MinTotalQuotes, 1e-9)
	assert.Equal(t, 3, cfg.Analytics.MediumRiskScore)
	assert.Equal(t, "debug", cfg.Logging.Level)
	// Unlisted fields keep their defaults.
	assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, []float64{0, 20, 30, 40, 100}, cfg.Analytics.QualityTierEdges)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(file, []byte("server:\n  port: 9191\n"), 0o644))

	t.Setenv("AGENTSUMMARY_SERVER_PORT", "9999")
	t.Setenv("AGENTSUMMARY_ANALYTICS_MIN_SUBMISSIONS", "25")

	cfg, err := Load(file)
	require.NoError(t, err)
	assert.Equal(t, 9999, cfg.Server.Port)
	assert.InDelta(t, 25.0, cfg.Analytics.MinSubmissions, 1e-9)
}

func TestLoadExplicitFileMissing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.ErrorContains(t, err, "not found")
}

func TestValidateRejections(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"port out of range", func(c *Config) { c.Server.Port = 0 }},
		{"bad log level", func(c *Config) { c.Logging.Level = "chatty" }},
		{"no allowed origins", func(c *Config) { c.Security.AllowedOrigins = nil }},
		{"inverted risk cutoffs", func(c *Config) {
			c.Analytics.MediumRiskScore = 8
			c.Analytics.HighRiskScore = 4
		}},
		{"mismatched scale", func(c *Config) { c.Analytics.QualityTierEdges = []float64{0, 100} }},
		{"pong before ping", func(c *Config) { c.WebSocket.PongWait = c.WebSocket.PingPeriod }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestPipelineDefaultsForUnsetScales(t *testing.T) {
	block := AnalyticsConfig{
		MinTotalQuotes:    50,
		MinSubmissions:    10,
		MinWeeksActive:    2,
		MediumRiskScore:   4,
		HighRiskScore:     6,
		TopPerformerLimit: 10,
	}

	pipeline := block.Pipeline()
	assert.Equal(t, []float64{0, 20, 30, 40, 100}, pipeline.QualityTierEdges)
	assert.Equal(t, []string{"Poor", "Average", "Good", "Excellent"}, pipeline.QualityTierLabels)
	require.NoError(t, pipeline.Validate())
}

func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(old) })
}
