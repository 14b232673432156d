package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("DATABASE_URL", "postgres://localhost/confessions")
	t.Setenv("REDIS_URL", "redis://localhost:6379")
	t.Setenv("PUBLISHER_URL", "http://localhost:3001")
}

func TestLoadDefaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.AppEnv)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "devnet", cfg.PublisherNetwork)
	assert.Equal(t, "https://gateway.irys.xyz", cfg.GatewayBaseURL)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Empty(t, cfg.AnalyzerURL)
}

func TestLoadMissingRequired(t *testing.T) {
	tests := []struct {
		name  string
		unset string
	}{
		{"database", "DATABASE_URL"},
		{"redis", "REDIS_URL"},
		{"publisher", "PUBLISHER_URL"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setRequired(t)
			t.Setenv(tt.unset, "")

			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.unset)
		})
	}
}

func TestLoadAnalyzerRequiresKey(t *testing.T) {
	setRequired(t)
	t.Setenv("ANALYZER_URL", "https://api.anthropic.com")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ANALYZER_API_KEY")

	t.Setenv("ANALYZER_API_KEY", "sk-test")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "claude-3-5-sonnet-20241022", cfg.AnalyzerModel)
}
