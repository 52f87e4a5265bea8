package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "memory", cfg.Cache.Driver)
	assert.Equal(t, 384, cfg.Embedding.Dimension)
	assert.Equal(t, 10, cfg.Retrieval.MaxResults)
	assert.Equal(t, 3, cfg.Retrieval.TopProducts)
	assert.Equal(t, 0.3, cfg.Retrieval.SimilarityThreshold)
}

func TestLoad_YAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  port: 9090
retrieval:
  max_results: 20
  top_products: 5
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 20, cfg.Retrieval.MaxResults)
	assert.Equal(t, 5, cfg.Retrieval.TopProducts)
	// Untouched sections keep their defaults.
	assert.Equal(t, "memory", cfg.Cache.Driver)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("SERVER_PORT", "7070")
	t.Setenv("DATABASE_URL", "postgres://db:5432/test")
	t.Setenv("REDIS_URL", "redis://cache:6379")
	t.Setenv("GROQ_API_KEY", "gsk-test")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 7070, cfg.Server.Port)
	assert.Equal(t, "postgres://db:5432/test", cfg.Database.DSN)
	assert.Equal(t, "redis", cfg.Cache.Driver, "REDIS_URL switches the cache driver")
	assert.Equal(t, "cache:6379", cfg.Cache.Redis.Addr)
	assert.Equal(t, "gsk-test", cfg.LLM.APIKey)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load("/nonexistent/config.yaml")
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad port", func(c *Config) { c.Server.Port = 0 }},
		{"bad cache driver", func(c *Config) { c.Cache.Driver = "memcached" }},
		{"zero dimension", func(c *Config) { c.Embedding.Dimension = 0 }},
		{"max results too large", func(c *Config) { c.Retrieval.MaxResults = 100 }},
		{"top products exceeds cap", func(c *Config) { c.Retrieval.TopProducts = 11 }},
		{"threshold out of range", func(c *Config) { c.Retrieval.SimilarityThreshold = 1.5 }},
		{"zero llm timeout", func(c *Config) { c.LLM.Timeout = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}

	assert.NoError(t, DefaultConfig().Validate())
}
