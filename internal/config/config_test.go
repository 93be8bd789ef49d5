package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, "jwt_secret: gizli\n"))
	require.NoError(t, err)

	assert.Equal(t, 2350, cfg.Port)
	assert.Equal(t, "development", cfg.Env)
	assert.Equal(t, "mongodb://localhost:27017", cfg.Mongo.URI)
	assert.Equal(t, "santiyer", cfg.Mongo.Database)
	assert.Equal(t, "redis://localhost:6379/0", cfg.RedisURL)
	assert.Equal(t, float64(1), cfg.Media.MaxSizeMB)
	assert.Equal(t, 1920, cfg.Media.MaxWidthOrHeight)
	assert.Equal(t, 15, cfg.Cache.TTLSeconds)
	assert.Equal(t, "gizli", cfg.JWTSecret)
	assert.False(t, cfg.IsProduction())
	assert.Equal(t, ":2350", cfg.Addr())
}

func TestLoadNormalizesEnvAndOrigins(t *testing.T) {
	cfg, err := Load(writeConfig(t, `
env: " Production "
port: 8080
allowed_origins:
  - " https://santiyer.example.com/ "
  - ""
  - "*.santiyer.example.com"
`))
	require.NoError(t, err)

	assert.Equal(t, "production", cfg.Env)
	assert.True(t, cfg.IsProduction())
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, []string{"https://santiyer.example.com", "*.santiyer.example.com"}, cfg.AllowedOrigins)
}

func TestLoadRejectsUnknownFields(t *testing.T) {
	_, err := Load(writeConfig(t, "prot: 8080\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config: parse")
}

func TestLoadMissingExplicitFileFails(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yml"))
	require.Error(t, err)
}

func TestLoadMissingDefaultFileYieldsDefaults(t *testing.T) {
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 2350, cfg.Port)
	assert.Equal(t, "development", cfg.Env)
}
