package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadRequiresDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")

	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestLoadDefaultsAndEnvOnly(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/app")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "0.0.0.0:5000", cfg.Addr)
	assert.Equal(t, "uploads", cfg.UploadDir)
	assert.Equal(t, "postgres://localhost/app", cfg.DatabaseURL)
	assert.NotEmpty(t, cfg.SessionSecret)
}

func TestLoadYAMLFileWithEnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(
		"addr: 127.0.0.1:8080\n"+
			"database_url: postgres://file/app\n"+
			"session_secret: file-secret\n"+
			"moderation_url: http://mod.local/check\n",
	), 0644))

	t.Setenv("DATABASE_URL", "postgres://env/app")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:8080", cfg.Addr)
	// Environment wins over the file.
	assert.Equal(t, "postgres://env/app", cfg.DatabaseURL)
	assert.Equal(t, "file-secret", cfg.SessionSecret)
	assert.Equal(t, "http://mod.local/check", cfg.ModerationURL)
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("addr: [unclosed"), 0644))

	_, err := Load(path)
	assert.Error(t, err)
}
