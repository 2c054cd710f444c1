package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, dir, name, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644))
}

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, Defaults(), cfg)
	assert.Equal(t, ".dontreadme", cfg.OutputDir)
	assert.Equal(t, 2*time.Second, cfg.Watch.Debounce.Std())
	assert.Equal(t, 30*time.Second, cfg.History.Timeout.Std())
}

func TestLoad_OverlaysFileValues(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "dontreadme.yml", `
outputDir: .ai
include:
  - "src/**/*.ts"
scanner: treesitter
history:
  logLimit: 50
  timeout: 5s
watch:
  debounce: 500ms
`)

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, ".ai", cfg.OutputDir)
	assert.Equal(t, []string{"src/**/*.ts"}, cfg.Include)
	assert.Equal(t, ScannerTreeSitter, cfg.Scanner)
	assert.Equal(t, 50, cfg.History.LogLimit)
	assert.Equal(t, 1000, cfg.History.NumstatLimit, "unset fields keep defaults")
	assert.Equal(t, 5*time.Second, cfg.History.Timeout.Std())
	assert.Equal(t, 500*time.Millisecond, cfg.Watch.Debounce.Std())
	assert.Equal(t, Defaults().Exclude, cfg.Exclude)
}

func TestLoad_YamlExtension(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "dontreadme.yaml", "maxFileSize: 2048\n")

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, int64(2048), cfg.MaxFileSize)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"malformed yaml", "include: [unterminated\n"},
		{"bad duration", "history:\n  timeout: soon\n"},
		{"unknown scanner", "scanner: lsp\n"},
		{"negative size", "maxFileSize: -1\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			writeConfig(t, dir, "dontreadme.yml", tt.body)
			_, err := Load(dir)
			assert.Error(t, err)
		})
	}
}
