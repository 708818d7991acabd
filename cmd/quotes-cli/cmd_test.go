package main

import (
	"path/filepath"
	"testing"

	"quotes-cli/internal/config"
)

// isolateConfig clears QUOTES_* variables and returns a config path inside a
// temp dir; the .env lookup points at the same dir.
func isolateConfig(t *testing.T) string {
	t.Helper()
	for _, k := range []string{"QUOTES_BACKEND_HOST", "VITE_BACKEND_HOST", "QUOTES_STREAM_PATH", "QUOTES_TITLE", "QUOTES_LOG_LEVEL"} {
		t.Setenv(k, "")
	}
	dir := t.TempDir()
	prev := config.DotEnvPath
	config.DotEnvPath = filepath.Join(dir, ".env")
	t.Cleanup(func() { config.DotEnvPath = prev })
	return filepath.Join(dir, "config.toml")
}
