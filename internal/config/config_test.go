package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	t.Setenv("NOMADKIT_BASE_URL", "")
	t.Setenv("NOMADKIT_TIMEOUT", "")

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.hcl"))
	require.NoError(t, err)
	assert.Equal(t, DefaultBaseURL, cfg.Archive.BaseURL)
	assert.Equal(t, 1000, cfg.Plot.Width)
}

func TestLoadFile(t *testing.T) {
	t.Setenv("NOMADKIT_BASE_URL", "")
	t.Setenv("NOMADKIT_TIMEOUT", "")

	path := filepath.Join(t.TempDir(), "nomadkit.hcl")
	err := os.WriteFile(path, []byte(`
archive {
  base_url = "http://localhost:8000/api/v1"
  timeout  = "5s"
}

plot {
  width = 640
}
`), 0o644)
	require.NoError(t, err)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8000/api/v1", cfg.Archive.BaseURL)
	d, err := cfg.Archive.TimeoutDuration()
	require.NoError(t, err)
	assert.Equal(t, 5*time.Second, d)
	assert.Equal(t, 640, cfg.Plot.Width)
	assert.Equal(t, 700, cfg.Plot.Height, "unset fields keep defaults")
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("NOMADKIT_BASE_URL", "http://mirror/api/v1")
	t.Setenv("NOMADKIT_TIMEOUT", "2m")

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.hcl"))
	require.NoError(t, err)
	assert.Equal(t, "http://mirror/api/v1", cfg.Archive.BaseURL)
	assert.Equal(t, "2m", cfg.Archive.Timeout)
}

func TestLoadRejectsBadTimeout(t *testing.T) {
	t.Setenv("NOMADKIT_BASE_URL", "")
	t.Setenv("NOMADKIT_TIMEOUT", "")

	path := filepath.Join(t.TempDir(), "nomadkit.hcl")
	require.NoError(t, os.WriteFile(path, []byte("archive {\n  timeout = \"soon\"\n}\n"), 0o644))

	_, err := Load(path)
	assert.ErrorContains(t, err, "archive.timeout")
}

func TestLoadRejectsMalformedHCL(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nomadkit.hcl")
	require.NoError(t, os.WriteFile(path, []byte("archive {"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}
