package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "docsite.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	require.Contains(t, err.Error(), "not found")
}

func TestLoad_AppliesDefaults(t *testing.T) {
	path := writeConfig(t, "site:\n  title: Docs\n")
	cfg, err := Load(path)
	require.NoError(t, err)

	require.Equal(t, "./content", cfg.Content.Dir)
	require.Equal(t, "./site", cfg.Output.Directory)
	require.Equal(t, []string{"default"}, cfg.Platforms.Supported)
	require.Equal(t, "default", cfg.Platforms.Default)
	require.Equal(t, 8080, cfg.Serve.Port)
}

func TestLoad_ExpandsEnvironment(t *testing.T) {
	t.Setenv("DOCSITE_TEST_TITLE", "Expanded Title")
	path := writeConfig(t, "site:\n  title: ${DOCSITE_TEST_TITLE}\n")

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "Expanded Title", cfg.Site.Title)
}

func TestLoad_DefaultPlatformFromSupported(t *testing.T) {
	path := writeConfig(t, `
site:
  title: Docs
platforms:
  supported: [ts, js]
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "ts", cfg.Platforms.Default)
}

func TestLoad_GitSourceDefaults(t *testing.T) {
	path := writeConfig(t, `
site:
  title: Docs
content:
  git:
    url: https://example.com/docs.git
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	require.NotNil(t, cfg.Content.Git)
	require.Equal(t, "main", cfg.Content.Git.Branch)
	require.Equal(t, ".docsite-content", cfg.Content.Git.WorkDir)
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := writeConfig(t, "site: [unclosed")
	_, err := Load(path)
	require.Error(t, err)
}

func TestInit_RefusesOverwriteWithoutForce(t *testing.T) {
	path := filepath.Join(t.TempDir(), "docsite.yaml")
	require.NoError(t, Init(path, false))
	require.Error(t, Init(path, false))
	require.NoError(t, Init(path, true))

	// The example config must itself load cleanly.
	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "Documentation", cfg.Site.Title)
	require.Equal(t, "js", cfg.Platforms.Default)
}
