package build

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/docsite/internal/config"
)

func siteFixture(t *testing.T) *config.Config {
	t.Helper()
	content := t.TempDir()
	write := func(rel, body string) {
		path := filepath.Join(content, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	}
	write("index.md", "---\ntitle: Home\n---\nWelcome.\n")
	write("guide/install.md", "---\ntitle: Install\n---\n:::fragment install\n")
	write("guide/install.js.md", "npm install\n")
	write("guide/logo.png", "png-bytes")

	return &config.Config{
		Site:      config.SiteConfig{Title: "Docs"},
		Content:   config.ContentConfig{Dir: content},
		Platforms: config.PlatformsConfig{Supported: []string{"js", "ts"}, Default: "js"},
		Output:    config.OutputConfig{Directory: filepath.Join(t.TempDir(), "site"), Clean: true},
	}
}

func TestPipeline_RendersSite(t *testing.T) {
	cfg := siteFixture(t)
	p, err := New(cfg, Options{})
	require.NoError(t, err)

	report, err := p.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, OutcomeSuccess, report.Outcome)
	require.Equal(t, 2, report.Routes)
	require.Equal(t, 2, report.RenderedPages)
	require.NotEmpty(t, report.ID)

	out := cfg.Output.Directory
	for _, rel := range []string{
		"index.html",
		"guide/install/index.html",
		"404.html",
		"assets/site.css",
		"assets/site.js",
		"guide/logo.png",
		"build-report.json",
	} {
		_, err := os.Stat(filepath.Join(out, filepath.FromSlash(rel)))
		require.NoError(t, err, rel)
	}

	page, err := os.ReadFile(filepath.Join(out, "guide", "install", "index.html"))
	require.NoError(t, err)
	require.Contains(t, string(page), "npm install")

	var persisted BuildReport
	data, err := os.ReadFile(filepath.Join(out, "build-report.json"))
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, &persisted))
	require.Equal(t, OutcomeSuccess, persisted.Outcome)
	require.Equal(t, "js", persisted.Platform)
}

func TestPipeline_CountsFragmentFallbacks(t *testing.T) {
	cfg := siteFixture(t)

	// The install slot only has a js variant; rendering for ts falls back.
	p, err := New(cfg, Options{Platform: "ts"})
	require.NoError(t, err)

	report, err := p.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, report.FragmentFallbacks)
	require.Equal(t, "ts", report.Platform)
}

func TestPipeline_UnsupportedPlatform(t *testing.T) {
	cfg := siteFixture(t)
	_, err := New(cfg, Options{Platform: "swift"})
	require.Error(t, err)
}

func TestPipeline_DuplicateRouteFails(t *testing.T) {
	cfg := siteFixture(t)
	decl := "routes:\n  - source: guide/install.md\n    path: /\n"
	require.NoError(t, os.WriteFile(filepath.Join(cfg.Content.Dir, "directory.yaml"), []byte(decl), 0o644))

	p, err := New(cfg, Options{})
	require.NoError(t, err)

	report, err := p.Run(context.Background())
	require.Error(t, err)
	require.Equal(t, OutcomeFailed, report.Outcome)
	require.Contains(t, report.StageErrors[StageLoadModel], "duplicate route")
}

func TestPipeline_Canceled(t *testing.T) {
	cfg := siteFixture(t)
	p, err := New(cfg, Options{})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report, err := p.Run(ctx)
	require.Error(t, err)
	require.Equal(t, OutcomeCanceled, report.Outcome)
}

func TestPipeline_CleanRemovesStaleOutput(t *testing.T) {
	cfg := siteFixture(t)
	stale := filepath.Join(cfg.Output.Directory, "stale.html")
	require.NoError(t, os.MkdirAll(cfg.Output.Directory, 0o755))
	require.NoError(t, os.WriteFile(stale, []byte("old"), 0o644))

	p, err := New(cfg, Options{})
	require.NoError(t, err)
	_, err = p.Run(context.Background())
	require.NoError(t, err)

	_, err = os.Stat(stale)
	require.True(t, os.IsNotExist(err))
}

func TestPageOutputPath(t *testing.T) {
	require.Equal(t, filepath.Join("out", "index.html"), pageOutputPath("out", "/"))
	require.Equal(t, filepath.Join("out", "guide", "install", "index.html"), pageOutputPath("out", "/guide/install"))
}
