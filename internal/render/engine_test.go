package render

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"

	"git.home.luguber.info/inful/docsite/internal/config"
	"git.home.luguber.info/inful/docsite/internal/site"
)

func testModel(t *testing.T) (*config.Config, *site.Model) {
	t.Helper()
	dir := t.TempDir()
	write := func(rel, content string) {
		path := filepath.Join(dir, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	write("index.md", "---\ntitle: Home\n---\nWelcome to the docs.\n")
	write("guide/install.md", "---\ntitle: Install\ndescription: Install the SDK\n---\n:::fragment install\n")
	write("guide/install.js.md", "Run `npm install sdk`.\n")
	write("guide/install.python.md", "Run `pip install sdk`.\n")

	cfg := &config.Config{
		Site:    config.SiteConfig{Title: "SDK Docs"},
		Content: config.ContentConfig{Dir: dir},
		Platforms: config.PlatformsConfig{
			Supported: []string{"js", "python"},
			Default:   "js",
			Labels:    map[string]string{"js": "JavaScript", "python": "Python"},
		},
	}
	m, err := site.Load(cfg)
	require.NoError(t, err)
	return cfg, m
}

func renderRoute(t *testing.T, e *Engine, m *site.Model, route, platform string) string {
	t.Helper()
	entry, ok := m.Tree.Lookup(route)
	require.True(t, ok)
	var buf bytes.Buffer
	require.NoError(t, e.RenderPage(&buf, m, entry, platform))
	return buf.String()
}

func TestRenderPage_Structure(t *testing.T) {
	cfg, m := testModel(t)
	e, err := NewEngine(cfg, nil)
	require.NoError(t, err)

	out := renderRoute(t, e, m, "/guide/install", "js")

	doc, err := html.Parse(strings.NewReader(out))
	require.NoError(t, err)

	var sawSidebarLink, sawSwitcher, sawBody bool
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "a" {
			for _, a := range n.Attr {
				if a.Key == "href" && a.Val == "/guide/install" {
					sawSidebarLink = true
				}
				if a.Key == "href" && strings.HasPrefix(a.Val, "?platform=") {
					sawSwitcher = true
				}
			}
		}
		if n.Type == html.TextNode && strings.Contains(n.Data, "npm install sdk") {
			sawBody = true
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	require.True(t, sawSidebarLink, "sidebar should link the page")
	require.True(t, sawSwitcher, "platform switcher should be present")
	require.True(t, sawBody, "js fragment body should be rendered")
	require.Contains(t, out, "<title>Install | SDK Docs</title>")
}

func TestRenderPage_PlatformSelectsFragment(t *testing.T) {
	cfg, m := testModel(t)
	e, err := NewEngine(cfg, nil)
	require.NoError(t, err)

	out := renderRoute(t, e, m, "/guide/install", "python")
	require.Contains(t, out, "pip install sdk")
	require.NotContains(t, out, "npm install sdk")
}

func TestRenderPage_UnsupportedPlatformFallsBack(t *testing.T) {
	cfg, m := testModel(t)
	e, err := NewEngine(cfg, nil)
	require.NoError(t, err)

	out := renderRoute(t, e, m, "/guide/install", "swift")
	require.Contains(t, out, "npm install sdk")
}

func TestRenderPage_Idempotent(t *testing.T) {
	cfg, m := testModel(t)
	e, err := NewEngine(cfg, nil)
	require.NoError(t, err)

	first := renderRoute(t, e, m, "/guide/install", "js")
	second := renderRoute(t, e, m, "/guide/install", "js")
	require.Equal(t, first, second)
}

func TestRenderNotFound(t *testing.T) {
	cfg, m := testModel(t)
	e, err := NewEngine(cfg, nil)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, e.RenderNotFound(&buf, m, "js"))
	require.Contains(t, buf.String(), "Page not found")
}

func TestActivePlatform(t *testing.T) {
	cfg, _ := testModel(t)
	e, err := NewEngine(cfg, nil)
	require.NoError(t, err)

	require.Equal(t, "python", e.ActivePlatform("python"))
	require.Equal(t, "js", e.ActivePlatform(""))
	require.Equal(t, "js", e.ActivePlatform("swift"))
}

func TestWriteAssets(t *testing.T) {
	out := t.TempDir()
	require.NoError(t, WriteAssets(out))
	for _, name := range []string{"site.css", "site.js"} {
		_, err := os.Stat(filepath.Join(out, "assets", name))
		require.NoError(t, err)
	}
}
