// Package render turns a site model plus a route entry into a displayable
// HTML page. Markup-to-HTML conversion is delegated to the markdown
// compiler; this package owns layout templates and page assembly.
package render

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"git.home.luguber.info/inful/docsite/internal/config"
	"git.home.luguber.info/inful/docsite/internal/directory"
	"git.home.luguber.info/inful/docsite/internal/fragments"
	"git.home.luguber.info/inful/docsite/internal/markdown"
	"git.home.luguber.info/inful/docsite/internal/metrics"
	"git.home.luguber.info/inful/docsite/internal/site"
)

//go:embed layouts/*.html
var builtinLayouts embed.FS

//go:embed assets/*
var builtinAssets embed.FS

// PlatformOption is one entry in the platform switcher.
type PlatformOption struct {
	Tag   string
	Label string
}

// SiteInfo is the site-wide template data.
type SiteInfo struct {
	Title       string
	Description string
	BaseURL     string
	Platforms   []PlatformOption
	Active      string
}

// PageData is the data handed to the base layout for one page.
type PageData struct {
	Site        SiteInfo
	Title       string
	Description string
	Path        string
	Body        template.HTML
	Sidebar     []*directory.SidebarNode
}

// Engine renders pages through layout templates.
type Engine struct {
	cfg      *config.Config
	tpl      *template.Template
	compiler *markdown.Compiler
	recorder metrics.Recorder
}

// NewEngine parses the built-in layouts, applies the optional override
// directory from config, and wires the markdown compiler.
func NewEngine(cfg *config.Config, recorder metrics.Recorder) (*Engine, error) {
	if recorder == nil {
		recorder = metrics.NoopRecorder{}
	}
	tpl, err := template.ParseFS(builtinLayouts, "layouts/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse built-in layouts: %w", err)
	}
	if dir := cfg.Content.Layouts; dir != "" {
		tpl, err = tpl.ParseGlob(filepath.Join(dir, "*.html"))
		if err != nil {
			return nil, fmt.Errorf("parse layout overrides: %w", err)
		}
	}
	return &Engine{
		cfg:      cfg,
		tpl:      tpl,
		compiler: markdown.New(),
		recorder: recorder,
	}, nil
}

// ActivePlatform normalizes a requested platform tag: unsupported or empty
// tags silently fall back to the configured default.
func (e *Engine) ActivePlatform(requested string) string {
	if requested != "" && e.cfg.IsSupportedPlatform(requested) {
		return requested
	}
	return e.cfg.Platforms.Default
}

// RenderPage writes the full HTML page for a route entry as seen on the
// given platform.
func (e *Engine) RenderPage(w io.Writer, m *site.Model, entry directory.RouteEntry, platform string) error {
	doc, ok := m.Doc(entry.SourcePath)
	if !ok {
		return fmt.Errorf("route %s references unknown source %s", entry.URLPath, entry.SourcePath)
	}

	platform = e.ActivePlatform(platform)
	body, err := e.compiler.Compile(doc.Body, markdown.PageContext{
		Section:         doc.Section,
		Platform:        platform,
		DefaultPlatform: e.cfg.Platforms.Default,
		Fragments:       m.Fragments,
		OnFragment: func(slot string, match fragments.Match) {
			e.recorder.IncFragmentResolution(string(match))
		},
	})
	if err != nil {
		return fmt.Errorf("compile %s: %w", entry.SourcePath, err)
	}

	data := PageData{
		Site:        e.siteInfo(platform),
		Title:       entry.Title,
		Description: doc.Meta.Description,
		Path:        entry.URLPath,
		Body:        template.HTML(body),
		Sidebar:     m.Tree.Sidebar(platform),
	}
	if err := e.tpl.ExecuteTemplate(w, "base", data); err != nil {
		return fmt.Errorf("execute layout for %s: %w", entry.URLPath, err)
	}
	return nil
}

// RenderNotFound writes the 404 page.
func (e *Engine) RenderNotFound(w io.Writer, m *site.Model, platform string) error {
	platform = e.ActivePlatform(platform)
	data := PageData{
		Site:    e.siteInfo(platform),
		Title:   "Page not found",
		Sidebar: m.Tree.Sidebar(platform),
	}
	return e.tpl.ExecuteTemplate(w, "notfound", data)
}

func (e *Engine) siteInfo(active string) SiteInfo {
	info := SiteInfo{
		Title:       e.cfg.Site.Title,
		Description: e.cfg.Site.Description,
		BaseURL:     e.cfg.Site.BaseURL,
		Active:      active,
	}
	for _, tag := range e.cfg.Platforms.Supported {
		info.Platforms = append(info.Platforms, PlatformOption{Tag: tag, Label: e.cfg.PlatformLabel(tag)})
	}
	return info
}

// Assets exposes the built-in asset files for serving; "assets/site.css"
// is a valid path within the returned filesystem.
func Assets() fs.FS { return builtinAssets }

// WriteAssets copies the built-in stylesheet and tab script into
// outDir/assets.
func WriteAssets(outDir string) error {
	return fs.WalkDir(builtinAssets, "assets", func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		data, err := builtinAssets.ReadFile(path)
		if err != nil {
			return err
		}
		dst := filepath.Join(outDir, filepath.FromSlash(path))
		if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
			return err
		}
		return os.WriteFile(dst, data, 0o644)
	})
}
