// Package directory builds the static route table for a site: every page
// gets a RouteEntry binding its URL path to its source document, ordering
// and platform visibility. The table is constructed once per build and is
// immutable afterwards.
package directory

import (
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/docsite/internal/docs"
)

// ErrDuplicateRoute indicates two entries declare the same URL path.
// Route uniqueness is the one integrity check in the system and is
// enforced at build time, never at request time.
var ErrDuplicateRoute = errors.New("duplicate route")

// RouteEntry binds a URL path to a content document.
type RouteEntry struct {
	URLPath    string
	Title      string
	SourcePath string   // source document path relative to the content dir
	Section    string   // containing section ("" at root)
	Order      int
	Platforms  []string // empty means visible on all platforms
	Hidden     bool     // excluded from the sidebar, still routable
}

// VisibleOn reports whether the entry is shown for the given platform tag.
func (e RouteEntry) VisibleOn(tag string) bool {
	if len(e.Platforms) == 0 {
		return true
	}
	for _, p := range e.Platforms {
		if p == tag || p == "all" {
			return true
		}
	}
	return false
}

// Declaration is a hand-authored route override from directory.yaml,
// matched to a discovered document by source path.
type Declaration struct {
	Source    string   `yaml:"source"`
	Path      string   `yaml:"path,omitempty"`
	Title     string   `yaml:"title,omitempty"`
	Order     *int     `yaml:"order,omitempty"`
	Platforms []string `yaml:"platforms,omitempty"`
	Hidden    bool     `yaml:"hidden,omitempty"`
}

type directoryFile struct {
	Routes []Declaration `yaml:"routes"`
}

// Tree is the immutable route table plus lookup index.
type Tree struct {
	entries []RouteEntry
	byPath  map[string]int
}

// Build assembles the route table from discovered pages and optional
// declarations. It fails on the first duplicate URL path.
func Build(files []docs.DocFile, decls []Declaration) (*Tree, error) {
	declBySource := make(map[string]Declaration, len(decls))
	for _, d := range decls {
		if d.Source == "" {
			return nil, errors.New("directory declaration missing source")
		}
		if _, dup := declBySource[d.Source]; dup {
			return nil, fmt.Errorf("%w: source %s declared twice", ErrDuplicateRoute, d.Source)
		}
		declBySource[d.Source] = d
	}

	t := &Tree{byPath: make(map[string]int)}
	for _, f := range files {
		if f.IsAsset || f.IsFragment {
			continue
		}
		entry := RouteEntry{
			URLPath:    RouteForSource(f.RelativePath),
			Title:      f.Title(),
			SourcePath: f.RelativePath,
			Section:    f.Section,
			Order:      f.Meta.Order,
			Platforms:  f.Meta.Platforms,
			Hidden:     f.Meta.Hidden,
		}
		if d, ok := declBySource[f.RelativePath]; ok {
			applyDeclaration(&entry, d)
			delete(declBySource, f.RelativePath)
		}
		if err := t.add(entry); err != nil {
			return nil, err
		}
	}

	for src := range declBySource {
		return nil, fmt.Errorf("directory declares unknown source %s", src)
	}

	sort.SliceStable(t.entries, func(i, j int) bool {
		a, b := t.entries[i], t.entries[j]
		if a.Order != b.Order {
			return a.Order < b.Order
		}
		if a.Title != b.Title {
			return a.Title < b.Title
		}
		return a.URLPath < b.URLPath
	})
	for i, e := range t.entries {
		t.byPath[e.URLPath] = i
	}
	return t, nil
}

func applyDeclaration(entry *RouteEntry, d Declaration) {
	if d.Path != "" {
		entry.URLPath = normalizePath(d.Path)
	}
	if d.Title != "" {
		entry.Title = d.Title
	}
	if d.Order != nil {
		entry.Order = *d.Order
	}
	if len(d.Platforms) > 0 {
		entry.Platforms = d.Platforms
	}
	if d.Hidden {
		entry.Hidden = true
	}
}

func (t *Tree) add(entry RouteEntry) error {
	if _, dup := t.byPath[entry.URLPath]; dup {
		return fmt.Errorf("%w: %s", ErrDuplicateRoute, entry.URLPath)
	}
	t.byPath[entry.URLPath] = len(t.entries)
	t.entries = append(t.entries, entry)
	return nil
}

// Lookup returns the entry for a URL path.
func (t *Tree) Lookup(urlPath string) (RouteEntry, bool) {
	i, ok := t.byPath[normalizePath(urlPath)]
	if !ok {
		return RouteEntry{}, false
	}
	return t.entries[i], true
}

// Entries returns the route table in sidebar order.
func (t *Tree) Entries() []RouteEntry {
	out := make([]RouteEntry, len(t.entries))
	copy(out, t.entries)
	return out
}

// Len returns the number of routes.
func (t *Tree) Len() int { return len(t.entries) }

// RouteForSource derives the canonical URL path for a source document:
// guide/install.md -> /guide/install, index.md -> /, guide/index.md -> /guide.
func RouteForSource(relPath string) string {
	p := strings.TrimSuffix(filepath.ToSlash(relPath), ".md")
	if p == "index" {
		return "/"
	}
	p = strings.TrimSuffix(p, "/index")
	return "/" + p
}

func normalizePath(p string) string {
	p = path.Clean("/" + strings.TrimSpace(p))
	if p == "" {
		return "/"
	}
	return p
}

// LoadDeclarations reads directory.yaml from the content root. A missing
// file is not an error; the directory file is optional.
func LoadDeclarations(contentDir string) ([]Declaration, error) {
	p := filepath.Join(contentDir, "directory.yaml")
	data, err := os.ReadFile(p)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read directory file: %w", err)
	}
	var df directoryFile
	if err := yaml.Unmarshal(data, &df); err != nil {
		return nil, fmt.Errorf("parse directory file: %w", err)
	}
	return df.Routes, nil
}
