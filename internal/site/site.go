// Package site assembles the in-memory model of a documentation site:
// discovered content files, the route table and the fragment index. The
// model is built once and read-only afterwards; build, serve and check all
// start from Load.
package site

import (
	"fmt"
	"log/slog"

	"git.home.luguber.info/inful/docsite/internal/config"
	"git.home.luguber.info/inful/docsite/internal/directory"
	"git.home.luguber.info/inful/docsite/internal/docs"
	"git.home.luguber.info/inful/docsite/internal/fragments"
)

// Model is the fully assembled, immutable site model.
type Model struct {
	Config    *config.Config
	Tree      *directory.Tree
	Fragments *fragments.Index
	Files     []docs.DocFile

	bySource map[string]docs.DocFile
}

// Load discovers content and builds the route table and fragment index.
// Integrity violations (duplicate routes, duplicate fragment tags) fail
// here, at build time, never at request time.
func Load(cfg *config.Config) (*Model, error) {
	discovery := docs.NewDiscovery(cfg.Content.Dir, cfg.Platforms.Supported)
	files, err := discovery.Discover()
	if err != nil {
		return nil, fmt.Errorf("discover content: %w", err)
	}

	decls, err := directory.LoadDeclarations(cfg.Content.Dir)
	if err != nil {
		return nil, err
	}

	tree, err := directory.Build(files, decls)
	if err != nil {
		return nil, fmt.Errorf("build directory: %w", err)
	}

	idx, err := fragments.BuildIndex(files)
	if err != nil {
		return nil, fmt.Errorf("index fragments: %w", err)
	}

	m := &Model{
		Config:    cfg,
		Tree:      tree,
		Fragments: idx,
		Files:     files,
		bySource:  make(map[string]docs.DocFile, len(files)),
	}
	for _, f := range files {
		m.bySource[f.RelativePath] = f
	}

	slog.Info("site model loaded",
		"routes", tree.Len(),
		"fragment_sets", idx.Len(),
		"files", len(files))
	return m, nil
}

// Doc returns the source document backing a route entry.
func (m *Model) Doc(sourcePath string) (docs.DocFile, bool) {
	f, ok := m.bySource[sourcePath]
	return f, ok
}

// Assets returns the discovered non-markdown files.
func (m *Model) Assets() []docs.DocFile {
	var out []docs.DocFile
	for _, f := range m.Files {
		if f.IsAsset {
			out = append(out, f)
		}
	}
	return out
}
