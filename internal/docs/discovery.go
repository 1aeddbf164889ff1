package docs

import (
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"git.home.luguber.info/inful/docsite/internal/frontmatter"
)

// DocFile represents a discovered content file: a page, a platform fragment,
// or a static asset.
type DocFile struct {
	Path         string           // absolute path to the file
	RelativePath string           // path relative to the content directory
	Section      string           // containing directory relative to the content root ("" at root)
	Name         string           // file name without extension
	Extension    string           // file extension including the dot
	Meta         frontmatter.Meta // parsed frontmatter (markdown files only)
	Body         []byte           // markdown body with frontmatter removed
	IsAsset      bool             // true for non-markdown files
	IsFragment   bool             // true for <slot>.<tag>.md files
	FragmentSlot string           // slot name for fragments
	FragmentTag  string           // platform tag for fragments
}

// Title returns the page title, deriving one from the file name when the
// frontmatter does not declare it.
func (f DocFile) Title() string {
	if f.Meta.Title != "" {
		return f.Meta.Title
	}
	name := strings.ReplaceAll(strings.ReplaceAll(f.Name, "-", " "), "_", " ")
	return cases.Title(language.English).String(name)
}

// Discovery walks a content directory and classifies its files.
type Discovery struct {
	contentDir string
	platforms  map[string]bool
}

// NewDiscovery creates a discovery instance for a content directory. The
// platform tags are needed to tell fragment files apart from pages with a
// dot in their name.
func NewDiscovery(contentDir string, platformTags []string) *Discovery {
	tags := make(map[string]bool, len(platformTags))
	for _, t := range platformTags {
		tags[t] = true
	}
	return &Discovery{contentDir: contentDir, platforms: tags}
}

// Discover finds all content files under the content directory. Markdown
// files are read and their frontmatter parsed; a malformed document fails
// discovery rather than producing a half-built site.
func (d *Discovery) Discover() ([]DocFile, error) {
	absRoot, err := filepath.Abs(d.contentDir)
	if err != nil {
		return nil, fmt.Errorf("resolve content dir: %w", err)
	}
	if st, err := os.Stat(absRoot); err != nil || !st.IsDir() {
		return nil, fmt.Errorf("content dir not found or not a directory: %s", absRoot)
	}

	var files []DocFile
	walkErr := filepath.WalkDir(absRoot, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		name := entry.Name()
		if entry.IsDir() {
			if strings.HasPrefix(name, ".") || name == "node_modules" {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.HasPrefix(name, ".") || name == "directory.yaml" {
			return nil
		}

		rel, err := filepath.Rel(absRoot, path)
		if err != nil {
			return err
		}

		df, err := d.classify(path, rel)
		if err != nil {
			return fmt.Errorf("%s: %w", rel, err)
		}
		files = append(files, df)
		return nil
	})
	if walkErr != nil {
		return nil, walkErr
	}

	slog.Debug("content discovery complete", "dir", absRoot, "files", len(files))
	return files, nil
}

func (d *Discovery) classify(path, rel string) (DocFile, error) {
	ext := filepath.Ext(rel)
	base := strings.TrimSuffix(filepath.Base(rel), ext)
	section := filepath.ToSlash(filepath.Dir(rel))
	if section == "." {
		section = ""
	}

	df := DocFile{
		Path:         path,
		RelativePath: filepath.ToSlash(rel),
		Section:      section,
		Name:         base,
		Extension:    ext,
	}

	if !strings.EqualFold(ext, ".md") {
		df.IsAsset = true
		return df, nil
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return DocFile{}, err
	}
	meta, body, err := frontmatter.ParseMeta(content)
	if err != nil {
		return DocFile{}, err
	}
	df.Meta = meta
	df.Body = body

	// install.js.md is the js fragment for slot "install"; install.v2.md
	// with no such platform is just a page with a dot in its name.
	if i := strings.LastIndex(base, "."); i > 0 {
		if tag := base[i+1:]; d.platforms[tag] {
			df.IsFragment = true
			df.FragmentSlot = base[:i]
			df.FragmentTag = tag
		}
	}
	return df, nil
}
