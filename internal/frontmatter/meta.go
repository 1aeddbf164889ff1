package frontmatter

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// Meta is the typed page metadata carried in frontmatter.
//
// Platforms limits a page to the listed platform tags; empty or "all" means
// the page is visible on every platform. Order controls sidebar position
// within a section (lower sorts first).
type Meta struct {
	Title       string   `yaml:"title,omitempty"`
	Description string   `yaml:"description,omitempty"`
	Order       int      `yaml:"order,omitempty"`
	Platforms   []string `yaml:"platforms,omitempty"`
	Hidden      bool     `yaml:"hidden,omitempty"`
}

// UnmarshalYAML accepts both a scalar ("all", "js") and a sequence for the
// platforms field; authors write both forms.
func (m *Meta) UnmarshalYAML(value *yaml.Node) error {
	type plain struct {
		Title       string    `yaml:"title"`
		Description string    `yaml:"description"`
		Order       int       `yaml:"order"`
		Platforms   yaml.Node `yaml:"platforms"`
		Hidden      bool      `yaml:"hidden"`
	}
	var p plain
	if err := value.Decode(&p); err != nil {
		return err
	}
	m.Title = p.Title
	m.Description = p.Description
	m.Order = p.Order
	m.Hidden = p.Hidden

	switch p.Platforms.Kind {
	case 0: // absent
	case yaml.ScalarNode:
		var s string
		if err := p.Platforms.Decode(&s); err != nil {
			return err
		}
		if s != "" && s != "all" {
			m.Platforms = []string{s}
		}
	case yaml.SequenceNode:
		if err := p.Platforms.Decode(&m.Platforms); err != nil {
			return err
		}
	default:
		return fmt.Errorf("frontmatter: platforms must be a string or list")
	}
	return nil
}

// ParseMeta splits a document and decodes its frontmatter into Meta.
// Documents without frontmatter yield a zero Meta and the full body.
func ParseMeta(content []byte) (Meta, []byte, error) {
	fm, body, had, err := Split(content)
	if err != nil {
		return Meta{}, nil, err
	}
	if !had || len(fm) == 0 {
		return Meta{}, body, nil
	}
	var m Meta
	if err := yaml.Unmarshal(fm, &m); err != nil {
		return Meta{}, nil, fmt.Errorf("frontmatter: %w", err)
	}
	return m, body, nil
}

// AppliesTo reports whether a page with this metadata is visible for the
// given platform tag. An empty Platforms list means visible everywhere.
func (m Meta) AppliesTo(tag string) bool {
	if len(m.Platforms) == 0 {
		return true
	}
	for _, p := range m.Platforms {
		if p == tag || p == "all" {
			return true
		}
	}
	return false
}
