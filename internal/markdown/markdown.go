// Package markdown compiles authored documents to HTML. The pipeline is
// goldmark with GFM, auto heading IDs, chroma code highlighting and the
// custom container blocks (collapse, tabs, fragment slots).
package markdown

import (
	"bytes"
	"fmt"
	"log/slog"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	gmhtml "github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/text"

	"git.home.luguber.info/inful/docsite/internal/fragments"
)

// Fragment bodies may themselves contain slots; resolution recurses with a
// depth cap so a cycle fails instead of spinning.
const maxFragmentDepth = 8

// Compiler converts markdown bodies to HTML. Safe for concurrent use.
type Compiler struct {
	md goldmark.Markdown
}

// New constructs a Compiler.
func New() *Compiler {
	return &Compiler{
		md: goldmark.New(
			goldmark.WithExtensions(extension.GFM, &containers{}, &highlighting{}),
			goldmark.WithParserOptions(parser.WithAutoHeadingID()),
			goldmark.WithRendererOptions(gmhtml.WithUnsafe()),
		),
	}
}

// PageContext carries the per-page inputs fragment resolution needs.
type PageContext struct {
	Section         string // section the page lives in; slots are section-scoped
	Platform        string // active platform tag
	DefaultPlatform string
	Fragments       *fragments.Index
	// OnFragment, if set, observes every slot resolution (for metrics).
	OnFragment func(slot string, match fragments.Match)
}

// Compile renders a markdown body to HTML, resolving fragment slots for the
// context's platform. Output is deterministic for fixed inputs.
func (c *Compiler) Compile(body []byte, pctx PageContext) ([]byte, error) {
	return c.compile(body, pctx, 0)
}

func (c *Compiler) compile(body []byte, pctx PageContext, depth int) ([]byte, error) {
	root := c.md.Parser().Parse(text.NewReader(body))
	if err := c.resolveSlots(root, pctx, depth); err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := c.md.Renderer().Render(&buf, body, root); err != nil {
		return nil, fmt.Errorf("render markdown: %w", err)
	}
	return buf.Bytes(), nil
}

func (c *Compiler) resolveSlots(root ast.Node, pctx PageContext, depth int) error {
	var slots []*FragmentSlot
	_ = ast.Walk(root, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		if s, ok := n.(*FragmentSlot); ok {
			slots = append(slots, s)
		}
		return ast.WalkContinue, nil
	})
	if len(slots) == 0 {
		return nil
	}
	if pctx.Fragments == nil {
		return nil
	}
	if depth >= maxFragmentDepth {
		return fmt.Errorf("fragment nesting exceeds %d levels (cycle?)", maxFragmentDepth)
	}

	for _, slot := range slots {
		set, ok := pctx.Fragments.Lookup(pctx.Section, slot.Slot)
		if !ok {
			// Missing slot is silent: the page renders without the fragment.
			slog.Debug("fragment slot has no variants", "section", pctx.Section, "slot", slot.Slot)
			continue
		}
		ref, match := set.Resolve(pctx.Platform, pctx.DefaultPlatform)
		if pctx.OnFragment != nil {
			pctx.OnFragment(slot.Slot, match)
		}
		html, err := c.compile(ref.Body, pctx, depth+1)
		if err != nil {
			return fmt.Errorf("fragment %s (%s): %w", slot.Slot, ref.Tag, err)
		}
		slot.ResolvedTag = ref.Tag
		slot.ResolvedHTML = html
	}
	return nil
}
