package markdown

import (
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
)

// Container block syntax:
//
//	:::collapse Advanced configuration
//	...markdown...
//	:::
//
//	:::tabs
//	:::tab JavaScript
//	...markdown...
//	:::
//	:::tab Python
//	...markdown...
//	:::
//	:::
//
//	:::fragment install
//
// A closing fence closes the innermost open container, so nested containers
// need one closing fence per level. The fragment form is a single-line
// directive with no body.

// Collapse is a collapsible section with a summary line.
type Collapse struct {
	ast.BaseBlock
	Summary     string
	fenceLength int
}

// KindCollapse is the node kind of Collapse.
var KindCollapse = ast.NewNodeKind("Collapse")

func (n *Collapse) Kind() ast.NodeKind { return KindCollapse }
func (n *Collapse) Dump(source []byte, level int) {
	ast.DumpHelper(n, source, level, map[string]string{"Summary": n.Summary}, nil)
}

// TabGroup groups Tab children into a tabbed block.
type TabGroup struct {
	ast.BaseBlock
	fenceLength int
}

// KindTabGroup is the node kind of TabGroup.
var KindTabGroup = ast.NewNodeKind("TabGroup")

func (n *TabGroup) Kind() ast.NodeKind { return KindTabGroup }
func (n *TabGroup) Dump(source []byte, level int) {
	ast.DumpHelper(n, source, level, nil, nil)
}

// Tab is one labeled pane inside a TabGroup.
type Tab struct {
	ast.BaseBlock
	Label       string
	fenceLength int
}

// KindTab is the node kind of Tab.
var KindTab = ast.NewNodeKind("Tab")

func (n *Tab) Kind() ast.NodeKind { return KindTab }
func (n *Tab) Dump(source []byte, level int) {
	ast.DumpHelper(n, source, level, map[string]string{"Label": n.Label}, nil)
}

// FragmentSlot marks a platform-conditional inclusion point. The compiler
// fills ResolvedHTML before rendering; an unresolved slot renders nothing.
type FragmentSlot struct {
	ast.BaseBlock
	Slot         string
	ResolvedTag  string
	ResolvedHTML []byte
}

// KindFragmentSlot is the node kind of FragmentSlot.
var KindFragmentSlot = ast.NewNodeKind("FragmentSlot")

func (n *FragmentSlot) Kind() ast.NodeKind { return KindFragmentSlot }
func (n *FragmentSlot) Dump(source []byte, level int) {
	ast.DumpHelper(n, source, level, map[string]string{"Slot": n.Slot}, nil)
}

type fenced interface {
	ast.Node
	fence() int
}

func (n *Collapse) fence() int { return n.fenceLength }
func (n *TabGroup) fence() int { return n.fenceLength }
func (n *Tab) fence() int      { return n.fenceLength }

type containerParser struct{}

var _ parser.BlockParser = (*containerParser)(nil)

func (p *containerParser) Trigger() []byte { return []byte{':'} }

func (p *containerParser) Open(parent ast.Node, reader text.Reader, pc parser.Context) (ast.Node, parser.State) {
	line, segment := reader.PeekLine()
	pos := pc.BlockOffset()
	if pos < 0 || pos >= len(line) || line[pos] != ':' {
		return nil, parser.NoChildren
	}
	i := pos
	for ; i < len(line) && line[i] == ':'; i++ {
	}
	fenceLength := i - pos
	if fenceLength < 3 {
		return nil, parser.NoChildren
	}

	info := strings.TrimSpace(string(line[i:]))
	name, arg := info, ""
	if sp := strings.IndexByte(info, ' '); sp >= 0 {
		name, arg = info[:sp], strings.TrimSpace(info[sp+1:])
	}

	consumeLine := func() {
		reader.Advance(segment.Stop - segment.Start - 1 - segment.Padding)
	}

	switch name {
	case "collapse":
		consumeLine()
		return &Collapse{Summary: arg, fenceLength: fenceLength}, parser.HasChildren
	case "tabs":
		consumeLine()
		return &TabGroup{fenceLength: fenceLength}, parser.HasChildren
	case "tab":
		if _, ok := parent.(*TabGroup); !ok {
			return nil, parser.NoChildren
		}
		consumeLine()
		return &Tab{Label: arg, fenceLength: fenceLength}, parser.HasChildren
	case "fragment":
		if arg == "" {
			return nil, parser.NoChildren
		}
		consumeLine()
		return &FragmentSlot{Slot: arg}, parser.NoChildren
	default:
		return nil, parser.NoChildren
	}
}

func (p *containerParser) Continue(node ast.Node, reader text.Reader, pc parser.Context) parser.State {
	fn, ok := node.(fenced)
	if !ok {
		// Single-line fragment directive: close on the line after the opener.
		return parser.Close
	}

	line, segment := reader.PeekLine()
	w, pos := util.IndentWidth(line, reader.LineOffset())
	if w < 4 && pos < len(line) && line[pos] == ':' {
		i := pos
		for ; i < len(line) && line[i] == ':'; i++ {
		}
		if i-pos >= fn.fence() && util.IsBlank(line[i:]) {
			newline := 1
			if len(line) > 0 && line[len(line)-1] != '\n' {
				newline = 0
			}
			reader.Advance(segment.Stop - segment.Start - newline - segment.Padding)
			return parser.Close
		}
	}
	return parser.Continue | parser.HasChildren
}

func (p *containerParser) Close(node ast.Node, reader text.Reader, pc parser.Context) {}

func (p *containerParser) CanInterruptParagraph() bool { return true }

func (p *containerParser) CanAcceptIndentedLine() bool { return false }

// containers wires the block parser and node renderer into goldmark.
type containers struct{}

func (e *containers) Extend(m goldmark.Markdown) {
	m.Parser().AddOptions(parser.WithBlockParsers(
		util.Prioritized(&containerParser{}, 798),
	))
	m.Renderer().AddOptions(renderer.WithNodeRenderers(
		util.Prioritized(&containerRenderer{}, 100),
	))
}
