package markdown

import (
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/util"
)

// containerRenderer emits HTML for the custom container nodes. The markup
// is plain structural HTML; tab switching is a stylesheet/script concern of
// the layout, not of the renderer.
type containerRenderer struct{}

var _ renderer.NodeRenderer = (*containerRenderer)(nil)

func (r *containerRenderer) RegisterFuncs(reg renderer.NodeRendererFuncRegisterer) {
	reg.Register(KindCollapse, r.renderCollapse)
	reg.Register(KindTabGroup, r.renderTabGroup)
	reg.Register(KindTab, r.renderTab)
	reg.Register(KindFragmentSlot, r.renderFragmentSlot)
}

func (r *containerRenderer) renderCollapse(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	n := node.(*Collapse)
	if entering {
		_, _ = w.WriteString(`<details class="collapse"><summary>`)
		_, _ = w.Write(util.EscapeHTML([]byte(n.Summary)))
		_, _ = w.WriteString("</summary>\n")
	} else {
		_, _ = w.WriteString("</details>\n")
	}
	return ast.WalkContinue, nil
}

func (r *containerRenderer) renderTabGroup(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	if entering {
		_, _ = w.WriteString("<div class=\"tabs\">\n<div class=\"tab-list\" role=\"tablist\">\n")
		for c := node.FirstChild(); c != nil; c = c.NextSibling() {
			tab, ok := c.(*Tab)
			if !ok {
				continue
			}
			label := util.EscapeHTML([]byte(tab.Label))
			_, _ = w.WriteString(`<button role="tab" data-tab="`)
			_, _ = w.Write(label)
			_, _ = w.WriteString(`">`)
			_, _ = w.Write(label)
			_, _ = w.WriteString("</button>\n")
		}
		_, _ = w.WriteString("</div>\n")
	} else {
		_, _ = w.WriteString("</div>\n")
	}
	return ast.WalkContinue, nil
}

func (r *containerRenderer) renderTab(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	n := node.(*Tab)
	if entering {
		_, _ = w.WriteString(`<section class="tab-panel" role="tabpanel" data-tab="`)
		_, _ = w.Write(util.EscapeHTML([]byte(n.Label)))
		_, _ = w.WriteString("\">\n")
	} else {
		_, _ = w.WriteString("</section>\n")
	}
	return ast.WalkContinue, nil
}

func (r *containerRenderer) renderFragmentSlot(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkContinue, nil
	}
	n := node.(*FragmentSlot)
	if len(n.ResolvedHTML) == 0 {
		// Unresolved slot: silent omission, not an error.
		return ast.WalkContinue, nil
	}
	_, _ = w.WriteString(`<div class="fragment" data-slot="`)
	_, _ = w.Write(util.EscapeHTML([]byte(n.Slot)))
	_, _ = w.WriteString(`" data-platform="`)
	_, _ = w.Write(util.EscapeHTML([]byte(n.ResolvedTag)))
	_, _ = w.WriteString("\">\n")
	_, _ = w.Write(n.ResolvedHTML)
	_, _ = w.WriteString("</div>\n")
	return ast.WalkContinue, nil
}
