package markdown

import (
	"bytes"

	"github.com/alecthomas/chroma/v2"
	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/util"
)

const highlightStyle = "github"

// highlighting replaces the default fenced-code renderer with a
// chroma-backed one. Inline styles keep the output self-contained.
type highlighting struct{}

func (e *highlighting) Extend(m goldmark.Markdown) {
	m.Renderer().AddOptions(renderer.WithNodeRenderers(
		util.Prioritized(&codeBlockRenderer{}, 90),
	))
}

type codeBlockRenderer struct{}

var _ renderer.NodeRenderer = (*codeBlockRenderer)(nil)

func (r *codeBlockRenderer) RegisterFuncs(reg renderer.NodeRendererFuncRegisterer) {
	reg.Register(ast.KindFencedCodeBlock, r.render)
}

func (r *codeBlockRenderer) render(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkContinue, nil
	}
	n := node.(*ast.FencedCodeBlock)

	var code bytes.Buffer
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		code.Write(seg.Value(source))
	}

	lang := string(n.Language(source))
	if err := highlight(w, code.String(), lang); err != nil {
		writePlainCode(w, code.Bytes(), lang)
	}
	return ast.WalkContinue, nil
}

func highlight(w util.BufWriter, code, lang string) error {
	lexer := lexers.Get(lang)
	if lexer == nil {
		lexer = lexers.Fallback
	}
	lexer = chroma.Coalesce(lexer)

	iterator, err := lexer.Tokenise(nil, code)
	if err != nil {
		return err
	}

	style := styles.Get(highlightStyle)
	if style == nil {
		style = styles.Fallback
	}
	formatter := chromahtml.New(chromahtml.WithPreWrapper(preWrapper{lang: lang}))
	return formatter.Format(w, style, iterator)
}

// preWrapper tags the <pre> element with the source language so layouts and
// copy buttons can identify it.
type preWrapper struct {
	lang string
}

func (p preWrapper) Start(code bool, styleAttr string) string {
	if p.lang != "" {
		return `<pre data-lang="` + string(util.EscapeHTML([]byte(p.lang))) + `"` + styleAttr + `><code>`
	}
	return "<pre" + styleAttr + "><code>"
}

func (p preWrapper) End(code bool) string { return "</code></pre>\n" }

func writePlainCode(w util.BufWriter, code []byte, lang string) {
	if lang != "" {
		_, _ = w.WriteString(`<pre><code class="language-`)
		_, _ = w.Write(util.EscapeHTML([]byte(lang)))
		_, _ = w.WriteString(`">`)
	} else {
		_, _ = w.WriteString("<pre><code>")
	}
	_, _ = w.Write(util.EscapeHTML(code))
	_, _ = w.WriteString("</code></pre>\n")
}
