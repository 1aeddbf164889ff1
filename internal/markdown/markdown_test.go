package markdown

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/docsite/internal/docs"
	"git.home.luguber.info/inful/docsite/internal/fragments"
)

func compile(t *testing.T, body string, pctx PageContext) string {
	t.Helper()
	out, err := New().Compile([]byte(body), pctx)
	require.NoError(t, err)
	return string(out)
}

func fragIndex(t *testing.T, files ...docs.DocFile) *fragments.Index {
	t.Helper()
	idx, err := fragments.BuildIndex(files)
	require.NoError(t, err)
	return idx
}

func fragFile(section, slot, tag, body string) docs.DocFile {
	return docs.DocFile{
		RelativePath: slot + "." + tag + ".md",
		Section:      section,
		IsFragment:   true,
		FragmentSlot: slot,
		FragmentTag:  tag,
		Body:         []byte(body),
	}
}

func TestCompile_BasicMarkdown(t *testing.T) {
	out := compile(t, "# Title\n\nSome *text*.\n", PageContext{})
	require.Contains(t, out, `<h1 id="title">Title</h1>`)
	require.Contains(t, out, "<em>text</em>")
}

func TestCompile_Collapse(t *testing.T) {
	out := compile(t, ":::collapse Advanced options\nHidden *content*.\n:::\n", PageContext{})
	require.Contains(t, out, `<details class="collapse"><summary>Advanced options</summary>`)
	require.Contains(t, out, "<em>content</em>")
	require.Contains(t, out, "</details>")
}

func TestCompile_Tabs(t *testing.T) {
	doc := strings.Join([]string{
		":::tabs",
		":::tab JavaScript",
		"```js",
		"const x = 1;",
		"```",
		":::",
		":::tab Python",
		"```python",
		"x = 1",
		"```",
		":::",
		":::",
		"",
	}, "\n")

	out := compile(t, doc, PageContext{})
	require.Contains(t, out, `<div class="tabs">`)
	require.Contains(t, out, `<button role="tab" data-tab="JavaScript">JavaScript</button>`)
	require.Contains(t, out, `<button role="tab" data-tab="Python">Python</button>`)
	require.Contains(t, out, `<section class="tab-panel" role="tabpanel" data-tab="JavaScript">`)
	require.Contains(t, out, `<section class="tab-panel" role="tabpanel" data-tab="Python">`)
	// Two panels, one label list.
	require.Equal(t, 2, strings.Count(out, "tab-panel"))
}

func TestCompile_TabOutsideTabsIsNotAContainer(t *testing.T) {
	out := compile(t, ":::tab Lonely\ntext\n:::\n", PageContext{})
	require.NotContains(t, out, "tab-panel")
}

func TestCompile_CodeHighlighting(t *testing.T) {
	out := compile(t, "```go\npackage main\n```\n", PageContext{})
	require.Contains(t, out, `data-lang="go"`)
	require.Contains(t, out, "<pre")
	require.Contains(t, out, "package")
}

func TestCompile_FragmentExactMatch(t *testing.T) {
	idx := fragIndex(t,
		fragFile("", "install", "js", "Run `npm install`.\n"),
		fragFile("", "install", "python", "Run `pip install`.\n"),
	)
	out := compile(t, ":::fragment install\n", PageContext{
		Platform: "python", DefaultPlatform: "js", Fragments: idx,
	})
	require.Contains(t, out, `data-slot="install"`)
	require.Contains(t, out, `data-platform="python"`)
	require.Contains(t, out, "pip install")
	require.NotContains(t, out, "npm install")
}

func TestCompile_FragmentDefaultFallback(t *testing.T) {
	var gotMatch fragments.Match
	idx := fragIndex(t, fragFile("", "install", "js", "Run `npm install`.\n"))

	out := compile(t, ":::fragment install\n", PageContext{
		Platform:        "swift",
		DefaultPlatform: "js",
		Fragments:       idx,
		OnFragment:      func(slot string, m fragments.Match) { gotMatch = m },
	})
	require.Contains(t, out, "npm install")
	require.Contains(t, out, `data-platform="js"`)
	require.Equal(t, fragments.MatchDefault, gotMatch)
}

func TestCompile_MissingSlotIsSilent(t *testing.T) {
	out := compile(t, "before\n\n:::fragment ghost\n\nafter\n", PageContext{
		Platform: "js", DefaultPlatform: "js", Fragments: fragIndex(t),
	})
	require.Contains(t, out, "before")
	require.Contains(t, out, "after")
	require.NotContains(t, out, "data-slot")
}

func TestCompile_FragmentContainersRender(t *testing.T) {
	idx := fragIndex(t, fragFile("", "setup", "js", ":::collapse Details\ninner\n:::\n"))
	out := compile(t, ":::fragment setup\n", PageContext{
		Platform: "js", DefaultPlatform: "js", Fragments: idx,
	})
	require.Contains(t, out, "<details")
}

func TestCompile_FragmentCycleFails(t *testing.T) {
	idx := fragIndex(t, fragFile("", "loop", "js", ":::fragment loop\n"))
	_, err := New().Compile([]byte(":::fragment loop\n"), PageContext{
		Platform: "js", DefaultPlatform: "js", Fragments: idx,
	})
	require.Error(t, err)
	require.Contains(t, err.Error(), "nesting")
}

func TestCompile_Idempotent(t *testing.T) {
	doc := "# T\n\n:::tabs\n:::tab A\none\n:::\n:::\n\n:::fragment install\n\n```go\nvar x int\n```\n"
	idx := fragIndex(t, fragFile("", "install", "js", "body\n"))
	pctx := PageContext{Platform: "js", DefaultPlatform: "js", Fragments: idx}

	first := compile(t, doc, pctx)
	second := compile(t, doc, pctx)
	require.Equal(t, first, second)
}
