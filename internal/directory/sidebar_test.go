package directory

import (
	"testing"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/docsite/internal/docs"
)

func buildTree(t *testing.T, files ...docs.DocFile) *Tree {
	t.Helper()
	tree, err := Build(files, nil)
	require.NoError(t, err)
	return tree
}

func TestSidebar_NestingAndOrder(t *testing.T) {
	tree := buildTree(t,
		page("index.md", "Home", 0),
		page("guide/index.md", "Guide", 1),
		page("guide/install.md", "Install", 1),
		page("guide/usage.md", "Usage", 2),
		page("reference/api.md", "API", 3),
	)

	nodes := tree.Sidebar("js")
	require.Len(t, nodes, 3)
	require.Equal(t, "Home", nodes[0].Title)

	guide := nodes[1]
	require.Equal(t, "Guide", guide.Title)
	require.Equal(t, "/guide", guide.URLPath)
	require.Len(t, guide.Children, 2)
	require.Equal(t, "Install", guide.Children[0].Title)
	require.Equal(t, "Usage", guide.Children[1].Title)

	// Section without an index page still appears, titled from its segment.
	ref := nodes[2]
	require.Equal(t, "Reference", ref.Title)
	require.Empty(t, ref.URLPath)
	require.Len(t, ref.Children, 1)
}

func TestSidebar_PlatformFiltering(t *testing.T) {
	tree := buildTree(t,
		page("index.md", "Home", 0),
		page("swift/setup.md", "Swift Setup", 1, "swift"),
		page("guide/install.md", "Install", 1),
	)

	jsNodes := tree.Sidebar("js")
	for _, n := range jsNodes {
		require.NotEqual(t, "Swift", n.Title)
	}

	swiftNodes := tree.Sidebar("swift")
	var found bool
	for _, n := range swiftNodes {
		if n.Title == "Swift" && len(n.Children) == 1 {
			found = true
		}
	}
	require.True(t, found, "swift-only section should appear for swift")
}

func TestSidebar_HiddenExcluded(t *testing.T) {
	hidden := page("internal.md", "Internal", 0)
	hidden.Meta.Hidden = true

	tree := buildTree(t, page("index.md", "Home", 0), hidden)
	nodes := tree.Sidebar("js")
	require.Len(t, nodes, 1)

	// Hidden pages remain routable.
	_, ok := tree.Lookup("/internal")
	require.True(t, ok)
}

func TestSidebar_Deterministic(t *testing.T) {
	tree := buildTree(t,
		page("b.md", "Beta", 1),
		page("a.md", "Alpha", 1),
		page("c.md", "Gamma", 0),
	)
	first := tree.Sidebar("js")
	second := tree.Sidebar("js")
	require.Equal(t, first, second)
	require.Equal(t, "Gamma", first[0].Title)
	require.Equal(t, "Alpha", first[1].Title)
}
