package directory

import (
	"sort"
	"strings"
)

// SidebarNode is one entry in the navigation tree. Section nodes group the
// pages beneath a URL path segment; leaf nodes point at a route.
type SidebarNode struct {
	Title    string
	URLPath  string // empty for sections without an index page
	Order    int
	Children []*SidebarNode
}

// Sidebar builds the navigation tree for one platform. Hidden entries and
// entries not visible on the platform are excluded; sections with no
// visible pages are pruned.
func (t *Tree) Sidebar(platform string) []*SidebarNode {
	root := &SidebarNode{}
	index := map[string]*SidebarNode{"": root}

	sectionNode := func(section string) *SidebarNode {
		if n, ok := index[section]; ok {
			return n
		}
		// Create intermediate section nodes on demand, parents first.
		parts := strings.Split(section, "/")
		cur := root
		prefix := ""
		for _, part := range parts {
			if prefix == "" {
				prefix = part
			} else {
				prefix = prefix + "/" + part
			}
			n, ok := index[prefix]
			if !ok {
				n = &SidebarNode{Title: sectionTitle(part)}
				index[prefix] = n
				cur.Children = append(cur.Children, n)
			}
			cur = n
		}
		return cur
	}

	for _, e := range t.entries {
		if e.Hidden || !e.VisibleOn(platform) {
			continue
		}
		if e.Section == "" && e.URLPath == "/" {
			root.Children = append(root.Children, &SidebarNode{Title: e.Title, URLPath: e.URLPath, Order: e.Order})
			continue
		}
		if e.Section != "" && e.URLPath == "/"+e.Section {
			// Index page titles its section node rather than nesting under it.
			node := sectionNode(e.Section)
			node.Title = e.Title
			node.URLPath = e.URLPath
			node.Order = e.Order
			continue
		}
		parent := sectionNode(e.Section)
		parent.Children = append(parent.Children, &SidebarNode{Title: e.Title, URLPath: e.URLPath, Order: e.Order})
	}

	prune(root)
	sortNodes(root)
	return root.Children
}

// prune removes section nodes that ended up with no routable page and no
// children (every page beneath them was filtered out).
func prune(n *SidebarNode) {
	kept := n.Children[:0]
	for _, c := range n.Children {
		prune(c)
		if c.URLPath == "" && len(c.Children) == 0 {
			continue
		}
		kept = append(kept, c)
	}
	n.Children = kept
}

func sortNodes(n *SidebarNode) {
	sort.SliceStable(n.Children, func(i, j int) bool {
		a, b := n.Children[i], n.Children[j]
		if a.Order != b.Order {
			return a.Order < b.Order
		}
		if a.Title != b.Title {
			return a.Title < b.Title
		}
		return a.URLPath < b.URLPath
	})
	for _, c := range n.Children {
		sortNodes(c)
	}
}

func sectionTitle(segment string) string {
	segment = strings.ReplaceAll(strings.ReplaceAll(segment, "-", " "), "_", " ")
	if segment == "" {
		return segment
	}
	return strings.ToUpper(segment[:1]) + segment[1:]
}
