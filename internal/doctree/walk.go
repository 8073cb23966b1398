package doctree

import "strings"

// Walk visits every node depth-first in document order.
func (d *Document) Walk(fn func(n *Node)) {
	var walk func(nodes []*Node)
	walk = func(nodes []*Node) {
		for _, n := range nodes {
			fn(n)
			walk(n.Children)
		}
	}
	walk(d.Chapters)
}

// FlattenText joins every node's content with newlines, in document order.
func (d *Document) FlattenText() string {
	var sb strings.Builder
	d.Walk(func(n *Node) {
		if n.Content == "" {
			return
		}
		if sb.Len() > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(n.Content)
	})
	return sb.String()
}

// Find returns the node with the given ID, or nil.
func (d *Document) Find(id string) *Node {
	var found *Node
	d.Walk(func(n *Node) {
		if found == nil && n.ID == id {
			found = n
		}
	})
	return found
}
