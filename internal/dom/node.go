// Package dom implements the engine's own Node tree (spec §3's Node
// entity): Text or Element nodes owned exclusively by their parent, with
// a weak back-reference, matching spec §9's "children by owning handle,
// parents by weak reference" design note.
package dom

import "strings"

// Kind distinguishes Text from Element nodes.
type Kind int

const (
	KindText Kind = iota
	KindElement
)

// Node is either a Text or an Element. Element-only fields are zero for
// Text nodes.
type Node struct {
	Kind Kind

	// Text holds the text content for KindText.
	Text string

	// Tag, Attrs, Style, Focus, Caret, Visited are Element-only.
	Tag     string
	Attrs   map[string]string
	Style   map[string]string
	Focus   bool
	Caret   int
	Visited bool

	Children []*Node
	Parent   *Node // weak: never owns; do not traverse for ownership/GC purposes
}

// NewText creates a Text node.
func NewText(text string) *Node {
	return &Node{Kind: KindText, Text: text}
}

// NewElement creates an Element node with the given tag.
func NewElement(tag string) *Node {
	return &Node{Kind: KindElement, Tag: tag, Attrs: make(map[string]string), Style: make(map[string]string)}
}

// AppendChild appends child to n's children, reassigning child's parent.
// A node may have exactly one owner at a time (spec §3 invariant a):
// if child already has a parent, it is first detached.
func (n *Node) AppendChild(child *Node) {
	if child.Parent != nil {
		child.Parent.RemoveChild(child)
	}
	child.Parent = n
	n.Children = append(n.Children, child)
}

// InsertBefore inserts child immediately before ref in n's children, or
// appends if ref is nil or not found.
func (n *Node) InsertBefore(child, ref *Node) {
	if child.Parent != nil {
		child.Parent.RemoveChild(child)
	}
	child.Parent = n
	if ref == nil {
		n.Children = append(n.Children, child)
		return
	}
	for i, c := range n.Children {
		if c == ref {
			n.Children = append(n.Children[:i:i], append([]*Node{child}, n.Children[i:]...)...)
			return
		}
	}
	n.Children = append(n.Children, child)
}

// RemoveChild detaches child from n, if present.
func (n *Node) RemoveChild(child *Node) {
	for i, c := range n.Children {
		if c == child {
			n.Children = append(n.Children[:i], n.Children[i+1:]...)
			child.Parent = nil
			return
		}
	}
}

// GetAttribute returns an element's attribute value, or "" if absent.
func (n *Node) GetAttribute(name string) string {
	if n.Attrs == nil {
		return ""
	}
	return n.Attrs[name]
}

// SetAttribute sets an element's attribute.
func (n *Node) SetAttribute(name, value string) {
	if n.Attrs == nil {
		n.Attrs = make(map[string]string)
	}
	n.Attrs[name] = value
}

// ID returns the element's id attribute, or "" if unset.
func (n *Node) ID() string { return n.GetAttribute("id") }

// TextContent concatenates all descendant Text nodes' content.
func (n *Node) TextContent() string {
	var b strings.Builder
	var walk func(*Node)
	walk = func(node *Node) {
		if node.Kind == KindText {
			b.WriteString(node.Text)
			return
		}
		for _, c := range node.Children {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}

// Find returns the first descendant (including n itself) matching pred,
// depth-first pre-order.
func (n *Node) Find(pred func(*Node) bool) *Node {
	if pred(n) {
		return n
	}
	for _, c := range n.Children {
		if found := c.Find(pred); found != nil {
			return found
		}
	}
	return nil
}

// FindAll returns every descendant (including n itself) matching pred,
// depth-first pre-order.
func (n *Node) FindAll(pred func(*Node) bool) []*Node {
	var out []*Node
	var walk func(*Node)
	walk = func(node *Node) {
		if pred(node) {
			out = append(out, node)
		}
		for _, c := range node.Children {
			walk(c)
		}
	}
	walk(n)
	return out
}

// ByID finds the first element with the given id.
func (n *Node) ByID(id string) *Node {
	if id == "" {
		return nil
	}
	return n.Find(func(c *Node) bool { return c.Kind == KindElement && c.ID() == id })
}
