package layout

import "github.com/use-agent/tinybrowser/internal/dom"

// Kind tags the layout-object variant (spec §9: tagged variants, not
// virtual dispatch).
type Kind int

const (
	KindDocument Kind = iota
	KindBlock
	KindLine
	KindText
	KindInput
)

// Box is a layout object's position and size in document coordinates.
type Box struct {
	X, Y, W, H float64
}

// Object is spec §3's Layout object entity: regenerated on every layout
// pass, owned by its parent, referencing the DOM node it was built from.
type Object struct {
	Kind Kind
	Box  Box
	Node *dom.Node

	Parent   *Object
	Previous *Object
	Children []*Object

	// Text holds the word for KindText, already measured.
	Text    string
	Ascent  float64
	Descent float64
	Top     bool // vertical-align:top, per spec §4.7

	// InputType holds the control kind for KindInput ("text","password","checkbox","hidden","button").
	InputType string
}

func newChild(kind Kind, parent *Object, node *dom.Node) *Object {
	var prev *Object
	if n := len(parent.Children); n > 0 {
		prev = parent.Children[n-1]
	}
	child := &Object{Kind: kind, Node: node, Parent: parent, Previous: prev}
	parent.Children = append(parent.Children, child)
	return child
}

// displayOf returns n's resolved display style, or, when none is set,
// "block" for tags in blockTags and "inline" for every other tag.
func displayOf(n *dom.Node) string {
	if n.Style != nil {
		if d, ok := n.Style["display"]; ok && d != "" {
			return d
		}
	}
	if blockTags[n.Tag] {
		return "block"
	}
	return "inline"
}

// blockTags is the set of elements that default to display:block absent
// an explicit style. The built-in stylesheet sets no display values, so
// this table decides the default.
var blockTags = map[string]bool{
	"html": true, "body": true, "div": true, "p": true, "ul": true, "ol": true,
	"li": true, "h1": true, "h2": true, "h3": true, "h4": true, "h5": true,
	"h6": true, "header": true, "footer": true, "nav": true, "section": true,
	"article": true, "pre": true, "form": true, "table": true, "tr": true,
	"title": true, "head": true, "style": true, "script": true, "link": true, "meta": true,
}

// inlineInputTags are elements laid out via KindInput rather than text flow.
var inlineInputTags = map[string]bool{"input": true, "button": true}
