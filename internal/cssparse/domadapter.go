package cssparse

import (
	"strings"

	"github.com/use-agent/tinybrowser/internal/dom"
)

// nodeElement adapts *dom.Node to elementLike so Matches can walk the
// engine's own DOM tree without dom importing cssparse back.
type nodeElement struct {
	n *dom.Node
}

// Node wraps a DOM element for selector matching.
func Node(n *dom.Node) elementLike { return nodeElement{n: n} }

func (e nodeElement) Tag() string { return e.n.Tag }

func (e nodeElement) HasClass(class string) bool {
	for _, c := range strings.Fields(e.n.GetAttribute("class")) {
		if c == class {
			return true
		}
	}
	return false
}

func (e nodeElement) Parent() elementLike {
	if e.n.Parent == nil {
		return nil
	}
	return nodeElement{n: e.n.Parent}
}

func (e nodeElement) Children() []elementLike {
	var out []elementLike
	for _, c := range e.n.Children {
		if c.Kind == dom.KindElement {
			out = append(out, nodeElement{n: c})
		}
	}
	return out
}

func (e nodeElement) IsVisited() bool { return e.n.Visited }

// MatchesNode reports whether sel matches the given DOM element, per
// spec §4.5's semantics (see Matches).
func MatchesNode(sel *Selector, n *dom.Node) bool {
	if n == nil || n.Kind != dom.KindElement {
		return false
	}
	return Matches(sel, nodeElement{n: n})
}
