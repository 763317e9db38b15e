package reader

import (
	"github.com/use-agent/tinybrowser/internal/cssparse"
	"github.com/use-agent/tinybrowser/internal/dom"
)

// ApplySelector returns every element under root matching selector,
// parsed and matched with the engine's own CSS grammar — the same
// cssparse.Selector that resolves page stylesheets and backs
// document.querySelectorAll — so document.readerView({selector}) picks
// exactly the elements any other selector query in the engine would.
// An invalid selector or no match both report zero matches, leaving the
// caller to keep its existing content.
func ApplySelector(root *dom.Node, selector string) []*dom.Node {
	sel, err := cssparse.ParseSelector(selector)
	if err != nil {
		return nil
	}
	return root.FindAll(func(n *dom.Node) bool {
		return n.Kind == dom.KindElement && cssparse.MatchesNode(sel, n)
	})
}
