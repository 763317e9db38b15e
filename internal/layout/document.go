package layout

import "github.com/use-agent/tinybrowser/internal/dom"

// LayoutDocument builds the full layout tree for root (the <html>
// element) against a viewport of (width, height), applying hstep/vstep
// as page margins, and delegates to a single Block child, per spec
// §4.7's Document layout object.
func LayoutDocument(root *dom.Node, width, height, hstep, vstep float64, metrics Metrics) *Object {
	if metrics == nil {
		metrics = DefaultMetrics{}
	}
	doc := &Object{Kind: KindDocument, Node: root, Box: Box{X: 0, Y: 0, W: width, H: height}}

	contentRoot := root
	if body := root.Find(func(n *dom.Node) bool { return n.Kind == dom.KindElement && n.Tag == "body" }); body != nil {
		contentRoot = body
	}

	block := newChild(KindBlock, doc, contentRoot)
	contentWidth := width - 2*hstep
	layoutBlockChildren(block, contentRoot, hstep, vstep, contentWidth, vstep, metrics)
	block.Box = Box{X: hstep, Y: vstep, W: contentWidth, H: blockChildrenHeight(block)}

	doc.Box.H = block.Box.Y + block.Box.H + vstep
	return doc
}

func blockChildrenHeight(b *Object) float64 {
	h := 0.0
	for _, c := range b.Children {
		h += c.Box.H
	}
	return h
}
