package layout

import "github.com/use-agent/tinybrowser/internal/dom"

// layoutBlock lays out node as a Block child of parent at (x,y) with the
// given width, per spec §4.7's mode selection: none → zero size; inline
// → group this node's own subtree into Line children directly; block →
// recurse into layoutBlockChildren's grouping rule.
func layoutBlock(parent *Object, node *dom.Node, x, y, width, vstep float64, metrics Metrics) *Object {
	obj := newChild(KindBlock, parent, node)
	switch displayOf(node) {
	case "none":
		obj.Box = Box{X: x, Y: y, W: 0, H: 0}
	case "inline":
		h := buildInlineContent(obj, []*dom.Node{node}, x, y, width, vstep, metrics)
		obj.Box = Box{X: x, Y: y, W: width, H: h}
	default: // "block"
		layoutBlockChildren(obj, node, x, y, width, vstep, metrics)
		obj.Box = Box{X: x, Y: y, W: width, H: blockChildrenHeight(obj)}
	}
	return obj
}

// layoutBlockChildren implements spec §4.7's block grouping rule: a run
// of non-block children becomes one synthesized inline Block; a block
// child flushes the run and becomes its own Block; display:none children
// are skipped; an <h6> forces a run-in joined with the next block;
// <nav id=toc> is preceded by a synthesized "Table of Contents" <pre>.
func layoutBlockChildren(obj *Object, node *dom.Node, x, y, width, vstep float64, metrics Metrics) {
	cursorY := y
	var run []*dom.Node
	var pendingRunIn *dom.Node

	flushRun := func() {
		if len(run) == 0 {
			return
		}
		inlineObj := newChild(KindBlock, obj, nil)
		h := buildInlineContent(inlineObj, run, x, cursorY, width, vstep, metrics)
		inlineObj.Box = Box{X: x, Y: cursorY, W: width, H: h}
		cursorY += h
		run = nil
	}

	for _, child := range node.Children {
		if child.Kind == dom.KindText {
			run = append(run, child)
			continue
		}
		if displayOf(child) == "none" {
			continue
		}
		if child.Tag == "h6" {
			flushRun()
			pendingRunIn = child
			continue
		}
		if child.Tag == "nav" && child.GetAttribute("id") == "toc" {
			flushRun()
			toc := dom.NewElement("pre")
			toc.Style = map[string]string{"white-space": "pre"}
			toc.AppendChild(dom.NewText("Table of Contents"))
			tocBlock := layoutBlock(obj, toc, x, cursorY, width, vstep, metrics)
			cursorY += tocBlock.Box.H
		}
		if displayOf(child) != "block" {
			run = append(run, child)
			continue
		}

		flushRun()
		target := child
		if pendingRunIn != nil {
			target = mergeRunIn(pendingRunIn, child)
			pendingRunIn = nil
		}
		childBlock := layoutBlock(obj, target, x, cursorY, width, vstep, metrics)
		cursorY += childBlock.Box.H
	}

	if pendingRunIn != nil {
		run = append(run, pendingRunIn.Children...)
		pendingRunIn = nil
	}
	flushRun()
}

// mergeRunIn builds a transient node combining an <h6>'s children ahead
// of block's own children, for spec §4.7's run-in behavior. Uses cloned
// nodes so the real DOM tree (and its parent back-references) is left
// untouched by this layout-only synthesis.
func mergeRunIn(h6, block *dom.Node) *dom.Node {
	merged := dom.NewElement(block.Tag)
	for k, v := range block.Attrs {
		merged.SetAttribute(k, v)
	}
	merged.Style = block.Style
	for _, c := range h6.Children {
		merged.AppendChild(deepClone(c))
	}
	for _, c := range block.Children {
		merged.AppendChild(deepClone(c))
	}
	return merged
}

func deepClone(n *dom.Node) *dom.Node {
	if n.Kind == dom.KindText {
		return dom.NewText(n.Text)
	}
	c := dom.NewElement(n.Tag)
	for k, v := range n.Attrs {
		c.SetAttribute(k, v)
	}
	c.Style = n.Style
	c.Visited = n.Visited
	for _, ch := range n.Children {
		c.AppendChild(deepClone(ch))
	}
	return c
}
