package layout

import (
	"strings"

	"github.com/use-agent/tinybrowser/internal/dom"
)

// softHyphen is the entity-table 'shy' character (spec §4.4's entity
// list), the split point soft-hyphen wrapping looks for.
const softHyphen = '­'

// inlineCtx carries the style overrides spec §4.7 names for <sup> and
// <abbr> down through the inline walk, without mutating the node's own
// resolved style.
type inlineCtx struct {
	sizeOverride float64
	boldOverride bool
	topAlign     bool
	upper        bool
}

// inlineBuilder accumulates Line/Text/Input children into a single
// inline-mode Block, per spec §4.7's inline layout algorithm.
type inlineBuilder struct {
	obj     *Object
	metrics Metrics
	x0      float64
	width   float64
	vstep   float64
	y       float64

	line                  *Object
	cursorX               float64
	maxAscent, maxDescent float64
}

// buildInlineContent walks nodes (a run of sibling DOM nodes grouped by
// the block-grouping rule, or a single node whose own display is
// inline) and returns the total height consumed.
func buildInlineContent(containerObj *Object, nodes []*dom.Node, x, y, width, vstep float64, metrics Metrics) float64 {
	b := &inlineBuilder{obj: containerObj, metrics: metrics, x0: x, width: width, vstep: vstep, y: y}
	b.newLine()
	for _, n := range nodes {
		b.walk(n, inlineCtx{})
	}
	b.flushLine()
	return b.y - y
}

func (b *inlineBuilder) newLine() {
	b.flushLine()
	b.line = newChild(KindLine, b.obj, nil)
	b.cursorX = b.x0
	b.maxAscent, b.maxDescent = 0, 0
}

// flushLine closes out the current line: positions its children's
// baselines per spec §4.7 (line height = 1.25*(max_ascent+max_descent);
// baseline = top + 1.25*max_ascent - word_ascent; top-aligned words use
// baseline - 1.25*max_ascent), then advances the vertical cursor.
func (b *inlineBuilder) flushLine() {
	if b.line == nil {
		return
	}
	maxAscent, maxDescent := b.maxAscent, b.maxDescent
	if maxAscent == 0 && maxDescent == 0 {
		maxAscent, maxDescent = 0.8*16, 0.2*16 // blank-line height, base 16px font
	}
	lineHeight := 1.25 * (maxAscent + maxDescent)
	top := b.y
	for _, word := range b.line.Children {
		baseline := top + 1.25*maxAscent - word.Ascent
		if word.Top {
			baseline -= 1.25 * maxAscent
		}
		word.Box.Y = baseline - word.Ascent
		word.Box.H = word.Ascent + word.Descent
	}
	b.line.Box = Box{X: b.x0, Y: top, W: b.width, H: lineHeight}
	b.y += lineHeight
	b.line = nil
}

func (b *inlineBuilder) walk(n *dom.Node, ctx inlineCtx) {
	if n.Kind == dom.KindText {
		b.emitText(n, ctx)
		return
	}
	if displayOf(n) == "none" {
		return
	}
	switch n.Tag {
	case "br":
		b.newLine()
		return
	case "input", "button":
		b.emitInput(n)
		return
	case "sup":
		ctx.sizeOverride = 8
		ctx.topAlign = true
	case "abbr":
		ctx.sizeOverride = 10
		ctx.boldOverride = true
		ctx.upper = true
	case "p", "h1", "h2":
		b.newLine()
		b.y += b.vstep
		for _, c := range n.Children {
			b.walk(c, ctx)
		}
		b.newLine()
		b.y += b.vstep
		return
	}
	for _, c := range n.Children {
		b.walk(c, ctx)
	}
}

func (b *inlineBuilder) emitText(n *dom.Node, ctx inlineCtx) {
	style := map[string]string{}
	if n.Parent != nil {
		style = n.Parent.Style
	}
	family := style["font-family"]
	sizePx := pxValue(style["font-size"])
	if ctx.sizeOverride != 0 {
		sizePx = ctx.sizeOverride
	}
	bold := styleBold(style["font-weight"]) || ctx.boldOverride
	italic := styleItalic(style["font-style"])

	text := n.Text
	if ctx.upper {
		text = strings.ToUpper(text)
	}

	pre := style["white-space"] == "pre"
	if pre {
		lines := strings.Split(text, "\n")
		for i, ln := range lines {
			if ln != "" {
				b.placeWord(n, ln, family, sizePx, bold, italic, ctx.topAlign)
			}
			if i < len(lines)-1 {
				b.newLine()
			}
		}
		return
	}
	for _, word := range strings.Fields(text) {
		b.placeWord(n, word, family, sizePx, bold, italic, ctx.topAlign)
	}
}

// placeWord handles overflow and soft-hyphen splitting for one word
// token, per spec §4.7. node is the originating text node, carried onto
// the placed Text object so paint/click can walk back to the DOM (a
// Text object with a nil Node cannot be hit-tested or styled).
func (b *inlineBuilder) placeWord(node *dom.Node, word, family string, sizePx float64, bold, italic, topAlign bool) {
	spaceWidth := sizePx * 0.3
	remaining := word
	for {
		w := b.metrics.MeasureWord(family, sizePx, bold, italic, remaining)
		avail := (b.x0 + b.width) - b.cursorX
		if w <= avail || b.cursorX <= b.x0 {
			b.place(node, remaining, family, sizePx, bold, italic, topAlign)
			b.cursorX += w + spaceWidth
			return
		}
		if splitText, splitWidth, rest, ok := b.softHyphenSplit(remaining, family, sizePx, bold, italic, avail); ok {
			b.place(node, splitText, family, sizePx, bold, italic, topAlign)
			b.cursorX += splitWidth
			b.newLine()
			remaining = rest
			continue
		}
		b.newLine()
	}
}

// softHyphenSplit implements the greedy soft-hyphen split: the longest
// prefix of hyphen-separated parts (plus a trailing "-") that still
// fits avail.
func (b *inlineBuilder) softHyphenSplit(word, family string, sizePx float64, bold, italic bool, avail float64) (prefix string, width float64, rest string, ok bool) {
	parts := strings.Split(word, string(softHyphen))
	if len(parts) < 2 {
		return "", 0, "", false
	}
	best := -1
	var bestWidth float64
	for k := 1; k <= len(parts); k++ {
		candidate := strings.Join(parts[:k], "") + "-"
		w := b.metrics.MeasureWord(family, sizePx, bold, italic, candidate)
		if w <= avail {
			best = k
			bestWidth = w
		} else {
			break
		}
	}
	if best < 1 {
		return "", 0, "", false
	}
	return strings.Join(parts[:best], "") + "-", bestWidth, strings.Join(parts[best:], ""), true
}

func (b *inlineBuilder) place(node *dom.Node, text, family string, sizePx float64, bold, italic, topAlign bool) {
	obj := newChild(KindText, b.line, node)
	obj.Text = text
	obj.Ascent = b.metrics.Ascent(family, sizePx, bold, italic)
	obj.Descent = b.metrics.Descent(family, sizePx, bold, italic)
	obj.Top = topAlign
	obj.Box.X = b.cursorX
	obj.Box.W = b.metrics.MeasureWord(family, sizePx, bold, italic, text)
	if obj.Ascent > b.maxAscent {
		b.maxAscent = obj.Ascent
	}
	if obj.Descent > b.maxDescent {
		b.maxDescent = obj.Descent
	}
}

func (b *inlineBuilder) emitInput(n *dom.Node) {
	obj := LayoutInput(b.line, n, b.cursorX, b.metrics)
	if obj.Ascent > b.maxAscent {
		b.maxAscent = obj.Ascent
	}
	if obj.Descent > b.maxDescent {
		b.maxDescent = obj.Descent
	}
	b.cursorX = obj.Box.X + obj.Box.W + 4
}
