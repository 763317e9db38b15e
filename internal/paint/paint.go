// Package paint walks a layout tree and produces spec §3's Display
// primitive list: an ordered sequence of rect/outline/line/text
// primitives consumed by the windowing collaborator, regenerated on
// every paint per spec §4.7/§4.8.
package paint

import (
	"strings"

	"github.com/use-agent/tinybrowser/internal/layout"
)

// Kind tags the display-primitive variant (spec §9: tagged union, no
// virtual dispatch).
type Kind int

const (
	KindRect Kind = iota
	KindOutline
	KindLine
	KindText
)

// Primitive is one entry in the display list.
type Primitive struct {
	Kind Kind
	X, Y, W, H float64

	// Rect/Outline
	Color   string
	Stipple bool // checkbox "inner black rect" marker, li marker, etc: solid fill

	// Line
	Width float64

	// Text
	Text   string
	Family string
	SizePx float64
	Bold   bool
	Italic bool
}

// List is an ordered display list.
type List []Primitive

// Paint walks obj (a layout tree root, typically a Document object) and
// appends primitives in document order, matching spec §4.7's painting
// rules for Block/Input.
func Paint(obj *layout.Object) List {
	var out List
	walk(obj, &out)
	return out
}

func walk(obj *layout.Object, out *List) {
	switch obj.Kind {
	case layout.KindBlock:
		paintBlockBackground(obj, out)
		paintListMarker(obj, out)
	case layout.KindText:
		paintText(obj, out)
	case layout.KindInput:
		paintInput(obj, out)
	}
	for _, c := range obj.Children {
		walk(c, out)
	}
}

func paintBlockBackground(obj *layout.Object, out *List) {
	if obj.Node == nil || obj.Node.Style == nil {
		return
	}
	bg := obj.Node.Style["background-color"]
	if bg == "" {
		return
	}
	*out = append(*out, Primitive{Kind: KindRect, X: obj.Box.X, Y: obj.Box.Y, W: obj.Box.W, H: obj.Box.H, Color: bg})
}

// paintListMarker draws a 4x4 marker for <li>, 8px left of content and
// 14px below the block's top, per spec §4.7.
func paintListMarker(obj *layout.Object, out *List) {
	if obj.Node == nil || obj.Node.Tag != "li" {
		return
	}
	*out = append(*out, Primitive{
		Kind: KindRect, X: obj.Box.X - 8, Y: obj.Box.Y + 14, W: 4, H: 4,
		Color: "black", Stipple: true,
	})
}

func paintText(obj *layout.Object, out *List) {
	family, sizePx, bold, italic := "", 16.0, false, false
	if obj.Node != nil && obj.Node.Parent != nil && obj.Node.Parent.Style != nil {
		style := obj.Node.Parent.Style
		family = style["font-family"]
		bold = strings.EqualFold(style["font-weight"], "bold")
		italic = strings.EqualFold(style["font-style"], "italic")
	}
	sizePx = obj.Ascent + obj.Descent
	color := "black"
	if obj.Node != nil && obj.Node.Parent != nil && obj.Node.Parent.Style != nil {
		if c := obj.Node.Parent.Style["color"]; c != "" {
			color = c
		}
	}
	*out = append(*out, Primitive{
		Kind: KindText, X: obj.Box.X, Y: obj.Box.Y, W: obj.Box.W, H: obj.Box.H,
		Text: obj.Text, Family: family, SizePx: sizePx, Bold: bold, Italic: italic, Color: color,
	})
}

// paintInput draws the background/outline/text/caret for a text-like
// input, the checkbox inner rect, or a button's children/text, per spec
// §4.7.
func paintInput(obj *layout.Object, out *List) {
	n := obj.Node
	if n == nil {
		return
	}
	bg := n.Style["background-color"]
	if bg == "" {
		bg = "white"
	}
	*out = append(*out, Primitive{Kind: KindRect, X: obj.Box.X, Y: obj.Box.Y, W: obj.Box.W, H: obj.Box.H, Color: bg})
	if n.Style["border-style"] != "" && n.Style["border-style"] != "none" {
		*out = append(*out, Primitive{Kind: KindOutline, X: obj.Box.X, Y: obj.Box.Y, W: obj.Box.W, H: obj.Box.H, Color: n.Style["border-color"], Width: 1})
	}

	switch obj.InputType {
	case "checkbox":
		if n.GetAttribute("ischecked") == "true" {
			*out = append(*out, Primitive{Kind: KindRect, X: obj.Box.X + 3, Y: obj.Box.Y + 3, W: obj.Box.W - 6, H: obj.Box.H - 6, Color: "black", Stipple: true})
		}
	case "button":
		// Button children (if structured) are painted by the normal
		// recursive walk; nothing extra to emit here beyond background.
	case "hidden":
		// zero-size box; nothing to paint.
	default:
		value := n.GetAttribute("value")
		if obj.InputType == "password" {
			value = strings.Repeat("*", len([]rune(value)))
		}
		if value != "" {
			*out = append(*out, Primitive{
				Kind: KindText, X: obj.Box.X + 2, Y: obj.Box.Y, W: obj.Box.W - 4, H: obj.Box.H,
				Text: value, Color: "black",
			})
		}
		if n.Focus {
			caretX := obj.Box.X + 2 + float64(n.Caret)*8
			*out = append(*out, Primitive{Kind: KindLine, X: caretX, Y: obj.Box.Y + 2, W: 0, H: obj.Box.H - 4, Color: "black", Width: 1})
		}
	}
}
