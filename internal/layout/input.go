package layout

import (
	"strconv"
	"strings"

	"github.com/use-agent/tinybrowser/internal/dom"
)

func inputDefaultWidth(inputType string) float64 {
	switch inputType {
	case "checkbox":
		return 16
	case "hidden":
		return 0
	default:
		return 200
	}
}

func inputDefaultHeight(inputType string) float64 {
	switch inputType {
	case "checkbox":
		return 16
	case "hidden":
		return 0
	default:
		return 0 // derived from font metrics below
	}
}

// LayoutInput lays out an <input>/<button> as a single inline box, per
// spec §4.7: sized by its width style or type default, with border and
// padding contributing to box height and ascent/descent. A button with
// non-text children lays them out as block children inside the box.
func LayoutInput(parent *Object, n *dom.Node, x float64, metrics Metrics) *Object {
	obj := newChild(KindInput, parent, n)

	inputType := n.GetAttribute("type")
	if n.Tag == "button" {
		inputType = "button"
	} else if inputType == "" {
		inputType = "text"
	}
	obj.InputType = inputType

	sizePx := pxValue(n.Style["font-size"])
	bold := styleBold(n.Style["font-weight"])
	italic := styleItalic(n.Style["font-style"])
	family := n.Style["font-family"]

	width := inputDefaultWidth(inputType)
	if w := n.Style["width"]; w != "" {
		if px, ok := parsePx(w); ok {
			width = px
		}
	}

	borderWidth := 0.0
	if n.Style["border-style"] != "" && n.Style["border-style"] != "none" {
		if px, ok := parsePx(n.Style["border-width"]); ok {
			borderWidth = px
		} else {
			borderWidth = 1
		}
	}
	padTop, _ := parsePxOr(n.Style["padding-top"], 0)
	padBottom, _ := parsePxOr(n.Style["padding-bottom"], 0)

	contentAscent := metrics.Ascent(family, sizePx, bold, italic)
	contentDescent := metrics.Descent(family, sizePx, bold, italic)

	obj.Ascent = contentAscent + padTop + borderWidth
	obj.Descent = contentDescent + padBottom + borderWidth

	height := inputDefaultHeight(inputType)
	if height == 0 {
		height = obj.Ascent + obj.Descent
	}

	obj.Box = Box{X: x, W: width, H: height}

	// A button with non-text element children lays them out as block
	// children inside the box (spec §4.7).
	if n.Tag == "button" && hasElementChild(n) {
		cy := padTop + borderWidth
		for _, c := range n.Children {
			if c.Kind != dom.KindElement {
				continue
			}
			child := layoutBlock(obj, c, x+borderWidth, cy, width-2*borderWidth, 0, metrics)
			cy += child.Box.H
		}
	}

	return obj
}

func hasElementChild(n *dom.Node) bool {
	for _, c := range n.Children {
		if c.Kind == dom.KindElement {
			return true
		}
	}
	return false
}

func parsePx(s string) (float64, bool) {
	s = strings.TrimSpace(strings.TrimSuffix(s, "px"))
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

func parsePxOr(s string, fallback float64) (float64, bool) {
	if v, ok := parsePx(s); ok {
		return v, true
	}
	return fallback, false
}

// pxValue reads an already-resolved "Npx" font-size, defaulting to 16
// when it is missing or malformed.
func pxValue(s string) float64 {
	if v, ok := parsePx(s); ok {
		return v
	}
	return 16
}
