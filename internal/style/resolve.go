// Package style implements spec §4.6's cascade: per-node inheritance from
// the parent's resolved property set, ascending-priority rule application,
// inline style merge, and percent font-size resolution against the
// parent's absolute pixel size.
package style

import (
	"sort"
	"strconv"
	"strings"

	"github.com/use-agent/tinybrowser/internal/cssparse"
	"github.com/use-agent/tinybrowser/internal/dom"
)

// inheritedProps is the set of properties that flow from parent to child
// when the child has no rule or inline override for them.
var inheritedProps = []string{"font-size", "font-style", "font-weight", "font-family", "color", "white-space", "text-align"}

// Defaults are the root's inherited property values, per spec §4.6.
var Defaults = map[string]string{
	"font-size":   "16px",
	"font-style":  "normal",
	"font-weight": "normal",
	"font-family": "",
	"color":       "black",
	"white-space": "normal",
	"text-align":  "left",
}

// Resolve walks root depth-first, applying rules (sorted ascending by
// priority) and each node's inline style attribute, storing the result
// into node.Style. Per spec §3 invariant (c), every node ends up with an
// absolute-pixel font-size.
func Resolve(root *dom.Node, rules []cssparse.Rule) {
	sorted := make([]cssparse.Rule, len(rules))
	copy(sorted, rules)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Priority < sorted[j].Priority })

	var walk func(n *dom.Node, parentStyle map[string]string)
	walk = func(n *dom.Node, parentStyle map[string]string) {
		if n.Kind != dom.KindElement {
			return
		}
		if n.Style == nil {
			n.Style = make(map[string]string)
		}
		for _, p := range inheritedProps {
			n.Style[p] = parentStyle[p]
		}

		for _, rule := range sorted {
			if cssparse.MatchesNode(rule.Selector, n) {
				for prop, val := range rule.Declarations {
					n.Style[prop] = val
				}
			}
		}

		if inline := n.GetAttribute("style"); inline != "" {
			_, decls := cssparse.ParseInlineStyle(inline)
			for prop, val := range decls {
				n.Style[prop] = val
			}
		}

		resolveFontSize(n, parentStyle)

		for _, c := range n.Children {
			walk(c, n.Style)
		}
	}
	walk(root, Defaults)
}

// resolveFontSize implements spec §4.6's length parser: px, em/rem
// (16×), % (that percentage of the parent's already-absolute
// font-size); unknown/missing defaults to 16.
func resolveFontSize(n *dom.Node, parentStyle map[string]string) {
	parentPx := pxValue(parentStyle["font-size"])
	raw := n.Style["font-size"]
	n.Style["font-size"] = strconv.FormatFloat(lengthToPx(raw, parentPx), 'f', -1, 64) + "px"
}

// pxValue extracts the numeric px magnitude from an already-resolved
// "Npx" string, defaulting to 16 if malformed.
func pxValue(s string) float64 {
	s = strings.TrimSuffix(s, "px")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 16
	}
	return v
}

// lengthToPx resolves a raw CSS length token against parentPx, per spec
// §4.6's rule: px passes through; em/rem are 16×; % is that percentage
// of parentPx; anything else (including empty) defaults to 16.
func lengthToPx(raw string, parentPx float64) float64 {
	raw = strings.TrimSpace(raw)
	switch {
	case raw == "":
		return 16
	case strings.HasSuffix(raw, "px"):
		n, err := strconv.ParseFloat(strings.TrimSuffix(raw, "px"), 64)
		if err != nil {
			return 16
		}
		return n
	case strings.HasSuffix(raw, "rem"):
		n, err := strconv.ParseFloat(strings.TrimSuffix(raw, "rem"), 64)
		if err != nil {
			return 16
		}
		return n * 16
	case strings.HasSuffix(raw, "em"):
		n, err := strconv.ParseFloat(strings.TrimSuffix(raw, "em"), 64)
		if err != nil {
			return 16
		}
		return n * 16
	case strings.HasSuffix(raw, "%"):
		n, err := strconv.ParseFloat(strings.TrimSuffix(raw, "%"), 64)
		if err != nil {
			return 16
		}
		return parentPx * (n / 100)
	default:
		return 16
	}
}

// Get returns a node's resolved style property, or "" if unset.
func Get(n *dom.Node, prop string) string {
	if n.Style == nil {
		return ""
	}
	return n.Style[prop]
}

// FontSizePx returns a node's resolved font-size in pixels.
func FontSizePx(n *dom.Node) float64 {
	return pxValue(Get(n, "font-size"))
}
