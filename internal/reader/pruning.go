package reader

import (
	"math"
	"strings"

	"github.com/use-agent/tinybrowser/internal/dom"
	"github.com/use-agent/tinybrowser/internal/style"
)

// pruneScoreThreshold is the minimum weighted score a block element must
// reach to be retained as main content. Blocks scoring at or below this
// are discarded as boilerplate (navigation, sidebars, footers, ads).
const pruneScoreThreshold = 0.0

// Signal weights for the pruning scorer.
const (
	wTextDensity   = 3.0
	wLinkDensity   = -2.0
	wTagWeight     = 1.5
	wClassIDWeight = 1.0
	wTextLength    = 0.5
	wFontSize      = 0.4
)

var positiveClassIDPatterns = []string{
	"content", "article", "post", "entry", "body", "main", "text",
}

var negativeClassIDPatterns = []string{
	"sidebar", "ad", "widget", "nav", "menu", "comment", "footer",
	"header", "banner", "popup", "modal", "cookie", "social", "share",
	"related", "recommend", "promo",
}

// PruneContent extracts main content from a parsed document using a
// scoring-based approach, the alternative to readability extraction when
// it misfires on a page's unusual markup.
//
// content is first run through the engine's own cascade (style.Resolve
// against the built-in stylesheet) so each candidate block's score
// reflects what the tab would actually render it as — a font-size the
// cascade resolved larger or smaller than the 16px root, not just the
// element's tag name — rather than scoring raw, unstyled markup.
//
// Each top-level child of content's <body> (or of content itself, if it
// has no <body> — e.g. a selector/filter override already narrowed to a
// fragment) is scored on text density, link density, semantic tag
// weight, class/id signals, resolved font-size, and text length. Only
// blocks exceeding the threshold are retained, reparented under a
// synthetic container. If nothing passes, the container itself is
// returned unchanged so the pipeline never produces empty output.
func PruneContent(content *dom.Node) *dom.Node {
	style.Resolve(content, style.Builtin())

	container := content
	if body := content.Find(func(n *dom.Node) bool { return n.Kind == dom.KindElement && n.Tag == "body" }); body != nil {
		container = body
	}

	candidates := append([]*dom.Node(nil), container.Children...)
	kept := dom.NewElement("div")
	for _, el := range candidates {
		if el.Kind != dom.KindElement {
			continue
		}
		if scoreElement(el) > pruneScoreThreshold {
			kept.AppendChild(el)
		}
	}

	if len(kept.Children) == 0 {
		return container
	}
	return kept
}

func scoreElement(el *dom.Node) float64 {
	fullHTML := dom.OuterHTML(el)
	text := strings.TrimSpace(el.TextContent())
	textLen := len(text)
	totalLen := len(fullHTML)

	textDensity := 0.0
	if totalLen > 0 {
		textDensity = float64(textLen) / float64(totalLen)
	}

	linkTextLen := 0
	for _, a := range el.FindAll(func(n *dom.Node) bool { return n.Kind == dom.KindElement && n.Tag == "a" }) {
		linkTextLen += len(strings.TrimSpace(a.TextContent()))
	}
	linkDensity := 0.0
	if textLen > 0 {
		linkDensity = float64(linkTextLen) / float64(textLen)
	}

	tagW := tagWeight(el)
	classIDW := classIDWeight(el)
	textLenScore := math.Log10(float64(textLen) + 1)
	fontScore := fontSizeWeight(el)

	return textDensity*wTextDensity +
		linkDensity*wLinkDensity +
		tagW*wTagWeight +
		classIDW*wClassIDWeight +
		textLenScore*wTextLength +
		fontScore*wFontSize
}

func tagWeight(el *dom.Node) float64 {
	switch el.Tag {
	case "article", "main", "section":
		return 5.0
	case "nav", "footer", "aside", "header":
		return -5.0
	default:
		return 0.0
	}
}

func classIDWeight(el *dom.Node) float64 {
	combined := strings.ToLower(el.GetAttribute("class") + " " + el.GetAttribute("id"))

	score := 0.0
	for _, pat := range positiveClassIDPatterns {
		if strings.Contains(combined, pat) {
			score += 3.0
			break
		}
	}
	for _, pat := range negativeClassIDPatterns {
		if strings.Contains(combined, pat) {
			score -= 3.0
			break
		}
	}
	return score
}

// fontSizeWeight scores a resolved font-size against the 16px root as
// (px-16)/16: larger text scores positive, smaller text negative.
// Boilerplate nav/footer text reliably cascades to the default or
// smaller, while pull quotes and bylines often don't.
func fontSizeWeight(el *dom.Node) float64 {
	px := style.FontSizePx(el)
	if px <= 0 {
		return 0
	}
	return (px - 16) / 16
}
