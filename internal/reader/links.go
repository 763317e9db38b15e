package reader

import (
	"strings"

	"github.com/use-agent/tinybrowser/internal/dom"
	"github.com/use-agent/tinybrowser/internal/weburl"
)

// ExtractLinks walks root for <a href> elements and resolves each href
// against base with the engine's own URL resolver — the same
// weburl.Parse/weburl.SameOrigin navigation and cookie scoping use —
// instead of a generic net/url join, so a relative href that a
// navigation-triggered fetch of this page would treat as same-origin
// is flagged the same way here.
func ExtractLinks(root *dom.Node, base *weburl.URL) []Link {
	var links []Link
	seen := make(map[string]struct{})

	for _, a := range root.FindAll(isHrefAnchor) {
		href := a.GetAttribute("href")
		resolved, err := weburl.Parse(href, base)
		if err != nil || (resolved.Scheme != weburl.SchemeHTTP && resolved.Scheme != weburl.SchemeHTTPS) {
			continue
		}
		abs := resolved.String()
		if _, ok := seen[abs]; ok {
			continue
		}
		seen[abs] = struct{}{}
		links = append(links, Link{
			Href:     abs,
			Text:     strings.TrimSpace(a.TextContent()),
			External: !weburl.SameOrigin(resolved, base),
		})
	}
	return links
}

// ExtractImages walks root for <img src> elements and resolves each src
// against base, skipping data: URIs (already-inline images need no
// fetch).
func ExtractImages(root *dom.Node, base *weburl.URL) []Image {
	var images []Image
	seen := make(map[string]struct{})

	for _, img := range root.FindAll(isSrcImage) {
		src := img.GetAttribute("src")
		resolved, err := weburl.Parse(src, base)
		if err != nil || resolved.Scheme == weburl.SchemeData {
			continue
		}
		abs := resolved.String()
		if _, ok := seen[abs]; ok {
			continue
		}
		seen[abs] = struct{}{}
		images = append(images, Image{Src: abs, Alt: strings.TrimSpace(img.GetAttribute("alt"))})
	}
	return images
}

func isHrefAnchor(n *dom.Node) bool {
	return n.Kind == dom.KindElement && n.Tag == "a" && n.GetAttribute("href") != ""
}

func isSrcImage(n *dom.Node) bool {
	return n.Kind == dom.KindElement && n.Tag == "img" && n.GetAttribute("src") != ""
}
