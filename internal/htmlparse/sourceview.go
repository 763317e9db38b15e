package htmlparse

import (
	"strings"

	"github.com/use-agent/tinybrowser/internal/dom"
)

// ParseSourceView walks the same bytes as Parse but produces the
// "view-source:" rendering per spec §4.4: a <pre> wrapper, tag-open
// punctuation wrapped in <b>, "<!...>" fragments wrapped in <i>, and all
// other text preserved verbatim.
func ParseSourceView(src string) *ParseResult {
	html := dom.NewElement("html")
	body := dom.NewElement("body")
	html.AppendChild(body)
	pre := dom.NewElement("pre")
	body.AppendChild(pre)

	i := 0
	for i < len(src) {
		switch {
		case strings.HasPrefix(src[i:], "<!"):
			end := strings.IndexByte(src[i:], '>')
			var frag string
			if end < 0 {
				frag = src[i:]
				i = len(src)
			} else {
				frag = src[i : i+end+1]
				i += end + 1
			}
			wrap := dom.NewElement("i")
			wrap.AppendChild(dom.NewText(frag))
			pre.AppendChild(wrap)
		case src[i] == '<':
			end := strings.IndexByte(src[i:], '>')
			var frag string
			if end < 0 {
				frag = src[i:]
				i = len(src)
			} else {
				frag = src[i : i+end+1]
				i += end + 1
			}
			wrap := dom.NewElement("b")
			wrap.AppendChild(dom.NewText(frag))
			pre.AppendChild(wrap)
		default:
			start := i
			for i < len(src) && src[i] != '<' {
				i++
			}
			pre.AppendChild(dom.NewText(src[start:i]))
		}
	}

	return &ParseResult{Root: html}
}
