package reader

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/use-agent/tinybrowser/internal/weburl"
)

// inlineLinkRe matches Markdown inline links: [text](url)
var inlineLinkRe = regexp.MustCompile(`\[([^\]]+)\]\(([^)]+)\)`)

// ConvertToCitations converts inline Markdown links that leave
// sourceURL's origin into reference-style citations, so a reader-mode
// Markdown export reads like a paper rather than a wall of outbound
// URLs. Links that stay on sourceURL's own origin — in-page anchors,
// same-site navigation — are left inline, using weburl.SameOrigin, the
// same same-origin test navigation and cookie scoping apply elsewhere
// in the engine.
//
// Input:  "See [Google](https://google.com) and [GitHub](https://github.com)"
// Output: "See [Google][1] and [GitHub][2]\n\n---\n[1]: https://google.com\n[2]: https://github.com"
//
// Duplicate URLs reuse the same reference number.
func ConvertToCitations(markdown, sourceURL string) string {
	base, err := weburl.Parse(sourceURL, nil)
	if err != nil {
		return markdown
	}

	urlToNum := make(map[string]int)
	var refs []string
	counter := 0

	result := inlineLinkRe.ReplaceAllStringFunc(markdown, func(match string) string {
		parts := inlineLinkRe.FindStringSubmatch(match)
		if len(parts) != 3 {
			return match
		}
		text, url := parts[1], parts[2]

		if target, err := weburl.Parse(url, base); err == nil && weburl.SameOrigin(target, base) {
			return match
		}

		num, exists := urlToNum[url]
		if !exists {
			counter++
			num = counter
			urlToNum[url] = num
			refs = append(refs, fmt.Sprintf("[%d]: %s", num, url))
		}
		return fmt.Sprintf("[%s][%d]", text, num)
	})

	if len(refs) == 0 {
		return markdown
	}
	return result + "\n\n---\n" + strings.Join(refs, "\n")
}
