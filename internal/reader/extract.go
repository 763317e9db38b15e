package reader

import (
	"log/slog"
	nurl "net/url"
	"strings"

	readability "github.com/go-shiori/go-readability"
)

// minContentLength is the minimum TextContent length (in characters) for
// readability output to be considered valid. Below this we assume the
// algorithm failed to find the main content and fall back to raw HTML.
const minContentLength = 50

// ExtractContent runs the Mozilla Readability algorithm on rawHTML.
//
// Fallback behaviour (reader mode must never fail just because
// readability choked):
//   - invalid source URL          → raw HTML
//   - readability.FromReader errs → raw HTML
//   - extracted TextContent < 50  → raw HTML
func ExtractContent(rawHTML string, sourceURL string) (readability.Article, bool) {
	parsedURL, err := nurl.Parse(sourceURL)
	if err != nil {
		slog.Warn("reader: invalid source URL, falling back to raw HTML", "url", sourceURL, "error", err)
		return fallbackArticle(rawHTML), false
	}

	article, err := readability.FromReader(strings.NewReader(rawHTML), parsedURL)
	if err != nil {
		slog.Warn("reader: extraction failed, falling back to raw HTML", "url", sourceURL, "error", err)
		return fallbackArticle(rawHTML), false
	}

	if len(strings.TrimSpace(article.TextContent)) < minContentLength {
		slog.Warn("reader: extracted content too short, falling back to raw HTML", "url", sourceURL, "length", len(article.TextContent))
		return fallbackArticle(rawHTML), false
	}

	return article, true
}

func fallbackArticle(rawHTML string) readability.Article {
	return readability.Article{Content: rawHTML, TextContent: rawHTML}
}
