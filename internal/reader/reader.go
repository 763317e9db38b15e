// Package reader implements the engine's Reader Mode: given a page's
// rendered HTML, it extracts the main article content and metadata the
// same two-stage way the teacher's purify service cleaned pages for LLM
// consumption — readability extraction, then an optional pruning-scorer
// fallback — but retargeted from an API response to a tab's alternate
// "reader view" document, and re-parsed into the engine's own DOM so
// selector/filter overrides, the pruning scorer, and Markdown export all
// run against the same cascade and node tree the rest of the tab uses.
//
// Grounded on cleaner/pipeline.go's Clean orchestration.
package reader

import (
	"log/slog"
	"math"
	"strings"

	readability "github.com/go-shiori/go-readability"

	"github.com/use-agent/tinybrowser/internal/dom"
	"github.com/use-agent/tinybrowser/internal/htmlparse"
	"github.com/use-agent/tinybrowser/internal/weburl"
)

// Mode selects the extraction strategy, mirroring the teacher's
// extractMode switch in Clean.
type Mode string

const (
	ModeReadability Mode = "readability" // default
	ModePruning     Mode = "pruning"
	ModeAuto        Mode = "auto"
	ModeRaw         Mode = "raw"
)

// Options carries the optional knobs document.readerView(options) in the
// script bridge can set.
type Options struct {
	Mode        Mode
	IncludeTags []string
	ExcludeTags []string
	Selector    string // CSS selector override; takes priority over Mode
}

// Result is the reader view's extracted content and metadata.
type Result struct {
	Title, Byline, Excerpt, SiteName, Language string

	ContentHTML     string // clean HTML, safe to reparse and lay out
	ContentMarkdown string // citation-style Markdown, for export/copy
	ContentText     string

	Links  []Link
	Images []Image

	OriginalTokens, CleanedTokens int
	SavingsPercent                float64
}

// Link is an anchor found in the source document, resolved to an
// absolute URL.
type Link struct {
	Href, Text string
	External   bool
}

// Image is an <img> found in the source document, resolved to an
// absolute URL.
type Image struct {
	Src, Alt string
}

// mdConverter is created once and reused; html-to-markdown's Converter
// is goroutine-safe once built, same as the teacher's Cleaner held a
// single instance for the process lifetime.
var mdConverter = newMarkdownConverter()

// Generate runs the extraction pipeline over rawHTML (the tab's
// serialized document, not the live DOM tree) and returns a Result ready
// to render as the reader view or export as Markdown.
func Generate(rawHTML, sourceURL string, opts Options) (*Result, error) {
	originalTokens := EstimateTokens(rawHTML)

	base, err := weburl.Parse(sourceURL, nil)
	if err != nil {
		base = &weburl.URL{}
	}

	content := htmlparse.Parse(rawHTML).Root
	if opts.Selector != "" {
		if matches := ApplySelector(content, opts.Selector); len(matches) > 0 {
			content = wrapNodes(matches)
		}
	}
	if len(opts.IncludeTags) > 0 || len(opts.ExcludeTags) > 0 {
		if kept := FilterNodes(content, opts.IncludeTags, opts.ExcludeTags); len(kept) > 0 {
			content = wrapNodes(kept)
		}
	}
	workingHTML := dom.OuterHTML(content)

	mode := opts.Mode
	if mode == "" {
		mode = ModeReadability
	}

	var article readability.Article
	switch mode {
	case ModeRaw:
		article = fallbackArticle(workingHTML)
	case ModePruning:
		pruned := PruneContent(content)
		metaArticle, _ := ExtractContent(workingHTML, sourceURL)
		article = readability.Article{
			Title: metaArticle.Title, Byline: metaArticle.Byline, Excerpt: metaArticle.Excerpt,
			SiteName: metaArticle.SiteName, Language: metaArticle.Language,
			Content: dom.OuterHTML(pruned), TextContent: strings.TrimSpace(pruned.TextContent()),
		}
	case ModeAuto:
		article = autoExtract(workingHTML, sourceURL, content)
	default:
		article, _ = ExtractContent(workingHTML, sourceURL)
	}

	markdown, err := renderMarkdown(mdConverter, article.Content, sourceURL)
	if err != nil {
		slog.Warn("reader: markdown conversion failed", "url", sourceURL, "error", err)
		markdown = article.TextContent
	}
	markdown = ConvertToCitations(markdown, sourceURL)

	cleanedTokens := EstimateTokens(markdown)
	savings := 0.0
	if originalTokens > 0 {
		savings = math.Round((float64(originalTokens-cleanedTokens)/float64(originalTokens)*100)*100) / 100
	}

	return &Result{
		Title: article.Title, Byline: article.Byline, Excerpt: article.Excerpt,
		SiteName: article.SiteName, Language: article.Language,
		ContentHTML:     article.Content,
		ContentMarkdown: markdown,
		ContentText:     article.TextContent,
		Links:           ExtractLinks(content, base),
		Images:          ExtractImages(content, base),
		OriginalTokens:  originalTokens,
		CleanedTokens:   cleanedTokens,
		SavingsPercent:  savings,
	}, nil
}

// Document wraps a Result back into a full HTML document, the way
// about:reader?url=... hands the tab runtime a page to parse and lay out
// like any other navigation.
func Document(r *Result) string {
	var sb strings.Builder
	sb.WriteString("<html><head><title>")
	sb.WriteString(r.Title)
	sb.WriteString("</title></head><body><article>")
	if r.Title != "" {
		sb.WriteString("<h1>")
		sb.WriteString(r.Title)
		sb.WriteString("</h1>")
	}
	if r.Byline != "" {
		sb.WriteString("<p><small>")
		sb.WriteString(r.Byline)
		sb.WriteString("</small></p>")
	}
	sb.WriteString(r.ContentHTML)
	sb.WriteString("</article></body></html>")
	return sb.String()
}

// autoExtract races readability against the pruning scorer and keeps
// whichever extracted more text, per cleaner/pipeline.go's "auto" mode.
func autoExtract(workingHTML, sourceURL string, content *dom.Node) readability.Article {
	readCh := make(chan readability.Article, 1)
	pruneCh := make(chan *dom.Node, 1)

	go func() {
		a, _ := ExtractContent(workingHTML, sourceURL)
		readCh <- a
	}()
	go func() { pruneCh <- PruneContent(content) }()

	readabilityArticle := <-readCh
	prunedNode := <-pruneCh

	prunedHTML := dom.OuterHTML(prunedNode)
	prunedText := strings.TrimSpace(prunedNode.TextContent())
	readabilityText := strings.TrimSpace(readabilityArticle.TextContent)

	useReadability := len(readabilityText) >= len(prunedText)
	if useReadability && len(prunedText) > minContentLength && len(readabilityText) > 10*len(prunedText) {
		useReadability = false
	} else if !useReadability && len(readabilityText) > minContentLength && len(prunedText) > 10*len(readabilityText) {
		useReadability = true
	}

	if useReadability {
		return readabilityArticle
	}
	return readability.Article{
		Title: readabilityArticle.Title, Byline: readabilityArticle.Byline, Excerpt: readabilityArticle.Excerpt,
		SiteName: readabilityArticle.SiteName, Language: readabilityArticle.Language,
		Content: prunedHTML, TextContent: prunedText,
	}
}

// wrapNodes reparents nodes under a synthetic <div>, for selector/filter
// results with more than one top-level match.
func wrapNodes(nodes []*dom.Node) *dom.Node {
	if len(nodes) == 1 {
		return nodes[0]
	}
	container := dom.NewElement("div")
	for _, n := range nodes {
		container.AppendChild(n)
	}
	return container
}
