package reader

import (
	"strings"
	"testing"
)

const sampleArticle = `<html><head><title>Sample</title></head><body>
<nav><a href="/a">a</a><a href="/b">b</a></nav>
<article>
<h1>A Long Enough Headline For Readability</h1>
<p>This article exists only to give the readability and pruning
extractors enough visible text to latch onto so the fallback path never
triggers during a direct unit test of the pipeline itself. It needs to
clear the minimum content length the extractor enforces before it trusts
its own output over the raw page.</p>
<p>A second paragraph with a <a href="https://example.com/ref">link</a>
to an external reference, so the citation converter has something to
rewrite into a numbered footnote.</p>
</article>
<footer>copyright 2026</footer>
</body></html>`

func TestGenerateReadability(t *testing.T) {
	res, err := Generate(sampleArticle, "https://example.com/article", Options{})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if res.ContentText == "" {
		t.Fatal("expected non-empty extracted text")
	}
	if len(res.Links) == 0 {
		t.Error("expected extracted links from the source HTML")
	}
}

func TestGeneratePruningMode(t *testing.T) {
	res, err := Generate(sampleArticle, "https://example.com/article", Options{Mode: ModePruning})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if res.ContentHTML == "" {
		t.Fatal("expected pruning mode to retain some content")
	}
}

func TestGenerateAutoMode(t *testing.T) {
	res, err := Generate(sampleArticle, "https://example.com/article", Options{Mode: ModeAuto})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if res.ContentText == "" {
		t.Fatal("expected auto mode to produce extracted text")
	}
}

func TestConvertToCitations(t *testing.T) {
	md := "See [Google](https://google.com) and again [G](https://google.com)."
	out := ConvertToCitations(md, "https://example.com/article")
	if out == md {
		t.Fatal("expected citation rewriting to change the markdown")
	}
}

func TestConvertToCitationsKeepsSameOriginInline(t *testing.T) {
	md := "See the [appendix](https://example.com/article/appendix) below."
	out := ConvertToCitations(md, "https://example.com/article")
	if out != md {
		t.Fatalf("expected a same-origin link to stay inline, got %q", out)
	}
}

func TestDocumentWrapsTitleAndContent(t *testing.T) {
	res := &Result{Title: "Hello", ContentHTML: "<p>body</p>"}
	doc := Document(res)
	if doc == "" {
		t.Fatal("expected a non-empty document")
	}
	if !strings.Contains(doc, "<h1>Hello</h1>") {
		t.Errorf("expected the title as a heading, got %q", doc)
	}
	if !strings.Contains(doc, "<p>body</p>") {
		t.Errorf("expected the content HTML, got %q", doc)
	}
}

func TestEstimateTokens(t *testing.T) {
	if EstimateTokens("") != 0 {
		t.Error("empty text should estimate to 0 tokens")
	}
	if EstimateTokens("abc") != 1 {
		t.Error("short text should still estimate at least 1 token")
	}
}
