package main

import (
	"strings"
	"testing"

	"github.com/use-agent/tinybrowser/internal/dom"
)

func buildDoc() *dom.Node {
	root := dom.NewElement("html")
	body := dom.NewElement("body")
	link := dom.NewElement("a")
	link.SetAttribute("id", "go")
	link.SetAttribute("href", "/next")
	link.AppendChild(dom.NewText("click me"))
	body.AppendChild(link)
	root.AppendChild(body)
	return root
}

func TestOutlineIncludesTagsAndText(t *testing.T) {
	var sb strings.Builder
	outline(&sb, buildDoc(), 0)
	out := sb.String()
	if !strings.Contains(out, "a#go") {
		t.Errorf("outline missing a#go:\n%s", out)
	}
	if !strings.Contains(out, "click me") {
		t.Errorf("outline missing text:\n%s", out)
	}
}

func TestFindBySelectorByID(t *testing.T) {
	root := buildDoc()
	found := findBySelector(root, "#go")
	if found == nil || found.Tag != "a" {
		t.Fatalf("expected to find the anchor by id, got %v", found)
	}
}

func TestFindBySelectorByTag(t *testing.T) {
	root := buildDoc()
	found := findBySelector(root, "a")
	if found == nil {
		t.Fatal("expected to find an <a> by tag name")
	}
}

func TestTruncateShortensLongText(t *testing.T) {
	long := strings.Repeat("x", 100)
	got := truncate(long, 10)
	if len([]rune(got)) != 11 { // 10 chars + ellipsis
		t.Errorf("truncate length = %d, want 11", len([]rune(got)))
	}
}

func TestTabIndexFromArgs(t *testing.T) {
	if got := tabIndexFromArgs(map[string]any{"tab": float64(2)}); got != 2 {
		t.Errorf("tabIndexFromArgs = %d, want 2", got)
	}
	if got := tabIndexFromArgs(nil); got != 0 {
		t.Errorf("tabIndexFromArgs default = %d, want 0", got)
	}
}
