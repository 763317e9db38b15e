package tab

import (
	"context"
	"net/url"
	"strings"
	"testing"

	"github.com/use-agent/tinybrowser/internal/cookiejar"
	"github.com/use-agent/tinybrowser/internal/dom"
	"github.com/use-agent/tinybrowser/internal/htmlparse"
	"github.com/use-agent/tinybrowser/internal/httpclient"
	"github.com/use-agent/tinybrowser/internal/layout"
	"github.com/use-agent/tinybrowser/internal/navstate"
)

func newTestTab(t *testing.T) (*Tab, *navstate.Window) {
	t.Helper()
	win := navstate.NewWindow(800, 600)
	win.NewTab("about:blank")
	client := httpclient.New(httpclient.Options{Jar: cookiejar.New()})
	tb := New(win, 0, Options{Client: client, Jar: cookiejar.New()})
	return tb, win
}

func TestLoadAboutBlank(t *testing.T) {
	tb, win := newTestTab(t)
	tb.Load(context.Background(), "about:blank", false, nil, nil, "")
	if tb.doc == nil {
		t.Fatal("about:blank should still produce a document")
	}
	if got := win.Tab(0).Title; got != "" {
		t.Errorf("title = %q, want empty", got)
	}
}

func TestLoadDataURL(t *testing.T) {
	tb, _ := newTestTab(t)
	tb.Load(context.Background(), `data:text/html,<h1 id="x">hi</h1><a href="/next">go</a>`, false, nil, nil, "")

	h1 := tb.doc.ByID("x")
	if h1 == nil {
		t.Fatal("expected h1#x in parsed document")
	}
	if got := h1.TextContent(); got != "hi" {
		t.Errorf("h1 text = %q, want hi", got)
	}
}

// findAnchorObject locates the first layout object built from a text node
// inside an <a> element (layout makes no object for the inline <a>
// itself), for hit-test-based click tests.
func findAnchorObject(obj *layout.Object) *layout.Object {
	if obj == nil {
		return nil
	}
	if obj.Node != nil && obj.Node.Kind == dom.KindText && obj.Node.Parent != nil && obj.Node.Parent.Tag == "a" {
		return obj
	}
	for _, c := range obj.Children {
		if found := findAnchorObject(c); found != nil {
			return found
		}
	}
	return nil
}

func TestClickAnchorPushesLocation(t *testing.T) {
	tb, win := newTestTab(t)
	tb.Load(context.Background(), `data:text/html,<a href="/next">go</a>`, false, nil, nil, "")

	anchor := findAnchorObject(tb.layoutRoot)
	if anchor == nil {
		t.Fatal("expected an <a> in the rendered layout")
	}
	tb.Click(anchor.Box.X+1, anchor.Box.Y+1, ButtonPrimary)

	if got := len(win.Tab(0).History); got != 1 {
		t.Fatalf("history length = %d, want 1: click should have pushed a location", got)
	}
}

func TestFormSubmitGETEncodesBody(t *testing.T) {
	tb, win := newTestTab(t)
	tb.Load(context.Background(), `data:text/html,`+
		`<form action="/search" method="get">`+
		`<input name="q" value="hello world">`+
		`</form>`, false, nil, nil, "")

	form := tb.doc.Find(func(n *dom.Node) bool { return n.Kind == dom.KindElement && n.Tag == "form" })
	if form == nil {
		t.Fatal("expected a form in the document")
	}
	tb.SubmitForm(form)

	got := win.Tab(0).URL
	if got == "" {
		t.Fatal("form submit should have navigated")
	}
}

func TestLoadAboutReaderFetchesAndExtracts(t *testing.T) {
	tb, _ := newTestTab(t)
	target := `data:text/html,<html><body><article><h1>Title</h1>` +
		strings.Repeat(`<p>word word word word word word word word word word.</p>`, 5) +
		`</article></body></html>`
	tb.Load(context.Background(), "about:reader?url="+url.QueryEscape(target), false, nil, nil, "")

	if tb.doc == nil {
		t.Fatal("about:reader should produce a document")
	}
	article := tb.doc.Find(func(n *dom.Node) bool { return n.Kind == dom.KindElement && n.Tag == "article" })
	if article == nil {
		t.Fatal("expected the reader view to wrap extracted content in <article>")
	}
}

func TestNavLoopDetectorFlagsRepeats(t *testing.T) {
	var d navLoopDetector
	page := htmlparse.Parse(`<html><body><h1>same</h1></body></html>`).Root
	var looped bool
	for i := 0; i < loopHistoryLimit+1; i++ {
		looped = d.observe(page)
	}
	if !looped {
		t.Error("repeating the same page should eventually be flagged as a loop")
	}
}

func TestNavLoopDetectorIgnoresNilDocument(t *testing.T) {
	var d navLoopDetector
	for i := 0; i < loopHistoryLimit+1; i++ {
		if d.observe(nil) {
			t.Fatal("a nil document (e.g. view-source) must never be flagged as a loop")
		}
	}
}
