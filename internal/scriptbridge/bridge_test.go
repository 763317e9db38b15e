package scriptbridge

import (
	"context"
	"strings"
	"testing"

	"github.com/use-agent/tinybrowser/internal/cookiejar"
	"github.com/use-agent/tinybrowser/internal/cssparse"
	"github.com/use-agent/tinybrowser/internal/dom"
	"github.com/use-agent/tinybrowser/internal/httpclient"
	"github.com/use-agent/tinybrowser/internal/weburl"
)

type fakeTab struct {
	root     *dom.Node
	jar      *cookiejar.Jar
	globals  map[string]*dom.Node
	rendered int
	loaded   []*dom.Node
	unloaded []*dom.Node
}

func newFakeTab(root *dom.Node) *fakeTab {
	return &fakeTab{root: root, jar: cookiejar.New(), globals: map[string]*dom.Node{}}
}

func (f *fakeTab) Root() *dom.Node              { return f.root }
func (f *fakeTab) Rules() []cssparse.Rule       { return nil }
func (f *fakeTab) Origin() (string, string)     { return "https", "example.com" }
func (f *fakeTab) CSPAllows(u *weburl.URL) bool { return true }
func (f *fakeTab) HTTPClient() *httpclient.Client { return nil }
func (f *fakeTab) Jar() *cookiejar.Jar          { return f.jar }
func (f *fakeTab) ResolveURL(ref string) (*weburl.URL, error) {
	return weburl.Parse(ref, nil)
}
func (f *fakeTab) Render()                        { f.rendered++ }
func (f *fakeTab) PushLocation(rawURL string)      {}
func (f *fakeTab) LoadNode(n *dom.Node)            { f.loaded = append(f.loaded, n) }
func (f *fakeTab) UnloadNode(n *dom.Node)          { f.unloaded = append(f.unloaded, n) }
func (f *fakeTab) RegisterGlobal(id string, n *dom.Node) { f.globals[id] = n }
func (f *fakeTab) UnregisterGlobal(id string)            { delete(f.globals, id) }
func (f *fakeTab) DispatchEvent(eventType string, n *dom.Node) bool { return false }

func buildTree() *dom.Node {
	root := dom.NewElement("div")
	root.SetAttribute("id", "root")
	p := dom.NewElement("p")
	p.SetAttribute("class", "greeting")
	p.AppendChild(dom.NewText("hello"))
	root.AppendChild(p)
	return root
}

func TestQuerySelectorAll(t *testing.T) {
	root := buildTree()
	tab := newFakeTab(root)
	b := New(tab)

	handles, err := b.QuerySelectorAll(0, "p.greeting")
	if err != nil {
		t.Fatalf("QuerySelectorAll: %v", err)
	}
	if len(handles) != 1 {
		t.Fatalf("want 1 match, got %d", len(handles))
	}
	if got := b.InnerHTMLGet(handles[0]); got != "hello" {
		t.Errorf("InnerHTMLGet = %q, want %q", got, "hello")
	}
}

func TestInnerHTMLSetUpdatesGlobalsAndRenders(t *testing.T) {
	root := buildTree()
	tab := newFakeTab(root)
	b := New(tab)
	rootHandle, err := b.QuerySelectorAll(0, "div")
	if err != nil || len(rootHandle) == 0 {
		t.Fatalf("setup query failed: %v", err)
	}

	b.InnerHTMLSet(rootHandle[0], `<span id="x">hi</span>`)

	if tab.rendered == 0 {
		t.Error("InnerHTMLSet should re-render")
	}
	if _, ok := tab.globals["x"]; !ok {
		t.Error("InnerHTMLSet should register new id globals")
	}
	if got := b.InnerHTMLGet(rootHandle[0]); got != `<span id="x">hi</span>` {
		t.Errorf("InnerHTMLGet after set = %q", got)
	}
}

func TestAppendChildInvokesLoadNode(t *testing.T) {
	root := buildTree()
	tab := newFakeTab(root)
	b := New(tab)
	rootHandles, _ := b.QuerySelectorAll(0, "div")
	link := b.CreateElement("link")

	b.AppendChild(rootHandles[0], link)

	if len(tab.loaded) != 1 {
		t.Fatalf("want 1 loaded node, got %d", len(tab.loaded))
	}
}

func TestXHRSendBlocksCrossOrigin(t *testing.T) {
	root := buildTree()
	tab := newFakeTab(root)
	b := New(tab)

	_, err := b.XHRSend(context.Background(), "GET", "https://evil.example/", nil)
	if err == nil {
		t.Fatal("want cross-origin XHR to be blocked")
	}
}

func TestReaderView(t *testing.T) {
	root := dom.NewElement("html")
	body := dom.NewElement("body")
	article := dom.NewElement("article")
	p := dom.NewElement("p")
	p.AppendChild(dom.NewText(strings.Repeat("word ", 40)))
	article.AppendChild(p)
	body.AppendChild(article)
	root.AppendChild(body)

	tab := newFakeTab(root)
	b := New(tab)

	res := b.ReaderView("readability")
	if res == nil {
		t.Fatal("expected a reader result")
	}
	if res.ContentText == "" {
		t.Error("expected extracted reader text")
	}
}

func TestCookieGetFiltersHttpOnly(t *testing.T) {
	root := buildTree()
	tab := newFakeTab(root)
	tab.jar.SetCookieByHost("example.com", "session=abc; HttpOnly", false)
	tab.jar.SetCookieByHost("example.com", "theme=dark", false)
	b := New(tab)

	got := b.CookieGet()
	if got != "theme=dark" {
		t.Errorf("CookieGet = %q, want theme=dark only", got)
	}
}
