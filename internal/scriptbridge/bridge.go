// Package scriptbridge implements spec §4.10's DOM bridge: the surface
// an embedded script interpreter drives through opaque handles, with
// origin/CSP checks on XHR_send and HttpOnly filtering on document.cookie.
package scriptbridge

import (
	"context"
	"fmt"
	"strings"

	"github.com/use-agent/tinybrowser/internal/cookiejar"
	"github.com/use-agent/tinybrowser/internal/cssparse"
	"github.com/use-agent/tinybrowser/internal/dom"
	"github.com/use-agent/tinybrowser/internal/httpclient"
	"github.com/use-agent/tinybrowser/internal/reader"
	"github.com/use-agent/tinybrowser/internal/weburl"
)

// Handle is an opaque reference an interpreter holds onto; 0 is the null
// handle (spec §9's ScriptError sentinel).
type Handle int

// Tab is the host a Bridge is attached to: the tab runtime supplies the
// live document, origin, CSP policy, and the hooks a mutation must run
// through (load/unload for link/style/script, re-render, navigation).
type Tab interface {
	Root() *dom.Node
	Rules() []cssparse.Rule
	Origin() (scheme, host string)
	CSPAllows(u *weburl.URL) bool
	HTTPClient() *httpclient.Client
	Jar() *cookiejar.Jar
	ResolveURL(ref string) (*weburl.URL, error)
	Render()
	PushLocation(rawURL string)
	LoadNode(n *dom.Node)
	UnloadNode(n *dom.Node)
	RegisterGlobal(id string, n *dom.Node)
	UnregisterGlobal(id string)
	DispatchEvent(eventType string, n *dom.Node) (defaultPrevented bool)
}

// Bridge is one tab's script bridge instance. It is not safe to call
// concurrently with itself or with the owning tab's event loop: spec
// §4.9's scheduling model forbids bridge re-entrancy for the same tab.
type Bridge struct {
	tab     Tab
	byNode  map[*dom.Node]Handle
	byHand  map[Handle]*dom.Node
	nextID  Handle
}

// New constructs a Bridge over tab, registering tab's existing tree.
func New(tab Tab) *Bridge {
	b := &Bridge{tab: tab, byNode: map[*dom.Node]Handle{}, byHand: map[Handle]*dom.Node{}}
	if root := tab.Root(); root != nil {
		var walk func(*dom.Node)
		walk = func(n *dom.Node) {
			b.handleFor(n)
			for _, c := range n.Children {
				walk(c)
			}
		}
		walk(root)
	}
	return b
}

func (b *Bridge) handleFor(n *dom.Node) Handle {
	if h, ok := b.byNode[n]; ok {
		return h
	}
	b.nextID++
	h := b.nextID
	b.byNode[n] = h
	b.byHand[h] = n
	return h
}

func (b *Bridge) node(h Handle) *dom.Node {
	return b.byHand[h]
}

// QuerySelectorAll matches sel against scope's subtree (or the whole
// document when scope is 0), returning handles in document order.
func (b *Bridge) QuerySelectorAll(scope Handle, sel string) ([]Handle, error) {
	root := b.tab.Root()
	if scope != 0 {
		if n := b.node(scope); n != nil {
			root = n
		}
	}
	if root == nil {
		return nil, nil
	}
	selector, err := cssparse.ParseSelector(sel)
	if err != nil {
		return nil, err
	}
	matches := root.FindAll(func(n *dom.Node) bool {
		return n.Kind == dom.KindElement && cssparse.MatchesNode(selector, n)
	})
	out := make([]Handle, 0, len(matches))
	for _, n := range matches {
		out = append(out, b.handleFor(n))
	}
	return out, nil
}

// GetAttribute returns h's named attribute value.
func (b *Bridge) GetAttribute(h Handle, name string) string {
	n := b.node(h)
	if n == nil {
		return ""
	}
	return n.GetAttribute(name)
}

// SetAttribute sets h's named attribute.
func (b *Bridge) SetAttribute(h Handle, name, value string) {
	if n := b.node(h); n != nil {
		n.SetAttribute(name, value)
	}
}

// InnerHTMLGet serializes h's children back to an HTML fragment.
func (b *Bridge) InnerHTMLGet(h Handle) string {
	n := b.node(h)
	if n == nil {
		return ""
	}
	var sb strings.Builder
	for _, c := range n.Children {
		serializeNode(&sb, c)
	}
	return sb.String()
}

// InnerHTMLSet reparses raw as an html/body fragment, replaces h's
// children with the fragment's body children, refreshes id globals
// under h, and re-renders (spec §4.10).
func (b *Bridge) InnerHTMLSet(h Handle, raw string) {
	n := b.node(h)
	if n == nil {
		return
	}
	for _, c := range append([]*dom.Node(nil), n.Children...) {
		b.unregisterSubtree(c)
		n.RemoveChild(c)
	}
	for _, c := range parseFragment(raw) {
		n.AppendChild(c)
		b.registerSubtree(c)
	}
	b.tab.Render()
}

// OuterHTMLGet serializes h itself, including its own tag.
func (b *Bridge) OuterHTMLGet(h Handle) string {
	n := b.node(h)
	if n == nil {
		return ""
	}
	var sb strings.Builder
	serializeNode(&sb, n)
	return sb.String()
}

// ChildrenGet returns h's direct children's handles.
func (b *Bridge) ChildrenGet(h Handle) []Handle {
	n := b.node(h)
	if n == nil {
		return nil
	}
	out := make([]Handle, 0, len(n.Children))
	for _, c := range n.Children {
		out = append(out, b.handleFor(c))
	}
	return out
}

// ParentGet returns h's parent handle, or 0 if h is the root or unknown.
func (b *Bridge) ParentGet(h Handle) Handle {
	n := b.node(h)
	if n == nil || n.Parent == nil {
		return 0
	}
	return b.handleFor(n.Parent)
}

// CreateElement creates a detached element node and registers it.
func (b *Bridge) CreateElement(tag string) Handle {
	n := dom.NewElement(tag)
	return b.handleFor(n)
}

// CreateTextNode creates a detached text node and registers it.
func (b *Bridge) CreateTextNode(text string) Handle {
	n := dom.NewText(text)
	return b.handleFor(n)
}

// AppendChild appends child under parent, running load/unload hooks for
// link/style/script elements and re-rendering.
func (b *Bridge) AppendChild(parent, child Handle) {
	p, c := b.node(parent), b.node(child)
	if p == nil || c == nil {
		return
	}
	p.AppendChild(c)
	b.registerSubtree(c)
	b.tab.LoadNode(c)
	b.tab.Render()
}

// InsertBefore inserts child under parent immediately before ref (or at
// the end if ref is 0/unknown).
func (b *Bridge) InsertBefore(parent, child, ref Handle) {
	p, c := b.node(parent), b.node(child)
	if p == nil || c == nil {
		return
	}
	p.InsertBefore(c, b.node(ref))
	b.registerSubtree(c)
	b.tab.LoadNode(c)
	b.tab.Render()
}

// RemoveChild detaches child from parent, calls the tab's UnloadNode
// (which leaves rules already loaded from a link/style in place) and
// unregisters its subtree's handles/globals.
func (b *Bridge) RemoveChild(parent, child Handle) {
	p, c := b.node(parent), b.node(child)
	if p == nil || c == nil {
		return
	}
	b.tab.UnloadNode(c)
	p.RemoveChild(c)
	b.unregisterSubtree(c)
	b.tab.Render()
}

// GetComputedStyle forces a render, then returns h's resolved style map.
func (b *Bridge) GetComputedStyle(h Handle) map[string]string {
	b.tab.Render()
	n := b.node(h)
	if n == nil || n.Style == nil {
		return map[string]string{}
	}
	out := make(map[string]string, len(n.Style))
	for k, v := range n.Style {
		out[k] = v
	}
	return out
}

// XHRSend resolves url against the tab, requires data: or same-origin,
// requires CSP allow-list, forwards cookies, and returns the response
// body text.
func (b *Bridge) XHRSend(ctx context.Context, method, rawURL string, body []byte) ([]byte, error) {
	u, err := b.tab.ResolveURL(rawURL)
	if err != nil {
		return nil, err
	}
	if u.Scheme != "data" {
		scheme, host := b.tab.Origin()
		if u.Scheme != scheme || u.Host != host {
			return nil, fmt.Errorf("scriptbridge: XHR blocked: cross-origin request to %s", u.Host)
		}
	}
	if !b.tab.CSPAllows(u) {
		return nil, fmt.Errorf("scriptbridge: XHR blocked by content security policy: %s", u.String())
	}
	resp, err := b.tab.HTTPClient().Do(ctx, &httpclient.Request{URL: u, Method: method, Payload: body})
	if err != nil {
		return nil, err
	}
	return resp.Body, nil
}

// LocationSet pushes value as the tab's new location.
func (b *Bridge) LocationSet(value string) {
	b.tab.PushLocation(value)
}

// DoDefault forwards eventType on h to the tab's DispatchEvent, the same
// script trampoline DispatchEvent uses; it does not itself follow links,
// submit forms or toggle checkboxes.
func (b *Bridge) DoDefault(h Handle, eventType string) {
	n := b.node(h)
	if n == nil {
		return
	}
	b.tab.DispatchEvent(eventType, n)
}

// DispatchEvent invokes the runtime trampoline for eventType on h,
// returning whether a handler called preventDefault.
func (b *Bridge) DispatchEvent(eventType string, h Handle) bool {
	n := b.node(h)
	if n == nil {
		return false
	}
	return b.tab.DispatchEvent(eventType, n)
}

// CookieGet returns document.cookie's value, HttpOnly entries filtered.
func (b *Bridge) CookieGet() string {
	_, host := b.tab.Origin()
	return b.tab.Jar().GetCookieValueByHost(host, true)
}

// CookieSet writes document.cookie; the jar itself refuses to replace an
// HttpOnly entry of the same name from a script write.
func (b *Bridge) CookieSet(raw string) {
	_, host := b.tab.Origin()
	b.tab.Jar().SetCookieByHost(host, raw, true)
}

// ReaderView runs document.readerView(mode)'s extraction over the tab's
// own serialized document, rather than a freshly re-fetched page: the
// script already has the live, possibly-mutated DOM in hand.
func (b *Bridge) ReaderView(mode string) *reader.Result {
	root := b.tab.Root()
	if root == nil {
		return nil
	}
	var sb strings.Builder
	serializeNode(&sb, root)
	scheme, host := b.tab.Origin()
	base := scheme + "://" + host + "/"
	result, err := reader.Generate(sb.String(), base, reader.Options{Mode: reader.Mode(mode)})
	if err != nil {
		return nil
	}
	return result
}

func (b *Bridge) registerSubtree(n *dom.Node) {
	b.handleFor(n)
	if n.Kind == dom.KindElement {
		if id := n.ID(); id != "" {
			b.tab.RegisterGlobal(id, n)
		}
	}
	for _, c := range n.Children {
		b.registerSubtree(c)
	}
}

func (b *Bridge) unregisterSubtree(n *dom.Node) {
	if n.Kind == dom.KindElement {
		if id := n.ID(); id != "" {
			b.tab.UnregisterGlobal(id)
		}
	}
	for _, c := range n.Children {
		b.unregisterSubtree(c)
	}
	delete(b.byHand, b.byNode[n])
	delete(b.byNode, n)
}
