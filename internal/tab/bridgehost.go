package tab

import (
	"github.com/use-agent/tinybrowser/internal/cookiejar"
	"github.com/use-agent/tinybrowser/internal/cssparse"
	"github.com/use-agent/tinybrowser/internal/dom"
	"github.com/use-agent/tinybrowser/internal/httpclient"
	"github.com/use-agent/tinybrowser/internal/weburl"
)

// The methods below satisfy scriptbridge.Tab, letting the script bridge
// drive this tab's document without importing the tab package itself.

func (t *Tab) Root() *dom.Node        { return t.doc }
func (t *Tab) Rules() []cssparse.Rule { return t.rules }

func (t *Tab) Origin() (scheme, host string) {
	if t.currentURL == nil {
		return "", ""
	}
	return string(t.currentURL.Scheme), t.currentURL.Host
}

func (t *Tab) HTTPClient() *httpclient.Client { return t.client }
func (t *Tab) Jar() *cookiejar.Jar            { return t.jar }

func (t *Tab) ResolveURL(ref string) (*weburl.URL, error) {
	return weburl.Parse(ref, t.currentURL)
}

// PushLocation implements scriptbridge.Tab's location_set: push onto
// history and restore, i.e. navigate like a link click (spec §4.10).
func (t *Tab) PushLocation(rawURL string) {
	u, err := weburl.Parse(rawURL, t.currentURL)
	if err != nil {
		return
	}
	t.win.PushLocation(t.index, u.String(), nil, "")
}

func (t *Tab) RegisterGlobal(id string, n *dom.Node) { t.globals[id] = n }
func (t *Tab) UnregisterGlobal(id string)            { delete(t.globals, id) }

// DispatchEvent invokes the attached script runtime's trampoline, or
// reports no default-prevention when none is attached.
func (t *Tab) DispatchEvent(eventType string, n *dom.Node) bool {
	if t.rt == nil {
		return false
	}
	return t.rt.Dispatch(eventType, n)
}
