package tab

import "github.com/use-agent/tinybrowser/internal/weburl"

// CSPAllows implements scriptbridge.Tab: it gates a sub-resource or XHR
// URL against the tab's Content-Security-Policy origin allow-list, the
// way the teacher's setupHijack gated a resource by type rather than by
// origin.
func (t *Tab) CSPAllows(u *weburl.URL) bool {
	return t.cspAllowsURL(u)
}
