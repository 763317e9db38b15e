package tab

import (
	"context"
	"sync"

	"github.com/use-agent/tinybrowser/internal/cssparse"
	"github.com/use-agent/tinybrowser/internal/dom"
	"github.com/use-agent/tinybrowser/internal/httpclient"
	"github.com/use-agent/tinybrowser/internal/weburl"
)

// walkForSubresources performs spec §4.9 step 6's single DOM walk: link
// stylesheets and scripts are fetched concurrently (all must complete;
// nothing races to "win" the way the teacher's multi-engine dispatcher
// did), title/style/script elements are handled inline.
func (t *Tab) walkForSubresources(ctx context.Context, base *weburl.URL) {
	type job struct {
		node *dom.Node
		kind string // "link" or "script"
	}
	var jobs []job

	var walk func(*dom.Node)
	walk = func(n *dom.Node) {
		if n.Kind != dom.KindElement {
			for _, c := range n.Children {
				walk(c)
			}
			return
		}
		if id := n.ID(); id != "" {
			t.globals[id] = n
		}
		switch n.Tag {
		case "link":
			if n.GetAttribute("rel") == "stylesheet" {
				jobs = append(jobs, job{n, "link"})
			}
		case "style":
			t.rules = append(t.rules, cssparse.Parse(n.TextContent())...)
		case "title":
			t.win.SetTitle(t.index, n.TextContent())
		case "script":
			jobs = append(jobs, job{n, "script"})
		}
		for _, c := range n.Children {
			walk(c)
		}
	}
	walk(t.doc)

	// Concurrently fetch every link/script's resource; every job must
	// complete before the walk's results (CSS rules, script bodies) are
	// applied in document order, so results are collected then replayed.
	type result struct {
		job  job
		body []byte
		ok   bool
	}
	results := make([]result, len(jobs))
	var wg sync.WaitGroup
	for i, j := range jobs {
		results[i] = result{job: j}
		wg.Add(1)
		go func(i int, j job) {
			defer wg.Done()
			u, err := t.resolveAttr(base, j.node, j.kind)
			if err != nil || u == nil {
				return
			}
			if !t.cspAllowsURL(u) {
				t.log.Info("tab: sub-resource blocked by content security policy", "url", u.String())
				return
			}
			resp, err := t.client.Do(ctx, &httpclient.Request{URL: u, Method: "GET", ReadCache: true, Referrer: base})
			if err != nil {
				t.log.Warn("tab: sub-resource fetch failed", "url", u.String(), "error", err)
				return
			}
			results[i] = result{job: j, body: resp.Body, ok: true}
		}(i, j)
	}
	wg.Wait()

	for _, r := range results {
		switch r.job.kind {
		case "link":
			if r.ok {
				t.rules = append(t.rules, cssparse.Parse(string(r.body))...)
			}
		case "script":
			var src string
			if r.ok {
				src = string(r.body)
			} else {
				src = r.job.node.TextContent()
			}
			if src == "" {
				continue
			}
			if navigated := t.runScript(src); navigated {
				return // step 6: "If a script navigates, abort further processing of this page"
			}
		}
	}
}

// resolveAttr resolves a link's href or a script's src against base.
func (t *Tab) resolveAttr(base *weburl.URL, n *dom.Node, kind string) (*weburl.URL, error) {
	attr := "href"
	if kind == "script" {
		attr = "src"
	}
	ref := n.GetAttribute(attr)
	if ref == "" {
		return nil, nil
	}
	return weburl.Parse(ref, base)
}

// cspAllowsURL reports whether u is permitted by the tab's CSP
// allow-list (empty allow-list means unrestricted).
func (t *Tab) cspAllowsURL(u *weburl.URL) bool {
	if len(t.allowedOrigins) == 0 {
		return true
	}
	if u.Scheme == weburl.SchemeData {
		return true
	}
	origin := u.Origin()
	for _, o := range t.allowedOrigins {
		if o == "*" || o == origin || o == u.Host {
			return true
		}
	}
	return false
}

// runScript feeds src to the attached script runtime (if any), returning
// whether the script navigated the tab away from its current document.
func (t *Tab) runScript(src string) bool {
	if t.rt == nil {
		return false
	}
	urlBefore := t.currentURL
	n := dom.NewElement("script")
	n.SetAttribute("__inline_source__", src)
	t.rt.Dispatch("tinybrowser:run-script", n)
	return t.currentURL != urlBefore
}

// LoadNode fetches/parses a newly-inserted <link>/<style>/<script> node
// and re-renders, per spec §4.10's appendChild/insertBefore contract.
func (t *Tab) LoadNode(n *dom.Node) {
	if n.Kind != dom.KindElement {
		return
	}
	switch n.Tag {
	case "link":
		if n.GetAttribute("rel") != "stylesheet" {
			return
		}
		u, err := t.resolveAttr(t.currentURL, n, "link")
		if err != nil || u == nil || !t.cspAllowsURL(u) {
			return
		}
		resp, err := t.client.Do(context.Background(), &httpclient.Request{URL: u, Method: "GET", ReadCache: true, Referrer: t.currentURL})
		if err != nil {
			return
		}
		t.rules = append(t.rules, cssparse.Parse(string(resp.Body))...)
	case "style":
		t.rules = append(t.rules, cssparse.Parse(n.TextContent())...)
	case "script":
		src := n.TextContent()
		if ref := n.GetAttribute("src"); ref != "" {
			if u, err := weburl.Parse(ref, t.currentURL); err == nil && t.cspAllowsURL(u) {
				if resp, err := t.client.Do(context.Background(), &httpclient.Request{URL: u, Method: "GET", ReadCache: true}); err == nil {
					src = string(resp.Body)
				}
			}
		}
		if src != "" {
			t.runScript(src)
		}
	}
}

// UnloadNode is called for a removed node and does nothing: rules are not
// tracked per source node, so rules parsed from a removed <link> or
// <style> stay in t.rules and keep applying on later renders.
func (t *Tab) UnloadNode(n *dom.Node) {}
