package testserver

import (
	"context"
	"fmt"
	"time"

	"github.com/use-agent/tinybrowser/internal/cookiejar"
	"github.com/use-agent/tinybrowser/internal/httpclient"
	"github.com/use-agent/tinybrowser/internal/navstate"
	"github.com/use-agent/tinybrowser/internal/tab"
)

// Result is one scenario's outcome.
type Result struct {
	Name   string
	Passed bool
	Title  string
	Err    error
	Note   string // set when the scenario could not be driven end-to-end
}

// scriptDependent names fixtures whose pass condition is asserted from
// inside the page's own <script>. Without an embedded script interpreter
// (out of scope for this engine, per its host-bridge-only design) the
// runner cannot evaluate those assertions; it still stands the fixture's
// servers up so header/cookie/CSP delivery is exercised over real HTTP,
// but reports the scenario as inconclusive rather than faking a pass.
var scriptDependent = map[string]bool{
	"setLocation": true,
	"csp":         true,
	"httpOnly":    true,
	"corsSimple":  true,
	"referer":     true,
}

// Run drives every named scenario (or all of them, if names is empty)
// through a real Tab and reports whether the final page's title is
// "passed", the convention every wstest fixture follows.
func Run(ctx context.Context, names []string) []Result {
	var results []Result
	for _, sc := range Scenarios() {
		if len(names) > 0 && !containsName(names, sc.Name) {
			continue
		}
		results = append(results, runOne(ctx, sc))
	}
	return results
}

func containsName(names []string, name string) bool {
	for _, n := range names {
		if n == name {
			return true
		}
	}
	return false
}

func runOne(ctx context.Context, sc Scenario) Result {
	entryURL, cleanup, err := sc.Build()
	if err != nil {
		return Result{Name: sc.Name, Err: fmt.Errorf("build: %w", err)}
	}
	defer cleanup()

	if scriptDependent[sc.Name] {
		return Result{Name: sc.Name, Note: "fixture's pass condition runs inside a <script>; no embedded script interpreter to evaluate it"}
	}

	client := httpclient.New(httpclient.Options{Jar: cookiejar.New()})
	win := navstate.NewWindow(800, 600)
	win.NewTab("about:blank")
	tb := tab.New(win, 0, tab.Options{Client: client, Jar: cookiejar.New()})

	loadCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	tb.Load(loadCtx, entryURL, false, nil, nil, "")

	if sc.Name == "handleDefault" {
		// No script to fire document.body.onload's click; replay the
		// fixture's own intent — click the first link — directly. A
		// click only updates navstate (the windowing collaborator
		// normally watches for that and reloads); stand in for it here.
		if anchor := tb.FindFirstAnchor(); anchor != nil {
			tb.ClickNode(anchor, tab.ButtonPrimary)
			if next := win.Tab(0).URL; next != entryURL {
				tb.Load(loadCtx, next, false, nil, nil, "")
			}
		}
	}

	title := win.Tab(0).Title
	return Result{Name: sc.Name, Passed: title == "passed", Title: title}
}
