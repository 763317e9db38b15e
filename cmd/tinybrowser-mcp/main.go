// Command tinybrowser-mcp exposes the engine's Tab Runtime as MCP tools
// — navigate, snapshot, click — for an agent to drive directly, in
// process, with no REST hop in between.
//
// Grounded on cmd/purify-mcp/main.go's tool-registration pattern: each
// tool is built with mcp.NewTool/mcp.With* and wired through
// s.AddTool(tool, handler); where purify-mcp's handlers POSTed to a
// remote API and polled a job endpoint, these call straight into an
// in-memory navstate.Window/tab.Tab the server owns for the life of the
// stdio session.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/use-agent/tinybrowser/internal/cookiejar"
	"github.com/use-agent/tinybrowser/internal/dom"
	"github.com/use-agent/tinybrowser/internal/httpclient"
	"github.com/use-agent/tinybrowser/internal/navstate"
	"github.com/use-agent/tinybrowser/internal/tab"
)

// session owns one window's worth of tabs for the lifetime of the MCP
// server process; a bare uuid names it in logs, mirroring purify-mcp's
// per-job IDs even though there is only ever one session per process.
type session struct {
	id     string
	mu     sync.Mutex
	win    *navstate.Window
	client *httpclient.Client
	jar    *cookiejar.Jar
	tabs   map[int]*tab.Tab
}

func newSession() *session {
	return &session{
		id:     uuid.NewString(),
		win:    navstate.NewWindow(1280, 800),
		client: httpclient.New(httpclient.Options{Jar: cookiejar.New()}),
		jar:    cookiejar.New(),
		tabs:   map[int]*tab.Tab{},
	}
}

// tabFor returns tab index i's runtime, creating it (and its backing
// navstate tab, if absent) on first use.
func (s *session) tabFor(i int) *tab.Tab {
	s.mu.Lock()
	defer s.mu.Unlock()
	for s.win.TabCount() <= i {
		s.win.NewTab("about:blank")
	}
	t, ok := s.tabs[i]
	if !ok {
		t = tab.New(s.win, i, tab.Options{Client: s.client, Jar: s.jar})
		s.tabs[i] = t
	}
	return t
}

func main() {
	sess := newSession()
	slog.Info("tinybrowser-mcp starting", "session", sess.id)

	s := server.NewMCPServer(
		"tinybrowser",
		"1.0.0",
		server.WithToolCapabilities(false),
	)

	navigateTool := mcp.NewTool("navigate",
		mcp.WithDescription("Load a URL into a tab (creating it if needed), running the full parse/style/layout pipeline."),
		mcp.WithString("url",
			mcp.Required(),
			mcp.Description("The URL to load: http(s), file, data:, about:, or view-source:"),
		),
		mcp.WithNumber("tab",
			mcp.Description("Tab index to load into (default: 0)"),
		),
	)
	s.AddTool(navigateTool, handleNavigate(sess))

	snapshotTool := mcp.NewTool("snapshot",
		mcp.WithDescription("Return a text outline of a tab's current DOM: tag names, ids/classes, and visible text, indented by nesting depth."),
		mcp.WithNumber("tab",
			mcp.Description("Tab index to snapshot (default: 0)"),
		),
	)
	s.AddTool(snapshotTool, handleSnapshot(sess))

	clickTool := mcp.NewTool("click",
		mcp.WithDescription("Click the first element in a tab's DOM matching a CSS-ish selector: '#id', '.class', or a bare tag name."),
		mcp.WithString("selector",
			mcp.Required(),
			mcp.Description("'#id', '.class', or a tag name such as 'a' or 'button'"),
		),
		mcp.WithNumber("tab",
			mcp.Description("Tab index to click in (default: 0)"),
		),
	)
	s.AddTool(clickTool, handleClick(sess))

	if err := server.ServeStdio(s); err != nil {
		fmt.Fprintf(os.Stderr, "server error: %v\n", err)
		os.Exit(1)
	}
}

func handleNavigate(sess *session) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		url, err := request.RequireString("url")
		if err != nil {
			return mcp.NewToolResultError("url is required"), nil
		}
		idx := tabIndex(request)

		t := sess.tabFor(idx)
		t.Load(ctx, url, false, nil, nil, "")

		nt := sess.win.Tab(idx)
		if nt == nil {
			return mcp.NewToolResultError("tab not found after navigate"), nil
		}
		return mcp.NewToolResultText(fmt.Sprintf("loaded tab %d: %q at %s", idx, nt.Title, nt.URL)), nil
	}
}

func handleSnapshot(sess *session) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		idx := tabIndex(request)
		t := sess.tabFor(idx)
		root := t.Root()
		if root == nil {
			return mcp.NewToolResultText("(empty document)"), nil
		}
		var sb strings.Builder
		outline(&sb, root, 0)
		return mcp.NewToolResultText(sb.String()), nil
	}
}

func handleClick(sess *session) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		selector, err := request.RequireString("selector")
		if err != nil {
			return mcp.NewToolResultError("selector is required"), nil
		}
		idx := tabIndex(request)
		t := sess.tabFor(idx)
		root := t.Root()
		if root == nil {
			return mcp.NewToolResultError("tab has no document to click into"), nil
		}
		target := findBySelector(root, selector)
		if target == nil {
			return mcp.NewToolResultError("no element matched selector " + selector), nil
		}
		result := t.ClickNode(target, tab.ButtonPrimary)
		if result.OpenedNewTabURL != "" {
			return mcp.NewToolResultText("opened new tab at " + result.OpenedNewTabURL), nil
		}
		return mcp.NewToolResultText("clicked " + describe(target)), nil
	}
}

// tabIndex reads the optional "tab" argument the way purify-mcp's
// handleCrawlSite pulled max_depth/max_pages straight out of
// GetArguments(): MCP numeric arguments decode as float64.
func tabIndex(request mcp.CallToolRequest) int {
	return tabIndexFromArgs(request.GetArguments())
}

func tabIndexFromArgs(args map[string]any) int {
	if v, ok := args["tab"]; ok {
		if f, ok := v.(float64); ok {
			return int(f)
		}
	}
	return 0
}

// outline walks n in document order, writing one line per node: element
// tags with their id/class shorthand, text nodes as a trimmed snippet.
func outline(sb *strings.Builder, n *dom.Node, depth int) {
	indent := strings.Repeat("  ", depth)
	switch n.Kind {
	case dom.KindElement:
		sb.WriteString(indent + describe(n) + "\n")
	case dom.KindText:
		if text := strings.TrimSpace(n.Text); text != "" {
			sb.WriteString(indent + strconv.Quote(truncate(text, 80)) + "\n")
		}
	}
	for _, c := range n.Children {
		outline(sb, c, depth+1)
	}
}

func describe(n *dom.Node) string {
	s := n.Tag
	if id := n.GetAttribute("id"); id != "" {
		s += "#" + id
	}
	if class := n.GetAttribute("class"); class != "" {
		s += "." + strings.ReplaceAll(strings.TrimSpace(class), " ", ".")
	}
	return s
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "…"
}

// findBySelector supports the handful of selector shapes an MCP agent
// realistically needs for a click: "#id", ".class", or a bare tag name.
// Anything richer belongs to internal/cssparse's full selector grammar,
// which document.querySelectorAll already exposes via the script bridge.
func findBySelector(root *dom.Node, selector string) *dom.Node {
	switch {
	case strings.HasPrefix(selector, "#"):
		id := selector[1:]
		return root.Find(func(n *dom.Node) bool { return n.Kind == dom.KindElement && n.GetAttribute("id") == id })
	case strings.HasPrefix(selector, "."):
		class := selector[1:]
		return root.Find(func(n *dom.Node) bool {
			if n.Kind != dom.KindElement {
				return false
			}
			for _, c := range strings.Fields(n.GetAttribute("class")) {
				if c == class {
					return true
				}
			}
			return false
		})
	default:
		return root.Find(func(n *dom.Node) bool { return n.Kind == dom.KindElement && n.Tag == selector })
	}
}
