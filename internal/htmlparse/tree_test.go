package htmlparse

import (
	"testing"

	"github.com/use-agent/tinybrowser/internal/dom"
)

func findBody(t *testing.T, root *dom.Node) *dom.Node {
	t.Helper()
	body := root.Find(func(n *dom.Node) bool { return n.Kind == dom.KindElement && n.Tag == "body" })
	if body == nil {
		t.Fatal("no <body> in tree")
	}
	return body
}

func tags(nodes []*dom.Node) []string {
	out := make([]string, len(nodes))
	for i, n := range nodes {
		out[i] = n.Tag
	}
	return out
}

// TestMisNestingRecovery exercises spec's concrete scenario 2:
// "<b>x<i>y</b>z</i>" yields html>body>[b[x, i[y]], i[z]].
func TestMisNestingRecovery(t *testing.T) {
	res := Parse("<b>x<i>y</b>z</i>")
	body := findBody(t, res.Root)

	if len(body.Children) != 2 {
		t.Fatalf("expected 2 top-level children of body, got %d: %v", len(body.Children), tags(body.Children))
	}
	b := body.Children[0]
	i2 := body.Children[1]
	if b.Tag != "b" || i2.Tag != "i" {
		t.Fatalf("expected [b, i] got %v", tags(body.Children))
	}
	if len(b.Children) != 2 {
		t.Fatalf("expected b to have 2 children (text x, element i), got %d", len(b.Children))
	}
	if b.Children[0].Kind != dom.KindText || b.Children[0].Text != "x" {
		t.Errorf("expected first child of b to be text 'x', got %+v", b.Children[0])
	}
	innerI := b.Children[1]
	if innerI.Kind != dom.KindElement || innerI.Tag != "i" {
		t.Fatalf("expected second child of b to be <i>, got %+v", innerI)
	}
	if len(innerI.Children) != 1 || innerI.Children[0].Text != "y" {
		t.Errorf("expected inner i to contain text 'y', got %+v", innerI.Children)
	}
	if len(i2.Children) != 1 || i2.Children[0].Text != "z" {
		t.Errorf("expected reopened i to contain text 'z', got %+v", i2.Children)
	}
}

func TestImplicitHtmlHeadBody(t *testing.T) {
	res := Parse("<title>hi</title><p>text</p>")
	if res.Root.Tag != "html" {
		t.Fatalf("expected root <html>, got %q", res.Root.Tag)
	}
	head := res.Root.Find(func(n *dom.Node) bool { return n.Tag == "head" })
	if head == nil {
		t.Fatal("expected implicit <head>")
	}
	body := findBody(t, res.Root)
	if len(body.Children) != 1 || body.Children[0].Tag != "p" {
		t.Errorf("expected <p> in body, got %v", tags(body.Children))
	}
}

func TestAutoCloseP(t *testing.T) {
	res := Parse("<p>one<p>two")
	body := findBody(t, res.Root)
	if len(body.Children) != 2 {
		t.Fatalf("expected two sibling <p> elements, got %d: %v", len(body.Children), tags(body.Children))
	}
}

func TestSelfClosingVoidElements(t *testing.T) {
	res := Parse("<br><img src=x.png>after")
	body := findBody(t, res.Root)
	if len(body.Children) != 3 {
		t.Fatalf("expected br, img, text siblings, got %d: %v", len(body.Children), tags(body.Children))
	}
}

func TestScriptBodyIsRaw(t *testing.T) {
	res := Parse("<script>if (1 < 2) { x(); }</script>")
	script := res.Root.Find(func(n *dom.Node) bool { return n.Tag == "script" })
	if script == nil {
		t.Fatal("expected <script> element")
	}
	if got, want := script.TextContent(), "if (1 < 2) { x(); }"; got != want {
		t.Errorf("got %q want %q", got, want)
	}
}

func TestEntities(t *testing.T) {
	res := Parse("<p>a&amp;b&nbsp;c</p>")
	p := res.Root.Find(func(n *dom.Node) bool { return n.Tag == "p" })
	if got, want := p.TextContent(), "a&b c"; got != want {
		t.Errorf("got %q want %q", got, want)
	}
}

func TestUnquotedAndBareAttrs(t *testing.T) {
	res := Parse(`<input type=checkbox checked name="a">`)
	input := res.Root.Find(func(n *dom.Node) bool { return n.Tag == "input" })
	if input.GetAttribute("type") != "checkbox" {
		t.Errorf("got type=%q", input.GetAttribute("type"))
	}
	if _, ok := input.Attrs["checked"]; !ok {
		t.Error("expected bare 'checked' attribute present")
	}
	if input.GetAttribute("name") != "a" {
		t.Errorf("got name=%q", input.GetAttribute("name"))
	}
}
