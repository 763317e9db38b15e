package scriptbridge

import (
	"strings"

	"github.com/use-agent/tinybrowser/internal/dom"
	"github.com/use-agent/tinybrowser/internal/htmlparse"
)

// parseFragment parses raw as an implicit html/body document and returns
// the body's children, ready to be re-parented under some element (spec
// §4.10's innerHTML_set).
func parseFragment(raw string) []*dom.Node {
	result := htmlparse.Parse(raw)
	if result == nil || result.Root == nil {
		return nil
	}
	body := result.Root.Find(func(n *dom.Node) bool { return n.Kind == dom.KindElement && n.Tag == "body" })
	if body == nil {
		return nil
	}
	return append([]*dom.Node(nil), body.Children...)
}

var voidTags = map[string]bool{
	"area": true, "base": true, "br": true, "col": true, "embed": true,
	"hr": true, "img": true, "input": true, "link": true, "meta": true,
	"param": true, "source": true, "track": true, "wbr": true,
}

// serializeNode writes n and its subtree back to HTML text, for
// innerHTML_get/outerHTML_get.
func serializeNode(sb *strings.Builder, n *dom.Node) {
	if n.Kind == dom.KindText {
		sb.WriteString(n.Text)
		return
	}
	sb.WriteByte('<')
	sb.WriteString(n.Tag)
	for name, val := range n.Attrs {
		sb.WriteByte(' ')
		sb.WriteString(name)
		sb.WriteString(`="`)
		sb.WriteString(strings.ReplaceAll(val, `"`, "&quot;"))
		sb.WriteByte('"')
	}
	sb.WriteByte('>')
	if voidTags[n.Tag] {
		return
	}
	for _, c := range n.Children {
		serializeNode(sb, c)
	}
	sb.WriteString("</")
	sb.WriteString(n.Tag)
	sb.WriteByte('>')
}
