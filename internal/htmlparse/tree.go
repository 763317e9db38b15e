package htmlparse

import "github.com/use-agent/tinybrowser/internal/dom"

// selfClosingSet per spec §4.4.
var selfClosingSet = map[string]bool{
	"area": true, "base": true, "br": true, "col": true, "embed": true,
	"hr": true, "img": true, "input": true, "link": true, "meta": true,
	"param": true, "source": true, "track": true, "wbr": true,
}

// headOnlySet per spec §4.4.
var headOnlySet = map[string]bool{
	"base": true, "basefont": true, "bgsound": true, "noscript": true,
	"link": true, "meta": true, "title": true, "style": true, "script": true,
}

// formattingSet is the mis-nesting recovery set named by spec §4.4.
var formattingSet = map[string]bool{"b": true, "i": true}

// ParseResult is the output of Parse: the document root.
type ParseResult struct {
	Root *dom.Node // the <html> element
}

// Parse builds a Node tree from raw HTML bytes per spec §4.4: implicit
// html/head/body insertion, auto-closing p/li/button on a repeated open
// tag and open li at </ul> or </ol>, and
// mis-nested <b>/<i> recovery.
func Parse(src string) *ParseResult {
	b := &builder{tokens: Tokenize(src)}
	b.run()
	return &ParseResult{Root: b.html}
}

type builder struct {
	tokens []Token
	stack  []*dom.Node
	html   *dom.Node
	head   *dom.Node
	body   *dom.Node
}

func (b *builder) top() *dom.Node {
	if len(b.stack) == 0 {
		return nil
	}
	return b.stack[len(b.stack)-1]
}

func (b *builder) push(n *dom.Node) { b.stack = append(b.stack, n) }

func (b *builder) pop() *dom.Node {
	if len(b.stack) == 0 {
		return nil
	}
	n := b.stack[len(b.stack)-1]
	b.stack = b.stack[:len(b.stack)-1]
	return n
}

func (b *builder) ensureHTML() {
	if b.html != nil {
		return
	}
	b.html = dom.NewElement("html")
	b.push(b.html)
}

// ensureInsertionPoint implements the implicit-insertion predicate table
// named by spec §4.4/§9: no html → insert html; inside html with no
// head/body open → insert head for head-only tags, body otherwise; close
// head before any non-head tag.
func (b *builder) ensureInsertionPoint(tag string) {
	b.ensureHTML()
	if tag == "html" || tag == "head" || tag == "body" {
		// Explicit structural tags establish their own insertion point;
		// openTag records them into b.head/b.body directly. An explicit
		// <body> still closes a dangling open <head> first.
		if tag == "body" {
			b.closeHeadIfOpen()
		}
		return
	}
	if b.head == nil && b.body == nil {
		if headOnlySet[tag] {
			b.head = dom.NewElement("head")
			b.html.AppendChild(b.head)
			b.push(b.head)
			return
		}
		b.closeHeadIfOpen()
		b.body = dom.NewElement("body")
		b.html.AppendChild(b.body)
		b.push(b.body)
		return
	}
	if b.head != nil && b.top() == b.head && !headOnlySet[tag] {
		b.closeHeadIfOpen()
		if b.body == nil {
			b.body = dom.NewElement("body")
			b.html.AppendChild(b.body)
			b.push(b.body)
		}
	}
}

func (b *builder) closeHeadIfOpen() {
	if b.head != nil && b.top() == b.head {
		b.pop()
	}
}

func (b *builder) run() {
	for _, tok := range b.tokens {
		switch tok.Kind {
		case TokenText:
			b.insertText(tok.Text)
		case TokenStartTag:
			b.openTag(tok)
		case TokenEndTag:
			b.closeTag(tok.Tag)
		}
	}
	b.ensureHTML()
}

func (b *builder) insertText(text string) {
	if b.top() == nil {
		b.ensureInsertionPoint("")
		if b.top() == nil {
			return
		}
	}
	b.top().AppendChild(dom.NewText(text))
}

func (b *builder) openTag(tok Token) {
	b.ensureInsertionPoint(tok.Tag)

	// Auto-close open p/li/button on a new same-tag open.
	if (tok.Tag == "p" || tok.Tag == "li" || tok.Tag == "button") && b.hasOpenAncestorTag(tok.Tag) {
		b.closeTag(tok.Tag)
	}

	parent := b.top()
	if parent == nil {
		return
	}
	el := dom.NewElement(tok.Tag)
	for k, v := range tok.Attrs {
		el.SetAttribute(k, v)
	}
	parent.AppendChild(el)

	if tok.Tag == "html" {
		return
	}
	if tok.Tag == "head" {
		b.head = el
	}
	if tok.Tag == "body" {
		b.body = el
	}

	if selfClosingSet[tok.Tag] || tok.SelfClosing {
		return
	}
	b.push(el)
}

// hasOpenAncestorTag reports whether tag is currently open on the stack,
// used to decide auto-closing of p/li/button.
func (b *builder) hasOpenAncestorTag(tag string) bool {
	for i := len(b.stack) - 1; i >= 0; i-- {
		if b.stack[i].Tag == tag {
			return true
		}
		// A block boundary (body) stops the search.
		if b.stack[i] == b.body {
			return false
		}
	}
	return false
}

func (b *builder) closeTag(tag string) {
	if tag == "ul" || tag == "ol" {
		// "auto-close li on /ul or /ol": close any open li first, then
		// close the ul/ol itself normally.
		if b.hasOpenAncestorTag("li") {
			b.closeTagMatched("li")
		}
	}
	b.closeTagMatched(tag)
}

// closeTagMatched implements spec §4.4's mis-nesting recovery: if tag is
// not at the top of the stack, pop intermediate elements; any popped
// tags in FORMATTING are re-opened as new siblings after the matched
// close, continuing the insertion point inside the reopened element.
func (b *builder) closeTagMatched(tag string) {
	idx := -1
	for i := len(b.stack) - 1; i >= 0; i-- {
		if b.stack[i].Tag == tag {
			idx = i
			break
		}
	}
	if idx < 0 {
		return // no matching open element; ignore stray close
	}

	target := b.stack[idx]
	intermediates := append([]*dom.Node(nil), b.stack[idx+1:]...) // shallow-to-deep order
	b.stack = b.stack[:idx]                                       // pop target and everything above it

	if len(intermediates) == 0 {
		return
	}

	parent := target.Parent
	var reopenParent *dom.Node = parent
	for _, elem := range intermediates {
		if !formattingSet[elem.Tag] {
			continue
		}
		clone := dom.NewElement(elem.Tag)
		for k, v := range elem.Attrs {
			clone.SetAttribute(k, v)
		}
		reopenParent.AppendChild(clone)
		b.push(clone)
		reopenParent = clone
	}
}
