// Package cssparse implements spec §4.5's tolerant CSS parser: a flat
// list of (selector, declarations) rules, selector combinators, and
// shorthand expansion. Hand-rolled because the spec's :has()/:visited
// semantics and OrSelector priority arithmetic have no library analog.
package cssparse

import (
	"fmt"
	"strings"
)

// ParseSelector parses a single selector-list string (as passed to
// querySelectorAll, not a full stylesheet) into a Selector tree.
func ParseSelector(text string) (*Selector, error) {
	sel, ok := parseSelectorGroup(text)
	if !ok {
		return nil, fmt.Errorf("cssparse: malformed selector %q", text)
	}
	return sel, nil
}

// Rule is spec §3's Rule entity: a selector, a declaration map, and a
// priority used to sort rules before application.
type Rule struct {
	Selector     *Selector
	Declarations map[string]string
	Priority     int
}

// Parse is a tolerant recursive-descent parser: on any error within a
// rule it skips to the next "}", per spec §7's CSSParse error semantics.
func Parse(src string) []Rule {
	p := &parser{src: stripComments(src)}
	var rules []Rule
	for {
		p.skipWhitespace()
		if p.pos >= len(p.src) {
			break
		}
		selStart := p.pos
		brace := strings.IndexByte(p.src[p.pos:], '{')
		if brace < 0 {
			break
		}
		selText := p.src[selStart : p.pos+brace]
		p.pos += brace + 1

		close := strings.IndexByte(p.src[p.pos:], '}')
		var body string
		if close < 0 {
			body = p.src[p.pos:]
			p.pos = len(p.src)
		} else {
			body = p.src[p.pos : p.pos+close]
			p.pos += close + 1
		}

		sel, ok := parseSelectorGroup(selText)
		if !ok {
			continue // malformed selector: skip to next '}' (already consumed above)
		}

		decls, important := parseDeclarations(body)
		if len(decls) > 0 {
			rules = append(rules, Rule{Selector: sel, Declarations: decls, Priority: sel.Priority()})
		}
		for prop, val := range important {
			rules = append(rules, Rule{
				Selector:     sel,
				Declarations: map[string]string{prop: val},
				Priority:     sel.Priority() + 10000,
			})
		}
	}
	return rules
}

func stripComments(s string) string {
	var b strings.Builder
	i := 0
	for i < len(s) {
		if i+1 < len(s) && s[i] == '/' && s[i+1] == '*' {
			end := strings.Index(s[i+2:], "*/")
			if end < 0 {
				break
			}
			i += 2 + end + 2
			continue
		}
		b.WriteByte(s[i])
		i++
	}
	return b.String()
}

type parser struct {
	src string
	pos int
}

func (p *parser) skipWhitespace() {
	for p.pos < len(p.src) && isSpace(p.src[p.pos]) {
		p.pos++
	}
}

func isSpace(c byte) bool { return c == ' ' || c == '\t' || c == '\n' || c == '\r' }

// parseSelectorGroup splits on top-level commas into an OrSelector
// (priority = max of branches per spec §4.5), parsing each branch as a
// descendant chain of sequences.
func parseSelectorGroup(text string) (*Selector, bool) {
	branches := splitTopLevel(text, ',')
	var sels []*Selector
	for _, b := range branches {
		s, ok := parseDescendantChain(strings.TrimSpace(b))
		if !ok {
			return nil, false
		}
		sels = append(sels, s)
	}
	if len(sels) == 0 {
		return nil, false
	}
	if len(sels) == 1 {
		return sels[0], true
	}
	return &Selector{Kind: SelOr, Parts: sels}, true
}

func splitTopLevel(s string, sep byte) []string {
	var out []string
	depth := 0
	start := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '(':
			depth++
		case ')':
			depth--
		case sep:
			if depth == 0 {
				out = append(out, s[start:i])
				start = i + 1
			}
		}
	}
	out = append(out, s[start:])
	return out
}

// parseDescendantChain parses whitespace-separated compound selectors
// into a left-associated SelDescendant chain.
func parseDescendantChain(text string) (*Selector, bool) {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return nil, false
	}
	var chain *Selector
	for _, f := range fields {
		compound, ok := parseCompound(f)
		if !ok {
			return nil, false
		}
		if chain == nil {
			chain = compound
			continue
		}
		chain = &Selector{Kind: SelDescendant, Left: chain, Right: compound}
	}
	return chain, true
}

// parseCompound parses one whitespace-free compound selector such as
// "a.red" or ".nav:has(li)" or "a:visited" into a Sequence/Has/Visited
// tagged variant.
func parseCompound(s string) (*Selector, bool) {
	var parts []*Selector
	i := 0
	for i < len(s) {
		switch {
		case s[i] == '.':
			j := i + 1
			for j < len(s) && isIdentChar(s[j]) {
				j++
			}
			if j == i+1 {
				return nil, false
			}
			parts = append(parts, &Selector{Kind: SelClass, Value: s[i+1 : j]})
			i = j
		case strings.HasPrefix(s[i:], ":has("):
			end := strings.IndexByte(s[i:], ')')
			if end < 0 {
				return nil, false
			}
			innerText := s[i+5 : i+end]
			inner, ok := parseDescendantChain(strings.TrimSpace(innerText))
			if !ok {
				return nil, false
			}
			base := combine(parts)
			parts = []*Selector{{Kind: SelHas, Base: base, Inner: inner}}
			i += end + 1
		case strings.HasPrefix(s[i:], ":visited"):
			base := combine(parts)
			parts = []*Selector{{Kind: SelVisited, Base: base}}
			i += len(":visited")
		case isIdentChar(s[i]):
			j := i
			for j < len(s) && isIdentChar(s[j]) {
				j++
			}
			parts = append(parts, &Selector{Kind: SelTag, Value: strings.ToLower(s[i:j])})
			i = j
		default:
			return nil, false
		}
	}
	if len(parts) == 0 {
		return nil, false
	}
	return combine(parts), true
}

func combine(parts []*Selector) *Selector {
	if len(parts) == 1 {
		return parts[0]
	}
	return &Selector{Kind: SelSequence, Parts: append([]*Selector(nil), parts...)}
}

func isIdentChar(c byte) bool {
	return c == '-' || c == '_' ||
		(c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}
