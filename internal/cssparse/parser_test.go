package cssparse

import (
	"testing"

	"github.com/use-agent/tinybrowser/internal/dom"
)

// TestFontShorthand exercises spec's concrete scenario 6:
// "h1 { font: italic bold 100% Times }" expands to the four longhands.
func TestFontShorthand(t *testing.T) {
	rules := Parse("h1 { font: italic bold 100% Times }")
	if len(rules) != 1 {
		t.Fatalf("expected 1 rule, got %d", len(rules))
	}
	d := rules[0].Declarations
	want := map[string]string{
		"font-style":  "italic",
		"font-weight": "bold",
		"font-size":   "100%",
		"font-family": "Times",
	}
	for k, v := range want {
		if d[k] != v {
			t.Errorf("%s: got %q want %q", k, d[k], v)
		}
	}
}

func TestImportantSplitsIntoOwnRule(t *testing.T) {
	rules := Parse("p { color: red; font-size: 2em !important }")
	var plain, important *Rule
	for i := range rules {
		if _, ok := rules[i].Declarations["font-size"]; ok {
			important = &rules[i]
		}
		if _, ok := rules[i].Declarations["color"]; ok {
			plain = &rules[i]
		}
	}
	if plain == nil || important == nil {
		t.Fatalf("expected separate plain and important rules, got %+v", rules)
	}
	if important.Priority <= plain.Priority {
		t.Errorf("important rule priority %d should exceed plain %d", important.Priority, plain.Priority)
	}
}

func TestPaddingFourValue(t *testing.T) {
	rules := Parse("div { padding: 1px 2px 3px 4px }")
	d := rules[0].Declarations
	if d["padding-top"] != "1px" || d["padding-right"] != "2px" || d["padding-bottom"] != "3px" || d["padding-left"] != "4px" {
		t.Errorf("got %+v", d)
	}
}

func TestPaddingTwoValue(t *testing.T) {
	rules := Parse("div { padding: 1px 2px }")
	d := rules[0].Declarations
	if d["padding-top"] != "1px" || d["padding-bottom"] != "1px" || d["padding-right"] != "2px" || d["padding-left"] != "2px" {
		t.Errorf("got %+v", d)
	}
}

func TestOrSelectorGroup(t *testing.T) {
	rules := Parse("h1, h2 { color: blue }")
	if len(rules) != 1 {
		t.Fatalf("expected 1 rule, got %d", len(rules))
	}
	if rules[0].Selector.Kind != SelOr {
		t.Errorf("expected SelOr selector, got %v", rules[0].Selector.Kind)
	}
}

func TestHasMatchesDirectChildOnly(t *testing.T) {
	sel, ok := parseSelectorGroup("div:has(p)")
	if !ok {
		t.Fatal("expected selector to parse")
	}
	if sel.Kind != SelHas {
		t.Fatalf("expected SelHas, got %v", sel.Kind)
	}

	direct := dom.NewElement("div")
	direct.AppendChild(dom.NewElement("p"))
	if !MatchesNode(sel, direct) {
		t.Error("div with a direct <p> child should match div:has(p)")
	}

	nested := dom.NewElement("div")
	section := dom.NewElement("section")
	section.AppendChild(dom.NewElement("p"))
	nested.AppendChild(section)
	if MatchesNode(sel, nested) {
		t.Error("div with only a grandchild <p> should not match div:has(p)")
	}
}

func TestMalformedRuleSkipped(t *testing.T) {
	rules := Parse("bad:::selector { color: red } p { color: blue }")
	if len(rules) != 1 {
		t.Fatalf("expected only the trailing rule to parse, got %d rules: %+v", len(rules), rules)
	}
	if rules[0].Selector.Value != "p" {
		t.Errorf("expected selector 'p', got %+v", rules[0].Selector)
	}
}
