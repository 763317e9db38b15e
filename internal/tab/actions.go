package tab

import (
	"net/url"
	"strings"

	"github.com/use-agent/tinybrowser/internal/dom"
	"github.com/use-agent/tinybrowser/internal/layout"
)

// MouseButton mirrors spec §4.9's click routing: button 1 pushes
// location, button 2 opens a new tab, anything else is inert by default.
type MouseButton int

const (
	ButtonPrimary   MouseButton = 1
	ButtonSecondary MouseButton = 2
)

// ClickResult reports what a Click call decided, for the windowing
// collaborator to act on (opening a new tab is its call, not the
// runtime's, since only it owns the tab list UI).
type ClickResult struct {
	OpenedNewTabURL string // non-empty when button 2 hit an <a href>
	DefaultPrevented bool
}

// Click dispatches spec §4.9's click-routing procedure: modal capture,
// reverse hit-test, walk-up for the first actionable ancestor, bridge
// notification, then the per-tag default action — switch-on-action-type
// dispatch the way the teacher's executeSingleAction dispatched on
// action.Type.
func (t *Tab) Click(x, y float64, button MouseButton) ClickResult {
	if t.modalActive {
		return ClickResult{}
	}
	node := t.hitTest(x, y)
	if node == nil {
		return ClickResult{}
	}
	return t.ClickNode(node, button)
}

// ClickNode runs the click-routing procedure directly on node, bypassing
// coordinate hit-testing — the path a synthetic click (automation,
// fixture replay) takes when it already knows which element to act on.
func (t *Tab) ClickNode(node *dom.Node, button MouseButton) ClickResult {
	if t.DispatchEvent("click", node) {
		return ClickResult{DefaultPrevented: true}
	}

	for n := node; n != nil; n = n.Parent {
		switch n.Tag {
		case "a":
			href := n.GetAttribute("href")
			if href == "" {
				continue
			}
			switch button {
			case ButtonPrimary:
				t.PushLocation(href)
			case ButtonSecondary:
				if u, err := t.ResolveURL(href); err == nil {
					return ClickResult{OpenedNewTabURL: u.String()}
				}
			}
			return ClickResult{}
		case "input":
			t.focusInput(n)
			return ClickResult{}
		case "button":
			t.rememberedForm = findAncestorForm(n)
			if t.rememberedForm != nil {
				t.SubmitForm(t.rememberedForm)
			}
			return ClickResult{}
		case "form":
			t.rememberedForm = n
			return ClickResult{}
		}
	}
	return ClickResult{}
}

// FindFirstAnchor returns the document's first <a> in tree order, or nil.
func (t *Tab) FindFirstAnchor() *dom.Node {
	if t.doc == nil {
		return nil
	}
	return t.doc.Find(func(n *dom.Node) bool { return n.Kind == dom.KindElement && n.Tag == "a" })
}

func findAncestorForm(n *dom.Node) *dom.Node {
	for a := n; a != nil; a = a.Parent {
		if a.Tag == "form" {
			return a
		}
	}
	return nil
}

// focusInput implements spec §4.9's input click behavior: checkboxes
// toggle, everything else focuses and sets the caret to the click
// position (approximated as end-of-text; precise glyph hit-testing is
// the windowing collaborator's job once it owns real font metrics).
func (t *Tab) focusInput(n *dom.Node) {
	for _, other := range t.doc.FindAll(func(c *dom.Node) bool { return c.Kind == dom.KindElement && c.Tag == "input" }) {
		other.Focus = false
	}
	n.Focus = true
	if n.GetAttribute("type") == "checkbox" {
		checked := n.GetAttribute("ischecked") == "true"
		n.SetAttribute("ischecked", boolStr(!checked))
		return
	}
	n.Caret = len([]rune(n.GetAttribute("value")))
}

func boolStr(b bool) string {
	if b {
		return "true"
	}
	return "false"
}

// hitTest walks the layout tree in reverse paint order (later siblings
// are drawn on top) looking for the deepest object whose box contains
// (x, y), then returns the DOM node it was built from.
func (t *Tab) hitTest(x, y float64) *dom.Node {
	obj := hitTestObject(t.layoutRoot, x, y)
	if obj == nil {
		return nil
	}
	return obj.Node
}

func hitTestObject(obj *layout.Object, x, y float64) *layout.Object {
	if obj == nil {
		return nil
	}
	for i := len(obj.Children) - 1; i >= 0; i-- {
		if hit := hitTestObject(obj.Children[i], x, y); hit != nil {
			return hit
		}
	}
	if obj.Node == nil {
		return nil
	}
	b := obj.Box
	if x >= b.X && x <= b.X+b.W && y >= b.Y && y <= b.Y+b.H {
		return obj
	}
	return nil
}

// KeyPress implements spec §4.9's keyboard routing: printable keys go to
// the focused input (after a keydown dispatch), backspace navigates
// back when nothing else consumes it, and arrow left/right moves the
// caret.
func (t *Tab) KeyPress(key string) {
	focused := t.doc.Find(func(n *dom.Node) bool { return n.Kind == dom.KindElement && n.Focus })
	if focused != nil && t.DispatchEvent("keydown", focused) {
		return
	}
	switch key {
	case "ArrowLeft":
		if focused != nil && focused.Caret > 0 {
			focused.Caret--
		}
		return
	case "ArrowRight":
		if focused != nil {
			max := len([]rune(focused.GetAttribute("value")))
			if focused.Caret < max {
				focused.Caret++
			}
		}
		return
	case "Backspace":
		if focused == nil {
			t.win.Back(t.index)
			return
		}
		t.editInput(focused, func(r []rune) []rune {
			if focused.Caret == 0 {
				return r
			}
			out := append(append([]rune(nil), r[:focused.Caret-1]...), r[focused.Caret:]...)
			focused.Caret--
			return out
		})
		return
	}
	if focused != nil && len([]rune(key)) == 1 {
		t.editInput(focused, func(r []rune) []rune {
			out := append(append([]rune(nil), r[:focused.Caret]...), append([]rune(key), r[focused.Caret:]...)...)
			focused.Caret++
			return out
		})
	}
}

func (t *Tab) editInput(n *dom.Node, edit func([]rune) []rune) {
	r := []rune(n.GetAttribute("value"))
	n.SetAttribute("value", string(edit(r)))
}

// SubmitForm walks the form's named input descendants and navigates per
// spec §4.9's form-submission rules: method defaults to POST, GET
// appends the encoded body as a query string and clears the payload.
func (t *Tab) SubmitForm(form *dom.Node) {
	method := strings.ToLower(form.GetAttribute("method"))
	if method == "" {
		method = "post"
	}
	action := form.GetAttribute("action")

	var parts []string
	for _, n := range form.FindAll(func(c *dom.Node) bool { return c.Kind == dom.KindElement && c.Tag == "input" && c.GetAttribute("name") != "" }) {
		if n.GetAttribute("type") == "checkbox" && n.GetAttribute("ischecked") != "true" {
			continue
		}
		name := n.GetAttribute("name")
		value := n.GetAttribute("value")
		parts = append(parts, url.QueryEscape(name)+"="+url.QueryEscape(value))
	}
	body := strings.Join(parts, "&")

	target, err := t.ResolveURL(action)
	if err != nil {
		return
	}
	if method == "get" {
		u := *target
		if u.Search != "" {
			u.Search += "&" + body
		} else {
			u.Search = body
		}
		t.win.PushLocation(t.index, u.String(), nil, "GET")
		return
	}
	t.win.PushLocation(t.index, target.String(), []byte(body), "POST")
}
