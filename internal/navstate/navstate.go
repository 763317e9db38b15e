// Package navstate implements spec §4.8's per-tab navigation state
// machine: back/forward stacks, scroll, POST payload/method replay, and
// the window-level tab list, with a dirty bit external persistence reads
// before writing (spec §4.8's "dirty bit" design).
package navstate

import "sync"

// Snapshot is a history/future stack entry. It elides fields that are
// default (an empty Payload/Method simply stays zero-valued), per spec
// §4.8.
type Snapshot struct {
	URL     string
	Payload []byte
	Method  string
}

// Tab is spec §3's Tab State entity.
type Tab struct {
	URL     string
	Title   string
	Scroll  int
	Payload []byte
	Method  string
	History []Snapshot
	Future  []Snapshot
	Secure  string // "yes", "no", or ""
}

func newTabState(url string) *Tab {
	return &Tab{URL: url}
}

func (t *Tab) snapshot() Snapshot {
	return Snapshot{URL: t.URL, Payload: t.Payload, Method: t.Method}
}

func (t *Tab) restore(s Snapshot) {
	t.URL = s.URL
	t.Payload = s.Payload
	t.Method = s.Method
}

// Window owns the tab list and active-tab index for one browser window,
// per spec §3's invariant (g): active tab index is within
// [0, tab_count) whenever tab_count>0.
type Window struct {
	mu     sync.Mutex
	tabs   []*Tab
	active int
	Width  int
	Height int
	dirty  bool
}

// NewWindow constructs an empty window of the given size.
func NewWindow(width, height int) *Window {
	return &Window{Width: width, Height: height}
}

// Dirty reports whether state has changed since the last ClearDirty
// call; external persistence writes only when dirty (spec §4.8).
func (w *Window) Dirty() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.dirty
}

// ClearDirty resets the dirty bit after a successful persistence write.
func (w *Window) ClearDirty() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.dirty = false
}

func (w *Window) markDirty() { w.dirty = true }

// TabCount returns the number of open tabs.
func (w *Window) TabCount() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.tabs)
}

// ActiveIndex returns the active tab's index.
func (w *Window) ActiveIndex() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.active
}

// Tab returns a copy-free pointer to tab i's state; callers must not
// retain it across further Window mutations without re-fetching.
func (w *Window) Tab(i int) *Tab {
	w.mu.Lock()
	defer w.mu.Unlock()
	if i < 0 || i >= len(w.tabs) {
		return nil
	}
	return w.tabs[i]
}

// Active returns the active tab's state, or nil if there are no tabs.
func (w *Window) Active() *Tab {
	w.mu.Lock()
	defer w.mu.Unlock()
	if len(w.tabs) == 0 {
		return nil
	}
	return w.tabs[w.active]
}

// NewTab appends a new tab with the given url and makes it active, per
// spec §4.8's newtab transition.
func (w *Window) NewTab(url string) int {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.tabs = append(w.tabs, newTabState(url))
	w.active = len(w.tabs) - 1
	w.markDirty()
	return w.active
}

// PushLocation pushes a snapshot of the tab's current location onto its
// history, clears its future stack, and overwrites url/payload/method;
// scroll resets to 0 (spec §4.8's pushlocation transition).
func (w *Window) PushLocation(i int, url string, payload []byte, method string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	t := w.tabs[i]
	t.History = append(t.History, t.snapshot())
	t.Future = nil
	t.URL, t.Payload, t.Method = url, payload, method
	t.Scroll = 0
	w.markDirty()
}

// ReplaceLocation overwrites the tab's current location without
// touching history/future, only if url differs from the current one.
func (w *Window) ReplaceLocation(i int, url string, payload []byte, method string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	t := w.tabs[i]
	if t.URL == url {
		return
	}
	t.URL, t.Payload, t.Method = url, payload, method
	w.markDirty()
}

// Back pops history into the current location, pushing the current
// location onto future, iff history is non-empty.
func (w *Window) Back(i int) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	t := w.tabs[i]
	if len(t.History) == 0 {
		return false
	}
	last := t.History[len(t.History)-1]
	t.History = t.History[:len(t.History)-1]
	t.Future = append(t.Future, t.snapshot())
	t.restore(last)
	w.markDirty()
	return true
}

// Forward is Back's symmetric inverse, iff future is non-empty.
func (w *Window) Forward(i int) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	t := w.tabs[i]
	if len(t.Future) == 0 {
		return false
	}
	last := t.Future[len(t.Future)-1]
	t.Future = t.Future[:len(t.Future)-1]
	t.History = append(t.History, t.snapshot())
	t.restore(last)
	w.markDirty()
	return true
}

// SetScroll updates the tab's scroll position; 0 is the sentinel for
// "absent" per spec §4.8.
func (w *Window) SetScroll(i, pos int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.tabs[i].Scroll = pos
	w.markDirty()
}

// SetTitle updates the tab's title.
func (w *Window) SetTitle(i int, title string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.tabs[i].Title = title
	w.markDirty()
}

// SetSecure updates the tab's secure indicator.
func (w *Window) SetSecure(i int, secure string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.tabs[i].Secure = secure
	w.markDirty()
}

// CloseTabIndex removes tab i, decrementing the active index if
// i<=active and clamping it to the new tab count, per spec §4.8.
func (w *Window) CloseTabIndex(i int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if i < 0 || i >= len(w.tabs) {
		return
	}
	w.tabs = append(w.tabs[:i], w.tabs[i+1:]...)
	if i <= w.active && w.active > 0 {
		w.active--
	}
	if w.active >= len(w.tabs) {
		w.active = len(w.tabs) - 1
	}
	if w.active < 0 {
		w.active = 0
	}
	w.markDirty()
}

// SwitchTab sets the active tab, either absolutely (clamped) or
// relative to the current tab wrapping modulo count, per spec §4.8.
func (w *Window) SwitchTab(i int, relative bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if len(w.tabs) == 0 {
		return
	}
	if relative {
		n := len(w.tabs)
		w.active = ((w.active+i)%n + n) % n
	} else {
		if i < 0 {
			i = 0
		}
		if i >= len(w.tabs) {
			i = len(w.tabs) - 1
		}
		w.active = i
	}
	w.markDirty()
}
