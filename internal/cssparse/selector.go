package cssparse

// SelectorKind tags the selector variant, per spec §9's "tagged variants,
// avoid virtual-method proliferation" design note.
type SelectorKind int

const (
	SelTag SelectorKind = iota
	SelClass
	SelSequence   // concatenated selectors, e.g. "a.red"
	SelDescendant // whitespace combinator
	SelOr         // comma group
	SelHas        // :has(inner)
	SelVisited    // :visited
)

// Selector is a tagged-variant selector tree.
type Selector struct {
	Kind  SelectorKind
	Value string // tag or class name, for SelTag/SelClass

	Parts []*Selector // SelSequence members, or SelOr branches
	Left  *Selector   // SelDescendant ancestor
	Right *Selector   // SelDescendant descendant
	Inner *Selector   // SelHas inner selector
	Base  *Selector   // SelVisited/SelHas base selector
}

// Priority implements spec §4.5's priority table: ClassSelector=1,
// TagSelector=1, Sequence=sum, Descendant=sum, Has=base+inner,
// Visited=base+1, OrSelector=max of branches.
func (s *Selector) Priority() int {
	switch s.Kind {
	case SelTag, SelClass:
		return 1
	case SelSequence:
		total := 0
		for _, p := range s.Parts {
			total += p.Priority()
		}
		return total
	case SelDescendant:
		return s.Left.Priority() + s.Right.Priority()
	case SelOr:
		max := 0
		for _, p := range s.Parts {
			if pr := p.Priority(); pr > max {
				max = pr
			}
		}
		return max
	case SelHas:
		return s.Base.Priority() + s.Inner.Priority()
	case SelVisited:
		return s.Base.Priority() + 1
	}
	return 0
}

// elementLike is what a matcher needs from an element: its tag and
// classes, its parent chain (for descendant matching), its element
// children (for :has) and its visited flag.
type elementLike interface {
	Tag() string
	HasClass(string) bool
	Parent() elementLike
	Children() []elementLike
	IsVisited() bool
}

// Matches reports whether sel matches el, per spec §4.5's semantics:
// :has(tag) matches when the base matches and at least one *direct
// child* matches the inner selector (not a full descendant search);
// :visited matches when the base matches and the element is marked
// visited.
func Matches(sel *Selector, el elementLike) bool {
	switch sel.Kind {
	case SelTag:
		return el.Tag() == sel.Value
	case SelClass:
		return el.HasClass(sel.Value)
	case SelSequence:
		for _, p := range sel.Parts {
			if !Matches(p, el) {
				return false
			}
		}
		return true
	case SelDescendant:
		if !Matches(sel.Right, el) {
			return false
		}
		for anc := el.Parent(); anc != nil; anc = anc.Parent() {
			if Matches(sel.Left, anc) {
				return true
			}
		}
		return false
	case SelOr:
		for _, p := range sel.Parts {
			if Matches(p, el) {
				return true
			}
		}
		return false
	case SelHas:
		if !Matches(sel.Base, el) {
			return false
		}
		for _, child := range el.Children() {
			if Matches(sel.Inner, child) {
				return true
			}
		}
		return false
	case SelVisited:
		return Matches(sel.Base, el) && el.IsVisited()
	}
	return false
}
