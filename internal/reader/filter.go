package reader

import "github.com/use-agent/tinybrowser/internal/dom"

// FilterNodes applies include/exclude CSS-selector filtering straight to
// the parsed DOM tree, for document.readerView({include, exclude})
// overrides.
//
// Processing order:
//  1. Detach every element matching an excludeTags selector.
//  2. If includeTags is non-empty, narrow to the elements matching an
//     includeTags selector (after exclusion has run).
//
// If includeTags is empty, root itself (post-exclusion) is returned.
func FilterNodes(root *dom.Node, includeTags, excludeTags []string) []*dom.Node {
	for _, selector := range excludeTags {
		for _, n := range ApplySelector(root, selector) {
			if n.Parent != nil {
				n.Parent.RemoveChild(n)
			}
		}
	}

	if len(includeTags) == 0 {
		return []*dom.Node{root}
	}

	var kept []*dom.Node
	for _, selector := range includeTags {
		kept = append(kept, ApplySelector(root, selector)...)
	}
	return kept
}
