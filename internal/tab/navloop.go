package tab

import (
	"hash/fnv"
	"math/bits"
	"strings"

	"github.com/use-agent/tinybrowser/internal/dom"
)

// loopHistoryLimit bounds how many recent page fingerprints a tab
// remembers when checking for navigation loops.
const loopHistoryLimit = 8

// loopSimilarityThreshold is the maximum Hamming distance between two
// fingerprints for pages to be considered the same, per simhash.Similar.
const loopSimilarityThreshold = 3

// navLoopDetector adapts the teacher's simhash duplicate check — there
// used to compare a JS-rendered page against its HTTP-fetched source —
// to a different question: has this tab loaded a near-identical
// document N times in a row. It fingerprints the engine's own parsed
// dom.Node tree rather than re-tokenizing the response bytes, so it sees
// exactly the structure the tab is about to render, post the same
// mis-nesting recovery and implicit-tag insertion htmlparse applies to
// every other navigation.
type navLoopDetector struct {
	recent []uint64
}

// observe fingerprints root (nil for navigations with no parsed
// document, e.g. view-source) and reports whether at least
// loopHistoryLimit/2 of the remembered fingerprints look like the same
// page.
func (d *navLoopDetector) observe(root *dom.Node) (looping bool) {
	if root == nil {
		return false
	}
	fp := fingerprintDOM(root)
	count := 0
	for _, prev := range d.recent {
		if similar(fp, prev, loopSimilarityThreshold) {
			count++
		}
	}
	d.recent = append(d.recent, fp)
	if len(d.recent) > loopHistoryLimit {
		d.recent = d.recent[len(d.recent)-loopHistoryLimit:]
	}
	return count >= loopHistoryLimit/2
}

// fingerprint computes a 64-bit SimHash of text, word-tokenized and
// hashed with FNV-64a per bit-vector accumulation.
func fingerprint(text string) uint64 {
	words := strings.Fields(text)
	if len(words) == 0 {
		return 0
	}
	var vector [64]int
	for _, word := range words {
		h := fnv.New64a()
		h.Write([]byte(word))
		hash := h.Sum64()
		for i := 0; i < 64; i++ {
			if hash&(1<<uint(i)) != 0 {
				vector[i]++
			} else {
				vector[i]--
			}
		}
	}
	var out uint64
	for i := 0; i < 64; i++ {
		if vector[i] > 0 {
			out |= 1 << uint(i)
		}
	}
	return out
}

// distance returns the Hamming distance between two fingerprints.
func distance(a, b uint64) int { return bits.OnesCount64(a ^ b) }

// similar reports whether a and b's Hamming distance is within threshold.
func similar(a, b uint64, threshold int) bool { return distance(a, b) <= threshold }

// fingerprintDOM fingerprints root's element tag sequence, shingled by
// 3, walked straight off the dom.Node tree — so layout-preserving but
// content-shifting pages (e.g. a redirect loop bouncing between two
// near-identical login pages) still collide, without needing a second,
// independent parse of the same bytes htmlparse already tokenized.
func fingerprintDOM(root *dom.Node) uint64 {
	tags := elementTags(root)
	if len(tags) == 0 {
		return 0
	}
	shingles := makeShingles(tags, 3)
	if len(shingles) == 0 {
		return fingerprint(strings.Join(tags, " "))
	}
	return fingerprint(strings.Join(shingles, " "))
}

// elementTags collects every element's tag name under root, in document
// order.
func elementTags(root *dom.Node) []string {
	elems := root.FindAll(func(n *dom.Node) bool { return n.Kind == dom.KindElement })
	tags := make([]string, len(elems))
	for i, n := range elems {
		tags[i] = n.Tag
	}
	return tags
}

func makeShingles(tokens []string, n int) []string {
	if len(tokens) < n {
		return nil
	}
	shingles := make([]string, 0, len(tokens)-n+1)
	for i := 0; i <= len(tokens)-n; i++ {
		shingles = append(shingles, strings.Join(tokens[i:i+n], "_"))
	}
	return shingles
}
