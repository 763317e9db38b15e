package reader

import (
	"strings"
	"unicode/utf8"
)

// EstimateTokens approximates a token count without a real tokenizer,
// used to report Reader Mode's length savings.
//
// Word count is the unit the layout engine already breaks and measures
// text by (internal/layout's inline cursor advances word by word, not
// character by character), so this counts words and scales by ~1.3
// tokens/word for English. CJK text has no word boundaries to split on,
// so whenever the rune-based estimate (runes/3) would come out higher,
// that one wins instead.
func EstimateTokens(text string) int {
	runes := utf8.RuneCountInString(text)
	if runes == 0 {
		return 0
	}
	est := int(float64(len(strings.Fields(text))) * 1.3)
	if byRune := runes / 3; byRune > est {
		est = byRune
	}
	if est < 1 {
		est = 1
	}
	return est
}
