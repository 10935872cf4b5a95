package command

import (
	"strings"
	"unicode"
)

// #region tokenize

// fillerWords are function words skipped during token matching, so "too" and
// "the" never collide with a trigger.
var fillerWords = map[string]bool{
	"the": true, "a": true, "an": true, "is": true, "are": true,
	"was": true, "were": true, "be": true, "been": true, "being": true,
	"too": true, "very": true, "so": true, "bit": true, "feels": true,
	"feel": true, "looks": true, "look": true, "seems": true, "seem": true,
	"it": true, "its": true, "and": true, "or": true, "but": true,
	"of": true, "on": true, "in": true, "make": true, "needs": true,
	"need": true, "please": true, "more": true,
}

// tokenSet splits lowercase text into its non-filler word set.
func tokenSet(lower string) map[string]bool {
	words := strings.FieldsFunc(lower, func(r rune) bool {
		return !unicode.IsLetter(r)
	})
	set := make(map[string]bool, len(words))
	for _, w := range words {
		if len(w) < 2 || fillerWords[w] {
			continue
		}
		set[w] = true
	}
	return set
}

// #endregion tokenize
