package guard

import (
	"strings"
	"unicode"
)

var (
	affirmativeTokens = map[string]bool{"YES": true, "SI": true, "SÌ": true}
	negativeTokens    = map[string]bool{"NO": true}
)

// IsContradiction parses the answer of the contradiction judge. The answer is split into whole words and the
// first word found in the allow-lists decides; an answer without any listed word is not a contradiction.
// Substrings never count, so "SIGNIFICANT" or "BASIC" are not affirmative.
func IsContradiction(verdict string) bool {
	words := strings.FieldsFunc(strings.ToUpper(verdict), func(r rune) bool {
		return !unicode.IsLetter(r)
	})
	for _, word := range words {
		if affirmativeTokens[word] {
			return true
		}
		if negativeTokens[word] {
			return false
		}
	}
	return false
}
