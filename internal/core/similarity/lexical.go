package similarity

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// minTokenLength is the shortest token kept by Tokenize.
const minTokenLength = 4

// nonWord matches anything but Unicode letters, digits and underscores.
var nonWord = regexp.MustCompile(`[^\p{L}\p{N}_]+`)

// Tokenize splits text on runs of non-word characters, lower-cases the
// pieces and drops tokens shorter than four characters (runes, not bytes).
func Tokenize(text string) []string {
	parts := nonWord.Split(strings.ToLower(text), -1)
	tokens := make([]string, 0, len(parts))
	for _, p := range parts {
		if utf8.RuneCountInString(p) >= minTokenLength {
			tokens = append(tokens, p)
		}
	}
	return tokens
}

// LexicalScore returns the fraction of query tokens that occur in the
// document, in [0, 1]. Query tokens are counted with multiplicity;
// document tokens are treated as a set.
func LexicalScore(query, document string) float64 {
	queryTokens := Tokenize(query)
	if len(queryTokens) == 0 {
		return 0
	}

	docTokens := make(map[string]struct{})
	for _, t := range Tokenize(document) {
		docTokens[t] = struct{}{}
	}

	matched := 0
	for _, t := range queryTokens {
		if _, ok := docTokens[t]; ok {
			matched++
		}
	}

	score := float64(matched) / float64(len(queryTokens))
	if score > 1 {
		return 1
	}
	return score
}
