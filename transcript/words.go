package transcript

import (
	"strings"
	"unicode"
)

// normalizeWord lowercases w and trims surrounding punctuation so that
// "Hello," and "hello" compare equal.
func normalizeWord(w string) string {
	return strings.ToLower(strings.TrimFunc(w, func(r rune) bool {
		return unicode.IsPunct(r) || unicode.IsSymbol(r)
	}))
}

func normalizedWords(text string) []string {
	fields := strings.Fields(text)
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		if w := normalizeWord(f); w != "" {
			out = append(out, w)
		}
	}
	return out
}

func wordsEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if normalizeWord(a[i]) != normalizeWord(b[i]) {
			return false
		}
	}
	return true
}

// wordSubset reports whether every word of sub also occurs in super, ignoring case.
func wordSubset(sub, super string) bool {
	set := make(map[string]struct{})
	for _, w := range normalizedWords(super) {
		set[w] = struct{}{}
	}
	for _, w := range normalizedWords(sub) {
		if _, ok := set[w]; !ok {
			return false
		}
	}
	return true
}

// punctuationOnly reports whether text has no letters or digits.
func punctuationOnly(text string) bool {
	for _, r := range text {
		if unicode.IsLetter(r) || unicode.IsNumber(r) {
			return false
		}
	}
	return true
}

// degenerate reports a repetition loop: more than minWords words with a
// unique-to-total ratio under ratio.
func degenerate(words []string, minWords int, ratio float64) bool {
	if len(words) <= minWords {
		return false
	}
	unique := make(map[string]struct{}, len(words))
	for _, w := range words {
		unique[w] = struct{}{}
	}
	return float64(len(unique))/float64(len(words)) < ratio
}

// repeated reports more than minWords words that are all the same.
func repeated(words []string, minWords int) bool {
	if len(words) <= minWords {
		return false
	}
	for _, w := range words[1:] {
		if w != words[0] {
			return false
		}
	}
	return true
}
