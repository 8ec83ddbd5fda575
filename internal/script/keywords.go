package script

import (
	"sort"
	"strings"
	"unicode"
)

const maxKeywords = 8

// fixedKeywords are always unioned into the keyword set so downstream
// searches stay inside the book niche.
var fixedKeywords = []string{"books", "reading", "booktok"}

var stopwords = map[string]bool{
	"the": true, "and": true, "for": true, "are": true, "but": true,
	"not": true, "you": true, "your": true, "with": true, "this": true,
	"that": true, "from": true, "they": true, "will": true, "have": true,
	"what": true, "when": true, "where": true, "who": true, "how": true,
	"all": true, "can": true, "just": true, "into": true, "about": true,
	"than": true, "then": true, "them": true, "its": true, "one": true,
	"out": true, "get": true, "here": true, "there": true, "every": true,
	"like": true, "more": true, "most": true, "some": true, "only": true,
	"read": true, "book": true, "page": true, "pages": true, "story": true,
}

// ExtractKeywords derives search keywords from the narration: lowercase,
// stopwords stripped, ranked by frequency, unioned with the title tokens
// and the fixed topic keywords, capped at eight.
func ExtractKeywords(title, text string) []string {
	freq := make(map[string]int)
	var order []string
	for _, w := range tokenize(text) {
		if stopwords[w] || len(w) < 3 {
			continue
		}
		if freq[w] == 0 {
			order = append(order, w)
		}
		freq[w]++
	}

	// Stable sort keeps first-occurrence order between equal counts.
	sort.SliceStable(order, func(i, j int) bool {
		return freq[order[i]] > freq[order[j]]
	})

	seen := make(map[string]bool)
	var out []string
	add := func(w string) {
		if w == "" || seen[w] || len(out) >= maxKeywords {
			return
		}
		seen[w] = true
		out = append(out, w)
	}

	for _, w := range order {
		add(w)
	}
	for _, w := range tokenize(title) {
		if !stopwords[w] && len(w) >= 3 {
			add(w)
		}
	}
	for _, w := range fixedKeywords {
		add(w)
	}
	return out
}

func tokenize(s string) []string {
	return strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}
