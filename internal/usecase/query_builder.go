package usecase

import (
	"sort"
	"strings"
)

var stopWords = map[string]struct{}{
	"the": {}, "a": {}, "an": {}, "and": {}, "or": {}, "but": {},
	"in": {}, "on": {}, "at": {}, "to": {}, "for": {}, "of": {},
	"with": {}, "by": {}, "from": {}, "as": {}, "is": {}, "are": {},
	"was": {}, "were": {}, "be": {}, "been": {}, "being": {},
	"this": {}, "that": {}, "these": {}, "those": {}, "it": {},
	"its": {}, "they": {}, "their": {}, "we": {}, "our": {},
	"you": {}, "your": {}, "he": {}, "she": {}, "his": {}, "her": {},
	"have": {}, "has": {}, "had": {}, "do": {}, "does": {}, "did": {},
	"will": {}, "would": {}, "can": {}, "could": {}, "should": {},
	"not": {}, "no": {}, "more": {}, "most": {}, "other": {}, "some": {},
	"such": {}, "than": {}, "then": {}, "also": {}, "about": {},
	"into": {}, "over": {}, "after": {}, "before": {}, "when": {},
	"which": {}, "what": {}, "who": {}, "how": {}, "where": {}, "why": {},
}

// instruction keyword -> query template appended to the top terms.
var instructionTemplates = []struct {
	trigger  string
	template string
}{
	{"statistic", "%s statistics and data"},
	{"data", "%s statistics and data"},
	{"trend", "%s latest trends"},
	{"recent", "%s latest trends"},
	{"example", "%s real world examples"},
	{"case", "%s real world examples"},
}

// GenerateQueries deterministically extracts search queries from content and
// user instructions: the top-3 frequent non-stop-word terms become the base
// query, and instruction keywords trigger a few fixed templates. Pure
// function, no network.
func GenerateQueries(content, instructions string, maxQueries int) []string {
	if maxQueries <= 0 {
		return nil
	}

	terms := topTerms(content, 3)
	queries := make([]string, 0, maxQueries)
	seen := make(map[string]struct{})

	add := func(q string) {
		q = strings.TrimSpace(q)
		if q == "" || len(queries) >= maxQueries {
			return
		}
		if _, dup := seen[q]; dup {
			return
		}
		seen[q] = struct{}{}
		queries = append(queries, q)
	}

	base := strings.Join(terms, " ")
	add(base)

	if base != "" {
		lowerInstructions := strings.ToLower(instructions)
		for _, t := range instructionTemplates {
			if strings.Contains(lowerInstructions, t.trigger) {
				add(strings.Replace(t.template, "%s", base, 1))
			}
		}
	}

	return queries
}

// topTerms returns the n most frequent meaningful words of text, most
// frequent first; frequency ties break alphabetically so the output is stable.
func topTerms(text string, n int) []string {
	freq := make(map[string]int)
	for _, field := range strings.Fields(strings.ToLower(text)) {
		word := strings.TrimFunc(field, func(r rune) bool {
			return !isWordRune(r)
		})
		if len(word) < 4 {
			continue
		}
		if _, stop := stopWords[word]; stop {
			continue
		}
		freq[word]++
	}

	words := make([]string, 0, len(freq))
	for w := range freq {
		words = append(words, w)
	}
	sort.Slice(words, func(i, j int) bool {
		if freq[words[i]] != freq[words[j]] {
			return freq[words[i]] > freq[words[j]]
		}
		return words[i] < words[j]
	})

	if len(words) > n {
		words = words[:n]
	}
	return words
}

func isWordRune(r rune) bool {
	return r >= 'a' && r <= 'z' || r >= '0' && r <= '9'
}
