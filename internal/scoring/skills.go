package scoring

import (
	"sort"
	"strings"
)

// extractSkills returns the sorted set of vocabulary terms found in text.
//
// Tokens are whitespace-delimited and compared verbatim, so a multi-word
// term such as "machine learning" never equals a single token and a token
// carrying punctuation ("python,") does not equal "python". With phrases
// set, multi-word terms also match a run of consecutive tokens.
func extractSkills(text string, vocab vocabulary, phrases bool) []string {
	tokens := strings.Fields(text)
	found := make(map[string]struct{})

	for _, tok := range tokens {
		if vocab.contains(tok) {
			found[tok] = struct{}{}
		}
	}

	if phrases {
		for _, term := range vocab.terms {
			words := strings.Fields(term)
			if len(words) < 2 {
				continue
			}
			if containsRun(tokens, words) {
				found[term] = struct{}{}
			}
		}
	}

	skills := make([]string, 0, len(found))
	for s := range found {
		skills = append(skills, s)
	}
	sort.Strings(skills)
	return skills
}

func containsRun(tokens, words []string) bool {
	for i := 0; i+len(words) <= len(tokens); i++ {
		match := true
		for j, w := range words {
			if tokens[i+j] != w {
				match = false
				break
			}
		}
		if match {
			return true
		}
	}
	return false
}

// intersect returns the sorted members of a that are also in b.
func intersect(a, b []string) []string {
	set := make(map[string]struct{}, len(b))
	for _, s := range b {
		set[s] = struct{}{}
	}

	var out []string
	for _, s := range a {
		if _, ok := set[s]; ok {
			out = append(out, s)
		}
	}
	sort.Strings(out)
	return out
}
