package scoring

import "strings"

var defaultSkillVocabulary = []string{
	"python",
	"java",
	"javascript",
	"typescript",
	"golang",
	"sql",
	"nosql",
	"excel",
	"tableau",
	"power bi",
	"machine learning",
	"deep learning",
	"data analysis",
	"statistics",
	"tensorflow",
	"pytorch",
	"pandas",
	"numpy",
	"aws",
	"azure",
	"docker",
	"kubernetes",
	"git",
	"linux",
	"react",
	"node.js",
	"communication",
	"leadership",
}

// Section headers in the order suggestions are emitted.
var defaultSectionVocabulary = []string{
	"education",
	"skills",
	"experience",
	"projects",
	"certifications",
}

// DefaultSkillVocabulary returns a copy of the built-in skill terms.
func DefaultSkillVocabulary() []string {
	return append([]string(nil), defaultSkillVocabulary...)
}

// DefaultSectionVocabulary returns a copy of the built-in section headers.
func DefaultSectionVocabulary() []string {
	return append([]string(nil), defaultSectionVocabulary...)
}

// vocabulary is an immutable, lower-cased term set that remembers insertion order.
type vocabulary struct {
	terms []string
	index map[string]struct{}
}

func newVocabulary(terms []string) vocabulary {
	v := vocabulary{index: make(map[string]struct{}, len(terms))}
	for _, t := range terms {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" {
			continue
		}
		if _, ok := v.index[t]; ok {
			continue
		}
		v.index[t] = struct{}{}
		v.terms = append(v.terms, t)
	}
	return v
}

func (v vocabulary) contains(term string) bool {
	_, ok := v.index[term]
	return ok
}

// Terms returns the terms in insertion order.
func (v vocabulary) Terms() []string {
	return append([]string(nil), v.terms...)
}
