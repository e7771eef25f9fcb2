// Package scoring ranks résumés against a job description.
//
// A run normalizes every text, fits one TF-IDF space over the job
// description and all résumés together, intersects each text with a fixed
// skill vocabulary and derives a structural ATS score. Scores are only
// comparable within one run.
package scoring

import (
	"math"
	"sort"
	"strings"
)

const (
	similarityWeight = 0.7
	skillWeight      = 0.3
)

// Options toggles behavior that differs from plain whitespace matching.
type Options struct {
	// PhraseSkillMatching lets multi-word vocabulary terms match a run of
	// consecutive tokens. Off by default: those terms then never match.
	PhraseSkillMatching bool
	// CountRawBullets counts bullet characters in the lower-cased raw text
	// instead of the normalized text, which has had them stripped.
	CountRawBullets bool
}

// Document is one résumé entering the scorer.
type Document struct {
	Filename string
	Text     string
}

// Result is the per-résumé outcome of a run.
type Result struct {
	Filename         string
	RawText          string
	NormalizedText   string
	Skills           []string
	MatchedJobSkills []string
	ATSScore         int
	Similarity       float64
	SkillOverlap     float64
	FitScore         int
	Suggestions      []string
}

// RankingRow is one line of the ranking table. Index points into
// Analysis.Results.
type RankingRow struct {
	Index    int
	Filename string
	FitScore int
	ATSScore int
}

// Analysis is the outcome of scoring one batch.
type Analysis struct {
	JobSkills []string
	// Results are in upload order.
	Results []Result
	// Ranking is sorted by fit score, descending, ties in upload order.
	Ranking []RankingRow
}

// Scorer holds the vocabularies; it has no mutable state and is safe for
// concurrent use.
type Scorer struct {
	skills   vocabulary
	sections vocabulary
	opts     Options
}

// NewScorer builds a scorer over the given skill and section vocabularies.
func NewScorer(skills, sections []string, opts Options) *Scorer {
	return &Scorer{
		skills:   newVocabulary(skills),
		sections: newVocabulary(sections),
		opts:     opts,
	}
}

// NewDefaultScorer uses the built-in vocabularies.
func NewDefaultScorer(opts Options) *Scorer {
	return NewScorer(defaultSkillVocabulary, defaultSectionVocabulary, opts)
}

// SkillVocabulary returns the skill terms, lower-cased and deduplicated.
func (s *Scorer) SkillVocabulary() []string { return s.skills.Terms() }

// SectionVocabulary returns the section headers in suggestion order.
func (s *Scorer) SectionVocabulary() []string { return s.sections.Terms() }

// ExtractSkills returns the sorted vocabulary terms present in normalized text.
func (s *Scorer) ExtractSkills(text string) []string {
	return extractSkills(text, s.skills, s.opts.PhraseSkillMatching)
}

// ATSScore computes the structural heuristic on normalized text.
func (s *Scorer) ATSScore(text string) int {
	return s.atsBreakdown(text, text).Score()
}

func (s *Scorer) atsBreakdown(normalized, bulletSource string) atsBreakdown {
	return atsBreakdown{
		Sections:       countSections(normalized, s.sections),
		Bullets:        countBullets(bulletSource),
		KeywordDensity: keywordDensity(len(s.ExtractSkills(normalized)), normalized),
	}
}

// Suggestions lists improvements for normalized text; never empty.
func (s *Scorer) Suggestions(text string) []string {
	return suggestImprovements(text, s.sections)
}

// SkillOverlap is |matched ∩ required| / max(1, |required|).
func SkillOverlap(matched, required []string) float64 {
	denom := len(required)
	if denom < 1 {
		denom = 1
	}
	return float64(len(intersect(matched, required))) / float64(denom)
}

// FitScore combines similarity and skill overlap, both in [0,1], into an
// integer percentage clamped to [1,100].
func FitScore(similarity, skillOverlap float64) int {
	return clampScore(math.Round(100 * (similarityWeight*similarity + skillWeight*skillOverlap)))
}

// Rank scores every document against job as one batch.
func (s *Scorer) Rank(job string, docs []Document) *Analysis {
	normJob := Normalize(job)
	jobSkills := s.ExtractSkills(normJob)

	normalized := make([]string, len(docs))
	for i, d := range docs {
		normalized[i] = Normalize(d.Text)
	}
	similarities := Similarities(normJob, normalized)

	results := make([]Result, len(docs))
	for i, d := range docs {
		text := normalized[i]
		skills := s.ExtractSkills(text)

		bulletSource := text
		if s.opts.CountRawBullets {
			bulletSource = strings.ToLower(d.Text)
		}

		overlap := SkillOverlap(skills, jobSkills)
		results[i] = Result{
			Filename:         d.Filename,
			RawText:          d.Text,
			NormalizedText:   text,
			Skills:           skills,
			MatchedJobSkills: intersect(skills, jobSkills),
			ATSScore:         s.atsBreakdown(text, bulletSource).Score(),
			Similarity:       similarities[i],
			SkillOverlap:     overlap,
			FitScore:         FitScore(similarities[i], overlap),
			Suggestions:      s.Suggestions(text),
		}
	}

	return &Analysis{
		JobSkills: jobSkills,
		Results:   results,
		Ranking:   rankResults(results),
	}
}

func rankResults(results []Result) []RankingRow {
	rows := make([]RankingRow, len(results))
	for i, r := range results {
		rows[i] = RankingRow{Index: i, Filename: r.Filename, FitScore: r.FitScore, ATSScore: r.ATSScore}
	}
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].FitScore > rows[j].FitScore
	})
	return rows
}
