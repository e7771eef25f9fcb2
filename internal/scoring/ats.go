package scoring

import (
	"math"
	"strings"
)

const (
	sectionWeight = 15
	bulletWeight  = 2
	densityWeight = 40

	minScore = 1
	maxScore = 100
)

// atsBreakdown holds the inputs of the ATS heuristic.
type atsBreakdown struct {
	Sections       int
	Bullets        int
	KeywordDensity float64
}

func (b atsBreakdown) raw() float64 {
	return float64(b.Sections*sectionWeight+b.Bullets*bulletWeight) + b.KeywordDensity*densityWeight
}

// Score rounds the raw heuristic and clamps it to [1,100].
func (b atsBreakdown) Score() int {
	return clampScore(math.Round(b.raw()))
}

func countSections(text string, sections vocabulary) int {
	n := 0
	for _, s := range sections.terms {
		if strings.Contains(text, s) {
			n++
		}
	}
	return n
}

func countBullets(text string) int {
	return strings.Count(text, "•") + strings.Count(text, "-")
}

func keywordDensity(matched int, text string) float64 {
	words := len(strings.Fields(text))
	if words < 1 {
		words = 1
	}
	return float64(matched) / float64(words)
}

func clampScore(v float64) int {
	switch {
	case math.IsNaN(v), v < minScore:
		return minScore
	case v > maxScore:
		return maxScore
	}
	return int(v)
}
