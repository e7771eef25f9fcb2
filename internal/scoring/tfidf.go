package scoring

import (
	"math"
	"regexp"
	"sort"
)

// Tokens are runs of two or more word characters.
var termRe = regexp.MustCompile(`[\p{L}\p{N}_]{2,}`)

// Similarities fits a TF-IDF space over the whole corpus, with the job
// description as document zero, and returns the cosine similarity of every
// résumé to the job description, in input order.
//
// The space depends on every document in the batch: the same résumé scored
// alongside different résumés gets a different value.
func Similarities(job string, resumes []string) []float64 {
	corpus := make([]string, 0, len(resumes)+1)
	corpus = append(corpus, job)
	corpus = append(corpus, resumes...)

	vectors := fitTransform(corpus)
	scores := make([]float64, len(resumes))
	for i := range resumes {
		scores[i] = cosine(vectors[0], vectors[i+1])
	}
	return scores
}

// fitTransform builds l2-normalized tf-idf vectors using a smoothed idf:
// idf(t) = ln((1+n)/(1+df(t))) + 1.
func fitTransform(corpus []string) [][]float64 {
	counts := make([]map[string]int, len(corpus))
	df := make(map[string]int)
	for i, doc := range corpus {
		counts[i] = make(map[string]int)
		for _, term := range termRe.FindAllString(doc, -1) {
			if counts[i][term] == 0 {
				df[term]++
			}
			counts[i][term]++
		}
	}

	terms := make([]string, 0, len(df))
	for t := range df {
		terms = append(terms, t)
	}
	sort.Strings(terms)

	n := float64(len(corpus))
	idf := make([]float64, len(terms))
	for j, t := range terms {
		idf[j] = math.Log((1+n)/(1+float64(df[t]))) + 1
	}

	vectors := make([][]float64, len(corpus))
	for i := range corpus {
		vec := make([]float64, len(terms))
		for j, t := range terms {
			if c := counts[i][t]; c > 0 {
				vec[j] = float64(c) * idf[j]
			}
		}
		l2Normalize(vec)
		vectors[i] = vec
	}
	return vectors
}

func l2Normalize(vec []float64) {
	var sum float64
	for _, v := range vec {
		sum += v * v
	}
	if sum == 0 {
		return
	}
	norm := math.Sqrt(sum)
	for i := range vec {
		vec[i] /= norm
	}
}

// cosine of two l2-normalized vectors; zero vectors give 0.
func cosine(a, b []float64) float64 {
	var dot float64
	for i := range a {
		dot += a[i] * b[i]
	}
	switch {
	case dot < 0:
		return 0
	case dot > 1:
		return 1
	}
	return dot
}
