package service

import (
	"math"
	"regexp"
	"sort"
	"strings"

	"semsearch/internal/domain"
)

var wordRe = regexp.MustCompile(`\p{L}+(?:['’]\p{L}+)*`)

// flatScores reports whether the vector search gave no signal, which happens
// when the query embeds to a zero vector.
func flatScores(results []domain.SearchResult) bool {
	for _, r := range results {
		if r.Score > 1e-9 {
			return false
		}
	}
	return true
}

// rerankLexical orders results by the Ochiai coefficient between the query
// and chunk word sets.
func rerankLexical(query string, results []domain.SearchResult) []domain.SearchResult {
	qset := tokenSet(query)
	for i := range results {
		results[i].Score = ochiai(qset, tokenSet(results[i].Content))
	}
	sort.SliceStable(results, func(i, j int) bool { return results[i].Score > results[j].Score })
	return results
}

func tokenSet(s string) map[string]struct{} {
	tokens := wordRe.FindAllString(strings.ToLower(s), -1)
	m := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		m[t] = struct{}{}
	}
	return m
}

// ochiai is |A∩B| / sqrt(|A||B|).
func ochiai(a, b map[string]struct{}) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	inter := 0
	for t := range b {
		if _, ok := a[t]; ok {
			inter++
		}
	}
	return float64(inter) / math.Sqrt(float64(len(a))*float64(len(b)))
}
