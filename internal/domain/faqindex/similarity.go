package faqindex

import "strings"

// Similarity scores the lexical overlap of two texts as the Jaccard index
// over their normalized word sets. Duplicate words within one text count
// once. The result is in [0,1] and symmetric. Two texts that both normalize
// to nothing share no comparable content, so the score is 0, not 1.
func Similarity(a, b string) float64 {
	wordsA := wordSet(a)
	wordsB := wordSet(b)
	if len(wordsA) == 0 && len(wordsB) == 0 {
		return 0
	}

	intersection := 0
	for word := range wordsA {
		if _, ok := wordsB[word]; ok {
			intersection++
		}
	}
	union := len(wordsA) + len(wordsB) - intersection
	return float64(intersection) / float64(union)
}

func wordSet(text string) map[string]struct{} {
	fields := strings.Fields(Normalize(text))
	set := make(map[string]struct{}, len(fields))
	for _, word := range fields {
		set[word] = struct{}{}
	}
	return set
}
