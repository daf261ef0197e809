package screening

import "sort"

// FilterRank drops candidates scoring below threshold and sorts the rest
// descending by similarity. The sort is stable so ties keep the store's
// distance ordering. An empty result is a valid outcome, not an error.
func FilterRank(candidates []ScoredCandidate, threshold int) []ScoredCandidate {
	out := make([]ScoredCandidate, 0, len(candidates))
	for _, c := range candidates {
		if c.SimilarityPct >= threshold {
			out = append(out, c)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].SimilarityPct > out[j].SimilarityPct
	})
	return out
}
