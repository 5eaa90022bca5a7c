package services

import (
	"math"

	"github.com/citeview-labs/citeview-cli/internal/core/domain"
)

// diversify reranks candidates with maximal marginal relevance. Each
// step picks the candidate maximising
//
//	lambda*relevance - (1-lambda)*maxSimilarityToSelected
//
// Pairwise similarity is approximated by score closeness (1 - |score
// difference|): candidates that scored almost identically against the
// query tend to say the same thing, so pushing them apart trades a
// little relevance for coverage without a second embedding pass.
//
// Candidates must arrive ranked best first. Ties break on original
// rank, so reranking is deterministic. When there are no more
// candidates than topK the input order is preserved unchanged.
func diversify(candidates []domain.RetrievalResult, topK int, lambda float64) []domain.RetrievalResult {
	if len(candidates) <= topK {
		return candidates
	}

	selected := make([]domain.RetrievalResult, 0, topK)
	remaining := make([]int, 0, len(candidates))

	// Seed with the most relevant candidate, index 0 by ranking.
	selected = append(selected, candidates[0])
	for i := 1; i < len(candidates); i++ {
		remaining = append(remaining, i)
	}

	for len(selected) < topK && len(remaining) > 0 {
		bestPos := -1
		bestScore := math.Inf(-1)

		for pos, idx := range remaining {
			cand := candidates[idx]

			maxSim := 0.0
			for _, sel := range selected {
				sim := 1.0 - math.Abs(cand.Score-sel.Score)
				if sim > maxSim {
					maxSim = sim
				}
			}

			score := lambda*cand.Score - (1.0-lambda)*maxSim
			// Strict greater keeps the earlier (better ranked) candidate
			// on ties.
			if score > bestScore {
				bestScore = score
				bestPos = pos
			}
		}

		selected = append(selected, candidates[remaining[bestPos]])
		remaining = append(remaining[:bestPos], remaining[bestPos+1:]...)
	}

	return selected
}
