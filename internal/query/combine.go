package query

// combineRRF implements Reciprocal Rank Fusion: for each result id,
// score += 1/(k + rank + 1) summed across whichever of the two ranked
// lists it appears in, per spec §4.5.
func combineRRF(textResults, vectorResults []SearchResult, k float64) []SearchResult {
	scores := make(map[string]*scoredResult)

	accumulate := func(list []SearchResult) {
		for rank, r := range list {
			sr, ok := scores[r.CanonicalID]
			if !ok {
				sr = &scoredResult{id: r.CanonicalID, result: r}
				scores[r.CanonicalID] = sr
			}
			sr.score += 1.0 / (k + float64(rank) + 1.0)
		}
	}
	accumulate(textResults)
	accumulate(vectorResults)

	return finalize(scores)
}

// combineLinear normalizes each list's scores to [0,1] via min-max
// (treating a zero-range list as all 1.0), then sums the weighted
// scores per spec §4.5. An id present in only one list is scored using
// only that list's contribution.
func combineLinear(textResults, vectorResults []SearchResult, wText, wVec float64) []SearchResult {
	textNorm := minMaxNormalize(textResults)
	vecNorm := minMaxNormalize(vectorResults)

	scores := make(map[string]*scoredResult)
	for id, score := range textNorm {
		sr, ok := scores[id]
		if !ok {
			sr = &scoredResult{id: id, result: findResult(textResults, id)}
			scores[id] = sr
		}
		sr.score += score * wText
	}
	for id, score := range vecNorm {
		sr, ok := scores[id]
		if !ok {
			sr = &scoredResult{id: id, result: findResult(vectorResults, id)}
			scores[id] = sr
		}
		sr.score += score * wVec
	}

	return finalize(scores)
}

func minMaxNormalize(results []SearchResult) map[string]float64 {
	out := make(map[string]float64, len(results))
	if len(results) == 0 {
		return out
	}

	min, max := results[0].Score, results[0].Score
	for _, r := range results {
		if r.Score < min {
			min = r.Score
		}
		if r.Score > max {
			max = r.Score
		}
	}

	rng := max - min
	for _, r := range results {
		if rng == 0 {
			out[r.CanonicalID] = 1.0
			continue
		}
		out[r.CanonicalID] = (r.Score - min) / rng
	}
	return out
}

func findResult(results []SearchResult, id string) SearchResult {
	for _, r := range results {
		if r.CanonicalID == id {
			return r
		}
	}
	return SearchResult{}
}

func finalize(scores map[string]*scoredResult) []SearchResult {
	out := make([]SearchResult, 0, len(scores))
	for _, sr := range scores {
		sr.result.Score = sr.score
		out = append(out, sr.result)
	}
	return out
}
