package dedup

import (
	"strings"

	"recipe-keeper/internal/pkg/common"
)

// ConfidenceForScore buckets a graded similarity score into a display tier.
func ConfidenceForScore(score float64) Confidence {
	switch {
	case score >= 0.9:
		return ConfidenceHigh
	case score >= 0.7:
		return ConfidenceMedium
	default:
		return ConfidenceLow
	}
}

// detectExactTitle matches recipes whose normalized titles are equal.
func detectExactTitle(candidate common.CandidateRecipe, pool []common.Recipe) []DuplicateRecipe {
	title := NormalizeText(candidate.Title)
	var matches []DuplicateRecipe
	for _, existing := range pool {
		if NormalizeText(existing.Title) != title {
			continue
		}
		matches = append(matches, DuplicateRecipe{
			Recipe:          existing,
			SimilarityScore: 1.0,
			MatchType:       MatchExactTitle,
			Confidence:      ConfidenceHigh,
		})
	}
	return matches
}

// detectFuzzyTitle matches titles by edit-distance similarity. Matches below
// the fuzzy threshold are not emitted.
func detectFuzzyTitle(candidate common.CandidateRecipe, pool []common.Recipe) []DuplicateRecipe {
	title := NormalizeText(candidate.Title)
	var matches []DuplicateRecipe
	for _, existing := range pool {
		score := StringSimilarity(title, NormalizeText(existing.Title))
		if score < fuzzyTitleThreshold {
			continue
		}
		matches = append(matches, DuplicateRecipe{
			Recipe:          existing,
			SimilarityScore: score,
			MatchType:       MatchFuzzyTitle,
			Confidence:      ConfidenceForScore(score),
		})
	}
	return matches
}

// detectIngredientSimilarity matches recipes whose normalized ingredient
// name sets overlap strongly (Jaccard index).
func detectIngredientSimilarity(candidate common.CandidateRecipe, pool []common.Recipe) []DuplicateRecipe {
	names := NormalizeIngredients(candidate.Ingredients)
	var matches []DuplicateRecipe
	for _, existing := range pool {
		score := IngredientSimilarity(names, NormalizeIngredients(existing.Ingredients))
		if score < ingredientThreshold {
			continue
		}
		matches = append(matches, DuplicateRecipe{
			Recipe:          existing,
			SimilarityScore: score,
			MatchType:       MatchIngredientSimilarity,
			Confidence:      ConfidenceForScore(score),
		})
	}
	return matches
}

// detectSourceURL matches recipes scraped from the same source URL. Recipes
// without a source are excluded rather than treated as wildcards.
func detectSourceURL(candidate common.CandidateRecipe, pool []common.Recipe) []DuplicateRecipe {
	if strings.TrimSpace(candidate.Source) == "" {
		return nil
	}
	source := NormalizeURL(candidate.Source)
	var matches []DuplicateRecipe
	for _, existing := range pool {
		if strings.TrimSpace(existing.Source) == "" {
			continue
		}
		if NormalizeURL(existing.Source) != source {
			continue
		}
		matches = append(matches, DuplicateRecipe{
			Recipe:          existing,
			SimilarityScore: 1.0,
			MatchType:       MatchSourceURL,
			Confidence:      ConfidenceHigh,
		})
	}
	return matches
}

// detectContentFingerprint matches recipes whose canonical content digests
// are byte-equal. Exact signal, never graded.
func detectContentFingerprint(candidate common.CandidateRecipe, pool []common.Recipe) []DuplicateRecipe {
	fingerprint := Fingerprint(candidate)
	var matches []DuplicateRecipe
	for _, existing := range pool {
		if Fingerprint(existing.CandidateRecipe) != fingerprint {
			continue
		}
		matches = append(matches, DuplicateRecipe{
			Recipe:          existing,
			SimilarityScore: 1.0,
			MatchType:       MatchContentFingerprint,
			Confidence:      ConfidenceHigh,
		})
	}
	return matches
}
