package dedup

import (
	"recipe-keeper/internal/pkg/common"
)

// MatchType identifies which detector produced a match.
type MatchType string

const (
	MatchExactTitle           MatchType = "exact_title"
	MatchFuzzyTitle           MatchType = "fuzzy_title"
	MatchIngredientSimilarity MatchType = "ingredient_similarity"
	MatchSourceURL            MatchType = "source_url"
	MatchContentFingerprint   MatchType = "content_fingerprint"
)

// Confidence buckets a raw similarity score for display.
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// Detector-level thresholds. A fuzzy title or ingredient match below its
// threshold is not emitted at all.
const (
	fuzzyTitleThreshold = 0.8
	ingredientThreshold = 0.7
)

// DuplicateRecipe is a single match against an existing recipe.
type DuplicateRecipe struct {
	Recipe          common.Recipe `json:"recipe"`
	SimilarityScore float64       `json:"similarity_score"`
	MatchType       MatchType     `json:"match_type"`
	Confidence      Confidence    `json:"confidence"`
}

// DuplicateDetectionResult is the ranked outcome of a detection call.
// Duplicates is sorted by descending score and holds at most one entry per
// existing recipe.
type DuplicateDetectionResult struct {
	Duplicates             []DuplicateRecipe `json:"duplicates"`
	HasDuplicates          bool              `json:"has_duplicates"`
	TotalDuplicates        int               `json:"total_duplicates"`
	HighestSimilarityScore float64           `json:"highest_similarity_score"`
}

// DuplicateGroup is a set of at least two recipes judged mutually duplicate
// during a full scan.
type DuplicateGroup struct {
	Recipes         []common.Recipe `json:"recipes"`
	SimilarityScore float64         `json:"similarity_score"`
	MatchType       MatchType       `json:"match_type"`
}

// DuplicateStats is the cheap title-only duplicate estimate. It counts, per
// distinct normalized title, every recipe beyond the first as a potential
// duplicate; it is not a pairwise scan.
type DuplicateStats struct {
	TotalRecipes        int     `json:"total_recipes"`
	PotentialDuplicates int     `json:"potential_duplicates"`
	DuplicatePercentage float64 `json:"duplicate_percentage"`
}

// MergeResult reports the outcome of a duplicate merge.
type MergeResult struct {
	KeptRecipe     common.Recipe   `json:"kept_recipe"`
	DeletedRecipes []common.Recipe `json:"deleted_recipes"`
}

// DetectionOptions selects which detectors run and the minimum score a match
// must reach to appear in the result.
type DetectionOptions struct {
	CheckExactTitle           bool    `json:"check_exact_title"`
	CheckFuzzyTitle           bool    `json:"check_fuzzy_title"`
	CheckIngredientSimilarity bool    `json:"check_ingredient_similarity"`
	CheckSourceURL            bool    `json:"check_source_url"`
	CheckContentFingerprint   bool    `json:"check_content_fingerprint"`
	SimilarityThreshold       float64 `json:"similarity_threshold"`
}

// DefaultDetectionOptions enables every detector with a 0.5 result threshold.
func DefaultDetectionOptions() DetectionOptions {
	return DetectionOptions{
		CheckExactTitle:           true,
		CheckFuzzyTitle:           true,
		CheckIngredientSimilarity: true,
		CheckSourceURL:            true,
		CheckContentFingerprint:   true,
		SimilarityThreshold:       0.5,
	}
}

// ScanOptions bounds a full-collection duplicate scan.
type ScanOptions struct {
	SimilarityThreshold float64 `json:"similarity_threshold"`
	Limit               int     `json:"limit"`
}

// DefaultScanOptions uses a stricter 0.7 threshold and caps the pool at 50.
func DefaultScanOptions() ScanOptions {
	return ScanOptions{
		SimilarityThreshold: 0.7,
		Limit:               50,
	}
}
