package dedup

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strings"

	"github.com/agnivade/levenshtein"

	"recipe-keeper/internal/pkg/common"
)

// StringSimilarity returns 1 - dist/max(len) over the edit distance of a and
// b. Two empty strings are identical by vacuity and score 1.0.
func StringSimilarity(a, b string) float64 {
	if a == b {
		return 1.0
	}
	maxLen := len([]rune(a))
	if lb := len([]rune(b)); lb > maxLen {
		maxLen = lb
	}
	if maxLen == 0 {
		return 1.0
	}
	dist := levenshtein.ComputeDistance(a, b)
	return 1.0 - float64(dist)/float64(maxLen)
}

// IngredientSimilarity is the Jaccard index over two normalized ingredient
// name sets. An empty union scores 0: recipes with no ingredients are not
// duplicates by this measure.
func IngredientSimilarity(a, b []string) float64 {
	setA := make(map[string]struct{}, len(a))
	for _, name := range a {
		setA[name] = struct{}{}
	}
	setB := make(map[string]struct{}, len(b))
	for _, name := range b {
		setB[name] = struct{}{}
	}

	intersection := 0
	for name := range setA {
		if _, ok := setB[name]; ok {
			intersection++
		}
	}
	union := len(setA) + len(setB) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}

// fingerprintPayload is the canonical recipe representation that gets hashed.
// Field order is fixed by the struct, so serialization is deterministic.
type fingerprintPayload struct {
	Title        string `json:"title"`
	Ingredients  string `json:"ingredients"`
	Instructions string `json:"instructions"`
	Servings     *int   `json:"servings"`
	CookingTime  *int   `json:"cooking_time"`
}

// Fingerprint computes a SHA-256 hex digest over the canonicalized recipe
// content. Ingredient names are sorted before hashing, so ingredient list
// order does not change the fingerprint; instruction order does.
func Fingerprint(r common.CandidateRecipe) string {
	instructions := make([]string, 0, len(r.Instructions))
	for _, step := range r.Instructions {
		instructions = append(instructions, NormalizeText(step.Instruction))
	}

	payload := fingerprintPayload{
		Title:        NormalizeText(r.Title),
		Ingredients:  strings.Join(NormalizeIngredients(r.Ingredients), "|"),
		Instructions: strings.Join(instructions, "|"),
		Servings:     r.Servings,
		CookingTime:  r.CookingTime,
	}

	// Marshal of a flat struct cannot fail.
	data, _ := json.Marshal(payload)
	digest := sha256.Sum256(data)
	return hex.EncodeToString(digest[:])
}
