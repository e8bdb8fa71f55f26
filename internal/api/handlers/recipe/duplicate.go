package recipe

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"recipe-keeper/internal/core/dedup"
	"recipe-keeper/internal/pkg/common"
)

// DetectionOptionsRequest overrides detection defaults per request. Absent
// fields keep their defaults.
type DetectionOptionsRequest struct {
	CheckExactTitle           *bool    `json:"check_exact_title"`
	CheckFuzzyTitle           *bool    `json:"check_fuzzy_title"`
	CheckIngredientSimilarity *bool    `json:"check_ingredient_similarity"`
	CheckSourceURL            *bool    `json:"check_source_url"`
	CheckContentFingerprint   *bool    `json:"check_content_fingerprint"`
	SimilarityThreshold       *float64 `json:"similarity_threshold"`
}

func (r *DetectionOptionsRequest) apply(opts dedup.DetectionOptions) dedup.DetectionOptions {
	if r == nil {
		return opts
	}
	if r.CheckExactTitle != nil {
		opts.CheckExactTitle = *r.CheckExactTitle
	}
	if r.CheckFuzzyTitle != nil {
		opts.CheckFuzzyTitle = *r.CheckFuzzyTitle
	}
	if r.CheckIngredientSimilarity != nil {
		opts.CheckIngredientSimilarity = *r.CheckIngredientSimilarity
	}
	if r.CheckSourceURL != nil {
		opts.CheckSourceURL = *r.CheckSourceURL
	}
	if r.CheckContentFingerprint != nil {
		opts.CheckContentFingerprint = *r.CheckContentFingerprint
	}
	if r.SimilarityThreshold != nil {
		opts.SimilarityThreshold = *r.SimilarityThreshold
	}
	return opts
}

// CheckDuplicatesRequest checks a candidate recipe against the pool.
type CheckDuplicatesRequest struct {
	UserID  string                   `json:"user_id,omitempty"`
	Recipe  common.CandidateRecipe   `json:"recipe" binding:"required"`
	Options *DetectionOptionsRequest `json:"options,omitempty"`
}

// MergeDuplicatesRequest collapses a duplicate group into one recipe.
type MergeDuplicatesRequest struct {
	RecipeIDs    []string `json:"recipe_ids" binding:"required"`
	KeepRecipeID string   `json:"keep_recipe_id" binding:"required"`
}

// HandleCheckDuplicates runs duplicate detection for a candidate recipe.
func (h *Handler) HandleCheckDuplicates(c *gin.Context) {
	reqID := requestID(c)

	var req CheckDuplicatesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.LogWarn("invalid duplicate check request",
			zap.Error(err),
			zap.String("request_id", reqID),
		)
		respondError(c, http.StatusBadRequest, "Invalid request format", err.Error())
		return
	}

	opts := req.Options.apply(h.dedupService.DetectionDefaults())

	result, err := h.dedupService.DetectDuplicates(c.Request.Context(), req.Recipe, req.UserID, opts)
	if err != nil {
		respondServiceError(c, reqID, err)
		return
	}

	common.LogInfo("duplicate check completed",
		zap.String("request_id", reqID),
		zap.Bool("has_duplicates", result.HasDuplicates),
		zap.Int("total_duplicates", result.TotalDuplicates),
	)

	respondOK(c, http.StatusOK, result)
}

// HandleScanDuplicates scans the whole collection for duplicate groups.
func (h *Handler) HandleScanDuplicates(c *gin.Context) {
	reqID := requestID(c)

	opts := h.dedupService.ScanDefaults()
	if raw := c.Query("threshold"); raw != "" {
		threshold, err := strconv.ParseFloat(raw, 64)
		if err != nil || threshold < 0 || threshold > 1 {
			respondError(c, http.StatusBadRequest, "Invalid threshold", nil)
			return
		}
		opts.SimilarityThreshold = threshold
	}
	if raw := c.Query("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit <= 0 {
			respondError(c, http.StatusBadRequest, "Invalid limit", nil)
			return
		}
		opts.Limit = limit
	}

	groups, err := h.dedupService.FindAllDuplicates(c.Request.Context(), c.Query("user_id"), opts)
	if err != nil {
		respondServiceError(c, reqID, err)
		return
	}

	respondOK(c, http.StatusOK, gin.H{
		"duplicate_groups": groups,
		"total_groups":     len(groups),
	})
}

// HandleDuplicateStats returns the cheap title-based duplicate estimate.
func (h *Handler) HandleDuplicateStats(c *gin.Context) {
	reqID := requestID(c)

	stats, err := h.dedupService.GetDuplicateStats(c.Request.Context(), c.Query("user_id"))
	if err != nil {
		respondServiceError(c, reqID, err)
		return
	}

	respondOK(c, http.StatusOK, stats)
}

// HandleMergeDuplicates keeps one recipe of a duplicate group and
// soft-deletes the rest.
func (h *Handler) HandleMergeDuplicates(c *gin.Context) {
	reqID := requestID(c)

	var req MergeDuplicatesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.LogWarn("invalid merge request",
			zap.Error(err),
			zap.String("request_id", reqID),
		)
		respondError(c, http.StatusBadRequest, "Invalid request format", err.Error())
		return
	}

	result, err := h.dedupService.MergeDuplicateRecipes(c.Request.Context(), req.RecipeIDs, req.KeepRecipeID)
	if err != nil {
		respondServiceError(c, reqID, err)
		return
	}

	common.LogInfo("merge completed",
		zap.String("request_id", reqID),
		zap.String("kept_recipe_id", result.KeptRecipe.ID),
		zap.Int("deleted_count", len(result.DeletedRecipes)),
	)

	respondOK(c, http.StatusOK, result)
}
