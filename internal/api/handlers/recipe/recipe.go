package recipe

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"recipe-keeper/internal/core/dedup"
	recipeService "recipe-keeper/internal/core/recipe"
	"recipe-keeper/internal/pkg/common"
)

// CreateRecipeRequest creates a new recipe. Unless skip_duplicate_check is
// set, detection runs first and a duplicate hit turns into a 409.
type CreateRecipeRequest struct {
	UserID             string                 `json:"user_id,omitempty"`
	SkipDuplicateCheck bool                   `json:"skip_duplicate_check,omitempty"`
	Recipe             common.CandidateRecipe `json:"recipe" binding:"required"`
}

// UpdateRecipeRequest replaces a recipe's content.
type UpdateRecipeRequest struct {
	Recipe common.CandidateRecipe `json:"recipe" binding:"required"`
}

// Handler serves recipe CRUD and duplicate handling.
type Handler struct {
	recipeService *recipeService.Service
	dedupService  *dedup.Service
}

// NewHandler creates a new recipe handler.
func NewHandler(recipeSvc *recipeService.Service, dedupSvc *dedup.Service) *Handler {
	return &Handler{
		recipeService: recipeSvc,
		dedupService:  dedupSvc,
	}
}

// HandleCreate creates a recipe, guarding against duplicates by default.
func (h *Handler) HandleCreate(c *gin.Context) {
	reqID := requestID(c)

	var req CreateRecipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.LogWarn("invalid create request",
			zap.Error(err),
			zap.String("request_id", reqID),
		)
		respondError(c, http.StatusBadRequest, "Invalid request format", err.Error())
		return
	}

	if !req.SkipDuplicateCheck {
		result, err := h.dedupService.DetectDuplicates(c.Request.Context(), req.Recipe, req.UserID, h.dedupService.DetectionDefaults())
		if err != nil {
			respondServiceError(c, reqID, err)
			return
		}
		if result.HasDuplicates {
			common.LogInfo("create blocked by duplicates",
				zap.String("request_id", reqID),
				zap.Int("total_duplicates", result.TotalDuplicates),
			)
			respondError(c, http.StatusConflict, "Recipe appears to be a duplicate", result)
			return
		}
	}

	recipe, err := h.recipeService.Create(c.Request.Context(), req.UserID, req.Recipe)
	if err != nil {
		respondServiceError(c, reqID, err)
		return
	}

	respondOK(c, http.StatusCreated, recipe)
}

// HandleGet returns a recipe by id.
func (h *Handler) HandleGet(c *gin.Context) {
	reqID := requestID(c)

	recipe, err := h.recipeService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondServiceError(c, reqID, err)
		return
	}

	respondOK(c, http.StatusOK, recipe)
}

// HandleList lists recipes with paging.
func (h *Handler) HandleList(c *gin.Context) {
	reqID := requestID(c)

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "0"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	recipes, err := h.recipeService.List(c.Request.Context(), c.Query("user_id"), limit, offset)
	if err != nil {
		respondServiceError(c, reqID, err)
		return
	}

	respondOK(c, http.StatusOK, gin.H{
		"recipes": recipes,
		"count":   len(recipes),
	})
}

// HandleUpdate replaces a recipe's content.
func (h *Handler) HandleUpdate(c *gin.Context) {
	reqID := requestID(c)

	var req UpdateRecipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.LogWarn("invalid update request",
			zap.Error(err),
			zap.String("request_id", reqID),
		)
		respondError(c, http.StatusBadRequest, "Invalid request format", err.Error())
		return
	}

	recipe, err := h.recipeService.Update(c.Request.Context(), c.Param("id"), req.Recipe)
	if err != nil {
		respondServiceError(c, reqID, err)
		return
	}

	respondOK(c, http.StatusOK, recipe)
}

// HandleDelete soft-deletes a recipe.
func (h *Handler) HandleDelete(c *gin.Context) {
	reqID := requestID(c)

	recipe, err := h.recipeService.Delete(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondServiceError(c, reqID, err)
		return
	}

	respondOK(c, http.StatusOK, recipe)
}
