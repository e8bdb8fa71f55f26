package recipe

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"recipe-keeper/internal/pkg/common"
)

// requestID returns the propagated request id, generating one when the
// client did not send any.
func requestID(c *gin.Context) string {
	id := c.GetHeader("X-Request-ID")
	if id == "" {
		id = uuid.New().String()
		c.Header("X-Request-ID", id)
	}
	return id
}

// respondOK writes the success envelope.
func respondOK(c *gin.Context, status int, data interface{}) {
	c.JSON(status, gin.H{
		"success": true,
		"data":    data,
	})
}

// respondError writes the failure envelope.
func respondError(c *gin.Context, status int, message string, details interface{}) {
	body := gin.H{
		"success": false,
		"error":   message,
	}
	if details != nil {
		body["details"] = details
	}
	c.JSON(status, body)
}

// respondServiceError maps a service error to the HTTP surface: validation
// errors become 400, not-found 404, everything else (collaborator failures
// included) 500.
func respondServiceError(c *gin.Context, reqID string, err error) {
	switch {
	case common.IsValidationError(err):
		common.LogWarn("request rejected",
			zap.Error(err),
			zap.String("request_id", reqID),
		)
		respondError(c, http.StatusBadRequest, err.Error(), nil)
	case common.IsNotFoundError(err):
		common.LogWarn("resource not found",
			zap.Error(err),
			zap.String("request_id", reqID),
		)
		respondError(c, http.StatusNotFound, err.Error(), nil)
	default:
		common.LogError("request failed",
			zap.Error(err),
			zap.String("request_id", reqID),
		)
		respondError(c, http.StatusInternalServerError, "Internal server error", nil)
	}
}
