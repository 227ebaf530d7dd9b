package rest

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	apierrors "github.com/teocoin/settlement-engine/internal/api/shared/errors"
	"github.com/teocoin/settlement-engine/internal/logger"
)

// respondError maps err to its HTTP status and writes the {"error": {...}} envelope.
// Server side failures are logged with the entity ids the error carries.
func respondError(c *gin.Context, err error) {
	status, apiErr := apierrors.FromError(err)
	if status >= http.StatusInternalServerError {
		logger.ErrorCtx(c.Request.Context(), err,
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", status),
		)
	}
	c.JSON(status, apierrors.Response{Error: apiErr})
}

// respondBadRequest sends a 400 Bad Request response
func respondBadRequest(c *gin.Context, message string, details ...string) {
	c.JSON(http.StatusBadRequest, apierrors.Response{Error: apierrors.NewBadRequestError(message, details...)})
}

// respondValidationError sends a 400 Bad Request with validation error
func respondValidationError(c *gin.Context, details string) {
	c.JSON(http.StatusBadRequest, apierrors.Response{Error: apierrors.NewValidationError(details)})
}
