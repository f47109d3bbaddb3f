package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/eion/technotes/internal/zerrors"
)

// statusFor maps an error kind to its HTTP status. NotFound is a client error
// (400) on this API, matching the listing and update contracts.
func statusFor(kind zerrors.Kind) int {
	switch kind {
	case zerrors.KindInvalidInput, zerrors.KindNotFound:
		return http.StatusBadRequest
	case zerrors.KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes {"message": ...}. Internal causes are logged, not returned.
func respondError(c *gin.Context, logger *zap.Logger, err error) {
	respondErrorWithStatus(c, logger, err, statusFor(zerrors.KindOf(err)))
}

func respondErrorWithStatus(c *gin.Context, logger *zap.Logger, err error, status int) {
	message := zerrors.MessageOf(err)
	if status >= http.StatusInternalServerError {
		logger.Error("Request failed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Error(err))
		message = "Internal server error"
	}
	c.JSON(status, gin.H{"message": message})
}
