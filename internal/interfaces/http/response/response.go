package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	domainerrors "inkpost.backend/internal/domain/errors"
	"inkpost.backend/pkg/logger"
	"inkpost.backend/pkg/utils"
)

// Success sends a success response
func Success(c *gin.Context, status int, data interface{}) {
	c.JSON(status, data)
}

// Message sends {"message": msg}
func Message(c *gin.Context, status int, msg string) {
	c.JSON(status, gin.H{"message": msg})
}

// Page sends a list with its pagination metadata
func Page(c *gin.Context, items interface{}, meta utils.PaginationMeta) {
	c.JSON(http.StatusOK, gin.H{
		"items": items,
		"meta":  meta,
	})
}

// Error sends an error response. Domain errors are mapped to their HTTP
// form; server errors are logged with their cause and never echoed.
func Error(c *gin.Context, err error) {
	appErr := domainerrors.FromDomain(err)
	if appErr.Status >= http.StatusInternalServerError {
		logger.Error(c.Request.Context(), "Request failed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Error(appErr.Err),
		)
	}

	c.JSON(appErr.Status, gin.H{
		"code":    appErr.Code,
		"message": appErr.Message,
	})
}

// ErrorWithError sends an error response with a specific status and message
func ErrorWithError(c *gin.Context, status int, code string, message string) {
	c.JSON(status, gin.H{
		"code":    code,
		"message": message,
	})
}
