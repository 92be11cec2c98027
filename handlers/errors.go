package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// internalError logs the cause and answers with a generic message.
func internalError(c *gin.Context, log *zap.Logger, message string, err error) {
	log.Error(message, zap.Error(err), zap.String("path", c.FullPath()), zap.Int64("user_id", c.GetInt64("userID")))
	_ = c.Error(err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": message})
}
