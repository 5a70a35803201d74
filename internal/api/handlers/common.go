package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yoockh/videoinsight/internal/utils"
)

// writeError converts any failure into the {success:false, error} envelope
// every endpoint returns. The error is also attached to the gin context so
// the request logger records it.
func writeError(c *gin.Context, err error) {
	status := utils.HTTPStatus(err)
	_ = c.Error(err)

	var ae *utils.AppError
	if errors.As(err, &ae) {
		c.JSON(status, gin.H{
			"success": false,
			"error":   ae.Message,
		})
		return
	}

	c.JSON(status, gin.H{
		"success": false,
		"error":   http.StatusText(status),
	})
}
