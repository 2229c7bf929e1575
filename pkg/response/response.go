package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	appErrors "github.com/sharinglove/sharinglove-api/pkg/errors"
)

// LoggerKey is the gin context key under which the request logger is stored.
const LoggerKey = "logger"

// ErrorBody is the wire shape of every failed request.
type ErrorBody struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// Success is returned by operations that have no resource to render.
type Success struct {
	Success bool `json:"success"`
}

// JSON sends a success response.
func JSON(c *gin.Context, status int, data interface{}) {
	c.Header("Cache-Control", "no-store")
	c.Header("Pragma", "no-cache")
	c.JSON(status, data)
}

// OK responds with HTTP 200.
func OK(c *gin.Context, data interface{}) {
	JSON(c, http.StatusOK, data)
}

// Created responds with HTTP 201 Created.
func Created(c *gin.Context, data interface{}) {
	JSON(c, http.StatusCreated, data)
}

// Error sends an error response converting the error to the common structure.
// Server-side failures are logged with their cause; clients only see the message.
func Error(c *gin.Context, err error) {
	appErr := appErrors.FromError(err)
	if appErr.Status >= http.StatusInternalServerError {
		if l, ok := c.Get(LoggerKey); ok {
			if zl, ok := l.(*zap.Logger); ok {
				zl.Error("request failed", zap.String("path", c.FullPath()), zap.String("code", appErr.Code), zap.Error(appErr.Err))
			}
		}
	}
	c.Header("Cache-Control", "no-store")
	c.Header("Pragma", "no-cache")
	c.AbortWithStatusJSON(appErr.Status, ErrorBody{Error: appErr.Message, Code: appErr.Code})
}
