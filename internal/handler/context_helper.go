package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/sharinglove/sharinglove-api/internal/middleware"
)

// isAdmin reports whether OptionalAuth or RequireAuth attached a session.
func isAdmin(c *gin.Context) bool {
	_, ok := middleware.Claims(c)
	return ok
}
