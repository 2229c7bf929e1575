package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/sharinglove/sharinglove-api/internal/models"
	appErrors "github.com/sharinglove/sharinglove-api/pkg/errors"
	"github.com/sharinglove/sharinglove-api/pkg/response"
)

// ContextAdminKey is the gin context key storing the session claims.
const ContextAdminKey = "currentAdmin"

// TokenVerifier validates a session token.
type TokenVerifier interface {
	VerifyToken(token string) (*models.SessionClaims, bool)
}

// RequireAuth rejects requests without a valid admin session.
func RequireAuth(verifier TokenVerifier, cookieName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := authenticate(c, verifier, cookieName)
		if !ok {
			response.Error(c, appErrors.ErrUnauthorized)
			return
		}
		c.Set(ContextAdminKey, claims)
		c.Next()
	}
}

// OptionalAuth attaches the session claims when present but does not block.
func OptionalAuth(verifier TokenVerifier, cookieName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if claims, ok := authenticate(c, verifier, cookieName); ok {
			c.Set(ContextAdminKey, claims)
		}
		c.Next()
	}
}

// authenticate tries the session cookie first and then a Bearer header, so a
// stale cookie does not shadow a valid header.
func authenticate(c *gin.Context, verifier TokenVerifier, cookieName string) (*models.SessionClaims, bool) {
	for _, token := range sessionTokens(c, cookieName) {
		if claims, ok := verifier.VerifyToken(token); ok {
			return claims, true
		}
	}
	return nil, false
}

// sessionTokens lists the candidate tokens in the order they are tried.
func sessionTokens(c *gin.Context, cookieName string) []string {
	var tokens []string
	if token, err := c.Cookie(cookieName); err == nil && token != "" {
		tokens = append(tokens, token)
	}
	parts := strings.SplitN(c.GetHeader("Authorization"), " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
		if token := strings.TrimSpace(parts[1]); token != "" {
			tokens = append(tokens, token)
		}
	}
	return tokens
}

// Claims returns the session claims set by RequireAuth or OptionalAuth.
func Claims(c *gin.Context) (*models.SessionClaims, bool) {
	value, exists := c.Get(ContextAdminKey)
	if !exists {
		return nil, false
	}
	claims, ok := value.(*models.SessionClaims)
	return claims, ok && claims != nil
}
