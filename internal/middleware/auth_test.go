package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sharinglove/sharinglove-api/internal/models"
	"github.com/sharinglove/sharinglove-api/pkg/response"
)

type stubVerifier map[string]*models.SessionClaims

func (s stubVerifier) VerifyToken(token string) (*models.SessionClaims, bool) {
	claims, ok := s[token]
	return claims, ok
}

func newAuthRouter(mw gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/private", mw, func(c *gin.Context) {
		claims, ok := Claims(c)
		if !ok {
			c.JSON(http.StatusOK, gin.H{"admin": ""})
			return
		}
		c.JSON(http.StatusOK, gin.H{"admin": claims.Username})
	})
	return r
}

func TestRequireAuth(t *testing.T) {
	verifier := stubVerifier{"good": {AdminID: "a1", Username: "admin"}}
	router := newAuthRouter(RequireAuth(verifier, "admin-token"))

	cases := []struct {
		name   string
		setup  func(*http.Request)
		status int
	}{
		{name: "no credentials", setup: func(*http.Request) {}, status: http.StatusUnauthorized},
		{name: "cookie", setup: func(r *http.Request) { r.AddCookie(&http.Cookie{Name: "admin-token", Value: "good"}) }, status: http.StatusOK},
		{name: "bearer header", setup: func(r *http.Request) { r.Header.Set("Authorization", "bearer good") }, status: http.StatusOK},
		{name: "bad cookie", setup: func(r *http.Request) { r.AddCookie(&http.Cookie{Name: "admin-token", Value: "forged"}) }, status: http.StatusUnauthorized},
		{name: "stale cookie with valid bearer", setup: func(r *http.Request) {
			r.AddCookie(&http.Cookie{Name: "admin-token", Value: "expired"})
			r.Header.Set("Authorization", "Bearer good")
		}, status: http.StatusOK},
		{name: "stale cookie with bad bearer", setup: func(r *http.Request) {
			r.AddCookie(&http.Cookie{Name: "admin-token", Value: "expired"})
			r.Header.Set("Authorization", "Bearer forged")
		}, status: http.StatusUnauthorized},
		{name: "wrong scheme", setup: func(r *http.Request) { r.Header.Set("Authorization", "Basic good") }, status: http.StatusUnauthorized},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/private", nil)
			tc.setup(req)
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)
			assert.Equal(t, tc.status, rec.Code)
			if tc.status == http.StatusUnauthorized {
				var body response.ErrorBody
				require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
				assert.Equal(t, "UNAUTHORIZED", body.Code)
			}
		})
	}
}

func TestOptionalAuthNeverBlocks(t *testing.T) {
	verifier := stubVerifier{"good": {AdminID: "a1", Username: "admin"}}
	router := newAuthRouter(OptionalAuth(verifier, "admin-token"))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/private", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"admin":""}`, rec.Body.String())

	req := httptest.NewRequest(http.MethodGet, "/private", nil)
	req.AddCookie(&http.Cookie{Name: "admin-token", Value: "good"})
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.JSONEq(t, `{"admin":"admin"}`, rec.Body.String())
}
