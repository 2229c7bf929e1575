package router

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/sharinglove/sharinglove-api/internal/handler"
	"github.com/sharinglove/sharinglove-api/internal/models"
	appErrors "github.com/sharinglove/sharinglove-api/pkg/errors"
	"github.com/sharinglove/sharinglove-api/pkg/middleware/ratelimit"
)

type rejectAll struct{}

func (rejectAll) VerifyToken(string) (*models.SessionClaims, bool) { return nil, false }

type failingLogin struct{}

func (failingLogin) Login(context.Context, models.LoginRequest) (*models.LoginResult, error) {
	return nil, appErrors.ErrInvalidCredentials
}

func (failingLogin) SessionTTL() time.Duration { return time.Hour }

func newTestEngine(checks map[string]handler.ReadinessCheck) *gin.Engine {
	gin.SetMode(gin.TestMode)
	return New(Options{
		APIPrefix:    "/api",
		CookieName:   "admin-token",
		Verifier:     rejectAll{},
		LoginLimiter: ratelimit.New(1),
		Auth:         handler.NewAuthHandler(failingLogin{}, handler.CookieConfig{}),
		Posts:        handler.NewPostHandler(nil),
		Uploads:      handler.NewUploadHandler(nil, 0),
		Exports:      handler.NewExportHandler(nil),
		Health:       handler.NewMetricsHandler(nil, checks),
	})
}

func serve(r *gin.Engine, method, path string, body []byte) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestMutatingRoutesRequireSession(t *testing.T) {
	r := newTestEngine(nil)

	for _, tc := range []struct{ method, path string }{
		{http.MethodPost, "/api/posts"},
		{http.MethodPut, "/api/posts/p1"},
		{http.MethodDelete, "/api/posts/p1"},
		{http.MethodPost, "/api/upload"},
		{http.MethodGet, "/api/admin/posts/export?boardType=NOTICE"},
	} {
		rec := serve(r, tc.method, tc.path, []byte(`{}`))
		assert.Equal(t, http.StatusUnauthorized, rec.Code, tc.path)
		assert.JSONEq(t, `{"error":"unauthorized","code":"UNAUTHORIZED"}`, rec.Body.String(), tc.path)
	}
}

func TestMeWithoutSession(t *testing.T) {
	rec := serve(newTestEngine(nil), http.MethodGet, "/api/auth/me", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"authenticated":false}`, rec.Body.String())
}

func TestLoginIsRateLimited(t *testing.T) {
	r := newTestEngine(nil)
	body := []byte(`{"username":"admin","password":"nope"}`)

	assert.Equal(t, http.StatusUnauthorized, serve(r, http.MethodPost, "/api/auth/login", body).Code)
	assert.Equal(t, http.StatusTooManyRequests, serve(r, http.MethodPost, "/api/auth/login", body).Code)
}

func TestHealthAndReadiness(t *testing.T) {
	r := newTestEngine(map[string]handler.ReadinessCheck{
		"database": func(context.Context) error { return nil },
		"cache":    func(context.Context) error { return errors.New("down") },
	})

	assert.Equal(t, http.StatusOK, serve(r, http.MethodGet, "/health", nil).Code)

	rec := serve(r, http.MethodGet, "/ready", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.JSONEq(t, `{"status":"unavailable","checks":{"database":"up","cache":"down"}}`, rec.Body.String())
}
