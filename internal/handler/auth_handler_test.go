package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sharinglove/sharinglove-api/internal/middleware"
	"github.com/sharinglove/sharinglove-api/internal/models"
	appErrors "github.com/sharinglove/sharinglove-api/pkg/errors"
)

type authServiceMock struct{}

func (authServiceMock) Login(_ context.Context, req models.LoginRequest) (*models.LoginResult, error) {
	if req.Username != "admin" || req.Password != "admin1234" {
		return nil, appErrors.ErrInvalidCredentials
	}
	return &models.LoginResult{Token: "signed-token", Admin: models.AdminIdentity{AdminID: "a1", Username: "admin"}}, nil
}

func (authServiceMock) SessionTTL() time.Duration { return 7 * 24 * time.Hour }

func postJSON(t *testing.T, path string, payload interface{}) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	body, err := json.Marshal(payload)
	require.NoError(t, err)
	req, _ := http.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	return c, w
}

func TestAuthHandlerLoginSetsSessionCookie(t *testing.T) {
	handler := NewAuthHandler(authServiceMock{}, CookieConfig{Secure: true})
	c, w := postJSON(t, "/auth/login", models.LoginRequest{Username: "admin", Password: "admin1234"})

	handler.Login(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"success":true,"username":"admin"}`, w.Body.String())

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	cookie := cookies[0]
	assert.Equal(t, "admin-token", cookie.Name)
	assert.Equal(t, "signed-token", cookie.Value)
	assert.True(t, cookie.HttpOnly)
	assert.True(t, cookie.Secure)
	assert.Equal(t, http.SameSiteLaxMode, cookie.SameSite)
	assert.Equal(t, 7*24*60*60, cookie.MaxAge)
}

func TestAuthHandlerLoginRejectsBadCredentials(t *testing.T) {
	handler := NewAuthHandler(authServiceMock{}, CookieConfig{})
	c, w := postJSON(t, "/auth/login", models.LoginRequest{Username: "admin", Password: "wrong"})

	handler.Login(c)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.JSONEq(t, `{"error":"invalid username or password","code":"INVALID_CREDENTIALS"}`, w.Body.String())
	assert.Empty(t, w.Result().Cookies())
}

func TestAuthHandlerLogoutClearsCookie(t *testing.T) {
	handler := NewAuthHandler(authServiceMock{}, CookieConfig{Name: "admin-token"})
	c, w := postJSON(t, "/auth/logout", struct{}{})

	handler.Logout(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"success":true}`, w.Body.String())
	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Empty(t, cookies[0].Value)
	assert.Less(t, cookies[0].MaxAge, 0)
}

func TestAuthHandlerMe(t *testing.T) {
	handler := NewAuthHandler(authServiceMock{}, CookieConfig{})

	c, w := postJSON(t, "/auth/me", struct{}{})
	handler.Me(c)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.JSONEq(t, `{"authenticated":false}`, w.Body.String())

	c, w = postJSON(t, "/auth/me", struct{}{})
	c.Set(middleware.ContextAdminKey, &models.SessionClaims{AdminID: "a1", Username: "admin"})
	handler.Me(c)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"authenticated":true,"user":{"adminId":"a1","username":"admin"}}`, w.Body.String())
}
