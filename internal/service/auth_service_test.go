package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/sharinglove/sharinglove-api/internal/models"
	appErrors "github.com/sharinglove/sharinglove-api/pkg/errors"
)

type fakeAdminRepo struct {
	admins    map[string]*models.Admin
	findErr   error
	upsertErr error
}

func newFakeAdminRepo() *fakeAdminRepo {
	return &fakeAdminRepo{admins: map[string]*models.Admin{}}
}

func (f *fakeAdminRepo) FindByUsername(_ context.Context, username string) (*models.Admin, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	admin, ok := f.admins[username]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copied := *admin
	return &copied, nil
}

func (f *fakeAdminRepo) Upsert(_ context.Context, admin *models.Admin) error {
	if f.upsertErr != nil {
		return f.upsertErr
	}
	if existing, ok := f.admins[admin.Username]; ok {
		admin.ID = existing.ID
	} else if admin.ID == "" {
		admin.ID = "admin-" + admin.Username
	}
	copied := *admin
	f.admins[admin.Username] = &copied
	return nil
}

func newTestAuthService(t *testing.T, repo *fakeAdminRepo) *AuthService {
	t.Helper()
	svc, err := NewAuthService(repo, nil, nil, nil, AuthConfig{
		Secret:     "test-secret",
		Expiry:     7 * 24 * time.Hour,
		Issuer:     "sharinglove-api",
		BcryptCost: bcrypt.MinCost,
	})
	require.NoError(t, err)
	return svc
}

func seededAuthService(t *testing.T) *AuthService {
	t.Helper()
	repo := newFakeAdminRepo()
	svc := newTestAuthService(t, repo)
	_, err := svc.SeedAdmin(context.Background(), "admin", "admin1234")
	require.NoError(t, err)
	return svc
}

func TestAuthServiceLoginWithSeedCredentials(t *testing.T) {
	svc := seededAuthService(t)

	result, err := svc.Login(context.Background(), models.LoginRequest{Username: "admin", Password: "admin1234"})
	require.NoError(t, err)
	assert.Equal(t, "admin", result.Admin.Username)
	assert.NotEmpty(t, result.Token)

	claims, ok := svc.VerifyToken(result.Token)
	require.True(t, ok)
	assert.Equal(t, "admin-admin", claims.AdminID)
	assert.Equal(t, "admin", claims.Username)
	assert.WithinDuration(t, time.Now().Add(7*24*time.Hour), claims.ExpiresAt.Time, time.Minute)
}

func TestAuthServiceLoginRejectsWrongPasswordAndUnknownUser(t *testing.T) {
	svc := seededAuthService(t)

	_, wrongPassword := svc.Login(context.Background(), models.LoginRequest{Username: "admin", Password: "wrong"})
	_, unknownUser := svc.Login(context.Background(), models.LoginRequest{Username: "nobody", Password: "admin1234"})

	for _, err := range []error{wrongPassword, unknownUser} {
		require.Error(t, err)
		appErr := appErrors.FromError(err)
		assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErr.Code)
		assert.Equal(t, "invalid username or password", appErr.Message)
	}
}

func TestAuthServiceLoginValidation(t *testing.T) {
	svc := seededAuthService(t)

	_, err := svc.Login(context.Background(), models.LoginRequest{Username: "   ", Password: "x"})
	assert.ErrorIs(t, err, appErrors.ErrValidation)
}

func TestAuthServiceLoginRepositoryFailure(t *testing.T) {
	repo := newFakeAdminRepo()
	repo.findErr = errors.New("db down")
	svc := newTestAuthService(t, repo)

	_, err := svc.Login(context.Background(), models.LoginRequest{Username: "admin", Password: "admin1234"})
	assert.Equal(t, appErrors.ErrInternal.Code, appErrors.FromError(err).Code)
}

func TestAuthServiceTokenExpiresAfterSevenDays(t *testing.T) {
	svc := seededAuthService(t)
	issued := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return issued }

	result, err := svc.Login(context.Background(), models.LoginRequest{Username: "admin", Password: "admin1234"})
	require.NoError(t, err)

	svc.now = func() time.Time { return issued.Add(7*24*time.Hour - time.Second) }
	_, ok := svc.VerifyToken(result.Token)
	assert.True(t, ok)

	svc.now = func() time.Time { return issued.Add(7*24*time.Hour + time.Second) }
	_, ok = svc.VerifyToken(result.Token)
	assert.False(t, ok)
}

func TestAuthServiceVerifyTokenRejectsTampering(t *testing.T) {
	svc := seededAuthService(t)
	result, err := svc.Login(context.Background(), models.LoginRequest{Username: "admin", Password: "admin1234"})
	require.NoError(t, err)

	otherKey, err := jwt.NewWithClaims(jwt.SigningMethodHS256, &models.SessionClaims{
		AdminID:  "admin-admin",
		Username: "admin",
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "sharinglove-api",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}).SignedString([]byte("another-secret"))
	require.NoError(t, err)

	noneAlg, err := jwt.NewWithClaims(jwt.SigningMethodNone, &models.SessionClaims{AdminID: "admin-admin"}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	parts := strings.Split(result.Token, ".")
	truncated := parts[0] + "." + parts[1]

	for _, token := range []string{"", "garbage", "a.b.c", truncated, otherKey, noneAlg, result.Token + "x"} {
		assert.NotPanics(t, func() {
			_, ok := svc.VerifyToken(token)
			assert.False(t, ok, token)
		})
	}
}

func TestAuthServiceSeedAdminResetsPassword(t *testing.T) {
	repo := newFakeAdminRepo()
	svc := newTestAuthService(t, repo)

	first, err := svc.SeedAdmin(context.Background(), "admin", "first-pass")
	require.NoError(t, err)
	second, err := svc.SeedAdmin(context.Background(), "admin", "second-pass")
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	_, err = svc.Login(context.Background(), models.LoginRequest{Username: "admin", Password: "first-pass"})
	assert.ErrorIs(t, err, appErrors.ErrInvalidCredentials)
	_, err = svc.Login(context.Background(), models.LoginRequest{Username: "admin", Password: "second-pass"})
	assert.NoError(t, err)

	_, err = svc.SeedAdmin(context.Background(), "", "x")
	assert.ErrorIs(t, err, appErrors.ErrValidation)
}
