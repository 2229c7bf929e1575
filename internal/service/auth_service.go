package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/sharinglove/sharinglove-api/internal/models"
	appErrors "github.com/sharinglove/sharinglove-api/pkg/errors"
)

type adminRepository interface {
	FindByUsername(ctx context.Context, username string) (*models.Admin, error)
	Upsert(ctx context.Context, admin *models.Admin) error
}

// AuthConfig defines configuration for admin sessions.
type AuthConfig struct {
	Secret     string
	Expiry     time.Duration
	Issuer     string
	BcryptCost int
}

// AuthService authenticates the admin and issues signed session tokens.
type AuthService struct {
	repo      adminRepository
	validator *validator.Validate
	logger    *zap.Logger
	metrics   *MetricsService
	config    AuthConfig
	now       func() time.Time

	// decoyHash is compared against when the username is unknown so that a
	// failed lookup costs the same as a wrong password.
	decoyHash []byte
}

// NewAuthService constructs an AuthService instance.
func NewAuthService(repo adminRepository, validate *validator.Validate, logger *zap.Logger, metrics *MetricsService, config AuthConfig) (*AuthService, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	if config.Secret == "" {
		return nil, errors.New("auth: signing secret is required")
	}
	if config.Expiry <= 0 {
		config.Expiry = 7 * 24 * time.Hour
	}
	if config.BcryptCost == 0 {
		config.BcryptCost = bcrypt.DefaultCost
	}
	decoy, err := bcrypt.GenerateFromPassword([]byte("decoy-password"), config.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("auth: prepare decoy hash: %w", err)
	}
	return &AuthService{
		repo:      repo,
		validator: validate,
		logger:    logger,
		metrics:   metrics,
		config:    config,
		now:       time.Now,
		decoyHash: decoy,
	}, nil
}

// Login checks the credentials and issues a session token. Unknown usernames
// and wrong passwords produce the same error.
func (s *AuthService) Login(ctx context.Context, req models.LoginRequest) (*models.LoginResult, error) {
	req.Username = strings.TrimSpace(req.Username)
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "username and password are required")
	}

	admin, err := s.repo.FindByUsername(ctx, req.Username)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch admin")
		}
		_ = bcrypt.CompareHashAndPassword(s.decoyHash, []byte(req.Password))
		s.metrics.RecordLogin("rejected")
		return nil, appErrors.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(req.Password)); err != nil {
		s.metrics.RecordLogin("rejected")
		s.logger.Info("admin login rejected", zap.String("username", admin.Username))
		return nil, appErrors.ErrInvalidCredentials
	}

	identity := models.AdminIdentity{AdminID: admin.ID, Username: admin.Username}
	token, expiresAt, err := s.issueToken(identity)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create session token")
	}

	s.metrics.RecordLogin("accepted")
	s.logger.Info("admin logged in", zap.String("admin_id", admin.ID))
	return &models.LoginResult{Token: token, ExpiresAt: expiresAt, Admin: identity}, nil
}

// VerifyToken checks signature, algorithm, issuer and expiry. Any malformed or
// expired token yields ok == false.
func (s *AuthService) VerifyToken(tokenString string) (*models.SessionClaims, bool) {
	if tokenString == "" {
		return nil, false
	}
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
		jwt.WithExpirationRequired(),
	}
	if s.config.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.config.Issuer))
	}

	parsed := &models.SessionClaims{}
	token, err := jwt.ParseWithClaims(tokenString, parsed, func(*jwt.Token) (interface{}, error) {
		return []byte(s.config.Secret), nil
	}, opts...)
	if err != nil || !token.Valid || parsed.AdminID == "" {
		return nil, false
	}
	return parsed, true
}

// SessionTTL is the lifetime of an issued session.
func (s *AuthService) SessionTTL() time.Duration {
	return s.config.Expiry
}

// SeedAdmin creates the admin or resets its password.
func (s *AuthService) SeedAdmin(ctx context.Context, username, password string) (*models.Admin, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "seed username and password are required")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.config.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash seed password: %w", err)
	}
	admin := &models.Admin{Username: username, PasswordHash: string(hash)}
	if err := s.repo.Upsert(ctx, admin); err != nil {
		return nil, err
	}
	return admin, nil
}

func (s *AuthService) issueToken(identity models.AdminIdentity) (string, time.Time, error) {
	issuedAt := s.now().UTC()
	expiresAt := issuedAt.Add(s.config.Expiry)
	claims := &models.SessionClaims{
		AdminID:  identity.AdminID,
		Username: identity.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.config.Issuer,
			Subject:   identity.AdminID,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			NotBefore: jwt.NewNumericDate(issuedAt),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.config.Secret))
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}
