package models

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Admin is the single back-office identity.
type Admin struct {
	ID           string    `db:"id" json:"id"`
	Username     string    `db:"username" json:"username"`
	PasswordHash string    `db:"password_hash" json:"-"`
	CreatedAt    time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt    time.Time `db:"updated_at" json:"updatedAt"`
}

// LoginRequest holds admin credentials.
type LoginRequest struct {
	Username string `json:"username" validate:"required,max=100"`
	Password string `json:"password" validate:"required,max=200"`
}

// LoginResult is returned by a successful login; Token goes into the cookie only.
type LoginResult struct {
	Token     string
	ExpiresAt time.Time
	Admin     AdminIdentity
}

// LoginResponse is the body of a successful login.
type LoginResponse struct {
	Success  bool   `json:"success"`
	Username string `json:"username"`
}

// AdminIdentity is the identity carried by a session.
type AdminIdentity struct {
	AdminID  string `json:"adminId"`
	Username string `json:"username"`
}

// SessionResponse answers "who am I".
type SessionResponse struct {
	Authenticated bool           `json:"authenticated"`
	User          *AdminIdentity `json:"user,omitempty"`
}

// SessionClaims is the JWT payload of an admin session.
type SessionClaims struct {
	AdminID  string `json:"adminId"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// Identity projects the claims into the public identity.
func (c *SessionClaims) Identity() AdminIdentity {
	return AdminIdentity{AdminID: c.AdminID, Username: c.Username}
}
