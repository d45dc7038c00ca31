package session

import (
	"errors"
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"

	"github.com/kbukum/clinic/auth"
)

// ErrSessionExists is returned by Store.Create when the key is taken.
var ErrSessionExists = errors.New("session: key already exists")

// TokenType is the scheme clients send the token with.
const TokenType = "bearer"

// Record is the server-side half of a credential.
type Record struct {
	PrincipalID int64     `json:"principal_id"`
	Role        auth.Role `json:"role"`
	IssuedAt    time.Time `json:"issued_at"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// Ref returns the principal the record is bound to.
func (r Record) Ref() auth.Ref {
	return auth.Ref{Role: r.Role, ID: r.PrincipalID}
}

// Credential is what Issue hands back to the caller.
type Credential struct {
	Token     string    `json:"access_token"`
	TokenType string    `json:"token_type"`
	SessionID string    `json:"-"`
	Principal auth.Ref  `json:"-"`
	IssuedAt  time.Time `json:"-"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Claims is the token envelope. Subject is the principal ref ("role:id")
// and ID the session id.
type Claims struct {
	gojwt.RegisteredClaims
}
