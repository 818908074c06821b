package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// AuthClaims is the verified payload of a signed token.
type AuthClaims interface {
	Subject() string
	UserID() string
	Email() string
	Name() string
	SessionToken() string
	Issuer() string
	Audience() []string
	Expires() time.Time
	IssuedAt() time.Time
}

// JWTClaims is the concrete implementation of AuthClaims. The session token
// claim ties the self-contained token back to the server-side session row.
type JWTClaims struct {
	jwt.RegisteredClaims
	UserEmail      string `json:"email,omitempty"`
	UserName       string `json:"name,omitempty"`
	SessionTokenID string `json:"sessionToken,omitempty"`
}

// Verify interface compliance
var _ AuthClaims = (*JWTClaims)(nil)

// Subject returns the subject claim
func (c *JWTClaims) Subject() string {
	return c.RegisteredClaims.Subject
}

// UserID returns the account id carried in the subject claim.
func (c *JWTClaims) UserID() string {
	return c.RegisteredClaims.Subject
}

// Email returns the email claim
func (c *JWTClaims) Email() string {
	return c.UserEmail
}

// Name returns the display name claim
func (c *JWTClaims) Name() string {
	return c.UserName
}

// SessionToken returns the custom session token claim
func (c *JWTClaims) SessionToken() string {
	return c.SessionTokenID
}

// Issuer returns the issuer claim
func (c *JWTClaims) Issuer() string {
	return c.RegisteredClaims.Issuer
}

// Audience returns the audience claim as a plain slice
func (c *JWTClaims) Audience() []string {
	if c.RegisteredClaims.Audience == nil {
		return nil
	}
	out := make([]string, len(c.RegisteredClaims.Audience))
	copy(out, c.RegisteredClaims.Audience)
	return out
}

// Expires returns the expiration time
func (c *JWTClaims) Expires() time.Time {
	if c.RegisteredClaims.ExpiresAt != nil {
		return c.RegisteredClaims.ExpiresAt.Time
	}
	return time.Time{}
}

// IssuedAt returns the issued at time
func (c *JWTClaims) IssuedAt() time.Time {
	if c.RegisteredClaims.IssuedAt != nil {
		return c.RegisteredClaims.IssuedAt.Time
	}
	return time.Time{}
}
