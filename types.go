package auth

import (
	"fmt"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/google/uuid"
)

type Logger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Error(format string, args ...any)
}

// Session holds the externally visible attributes of an auth session,
// rebuilt from verified token claims.
type Session interface {
	GetUserID() string
	GetUserUUID() (uuid.UUID, error)
	GetSessionToken() string
	GetAudience() []string
	GetIssuer() string
	GetIssuedAt() *time.Time
	GetData() map[string]any
}

// ExternalIdentity is the already resolved identity handed to us by the
// provider negotiation layer. This package never talks to the provider;
// it only persists and tokenizes what the negotiation produced.
type ExternalIdentity struct {
	Name              string `json:"name,omitempty"`
	Email             string `json:"email,omitempty"`
	Provider          string `json:"provider"`
	ProviderAccountID string `json:"provider_account_id"`
}

// Validate checks the minimum shape we need to key an account.
func (e ExternalIdentity) Validate() error {
	return validation.ValidateStruct(&e,
		validation.Field(&e.Provider, validation.Required),
		validation.Field(&e.ProviderAccountID, validation.Required),
		validation.Field(&e.Email, is.Email),
	)
}

// Config holds auth options
type Config interface {
	GetSigningKeyJSON() string
	GetIssuer() string
	GetAudience() []string
	GetTokenTTL() string
	GetSessionTTL() string
}

type defLogger struct{}

func (d defLogger) Error(format string, args ...any) {
	fmt.Printf("[ERR] AUTH "+newline(format), args...)
}

func (d defLogger) Info(format string, args ...any) {
	fmt.Printf("[INF] AUTH "+newline(format), args...)
}

func (d defLogger) Debug(format string, args ...any) {
	fmt.Printf("[DBG] AUTH "+newline(format), args...)
}

func newline(s string) string {
	if len(s) > 0 && s[len(s)-1] != '\n' {
		s += "\n"
	}
	return s
}
