package auth

import (
	"github.com/caarlos0/env/v11"
	"github.com/goliatone/go-errors"
)

// EnvConfig is the immutable process configuration, parsed once at startup.
// The signing key and provider credentials have no usable defaults; the
// only compiled-in secret in this module is the flagged fallback JWK in
// keys.go.
type EnvConfig struct {
	SigningKeyJSON string `env:"AUTH_SIGNING_KEY"`
	Issuer         string `env:"JWT_ISSUER" envDefault:"devrel labs"`
	Audience       string `env:"JWT_AUDIENCE" envDefault:"audience"`
	TokenTTL       string `env:"AUTH_TOKEN_TTL" envDefault:"7d"`
	SessionTTL     string `env:"AUTH_SESSION_TTL" envDefault:"24h"`

	// Consumed by the provider negotiation layer, carried here so the whole
	// process reads its environment in one place.
	GithubClientID     string `env:"GITHUB_ID"`
	GithubClientSecret string `env:"GITHUB_SECRET"`
}

var _ Config = (*EnvConfig)(nil)

// LoadConfig reads configuration from the environment.
func LoadConfig() (*EnvConfig, error) {
	cfg := &EnvConfig{}
	if err := env.Parse(cfg); err != nil {
		return nil, errors.Wrap(err, errors.CategoryBadInput, "failed to parse environment")
	}
	return cfg, nil
}

func (c *EnvConfig) GetSigningKeyJSON() string {
	return c.SigningKeyJSON
}

func (c *EnvConfig) GetIssuer() string {
	return c.Issuer
}

func (c *EnvConfig) GetAudience() []string {
	if c.Audience == "" {
		return nil
	}
	return []string{c.Audience}
}

func (c *EnvConfig) GetTokenTTL() string {
	return c.TokenTTL
}

func (c *EnvConfig) GetSessionTTL() string {
	return c.SessionTTL
}
