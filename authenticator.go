package auth

import (
	"context"

	"github.com/golang-jwt/jwt/v5"
	"github.com/goliatone/go-errors"
)

// Authenticator is the session-aware glue over the stores and the token
// engine. On sign-in it opens a durable session and embeds its token in the
// signed claims; afterwards the session view is re-derived from verified
// claims alone, hitting storage only on explicit refresh or sign-out.
type Authenticator interface {
	SignIn(ctx context.Context, identity ExternalIdentity, userAgent, ip string) (string, error)
	SessionFromToken(token string) (Session, error)
	RefreshSession(ctx context.Context, token string) (Session, error)
	SignOut(ctx context.Context, token string) error
}

type Auther struct {
	repos        RepositoryManager
	tokenService TokenService
	tokenTTL     string
	logger       Logger
}

var _ Authenticator = (*Auther)(nil)

// NewAuthenticator returns a new Authenticator
func NewAuthenticator(repos RepositoryManager, keys *KeyPair, cfg Config) *Auther {
	tokenService := NewTokenService(
		keys,
		cfg.GetIssuer(),
		jwt.ClaimStrings(cfg.GetAudience()),
		defLogger{},
	)

	return &Auther{
		repos:        repos,
		tokenService: tokenService,
		tokenTTL:     cfg.GetTokenTTL(),
		logger:       defLogger{},
	}
}

func (s *Auther) WithLogger(logger Logger) *Auther {
	if logger != nil {
		s.logger = logger
	}
	return s
}

// WithTokenService overrides the token engine, mainly for tests that need
// a pinned clock.
func (s *Auther) WithTokenService(tokenService TokenService) *Auther {
	if tokenService != nil {
		s.tokenService = tokenService
	}
	return s
}

// TokenService returns the TokenService instance used by this Authenticator
func (s *Auther) TokenService() TokenService {
	return s.tokenService
}

// SignIn resolves or creates the account for a provider identity, opens a
// session, and mints a token whose claims carry the session token.
func (s *Auther) SignIn(ctx context.Context, identity ExternalIdentity, userAgent, ip string) (string, error) {
	if err := identity.Validate(); err != nil {
		return "", errors.Wrap(err, errors.CategoryBadInput, "invalid external identity")
	}

	account, err := s.resolveAccount(ctx, identity)
	if err != nil {
		s.logger.Error("SignIn could not resolve account", "provider", identity.Provider, "error", err)
		return "", err
	}

	session, err := s.repos.Sessions().Create(ctx, account.ID, userAgent, ip)
	if err != nil {
		s.logger.Error("SignIn could not open session", "account_id", account.ID, "error", err)
		return "", err
	}

	token, err := s.tokenService.Issue(PartialClaims{
		Subject:      account.ID.String(),
		Email:        account.Email,
		Name:         account.Name,
		SessionToken: session.SessionToken,
	}, s.tokenTTL)
	if err != nil {
		s.logger.Error("SignIn could not issue token", "account_id", account.ID, "error", err)
		return "", err
	}

	return token, nil
}

// resolveAccount finds the account for the provider pair, creating it on
// first sign-in. A create that loses a concurrent race falls back to the
// winner's row.
func (s *Auther) resolveAccount(ctx context.Context, identity ExternalIdentity) (*Account, error) {
	account, err := s.repos.Accounts().FindByProviderAccount(ctx, identity.Provider, identity.ProviderAccountID)
	if err != nil {
		return nil, err
	}
	if account != nil {
		return account, nil
	}

	account, err = s.repos.Accounts().CreateAccount(ctx, identity)
	if err == nil {
		return account, nil
	}

	if IsConflictError(err) {
		if winner, findErr := s.repos.Accounts().FindByProviderAccount(ctx, identity.Provider, identity.ProviderAccountID); findErr == nil && winner != nil {
			return winner, nil
		}
	}

	return nil, err
}

// SessionFromToken verifies the token and rebuilds the session view from
// its claims. No storage access happens here.
func (s *Auther) SessionFromToken(token string) (Session, error) {
	claims, err := s.tokenService.Validate(token)
	if err != nil {
		return nil, err
	}
	return sessionFromAuthClaims(claims)
}

// RefreshSession verifies the token and advances the stored session's
// activity timestamp. A session the store no longer knows is reported, not
// fatal; the claims-derived view is still returned.
func (s *Auther) RefreshSession(ctx context.Context, token string) (Session, error) {
	claims, err := s.tokenService.Validate(token)
	if err != nil {
		return nil, err
	}

	if sessionToken := claims.SessionToken(); sessionToken != "" {
		touched, err := s.repos.Sessions().TouchActivity(ctx, sessionToken)
		if err != nil {
			return nil, err
		}
		if touched == nil {
			s.logger.Info("RefreshSession has no stored session to touch", "user_id", claims.UserID())
		}
	}

	return sessionFromAuthClaims(claims)
}

// SignOut verifies the token and deletes its stored session. Deleting an
// already absent session is a no-op.
func (s *Auther) SignOut(ctx context.Context, token string) error {
	claims, err := s.tokenService.Validate(token)
	if err != nil {
		return err
	}

	sessionToken := claims.SessionToken()
	if sessionToken == "" {
		return nil
	}

	if _, err := s.repos.Sessions().Delete(ctx, sessionToken); err != nil {
		return err
	}

	return nil
}
