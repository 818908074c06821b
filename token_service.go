package auth

import (
	"time"

	"github.com/MicahParks/keyfunc/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/goliatone/go-errors"
)

// TokenService signs and verifies compact ES256 tokens. It performs no
// network or storage access; everything is in-memory cryptography.
type TokenService interface {
	Issue(partial PartialClaims, ttl string) (string, error)
	SignClaims(claims *JWTClaims) (string, error)
	Validate(tokenString string) (AuthClaims, error)
}

// PartialClaims are the caller supplied claims. Issuer, audience, iat, nbf,
// and exp are enforced by the engine, never by callers.
type PartialClaims struct {
	Subject      string
	Email        string
	Name         string
	SessionToken string
}

// TokenServiceImpl implements the TokenService interface
type TokenServiceImpl struct {
	keys     *KeyPair
	issuer   string
	audience jwt.ClaimStrings
	logger   Logger
	keyFunc  jwt.Keyfunc
	timeFunc func() time.Time
}

// TokenServiceOption mutates the service during construction.
type TokenServiceOption func(*TokenServiceImpl)

// WithTimeFunc overrides the clock used for issuing and validating tokens.
func WithTimeFunc(fn func() time.Time) TokenServiceOption {
	return func(ts *TokenServiceImpl) {
		if fn != nil {
			ts.timeFunc = fn
		}
	}
}

// NewTokenService creates a new TokenService instance bound to the process
// key pair. The verification side goes through a keyfunc built from the
// public JWK set, so it can only ever see the public projection.
func NewTokenService(keys *KeyPair, issuer string, audience jwt.ClaimStrings, logger Logger, opts ...TokenServiceOption) TokenService {
	if logger == nil {
		logger = defLogger{}
	}

	ts := &TokenServiceImpl{
		keys:     keys,
		issuer:   issuer,
		audience: audience,
		logger:   logger,
		timeFunc: time.Now,
	}

	for _, opt := range opts {
		if opt != nil {
			opt(ts)
		}
	}

	if set, err := keys.PublicJWKSet(); err == nil {
		if jwks, err := keyfunc.NewJSON(set); err == nil {
			ts.keyFunc = jwks.Keyfunc
		} else {
			logger.Error("TokenService could not build verification keyfunc", "error", err)
		}
	} else {
		logger.Error("TokenService could not serialize public JWK set", "error", err)
	}

	return ts
}

// Issue merges the caller claims with the engine enforced issuer, audience,
// and timestamps, then signs. exp is always iat + ttl; nbf equals iat.
func (ts *TokenServiceImpl) Issue(partial PartialClaims, ttl string) (string, error) {
	duration, err := ParseExpiry(ttl)
	if err != nil {
		return "", err
	}
	if duration <= 0 {
		return "", errors.New("token TTL must be positive", errors.CategoryBadInput)
	}

	now := ts.timeFunc()
	claims := &JWTClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    ts.issuer,
			Subject:   partial.Subject,
			Audience:  ts.audience,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(duration)),
		},
		UserEmail:      partial.Email,
		UserName:       partial.Name,
		SessionTokenID: partial.SessionToken,
	}

	return ts.SignClaims(claims)
}

// SignClaims signs arbitrary JWT claims using the configured private key.
func (ts *TokenServiceImpl) SignClaims(claims *JWTClaims) (string, error) {
	if claims == nil {
		return "", errors.New("claims must not be nil", errors.CategoryInternal)
	}

	token := jwt.NewWithClaims(jwt.SigningMethodES256, claims)
	token.Header["kid"] = ts.keys.KID()

	signedString, err := token.SignedString(ts.keys.PrivateKey())
	if err != nil {
		return "", errors.Wrap(err, errors.CategoryInternal, "failed to sign JWT")
	}

	return signedString, nil
}

// Validate parses and verifies a token string. Every failure collapses to
// the same external outcome; the reason is tagged internally and logged.
func (ts *TokenServiceImpl) Validate(tokenString string) (AuthClaims, error) {
	if ts.keyFunc == nil {
		ts.logger.Error("TokenService validate has no verification keyfunc")
		return nil, invalidToken(TextCodeBadSignature)
	}

	parserOptions := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodES256.Alg()}),
		jwt.WithIssuedAt(),
	}
	if ts.issuer != "" {
		parserOptions = append(parserOptions, jwt.WithIssuer(ts.issuer))
	}
	if len(ts.audience) > 0 {
		parserOptions = append(parserOptions, jwt.WithAudience(ts.audience...))
	}
	if ts.timeFunc != nil {
		parserOptions = append(parserOptions, jwt.WithTimeFunc(ts.timeFunc))
	}

	token, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(t *jwt.Token) (any, error) {
		return ts.keyFunc(t)
	}, parserOptions...)

	if err != nil {
		reason := classifyTokenError(err)
		ts.logger.Error("TokenService validate rejected token", "reason", reason, "error", err)
		return nil, invalidToken(reason)
	}

	if claims, ok := token.Claims.(*JWTClaims); ok && token.Valid {
		return claims, nil
	}

	ts.logger.Error("TokenService validate could not decode claims")
	return nil, invalidToken(TextCodeTokenMalformed)
}

// classifyTokenError maps parser failures onto internal reason codes. The
// mapping exists for operability only; callers always get the uniform
// invalid outcome.
func classifyTokenError(err error) string {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return TextCodeTokenExpired
	case errors.Is(err, jwt.ErrTokenMalformed):
		return TextCodeTokenMalformed
	case errors.Is(err, jwt.ErrTokenInvalidAudience):
		return TextCodeAudienceMismatch
	case errors.Is(err, jwt.ErrTokenInvalidIssuer):
		return TextCodeIssuerMismatch
	case errors.Is(err, jwt.ErrTokenNotValidYet), errors.Is(err, jwt.ErrTokenUsedBeforeIssued):
		return TextCodeTokenNotYetValid
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return TextCodeBadSignature
	case errors.Is(err, jwt.ErrTokenUnverifiable):
		return TextCodeAlgMismatch
	default:
		return TextCodeTokenInvalid
	}
}
