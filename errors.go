package auth

import (
	"github.com/goliatone/go-errors"
)

const (
	// TextCodeTokenInvalid is the only failure code callers ever see for a
	// rejected token. The specific reason stays internal.
	TextCodeTokenInvalid = "auth_token_invalid"

	TextCodeTokenExpired      = "auth_token_expired"
	TextCodeTokenMalformed    = "auth_token_malformed"
	TextCodeBadSignature      = "auth_token_bad_signature"
	TextCodeAlgMismatch       = "auth_token_alg_mismatch"
	TextCodeAudienceMismatch  = "auth_token_audience_mismatch"
	TextCodeIssuerMismatch    = "auth_token_issuer_mismatch"
	TextCodeTokenNotYetValid  = "auth_token_not_yet_valid"
	TextCodeAccountConflict   = "auth_account_conflict"
	TextCodeAccountNotFound   = "auth_account_not_found"
	TextCodeSigningKeyDegrade = "auth_signing_key_default"
)

// ErrTokenInvalid is the uniform external outcome for any verification
// failure. The tagged reason travels in the wrapped error's text code and in
// logs, never to the caller.
var ErrTokenInvalid = errors.New("not authenticated", errors.CategoryAuth).
	WithTextCode(TextCodeTokenInvalid).
	WithCode(errors.CodeUnauthorized)

// ErrAccountConflict is returned when a create collides with the
// (provider, provider_account_id) or email unique keys.
var ErrAccountConflict = errors.New("account already exists", errors.CategoryConflict).
	WithTextCode(TextCodeAccountConflict).
	WithCode(errors.CodeConflict)

// ErrAccountNotFound is returned when a linkage target does not exist.
var ErrAccountNotFound = errors.New("account not found", errors.CategoryNotFound).
	WithTextCode(TextCodeAccountNotFound).
	WithCode(errors.CodeNotFound)

// invalidToken builds the uniform invalid error carrying an internal reason.
func invalidToken(reason string) *errors.Error {
	return errors.New("not authenticated", errors.CategoryAuth).
		WithTextCode(reason).
		WithCode(errors.CodeUnauthorized)
}

// IsTokenInvalid reports whether err is a verification failure.
func IsTokenInvalid(err error) bool {
	if err == nil {
		return false
	}
	var richErr *errors.Error
	if !errors.As(err, &richErr) {
		return false
	}
	return richErr.Category == errors.CategoryAuth
}

// TokenFailureReason exposes the tagged verification failure reason for
// logging and test assertions. Empty for non verification errors.
func TokenFailureReason(err error) string {
	if err == nil {
		return ""
	}
	var richErr *errors.Error
	if !errors.As(err, &richErr) {
		return ""
	}
	if richErr.Category != errors.CategoryAuth {
		return ""
	}
	return richErr.TextCode
}

// IsConflictError reports whether err is a unique key conflict.
func IsConflictError(err error) bool {
	if err == nil {
		return false
	}
	var richErr *errors.Error
	if !errors.As(err, &richErr) {
		return false
	}
	return richErr.Category == errors.CategoryConflict
}

// IsNotFoundError reports whether err marks an absent record.
func IsNotFoundError(err error) bool {
	return errors.IsNotFound(err)
}
