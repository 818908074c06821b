package auth_test

import (
	"errors"
	"testing"

	"github.com/devrel-labs/go-auth"
	goerrors "github.com/goliatone/go-errors"
	"github.com/stretchr/testify/assert"
)

func TestErrorPredicates(t *testing.T) {
	t.Run("token invalid", func(t *testing.T) {
		assert.True(t, auth.IsTokenInvalid(auth.ErrTokenInvalid))
		assert.False(t, auth.IsTokenInvalid(nil))
		assert.False(t, auth.IsTokenInvalid(errors.New("boom")))
		assert.False(t, auth.IsTokenInvalid(auth.ErrAccountConflict))
	})

	t.Run("conflict", func(t *testing.T) {
		assert.True(t, auth.IsConflictError(auth.ErrAccountConflict))
		assert.False(t, auth.IsConflictError(nil))
		assert.False(t, auth.IsConflictError(auth.ErrTokenInvalid))

		wrapped := goerrors.Wrap(auth.ErrAccountConflict, goerrors.CategoryConflict, "create failed")
		assert.True(t, auth.IsConflictError(wrapped))
	})

	t.Run("not found", func(t *testing.T) {
		assert.True(t, auth.IsNotFoundError(auth.ErrAccountNotFound))
		assert.False(t, auth.IsNotFoundError(nil))
		assert.False(t, auth.IsNotFoundError(auth.ErrAccountConflict))
	})
}

func TestTokenFailureReason(t *testing.T) {
	assert.Equal(t, auth.TextCodeTokenInvalid, auth.TokenFailureReason(auth.ErrTokenInvalid))
	assert.Empty(t, auth.TokenFailureReason(nil))
	assert.Empty(t, auth.TokenFailureReason(errors.New("boom")))
	assert.Empty(t, auth.TokenFailureReason(auth.ErrAccountConflict), "only verification failures carry a reason")
}
