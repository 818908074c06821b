package auth_test

import (
	"context"
	"testing"

	"github.com/devrel-labs/go-auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionContext(t *testing.T) {
	session := &auth.SessionObject{UserID: "acct-1"}

	ctx := auth.WithSessionContext(context.Background(), session)
	got, ok := auth.SessionFromContext(ctx)
	require.True(t, ok)
	assert.Equal(t, "acct-1", got.GetUserID())

	_, ok = auth.SessionFromContext(context.Background())
	assert.False(t, ok)
}

func TestClaimsContext(t *testing.T) {
	service, _, _ := newTestTokenService(t)
	token, err := service.Issue(auth.PartialClaims{Subject: "acct-1"}, "1h")
	require.NoError(t, err)

	claims, err := service.Validate(token)
	require.NoError(t, err)

	ctx := auth.WithClaimsContext(context.Background(), claims)
	got, ok := auth.GetClaims(ctx)
	require.True(t, ok)
	assert.Equal(t, "acct-1", got.Subject())

	_, ok = auth.GetClaims(context.Background())
	assert.False(t, ok)
}
