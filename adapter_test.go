package auth_test

import (
	"context"
	"testing"
	"time"

	"github.com/devrel-labs/go-auth"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupAdapter(t *testing.T, opts ...auth.AdapterOption) (auth.IdentityAdapter, auth.RepositoryManager) {
	t.Helper()
	db := setupTestDB(t)
	repos := auth.NewRepositoryManager(db)
	return auth.NewIdentityAdapter(repos, opts...), repos
}

func TestAdapterCreateUser(t *testing.T) {
	adapter, repos := setupAdapter(t)
	ctx := context.Background()

	created, err := adapter.CreateUser(ctx, auth.AdapterUser{
		ID:    "gh-42",
		Name:  "Ada Lovelace",
		Email: "ada@example.com",
	})
	require.NoError(t, err)
	require.NotNil(t, created)
	assert.Equal(t, "Ada Lovelace", created.Name)
	assert.Equal(t, "ada@example.com", created.Email)
	assert.NotNil(t, created.EmailVerified)

	// The adapter id is the durable account id, not the provider id.
	accountID, err := uuid.Parse(created.ID)
	require.NoError(t, err)
	account, err := repos.Accounts().FindByID(ctx, accountID)
	require.NoError(t, err)
	require.NotNil(t, account)
	assert.Equal(t, "gh-42", account.ProviderAccountID)

	t.Run("duplicate user is a conflict", func(t *testing.T) {
		_, err := adapter.CreateUser(ctx, auth.AdapterUser{
			ID:    "gh-42",
			Email: "other@example.com",
		})
		require.Error(t, err)
		assert.True(t, auth.IsConflictError(err))
	})

	t.Run("missing provider id is generated", func(t *testing.T) {
		created, err := adapter.CreateUser(ctx, auth.AdapterUser{
			Name:  "Grace Hopper",
			Email: "grace@example.com",
		})
		require.NoError(t, err)
		require.NotNil(t, created)

		accountID, err := uuid.Parse(created.ID)
		require.NoError(t, err)
		account, err := repos.Accounts().FindByID(ctx, accountID)
		require.NoError(t, err)
		require.NotNil(t, account)
		assert.NotEmpty(t, account.ProviderAccountID)
	})
}

func TestAdapterUserLookups(t *testing.T) {
	adapter, _ := setupAdapter(t, auth.WithAdapterProvider("gitlab"))
	ctx := context.Background()

	created, err := adapter.CreateUser(ctx, auth.AdapterUser{
		ID:    "gl-7",
		Name:  "Ada Lovelace",
		Email: "ada@example.com",
	})
	require.NoError(t, err)

	t.Run("by provider account", func(t *testing.T) {
		user, err := adapter.GetUserByAccount(ctx, "gitlab", "gl-7")
		require.NoError(t, err)
		require.NotNil(t, user)
		assert.Equal(t, created.ID, user.ID)
	})

	t.Run("by id", func(t *testing.T) {
		user, err := adapter.GetUser(ctx, created.ID)
		require.NoError(t, err)
		require.NotNil(t, user)
		assert.Equal(t, "ada@example.com", user.Email)
	})

	t.Run("by email", func(t *testing.T) {
		user, err := adapter.GetUserByEmail(ctx, "ada@example.com")
		require.NoError(t, err)
		require.NotNil(t, user)
		assert.Equal(t, created.ID, user.ID)
	})

	t.Run("absence is nil, not an error", func(t *testing.T) {
		user, err := adapter.GetUserByAccount(ctx, "gitlab", "gl-404")
		require.NoError(t, err)
		assert.Nil(t, user)

		user, err = adapter.GetUser(ctx, uuid.NewString())
		require.NoError(t, err)
		assert.Nil(t, user)

		user, err = adapter.GetUser(ctx, "not-a-uuid")
		require.NoError(t, err)
		assert.Nil(t, user)

		user, err = adapter.GetUserByEmail(ctx, "nobody@example.com")
		require.NoError(t, err)
		assert.Nil(t, user)
	})
}

func TestAdapterLinkAccount(t *testing.T) {
	logger := &capturingLogger{}
	adapter, _ := setupAdapter(t, auth.WithAdapterLogger(logger))
	ctx := context.Background()

	created, err := adapter.CreateUser(ctx, auth.AdapterUser{
		ID:    "gh-42",
		Email: "ada@example.com",
	})
	require.NoError(t, err)

	t.Run("links provider pair to the account", func(t *testing.T) {
		err := adapter.LinkAccount(ctx, auth.AdapterAccountLink{
			UserID:            created.ID,
			Provider:          "gitlab",
			ProviderAccountID: "gl-7",
		})
		require.NoError(t, err)

		user, err := adapter.GetUserByAccount(ctx, "gitlab", "gl-7")
		require.NoError(t, err)
		require.NotNil(t, user)
		assert.Equal(t, created.ID, user.ID)
	})

	t.Run("missing target is logged and ignored", func(t *testing.T) {
		err := adapter.LinkAccount(ctx, auth.AdapterAccountLink{
			UserID:            uuid.NewString(),
			Provider:          "gitlab",
			ProviderAccountID: "gl-8",
		})
		require.NoError(t, err)
		assert.True(t, logger.contains("not found"))
	})

	t.Run("non-uuid user id is ignored", func(t *testing.T) {
		err := adapter.LinkAccount(ctx, auth.AdapterAccountLink{
			UserID:            "gh-42",
			Provider:          "gitlab",
			ProviderAccountID: "gl-9",
		})
		require.NoError(t, err)
	})
}

func TestAdapterSessionLifecycle(t *testing.T) {
	adapter, _ := setupAdapter(t)
	ctx := context.Background()

	user, err := adapter.CreateUser(ctx, auth.AdapterUser{
		ID:    "gh-42",
		Name:  "Ada Lovelace",
		Email: "ada@example.com",
	})
	require.NoError(t, err)

	token := uuid.NewString()

	session, err := adapter.CreateSession(ctx, token, user.ID)
	require.NoError(t, err)
	require.NotNil(t, session)
	assert.Equal(t, token, session.SessionToken)
	assert.Equal(t, user.ID, session.UserID)
	assert.True(t, session.Expires.After(time.Now()), "sessions expire in the future")

	t.Run("create again refreshes the same session", func(t *testing.T) {
		again, err := adapter.CreateSession(ctx, token, user.ID)
		require.NoError(t, err)
		require.NotNil(t, again)
		assert.Equal(t, session.SessionToken, again.SessionToken)
	})

	t.Run("get returns session and owner together", func(t *testing.T) {
		gotSession, gotUser, err := adapter.GetSessionAndUser(ctx, token)
		require.NoError(t, err)
		require.NotNil(t, gotSession)
		require.NotNil(t, gotUser)
		assert.Equal(t, token, gotSession.SessionToken)
		assert.Equal(t, user.ID, gotUser.ID)
		assert.Equal(t, "ada@example.com", gotUser.Email)
	})

	t.Run("update touches activity", func(t *testing.T) {
		updated, err := adapter.UpdateSession(ctx, token)
		require.NoError(t, err)
		require.NotNil(t, updated)
		assert.Equal(t, token, updated.SessionToken)
	})

	t.Run("delete returns the snapshot and removes the row", func(t *testing.T) {
		deleted, err := adapter.DeleteSession(ctx, token)
		require.NoError(t, err)
		require.NotNil(t, deleted)
		assert.Equal(t, token, deleted.SessionToken)

		gotSession, gotUser, err := adapter.GetSessionAndUser(ctx, token)
		require.NoError(t, err)
		assert.Nil(t, gotSession)
		assert.Nil(t, gotUser)
	})
}

func TestAdapterSessionAbsence(t *testing.T) {
	adapter, _ := setupAdapter(t)
	ctx := context.Background()

	session, user, err := adapter.GetSessionAndUser(ctx, "no-such-token")
	require.NoError(t, err)
	assert.Nil(t, session)
	assert.Nil(t, user)

	updated, err := adapter.UpdateSession(ctx, "no-such-token")
	require.NoError(t, err)
	assert.Nil(t, updated)

	deleted, err := adapter.DeleteSession(ctx, "no-such-token")
	require.NoError(t, err)
	assert.Nil(t, deleted)

	created, err := adapter.CreateSession(ctx, "some-token", "not-a-uuid")
	require.NoError(t, err)
	assert.Nil(t, created)
}
