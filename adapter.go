package auth

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// AdapterUser is the framework-shaped user view.
type AdapterUser struct {
	ID            string     `json:"id"`
	Name          string     `json:"name,omitempty"`
	Email         string     `json:"email,omitempty"`
	EmailVerified *time.Time `json:"email_verified,omitempty"`
	Image         string     `json:"image,omitempty"`
}

// AdapterSession is the framework-shaped session view.
type AdapterSession struct {
	SessionToken string    `json:"session_token"`
	UserID       string    `json:"user_id"`
	Expires      time.Time `json:"expires"`
}

// AdapterAccountLink carries the provider linkage the framework reports
// after a provider handshake.
type AdapterAccountLink struct {
	UserID            string `json:"user_id"`
	Provider          string `json:"provider"`
	ProviderAccountID string `json:"provider_account_id"`
}

// IdentityAdapter is the fixed capability set an authentication framework
// consumes for durable user/session state. Every lookup reports absence as
// a nil record so the framework can degrade to "unauthenticated"; only
// conflicts and genuine storage faults are errors.
type IdentityAdapter interface {
	CreateUser(ctx context.Context, user AdapterUser) (*AdapterUser, error)
	LinkAccount(ctx context.Context, link AdapterAccountLink) error
	GetUserByAccount(ctx context.Context, provider, providerAccountID string) (*AdapterUser, error)
	GetUser(ctx context.Context, id string) (*AdapterUser, error)
	GetUserByEmail(ctx context.Context, email string) (*AdapterUser, error)
	CreateSession(ctx context.Context, sessionToken, userID string) (*AdapterSession, error)
	GetSessionAndUser(ctx context.Context, sessionToken string) (*AdapterSession, *AdapterUser, error)
	UpdateSession(ctx context.Context, sessionToken string) (*AdapterSession, error)
	DeleteSession(ctx context.Context, sessionToken string) (*AdapterSession, error)
}

type identityAdapter struct {
	repos    RepositoryManager
	provider string
	logger   Logger
}

var _ IdentityAdapter = (*identityAdapter)(nil)

// AdapterOption mutates the adapter during construction.
type AdapterOption func(*identityAdapter)

// WithAdapterProvider sets the provider name stamped on accounts created
// through CreateUser, which carries no provider of its own.
func WithAdapterProvider(provider string) AdapterOption {
	return func(a *identityAdapter) {
		if provider != "" {
			a.provider = provider
		}
	}
}

// WithAdapterLogger overrides the adapter logger.
func WithAdapterLogger(logger Logger) AdapterOption {
	return func(a *identityAdapter) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// NewIdentityAdapter composes the account and session stores behind the
// framework capability set.
func NewIdentityAdapter(repos RepositoryManager, opts ...AdapterOption) IdentityAdapter {
	adapter := &identityAdapter{
		repos:    repos,
		provider: "github",
		logger:   defLogger{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(adapter)
		}
	}
	return adapter
}

// CreateUser maps the framework user onto a new account row. Conflicts are
// surfaced distinctly; swallowing them would corrupt the provider pair
// invariant.
func (a *identityAdapter) CreateUser(ctx context.Context, user AdapterUser) (*AdapterUser, error) {
	providerAccountID := user.ID
	if providerAccountID == "" {
		providerAccountID = uuid.NewString()
	}

	account, err := a.repos.Accounts().CreateAccount(ctx, ExternalIdentity{
		Name:              user.Name,
		Email:             user.Email,
		Provider:          a.provider,
		ProviderAccountID: providerAccountID,
	})
	if err != nil {
		return nil, err
	}

	return accountToAdapterUser(account), nil
}

// LinkAccount updates provider linkage on an existing account. A missing
// target is logged and ignored so the framework's larger flow proceeds.
func (a *identityAdapter) LinkAccount(ctx context.Context, link AdapterAccountLink) error {
	accountID, err := uuid.Parse(link.UserID)
	if err != nil {
		a.logger.Info("LinkAccount skipped, user id is not an account id", "user_id", link.UserID)
		return nil
	}

	err = a.repos.Accounts().LinkProviderAccount(ctx, accountID, link.Provider, link.ProviderAccountID)
	if err != nil {
		if IsNotFoundError(err) {
			a.logger.Info("LinkAccount target not found", "account_id", link.UserID)
			return nil
		}
		return err
	}

	return nil
}

func (a *identityAdapter) GetUserByAccount(ctx context.Context, provider, providerAccountID string) (*AdapterUser, error) {
	account, err := a.repos.Accounts().FindByProviderAccount(ctx, provider, providerAccountID)
	if err != nil || account == nil {
		return nil, err
	}
	return accountToAdapterUser(account), nil
}

func (a *identityAdapter) GetUser(ctx context.Context, id string) (*AdapterUser, error) {
	accountID, err := uuid.Parse(id)
	if err != nil {
		return nil, nil
	}

	account, err := a.repos.Accounts().FindByID(ctx, accountID)
	if err != nil || account == nil {
		return nil, err
	}
	return accountToAdapterUser(account), nil
}

func (a *identityAdapter) GetUserByEmail(ctx context.Context, email string) (*AdapterUser, error) {
	account, err := a.repos.Accounts().FindByEmail(ctx, email)
	if err != nil || account == nil {
		return nil, err
	}
	return accountToAdapterUser(account), nil
}

// CreateSession opens or refreshes the session row for the framework token.
// The upsert keeps concurrent sign-ins on the same token to a single row.
func (a *identityAdapter) CreateSession(ctx context.Context, sessionToken, userID string) (*AdapterSession, error) {
	accountID, err := uuid.Parse(userID)
	if err != nil {
		return nil, nil
	}

	session, err := a.repos.Sessions().Upsert(ctx, sessionToken, accountID, "NA", "0.0.0.0")
	if err != nil || session == nil {
		return nil, err
	}
	return sessionToAdapterSession(session), nil
}

// GetSessionAndUser resolves the session and its owning account in one
// store call, mapping both to framework shapes.
func (a *identityAdapter) GetSessionAndUser(ctx context.Context, sessionToken string) (*AdapterSession, *AdapterUser, error) {
	session, err := a.repos.Sessions().FindByToken(ctx, sessionToken)
	if err != nil || session == nil {
		return nil, nil, err
	}

	user := &AdapterUser{ID: session.AccountID.String()}
	if session.Account != nil {
		user = accountToAdapterUser(session.Account)
	}

	return sessionToAdapterSession(session), user, nil
}

func (a *identityAdapter) UpdateSession(ctx context.Context, sessionToken string) (*AdapterSession, error) {
	session, err := a.repos.Sessions().TouchActivity(ctx, sessionToken)
	if err != nil || session == nil {
		return nil, err
	}
	return sessionToAdapterSession(session), nil
}

func (a *identityAdapter) DeleteSession(ctx context.Context, sessionToken string) (*AdapterSession, error) {
	session, err := a.repos.Sessions().Delete(ctx, sessionToken)
	if err != nil || session == nil {
		return nil, err
	}
	return sessionToAdapterSession(session), nil
}

func accountToAdapterUser(account *Account) *AdapterUser {
	return &AdapterUser{
		ID:            account.ID.String(),
		Name:          account.Name,
		Email:         account.Email,
		EmailVerified: account.CreatedAt,
	}
}

func sessionToAdapterSession(session *SessionRecord) *AdapterSession {
	view := &AdapterSession{
		SessionToken: session.SessionToken,
		UserID:       session.AccountID.String(),
	}
	if session.ExpiresAt != nil {
		view.Expires = *session.ExpiresAt
	} else {
		// Sessions always expire in the future relative to their last write.
		view.Expires = time.Now().Add(DefaultSessionTTL)
	}
	return view
}
