package auth

import (
	"context"
	"database/sql"
	"strings"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/goliatone/hashid/pkg/hashid"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Accounts is the store for linked external identities.
type Accounts interface {
	repository.Repository[*Account]

	CreateAccount(ctx context.Context, identity ExternalIdentity) (*Account, error)
	CreateAccountTx(ctx context.Context, tx bun.IDB, identity ExternalIdentity) (*Account, error)
	FindByProviderAccount(ctx context.Context, provider, providerAccountID string) (*Account, error)
	FindByProviderAccountTx(ctx context.Context, tx bun.IDB, provider, providerAccountID string) (*Account, error)
	FindByID(ctx context.Context, id uuid.UUID) (*Account, error)
	FindByEmail(ctx context.Context, email string) (*Account, error)
	LinkProviderAccount(ctx context.Context, accountID uuid.UUID, provider, providerAccountID string) error
	LinkProviderAccountTx(ctx context.Context, tx bun.IDB, accountID uuid.UUID, provider, providerAccountID string) error
}

type accounts struct {
	repository.Repository[*Account]
	db *bun.DB
}

var (
	_ Accounts                        = (*accounts)(nil)
	_ repository.Repository[*Account] = (*accounts)(nil)
)

// NewAccountsRepository builds the account store over an injected bun DB.
func NewAccountsRepository(db *bun.DB) Accounts {
	repo := repository.NewRepository[*Account](db, repository.ModelHandlers[*Account]{
		NewRecord: func() *Account { return &Account{} },
		GetID: func(a *Account) uuid.UUID {
			if a == nil {
				return uuid.Nil
			}
			return a.ID
		},
		SetID: func(a *Account, id uuid.UUID) {
			if a != nil {
				a.ID = id
			}
		},
		GetIdentifier: func() string {
			return "email"
		},
	})

	return &accounts{
		Repository: repo,
		db:         db,
	}
}

// CreateAccount inserts a new account row. A collision on the provider pair
// or email surfaces as a conflict, never a silent merge; resolving an
// existing row first is the adapter's job.
func (a *accounts) CreateAccount(ctx context.Context, identity ExternalIdentity) (*Account, error) {
	return a.CreateAccountTx(ctx, a.db, identity)
}

func (a *accounts) CreateAccountTx(ctx context.Context, tx bun.IDB, identity ExternalIdentity) (*Account, error) {
	if err := identity.Validate(); err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryBadInput, "invalid external identity")
	}

	record := &Account{
		Name:              identity.Name,
		Email:             identity.Email,
		Provider:          identity.Provider,
		ProviderAccountID: identity.ProviderAccountID,
	}
	prepareAccountDefaults(record)

	if _, err := tx.NewInsert().Model(record).Exec(ctx); err != nil {
		if isUniqueViolation(err) {
			return nil, goerrors.Wrap(err, goerrors.CategoryConflict, ErrAccountConflict.Message).
				WithTextCode(TextCodeAccountConflict).
				WithCode(goerrors.CodeConflict)
		}
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to create account")
	}

	return record, nil
}

func (a *accounts) FindByProviderAccount(ctx context.Context, provider, providerAccountID string) (*Account, error) {
	return a.FindByProviderAccountTx(ctx, a.db, provider, providerAccountID)
}

// FindByProviderAccountTx looks an account up by its unique provider pair.
// Absence is reported as a nil record, not an error.
func (a *accounts) FindByProviderAccountTx(ctx context.Context, tx bun.IDB, provider, providerAccountID string) (*Account, error) {
	record := &Account{}
	err := tx.NewSelect().
		Model(record).
		Where("provider = ? AND provider_account_id = ?", provider, providerAccountID).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if goerrors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to find account by provider")
	}
	return record, nil
}

func (a *accounts) FindByID(ctx context.Context, id uuid.UUID) (*Account, error) {
	record := &Account{}
	err := a.db.NewSelect().
		Model(record).
		Where("?TableAlias.id = ?", id).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if goerrors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to find account by id")
	}
	return record, nil
}

func (a *accounts) FindByEmail(ctx context.Context, email string) (*Account, error) {
	record := &Account{}
	err := a.db.NewSelect().
		Model(record).
		Where("email = ?", email).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if goerrors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to find account by email")
	}
	return record, nil
}

func (a *accounts) LinkProviderAccount(ctx context.Context, accountID uuid.UUID, provider, providerAccountID string) error {
	return a.LinkProviderAccountTx(ctx, a.db, accountID, provider, providerAccountID)
}

// LinkProviderAccountTx updates the provider linkage fields on an existing
// account. A missing target is a not-found condition the caller can choose
// to ignore, not a flow-aborting fault.
func (a *accounts) LinkProviderAccountTx(ctx context.Context, tx bun.IDB, accountID uuid.UUID, provider, providerAccountID string) error {
	res, err := tx.NewUpdate().
		Model((*Account)(nil)).
		Set("provider = ?", provider).
		Set("provider_account_id = ?", providerAccountID).
		Where("id = ?", accountID).
		Exec(ctx)
	if err != nil {
		if isUniqueViolation(err) {
			return goerrors.Wrap(err, goerrors.CategoryConflict, ErrAccountConflict.Message).
				WithTextCode(TextCodeAccountConflict).
				WithCode(goerrors.CodeConflict)
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to link provider account")
	}

	if rows, err := res.RowsAffected(); err == nil && rows == 0 {
		return ErrAccountNotFound
	}

	return nil
}

func prepareAccountDefaults(record *Account) {
	if record == nil {
		return
	}

	if record.ID == uuid.Nil {
		// Deterministic id derived from the provider identity so repeated
		// first sign-ins race to the same row instead of forking accounts.
		if id, err := hashid.NewUUID(record.Provider + ":" + record.ProviderAccountID); err == nil {
			record.ID = id
		} else {
			record.ID = uuid.New()
		}
	}

	if record.CreatedAt == nil {
		now := time.Now()
		record.CreatedAt = &now
	}
}

// isUniqueViolation sniffs driver-specific unique constraint messages. The
// store is not tied to one engine, so this covers the sqlite and postgres
// spellings the module is run against.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "SQLITE_CONSTRAINT_UNIQUE") ||
		strings.Contains(msg, "duplicate key value violates unique constraint")
}
