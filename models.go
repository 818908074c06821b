package auth

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Account is a linked external identity. The (provider, provider_account_id)
// pair and the email are unique; rows are created on first sign-in and never
// deleted by this package.
type Account struct {
	bun.BaseModel `bun:"table:accounts,alias:acct"`

	ID                uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	Name              string     `bun:"name" json:"name,omitempty"`
	Email             string     `bun:"email,notnull,unique" json:"email,omitempty"`
	Provider          string     `bun:"provider,notnull,unique:uq_accounts_provider_account" json:"provider,omitempty"`
	ProviderAccountID string     `bun:"provider_account_id,notnull,unique:uq_accounts_provider_account" json:"provider_account_id,omitempty"`
	CreatedAt         *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
}

// SessionRecord is one authenticated client session. The token is the unique
// handle; the account reference is lookup only, cascade behavior belongs to
// the storage layer.
type SessionRecord struct {
	bun.BaseModel `bun:"table:sessions,alias:sess"`

	ID             uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	SessionToken   string     `bun:"session_token,notnull,unique" json:"session_token,omitempty"`
	AccountID      uuid.UUID  `bun:"account_id,notnull,type:uuid" json:"account_id,omitempty"`
	Account        *Account   `bun:"rel:belongs-to,join:account_id=id" json:"account,omitempty"`
	UserAgent      string     `bun:"user_agent" json:"user_agent,omitempty"`
	IPAddress      string     `bun:"ip_address" json:"ip_address,omitempty"`
	CreatedAt      *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	LastActivityAt *time.Time `bun:"last_activity_at,nullzero" json:"last_activity_at,omitempty"`
	ExpiresAt      *time.Time `bun:"expires_at,nullzero" json:"expires_at,omitempty"`
}
