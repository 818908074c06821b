package auth

import (
	"context"
	"database/sql"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// DefaultSessionTTL is applied when no TTL option is given.
const DefaultSessionTTL = 24 * time.Hour

// Sessions is the store for authenticated client sessions. Absent rows are
// reported as nil records; only genuine storage faults surface as errors.
type Sessions interface {
	Upsert(ctx context.Context, token string, accountID uuid.UUID, userAgent, ip string) (*SessionRecord, error)
	Create(ctx context.Context, accountID uuid.UUID, userAgent, ip string) (*SessionRecord, error)
	FindByToken(ctx context.Context, token string) (*SessionRecord, error)
	TouchActivity(ctx context.Context, token string) (*SessionRecord, error)
	Delete(ctx context.Context, token string) (*SessionRecord, error)
}

type sessions struct {
	db       *bun.DB
	ttl      time.Duration
	logger   Logger
	timeFunc func() time.Time
}

var _ Sessions = (*sessions)(nil)

// SessionsOption mutates the store during construction.
type SessionsOption func(*sessions)

// WithSessionTTL overrides the expiration horizon stamped on new sessions.
func WithSessionTTL(ttl time.Duration) SessionsOption {
	return func(s *sessions) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

// WithSessionsLogger overrides the store logger.
func WithSessionsLogger(logger Logger) SessionsOption {
	return func(s *sessions) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithSessionsTimeFunc overrides the store clock.
func WithSessionsTimeFunc(fn func() time.Time) SessionsOption {
	return func(s *sessions) {
		if fn != nil {
			s.timeFunc = fn
		}
	}
}

// NewSessionsRepository builds the session store over an injected bun DB.
func NewSessionsRepository(db *bun.DB, opts ...SessionsOption) Sessions {
	repo := &sessions{
		db:       db,
		ttl:      DefaultSessionTTL,
		logger:   defLogger{},
		timeFunc: time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(repo)
		}
	}
	return repo
}

// Upsert inserts or refreshes the session row keyed on the unique token in
// one atomic statement, so concurrent requests for the same token cannot
// fork rows. Updates advance last_activity and overwrite user_agent/ip.
func (r *sessions) Upsert(ctx context.Context, token string, accountID uuid.UUID, userAgent, ip string) (*SessionRecord, error) {
	now := r.timeFunc()
	expires := now.Add(r.ttl)
	record := &SessionRecord{
		ID:             uuid.New(),
		SessionToken:   token,
		AccountID:      accountID,
		UserAgent:      orDefault(userAgent, "NA"),
		IPAddress:      orDefault(ip, "0.0.0.0"),
		CreatedAt:      &now,
		LastActivityAt: &now,
		ExpiresAt:      &expires,
	}

	_, err := r.db.NewInsert().
		Model(record).
		On("CONFLICT (session_token) DO UPDATE").
		Set("last_activity_at = EXCLUDED.last_activity_at").
		Set("user_agent = EXCLUDED.user_agent").
		Set("ip_address = EXCLUDED.ip_address").
		Set("expires_at = EXCLUDED.expires_at").
		Exec(ctx)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to upsert session")
	}

	// Re-read so callers see the canonical row, creation timestamp included.
	return r.findByToken(ctx, token, false)
}

// Create inserts a new session with a freshly generated unguessable token.
func (r *sessions) Create(ctx context.Context, accountID uuid.UUID, userAgent, ip string) (*SessionRecord, error) {
	now := r.timeFunc()
	expires := now.Add(r.ttl)
	record := &SessionRecord{
		ID:             uuid.New(),
		SessionToken:   uuid.NewString(),
		AccountID:      accountID,
		UserAgent:      orDefault(userAgent, "NA"),
		IPAddress:      orDefault(ip, "0.0.0.0"),
		CreatedAt:      &now,
		LastActivityAt: &now,
		ExpiresAt:      &expires,
	}

	if _, err := r.db.NewInsert().Model(record).Exec(ctx); err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to create session")
	}

	return record, nil
}

// FindByToken returns the session with its owning account joined in the
// same query, or nil when the token is unknown.
func (r *sessions) FindByToken(ctx context.Context, token string) (*SessionRecord, error) {
	return r.findByToken(ctx, token, true)
}

func (r *sessions) findByToken(ctx context.Context, token string, withAccount bool) (*SessionRecord, error) {
	record := &SessionRecord{}
	q := r.db.NewSelect().Model(record)
	if withAccount {
		q = q.Relation("Account")
	}
	err := q.Where("session_token = ?", token).Limit(1).Scan(ctx)
	if err != nil {
		if goerrors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to find session")
	}
	return record, nil
}

// TouchActivity advances last_activity to now. A missing token is a no-op
// reported as nil, never an error.
func (r *sessions) TouchActivity(ctx context.Context, token string) (*SessionRecord, error) {
	now := r.timeFunc()
	res, err := r.db.NewUpdate().
		Model((*SessionRecord)(nil)).
		Set("last_activity_at = ?", now).
		Where("session_token = ?", token).
		Exec(ctx)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to touch session")
	}

	if rows, err := res.RowsAffected(); err == nil && rows == 0 {
		return nil, nil
	}

	return r.findByToken(ctx, token, false)
}

// Delete removes the row and returns the pre-deletion snapshot, or nil if
// the token never existed. Deleted is terminal.
func (r *sessions) Delete(ctx context.Context, token string) (*SessionRecord, error) {
	snapshot, err := r.findByToken(ctx, token, false)
	if err != nil {
		return nil, err
	}
	if snapshot == nil {
		return nil, nil
	}

	_, err = r.db.NewDelete().
		Model((*SessionRecord)(nil)).
		Where("session_token = ?", token).
		Exec(ctx)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to delete session")
	}

	return snapshot, nil
}

func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
