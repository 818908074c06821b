// Package auth bridges an external identity provider to self-contained
// signed session tokens and durable account/session state.
//
// Token engine:
//   - Tokens are compact JWTs signed with ES256 over the process P-256 key
//     pair. The engine enforces issuer, audience, iat, nbf, and exp; callers
//     only supply subject, email, name, and the session token claim. Every
//     verification failure collapses to one uniform "not authenticated"
//     outcome, with the specific reason tagged internally for logs.
//   - Key material is a JWK loaded once from configuration. A malformed or
//     missing value degrades to a compiled-in development key rather than
//     failing startup; KeyPair.UsingDefaultKey flags that condition and the
//     degrade is logged loudly. Override the key in every real deployment.
//
// Persistence:
//   - Accounts are keyed by the unique (provider, provider_account_id) pair
//     and by email; Sessions by their unique unguessable token. Session
//     writes funnel through an atomic token-keyed upsert so concurrent
//     requests cannot fork rows. Absent rows are nil results, not errors.
//
// Adapter:
//   - IdentityAdapter exposes the fixed nine-operation capability set an
//     authentication framework consumes (create/link/lookup users, session
//     CRUD), translating between framework shapes and the internal models.
package auth
