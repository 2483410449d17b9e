package store

import (
	"context"
	"errors"
	"time"

	"github.com/tidehub/accountd/internal/account/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface. Concrete drivers (sqlite,
// postgres) implement this. Every operation takes a context carrying the
// caller's cancellation signal; non-transactional calls persist
// immediately, multi-step operations run under WithTx.
type Store interface {
	Accounts() Accounts
	VerificationTokens() VerificationTokens

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// The caller MUST call Commit() or Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx executes fn within a transaction: rolled back when fn
	// errors, committed otherwise. This is the recommended entry point
	// for multi-step operations that must be atomic (code supersession,
	// code consumption).
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	// Close releases any underlying resources.
	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transactional store. It embeds the same repos but adds Commit/Rollback.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type Accounts interface {
	// GetByID returns an account by id.
	GetByID(ctx context.Context, id string) (domain.Account, error)

	// GetByEmail looks an account up by its normalized email.
	GetByEmail(ctx context.Context, email string) (domain.Account, error)

	// Create inserts a new account (id is provided by the app via ULID).
	// A duplicate email surfaces as ErrAlreadyExists.
	Create(ctx context.Context, a domain.Account) error

	// UpdateRole reassigns the account's role and bumps updated_at.
	UpdateRole(ctx context.Context, accountID string, role domain.Role) error

	// SetEmailConfirmed marks the email as confirmed.
	SetEmailConfirmed(ctx context.Context, accountID string) error

	// UpdateRefreshToken overwrites the stored refresh token and its
	// expiry; a single refresh token is active per account.
	UpdateRefreshToken(ctx context.Context, accountID, token string, expiry time.Time) error

	// ClearRefreshToken drops the stored refresh token.
	ClearRefreshToken(ctx context.Context, accountID string) error

	// UpdateLockout sets the lockout flag and end timestamp.
	UpdateLockout(ctx context.Context, accountID string, enabled bool, until *time.Time) error

	// Delete removes the account; verification tokens cascade per schema.
	Delete(ctx context.Context, accountID string) error
}

type VerificationTokens interface {
	// Create inserts a new verification token.
	Create(ctx context.Context, t domain.VerificationToken) error

	// ListByAccountPurpose returns all tokens for one (account, purpose).
	ListByAccountPurpose(ctx context.Context, accountID string, purpose domain.Purpose) ([]domain.VerificationToken, error)

	// ListByCodePurpose returns all tokens matching (code, purpose)
	// across every account. Consumers must treat a multi-row result as
	// an ambiguous code, never pick one.
	ListByCodePurpose(ctx context.Context, code string, purpose domain.Purpose) ([]domain.VerificationToken, error)

	// DeleteByAccountPurposeExcept removes every token for the
	// (account, purpose) pair other than keepID. Pass keepID == "" to
	// remove them all.
	DeleteByAccountPurposeExcept(ctx context.Context, accountID string, purpose domain.Purpose, keepID string) error

	// Delete removes a single token by id.
	Delete(ctx context.Context, id string) error

	// ListCreatedBefore pages through tokens older than the cutoff,
	// ordered by id, for the housekeeping sweep.
	ListCreatedBefore(ctx context.Context, cutoff time.Time, skip, take int) ([]domain.VerificationToken, error)

	// DeleteByIDs removes the given tokens in one statement.
	DeleteByIDs(ctx context.Context, ids []string) error
}
