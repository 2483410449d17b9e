package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/tidehub/accountd/internal/account/domain"
	"github.com/tidehub/accountd/internal/account/store"
)

type accountsRepo struct {
	db dbtx
}

const accountColumns = `id, email, password_hash, first_name, last_name, role,
	email_confirmed, lockout_enabled, lockout_end,
	refresh_token, refresh_token_expiry, created_at, updated_at`

func (r *accountsRepo) GetByID(ctx context.Context, id string) (domain.Account, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE id = ?`, id)
	return scanAccount(row)
}

func (r *accountsRepo) GetByEmail(ctx context.Context, email string) (domain.Account, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE email = ?`,
		domain.NormalizeEmail(email))
	return scanAccount(row)
}

func (r *accountsRepo) Create(ctx context.Context, a domain.Account) error {
	now := time.Now().UTC()
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO accounts (
			id, email, password_hash, first_name, last_name, role,
			email_confirmed, lockout_enabled, lockout_end,
			refresh_token, refresh_token_expiry, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID,
		domain.NormalizeEmail(a.Email),
		a.PasswordHash,
		a.FirstName,
		a.LastName,
		a.Role.String(),
		a.EmailConfirmed,
		a.LockoutEnabled,
		mapOptionalTime(a.LockoutEnd),
		mapOptionalString(a.RefreshToken),
		mapOptionalTime(a.RefreshTokenExpiry),
		now,
		now,
	)
	return mapConstraint(err)
}

func (r *accountsRepo) UpdateRole(ctx context.Context, accountID string, role domain.Role) error {
	return r.exec(ctx,
		`UPDATE accounts SET role = ?, updated_at = ? WHERE id = ?`,
		role.String(), time.Now().UTC(), accountID)
}

func (r *accountsRepo) SetEmailConfirmed(ctx context.Context, accountID string) error {
	return r.exec(ctx,
		`UPDATE accounts SET email_confirmed = 1, updated_at = ? WHERE id = ?`,
		time.Now().UTC(), accountID)
}

func (r *accountsRepo) UpdateRefreshToken(ctx context.Context, accountID, token string, expiry time.Time) error {
	return r.exec(ctx,
		`UPDATE accounts SET refresh_token = ?, refresh_token_expiry = ?, updated_at = ? WHERE id = ?`,
		token, expiry.UTC(), time.Now().UTC(), accountID)
}

func (r *accountsRepo) ClearRefreshToken(ctx context.Context, accountID string) error {
	return r.exec(ctx,
		`UPDATE accounts SET refresh_token = NULL, refresh_token_expiry = NULL, updated_at = ? WHERE id = ?`,
		time.Now().UTC(), accountID)
}

func (r *accountsRepo) UpdateLockout(ctx context.Context, accountID string, enabled bool, until *time.Time) error {
	return r.exec(ctx,
		`UPDATE accounts SET lockout_enabled = ?, lockout_end = ?, updated_at = ? WHERE id = ?`,
		enabled, mapOptionalTime(until), time.Now().UTC(), accountID)
}

func (r *accountsRepo) Delete(ctx context.Context, accountID string) error {
	return r.exec(ctx, `DELETE FROM accounts WHERE id = ?`, accountID)
}

// exec runs a statement that must touch exactly one existing row.
func (r *accountsRepo) exec(ctx context.Context, query string, args ...any) error {
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

func scanAccount(row *sql.Row) (domain.Account, error) {
	var (
		a             domain.Account
		role          string
		lockoutEnd    sql.NullTime
		refreshToken  sql.NullString
		refreshExpiry sql.NullTime
	)

	err := row.Scan(
		&a.ID,
		&a.Email,
		&a.PasswordHash,
		&a.FirstName,
		&a.LastName,
		&role,
		&a.EmailConfirmed,
		&a.LockoutEnabled,
		&lockoutEnd,
		&refreshToken,
		&refreshExpiry,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if err != nil {
		return domain.Account{}, mapNotFound(err)
	}

	a.Role = domain.Role(role)
	a.LockoutEnd = mapNullTime(lockoutEnd)
	a.RefreshToken = mapNullString(refreshToken)
	a.RefreshTokenExpiry = mapNullTime(refreshExpiry)
	return a, nil
}
