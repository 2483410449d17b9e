package sqlite

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/tidehub/accountd/internal/account/domain"
)

type tokensRepo struct {
	db dbtx
}

const tokenColumns = `id, account_id, purpose, code, proof, created_at`

func (r *tokensRepo) Create(ctx context.Context, t domain.VerificationToken) error {
	created := t.CreatedAt
	if created.IsZero() {
		created = time.Now().UTC()
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO verification_tokens (id, account_id, purpose, code, proof, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		t.ID, t.AccountID, t.Purpose.String(), t.Code, t.Proof, created)
	return mapConstraint(err)
}

func (r *tokensRepo) ListByAccountPurpose(ctx context.Context, accountID string, purpose domain.Purpose) ([]domain.VerificationToken, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+tokenColumns+` FROM verification_tokens
		 WHERE account_id = ? AND purpose = ? ORDER BY id`,
		accountID, purpose.String())
	if err != nil {
		return nil, err
	}
	return scanTokens(rows)
}

func (r *tokensRepo) ListByCodePurpose(ctx context.Context, code string, purpose domain.Purpose) ([]domain.VerificationToken, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+tokenColumns+` FROM verification_tokens
		 WHERE code = ? AND purpose = ? ORDER BY id`,
		code, purpose.String())
	if err != nil {
		return nil, err
	}
	return scanTokens(rows)
}

func (r *tokensRepo) DeleteByAccountPurposeExcept(ctx context.Context, accountID string, purpose domain.Purpose, keepID string) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM verification_tokens
		 WHERE account_id = ? AND purpose = ? AND id != ?`,
		accountID, purpose.String(), keepID)
	return err
}

func (r *tokensRepo) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM verification_tokens WHERE id = ?`, id)
	return err
}

func (r *tokensRepo) ListCreatedBefore(ctx context.Context, cutoff time.Time, skip, take int) ([]domain.VerificationToken, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+tokenColumns+` FROM verification_tokens
		 WHERE created_at < ? ORDER BY id LIMIT ? OFFSET ?`,
		cutoff.UTC(), take, skip)
	if err != nil {
		return nil, err
	}
	return scanTokens(rows)
}

func (r *tokensRepo) DeleteByIDs(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	_, err := r.db.ExecContext(ctx,
		`DELETE FROM verification_tokens WHERE id IN (`+placeholders+`)`, args...)
	return err
}

func scanTokens(rows *sql.Rows) ([]domain.VerificationToken, error) {
	defer rows.Close()

	var out []domain.VerificationToken
	for rows.Next() {
		var (
			t       domain.VerificationToken
			purpose string
		)
		if err := rows.Scan(&t.ID, &t.AccountID, &purpose, &t.Code, &t.Proof, &t.CreatedAt); err != nil {
			return nil, err
		}
		t.Purpose = domain.Purpose(purpose)
		out = append(out, t)
	}
	return out, rows.Err()
}
