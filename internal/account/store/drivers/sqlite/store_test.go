package sqlite

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/tidehub/accountd/internal/account/domain"
	"github.com/tidehub/accountd/internal/account/store"
	"github.com/tidehub/accountd/pkg/idx"
)

func newStore(t *testing.T) *Store {
	t.Helper()
	st, err := NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.ApplyMigrations())
	return st
}

func seedAccount(t *testing.T, st store.Store, email string) domain.Account {
	t.Helper()
	a := domain.Account{
		ID:           idx.New().String(),
		Email:        email,
		PasswordHash: "$argon2id$v=19$m=65536,t=3,p=2$c2FsdA$aGFzaA",
		FirstName:    "Test",
		LastName:     "Account",
		Role:         domain.RoleAdmin,
	}
	require.NoError(t, st.Accounts().Create(context.Background(), a))
	return a
}

func TestAccountsRoundTrip(t *testing.T) {
	st := newStore(t)
	ctx := context.Background()

	a := seedAccount(t, st, "jo@example.com")

	got, err := st.Accounts().GetByID(ctx, a.ID)
	require.NoError(t, err)
	require.Equal(t, a.Email, got.Email)
	require.False(t, got.EmailConfirmed)
	require.Nil(t, got.RefreshToken)
	require.False(t, got.CreatedAt.IsZero())

	byEmail, err := st.Accounts().GetByEmail(ctx, "  JO@example.com ")
	require.NoError(t, err)
	require.Equal(t, a.ID, byEmail.ID)
}

func TestAccountsUniqueEmail(t *testing.T) {
	st := newStore(t)

	seedAccount(t, st, "jo@example.com")
	dup := domain.Account{
		ID:           idx.New().String(),
		Email:        "JO@example.com",
		PasswordHash: "x",
		Role:         domain.RoleAdmin,
	}
	err := st.Accounts().Create(context.Background(), dup)
	require.ErrorIs(t, err, store.ErrAlreadyExists)
}

func TestAccountsUpdateTargetsMustExist(t *testing.T) {
	st := newStore(t)
	ctx := context.Background()

	require.ErrorIs(t, st.Accounts().SetEmailConfirmed(ctx, "01MISSING"), store.ErrNotFound)
	require.ErrorIs(t, st.Accounts().Delete(ctx, "01MISSING"), store.ErrNotFound)
	require.ErrorIs(t,
		st.Accounts().UpdateRefreshToken(ctx, "01MISSING", "tok", time.Now()),
		store.ErrNotFound)

	_, err := st.Accounts().GetByID(ctx, "01MISSING")
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestAccountsRefreshTokenLifecycle(t *testing.T) {
	st := newStore(t)
	ctx := context.Background()
	a := seedAccount(t, st, "jo@example.com")

	expiry := time.Now().UTC().Add(time.Hour).Truncate(time.Second)
	require.NoError(t, st.Accounts().UpdateRefreshToken(ctx, a.ID, "token-1", expiry))

	got, err := st.Accounts().GetByID(ctx, a.ID)
	require.NoError(t, err)
	require.NotNil(t, got.RefreshToken)
	require.Equal(t, "token-1", *got.RefreshToken)
	require.NotNil(t, got.RefreshTokenExpiry)
	require.WithinDuration(t, expiry, *got.RefreshTokenExpiry, time.Second)

	require.NoError(t, st.Accounts().ClearRefreshToken(ctx, a.ID))
	got, err = st.Accounts().GetByID(ctx, a.ID)
	require.NoError(t, err)
	require.Nil(t, got.RefreshToken)
	require.Nil(t, got.RefreshTokenExpiry)
}

func TestAccountsLockout(t *testing.T) {
	st := newStore(t)
	ctx := context.Background()
	a := seedAccount(t, st, "jo@example.com")

	until := time.Now().UTC().Add(30 * time.Minute).Truncate(time.Second)
	require.NoError(t, st.Accounts().UpdateLockout(ctx, a.ID, true, &until))

	got, err := st.Accounts().GetByID(ctx, a.ID)
	require.NoError(t, err)
	require.True(t, got.LockoutEnabled)
	require.NotNil(t, got.LockoutEnd)
	require.True(t, got.IsLocked())

	require.NoError(t, st.Accounts().UpdateLockout(ctx, a.ID, false, nil))
	got, err = st.Accounts().GetByID(ctx, a.ID)
	require.NoError(t, err)
	require.False(t, got.IsLocked())
	require.Nil(t, got.LockoutEnd)
}

func seedToken(t *testing.T, st store.Store, accountID string, purpose domain.Purpose, code string, createdAt time.Time) domain.VerificationToken {
	t.Helper()
	tok := domain.VerificationToken{
		ID:        idx.NewAt(createdAt).String(),
		AccountID: accountID,
		Purpose:   purpose,
		Code:      code,
		Proof:     "proof",
		CreatedAt: createdAt,
	}
	require.NoError(t, st.VerificationTokens().Create(context.Background(), tok))
	return tok
}

func TestVerificationTokensSupersession(t *testing.T) {
	st := newStore(t)
	ctx := context.Background()
	a := seedAccount(t, st, "jo@example.com")

	now := time.Now().UTC()
	seedToken(t, st, a.ID, domain.PurposeEmailConfirm, "1111", now.Add(-2*time.Minute))
	seedToken(t, st, a.ID, domain.PurposeEmailConfirm, "2222", now.Add(-time.Minute))
	other := seedToken(t, st, a.ID, domain.PurposePasswordReset, "3333", now)
	keep := seedToken(t, st, a.ID, domain.PurposeEmailConfirm, "4444", now)

	require.NoError(t, st.VerificationTokens().DeleteByAccountPurposeExcept(
		ctx, a.ID, domain.PurposeEmailConfirm, keep.ID))

	remaining, err := st.VerificationTokens().ListByAccountPurpose(ctx, a.ID, domain.PurposeEmailConfirm)
	require.NoError(t, err)
	require.Len(t, remaining, 1)
	require.Equal(t, keep.ID, remaining[0].ID)

	// other purposes are untouched
	others, err := st.VerificationTokens().ListByAccountPurpose(ctx, a.ID, domain.PurposePasswordReset)
	require.NoError(t, err)
	require.Len(t, others, 1)
	require.Equal(t, other.ID, others[0].ID)

	// empty keepID removes everything for the pair
	require.NoError(t, st.VerificationTokens().DeleteByAccountPurposeExcept(
		ctx, a.ID, domain.PurposeEmailConfirm, ""))
	remaining, err = st.VerificationTokens().ListByAccountPurpose(ctx, a.ID, domain.PurposeEmailConfirm)
	require.NoError(t, err)
	require.Empty(t, remaining)
}

func TestVerificationTokensCascadeWithAccount(t *testing.T) {
	st := newStore(t)
	ctx := context.Background()
	a := seedAccount(t, st, "jo@example.com")
	seedToken(t, st, a.ID, domain.PurposeEmailConfirm, "1111", time.Now().UTC())

	require.NoError(t, st.Accounts().Delete(ctx, a.ID))

	matches, err := st.VerificationTokens().ListByCodePurpose(ctx, "1111", domain.PurposeEmailConfirm)
	require.NoError(t, err)
	require.Empty(t, matches)
}

func TestVerificationTokensPagingAndBulkDelete(t *testing.T) {
	st := newStore(t)
	ctx := context.Background()
	a := seedAccount(t, st, "jo@example.com")

	now := time.Now().UTC()
	var ids []string
	for i := 0; i < 5; i++ {
		tok := seedToken(t, st, a.ID, domain.PurposePasswordReset,
			fmt.Sprintf("%04d", 1111+i), now.Add(-time.Duration(10-i)*time.Minute))
		ids = append(ids, tok.ID)
	}

	cutoff := now.Add(-time.Minute)

	page1, err := st.VerificationTokens().ListCreatedBefore(ctx, cutoff, 0, 2)
	require.NoError(t, err)
	require.Len(t, page1, 2)
	page2, err := st.VerificationTokens().ListCreatedBefore(ctx, cutoff, 2, 2)
	require.NoError(t, err)
	require.Len(t, page2, 2)
	page3, err := st.VerificationTokens().ListCreatedBefore(ctx, cutoff, 4, 2)
	require.NoError(t, err)
	require.Len(t, page3, 1)

	// ULID ids order by creation time, so paging follows insertion order
	require.Equal(t, ids[0], page1[0].ID)
	require.Equal(t, ids[4], page3[0].ID)

	require.NoError(t, st.VerificationTokens().DeleteByIDs(ctx, ids))
	rest, err := st.VerificationTokens().ListCreatedBefore(ctx, cutoff, 0, 10)
	require.NoError(t, err)
	require.Empty(t, rest)
}

func TestWithTxRollsBackOnError(t *testing.T) {
	st := newStore(t)
	ctx := context.Background()
	a := seedAccount(t, st, "jo@example.com")

	sentinel := fmt.Errorf("boom")
	err := st.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Accounts().SetEmailConfirmed(ctx, a.ID); err != nil {
			return err
		}
		return sentinel
	})
	require.ErrorIs(t, err, sentinel)

	got, err := st.Accounts().GetByID(ctx, a.ID)
	require.NoError(t, err)
	require.False(t, got.EmailConfirmed)
}

func TestWithTxCommits(t *testing.T) {
	st := newStore(t)
	ctx := context.Background()
	a := seedAccount(t, st, "jo@example.com")

	err := st.WithTx(ctx, func(tx store.Tx) error {
		return tx.Accounts().SetEmailConfirmed(ctx, a.ID)
	})
	require.NoError(t, err)

	got, err := st.Accounts().GetByID(ctx, a.ID)
	require.NoError(t, err)
	require.True(t, got.EmailConfirmed)
}
