package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/tidehub/accountd/internal/account/domain"
)

func registerConfirmed(t *testing.T, env *testEnv) domain.Account {
	t.Helper()
	ctx := context.Background()

	acct, err := env.accounts.Register(ctx, validRegisterInput())
	require.NoError(t, err)
	require.NoError(t, env.store.Accounts().SetEmailConfirmed(ctx, acct.ID))

	acct, err = env.store.Accounts().GetByID(ctx, acct.ID)
	require.NoError(t, err)
	return acct
}

func TestIssuePairPersistsRefreshToken(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	acct := registerConfirmed(t, env)

	pair, err := env.tokens.IssuePair(ctx, acct)
	require.NoError(t, err)

	stored, err := env.store.Accounts().GetByID(ctx, acct.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.RefreshToken)
	require.Equal(t, pair.RefreshToken, *stored.RefreshToken)
	require.NotNil(t, stored.RefreshTokenExpiry)
	require.True(t, stored.RefreshTokenExpiry.After(time.Now()))
}

func TestIssuePairOverwritesPriorToken(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	acct := registerConfirmed(t, env)

	first, err := env.tokens.IssuePair(ctx, acct)
	require.NoError(t, err)
	second, err := env.tokens.IssuePair(ctx, acct)
	require.NoError(t, err)
	require.NotEqual(t, first.RefreshToken, second.RefreshToken)

	stored, err := env.store.Accounts().GetByID(ctx, acct.ID)
	require.NoError(t, err)
	require.Equal(t, second.RefreshToken, *stored.RefreshToken)
}

func TestIssuePairCarriesLockoutClaim(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	acct := registerConfirmed(t, env)

	until := time.Now().UTC().Add(30 * time.Minute).Truncate(time.Second)
	require.NoError(t, env.store.Accounts().UpdateLockout(ctx, acct.ID, true, &until))

	acct, err := env.store.Accounts().GetByID(ctx, acct.ID)
	require.NoError(t, err)
	require.True(t, acct.IsLocked())

	pair, err := env.tokens.IssuePair(ctx, acct)
	require.NoError(t, err)

	claims, err := env.signer.Verify(pair.AccessToken)
	require.NoError(t, err)
	require.NotNil(t, claims.LockoutUntil)
	require.WithinDuration(t, until, claims.LockoutUntil.Time, time.Second)
}

func TestRotatePair(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	acct := registerConfirmed(t, env)

	t.Run("no active token", func(t *testing.T) {
		_, err := env.tokens.RotatePair(ctx, acct, "anything")
		require.Equal(t, domain.KindUnauthorized, domain.KindOf(err))
	})

	pair, err := env.tokens.IssuePair(ctx, acct)
	require.NoError(t, err)
	acct, err = env.store.Accounts().GetByID(ctx, acct.ID)
	require.NoError(t, err)

	t.Run("mismatched token", func(t *testing.T) {
		_, err := env.tokens.RotatePair(ctx, acct, "not-the-token")
		require.Equal(t, domain.KindUnauthorized, domain.KindOf(err))
	})

	t.Run("expired token", func(t *testing.T) {
		past := time.Now().UTC().Add(-time.Minute)
		require.NoError(t, env.store.Accounts().UpdateRefreshToken(ctx, acct.ID, pair.RefreshToken, past))
		expired, err := env.store.Accounts().GetByID(ctx, acct.ID)
		require.NoError(t, err)

		_, err = env.tokens.RotatePair(ctx, expired, pair.RefreshToken)
		require.Equal(t, domain.KindUnauthorized, domain.KindOf(err))
	})

	t.Run("valid token rotates", func(t *testing.T) {
		future := time.Now().UTC().Add(time.Hour)
		require.NoError(t, env.store.Accounts().UpdateRefreshToken(ctx, acct.ID, pair.RefreshToken, future))
		current, err := env.store.Accounts().GetByID(ctx, acct.ID)
		require.NoError(t, err)

		rotated, err := env.tokens.RotatePair(ctx, current, pair.RefreshToken)
		require.NoError(t, err)
		require.NotEqual(t, pair.RefreshToken, rotated.RefreshToken)
		require.NotEmpty(t, rotated.AccessToken)
	})
}
