package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/tidehub/accountd/internal/account/domain"
	"github.com/tidehub/accountd/internal/account/store"
	"github.com/tidehub/accountd/pkg/jwtx"
	"github.com/tidehub/accountd/pkg/slogx"
)

// TokenService issues access/refresh token pairs. Exactly one refresh
// token is active per account; issuing a new pair overwrites it.
type TokenService struct {
	Signer     *jwtx.HS256
	Store      store.Store
	Issuer     string
	Audience   string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

// IssuePair signs a fresh access token for the account and mints a new
// opaque refresh token, persisting the refresh token on the account row.
func (s *TokenService) IssuePair(ctx context.Context, account domain.Account) (domain.TokenPair, error) {
	now := time.Now().UTC()

	var lockout *time.Time
	if account.IsLocked() {
		lockout = account.LockoutEnd
	}

	claims := jwtx.NewAccessClaims(
		account.ID,
		account.Role.String(), account.Email, account.FirstName, account.LastName,
		lockout,
		s.AccessTTL,
		s.Issuer, s.Audience,
		now,
	)
	access, err := s.Signer.Sign(claims)
	if err != nil {
		return domain.TokenPair{}, err
	}

	refresh := uuid.NewString()
	expiry := now.Add(s.RefreshTTL)
	if err := s.Store.Accounts().UpdateRefreshToken(ctx, account.ID, refresh, expiry); err != nil {
		return domain.TokenPair{}, err
	}

	slogx.FromContext(ctx).Debug("issued token pair",
		slog.String("account_id", account.ID),
		slog.Time("refresh_expiry", expiry),
	)

	return domain.TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

// RotatePair validates the presented refresh token against the stored
// one and, when valid, issues a replacement pair. The presented token is
// single use: the stored token changes on every successful rotation.
func (s *TokenService) RotatePair(ctx context.Context, account domain.Account, presented string) (domain.TokenPair, error) {
	now := time.Now().UTC()

	if account.RefreshToken == nil || account.RefreshTokenExpiry == nil {
		return domain.TokenPair{}, domain.Unauthorizedf("no active refresh token")
	}
	if *account.RefreshToken != presented {
		slogx.FromContext(ctx).Info("refresh token mismatch", slog.String("account_id", account.ID))
		return domain.TokenPair{}, domain.Unauthorizedf("refresh token is invalid")
	}
	if !account.RefreshTokenExpiry.After(now) {
		return domain.TokenPair{}, domain.Unauthorizedf("refresh token has expired")
	}

	return s.IssuePair(ctx, account)
}

// Revoke drops the account's stored refresh token so future rotations
// fail until the account authenticates again.
func (s *TokenService) Revoke(ctx context.Context, accountID string) error {
	return s.Store.Accounts().ClearRefreshToken(ctx, accountID)
}
