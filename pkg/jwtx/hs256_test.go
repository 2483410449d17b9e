package jwtx

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

const (
	testIssuer   = "accountd-test"
	testAudience = "accountd-api"
	testSecret   = "0123456789abcdef0123456789abcdef"
)

func newTestHS256(t *testing.T) *HS256 {
	t.Helper()
	h, err := NewHS256(testSecret, testIssuer, testAudience)
	require.NoError(t, err)
	return h
}

func TestNewHS256RejectsEmptySecret(t *testing.T) {
	t.Parallel()

	_, err := NewHS256("", testIssuer, testAudience)
	require.ErrorIs(t, err, ErrNoSecret)
}

func TestSignAndVerifyRoundTrip(t *testing.T) {
	t.Parallel()

	h := newTestHS256(t)
	now := time.Now().UTC()

	claims := NewAccessClaims("acct-1", "admin", "a@x.com", "Ada", "Lovelace", nil,
		15*time.Minute, testIssuer, testAudience, now)

	token, err := h.Sign(claims)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	got, err := h.Verify(token)
	require.NoError(t, err)
	require.Equal(t, "acct-1", got.Subject)
	require.Equal(t, "admin", got.Role)
	require.Equal(t, "a@x.com", got.Email)
	require.Equal(t, "Ada", got.GivenName)
	require.Nil(t, got.LockoutUntil)
	require.NotEmpty(t, got.ID)
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	t.Parallel()

	h := newTestHS256(t)
	other, err := NewHS256("another-secret-entirely-0000000", testIssuer, testAudience)
	require.NoError(t, err)

	claims := NewAccessClaims("acct-1", "admin", "", "", "", nil,
		15*time.Minute, testIssuer, testAudience, time.Now().UTC())
	token, err := other.Sign(claims)
	require.NoError(t, err)

	_, err = h.Verify(token)
	require.ErrorIs(t, err, ErrInvalidSig)
}

func TestVerifyRejectsWrongIssuerAndAudience(t *testing.T) {
	t.Parallel()

	h := newTestHS256(t)
	now := time.Now().UTC()

	badIssuer := NewAccessClaims("acct-1", "admin", "", "", "", nil,
		15*time.Minute, "someone-else", testAudience, now)
	token, err := h.Sign(badIssuer)
	require.NoError(t, err)
	_, err = h.Verify(token)
	require.ErrorIs(t, err, ErrIssuer)

	badAudience := NewAccessClaims("acct-1", "admin", "", "", "", nil,
		15*time.Minute, testIssuer, "other-api", now)
	token, err = h.Sign(badAudience)
	require.NoError(t, err)
	_, err = h.Verify(token)
	require.ErrorIs(t, err, ErrAudience)
}

func TestVerifyRejectsExpiredButVerifyExpiredAccepts(t *testing.T) {
	t.Parallel()

	h := newTestHS256(t)
	issued := time.Now().UTC().Add(-2 * time.Hour)

	claims := NewAccessClaims("acct-1", "admin", "", "", "", nil,
		15*time.Minute, testIssuer, testAudience, issued)
	token, err := h.Sign(claims)
	require.NoError(t, err)

	_, err = h.Verify(token)
	require.ErrorIs(t, err, ErrExpired)

	got, err := h.VerifyExpired(token)
	require.NoError(t, err)
	require.Equal(t, "acct-1", got.Subject)
}

func TestVerifyExpiredStillEnforcesEverythingElse(t *testing.T) {
	t.Parallel()

	h := newTestHS256(t)
	issued := time.Now().UTC().Add(-2 * time.Hour)

	t.Run("signature", func(t *testing.T) {
		other, err := NewHS256("another-secret-entirely-0000000", testIssuer, testAudience)
		require.NoError(t, err)
		token, err := other.Sign(NewAccessClaims("acct-1", "admin", "", "", "", nil,
			15*time.Minute, testIssuer, testAudience, issued))
		require.NoError(t, err)

		_, err = h.VerifyExpired(token)
		require.ErrorIs(t, err, ErrInvalidSig)
	})

	t.Run("issuer", func(t *testing.T) {
		token, err := h.Sign(NewAccessClaims("acct-1", "admin", "", "", "", nil,
			15*time.Minute, "someone-else", testAudience, issued))
		require.NoError(t, err)

		_, err = h.VerifyExpired(token)
		require.ErrorIs(t, err, ErrIssuer)
	})

	t.Run("audience", func(t *testing.T) {
		token, err := h.Sign(NewAccessClaims("acct-1", "admin", "", "", "", nil,
			15*time.Minute, testIssuer, "other-api", issued))
		require.NoError(t, err)

		_, err = h.VerifyExpired(token)
		require.ErrorIs(t, err, ErrAudience)
	})

	t.Run("malformed", func(t *testing.T) {
		_, err := h.VerifyExpired("definitely.not.a.jwt")
		require.ErrorIs(t, err, ErrMalformed)
	})
}

func TestLockoutClaim(t *testing.T) {
	t.Parallel()

	h := newTestHS256(t)
	now := time.Now().UTC()
	until := now.Add(45 * time.Minute)

	claims := NewAccessClaims("acct-1", "admin", "", "", "", &until,
		15*time.Minute, testIssuer, testAudience, now)
	token, err := h.Sign(claims)
	require.NoError(t, err)

	got, err := h.Verify(token)
	require.NoError(t, err)
	require.NotNil(t, got.LockoutUntil)
	require.WithinDuration(t, until, got.LockoutUntil.Time, time.Second)
}
