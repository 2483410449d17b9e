package credentials

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tidehub/accountd/internal/account/domain"
	"github.com/tidehub/accountd/pkg/cryptox"
)

func TestNewManagerRequiresSecret(t *testing.T) {
	_, err := NewManager("")
	require.Error(t, err)
}

func TestPasswordRoundTrip(t *testing.T) {
	m, err := NewManager("proof-secret")
	require.NoError(t, err)

	hash, err := m.HashPassword("hunter2hunter2")
	require.NoError(t, err)

	require.NoError(t, m.VerifyPassword("hunter2hunter2", hash))
	require.ErrorIs(t, m.VerifyPassword("wrong", hash), cryptox.ErrPasswordMismatch)
}

func TestProofRoundTrip(t *testing.T) {
	m, err := NewManager("proof-secret")
	require.NoError(t, err)

	acct := domain.Account{ID: "01ABC", Email: "jo@example.com"}
	proof := m.IssueProof(acct, domain.PurposeEmailConfirm)
	require.NotEmpty(t, proof)

	require.NoError(t, m.ApplyProof(acct, domain.PurposeEmailConfirm, proof))
}

func TestProofIsBoundToAccountAndPurpose(t *testing.T) {
	m, err := NewManager("proof-secret")
	require.NoError(t, err)

	acct := domain.Account{ID: "01ABC", Email: "jo@example.com"}
	proof := m.IssueProof(acct, domain.PurposeEmailConfirm)

	other := domain.Account{ID: "01DEF", Email: "sam@example.com"}
	require.Error(t, m.ApplyProof(other, domain.PurposeEmailConfirm, proof))
	require.Error(t, m.ApplyProof(acct, domain.PurposePasswordReset, proof))
}

func TestProofRejectsDifferentKey(t *testing.T) {
	m1, err := NewManager("secret-one")
	require.NoError(t, err)
	m2, err := NewManager("secret-two")
	require.NoError(t, err)

	acct := domain.Account{ID: "01ABC", Email: "jo@example.com"}
	proof := m1.IssueProof(acct, domain.PurposeSignUp)
	require.Error(t, m2.ApplyProof(acct, domain.PurposeSignUp, proof))
}

func TestProofRejectsGarbage(t *testing.T) {
	m, err := NewManager("proof-secret")
	require.NoError(t, err)

	acct := domain.Account{ID: "01ABC", Email: "jo@example.com"}
	require.Error(t, m.ApplyProof(acct, domain.PurposeEmailConfirm, "!!not-base64!!"))
}
