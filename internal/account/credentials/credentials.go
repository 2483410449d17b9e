// Package credentials implements the password and proof subsystem:
// argon2id password hashing plus purpose-bound opaque proofs used to
// validate verification codes without trusting the client-visible code
// alone.
package credentials

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"

	"github.com/tidehub/accountd/internal/account/domain"
	"github.com/tidehub/accountd/pkg/cryptox"
)

// Manager issues and applies credentials. Proofs are HMAC-SHA256 over
// the (account id, email, purpose) triple keyed by the proof secret, so
// a stored proof is only valid for the account and purpose it was
// issued for.
type Manager struct {
	proofKey []byte
}

// NewManager builds a Manager keyed with the given proof secret.
func NewManager(proofSecret string) (*Manager, error) {
	if proofSecret == "" {
		return nil, errors.New("credentials: proof secret must not be empty")
	}
	return &Manager{proofKey: []byte(proofSecret)}, nil
}

// HashPassword derives a PHC-encoded argon2id hash for storage.
func (m *Manager) HashPassword(password string) (string, error) {
	return cryptox.HashPassword(password)
}

// VerifyPassword checks a plaintext password against its stored hash.
// A wrong password surfaces as cryptox.ErrPasswordMismatch.
func (m *Manager) VerifyPassword(password, encodedHash string) error {
	return cryptox.VerifyPassword(password, encodedHash)
}

// IssueProof computes the opaque proof for an account and purpose.
func (m *Manager) IssueProof(account domain.Account, purpose domain.Purpose) string {
	mac := hmac.New(sha256.New, m.proofKey)
	mac.Write([]byte(account.ID))
	mac.Write([]byte{0})
	mac.Write([]byte(account.Email))
	mac.Write([]byte{0})
	mac.Write([]byte(purpose))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}

// ApplyProof recomputes the proof for the account and purpose and
// compares it in constant time against the stored value. The returned
// error is human readable and safe to surface to callers.
func (m *Manager) ApplyProof(account domain.Account, purpose domain.Purpose, proof string) error {
	stored, err := base64.RawURLEncoding.DecodeString(proof)
	if err != nil {
		return fmt.Errorf("proof is not a valid token for this account")
	}
	mac := hmac.New(sha256.New, m.proofKey)
	mac.Write([]byte(account.ID))
	mac.Write([]byte{0})
	mac.Write([]byte(account.Email))
	mac.Write([]byte{0})
	mac.Write([]byte(purpose))
	if !hmac.Equal(stored, mac.Sum(nil)) {
		return fmt.Errorf("proof does not match account %s for purpose %s", account.Email, purpose)
	}
	return nil
}
