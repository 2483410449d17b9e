package domain

import (
	"strings"
	"time"
)

// TokenPair is what a successful authentication or rotation returns:
// a signed access token plus the opaque refresh token. It is transient
// and never persisted as an aggregate.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// Purpose enumerates why a verification token exists.
type Purpose string

const (
	PurposePasswordReset  Purpose = "password_reset"
	PurposeEmailConfirm   Purpose = "email_confirm"
	PurposeSignUp         Purpose = "sign_up"
	PurposeUnsubscribeSMS Purpose = "unsubscribe_sms"
)

// ParsePurpose maps a case-insensitive purpose name onto a Purpose.
func ParsePurpose(s string) (Purpose, bool) {
	switch Purpose(strings.ToLower(strings.TrimSpace(s))) {
	case PurposePasswordReset:
		return PurposePasswordReset, true
	case PurposeEmailConfirm:
		return PurposeEmailConfirm, true
	case PurposeSignUp:
		return PurposeSignUp, true
	case PurposeUnsubscribeSMS:
		return PurposeUnsubscribeSMS, true
	default:
		return "", false
	}
}

func (p Purpose) String() string { return string(p) }

// VerificationToken pairs a short human-facing code with the opaque
// proof value actually checked by the credentials subsystem. Tokens are
// owned by their account and cascade with it. At most one active token
// exists per (account, purpose); issuing a new one supersedes any prior
// token of that purpose. Tokens are created and deleted, never updated.
type VerificationToken struct {
	ID        string
	AccountID string
	Purpose   Purpose
	Code      string // e.g. "4829"
	Proof     string // opaque, purpose-bound
	CreatedAt time.Time
}
