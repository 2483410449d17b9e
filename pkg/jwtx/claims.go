// Package jwtx signs and verifies the service's HS256 access tokens.
package jwtx

import (
	"crypto/rand"
	"encoding/base64"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims are the access-token claims. Changes here should stay additive
// so previously issued tokens keep verifying.
type Claims struct {
	jwt.RegisteredClaims

	// Role of the account ("superadmin", "admin").
	Role string `json:"role,omitempty"`

	// Email the account authenticated with.
	Email string `json:"email,omitempty"`

	// Display name parts, carried so downstream services can render
	// the user without an extra lookup.
	GivenName  string `json:"given_name,omitempty"`
	FamilyName string `json:"family_name,omitempty"`

	// LockoutUntil is set only while the account is locked out. It lets
	// downstream authorization react to a lockout without a second
	// store lookup.
	LockoutUntil *jwt.NumericDate `json:"lockout_until,omitempty"`
}

// NewAccessClaims builds minimally-correct claims for an access token.
// lockoutUntil may be nil when the account is not currently locked.
func NewAccessClaims(
	subject string,
	role, email, givenName, familyName string,
	lockoutUntil *time.Time,
	ttl time.Duration,
	issuer, audience string,
	now time.Time,
) Claims {
	c := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   subject,
			Audience:  jwt.ClaimStrings{audience},
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        NewJTI(),
		},
		Role:       role,
		Email:      email,
		GivenName:  givenName,
		FamilyName: familyName,
	}
	if lockoutUntil != nil {
		c.LockoutUntil = jwt.NewNumericDate(*lockoutUntil)
	}
	return c
}

// NewJTI returns a URL-safe random identifier for the "jti" claim.
func NewJTI() string {
	var b [20]byte
	_, _ = rand.Read(b[:])
	return base64.RawURLEncoding.EncodeToString(b[:])
}
