package domain

import (
	"strings"
	"time"
)

// Role enumerates the roles an account may hold.
type Role string

const (
	RoleSuperAdmin Role = "superadmin"
	RoleAdmin      Role = "admin"
)

// ParseRole maps a case-insensitive role name onto a Role.
func ParseRole(s string) (Role, bool) {
	switch Role(strings.ToLower(strings.TrimSpace(s))) {
	case RoleSuperAdmin:
		return RoleSuperAdmin, true
	case RoleAdmin:
		return RoleAdmin, true
	default:
		return "", false
	}
}

func (r Role) String() string { return string(r) }

type Account struct {
	ID           string
	Email        string // unique, stored lower-cased
	PasswordHash string // argon2id encoded, never exposed
	FirstName    string
	LastName     string
	Role         Role

	EmailConfirmed bool

	// Lockout state: the account is locked while LockoutEnabled is set
	// and LockoutEnd lies in the future.
	LockoutEnabled bool
	LockoutEnd     *time.Time

	// Single active refresh token per account; Expiry is always set
	// when RefreshToken is.
	RefreshToken       *string
	RefreshTokenExpiry *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsLocked reports whether the account is currently locked out.
func (a Account) IsLocked() bool {
	return a.LockoutEnabled && a.LockoutEnd != nil && a.LockoutEnd.After(time.Now().UTC())
}

// DisplayName joins the name parts for notification templates.
func (a Account) DisplayName() string {
	return strings.TrimSpace(a.FirstName + " " + a.LastName)
}

// NormalizeEmail lower-cases and trims an email for the unique-email
// invariant. Every store lookup and insert goes through this.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Profile is the public projection of an account; no credential or
// refresh-token fields ever appear here.
type Profile struct {
	ID             string    `json:"id"`
	Email          string    `json:"email"`
	FirstName      string    `json:"first_name"`
	LastName       string    `json:"last_name"`
	Role           Role      `json:"role"`
	EmailConfirmed bool      `json:"email_confirmed"`
	CreatedAt      time.Time `json:"created_at"`
}

// ProfileOf projects an account into its public view.
func ProfileOf(a Account) Profile {
	return Profile{
		ID:             a.ID,
		Email:          a.Email,
		FirstName:      a.FirstName,
		LastName:       a.LastName,
		Role:           a.Role,
		EmailConfirmed: a.EmailConfirmed,
		CreatedAt:      a.CreatedAt,
	}
}
