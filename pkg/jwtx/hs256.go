package jwtx

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrNoSecret    = errors.New("jwtx: signing secret must not be empty")
	ErrMalformed   = errors.New("jwtx: malformed token")
	ErrInvalidSig  = errors.New("jwtx: invalid signature")
	ErrIssuer      = errors.New("jwtx: issuer mismatch")
	ErrAudience    = errors.New("jwtx: audience mismatch")
	ErrExpired     = errors.New("jwtx: token expired")
	ErrNotYetValid = errors.New("jwtx: token not yet valid")
)

// Verifier validates a JWT in the primary mode: signature, issuer,
// audience and lifetime must all hold.
type Verifier interface {
	Verify(token string) (Claims, error)
}

// ExpiredVerifier validates everything except the lifetime. It exists
// only for token-refresh endpoints, where the caller presents an
// already-expired access token to identify itself; it must never guard
// resource access.
type ExpiredVerifier interface {
	VerifyExpired(token string) (Claims, error)
}

// HS256 signs and verifies tokens with a shared symmetric secret.
type HS256 struct {
	secret   []byte
	issuer   string
	audience string
	leeway   time.Duration
}

// NewHS256 builds a signer/verifier bound to the configured issuer and
// audience. An empty secret is refused outright.
func NewHS256(secret, issuer, audience string) (*HS256, error) {
	if secret == "" {
		return nil, ErrNoSecret
	}
	return &HS256{
		secret:   []byte(secret),
		issuer:   issuer,
		audience: audience,
		leeway:   30 * time.Second,
	}, nil
}

// Sign produces a compact HS256 JWS for the claims.
func (h *HS256) Sign(c Claims) (string, error) {
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	return tok.SignedString(h.secret)
}

// Verify parses and fully validates a token: signature, issuer,
// audience, and lifetime.
func (h *HS256) Verify(token string) (Claims, error) {
	return h.parse(token, false)
}

// VerifyExpired parses a token enforcing signature, issuer and audience
// but accepting an elapsed lifetime. See ExpiredVerifier.
func (h *HS256) VerifyExpired(token string) (Claims, error) {
	return h.parse(token, true)
}

func (h *HS256) parse(token string, allowExpired bool) (Claims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithLeeway(h.leeway),
	}
	if allowExpired {
		// Signature is still checked during parsing; claim checks run
		// by hand below so exp can be skipped.
		opts = append(opts, jwt.WithoutClaimsValidation())
	} else {
		opts = append(opts,
			jwt.WithIssuer(h.issuer),
			jwt.WithAudience(h.audience),
			jwt.WithExpirationRequired(),
		)
	}

	var claims Claims
	_, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		return h.secret, nil
	}, opts...)
	if err != nil {
		return Claims{}, mapParseError(err)
	}

	if allowExpired {
		if claims.Issuer != h.issuer {
			return Claims{}, ErrIssuer
		}
		if !containsAudience(claims.Audience, h.audience) {
			return Claims{}, ErrAudience
		}
		now := time.Now().UTC()
		if claims.NotBefore != nil && now.Before(claims.NotBefore.Add(-h.leeway)) {
			return Claims{}, ErrNotYetValid
		}
	}

	return claims, nil
}

func containsAudience(aud jwt.ClaimStrings, want string) bool {
	for _, a := range aud {
		if a == want {
			return true
		}
	}
	return false
}

func mapParseError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenMalformed):
		return ErrMalformed
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return ErrInvalidSig
	case errors.Is(err, jwt.ErrTokenExpired):
		return ErrExpired
	case errors.Is(err, jwt.ErrTokenNotValidYet):
		return ErrNotYetValid
	case errors.Is(err, jwt.ErrTokenInvalidIssuer):
		return ErrIssuer
	case errors.Is(err, jwt.ErrTokenInvalidAudience):
		return ErrAudience
	default:
		return err
	}
}
