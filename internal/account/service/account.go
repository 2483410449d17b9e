package service

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"

	"github.com/tidehub/accountd/internal/account/credentials"
	"github.com/tidehub/accountd/internal/account/domain"
	"github.com/tidehub/accountd/internal/account/store"
	"github.com/tidehub/accountd/pkg/cryptox"
	"github.com/tidehub/accountd/pkg/idx"
	"github.com/tidehub/accountd/pkg/slogx"
)

// RegisterInput is the payload accepted by Register.
type RegisterInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
	Role      string
}

// Validate checks the registration payload. All violations are
// reported together rather than first-failure-wins.
func (in RegisterInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.Email, validation.Required, is.Email),
		validation.Field(&in.Password, validation.Required, validation.Length(8, 128)),
		validation.Field(&in.FirstName, validation.Required, validation.Length(1, 200)),
		validation.Field(&in.LastName, validation.Required, validation.Length(1, 200)),
		validation.Field(&in.Role, validation.Required, validation.By(validRole)),
	)
}

func validRole(value any) error {
	s, _ := value.(string)
	if _, ok := domain.ParseRole(s); !ok {
		return errors.New("must be a known role")
	}
	return nil
}

// AccountService owns the account lifecycle: registration through
// deletion. Token issuance is delegated to Tokens.
type AccountService struct {
	Store       store.Store
	Credentials *credentials.Manager
	Tokens      *TokenService
}

// Register creates a new account. A confirmed account already holding
// the email is a hard conflict; a stale unconfirmed account is replaced
// so an abandoned sign-up never blocks the address forever.
func (s *AccountService) Register(ctx context.Context, in RegisterInput) (domain.Account, error) {
	if err := in.Validate(); err != nil {
		return domain.Account{}, domain.InvalidDataf("%s", joinViolations(err))
	}

	email := domain.NormalizeEmail(in.Email)
	role, _ := domain.ParseRole(in.Role)

	existing, err := s.Store.Accounts().GetByEmail(ctx, email)
	switch {
	case err == nil && existing.EmailConfirmed:
		return domain.Account{}, domain.InvalidDataf("user already exists")
	case err == nil:
		if err := s.Store.Accounts().Delete(ctx, existing.ID); err != nil {
			return domain.Account{}, domain.InvalidDataf("failed to replace stale registration: %v", err)
		}
		slogx.FromContext(ctx).Info("stale unconfirmed account replaced",
			slog.String("account_id", existing.ID),
		)
	case !errors.Is(err, store.ErrNotFound):
		return domain.Account{}, err
	}

	hash, err := s.Credentials.HashPassword(in.Password)
	if err != nil {
		return domain.Account{}, domain.InvalidDataf("failed to create user: %v", err)
	}

	now := time.Now().UTC()
	account := domain.Account{
		ID:           idx.New().String(),
		Email:        email,
		PasswordHash: hash,
		FirstName:    strings.TrimSpace(in.FirstName),
		LastName:     strings.TrimSpace(in.LastName),
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.Store.Accounts().Create(ctx, account); err != nil {
		return domain.Account{}, domain.InvalidDataf("failed to create user: %v", err)
	}
	if err := s.Store.Accounts().UpdateRole(ctx, account.ID, role); err != nil {
		return domain.Account{}, domain.InvalidDataf("failed to assign role: %v", err)
	}

	slogx.FromContext(ctx).Info("account registered",
		slog.String("account_id", account.ID),
		slog.String("role", role.String()),
	)
	return account, nil
}

// Authenticate verifies the credentials and issues a token pair. The
// remember flag is transport-level concern and does not change token
// semantics.
func (s *AccountService) Authenticate(ctx context.Context, email, password string) (domain.TokenPair, error) {
	email = domain.NormalizeEmail(email)

	account, err := s.Store.Accounts().GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.TokenPair{}, domain.NotFoundf("no account for %s", email)
		}
		return domain.TokenPair{}, err
	}

	if !account.EmailConfirmed {
		return domain.TokenPair{}, domain.InvalidDataf("email is not confirmed")
	}
	if err := s.Credentials.VerifyPassword(password, account.PasswordHash); err != nil {
		if errors.Is(err, cryptox.ErrPasswordMismatch) {
			slogx.FromContext(ctx).Info("authentication failed", slog.String("account_id", account.ID))
			return domain.TokenPair{}, domain.InvalidDataf("password is incorrect")
		}
		return domain.TokenPair{}, err
	}

	return s.Tokens.IssuePair(ctx, account)
}

// RefreshTokens rotates the account's refresh token.
func (s *AccountService) RefreshTokens(ctx context.Context, accountID, presented string) (domain.TokenPair, error) {
	account, err := s.Store.Accounts().GetByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.TokenPair{}, domain.NotFoundf("account %s not found", accountID)
		}
		return domain.TokenPair{}, err
	}
	return s.Tokens.RotatePair(ctx, account, presented)
}

// SignOut revokes the account's refresh token.
func (s *AccountService) SignOut(ctx context.Context, accountID string) error {
	return s.Tokens.Revoke(ctx, accountID)
}

// DeleteAccount removes the account after re-verifying its password.
// Verification tokens are removed with it by the schema.
func (s *AccountService) DeleteAccount(ctx context.Context, accountID, password string) error {
	account, err := s.Store.Accounts().GetByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.NotFoundf("account %s not found", accountID)
		}
		return err
	}

	if err := s.Credentials.VerifyPassword(password, account.PasswordHash); err != nil {
		if errors.Is(err, cryptox.ErrPasswordMismatch) {
			return domain.InvalidDataf("password is incorrect")
		}
		return err
	}

	if err := s.Store.Accounts().Delete(ctx, accountID); err != nil {
		return err
	}
	slogx.FromContext(ctx).Info("account deleted", slog.String("account_id", accountID))
	return nil
}

// GetAccount returns the public projection of an account.
func (s *AccountService) GetAccount(ctx context.Context, accountID string) (domain.Profile, error) {
	account, err := s.Store.Accounts().GetByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Profile{}, domain.NotFoundf("account %s not found", accountID)
		}
		return domain.Profile{}, err
	}
	return domain.ProfileOf(account), nil
}

// joinViolations flattens ozzo-validation's per-field error map into a
// single space-joined sentence, ordered by field name for stable output.
func joinViolations(err error) string {
	var verrs validation.Errors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	fields := make([]string, 0, len(verrs))
	for f := range verrs {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, f+" "+verrs[f].Error()+".")
	}
	return strings.Join(parts, " ")
}
