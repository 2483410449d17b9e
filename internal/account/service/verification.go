package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/tidehub/accountd/internal/account/credentials"
	"github.com/tidehub/accountd/internal/account/domain"
	"github.com/tidehub/accountd/internal/account/mail"
	"github.com/tidehub/accountd/internal/account/store"
	"github.com/tidehub/accountd/pkg/cryptox"
	"github.com/tidehub/accountd/pkg/idx"
	"github.com/tidehub/accountd/pkg/slogx"
)

// CodeSource draws one verification code. The default is the uniform
// crypto/rand generator; tests substitute a deterministic source.
type CodeSource func() (string, error)

// VerificationService issues and consumes short digit codes. Each
// (account, purpose) pair has at most one live code: issuing a new one
// supersedes any prior code atomically.
type VerificationService struct {
	Store       store.Store
	Credentials *credentials.Manager
	Mail        mail.Dispatcher

	// Codes defaults to cryptox.GenerateDigitCode when nil.
	Codes CodeSource
}

func (s *VerificationService) codeSource() CodeSource {
	if s.Codes != nil {
		return s.Codes
	}
	return cryptox.GenerateDigitCode
}

// IssueCode creates a fresh verification code for the account owning
// the email, supersedes prior codes of the same purpose, and emails the
// code to the account. Returns the issued code.
func (s *VerificationService) IssueCode(ctx context.Context, email string, purpose domain.Purpose) (string, error) {
	email = domain.NormalizeEmail(email)

	account, err := s.Store.Accounts().GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return "", domain.NotFoundf("no account for %s", email)
		}
		return "", err
	}

	code, err := s.codeSource()()
	if err != nil {
		return "", err
	}

	token := domain.VerificationToken{
		ID:        idx.New().String(),
		AccountID: account.ID,
		Purpose:   purpose,
		Code:      code,
		Proof:     s.Credentials.IssueProof(account, purpose),
		CreatedAt: time.Now().UTC(),
	}

	// Insert before deleting the predecessors so a crash between the
	// two statements can never leave the account without a live code.
	// The transaction makes the supersession invisible to readers.
	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.VerificationTokens().Create(ctx, token); err != nil {
			return err
		}
		return tx.VerificationTokens().DeleteByAccountPurposeExcept(ctx, account.ID, purpose, token.ID)
	})
	if err != nil {
		return "", err
	}

	if err := s.Mail.SendDigitCode(ctx, mail.Message{
		RecipientName: account.DisplayName(),
		RecipientAddr: account.Email,
		Code:          code,
	}); err != nil {
		return "", err
	}

	slogx.FromContext(ctx).Info("verification code issued",
		slog.String("account_id", account.ID),
		slog.String("purpose", purpose.String()),
	)
	return code, nil
}

// ConsumeCode resolves a presented code globally by (code, purpose)
// and returns the account it belonged to. Anything other than exactly
// one match is rejected; two accounts holding the same live code is
// treated as invalid rather than picking one. Consumption is single
// use.
func (s *VerificationService) ConsumeCode(ctx context.Context, purpose domain.Purpose, code string) (domain.Account, error) {
	matches, err := s.Store.VerificationTokens().ListByCodePurpose(ctx, code, purpose)
	if err != nil {
		return domain.Account{}, err
	}
	if len(matches) != 1 {
		return domain.Account{}, domain.InvalidDataf("this code is invalid, please request a new one")
	}
	token := matches[0]

	var account domain.Account
	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		account, err = tx.Accounts().GetByID(ctx, token.AccountID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return domain.InvalidDataf("this code is invalid, please request a new one")
			}
			return err
		}

		if purpose == domain.PurposeEmailConfirm {
			if err := s.Credentials.ApplyProof(account, purpose, token.Proof); err != nil {
				return domain.InvalidDataf("failed to confirm email: %v", err)
			}
			if err := tx.Accounts().SetEmailConfirmed(ctx, account.ID); err != nil {
				return err
			}
			account.EmailConfirmed = true
		}

		return tx.VerificationTokens().Delete(ctx, token.ID)
	})
	if err != nil {
		return domain.Account{}, err
	}
	return account, nil
}
