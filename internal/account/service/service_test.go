package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/tidehub/accountd/internal/account/credentials"
	"github.com/tidehub/accountd/internal/account/mail"
	"github.com/tidehub/accountd/internal/account/store"
	"github.com/tidehub/accountd/internal/account/store/drivers/sqlite"
	"github.com/tidehub/accountd/pkg/jwtx"
)

// stubDispatcher records every message instead of sending it.
type stubDispatcher struct {
	mu   sync.Mutex
	sent []mail.Message
	err  error
}

func (d *stubDispatcher) SendDigitCode(ctx context.Context, msg mail.Message) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.err != nil {
		return d.err
	}
	d.sent = append(d.sent, msg)
	return nil
}

func (d *stubDispatcher) SendDigitCodeBatch(ctx context.Context, msgs []mail.Message) error {
	for _, m := range msgs {
		if err := d.SendDigitCode(ctx, m); err != nil {
			return err
		}
	}
	return nil
}

func (d *stubDispatcher) last(t *testing.T) mail.Message {
	t.Helper()
	d.mu.Lock()
	defer d.mu.Unlock()
	require.NotEmpty(t, d.sent)
	return d.sent[len(d.sent)-1]
}

type testEnv struct {
	store    store.Store
	signer   *jwtx.HS256
	creds    *credentials.Manager
	mail     *stubDispatcher
	tokens   *TokenService
	accounts *AccountService
	codes    *VerificationService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.ApplyMigrations())

	signer, err := jwtx.NewHS256("test-secret-test-secret", "accountd-test", "accountd-clients")
	require.NoError(t, err)

	creds, err := credentials.NewManager("proof-secret")
	require.NoError(t, err)

	dispatcher := &stubDispatcher{}

	tokens := &TokenService{
		Signer:     signer,
		Store:      st,
		Issuer:     "accountd-test",
		Audience:   "accountd-clients",
		AccessTTL:  15 * time.Minute,
		RefreshTTL: 7 * 24 * time.Hour,
	}

	return &testEnv{
		store:  st,
		signer: signer,
		creds:  creds,
		mail:   dispatcher,
		tokens: tokens,
		accounts: &AccountService{
			Store:       st,
			Credentials: creds,
			Tokens:      tokens,
		},
		codes: &VerificationService{
			Store:       st,
			Credentials: creds,
			Mail:        dispatcher,
		},
	}
}

func validRegisterInput() RegisterInput {
	return RegisterInput{
		Email:     "jo@example.com",
		Password:  "correct horse battery",
		FirstName: "Jo",
		LastName:  "Citizen",
		Role:      "admin",
	}
}
