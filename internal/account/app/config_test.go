package app

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("ACCOUNTD_JWT_ISSUER", "accountd-test")
	t.Setenv("ACCOUNTD_JWT_AUDIENCE", "accountd-clients")
	t.Setenv("ACCOUNTD_JWT_SECRET", "test-secret")
	t.Setenv("ACCOUNTD_ACCESS_TOKEN_MINUTES", "15")
	t.Setenv("ACCOUNTD_REFRESH_TOKEN_DAYS", "7")
}

func TestLoadConfigDefaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := LoadConfig()
	require.NoError(t, err)

	require.Equal(t, "accountd-test", cfg.JWTIssuer)
	require.Equal(t, 15*time.Minute, cfg.AccessTokenTTL)
	require.Equal(t, 7*24*time.Hour, cfg.RefreshTokenTTL)
	require.Equal(t, "accountd.db", cfg.DatabaseFile)
	require.Equal(t, 8080, cfg.Port)
	require.Equal(t, "json", cfg.LogFormat)
	require.Equal(t, 10*time.Second, cfg.ShutdownGrace)
	require.Equal(t, time.Hour, cfg.SweepInterval)
	require.Equal(t, 24*time.Hour, cfg.VerificationCodeTTL)

	// proof secret falls back to the JWT secret
	require.Equal(t, cfg.JWTSecret, cfg.ProofSecret)
}

func TestLoadConfigRequiredVars(t *testing.T) {
	required := []string{
		"ACCOUNTD_JWT_ISSUER",
		"ACCOUNTD_JWT_AUDIENCE",
		"ACCOUNTD_JWT_SECRET",
		"ACCOUNTD_ACCESS_TOKEN_MINUTES",
		"ACCOUNTD_REFRESH_TOKEN_DAYS",
	}

	for _, missing := range required {
		t.Run(missing, func(t *testing.T) {
			setRequiredEnv(t)
			t.Setenv(missing, "")

			_, err := LoadConfig()
			require.Error(t, err)
			require.Contains(t, err.Error(), missing)
		})
	}
}

func TestLoadConfigRejectsBadLifetimes(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("ACCOUNTD_ACCESS_TOKEN_MINUTES", "zero")
	_, err := LoadConfig()
	require.Error(t, err)

	setRequiredEnv(t)
	t.Setenv("ACCOUNTD_REFRESH_TOKEN_DAYS", "-1")
	_, err = LoadConfig()
	require.Error(t, err)
}

func TestLoadConfigOverrides(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("ACCOUNTD_PROOF_SECRET", "separate-proof-key")
	t.Setenv("ACCOUNTD_DATABASE_FILE", "/tmp/accounts.db")
	t.Setenv("PORT", "9090")
	t.Setenv("HOUSEKEEPING_INTERVAL", "30m")
	t.Setenv("ACCOUNTD_CODE_TTL", "2h")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	require.Equal(t, "separate-proof-key", cfg.ProofSecret)
	require.Equal(t, "/tmp/accounts.db", cfg.DatabaseFile)
	require.Equal(t, 9090, cfg.Port)
	require.Equal(t, 30*time.Minute, cfg.SweepInterval)
	require.Equal(t, 2*time.Hour, cfg.VerificationCodeTTL)
}
