package app

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	JWTIssuer           string        // Required: issuer claim for access tokens
	JWTAudience         string        // Required: audience claim for access tokens
	JWTSecret           string        // Required: HS256 signing secret
	AccessTokenTTL      time.Duration // Required: access token lifetime (set in minutes)
	RefreshTokenTTL     time.Duration // Required: refresh token lifetime (set in days)
	ProofSecret         string        // Optional: verification-proof HMAC key (default: JWTSecret)
	DatabaseFile        string        // Optional: path to SQLite database file (default: ./accountd.db)
	SMTPAddr            string        // Optional: SMTP host:port (default: localhost:25)
	SMTPSender          string        // Optional: sender address (default: noreply@localhost)
	Env                 string        // Environment (dev, staging, prod) (default: dev)
	LogLevel            string        // Log level (debug, info, warn, error) (default: info)
	LogFormat           string        // Log format (json, text) (default: json)
	Port                int           // HTTP server port (default: 8080)
	ShutdownGrace       time.Duration // Graceful shutdown timeout (default: 10s)
	SweepInterval       time.Duration // Housekeeping interval (default: 1h)
	VerificationCodeTTL time.Duration // Verification code lifetime (default: 24h)
}

// LoadConfig reads the environment. Missing or malformed required
// variables are an error so the process fails at startup rather than
// issuing tokens with surprise settings.
func LoadConfig() (Config, error) {
	cfg := Config{
		JWTIssuer:           os.Getenv("ACCOUNTD_JWT_ISSUER"),
		JWTAudience:         os.Getenv("ACCOUNTD_JWT_AUDIENCE"),
		JWTSecret:           os.Getenv("ACCOUNTD_JWT_SECRET"),
		ProofSecret:         os.Getenv("ACCOUNTD_PROOF_SECRET"),
		DatabaseFile:        getEnvOrDefault("ACCOUNTD_DATABASE_FILE", "accountd.db"),
		SMTPAddr:            getEnvOrDefault("ACCOUNTD_SMTP_ADDR", "localhost:25"),
		SMTPSender:          getEnvOrDefault("ACCOUNTD_SMTP_SENDER", "noreply@localhost"),
		Env:                 getEnvOrDefault("ENV", "dev"),
		LogLevel:            getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:           getEnvOrDefault("LOG_FORMAT", "json"),
		Port:                getEnvIntOrDefault("PORT", 8080),
		ShutdownGrace:       getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
		SweepInterval:       getEnvDurationOrDefault("HOUSEKEEPING_INTERVAL", time.Hour),
		VerificationCodeTTL: getEnvDurationOrDefault("ACCOUNTD_CODE_TTL", 24*time.Hour),
	}

	for name, val := range map[string]string{
		"ACCOUNTD_JWT_ISSUER":   cfg.JWTIssuer,
		"ACCOUNTD_JWT_AUDIENCE": cfg.JWTAudience,
		"ACCOUNTD_JWT_SECRET":   cfg.JWTSecret,
	} {
		if val == "" {
			return Config{}, fmt.Errorf("%s is required", name)
		}
	}

	minutes, err := requirePositiveInt("ACCOUNTD_ACCESS_TOKEN_MINUTES")
	if err != nil {
		return Config{}, err
	}
	cfg.AccessTokenTTL = time.Duration(minutes) * time.Minute

	days, err := requirePositiveInt("ACCOUNTD_REFRESH_TOKEN_DAYS")
	if err != nil {
		return Config{}, err
	}
	cfg.RefreshTokenTTL = time.Duration(days) * 24 * time.Hour

	if cfg.ProofSecret == "" {
		cfg.ProofSecret = cfg.JWTSecret
	}

	return cfg, nil
}

func requirePositiveInt(key string) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return 0, fmt.Errorf("%s is required", key)
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("%s must be a positive integer, got %q", key, raw)
	}
	return n, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if intValue, err := strconv.Atoi(value); err == nil {
		return intValue
	}
	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}
	if minutes, err := strconv.Atoi(value); err == nil {
		return time.Duration(minutes) * time.Minute
	}
	return defaultValue
}
