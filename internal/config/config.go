package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/qistline/qistline/internal/wallet"
)

const (
	defaultAppName        = "Qistline"
	defaultAppEnv         = "development"
	defaultPort           = "8080"
	defaultLogLevel       = "info"
	defaultShutdownDelay  = 10 * time.Second
	defaultIdempotencyTTL = 24 * time.Hour
	defaultSnapshotTTL    = 5 * time.Minute
	defaultWithdrawPerMin = 5
	defaultPlatformAcct   = "platform:system"
)

// Config captures application runtime configuration loaded from environment variables.
type Config struct {
	AppName         string
	AppEnv          string
	Port            string
	LogLevel        string
	DatabaseURL     string
	RedisURL        string
	ShutdownPeriod  time.Duration
	IdempotencyTTL  time.Duration
	SnapshotTTL     time.Duration
	WithdrawPerMin  int
	PlatformAccount string
	Rates           wallet.Rates
}

// Load reads configuration values from the environment and populates a Config instance.
func Load() (Config, error) {
	cfg := Config{
		AppName:         getEnv("APP_NAME", defaultAppName),
		AppEnv:          getEnv("APP_ENV", defaultAppEnv),
		Port:            getEnv("PORT", defaultPort),
		LogLevel:        strings.ToLower(getEnv("LOG_LEVEL", defaultLogLevel)),
		DatabaseURL:     os.Getenv("DATABASE_URL"),
		RedisURL:        os.Getenv("REDIS_URL"),
		ShutdownPeriod:  defaultShutdownDelay,
		IdempotencyTTL:  defaultIdempotencyTTL,
		SnapshotTTL:     defaultSnapshotTTL,
		WithdrawPerMin:  defaultWithdrawPerMin,
		PlatformAccount: getEnv("PLATFORM_ACCOUNT_ID", defaultPlatformAcct),
		Rates:           wallet.DefaultRates(),
	}

	if v := os.Getenv("SHUTDOWN_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid SHUTDOWN_TIMEOUT: %w", err)
		}
		cfg.ShutdownPeriod = d
	}

	if v := os.Getenv("IDEMPOTENCY_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid IDEMPOTENCY_TTL: %w", err)
		}
		cfg.IdempotencyTTL = d
	}

	if v := os.Getenv("SNAPSHOT_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid SNAPSHOT_TTL: %w", err)
		}
		cfg.SnapshotTTL = d
	}

	if v := os.Getenv("WITHDRAW_RATE_PER_MIN"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid WITHDRAW_RATE_PER_MIN: %w", err)
		}
		cfg.WithdrawPerMin = n
	}

	// Settlement rates are basis points so balances stay exact integers.
	for _, knob := range []struct {
		env    string
		target *int64
	}{
		{"REFERRAL_LOCK_BPS", &cfg.Rates.LockBps},
		{"REFERRAL_RATE_BPS", &cfg.Rates.ReferralBps},
		{"PLATFORM_RATE_BPS", &cfg.Rates.PlatformBps},
		{"IN_APP_SPEND_BPS", &cfg.Rates.SpendBps},
		{"INSTALLMENT_LOCK_BPS", &cfg.Rates.InstallmentLockBps},
	} {
		v := os.Getenv(knob.env)
		if v == "" {
			continue
		}
		bps, err := strconv.ParseInt(v, 10, 64)
		if err != nil || bps < 0 || bps > 10_000 {
			return Config{}, fmt.Errorf("invalid %s: %q", knob.env, v)
		}
		*knob.target = bps
	}

	if !cfg.Dev() {
		if cfg.DatabaseURL == "" {
			return Config{}, fmt.Errorf("DATABASE_URL must be set when APP_ENV=%s", cfg.AppEnv)
		}
		if cfg.RedisURL == "" {
			return Config{}, fmt.Errorf("REDIS_URL must be set when APP_ENV=%s", cfg.AppEnv)
		}
	}

	return cfg, nil
}

// Dev reports whether the app runs in a development environment, where the
// in-memory stores may stand in for Postgres and Redis.
func (c Config) Dev() bool {
	switch strings.ToLower(c.AppEnv) {
	case "dev", "development", "local":
		return true
	default:
		return false
	}
}

// Address returns the listen address in the format Fiber expects.
func (c Config) Address() string {
	if strings.HasPrefix(c.Port, ":") {
		return c.Port
	}
	return fmt.Sprintf(":%s", c.Port)
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
