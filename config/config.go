package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

// Config holds everything read from the environment at startup.
type Config struct {
	Port           string
	DSN            string
	RedisAddr      string
	AllowedOrigins string
	BodyLimitMB    int
	RateLimitMax   int
	RateLimitWin   time.Duration
	LogFormat      string // text | json
	LogLevel       slog.Level

	PaymentRetryLimit int
	OverpaymentPolicy string // carry | return
	LateFeeMode       string // flat | per_day
	LateFeeAmount     decimal.Decimal
	LateFeeGraceDays  int
	LateFeeCap        decimal.Decimal
	OverdueSweep      time.Duration
	ReportCacheTTL    time.Duration
}

// Load reads .env when present and then the process environment.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	cfg := Config{
		Port:              env("PORT", "3000"),
		DSN:               os.Getenv("DB_DSN"),
		RedisAddr:         os.Getenv("REDIS_ADDR"),
		AllowedOrigins:    env("ALLOWED_ORIGINS", "http://localhost:5173"),
		LogFormat:         env("LOG_FORMAT", "text"),
		OverpaymentPolicy: env("OVERPAYMENT_POLICY", "carry"),
		LateFeeMode:       env("LATE_FEE_MODE", "flat"),
	}
	if cfg.DSN == "" {
		cfg.DSN = fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable TimeZone=UTC",
			env("DB_HOST", "db"), os.Getenv("DB_USER"), os.Getenv("DB_PASSWORD"), os.Getenv("DB_NAME"), env("DB_PORT", "5432"))
	}

	var err error
	if cfg.BodyLimitMB, err = envInt("BODY_LIMIT_MB", 4); err != nil {
		return cfg, err
	}
	if cfg.RateLimitMax, err = envInt("RATE_LIMIT_MAX", 120); err != nil {
		return cfg, err
	}
	win, err := envInt("RATE_LIMIT_WINDOW_SECONDS", 60)
	if err != nil {
		return cfg, err
	}
	cfg.RateLimitWin = time.Duration(win) * time.Second

	if cfg.PaymentRetryLimit, err = envInt("PAYMENT_RETRY_LIMIT", 3); err != nil {
		return cfg, err
	}
	if cfg.LateFeeGraceDays, err = envInt("LATE_FEE_GRACE_DAYS", 0); err != nil {
		return cfg, err
	}
	if cfg.LateFeeAmount, err = envDecimal("LATE_FEE_AMOUNT", "0"); err != nil {
		return cfg, err
	}
	if cfg.LateFeeCap, err = envDecimal("LATE_FEE_CAP", "0"); err != nil {
		return cfg, err
	}
	sweep, err := envInt("OVERDUE_SWEEP_MINUTES", 0)
	if err != nil {
		return cfg, err
	}
	cfg.OverdueSweep = time.Duration(sweep) * time.Minute
	ttl, err := envInt("REPORT_CACHE_SECONDS", 60)
	if err != nil {
		return cfg, err
	}
	cfg.ReportCacheTTL = time.Duration(ttl) * time.Second

	if err := cfg.LogLevel.UnmarshalText([]byte(env("LOG_LEVEL", "info"))); err != nil {
		return cfg, fmt.Errorf("LOG_LEVEL: %w", err)
	}

	switch cfg.OverpaymentPolicy {
	case "carry", "return":
	default:
		return cfg, fmt.Errorf("OVERPAYMENT_POLICY must be carry or return, got %q", cfg.OverpaymentPolicy)
	}
	switch cfg.LateFeeMode {
	case "flat", "per_day":
	default:
		return cfg, fmt.Errorf("LATE_FEE_MODE must be flat or per_day, got %q", cfg.LateFeeMode)
	}
	if cfg.PaymentRetryLimit < 1 {
		return cfg, fmt.Errorf("PAYMENT_RETRY_LIMIT must be at least 1")
	}
	return cfg, nil
}

// Logger builds the process logger from LOG_FORMAT and LOG_LEVEL.
func (c Config) Logger() *slog.Logger {
	opts := &slog.HandlerOptions{Level: c.LogLevel}
	if strings.EqualFold(c.LogFormat, "json") {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}

func env(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) (int, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

func envDecimal(key, def string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(env(key, def))
	if err != nil {
		return decimal.Zero, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}
