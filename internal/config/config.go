package config

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds application level configuration loaded from defaults, an
// optional config file, environment variables and flags.
type Config struct {
	RunAddress      string
	DatabaseURI     string
	OperatorKeyHash string
	ShutdownTimeout time.Duration
	LogLevel        slog.Level

	APIBaseURL     string
	AuthType       string
	RequestTimeout time.Duration

	BusinessName          string
	StampsPerCard         int
	DefaultCouponID       int64
	DefaultCouponName     string
	AllowDuplicateCoupons bool

	StampEmoji     string
	EmptySlotEmoji string
}

const (
	defaultRunAddress      = ":8080"
	defaultAuthType        = "U"
	defaultBusinessName    = "Your Business"
	defaultStampsPerCard   = 4
	defaultCouponID        = 230
	defaultCouponName      = "Reward Coupon"
	defaultAllowDuplicates = true
	defaultStampEmoji      = "🍩"
	defaultEmptySlotEmoji  = "⭕"
	defaultRequestTimeout  = 10 * time.Second
	defaultShutdownTimeout = 10 * time.Second
	defaultLogLevel        = slog.LevelInfo
	configFileEnv          = "CONFIG_FILE"
	configFileFlag         = "c"
)

// Load parses configuration from the process arguments and environment.
func Load() (*Config, error) {
	return load(os.Args[1:], os.LookupEnv)
}

type envLookup func(string) (string, bool)

func defaults() *Config {
	return &Config{
		RunAddress:            defaultRunAddress,
		ShutdownTimeout:       defaultShutdownTimeout,
		LogLevel:              defaultLogLevel,
		AuthType:              defaultAuthType,
		RequestTimeout:        defaultRequestTimeout,
		BusinessName:          defaultBusinessName,
		StampsPerCard:         defaultStampsPerCard,
		DefaultCouponID:       defaultCouponID,
		DefaultCouponName:     defaultCouponName,
		AllowDuplicateCoupons: defaultAllowDuplicates,
		StampEmoji:            defaultStampEmoji,
		EmptySlotEmoji:        defaultEmptySlotEmoji,
	}
}

func load(args []string, lookup envLookup) (*Config, error) {
	cfg := defaults()

	path := getString(lookup, configFileEnv, "")
	if p, ok := configPathFromArgs(args); ok {
		path = p
	}
	if path != "" {
		if err := applyFile(cfg, path); err != nil {
			return nil, err
		}
	}

	applyEnv(cfg, lookup)

	fs := flag.NewFlagSet("stampcard", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	var (
		configPath         = path
		requestTimeoutStr  = cfg.RequestTimeout.String()
		shutdownTimeoutStr = cfg.ShutdownTimeout.String()
		logLevelStr        = cfg.LogLevel.String()
	)

	fs.StringVar(&configPath, configFileFlag, configPath, "Path to YAML or JSON config file")
	fs.StringVar(&cfg.RunAddress, "a", cfg.RunAddress, "HTTP server listen address")
	fs.StringVar(&cfg.DatabaseURI, "d", cfg.DatabaseURI, "PostgreSQL DSN for the activity journal")
	fs.StringVar(&cfg.APIBaseURL, "r", cfg.APIBaseURL, "Loyalty API base URL")
	fs.StringVar(&cfg.AuthType, "auth-type", cfg.AuthType, "Loyalty API auth type discriminator")
	fs.StringVar(&cfg.BusinessName, "business", cfg.BusinessName, "Business name shown in settings")
	fs.IntVar(&cfg.StampsPerCard, "stamps", cfg.StampsPerCard, "Stamps needed to complete a card")
	fs.Int64Var(&cfg.DefaultCouponID, "coupon", cfg.DefaultCouponID, "Default reward coupon id")
	fs.BoolVar(&cfg.AllowDuplicateCoupons, "allow-duplicates", cfg.AllowDuplicateCoupons, "Allow duplicate coupon instances per member")
	fs.StringVar(&requestTimeoutStr, "request-timeout", requestTimeoutStr, "Loyalty API request timeout")
	fs.StringVar(&shutdownTimeoutStr, "shutdown-timeout", shutdownTimeoutStr, "Graceful shutdown timeout")
	fs.StringVar(&logLevelStr, "log-level", logLevelStr, "Log level: debug, info, warn, error")

	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("parse flags: %w", err)
	}

	var err error

	if cfg.RequestTimeout, err = time.ParseDuration(requestTimeoutStr); err != nil {
		return nil, fmt.Errorf("invalid request timeout: %w", err)
	}

	if cfg.ShutdownTimeout, err = time.ParseDuration(shutdownTimeoutStr); err != nil {
		return nil, fmt.Errorf("invalid shutdown timeout: %w", err)
	}

	if err := cfg.LogLevel.UnmarshalText([]byte(logLevelStr)); err != nil {
		return nil, fmt.Errorf("invalid log level: %w", err)
	}

	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = defaultRequestTimeout
	}

	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = defaultShutdownTimeout
	}

	if cfg.AuthType == "" {
		cfg.AuthType = defaultAuthType
	}

	cfg.APIBaseURL = strings.TrimSpace(cfg.APIBaseURL)
	if cfg.APIBaseURL == "" {
		return nil, fmt.Errorf("loyalty API base URL must be provided")
	}

	if cfg.StampsPerCard <= 0 {
		return nil, fmt.Errorf("stamps per card must be positive, got %d", cfg.StampsPerCard)
	}

	if cfg.DefaultCouponID <= 0 {
		return nil, fmt.Errorf("default coupon id must be positive, got %d", cfg.DefaultCouponID)
	}

	return cfg, nil
}

func applyEnv(cfg *Config, lookup envLookup) {
	cfg.RunAddress = getString(lookup, "RUN_ADDRESS", cfg.RunAddress)
	cfg.DatabaseURI = getString(lookup, "DATABASE_URI", cfg.DatabaseURI)
	cfg.OperatorKeyHash = getString(lookup, "OPERATOR_KEY_HASH", cfg.OperatorKeyHash)
	cfg.ShutdownTimeout = getDuration(lookup, "SHUTDOWN_TIMEOUT", cfg.ShutdownTimeout)
	cfg.LogLevel = getLevel(lookup, "LOG_LEVEL", cfg.LogLevel)
	cfg.APIBaseURL = getString(lookup, "LOYALTY_API_URL", cfg.APIBaseURL)
	cfg.AuthType = getString(lookup, "LOYALTY_AUTH_TYPE", cfg.AuthType)
	cfg.RequestTimeout = getDuration(lookup, "REQUEST_TIMEOUT", cfg.RequestTimeout)
	cfg.BusinessName = getString(lookup, "BUSINESS_NAME", cfg.BusinessName)
	cfg.StampsPerCard = getInt(lookup, "STAMPS_PER_CARD", cfg.StampsPerCard)
	cfg.DefaultCouponID = getInt64(lookup, "DEFAULT_COUPON_ID", cfg.DefaultCouponID)
	cfg.DefaultCouponName = getString(lookup, "DEFAULT_COUPON_NAME", cfg.DefaultCouponName)
	cfg.AllowDuplicateCoupons = getBool(lookup, "ALLOW_DUPLICATE_COUPONS", cfg.AllowDuplicateCoupons)
	cfg.StampEmoji = getString(lookup, "STAMP_EMOJI", cfg.StampEmoji)
	cfg.EmptySlotEmoji = getString(lookup, "EMPTY_SLOT_EMOJI", cfg.EmptySlotEmoji)
}

// configPathFromArgs finds -c/--c before the full flag set is parsed, so the
// file can be applied underneath env and flag overrides.
func configPathFromArgs(args []string) (string, bool) {
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if arg == "--" {
			break
		}
		name := strings.TrimLeft(arg, "-")
		if name == arg || len(arg)-len(name) > 2 {
			continue
		}
		if value, ok := strings.CutPrefix(name, configFileFlag+"="); ok {
			return value, true
		}
		if name == configFileFlag && i+1 < len(args) {
			return args[i+1], true
		}
	}
	return "", false
}

func getString(lookup envLookup, key, def string) string {
	if v, ok := lookup(key); ok && v != "" {
		return v
	}
	return def
}

func getInt(lookup envLookup, key string, def int) int {
	if v, ok := lookup(key); ok && v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getInt64(lookup envLookup, key string, def int64) int64 {
	if v, ok := lookup(key); ok && v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return def
}

func getBool(lookup envLookup, key string, def bool) bool {
	if v, ok := lookup(key); ok && v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}

func getDuration(lookup envLookup, key string, def time.Duration) time.Duration {
	if v, ok := lookup(key); ok && v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func getLevel(lookup envLookup, key string, def slog.Level) slog.Level {
	if v, ok := lookup(key); ok && v != "" {
		var lvl slog.Level
		if err := lvl.UnmarshalText([]byte(v)); err == nil {
			return lvl
		}
	}
	return def
}
