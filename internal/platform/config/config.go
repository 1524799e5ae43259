package config

import (
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	defaultJWTSecret      = "a-very-secret-key-should-be-longer-and-random"
	defaultReceiptMaxSize = 5 * 1024 * 1024
)

// Config holds application configuration.
type Config struct {
	DatabaseURL       string
	Port              string
	IsProduction      bool
	EnableDBCheck     bool
	JWTSecret         string
	JWTExpiryDuration time.Duration
	JWTIssuer         string

	// ServiceRoleKey is the elevated credential accepted by the administrative endpoints.
	ServiceRoleKey string `mapstructure:"SERVICE_ROLE_KEY"`

	ReceiptStorageDir    string `mapstructure:"RECEIPT_STORAGE_DIR"`
	ReceiptPublicBaseURL string `mapstructure:"RECEIPT_PUBLIC_BASE_URL"`
	ReceiptMaxBytes      int64  `mapstructure:"RECEIPT_MAX_BYTES"`

	ProposalTTL                 time.Duration
	InviteCodeTTL               time.Duration
	AllowDirectFiscalYearDelete bool
	CORSAllowedOrigins          []string
	LoginRateLimit              string
	AdminRateLimit              string
	DatabaseSizeLimitMB         float64
	StorageSizeLimitMB          float64

	// External OAuth Providers
	GoogleClientID     string `mapstructure:"GOOGLE_CLIENT_ID"`
	GoogleClientSecret string `mapstructure:"GOOGLE_CLIENT_SECRET"`
	GoogleRedirectURL  string `mapstructure:"GOOGLE_REDIRECT_URL"`

	PosthogAPIKey   string `mapstructure:"POSTHOG_API_KEY"`
	PosthogEndpoint string `mapstructure:"POSTHOG_ENDPOINT"`
}

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	viper.SetDefault("PGSQL_URL", "")
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("IS_PRODUCTION", false)
	viper.SetDefault("ENABLE_DB_CHECK", false)
	viper.SetDefault("JWT_SECRET", defaultJWTSecret)
	viper.SetDefault("JWT_EXPIRY_DURATION", "1h")
	viper.SetDefault("JWT_ISSUER", "club-ledger")
	viper.SetDefault("SERVICE_ROLE_KEY", "")
	viper.SetDefault("RECEIPT_STORAGE_DIR", "./data/receipts")
	viper.SetDefault("RECEIPT_PUBLIC_BASE_URL", "http://localhost:8080/receipts")
	viper.SetDefault("RECEIPT_MAX_BYTES", defaultReceiptMaxSize)
	viper.SetDefault("PROPOSAL_TTL", "48h")
	viper.SetDefault("INVITE_CODE_TTL", "1h")
	viper.SetDefault("ALLOW_DIRECT_FISCAL_YEAR_DELETE", false)
	viper.SetDefault("CORS_ALLOWED_ORIGINS", "http://localhost:3000")
	viper.SetDefault("LOGIN_RATE_LIMIT", "5-M")
	viper.SetDefault("ADMIN_RATE_LIMIT", "30-M")
	viper.SetDefault("DATABASE_SIZE_LIMIT_MB", 500)
	viper.SetDefault("STORAGE_SIZE_LIMIT_MB", 1024)
	viper.SetDefault("GOOGLE_CLIENT_ID", "")
	viper.SetDefault("GOOGLE_CLIENT_SECRET", "")
	viper.SetDefault("GOOGLE_REDIRECT_URL", "")
	viper.SetDefault("POSTHOG_API_KEY", "")
	viper.SetDefault("POSTHOG_ENDPOINT", "https://eu.i.posthog.com")

	// Actual environment variables override .env values and defaults.
	viper.AutomaticEnv()

	cfg := &Config{}

	cfg.DatabaseURL = viper.GetString("PGSQL_URL")
	if cfg.DatabaseURL == "" {
		log.Println("Warning: PGSQL_URL environment variable not set.")
	}

	cfg.Port = viper.GetString("PORT")
	if cfg.Port == "" {
		cfg.Port = "8080"
		log.Printf("Warning: PORT environment variable not set. Defaulting to %s\n", cfg.Port)
	}

	cfg.JWTSecret = viper.GetString("JWT_SECRET")
	if cfg.JWTSecret == "" {
		cfg.JWTSecret = defaultJWTSecret // !! CHANGE IN PRODUCTION !!
		log.Println("Warning: JWT_SECRET environment variable not set. Using default insecure key.")
	}

	cfg.JWTExpiryDuration = durationOrDefault("JWT_EXPIRY_DURATION", time.Hour)
	cfg.JWTIssuer = viper.GetString("JWT_ISSUER")
	if cfg.JWTIssuer == "" {
		cfg.JWTIssuer = "club-ledger"
		log.Printf("Warning: JWT_ISSUER not set. Defaulting to %s.\n", cfg.JWTIssuer)
	}

	cfg.ServiceRoleKey = viper.GetString("SERVICE_ROLE_KEY")
	if cfg.ServiceRoleKey == "" {
		log.Println("Warning: SERVICE_ROLE_KEY not set. Administrative endpoints will refuse every request.")
	}

	cfg.ReceiptStorageDir = viper.GetString("RECEIPT_STORAGE_DIR")
	cfg.ReceiptPublicBaseURL = strings.TrimRight(viper.GetString("RECEIPT_PUBLIC_BASE_URL"), "/")
	cfg.ReceiptMaxBytes = viper.GetInt64("RECEIPT_MAX_BYTES")
	if cfg.ReceiptMaxBytes <= 0 {
		log.Printf("Warning: Invalid value for RECEIPT_MAX_BYTES (%d). Defaulting to %d.\n", cfg.ReceiptMaxBytes, defaultReceiptMaxSize)
		cfg.ReceiptMaxBytes = defaultReceiptMaxSize
	}

	cfg.ProposalTTL = durationOrDefault("PROPOSAL_TTL", 48*time.Hour)
	cfg.InviteCodeTTL = durationOrDefault("INVITE_CODE_TTL", time.Hour)
	cfg.AllowDirectFiscalYearDelete = viper.GetBool("ALLOW_DIRECT_FISCAL_YEAR_DELETE")
	cfg.CORSAllowedOrigins = splitList(viper.GetString("CORS_ALLOWED_ORIGINS"))
	cfg.LoginRateLimit = viper.GetString("LOGIN_RATE_LIMIT")
	cfg.AdminRateLimit = viper.GetString("ADMIN_RATE_LIMIT")
	cfg.DatabaseSizeLimitMB = viper.GetFloat64("DATABASE_SIZE_LIMIT_MB")
	cfg.StorageSizeLimitMB = viper.GetFloat64("STORAGE_SIZE_LIMIT_MB")

	cfg.GoogleClientID = viper.GetString("GOOGLE_CLIENT_ID")
	cfg.GoogleClientSecret = viper.GetString("GOOGLE_CLIENT_SECRET")
	cfg.GoogleRedirectURL = viper.GetString("GOOGLE_REDIRECT_URL")
	if cfg.GoogleClientID == "" {
		log.Println("Warning: GOOGLE_CLIENT_ID not set. Google sign-in will not function.")
	}

	cfg.PosthogAPIKey = viper.GetString("POSTHOG_API_KEY")
	cfg.PosthogEndpoint = viper.GetString("POSTHOG_ENDPOINT")

	cfg.IsProduction = viper.GetBool("IS_PRODUCTION")
	cfg.EnableDBCheck = viper.GetBool("ENABLE_DB_CHECK")

	return cfg, nil
}

// durationOrDefault parses a duration key, falling back with a warning when it is malformed.
func durationOrDefault(key string, fallback time.Duration) time.Duration {
	raw := viper.GetString(key)
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		if raw != "" {
			log.Printf("Warning: Invalid value for %s ('%s'). Defaulting to %s.\n", key, raw, fallback.String())
		}
		return fallback
	}
	return d
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
