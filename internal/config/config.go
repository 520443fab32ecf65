package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/ahmetcoskunkizilkaya/sphere-moderation/internal/moderation"
	"github.com/joho/godotenv"
)

type Config struct {
	// Database
	DatabaseURL string
	DBHost      string
	DBPort      string
	DBUser      string
	DBPassword  string
	DBName      string
	DBSSLMode   string

	// JWT issued by the sphere auth service; sub carries the wallet or account id
	JWTSecret string

	// Resolution thresholds
	MinVotesRequired      int
	RemovalThreshold      float64
	AIConfidenceThreshold float64
	VotingPeriod          time.Duration
	ResolutionPolicy      string

	// Feature flags
	EnableAIModeration    bool
	EnableCommunityVoting bool
	ForbidSelfReport      bool
	ForbidSelfVote        bool

	// AI provider
	OpenAIAPIKey string
	OpenAIAPIURL string
	OpenAIModel  string
	AITimeout    time.Duration

	ExpirySweepInterval time.Duration

	// Admin
	AdminIDs   string
	AdminToken string

	// Server
	Port        string
	CORSOrigins string

	// Logging
	LogLevel         string
	LogRetentionDays int

	SentryDSN string
	AppEnv    string
}

// Load reads the environment, after loading an optional .env file from the
// working directory.
func Load() *Config {
	if err := godotenv.Load(); err == nil {
		slog.Debug("loaded .env file")
	}

	return &Config{
		DatabaseURL: getEnv("DATABASE_URL", ""),
		DBHost:      getEnv("DB_HOST", "localhost"),
		DBPort:      getEnv("DB_PORT", "5432"),
		DBUser:      getEnv("DB_USER", "postgres"),
		DBPassword:  getEnv("DB_PASSWORD", ""),
		DBName:      getEnv("DB_NAME", "sphere_moderation"),
		DBSSLMode:   getEnv("DB_SSLMODE", "disable"),

		JWTSecret: getEnv("JWT_SECRET", ""),

		MinVotesRequired:      parseInt(getEnv("MIN_VOTES_REQUIRED", "5"), 5),
		RemovalThreshold:      parseFloat(getEnv("REMOVAL_THRESHOLD", "0.6"), 0.6),
		AIConfidenceThreshold: parseFloat(getEnv("AI_CONFIDENCE_THRESHOLD", "0.8"), 0.8),
		VotingPeriod:          parseDuration(getEnv("VOTING_PERIOD", "72h"), 72*time.Hour),
		ResolutionPolicy:      getEnv("RESOLUTION_POLICY", string(moderation.PolicySymmetric)),

		EnableAIModeration:    parseBool(getEnv("ENABLE_AI_MODERATION", "true"), true),
		EnableCommunityVoting: parseBool(getEnv("ENABLE_COMMUNITY_VOTING", "true"), true),
		ForbidSelfReport:      parseBool(getEnv("FORBID_SELF_REPORT", "true"), true),
		ForbidSelfVote:        parseBool(getEnv("FORBID_SELF_VOTE", "false"), false),

		OpenAIAPIKey: getEnv("OPENAI_API_KEY", ""),
		OpenAIAPIURL: getEnv("OPENAI_API_URL", "https://api.openai.com/v1/chat/completions"),
		OpenAIModel:  getEnv("OPENAI_MODEL", "gpt-4o-mini"),
		AITimeout:    parseDuration(getEnv("AI_TIMEOUT", "60s"), 60*time.Second),

		ExpirySweepInterval: parseDuration(getEnv("EXPIRY_SWEEP_INTERVAL", "5m"), 5*time.Minute),

		AdminIDs:   getEnv("ADMIN_IDS", ""),
		AdminToken: getEnv("ADMIN_TOKEN", ""),

		Port:        getEnv("PORT", "8080"),
		CORSOrigins: getEnv("CORS_ORIGINS", "*"),

		LogLevel:         getEnv("LOG_LEVEL", "info"),
		LogRetentionDays: parseInt(getEnv("LOG_RETENTION_DAYS", "30"), 30),

		SentryDSN: getEnv("SENTRY_DSN", ""),
		AppEnv:    getEnv("APP_ENV", "development"),
	}
}

func (c *Config) DSN() string {
	return "host=" + c.DBHost +
		" user=" + c.DBUser +
		" password=" + c.DBPassword +
		" dbname=" + c.DBName +
		" port=" + c.DBPort +
		" sslmode=" + c.DBSSLMode +
		" TimeZone=UTC"
}

// SQLitePath returns the database file named by a sqlite:// DATABASE_URL.
func (c *Config) SQLitePath() (string, bool) {
	path, ok := strings.CutPrefix(c.DatabaseURL, "sqlite://")
	if !ok || path == "" {
		return "", false
	}
	return path, true
}

// Thresholds builds the resolution thresholds and validates them.
func (c *Config) Thresholds() (moderation.Thresholds, error) {
	t := moderation.Thresholds{
		MinVotesRequired:      c.MinVotesRequired,
		RemovalThreshold:      c.RemovalThreshold,
		AIConfidenceThreshold: c.AIConfidenceThreshold,
		VotingPeriod:          c.VotingPeriod,
		Policy:                moderation.Policy(c.ResolutionPolicy),
	}
	if err := t.Validate(); err != nil {
		return moderation.Thresholds{}, err
	}
	return t, nil
}

func (c *Config) Features() moderation.Features {
	return moderation.Features{
		AIModeration:     c.EnableAIModeration,
		CommunityVoting:  c.EnableCommunityVoting,
		ForbidSelfReport: c.ForbidSelfReport,
		ForbidSelfVote:   c.ForbidSelfVote,
	}
}

// AdminIDList splits ADMIN_IDS on commas.
func (c *Config) AdminIDList() []string {
	var ids []string
	for _, id := range strings.Split(c.AdminIDs, ",") {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		return fallback
	}
	return d
}

func parseInt(s string, fallback int) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return fallback
	}
	return n
}

func parseFloat(s string, fallback float64) float64 {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fallback
	}
	return f
}

func parseBool(s string, fallback bool) bool {
	b, err := strconv.ParseBool(s)
	if err != nil {
		return fallback
	}
	return b
}
