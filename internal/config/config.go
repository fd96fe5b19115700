// Package config carries all tunable parameters of the platform.
// Core components receive a Config explicitly at construction; nothing in
// the core reads the environment on its own.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	// Gamification
	ResolutionReward   = 50
	VerificationReward = 10

	// Verification threshold
	HighUrgencyScore    = 8
	HighUrgencyQuorum   = 1
	NormalUrgencyQuorum = 3

	// Escalation
	EscalationAge = 24 * time.Hour

	// Moderation
	AnalyzeTimeout = 60 * time.Second

	// Mumbai bounding box (approximate)
	MinLatitude  = 18.89
	MaxLatitude  = 19.30
	MinLongitude = 72.75
	MaxLongitude = 73.00
)

// Config is the process configuration assembled from the environment.
type Config struct {
	HTTPPort    string
	PostgresDSN string
	RedisAddr   string

	// AIProvider selects the verdict backend: "gemini" or "grok".
	AIProvider   string
	GeminiAPIKey string
	GrokAPIKey   string

	// Mail
	SMTPHost     string
	SMTPPort     int
	SMTPUser     string
	SMTPPassword string
	FromAddress  string
	// OverrideEmail, when set, redirects every outgoing notice to this
	// address. Test/safety valve; always wins over the real recipient.
	OverrideEmail string
	// SeniorOfficials maps escalation level (>=1) to the contact address
	// of that tier, e.g. 1 -> deputy commissioner.
	SeniorOfficials map[int]string

	// BaseURL is the public address used to build resolution links.
	BaseURL string

	// SweepInterval is how often the escalation sweep runs.
	SweepInterval time.Duration
	// EscalationAfter is the minimum complaint age before auto-escalation.
	EscalationAfter time.Duration

	// MediaDir is where uploaded complaint images are stored.
	MediaDir string

	JWTSecret string

	// TelegramToken/TelegramOpsChat enable operational alerts. Empty
	// token disables the channel.
	TelegramToken   string
	TelegramOpsChat int64
}

// Load assembles a Config from environment variables, applying defaults
// where a value is missing.
func Load() Config {
	return Config{
		HTTPPort:    envOr("HTTP_PORT", "8080"),
		PostgresDSN: os.Getenv("POSTGRES_DSN"),
		RedisAddr:   envOr("REDIS_ADDR", "localhost:6379"),

		AIProvider:   envOr("AI_PROVIDER", "gemini"),
		GeminiAPIKey: os.Getenv("GEMINI_API_KEY"),
		GrokAPIKey:   os.Getenv("GROK_API_KEY"),

		SMTPHost:      envOr("SMTP_HOST", "localhost"),
		SMTPPort:      envInt("SMTP_PORT", 587),
		SMTPUser:      os.Getenv("SMTP_USER"),
		SMTPPassword:  os.Getenv("SMTP_PASSWORD"),
		FromAddress:   envOr("MAIL_FROM", "noreply@jansevak.in"),
		OverrideEmail: os.Getenv("EMAIL_OVERRIDE_ADDRESS"),
		SeniorOfficials: map[int]string{
			1: envOr("SENIOR_OFFICIAL_ZONE", "dmc.zone@mcgm.gov.in"),
			2: envOr("SENIOR_OFFICIAL_COMMISSIONER", "commissioner@mcgm.gov.in"),
		},

		BaseURL: envOr("BASE_URL", "http://localhost:8080"),

		SweepInterval:   envDuration("SWEEP_INTERVAL", time.Hour),
		EscalationAfter: envDuration("ESCALATION_AFTER", EscalationAge),

		MediaDir: envOr("MEDIA_DIR", "media/complaints"),

		JWTSecret: envOr("JWT_SECRET", "dev-only-secret"),

		TelegramToken:   os.Getenv("TELEGRAM_BOT_TOKEN"),
		TelegramOpsChat: int64(envInt("TELEGRAM_OPS_CHAT", 0)),
	}
}

// QuorumFor returns the community-verification count that triggers the
// verified notice for a complaint of the given urgency.
func QuorumFor(urgencyScore int) int {
	if urgencyScore >= HighUrgencyScore {
		return HighUrgencyQuorum
	}
	return NormalUrgencyQuorum
}

// InBounds reports whether the coordinates fall inside the served region.
func InBounds(lat, lng float64) bool {
	return lat >= MinLatitude && lat <= MaxLatitude &&
		lng >= MinLongitude && lng <= MaxLongitude
}

func envOr(name, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(name)); v != "" {
		return v
	}
	return fallback
}

func envInt(name string, fallback int) int {
	v, err := strconv.Atoi(strings.TrimSpace(os.Getenv(name)))
	if err != nil {
		return fallback
	}
	return v
}

func envDuration(name string, fallback time.Duration) time.Duration {
	v, err := time.ParseDuration(strings.TrimSpace(os.Getenv(name)))
	if err != nil {
		return fallback
	}
	return v
}
