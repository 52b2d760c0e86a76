// internal/config/config.go
package config

import (
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	ServerPort string

	// Generator defaults (overridable per run via the trigger request)
	UserCount         int
	HistoryWindowDays int
	PVerified         float64
	ABRatio           float64
	ABLift            float64
	SessionMean       float64
	RandomSeed        int64
	Workers           int

	// Continue-probability overrides, transition name -> probability
	ContinueProb map[string]float64

	// DB (warehouse)
	DBHost    string
	DBPort    string
	DBUser    string
	DBPass    string
	DBName    string
	DBSSLMode string

	// Auth
	ServiceExpectedToken string

	// R2 Storage (CSV snapshot archive; optional)
	R2AccountID       string
	R2AccessKeyID     string
	R2AccessKeySecret string
	R2BucketName      string
	R2PublicURL       string

	// SMTP (run report email; optional)
	SMTPHost         string
	SMTPPort         int
	SMTPUser         string
	SMTPPass         string
	SMTPFrom         string
	SMTPFromName     string
	ReportRecipients []string

	// CORS
	AllowedOrigins string
}

func Load() *Config {
	if os.Getenv("ENV") != "production" {
		_ = godotenv.Load() // optional .env for local
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8086"
	}

	cfg := &Config{
		ServerPort: port,

		UserCount:         getEnvInt("USER_COUNT", 1000),
		HistoryWindowDays: getEnvInt("HISTORY_WINDOW_DAYS", 30),
		PVerified:         getEnvFloat("P_VERIFIED", 0.4),
		ABRatio:           getEnvFloat("AB_RATIO", 0.5),
		ABLift:            getEnvFloat("AB_LIFT", 0.10),
		SessionMean:       getEnvFloat("SESSION_MEAN", 2.5),
		RandomSeed:        int64(getEnvInt("RANDOM_SEED", 42)),
		Workers:           getEnvInt("GENERATOR_WORKERS", 0),

		ContinueProb: map[string]float64{
			"page_view_to_search":     getEnvFloat("CONTINUE_PROB_PAGE_VIEW_TO_SEARCH", 0.60),
			"search_to_item_view":     getEnvFloat("CONTINUE_PROB_SEARCH_TO_ITEM_VIEW", 0.75),
			"item_view_to_chat_click": getEnvFloat("CONTINUE_PROB_ITEM_VIEW_TO_CHAT_CLICK", 0.25),
			"chat_click_to_chat_send": getEnvFloat("CONTINUE_PROB_CHAT_CLICK_TO_CHAT_SEND", 0.80),
		},

		DBHost:    getEnv("DB_HOST", "localhost"),
		DBPort:    getEnv("DB_PORT", "5432"),
		DBUser:    getEnv("DB_USER", "postgres"),
		DBPass:    getEnv("DB_PASS", "postgres"),
		DBName:    getEnv("DB_NAME", "analytics"),
		DBSSLMode: getEnv("DB_SSLMODE", "disable"),

		ServiceExpectedToken: getEnv("SERVICE_TOKEN", "your-secret-service-token"),

		R2AccountID:       os.Getenv("R2_ACCOUNT_ID"),
		R2AccessKeyID:     os.Getenv("R2_ACCESS_KEY_ID"),
		R2AccessKeySecret: os.Getenv("R2_ACCESS_KEY_SECRET"),
		R2BucketName:      os.Getenv("R2_BUCKET_NAME"),
		R2PublicURL:       os.Getenv("R2_PUBLIC_URL"),

		SMTPHost:     os.Getenv("SMTP_HOST"),
		SMTPUser:     os.Getenv("SMTP_USER"),
		SMTPPass:     os.Getenv("SMTP_PASS"),
		SMTPFrom:     os.Getenv("SMTP_FROM"),
		SMTPFromName: getEnv("SMTP_FROM_NAME", "Marketplace Analytics"),

		AllowedOrigins: getEnv("ALLOWED_ORIGINS", "http://localhost:3000,http://localhost:3001"),
	}

	// SMTP is optional; only parse the port when mail is configured.
	if cfg.SMTPHost != "" {
		cfg.SMTPPort = getEnvInt("SMTP_PORT", 587)
	}
	if recipients := os.Getenv("REPORT_RECIPIENTS"); recipients != "" {
		for _, r := range strings.Split(recipients, ",") {
			if r = strings.TrimSpace(r); r != "" {
				cfg.ReportRecipients = append(cfg.ReportRecipients, r)
			}
		}
	}

	return cfg
}

// R2Enabled reports whether the CSV archive is configured.
func (c *Config) R2Enabled() bool {
	return c.R2AccountID != "" && c.R2AccessKeyID != "" && c.R2AccessKeySecret != "" && c.R2BucketName != ""
}

// ReportEnabled reports whether run report mail is configured.
func (c *Config) ReportEnabled() bool {
	return c.SMTPHost != "" && len(c.ReportRecipients) > 0
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		log.Fatalf("❌ Invalid %s: %v", key, err)
	}
	return n
}

func getEnvFloat(key string, fallback float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		log.Fatalf("❌ Invalid %s: %v", key, err)
	}
	return f
}
