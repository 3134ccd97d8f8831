package config

import (
	"fmt"
	"os"
	"strconv"

	// this will automatically load your .env file:
	_ "github.com/joho/godotenv/autoload"
)

type Config struct {
	Port        string
	FrontendURL string
	DB          PostgresConfig
	Auth        AuthConfig
	Gemini      GeminiConfig
	Razorpay    RazorpayConfig
}

type PostgresConfig struct {
	Username string
	Password string
	URL      string
	Port     string
	Database string
}

type AuthConfig struct {
	Issuer   string
	Audience string
}

type GeminiConfig struct {
	APIKey          string
	Model           string
	MaxOutputTokens int
	ChatMaxTokens   int
}

type RazorpayConfig struct {
	KeyID  string
	Secret string
	// TotalCount bounds how many billing cycles a subscription runs for.
	TotalCount int
}

func LoadConfig() (*Config, error) {
	cfg := &Config{
		Port:        envOr("PORT", "8080"),
		FrontendURL: os.Getenv("FRONTEND_URL"),
		DB: PostgresConfig{
			Username: os.Getenv("POSTGRES_USER"),
			Password: os.Getenv("POSTGRES_PWD"),
			URL:      os.Getenv("POSTGRES_URL"),
			Port:     envOr("POSTGRES_PORT", "5432"),
			Database: envOr("POSTGRES_DB", "bloodreports"),
		},
		Auth: AuthConfig{
			Issuer:   os.Getenv("AUTH_ISSUER"),
			Audience: os.Getenv("AUTH_AUDIENCE"),
		},
		Gemini: GeminiConfig{
			APIKey:          os.Getenv("GEMINI_API_KEY"),
			Model:           envOr("GEMINI_MODEL", "gemini-2.0-flash"),
			MaxOutputTokens: envInt("GEMINI_MAX_OUTPUT_TOKENS", 4096),
			ChatMaxTokens:   envInt("GEMINI_CHAT_MAX_TOKENS", 512),
		},
		Razorpay: RazorpayConfig{
			KeyID:      os.Getenv("RAZORPAY_KEY_ID"),
			Secret:     os.Getenv("RAZORPAY_KEY_SECRET"),
			TotalCount: envInt("RAZORPAY_TOTAL_COUNT", 12),
		},
	}

	return cfg, nil
}

// DSN builds the Postgres connection string.
func (c PostgresConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=disable",
		c.Username,
		c.Password,
		c.URL,
		c.Port,
		c.Database,
	)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}
