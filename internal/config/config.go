package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application level configuration loaded from environment variables.
// It is read once at startup and treated as immutable afterwards; in particular
// SecretKey must not change while the process runs, since rotating it
// invalidates every outstanding confirmation token and session.
type Config struct {
	ServerPort string
	BaseURL    string

	MySQLDSN  string
	RedisAddr string
	RedisDB   int
	RedisPass string

	SecretKey     string
	SessionTTL    time.Duration
	ConfirmMaxAge time.Duration

	RateLimitPerMin int

	Mail MailConfig

	BootstrapAdmin BootstrapAccount
	BootstrapUser  BootstrapAccount

	LogLevel string
	LogJSON  bool
}

// MailConfig configures the SMTP sender. An empty Host disables real
// delivery and the application falls back to a logging sender.
type MailConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	Sender   string
	UseTLS   bool
}

// BootstrapAccount describes an account created at startup if missing.
type BootstrapAccount struct {
	Username string
	Email    string
	Password string
}

// Enabled reports whether the bootstrap account is fully configured.
func (b BootstrapAccount) Enabled() bool {
	return b.Username != "" && b.Email != "" && b.Password != ""
}

// Load builds Config from environment with sensible defaults. A .env file
// in the working directory is honored when present.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		ServerPort: getEnv("SERVER_PORT", "8080"),
		BaseURL:    getEnv("BASE_URL", "http://localhost:8080"),

		MySQLDSN:  getEnv("MYSQL_DSN", "user:password@tcp(localhost:3306)/notedeck?charset=utf8mb4&parseTime=True&loc=Local"),
		RedisAddr: getEnv("REDIS_ADDR", "localhost:6379"),
		RedisDB:   getEnvInt("REDIS_DB", 0),
		RedisPass: os.Getenv("REDIS_PASSWORD"),

		SecretKey:     getEnv("SECRET_KEY", "change-me"),
		SessionTTL:    time.Duration(getEnvInt("SESSION_TTL_MIN", 60*24)) * time.Minute,
		ConfirmMaxAge: time.Duration(getEnvInt("CONFIRM_MAX_AGE_SEC", 3600)) * time.Second,

		RateLimitPerMin: getEnvInt("RATE_LIMIT_PER_MIN", 100),

		Mail: MailConfig{
			Host:     os.Getenv("MAIL_SERVER"),
			Port:     getEnvInt("MAIL_PORT", 587),
			Username: os.Getenv("MAIL_USERNAME"),
			Password: os.Getenv("MAIL_PASSWORD"),
			Sender:   getEnv("MAIL_DEFAULT_SENDER", os.Getenv("MAIL_USERNAME")),
			UseTLS:   getEnvBool("MAIL_USE_TLS", true),
		},

		BootstrapAdmin: BootstrapAccount{
			Username: os.Getenv("ADMIN_USERNAME"),
			Email:    os.Getenv("ADMIN_EMAIL"),
			Password: os.Getenv("ADMIN_PASSWORD"),
		},
		BootstrapUser: BootstrapAccount{
			Username: os.Getenv("USER_USERNAME"),
			Email:    os.Getenv("USER_EMAIL"),
			Password: os.Getenv("USER_PASSWORD"),
		},

		LogLevel: getEnv("LOG_LEVEL", "info"),
		LogJSON:  getEnvBool("LOG_JSON", false),
	}
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			return parsed
		}
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.ParseBool(v); err == nil {
			return parsed
		}
	}
	return def
}
