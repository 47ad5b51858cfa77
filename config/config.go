package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Env holds all runtime configuration, loaded from the environment with
// an optional .env file on top.
type Env struct {
	ListenAddr string

	DBHost     string
	DBUser     string
	DBPassword string
	DBName     string
	DBPort     string

	RedisAddr string
	RedisPass string
	RedisDB   int

	SMTPHost     string
	SMTPPort     int
	SMTPUser     string
	SMTPPassword string
	SMTPFrom     string

	AdminUsername string
	AdminPassword string
	UserUsername  string
	UserPassword  string

	SessionTTL        time.Duration
	ResetTokenTTL     time.Duration
	PasswordMaxAge    time.Duration
	TokenSweepEvery   time.Duration
	AdminAutoRecreate bool
}

// LoadEnv reads configuration from a .env file (if present) and the process
// environment. Missing values fall back to development defaults; the database
// settings have no defaults and must be provided.
func LoadEnv() (*Env, error) {
	// A missing .env is fine; real deployments set variables directly.
	_ = godotenv.Load()

	env := &Env{
		ListenAddr: getEnv("LISTEN_ADDR", ":3000"),

		DBHost:     getEnv("DB_HOST", "localhost"),
		DBUser:     os.Getenv("DB_USER"),
		DBPassword: os.Getenv("DB_PASSWORD"),
		DBName:     getEnv("DB_NAME", "hrportal"),
		DBPort:     getEnv("DB_PORT", "5432"),

		RedisAddr: getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPass: os.Getenv("REDIS_PASSWORD"),
		RedisDB:   getInt("REDIS_DB", 0),

		SMTPHost:     getEnv("SMTP_HOST", "localhost"),
		SMTPPort:     getInt("SMTP_PORT", 587),
		SMTPUser:     os.Getenv("SMTP_USER"),
		SMTPPassword: os.Getenv("SMTP_PASSWORD"),
		SMTPFrom:     getEnv("SMTP_FROM", "hr@acentriktech.com"),

		AdminUsername: getEnv("ADMIN_USERNAME", "Admin"),
		AdminPassword: getEnv("ADMIN_PASSWORD", "Admin123!"),
		UserUsername:  getEnv("USER_USERNAME", "User"),
		UserPassword:  getEnv("USER_PASSWORD", "User123!"),

		SessionTTL:        getDuration("SESSION_TTL", 24*time.Hour),
		ResetTokenTTL:     getDuration("RESET_TOKEN_TTL", 30*time.Minute),
		PasswordMaxAge:    getDuration("PASSWORD_MAX_AGE", 90*24*time.Hour),
		TokenSweepEvery:   getDuration("TOKEN_SWEEP_INTERVAL", 15*time.Minute),
		AdminAutoRecreate: getBool("ADMIN_AUTO_RECREATE", true),
	}

	return env, nil
}

func getEnv(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return def
}

func getInt(key string, def int) int {
	if v, ok := os.LookupEnv(key); ok {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getBool(key string, def bool) bool {
	if v, ok := os.LookupEnv(key); ok {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}

func getDuration(key string, def time.Duration) time.Duration {
	if v, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}
