package config

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Env   string
	Port  int
	DBURL string

	// Session tokens
	JWTSecret         string
	TokenTTLDays      int
	SessionCookieName string

	// Password hashing
	BcryptCost int

	CORSAllowedOrigins []string

	// Startup admin seeding (skipped when email/password are empty)
	AdminEmail    string
	AdminPassword string
	AdminName     string

	// Reminder worker
	RedisAddr            string
	RedisPassword        string
	RedisDB              int
	ReminderPollInterval time.Duration
	ReminderBatchSize    int

	// Tracing
	OTLPEndpoint   string
	TracingEnabled bool
}

func Load() Config {
	return Config{
		Env:   getEnv("APP_ENV", "dev"),
		Port:  getEnvInt("PORT", 8080),
		DBURL: buildDBURL(),

		JWTSecret:         getEnv("JWT_SECRET", ""),
		TokenTTLDays:      getEnvInt("TOKEN_TTL_DAYS", 30),
		SessionCookieName: getEnv("SESSION_COOKIE_NAME", "seembe_session"),

		BcryptCost: getEnvInt("BCRYPT_COST", 12),

		CORSAllowedOrigins: splitCSV(getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173")),

		AdminEmail:    getEnv("ADMIN_EMAIL", ""),
		AdminPassword: getEnv("ADMIN_PASSWORD", ""),
		AdminName:     getEnv("ADMIN_NAME", "Se-Embe Admin"),

		RedisAddr:            getEnv("REDIS_ADDR", "127.0.0.1:6379"),
		RedisPassword:        getEnv("REDIS_PASSWORD", ""),
		RedisDB:              getEnvInt("REDIS_DB", 0),
		ReminderPollInterval: time.Duration(getEnvInt("REMINDER_POLL_SECONDS", 60)) * time.Second,
		ReminderBatchSize:    getEnvInt("REMINDER_BATCH_SIZE", 50),

		OTLPEndpoint:   getEnv("OTLP_ENDPOINT", ""),
		TracingEnabled: getEnv("TRACING_ENABLED", "") == "1",
	}
}

func (c Config) TokenTTL() time.Duration {
	return time.Duration(c.TokenTTLDays) * 24 * time.Hour
}

func buildDBURL() string {
	if url := os.Getenv("DATABASE_URL"); url != "" {
		return url
	}

	host := getEnv("DB_HOST", "127.0.0.1")
	port := getEnv("DB_PORT", "5432")
	user := getEnv("DB_USER", "seembe")
	pass := getEnv("DB_PASSWORD", "seembe")
	name := getEnv("DB_NAME", "seembe")
	ssl := getEnv("DB_SSLMODE", "disable")

	return "postgres://" + user + ":" + pass + "@" + host + ":" + port + "/" + name + "?sslmode=" + ssl
}

func WithTimeout(duration time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), duration)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}

	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		num, err := strconv.Atoi(v)

		if err != nil {
			fmt.Println(err)
			return fallback
		}

		return num
	}
	return fallback
}

func splitCSV(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))

	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}

	return out
}
