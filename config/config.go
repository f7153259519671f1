package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	StoreMemory   = "memory"
	StorePostgres = "postgres"

	// DefaultSessionSecret is only fit for local development.
	DefaultSessionSecret = "dev-session-secret"
)

type Config struct {
	HTTP     HTTPConfig
	Store    string
	DB       DBConfig
	Session  SessionConfig
	Admin    AdminConfig
	Telegram TelegramConfig
	Delivery DeliveryConfig
	Log      LogConfig
}

type HTTPConfig struct {
	Addr           string
	RateLimitRPS   float64
	RateLimitBurst int
}

type DBConfig struct {
	Host        string
	Port        int
	User        string
	Password    string
	Database    string
	AutoMigrate bool
}

type SessionConfig struct {
	Secret       string
	TTL          time.Duration
	SecureCookie bool // mark the session cookie Secure; set when served over https
}

type AdminConfig struct {
	Token string // shared secret for /api/admin; empty leaves the dashboard open
}

type TelegramConfig struct {
	Token       string // bot token used for admin notifications
	AdminChatID int64
}

type DeliveryConfig struct {
	Fee float64
}

type LogConfig struct {
	Level string
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	port, _ := strconv.Atoi(getEnv("DB_PORT", "5432"))
	rps, _ := strconv.ParseFloat(getEnv("RATE_LIMIT_RPS", "10"), 64)
	burst, _ := strconv.Atoi(getEnv("RATE_LIMIT_BURST", "20"))
	ttl, err := time.ParseDuration(getEnv("SESSION_TTL", "24h"))
	if err != nil || ttl <= 0 {
		ttl = 24 * time.Hour
	}
	fee, err := strconv.ParseFloat(getEnv("DELIVERY_FEE", "5"), 64)
	if err != nil || fee < 0 {
		fee = 5
	}
	var adminChat int64
	if v := getEnv("TELEGRAM_ADMIN_CHAT_ID", ""); v != "" {
		adminChat, _ = strconv.ParseInt(v, 10, 64)
	}

	store := strings.ToLower(getEnv("STORE_DRIVER", StoreMemory))
	if store != StorePostgres {
		store = StoreMemory
	}

	return &Config{
		HTTP: HTTPConfig{
			Addr:           getEnv("HTTP_ADDR", ":8080"),
			RateLimitRPS:   rps,
			RateLimitBurst: burst,
		},
		Store: store,
		DB: DBConfig{
			Host:        getEnv("DB_HOST", "localhost"),
			Port:        port,
			User:        getEnv("DB_USER", "postgres"),
			Password:    getEnv("DB_PASSWORD", ""),
			Database:    getEnv("DB_NAME", "storefront"),
			AutoMigrate: isTrue(getEnv("AUTO_MIGRATE", "")),
		},
		Session: SessionConfig{
			Secret:       getEnv("SESSION_SECRET", DefaultSessionSecret),
			TTL:          ttl,
			SecureCookie: isTrue(getEnv("COOKIE_SECURE", "")),
		},
		Admin: AdminConfig{
			Token: getEnv("ADMIN_TOKEN", ""),
		},
		Telegram: TelegramConfig{
			Token:       getEnv("TELEGRAM_TOKEN", ""),
			AdminChatID: adminChat,
		},
		Delivery: DeliveryConfig{
			Fee: fee,
		},
		Log: LogConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
	}, nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func isTrue(v string) bool {
	v = strings.TrimSpace(v)
	return v == "1" || strings.EqualFold(v, "true")
}
