package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server       ServerConfig
	Database     DatabaseConfig
	JWT          JWTConfig
	WS           WSConfig
	Chat         ChatConfig
	Notification NotificationConfig
	Payment      PaymentConfig
	Firebase     FirebaseConfig
	RateLimit    RateLimitConfig
}

type ServerConfig struct {
	Port        string
	Env         string
	ReadTimeout time.Duration
}

type DatabaseConfig struct {
	Driver          string // mysql | postgres | sqlite
	DSN             string
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
}

type JWTConfig struct {
	AccessSecret string
	AccessExpiry time.Duration
	Issuer       string
}

type WSConfig struct {
	// AuthTimeout bounds the wait for the first-frame credential when none was sent with the upgrade request.
	AuthTimeout    time.Duration
	WriteWait      time.Duration
	PongWait       time.Duration
	SendBuffer     int
	AllowedOrigins []string // empty allows any origin
}

type ChatConfig struct {
	MaxMessageLength   int
	PerParticipantHide bool
	DefaultPageSize    int
}

type NotificationConfig struct {
	DefaultPageSize int
	RetentionDays   int    // read notifications older than this are purged; 0 disables
	CleanupSchedule string // cron spec
}

type PaymentConfig struct {
	WebhookSecret string
}

type FirebaseConfig struct {
	ServiceAccountPath string
}

type RateLimitConfig struct {
	Requests int
	Window   time.Duration
}

// Load reads an optional .env file and then the process environment.
func Load() *Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("[config] .env not loaded: %v", err)
	}
	return &Config{
		Server: ServerConfig{
			Port:        getEnv("PORT", "5002"),
			Env:         getEnv("SERVER_ENV", "development"),
			ReadTimeout: getDuration("SERVER_READ_TIMEOUT", 10*time.Second),
		},
		Database: DatabaseConfig{
			Driver:          getEnv("DB_DRIVER", "mysql"),
			DSN:             getEnv("DATABASE_URL", "edushare:edushare@tcp(localhost:3306)/edushare?charset=utf8mb4&parseTime=True&loc=UTC"),
			MaxIdleConns:    getInt("DB_MAX_IDLE_CONNS", 10),
			MaxOpenConns:    getInt("DB_MAX_OPEN_CONNS", 100),
			ConnMaxLifetime: getDuration("DB_CONN_MAX_LIFETIME", time.Hour),
		},
		JWT: JWTConfig{
			AccessSecret: getEnv("JWT_SECRET", "change-me-in-production"),
			AccessExpiry: getDuration("JWT_ACCESS_EXPIRY", 24*time.Hour),
			Issuer:       getEnv("JWT_ISSUER", "edushare"),
		},
		WS: WSConfig{
			AuthTimeout:    getDuration("WS_AUTH_TIMEOUT", 5*time.Second),
			WriteWait:      getDuration("WS_WRITE_WAIT", 10*time.Second),
			PongWait:       getDuration("WS_PONG_WAIT", 60*time.Second),
			SendBuffer:     getInt("WS_SEND_BUFFER", 256),
			AllowedOrigins: getList("WS_ALLOWED_ORIGINS"),
		},
		Chat: ChatConfig{
			MaxMessageLength:   getInt("CHAT_MAX_MESSAGE_LENGTH", 1000),
			PerParticipantHide: getBool("CHAT_PER_PARTICIPANT_HIDE", false),
			DefaultPageSize:    getInt("CHAT_PAGE_SIZE", 50),
		},
		Notification: NotificationConfig{
			DefaultPageSize: getInt("NOTIFICATION_PAGE_SIZE", 20),
			RetentionDays:   getInt("NOTIFICATION_RETENTION_DAYS", 90),
			CleanupSchedule: getEnv("NOTIFICATION_CLEANUP_SCHEDULE", "@daily"),
		},
		Payment: PaymentConfig{
			WebhookSecret: getEnv("PAYMENT_WEBHOOK_SECRET", ""),
		},
		Firebase: FirebaseConfig{
			ServiceAccountPath: getEnv("FIREBASE_SERVICE_ACCOUNT_PATH", ""),
		},
		RateLimit: RateLimitConfig{
			Requests: getInt("RATE_LIMIT_REQUESTS", 100),
			Window:   getDuration("RATE_LIMIT_WINDOW", 60*time.Second),
		},
	}
}

func getEnv(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return def
}

func getInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("[config] %s=%q is not an integer, using %d", key, v, def)
		return def
	}
	return n
}

func getBool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		log.Printf("[config] %s=%q is not a boolean, using %t", key, v, def)
		return def
	}
	return b
}

func getDuration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		log.Printf("[config] %s=%q is not a duration, using %s", key, v, def)
		return def
	}
	return d
}

func getList(key string) []string {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	var out []string
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
