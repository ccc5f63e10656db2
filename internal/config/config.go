package config

import (
	"errors"
	"time"
)

type Config struct {
	// Server
	Host         string
	Port         string
	CookieSecure bool

	// Identity
	JWTSecret string
	TokenTTL  time.Duration

	// Storage
	DBDSN         string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	SessionTTL    time.Duration

	// Payment simulation
	PaymentProcessingDelay time.Duration
	PaymentCompletionDelay time.Duration

	// Queue placeholders
	QueuePosition     int
	QueueWaitMinutes  int
	QueueTotalWaiting int

	// Opening hours, both empty means always open
	ShopOpen     string
	ShopClose    string
	ShopTimezone string

	// Logging
	LogLevel  string
	LogFormat string

	// Metrics basic auth
	MetricsUser string
	MetricsPass string
}

func Load() (*Config, error) {
	cfg := &Config{
		Host:         GetEnv("APP_HOST", ""),
		Port:         GetEnv("APP_PORT", "8080"),
		CookieSecure: GetEnvBool("COOKIE_SECURE", false),

		JWTSecret: GetEnv("JWT_SECRET", ""),
		TokenTTL:  GetEnvDuration("TOKEN_TTL", 24*time.Hour),

		DBDSN:         GetEnv("DB_DSN", "root:@tcp(127.0.0.1:3306)/barber_queue?parseTime=true"),
		RedisAddr:     GetEnv("REDIS_ADDR", "127.0.0.1:6379"),
		RedisPassword: GetEnv("REDIS_PASSWORD", ""),
		RedisDB:       GetEnvInt("REDIS_DB", 0),
		SessionTTL:    GetEnvDuration("SESSION_TTL", 12*time.Hour),

		PaymentProcessingDelay: GetEnvDuration("PAYMENT_PROCESSING_DELAY", 2*time.Second),
		PaymentCompletionDelay: GetEnvDuration("PAYMENT_COMPLETION_DELAY", 1500*time.Millisecond),

		QueuePosition:     GetEnvInt("QUEUE_POSITION", 3),
		QueueWaitMinutes:  GetEnvInt("QUEUE_WAIT_MINUTES", 45),
		QueueTotalWaiting: GetEnvInt("QUEUE_TOTAL_WAITING", 2),

		ShopOpen:     GetEnv("SHOP_OPEN", ""),
		ShopClose:    GetEnv("SHOP_CLOSE", ""),
		ShopTimezone: GetEnv("SHOP_TIMEZONE", "Local"),

		LogLevel:  GetEnv("LOG_LEVEL", "info"),
		LogFormat: GetEnv("LOG_FORMAT", "console"),

		MetricsUser: GetEnv("METRICS_USER", ""),
		MetricsPass: GetEnv("METRICS_PASS", ""),
	}

	if cfg.JWTSecret == "" {
		return nil, errors.New("JWT_SECRET is required")
	}
	if cfg.QueuePosition < 1 || cfg.QueueWaitMinutes < 0 || cfg.QueueTotalWaiting < 0 {
		return nil, errors.New("queue placeholders out of range: position must be positive, wait and waiting non-negative")
	}
	if (cfg.ShopOpen == "") != (cfg.ShopClose == "") {
		return nil, errors.New("SHOP_OPEN and SHOP_CLOSE must be set together")
	}

	return cfg, nil
}

func (c *Config) Addr() string {
	return c.Host + ":" + c.Port
}
