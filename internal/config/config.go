package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Env                      string
	HTTPAddr                 string
	DatabaseURL              string
	RunMigrations            bool
	JWTSecret                string
	JWTExpirySeconds         int64
	OrderTrackingTokenSecret string
	MaxFileSizeBytes         int64
	CorsAllowedOrigins       []string
	LogFile                  string
	Timezone                 string
	Currency                 string

	AdminEmail    string
	AdminPassword string

	BackendTimeout   time.Duration
	SubmitLockTTL    time.Duration
	MaxLineQuantity  int
	SlotStep         time.Duration
	SlotDateCount    int
	SlotHorizonDays  int
	SlotDefaultOpen  string
	SlotDefaultClose string

	RedisURL           string
	RabbitMQURL        string
	RabbitMQWorkerMode string

	AdminPollInterval   time.Duration
	WSHeartbeatInterval time.Duration
	NotifyDismissAfter  time.Duration

	ObjectStoreEndpoint        string
	ObjectStoreRegion          string
	ObjectStoreAccessKeyID     string
	ObjectStoreSecretAccessKey string
	ObjectStoreBucket          string
	ObjectStorePublicBaseURL   string
	ObjectStoreStorageClass    string
}

func Load() Config {
	cfg := Config{
		Env:                      getEnv("APP_ENV", "development"),
		HTTPAddr:                 getEnv("HTTP_ADDR", ":8086"),
		DatabaseURL:              getEnv("DATABASE_URL", ""),
		RunMigrations:            getEnvBool("RUN_MIGRATIONS", true),
		JWTSecret:                getEnv("JWT_SECRET", ""),
		JWTExpirySeconds:         getEnvInt64("JWT_EXPIRY", 43200),
		OrderTrackingTokenSecret: getEnv("ORDER_TRACKING_TOKEN_SECRET", "dev-insecure-tracking-secret"),
		MaxFileSizeBytes:         getEnvInt64("MAX_FILE_SIZE", 5*1024*1024),
		CorsAllowedOrigins:       splitCSV(getEnv("CORS_ALLOWED_ORIGINS", "")),
		LogFile:                  getEnv("LOG_FILE", ""),
		Timezone:                 getEnv("TIMEZONE", "Europe/Paris"),
		Currency:                 strings.ToUpper(getEnv("CURRENCY", "EUR")),

		AdminEmail:    getEnv("ADMIN_EMAIL", ""),
		AdminPassword: getEnv("ADMIN_PASSWORD", ""),

		BackendTimeout:   getEnvDuration("BACKEND_TIMEOUT", 10*time.Second),
		SubmitLockTTL:    getEnvDuration("SUBMIT_LOCK_TTL", 30*time.Second),
		MaxLineQuantity:  int(getEnvInt64("MAX_LINE_QUANTITY", 99)),
		SlotStep:         getEnvDuration("SLOT_STEP", 15*time.Minute),
		SlotDateCount:    int(getEnvInt64("SLOT_DATE_COUNT", 8)),
		SlotHorizonDays:  int(getEnvInt64("SLOT_HORIZON_DAYS", 60)),
		SlotDefaultOpen:  getEnv("SLOT_DEFAULT_OPEN", "18:00"),
		SlotDefaultClose: getEnv("SLOT_DEFAULT_CLOSE", "22:00"),

		RedisURL:           getEnv("REDIS_URL", ""),
		RabbitMQURL:        getEnv("RABBITMQ_URL", ""),
		RabbitMQWorkerMode: getEnv("RABBITMQ_WORKER_MODE", "daemon"),

		AdminPollInterval:   getEnvDuration("ADMIN_POLL_INTERVAL", 15*time.Second),
		WSHeartbeatInterval: getEnvDuration("WS_HEARTBEAT_INTERVAL", 30*time.Second),
		NotifyDismissAfter:  getEnvDuration("NOTIFY_DISMISS_AFTER", 12*time.Second),

		// Object store (Cloudflare R2 / S3-compatible)
		ObjectStoreEndpoint:        getEnvFirst([]string{"OBJECT_STORE_ENDPOINT", "R2_S3_ENDPOINT"}, ""),
		ObjectStoreRegion:          getEnvFirst([]string{"OBJECT_STORE_REGION", "R2_REGION"}, "auto"),
		ObjectStoreAccessKeyID:     getEnvFirst([]string{"OBJECT_STORE_ACCESS_KEY_ID", "R2_ACCESS_KEY_ID"}, ""),
		ObjectStoreSecretAccessKey: getEnvFirst([]string{"OBJECT_STORE_SECRET_ACCESS_KEY", "R2_SECRET_ACCESS_KEY"}, ""),
		ObjectStoreBucket:          getEnvFirst([]string{"OBJECT_STORE_BUCKET", "R2_BUCKET"}, ""),
		ObjectStorePublicBaseURL:   getEnvFirst([]string{"OBJECT_STORE_PUBLIC_BASE_URL", "R2_PUBLIC_BASE_URL"}, ""),
		ObjectStoreStorageClass:    getEnvFirst([]string{"OBJECT_STORE_STORAGE_CLASS", "R2_STORAGE_CLASS"}, "STANDARD"),
	}

	if cfg.MaxFileSizeBytes <= 0 {
		cfg.MaxFileSizeBytes = 5 * 1024 * 1024
	}
	if cfg.SlotStep <= 0 {
		cfg.SlotStep = 15 * time.Minute
	}
	if cfg.SlotDateCount < 8 {
		cfg.SlotDateCount = 8
	}
	if cfg.SlotHorizonDays <= 0 {
		cfg.SlotHorizonDays = 60
	}
	if cfg.BackendTimeout <= 0 {
		cfg.BackendTimeout = 10 * time.Second
	}
	if cfg.MaxLineQuantity <= 0 {
		cfg.MaxLineQuantity = 99
	}

	if strings.TrimSpace(cfg.ObjectStoreEndpoint) == "" {
		accountID := strings.TrimSpace(os.Getenv("R2_ACCOUNT_ID"))
		if accountID != "" {
			cfg.ObjectStoreEndpoint = "https://" + accountID + ".r2.cloudflarestorage.com"
		}
	}

	return cfg
}

// Location resolves the business timezone, falling back to UTC.
func (c Config) Location() *time.Location {
	loc, err := time.LoadLocation(strings.TrimSpace(c.Timezone))
	if err != nil || loc == nil {
		return time.UTC
	}
	return loc
}

func (c Config) IsProduction() bool {
	return c.Env == "production"
}

func getEnv(key, fallback string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	return value
}

func getEnvFirst(keys []string, fallback string) string {
	for _, k := range keys {
		value := strings.TrimSpace(os.Getenv(k))
		if value != "" {
			return value
		}
	}
	return fallback
}

func getEnvInt64(key string, fallback int64) int64 {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvBool(key string, fallback bool) bool {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return d
}

func splitCSV(value string) []string {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
