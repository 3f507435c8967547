package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds application configuration.
type Config struct {
	AppName     string
	AppVersion  string
	Environment string

	CronSecret string

	AnthropicAPIKey   string
	PageSpeedAPIKey   string
	PexelsAPIKey      string
	MetaAppID         string
	MetaAppSecret     string
	TikTokClientKey   string
	TikTokClientSecret string

	TokenEncryptionSecret string

	OTLPEndpoint string
	RedisAddr    string

	DefaultOrgID int64

	DBType            string
	DBHost            string
	DBPort            string
	DBName            string
	DBUser            string
	DBPassword        string
	DBSSLMode         string
	DBMaxIdleConn     int
	DBMaxOpenConn     int
	DBConnMaxLifetime int
	DBConnMaxIdleTime int
}

// Load loads configuration from environment variables and .env file.
func Load() Config {
	_ = godotenv.Load()

	cfg := Config{
		AppName:     getenv("APP_SERVICE", "marketingos"),
		AppVersion:  getenv("APP_VERSION", "0.1.0"),
		Environment: getenv("ENVIRONMENT", "development"),

		CronSecret: strings.TrimSpace(getenv("CRON_SECRET", "")),

		AnthropicAPIKey:    strings.TrimSpace(getenv("ANTHROPIC_API_KEY", "")),
		PageSpeedAPIKey:    strings.TrimSpace(getenv("GOOGLE_PAGESPEED_API_KEY", "")),
		PexelsAPIKey:       strings.TrimSpace(getenv("PEXELS_API_KEY", "")),
		MetaAppID:          strings.TrimSpace(getenv("META_APP_ID", "")),
		MetaAppSecret:      strings.TrimSpace(getenv("META_APP_SECRET", "")),
		TikTokClientKey:    strings.TrimSpace(getenv("TIKTOK_CLIENT_KEY", "")),
		TikTokClientSecret: strings.TrimSpace(getenv("TIKTOK_CLIENT_SECRET", "")),

		TokenEncryptionSecret: strings.TrimSpace(getenv("TOKEN_ENCRYPTION_SECRET", "")),

		OTLPEndpoint: getenv("OTLP_ENDPOINT", "localhost:4317"),
		RedisAddr:    strings.TrimSpace(getenv("REDIS_ADDR", "")),

		DefaultOrgID: getenvInt64("DEFAULT_ORG", 0),

		DBType:            getenv("DATABASE_TYPE", "postgres"),
		DBHost:            getenv("DATABASE_HOST", "localhost"),
		DBPort:            getenv("DATABASE_PORT", "5432"),
		DBName:            getenv("DATABASE_NAME", "postgres"),
		DBUser:            getenv("DATABASE_USER", "postgres"),
		DBPassword:        getenv("DATABASE_PASSWORD", ""),
		DBSSLMode:         getenv("DATABASE_SSLMODE", "disable"),
		DBMaxIdleConn:     int(getenvInt64("DATABASE_MAX_IDLE_CONN", 10)),
		DBMaxOpenConn:     int(getenvInt64("DATABASE_MAX_OPEN_CONN", 50)),
		DBConnMaxLifetime: int(getenvInt64("DATABASE_CONN_MAX_LIFETIME", 3600)),
		DBConnMaxIdleTime: int(getenvInt64("DATABASE_CONN_MAX_IDLE_TIME", 600)),
	}

	return cfg
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt64(key string, def int64) int64 {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return def
	}
	return parsed
}
