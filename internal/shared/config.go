package shared

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

type Config struct {
	AppEnv      string
	HTTPAddr    string
	MetricsAddr string
	MySQLDSN    string
	RedisAddr   string
	RedisDB     int
	RedisPass   string
	GoogleBase  string
	GoogleKey   string
	GoogleRPS   int
	JWTSecret   string
	Workers     int
	CacheTTL    time.Duration
}

func Load() Config {
	// Local development convenience; absent files are fine.
	_ = godotenv.Load()

	atoi := func(k string, def int) int {
		if v := os.Getenv(k); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				return n
			}
		}
		return def
	}
	c := Config{
		AppEnv:      env("APP_ENV", "prod"),
		HTTPAddr:    env("HTTP_ADDR", ":8080"),
		MetricsAddr: env("METRICS_ADDR", ":9100"),
		MySQLDSN:    env("MYSQL_DSN", "root:root@tcp(localhost:3306)/guide?parseTime=true&charset=utf8mb4,utf8&loc=UTC"),
		RedisAddr:   env("REDIS_ADDR", "localhost:6379"),
		RedisDB:     atoi("REDIS_DB", 0),
		RedisPass:   env("REDIS_PASSWORD", ""),
		GoogleBase:  env("GOOGLE_PLACES_BASE_URL", "https://maps.googleapis.com/maps/api/place"),
		GoogleKey:   env("GOOGLE_PLACES_API_KEY", ""),
		GoogleRPS:   atoi("GOOGLE_PLACES_RPS", 5),
		JWTSecret:   env("JWT_SECRET", ""),
		Workers:     atoi("IMPORT_WORKERS", 4),
		CacheTTL:    time.Duration(atoi("CACHE_TTL_SECONDS", 900)) * time.Second,
	}
	if c.GoogleKey == "" {
		log.Warn().Msg("GOOGLE_PLACES_API_KEY is empty; imports will be unavailable")
	}
	if c.JWTSecret == "" {
		log.Warn().Msg("JWT_SECRET is empty; admin endpoints will reject all tokens")
	}
	return c
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
