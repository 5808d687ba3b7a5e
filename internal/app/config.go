package app

import (
	"strings"

	"github.com/yungbote/parammap-backend/internal/data/cache"
	"github.com/yungbote/parammap-backend/internal/data/db"
	"github.com/yungbote/parammap-backend/internal/observability"
	"github.com/yungbote/parammap-backend/internal/platform/envutil"
	"github.com/yungbote/parammap-backend/internal/platform/logger"
	"github.com/yungbote/parammap-backend/internal/platform/pagination"
)

type Config struct {
	Port           string
	MaxPageSize    int
	CORSOrigins    []string
	MetricsEnabled bool

	Postgres db.PostgresConfig
	Redis    cache.RedisConfig
	Otel     observability.OtelConfig
}

func LoadConfig(log *logger.Logger) Config {
	maxPage := envutil.Int("MAX_PAGE_SIZE", pagination.MaxSize, log)
	if maxPage < 1 {
		maxPage = pagination.MaxSize
	}
	return Config{
		Port:           envutil.String("PORT", "8080", log),
		MaxPageSize:    maxPage,
		CORSOrigins:    envutil.List("CORS_ALLOW_ORIGINS", []string{"*"}, log),
		MetricsEnabled: envutil.Bool("METRICS_ENABLED", true, log),
		Postgres: db.PostgresConfig{
			DSN:          envutil.String("POSTGRES_DSN", "", log),
			Host:         envutil.String("POSTGRES_HOST", "localhost", log),
			Port:         envutil.String("POSTGRES_PORT", "5432", log),
			User:         envutil.String("POSTGRES_USER", "postgres", log),
			Password:     envutil.String("POSTGRES_PASSWORD", "", log),
			Name:         envutil.String("POSTGRES_NAME", "parammap", log),
			MaxOpenConns: envutil.Int("POSTGRES_MAX_OPEN_CONNS", 20, log),
			MaxIdleConns: envutil.Int("POSTGRES_MAX_IDLE_CONNS", 10, log),
		},
		Redis: cache.RedisConfig{
			Addr:     envutil.String("REDIS_ADDR", "", log),
			Password: envutil.String("REDIS_PASSWORD", "", log),
			DB:       envutil.Int("REDIS_DB", 0, log),
			TTL:      envutil.Duration("MAPPING_CACHE_TTL", cache.DefaultTTL, log),
		},
		Otel: observability.OtelConfig{
			Enabled:     envutil.Bool("OTEL_ENABLED", false, log),
			ServiceName: envutil.String("OTEL_SERVICE_NAME", "parammap", log),
			Environment: envutil.String("APP_ENV", "development", log),
			Version:     envutil.String("APP_VERSION", "dev", log),
			Endpoint:    envutil.String("OTEL_EXPORTER_OTLP_ENDPOINT", "", log),
			Insecure:    envutil.Bool("OTEL_EXPORTER_OTLP_INSECURE", true, log),
			Headers:     parseHeaders(envutil.List("OTEL_EXPORTER_OTLP_HEADERS", nil, log)),
			SampleRatio: envutil.Float("OTEL_SAMPLER_RATIO", 1, log),
		},
	}
}

// parseHeaders reads "key=value" pairs.
func parseHeaders(pairs []string) map[string]string {
	if len(pairs) == 0 {
		return nil
	}
	out := make(map[string]string, len(pairs))
	for _, p := range pairs {
		k, v, ok := strings.Cut(p, "=")
		if !ok || strings.TrimSpace(k) == "" {
			continue
		}
		out[strings.TrimSpace(k)] = strings.TrimSpace(v)
	}
	return out
}
