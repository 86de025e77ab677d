package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port       string `env:"PORT,        default=8080"`
	Env        string `env:"ENV,         default=development"`
	LogLevel   string `env:"LOG_LEVEL,   default=info"`
	JWTSecret  string `env:"JWT_SECRET"`
	LoginRoute string `env:"LOGIN_ROUTE, default=/auth/login"`

	Upstream UpstreamConfig
	Session  SessionConfig
	Mongo    MongoConfig
	Redis    RedisConfig
}

// UpstreamConfig points the gateway at the marketplace API.
type UpstreamConfig struct {
	BaseURL string        `env:"UPSTREAM_BASE_URL, default=http://localhost:9000"`
	Timeout time.Duration `env:"UPSTREAM_TIMEOUT,  default=10s"`
}

// SessionConfig tunes the session query cache and resolution.
type SessionConfig struct {
	// QueryTTL is the freshness window of cached identity/profile values.
	QueryTTL time.Duration `env:"SESSION_QUERY_TTL, default=30s"`
	// NegativeTTL bounds how long authoritative 401/404 results are served
	// from cache before re-asking the upstream.
	NegativeTTL time.Duration `env:"SESSION_NEGATIVE_TTL, default=5s"`
	// ResolveBudget bounds how long one request waits for in-flight fetches.
	ResolveBudget time.Duration `env:"SESSION_RESOLVE_BUDGET, default=5s"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=session_gateway"`
}

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR, default=localhost:6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB,   default=0"`
}

// Load reads configuration from environment variables using go-envconfig.
func Load(ctx context.Context) (*Config, error) {
	var cfg Config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return &cfg, nil
}
