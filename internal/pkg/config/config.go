package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port      string `env:"PORT,      default=8080"`
	Env       string `env:"ENV,       default=development"`
	JWTSecret string `env:"JWT_SECRET"`
	LogLevel  string `env:"LOG_LEVEL, default=info"`

	Auth  AuthConfig
	Mongo MongoConfig
	Redis RedisConfig
}

// AuthConfig holds the session/profile reconciliation tuning. All values have
// production defaults; tests override them directly on the service options.
type AuthConfig struct {
	// CacheTTL is how long a fetched profile is served without re-fetching.
	CacheTTL time.Duration `env:"AUTH_CACHE_TTL, default=5m"`
	// DebounceWindow coalesces bursts of token-refresh events per user.
	DebounceWindow time.Duration `env:"AUTH_DEBOUNCE_WINDOW, default=500ms"`
	// SettleDelay postpones the first fetch after sign-in so the profile
	// row has time to appear.
	SettleDelay time.Duration `env:"AUTH_SETTLE_DELAY, default=1s"`
	// RetryBackoff is the base of the linear backoff between fetch retries.
	RetryBackoff time.Duration `env:"AUTH_RETRY_BACKOFF, default=1s"`
	// MaxRetries is the number of re-attempts after the initial fetch.
	MaxRetries int `env:"AUTH_MAX_RETRIES, default=2"`
	// FetchTimeout bounds a single profile fetch round-trip.
	FetchTimeout time.Duration `env:"AUTH_FETCH_TIMEOUT, default=10s"`

	TokenTTL       time.Duration `env:"AUTH_TOKEN_TTL, default=24h"`
	ResendCooldown time.Duration `env:"AUTH_RESEND_COOLDOWN, default=60s"`
	StatsCacheTTL  time.Duration `env:"AUTH_STATS_CACHE_TTL, default=60s"`
	EventWorkers   int           `env:"AUTH_EVENT_WORKERS, default=4"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=luncheon"`
}

type RedisConfig struct {
	Addr string `env:"REDIS_ADDR, default=localhost:6379"`
	DB   int    `env:"REDIS_DB,   default=0"`
}

// Load reads configuration from environment variables using go-envconfig.
func Load() *Config {
	var cfg Config
	if err := envconfig.Process(context.Background(), &cfg); err != nil {
		panic(fmt.Sprintf("config: failed to load configuration: %v", err))
	}
	return &cfg
}
