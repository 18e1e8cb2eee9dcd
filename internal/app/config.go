package app

import (
	"errors"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds runtime configuration for the gateway.
type Config struct {
	AppEnv            string        `envconfig:"APP_ENV" default:"development"`
	AppAddr           string        `envconfig:"APP_ADDR" default:":8080"`
	AppReadTimeout    time.Duration `envconfig:"APP_READ_TIMEOUT" default:"15s"`
	AppWriteTimeout   time.Duration `envconfig:"APP_WRITE_TIMEOUT" default:"15s"`
	AppRequestTimeout time.Duration `envconfig:"APP_REQUEST_TIMEOUT" default:"30s"`

	LogFormat string `envconfig:"LOG_FORMAT" default:"pretty"`

	// JWTSecret verifies the HMAC signature on bearer tokens. Tokens
	// whose signature does not check out are treated as absent.
	JWTSecret string `envconfig:"JWT_SECRET" required:"true"`

	// ClinicAPIURL is the base URL of the remote clinic API that owns
	// identity, menus and permissions.
	ClinicAPIURL string `envconfig:"CLINIC_API_URL" default:"http://127.0.0.1:4000"`

	PermissionFetchTimeout time.Duration `envconfig:"PERMISSION_FETCH_TIMEOUT" default:"5s"`
	PermissionCacheTTL     time.Duration `envconfig:"PERMISSION_CACHE_TTL" default:"5m"`

	RedisAddr string `envconfig:"REDIS_ADDR" default:"127.0.0.1:6379"`

	CSRFSecret string `envconfig:"CSRF_SECRET" required:"true"`

	NavHistoryLimit int64         `envconfig:"NAV_HISTORY_LIMIT" default:"20"`
	NavHistoryTTL   time.Duration `envconfig:"NAV_HISTORY_TTL" default:"168h"`
}

// LoadConfig reads configuration from environment variables.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if cfg.JWTSecret == "" {
		return nil, errors.New("jwt secret must be provided")
	}
	if cfg.CSRFSecret == "" {
		return nil, errors.New("csrf secret must be provided")
	}
	return &cfg, nil
}

// IsProduction returns true when the application runs in production.
func (c *Config) IsProduction() bool {
	return c != nil && c.AppEnv == "production"
}
