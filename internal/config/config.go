// Package config loads the goverify host configuration from the environment.
//
// Variables are prefixed GOVERIFY_ (for example GOVERIFY_HTTP_ADDR). A local
// .env file is read first when present; real environment variables win.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	goVerify "github.com/MrEthical07/goVerify"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Prefix namespaces every variable read by [Load].
const Prefix = "GOVERIFY"

// HTTPConfig controls the listener and request deadlines.
type HTTPConfig struct {
	Addr            string        `envconfig:"ADDR" default:":8080"`
	RequestTimeout  time.Duration `envconfig:"REQUEST_TIMEOUT" default:"5s"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"10s"`
}

// RedisConfig selects the Redis server. An empty Addr runs every
// Redis-backed component in memory.
type RedisConfig struct {
	Addr     string `envconfig:"ADDR"`
	Password string `envconfig:"PASSWORD"`
	DB       int    `envconfig:"DB" default:"0"`
}

// DatabaseConfig selects Postgres for profiles. An empty URL keeps profiles
// in memory.
type DatabaseConfig struct {
	URL string `envconfig:"URL"`
}

// HasherConfig picks sha256 or argon2. Argon2 needs a site salt of at least
// 16 bytes.
type HasherConfig struct {
	Kind        string `envconfig:"KIND" default:"sha256"`
	Argon2Salt  string `envconfig:"ARGON2_SALT"`
	Argon2Mem   uint32 `envconfig:"ARGON2_MEMORY" default:"65536"`
	Argon2Time  uint32 `envconfig:"ARGON2_TIME" default:"3"`
	Argon2Par   uint8  `envconfig:"ARGON2_PARALLELISM" default:"2"`
	Argon2KeyLn uint32 `envconfig:"ARGON2_KEY_LENGTH" default:"32"`
}

// CounterConfig sets the lock threshold and the failure window (0 keeps
// counts until an operator unlock or a successful verify).
type CounterConfig struct {
	Threshold int           `envconfig:"THRESHOLD" default:"5"`
	Window    time.Duration `envconfig:"WINDOW" default:"0s"`
}

// NotifyConfig configures failure notifications and their Slack and webhook
// targets.
type NotifyConfig struct {
	Enabled    bool   `envconfig:"ENABLED" default:"true"`
	Format     string `envconfig:"FORMAT" default:"%s failed to verify"`
	Async      bool   `envconfig:"ASYNC" default:"false"`
	BufferSize int    `envconfig:"BUFFER_SIZE" default:"256"`
	DropIfFull bool   `envconfig:"DROP_IF_FULL" default:"true"`

	SlackToken    string `envconfig:"SLACK_TOKEN"`
	SlackChannel  string `envconfig:"SLACK_CHANNEL"`
	SlackUsername string `envconfig:"SLACK_USERNAME" default:"goverify"`
	SlackAPIURL   string `envconfig:"SLACK_API_URL"`

	WebhookURL        string `envconfig:"WEBHOOK_URL"`
	WebhookAuthHeader string `envconfig:"WEBHOOK_AUTH_HEADER"`
}

// OperatorConfig enables the operator endpoints when JWTSecret is set.
type OperatorConfig struct {
	JWTSecret string        `envconfig:"JWT_SECRET"`
	Issuer    string        `envconfig:"ISSUER" default:"goverify"`
	TokenTTL  time.Duration `envconfig:"TOKEN_TTL" default:"15m"`
}

// CacheConfig sets result cache TTLs; 0 disables caching.
type CacheConfig struct {
	ProfileTTL time.Duration `envconfig:"PROFILE_TTL" default:"0s"`
}

// MetricsConfig toggles counters and latency histograms.
type MetricsConfig struct {
	Enabled bool `envconfig:"ENABLED" default:"true"`
	Latency bool `envconfig:"LATENCY" default:"true"`
}

// Config is the complete host configuration.
type Config struct {
	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat string `envconfig:"LOG_FORMAT" default:"console"`
	Trace     bool   `envconfig:"TRACE" default:"false"`

	// SeedAccounts holds id:hash[:totpsecret] entries separated by ";".
	// Commas are allowed inside a hash (argon2 PHC parameters use them).
	SeedAccounts string `envconfig:"SEED_ACCOUNTS"`

	HTTP     HTTPConfig     `envconfig:"HTTP"`
	Redis    RedisConfig    `envconfig:"REDIS"`
	Database DatabaseConfig `envconfig:"DATABASE"`
	Hasher   HasherConfig   `envconfig:"HASHER"`
	Counter  CounterConfig  `envconfig:"COUNTER"`
	Notify   NotifyConfig   `envconfig:"NOTIFY"`
	Operator OperatorConfig `envconfig:"OPERATOR"`
	Cache    CacheConfig    `envconfig:"CACHE"`
	Metrics  MetricsConfig  `envconfig:"METRICS"`
}

// Seed is one parsed SEED_ACCOUNTS entry.
type Seed struct {
	AccountID    string
	PasswordHash string
	TOTPSecret   string
}

// Load reads envFiles (missing files are skipped), then the environment.
func Load(envFiles ...string) (Config, error) {
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", f, err)
		}
	}

	var cfg Config
	if err := envconfig.Process(Prefix, &cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks host-level settings. Pipeline settings are checked again
// by the builder.
func (c Config) Validate() error {
	switch strings.ToLower(c.LogFormat) {
	case "console", "json":
	default:
		return fmt.Errorf("LOG_FORMAT must be console or json, got %q", c.LogFormat)
	}
	switch strings.ToLower(c.Hasher.Kind) {
	case "sha256":
	case "argon2":
		if len(c.Hasher.Argon2Salt) < 16 {
			return errors.New("HASHER_ARGON2_SALT must be at least 16 bytes")
		}
	default:
		return fmt.Errorf("HASHER_KIND must be sha256 or argon2, got %q", c.Hasher.Kind)
	}
	if c.Counter.Threshold < 1 {
		return errors.New("COUNTER_THRESHOLD must be >= 1")
	}
	if c.Cache.ProfileTTL < 0 {
		return errors.New("CACHE_PROFILE_TTL must be >= 0")
	}
	if c.Operator.JWTSecret != "" && len(c.Operator.JWTSecret) < 32 {
		return errors.New("OPERATOR_JWT_SECRET must be at least 32 bytes")
	}
	if _, err := c.Seeds(); err != nil {
		return err
	}
	pipeline := c.Pipeline()
	return pipeline.Validate()
}

// SeedSeparator separates SEED_ACCOUNTS entries. It cannot occur in a hex,
// base32 or PHC-encoded value.
const SeedSeparator = ";"

// Seeds parses SeedAccounts. Empty entries are skipped.
func (c Config) Seeds() ([]Seed, error) {
	var out []Seed
	for _, raw := range strings.Split(c.SeedAccounts, SeedSeparator) {
		if strings.TrimSpace(raw) == "" {
			continue
		}
		parts := strings.Split(strings.TrimSpace(raw), ":")
		if len(parts) < 2 || len(parts) > 3 || parts[0] == "" || parts[1] == "" {
			return nil, fmt.Errorf("invalid SEED_ACCOUNTS entry %q: want id:hash[:totpsecret]", raw)
		}
		s := Seed{AccountID: parts[0], PasswordHash: parts[1]}
		if len(parts) == 3 {
			s.TOTPSecret = parts[2]
		}
		out = append(out, s)
	}
	return out, nil
}

// Pipeline maps the host settings onto the pipeline configuration.
func (c Config) Pipeline() goVerify.Config {
	cfg := goVerify.DefaultConfig()
	cfg.Notification.Enabled = c.Notify.Enabled
	cfg.Notification.MessageFormat = c.Notify.Format
	cfg.Notification.Async = c.Notify.Async
	cfg.Notification.BufferSize = c.Notify.BufferSize
	cfg.Notification.DropIfFull = c.Notify.DropIfFull
	cfg.Trace.Enabled = c.Trace
	cfg.Metrics.Enabled = c.Metrics.Enabled
	cfg.Metrics.EnableLatencyHistograms = c.Metrics.Enabled && c.Metrics.Latency
	return cfg
}
