// Package app assembles the goverify host from its configuration and runs
// the HTTP server until the context is cancelled.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	goVerify "github.com/MrEthical07/goVerify"
	"github.com/MrEthical07/goVerify/cache"
	"github.com/MrEthical07/goVerify/counter"
	"github.com/MrEthical07/goVerify/internal/config"
	"github.com/MrEthical07/goVerify/internal/server"
	"github.com/MrEthical07/goVerify/jwt"
	promexport "github.com/MrEthical07/goVerify/metrics/export/prometheus"
	"github.com/MrEthical07/goVerify/notify"
	"github.com/MrEthical07/goVerify/otp"
	"github.com/MrEthical07/goVerify/password"
	"github.com/MrEthical07/goVerify/profile"
)

// App owns every long-lived resource of the host.
type App struct {
	cfg config.Config
	log zerolog.Logger

	redis    *redis.Client
	pool     *pgxpool.Pool
	pipeline *goVerify.Pipeline
	cache    *cache.Interceptor
	memCache *cache.MemoryStore
	handler  http.Handler
}

// NewLogger builds the process logger from LOG_LEVEL and LOG_FORMAT.
func NewLogger(cfg config.Config) zerolog.Logger {
	level, err := zerolog.ParseLevel(strings.ToLower(cfg.LogLevel))
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	var logger zerolog.Logger
	if strings.EqualFold(cfg.LogFormat, "json") {
		logger = zerolog.New(os.Stderr)
	} else {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr})
	}
	return logger.Level(level).With().Timestamp().Str("service", "goverify").Logger()
}

// New connects to the configured backends and builds the pipeline and
// router. Resources opened before a failure are released.
func New(ctx context.Context, cfg config.Config, log zerolog.Logger) (a *App, err error) {
	a = &App{cfg: cfg, log: log}
	defer func() {
		if err != nil {
			a.close()
		}
	}()

	if cfg.Redis.Addr != "" {
		a.redis = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := a.redis.Ping(ctx).Err(); err != nil {
			return nil, fmt.Errorf("redis: %w", err)
		}
	} else {
		log.Warn().Msg("REDIS_ADDR not set; counter, secrets and cache run in memory")
	}

	seeds, err := cfg.Seeds()
	if err != nil {
		return nil, err
	}

	profiles, err := a.profileStore(ctx, seeds)
	if err != nil {
		return nil, err
	}

	var store cache.Store
	if a.redis != nil {
		store = cache.NewRedisStore(a.redis, "")
	} else {
		a.memCache = cache.NewMemoryStore()
		store = a.memCache
	}
	a.cache = cache.NewInterceptor(store, cache.WithLogger(log))
	cachedProfiles := profile.NewCached(profiles, a.cache, cfg.Cache.ProfileTTL)

	hasher, err := newHasher(cfg.Hasher)
	if err != nil {
		return nil, err
	}
	warnStaleSeeds(log, hasher, seeds)

	otps, err := a.otpService(ctx, seeds)
	if err != nil {
		return nil, err
	}

	failed, err := a.failedCounter(cfg.Counter)
	if err != nil {
		return nil, err
	}

	a.pipeline, err = goVerify.New().
		WithConfig(cfg.Pipeline()).
		WithProfileStore(cachedProfiles).
		WithHasher(hasher).
		WithOTPService(otps).
		WithFailedCounter(failed).
		WithNotifier(newNotifier(cfg.Notify, log)).
		WithLogger(log).
		Build()
	if err != nil {
		return nil, fmt.Errorf("pipeline: %w", err)
	}

	var tokens *jwt.Manager
	if cfg.Operator.JWTSecret != "" {
		tokens, err = jwt.NewManager(jwt.Config{
			TTL:           cfg.Operator.TokenTTL,
			SigningMethod: jwt.MethodHS256,
			PrivateKey:    []byte(cfg.Operator.JWTSecret),
			Issuer:        cfg.Operator.Issuer,
			Leeway:        30 * time.Second,
		})
		if err != nil {
			return nil, fmt.Errorf("operator tokens: %w", err)
		}
	} else {
		log.Warn().Msg("OPERATOR_JWT_SECRET not set; operator endpoints disabled")
	}

	var metrics http.Handler
	if cfg.Metrics.Enabled {
		metrics = promexport.NewExporter(a.pipeline, promexport.WithCacheStats(a.cache)).Handler()
	}

	a.handler = server.NewRouter(server.Config{
		Pipeline:       a.pipeline,
		Tokens:         tokens,
		Metrics:        metrics,
		Health:         a.healthChecks(),
		Log:            log,
		RequestTimeout: cfg.HTTP.RequestTimeout,
	})
	return a, nil
}

// Handler returns the assembled router.
func (a *App) Handler() http.Handler {
	return a.handler
}

// Pipeline returns the verification pipeline.
func (a *App) Pipeline() *goVerify.Pipeline {
	return a.pipeline
}

// Run serves HTTP until ctx is cancelled, then shuts down gracefully and
// releases every resource.
func (a *App) Run(ctx context.Context) error {
	defer a.close()

	if a.memCache != nil {
		go a.memCache.RunSweeper(ctx, time.Minute)
	}

	srv := &http.Server{
		Addr:              a.cfg.HTTP.Addr,
		Handler:           a.handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.log.Info().Str("addr", srv.Addr).Msg("http server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	a.log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.HTTP.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return <-errCh
}

func (a *App) close() {
	if a.pipeline != nil {
		a.pipeline.Close()
	}
	if a.pool != nil {
		a.pool.Close()
	}
	if a.redis != nil {
		_ = a.redis.Close()
	}
}

func (a *App) profileStore(ctx context.Context, seeds []config.Seed) (goVerify.ProfileStore, error) {
	if a.cfg.Database.URL == "" {
		hashes := make(map[string]string, len(seeds))
		for _, s := range seeds {
			hashes[s.AccountID] = s.PasswordHash
		}
		return profile.NewMemory(hashes), nil
	}

	pool, err := pgxpool.New(ctx, a.cfg.Database.URL)
	if err != nil {
		return nil, fmt.Errorf("postgres: %w", err)
	}
	a.pool = pool
	if err := pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("postgres ping: %w", err)
	}

	store := profile.NewPostgres(pool)
	if err := store.EnsureSchema(ctx); err != nil {
		return nil, err
	}
	for _, s := range seeds {
		if err := store.Put(ctx, s.AccountID, s.PasswordHash); err != nil {
			return nil, err
		}
	}
	return store, nil
}

func (a *App) otpService(ctx context.Context, seeds []config.Seed) (*otp.TOTP, error) {
	if a.redis == nil {
		secrets := make(map[string]string, len(seeds))
		for _, s := range seeds {
			if s.TOTPSecret != "" {
				secrets[s.AccountID] = s.TOTPSecret
			}
		}
		return otp.New(otp.NewMemorySecrets(secrets), otp.Config{}), nil
	}

	secrets := otp.NewRedisSecrets(a.redis, "")
	for _, s := range seeds {
		if s.TOTPSecret == "" {
			continue
		}
		if err := secrets.Put(ctx, s.AccountID, s.TOTPSecret); err != nil {
			return nil, fmt.Errorf("seed totp secret: %w", err)
		}
	}
	return otp.New(secrets, otp.Config{}), nil
}

func (a *App) failedCounter(cfg config.CounterConfig) (goVerify.FailedCounter, error) {
	c := counter.DefaultConfig()
	c.Threshold = cfg.Threshold
	c.Window = cfg.Window
	if a.redis != nil {
		return counter.NewRedis(a.redis, c)
	}
	return counter.NewMemory(c)
}

func (a *App) healthChecks() map[string]server.HealthCheck {
	checks := map[string]server.HealthCheck{}
	if a.redis != nil {
		checks["redis"] = func(ctx context.Context) error { return a.redis.Ping(ctx).Err() }
	}
	if a.pool != nil {
		checks["postgres"] = a.pool.Ping
	}
	return checks
}

func newHasher(cfg config.HasherConfig) (goVerify.Hasher, error) {
	if !strings.EqualFold(cfg.Kind, "argon2") {
		return password.SHA256{}, nil
	}
	return password.NewArgon2(password.Config{
		Memory:      cfg.Argon2Mem,
		Time:        cfg.Argon2Time,
		Parallelism: cfg.Argon2Par,
		KeyLength:   cfg.Argon2KeyLn,
		Salt:        []byte(cfg.Argon2Salt),
	})
}

// warnStaleSeeds logs every seeded argon2 digest that the configured hasher
// can never reproduce and returns how many there were.
func warnStaleSeeds(log zerolog.Logger, hasher goVerify.Hasher, seeds []config.Seed) int {
	a2, ok := hasher.(*password.Argon2)
	if !ok {
		return 0
	}
	stale := 0
	for _, s := range seeds {
		upgrade, err := a2.NeedsUpgrade(s.PasswordHash)
		if err == nil && !upgrade {
			continue
		}
		stale++
		ev := log.Warn().Str("account_id", s.AccountID)
		if err != nil {
			ev = ev.Err(err)
		}
		ev.Msg("seeded password hash does not match the argon2 settings; account cannot verify")
	}
	return stale
}

// newNotifier always logs failures and adds Slack and the webhook when
// configured.
func newNotifier(cfg config.NotifyConfig, log zerolog.Logger) goVerify.Notifier {
	targets := notify.Fanout{notify.NewLog(log)}
	if cfg.SlackToken != "" && cfg.SlackChannel != "" {
		targets = append(targets, notify.NewSlack(notify.SlackConfig{
			Token:    cfg.SlackToken,
			Channel:  cfg.SlackChannel,
			Username: cfg.SlackUsername,
			APIURL:   cfg.SlackAPIURL,
		}))
	}
	if cfg.WebhookURL != "" {
		var opts []notify.WebhookOption
		if cfg.WebhookAuthHeader != "" {
			opts = append(opts, notify.WithHeader("Authorization", cfg.WebhookAuthHeader))
		}
		targets = append(targets, notify.NewWebhook(cfg.WebhookURL, opts...))
	}
	if len(targets) == 1 {
		return targets[0]
	}
	return targets
}
