package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"

	"github.com/aretw0/stepper"
	"github.com/aretw0/stepper/internal/logging"
	"github.com/aretw0/stepper/pkg/adapters/file"
	"github.com/aretw0/stepper/pkg/adapters/memory"
	"github.com/aretw0/stepper/pkg/adapters/redis"
	"github.com/aretw0/stepper/pkg/config"
	"github.com/aretw0/stepper/pkg/observability"
	"github.com/aretw0/stepper/pkg/persistence/middleware"
	"github.com/aretw0/stepper/pkg/ports"
	"github.com/aretw0/stepper/pkg/session"
	"github.com/prometheus/client_golang/prometheus"
)

// Options are the global flags shared by every command.
type Options struct {
	ConfigPath string
	Dir        string
	Debug      bool
}

// App is a fully wired engine plus the pieces commands need around it.
type App struct {
	Config  config.Config
	Engine  *stepper.Engine
	Store   ports.StateStore
	Logger  *slog.Logger
	Metrics *prometheus.Registry

	closers []io.Closer
}

// SetupOption customizes Setup.
type SetupOption func(*setup)

type setup struct {
	hooks []stepper.Option
}

// WithHooks adds engine options carrying lifecycle hooks.
func WithHooks(opts ...stepper.Option) SetupOption {
	return func(s *setup) {
		s.hooks = append(s.hooks, opts...)
	}
}

// Setup loads the configuration and wires store, middlewares, locking, metrics and logging.
func Setup(opts Options, extra ...SetupOption) (*App, error) {
	var s setup
	for _, opt := range extra {
		opt(&s)
	}

	path := opts.ConfigPath
	if path == "" && opts.Dir != "" {
		path = filepath.Join(opts.Dir, "stepper.yaml")
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger, err := createLogger(cfg, opts.Debug)
	if err != nil {
		return nil, err
	}
	app := &App{Config: cfg, Logger: logger, Metrics: prometheus.NewRegistry()}

	store, locker, err := app.createStore(opts.Dir)
	if err != nil {
		return nil, err
	}
	app.Store, err = wrapStore(store, cfg.Privacy)
	if err != nil {
		app.Close()
		return nil, err
	}

	managerOpts := []session.Option{session.WithLogger(logger)}
	if locker != nil {
		managerOpts = append(managerOpts,
			session.WithLocker(locker),
			session.WithLockTTL(cfg.Store.Redis.LockTTL),
		)
	}

	metrics := observability.NewMetrics(app.Metrics)
	engineOpts := []stepper.Option{
		stepper.WithManager(session.NewManager(app.Store, managerOpts...)),
		stepper.WithLogger(logger),
		stepper.WithMaxRows(cfg.MaxRows),
		stepper.WithLifecycleHooks(metrics.Hooks()),
	}
	if cfg.Seed != "" {
		engineOpts = append(engineOpts, stepper.WithSeed(cfg.Seed))
	}
	if opts.Debug {
		engineOpts = append(engineOpts, stepper.WithLifecycleHooks(observability.LoggingHooks(logger)))
	}
	app.Engine = stepper.New(append(engineOpts, s.hooks...)...)
	return app, nil
}

func (a *App) createStore(dir string) (ports.StateStore, ports.DistributedLocker, error) {
	cfg := a.Config.Store
	switch cfg.Kind {
	case config.StoreMemory:
		return memory.NewStore(), nil, nil
	case config.StoreFile:
		path := cfg.Path
		if path == "" {
			path = file.DefaultDir
		}
		if dir != "" && !filepath.IsAbs(path) {
			path = filepath.Join(dir, path)
		}
		a.Logger.Debug("using file store", "path", path)
		return file.New(path), nil, nil
	case config.StoreRedis:
		redisOpts := []redis.Option{redis.WithTTL(cfg.Redis.TTL)}
		if cfg.Redis.Prefix != "" {
			redisOpts = append(redisOpts, redis.WithPrefix(cfg.Redis.Prefix))
		}
		store := redis.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, redisOpts...)
		a.closers = append(a.closers, store)
		a.Logger.Debug("using redis store", "addr", cfg.Redis.Addr)
		return store, redis.NewLocker(store.Client(), cfg.Redis.Prefix), nil
	}
	return nil, nil, fmt.Errorf("unknown store kind %q", cfg.Kind)
}

// wrapStore applies PII masking first, so that encryption seals already-masked data.
func wrapStore(store ports.StateStore, privacy config.PrivacyConfig) (ports.StateStore, error) {
	var mws []middleware.Middleware
	if len(privacy.PIIPatterns) > 0 {
		mws = append(mws, middleware.NewPIIMiddleware(privacy.PIIPatterns))
	}
	active, fallback, err := privacy.Keys()
	if err != nil {
		return nil, err
	}
	if active != nil {
		mws = append(mws, middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{
			ActiveKey:    active,
			FallbackKeys: fallback,
		}))
	}
	return middleware.Chain(store, mws...), nil
}

// Close releases connections opened by Setup.
func (a *App) Close() error {
	var errs []error
	for _, c := range a.closers {
		errs = append(errs, c.Close())
	}
	a.closers = nil
	return errors.Join(errs...)
}

// createLogger writes to Stderr (to keep Stdout for command output).
// --debug overrides the configured level.
func createLogger(cfg config.Config, debug bool) (*slog.Logger, error) {
	if debug {
		return logging.New(slog.LevelDebug), nil
	}
	level, err := cfg.Level()
	if err != nil {
		return nil, err
	}
	return logging.New(level), nil
}
