package cli

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/aretw0/ruleflow"
	"github.com/aretw0/ruleflow/internal/config"
	"github.com/aretw0/ruleflow/pkg/adapters/evaluator"
	"github.com/aretw0/ruleflow/pkg/adapters/file"
	"github.com/aretw0/ruleflow/pkg/adapters/memory"
	redisAdapter "github.com/aretw0/ruleflow/pkg/adapters/redis"
	"github.com/aretw0/ruleflow/pkg/observability"
	"github.com/aretw0/ruleflow/pkg/persistence/middleware"
	"github.com/aretw0/ruleflow/pkg/ports"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// App is a ruleflow Service wired from a Config, plus what it needs to be torn down.
type App struct {
	Service *ruleflow.Service
	// Registry holds the ruleflow and process collectors. Nil when metrics are disabled.
	Registry *prometheus.Registry

	closers []func() error
}

// Close releases the connections opened by BuildApp.
func (a *App) Close() error {
	var errs []error
	for _, c := range a.closers {
		errs = append(errs, c())
	}
	return errors.Join(errs...)
}

// storeOptions opens the configured store and locker. Anything it opened is
// closed again when it fails.
func (a *App) storeOptions(cfg config.StoreConfig) (opts []ruleflow.Option, encrypted bool, err error) {
	defer func() {
		if err != nil {
			_ = a.Close()
		}
	}()

	var store ports.WorkflowStore
	switch strings.ToLower(cfg.Driver) {
	case config.StoreFile:
		store = file.New(cfg.Path)
		opts = append(opts, ruleflow.WithLocker(memory.NewLocker()))
	case config.StoreRedis:
		rs := redisAdapter.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB,
			redisAdapter.WithPrefix(cfg.Redis.Prefix))
		a.closers = append(a.closers, rs.Client().Close)
		store = rs
		opts = append(opts, ruleflow.WithLocker(redisAdapter.NewLocker(rs.Client(), cfg.Redis.Prefix)))
	default:
		store = memory.NewStore()
		opts = append(opts, ruleflow.WithLocker(memory.NewLocker()))
	}

	active, fallbacks, err := cfg.Keys()
	if err != nil {
		return nil, false, err
	}
	if active != nil {
		encrypt, err := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{
			ActiveKey:    active,
			FallbackKeys: fallbacks,
		})
		if err != nil {
			return nil, false, err
		}
		store = middleware.Chain(store, encrypt)
	}

	return append(opts, ruleflow.WithWorkflowStore(store)), active != nil, nil
}

// BuildApp creates the Service described by cfg.
func BuildApp(cfg config.Config, logger *slog.Logger) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	app := &App{}
	opts := []ruleflow.Option{ruleflow.WithLogger(logger)}

	// 1. Store (and the lock that comes with Redis)
	storeOpts, encrypted, err := app.storeOptions(cfg.Store)
	if err != nil {
		return nil, err
	}
	opts = append(opts, storeOpts...)

	// 2. Rules
	if cfg.Rules.Dir != "" {
		opts = append(opts, ruleflow.WithRulesDir(cfg.Rules.Dir))
	}

	// 3. Evaluator
	if cfg.Evaluator.URL != "" {
		opts = append(opts, ruleflow.WithEvaluator(NewEvaluator(cfg.Evaluator)))
	}

	// 4. Metrics
	if cfg.Metrics.Enabled {
		app.Registry = prometheus.NewRegistry()
		app.Registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		opts = append(opts, ruleflow.WithMetrics(observability.NewMetrics(app.Registry)))
	}

	svc, err := ruleflow.New(opts...)
	if err != nil {
		_ = app.Close()
		return nil, err
	}
	app.Service = svc

	logger.Debug("service configured",
		"store", cfg.Store.Driver,
		"rules_dir", cfg.Rules.Dir,
		"evaluator", cfg.Evaluator.URL,
		"metrics", cfg.Metrics.Enabled,
		"encrypted", encrypted,
	)
	return app, nil
}

// NewEvaluator creates the HTTP evaluator client for cfg. A token is sent as a bearer credential.
func NewEvaluator(cfg config.EvaluatorConfig) *evaluator.Client {
	var opts []evaluator.Option
	if cfg.Timeout > 0 {
		opts = append(opts, evaluator.WithTimeout(cfg.Timeout))
	}
	if cfg.Token != "" {
		opts = append(opts, evaluator.WithHeader("Authorization", "Bearer "+cfg.Token))
	}
	return evaluator.New(cfg.URL, opts...)
}
