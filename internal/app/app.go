package app

import (
	"context"
	"errors"
	"os"
	"strings"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"qcloud/internal/client"
	"qcloud/internal/domain"
	"qcloud/internal/infra/config"
	"qcloud/internal/infra/taskstore"
	"qcloud/internal/infra/telemetry"
	"qcloud/internal/infra/transport"
)

// Overrides are values given on the command line. Nil pointers and empty
// strings leave the loaded configuration untouched.
type Overrides struct {
	APIBase         *string
	APIKey          *string
	Verbose         *bool
	StorePath       string
	MetricsTextfile string
}

type Options struct {
	ConfigPath string
	Overrides  Overrides
	// Logger replaces the logger otherwise built from the configuration.
	Logger *zap.Logger
	// Transport replaces the HTTP transport, mainly for tests.
	Transport domain.Transport
}

// App owns the long-lived dependencies of one CLI invocation.
type App struct {
	cfg        config.Config
	logger     *zap.Logger
	ownsLogger bool
	registry   *prometheus.Registry
	metrics    *telemetry.PrometheusMetrics
	session    *client.Session
	client     *client.Client

	mu    sync.Mutex
	store *taskstore.Store
}

func New(ctx context.Context, opts Options) (*App, error) {
	bootstrap := opts.Logger
	if bootstrap == nil {
		bootstrap = zap.NewNop()
	}
	cfg, err := config.NewLoader(bootstrap).Load(ctx, opts.ConfigPath)
	if err != nil {
		return nil, err
	}
	cfg = applyOverrides(cfg, opts.Overrides)

	logger := opts.Logger
	ownsLogger := false
	if logger == nil {
		logger, err = NewLogger(LoggingConfig{Level: cfg.LogLevel, Development: cfg.Verbose})
		if err != nil {
			return nil, domain.E(domain.CodeConfiguration, "app.New", "build logger", err)
		}
		ownsLogger = true
	}
	logger = logger.Named("app")

	session, err := client.NewSession(cfg.APIBase, cfg.APIKey)
	if err != nil {
		return nil, err
	}
	session.SetVerbose(cfg.Verbose)
	if cfg.Noise.Configured() {
		if err := session.SetNoise(cfg.Noise); err != nil {
			return nil, err
		}
	}

	registry := prometheus.NewRegistry()
	metrics := telemetry.NewPrometheusMetrics(registry)

	tr := opts.Transport
	if tr == nil {
		tr = transport.NewHTTPTransport(transport.HTTPTransportOptions{
			Logger:  logger,
			Timeout: cfg.RequestTimeout,
		})
	}
	cl, err := client.NewClient(session, client.ClientOptions{
		Transport:         tr,
		Logger:            logger,
		Metrics:           metrics,
		PollInterval:      cfg.PollInterval,
		BatchPollInterval: cfg.BatchPollInterval,
		PollTimeout:       cfg.PollTimeout,
	})
	if err != nil {
		return nil, err
	}

	logger.Debug("app initialized",
		zap.String("config", cfg.Source),
		zap.String("apiBase", cfg.APIBase),
		zap.Bool("noise", cfg.Noise.Configured()),
	)
	return &App{
		cfg:        cfg,
		logger:     logger,
		ownsLogger: ownsLogger,
		registry:   registry,
		metrics:    metrics,
		session:    session,
		client:     cl,
	}, nil
}

func applyOverrides(cfg config.Config, o Overrides) config.Config {
	if o.APIBase != nil && strings.TrimSpace(*o.APIBase) != "" {
		cfg.APIBase = strings.TrimRight(strings.TrimSpace(*o.APIBase), "/")
	}
	if o.APIKey != nil && strings.TrimSpace(*o.APIKey) != "" {
		cfg.APIKey = strings.TrimSpace(*o.APIKey)
	}
	if o.Verbose != nil {
		cfg.Verbose = *o.Verbose
	}
	if path := strings.TrimSpace(o.StorePath); path != "" {
		cfg.TaskStorePath = path
	}
	if path := strings.TrimSpace(o.MetricsTextfile); path != "" {
		cfg.MetricsTextfile = path
	}
	return cfg
}

func (a *App) Config() config.Config {
	return a.cfg
}

func (a *App) Logger() *zap.Logger {
	return a.logger
}

func (a *App) Client() *client.Client {
	return a.client
}

func (a *App) Session() *client.Session {
	return a.session
}

func (a *App) Registry() *prometheus.Registry {
	return a.registry
}

// Store opens the task store on first use.
func (a *App) Store() (*taskstore.Store, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.store != nil {
		return a.store, nil
	}
	path := a.cfg.TaskStorePath
	if path == "" {
		path = taskstore.ResolveDefaultPath()
	}
	store, err := taskstore.Open(path)
	if err != nil {
		return nil, err
	}
	a.logger.Debug("task store opened", zap.String("path", store.Path()))
	a.store = store
	return store, nil
}

// flushMetrics writes the registry to the configured textfile, or to stderr
// in text exposition format when the path is "-".
func (a *App) flushMetrics() error {
	switch a.cfg.MetricsTextfile {
	case "":
		return nil
	case "-":
		return telemetry.WriteText(os.Stderr, a.registry)
	default:
		return telemetry.WriteTextfile(a.cfg.MetricsTextfile, a.registry)
	}
}

// Close flushes metrics to the configured textfile and releases the store.
func (a *App) Close() error {
	var errs []error
	if err := a.flushMetrics(); err != nil {
		errs = append(errs, err)
	}
	a.mu.Lock()
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	a.mu.Unlock()
	if a.ownsLogger {
		_ = a.logger.Sync()
	}
	return errors.Join(errs...)
}
