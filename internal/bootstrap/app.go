package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/erp/backoffice/internal/infrastructure/auth"
	"github.com/erp/backoffice/internal/infrastructure/cache"
	"github.com/erp/backoffice/internal/infrastructure/config"
	"github.com/erp/backoffice/internal/infrastructure/discovery"
	"github.com/erp/backoffice/internal/infrastructure/event"
	"github.com/erp/backoffice/internal/infrastructure/lock"
	"github.com/erp/backoffice/internal/infrastructure/logger"
	"github.com/erp/backoffice/internal/infrastructure/persistence"
	"github.com/erp/backoffice/internal/infrastructure/telemetry"
	"github.com/erp/backoffice/internal/interfaces/http/handler"
	"github.com/erp/backoffice/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Version is set at build time with -ldflags "-X ...bootstrap.Version=..."
var Version = "dev"

// App owns every long lived resource of the server process
type App struct {
	Config    *config.Config
	Logger    *zap.Logger
	Container *Container
	Engine    *gin.Engine

	db        *persistence.Database
	redis     *redis.Client
	tracer    *telemetry.TracerProvider
	meter     *telemetry.MeterProvider
	profiler  *telemetry.Profiler
	registrar *discovery.ConsulRegistrar
	server    *http.Server
	closers   []func() error
}

// NewApp connects to every configured backend and assembles the service.
// Whatever was opened before a failure is closed again.
func NewApp(ctx context.Context, cfg *config.Config, log *zap.Logger) (*App, error) {
	a := &App{Config: cfg, Logger: log}
	var sinks []event.Sink
	ok := false
	defer func() {
		if ok {
			return
		}
		for _, s := range sinks {
			_ = s.Close()
		}
		a.close()
	}()

	tcfg := telemetryConfig(cfg)
	var err error
	if a.tracer, err = telemetry.NewTracerProvider(ctx, tcfg, log); err != nil {
		return nil, err
	}
	if a.meter, err = telemetry.NewMeterProvider(ctx, tcfg, log); err != nil {
		return nil, err
	}
	if a.profiler, err = telemetry.NewProfiler(profilerConfig(cfg), log); err != nil {
		return nil, err
	}
	a.closers = append(a.closers, a.profiler.Stop)
	if a.profiler.Enabled() {
		a.tracer.EnableSpanProfiles()
	}

	a.db, err = persistence.NewDatabase(&cfg.Database, persistence.Options{
		Logger:        log,
		LogLevel:      cfg.Log.Level,
		SlowThreshold: cfg.Telemetry.DBSlowQueryThresh,
		Trace:         cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled,
		TraceFullSQL:  cfg.Telemetry.DBLogFullSQL,
	})
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, a.db.Close)
	if cfg.Database.Driver == "sqlite" {
		if err := persistence.AutoMigrate(a.db.DB); err != nil {
			return nil, fmt.Errorf("migrate sqlite schema: %w", err)
		}
	}
	log.Info("Database connected", zap.String("driver", cfg.Database.Driver))

	infra, err := a.buildInfra(ctx)
	if err != nil {
		return nil, err
	}
	sinks = infra.Sinks

	if a.Container, err = NewContainer(a.db.DB, cfg, infra, log); err != nil {
		return nil, err
	}
	// the processor owns the sinks from here on
	sinks = nil

	a.Engine, err = router.NewEngine(router.EngineConfig{
		Logger:           log,
		Authenticator:    a.Container.Auth,
		Handlers:         a.Container.Handlers(cfg.App.Name, Version, a.healthChecks()...),
		ServiceName:      cfg.Telemetry.ServiceName,
		TracingEnabled:   cfg.Telemetry.Enabled,
		Meter:            infra.Meter,
		CORSAllowOrigins: cfg.HTTP.CORSAllowOrigins,
		TrustedProxies:   cfg.HTTP.TrustedProxies,
		MaxBodySize:      cfg.HTTP.MaxBodySize,
	})
	if err != nil {
		return nil, err
	}

	a.server = &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        a.Engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	if cfg.Discovery.Enabled {
		if a.registrar, err = discovery.NewConsulRegistrar(cfg.Discovery, cfg.App, log); err != nil {
			return nil, err
		}
	}

	ok = true
	return a, nil
}

// NewLogger builds the process logger. With telemetry logs enabled every
// record is also shipped over OTLP until the returned provider shuts down.
func NewLogger(ctx context.Context, cfg *config.Config) (*zap.Logger, *telemetry.LoggerProvider, error) {
	logs, err := telemetry.NewLoggerProvider(ctx, telemetryConfig(cfg), cfg.Telemetry.LogsEnabled, zap.NewNop())
	if err != nil {
		return nil, nil, err
	}
	log, err := logger.New(&logger.Config{
		Level:       cfg.Log.Level,
		Format:      cfg.Log.Format,
		Output:      cfg.Log.Output,
		OTLP:        logs.Provider(),
		ServiceName: cfg.Telemetry.ServiceName,
	})
	if err != nil {
		_ = logs.Shutdown(ctx)
		return nil, nil, err
	}
	if logs.Provider() != nil {
		log.Info("OTLP logs enabled", zap.String("collector_endpoint", cfg.Telemetry.CollectorEndpoint))
	}
	return log, logs, nil
}

func telemetryConfig(cfg *config.Config) telemetry.Config {
	return telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
		MetricsInterval:   cfg.Telemetry.MetricsInterval,
	}
}

func profilerConfig(cfg *config.Config) telemetry.ProfilerConfig {
	return telemetry.ProfilerConfig{
		Enabled:           cfg.Telemetry.ProfilingEnabled,
		ServerAddress:     cfg.Telemetry.ProfilingAddress,
		ApplicationName:   cfg.Telemetry.ServiceName,
		BasicAuthUser:     cfg.Telemetry.ProfilingUser,
		BasicAuthPassword: cfg.Telemetry.ProfilingPassword,
		ProfileTypes:      cfg.Telemetry.ProfilingTypes,
	}
}

// buildInfra picks the lock, idempotency, blacklist and broker backends
func (a *App) buildInfra(ctx context.Context) (Infra, error) {
	cfg := a.Config
	var infra Infra

	if cfg.Ledger.LockBackend == "redis" {
		client, err := cache.NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			return infra, err
		}
		a.redis = client
		a.closers = append(a.closers, client.Close)
		infra.Locker = lock.NewRedisLocker(client, cfg.Ledger.LockTTL, a.Logger)
		infra.Processed = cache.NewRedisIdempotencyStore(client, "")
		infra.Blacklist = auth.NewRedisTokenBlacklist(client)
	} else {
		store := cache.NewInMemoryIdempotencyStore()
		a.closers = append(a.closers, store.Close)
		infra.Locker = lock.NewMemoryLocker()
		infra.Processed = store
	}

	if cfg.Telemetry.Enabled {
		infra.Meter = a.meter.Meter(cfg.Telemetry.ServiceName)
	}

	switch cfg.Event.Broker {
	case "kafka":
		infra.Sinks = append(infra.Sinks, event.NewKafkaSink(cfg.Event.KafkaBrokers, cfg.Event.KafkaTopic))
	case "rabbitmq":
		sink, err := event.NewRabbitMQSink(cfg.Event.RabbitMQURL, cfg.Event.RabbitMQExchange)
		if err != nil {
			return infra, err
		}
		infra.Sinks = append(infra.Sinks, sink)
	}
	a.Logger.Info("Infrastructure ready",
		zap.String("lock_backend", cfg.Ledger.LockBackend),
		zap.String("broker", cfg.Event.Broker),
	)
	return infra, nil
}

func (a *App) healthChecks() []handler.HealthCheck {
	checks := []handler.HealthCheck{{
		Name: "database",
		Check: func(ctx context.Context) error {
			sqlDB, err := a.db.DB.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		},
	}}
	if a.redis != nil {
		checks = append(checks, handler.HealthCheck{
			Name:  "redis",
			Check: func(ctx context.Context) error { return a.redis.Ping(ctx).Err() },
		})
	}
	return checks
}

// Run starts the outbox processor and serves HTTP until ctx is done or the
// listener fails
func (a *App) Run(ctx context.Context) error {
	if a.Config.Event.ProcessorEnabled {
		if err := a.Container.Processor.Start(ctx); err != nil {
			return fmt.Errorf("start outbox processor: %w", err)
		}
	}
	if a.registrar != nil {
		if err := a.registrar.Register(); err != nil {
			a.Logger.Warn("Consul registration failed", zap.Error(err))
		}
	}

	errCh := make(chan error, 1)
	go func() {
		a.Logger.Info("Server starting", zap.String("addr", a.server.Addr))
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		return nil
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	}
}

// Shutdown drains HTTP, stops the outbox processor and releases every
// connection
func (a *App) Shutdown(ctx context.Context) error {
	var errs []error
	if a.registrar != nil {
		if err := a.registrar.Deregister(); err != nil {
			errs = append(errs, err)
		}
	}
	if a.server != nil {
		if err := a.server.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("http shutdown: %w", err))
		}
	}
	if a.Container != nil {
		if err := a.Container.Processor.Stop(ctx); err != nil {
			errs = append(errs, fmt.Errorf("outbox processor: %w", err))
		}
	}
	if a.tracer != nil {
		if err := a.tracer.Shutdown(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	if a.meter != nil {
		if err := a.meter.Shutdown(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	if err := a.close(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// close releases stores and connections in reverse opening order
func (a *App) close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
