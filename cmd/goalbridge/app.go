package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"

	"goalbridge/internal/app/engine"
	"goalbridge/internal/app/translator"
	"goalbridge/internal/config"
	"goalbridge/internal/domain/framework"
	"goalbridge/internal/infra/frameworkstore"
	"goalbridge/internal/observability"
	sharederrors "goalbridge/internal/shared/errors"
)

// application holds the process-wide components shared by every command.
type application struct {
	cfg     config.Config
	logger  *observability.Logger
	tracer  *observability.TracerProvider
	metrics *observability.MetricsCollector
	store   framework.Store
	pg      *pgxpool.Pool
	pgStore *frameworkstore.PostgresStore
	pool    *engine.Pool
}

type appOptions struct {
	logOutput   io.Writer
	withMetrics bool
}

func newApplication(ctx context.Context, cfg config.Config, opts appOptions) (*application, error) {
	if opts.logOutput == nil {
		opts.logOutput = os.Stderr
	}
	app := &application{cfg: cfg}
	app.logger = observability.NewLogger(observability.LogConfig{
		Level:  cfg.Observability.Logging.Level,
		Format: cfg.Observability.Logging.Format,
		Output: opts.logOutput,
	})
	app.logger.SetDefault()

	var err error
	if app.tracer, err = observability.NewTracerProvider(cfg.Observability.Tracing); err != nil {
		return nil, err
	}
	metricsCfg := cfg.Observability.Metrics
	metricsCfg.Enabled = metricsCfg.Enabled && opts.withMetrics
	if app.metrics, err = observability.NewMetricsCollector(metricsCfg); err != nil {
		app.close(ctx)
		return nil, err
	}

	if err := app.openStore(ctx); err != nil {
		app.close(ctx)
		return nil, err
	}

	var poolMetrics *observability.PoolMetrics
	if opts.withMetrics {
		poolMetrics = observability.NewPoolMetrics()
	}
	app.pool, err = engine.NewPool(engine.Deps{
		Registry:       translator.NewDefaultRegistry(translator.Options{Heuristics: cfg.Heuristics}),
		Configurations: app.store,
		Rules:          app.store,
		Metrics:        app.store,
		Audit:          app.store,
		Heuristics:     cfg.Heuristics,
		Instruments:    app.metrics,
		Tracer:         app.tracer,
		Logger:         app.logger.Component("Engine"),
		AuditTimeout:   cfg.Engine.AuditTimeout,
	}, engine.PoolConfig{
		Size:        cfg.Engine.PoolSize,
		TTL:         cfg.Engine.PoolTTL,
		InitTimeout: cfg.Engine.InitTimeout,
	}, poolMetrics)
	if err != nil {
		app.close(ctx)
		return nil, err
	}
	return app, nil
}

func (a *application) openStore(ctx context.Context) error {
	if a.cfg.Database.URL == "" {
		a.logger.Component("Store").Info("no database configured; using in-memory store")
		a.store = frameworkstore.NewMemoryStore()
		return nil
	}
	poolCfg, err := pgxpool.ParseConfig(a.cfg.Database.URL)
	if err != nil {
		return fmt.Errorf("parse database url: %w", err)
	}
	if a.cfg.Database.MaxConns > 0 {
		poolCfg.MaxConns = a.cfg.Database.MaxConns
	}
	poolCfg.ConnConfig.ConnectTimeout = a.cfg.Database.ConnectTimeout

	connectCtx, cancel := context.WithTimeout(ctx, a.cfg.Database.ConnectTimeout)
	defer cancel()
	pg, err := pgxpool.NewWithConfig(connectCtx, poolCfg)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	if err := pg.Ping(connectCtx); err != nil {
		pg.Close()
		return fmt.Errorf("ping database: %w", err)
	}
	a.pg = pg

	policy := sharederrors.DefaultRetryPolicy()
	if a.cfg.Engine.AuditMaxAttempts > 0 {
		policy.MaxAttempts = uint64(a.cfg.Engine.AuditMaxAttempts)
	}
	a.pgStore, err = frameworkstore.NewPostgresStore(pg,
		frameworkstore.WithRetryPolicy(policy),
		frameworkstore.WithLogger(a.logger.Component("Store")),
	)
	if err != nil {
		return err
	}
	if a.cfg.Database.AutoMigrate {
		if err := a.pgStore.EnsureSchema(ctx); err != nil {
			return err
		}
	}
	a.store = a.pgStore
	return nil
}

// health pings the database when one is configured.
func (a *application) health(ctx context.Context) error {
	if a.pg == nil {
		return nil
	}
	return a.pg.Ping(ctx)
}

// close drains pending audit writes before releasing the database.
func (a *application) close(ctx context.Context) {
	if a.pool != nil {
		drainCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), a.cfg.Engine.DrainTimeout)
		if err := a.pool.Drain(drainCtx); err != nil {
			a.logger.Component("Main").Warn("audit writes still pending at shutdown: %v", err)
		}
		cancel()
	}
	if a.pg != nil {
		a.pg.Close()
	}
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), a.cfg.Server.ShutdownTimeout)
	defer cancel()
	if a.metrics != nil {
		_ = a.metrics.Shutdown(shutdownCtx)
	}
	if a.tracer != nil {
		_ = a.tracer.Shutdown(shutdownCtx)
	}
}
