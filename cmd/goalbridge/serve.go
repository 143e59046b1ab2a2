package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	serverhttp "goalbridge/internal/server/http"
)

func newServeCommand(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(v)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			app, err := newApplication(ctx, cfg, appOptions{withMetrics: true})
			if err != nil {
				return err
			}
			defer app.close(ctx)

			router := serverhttp.NewRouter(serverhttp.RouterDeps{
				Pool:           app.pool,
				Tracer:         app.tracer,
				Metrics:        app.metrics,
				Logger:         app.logger.Component("HTTP"),
				Health:         app.health,
				AllowedOrigins: cfg.Server.AllowedOrigins,
				RateLimit: serverhttp.RateLimitConfig{
					RequestsPerMinute: cfg.Server.RateLimitPerMinute,
					Burst:             cfg.Server.RateLimitBurst,
				},
				Debug: v.GetBool("server.debug"),
			})
			server := serverhttp.NewServer(router, serverhttp.ServerOptions{
				Addr:            cfg.Server.Addr,
				ReadTimeout:     cfg.Server.ReadTimeout,
				WriteTimeout:    cfg.Server.WriteTimeout,
				ShutdownTimeout: cfg.Server.ShutdownTimeout,
			}, app.logger.Component("HTTP"))

			fmt.Fprintf(cmd.ErrOrStderr(), "%s %s\n", successLine("goalbridge listening on"), cyan(cfg.Server.Addr))
			if err := server.Run(ctx); err != nil {
				return err
			}
			if ctx.Err() != nil && cmd.Context().Err() == nil {
				app.logger.Component("Main").Info("received shutdown signal")
			}
			return nil
		},
	}
	cmd.Flags().String("addr", "", "listen address (overrides server.addr)")
	cmd.Flags().Bool("debug", false, "run gin in debug mode")
	_ = v.BindPFlag("server.addr", cmd.Flags().Lookup("addr"))
	_ = v.BindPFlag("server.debug", cmd.Flags().Lookup("debug"))
	return cmd
}

func newMigrateCommand(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the Postgres tables and indexes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(v)
			if err != nil {
				return err
			}
			if cfg.Database.URL == "" {
				return fmt.Errorf("migrate needs a database url (--database-url or GOALBRIDGE_DATABASE_URL)")
			}
			cfg.Database.AutoMigrate = false

			ctx := cmd.Context()
			app, err := newApplication(ctx, cfg, appOptions{})
			if err != nil {
				return err
			}
			defer app.close(context.WithoutCancel(ctx))

			if err := app.pgStore.EnsureSchema(ctx); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), successLine("schema is up to date"))
			return nil
		},
	}
}
