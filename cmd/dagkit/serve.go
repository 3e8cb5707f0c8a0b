package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/kbukum/dagkit/logger"
	"github.com/kbukum/dagkit/observability"
	"github.com/kbukum/dagkit/op"
	"github.com/kbukum/dagkit/persist"
	"github.com/kbukum/dagkit/pipeline"
	"github.com/kbukum/dagkit/server"
	"github.com/kbukum/dagkit/server/endpoint"
	"github.com/kbukum/dagkit/version"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the graph execution HTTP server",
	Long: `Starts the engine with the REST API under /api/v1, health and info
endpoints, optional OTLP telemetry export, and optional graph persistence.
With persistence enabled, an existing document is replayed at boot and the
graph is saved after every successful mutation.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	logger.Init(&cfg.Service.Logging)
	log := logger.GetGlobalLogger()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	tel, err := observability.Init(ctx, &cfg.Telemetry)
	if err != nil {
		return fmt.Errorf("telemetry init: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tel.Shutdown(shutdownCtx); err != nil {
			log.Warn("Telemetry shutdown failed", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}()

	opts := []pipeline.Option{
		pipeline.WithExecutorConfig(cfg.Executor),
		pipeline.WithLogger(log),
		pipeline.WithMetrics(tel.Metrics),
	}

	var store *persist.FileStore
	if cfg.Persistence.Enabled {
		store, err = persist.NewFileStore(cfg.Persistence.Path, log)
		if err != nil {
			return fmt.Errorf("persistence init: %w", err)
		}
		opts = append(opts, pipeline.WithAutosave(store))
	}

	p, err := pipeline.New(op.DefaultRegistry(), opts...)
	if err != nil {
		return err
	}

	if store != nil && store.Exists() {
		doc, err := store.Load()
		if err != nil {
			return fmt.Errorf("load persisted graph: %w", err)
		}
		if err := p.Load(doc); err != nil {
			return fmt.Errorf("replay persisted graph: %w", err)
		}
	}

	srv := server.New(cfg.Server, log)
	srv.RegisterDefaultEndpoints(cfg.Service.Name, healthChecker(store))
	server.NewAPI(p).RegisterRoutes(srv.GinEngine())

	if err := srv.Start(ctx); err != nil {
		return err
	}
	log.Info("Server started", map[string]interface{}{
		"addr":    srv.Addr(),
		"version": version.Short(),
		"kinds":   p.Registry().Kinds(),
	})

	<-ctx.Done()
	stop()
	log.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Stop(shutdownCtx)
}

// healthChecker reports component health for /health and /ready. The graph
// itself is in-memory and always available; persistence is the only
// component that can fail underneath a running server.
func healthChecker(store *persist.FileStore) endpoint.HealthChecker {
	return func(ctx context.Context) []observability.Health {
		if store == nil {
			return nil
		}
		return []observability.Health{store.CheckHealth(ctx)}
	}
}
