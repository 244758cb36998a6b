package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/goliatone/go-addressfields/components/addressfields"
	"github.com/goliatone/go-addressfields/internal/config"
	"github.com/goliatone/go-addressfields/internal/logging"
	"github.com/goliatone/go-addressfields/pkg/catalog"
	"github.com/goliatone/go-addressfields/pkg/metrics"
)

const shutdownTimeout = 5 * time.Second

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the address fields HTTP server",
		Long:  `Serves the address fields JSON API and Prometheus metrics. Redis caching is enabled when a Redis address is configured.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := serveConfig(cmd)
			if err != nil {
				return err
			}
			logger := logging.NewWithWriter(cmd.ErrOrStderr(), logging.ParseLevel(cfg.LogLevel))

			static, err := loadCatalog(cfg.CatalogPath)
			if err != nil {
				return err
			}

			reg := prometheus.NewRegistry()
			reg.MustRegister(
				collectors.NewGoCollector(),
				collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
			)
			m := metrics.New(reg)

			var cache redis.Cmdable
			if cfg.Redis.Enabled() {
				client, err := connectRedis(cmd.Context(), cfg.Redis)
				if err != nil {
					return err
				}
				defer client.Close()
				cache = client
			}

			cat := buildCatalog(static, cache, cfg, m, logger)
			handler, err := newServerHandler(cfg, cat, reg, logger)
			if err != nil {
				return err
			}
			return listen(cmd.Context(), cfg.Addr, handler, logger)
		},
	}

	cmd.Flags().StringP("addr", "a", "", "Listen address (overrides config)")
	cmd.Flags().String("base-path", "", "Path prefix for the API routes (overrides config)")
	cmd.Flags().String("redis", "", "Redis address for the metadata cache (overrides config)")
	return cmd
}

// serveConfig loads the configuration file and applies flag overrides.
func serveConfig(cmd *cobra.Command) (config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return config.Config{}, err
	}

	if v, _ := cmd.Flags().GetString("addr"); v != "" {
		cfg.Addr = v
	}
	if v, _ := cmd.Flags().GetString("base-path"); v != "" {
		cfg.BasePath = v
	}
	if v, _ := cmd.Flags().GetString("redis"); v != "" {
		cfg.Redis.Addr = v
	}
	if v, _ := cmd.Flags().GetString("catalog"); v != "" {
		cfg.CatalogPath = v
	}
	if cmd.Flags().Changed("log-level") {
		cfg.LogLevel, _ = cmd.Flags().GetString("log-level")
	}
	return cfg, nil
}

func connectRedis(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return client, nil
}

// buildCatalog layers the decorators over the static catalog:
// sanitize(instrument(cache(static))). client may be nil.
func buildCatalog(static catalog.Catalog, client redis.Cmdable, cfg config.Config, m *metrics.Metrics, logger *slog.Logger) catalog.Catalog {
	cat := static
	if client != nil {
		cat = catalog.NewCached(cat, client,
			catalog.WithCachePrefix(cfg.Redis.Prefix),
			catalog.WithCacheTTL(cfg.Redis.TTL),
			catalog.WithCacheLogger(logger),
			catalog.WithCacheMetrics(m),
		)
	}
	cat = catalog.NewInstrumented(cat, m, logger)
	return catalog.NewSanitized(cat)
}

func newServerHandler(cfg config.Config, cat catalog.Catalog, gatherer prometheus.Gatherer, logger *slog.Logger) (http.Handler, error) {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	component := addressfields.New(
		addressfields.WithCatalog(cat),
		addressfields.WithDefaultLocale(cfg.DefaultLocale),
		addressfields.WithLocaleCookie(cfg.LocaleCookie),
		addressfields.WithLogger(logger),
	)
	pattern, err := component.RegisterRoutes(r, cfg.BasePath)
	if err != nil {
		return nil, err
	}
	logger.Info("address fields routes registered", "path", pattern)

	r.Handle(cfg.MetricsPath, promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	return r, nil
}

func listen(ctx context.Context, addr string, handler http.Handler, logger *slog.Logger) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("address fields server listening", "addr", srv.Addr)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
		logger.Info("shutting down address fields server")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("graceful shutdown did not complete", "timeout", shutdownTimeout, "error", err)
		return srv.Close()
	}
	return nil
}
