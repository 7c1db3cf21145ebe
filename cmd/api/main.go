// @title CIC Consultas API
// @version 1.0
// @description Ciclo de vida de consultas del Centro Integrador Comunitario: registro, cambios de estado y firma digital.
// @BasePath /
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"cic-consultas/internal/adapters/auth/jwtauth"
	"cic-consultas/internal/adapters/eventos"
	ipadapter "cic-consultas/internal/adapters/iplookup"
	pg "cic-consultas/internal/adapters/storage/postgres"
	"cic-consultas/internal/config"
	"cic-consultas/internal/domain/consultas"
	"cic-consultas/internal/platform/lock"
	"cic-consultas/internal/platform/logger"
	"cic-consultas/internal/platform/metrics"
	"cic-consultas/internal/ports/iplookup"
	"cic-consultas/internal/router"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "cic",
		Short:         "API de consultas del CIC",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(tokenCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Levanta la API HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			return runServer(cmd.Context(), cfg)
		},
	}
}

func newLogger(cfg *config.Config) *logger.ZeroLogger {
	return logger.New(logger.Options{
		Level:  logger.ParseLevel(cfg.Log.Level),
		Format: logger.ParseFormat(cfg.Log.Format),
		App:    cfg.App,
	})
}

func runServer(ctx context.Context, cfg *config.Config) error {
	if ctx == nil {
		ctx = context.Background()
	}
	log := newLogger(cfg)
	met := metrics.New()

	opts := router.Options{
		Logger:   log,
		Metrics:  met,
		Swagger:  cfg.Server.Swagger,
		PageSize: cfg.Consultas.PageSize,
	}

	// Auth: sin secreto => modo dev con headers X-Debug-*
	if cfg.Auth.JWTSecret != "" {
		opts.AuthVerifier = jwtauth.NewVerifier(cfg.Auth.JWTSecret, cfg.Auth.JWTIssuer)
	} else {
		log.Warn("auth en modo dev: se aceptan headers X-Debug-*", nil)
	}

	// Postgres (opcional)
	var pool *pgxpool.Pool
	if cfg.Database.DSN != "" {
		p, err := pg.NewPool(ctx, cfg.Database)
		if err != nil {
			return err
		}
		defer p.Close()
		pool = p
		opts.DB = pool
		log.Info("connected to database", nil)

		if cfg.Database.AutoMigrate {
			n, err := pg.Migrate(ctx, pool)
			if err != nil {
				return err
			}
			log.Info("migraciones aplicadas", map[string]any{"count": n})
		}
	} else {
		log.Warn("sin DB_DSN: usando repos in-memory", nil)
	}

	// Guard por consulta: Redis si está configurado
	if cfg.Redis.Addr != "" {
		client, err := lock.NewRedisClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			return err
		}
		defer client.Close()
		opts.Guard = lock.NewRedis(client, cfg.Redis.LockTTL)
	}

	// Eventos: Kafka si hay brokers, si no al log
	var pub interface {
		consultas.Publicador
		Close() error
	}
	if brokers := cfg.Kafka.KafkaBrokers(); len(brokers) > 0 {
		k, err := eventos.NewKafka(brokers, cfg.Kafka.Topic, eventos.WithLogger(log))
		if err != nil {
			return err
		}
		pub = k
	} else {
		pub = eventos.NewLog(log.With(map[string]any{"module": "eventos"}))
	}
	defer pub.Close()
	opts.Publicador = pub

	ip, err := ipResolver(cfg.IPLookup)
	if err != nil {
		return err
	}
	opts.IPResolver = ip

	srv := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      router.NewRouter(opts),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("starting server", map[string]any{"addr": srv.Addr})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-quit:
	}

	log.Info("shutting down server", nil)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	log.Info("server stopped", nil)
	return nil
}

func ipResolver(cfg config.IPLookupConfig) (iplookup.Resolver, error) {
	if cfg.Mode == "ipify" {
		return ipadapter.NewIpify(cfg.BaseURL, cfg.Timeout)
	}
	return ipadapter.FromRequest{}, nil
}
