package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/ehr/healthassist/internal/config"
	"github.com/ehr/healthassist/internal/domain/inference"
	"github.com/ehr/healthassist/internal/domain/riskassessment"
	"github.com/ehr/healthassist/internal/knowledge"
	"github.com/ehr/healthassist/internal/platform/auth"
	"github.com/ehr/healthassist/internal/platform/db"
	"github.com/ehr/healthassist/internal/platform/middleware"
	"github.com/ehr/healthassist/internal/platform/redisclient"
	"github.com/ehr/healthassist/migrations"
)

const version = "0.1.0"

func main() {
	rootCmd := &cobra.Command{
		Use:          "healthassist-server",
		Short:        "Symptom inference and health-risk scoring API server",
		SilenceUsage: true,
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(knowledgeCmd())
	rootCmd.AddCommand(predictCmd())
	rootCmd.AddCommand(assessCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newLogger(env string, out io.Writer) zerolog.Logger {
	if env == "development" {
		return zerolog.New(zerolog.ConsoleWriter{Out: out}).Level(zerolog.DebugLevel).With().Timestamp().Logger()
	}
	return zerolog.New(out).Level(zerolog.InfoLevel).With().Timestamp().Logger()
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
	}

	// migrate up
	upCmd := &cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			schema, _ := cmd.Flags().GetString("schema")

			ctx := cmd.Context()
			migrator, closeFn, err := openMigrator(ctx)
			if err != nil {
				return err
			}
			defer closeFn()

			fmt.Fprintf(cmd.OutOrStdout(), "Running migrations on schema: %s\n", schema)
			count, err := migrator.Up(ctx, schema)
			if err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Applied %d migration(s) successfully.\n", count)
			return nil
		},
	}
	upCmd.Flags().String("schema", "public", "Target schema for migrations")
	cmd.AddCommand(upCmd)

	// migrate status
	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show migration status",
		RunE: func(cmd *cobra.Command, args []string) error {
			schema, _ := cmd.Flags().GetString("schema")

			ctx := cmd.Context()
			migrator, closeFn, err := openMigrator(ctx)
			if err != nil {
				return err
			}
			defer closeFn()

			statuses, err := migrator.Status(ctx, schema)
			if err != nil {
				return fmt.Errorf("failed to get migration status: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Migration status for schema: %s\n", schema)
			fmt.Fprintf(out, "%-10s %-40s %-10s %s\n", "VERSION", "NAME", "STATUS", "APPLIED AT")
			fmt.Fprintln(out, "---------- ---------------------------------------- ---------- --------------------")
			for _, s := range statuses {
				status := "pending"
				appliedAt := ""
				if s.Applied {
					status = "applied"
					if s.AppliedAt != nil {
						appliedAt = s.AppliedAt.Format("2006-01-02 15:04:05")
					}
				}
				fmt.Fprintf(out, "%-10d %-40s %-10s %s\n", s.Version, s.Name, status, appliedAt)
			}
			return nil
		},
	}
	statusCmd.Flags().String("schema", "public", "Target schema for migrations")
	cmd.AddCommand(statusCmd)

	return cmd
}

func openMigrator(ctx context.Context) (*db.Migrator, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	if !cfg.PersistenceEnabled() {
		return nil, nil, fmt.Errorf("DATABASE_URL is required for migrations")
	}

	pool, err := db.NewPool(ctx, db.PoolConfig{
		URL:      cfg.DatabaseURL,
		MaxConns: cfg.DBMaxConns,
		MinConns: cfg.DBMinConns,
	})
	if err != nil {
		return nil, nil, err
	}
	return db.NewMigrator(pool, migrations.FS), pool.Close, nil
}

// backends holds the optional infrastructure behind the services. A nil pool
// disables persistence and a nil redis client keeps sessions in process.
type backends struct {
	kb    *knowledge.Base
	pool  *pgxpool.Pool
	redis *redis.Client
}

func newServer(cfg *config.Config, logger zerolog.Logger, b backends) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Global middleware
	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(middleware.SecurityHeaders())
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut},
		AllowHeaders: []string{"Authorization", "Content-Type", "X-Request-ID"},
	}))
	e.Use(middleware.BodyLimit(cfg.BodyLimit))
	e.Use(middleware.RequestTimeout(cfg.RequestTimeout))

	// Auth middleware
	jwtCfg := auth.JWTConfig{
		Issuer:   cfg.AuthIssuer,
		Audience: cfg.AuthAudience,
		JWKSURL:  cfg.AuthJWKSURL,
		Skipper:  auth.AuthSkipper,
	}
	if cfg.AuthSigningKey != "" {
		jwtCfg.SigningKey = []byte(cfg.AuthSigningKey)
	}
	if cfg.IsDev() && !jwtCfg.Enabled() {
		e.Use(auth.DevAuthMiddleware(jwtCfg))
	} else {
		e.Use(auth.JWTMiddleware(jwtCfg))
	}

	// Health check
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":            "ok",
			"version":           version,
			"knowledge_version": b.kb.Version,
		})
	})
	if b.pool != nil {
		e.GET("/health/db", db.HealthHandler(b.pool))
	}
	if b.redis != nil {
		e.GET("/health/redis", redisclient.HealthHandler(b.redis))
	}

	apiV1 := e.Group("/api/v1")

	// Rate limiting middleware
	rateLimitCfg := middleware.DefaultRateLimitConfig()
	if cfg.RateLimitRPS > 0 {
		rateLimitCfg.RequestsPerSecond = cfg.RateLimitRPS
	}
	if cfg.RateLimitBurst > 0 {
		rateLimitCfg.BurstSize = cfg.RateLimitBurst
	}
	apiV1.Use(middleware.RateLimit(rateLimitCfg))

	// Symptom checks
	var checkRepo inference.CheckRepository
	if b.pool != nil {
		checkRepo = inference.NewCheckRepoPG(b.pool)
	}
	inferenceSvc := inference.NewService(b.kb, checkRepo, logger, inference.Options{
		ThinkingDelay: cfg.ThinkingDelay,
		MaxTextLength: cfg.MaxTextLength,
	})
	inference.NewHandler(inferenceSvc).RegisterRoutes(apiV1)

	// Risk assessments
	var sessions riskassessment.SessionStore
	if b.redis != nil {
		sessions = riskassessment.NewRedisStore(b.redis, cfg.SessionTTL)
	} else {
		sessions = riskassessment.NewMemoryStore(cfg.SessionTTL)
	}
	var resultRepo riskassessment.ResultRepository
	if b.pool != nil {
		resultRepo = riskassessment.NewResultRepoPG(b.pool)
	}
	riskSvc := riskassessment.NewService(b.kb, sessions, resultRepo, logger)
	riskassessment.NewHandler(riskSvc).RegisterRoutes(apiV1)

	return e
}

func runServer() error {
	// Config
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// Logger
	logger := newLogger(cfg.Env, os.Stdout)

	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("invalid configuration")
	}
	if cfg.IsDev() && !cfg.AuthConfigured() {
		logger.Warn().Msg("development mode: requests without a bearer token get admin access; do not use this configuration in production")
	}

	// Knowledge base
	kb, err := knowledge.Resolve(cfg.KnowledgeDir)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load knowledge base")
	}
	logger.Info().
		Str("version", kb.Version).
		Int("symptoms", len(kb.Vocabulary())).
		Int("questions", len(kb.Questionnaire)).
		Msg("knowledge base loaded")

	ctx := context.Background()
	b := backends{kb: kb}

	// Database
	if cfg.PersistenceEnabled() {
		pool, err := db.NewPool(ctx, db.PoolConfig{
			URL:      cfg.DatabaseURL,
			MaxConns: cfg.DBMaxConns,
			MinConns: cfg.DBMinConns,
		})
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect to database")
		}
		defer pool.Close()
		b.pool = pool
		logger.Info().Msg("connected to database")
	} else {
		logger.Info().Msg("DATABASE_URL not set; symptom checks and assessment results are not persisted")
	}

	// Session store
	if cfg.RedisURL != "" {
		client, err := redisclient.NewClient(ctx, cfg.RedisURL)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect to redis")
		}
		defer client.Close()
		b.redis = client
		logger.Info().Msg("connected to redis")
	}

	e := newServer(cfg, logger, b)

	// Graceful shutdown
	go func() {
		addr := ":" + cfg.Port
		logger.Info().Str("addr", addr).Msg("starting server")
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("server shutdown failed")
		return err
	}
	logger.Info().Msg("server stopped")
	return nil
}
