package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/casework/casework/internal/config"
	"github.com/casework/casework/internal/domain/cases"
	"github.com/casework/casework/internal/domain/tasks"
	"github.com/casework/casework/internal/domain/workqueue"
	"github.com/casework/casework/internal/platform/auth"
	"github.com/casework/casework/internal/platform/calendar"
	"github.com/casework/casework/internal/platform/db"
	"github.com/casework/casework/internal/platform/events"
	"github.com/casework/casework/internal/platform/middleware"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "casework-server",
		Short: "Benefits case management API server",
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(seedCmd())
	rootCmd.AddCommand(sweepCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
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

	upCmd := &cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			migrator := db.NewMigrator(pool, dir)
			count, err := migrator.Up(ctx)
			if err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}

			fmt.Printf("Applied %d migration(s) successfully.\n", count)
			return nil
		},
	}
	upCmd.Flags().String("dir", "./migrations", "Path to migrations directory")
	cmd.AddCommand(upCmd)

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show migration status",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			migrator := db.NewMigrator(pool, dir)
			statuses, err := migrator.Status(ctx)
			if err != nil {
				return fmt.Errorf("failed to get migration status: %w", err)
			}

			fmt.Printf("%-10s %-40s %-10s %s\n", "VERSION", "NAME", "STATUS", "APPLIED AT")
			fmt.Println("---------- ---------------------------------------- ---------- --------------------")
			for _, s := range statuses {
				status := "pending"
				appliedAt := ""
				if s.Applied {
					status = "applied"
					if s.AppliedAt != nil {
						appliedAt = s.AppliedAt.Format("2006-01-02 15:04:05")
					}
				}
				fmt.Printf("%-10d %-40s %-10s %s\n", s.Version, s.Name, status, appliedAt)
			}
			return nil
		},
	}
	statusCmd.Flags().String("dir", "./migrations", "Path to migrations directory")
	cmd.AddCommand(statusCmd)

	return cmd
}

// seedCmd loads the work queue and task type reference catalogs.
func seedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Load the work queue and task type catalogs",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			wqSvc := workqueue.NewService(
				workqueue.NewQueueRepoPG(pool),
				workqueue.NewSubscriptionRepoPG(pool),
			)
			nq, err := wqSvc.SeedQueues(ctx)
			if err != nil {
				return fmt.Errorf("seeding work queues: %w", err)
			}
			fmt.Printf("Seeded %d work queue(s).\n", nq)

			taskSvc := tasks.NewService(
				tasks.NewTaskRepoPG(pool),
				tasks.NewTypeRepoPG(pool),
				tasks.NewTaskHistoryRepoPG(pool),
				events.NewLogPublisher(newLogger()), calendar.New(), txRunner(pool),
			)
			nt, err := taskSvc.SeedTypes(ctx)
			if err != nil {
				return fmt.Errorf("seeding task types: %w", err)
			}
			fmt.Printf("Seeded %d task type(s).\n", nt)
			return nil
		},
	}
}

// sweepCmd runs a single escalation sweep and exits, for cron-style setups.
func sweepCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sweep",
		Short: "Run one escalation sweep and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger()

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			cal, err := newCalendar(cfg)
			if err != nil {
				return err
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			sweeper := tasks.NewSweeper(
				tasks.NewTaskRepoPG(pool),
				tasks.NewTaskHistoryRepoPG(pool),
				events.NewLogPublisher(logger),
				cal, txRunner(pool), logger, cfg.SweepBatchSize,
			)
			stats, err := sweeper.RunOnce(ctx)
			if err != nil {
				return fmt.Errorf("sweep failed: %w", err)
			}
			fmt.Printf("Sweep complete: scanned=%d escalated=%d auto_closed=%d errors=%d\n",
				stats.Scanned, stats.Escalated, stats.AutoClosed, stats.Errors)
			return nil
		},
	}
}

func newLogger() zerolog.Logger {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if os.Getenv("ENV") == "development" {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}
	return logger
}

func newCalendar(cfg *config.Config) (*calendar.Calendar, error) {
	holidays, err := cfg.Holidays()
	if err != nil {
		return nil, fmt.Errorf("parsing holiday calendar: %w", err)
	}
	return calendar.New(calendar.WithHolidays(holidays...)), nil
}

// txRunner adapts the pool-backed transaction helper to the domain services'
// TxRunner signature.
func txRunner(pool *pgxpool.Pool) func(ctx context.Context, fn func(ctx context.Context) error) error {
	return func(ctx context.Context, fn func(ctx context.Context) error) error {
		return db.WithTx(ctx, pool, fn)
	}
}

func runServer() error {
	logger := newLogger()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}

	cal, err := newCalendar(cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to build business calendar")
	}

	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()
	logger.Info().Msg("connected to database")

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(middleware.SecurityHeaders())
	e.Use(middleware.BodyLimit("1M"))
	e.Use(middleware.RequestTimeout(30 * time.Second))
	e.Use(middleware.RateLimit(middleware.DefaultRateLimitConfig()))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete},
		AllowHeaders: []string{"Authorization", "Content-Type", "X-Request-ID"},
	}))

	if cfg.IsDev() {
		e.Use(auth.DevAuthMiddleware())
	} else {
		e.Use(auth.JWTMiddleware(auth.JWTConfig{
			Issuer:     cfg.AuthIssuer,
			Audience:   cfg.AuthAudience,
			SigningKey: []byte(cfg.AuthSigningKey),
		}))
	}

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "ok",
			"version": "0.1.0",
		})
	})
	e.GET("/health/db", db.HealthHandler(pool))

	apiV1 := e.Group("/api/v1")

	pub := events.NewLogPublisher(logger)
	tx := txRunner(pool)

	taskSvc := tasks.NewService(
		tasks.NewTaskRepoPG(pool),
		tasks.NewTypeRepoPG(pool),
		tasks.NewTaskHistoryRepoPG(pool),
		pub, cal, tx,
	)
	tasks.NewHandler(taskSvc).RegisterRoutes(apiV1)

	caseSvc := cases.NewService(
		cases.NewCaseRepoPG(pool),
		cases.NewHistoryRepoPG(pool),
		cases.NewRescindRepoPG(pool),
		cases.NewLeaveRepoPG(pool),
		taskSvc, pub, cal, tx,
	)
	cases.NewHandler(caseSvc).RegisterRoutes(apiV1)

	wqSvc := workqueue.NewService(
		workqueue.NewQueueRepoPG(pool),
		workqueue.NewSubscriptionRepoPG(pool),
	)
	workqueue.NewHandler(wqSvc).RegisterRoutes(apiV1)

	// Escalation scheduler runs alongside the server.
	sweepCtx, stopSweep := context.WithCancel(context.Background())
	defer stopSweep()
	sweeper := tasks.NewSweeper(
		tasks.NewTaskRepoPG(pool),
		tasks.NewTaskHistoryRepoPG(pool),
		pub, cal, tx, logger, cfg.SweepBatchSize,
	)
	go sweeper.Run(sweepCtx, cfg.SweepInterval)
	logger.Info().Dur("interval", cfg.SweepInterval).Msg("escalation sweeper started")

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
	stopSweep()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Fatal().Err(err).Msg("server shutdown failed")
	}
	logger.Info().Msg("server stopped")
	return nil
}
