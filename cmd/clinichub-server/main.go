package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/clinichub/clinichub/internal/config"
	"github.com/clinichub/clinichub/internal/domain/billing"
	"github.com/clinichub/clinichub/internal/domain/booking"
	"github.com/clinichub/clinichub/internal/domain/diagnostics"
	"github.com/clinichub/clinichub/internal/domain/encounter"
	"github.com/clinichub/clinichub/internal/domain/identity"
	"github.com/clinichub/clinichub/internal/domain/notification"
	"github.com/clinichub/clinichub/internal/domain/search"
	"github.com/clinichub/clinichub/internal/platform/ai"
	"github.com/clinichub/clinichub/internal/platform/auth"
	"github.com/clinichub/clinichub/internal/platform/db"
	"github.com/clinichub/clinichub/internal/platform/httperr"
	"github.com/clinichub/clinichub/internal/platform/mailer"
	"github.com/clinichub/clinichub/internal/platform/middleware"
	"github.com/clinichub/clinichub/internal/platform/upload"
	"github.com/clinichub/clinichub/internal/platform/ws"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "clinichub-server",
		Short: "ClinicHub API server",
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())

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
			if cfg.DatabaseURL == "" {
				return fmt.Errorf("DATABASE_URL is required")
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
			if cfg.DatabaseURL == "" {
				return fmt.Errorf("DATABASE_URL is required")
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

			fmt.Printf("%-10s %-44s %-10s %s\n", "VERSION", "NAME", "STATUS", "APPLIED AT")
			for _, s := range statuses {
				status := "pending"
				appliedAt := ""
				if s.Applied {
					status = "applied"
					if s.AppliedAt != nil {
						appliedAt = s.AppliedAt.Format("2006-01-02 15:04:05")
					}
				}
				fmt.Printf("%-10d %-44s %-10s %s\n", s.Version, s.Name, status, appliedAt)
			}
			return nil
		},
	}
	statusCmd.Flags().String("dir", "./migrations", "Path to migrations directory")
	cmd.AddCommand(statusCmd)

	return cmd
}

func runServer() error {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if os.Getenv("ENV") == "development" {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("invalid configuration")
	}

	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()
	logger.Info().Msg("connected to database")

	pictures, err := upload.NewDiskStore(cfg.UploadDir)
	if err != nil {
		logger.Fatal().Err(err).Str("dir", cfg.UploadDir).Msg("failed to prepare upload directory")
	}

	var sender mailer.EmailSender
	if cfg.EmailHost != "" {
		sender = mailer.NewSMTPSender(mailer.Config{
			Host:     cfg.EmailHost,
			Port:     cfg.EmailPort,
			Username: cfg.EmailUser,
			Password: cfg.EmailPassword,
			From:     cfg.EmailFrom,
		})
	} else {
		logger.Warn().Msg("EMAIL_HOST not set; outgoing email is logged only")
		sender = &mailer.MockEmailSender{}
	}

	tokens := auth.NewTokenManager(cfg.JWTSecret)
	templates := mailer.NewTemplateEngine()

	notificationSvc := notification.NewService(notification.NewRepoPG(pool), logger)

	identitySvc := identity.NewService(
		identity.NewAccountRepoPG(pool),
		identity.NewPatientRepoPG(pool),
		identity.NewDoctorRepoPG(pool),
		identity.NewLaboratoryRepoPG(pool),
		identity.NewImagingServiceRepoPG(pool),
		identity.NewAdminRepoPG(pool),
		tokens,
		sender,
		templates,
		cfg.AdminCode,
		cfg.FrontendURL+"/reset-password",
	)

	doctorProbe, labProbe, imagingProbe := booking.NewProviderProbesPG(pool)
	bookingSvc := booking.NewService(
		booking.NewAppointmentRepoPG(pool),
		booking.NewSlotRepoPG(pool),
		booking.NewProviderRegistry(doctorProbe, labProbe, imagingProbe),
		notificationSvc,
	)

	encounterSvc := encounter.NewService(
		encounter.NewConsultationRepoPG(pool),
		encounter.NewPrescriptionRepoPG(pool),
		encounter.NewAppointmentProbePG(pool),
		notificationSvc,
	)

	billingSvc := billing.NewService(
		billing.NewPaymentRepoPG(pool),
		billing.NewAccountProbePG(pool),
		billing.NewAppointmentProbePG(pool),
		notificationSvc,
	)

	diagnosticsSvc := diagnostics.NewService(
		diagnostics.NewAnalysisRepoPG(pool),
		diagnostics.NewImagingReportRepoPG(pool),
		ai.NewClient(cfg.AIBaseURL),
		notificationSvc,
	)

	searchSvc := search.NewService(search.NewRepoPG(pool))

	hub := ws.NewHub()

	// Echo server
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = httperr.NewHTTPErrorHandler(logger, cfg.IsProduction())

	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete},
		AllowHeaders: []string{"Authorization", "Content-Type", "X-Request-ID", "Accept-Language"},
	}))
	e.Use(middleware.SecurityHeaders())
	e.Use(middleware.BodyLimit("1M", "10M"))
	e.Use(middleware.RequestTimeout(30 * time.Second))

	e.GET("/health", db.HealthHandler(pool))

	rateLimit := middleware.RateLimit(middleware.RateLimitConfig{
		RequestsPerSecond: cfg.RateLimitRPS,
		BurstSize:         cfg.RateLimitBurst,
	})

	public := e.Group("/api/v1")
	public.Use(rateLimit)

	api := e.Group("/api/v1")
	api.Use(rateLimit)
	api.Use(auth.Middleware(tokens))

	identity.NewHandler(identitySvc, pictures).RegisterRoutes(public, api)
	booking.NewHandler(bookingSvc).RegisterRoutes(api)
	encounter.NewHandler(encounterSvc).RegisterRoutes(api)
	billing.NewHandler(billingSvc).RegisterRoutes(api)
	notification.NewHandler(notificationSvc).RegisterRoutes(api)
	diagnostics.NewHandler(diagnosticsSvc, pictures).RegisterRoutes(api)
	search.NewHandler(searchSvc).RegisterRoutes(api)

	ws.NewHandler(hub, logger).RegisterRoutes(e.Group("/ws"))

	// Start and wait for shutdown
	errCh := make(chan error, 1)
	go func() {
		errCh <- e.Start(":" + cfg.Port)
	}()
	logger.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("server started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			return err
		}
	case sig := <-quit:
		logger.Info().Str("signal", sig.String()).Msg("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := e.Shutdown(shutdownCtx); err != nil {
			return err
		}
	}
	return nil
}
