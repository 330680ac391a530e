package cmd

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
	"github.com/spf13/cobra"

	"github.com/pupped/storefront/internal/auth"
	"github.com/pupped/storefront/internal/background"
	"github.com/pupped/storefront/internal/database"
	"github.com/pupped/storefront/internal/handlers"
	middlewareCustom "github.com/pupped/storefront/internal/middleware"
	"github.com/pupped/storefront/internal/repositories"
	"github.com/pupped/storefront/internal/routes"
	"github.com/pupped/storefront/internal/services"
	pkglogger "github.com/pupped/storefront/pkg/logger"
)

var migrateOnStart bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return serve(cmd.Context())
	},
}

func init() {
	serveCmd.Flags().BoolVar(&migrateOnStart, "migrate", false, "apply pending migrations before serving")
}

func serve(ctx context.Context) error {
	logger.Info("configuration loaded", slog.String("env", cfg.Server.Env))

	db, err := database.NewConnection(ctx, &cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	if migrateOnStart {
		if err := db.Migrate(ctx, "up"); err != nil {
			return err
		}
	}

	// Repositories
	loginAttemptRepo := repositories.NewLoginAttemptRepository(db)
	productRepo := repositories.NewProductRepository(db)
	articleRepo := repositories.NewArticleRepository(db)
	submissionRepo := repositories.NewSubmissionRepository(db)

	// Object storage and e-mail
	r2Client, err := services.NewR2Client(ctx, cfg.Storage)
	if err != nil {
		return err
	}
	storage := services.NewStorageService(r2Client, cfg.Storage.Bucket, cfg.Storage.PublicURL, logger)

	sesClient, err := services.NewSESClient(ctx, cfg.Email.AWSRegion)
	if err != nil {
		return err
	}
	emailService := services.NewAWSSESEmailService(sesClient, cfg.Email.FromAddress, cfg.Email.OwnerEmail, logger)

	// Session and login
	sessions, err := auth.NewSessionManager(auth.SessionConfig{
		Secret:     cfg.Auth.SessionSecret,
		CookieName: cfg.Auth.SessionCookieName,
		MaxAge:     cfg.Auth.SessionMaxAge,
		Secure:     cfg.Server.IsProduction(),
	}, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize sessions: %w", err)
	}

	rateLimitService := services.NewRateLimitService(loginAttemptRepo, services.RateLimitConfig{
		MaxFailedAttempts: cfg.Auth.MaxFailedAttempts,
		LookbackWindow:    cfg.Auth.LookbackWindow,
	}, logger)
	timingDelay := auth.NewTimingDelay(auth.TimingConfig{
		BaseDelayMs:   cfg.Auth.TimingDelayBaseMs,
		RandomDelayMs: cfg.Auth.TimingDelayRandomMs,
	})
	authService := services.NewAuthService(cfg.Auth.AdminPassword, rateLimitService, timingDelay, logger, pkglogger.NewAuditLogger(logger))

	// Domain services
	productService := services.NewProductService(productRepo, storage, logger)
	articleService := services.NewArticleService(articleRepo, storage, logger)
	inquiryService := services.NewInquiryService(submissionRepo, productRepo, emailService, logger)
	adminService := services.NewAdminService(productRepo, submissionRepo, logger)

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middlewareCustom.SecurityHeaders(middlewareCustom.SecurityHeadersConfig{
		Env:         cfg.Server.Env,
		ImageOrigin: cfg.Storage.PublicURL,
	}))
	router.Use(middlewareCustom.CORS(middlewareCustom.DefaultCORSConfig(cfg.Server.AllowedOrigins)))
	router.Use(middlewareCustom.SecureLogger(logger))
	router.Use(middleware.Recoverer)
	router.Use(middleware.Timeout(60 * time.Second))

	routes.RegisterRoutes(router, routes.Handlers{
		Auth:      handlers.NewAuthHandler(authService, sessions, logger),
		Products:  handlers.NewProductHandler(productService, logger),
		Articles:  handlers.NewArticleHandler(articleService, logger),
		Inquiries: handlers.NewInquiryHandler(inquiryService, logger),
		Admin:     handlers.NewAdminHandler(adminService, sessions),
		Health:    handlers.NewHealthHandler(db, logger),
	}, sessions, routes.Limits{
		Login:   middlewareCustom.RateLimitConfig{RequestsPerMinute: cfg.Auth.LoginRequestsPerMinute},
		Contact: middlewareCustom.DefaultContactRateLimit(),
	})

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start cleanup task
	cleanupManager := background.NewCleanupManager(loginAttemptRepo, cfg.Auth.AttemptRetention, cfg.Auth.CleanupInterval, logger)
	cleanupCtx, cleanupCancel := context.WithCancel(ctx)
	defer cleanupCancel()
	go cleanupManager.Start(cleanupCtx)

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("starting server", slog.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	// Graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	select {
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-sigChan:
		logger.Info("shutdown signal received")
	}

	cleanupCancel()
	cleanupManager.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}

	logger.Info("server stopped gracefully")
	return nil
}
