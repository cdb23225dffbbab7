package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/binwatch/internal/access"
	httptransport "github.com/spec-kit/binwatch/internal/api/http"
	"github.com/spec-kit/binwatch/internal/api/http/handlers"
	"github.com/spec-kit/binwatch/internal/auth"
	"github.com/spec-kit/binwatch/internal/config"
	"github.com/spec-kit/binwatch/internal/events"
	"github.com/spec-kit/binwatch/internal/observability"
	"github.com/spec-kit/binwatch/internal/persistence"
	"github.com/spec-kit/binwatch/internal/repository"
	"github.com/spec-kit/binwatch/internal/service"
	"github.com/spec-kit/binwatch/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	pool := pg.PoolHandle()
	credentialRepo := repository.NewCredentialRepository(pool)
	profileRepo := repository.NewProfileRepository(pool)
	reportRepo := repository.NewReportRepository(pool)
	notificationRepo := repository.NewNotificationRepository(pool)

	tokenManager := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.SessionTTL())
	sessionStore := auth.NewRedisSessionStore(redis.Client, cfg.Auth.SessionTTL())
	mailer := auth.NewLogMailer(logger, cfg.Auth.EmailFrom)
	credentialService := auth.NewCredentialService(auth.CredentialDependencies{
		Credentials: credentialRepo,
		Sessions:    sessionStore,
		Tokens:      tokenManager,
		Mailer:      mailer,
		BcryptCost:  cfg.Auth.BcryptCost,
	})

	dispatcher := events.NewInMemoryDispatcher()

	accountService := service.NewAccountService(cfg.Auth, service.AccountDependencies{
		Credentials: credentialService,
		ProfileRepo: profileRepo,
		Logger:      logger,
	})
	reportService := service.NewReportService(service.ReportDependencies{
		ReportRepo: reportRepo,
		Dispatcher: dispatcher,
		Logger:     logger,
	})
	notificationService := service.NewNotificationService(notificationRepo, dispatcher, logger)
	notificationService.RegisterHandlers()
	userService := service.NewUserService(profileRepo, logger)

	metrics := observability.NewMetrics()
	accessMiddleware := access.NewMiddleware(accountService)

	app := fiber.New()
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:        handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Auth:          handlers.NewAuthHandler(accountService),
		Reports:       handlers.NewReportsHandler(reportService, cfg.Reports.DefaultPageSize, cfg.Reports.MaxPageSize),
		Users:         handlers.NewUsersHandler(userService),
		Notifications: handlers.NewNotificationsHandler(notificationService),
		Access:        accessMiddleware,
		Metrics:       metrics,
	})

	verificationWorker := worker.NewVerificationWorker(sessionStore, accountService, cfg.Verification.PollInterval(), logger)
	go verificationWorker.Run(ctx)

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)
	cancel()

	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
