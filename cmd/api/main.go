package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/asten-tickets/triage-service/internal/api/http"
	"github.com/asten-tickets/triage-service/internal/api/http/handlers"
	"github.com/asten-tickets/triage-service/internal/auth"
	"github.com/asten-tickets/triage-service/internal/classifier"
	"github.com/asten-tickets/triage-service/internal/config"
	"github.com/asten-tickets/triage-service/internal/events"
	"github.com/asten-tickets/triage-service/internal/observability"
	"github.com/asten-tickets/triage-service/internal/persistence"
	"github.com/asten-tickets/triage-service/internal/repository"
	"github.com/asten-tickets/triage-service/internal/service"
	"github.com/asten-tickets/triage-service/internal/worker"
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
	ticketRepo := repository.NewTicketRepository(pool)
	assignmentRepo := repository.NewAssignmentRepository(pool)
	notificationRepo := repository.NewNotificationRepository(pool)
	correctionRepo := repository.NewCorrectionRepository(pool)

	dispatcher := events.NewInMemoryDispatcher()
	classifierClient := classifier.NewHTTPClient(cfg.Classifier, logger)

	lifecycle := service.NewLifecycleService(service.LifecycleDependencies{
		TicketRepo:     ticketRepo,
		AssignmentRepo: assignmentRepo,
		CorrectionRepo: correctionRepo,
		Classifier:     classifierClient,
		Dispatcher:     dispatcher,
		Logger:         logger,
	})

	hub := service.NewNotificationHub()
	notifications := service.NewNotificationService(notificationRepo, hub, logger)
	notifications.RegisterEventHandlers(dispatcher)

	metrics := observability.NewMetrics()
	dashboard := service.NewDashboardService(service.DashboardDependencies{
		TicketRepo:     ticketRepo,
		AssignmentRepo: assignmentRepo,
		CorrectionRepo: correctionRepo,
		Cache:          redis.Client,
		CacheTTL:       cfg.Dashboard.CacheTTL(),
		Logger:         logger,
	})

	refresher := worker.NewDashboardRefresher(dashboard, logger)
	if err := refresher.Start(cfg.Dashboard.RefreshSpec); err != nil {
		logger.Fatal("failed to start dashboard refresher", zap.Error(err))
	}
	defer refresher.Stop()

	authMiddleware := auth.NewMiddleware(auth.NewTokenVerifier(cfg.Auth.JWTSecret))

	app := fiber.New(fiber.Config{
		AppName:               cfg.App.Name,
		DisableStartupMessage: cfg.App.Env == "production",
	})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis, classifierClient),
		Tickets:        handlers.NewTicketsHandler(lifecycle),
		Notifications:  handlers.NewNotificationsHandler(notifications),
		Dashboard:      handlers.NewDashboardHandler(dashboard),
		AuthMiddleware: authMiddleware,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
