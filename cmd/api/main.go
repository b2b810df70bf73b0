package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/ticket-routing/internal/api/http"
	"github.com/spec-kit/ticket-routing/internal/api/http/handlers"
	"github.com/spec-kit/ticket-routing/internal/auth"
	"github.com/spec-kit/ticket-routing/internal/config"
	"github.com/spec-kit/ticket-routing/internal/events"
	"github.com/spec-kit/ticket-routing/internal/observability"
	"github.com/spec-kit/ticket-routing/internal/persistence"
	"github.com/spec-kit/ticket-routing/internal/repository"
	"github.com/spec-kit/ticket-routing/internal/routing"
	"github.com/spec-kit/ticket-routing/internal/service"
	"github.com/spec-kit/ticket-routing/internal/worker"
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
	detailRepo := repository.NewTicketDetailRepository(pool)
	teamRepo := repository.NewTeamRepository(pool)
	customerRepo := repository.NewCustomerRepository(pool)
	confidenceRepo := repository.NewTeamConfidenceRepository(pool)
	activityRepo := repository.NewTicketActivityRepository(pool)
	agentRepo := repository.NewAgentRepository(pool)

	dispatcher := events.NewInMemoryDispatcher()
	metrics := observability.NewMetrics()

	ticketService := service.NewTicketService(service.TicketDependencies{
		TicketRepo:     ticketRepo,
		DetailRepo:     detailRepo,
		CustomerRepo:   customerRepo,
		TeamRepo:       teamRepo,
		ConfidenceRepo: confidenceRepo,
		Dispatcher:     dispatcher,
		Logger:         logger,
	})
	teamService := service.NewTeamService(teamRepo)
	customerService := service.NewCustomerService(customerRepo)
	activityService := service.NewActivityService(service.ActivityDependencies{
		TicketRepo:   ticketRepo,
		TeamRepo:     teamRepo,
		ActivityRepo: activityRepo,
		Dispatcher:   dispatcher,
	})
	authService := service.NewAuthService(cfg.Auth, agentRepo)

	var locker routing.TicketLocker
	if redis.Client != nil {
		locker = routing.NewRedisLocker(redis.Client, cfg.Routing.TicketLockTTL(), logger)
	} else {
		locker = routing.NewMemoryLocker()
	}

	routingService := service.NewRoutingService(cfg.Routing, service.RoutingDependencies{
		TicketRepo:     ticketRepo,
		DetailRepo:     detailRepo,
		TeamRepo:       teamRepo,
		ConfidenceRepo: confidenceRepo,
		Scorer:         routing.NewClient(cfg.Routing, logger),
		Locker:         locker,
		Dispatcher:     dispatcher,
		Metrics:        metrics,
		Logger:         logger,
	})

	notificationService := service.NewNotificationService(dispatcher, logger)
	worker.StartNotificationWorker(notificationService)
	worker.StartRoutingWorkers(ctx, routingService, cfg.Routing.WorkerCount)

	authMiddleware := auth.NewAuthMiddleware(authService.TokenManager(), agentRepo)

	app := fiber.New()
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Auth:           handlers.NewAuthHandler(authService),
		Tickets:        handlers.NewTicketsHandler(ticketService),
		Teams:          handlers.NewTeamsHandler(teamService),
		Customers:      handlers.NewCustomersHandler(customerService),
		Activities:     handlers.NewActivitiesHandler(activityService),
		AuthMiddleware: authMiddleware,
	})

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
