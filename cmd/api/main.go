package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/helpdesk-br/chamados-service/internal/api/http"
	"github.com/helpdesk-br/chamados-service/internal/api/http/handlers"
	"github.com/helpdesk-br/chamados-service/internal/auth"
	"github.com/helpdesk-br/chamados-service/internal/config"
	"github.com/helpdesk-br/chamados-service/internal/domain"
	"github.com/helpdesk-br/chamados-service/internal/email"
	"github.com/helpdesk-br/chamados-service/internal/events"
	"github.com/helpdesk-br/chamados-service/internal/observability"
	"github.com/helpdesk-br/chamados-service/internal/persistence"
	"github.com/helpdesk-br/chamados-service/internal/realtime"
	"github.com/helpdesk-br/chamados-service/internal/repository"
	"github.com/helpdesk-br/chamados-service/internal/service"
	"github.com/helpdesk-br/chamados-service/internal/storage"
	"github.com/helpdesk-br/chamados-service/internal/worker"
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

	rdb := persistence.NewRedis(cfg.Redis, logger)
	defer rdb.Close()

	blobs, err := storage.NewDiskStore(cfg.Storage)
	if err != nil {
		logger.Fatal("failed to init attachment storage", zap.Error(err))
	}

	pool := pg.PoolHandle()
	userRepo := repository.NewUserRepository(pool)
	credentialRepo := repository.NewCredentialRepository(pool)
	departmentRepo := repository.NewDepartmentRepository(pool)
	branchRepo := repository.NewBranchRepository(pool)
	ticketRepo := repository.NewTicketRepository(pool)
	interactionRepo := repository.NewInteractionRepository(pool)
	attachmentRepo := repository.NewAttachmentRepository(pool)
	statsRepo := repository.NewStatsRepository(pool)

	dispatcher := events.NewInMemoryDispatcher()
	feed := realtime.NewFeed(rdb.Client, logger)
	feed.RegisterHandlers(dispatcher)

	idempotency := realtime.NewRedisIdempotencyGuard(rdb.Client, cfg.Auth.IdempotencyTTL())

	authService := service.NewAuthService(*cfg, service.AuthDependencies{
		UserRepo:       userRepo,
		CredentialRepo: credentialRepo,
	})
	ticketService := service.NewTicketService(service.TicketDependencies{
		TicketRepo:      ticketRepo,
		InteractionRepo: interactionRepo,
		AttachmentRepo:  attachmentRepo,
		DepartmentRepo:  departmentRepo,
		Blobs:           blobs,
		Idempotency:     idempotency,
		Dispatcher:      dispatcher,
		Logger:          logger,
	})
	adminService := service.NewAdminService(*cfg, service.AdminDependencies{
		UserRepo:       userRepo,
		CredentialRepo: credentialRepo,
		DepartmentRepo: departmentRepo,
		BranchRepo:     branchRepo,
		Logger:         logger,
	})
	statsService := service.NewStatsService(statsRepo)

	sender := email.NewSMTPSender(cfg.SMTP)
	notificationService := service.NewNotificationService(userRepo, sender, logger)
	worker.StartNotificationWorker(notificationService, dispatcher)

	authMiddleware := auth.NewAuthMiddleware(authService.TokenManager(), userRepo, credentialRepo)
	metrics := observability.NewMetrics()

	app := fiber.New(fiber.Config{
		AppName:   cfg.App.Name,
		BodyLimit: domain.MaxAttachmentSizeBytes + 1024*1024,
	})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, rdb, metrics),
		Auth:           handlers.NewAuthHandler(authService),
		Tickets:        handlers.NewTicketsHandler(ticketService),
		AdminUsers:     handlers.NewAdminUsersHandler(adminService),
		Reference:      handlers.NewReferenceHandler(departmentRepo, branchRepo),
		Stats:          handlers.NewStatsHandler(statsService),
		Events:         handlers.NewEventsHandler(feed, logger),
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
