package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/resolveit/helpdesk/internal/api/http"
	"github.com/resolveit/helpdesk/internal/api/http/handlers"
	"github.com/resolveit/helpdesk/internal/auth"
	"github.com/resolveit/helpdesk/internal/config"
	"github.com/resolveit/helpdesk/internal/events"
	"github.com/resolveit/helpdesk/internal/observability"
	"github.com/resolveit/helpdesk/internal/persistence"
	"github.com/resolveit/helpdesk/internal/repository"
	"github.com/resolveit/helpdesk/internal/service"
	"github.com/resolveit/helpdesk/internal/worker"
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
	userRepo := repository.NewUserRepository(pool)
	orgRepo := repository.NewOrganizationRepository(pool)
	ticketRepo := repository.NewTicketRepository(pool)
	priorityRepo := repository.NewPriorityRepository(pool)
	categoryRepo := repository.NewCategoryRepository(pool)
	commentRepo := repository.NewCommentRepository(pool)
	attachmentRepo := repository.NewAttachmentRepository(pool)
	inviteRepo := repository.NewInviteRepository(pool)
	resetRepo := repository.NewPasswordResetRepository(pool)
	auditRepo := repository.NewTicketEventRepository(pool)
	analyticsRepo := repository.NewAnalyticsRepository(pool)

	dispatcher := events.NewInMemoryDispatcher()
	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes)

	ticketService := service.NewTicketService(service.TicketDependencies{
		TicketRepo:     ticketRepo,
		PriorityRepo:   priorityRepo,
		CategoryRepo:   categoryRepo,
		CommentRepo:    commentRepo,
		AttachmentRepo: attachmentRepo,
		UserRepo:       userRepo,
		AuditRepo:      auditRepo,
		Dispatcher:     dispatcher,
	})
	inviteService := service.NewInviteService(service.InviteDependencies{
		InviteRepo: inviteRepo,
		UserRepo:   userRepo,
		Dispatcher: dispatcher,
		Config:     cfg.Invite,
	})
	authService := service.NewAuthService(service.AuthDependencies{
		UserRepo:   userRepo,
		ResetRepo:  resetRepo,
		Tokens:     tokens,
		Dispatcher: dispatcher,
		Logger:     logger,
		Config:     cfg.Auth,
	})
	analyticsService := service.NewAnalyticsService(service.AnalyticsDependencies{
		Repo:   analyticsRepo,
		Cache:  redis.Client,
		Logger: logger,
		Config: cfg.Analytics,
	})
	directoryService := service.NewDirectoryService(service.DirectoryDependencies{
		UserRepo:         userRepo,
		OrganizationRepo: orgRepo,
		CategoryRepo:     categoryRepo,
		PriorityRepo:     priorityRepo,
	})

	notifier := service.NewNotificationService(logger, cfg.Notification)
	worker.NewNotificationWorker(notifier, logger).Register(dispatcher)

	authMiddleware := auth.NewAuthMiddleware(tokens, userRepo)
	metrics := observability.NewMetrics()

	app := fiber.New(fiber.Config{AppName: cfg.App.Name})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Auth:           handlers.NewAuthHandler(authService, inviteService),
		Tickets:        handlers.NewTicketsHandler(ticketService),
		AgentTickets:   handlers.NewAgentTicketsHandler(ticketService),
		AdminTickets:   handlers.NewAdminTicketsHandler(ticketService),
		Invites:        handlers.NewInvitesHandler(inviteService),
		Directory:      handlers.NewDirectoryHandler(directoryService),
		Analytics:      handlers.NewAnalyticsHandler(analyticsService),
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
