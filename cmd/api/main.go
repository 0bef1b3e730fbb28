package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/helpdesk-service/internal/api/http"
	"github.com/spec-kit/helpdesk-service/internal/api/http/handlers"
	"github.com/spec-kit/helpdesk-service/internal/assignment"
	"github.com/spec-kit/helpdesk-service/internal/auth"
	"github.com/spec-kit/helpdesk-service/internal/config"
	"github.com/spec-kit/helpdesk-service/internal/events"
	"github.com/spec-kit/helpdesk-service/internal/lock"
	"github.com/spec-kit/helpdesk-service/internal/observability"
	"github.com/spec-kit/helpdesk-service/internal/persistence"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	"github.com/spec-kit/helpdesk-service/internal/repository/memstore"
	"github.com/spec-kit/helpdesk-service/internal/service"
	"github.com/spec-kit/helpdesk-service/internal/worker"
)

const (
	webhookQueueSize = 256
	webhookWorkers   = 2
)

// stores groups the repositories chosen for this run.
type stores struct {
	users         repository.UserRepository
	staff         repository.StaffDirectory
	tickets       repository.TicketRepository
	messages      repository.MessageRepository
	categories    repository.CategoryRepository
	notifications repository.NotificationRepository
}

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

	if pg.Enabled() && cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.Pool, cfg.Postgres.MigrationsDir, logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(ctx, cfg.Redis, logger)
	defer redis.Close()

	mongo, err := persistence.NewMongo(ctx, cfg.Mongo, logger)
	if err != nil {
		logger.Fatal("failed to connect mongo", zap.Error(err))
	}
	defer mongo.Close(context.Background())

	repos := buildStores(pg, mongo, cfg.Notification.Store)
	if cfg.Notification.Store == config.NotificationStoreMongo {
		if err := mongo.EnsureNotificationIndexes(ctx, repository.NotificationCollection); err != nil {
			logger.Warn("ensure notification indexes", zap.Error(err))
		}
	}

	var locker lock.Locker = lock.NewKeyedMutex()
	if cfg.Lock.Backend == config.LockBackendRedis {
		locker = lock.NewRedisLocker(redis.Client, cfg.Lock.TTL(), cfg.Lock.RetryInterval(), logger)
	}

	metrics := observability.NewMetrics()
	dispatcher := events.NewInMemoryDispatcher(logger)

	var forwarder service.EventForwarder
	if cfg.Notification.WebhookURL != "" {
		webhooks := worker.NewWebhookWorker(
			worker.NewFiberWebhookSender(cfg.Notification.WebhookURL, cfg.Notification.WebhookTimeout()),
			webhookQueueSize,
			logger,
		)
		webhooks.Start(ctx, webhookWorkers)
		defer webhooks.Stop()
		forwarder = webhooks
	}

	authService := service.NewAuthService(*cfg, service.AuthDependencies{UserRepo: repos.users})
	managementService := service.NewManagementService(repos.users, authService)
	assignmentService := service.NewAssignmentService(service.AssignmentDependencies{
		TicketRepo:          repos.tickets,
		StaffDirectory:      repos.staff,
		Locker:              locker,
		Dispatcher:          dispatcher,
		Metrics:             metrics,
		Logger:              logger,
		LoadPolicy:          assignment.LoadPolicy(cfg.Assignment.LoadPolicy),
		CollaboratorTimeout: cfg.Assignment.CollaboratorTimeout(),
	})
	ticketService := service.NewTicketService(service.TicketDependencies{
		TicketRepo:  repos.tickets,
		Assignments: assignmentService,
		Locker:      locker,
		Dispatcher:  dispatcher,
		Logger:      logger,
	})
	messageService := service.NewMessageService(service.MessageDependencies{
		TicketRepo:  repos.tickets,
		MessageRepo: repos.messages,
		Dispatcher:  dispatcher,
	})
	notificationService := service.NewNotificationService(service.NotificationDependencies{
		NotificationRepo: repos.notifications,
		Dispatcher:       dispatcher,
		Forwarder:        forwarder,
		Logger:           logger,
	})
	notificationService.RegisterHandlers()
	categoryService := service.NewCategoryService(service.CategoryDependencies{
		CategoryRepo:   repos.categories,
		StaffDirectory: repos.staff,
		TicketRepo:     repos.tickets,
	})

	if cfg.Seed.Bootstrap {
		seeder := service.NewBootstrapper(repos.users, cfg.Auth.BcryptCost, logger)
		if _, err := seeder.SeedAccounts(ctx, service.DefaultSeedAccounts, cfg.Seed.DefaultPassword); err != nil {
			logger.Fatal("failed to seed accounts", zap.Error(err))
		}
	}
	if _, err := ticketService.ReopenAssignedPending(ctx); err != nil {
		logger.Warn("reopen assigned pending tickets", zap.Error(err))
	}

	authMiddleware := auth.NewAuthMiddleware(authService.TokenManager(), repos.users)

	app := fiber.New(fiber.Config{AppName: cfg.App.Name})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health: handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, handlers.HealthDependencies{
			Postgres: pg,
			Redis:    redis,
			Mongo:    mongo,
			Metrics:  metrics,
		}),
		Users:          handlers.NewUsersHandler(authService, managementService),
		Staff:          handlers.NewStaffHandler(managementService),
		Categories:     handlers.NewCategoriesHandler(categoryService),
		Tickets:        handlers.NewTicketsHandler(ticketService, assignmentService, messageService),
		StaffTickets:   handlers.NewStaffTicketsHandler(ticketService, notificationService),
		AuthMiddleware: authMiddleware,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		logger.Warn("shutdown", zap.Error(err))
	}
}

// buildStores picks Postgres repositories when a pool is open and the
// in-memory store otherwise. Notifications may live in mongo either way.
func buildStores(pg *persistence.Postgres, mongo *persistence.Mongo, notificationStore string) stores {
	var repos stores
	if pg.Enabled() {
		repos = stores{
			users:         repository.NewUserRepository(pg.Pool),
			staff:         repository.NewStaffDirectory(pg.Pool),
			tickets:       repository.NewTicketRepository(pg.Pool),
			messages:      repository.NewMessageRepository(pg.Pool),
			categories:    repository.NewCategoryRepository(pg.Pool),
			notifications: repository.NewNotificationRepository(pg.Pool),
		}
	} else {
		mem := memstore.New()
		repos = stores{
			users:         mem.Users(),
			staff:         mem.Staff(),
			tickets:       mem.Tickets(),
			messages:      mem.Messages(),
			categories:    mem.Categories(),
			notifications: mem.Notifications(),
		}
	}
	if notificationStore == config.NotificationStoreMongo && mongo.Enabled() {
		repos.notifications = repository.NewMongoNotificationRepository(mongo.Database)
	}
	return repos
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
