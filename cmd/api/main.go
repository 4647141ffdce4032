package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/clubhouse-ops/membership-admin/internal/api/http"
	"github.com/clubhouse-ops/membership-admin/internal/api/http/handlers"
	"github.com/clubhouse-ops/membership-admin/internal/auth"
	"github.com/clubhouse-ops/membership-admin/internal/cache"
	"github.com/clubhouse-ops/membership-admin/internal/config"
	"github.com/clubhouse-ops/membership-admin/internal/events"
	"github.com/clubhouse-ops/membership-admin/internal/observability"
	"github.com/clubhouse-ops/membership-admin/internal/persistence"
	"github.com/clubhouse-ops/membership-admin/internal/repository"
	"github.com/clubhouse-ops/membership-admin/internal/repository/memory"
	"github.com/clubhouse-ops/membership-admin/internal/service"
	"github.com/clubhouse-ops/membership-admin/internal/worker"
)

type repositories struct {
	users     repository.UserRepository
	plans     repository.PlanRepository
	payments  repository.PaymentRepository
	operators repository.OperatorRepository
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

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), cfg.Postgres.MigrationsDir, logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	readiness := map[string]handlers.Pinger{}
	var repos repositories
	if pool := pg.PoolHandle(); pool != nil {
		repos = repositories{
			users:     repository.NewUserRepository(pool),
			plans:     repository.NewPlanRepository(pool),
			payments:  repository.NewPaymentRepository(pool),
			operators: repository.NewOperatorRepository(pool),
		}
		readiness["postgres"] = pg
	} else {
		store := memory.NewStore()
		repos = repositories{
			users:     store.Users(),
			plans:     store.Plans(),
			payments:  store.Payments(),
			operators: store.Operators(),
		}
	}

	dispatcher := events.NewInMemoryDispatcher()

	var queryCache cache.QueryCache
	if cfg.Redis.Enabled {
		redis := persistence.NewRedis(ctx, cfg.Redis, logger)
		defer redis.Close()
		queryCache = cache.NewRedisCache(redis.Client, cfg.Cache.KeyPrefix)
		readiness["redis"] = redis
	} else {
		queryCache = cache.NewMemoryCache()
	}
	cache.RegisterInvalidation(dispatcher, queryCache, logger)
	readCache := service.ReadCache{Store: queryCache, TTL: cfg.Cache.TTL()}

	authService := service.NewAuthService(cfg.Auth, repos.operators, logger)
	if err := authService.EnsureBootstrapAdmin(ctx, cfg.Auth); err != nil {
		logger.Fatal("failed to bootstrap admin", zap.Error(err))
	}
	authMiddleware := auth.NewAuthMiddleware(authService.TokenManager(), repos.operators)

	userService := service.NewUserService(service.UserDependencies{
		UserRepo:    repos.users,
		PaymentRepo: repos.payments,
		Dispatcher:  dispatcher,
		Cache:       readCache,
		Logger:      logger,
	})
	paymentService := service.NewPaymentService(service.PaymentDependencies{
		PaymentRepo: repos.payments,
		PlanRepo:    repos.plans,
		Dispatcher:  dispatcher,
		Cache:       readCache,
		Logger:      logger,
	})
	reportService := service.NewReportService(userService, paymentService, cfg.Export.Dir, logger)

	worker.StartActivityWorker(service.NewActivityService(dispatcher, logger, cfg.Notification))

	metrics := observability.NewMetrics()
	app := fiber.New(fiber.Config{AppName: cfg.App.Name})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, readiness),
		Auth:           handlers.NewAuthHandler(authService),
		Users:          handlers.NewUsersHandler(userService, paymentService),
		Payments:       handlers.NewPaymentsHandler(paymentService),
		Reports:        handlers.NewReportsHandler(reportService),
		Metrics:        handlers.NewMetricsHandler(metrics),
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
