// Package http wires the application together and serves the HTTP surface.
package http

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"gitgate/internal/application/integration/usecases"
	"gitgate/internal/infrastructure/auth"
	"gitgate/internal/infrastructure/cache"
	"gitgate/internal/infrastructure/config"
	"gitgate/internal/infrastructure/github"
	"gitgate/internal/infrastructure/repository"
	"gitgate/internal/infrastructure/scheduler"
	"gitgate/internal/interfaces/http/handlers"
	"gitgate/internal/interfaces/http/middleware"
	sharedDB "gitgate/internal/shared/db"
	"gitgate/internal/shared/logger"
)

const oauthStatePrefix = "oauth:state:"

// Container wires repositories, use cases, handlers, middleware and the
// background scheduler, and owns their shutdown.
type Container struct {
	cfg   *config.Config
	log   logger.Interface
	db    *gorm.DB
	redis *redis.Client

	syncService *usecases.SyncService
	scheduler   *scheduler.SchedulerManager

	IntegrationHandler *handlers.IntegrationHandler
	AuthMiddleware     *middleware.AuthMiddleware
	AccessGuard        *middleware.AccessGuard
}

// NewContainer builds the full dependency graph.
func NewContainer(cfg *config.Config, db *gorm.DB, log logger.Interface) (*Container, error) {
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.GetAddr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err := redisClient.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	txManager := sharedDB.NewTransactionManager(db)
	userRepo := repository.NewUserRepository(db, log)
	installationRepo := repository.NewInstallationRepository(db, log)
	linkRepo := repository.NewUserInstallationRepository(db, log)
	trackedRepoRepo := repository.NewTrackedRepoRepository(db, log)
	cacheRepo := repository.NewAccessCacheRepository(db, log)

	stateStore := cache.NewRedisStateStore(redisClient, oauthStatePrefix, 10*time.Minute)
	githubClient := github.NewClient(github.Config{
		ClientID:     cfg.OAuth.GitHub.ClientID,
		ClientSecret: cfg.OAuth.GitHub.ClientSecret,
		RedirectURL:  cfg.OAuth.GitHub.RedirectURL,
	})
	jwtService := auth.NewJWTService(cfg.Auth.JWT.Secret, 24*time.Hour)

	syncService := usecases.NewSyncService(
		installationRepo, trackedRepoRepo, cacheRepo, githubClient,
		usecases.SyncConfig{
			CacheTTL:       cfg.Sync.CacheTTL(),
			BackoffInitial: cfg.Sync.BackoffInitial(),
			BackoffMax:     cfg.Sync.BackoffMax(),
			MaxRetries:     cfg.Sync.MaxRetries,
		},
		log.Named("sync"),
	)

	initiateUC := usecases.NewInitiateHandshakeUseCase(githubClient, stateStore, log.Named("handshake"))
	completeUC := usecases.NewCompleteHandshakeUseCase(installationRepo, linkRepo, userRepo, githubClient, stateStore, syncService, txManager, log.Named("handshake"))
	statusUC := usecases.NewGetIntegrationStatusUseCase(installationRepo, cacheRepo, syncService, log.Named("status"))
	checkAccessUC := usecases.NewCheckRepoAccessUseCase(cacheRepo, syncService, cfg.Sync.OnDemandTimeout(), log.Named("access"))
	refreshUC := usecases.NewRefreshAllAccessUseCase(installationRepo, linkRepo, syncService, log.Named("refresh"))

	schedulerManager, err := scheduler.NewSchedulerManager(log.Named("scheduler"))
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}
	if err := schedulerManager.RegisterAccessSyncJobs(usecases.NewAccessRefreshJob(refreshUC), cfg.Sync.RefreshInterval()); err != nil {
		return nil, fmt.Errorf("failed to register access sync jobs: %w", err)
	}

	authMiddleware := middleware.NewAuthMiddleware(jwtService, userRepo, log.Named("auth"))
	accessGuard := middleware.NewAccessGuard(statusUC, cfg.Server.OnboardingPath, log.Named("guard"))

	integrationHandler := handlers.NewIntegrationHandler(
		initiateUC, completeUC, statusUC, checkAccessUC,
		cfg.Auth.Cookie,
		cfg.Server.IsProduction() || cfg.Auth.Cookie.Secure,
		cfg.Server.FrontendCallbackURL,
		log.Named("http"),
	)

	return &Container{
		cfg:                cfg,
		log:                log,
		db:                 db,
		redis:              redisClient,
		syncService:        syncService,
		scheduler:          schedulerManager,
		IntegrationHandler: integrationHandler,
		AuthMiddleware:     authMiddleware,
		AccessGuard:        accessGuard,
	}, nil
}

// StartBackground launches the periodic refresh scheduler.
func (c *Container) StartBackground() {
	c.scheduler.Start()
}

// Shutdown stops background work and closes connections.
func (c *Container) Shutdown(ctx context.Context) error {
	if err := c.scheduler.Shutdown(); err != nil {
		c.log.Errorw("scheduler shutdown failed", "error", err)
	}

	if err := c.redis.Close(); err != nil {
		c.log.Errorw("redis close failed", "error", err)
	}

	return nil
}
