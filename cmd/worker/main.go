package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"gitgate/internal/application/integration/usecases"
	"gitgate/internal/infrastructure/config"
	"gitgate/internal/infrastructure/database"
	"gitgate/internal/infrastructure/github"
	"gitgate/internal/infrastructure/repository"
	"gitgate/internal/infrastructure/scheduler"
	"gitgate/internal/shared/logger"
)

// The worker runs only the periodic access refresh against the same
// database, so the API deployment can stay free of background load.
func main() {
	env := "development"
	if len(os.Args) > 1 {
		env = os.Args[1]
	}
	if envVar := os.Getenv("ENV"); envVar != "" {
		env = envVar
	}

	cfg, err := config.Load(env)
	if err != nil {
		fmt.Printf("failed to load config: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(&cfg.Logger); err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	log := logger.NewLogger()
	log.Infow("starting access sync worker", "environment", env)

	if err := database.Init(&cfg.Database); err != nil {
		log.Fatalw("failed to initialize database", "error", err)
	}
	defer database.Close()

	db := database.Get()
	installationRepo := repository.NewInstallationRepository(db, log)
	linkRepo := repository.NewUserInstallationRepository(db, log)
	trackedRepoRepo := repository.NewTrackedRepoRepository(db, log)
	cacheRepo := repository.NewAccessCacheRepository(db, log)

	githubClient := github.NewClient(github.Config{
		ClientID:     cfg.OAuth.GitHub.ClientID,
		ClientSecret: cfg.OAuth.GitHub.ClientSecret,
		RedirectURL:  cfg.OAuth.GitHub.RedirectURL,
	})

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

	refreshUC := usecases.NewRefreshAllAccessUseCase(installationRepo, linkRepo, syncService, log.Named("refresh"))

	schedulerManager, err := scheduler.NewSchedulerManager(log.Named("scheduler"))
	if err != nil {
		log.Fatalw("failed to create scheduler", "error", err)
	}
	if err := schedulerManager.RegisterAccessSyncJobs(usecases.NewAccessRefreshJob(refreshUC), cfg.Sync.RefreshInterval()); err != nil {
		log.Fatalw("failed to register access sync jobs", "error", err)
	}

	schedulerManager.Start()
	log.Infow("access sync worker started", "interval", cfg.Sync.RefreshInterval().String())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan

	log.Infow("received signal, shutting down", "signal", sig)
	if err := schedulerManager.Shutdown(); err != nil {
		log.Errorw("scheduler shutdown failed", "error", err)
	}
	log.Infow("access sync worker stopped")
}
