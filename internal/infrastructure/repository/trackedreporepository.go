package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"gitgate/internal/domain/integration"
	"gitgate/internal/infrastructure/persistence/models"
	"gitgate/internal/shared/logger"
)

// TrackedRepoRepository implements tracked repository persistence over gorm.
type TrackedRepoRepository struct {
	db     *gorm.DB
	logger logger.Interface
}

// NewTrackedRepoRepository creates a new tracked repo repository
func NewTrackedRepoRepository(db *gorm.DB, logger logger.Interface) integration.TrackedRepoRepository {
	return &TrackedRepoRepository{db: db, logger: logger}
}

// UpsertMany records repositories as tracked for an installation. A repo
// seen again after being untracked is re-enabled.
func (r *TrackedRepoRepository) UpsertMany(ctx context.Context, installationID uint, repos []integration.RemoteRepo) error {
	if len(repos) == 0 {
		return nil
	}

	repoModels := make([]models.TrackedRepoModel, 0, len(repos))
	for _, repo := range repos {
		repoModels = append(repoModels, models.TrackedRepoModel{
			ExternalRepoID:  repo.ExternalID,
			InstallationID:  installationID,
			FullName:        repo.FullName,
			TrackingEnabled: true,
		})
	}

	err := conn(ctx, r.db).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "external_repo_id"}, {Name: "installation_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"full_name", "tracking_enabled", "updated_at"}),
	}).Create(&repoModels).Error
	if err != nil {
		r.logger.Errorw("failed to upsert tracked repos", "installation_id", installationID, "count", len(repos), "error", err)
		return fmt.Errorf("failed to upsert tracked repos: %w", err)
	}

	// Keep the shared repos catalog current with the same snapshot.
	catalogModels := make([]models.RepoModel, 0, len(repos))
	for _, repo := range repos {
		catalogModels = append(catalogModels, models.RepoModel{
			ExternalID: repo.ExternalID,
			FullName:   repo.FullName,
		})
	}
	err = conn(ctx, r.db).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "external_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"full_name", "updated_at"}),
	}).Create(&catalogModels).Error
	if err != nil {
		r.logger.Errorw("failed to upsert repo catalog", "installation_id", installationID, "count", len(repos), "error", err)
		return fmt.Errorf("failed to upsert repo catalog: %w", err)
	}

	return nil
}

// ListByInstallation retrieves tracked repos for an installation
func (r *TrackedRepoRepository) ListByInstallation(ctx context.Context, installationID uint) ([]*integration.TrackedRepo, error) {
	var repoModels []*models.TrackedRepoModel

	err := conn(ctx, r.db).
		Where("installation_id = ?", installationID).
		Find(&repoModels).Error
	if err != nil {
		r.logger.Errorw("failed to list tracked repos", "installation_id", installationID, "error", err)
		return nil, fmt.Errorf("failed to list tracked repos: %w", err)
	}

	repos := make([]*integration.TrackedRepo, 0, len(repoModels))
	for _, model := range repoModels {
		repos = append(repos, &integration.TrackedRepo{
			ID:              model.ID,
			ExternalRepoID:  model.ExternalRepoID,
			InstallationID:  model.InstallationID,
			FullName:        model.FullName,
			TrackingEnabled: model.TrackingEnabled,
			CreatedAt:       model.CreatedAt,
			UpdatedAt:       model.UpdatedAt,
		})
	}
	return repos, nil
}

// UntrackByInstallation disables tracking for all of an installation's repos
func (r *TrackedRepoRepository) UntrackByInstallation(ctx context.Context, installationID uint) error {
	err := conn(ctx, r.db).
		Model(&models.TrackedRepoModel{}).
		Where("installation_id = ?", installationID).
		Update("tracking_enabled", false).Error
	if err != nil {
		r.logger.Errorw("failed to untrack repos", "installation_id", installationID, "error", err)
		return fmt.Errorf("failed to untrack repos: %w", err)
	}

	return nil
}
