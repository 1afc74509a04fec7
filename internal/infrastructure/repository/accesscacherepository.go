package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"gitgate/internal/domain/integration"
	"gitgate/internal/infrastructure/persistence/models"
	"gitgate/internal/shared/logger"
)

// AccessCacheRepository implements the materialized (user, repo) access
// cache over gorm. The sync worker is the only writer besides the registry's
// invalidation path.
type AccessCacheRepository struct {
	db     *gorm.DB
	logger logger.Interface
}

// NewAccessCacheRepository creates a new access cache repository
func NewAccessCacheRepository(db *gorm.DB, logger logger.Interface) integration.AccessCacheRepository {
	return &AccessCacheRepository{db: db, logger: logger}
}

// Get returns the cached decision plus a stale flag, or nil when no decision
// exists. An entry past expires_at is never reported fresh.
func (r *AccessCacheRepository) Get(ctx context.Context, userID uint, repoID int64, now time.Time) (*integration.CachedAccess, bool, error) {
	var model models.UserRepoAccessCacheModel

	err := conn(ctx, r.db).
		Where("user_id = ? AND repo_id = ?", userID, repoID).
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, false, nil
		}
		r.logger.Errorw("failed to get access cache entry", "user_id", userID, "repo_id", repoID, "error", err)
		return nil, false, fmt.Errorf("failed to get access cache entry: %w", err)
	}

	entry := toCachedAccess(&model)
	return entry, entry.IsStale(now), nil
}

// PutMany upserts entries with fresh TTLs
func (r *AccessCacheRepository) PutMany(ctx context.Context, entries []integration.CachedAccess) error {
	if len(entries) == 0 {
		return nil
	}

	entryModels := make([]models.UserRepoAccessCacheModel, 0, len(entries))
	for _, entry := range entries {
		entryModels = append(entryModels, models.UserRepoAccessCacheModel{
			UserID:         entry.UserID,
			RepoID:         entry.RepoID,
			InstallationID: entry.InstallationID,
			Level:          string(entry.Level),
			ComputedAt:     entry.ComputedAt,
			ExpiresAt:      entry.ExpiresAt,
		})
	}

	err := conn(ctx, r.db).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "repo_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"installation_id", "level", "computed_at", "expires_at", "updated_at"}),
	}).Create(&entryModels).Error
	if err != nil {
		r.logger.Errorw("failed to put access cache entries", "count", len(entries), "error", err)
		return fmt.Errorf("failed to put access cache entries: %w", err)
	}

	return nil
}

// ExpireRepos expires the user's entries for the given repos
func (r *AccessCacheRepository) ExpireRepos(ctx context.Context, userID uint, repoIDs []int64, now time.Time) error {
	if len(repoIDs) == 0 {
		return nil
	}

	err := conn(ctx, r.db).
		Model(&models.UserRepoAccessCacheModel{}).
		Where("user_id = ? AND repo_id IN ?", userID, repoIDs).
		Update("expires_at", now).Error
	if err != nil {
		r.logger.Errorw("failed to expire access cache entries", "user_id", userID, "count", len(repoIDs), "error", err)
		return fmt.Errorf("failed to expire access cache entries: %w", err)
	}

	return nil
}

// MarkStaleByInstallation forces every entry of an installation stale. Used
// on sync failure so existing data survives as a degraded-mode fallback but
// stops serving as fresh.
func (r *AccessCacheRepository) MarkStaleByInstallation(ctx context.Context, installationID uint, now time.Time) error {
	err := conn(ctx, r.db).
		Model(&models.UserRepoAccessCacheModel{}).
		Where("installation_id = ? AND expires_at > ?", installationID, now).
		Update("expires_at", now).Error
	if err != nil {
		r.logger.Errorw("failed to mark installation cache stale", "installation_id", installationID, "error", err)
		return fmt.Errorf("failed to mark installation cache stale: %w", err)
	}

	return nil
}

// InvalidateByInstallation deletes every entry referencing the installation
func (r *AccessCacheRepository) InvalidateByInstallation(ctx context.Context, installationID uint) error {
	err := conn(ctx, r.db).
		Where("installation_id = ?", installationID).
		Delete(&models.UserRepoAccessCacheModel{}).Error
	if err != nil {
		r.logger.Errorw("failed to invalidate installation cache", "installation_id", installationID, "error", err)
		return fmt.Errorf("failed to invalidate installation cache: %w", err)
	}

	r.logger.Infow("installation cache invalidated", "installation_id", installationID)
	return nil
}

// CountFresh counts the user's non-stale entries owned by active
// installations. A fresh row left behind by a suspended or needs_reauth
// installation grants nothing and must not count.
func (r *AccessCacheRepository) CountFresh(ctx context.Context, userID uint, now time.Time) (int64, error) {
	var count int64

	err := conn(ctx, r.db).
		Model(&models.UserRepoAccessCacheModel{}).
		Joins("JOIN installations ON installations.id = user_repo_access_cache.installation_id").
		Where("user_repo_access_cache.user_id = ? AND user_repo_access_cache.expires_at > ?", userID, now).
		Where("installations.status = ?", string(integration.InstallationActive)).
		Count(&count).Error
	if err != nil {
		r.logger.Errorw("failed to count fresh cache entries", "user_id", userID, "error", err)
		return 0, fmt.Errorf("failed to count fresh cache entries: %w", err)
	}

	return count, nil
}

// ListByUserAndInstallation retrieves the user's entries for one installation
func (r *AccessCacheRepository) ListByUserAndInstallation(ctx context.Context, userID, installationID uint) ([]*integration.CachedAccess, error) {
	var entryModels []*models.UserRepoAccessCacheModel

	err := conn(ctx, r.db).
		Where("user_id = ? AND installation_id = ?", userID, installationID).
		Find(&entryModels).Error
	if err != nil {
		r.logger.Errorw("failed to list cache entries", "user_id", userID, "installation_id", installationID, "error", err)
		return nil, fmt.Errorf("failed to list cache entries: %w", err)
	}

	entries := make([]*integration.CachedAccess, 0, len(entryModels))
	for _, model := range entryModels {
		entries = append(entries, toCachedAccess(model))
	}
	return entries, nil
}

func toCachedAccess(model *models.UserRepoAccessCacheModel) *integration.CachedAccess {
	return &integration.CachedAccess{
		ID:             model.ID,
		UserID:         model.UserID,
		RepoID:         model.RepoID,
		InstallationID: model.InstallationID,
		Level:          integration.AccessLevel(model.Level),
		ComputedAt:     model.ComputedAt,
		ExpiresAt:      model.ExpiresAt,
	}
}
