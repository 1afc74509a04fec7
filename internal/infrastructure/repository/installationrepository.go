package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"gitgate/internal/domain/integration"
	"gitgate/internal/infrastructure/persistence/mappers"
	"gitgate/internal/infrastructure/persistence/models"
	"gitgate/internal/shared/logger"
)

// InstallationRepository implements the installation registry over gorm.
type InstallationRepository struct {
	db     *gorm.DB
	mapper mappers.InstallationMapper
	logger logger.Interface
}

// NewInstallationRepository creates a new installation repository
func NewInstallationRepository(db *gorm.DB, logger logger.Interface) integration.InstallationRepository {
	return &InstallationRepository{
		db:     db,
		mapper: mappers.NewInstallationMapper(),
		logger: logger,
	}
}

// Upsert records an installation keyed by the provider's installation id.
// Conflicts on external_id update the mutable columns in place, so replayed
// webhooks or repeated OAuth completions never create duplicates.
func (r *InstallationRepository) Upsert(ctx context.Context, installation *integration.Installation) error {
	model := r.mapper.ToModel(installation)

	err := conn(ctx, r.db).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "external_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"account", "account_type", "scope", "status", "access_token", "updated_at",
		}),
	}).Create(model).Error
	if err != nil {
		r.logger.Errorw("failed to upsert installation", "external_id", installation.ExternalID, "error", err)
		return fmt.Errorf("failed to upsert installation: %w", err)
	}

	// Re-read so a conflicting upsert still yields the existing row's id.
	var persisted models.InstallationModel
	if err := conn(ctx, r.db).Where("external_id = ?", installation.ExternalID).First(&persisted).Error; err != nil {
		return fmt.Errorf("failed to reload installation: %w", err)
	}
	installation.ID = persisted.ID

	r.logger.Infow("installation recorded", "id", persisted.ID, "external_id", persisted.ExternalID, "account", persisted.Account)
	return nil
}

// GetByExternalID retrieves an installation by the provider's id
func (r *InstallationRepository) GetByExternalID(ctx context.Context, externalID int64) (*integration.Installation, error) {
	var model models.InstallationModel

	if err := conn(ctx, r.db).Where("external_id = ?", externalID).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, integration.ErrInstallationNotFound
		}
		r.logger.Errorw("failed to get installation", "external_id", externalID, "error", err)
		return nil, fmt.Errorf("failed to get installation: %w", err)
	}

	return r.mapper.ToEntity(&model), nil
}

// ListByUser retrieves all installations linked to a user, any status
func (r *InstallationRepository) ListByUser(ctx context.Context, userID uint) ([]*integration.Installation, error) {
	var installModels []*models.InstallationModel

	err := conn(ctx, r.db).
		Joins("JOIN user_installations ON user_installations.installation_id = installations.id").
		Where("user_installations.user_id = ?", userID).
		Find(&installModels).Error
	if err != nil {
		r.logger.Errorw("failed to list installations for user", "user_id", userID, "error", err)
		return nil, fmt.Errorf("failed to list installations: %w", err)
	}

	installations := make([]*integration.Installation, 0, len(installModels))
	for _, model := range installModels {
		installations = append(installations, r.mapper.ToEntity(model))
	}
	return installations, nil
}

// ListActive retrieves all active installations
func (r *InstallationRepository) ListActive(ctx context.Context) ([]*integration.Installation, error) {
	var installModels []*models.InstallationModel

	err := conn(ctx, r.db).
		Where("status = ?", string(integration.InstallationActive)).
		Find(&installModels).Error
	if err != nil {
		r.logger.Errorw("failed to list active installations", "error", err)
		return nil, fmt.Errorf("failed to list active installations: %w", err)
	}

	installations := make([]*integration.Installation, 0, len(installModels))
	for _, model := range installModels {
		installations = append(installations, r.mapper.ToEntity(model))
	}
	return installations, nil
}

// UpdateStatus transitions an installation's lifecycle status
func (r *InstallationRepository) UpdateStatus(ctx context.Context, externalID int64, status integration.InstallationStatus) error {
	result := conn(ctx, r.db).
		Model(&models.InstallationModel{}).
		Where("external_id = ?", externalID).
		Update("status", string(status))
	if result.Error != nil {
		r.logger.Errorw("failed to update installation status", "external_id", externalID, "status", status, "error", result.Error)
		return fmt.Errorf("failed to update installation status: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return integration.ErrInstallationNotFound
	}

	r.logger.Infow("installation status updated", "external_id", externalID, "status", status)
	return nil
}

// MarkRemoved sets status removed and cascades in one transaction: dependent
// tracked repos become untracked (not deleted) and every cache entry
// referencing the installation is invalidated. No orphaned "allowed" read
// survives the uninstall.
func (r *InstallationRepository) MarkRemoved(ctx context.Context, externalID int64) error {
	err := conn(ctx, r.db).Transaction(func(tx *gorm.DB) error {
		var model models.InstallationModel
		if err := tx.Where("external_id = ?", externalID).First(&model).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return integration.ErrInstallationNotFound
			}
			return err
		}

		if err := tx.Model(&model).Update("status", string(integration.InstallationRemoved)).Error; err != nil {
			return err
		}

		if err := tx.Model(&models.TrackedRepoModel{}).
			Where("installation_id = ?", model.ID).
			Update("tracking_enabled", false).Error; err != nil {
			return err
		}

		return tx.Where("installation_id = ?", model.ID).
			Delete(&models.UserRepoAccessCacheModel{}).Error
	})
	if err != nil {
		if errors.Is(err, integration.ErrInstallationNotFound) {
			return err
		}
		r.logger.Errorw("failed to mark installation removed", "external_id", externalID, "error", err)
		return fmt.Errorf("failed to mark installation removed: %w", err)
	}

	r.logger.Infow("installation removed", "external_id", externalID)
	return nil
}
