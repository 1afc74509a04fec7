package repository

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"gitgate/internal/domain/integration"
	"gitgate/internal/infrastructure/persistence/models"
	"gitgate/internal/shared/logger"
)

// UserInstallationRepository implements user-installation links over gorm.
type UserInstallationRepository struct {
	db     *gorm.DB
	logger logger.Interface
}

// NewUserInstallationRepository creates a new user-installation repository
func NewUserInstallationRepository(db *gorm.DB, logger logger.Interface) integration.UserInstallationRepository {
	return &UserInstallationRepository{db: db, logger: logger}
}

// Link creates the join row. Linking an already-linked pair is a no-op, not
// an error: OAuth completions are retried by browsers and users alike.
func (r *UserInstallationRepository) Link(ctx context.Context, userID, installationID uint, role string) error {
	model := models.UserInstallationModel{
		UserID:         userID,
		InstallationID: installationID,
		Role:           role,
		LinkedAt:       time.Now().UTC(),
	}

	err := conn(ctx, r.db).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "installation_id"}},
		DoNothing: true,
	}).Create(&model).Error
	if err != nil {
		r.logger.Errorw("failed to link user to installation", "user_id", userID, "installation_id", installationID, "error", err)
		return fmt.Errorf("failed to link user to installation: %w", err)
	}

	r.logger.Infow("user linked to installation", "user_id", userID, "installation_id", installationID)
	return nil
}

// ListUserIDs retrieves all user ids linked to an installation
func (r *UserInstallationRepository) ListUserIDs(ctx context.Context, installationID uint) ([]uint, error) {
	var userIDs []uint

	err := conn(ctx, r.db).
		Model(&models.UserInstallationModel{}).
		Where("installation_id = ?", installationID).
		Pluck("user_id", &userIDs).Error
	if err != nil {
		r.logger.Errorw("failed to list users for installation", "installation_id", installationID, "error", err)
		return nil, fmt.Errorf("failed to list users for installation: %w", err)
	}

	return userIDs, nil
}

// ListActiveLinks retrieves all links whose installation is active, feeding
// the periodic refresh.
func (r *UserInstallationRepository) ListActiveLinks(ctx context.Context) ([]*integration.UserInstallation, error) {
	var linkModels []*models.UserInstallationModel

	err := conn(ctx, r.db).
		Joins("JOIN installations ON installations.id = user_installations.installation_id").
		Where("installations.status = ?", string(integration.InstallationActive)).
		Find(&linkModels).Error
	if err != nil {
		r.logger.Errorw("failed to list active links", "error", err)
		return nil, fmt.Errorf("failed to list active links: %w", err)
	}

	links := make([]*integration.UserInstallation, 0, len(linkModels))
	for _, model := range linkModels {
		links = append(links, &integration.UserInstallation{
			ID:             model.ID,
			UserID:         model.UserID,
			InstallationID: model.InstallationID,
			Role:           model.Role,
			LinkedAt:       model.LinkedAt,
		})
	}
	return links, nil
}
