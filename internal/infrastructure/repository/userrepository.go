package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"gitgate/internal/domain/integration"
	"gitgate/internal/infrastructure/persistence/models"
	"gitgate/internal/shared/logger"
)

// UserRepository implements the user repository interface over gorm.
type UserRepository struct {
	db     *gorm.DB
	logger logger.Interface
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *gorm.DB, logger logger.Interface) integration.UserRepository {
	return &UserRepository{db: db, logger: logger}
}

// GetByProviderID retrieves a user by the hosted identity provider's id
func (r *UserRepository) GetByProviderID(ctx context.Context, providerID string) (*integration.User, error) {
	var model models.UserModel

	if err := conn(ctx, r.db).Where("provider_id = ?", providerID).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, integration.ErrUserNotFound
		}
		r.logger.Errorw("failed to get user by provider id", "provider_id", providerID, "error", err)
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return toUserEntity(&model), nil
}

// GetByID retrieves a user by internal ID
func (r *UserRepository) GetByID(ctx context.Context, id uint) (*integration.User, error) {
	var model models.UserModel

	if err := conn(ctx, r.db).First(&model, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, integration.ErrUserNotFound
		}
		r.logger.Errorw("failed to get user by id", "id", id, "error", err)
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return toUserEntity(&model), nil
}

// EnsureByProviderID returns the user for the identity, creating the record
// on first successful sign-in. Concurrent first sign-ins collapse on the
// unique provider_id index.
func (r *UserRepository) EnsureByProviderID(ctx context.Context, providerID, handle string) (*integration.User, error) {
	model := models.UserModel{
		ProviderID: providerID,
		Handle:     handle,
	}

	err := conn(ctx, r.db).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "provider_id"}},
		DoNothing: true,
	}).Create(&model).Error
	if err != nil {
		r.logger.Errorw("failed to ensure user", "provider_id", providerID, "error", err)
		return nil, fmt.Errorf("failed to ensure user: %w", err)
	}

	var persisted models.UserModel
	if err := conn(ctx, r.db).Where("provider_id = ?", providerID).First(&persisted).Error; err != nil {
		return nil, fmt.Errorf("failed to reload user: %w", err)
	}

	return toUserEntity(&persisted), nil
}

// SetOnboardingComplete flags the user's onboarding as done
func (r *UserRepository) SetOnboardingComplete(ctx context.Context, id uint) error {
	result := conn(ctx, r.db).
		Model(&models.UserModel{}).
		Where("id = ?", id).
		Update("onboarding_complete", true)
	if result.Error != nil {
		r.logger.Errorw("failed to set onboarding complete", "id", id, "error", result.Error)
		return fmt.Errorf("failed to set onboarding complete: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return integration.ErrUserNotFound
	}
	return nil
}

func toUserEntity(model *models.UserModel) *integration.User {
	return &integration.User{
		ID:                 model.ID,
		ProviderID:         model.ProviderID,
		Handle:             model.Handle,
		OnboardingComplete: model.OnboardingComplete,
		CreatedAt:          model.CreatedAt,
		UpdatedAt:          model.UpdatedAt,
	}
}
