// Package mappers converts between domain entities and persistence models.
package mappers

import (
	"gitgate/internal/domain/integration"
	"gitgate/internal/infrastructure/persistence/models"
)

// InstallationMapper converts installations between the domain and
// persistence representations.
type InstallationMapper struct{}

func NewInstallationMapper() InstallationMapper {
	return InstallationMapper{}
}

func (InstallationMapper) ToModel(entity *integration.Installation) *models.InstallationModel {
	return &models.InstallationModel{
		ID:          entity.ID,
		ExternalID:  entity.ExternalID,
		Account:     entity.Account,
		AccountType: entity.AccountType,
		InstalledBy: entity.InstalledBy,
		Scope:       string(entity.Scope),
		Status:      string(entity.Status),
		AccessToken: entity.AccessToken,
		CreatedAt:   entity.CreatedAt,
		UpdatedAt:   entity.UpdatedAt,
	}
}

func (InstallationMapper) ToEntity(model *models.InstallationModel) *integration.Installation {
	return &integration.Installation{
		ID:          model.ID,
		ExternalID:  model.ExternalID,
		Account:     model.Account,
		AccountType: model.AccountType,
		InstalledBy: model.InstalledBy,
		Scope:       integration.RepoScope(model.Scope),
		Status:      integration.InstallationStatus(model.Status),
		AccessToken: model.AccessToken,
		CreatedAt:   model.CreatedAt,
		UpdatedAt:   model.UpdatedAt,
	}
}
