package models

import "time"

// InstallationModel represents the database persistence model for GitHub App
// installations. ExternalID is the provider's installation id and is unique:
// recording the same installation twice must upsert, never duplicate.
type InstallationModel struct {
	ID          uint   `gorm:"primarykey"`
	ExternalID  int64  `gorm:"not null;uniqueIndex:idx_installations_external_id"`
	Account     string `gorm:"not null;size:255"`
	AccountType string `gorm:"size:50"`
	InstalledBy uint   `gorm:"index:idx_installations_installed_by"`
	Scope       string `gorm:"size:20;default:'selected'"`
	Status      string `gorm:"not null;size:20;default:'active';index:idx_installations_status"`
	AccessToken string `gorm:"size:512"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// TableName specifies the table name for GORM
func (InstallationModel) TableName() string {
	return "installations"
}
