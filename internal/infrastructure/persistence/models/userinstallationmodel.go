package models

import "time"

// UserInstallationModel links a user to an installation they may use.
// The (user, installation) pair is unique so re-linking is a no-op.
type UserInstallationModel struct {
	ID             uint   `gorm:"primarykey"`
	UserID         uint   `gorm:"not null;uniqueIndex:idx_user_installation"`
	InstallationID uint   `gorm:"not null;uniqueIndex:idx_user_installation;index:idx_user_installations_installation"`
	Role           string `gorm:"size:50"`
	LinkedAt       time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// TableName specifies the table name for GORM
func (UserInstallationModel) TableName() string {
	return "user_installations"
}
