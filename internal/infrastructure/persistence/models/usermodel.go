package models

import "time"

// UserModel represents the database persistence model for users.
type UserModel struct {
	ID                 uint   `gorm:"primarykey"`
	ProviderID         string `gorm:"not null;size:255;uniqueIndex:idx_users_provider_id"`
	Handle             string `gorm:"size:100"`
	OnboardingComplete bool   `gorm:"default:false"`
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// TableName specifies the table name for GORM
func (UserModel) TableName() string {
	return "users"
}
