package models

import "time"

// UserRepoAccessCacheModel is the materialized (user, repo) access decision.
// Only the sync worker writes it; ExpiresAt bounds how long it may be served
// as fresh.
type UserRepoAccessCacheModel struct {
	ID             uint  `gorm:"primarykey"`
	UserID         uint  `gorm:"not null;uniqueIndex:idx_user_repo_access"`
	RepoID         int64 `gorm:"not null;uniqueIndex:idx_user_repo_access"`
	InstallationID uint  `gorm:"not null;index:idx_access_cache_installation"`
	Level          string `gorm:"not null;size:20"`
	ComputedAt     time.Time `gorm:"not null"`
	ExpiresAt      time.Time `gorm:"not null;index:idx_access_cache_expires"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// TableName specifies the table name for GORM
func (UserRepoAccessCacheModel) TableName() string {
	return "user_repo_access_cache"
}
