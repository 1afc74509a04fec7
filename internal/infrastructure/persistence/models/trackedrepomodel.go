package models

import "time"

// TrackedRepoModel represents a repository the product actively monitors.
// Rows survive installation removal with TrackingEnabled flipped off.
type TrackedRepoModel struct {
	ID              uint   `gorm:"primarykey"`
	ExternalRepoID  int64  `gorm:"not null;uniqueIndex:idx_tracked_repo_installation"`
	InstallationID  uint   `gorm:"not null;uniqueIndex:idx_tracked_repo_installation;index:idx_tracked_repos_installation"`
	FullName        string `gorm:"size:255"`
	TrackingEnabled bool   `gorm:"default:true;index:idx_tracked_repos_enabled"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// TableName specifies the table name for GORM
func (TrackedRepoModel) TableName() string {
	return "tracked_repos"
}
