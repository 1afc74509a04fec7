package models

import "time"

// RepoModel represents the database persistence model for repositories known
// to the product, keyed by the provider's repo id.
type RepoModel struct {
	ID         uint   `gorm:"primarykey"`
	ExternalID int64  `gorm:"not null;uniqueIndex:idx_repos_external_id"`
	FullName   string `gorm:"size:255"`
	Private    bool   `gorm:"default:false"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// TableName specifies the table name for GORM
func (RepoModel) TableName() string {
	return "repos"
}
