package github

import (
	"time"

	"gitgate/internal/domain/integration"
)

// InstallationInfo is the provider's view of one installation, normalized
// for the registry.
type InstallationInfo struct {
	ID          int64
	Account     string
	AccountType string
	Scope       integration.RepoScope
	Suspended   bool
}

type installationListPayload struct {
	TotalCount    int               `json:"total_count"`
	Installations []rawInstallation `json:"installations"`
}

type rawInstallation struct {
	ID                  int64      `json:"id"`
	RepositorySelection string     `json:"repository_selection"`
	SuspendedAt         *time.Time `json:"suspended_at"`
	Account             rawAccount `json:"account"`
}

type rawAccount struct {
	Login string `json:"login"`
	Type  string `json:"type"`
}

type repoListPayload struct {
	TotalCount   int       `json:"total_count"`
	Repositories []rawRepo `json:"repositories"`
}

type rawRepo struct {
	ID          int64       `json:"id"`
	FullName    string      `json:"full_name"`
	Private     bool        `json:"private"`
	Permissions permissions `json:"permissions"`
}

type permissions struct {
	Admin bool `json:"admin"`
	Push  bool `json:"push"`
	Pull  bool `json:"pull"`
}
