// Package dto defines the wire representations returned by the HTTP surface.
package dto

import (
	"time"

	"gitgate/internal/domain/integration"
)

// StatusLoading is a client-side sentinel for "status not yet fetched". It is
// never produced by the resolver; it exists so clients share one vocabulary.
const StatusLoading = "loading"

// IntegrationStatusDTO is the response body of the status endpoint.
type IntegrationStatusDTO struct {
	Status        string            `json:"status"`
	Installations []InstallationDTO `json:"installations"`
	FreshEntries  int64             `json:"fresh_entries"`
}

// InstallationDTO is one linked installation as exposed to clients. The
// provider access token never leaves the server.
type InstallationDTO struct {
	InstallationID int64     `json:"installation_id"`
	Account        string    `json:"account"`
	AccountType    string    `json:"account_type"`
	Scope          string    `json:"scope"`
	Status         string    `json:"status"`
	CreatedAt      time.Time `json:"created_at"`
}

// AccessDecisionDTO is the response body of the repo access endpoint.
type AccessDecisionDTO struct {
	RepoID  int64  `json:"repo_id"`
	Level   string `json:"level"`
	Allowed bool   `json:"allowed"`
	Stale   bool   `json:"stale"`
}

// NewIntegrationStatusDTO maps a resolved status and its installations.
func NewIntegrationStatusDTO(status integration.Status, installations []*integration.Installation, freshEntries int64) IntegrationStatusDTO {
	out := IntegrationStatusDTO{
		Status:        string(status),
		Installations: make([]InstallationDTO, 0, len(installations)),
		FreshEntries:  freshEntries,
	}
	for _, inst := range installations {
		out.Installations = append(out.Installations, InstallationDTO{
			InstallationID: inst.ExternalID,
			Account:        inst.Account,
			AccountType:    inst.AccountType,
			Scope:          string(inst.Scope),
			Status:         string(inst.Status),
			CreatedAt:      inst.CreatedAt,
		})
	}
	return out
}

// NewAccessDecisionDTO maps a cache decision.
func NewAccessDecisionDTO(repoID int64, decision integration.AccessDecision) AccessDecisionDTO {
	return AccessDecisionDTO{
		RepoID:  repoID,
		Level:   string(decision.Level),
		Allowed: decision.Level != integration.AccessNone,
		Stale:   decision.Stale,
	}
}
