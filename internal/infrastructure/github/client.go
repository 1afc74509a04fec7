// Package github is the GitHub App API client used by the handshake and the
// access sync worker.
package github

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/oauth2"
	oauth2github "golang.org/x/oauth2/github"

	"gitgate/internal/domain/integration"
)

const apiBaseURL = "https://api.github.com"

// Scopes requested during authorization. read:org is needed to resolve
// shared org installations.
var authScopes = []string{"repo", "user", "read:org"}

// Config holds the GitHub App OAuth credentials.
type Config struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
}

// Client talks to the GitHub API on behalf of a user token.
type Client struct {
	config     *oauth2.Config
	httpClient *http.Client
}

// APIError carries the upstream status code so callers can classify the
// failure: 401/403 is a revoked grant, 429 a rate limit, anything else a
// transient upstream error.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("github api error: status %d: %s", e.StatusCode, e.Body)
}

// IsAuthRevoked reports whether the error means the grant is no longer valid.
func IsAuthRevoked(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == http.StatusUnauthorized || apiErr.StatusCode == http.StatusForbidden
	}
	return false
}

// IsNotFound reports whether the provider answered 404, which for an
// installation-scoped call means the installation no longer exists.
func IsNotFound(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == http.StatusNotFound
	}
	return false
}

// IsRateLimited reports whether the error is a 429 from the provider.
func IsRateLimited(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == http.StatusTooManyRequests
	}
	return false
}

// NewClient creates a GitHub client from OAuth credentials.
func NewClient(cfg Config) *Client {
	return &Client{
		config: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       authScopes,
			Endpoint:     oauth2github.Endpoint,
		},
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

// Configured reports whether a client id is present. Missing credentials are
// a configuration error surfaced to the operator, not a silent no-op.
func (c *Client) Configured() bool {
	return c.config.ClientID != ""
}

// AuthCodeURL builds the authorization redirect carrying the CSRF state.
func (c *Client) AuthCodeURL(state string) string {
	return c.config.AuthCodeURL(state)
}

// ExchangeCode exchanges an authorization code for an access token.
func (c *Client) ExchangeCode(ctx context.Context, code string) (string, error) {
	token, err := c.config.Exchange(ctx, code)
	if err != nil {
		return "", fmt.Errorf("failed to exchange code: %w", err)
	}
	return token.AccessToken, nil
}

// GetInstallation fetches one installation visible to the user token.
func (c *Client) GetInstallation(ctx context.Context, accessToken string, installationID int64) (*InstallationInfo, error) {
	installations, err := c.ListUserInstallations(ctx, accessToken)
	if err != nil {
		return nil, err
	}
	for _, inst := range installations {
		if inst.ID == installationID {
			return inst, nil
		}
	}
	return nil, fmt.Errorf("installation %d not visible to this user", installationID)
}

// ListUserInstallations lists the installations the user token may access.
func (c *Client) ListUserInstallations(ctx context.Context, accessToken string) ([]*InstallationInfo, error) {
	var payload installationListPayload
	if err := c.get(ctx, accessToken, "/user/installations", &payload); err != nil {
		return nil, err
	}

	installations := make([]*InstallationInfo, 0, len(payload.Installations))
	for _, raw := range payload.Installations {
		installations = append(installations, &InstallationInfo{
			ID:          raw.ID,
			Account:     raw.Account.Login,
			AccountType: raw.Account.Type,
			Scope:       scopeFromSelection(raw.RepositorySelection),
			Suspended:   raw.SuspendedAt != nil,
		})
	}
	return installations, nil
}

// ListInstallationRepos lists the repositories the user may act on through
// one installation, with the user's effective permission level.
func (c *Client) ListInstallationRepos(ctx context.Context, accessToken string, installationID int64) ([]integration.RemoteRepo, error) {
	var repos []integration.RemoteRepo
	page := 1
	for {
		var payload repoListPayload
		path := fmt.Sprintf("/user/installations/%d/repositories?per_page=100&page=%d", installationID, page)
		if err := c.get(ctx, accessToken, path, &payload); err != nil {
			return nil, err
		}

		for _, raw := range payload.Repositories {
			repos = append(repos, integration.RemoteRepo{
				ExternalID: raw.ID,
				FullName:   raw.FullName,
				Level:      levelFromPermissions(raw.Permissions),
			})
		}

		if len(payload.Repositories) < 100 || len(repos) >= payload.TotalCount {
			return repos, nil
		}
		page++
	}
}

func (c *Client) get(ctx context.Context, accessToken, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiBaseURL+path, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Accept", "application/vnd.github+json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to call github api: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return &APIError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to unmarshal response: %w", err)
	}
	return nil
}

func scopeFromSelection(selection string) integration.RepoScope {
	if selection == "all" {
		return integration.ScopeAllRepos
	}
	return integration.ScopeSelectedRepos
}

func levelFromPermissions(p permissions) integration.AccessLevel {
	switch {
	case p.Admin:
		return integration.AccessAdmin
	case p.Push:
		return integration.AccessWrite
	case p.Pull:
		return integration.AccessRead
	default:
		return integration.AccessNone
	}
}
