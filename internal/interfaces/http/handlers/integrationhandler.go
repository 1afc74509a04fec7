// Package handlers contains the Gin HTTP handlers.
package handlers

import (
	"net/http"
	"net/url"
	"strconv"

	"github.com/gin-gonic/gin"

	"gitgate/internal/application/integration/dto"
	"gitgate/internal/application/integration/usecases"
	"gitgate/internal/shared/config"
	"gitgate/internal/shared/constants"
	apperrors "gitgate/internal/shared/errors"
	"gitgate/internal/shared/logger"
	"gitgate/internal/shared/utils"
)

// IntegrationHandler serves the GitHub handshake and the integration status
// and repo access endpoints.
type IntegrationHandler struct {
	initiateUseCase     *usecases.InitiateHandshakeUseCase
	completeUseCase     *usecases.CompleteHandshakeUseCase
	statusUseCase       *usecases.GetIntegrationStatusUseCase
	checkAccessUseCase  *usecases.CheckRepoAccessUseCase
	cookieConfig        config.CookieConfig
	secureCookies       bool
	frontendCallbackURL string
	logger              logger.Interface
}

func NewIntegrationHandler(
	initiateUseCase *usecases.InitiateHandshakeUseCase,
	completeUseCase *usecases.CompleteHandshakeUseCase,
	statusUseCase *usecases.GetIntegrationStatusUseCase,
	checkAccessUseCase *usecases.CheckRepoAccessUseCase,
	cookieConfig config.CookieConfig,
	secureCookies bool,
	frontendCallbackURL string,
	logger logger.Interface,
) *IntegrationHandler {
	return &IntegrationHandler{
		initiateUseCase:     initiateUseCase,
		completeUseCase:     completeUseCase,
		statusUseCase:       statusUseCase,
		checkAccessUseCase:  checkAccessUseCase,
		cookieConfig:        cookieConfig,
		secureCookies:       secureCookies,
		frontendCallbackURL: frontendCallbackURL,
		logger:              logger,
	}
}

// InitiateHandshake starts the GitHub authorization flow. The state token is
// bound to the browser via the handshake cookie before the redirect leaves.
func (h *IntegrationHandler) InitiateHandshake(c *gin.Context) {
	result, err := h.initiateUseCase.Execute(c.Request.Context())
	if err != nil {
		h.logger.Errorw("handshake initiation failed", "error", err)
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SetOAuthStateCookie(c, h.cookieConfig, result.State, h.secureCookies)
	c.Redirect(http.StatusFound, result.AuthURL)
}

// HandleCallback completes the GitHub authorization flow and redirects the
// browser back to the frontend, carrying an error code when anything failed.
func (h *IntegrationHandler) HandleCallback(c *gin.Context) {
	userID := c.GetUint(constants.ContextKeyUserID)

	if errParam := c.Query("error"); errParam != "" {
		h.logger.Warnw("provider returned error on callback",
			"error_code", errParam,
			"error_description", c.Query("error_description"),
		)
		h.redirectWithError(c, constants.OAuthErrorCode(errParam))
		return
	}

	code := c.Query("code")
	if code == "" {
		h.logger.Warnw("callback missing code")
		h.redirectWithError(c, constants.OAuthErrorMissingCode)
		return
	}

	state := c.Query("state")
	if state == "" {
		h.logger.Warnw("callback missing state")
		h.redirectWithError(c, constants.OAuthErrorMissingState)
		return
	}

	var installationID int64
	if raw := c.Query("installation_id"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			h.logger.Warnw("callback carried malformed installation id", "installation_id", raw)
			h.redirectWithError(c, constants.OAuthErrorInvalidRequest)
			return
		}
		installationID = parsed
	}

	cmd := usecases.CompleteHandshakeCommand{
		UserID:         userID,
		Code:           code,
		QueryState:     state,
		CookieState:    utils.GetOAuthStateCookie(c),
		InstallationID: installationID,
	}

	// The cookie is single-use regardless of outcome.
	utils.ClearOAuthStateCookie(c, h.cookieConfig, h.secureCookies)

	if _, err := h.completeUseCase.Execute(c.Request.Context(), cmd); err != nil {
		h.logger.Errorw("handshake completion failed", "user_id", userID, "error", err)

		switch {
		case apperrors.IsCSRFMismatchError(err):
			h.redirectWithError(c, constants.OAuthErrorInvalidState)
		case apperrors.IsExternalAPIError(err):
			h.redirectWithError(c, constants.OAuthErrorExchangeFailed)
		default:
			h.redirectWithError(c, constants.OAuthErrorLinkFailed)
		}
		return
	}

	c.Redirect(http.StatusFound, h.frontendCallbackURL+"?connected=true")
}

// GetStatus returns the derived integration status for the current user.
func (h *IntegrationHandler) GetStatus(c *gin.Context) {
	userID := c.GetUint(constants.ContextKeyUserID)

	result, err := h.statusUseCase.Execute(c.Request.Context(), usecases.GetIntegrationStatusCommand{UserID: userID})
	if err != nil {
		h.logger.Errorw("status resolution failed", "user_id", userID, "error", err)
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "",
		dto.NewIntegrationStatusDTO(result.Status, result.Installations, result.FreshEntries))
}

// CheckRepoAccess answers whether the current user may act on a repository.
func (h *IntegrationHandler) CheckRepoAccess(c *gin.Context) {
	userID := c.GetUint(constants.ContextKeyUserID)

	repoID, err := strconv.ParseInt(c.Param("repo_id"), 10, 64)
	if err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "invalid repository id")
		return
	}

	result, err := h.checkAccessUseCase.Execute(c.Request.Context(), usecases.CheckRepoAccessCommand{
		UserID: userID,
		RepoID: repoID,
	})
	if err != nil {
		h.logger.Errorw("repo access check failed", "user_id", userID, "repo_id", repoID, "error", err)
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", dto.NewAccessDecisionDTO(repoID, result.Decision))
}

func (h *IntegrationHandler) redirectWithError(c *gin.Context, code constants.OAuthErrorCode) {
	target := h.frontendCallbackURL +
		"?error=" + url.QueryEscape(string(code)) +
		"&message=" + url.QueryEscape(constants.GetOAuthErrorMessage(code))
	c.Redirect(http.StatusFound, target)
}
