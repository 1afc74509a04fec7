package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"gitgate/internal/application/integration/usecases"
	"gitgate/internal/domain/integration"
	"gitgate/internal/shared/constants"
	"gitgate/internal/shared/logger"
	"gitgate/internal/shared/utils"
)

// AccessGuard blocks guarded routes for users with no GitHub integration.
// It resolves the status from local state only and never calls the provider,
// so a provider outage cannot lock users out of already-granted surfaces.
type AccessGuard struct {
	statusUseCase  *usecases.GetIntegrationStatusUseCase
	onboardingPath string
	logger         logger.Interface
}

func NewAccessGuard(statusUseCase *usecases.GetIntegrationStatusUseCase, onboardingPath string, logger logger.Interface) *AccessGuard {
	return &AccessGuard{
		statusUseCase:  statusUseCase,
		onboardingPath: onboardingPath,
		logger:         logger,
	}
}

// Guard redirects not_connected users to onboarding. Every other status,
// degraded and needs_reauth included, passes through: those states are for
// the UI to surface, not for the guard to block on.
func (g *AccessGuard) Guard() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetUint(constants.ContextKeyUserID)
		if userID == 0 {
			utils.ErrorResponse(c, http.StatusUnauthorized, "missing authenticated user")
			c.Abort()
			return
		}

		result, err := g.statusUseCase.Execute(c.Request.Context(), usecases.GetIntegrationStatusCommand{UserID: userID})
		if err != nil {
			g.logger.Errorw("failed to resolve integration status", "user_id", userID, "error", err)
			utils.ErrorResponseWithError(c, err)
			c.Abort()
			return
		}

		if result.Status == integration.StatusNotConnected {
			if wantsJSON(c) {
				c.JSON(http.StatusForbidden, utils.APIResponse{
					Success: false,
					Error: &utils.ErrorInfo{
						Type:    "not_connected",
						Message: "GitHub integration is not connected",
						Details: g.onboardingPath,
					},
				})
			} else {
				c.Redirect(http.StatusFound, g.onboardingPath)
			}
			c.Abort()
			return
		}

		c.Next()
	}
}

func wantsJSON(c *gin.Context) bool {
	if strings.HasPrefix(c.Request.URL.Path, "/api/") {
		return true
	}
	return strings.Contains(c.GetHeader("Accept"), "application/json")
}
