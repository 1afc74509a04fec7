package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"gitgate/internal/domain/integration"
	"gitgate/internal/infrastructure/auth"
	"gitgate/internal/shared/constants"
	"gitgate/internal/shared/logger"
	"gitgate/internal/shared/utils"
)

// AuthMiddleware verifies the session token and resolves the local user
// record. The user row is created on first successful sign-in.
type AuthMiddleware struct {
	jwtService *auth.JWTService
	userRepo   integration.UserRepository
	logger     logger.Interface
}

func NewAuthMiddleware(jwtService *auth.JWTService, userRepo integration.UserRepository, logger logger.Interface) *AuthMiddleware {
	return &AuthMiddleware{
		jwtService: jwtService,
		userRepo:   userRepo,
		logger:     logger,
	}
}

func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := utils.GetTokenFromCookie(c, utils.SessionTokenCookie)

		if token == "" {
			authHeader := c.GetHeader("Authorization")
			if authHeader == "" {
				utils.ErrorResponse(c, http.StatusUnauthorized, "missing authorization token")
				c.Abort()
				return
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || parts[0] != "Bearer" {
				utils.ErrorResponse(c, http.StatusUnauthorized, "invalid authorization header format")
				c.Abort()
				return
			}

			token = parts[1]
		}

		claims, err := m.jwtService.ValidateToken(token)
		if err != nil {
			m.logger.Warnw("failed to verify session token", "error", err)
			utils.ErrorResponse(c, http.StatusUnauthorized, "invalid or expired token")
			c.Abort()
			return
		}

		user, err := m.userRepo.EnsureByProviderID(c.Request.Context(), claims.Subject, claims.Handle)
		if err != nil {
			m.logger.Errorw("failed to resolve user", "provider_id", claims.Subject, "error", err)
			utils.ErrorResponse(c, http.StatusInternalServerError, "failed to resolve user")
			c.Abort()
			return
		}

		c.Set(constants.ContextKeyUserID, user.ID)
		c.Set(constants.ContextKeyProviderID, user.ProviderID)
		c.Set(constants.ContextKeyUserHandle, user.Handle)

		c.Next()
	}
}
