package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/casdoor/casdoor-go-sdk/casdoorsdk"
	"github.com/gin-gonic/gin"
	"github.com/vidyarthi-portal/exam-service/internal/config"
	"github.com/vidyarthi-portal/exam-service/internal/models"
)

// Authenticator verifies Casdoor-issued JWTs and populates the request
// context with the caller's identity.
type Authenticator struct {
	client *casdoorsdk.Client
	logger *slog.Logger
}

func NewAuthenticator(cfg config.CasdoorConfig, logger *slog.Logger) *Authenticator {
	client := casdoorsdk.NewClient(
		cfg.Endpoint,
		cfg.ClientID,
		cfg.ClientSecret,
		cfg.Certificate,
		cfg.OrganizationName,
		cfg.ApplicationName,
	)
	return &Authenticator{client: client, logger: logger}
}

// Middleware validates the bearer token and sets user_id, user_role and
// user_name on the gin context. The role comes from the identity provider's
// tag field, never from anything the client sends.
func (a *Authenticator) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"message": "Missing authorization token",
			})
			return
		}

		claims, err := a.client.ParseJwtToken(token)
		if err != nil {
			a.logger.Warn("token verification failed",
				"error", err,
				"remote_addr", c.ClientIP())
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"message": "Invalid or expired token",
			})
			return
		}

		c.Set("user_id", claims.Id)
		c.Set("user_name", claims.Name)
		c.Set("user_role", roleFromClaims(claims))
		c.Next()
	}
}

func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if header != "" {
		return strings.TrimPrefix(header, "Bearer ")
	}
	return c.Query("token")
}

func roleFromClaims(claims *casdoorsdk.Claims) models.UserRole {
	if claims.IsAdmin {
		return models.RoleAdmin
	}
	switch models.UserRole(claims.Tag) {
	case models.RoleTeacher:
		return models.RoleTeacher
	case models.RoleController:
		return models.RoleController
	case models.RoleAdmin:
		return models.RoleAdmin
	default:
		return models.RoleStudent
	}
}

// RequireRoles guards a route group. Admin passes every guard.
func RequireRoles(roles ...models.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, exists := c.Get("user_role")
		if !exists {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"message": "User not authenticated",
			})
			return
		}

		role, ok := raw.(models.UserRole)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"message": "User not authenticated",
			})
			return
		}

		if role == models.RoleAdmin {
			c.Next()
			return
		}
		for _, allowed := range roles {
			if role == allowed {
				c.Next()
				return
			}
		}

		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
			"message": "Forbidden - insufficient permissions",
		})
	}
}
