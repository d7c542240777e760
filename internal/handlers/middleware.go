package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/synapse-edu/classroom-service/internal/models"
	"github.com/synapse-edu/classroom-service/internal/services"
	"github.com/synapse-edu/classroom-service/internal/utils"
)

// SetupMiddleware sets up the common middleware chain for the router.
func SetupMiddleware(router *gin.Engine, logger utils.Logger, sessionSecret string) {
	router.Use(RequestIDMiddleware())
	router.Use(CORSMiddleware())
	router.Use(gin.Recovery())
	router.Use(utils.ContextLogger(logger))
	router.Use(utils.LoggerMiddleware(logger))
	router.Use(SecurityMiddleware())
	router.Use(SessionStore(sessionSecret))
}

// SessionAuthMiddleware resolves the session's account and sets it in
// the gin context. Requests without a valid session are redirected to
// the login flow.
type SessionAuthMiddleware struct {
	identity services.IdentityService
	logger   utils.Logger
}

func NewSessionAuthMiddleware(identity services.IdentityService, logger utils.Logger) *SessionAuthMiddleware {
	return &SessionAuthMiddleware{identity: identity, logger: logger}
}

// AuthMiddleware loads the account bound to the session into the
// context under "account", "account_id" and "account_role".
func (sam *SessionAuthMiddleware) AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		accountID := sessionAccountID(c)
		if accountID == 0 {
			c.Redirect(http.StatusFound, "/login")
			c.Abort()
			return
		}

		account, err := sam.identity.GetByID(c.Request.Context(), accountID)
		if err != nil {
			// Stale session referencing a purged account.
			_ = ClearSession(c)
			c.Redirect(http.StatusFound, "/login")
			c.Abort()
			return
		}

		c.Set("account", account)
		c.Set("account_id", account.ID)
		c.Set("account_role", account.Role)
		c.Next()
	}
}

// RequireRoleMiddleware rejects requests whose session role is not in
// the required set. Denial is a flash plus a redirect to the landing
// page with no state touched.
func (sam *SessionAuthMiddleware) RequireRoleMiddleware(requiredRoles ...models.AccountRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, err := GetAccountRoleFromContext(c)
		if err != nil {
			FlashAndRedirect(c, "Access denied.", "/")
			c.Abort()
			return
		}

		for _, required := range requiredRoles {
			if role == required {
				c.Next()
				return
			}
		}

		FlashAndRedirect(c, "Access denied.", "/")
		c.Abort()
	}
}

// GetAccountFromContext extracts the resolved account from the gin
// context.
func GetAccountFromContext(c *gin.Context) (*models.Account, error) {
	v, exists := c.Get("account")
	if !exists {
		return nil, fmt.Errorf("account not found in context")
	}
	account, ok := v.(*models.Account)
	if !ok {
		return nil, fmt.Errorf("invalid account type in context")
	}
	return account, nil
}

func GetAccountIDFromContext(c *gin.Context) (uint, error) {
	v, exists := c.Get("account_id")
	if !exists {
		return 0, fmt.Errorf("account id not found in context")
	}
	id, ok := v.(uint)
	if !ok {
		return 0, fmt.Errorf("invalid account id type in context")
	}
	return id, nil
}

func GetAccountRoleFromContext(c *gin.Context) (models.AccountRole, error) {
	v, exists := c.Get("account_role")
	if !exists {
		return "", fmt.Errorf("account role not found in context")
	}
	role, ok := v.(models.AccountRole)
	if !ok {
		return "", fmt.Errorf("invalid account role type in context")
	}
	return role, nil
}

// SecurityMiddleware adds security headers.
func SecurityMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("X-Frame-Options", "DENY")
		c.Header("Referrer-Policy", "strict-origin-when-cross-origin")
		c.Next()
	}
}

// RequestIDMiddleware generates a unique request ID for each request.
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = uuid.New().String()
		}
		c.Header("X-Request-ID", requestID)
		c.Set("request_id", requestID)
		c.Next()
	}
}

// CORSMiddleware provides CORS support.
func CORSMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, X-Request-ID")
		c.Header("Access-Control-Allow-Credentials", "true")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
