package handlers

import (
	"net/http"

	"github.com/casdoor/casdoor-go-sdk/casdoorsdk"
	"github.com/gin-gonic/gin"

	"github.com/synapse-edu/classroom-service/internal/config"
	"github.com/synapse-edu/classroom-service/internal/models"
	"github.com/synapse-edu/classroom-service/internal/services"
	"github.com/synapse-edu/classroom-service/internal/utils"
)

// AuthHandler drives the identity-provider flow: /login redirects to
// the provider, /authorize completes the code exchange and binds the
// session, /logout clears it.
type AuthHandler struct {
	BaseHandler
	client   *casdoorsdk.Client
	identity services.IdentityService
	config   config.CasdoorConfig
}

func NewAuthHandler(cfg config.CasdoorConfig, identity services.IdentityService, logger utils.Logger) *AuthHandler {
	client := casdoorsdk.NewClient(
		cfg.Endpoint,
		cfg.ClientID,
		cfg.ClientSecret,
		cfg.Cert,
		cfg.Organization,
		cfg.Application,
	)

	return &AuthHandler{
		BaseHandler: NewBaseHandler(logger),
		client:      client,
		identity:    identity,
		config:      cfg,
	}
}

// Login begins the identity-provider flow.
func (h *AuthHandler) Login(c *gin.Context) {
	c.Redirect(http.StatusFound, h.client.GetSigninUrl(h.config.RedirectURL))
}

// Authorize completes the flow: exchanges the code, resolves the local
// account and establishes the session.
func (h *AuthHandler) Authorize(c *gin.Context) {
	code := c.Query("code")
	state := c.Query("state")
	if code == "" {
		FlashAndRedirect(c, "Login failed: missing authorization code.", "/")
		return
	}

	token, err := h.client.GetOAuthToken(code, state)
	if err != nil {
		h.LogError(c, "token exchange failed", err)
		FlashAndRedirect(c, "Login failed: "+err.Error(), "/")
		return
	}

	claims, err := h.client.ParseJwtToken(token.AccessToken)
	if err != nil {
		h.LogError(c, "token parse failed", err)
		FlashAndRedirect(c, "Login failed: "+err.Error(), "/")
		return
	}

	account, err := h.identity.ResolveOrCreate(
		c.Request.Context(),
		claims.Id,
		claims.User.Email,
		claims.User.DisplayName,
	)
	if err != nil {
		h.LogError(c, "account resolution failed", err)
		FlashAndRedirect(c, "Login failed. Please try again.", "/")
		return
	}

	if err := EstablishSession(c, account); err != nil {
		h.LogError(c, "session save failed", err)
		FlashAndRedirect(c, "Login failed. Please try again.", "/")
		return
	}

	h.LogRequest(c, "login completed", "account_id", account.ID, "role", account.Role)
	if account.Role == models.RoleMaster {
		c.Redirect(http.StatusFound, "/master_dashboard")
		return
	}
	c.Redirect(http.StatusFound, "/pupil_dashboard")
}

// Logout clears the session.
func (h *AuthHandler) Logout(c *gin.Context) {
	if err := ClearSession(c); err != nil {
		h.LogError(c, "session clear failed", err)
	}
	c.Redirect(http.StatusFound, "/")
}
