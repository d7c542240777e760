package handlers

import (
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"

	"github.com/synapse-edu/classroom-service/internal/models"
)

const (
	sessionName = "classroom_session"

	sessionKeyAccountID = "account_id"
	sessionKeyRole      = "account_role"
)

// SessionStore builds the signed-cookie session middleware.
func SessionStore(secret string) gin.HandlerFunc {
	store := cookie.NewStore([]byte(secret))
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   7 * 24 * 3600,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return sessions.Sessions(sessionName, store)
}

// EstablishSession binds the browser session to an account.
func EstablishSession(c *gin.Context, account *models.Account) error {
	session := sessions.Default(c)
	session.Set(sessionKeyAccountID, account.ID)
	session.Set(sessionKeyRole, string(account.Role))
	return session.Save()
}

// ClearSession drops the account binding and any pending flashes.
func ClearSession(c *gin.Context) error {
	session := sessions.Default(c)
	session.Clear()
	return session.Save()
}

// sessionAccountID returns the bound account id, or 0 when anonymous.
func sessionAccountID(c *gin.Context) uint {
	session := sessions.Default(c)
	if id, ok := session.Get(sessionKeyAccountID).(uint); ok {
		return id
	}
	return 0
}

// Flash queues a one-shot message for the next rendered page.
func Flash(c *gin.Context, msg string) {
	session := sessions.Default(c)
	session.AddFlash(msg)
	_ = session.Save()
}

// TakeFlashes drains the queued flash messages.
func TakeFlashes(c *gin.Context) []string {
	session := sessions.Default(c)
	raw := session.Flashes()
	if len(raw) == 0 {
		return nil
	}
	_ = session.Save()

	out := make([]string, 0, len(raw))
	for _, f := range raw {
		if s, ok := f.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

// FlashAndRedirect queues msg and sends the browser to target.
func FlashAndRedirect(c *gin.Context, msg, target string) {
	Flash(c, msg)
	c.Redirect(http.StatusFound, target)
}
