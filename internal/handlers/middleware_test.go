package handlers

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/synapse-edu/classroom-service/internal/models"
	"github.com/synapse-edu/classroom-service/internal/services"
	"github.com/synapse-edu/classroom-service/internal/utils"
)

type stubIdentity struct {
	accounts map[uint]*models.Account
}

func (s *stubIdentity) ResolveOrCreate(ctx context.Context, subjectID, email, displayName string) (*models.Account, error) {
	return nil, fmt.Errorf("not implemented")
}

func (s *stubIdentity) GetByID(ctx context.Context, id uint) (*models.Account, error) {
	account, ok := s.accounts[id]
	if !ok {
		return nil, services.ErrNotFound
	}
	return account, nil
}

func testLogger() utils.Logger {
	return utils.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

// newAuthRouter builds a router with the session middleware, a login
// helper route and a master-only protected route.
func newAuthRouter(t *testing.T, identity services.IdentityService) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.Use(SessionStore("test-secret"))

	sam := NewSessionAuthMiddleware(identity, testLogger())

	router.GET("/test_login/:id", func(c *gin.Context) {
		id, _ := strconv.ParseUint(c.Param("id"), 10, 32)
		account, err := identity.GetByID(c.Request.Context(), uint(id))
		if err != nil {
			c.Status(http.StatusNotFound)
			return
		}
		if err := EstablishSession(c, account); err != nil {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.Status(http.StatusOK)
	})

	authed := router.Group("/")
	authed.Use(sam.AuthMiddleware())
	authed.GET("/any", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	authed.GET("/master_only",
		sam.RequireRoleMiddleware(models.RoleMaster),
		func(c *gin.Context) {
			c.Status(http.StatusOK)
		})

	return router
}

// login performs the test login and returns the session cookies.
func login(t *testing.T, router *gin.Engine, accountID uint) []*http.Cookie {
	t.Helper()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, fmt.Sprintf("/test_login/%d", accountID), nil)
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("test login returned %d", w.Code)
	}
	return w.Result().Cookies()
}

func get(router *gin.Engine, path string, cookies []*http.Cookie) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	router.ServeHTTP(w, req)
	return w
}

func TestAuthMiddlewareRedirectsAnonymous(t *testing.T) {
	router := newAuthRouter(t, &stubIdentity{accounts: map[uint]*models.Account{}})

	w := get(router, "/any", nil)

	if w.Code != http.StatusFound {
		t.Fatalf("expected 302, got %d", w.Code)
	}
	if loc := w.Header().Get("Location"); loc != "/login" {
		t.Fatalf("expected redirect to /login, got %q", loc)
	}
}

func TestAuthMiddlewarePassesSignedIn(t *testing.T) {
	identity := &stubIdentity{accounts: map[uint]*models.Account{
		1: {ID: 1, Email: "p@example.com", Role: models.RolePupil},
	}}
	router := newAuthRouter(t, identity)

	cookies := login(t, router, 1)
	w := get(router, "/any", cookies)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
}

func TestAuthMiddlewareClearsStaleSession(t *testing.T) {
	identity := &stubIdentity{accounts: map[uint]*models.Account{
		7: {ID: 7, Email: "gone@example.com", Role: models.RolePupil},
	}}
	router := newAuthRouter(t, identity)

	cookies := login(t, router, 7)

	// Account disappears between requests.
	delete(identity.accounts, 7)

	w := get(router, "/any", cookies)
	if w.Code != http.StatusFound {
		t.Fatalf("expected 302, got %d", w.Code)
	}
	if loc := w.Header().Get("Location"); loc != "/login" {
		t.Fatalf("expected redirect to /login, got %q", loc)
	}
}

func TestRequireRoleMiddleware(t *testing.T) {
	identity := &stubIdentity{accounts: map[uint]*models.Account{
		1: {ID: 1, Email: "m@example.com", Role: models.RoleMaster},
		2: {ID: 2, Email: "p@example.com", Role: models.RolePupil},
	}}
	router := newAuthRouter(t, identity)

	t.Run("master passes", func(t *testing.T) {
		cookies := login(t, router, 1)
		w := get(router, "/master_only", cookies)
		if w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", w.Code)
		}
	})

	t.Run("pupil redirected to landing", func(t *testing.T) {
		cookies := login(t, router, 2)
		w := get(router, "/master_only", cookies)
		if w.Code != http.StatusFound {
			t.Fatalf("expected 302, got %d", w.Code)
		}
		if loc := w.Header().Get("Location"); loc != "/" {
			t.Fatalf("expected redirect to /, got %q", loc)
		}
	})
}
