package handlers

import (
	"net/http"
	"path/filepath"

	"github.com/gin-gonic/gin"

	"github.com/synapse-edu/classroom-service/internal/config"
	"github.com/synapse-edu/classroom-service/internal/models"
	"github.com/synapse-edu/classroom-service/internal/services"
	"github.com/synapse-edu/classroom-service/internal/storage"
	"github.com/synapse-edu/classroom-service/internal/utils"
)

// HandlerManager aggregates the route handlers and the auth middleware.
type HandlerManager struct {
	Auth       *AuthHandler
	Space      *SpaceHandler
	Assignment *AssignmentHandler
	Feedback   *FeedbackHandler

	session *SessionAuthMiddleware
	store   *storage.LocalStore
	logger  utils.Logger
}

func NewHandlerManager(
	cfg *config.Config,
	sm services.ServiceManager,
	store *storage.LocalStore,
	logger utils.Logger,
) *HandlerManager {
	return &HandlerManager{
		Auth: NewAuthHandler(cfg.Casdoor, sm.Identity(), logger),
		Space: NewSpaceHandler(
			sm.Space(), sm.Assignment(), sm.Feedback(), sm.Export(), logger),
		Assignment: NewAssignmentHandler(sm.Assignment(), sm.Submission(), logger),
		Feedback:   NewFeedbackHandler(sm.Feedback(), logger),

		session: NewSessionAuthMiddleware(sm.Identity(), logger),
		store:   store,
		logger:  logger,
	}
}

// SetupRoutes registers all routes on the router.
func (hm *HandlerManager) SetupRoutes(router *gin.Engine, sm services.ServiceManager) {
	router.GET("/", hm.Landing)
	router.GET("/health", func(c *gin.Context) {
		if err := sm.HealthCheck(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy", "error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})

	router.GET("/login", hm.Auth.Login)
	router.GET("/authorize", hm.Auth.Authorize)
	router.GET("/logout", hm.Auth.Logout)

	// Stored documents are served to any signed-in user; access is
	// logged with the requesting account.
	authed := router.Group("/")
	authed.Use(hm.session.AuthMiddleware())
	authed.GET("/uploads/*path", hm.ServeUpload)

	master := hm.session.RequireRoleMiddleware(models.RoleMaster)
	pupil := hm.session.RequireRoleMiddleware(models.RolePupil)

	authed.GET("/master_dashboard", master, hm.Space.MasterDashboard)
	authed.GET("/pupil_dashboard", pupil, hm.Space.PupilDashboard)
	authed.POST("/create_space", master, hm.Space.CreateSpace)
	authed.POST("/join_space", pupil, hm.Space.JoinSpace)
	authed.GET("/space/:id", hm.Space.SpaceDetail)
	authed.GET("/space/:id/insights", master, hm.Space.SpaceInsights)
	authed.GET("/space/:id/export", master, hm.Space.ExportRoster)

	authed.POST("/create_assignment/:space_id", master, hm.Assignment.CreateAssignment)
	authed.GET("/edit_assignment/:id", master, hm.Assignment.EditAssignmentForm)
	authed.POST("/edit_assignment/:id", master, hm.Assignment.EditAssignment)
	authed.POST("/submit_assignment/:id", pupil, hm.Assignment.SubmitAssignment)
	authed.GET("/assignment/:id", hm.Assignment.AssignmentDetail)

	authed.POST("/assignment/:id/submissions/:sid/feedback", master, hm.Feedback.GenerateFeedback)
	authed.POST("/assignment/:id/submissions/:sid/integrity", master, hm.Feedback.CheckIntegrity)
	authed.GET("/assignment/:id/submissions/:sid/reports", hm.Feedback.ListReports)
}

// Landing describes the service and surfaces pending flash messages.
func (hm *HandlerManager) Landing(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"service":  "classroom-service",
		"login":    "/login",
		"messages": TakeFlashes(c),
	})
}

// ServeUpload streams a stored document. The store resolves the path
// and rejects traversal outside the upload root.
func (hm *HandlerManager) ServeUpload(c *gin.Context) {
	path := c.Param("path")

	if accountID, err := GetAccountIDFromContext(c); err == nil {
		utils.LoggerFromContext(c.Request.Context(), hm.logger).Info(
			"serving upload", "path", path, "account_id", accountID)
	}

	if !hm.store.Exists(path) {
		c.JSON(http.StatusNotFound, ErrorResponse{
			Error:   "not_found",
			Message: "Document not found",
		})
		return
	}

	c.File(filepath.Join(hm.store.Root(), filepath.Clean("/"+path)))
}
