package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/synapse-edu/classroom-service/internal/services"
	"github.com/synapse-edu/classroom-service/internal/utils"
)

type SpaceHandler struct {
	BaseHandler
	spaceService      services.SpaceService
	assignmentService services.AssignmentService
	feedbackService   services.FeedbackService
	exportService     services.ExportService
}

func NewSpaceHandler(
	spaceService services.SpaceService,
	assignmentService services.AssignmentService,
	feedbackService services.FeedbackService,
	exportService services.ExportService,
	logger utils.Logger,
) *SpaceHandler {
	return &SpaceHandler{
		BaseHandler:       NewBaseHandler(logger),
		spaceService:      spaceService,
		assignmentService: assignmentService,
		feedbackService:   feedbackService,
		exportService:     exportService,
	}
}

// MasterDashboard lists the spaces the master owns.
func (h *SpaceHandler) MasterDashboard(c *gin.Context) {
	accountID, err := GetAccountIDFromContext(c)
	if err != nil {
		c.Redirect(http.StatusFound, "/login")
		return
	}

	spaces, err := h.spaceService.ListOwned(c.Request.Context(), accountID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"spaces":   spaces,
		"messages": TakeFlashes(c),
	})
}

// PupilDashboard lists the spaces the pupil has joined.
func (h *SpaceHandler) PupilDashboard(c *gin.Context) {
	accountID, err := GetAccountIDFromContext(c)
	if err != nil {
		c.Redirect(http.StatusFound, "/login")
		return
	}

	spaces, err := h.spaceService.ListJoined(c.Request.Context(), accountID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"spaces":   spaces,
		"messages": TakeFlashes(c),
	})
}

// CreateSpace creates a space and returns to the master dashboard.
func (h *SpaceHandler) CreateSpace(c *gin.Context) {
	accountID, err := GetAccountIDFromContext(c)
	if err != nil {
		c.Redirect(http.StatusFound, "/login")
		return
	}

	var req services.CreateSpaceRequest
	if err := c.ShouldBind(&req); err != nil {
		FlashAndRedirect(c, "Please provide a space name.", "/master_dashboard")
		return
	}

	space, err := h.spaceService.Create(c.Request.Context(), &req, accountID)
	if err != nil {
		h.flashServiceError(c, err, "/master_dashboard")
		return
	}

	FlashAndRedirect(c,
		fmt.Sprintf("Space %q created. Join code: %s", space.Name, space.JoinCode),
		"/master_dashboard")
}

// JoinSpace enrolls the pupil via a join code.
func (h *SpaceHandler) JoinSpace(c *gin.Context) {
	accountID, err := GetAccountIDFromContext(c)
	if err != nil {
		c.Redirect(http.StatusFound, "/login")
		return
	}

	var req services.JoinSpaceRequest
	if err := c.ShouldBind(&req); err != nil {
		FlashAndRedirect(c, "Please provide a join code.", "/pupil_dashboard")
		return
	}

	result, err := h.spaceService.Join(c.Request.Context(), req.Code, accountID)
	if err != nil {
		h.flashServiceError(c, err, "/pupil_dashboard")
		return
	}

	if result.AlreadyMember {
		FlashAndRedirect(c,
			fmt.Sprintf("You are already a member of %q.", result.Space.Name),
			"/pupil_dashboard")
		return
	}
	FlashAndRedirect(c,
		fmt.Sprintf("Joined %q.", result.Space.Name),
		"/pupil_dashboard")
}

// SpaceDetail lists a space's assignments for its owner and members.
func (h *SpaceHandler) SpaceDetail(c *gin.Context) {
	spaceID := h.parseIDParam(c, "id")
	if spaceID == 0 {
		return
	}
	accountID, err := GetAccountIDFromContext(c)
	if err != nil {
		c.Redirect(http.StatusFound, "/login")
		return
	}

	space, err := h.spaceService.GetByID(c.Request.Context(), spaceID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	assignments, err := h.assignmentService.ListBySpace(c.Request.Context(), spaceID, accountID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"space":       space,
		"assignments": assignments,
		"messages":    TakeFlashes(c),
	})
}

// SpaceInsights returns the class-level summary over stored feedback
// reports.
func (h *SpaceHandler) SpaceInsights(c *gin.Context) {
	spaceID := h.parseIDParam(c, "id")
	if spaceID == 0 {
		return
	}
	accountID, err := GetAccountIDFromContext(c)
	if err != nil {
		c.Redirect(http.StatusFound, "/login")
		return
	}

	h.LogRequest(c, "generating space insights", "space_id", spaceID)

	summary, err := h.feedbackService.SpaceInsights(c.Request.Context(), spaceID, accountID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"space_id": spaceID, "summary": summary})
}

// ExportRoster streams the space's submission matrix as xlsx.
func (h *SpaceHandler) ExportRoster(c *gin.Context) {
	spaceID := h.parseIDParam(c, "id")
	if spaceID == 0 {
		return
	}
	accountID, err := GetAccountIDFromContext(c)
	if err != nil {
		c.Redirect(http.StatusFound, "/login")
		return
	}

	data, filename, err := h.exportService.ExportRoster(c.Request.Context(), spaceID, accountID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK,
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}
