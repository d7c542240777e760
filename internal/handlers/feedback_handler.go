package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/synapse-edu/classroom-service/internal/services"
	"github.com/synapse-edu/classroom-service/internal/utils"
)

type FeedbackHandler struct {
	BaseHandler
	feedbackService services.FeedbackService
}

func NewFeedbackHandler(feedbackService services.FeedbackService, logger utils.Logger) *FeedbackHandler {
	return &FeedbackHandler{
		BaseHandler:     NewBaseHandler(logger),
		feedbackService: feedbackService,
	}
}

// GenerateFeedback runs the AI comparison of a submission against the
// assignment's reference solution and persists the report.
func (h *FeedbackHandler) GenerateFeedback(c *gin.Context) {
	submissionID := h.parseIDParam(c, "sid")
	if submissionID == 0 {
		return
	}
	accountID, err := GetAccountIDFromContext(c)
	if err != nil {
		c.Redirect(http.StatusFound, "/login")
		return
	}

	h.LogRequest(c, "generating feedback", "submission_id", submissionID)

	report, err := h.feedbackService.GenerateFeedback(c.Request.Context(), submissionID, accountID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"report": report})
}

// CheckIntegrity runs the AI integrity analysis on a submission and
// persists the report.
func (h *FeedbackHandler) CheckIntegrity(c *gin.Context) {
	submissionID := h.parseIDParam(c, "sid")
	if submissionID == 0 {
		return
	}
	accountID, err := GetAccountIDFromContext(c)
	if err != nil {
		c.Redirect(http.StatusFound, "/login")
		return
	}

	h.LogRequest(c, "checking integrity", "submission_id", submissionID)

	report, err := h.feedbackService.CheckIntegrity(c.Request.Context(), submissionID, accountID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"report": report})
}

// ListReports returns the stored reports for a submission.
func (h *FeedbackHandler) ListReports(c *gin.Context) {
	submissionID := h.parseIDParam(c, "sid")
	if submissionID == 0 {
		return
	}
	accountID, err := GetAccountIDFromContext(c)
	if err != nil {
		c.Redirect(http.StatusFound, "/login")
		return
	}

	reports, err := h.feedbackService.ListBySubmission(c.Request.Context(), submissionID, accountID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"reports": reports})
}
