package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/synapse-edu/classroom-service/internal/services"
	"github.com/synapse-edu/classroom-service/internal/utils"
)

type AssignmentHandler struct {
	BaseHandler
	assignmentService services.AssignmentService
	submissionService services.SubmissionService
}

func NewAssignmentHandler(
	assignmentService services.AssignmentService,
	submissionService services.SubmissionService,
	logger utils.Logger,
) *AssignmentHandler {
	return &AssignmentHandler{
		BaseHandler:       NewBaseHandler(logger),
		assignmentService: assignmentService,
		submissionService: submissionService,
	}
}

// openUpload extracts an optional multipart file from the request. A
// missing field is not an error; the caller gets a nil file.
func openUpload(c *gin.Context, field string) (*services.UploadedFile, io.Closer, error) {
	header, err := c.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, nil, nil
		}
		return nil, nil, err
	}

	f, err := header.Open()
	if err != nil {
		return nil, nil, err
	}
	return &services.UploadedFile{Filename: header.Filename, Content: f}, f, nil
}

// CreateAssignment creates an assignment in a space, optionally storing
// a reference solution document.
func (h *AssignmentHandler) CreateAssignment(c *gin.Context) {
	spaceID := h.parseIDParam(c, "space_id")
	if spaceID == 0 {
		return
	}
	accountID, err := GetAccountIDFromContext(c)
	if err != nil {
		c.Redirect(http.StatusFound, "/login")
		return
	}
	target := fmt.Sprintf("/space/%d", spaceID)

	var req services.CreateAssignmentRequest
	if err := c.ShouldBind(&req); err != nil {
		FlashAndRedirect(c, "Please provide an assignment title.", target)
		return
	}

	refDoc, closer, err := openUpload(c, "reference_doc")
	if err != nil {
		h.LogError(c, "reference doc upload failed", err)
		FlashAndRedirect(c, "Could not read the uploaded file.", target)
		return
	}
	if closer != nil {
		defer closer.Close()
	}

	result, err := h.assignmentService.Create(c.Request.Context(), spaceID, &req, refDoc, accountID)
	if err != nil {
		h.flashServiceError(c, err, target)
		return
	}

	msg := fmt.Sprintf("Assignment %q created.", result.Assignment.Title)
	if result.DueDateWarning {
		msg += " The due date could not be parsed and was left unset."
	}
	FlashAndRedirect(c, msg, target)
}

// EditAssignmentForm returns the assignment's current fields for the
// edit form.
func (h *AssignmentHandler) EditAssignmentForm(c *gin.Context) {
	assignmentID := h.parseIDParam(c, "id")
	if assignmentID == 0 {
		return
	}
	accountID, err := GetAccountIDFromContext(c)
	if err != nil {
		c.Redirect(http.StatusFound, "/login")
		return
	}

	detail, err := h.assignmentService.GetByID(c.Request.Context(), assignmentID, accountID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"assignment": detail.Assignment,
		"messages":   TakeFlashes(c),
	})
}

// EditAssignment updates title, description, due date and optionally
// the reference document.
func (h *AssignmentHandler) EditAssignment(c *gin.Context) {
	assignmentID := h.parseIDParam(c, "id")
	if assignmentID == 0 {
		return
	}
	accountID, err := GetAccountIDFromContext(c)
	if err != nil {
		c.Redirect(http.StatusFound, "/login")
		return
	}
	target := fmt.Sprintf("/assignment/%d", assignmentID)

	var req services.EditAssignmentRequest
	if err := c.ShouldBind(&req); err != nil {
		FlashAndRedirect(c, "Please provide an assignment title.", target)
		return
	}

	refDoc, closer, err := openUpload(c, "reference_doc")
	if err != nil {
		h.LogError(c, "reference doc upload failed", err)
		FlashAndRedirect(c, "Could not read the uploaded file.", target)
		return
	}
	if closer != nil {
		defer closer.Close()
	}

	result, err := h.assignmentService.Edit(c.Request.Context(), assignmentID, &req, refDoc, accountID)
	if err != nil {
		h.flashServiceError(c, err, target)
		return
	}

	msg := "Assignment updated."
	if result.DueDateWarning {
		msg += " The due date could not be parsed and was left unchanged."
	}
	FlashAndRedirect(c, msg, target)
}

// SubmitAssignment stores a pupil's one-shot submission.
func (h *AssignmentHandler) SubmitAssignment(c *gin.Context) {
	assignmentID := h.parseIDParam(c, "id")
	if assignmentID == 0 {
		return
	}
	accountID, err := GetAccountIDFromContext(c)
	if err != nil {
		c.Redirect(http.StatusFound, "/login")
		return
	}
	target := fmt.Sprintf("/assignment/%d", assignmentID)

	file, closer, err := openUpload(c, "file")
	if err != nil {
		h.LogError(c, "submission upload failed", err)
		FlashAndRedirect(c, "Could not read the uploaded file.", target)
		return
	}
	if closer != nil {
		defer closer.Close()
	}

	if _, err := h.submissionService.Submit(c.Request.Context(), assignmentID, accountID, file); err != nil {
		h.flashServiceError(c, err, target)
		return
	}

	FlashAndRedirect(c, "Submission received.", target)
}

// AssignmentDetail returns the assignment with the submission view the
// caller is entitled to: all submissions for the owner, the pupil's own
// submission for members.
func (h *AssignmentHandler) AssignmentDetail(c *gin.Context) {
	assignmentID := h.parseIDParam(c, "id")
	if assignmentID == 0 {
		return
	}
	accountID, err := GetAccountIDFromContext(c)
	if err != nil {
		c.Redirect(http.StatusFound, "/login")
		return
	}

	detail, err := h.assignmentService.GetByID(c.Request.Context(), assignmentID, accountID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"assignment":  detail.Assignment,
		"submissions": detail.Submissions,
		"submission":  detail.Submission,
		"messages":    TakeFlashes(c),
	})
}
