package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/synapse-edu/classroom-service/internal/services"
	"github.com/synapse-edu/classroom-service/internal/utils"
	"github.com/synapse-edu/classroom-service/internal/validator"
)

// ErrorResponse is the JSON error shape.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

// SuccessResponse wraps successful JSON payloads that carry a message.
type SuccessResponse struct {
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

// BaseHandler carries the shared handler utilities.
type BaseHandler struct {
	logger utils.Logger
}

func NewBaseHandler(logger utils.Logger) BaseHandler {
	return BaseHandler{logger: logger}
}

func (h *BaseHandler) LogRequest(c *gin.Context, msg string, args ...any) {
	utils.LoggerFromContext(c.Request.Context(), h.logger).Info(msg, args...)
}

func (h *BaseHandler) LogError(c *gin.Context, msg string, err error, args ...any) {
	args = append(args, "error", err)
	utils.LoggerFromContext(c.Request.Context(), h.logger).Error(msg, args...)
}

// parseIDParam parses a numeric path parameter. On failure it writes a
// 400 response and returns 0; callers bail out on 0.
func (h *BaseHandler) parseIDParam(c *gin.Context, name string) uint {
	raw := c.Param(name)
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "bad_request",
			Message: "Invalid " + name + " parameter",
		})
		return 0
	}
	return uint(id)
}

// handleServiceError maps service errors to JSON responses.
func (h *BaseHandler) handleServiceError(c *gin.Context, err error) {
	var validationErrs validator.ValidationErrors
	switch {
	case errors.As(err, &validationErrs):
		c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error:   "validation_failed",
			Message: "Request validation failed",
			Details: validationErrs.Error(),
		})
	case errors.Is(err, services.ErrNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{
			Error:   "not_found",
			Message: "Resource not found",
		})
	case errors.Is(err, services.ErrAccessDenied):
		c.JSON(http.StatusForbidden, ErrorResponse{
			Error:   "forbidden",
			Message: "Access denied",
		})
	case errors.Is(err, services.ErrInvalidJoinCode):
		c.JSON(http.StatusNotFound, ErrorResponse{
			Error:   "invalid_join_code",
			Message: "Invalid code",
		})
	case errors.Is(err, services.ErrAlreadySubmitted):
		c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error:   "already_submitted",
			Message: "You have already submitted this assignment",
		})
	case errors.Is(err, services.ErrInvalidFileType),
		errors.Is(err, services.ErrMissingFile):
		c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error:   "invalid_file",
			Message: "Invalid or missing file",
			Details: err.Error(),
		})
	case errors.Is(err, services.ErrFeedbackUnavailable):
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{
			Error:   "feedback_unavailable",
			Message: err.Error(),
		})
	default:
		h.LogError(c, "unhandled service error", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "internal_error",
			Message: "Internal server error",
		})
	}
}

// flashServiceError is the browser-flow variant: the error becomes a
// flash message and the user is sent back to target.
func (h *BaseHandler) flashServiceError(c *gin.Context, err error, target string) {
	switch {
	case errors.Is(err, services.ErrAccessDenied):
		FlashAndRedirect(c, "Access denied.", target)
	case errors.Is(err, services.ErrNotFound):
		FlashAndRedirect(c, "Not found.", target)
	case errors.Is(err, services.ErrInvalidJoinCode):
		FlashAndRedirect(c, "Invalid code. Please try again.", target)
	case errors.Is(err, services.ErrAlreadySubmitted):
		FlashAndRedirect(c, "You have already submitted this assignment.", target)
	case errors.Is(err, services.ErrInvalidFileType), errors.Is(err, services.ErrMissingFile):
		FlashAndRedirect(c, "Please upload a file with an allowed type.", target)
	case errors.Is(err, services.ErrFeedbackUnavailable):
		// The backend's own message is shown to the master verbatim.
		FlashAndRedirect(c, err.Error(), target)
	default:
		h.LogError(c, "unhandled service error", err)
		FlashAndRedirect(c, "Something went wrong. Please try again.", target)
	}
}
