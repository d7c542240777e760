package services

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by services; handlers map them to HTTP
// responses or flash messages.
var (
	ErrNotFound            = errors.New("resource not found")
	ErrAccessDenied        = errors.New("access denied")
	ErrInvalidJoinCode     = errors.New("invalid join code")
	ErrAlreadySubmitted    = errors.New("assignment already submitted")
	ErrInvalidFileType     = errors.New("file type not allowed")
	ErrMissingFile         = errors.New("no file uploaded")
	ErrFeedbackUnavailable = errors.New("feedback unavailable")
)

// PermissionError carries the denied actor and action for logging;
// it unwraps to ErrAccessDenied.
type PermissionError struct {
	ActorID  uint
	Resource string
	Action   string
	Reason   string
}

func NewPermissionError(actorID uint, resource, action, reason string) *PermissionError {
	return &PermissionError{ActorID: actorID, Resource: resource, Action: action, Reason: reason}
}

func (e *PermissionError) Error() string {
	return fmt.Sprintf("account %d cannot %s %s: %s", e.ActorID, e.Action, e.Resource, e.Reason)
}

func (e *PermissionError) Unwrap() error { return ErrAccessDenied }
