package errors

import (
	"errors"
	"fmt"
	"net/http"
)

const (
	CodeNotFound            = "NOT_FOUND"
	CodeBadRequest          = "BAD_REQUEST"
	CodeUnauthorized        = "UNAUTHORIZED"
	CodeForbidden           = "FORBIDDEN"
	CodeConflict            = "CONFLICT"
	CodeTooManyRequests     = "TOO_MANY_REQUESTS"
	CodeInternal            = "INTERNAL_ERROR"
	CodeUnknownMission      = "UNKNOWN_MISSION"
	CodeUnknownRequirement  = "UNKNOWN_REQUIREMENT"
	CodeDuplicateCompletion = "DUPLICATE_COMPLETION"
	CodePreconditionFailed  = "PRECONDITION_FAILED"
	CodeSyncFailure         = "SYNC_FAILURE"
)

type AppError struct {
	Code    string
	Message string
	Status  int
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func New(code string, message string, status int, err error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Status:  status,
		Err:     err,
	}
}

func NotFound(resource string, err error) *AppError {
	return &AppError{
		Code:    CodeNotFound,
		Message: fmt.Sprintf("%s not found", resource),
		Status:  http.StatusNotFound,
		Err:     err,
	}
}

func BadRequest(message string, err error) *AppError {
	return &AppError{
		Code:    CodeBadRequest,
		Message: message,
		Status:  http.StatusBadRequest,
		Err:     err,
	}
}

func Unauthorized(message string, err error) *AppError {
	return &AppError{
		Code:    CodeUnauthorized,
		Message: message,
		Status:  http.StatusUnauthorized,
		Err:     err,
	}
}

func Forbidden(message string, err error) *AppError {
	return &AppError{
		Code:    CodeForbidden,
		Message: message,
		Status:  http.StatusForbidden,
		Err:     err,
	}
}

func Conflict(message string) *AppError {
	return &AppError{
		Code:    CodeConflict,
		Message: message,
		Status:  http.StatusConflict,
	}
}

func Internal(message string, err error) *AppError {
	return &AppError{
		Code:    CodeInternal,
		Message: message,
		Status:  http.StatusInternalServerError,
		Err:     err,
	}
}

func TooManyRequests(message string) *AppError {
	return &AppError{
		Code:    CodeTooManyRequests,
		Message: message,
		Status:  http.StatusTooManyRequests,
	}
}

// Game errors

func UnknownMission(missionID string) *AppError {
	return &AppError{
		Code:    CodeUnknownMission,
		Message: fmt.Sprintf("mission %q is not in the catalog", missionID),
		Status:  http.StatusNotFound,
	}
}

func UnknownRequirement(missionID, requirementID string) *AppError {
	return &AppError{
		Code:    CodeUnknownRequirement,
		Message: fmt.Sprintf("requirement %q does not belong to mission %q", requirementID, missionID),
		Status:  http.StatusNotFound,
	}
}

func DuplicateCompletion(requirementID string) *AppError {
	return &AppError{
		Code:    CodeDuplicateCompletion,
		Message: fmt.Sprintf("requirement %q is already completed", requirementID),
		Status:  http.StatusConflict,
	}
}

func PreconditionFailed(message string) *AppError {
	return &AppError{
		Code:    CodePreconditionFailed,
		Message: message,
		Status:  http.StatusPreconditionFailed,
	}
}

// SyncFailure is only ever reported as a warning; the local state stands.
func SyncFailure(operation string, err error) *AppError {
	return &AppError{
		Code:    CodeSyncFailure,
		Message: fmt.Sprintf("failed to sync %s with backend", operation),
		Status:  http.StatusBadGateway,
		Err:     err,
	}
}

func Is(err error, code string) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}
