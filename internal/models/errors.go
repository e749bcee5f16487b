package models

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
)

// Error codes for ledger rejections. Every failed operation is rejected as a
// whole with one of these codes; no partial mutation is ever observable.
const (
	CodeNotFound         = "NOT_FOUND"
	CodeAlreadyExists    = "ALREADY_EXISTS"
	CodeInactive         = "INACTIVE"
	CodeAlreadyLiked     = "ALREADY_LIKED"
	CodeNotLiked         = "NOT_LIKED"
	CodeAlreadyFollowing = "ALREADY_FOLLOWING"
	CodeNotFollowing     = "NOT_FOLLOWING"
	CodeSelfReference    = "SELF_REFERENCE"
	CodeAlreadyVoted     = "ALREADY_VOTED"
	CodeUnauthorized     = "UNAUTHORIZED"
	CodeInvalidArgument  = "INVALID_ARGUMENT"
	CodePeriodNotElapsed = "PERIOD_NOT_ELAPSED"
	CodePeriodElapsed    = "PERIOD_ELAPSED"
	CodeQuorumNotMet     = "QUORUM_NOT_MET"
	CodeProposalRejected = "PROPOSAL_REJECTED"
	CodeValidation       = "VALIDATION_ERROR"
	CodeInternal         = "INTERNAL_ERROR"
)

// ErrorResponse represents a standardized API error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}

// AppError represents a custom application error
type AppError struct {
	Code    string
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Predefined error constructors
func NewNotFoundError(resource string, id interface{}) *AppError {
	return &AppError{
		Code:    CodeNotFound,
		Message: fmt.Sprintf("%s %v not found", resource, id),
	}
}

func NewAlreadyExistsError(resource string, id interface{}) *AppError {
	return &AppError{
		Code:    CodeAlreadyExists,
		Message: fmt.Sprintf("%s %v already exists", resource, id),
	}
}

func NewInactiveError(resource string, id interface{}) *AppError {
	return &AppError{
		Code:    CodeInactive,
		Message: fmt.Sprintf("%s %v is inactive", resource, id),
	}
}

func NewEdgeError(code, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

func NewUnauthorizedError(message string) *AppError {
	return &AppError{
		Code:    CodeUnauthorized,
		Message: message,
	}
}

func NewInvalidArgumentError(message string) *AppError {
	return &AppError{
		Code:    CodeInvalidArgument,
		Message: message,
	}
}

func NewValidationError(message string) *AppError {
	return &AppError{
		Code:    CodeValidation,
		Message: message,
	}
}

func NewInternalError(err error) *AppError {
	return &AppError{
		Code:    CodeInternal,
		Message: "Internal server error",
		Err:     err,
	}
}

// StatusForError maps an application error to an HTTP status. Unknown errors
// are treated as internal.
func StatusForError(err error) int {
	var appErr *AppError
	if !errors.As(err, &appErr) {
		return fiber.StatusInternalServerError
	}
	switch appErr.Code {
	case CodeNotFound:
		return fiber.StatusNotFound
	case CodeAlreadyExists, CodeAlreadyLiked, CodeNotLiked,
		CodeAlreadyFollowing, CodeNotFollowing, CodeAlreadyVoted:
		return fiber.StatusConflict
	case CodeInactive, CodePeriodNotElapsed, CodePeriodElapsed,
		CodeQuorumNotMet, CodeProposalRejected:
		return fiber.StatusUnprocessableEntity
	case CodeSelfReference, CodeInvalidArgument, CodeValidation:
		return fiber.StatusBadRequest
	case CodeUnauthorized:
		return fiber.StatusForbidden
	default:
		return fiber.StatusInternalServerError
	}
}

// RespondWithError creates a standardized error response
func RespondWithError(c *fiber.Ctx, status int, err error) error {
	var response ErrorResponse

	var appErr *AppError
	if errors.As(err, &appErr) {
		response = ErrorResponse{
			Error: appErr.Message,
			Code:  appErr.Code,
		}
		if appErr.Err != nil {
			response.Details = appErr.Err.Error()
		}
	} else {
		response = ErrorResponse{
			Error: err.Error(),
		}
	}

	return c.Status(status).JSON(response)
}

// RespondWithAppError derives the HTTP status from the error code.
func RespondWithAppError(c *fiber.Ctx, err error) error {
	return RespondWithError(c, StatusForError(err), err)
}
