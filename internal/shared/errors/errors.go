// Package errors provides application-level error types and utilities.
// It defines the error taxonomy for the integration subsystem: configuration,
// CSRF, external API, revoked authorization, plus the generic HTTP-mapped kinds.
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorType represents the type of error
type ErrorType string

const (
	ErrorTypeValidation    ErrorType = "validation_error"
	ErrorTypeNotFound      ErrorType = "not_found"
	ErrorTypeConflict      ErrorType = "conflict"
	ErrorTypeUnauthorized  ErrorType = "unauthorized"
	ErrorTypeForbidden     ErrorType = "forbidden"
	ErrorTypeInternal      ErrorType = "internal_error"
	ErrorTypeBadRequest    ErrorType = "bad_request"
	ErrorTypeConfiguration ErrorType = "configuration_error"
	ErrorTypeCSRFMismatch  ErrorType = "csrf_mismatch"
	ErrorTypeExternalAPI   ErrorType = "external_api_error"
	ErrorTypeAuthRevoked   ErrorType = "authorization_revoked"
)

// AppError represents an application error with additional context
type AppError struct {
	Type    ErrorType `json:"type"`
	Message string    `json:"message"`
	Code    int       `json:"code"`
	Details string    `json:"details,omitempty"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Type, e.Message, e.Details)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

func newAppError(errType ErrorType, code int, message string, details []string) *AppError {
	detail := ""
	if len(details) > 0 {
		detail = details[0]
	}
	return &AppError{
		Type:    errType,
		Message: message,
		Code:    code,
		Details: detail,
	}
}

// NewValidationError creates a new validation error
func NewValidationError(message string, details ...string) *AppError {
	return newAppError(ErrorTypeValidation, http.StatusBadRequest, message, details)
}

// NewNotFoundError creates a new not found error
func NewNotFoundError(message string, details ...string) *AppError {
	return newAppError(ErrorTypeNotFound, http.StatusNotFound, message, details)
}

// NewConflictError creates a new conflict error
func NewConflictError(message string, details ...string) *AppError {
	return newAppError(ErrorTypeConflict, http.StatusConflict, message, details)
}

// NewUnauthorizedError creates a new unauthorized error
func NewUnauthorizedError(message string, details ...string) *AppError {
	return newAppError(ErrorTypeUnauthorized, http.StatusUnauthorized, message, details)
}

// NewForbiddenError creates a new forbidden error
func NewForbiddenError(message string, details ...string) *AppError {
	return newAppError(ErrorTypeForbidden, http.StatusForbidden, message, details)
}

// NewInternalError creates a new internal error
func NewInternalError(message string, details ...string) *AppError {
	return newAppError(ErrorTypeInternal, http.StatusInternalServerError, message, details)
}

// NewBadRequestError creates a new bad request error
func NewBadRequestError(message string, details ...string) *AppError {
	return newAppError(ErrorTypeBadRequest, http.StatusBadRequest, message, details)
}

// NewConfigurationError creates an error for missing or invalid operator
// configuration, such as an absent OAuth client id. Surfaced as a 500.
func NewConfigurationError(message string, details ...string) *AppError {
	return newAppError(ErrorTypeConfiguration, http.StatusInternalServerError, message, details)
}

// NewCSRFMismatchError creates an error for a state-token mismatch during
// the OAuth handshake. The handshake must abort without any state committed.
func NewCSRFMismatchError(message string, details ...string) *AppError {
	return newAppError(ErrorTypeCSRFMismatch, http.StatusUnauthorized, message, details)
}

// NewExternalAPIError creates an error for a transient upstream failure
// (rate limit, network). Retried with backoff, never invalidates cache.
func NewExternalAPIError(message string, details ...string) *AppError {
	return newAppError(ErrorTypeExternalAPI, http.StatusBadGateway, message, details)
}

// NewAuthRevokedError creates an error for a 401/403 from the provider,
// meaning the installation grant is no longer valid and needs a re-link.
func NewAuthRevokedError(message string, details ...string) *AppError {
	return newAppError(ErrorTypeAuthRevoked, http.StatusUnauthorized, message, details)
}

// IsAppError checks if the error is an AppError
func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

// GetAppError extracts AppError from error
func GetAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return nil
}

// IsNotFoundError checks if the error is a not found error
func IsNotFoundError(err error) bool {
	appErr := GetAppError(err)
	return appErr != nil && appErr.Type == ErrorTypeNotFound
}

// IsCSRFMismatchError checks if the error is a CSRF mismatch error
func IsCSRFMismatchError(err error) bool {
	appErr := GetAppError(err)
	return appErr != nil && appErr.Type == ErrorTypeCSRFMismatch
}

// IsAuthRevokedError checks if the error is an authorization revoked error
func IsAuthRevokedError(err error) bool {
	appErr := GetAppError(err)
	return appErr != nil && appErr.Type == ErrorTypeAuthRevoked
}

// IsExternalAPIError checks if the error is a transient external API error
func IsExternalAPIError(err error) bool {
	appErr := GetAppError(err)
	return appErr != nil && appErr.Type == ErrorTypeExternalAPI
}
