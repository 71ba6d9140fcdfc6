// Package errors defines the API error taxonomy shared by all handlers.
package errors

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// APIError represents a structured, caller-recoverable API error.
type APIError struct {
	HTTPStatus int    `json:"-"`
	Code       string `json:"code"`
	Message    string `json:"message"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Predefined API errors
var (
	ErrBadRequest          = &APIError{HTTPStatus: http.StatusBadRequest, Code: "BAD_REQUEST", Message: "Invalid request format"}
	ErrValidation          = &APIError{HTTPStatus: http.StatusBadRequest, Code: "VALIDATION_ERROR", Message: "Validation failed"}
	ErrUnauthorized        = &APIError{HTTPStatus: http.StatusUnauthorized, Code: "UNAUTHORIZED", Message: "Authentication required"}
	ErrForbidden           = &APIError{HTTPStatus: http.StatusForbidden, Code: "FORBIDDEN", Message: "Access denied"}
	ErrResourceNotFound    = &APIError{HTTPStatus: http.StatusNotFound, Code: "NOT_FOUND", Message: "Resource not found"}
	ErrInternalServer      = &APIError{HTTPStatus: http.StatusInternalServerError, Code: "INTERNAL_ERROR", Message: "Internal server error"}
	ErrDatabase            = &APIError{HTTPStatus: http.StatusInternalServerError, Code: "DATABASE_ERROR", Message: "Database operation failed"}
	ErrUpstreamUnavailable = &APIError{HTTPStatus: http.StatusBadGateway, Code: "UPSTREAM_UNAVAILABLE", Message: "Identity server is unreachable"}
	ErrUpstreamRejected    = &APIError{HTTPStatus: http.StatusBadGateway, Code: "UPSTREAM_REJECTED", Message: "Identity server rejected the request"}
)

// NewAPIError creates a copy of a predefined error with a custom message.
func NewAPIError(base *APIError, message string) *APIError {
	return &APIError{
		HTTPStatus: base.HTTPStatus,
		Code:       base.Code,
		Message:    message,
	}
}

// NewAPIErrorWithUpstream builds an APIError from an upstream HTTP status.
func NewAPIErrorWithUpstream(statusCode int, code string, message string) *APIError {
	return &APIError{
		HTTPStatus: statusCode,
		Code:       code,
		Message:    message,
	}
}

// ParseDBError converts a gorm error into an APIError.
func ParseDBError(err error) *APIError {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrResourceNotFound
	}

	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) && mysqlErr.Number == 1062 {
		return NewAPIError(ErrValidation, "record already exists")
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return NewAPIError(ErrValidation, "record already exists")
	}

	return NewAPIError(ErrDatabase, err.Error())
}

// ParseUpstreamError converts a non-2xx identity server response into an
// APIError. Client-side status codes are passed through so the console can
// surface them; everything else maps to a 502.
func ParseUpstreamError(statusCode int, body string) *APIError {
	msg := fmt.Sprintf("identity server returned status %d", statusCode)
	if body != "" {
		msg = fmt.Sprintf("%s: %s", msg, body)
	}

	switch {
	case statusCode == http.StatusNotFound:
		return NewAPIError(ErrResourceNotFound, msg)
	case statusCode == http.StatusUnauthorized || statusCode == http.StatusForbidden:
		return NewAPIErrorWithUpstream(http.StatusBadGateway, "UPSTREAM_AUTH_FAILED", msg)
	case statusCode >= 400 && statusCode < 500:
		return NewAPIErrorWithUpstream(http.StatusBadRequest, ErrUpstreamRejected.Code, msg)
	default:
		return NewAPIError(ErrUpstreamUnavailable, msg)
	}
}
