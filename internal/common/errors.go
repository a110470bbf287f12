package common

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrNotFound       = errors.New("requested resource not found")
	ErrUnauthorized   = errors.New("unauthorized access")
	ErrForbidden      = errors.New("forbidden access")
	ErrBadRequest     = errors.New("bad request")
	ErrConflict       = errors.New("resource conflict") // e.g., username already exists
	ErrInternalServer = errors.New("internal server error")
	ErrValidation     = errors.New("validation failed")
)

// Error codes surfaced to API clients alongside the HTTP status.
const (
	CodeMissingRequiredFields      = "MISSING_REQUIRED_FIELDS"
	CodeMissingCredentials         = "MISSING_CREDENTIALS"
	CodeMissingPassword            = "MISSING_PASSWORD"
	CodeMissingPasswords           = "MISSING_PASSWORDS"
	CodeMissingProfilePicture      = "MISSING_PROFILE_PICTURE"
	CodeValidationError            = "VALIDATION_ERROR"
	CodeDuplicateEmail             = "DUPLICATE_EMAIL"
	CodeDuplicateUsername          = "DUPLICATE_USERNAME"
	CodeDuplicateEntry             = "DUPLICATE_ENTRY"
	CodeDuplicateRollNumber        = "DUPLICATE_ROLL_NUMBER"
	CodeInvalidCredentials         = "INVALID_CREDENTIALS"
	CodeAccountLocked              = "ACCOUNT_LOCKED"
	CodeMissingToken               = "MISSING_TOKEN"
	CodeTokenExpired               = "TOKEN_EXPIRED"
	CodeInvalidToken               = "INVALID_TOKEN"
	CodeUserNotFound               = "USER_NOT_FOUND"
	CodeUserBanned                 = "USER_BANNED"
	CodeAuthenticationRequired     = "AUTHENTICATION_REQUIRED"
	CodeInsufficientPermissions    = "INSUFFICIENT_PERMISSIONS"
	CodeIncorrectPassword          = "INCORRECT_PASSWORD"
	CodePasswordTooShort           = "PASSWORD_TOO_SHORT"
	CodePasswordInHistory          = "PASSWORD_IN_HISTORY"
	CodeCannotBanSelf              = "CANNOT_BAN_SELF"
	CodeUserAlreadyBanned          = "USER_ALREADY_BANNED"
	CodeUserNotBanned              = "USER_NOT_BANNED"
	CodeCannotDeleteSelf           = "CANNOT_DELETE_SELF"
	CodeNotFound                   = "NOT_FOUND"
	CodeStudentNotFound            = "STUDENT_NOT_FOUND"
	CodeDepartmentNotFound         = "DEPARTMENT_NOT_FOUND"
	CodeSectionNotFound            = "SECTION_NOT_FOUND"
	CodeSectionDepartmentMismatch  = "SECTION_DEPARTMENT_MISMATCH"
	CodeInvalidContact             = "INVALID_CONTACT"
	CodeInvalidTheme               = "INVALID_THEME"
	CodeInvalidItemsPerPage        = "INVALID_ITEMS_PER_PAGE"
	CodeConstraintViolation        = "CONSTRAINT_VIOLATION"
	CodeInvalidDateRange           = "INVALID_DATE_RANGE"
	CodeRateLimited                = "RATE_LIMITED"
	CodeServerError                = "SERVER_ERROR"
)

// AppError carries the HTTP status and machine-readable code for a domain error.
type AppError struct {
	Status  int
	Code    string
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NewError(status int, code, message string) *AppError {
	return &AppError{Status: status, Code: code, Message: message}
}

func WrapError(err error, status int, code, message string) *AppError {
	return &AppError{Status: status, Code: code, Message: message, Err: err}
}

// HTTPStatusFromError maps domain errors to HTTP status codes.
func HTTPStatusFromError(err error) int {
	if err == nil {
		return http.StatusOK
	}
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Status
	}
	if errors.Is(err, ErrNotFound) {
		return http.StatusNotFound
	}
	if errors.Is(err, ErrUnauthorized) {
		return http.StatusUnauthorized
	}
	if errors.Is(err, ErrForbidden) {
		return http.StatusForbidden
	}
	if errors.Is(err, ErrBadRequest) || errors.Is(err, ErrValidation) {
		return http.StatusBadRequest
	}
	if errors.Is(err, ErrConflict) {
		return http.StatusConflict
	}

	// Check for pgx specific errors (unique constraint violation)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if pgErr.Code == "23505" {
			return http.StatusConflict
		}
	}

	return http.StatusInternalServerError
}

// CodeFromError resolves the wire code for an error that is not an AppError.
func CodeFromError(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	switch HTTPStatusFromError(err) {
	case http.StatusBadRequest:
		return CodeValidationError
	case http.StatusUnauthorized:
		return CodeAuthenticationRequired
	case http.StatusForbidden:
		return CodeInsufficientPermissions
	case http.StatusNotFound:
		return CodeNotFound
	case http.StatusConflict:
		return CodeDuplicateEntry
	default:
		return CodeServerError
	}
}

// Errorf creates a new error with formatting, useful for wrapping.
func Errorf(format string, args ...interface{}) error {
	return fmt.Errorf(format, args...)
}
