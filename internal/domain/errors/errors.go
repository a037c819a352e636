package errors

import (
	"errors"
	"net/http"
)

// Domain errors
var (
	ErrNotFound           = errors.New("resource not found")
	ErrAlreadyExists      = errors.New("resource already exists")
	ErrInvalidInput       = errors.New("invalid input")
	ErrBadRequest         = errors.New("bad request")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrForbidden          = errors.New("forbidden")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrTokenExpired       = errors.New("token expired")
	ErrEmailNotVerified   = errors.New("email not verified")
)

// Account and token errors
var (
	ErrDecode                  = errors.New("malformed account identifier")
	ErrInvalidToken            = errors.New("invalid or expired link")
	ErrAccountInactive         = errors.New("account is not active")
	ErrAlreadyVerified         = errors.New("email is already verified")
	ErrVerificationNotRequired = errors.New("email verification is not required")
	ErrUnknownAccount          = errors.New("no account with this email")
	ErrPasswordMismatch        = errors.New("passwords do not match")
	ErrPasswordTooShort        = errors.New("password must be at least 8 characters")

	ErrOTPNotFound    = errors.New("no one-time code issued")
	ErrOTPExpired     = errors.New("one-time code expired")
	ErrOTPMismatch    = errors.New("one-time code does not match")
	ErrOTPOutstanding = errors.New("a valid one-time code was already sent")

	ErrInvalidSession = errors.New("invalid or unknown session")
)

// Error codes
const (
	CodeBadRequest     = "BAD_REQUEST"
	CodeInvalidInput   = "INVALID_INPUT"
	CodeNotFound       = "NOT_FOUND"
	CodeConflict       = "CONFLICT"
	CodeUnauthorized   = "UNAUTHORIZED"
	CodeForbidden      = "FORBIDDEN"
	CodeInternalError  = "INTERNAL_ERROR"
	CodeInvalidLink    = "INVALID_LINK"
	CodeMismatch       = "PASSWORD_MISMATCH"
	CodeAlreadyDone    = "ALREADY_VERIFIED"
	CodeNotRequired    = "VERIFICATION_NOT_REQUIRED"
	CodeOTPExpired     = "OTP_EXPIRED"
	CodeOTPMismatch    = "OTP_MISMATCH"
	CodeOTPOutstanding = "OTP_OUTSTANDING"
	CodeInvalidSession = "INVALID_SESSION"
)

// AppError represents application error with HTTP status
type AppError struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError creates a new app error
func NewAppError(status int, code, message string, err error) *AppError {
	return &AppError{
		Status:  status,
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Common error constructors
func NotFound(message string) *AppError {
	return NewAppError(http.StatusNotFound, CodeNotFound, message, ErrNotFound)
}

func BadRequest(message string) *AppError {
	return NewAppError(http.StatusBadRequest, CodeInvalidInput, message, ErrInvalidInput)
}

func Conflict(message string) *AppError {
	return NewAppError(http.StatusConflict, CodeConflict, message, ErrAlreadyExists)
}

func Unauthorized(message string) *AppError {
	return NewAppError(http.StatusUnauthorized, CodeUnauthorized, message, ErrUnauthorized)
}

func Forbidden(message string) *AppError {
	return NewAppError(http.StatusForbidden, CodeForbidden, message, ErrForbidden)
}

func InternalError(err error) *AppError {
	return NewAppError(http.StatusInternalServerError, CodeInternalError, "internal server error", err)
}

func InternalServerError(message string) *AppError {
	return NewAppError(http.StatusInternalServerError, CodeInternalError, message, nil)
}

// NewError creates a new error with a custom message wrapping an existing error
func NewError(message string, err error) error {
	return &AppError{
		Status:  http.StatusBadRequest,
		Code:    CodeBadRequest,
		Message: message,
		Err:     err,
	}
}

// FromDomain maps a domain sentinel to its default HTTP representation.
// Anything unrecognised becomes a 500 that keeps the cause for logging.
func FromDomain(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}

	switch {
	case errors.Is(err, ErrInvalidInput), errors.Is(err, ErrBadRequest):
		return NewAppError(http.StatusBadRequest, CodeInvalidInput, err.Error(), err)
	case errors.Is(err, ErrDecode), errors.Is(err, ErrInvalidToken):
		return NewAppError(http.StatusBadRequest, CodeInvalidLink, ErrInvalidToken.Error(), err)
	case errors.Is(err, ErrPasswordTooShort):
		return NewAppError(http.StatusBadRequest, CodeInvalidInput, ErrPasswordTooShort.Error(), err)
	case errors.Is(err, ErrPasswordMismatch):
		return NewAppError(http.StatusBadRequest, CodeMismatch, ErrPasswordMismatch.Error(), err)
	case errors.Is(err, ErrAlreadyVerified):
		return NewAppError(http.StatusBadRequest, CodeAlreadyDone, ErrAlreadyVerified.Error(), err)
	case errors.Is(err, ErrVerificationNotRequired):
		return NewAppError(http.StatusBadRequest, CodeNotRequired, ErrVerificationNotRequired.Error(), err)
	case errors.Is(err, ErrUnknownAccount):
		return NewAppError(http.StatusBadRequest, CodeInvalidInput, ErrUnknownAccount.Error(), err)
	case errors.Is(err, ErrOTPNotFound):
		return NewAppError(http.StatusNotFound, CodeNotFound, ErrOTPNotFound.Error(), err)
	case errors.Is(err, ErrOTPExpired):
		return NewAppError(http.StatusGone, CodeOTPExpired, ErrOTPExpired.Error(), err)
	case errors.Is(err, ErrOTPMismatch):
		return NewAppError(http.StatusBadRequest, CodeOTPMismatch, ErrOTPMismatch.Error(), err)
	case errors.Is(err, ErrOTPOutstanding):
		return NewAppError(http.StatusTooManyRequests, CodeOTPOutstanding, "please wait before requesting a new code", err)
	case errors.Is(err, ErrInvalidSession):
		return NewAppError(http.StatusBadRequest, CodeInvalidSession, ErrInvalidSession.Error(), err)
	case errors.Is(err, ErrAlreadyExists):
		return NewAppError(http.StatusConflict, CodeConflict, "account with this email already exists", err)
	case errors.Is(err, ErrNotFound):
		return NewAppError(http.StatusNotFound, CodeNotFound, "account not found", err)
	case errors.Is(err, ErrInvalidCredentials), errors.Is(err, ErrAccountInactive),
		errors.Is(err, ErrUnauthorized), errors.Is(err, ErrTokenExpired):
		return NewAppError(http.StatusUnauthorized, CodeUnauthorized, err.Error(), err)
	case errors.Is(err, ErrForbidden):
		return NewAppError(http.StatusForbidden, CodeForbidden, err.Error(), err)
	default:
		return InternalError(err)
	}
}
