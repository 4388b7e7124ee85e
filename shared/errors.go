package shared

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
)

type AppError struct {
	StatusCode int
	Code       string
	Message    string
	Retryable  bool
	Data       interface{}
	Err        error
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

// Is matches on Code so sentinels can be compared against wrapped copies.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// Wrap returns a copy of the sentinel carrying the underlying cause.
func (e *AppError) Wrap(err error) *AppError {
	cp := *e
	cp.Err = err
	return &cp
}

func (e *AppError) WithData(data interface{}) *AppError {
	cp := *e
	cp.Data = data
	return &cp
}

var (
	ErrUnauthorized = &AppError{
		StatusCode: fiber.StatusUnauthorized,
		Code:       "UNAUTHORIZED",
		Message:    "Unauthorized",
	}
	ErrOutOfHearts = &AppError{
		StatusCode: fiber.StatusConflict,
		Code:       "OUT_OF_HEARTS",
		Message:    "You have run out of hearts",
	}
	ErrInsufficientFunds = &AppError{
		StatusCode: fiber.StatusPaymentRequired,
		Code:       "INSUFFICIENT_FUNDS",
		Message:    "Not enough points",
	}
	ErrAlreadyFull = &AppError{
		StatusCode: fiber.StatusOK,
		Code:       "ALREADY_FULL",
		Message:    "Hearts are already full",
	}
	ErrAlreadyClaimed = &AppError{
		StatusCode: fiber.StatusOK,
		Code:       "ALREADY_CLAIMED",
		Message:    "Daily reward already claimed today",
	}
	ErrDataIntegrity = &AppError{
		StatusCode: fiber.StatusServiceUnavailable,
		Code:       "DATA_INTEGRITY_FAULT",
		Message:    "Content is temporarily unavailable, please retry",
		Retryable:  true,
	}
	ErrStorageUnavailable = &AppError{
		StatusCode: fiber.StatusServiceUnavailable,
		Code:       "STORAGE_UNAVAILABLE",
		Message:    "Service temporarily unavailable, please retry",
		Retryable:  true,
	}
	ErrNotFound = &AppError{
		StatusCode: fiber.StatusNotFound,
		Code:       "NOT_FOUND",
		Message:    "Not Found",
	}
	ErrBadRequest = &AppError{
		StatusCode: fiber.StatusBadRequest,
		Code:       "BAD_REQUEST",
		Message:    "Bad Request",
	}
)

func NewBadRequestError(err error, message string) *AppError {
	return &AppError{StatusCode: fiber.StatusBadRequest, Code: ErrBadRequest.Code, Message: message, Err: err}
}

func NewNotFoundError(err error, message string) *AppError {
	return &AppError{StatusCode: fiber.StatusNotFound, Code: ErrNotFound.Code, Message: message, Err: err}
}

func NewUnauthorizedError(err error, message string) *AppError {
	return &AppError{StatusCode: fiber.StatusUnauthorized, Code: ErrUnauthorized.Code, Message: message, Err: err}
}

func NewInternalError(err error, message string) *AppError {
	return &AppError{StatusCode: fiber.StatusInternalServerError, Code: "INTERNAL_ERROR", Message: message, Err: err}
}

func NewServiceUnavailableError(err error, message string) *AppError {
	return &AppError{
		StatusCode: fiber.StatusServiceUnavailable,
		Code:       ErrStorageUnavailable.Code,
		Message:    message,
		Retryable:  true,
		Err:        err,
	}
}

func GetAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// ErrorBody is the data payload rendered for failed requests.
type ErrorBody struct {
	Error     string      `json:"error"`
	Retryable bool        `json:"retryable,omitempty"`
	Details   interface{} `json:"details,omitempty"`
}

func ResponseError(c *fiber.Ctx, err error) error {
	if appErr, ok := GetAppError(err); ok {
		return ResponseJSON(c, appErr.StatusCode, appErr.Message, ErrorBody{
			Error:     appErr.Code,
			Retryable: appErr.Retryable,
			Details:   appErr.Data,
		})
	}

	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return ResponseJSON(c, fiberErr.Code, fiberErr.Message, nil)
	}

	return ResponseInternalError(c)
}
