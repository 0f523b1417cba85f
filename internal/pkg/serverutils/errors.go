package serverutils

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
)

// AppError is an error with the HTTP status it should be reported with.
type AppError struct {
	Code    int
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error { return e.Err }

func NewAppError(code int, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

func NewBadRequestError(message string) *AppError {
	return NewAppError(fiber.StatusBadRequest, message, nil)
}

func NewNotFoundError(message string) *AppError {
	return NewAppError(fiber.StatusNotFound, message, nil)
}

func NewConflictError(message string) *AppError {
	return NewAppError(fiber.StatusConflict, message, nil)
}
