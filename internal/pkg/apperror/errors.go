package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

type ErrorCode string

const (
	ErrCodeNotFound        ErrorCode = "NOT_FOUND"
	ErrCodeBadRequest      ErrorCode = "BAD_REQUEST"
	ErrCodeConflict        ErrorCode = "CONFLICT"
	ErrCodeInternal        ErrorCode = "INTERNAL_ERROR"
	ErrCodeValidation      ErrorCode = "VALIDATION_ERROR"
	ErrCodeDatabaseError   ErrorCode = "DATABASE_ERROR"
	ErrCodeMissingFields   ErrorCode = "MISSING_FIELDS"
	ErrCodeInvalidEmail    ErrorCode = "INVALID_EMAIL"
	ErrCodeDeliveryFailure ErrorCode = "DELIVERY_FAILURE"
)

type AppError struct {
	Code       ErrorCode
	Message    string
	HTTPStatus int
	Cause      error
	// Fields перечисляет незаполненные поля для MISSING_FIELDS.
	Fields []string
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: codeToHTTPStatus(code),
	}
}

func Wrap(err error, code ErrorCode, message string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: codeToHTTPStatus(code),
		Cause:      err,
	}
}

// MissingFields строит ошибку со списком обязательных полей, оставшихся пустыми.
func MissingFields(fields ...string) *AppError {
	e := New(ErrCodeMissingFields, "не заполнены обязательные поля: "+strings.Join(fields, ", "))
	e.Fields = append([]string(nil), fields...)
	return e
}

// DeliveryFailure оборачивает транспортную ошибку отправки.
func DeliveryFailure(err error, message string) *AppError {
	return Wrap(err, ErrCodeDeliveryFailure, message)
}

func codeToHTTPStatus(code ErrorCode) int {
	switch code {
	case ErrCodeNotFound:
		return http.StatusNotFound
	case ErrCodeBadRequest, ErrCodeValidation, ErrCodeMissingFields, ErrCodeInvalidEmail:
		return http.StatusBadRequest
	case ErrCodeConflict:
		return http.StatusConflict
	case ErrCodeDeliveryFailure:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func hasCode(err error, code ErrorCode) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Code == code
}

func IsNotFound(err error) bool {
	return hasCode(err, ErrCodeNotFound)
}

func IsValidation(err error) bool {
	return hasCode(err, ErrCodeValidation)
}

func IsMissingFields(err error) bool {
	return hasCode(err, ErrCodeMissingFields)
}

func IsInvalidEmail(err error) bool {
	return hasCode(err, ErrCodeInvalidEmail)
}

func IsDeliveryFailure(err error) bool {
	return hasCode(err, ErrCodeDeliveryFailure)
}

func IsConflict(err error) bool {
	return hasCode(err, ErrCodeConflict)
}

var (
	ErrProposalNotFound = New(ErrCodeNotFound, "предложение не найдено")
	ErrSendInProgress   = New(ErrCodeConflict, "отправка этого предложения уже выполняется")
	ErrNoWebhookURL     = New(ErrCodeBadRequest, "webhook URL не задан")
	ErrMailDisabled     = New(ErrCodeBadRequest, "отправка почты отключена")
)
