package service

import (
	"fmt"
	"todoTracker/internal/validation"
)

const (
	CodeValidation = "VALIDATION_ERROR"
	CodeNotFound   = "NOT_FOUND"
	CodeStore      = "STORE_ERROR"
)

type BusinessError struct {
	Code    string
	Message string
	Details map[string]any
	Err     error
}

type Detail struct {
	Key     string
	Payload any
}

func (b *BusinessError) Error() string {
	if b.Err != nil {
		return fmt.Sprintf("[%s] %s: %s", b.Code, b.Message, b.Err.Error())
	}
	return fmt.Sprintf("[%s] %s", b.Code, b.Message)
}

func (b *BusinessError) Unwrap() error {
	return b.Err
}

func ToDetail(key string, payload any) Detail {
	return Detail{
		Key:     key,
		Payload: payload,
	}
}

func NewBusinessError(code string, message string, details ...Detail) *BusinessError {
	busErr := &BusinessError{
		Code:    code,
		Message: message,
		Details: make(map[string]any),
	}

	for _, detail := range details {
		busErr.Details[detail.Key] = detail.Payload
	}

	return busErr
}

// NewNotFound одинаков для отсутствующей и чужой задачи
func NewNotFound(resource, id string) *BusinessError {
	return NewBusinessError(CodeNotFound,
		fmt.Sprintf("%s %s не найден(а)", resource, id),
		ToDetail("resource", resource),
		ToDetail("id", id),
	)
}

func NewValidationError(result validation.Result) *BusinessError {
	return NewBusinessError(CodeValidation, "Ошибка валидации", ToDetail("errors", result))
}

func NewFieldError(field, message string) *BusinessError {
	return NewValidationError(validation.Result{{Field: field, Message: message}})
}

// NewStoreError скрывает причину от клиента, она остаётся в Err для логов
func NewStoreError(err error) *BusinessError {
	busErr := NewBusinessError(CodeStore, "Внутренняя ошибка сервера")
	busErr.Err = err
	return busErr
}
