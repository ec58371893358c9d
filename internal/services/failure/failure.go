// Package failure сводит ошибки сервисов к коду ответа и сообщению для пользователя.
package failure

import (
	"errors"
	"net/http"

	"github.com/popodpiske/checkout-gateway/internal/api"
)

// DefaultFallback сообщение для непредвиденных ошибок без своего текста.
const DefaultFallback = "Не предвиденная ошибка, попробуйте позже"

// SessionExpiredMessage ответ на запрос с истёкшей сессией.
const SessionExpiredMessage = "session expired"

// Error ошибка с заранее известным кодом ответа и текстом для пользователя.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// Validation ошибка входных данных, запрос в основной API не отправлялся.
func Validation(msg string) *Error {
	return &Error{Status: http.StatusUnprocessableEntity, Message: msg}
}

// Conflict операция невозможна в текущем состоянии сессии.
func Conflict(msg string) *Error {
	return &Error{Status: http.StatusConflict, Message: msg}
}

// TooManyRequests повтор раньше допустимого времени.
func TooManyRequests(msg string) *Error {
	return &Error{Status: http.StatusTooManyRequests, Message: msg}
}

type fallbackError struct {
	err error
	msg string
}

func (e *fallbackError) Error() string { return e.err.Error() }
func (e *fallbackError) Unwrap() error { return e.err }

// WithFallback прикрепляет к ошибке сообщение на случай сетевого или неизвестного сбоя.
func WithFallback(err error, msg string) error {
	if err == nil {
		return nil
	}
	return &fallbackError{err: err, msg: msg}
}

// Describe возвращает код ответа шлюза и сообщение для пользователя.
//
// Бизнес-ошибки основного API (4xx) передаются как есть, 401 после неудачного
// обновления токена становится «session expired», всё остальное превращается
// в 502 с запасным сообщением операции.
func Describe(err error) (int, string) {
	var known *Error
	if errors.As(err, &known) {
		return known.Status, known.Message
	}
	if errors.Is(err, api.ErrSessionExpired) {
		return http.StatusUnauthorized, SessionExpiredMessage
	}
	if apiErr, ok := api.AsError(err); ok && apiErr.Status < http.StatusInternalServerError {
		return apiErr.Status, apiErr.Message
	}

	msg := DefaultFallback
	var fb *fallbackError
	if errors.As(err, &fb) {
		msg = fb.msg
	}
	return http.StatusBadGateway, msg
}
