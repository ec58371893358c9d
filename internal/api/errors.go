package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

var (
	// ErrSessionExpired возвращается, когда обновить токен после 401 не удалось.
	// К этому моменту токен и cookies сессии уже удалены.
	ErrSessionExpired = errors.New("session expired")
	// ErrNetwork оборачивает ошибки транспорта и неразборчивые ответы основного API.
	ErrNetwork = errors.New("popodpiske api unavailable")
)

// Error бизнес-ошибка основного API: код ответа 4xx/5xx и сообщение сервера.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("api error %d: %s", e.Status, e.Message)
}

// AsError достаёт *Error из цепочки ошибок.
func AsError(err error) (*Error, bool) {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

// decodeError разбирает тело ответа с ошибкой. Поле message бывает строкой
// или массивом строк (ошибки валидации сервера).
func decodeError(status int, body []byte) *Error {
	var payload struct {
		Message json.RawMessage `json:"message"`
	}
	msg := ""
	if err := json.Unmarshal(body, &payload); err == nil && len(payload.Message) > 0 {
		var single string
		var many []string
		switch {
		case json.Unmarshal(payload.Message, &single) == nil:
			msg = single
		case json.Unmarshal(payload.Message, &many) == nil:
			msg = strings.Join(many, ", ")
		}
	}
	if msg == "" {
		msg = http.StatusText(status)
	}
	return &Error{Status: status, Message: msg}
}
