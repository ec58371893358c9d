// Package middlewarectx содержит HTTP middleware шлюза.
//
// SessionMiddleware определяет сессию браузера по заголовку X-Session-ID и кладёт её
// идентификатор в контекст запроса. Если заголовок пуст или не является UUID,
// выдаётся новый идентификатор. Он всегда возвращается в том же заголовке ответа.
package middlewarectx

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/google/uuid"

	"github.com/popodpiske/checkout-gateway/internal/lib/sl"
	"github.com/popodpiske/checkout-gateway/internal/session"
)

// HeaderSessionID заголовок с идентификатором сессии.
const HeaderSessionID = "X-Session-ID"

// SessionMiddleware возвращает HTTP middleware, который привязывает запрос к сессии.
func SessionMiddleware(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const op = "middlewarectx.SessionMiddleware"

			id := r.Header.Get(HeaderSessionID)
			if _, err := uuid.Parse(id); err != nil {
				id = uuid.NewString()
				log.Debug("new session issued",
					slog.String("op", op),
					slog.String("request_id", middleware.GetReqID(r.Context())),
					sl.Session(id),
				)
			}

			w.Header().Set(HeaderSessionID, id)
			next.ServeHTTP(w, r.WithContext(session.WithID(r.Context(), id)))
		})
	}
}

// SessionID возвращает идентификатор сессии запроса.
func SessionID(r *http.Request) string {
	id, _ := session.IDFromContext(r.Context())
	return id
}
