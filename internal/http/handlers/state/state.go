// Package state отдаёт текущее состояние сессии оформления.
package state

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/middleware"

	"github.com/popodpiske/checkout-gateway/internal/http/middlewarectx"
	"github.com/popodpiske/checkout-gateway/internal/http/response"
	"github.com/popodpiske/checkout-gateway/internal/lib/jwt"
	"github.com/popodpiske/checkout-gateway/internal/lib/sl"
	"github.com/popodpiske/checkout-gateway/internal/session"
)

// Sessions чтение состояния сессии.
type Sessions interface {
	State(ctx context.Context, sessionID string) (session.State, error)
}

// Tokens сведения о токене сессии.
type Tokens interface {
	TokenInfo(ctx context.Context) (*jwt.Claims, error)
}

// Auth сведения о токене. Подпись не проверяется.
type Auth struct {
	HasToken  bool       `json:"hasToken"`
	Subject   string     `json:"subject,omitempty"`
	ExpiresAt *time.Time `json:"expiresAt,omitempty"`
	Expired   bool       `json:"expired"`
}

// Response ответ GET /state.
type Response struct {
	SessionID string        `json:"sessionId"`
	State     session.State `json:"state"`
	Auth      Auth          `json:"auth"`
}

type Handler struct {
	log      *slog.Logger
	sessions Sessions
	tokens   Tokens
	now      func() time.Time
}

func New(log *slog.Logger, sessions Sessions, tokens Tokens) *Handler {
	return &Handler{
		log:      log,
		sessions: sessions,
		tokens:   tokens,
		now:      time.Now,
	}
}

// ServeHTTP godoc
// @Summary Состояние сессии
// @Tags State
// @Produce json
// @Param X-Session-ID header string false "Идентификатор сессии"
// @Success 200 {object} response.Response{data=Response}
// @Failure 502 {object} response.ErrorResponse
// @Router /state [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.state"

	sessionID := middlewarectx.SessionID(r)
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
		sl.Session(sessionID),
	)

	st, err := h.sessions.State(r.Context(), sessionID)
	if err != nil {
		response.Fail(w, r, log, err)
		return
	}

	res := Response{SessionID: sessionID, State: st}
	claims, err := h.tokens.TokenInfo(r.Context())
	if err != nil {
		// токен не разбирается: считаем, что его нет, и не ломаем ответ
		log.Warn("failed to inspect access token", sl.Err(err))
	}
	if claims != nil {
		res.Auth = Auth{
			HasToken: true,
			Subject:  claims.Subject,
			Expired:  claims.Expired(h.now()),
		}
		if !claims.ExpiresAt.IsZero() {
			exp := claims.ExpiresAt
			res.Auth.ExpiresAt = &exp
		}
	}
	response.OK(w, r, res)
}
