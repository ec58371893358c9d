// Package links реализует HTTP-обработчик открытия платёжной ссылки.
package links

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/google/uuid"

	"github.com/popodpiske/checkout-gateway/internal/http/middlewarectx"
	"github.com/popodpiske/checkout-gateway/internal/http/response"
	"github.com/popodpiske/checkout-gateway/internal/lib/sl"
	"github.com/popodpiske/checkout-gateway/internal/services/checkout"
)

// Service проверяет ссылку и запоминает курс в сессии.
type Service interface {
	ResolveLink(ctx context.Context, sessionID, linkUUID string) (*checkout.LinkView, error)
}

// Handler обрабатывает GET /links/{uuid}.
type Handler struct {
	log     *slog.Logger
	service Service
}

func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Открыть платёжную ссылку
// @Description Проверяет ссылку в основном API и сохраняет курс в сессии.
// @Tags Links
// @Produce json
// @Param X-Session-ID header string false "Идентификатор сессии"
// @Param uuid path string true "UUID ссылки"
// @Success 200 {object} response.Response{data=checkout.LinkView}
// @Failure 400 {object} response.ErrorResponse "Некорректный UUID"
// @Failure 404 {object} response.ErrorResponse "Ссылка не найдена"
// @Failure 502 {object} response.ErrorResponse "Основной API недоступен"
// @Router /links/{uuid} [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.links.resolve"

	sessionID := middlewarectx.SessionID(r)
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
		sl.Session(sessionID),
	)

	linkUUID := chi.URLParam(r, "uuid")
	if _, err := uuid.Parse(linkUUID); err != nil {
		log.Error("invalid link uuid", sl.Err(err))
		response.BadRequest(w, r, "invalid link uuid")
		return
	}

	view, err := h.service.ResolveLink(r.Context(), sessionID, linkUUID)
	if err != nil {
		response.Fail(w, r, log, err)
		return
	}

	log.Info("link resolved", slog.String("course", view.CourseName))
	response.OK(w, r, view)
}
