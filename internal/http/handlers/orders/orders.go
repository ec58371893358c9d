// Package orders реализует HTTP-обработчики личного кабинета.
package orders

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"

	"github.com/popodpiske/checkout-gateway/internal/http/middlewarectx"
	"github.com/popodpiske/checkout-gateway/internal/http/response"
	"github.com/popodpiske/checkout-gateway/internal/lib/sl"
	"github.com/popodpiske/checkout-gateway/internal/models"
	orderssvc "github.com/popodpiske/checkout-gateway/internal/services/orders"
)

// Service заказы пользователя.
type Service interface {
	List(ctx context.Context, sessionID string) ([]orderssvc.OrderView, error)
	Cancel(ctx context.Context, sessionID string, orderID int) error
	AddPayment(ctx context.Context, sessionID string, orderID int) (*models.PaymentURLResponse, error)
}

// Confirmer подтверждение оплаты после возврата со страницы оплаты.
type Confirmer interface {
	ConfirmSuccess(ctx context.Context, sessionID string, orderID int, linkUUID string) error
}

// SuccessRequest необязательное тело POST /orders/{id}/success.
type SuccessRequest struct {
	LinkUUID string `json:"linkUUID"`
}

// Handler обрабатывает запросы /orders*.
type Handler struct {
	log       *slog.Logger
	service   Service
	confirmer Confirmer
}

func New(log *slog.Logger, service Service, confirmer Confirmer) *Handler {
	return &Handler{
		log:       log,
		service:   service,
		confirmer: confirmer,
	}
}

func (h *Handler) logger(r *http.Request, op string) *slog.Logger {
	return h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
		sl.Session(middlewarectx.SessionID(r)),
	)
}

func orderID(r *http.Request) (int, error) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		return 0, err
	}
	if id < 1 {
		return 0, errors.New("order id must be positive")
	}
	return id, nil
}

// List godoc
// @Summary Заказы пользователя
// @Description Возвращает заказы с графиком платежей: записанные платежи и прогноз на оставшиеся месяцы.
// @Tags Orders
// @Produce json
// @Param X-Session-ID header string false "Идентификатор сессии"
// @Success 200 {object} response.Response{data=[]orderssvc.OrderView}
// @Failure 401 {object} response.ErrorResponse "Сессия истекла"
// @Failure 502 {object} response.ErrorResponse "Основной API недоступен"
// @Router /orders [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	log := h.logger(r, "handlers.orders.list")

	views, err := h.service.List(r.Context(), middlewarectx.SessionID(r))
	if err != nil {
		response.Fail(w, r, log, err)
		return
	}
	log.Info("orders listed", slog.Int("count", len(views)))
	response.OK(w, r, views)
}

// Cancel godoc
// @Summary Отменить заказ
// @Tags Orders
// @Produce json
// @Param X-Session-ID header string false "Идентификатор сессии"
// @Param id path int true "ID заказа"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.ErrorResponse "Некорректный ID"
// @Failure 502 {object} response.ErrorResponse "Основной API недоступен"
// @Router /orders/{id} [delete]
func (h *Handler) Cancel(w http.ResponseWriter, r *http.Request) {
	log := h.logger(r, "handlers.orders.cancel")

	id, err := orderID(r)
	if err != nil {
		log.Error("invalid id format", sl.Err(err))
		response.BadRequest(w, r, "invalid id")
		return
	}

	if err := h.service.Cancel(r.Context(), middlewarectx.SessionID(r), id); err != nil {
		response.Fail(w, r, log, err)
		return
	}
	log.Info("order cancelled", slog.Int("order_id", id))
	response.OK(w, r, map[string]any{"orderId": id})
}

// PaymentMethod godoc
// @Summary Привязать способ оплаты
// @Description Возвращает ссылку на страницу привязки карты для заказа.
// @Tags Orders
// @Produce json
// @Param X-Session-ID header string false "Идентификатор сессии"
// @Param id path int true "ID заказа"
// @Success 200 {object} response.Response{data=models.PaymentURLResponse}
// @Failure 400 {object} response.ErrorResponse "Некорректный ID"
// @Failure 502 {object} response.ErrorResponse "Ошибка при добавлении платежа"
// @Router /orders/{id}/payment-method [post]
func (h *Handler) PaymentMethod(w http.ResponseWriter, r *http.Request) {
	log := h.logger(r, "handlers.orders.payment-method")

	id, err := orderID(r)
	if err != nil {
		log.Error("invalid id format", sl.Err(err))
		response.BadRequest(w, r, "invalid id")
		return
	}

	res, err := h.service.AddPayment(r.Context(), middlewarectx.SessionID(r), id)
	if err != nil {
		response.Fail(w, r, log, err)
		return
	}
	response.OK(w, r, res)
}

// Success godoc
// @Summary Подтвердить оплату
// @Description Подтверждает оплату заказа, помечает ссылку использованной (если передана) и очищает курс в сессии.
// @Tags Orders
// @Accept json
// @Produce json
// @Param X-Session-ID header string false "Идентификатор сессии"
// @Param id path int true "ID заказа"
// @Param request body SuccessRequest false "Ссылка"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.ErrorResponse "Некорректный ID"
// @Failure 502 {object} response.ErrorResponse "Ошибка при подтверждении оплаты"
// @Router /orders/{id}/success [post]
func (h *Handler) Success(w http.ResponseWriter, r *http.Request) {
	log := h.logger(r, "handlers.orders.success")

	id, err := orderID(r)
	if err != nil {
		log.Error("invalid id format", sl.Err(err))
		response.BadRequest(w, r, "invalid id")
		return
	}

	var req SuccessRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		log.Error("failed to decode request body", sl.Err(err))
		response.BadRequest(w, r, "invalid request body")
		return
	}

	if err := h.confirmer.ConfirmSuccess(r.Context(), middlewarectx.SessionID(r), id, req.LinkUUID); err != nil {
		response.Fail(w, r, log, err)
		return
	}
	log.Info("payment confirmed", slog.Int("order_id", id))
	response.OK(w, r, map[string]any{"orderId": id})
}
