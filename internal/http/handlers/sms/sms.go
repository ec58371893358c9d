// Package sms реализует HTTP-обработчики отправки и проверки одноразовых кодов.
package sms

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/middleware"
	"github.com/go-playground/validator"

	"github.com/popodpiske/checkout-gateway/internal/http/middlewarectx"
	"github.com/popodpiske/checkout-gateway/internal/http/response"
	"github.com/popodpiske/checkout-gateway/internal/lib/sl"
	"github.com/popodpiske/checkout-gateway/internal/lib/validate"
	"github.com/popodpiske/checkout-gateway/internal/services/checkout"
)

// Service отправка и проверка кодов.
type Service interface {
	SendCode(ctx context.Context, sessionID, phone string) (time.Duration, error)
	Cooldown(ctx context.Context, sessionID string) (time.Duration, error)
	VerifyCode(ctx context.Context, sessionID, phone, code string, reset bool) (*checkout.VerifyResult, error)
}

// SendRequest тело POST /sms/send. Пустой phone означает номер из сессии.
type SendRequest struct {
	Phone string `json:"phone" validate:"omitempty,kzphone"`
}

// VerifyRequest тело POST /sms/verify. Reset отмечает сценарий восстановления пароля.
type VerifyRequest struct {
	Phone string `json:"phone" validate:"omitempty,kzphone"`
	Code  string `json:"code" validate:"required,numeric,len=5"`
	Reset bool   `json:"reset"`
}

// CooldownResponse оставшееся время до повторной отправки.
type CooldownResponse struct {
	Seconds int `json:"seconds"`
}

// Handler обрабатывает запросы /sms/*.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validate.New(),
	}
}

func (h *Handler) logger(r *http.Request, op string) *slog.Logger {
	return h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
		sl.Session(middlewarectx.SessionID(r)),
	)
}

// Send godoc
// @Summary Отправить код
// @Description Отправляет код на номер. Повторная отправка возможна после окончания таймера.
// @Tags SMS
// @Accept json
// @Produce json
// @Param X-Session-ID header string false "Идентификатор сессии"
// @Param request body SendRequest false "Номер телефона"
// @Success 200 {object} response.Response{data=CooldownResponse}
// @Failure 409 {object} response.ErrorResponse "Номер не указан"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 429 {object} response.ErrorResponse "Таймер ещё идёт"
// @Failure 502 {object} response.ErrorResponse "Ошибка при отправке SMS"
// @Router /sms/send [post]
func (h *Handler) Send(w http.ResponseWriter, r *http.Request) {
	log := h.logger(r, "handlers.sms.send")

	var req SendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		log.Error("failed to decode request body", sl.Err(err))
		response.BadRequest(w, r, "invalid request body")
		return
	}
	req.Phone = validate.NormalizePhone(req.Phone)
	if err := h.validate.Struct(req); err != nil {
		log.Warn("validation failed", sl.Err(err))
		response.Invalid(w, r, err)
		return
	}

	remaining, err := h.service.SendCode(r.Context(), middlewarectx.SessionID(r), req.Phone)
	if err != nil {
		var cooldown *checkout.CooldownError
		if errors.As(err, &cooldown) {
			w.Header().Set("Retry-After", strconv.Itoa(checkout.Seconds(cooldown.Remaining)))
		}
		response.Fail(w, r, log, err)
		return
	}
	response.OK(w, r, CooldownResponse{Seconds: checkout.Seconds(remaining)})
}

// Cooldown godoc
// @Summary Оставшееся время до повторной отправки
// @Tags SMS
// @Produce json
// @Param X-Session-ID header string false "Идентификатор сессии"
// @Success 200 {object} response.Response{data=CooldownResponse}
// @Failure 502 {object} response.ErrorResponse
// @Router /sms/cooldown [get]
func (h *Handler) Cooldown(w http.ResponseWriter, r *http.Request) {
	log := h.logger(r, "handlers.sms.cooldown")

	remaining, err := h.service.Cooldown(r.Context(), middlewarectx.SessionID(r))
	if err != nil {
		response.Fail(w, r, log, err)
		return
	}
	response.OK(w, r, CooldownResponse{Seconds: checkout.Seconds(remaining)})
}

// Verify godoc
// @Summary Проверить код
// @Description Проверяет код и сообщает следующий шаг: payment, set-password или reset-password.
// @Tags SMS
// @Accept json
// @Produce json
// @Param X-Session-ID header string false "Идентификатор сессии"
// @Param request body VerifyRequest true "Код"
// @Success 200 {object} response.Response{data=checkout.VerifyResult}
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 502 {object} response.ErrorResponse "Ошибка верификации SMS"
// @Router /sms/verify [post]
func (h *Handler) Verify(w http.ResponseWriter, r *http.Request) {
	log := h.logger(r, "handlers.sms.verify")

	var req VerifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		response.BadRequest(w, r, "invalid request body")
		return
	}
	req.Phone = validate.NormalizePhone(req.Phone)
	if err := h.validate.Struct(req); err != nil {
		log.Warn("validation failed", sl.Err(err))
		response.Invalid(w, r, err)
		return
	}

	res, err := h.service.VerifyCode(r.Context(), middlewarectx.SessionID(r), req.Phone, req.Code, req.Reset)
	if err != nil {
		response.Fail(w, r, log, err)
		return
	}
	log.Info("code verified", slog.String("next", res.Next))
	response.OK(w, r, res)
}
