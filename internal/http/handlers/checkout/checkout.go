// Package checkout реализует HTTP-обработчики шагов оформления подписки:
// личные данные, выбор срока, экран подтверждения и создание заказа.
package checkout

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/middleware"
	"github.com/go-playground/validator"

	"github.com/popodpiske/checkout-gateway/internal/http/middlewarectx"
	"github.com/popodpiske/checkout-gateway/internal/http/response"
	"github.com/popodpiske/checkout-gateway/internal/lib/sl"
	"github.com/popodpiske/checkout-gateway/internal/lib/validate"
	"github.com/popodpiske/checkout-gateway/internal/models"
	checkoutsvc "github.com/popodpiske/checkout-gateway/internal/services/checkout"
)

// Service шаги оформления.
type Service interface {
	PreviewPlan(ctx context.Context, sessionID string, months int) (*checkoutsvc.Plan, error)
	SubmitPersonalInfo(ctx context.Context, sessionID string, info checkoutsvc.PersonalInfo) (*checkoutsvc.Plan, error)
	Confirmation(ctx context.Context, sessionID string) (*checkoutsvc.Confirmation, error)
	CreateOrder(ctx context.Context, sessionID string) (*models.PaymentURLResponse, error)
}

// PersonalInfoRequest тело POST /checkout/personal-info.
//
// IIN может быть пустым, если у пользователя сессии он уже есть.
// Terms — согласие с условиями оферты, обязательно.
type PersonalInfoRequest struct {
	FirstName      string `json:"firstName" validate:"required"`
	LastName       string `json:"lastName" validate:"required"`
	Email          string `json:"email" validate:"required,email"`
	Phone          string `json:"phone" validate:"required,kzphone"`
	IIN            string `json:"iin" validate:"omitempty,iin"`
	NumberOfMonths int    `json:"numberOfMonths" validate:"required,min=1"`
	Terms          bool   `json:"terms" validate:"required"`
}

// Handler обрабатывает запросы /checkout/*.
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

// PersonalInfo godoc
// @Summary Сохранить личные данные и срок подписки
// @Tags Checkout
// @Accept json
// @Produce json
// @Param X-Session-ID header string false "Идентификатор сессии"
// @Param request body PersonalInfoRequest true "Личные данные"
// @Success 200 {object} response.Response{data=checkoutsvc.Plan}
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 409 {object} response.ErrorResponse "Ссылка не выбрана"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Router /checkout/personal-info [post]
func (h *Handler) PersonalInfo(w http.ResponseWriter, r *http.Request) {
	log := h.logger(r, "handlers.checkout.personal-info")

	var req PersonalInfoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		response.BadRequest(w, r, "invalid request body")
		return
	}
	req.Phone = validate.NormalizePhone(req.Phone)
	req.IIN = strings.TrimSpace(req.IIN)
	if err := h.validate.Struct(req); err != nil {
		log.Warn("validation failed", sl.Err(err))
		response.Invalid(w, r, err)
		return
	}

	plan, err := h.service.SubmitPersonalInfo(r.Context(), middlewarectx.SessionID(r), checkoutsvc.PersonalInfo{
		FirstName:      req.FirstName,
		LastName:       req.LastName,
		Email:          req.Email,
		Phone:          req.Phone,
		IIN:            req.IIN,
		NumberOfMonths: req.NumberOfMonths,
	})
	if err != nil {
		response.Fail(w, r, log, err)
		return
	}
	log.Info("plan chosen", slog.Int("months", plan.NumberOfMonths))
	response.OK(w, r, plan)
}

// Plan godoc
// @Summary Расчёт плана платежей
// @Description Считает ежемесячный платёж и даты для срока months (по умолчанию наименьший). Сессия не меняется.
// @Tags Checkout
// @Produce json
// @Param X-Session-ID header string false "Идентификатор сессии"
// @Param months query int false "Срок в месяцах"
// @Success 200 {object} response.Response{data=checkoutsvc.Plan}
// @Failure 400 {object} response.ErrorResponse "Некорректный срок"
// @Failure 409 {object} response.ErrorResponse "Ссылка не выбрана"
// @Failure 422 {object} response.ErrorResponse "Срок недоступен"
// @Router /checkout/plan [get]
func (h *Handler) Plan(w http.ResponseWriter, r *http.Request) {
	log := h.logger(r, "handlers.checkout.plan")

	months := 0
	if raw := r.URL.Query().Get("months"); raw != "" {
		var err error
		months, err = strconv.Atoi(raw)
		if err != nil || months < 0 {
			log.Warn("invalid months", slog.String("months", raw))
			response.BadRequest(w, r, "invalid months")
			return
		}
	}

	plan, err := h.service.PreviewPlan(r.Context(), middlewarectx.SessionID(r), months)
	if err != nil {
		response.Fail(w, r, log, err)
		return
	}
	response.OK(w, r, plan)
}

// Confirmation godoc
// @Summary Экран подтверждения
// @Description Возвращает сводку подписки и график платежей (полный или сокращённый).
// @Tags Checkout
// @Produce json
// @Param X-Session-ID header string false "Идентификатор сессии"
// @Success 200 {object} response.Response{data=checkoutsvc.Confirmation}
// @Failure 409 {object} response.ErrorResponse "Срок не выбран"
// @Router /checkout/confirmation [get]
func (h *Handler) Confirmation(w http.ResponseWriter, r *http.Request) {
	log := h.logger(r, "handlers.checkout.confirmation")

	res, err := h.service.Confirmation(r.Context(), middlewarectx.SessionID(r))
	if err != nil {
		response.Fail(w, r, log, err)
		return
	}
	response.OK(w, r, res)
}

// Order godoc
// @Summary Создать заказ
// @Description Создаёт заказ по выбранному плану и возвращает ссылку на оплату.
// @Tags Checkout
// @Produce json
// @Param X-Session-ID header string false "Идентификатор сессии"
// @Success 200 {object} response.Response{data=models.PaymentURLResponse}
// @Failure 401 {object} response.ErrorResponse "Сессия истекла"
// @Failure 409 {object} response.ErrorResponse "Срок не выбран"
// @Failure 502 {object} response.ErrorResponse "Ошибка при создании заказа"
// @Router /checkout/order [post]
func (h *Handler) Order(w http.ResponseWriter, r *http.Request) {
	log := h.logger(r, "handlers.checkout.order")

	res, err := h.service.CreateOrder(r.Context(), middlewarectx.SessionID(r))
	if err != nil {
		response.Fail(w, r, log, err)
		return
	}
	log.Info("order created")
	response.OK(w, r, res)
}
