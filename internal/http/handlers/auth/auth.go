// Package auth реализует HTTP-обработчики входа, регистрации и восстановления пароля.
//
// Номер телефона в запросах нормализуется до проверки тегом kzphone, поэтому
// принимаются номера с пробелами, скобками и дефисами.
package auth

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-playground/validator"

	"github.com/popodpiske/checkout-gateway/internal/http/middlewarectx"
	"github.com/popodpiske/checkout-gateway/internal/http/response"
	"github.com/popodpiske/checkout-gateway/internal/lib/sl"
	"github.com/popodpiske/checkout-gateway/internal/lib/validate"
	"github.com/popodpiske/checkout-gateway/internal/models"
	"github.com/popodpiske/checkout-gateway/internal/services/checkout"
)

// Service сценарии входа в оформлении подписки.
type Service interface {
	CheckPhone(ctx context.Context, sessionID, phone string) (*checkout.PhoneCheck, error)
	Login(ctx context.Context, sessionID, phone, password string) (*checkout.AuthResult, error)
	SetPassword(ctx context.Context, sessionID, password string) (*checkout.AuthResult, error)
	ResetPassword(ctx context.Context, sessionID string, req models.ResetPasswordRequest) (*models.MessageResponse, error)
	Logout(ctx context.Context, sessionID string) error
}

// CheckPhoneRequest тело POST /auth/check-phone.
type CheckPhoneRequest struct {
	Phone string `json:"phone" validate:"required,kzphone"`
}

// LoginRequest тело POST /auth/login.
type LoginRequest struct {
	Phone    string `json:"phone" validate:"required,kzphone"`
	Password string `json:"password" validate:"required"`
}

// RegisterRequest тело POST /auth/register. Данные пользователя берутся из сессии.
type RegisterRequest struct {
	Password        string `json:"password" validate:"required,min=8"`
	ConfirmPassword string `json:"confirmPassword" validate:"required,eqfield=Password"`
}

// ResetPasswordRequest тело POST /auth/reset-password.
type ResetPasswordRequest struct {
	Phone           string `json:"phone" validate:"required,kzphone"`
	Token           string `json:"token" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,min=8"`
	ConfirmPassword string `json:"confirmPassword" validate:"required,eqfield=NewPassword"`
}

// Handler обрабатывает запросы /auth/*.
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

// decode читает тело запроса и проверяет его. При ошибке ответ уже записан.
func (h *Handler) decode(w http.ResponseWriter, r *http.Request, log *slog.Logger, req any) bool {
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		response.BadRequest(w, r, "invalid request body")
		return false
	}
	if err := h.validate.Struct(req); err != nil {
		log.Warn("validation failed", sl.Err(err))
		response.Invalid(w, r, err)
		return false
	}
	return true
}

// CheckPhone godoc
// @Summary Проверить номер телефона
// @Description Сообщает, зарегистрирован ли номер, и какой экран показать дальше.
// @Tags Auth
// @Accept json
// @Produce json
// @Param X-Session-ID header string false "Идентификатор сессии"
// @Param request body CheckPhoneRequest true "Номер телефона"
// @Success 200 {object} response.Response{data=checkout.PhoneCheck}
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 502 {object} response.ErrorResponse "Основной API недоступен"
// @Router /auth/check-phone [post]
func (h *Handler) CheckPhone(w http.ResponseWriter, r *http.Request) {
	log := h.logger(r, "handlers.auth.check-phone")

	var req CheckPhoneRequest
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

	res, err := h.service.CheckPhone(r.Context(), middlewarectx.SessionID(r), req.Phone)
	if err != nil {
		response.Fail(w, r, log, err)
		return
	}
	response.OK(w, r, res)
}

// Login godoc
// @Summary Вход по телефону и паролю
// @Tags Auth
// @Accept json
// @Produce json
// @Param X-Session-ID header string false "Идентификатор сессии"
// @Param request body LoginRequest true "Учетные данные"
// @Success 200 {object} response.Response{data=checkout.AuthResult}
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 401 {object} response.ErrorResponse "Неверные учетные данные"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 502 {object} response.ErrorResponse "Основной API недоступен"
// @Router /auth/login [post]
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	log := h.logger(r, "handlers.auth.login")

	var req LoginRequest
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

	res, err := h.service.Login(r.Context(), middlewarectx.SessionID(r), req.Phone, req.Password)
	if err != nil {
		response.Fail(w, r, log, err)
		return
	}
	log.Info("login success", slog.Int("user_id", res.User.ID))
	response.OK(w, r, res)
}

// Register godoc
// @Summary Создать пароль
// @Description Регистрирует пользователя с данными из сессии и выполняет вход.
// @Tags Auth
// @Accept json
// @Produce json
// @Param X-Session-ID header string false "Идентификатор сессии"
// @Param request body RegisterRequest true "Пароль"
// @Success 200 {object} response.Response{data=checkout.AuthResult}
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 409 {object} response.ErrorResponse "В сессии нет номера телефона"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 502 {object} response.ErrorResponse "Основной API недоступен"
// @Router /auth/register [post]
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	log := h.logger(r, "handlers.auth.register")

	var req RegisterRequest
	if !h.decode(w, r, log, &req) {
		return
	}

	res, err := h.service.SetPassword(r.Context(), middlewarectx.SessionID(r), req.Password)
	if err != nil {
		response.Fail(w, r, log, err)
		return
	}
	log.Info("user registered", slog.Int("user_id", res.User.ID))
	response.OK(w, r, res)
}

// ResetPassword godoc
// @Summary Сбросить пароль
// @Description Задаёт новый пароль по токену, полученному после проверки кода из SMS.
// @Tags Auth
// @Accept json
// @Produce json
// @Param X-Session-ID header string false "Идентификатор сессии"
// @Param request body ResetPasswordRequest true "Новый пароль"
// @Success 200 {object} response.Response{data=models.MessageResponse}
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 502 {object} response.ErrorResponse "Основной API недоступен"
// @Router /auth/reset-password [post]
func (h *Handler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	log := h.logger(r, "handlers.auth.reset-password")

	var req ResetPasswordRequest
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

	res, err := h.service.ResetPassword(r.Context(), middlewarectx.SessionID(r), models.ResetPasswordRequest{
		Phone:       req.Phone,
		NewPassword: req.NewPassword,
		Token:       req.Token,
	})
	if err != nil {
		response.Fail(w, r, log, err)
		return
	}
	response.OK(w, r, res)
}

// Logout godoc
// @Summary Выход
// @Tags Auth
// @Produce json
// @Param X-Session-ID header string false "Идентификатор сессии"
// @Success 200 {object} response.Response
// @Failure 502 {object} response.ErrorResponse
// @Router /auth/logout [post]
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	log := h.logger(r, "handlers.auth.logout")

	if err := h.service.Logout(r.Context(), middlewarectx.SessionID(r)); err != nil {
		response.Fail(w, r, log, err)
		return
	}
	response.OK(w, r, map[string]any{"loggedOut": true})
}
