// Package checkout реализует сценарий оформления подписки по платёжной ссылке:
// выбор курса, вход или регистрацию по телефону, подтверждение номера кодом из SMS,
// расчёт плана платежей и создание заказа.
package checkout

import (
	"context"
	"log/slog"
	"time"

	"github.com/popodpiske/checkout-gateway/internal/config"
	"github.com/popodpiske/checkout-gateway/internal/lib/sl"
	"github.com/popodpiske/checkout-gateway/internal/models"
	"github.com/popodpiske/checkout-gateway/internal/notify"
	"github.com/popodpiske/checkout-gateway/internal/services/failure"
	"github.com/popodpiske/checkout-gateway/internal/session"
)

// API методы основного API, которые использует оформление.
type API interface {
	ValidateLink(ctx context.Context, uuid string) (*models.Link, error)
	CheckPhone(ctx context.Context, phone string) (bool, error)
	Login(ctx context.Context, req models.LoginRequest) (*models.AuthResponse, error)
	Register(ctx context.Context, req models.RegisterRequest) (*models.AuthResponse, error)
	ResetPassword(ctx context.Context, req models.ResetPasswordRequest) (*models.MessageResponse, error)
	SendCode(ctx context.Context, phone string) (*models.MessageResponse, error)
	VerifyCode(ctx context.Context, phone, code string) (*models.VerifyCodeResponse, error)
	CreateOrder(ctx context.Context, req models.CreateOrderRequest) (*models.PaymentURLResponse, error)
	ConfirmSuccess(ctx context.Context, orderID int) error
	MarkLinkUsed(ctx context.Context, linkUUID string) error
	HasToken(ctx context.Context) (bool, error)
	Logout(ctx context.Context) error
}

// Sessions хранилище состояния сессий.
type Sessions interface {
	State(ctx context.Context, sessionID string) (session.State, error)
	Dispatch(ctx context.Context, sessionID string, actions ...session.Action) (session.State, error)
}

// Storage данные сессии вне её состояния: таймер повторной отправки SMS и кэш заказов.
type Storage interface {
	SMSSentAt(ctx context.Context, sessionID string) (time.Time, bool, error)
	// ClaimSMS атомарно запускает таймер; при уже идущем таймере возвращает false и момент прошлой отправки.
	ClaimSMS(ctx context.Context, sessionID string, at time.Time, cooldown time.Duration) (bool, time.Time, error)
	InvalidateOrders(ctx context.Context, sessionID string) error
}

// Сообщения об ошибках операций, когда основной API не вернул своего текста.
const (
	fallbackCreateOrder  = "Ошибка при создании заказа"
	fallbackSendSMS      = "Ошибка при отправке SMS"
	fallbackVerifySMS    = "Ошибка верификации SMS"
	fallbackSetPassword  = "Произошла ошибка при создании пароля"
	fallbackConfirmation = "Ошибка при подтверждении оплаты, попробуйте еще раз"
	fallbackGeneric      = "Произошла ошибка, попробуйте позже"
)

var (
	ErrNoCourse      = failure.Conflict("Платёжная ссылка не выбрана")
	ErrNoPlan        = failure.Conflict("Срок подписки не выбран")
	ErrNoPhone       = failure.Conflict("Номер телефона не указан")
	ErrInvalidMonths = failure.Validation("Выбранный срок недоступен для этой ссылки")
	ErrInvalidPhone  = failure.Validation("Номер телефона должен быть в формате +7XXXXXXXXXX")
	ErrInvalidIIN    = failure.Validation("Некорректный ИИН")
	ErrEmptyLink     = failure.Validation("Не указан идентификатор ссылки")
)

// Service сценарий оформления подписки.
type Service struct {
	api       API
	sessions  Sessions
	storage   Storage
	notifier  notify.Notifier
	cooldown  time.Duration
	threshold int
	log       *slog.Logger
	now       func() time.Time
}

// NewService создает новый экземпляр Service.
func NewService(api API, sessions Sessions, storage Storage, notifier notify.Notifier, cfg *config.Config, log *slog.Logger) *Service {
	return &Service{
		api:       api,
		sessions:  sessions,
		storage:   storage,
		notifier:  notifier,
		cooldown:  cfg.Cooldown,
		threshold: cfg.FullViewThreshold,
		log:       log,
		now:       time.Now,
	}
}

// fail уведомляет пользователя об ошибке и возвращает её с запасным сообщением.
func (s *Service) fail(ctx context.Context, sessionID, op, fallback string, err error) error {
	err = failure.WithFallback(err, fallback)
	_, msg := failure.Describe(err)
	s.notifier.Notify(ctx, notify.Error(sessionID, op, msg))
	s.log.Warn("checkout operation failed", slog.String("op", op), sl.Session(sessionID), sl.Err(err))
	return err
}

func (s *Service) succeed(ctx context.Context, sessionID, op, msg string) {
	s.notifier.Notify(ctx, notify.Success(sessionID, op, msg))
}

// isLoggedIn вход считается выполненным, только если есть и признак, и токен.
func (s *Service) isLoggedIn(ctx context.Context, st session.State) (bool, error) {
	if !st.User.IsLoggedIn {
		return false, nil
	}
	return s.api.HasToken(ctx)
}

// invalidateOrders сбрасывает кэш заказов после изменения заказов на сервере.
func (s *Service) invalidateOrders(ctx context.Context, sessionID string) {
	if err := s.storage.InvalidateOrders(ctx, sessionID); err != nil {
		s.log.Warn("failed to invalidate orders cache", sl.Session(sessionID), sl.Err(err))
	}
}
