// Package orders собирает личный кабинет: заказы пользователя с прогнозом платежей,
// отмену заказа и привязку способа оплаты.
package orders

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/popodpiske/checkout-gateway/internal/api"
	"github.com/popodpiske/checkout-gateway/internal/lib/billing"
	"github.com/popodpiske/checkout-gateway/internal/lib/money"
	"github.com/popodpiske/checkout-gateway/internal/lib/sl"
	"github.com/popodpiske/checkout-gateway/internal/metrics"
	"github.com/popodpiske/checkout-gateway/internal/models"
	"github.com/popodpiske/checkout-gateway/internal/notify"
	"github.com/popodpiske/checkout-gateway/internal/schedule"
	"github.com/popodpiske/checkout-gateway/internal/services/failure"
	"github.com/popodpiske/checkout-gateway/internal/session"
)

const (
	fallbackAddPayment = "Ошибка при добавлении платежа"
	fallbackGeneric    = "Произошла ошибка, попробуйте позже"
)

// API методы основного API для работы с заказами.
type API interface {
	ListOrders(ctx context.Context) ([]models.Order, error)
	CancelOrder(ctx context.Context, orderID int) error
	AddPayment(ctx context.Context, orderID int) (*models.PaymentURLResponse, error)
	HasToken(ctx context.Context) (bool, error)
}

// Cache последний полученный список заказов сессии.
type Cache interface {
	CachedOrders(ctx context.Context, sessionID string) ([]models.Order, bool, error)
	CacheOrders(ctx context.Context, sessionID string, orders []models.Order) error
	InvalidateOrders(ctx context.Context, sessionID string) error
}

// Sessions изменение состояния сессии.
type Sessions interface {
	Dispatch(ctx context.Context, sessionID string, actions ...session.Action) (session.State, error)
}

// PaymentView платёж для отображения.
type PaymentView struct {
	models.Payment
	Projected   bool           `json:"projected"`
	DisplayDate string         `json:"displayDate"`
	AmountText  string         `json:"amountText"`
	Badge       schedule.Badge `json:"badge"`
}

// OrderView карточка заказа в кабинете.
type OrderView struct {
	ID              int                `json:"id"`
	CourseName      string             `json:"courseName"`
	Status          models.OrderStatus `json:"status"`
	Badge           schedule.Badge     `json:"badge"`
	TotalPrice      decimal.Decimal    `json:"totalPrice"`
	TotalText       string             `json:"totalText"`
	MonthlyPrice    decimal.Decimal    `json:"monthlyPrice"`
	MonthlyText     string             `json:"monthlyText"`
	NumberOfMonths  int                `json:"numberOfMonths"`
	RemainingMonth  int                `json:"remainingMonth"`
	NextBillingDate string             `json:"nextBillingDate,omitempty"`
	Payments        []PaymentView      `json:"payments"`
	CanAddPayment   bool               `json:"canAddPayment"`
	CanCancel       bool               `json:"canCancel"`
}

// Service кабинет пользователя.
type Service struct {
	api      API
	cache    Cache
	sessions Sessions
	notifier notify.Notifier
	log      *slog.Logger
}

// NewService создает новый экземпляр Service.
func NewService(api API, cache Cache, sessions Sessions, notifier notify.Notifier, log *slog.Logger) *Service {
	return &Service{
		api:      api,
		cache:    cache,
		sessions: sessions,
		notifier: notifier,
		log:      log,
	}
}

// List возвращает заказы пользователя с графиком платежей.
// Без токена пользователь сессии сбрасывается и возвращается api.ErrSessionExpired.
func (s *Service) List(ctx context.Context, sessionID string) ([]OrderView, error) {
	const op = "orders.List"

	ok, err := s.api.HasToken(ctx)
	if err != nil {
		return nil, s.fail(ctx, sessionID, op, fallbackGeneric, fmt.Errorf("%s: %w", op, err))
	}
	if !ok {
		if _, dErr := s.sessions.Dispatch(ctx, sessionID, session.UserClosed()); dErr != nil {
			s.log.Error("failed to close user session", sl.Session(sessionID), sl.Err(dErr))
		}
		return nil, fmt.Errorf("%s: %w", op, api.ErrSessionExpired)
	}

	orders, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, s.fail(ctx, sessionID, op, fallbackGeneric, fmt.Errorf("%s: %w", op, err))
	}

	views := make([]OrderView, 0, len(orders))
	for _, o := range orders {
		views = append(views, s.view(o))
	}
	return views, nil
}

// Cancel отменяет заказ и сбрасывает кэш списка.
func (s *Service) Cancel(ctx context.Context, sessionID string, orderID int) error {
	const op = "orders.Cancel"

	if err := s.api.CancelOrder(ctx, orderID); err != nil {
		return s.fail(ctx, sessionID, op, fallbackGeneric, fmt.Errorf("%s: %w", op, err))
	}
	s.invalidate(ctx, sessionID)
	s.notifier.Notify(ctx, notify.Success(sessionID, op, "Заказ отменен"))
	return nil
}

// AddPayment запрашивает ссылку на привязку способа оплаты к заказу.
func (s *Service) AddPayment(ctx context.Context, sessionID string, orderID int) (*models.PaymentURLResponse, error) {
	const op = "orders.AddPayment"

	resp, err := s.api.AddPayment(ctx, orderID)
	if err != nil {
		return nil, s.fail(ctx, sessionID, op, fallbackAddPayment, fmt.Errorf("%s: %w", op, err))
	}
	s.invalidate(ctx, sessionID)
	return resp, nil
}

// load всегда запрашивает заказы у основного API. Последний полученный список хранится
// в кэше сессии и отдаётся только при недоступности API.
func (s *Service) load(ctx context.Context, sessionID string) ([]models.Order, error) {
	orders, err := s.api.ListOrders(ctx)
	if err == nil {
		if cErr := s.cache.CacheOrders(ctx, sessionID, orders); cErr != nil {
			s.log.Warn("failed to cache orders", sl.Session(sessionID), sl.Err(cErr))
		}
		return orders, nil
	}
	if !upstreamUnavailable(err) {
		return nil, err
	}

	cached, found, cErr := s.cache.CachedOrders(ctx, sessionID)
	if cErr != nil {
		s.log.Warn("failed to read orders cache", sl.Session(sessionID), sl.Err(cErr))
		return nil, err
	}
	if !found {
		metrics.IncOrdersCache("miss")
		return nil, err
	}
	metrics.IncOrdersCache("fallback")
	s.log.Warn("popodpiske api unavailable, serving cached orders", sl.Session(sessionID), sl.Err(err))
	return cached, nil
}

// upstreamUnavailable сетевая ошибка или 5xx основного API.
func upstreamUnavailable(err error) bool {
	if errors.Is(err, api.ErrNetwork) {
		return true
	}
	apiErr, ok := api.AsError(err)
	return ok && apiErr.Status >= http.StatusInternalServerError
}

func (s *Service) invalidate(ctx context.Context, sessionID string) {
	if err := s.cache.InvalidateOrders(ctx, sessionID); err != nil {
		s.log.Warn("failed to invalidate orders cache", sl.Session(sessionID), sl.Err(err))
	}
}

func (s *Service) view(o models.Order) OrderView {
	if n := schedule.UnparsableDates(o.Payments); n > 0 {
		// слоты сопоставляются по позиции, такие платежи сдвигают график
		s.log.Warn("recorded payments have unparsable dates",
			slog.Int("order_id", o.ID), slog.Int("count", n))
	}
	payments, err := schedule.BuildSchedule(o)
	if err != nil {
		// битая дата списания: показываем только записанные платежи
		s.log.Warn("failed to project payment schedule", slog.Int("order_id", o.ID), sl.Err(err))
		payments = o.Payments
	} else {
		metrics.IncScheduleBuilt("projected")
	}

	v := OrderView{
		ID:             o.ID,
		CourseName:     o.DisplayCourseName(),
		Status:         o.Status,
		Badge:          schedule.OrderBadge(o.Status),
		TotalPrice:     o.TotalPrice,
		TotalText:      money.Format(o.TotalPrice),
		MonthlyPrice:   o.MonthlyPrice,
		MonthlyText:    money.Format(o.MonthlyPrice),
		NumberOfMonths: o.NumberOfMonths,
		RemainingMonth: o.RemainingMonth,
		Payments:       make([]PaymentView, 0, len(payments)),
		CanAddPayment:  !o.HasBillingAnchor() || len(o.Payments) == 0,
		CanCancel:      !o.Status.IsTerminal(),
	}
	if o.HasBillingAnchor() {
		if d, err := billing.DisplayFromISO(*o.NextBillingDate); err == nil {
			v.NextBillingDate = d
		}
	}
	for _, p := range payments {
		pv := PaymentView{
			Payment:    p,
			Projected:  p.IsProjected(),
			AmountText: money.Format(p.Amount),
			Badge:      schedule.PaymentBadge(p.Status),
		}
		if d, err := billing.DisplayFromISO(p.PaymentDate); err == nil {
			pv.DisplayDate = d
		}
		v.Payments = append(v.Payments, pv)
	}
	return v
}

func (s *Service) fail(ctx context.Context, sessionID, op, fallback string, err error) error {
	err = failure.WithFallback(err, fallback)
	_, msg := failure.Describe(err)
	s.notifier.Notify(ctx, notify.Error(sessionID, op, msg))
	s.log.Warn("orders operation failed", slog.String("op", op), sl.Session(sessionID), sl.Err(err))
	return err
}
